package report

type Report struct {
	Run            *RunReport            `json:"run,omitempty"`
	Gateway        *GatewayReport        `json:"gateway,omitempty"`
	Stream         *StreamReport         `json:"stream,omitempty"`
	Auction        *AuctionReport        `json:"auction,omitempty"`
	Serving        *ServingReport        `json:"serving,omitempty"`
	RedisPublisher *RedisPublisherReport `json:"redis_publisher,omitempty"`
}

// Report with every section allocated
func NewReport() *Report {
	return &Report{
		Run:            &RunReport{},
		Gateway:        &GatewayReport{},
		Stream:         &StreamReport{},
		Auction:        &AuctionReport{},
		Serving:        &ServingReport{},
		RedisPublisher: &RedisPublisherReport{},
	}
}
