package model

type Bid struct {
	AuctionId   uint64 `json:"auctionId"`
	Bidder      string `json:"bidder"`
	CampaignId  uint64 `json:"campaignId"`
	Amount      int64  `json:"amount"`
	SubmittedAt uint64 `json:"submittedAt,omitempty"`
}
