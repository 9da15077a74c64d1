package auction

import (
	"encoding/json"

	"github.com/pulsartrack/syncer/src/utils/model"
)

type UpdateReason string

const (
	UpdateReasonCreated  UpdateReason = "created"
	UpdateReasonBid      UpdateReason = "bid_placed"
	UpdateReasonSettled  UpdateReason = "settled"
	UpdateReasonSnapshot UpdateReason = "snapshot"
)

// Published to Redis whenever the local mirror of an auction changes
type AuctionUpdate struct {
	Reason  UpdateReason   `json:"reason"`
	Auction *model.Auction `json:"auction"`
	TxHash  *string        `json:"txHash,omitempty"`
}

func (self *AuctionUpdate) MarshalBinary() (data []byte, err error) {
	return json.Marshal(self)
}
