package auction

import (
	"context"

	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/soroban"
)

// Auction record as returned by get_auction
type ledgerAuction struct {
	AuctionId      uint64  `mapstructure:"auction_id"`
	Publisher      string  `mapstructure:"publisher"`
	ImpressionSlot string  `mapstructure:"impression_slot"`
	FloorPrice     int64   `mapstructure:"floor_price"`
	ReservePrice   int64   `mapstructure:"reserve_price"`
	StartTime      uint64  `mapstructure:"start_time"`
	EndTime        uint64  `mapstructure:"end_time"`
	WinningBid     *int64  `mapstructure:"winning_bid"`
	Winner         *string `mapstructure:"winner"`
	Status         string  `mapstructure:"status"`
	BidCount       uint32  `mapstructure:"bid_count"`
}

// The contract keeps the current leader in winning_bid/winner while bidding is open
func (self *ledgerAuction) toModel() *model.Auction {
	out := &model.Auction{
		Id:             self.AuctionId,
		Publisher:      self.Publisher,
		ImpressionSlot: self.ImpressionSlot,
		FloorPrice:     self.FloorPrice,
		ReservePrice:   self.ReservePrice,
		Status:         model.AuctionStatus(self.Status),
		StartTime:      self.StartTime,
		EndTime:        self.EndTime,
		BidCount:       self.BidCount,
		HighestBid:     self.WinningBid,
		HighestBidder:  self.Winner,
	}
	if out.Status == model.AuctionStatusSettled {
		out.WinningBid = clone(self.WinningBid)
		out.Winner = clone(self.Winner)
	}
	return out
}

// Reads one auction from the ledger
func FetchAuction(ctx context.Context, gateway soroban.Gateway, contractId string, id uint64) (out *model.Auction, err error) {
	if contractId == "" {
		return nil, ErrAuctionContractUnset
	}

	var raw ledgerAuction
	found, err := soroban.CallInto(ctx, gateway, contractId, "get_auction", &raw, soroban.U64(id))
	if err != nil {
		return
	}
	if !found {
		return nil, ErrAuctionNotFound
	}

	out = raw.toModel()
	if out.Id == 0 {
		out.Id = id
	}
	return
}
