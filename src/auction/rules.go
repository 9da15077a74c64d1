package auction

import (
	"fmt"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"

	"github.com/shopspring/decimal"
)

// Client-side bid admission. Runs against the local mirror, the ledger still has the final word.
type Rules struct {
	// Required raise over the leading bid, 0.05 is 5%
	MinIncrement decimal.Decimal
}

func NewRules(config *config.Auction) (self *Rules, err error) {
	inc, err := decimal.NewFromString(config.MinIncrement)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMinIncrement, err)
	}
	if inc.IsNegative() {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidMinIncrement, config.MinIncrement)
	}
	return &Rules{MinIncrement: inc}, nil
}

// Lowest amount accepted right now, 0 if the auction isn't open
func (self *Rules) MinimumBid(auction *model.Auction) int64 {
	if auction.Status != model.AuctionStatusOpen {
		return 0
	}
	minimum := auction.FloorPrice
	if leading, ok := auction.LeadingBid(); ok {
		if raised := self.threshold(leading).Ceil().IntPart(); raised > minimum {
			minimum = raised
		}
	}
	return minimum
}

// Checks are ordered: not open, then floor, then increment over the leading bid.
func (self *Rules) ValidateBid(auction *model.Auction, amount int64) error {
	if auction.Status != model.AuctionStatusOpen {
		return &BidError{Reason: ErrAuctionNotOpen, AuctionId: auction.Id, Amount: amount}
	}

	if amount < auction.FloorPrice {
		return &BidError{Reason: ErrBelowFloor, AuctionId: auction.Id, Amount: amount, Minimum: self.MinimumBid(auction)}
	}

	leading, ok := auction.LeadingBid()
	if ok && decimal.NewFromInt(amount).LessThan(self.threshold(leading)) {
		return &BidError{Reason: ErrBelowMinIncrement, AuctionId: auction.Id, Amount: amount, Minimum: self.MinimumBid(auction)}
	}

	return nil
}

// leading * (1 + increment), exact
func (self *Rules) threshold(leading int64) decimal.Decimal {
	return decimal.NewFromInt(leading).Mul(decimal.NewFromInt(1).Add(self.MinIncrement))
}
