package auction

import (
	"errors"
	"fmt"
)

var (
	ErrAuctionNotOpen       = errors.New("auction is not open")
	ErrBelowFloor           = errors.New("bid below floor price")
	ErrBelowMinIncrement    = errors.New("bid below minimum increment")
	ErrAuctionNotFound      = errors.New("auction not found")
	ErrInvalidMinIncrement  = errors.New("invalid minimum increment")
	ErrAuctionContractUnset = errors.New("auction contract is not configured")
)

// Rejected bid. Minimum is the lowest amount that would pass, 0 if the auction doesn't accept bids.
type BidError struct {
	Reason    error
	AuctionId uint64
	Amount    int64
	Minimum   int64
}

func (self *BidError) Error() string {
	if self.Minimum == 0 {
		return fmt.Sprintf("auction %d: bid %d rejected: %s", self.AuctionId, self.Amount, self.Reason)
	}
	return fmt.Sprintf("auction %d: bid %d rejected: %s, minimum is %d", self.AuctionId, self.Amount, self.Reason, self.Minimum)
}

func (self *BidError) Unwrap() error {
	return self.Reason
}

var ErrBidderMismatch = errors.New("bidder doesn't match the signing account")
