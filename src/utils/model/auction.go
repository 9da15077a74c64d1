package model

import (
	"time"
)

type AuctionStatus string

const (
	AuctionStatusOpen      AuctionStatus = "Open"
	AuctionStatusSettled   AuctionStatus = "Settled"
	AuctionStatusCancelled AuctionStatus = "Cancelled"
)

// Settled and Cancelled auctions never change again
func (self AuctionStatus) IsTerminal() bool {
	return self == AuctionStatusSettled || self == AuctionStatusCancelled
}

// Local mirror of an on-chain auction.
//
// HighestBid/HighestBidder follow the leading bid while the auction is open.
// WinningBid/Winner are set only once the auction is settled.
type Auction struct {
	Id             uint64        `json:"auctionId"`
	Publisher      string        `json:"publisher"`
	ImpressionSlot string        `json:"impressionSlot"`
	FloorPrice     int64         `json:"floorPrice"`
	ReservePrice   int64         `json:"reservePrice"`
	Status         AuctionStatus `json:"status"`
	StartTime      uint64        `json:"startTime"`
	EndTime        uint64        `json:"endTime"`
	BidCount       uint32        `json:"bidCount"`

	HighestBid    *int64  `json:"highestBid,omitempty"`
	HighestBidder *string `json:"highestBidder,omitempty"`

	WinningBid *int64  `json:"winningBid,omitempty"`
	Winner     *string `json:"winner,omitempty"`

	// Ledger tier: bid count and leading bid as of the last ledger read.
	// Bids are strictly increasing on the ledger, so any bid at or below ConfirmedLeadingBid is
	// already part of ConfirmedBidCount.
	ConfirmedBidCount   uint32 `json:"-"`
	ConfirmedLeadingBid *int64 `json:"-"`

	// Stream tier: amounts of bids applied from events since the last ledger read
	PendingBids []int64 `json:"-"`
}

func (self *Auction) Clone() *Auction {
	if self == nil {
		return nil
	}
	out := *self
	out.HighestBid = clonePtr(self.HighestBid)
	out.HighestBidder = clonePtr(self.HighestBidder)
	out.WinningBid = clonePtr(self.WinningBid)
	out.Winner = clonePtr(self.Winner)
	out.ConfirmedLeadingBid = clonePtr(self.ConfirmedLeadingBid)
	if self.PendingBids != nil {
		out.PendingBids = append([]int64(nil), self.PendingBids...)
	}
	return &out
}

// Leading bid amount, false if there were no bids yet
func (self *Auction) LeadingBid() (int64, bool) {
	if self.HighestBid == nil {
		return 0, false
	}
	return *self.HighestBid, true
}

// Countdown for display only. Ledger time decides when bidding really ends.
func (self *Auction) TimeRemaining(now time.Time) time.Duration {
	end := time.Unix(int64(self.EndTime), 0)
	if !now.Before(end) {
		return 0
	}
	return end.Sub(now)
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
