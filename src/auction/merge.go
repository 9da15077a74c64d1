package auction

import (
	"slices"

	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/stream"
)

// New auction from its creation event
func FromCreated(payload *stream.AuctionCreated) *model.Auction {
	return &model.Auction{
		Id:             payload.AuctionId,
		Publisher:      payload.Publisher,
		ImpressionSlot: payload.ImpressionSlot,
		FloorPrice:     payload.FloorPrice,
		ReservePrice:   payload.ReservePrice,
		Status:         model.AuctionStatusOpen,
		StartTime:      payload.StartTime,
		EndTime:        payload.EndTime,
	}
}

// Merges a confirmed event into the auction. Returns a new value and whether anything changed,
// the input is never modified. Terminal auctions ignore everything.
func ApplyConfirmedEvent(auction *model.Auction, event *stream.Event) (out *model.Auction, changed bool) {
	if auction.Status.IsTerminal() {
		return auction, false
	}

	switch payload := event.Payload.(type) {
	case *stream.BidPlaced:
		if payload.AuctionId != auction.Id || isCounted(auction, payload.Amount) {
			return auction, false
		}
		out = auction.Clone()
		out.BidCount++
		out.PendingBids = append(out.PendingBids, payload.Amount)
		if leading, ok := out.LeadingBid(); !ok || payload.Amount > leading {
			amount, bidder := payload.Amount, payload.Bidder
			out.HighestBid, out.HighestBidder = &amount, &bidder
		}
		return out, true

	case *stream.AuctionSettled:
		if payload.AuctionId != auction.Id {
			return auction, false
		}
		out = auction.Clone()
		if payload.Winner == nil {
			// Reserve not met or no bids
			out.Status = model.AuctionStatusCancelled
			return out, true
		}
		winner, winningBid := *payload.Winner, *payload.WinningBid
		out.Status = model.AuctionStatusSettled
		out.Winner, out.WinningBid = &winner, &winningBid
		out.HighestBidder, out.HighestBid = &winner, &winningBid
		return out, true
	}

	return auction, false
}

// Merges a state read from the ledger into the local one. Nothing moves backwards:
// terminal status sticks, the leading bid only goes up and the bid count is the ledger's count
// plus the stream bids the read doesn't include yet. Changed reports only fields visible to clients,
// the result should be stored either way.
func ApplySnapshot(local, ledger *model.Auction) (out *model.Auction, changed bool) {
	if local == nil {
		out = ledger.Clone()
		out.ConfirmedBidCount = ledger.BidCount
		out.ConfirmedLeadingBid = clone(ledger.HighestBid)
		out.PendingBids = nil
		return out, true
	}

	out = local.Clone()

	// Immutable after creation, ledger is authoritative
	out.Publisher = ledger.Publisher
	out.ImpressionSlot = ledger.ImpressionSlot
	out.FloorPrice = ledger.FloorPrice
	out.ReservePrice = ledger.ReservePrice
	out.StartTime = ledger.StartTime
	out.EndTime = ledger.EndTime

	// Reads older than the last one are ignored
	if ledger.BidCount >= out.ConfirmedBidCount {
		out.ConfirmedBidCount = ledger.BidCount
		out.ConfirmedLeadingBid = clone(ledger.HighestBid)
		out.PendingBids = uncounted(out.PendingBids, out.ConfirmedLeadingBid)
	}
	if count := out.ConfirmedBidCount + uint32(len(out.PendingBids)); count > out.BidCount {
		out.BidCount = count
	}

	if !out.Status.IsTerminal() {
		if leading, ok := ledger.LeadingBid(); ok {
			if current, ok := out.LeadingBid(); !ok || leading > current {
				out.HighestBid = clone(ledger.HighestBid)
				out.HighestBidder = clone(ledger.HighestBidder)
			}
		}

		if ledger.Status.IsTerminal() {
			out.Status = ledger.Status
			out.Winner = clone(ledger.Winner)
			out.WinningBid = clone(ledger.WinningBid)
			if ledger.Status == model.AuctionStatusSettled {
				out.HighestBid = clone(ledger.WinningBid)
				out.HighestBidder = clone(ledger.Winner)
			}
		}
	}

	return out, !equal(local, out)
}

// Whether a bid is already part of the count, through the last ledger read or an earlier event
func isCounted(auction *model.Auction, amount int64) bool {
	if auction.ConfirmedLeadingBid != nil && amount <= *auction.ConfirmedLeadingBid {
		return true
	}
	return slices.Contains(auction.PendingBids, amount)
}

// Stream bids the ledger read doesn't include
func uncounted(pending []int64, confirmedLeading *int64) (out []int64) {
	if confirmedLeading == nil {
		return pending
	}
	for _, amount := range pending {
		if amount > *confirmedLeading {
			out = append(out, amount)
		}
	}
	return
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func equal(a, b *model.Auction) bool {
	return a.Id == b.Id &&
		a.Publisher == b.Publisher &&
		a.ImpressionSlot == b.ImpressionSlot &&
		a.FloorPrice == b.FloorPrice &&
		a.ReservePrice == b.ReservePrice &&
		a.Status == b.Status &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime &&
		a.BidCount == b.BidCount &&
		equalPtr(a.HighestBid, b.HighestBid) &&
		equalPtr(a.HighestBidder, b.HighestBidder) &&
		equalPtr(a.WinningBid, b.WinningBid) &&
		equalPtr(a.Winner, b.Winner)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
