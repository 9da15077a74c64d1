package report

import (
	"go.uber.org/atomic"
)

type AuctionErrors struct {
	RefreshFailures atomic.Uint64 `json:"refresh_failures"`
	SubmitFailures  atomic.Uint64 `json:"submit_failures"`
	UpdatesDropped  atomic.Uint64 `json:"updates_dropped"`
}

type AuctionState struct {
	TrackedAuctions  atomic.Int64  `json:"tracked_auctions"`
	EventsApplied    atomic.Uint64 `json:"events_applied"`
	EventsIgnored    atomic.Uint64 `json:"events_ignored"`
	SnapshotsApplied atomic.Uint64 `json:"snapshots_applied"`
	Refreshes        atomic.Uint64 `json:"refreshes"`
	BidsAccepted     atomic.Uint64 `json:"bids_accepted"`
	BidsRejected     atomic.Uint64 `json:"bids_rejected"`
	BidsSubmitted    atomic.Uint64 `json:"bids_submitted"`
}

type AuctionReport struct {
	State  AuctionState  `json:"state"`
	Errors AuctionErrors `json:"errors"`
}
