package config

import (
	"github.com/spf13/viper"
)

type Auction struct {
	// Minimum raise over the current leading bid, as a ratio. 0.05 means 5%.
	MinIncrement string

	// Auctions synchronized on startup, besides those announced by auction_created events
	TrackedAuctions []uint64

	// Cron spec of the periodic reconciliation with the ledger
	ReconcileSchedule string

	// Max number of auction updates waiting to be published
	PublishQueueSize int

	// Redis channel receiving auction updates. Empty disables publishing.
	PublishChannel string
}

func setAuctionDefaults() {
	viper.SetDefault("Auction.MinIncrement", "0.05")
	viper.SetDefault("Auction.TrackedAuctions", []uint64{})
	viper.SetDefault("Auction.ReconcileSchedule", "@every 1m")
	viper.SetDefault("Auction.PublishQueueSize", "100")
	viper.SetDefault("Auction.PublishChannel", "")
}
