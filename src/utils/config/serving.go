package config

import (
	"time"

	"github.com/spf13/viper"
)

type Serving struct {
	// Same warning for the same campaign and publisher is stored once per this window
	WarningDedupWindow time.Duration

	// Are warnings stored in the database
	StoreWarnings bool

	// Warnings are inserted in batches
	StoreBatchSize     int
	StoreFlushInterval time.Duration
	StoreQueueSize     int

	// Insert retry configuration, 0 is no limit
	StoreMaxElapsedTime time.Duration
	StoreMaxInterval    time.Duration
}

func setServingDefaults() {
	viper.SetDefault("Serving.WarningDedupWindow", "5m")
	viper.SetDefault("Serving.StoreWarnings", "false")
	viper.SetDefault("Serving.StoreBatchSize", "50")
	viper.SetDefault("Serving.StoreFlushInterval", "5s")
	viper.SetDefault("Serving.StoreQueueSize", "500")
	viper.SetDefault("Serving.StoreMaxElapsedTime", "1m")
	viper.SetDefault("Serving.StoreMaxInterval", "10s")
}
