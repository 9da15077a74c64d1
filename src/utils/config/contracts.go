package config

import (
	"github.com/spf13/viper"
)

// Contract ids (C... strkeys). An empty validator contract disables its check.
type Contracts struct {
	Auction      string
	Orchestrator string
	Analytics    string
	Lifecycle    string
	Escrow       string
	Targeting    string
}

func setContractsDefaults() {
	viper.SetDefault("Contracts.Auction", "")
	viper.SetDefault("Contracts.Orchestrator", "")
	viper.SetDefault("Contracts.Analytics", "")
	viper.SetDefault("Contracts.Lifecycle", "")
	viper.SetDefault("Contracts.Escrow", "")
	viper.SetDefault("Contracts.Targeting", "")
}
