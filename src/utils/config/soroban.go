package config

import (
	"time"

	"github.com/spf13/viper"
)

// Connection to the Soroban JSON-RPC endpoint
type Soroban struct {
	// Soroban RPC url
	Url string

	// Network passphrase used to sign and hash transactions
	NetworkPassphrase string

	// Account used as the source of read-only simulations. It doesn't need to be funded.
	SimulationAccount string

	// Secret seed used by the bid and record commands. Empty disables submitting.
	SignerSecret string

	// Base fee added on top of the simulated resource fee, in stroops
	BaseFee int64

	// Time limit for one RPC request
	RequestTimeout time.Duration

	// Time limit for establishing connection
	DialerTimeout time.Duration

	// Interval between keep-alive probes
	DialerKeepAlive time.Duration

	// Time limit for TLS handshake
	TLSHandshakeTimeout time.Duration

	// Maximum time a connection may stay idle
	IdleConnTimeout time.Duration

	// Rate limiting of requests to the RPC node
	LimiterInterval  time.Duration
	LimiterBurstSize int

	// How often getTransaction is polled after submitting
	ConfirmationPollInterval time.Duration

	// Maximum time a submitted transaction is awaited
	ConfirmationTimeout time.Duration
}

func setSorobanDefaults() {
	viper.SetDefault("Soroban.Url", "https://soroban-testnet.stellar.org")
	viper.SetDefault("Soroban.NetworkPassphrase", "Test SDF Network ; September 2015")
	viper.SetDefault("Soroban.SimulationAccount", "GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7")
	viper.SetDefault("Soroban.SignerSecret", "")
	viper.SetDefault("Soroban.BaseFee", "100")
	viper.SetDefault("Soroban.RequestTimeout", "30s")
	viper.SetDefault("Soroban.DialerTimeout", "10s")
	viper.SetDefault("Soroban.DialerKeepAlive", "15s")
	viper.SetDefault("Soroban.TLSHandshakeTimeout", "10s")
	viper.SetDefault("Soroban.IdleConnTimeout", "30s")
	viper.SetDefault("Soroban.LimiterInterval", "50ms")
	viper.SetDefault("Soroban.LimiterBurstSize", "20")
	viper.SetDefault("Soroban.ConfirmationPollInterval", "1s")
	viper.SetDefault("Soroban.ConfirmationTimeout", "60s")
}
