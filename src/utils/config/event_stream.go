package config

import (
	"time"

	"github.com/spf13/viper"
)

// Websocket connection to the event indexer
type EventStream struct {
	// Websocket url, e.g. wss://indexer.pulsartrack.io/ws
	Url string

	// Time limit for establishing one connection
	DialTimeout time.Duration

	// Fixed delay between reconnection attempts
	ReconnectDelay time.Duration

	// Number of automatic reconnection attempts before giving up
	MaxReconnectAttempts int

	// Maximum size of one inbound frame
	MaxMessageSize int64
}

func setEventStreamDefaults() {
	viper.SetDefault("EventStream.Url", "ws://localhost:8080/ws")
	viper.SetDefault("EventStream.DialTimeout", "10s")
	viper.SetDefault("EventStream.ReconnectDelay", "3s")
	viper.SetDefault("EventStream.MaxReconnectAttempts", "10")
	viper.SetDefault("EventStream.MaxMessageSize", "65536")
}
