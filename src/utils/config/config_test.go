package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	config := Default()
	require.NotNil(t, config)
	require.Equal(t, "0.05", config.Auction.MinIncrement)
	require.Equal(t, 3*time.Second, config.EventStream.ReconnectDelay)
	require.Equal(t, 10, config.EventStream.MaxReconnectAttempts)
	require.Equal(t, "@every 1m", config.Auction.ReconcileSchedule)
	require.Empty(t, config.Contracts.Lifecycle)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSAR_AUCTION_MIN_INCREMENT", "0.1")
	t.Setenv("PULSAR_AUCTION_TRACKED_AUCTIONS", "3,5,8")
	t.Setenv("PULSAR_EVENT_STREAM_RECONNECT_DELAY", "250ms")
	t.Setenv("PULSAR_CONTRACTS_ESCROW", "CESCROW")

	config, err := Load("")
	require.Nil(t, err)
	require.Equal(t, "0.1", config.Auction.MinIncrement)
	require.Equal(t, []uint64{3, 5, 8}, config.Auction.TrackedAuctions)
	require.Equal(t, 250*time.Millisecond, config.EventStream.ReconnectDelay)
	require.Equal(t, "CESCROW", config.Contracts.Escrow)
}
