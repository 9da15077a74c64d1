package report

import (
	"go.uber.org/atomic"
)

type StreamErrors struct {
	DialFailures    atomic.Uint64 `json:"dial_failures"`
	TransportErrors atomic.Uint64 `json:"transport_errors"`
	InvalidMessages atomic.Uint64 `json:"invalid_messages"`
}

type StreamState struct {
	Connected         atomic.Bool   `json:"connected"`
	GaveUp            atomic.Bool   `json:"gave_up"`
	Connections       atomic.Uint64 `json:"connections"`
	ReconnectAttempts atomic.Uint64 `json:"reconnect_attempts"`
	MessagesReceived  atomic.Uint64 `json:"messages_received"`
	EventsDelivered   atomic.Uint64 `json:"events_delivered"`
}

type StreamReport struct {
	State  StreamState  `json:"state"`
	Errors StreamErrors `json:"errors"`
}
