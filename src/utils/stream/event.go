package stream

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventTypeBidPlaced           EventType = "bid_placed"
	EventTypeAuctionCreated      EventType = "auction_created"
	EventTypeAuctionSettled      EventType = "auction_settled"
	EventTypeCampaignCreated     EventType = "campaign_created"
	EventTypeViewRecorded        EventType = "view_recorded"
	EventTypePaymentProcessed    EventType = "payment_processed"
	EventTypeConsentUpdated      EventType = "consent_updated"
	EventTypeSubscriptionCreated EventType = "subscription_created"
	EventTypeReputationUpdated   EventType = "reputation_updated"

	// Emitted by the client itself, never accepted from the wire
	EventTypeConnected EventType = "connected"
	EventTypeError     EventType = "error"

	// Subscribes to every event, synthetic ones included
	Wildcard EventType = "*"
)

func (self EventType) IsSynthetic() bool {
	return self == EventTypeConnected || self == EventTypeError
}

var (
	ErrMalformedMessage  = errors.New("malformed message")
	ErrUnknownEventType  = errors.New("unknown event type")
	ErrReservedEventType = errors.New("reserved event type")
	ErrInvalidPayload    = errors.New("invalid event payload")
)

// Notification pushed by the indexer
type Event struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp int64          `json:"timestamp"`
	TxHash    *string        `json:"txHash,omitempty"`

	// Data decoded into the type's payload struct, e.g. *BidPlaced. Nil for synthetic events.
	Payload any `json:"-"`
}

type envelope struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp *json.Number   `json:"timestamp"`
	TxHash    *string        `json:"txHash"`
}

// Parses and validates one inbound frame
func ParseEvent(raw []byte) (out *Event, err error) {
	var msg envelope
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	err = decoder.Decode(&msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	if msg.Type.IsSynthetic() {
		return nil, fmt.Errorf("%w: %s", ErrReservedEventType, msg.Type)
	}

	newPayload, ok := payloads[msg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, msg.Type)
	}

	if msg.Timestamp == nil {
		return nil, fmt.Errorf("%w: missing timestamp", ErrMalformedMessage)
	}
	timestamp, err := msg.Timestamp.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp isn't an integer", ErrMalformedMessage)
	}

	if msg.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedMessage)
	}

	payload := newPayload()
	err = decodePayload(msg.Data, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, msg.Type, err)
	}

	return &Event{
		Type:      msg.Type,
		Data:      msg.Data,
		Timestamp: timestamp,
		TxHash:    msg.TxHash,
		Payload:   payload,
	}, nil
}

func newConnectedEvent() *Event {
	return &Event{
		Type:      EventTypeConnected,
		Data:      map[string]any{},
		Timestamp: time.Now().UnixMilli(),
	}
}

func newErrorEvent(err error) *Event {
	return &Event{
		Type:      EventTypeError,
		Data:      map[string]any{"message": err.Error()},
		Timestamp: time.Now().UnixMilli(),
	}
}
