package stream

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

type BidPlaced struct {
	AuctionId  uint64  `mapstructure:"auctionId" validate:"required"`
	Bidder     string  `mapstructure:"bidder" validate:"required"`
	Amount     int64   `mapstructure:"amount" validate:"gt=0"`
	CampaignId *uint64 `mapstructure:"campaignId"`
}

type AuctionCreated struct {
	AuctionId      uint64 `mapstructure:"auctionId" validate:"required"`
	Publisher      string `mapstructure:"publisher" validate:"required"`
	ImpressionSlot string `mapstructure:"impressionSlot" validate:"required"`
	FloorPrice     int64  `mapstructure:"floorPrice" validate:"gt=0"`
	ReservePrice   int64  `mapstructure:"reservePrice" validate:"gtefield=FloorPrice"`
	StartTime      uint64 `mapstructure:"startTime"`
	EndTime        uint64 `mapstructure:"endTime" validate:"gtfield=StartTime"`
}

// Winner and WinningBid come together. Without them the auction ended without a sale.
type AuctionSettled struct {
	AuctionId  uint64  `mapstructure:"auctionId" validate:"required"`
	Winner     *string `mapstructure:"winner" validate:"required_with=WinningBid,omitempty,min=1"`
	WinningBid *int64  `mapstructure:"winningBid" validate:"required_with=Winner,omitempty,gt=0"`
}

type CampaignCreated struct {
	CampaignId uint64 `mapstructure:"campaignId" validate:"required"`
	Advertiser string `mapstructure:"advertiser" validate:"required"`
	Budget     int64  `mapstructure:"budget" validate:"gt=0"`
}

type ViewRecorded struct {
	CampaignId uint64 `mapstructure:"campaignId" validate:"required"`
	Publisher  string `mapstructure:"publisher" validate:"required"`
}

type PaymentProcessed struct {
	From   string `mapstructure:"from" validate:"required"`
	To     string `mapstructure:"to" validate:"required"`
	Amount int64  `mapstructure:"amount" validate:"gt=0"`
}

type ConsentUpdated struct {
	User    string `mapstructure:"user" validate:"required"`
	Granted *bool  `mapstructure:"granted" validate:"required"`
}

type SubscriptionCreated struct {
	Subscriber string `mapstructure:"subscriber" validate:"required"`
	Tier       string `mapstructure:"tier" validate:"required"`
}

type ReputationUpdated struct {
	Publisher string `mapstructure:"publisher" validate:"required"`
	Score     uint32 `mapstructure:"score" validate:"lte=1000"`
}

var payloads = map[EventType]func() any{
	EventTypeBidPlaced:           func() any { return new(BidPlaced) },
	EventTypeAuctionCreated:      func() any { return new(AuctionCreated) },
	EventTypeAuctionSettled:      func() any { return new(AuctionSettled) },
	EventTypeCampaignCreated:     func() any { return new(CampaignCreated) },
	EventTypeViewRecorded:        func() any { return new(ViewRecorded) },
	EventTypePaymentProcessed:    func() any { return new(PaymentProcessed) },
	EventTypeConsentUpdated:      func() any { return new(ConsentUpdated) },
	EventTypeSubscriptionCreated: func() any { return new(SubscriptionCreated) },
	EventTypeReputationUpdated:   func() any { return new(ReputationUpdated) },
}

var (
	numberType = reflect.TypeOf(json.Number(""))
	stringType = reflect.TypeOf("")
)

// Integer fields accept JSON numbers and decimal strings (i128 amounts), nothing else.
// String fields don't accept numbers. Other mismatches are rejected by the decoder itself.
func strictTypesHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if from != numberType && from != stringType {
			return data, nil
		}
		return strconv.ParseInt(reflect.ValueOf(data).String(), 10, to.Bits())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if from != numberType && from != stringType {
			return data, nil
		}
		return strconv.ParseUint(reflect.ValueOf(data).String(), 10, to.Bits())

	case reflect.String:
		if from == numberType {
			return nil, fmt.Errorf("expected a string, got number %s", data)
		}
	}
	return data, nil
}

func decodePayload(data map[string]any, out any) (err error) {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: strictTypesHook,
	})
	if err != nil {
		return
	}

	err = decoder.Decode(data)
	if err != nil {
		return
	}

	return validate.Struct(out)
}
