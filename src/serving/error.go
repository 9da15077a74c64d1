package serving

import (
	"errors"
	"fmt"
)

var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrCampaignNotActive  = errors.New("campaign is not active")
	ErrCampaignExpired    = errors.New("campaign expired")
	ErrEscrowNotFound     = errors.New("escrow not found")
	ErrInsufficientEscrow = errors.New("insufficient escrow")
	ErrCheckFailed        = errors.New("check could not be completed")

	// Both record calls require the publisher's authorization
	ErrPublisherMismatch = errors.New("publisher isn't the signing account")
)

// Fatal validation failure of one check. Unwraps to the reason sentinel and, for failed ledger reads, the cause.
type ServingError struct {
	Check      string
	CampaignId uint64
	Reason     error
	Cause      error
	Detail     string
}

func (self *ServingError) Error() string {
	msg := fmt.Sprintf("campaign %d: %s check: %s", self.CampaignId, self.Check, self.Reason)
	if self.Detail != "" {
		msg += " (" + self.Detail + ")"
	}
	if self.Cause != nil {
		msg += ": " + self.Cause.Error()
	}
	return msg
}

func (self *ServingError) Unwrap() []error {
	if self.Cause == nil {
		return []error{self.Reason}
	}
	return []error{self.Reason, self.Cause}
}
