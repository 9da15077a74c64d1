package serving

import (
	"github.com/pulsartrack/syncer/src/utils/model"
)

type Warning struct {
	Reason  model.ServingWarningReason `json:"reason"`
	Message string                     `json:"message"`

	// Set for ReputationBelowMinimum
	Score   *uint32 `json:"score,omitempty"`
	Minimum *uint32 `json:"minimum,omitempty"`

	// Set for ExcludedSegment
	Segment string `json:"segment,omitempty"`
}

// Outcome of a passed validation. Failed validations return a *ServingError instead.
type Decision struct {
	CampaignId uint64    `json:"campaignId"`
	Publisher  string    `json:"publisher"`
	Checked    []string  `json:"checked"`
	Skipped    []string  `json:"skipped"`
	Warnings   []Warning `json:"warnings"`
}

func (self *Decision) warn(w Warning) {
	self.Warnings = append(self.Warnings, w)
}
