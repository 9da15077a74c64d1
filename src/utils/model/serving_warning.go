package model

import (
	"time"

	"github.com/jackc/pgtype"
)

const TableServingWarning = "serving_warnings"

type ServingWarningReason string

const (
	ServingWarningReasonReputationBelowMinimum ServingWarningReason = "ReputationBelowMinimum"
	ServingWarningReasonExcludedSegment        ServingWarningReason = "ExcludedSegment"
)

// Non-fatal targeting mismatch found while validating an ad serving request
type ServingWarning struct {
	Id         uint64 `gorm:"primaryKey" json:"-"`
	CampaignId uint64
	Publisher  string
	Reason     ServingWarningReason
	Message    string

	// Reason specific details, e.g. score and minimum
	Details   pgtype.JSONB
	CreatedAt time.Time
}

func (ServingWarning) TableName() string {
	return TableServingWarning
}
