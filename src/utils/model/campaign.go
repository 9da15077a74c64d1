package model

type LifecycleState string

const (
	LifecycleStateDraft         LifecycleState = "Draft"
	LifecycleStatePendingReview LifecycleState = "PendingReview"
	LifecycleStateActive        LifecycleState = "Active"
	LifecycleStatePaused        LifecycleState = "Paused"
	LifecycleStateCompleted     LifecycleState = "Completed"
	LifecycleStateCancelled     LifecycleState = "Cancelled"
	LifecycleStateExpired       LifecycleState = "Expired"
	LifecycleStateArchived      LifecycleState = "Archived"
	LifecycleStateRejected      LifecycleState = "Rejected"
)

// Read-only view of the campaign lifecycle contract record
type CampaignLifecycle struct {
	CampaignId        uint64         `mapstructure:"campaign_id" json:"campaignId"`
	Advertiser        string         `mapstructure:"advertiser" json:"advertiser"`
	State             LifecycleState `mapstructure:"state" json:"state"`
	CreatedAt         uint64         `mapstructure:"created_at" json:"createdAt"`
	ActivatedAt       *uint64        `mapstructure:"activated_at" json:"activatedAt,omitempty"`
	PausedAt          *uint64        `mapstructure:"paused_at" json:"pausedAt,omitempty"`
	CompletedAt       *uint64        `mapstructure:"completed_at" json:"completedAt,omitempty"`
	CancelledAt       *uint64        `mapstructure:"cancelled_at" json:"cancelledAt,omitempty"`
	PauseCount        uint32         `mapstructure:"pause_count" json:"pauseCount"`
	ExtensionCount    uint32         `mapstructure:"extension_count" json:"extensionCount"`
	OriginalEndLedger uint32         `mapstructure:"original_end_ledger" json:"originalEndLedger"`
	CurrentEndLedger  uint32         `mapstructure:"current_end_ledger" json:"currentEndLedger"`
}
