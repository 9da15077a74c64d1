package model

type EscrowState string

const (
	EscrowStateActive   EscrowState = "Active"
	EscrowStateReleased EscrowState = "Released"
	EscrowStateRefunded EscrowState = "Refunded"
	EscrowStateDisputed EscrowState = "Disputed"
)

// Funds can't be released while the escrow is held for fraud review
func (self EscrowState) BlocksRelease() bool {
	return self == EscrowStateDisputed
}

// Read-only view of the escrow vault record
type Escrow struct {
	Depositor      string      `mapstructure:"depositor" json:"depositor"`
	Beneficiary    string      `mapstructure:"beneficiary" json:"beneficiary"`
	Amount         int64       `mapstructure:"amount" json:"amount"`
	LockedAmount   int64       `mapstructure:"locked_amount" json:"lockedAmount"`
	ReleasedAmount int64       `mapstructure:"released_amount" json:"releasedAmount"`
	State          EscrowState `mapstructure:"state" json:"state"`
}
