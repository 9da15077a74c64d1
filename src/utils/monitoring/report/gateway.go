package report

import (
	"go.uber.org/atomic"
)

type GatewayErrors struct {
	Simulation          atomic.Uint64 `json:"simulation"`
	EmptyResult         atomic.Uint64 `json:"empty_result"`
	Submission          atomic.Uint64 `json:"submission"`
	TransactionFailed   atomic.Uint64 `json:"transaction_failed"`
	ConfirmationTimeout atomic.Uint64 `json:"confirmation_timeout"`
	Transport           atomic.Uint64 `json:"transport"`
}

type GatewayState struct {
	Calls            atomic.Uint64 `json:"calls"`
	Submits          atomic.Uint64 `json:"submits"`
	ConfirmedSubmits atomic.Uint64 `json:"confirmed_submits"`
	LatestLedger     atomic.Uint32 `json:"latest_ledger"`
}

type GatewayReport struct {
	State  GatewayState  `json:"state"`
	Errors GatewayErrors `json:"errors"`
}
