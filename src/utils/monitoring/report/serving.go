package report

import (
	"go.uber.org/atomic"
)

type ServingErrors struct {
	CheckFailures  atomic.Uint64 `json:"check_failures"`
	StoreFailures  atomic.Uint64 `json:"store_failures"`
	RecordFailures atomic.Uint64 `json:"record_failures"`
}

type ServingState struct {
	Validations    atomic.Uint64 `json:"validations"`
	Passed         atomic.Uint64 `json:"passed"`
	Rejected       atomic.Uint64 `json:"rejected"`
	Warnings       atomic.Uint64 `json:"warnings"`
	WarningsStored atomic.Uint64 `json:"warnings_stored"`
	ViewsRecorded  atomic.Uint64 `json:"views_recorded"`
	ClicksRecorded atomic.Uint64 `json:"clicks_recorded"`
}

type ServingReport struct {
	State  ServingState  `json:"state"`
	Errors ServingErrors `json:"errors"`
}
