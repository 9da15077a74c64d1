package serving

import (
	"context"
	"fmt"

	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/soroban"
)

const (
	CheckLifecycle = "lifecycle"
	CheckEscrow    = "escrow"
	CheckTargeting = "targeting"
)

// One cross-contract condition. Fatal failures are returned, non-fatal ones are added to the decision.
type Check interface {
	Name() string
	Run(ctx context.Context, decision *Decision) error
}

func failed(check string, campaignId uint64, cause error) error {
	return &ServingError{Check: check, CampaignId: campaignId, Reason: ErrCheckFailed, Cause: cause}
}

// Campaign has to exist, be Active and not be past its end ledger
type LifecycleCheck struct {
	gateway    soroban.Gateway
	contractId string
}

func (self *LifecycleCheck) Name() string {
	return CheckLifecycle
}

func (self *LifecycleCheck) Run(ctx context.Context, decision *Decision) error {
	var lifecycle model.CampaignLifecycle
	found, err := soroban.CallInto(ctx, self.gateway, self.contractId, "get_lifecycle", &lifecycle, soroban.U64(decision.CampaignId))
	if err != nil {
		return failed(CheckLifecycle, decision.CampaignId, err)
	}
	if !found {
		return &ServingError{Check: CheckLifecycle, CampaignId: decision.CampaignId, Reason: ErrCampaignNotFound}
	}

	if lifecycle.State != model.LifecycleStateActive {
		return &ServingError{
			Check:      CheckLifecycle,
			CampaignId: decision.CampaignId,
			Reason:     ErrCampaignNotActive,
			Detail:     fmt.Sprintf("state %s", lifecycle.State),
		}
	}

	latest, err := self.gateway.LatestLedger(ctx)
	if err != nil {
		return failed(CheckLifecycle, decision.CampaignId, err)
	}
	if latest.Sequence > lifecycle.CurrentEndLedger {
		return &ServingError{
			Check:      CheckLifecycle,
			CampaignId: decision.CampaignId,
			Reason:     ErrCampaignExpired,
			Detail:     fmt.Sprintf("ended at ledger %d, current %d", lifecycle.CurrentEndLedger, latest.Sequence),
		}
	}
	return nil
}

// Campaign funds have to be locked and not held by a dispute
type EscrowCheck struct {
	gateway    soroban.Gateway
	contractId string
}

func (self *EscrowCheck) Name() string {
	return CheckEscrow
}

func (self *EscrowCheck) Run(ctx context.Context, decision *Decision) error {
	var escrow model.Escrow
	found, err := soroban.CallInto(ctx, self.gateway, self.contractId, "get_escrow", &escrow, soroban.U64(decision.CampaignId))
	if err != nil {
		return failed(CheckEscrow, decision.CampaignId, err)
	}
	if !found {
		return &ServingError{Check: CheckEscrow, CampaignId: decision.CampaignId, Reason: ErrEscrowNotFound}
	}

	if escrow.LockedAmount <= 0 {
		return &ServingError{
			Check:      CheckEscrow,
			CampaignId: decision.CampaignId,
			Reason:     ErrInsufficientEscrow,
			Detail:     fmt.Sprintf("locked amount %d", escrow.LockedAmount),
		}
	}
	if escrow.State.BlocksRelease() {
		return &ServingError{
			Check:      CheckEscrow,
			CampaignId: decision.CampaignId,
			Reason:     ErrInsufficientEscrow,
			Detail:     fmt.Sprintf("state %s", escrow.State),
		}
	}
	return nil
}

// Publisher should match the campaign targeting. Mismatches only warn.
type TargetingCheck struct {
	gateway    soroban.Gateway
	contractId string
}

func (self *TargetingCheck) Name() string {
	return CheckTargeting
}

func (self *TargetingCheck) Run(ctx context.Context, decision *Decision) error {
	var targeting model.TargetingConfig
	found, err := soroban.CallInto(ctx, self.gateway, self.contractId, "get_targeting", &targeting, soroban.U64(decision.CampaignId))
	if err != nil {
		return failed(CheckTargeting, decision.CampaignId, err)
	}
	if !found {
		// No targeting configured, everyone matches
		return nil
	}

	publisher, err := soroban.Address(decision.Publisher)
	if err != nil {
		return failed(CheckTargeting, decision.CampaignId, err)
	}

	var score model.TargetingScore
	found, err = soroban.CallInto(ctx, self.gateway, self.contractId, "get_targeting_score", &score, soroban.U64(decision.CampaignId), publisher)
	if err != nil {
		return failed(CheckTargeting, decision.CampaignId, err)
	}
	if !found {
		score = model.TargetingScore{}
	}

	if score.Score < targeting.MinReputationScore {
		value, minimum := score.Score, targeting.MinReputationScore
		decision.warn(Warning{
			Reason:  model.ServingWarningReasonReputationBelowMinimum,
			Message: fmt.Sprintf("publisher score %d below minimum %d", value, minimum),
			Score:   &value,
			Minimum: &minimum,
		})
	}

	excluded := targeting.ExcludedSegmentList()
	candidates := append([]string{decision.Publisher}, score.MatchReasonList()...)
	for _, segment := range excluded {
		for _, candidate := range candidates {
			if segment == candidate {
				decision.warn(Warning{
					Reason:  model.ServingWarningReasonExcludedSegment,
					Message: fmt.Sprintf("publisher matches excluded segment %q", segment),
					Segment: segment,
				})
				break
			}
		}
	}
	return nil
}
