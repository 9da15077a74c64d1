package serving

import (
	"context"
	"errors"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/logger"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/sirupsen/logrus"
)

// Checks whether a campaign may be served on a publisher.
// Checks run in a fixed order, unconfigured ones are skipped and the first fatal failure ends validation.
// Ledger state is read on every call, nothing is cached.
type Validator struct {
	log       *logrus.Entry
	report    *report.ServingReport
	contracts config.Contracts
	gateway   soroban.Gateway

	// Lifecycle, escrow, targeting. Nil entries are skipped.
	checks [3]Check
	names  [3]string
}

func NewValidator(config *config.Config) (self *Validator) {
	self = new(Validator)
	self.log = logger.NewSublogger("serving-validator")
	self.report = &report.ServingReport{}
	self.contracts = config.Contracts
	self.names = [3]string{CheckLifecycle, CheckEscrow, CheckTargeting}
	return
}

func (self *Validator) WithMonitor(monitor monitoring.Monitor) *Validator {
	self.report = monitor.GetReport().Serving
	return self
}

// Builds a check for every configured validator contract
func (self *Validator) WithGateway(gateway soroban.Gateway) *Validator {
	self.gateway = gateway

	self.checks = [3]Check{}
	if self.contracts.Lifecycle != "" {
		self.checks[0] = &LifecycleCheck{gateway: gateway, contractId: self.contracts.Lifecycle}
	}
	if self.contracts.Escrow != "" {
		self.checks[1] = &EscrowCheck{gateway: gateway, contractId: self.contracts.Escrow}
	}
	if self.contracts.Targeting != "" {
		self.checks[2] = &TargetingCheck{gateway: gateway, contractId: self.contracts.Targeting}
	}
	return self
}

// Names of the checks that will run
func (self *Validator) Enabled() (out []string) {
	for _, check := range self.checks {
		if check != nil {
			out = append(out, check.Name())
		}
	}
	return
}

func (self *Validator) ValidateServing(ctx context.Context, campaignId uint64, publisher string) (decision *Decision, err error) {
	self.report.State.Validations.Inc()

	decision = &Decision{
		CampaignId: campaignId,
		Publisher:  publisher,
		Checked:    []string{},
		Skipped:    []string{},
		Warnings:   []Warning{},
	}

	for i, check := range self.checks {
		if check == nil {
			decision.Skipped = append(decision.Skipped, self.names[i])
			continue
		}

		err = check.Run(ctx, decision)
		if err != nil {
			self.report.State.Rejected.Inc()
			if errors.Is(err, ErrCheckFailed) {
				self.report.Errors.CheckFailures.Inc()
				self.log.WithError(err).WithField("check", check.Name()).Warn("Check failed, rejecting")
			} else {
				self.log.WithError(err).WithField("publisher", publisher).Debug("Serving rejected")
			}
			return nil, err
		}
		decision.Checked = append(decision.Checked, check.Name())
	}

	self.report.State.Passed.Inc()
	self.report.State.Warnings.Add(uint64(len(decision.Warnings)))
	for _, w := range decision.Warnings {
		self.log.WithField("campaign_id", campaignId).
			WithField("publisher", publisher).
			WithField("reason", w.Reason).
			Warn(w.Message)
	}
	return
}
