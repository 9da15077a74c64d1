package serving

import (
	"context"
	"fmt"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/logger"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/jackc/pgtype"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Records impressions and clicks on chain, but only for campaigns that pass validation
type Recorder struct {
	log       *logrus.Entry
	report    *report.ServingReport
	contracts config.Contracts

	validator *Validator
	gateway   soroban.Gateway
	signer    soroban.Signer

	// Warnings already stored recently, keyed by campaign, publisher and reason
	seen *cache.Cache

	// Warnings to store, nil disables storing
	warnings chan *model.ServingWarning
}

func NewRecorder(config *config.Config) (self *Recorder) {
	self = new(Recorder)
	self.log = logger.NewSublogger("serving-recorder")
	self.report = &report.ServingReport{}
	self.contracts = config.Contracts

	window := config.Serving.WarningDedupWindow
	if window <= 0 {
		window = time.Minute
	}
	self.seen = cache.New(window, 2*window)
	return
}

func (self *Recorder) WithValidator(validator *Validator) *Recorder {
	self.validator = validator
	return self
}

func (self *Recorder) WithGateway(gateway soroban.Gateway) *Recorder {
	self.gateway = gateway
	return self
}

func (self *Recorder) WithSigner(signer soroban.Signer) *Recorder {
	self.signer = signer
	return self
}

func (self *Recorder) WithMonitor(monitor monitoring.Monitor) *Recorder {
	self.report = monitor.GetReport().Serving
	return self
}

func (self *Recorder) WithWarningChannel(v chan *model.ServingWarning) *Recorder {
	self.warnings = v
	return self
}

// Validates and calls record_view(campaign_id, publisher) on the orchestrator
func (self *Recorder) RecordView(ctx context.Context, campaignId uint64, publisher string) (decision *Decision, out *soroban.SubmitResult, err error) {
	err = self.checkSigner(publisher)
	if err != nil {
		return
	}

	decision, err = self.Validate(ctx, campaignId, publisher)
	if err != nil {
		return
	}

	publisherAddress, err := soroban.Address(publisher)
	if err != nil {
		return
	}

	out, err = self.gateway.Submit(ctx, self.contracts.Orchestrator, "record_view", self.signer,
		soroban.U64(campaignId),
		publisherAddress,
	)
	if err != nil {
		self.report.Errors.RecordFailures.Inc()
		self.log.WithError(err).WithField("campaign_id", campaignId).Error("Failed to record view")
		return
	}

	self.report.State.ViewsRecorded.Inc()
	return
}

// Validates and calls record_click(caller, campaign_id) on the analytics contract. The publisher is the caller.
func (self *Recorder) RecordClick(ctx context.Context, campaignId uint64, publisher string) (decision *Decision, out *soroban.SubmitResult, err error) {
	err = self.checkSigner(publisher)
	if err != nil {
		return
	}

	decision, err = self.Validate(ctx, campaignId, publisher)
	if err != nil {
		return
	}

	caller, err := soroban.Address(publisher)
	if err != nil {
		return
	}

	out, err = self.gateway.Submit(ctx, self.contracts.Analytics, "record_click", self.signer,
		caller,
		soroban.U64(campaignId),
	)
	if err != nil {
		self.report.Errors.RecordFailures.Inc()
		self.log.WithError(err).WithField("campaign_id", campaignId).Error("Failed to record click")
		return
	}

	self.report.State.ClicksRecorded.Inc()
	return
}

// Contracts only accept the publisher's own signature
func (self *Recorder) checkSigner(publisher string) error {
	if self.signer == nil {
		return soroban.ErrSignerRequired
	}
	if publisher != self.signer.Address() {
		return fmt.Errorf("%w: %s", ErrPublisherMismatch, publisher)
	}
	return nil
}

// Runs the validator and stores its warnings
func (self *Recorder) Validate(ctx context.Context, campaignId uint64, publisher string) (decision *Decision, err error) {
	decision, err = self.validator.ValidateServing(ctx, campaignId, publisher)
	if err != nil {
		return
	}
	self.storeWarnings(decision)
	return
}

func (self *Recorder) storeWarnings(decision *Decision) {
	if self.warnings == nil {
		return
	}

	for _, w := range decision.Warnings {
		key := fmt.Sprintf("%d/%s/%s", decision.CampaignId, decision.Publisher, w.Reason)
		if self.seen.Add(key, struct{}{}, cache.DefaultExpiration) != nil {
			// Stored recently
			continue
		}

		warning, err := newServingWarning(decision, &w)
		if err != nil {
			self.log.WithError(err).Error("Failed to build warning")
			continue
		}

		select {
		case self.warnings <- warning:
		default:
			self.report.Errors.StoreFailures.Inc()
			self.log.WithField("reason", w.Reason).Warn("Warning queue full, dropping warning")
		}
	}
}

func newServingWarning(decision *Decision, w *Warning) (out *model.ServingWarning, err error) {
	out = &model.ServingWarning{
		CampaignId: decision.CampaignId,
		Publisher:  decision.Publisher,
		Reason:     w.Reason,
		Message:    w.Message,
		CreatedAt:  time.Now().UTC(),
	}

	details := make(map[string]any)
	if w.Score != nil {
		details["score"] = *w.Score
	}
	if w.Minimum != nil {
		details["minimum"] = *w.Minimum
	}
	if w.Segment != "" {
		details["segment"] = w.Segment
	}

	out.Details = pgtype.JSONB{}
	err = out.Details.Set(details)
	return
}
