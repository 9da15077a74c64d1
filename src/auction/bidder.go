package auction

import (
	"context"
	"fmt"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/logger"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/sirupsen/logrus"
)

// Validates bids locally and submits them to the auction contract.
// Local state isn't touched after submission, the confirmed bid_placed event does that.
type Bidder struct {
	log        *logrus.Entry
	report     *report.AuctionReport
	contractId string

	rules   *Rules
	arena   *Arena
	gateway soroban.Gateway
	signer  soroban.Signer
}

func NewBidder(config *config.Config) (self *Bidder) {
	self = new(Bidder)
	self.log = logger.NewSublogger("bidder")
	self.report = &report.AuctionReport{}
	self.contractId = config.Contracts.Auction
	return
}

func (self *Bidder) WithRules(rules *Rules) *Bidder {
	self.rules = rules
	return self
}

func (self *Bidder) WithArena(arena *Arena) *Bidder {
	self.arena = arena
	return self
}

func (self *Bidder) WithGateway(gateway soroban.Gateway) *Bidder {
	self.gateway = gateway
	return self
}

func (self *Bidder) WithSigner(signer soroban.Signer) *Bidder {
	self.signer = signer
	return self
}

func (self *Bidder) WithMonitor(monitor monitoring.Monitor) *Bidder {
	self.report = monitor.GetReport().Auction
	return self
}

// Auction from the local mirror, read from the ledger if it isn't tracked yet
func (self *Bidder) auction(ctx context.Context, id uint64) (out *model.Auction, err error) {
	out, ok := self.arena.Get(id)
	if ok {
		return
	}

	out, err = FetchAuction(ctx, self.gateway, self.contractId, id)
	if err != nil {
		return
	}

	if merged, changed := self.arena.ApplySnapshot(out); changed {
		out = merged
	}
	return
}

// Checks the bid against the current state. Returns the auction the check was made against.
func (self *Bidder) ValidateBid(ctx context.Context, auctionId uint64, amount int64) (auction *model.Auction, err error) {
	auction, err = self.auction(ctx, auctionId)
	if err != nil {
		return
	}

	err = self.rules.ValidateBid(auction, amount)
	if err != nil {
		self.report.State.BidsRejected.Inc()
		return
	}

	self.report.State.BidsAccepted.Inc()
	return
}

// Validates and submits the bid once. An empty bidder means the signing account.
func (self *Bidder) PlaceBid(ctx context.Context, bid *model.Bid) (out *soroban.SubmitResult, err error) {
	if self.signer == nil {
		return nil, soroban.ErrSignerRequired
	}

	if bid.Bidder == "" {
		bid.Bidder = self.signer.Address()
	}
	if bid.Bidder != self.signer.Address() {
		return nil, fmt.Errorf("%w: %s", ErrBidderMismatch, bid.Bidder)
	}

	_, err = self.ValidateBid(ctx, bid.AuctionId, bid.Amount)
	if err != nil {
		return
	}

	bidder, err := soroban.Address(bid.Bidder)
	if err != nil {
		return
	}

	out, err = self.gateway.Submit(ctx, self.contractId, "place_bid", self.signer,
		bidder,
		soroban.U64(bid.AuctionId),
		soroban.I128(bid.Amount),
		soroban.U64(bid.CampaignId),
	)
	if err != nil {
		self.report.Errors.SubmitFailures.Inc()
		self.log.WithError(err).WithField("auction_id", bid.AuctionId).WithField("amount", bid.Amount).Error("Failed to submit bid")
		return
	}

	self.report.State.BidsSubmitted.Inc()
	bid.SubmittedAt = uint64(out.Ledger)
	self.log.WithField("auction_id", bid.AuctionId).WithField("amount", bid.Amount).WithField("hash", out.Hash).Info("Bid confirmed")
	return
}
