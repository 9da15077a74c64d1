package auction

import (
	"context"
	"errors"
	"sync"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/soroban"
	"github.com/pulsartrack/syncer/src/utils/stream"
	"github.com/pulsartrack/syncer/src/utils/task"
)

// Keeps the arena in line with the ledger.
// Stream handlers only merge events and signal the refresher, ledger reads happen in the refresher.
type Syncer struct {
	*task.Task

	report  *report.AuctionReport
	arena   *Arena
	gateway soroban.Gateway
	stream  *stream.Client

	contractId string

	// Auctions re-read on every refresh, besides those in the arena
	tracked []uint64

	// Unknown auctions seen in events, read on the next refresh
	pendingMtx sync.Mutex
	pending    map[uint64]struct{}

	// Coalesced refresh requests
	refresh chan struct{}

	unsubscribe []func()

	// Changes for the publisher, nil disables publishing
	Output chan *AuctionUpdate
}

func NewSyncer(config *config.Config) (self *Syncer) {
	self = new(Syncer)
	self.report = &report.AuctionReport{}
	self.contractId = config.Contracts.Auction
	self.tracked = config.Auction.TrackedAuctions
	self.pending = make(map[uint64]struct{})
	self.refresh = make(chan struct{}, 1)

	self.Task = task.NewTask(config, "auction-syncer").
		WithOnBeforeStart(self.subscribe).
		WithSubtaskFunc(self.runRefresher).
		WithCronSubtaskFunc(config.Auction.ReconcileSchedule, self.RequestRefresh).
		WithOnStop(self.unsubscribeAll)

	return
}

func (self *Syncer) WithArena(arena *Arena) *Syncer {
	self.arena = arena
	return self
}

func (self *Syncer) WithGateway(gateway soroban.Gateway) *Syncer {
	self.gateway = gateway
	return self
}

func (self *Syncer) WithStream(client *stream.Client) *Syncer {
	self.stream = client
	return self
}

func (self *Syncer) WithMonitor(monitor monitoring.Monitor) *Syncer {
	self.report = monitor.GetReport().Auction
	return self
}

func (self *Syncer) WithOutput(size int) *Syncer {
	self.Output = make(chan *AuctionUpdate, size)
	return self
}

func (self *Syncer) subscribe() error {
	self.unsubscribe = append(self.unsubscribe,
		self.stream.Subscribe(stream.EventTypeConnected, self.onConnected),
		self.stream.Subscribe(stream.EventTypeAuctionCreated, self.onAuctionCreated),
		self.stream.Subscribe(stream.EventTypeBidPlaced, self.onBidPlaced),
		self.stream.Subscribe(stream.EventTypeAuctionSettled, self.onAuctionSettled),
	)

	// Initial load
	self.RequestRefresh()
	return nil
}

func (self *Syncer) unsubscribeAll() {
	for _, f := range self.unsubscribe {
		f()
	}
}

// Schedules a re-read of all known auctions. Never blocks.
func (self *Syncer) RequestRefresh() {
	select {
	case self.refresh <- struct{}{}:
	default:
		// Already requested
	}
}

// Events might have been missed while disconnected
func (self *Syncer) onConnected(event *stream.Event) {
	self.RequestRefresh()
}

func (self *Syncer) onAuctionCreated(event *stream.Event) {
	payload := event.Payload.(*stream.AuctionCreated)
	auction := FromCreated(payload)
	if !self.arena.Create(auction) {
		self.report.State.EventsIgnored.Inc()
		return
	}
	self.report.State.EventsApplied.Inc()
	self.report.State.TrackedAuctions.Store(int64(self.arena.Len()))
	self.Log.WithField("auction_id", auction.Id).Info("Auction created")
	self.publish(UpdateReasonCreated, auction, event.TxHash)
}

func (self *Syncer) onBidPlaced(event *stream.Event) {
	self.applyEvent(event.Payload.(*stream.BidPlaced).AuctionId, UpdateReasonBid, event)
}

func (self *Syncer) onAuctionSettled(event *stream.Event) {
	self.applyEvent(event.Payload.(*stream.AuctionSettled).AuctionId, UpdateReasonSettled, event)
}

func (self *Syncer) applyEvent(id uint64, reason UpdateReason, event *stream.Event) {
	if _, ok := self.arena.Get(id); !ok {
		// Created before we started listening, the ledger read includes this event
		self.pendingMtx.Lock()
		self.pending[id] = struct{}{}
		self.pendingMtx.Unlock()
		self.RequestRefresh()
		return
	}

	auction, changed := self.arena.ApplyEvent(id, event)
	if !changed {
		self.report.State.EventsIgnored.Inc()
		return
	}
	self.report.State.EventsApplied.Inc()
	self.publish(reason, auction, event.TxHash)
}

// Drops the update if the publisher can't keep up, the next refresh catches up anyway
func (self *Syncer) publish(reason UpdateReason, auction *model.Auction, txHash *string) {
	if self.Output == nil {
		return
	}
	select {
	case self.Output <- &AuctionUpdate{Reason: reason, Auction: auction, TxHash: txHash}:
	default:
		self.report.Errors.UpdatesDropped.Inc()
		self.Log.WithField("auction_id", auction.Id).Warn("Update queue full, dropping update")
	}
}

func (self *Syncer) runRefresher() error {
	for {
		select {
		case <-self.StopChannel:
			return nil
		case <-self.refresh:
			self.Refresh(self.Ctx)
		}
	}
}

// Ids read during a refresh
func (self *Syncer) refreshIds() []uint64 {
	ids := self.arena.Ids()
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	add := func(id uint64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, id := range self.tracked {
		add(id)
	}

	self.pendingMtx.Lock()
	for id := range self.pending {
		add(id)
	}
	self.pending = make(map[uint64]struct{})
	self.pendingMtx.Unlock()

	return ids
}

// Re-reads every known auction from the ledger and merges it into the arena
func (self *Syncer) Refresh(ctx context.Context) {
	if self.contractId == "" {
		return
	}

	self.report.State.Refreshes.Inc()

	for _, id := range self.refreshIds() {
		if ctx.Err() != nil {
			return
		}

		if current, ok := self.arena.Get(id); ok && current.Status.IsTerminal() {
			// Nothing changes after settlement
			continue
		}

		ledger, err := FetchAuction(ctx, self.gateway, self.contractId, id)
		if err != nil {
			if errors.Is(err, ErrAuctionNotFound) {
				self.Log.WithField("auction_id", id).Debug("Auction doesn't exist on the ledger")
				continue
			}
			self.report.Errors.RefreshFailures.Inc()
			self.Log.WithError(err).WithField("auction_id", id).Warn("Failed to read auction")
			continue
		}

		auction, changed := self.arena.ApplySnapshot(ledger)
		if !changed {
			continue
		}
		self.report.State.SnapshotsApplied.Inc()
		self.publish(UpdateReasonSnapshot, auction, nil)
	}

	self.report.State.TrackedAuctions.Store(int64(self.arena.Len()))
}
