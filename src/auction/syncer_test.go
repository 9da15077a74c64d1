package auction

import (
	"context"
	"testing"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/stream"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSyncerTestSuite(t *testing.T) {
	suite.Run(t, new(SyncerTestSuite))
}

type SyncerTestSuite struct {
	suite.Suite
	ctx     context.Context
	config  *config.Config
	gateway *fakeGateway
	arena   *Arena
	syncer  *Syncer
}

func (s *SyncerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.config.Contracts.Auction = "CAUCTION"
	s.config.Auction.TrackedAuctions = []uint64{}

	s.gateway = newFakeGateway()
	s.arena = NewArena()
	s.syncer = NewSyncer(s.config).
		WithArena(s.arena).
		WithGateway(s.gateway).
		WithOutput(10)
}

func (s *SyncerTestSuite) nextUpdate() *AuctionUpdate {
	select {
	case update := <-s.syncer.Output:
		return update
	default:
		s.T().Fatal("no update published")
		return nil
	}
}

func (s *SyncerTestSuite) requireNoUpdate() {
	select {
	case update := <-s.syncer.Output:
		s.T().Fatalf("unexpected update: %+v", update)
	default:
	}
}

func createdEvent(id uint64) *stream.Event {
	return &stream.Event{
		Type: stream.EventTypeAuctionCreated,
		Payload: &stream.AuctionCreated{
			AuctionId:      id,
			Publisher:      "GPUBLISHER",
			ImpressionSlot: "banner-top",
			FloorPrice:     100,
			ReservePrice:   200,
			StartTime:      1000,
			EndTime:        4600,
		},
	}
}

func (s *SyncerTestSuite) TestEventsUpdateArena() {
	s.syncer.onAuctionCreated(createdEvent(1))
	update := s.nextUpdate()
	require.Equal(s.T(), UpdateReasonCreated, update.Reason)
	require.Equal(s.T(), model.AuctionStatusOpen, update.Auction.Status)

	s.syncer.onBidPlaced(bidEvent(1, "GA", 150))
	update = s.nextUpdate()
	require.Equal(s.T(), UpdateReasonBid, update.Reason)
	require.Equal(s.T(), int64(150), *update.Auction.HighestBid)

	s.syncer.onAuctionSettled(settledEvent(1, "GA", 150))
	update = s.nextUpdate()
	require.Equal(s.T(), UpdateReasonSettled, update.Reason)
	require.Equal(s.T(), model.AuctionStatusSettled, update.Auction.Status)

	// Terminal
	s.syncer.onBidPlaced(bidEvent(1, "GB", 500))
	s.requireNoUpdate()

	// Duplicate creation
	s.syncer.onAuctionCreated(createdEvent(1))
	s.requireNoUpdate()

	require.Zero(s.T(), s.gateway.callCount())
}

func (s *SyncerTestSuite) TestUnknownAuctionIsRefreshed() {
	s.gateway.setAuction(3, "Open", 4, ptr("GB"), ptr(int64(800)))

	s.syncer.onBidPlaced(bidEvent(3, "GB", 800))
	s.requireNoUpdate()
	require.Zero(s.T(), s.gateway.callCount())

	// Handler asked for a refresh
	select {
	case <-s.syncer.refresh:
	default:
		s.T().Fatal("refresh not requested")
	}

	s.syncer.Refresh(s.ctx)
	update := s.nextUpdate()
	require.Equal(s.T(), UpdateReasonSnapshot, update.Reason)
	require.Equal(s.T(), uint32(4), update.Auction.BidCount)

	auction, ok := s.arena.Get(3)
	require.True(s.T(), ok)
	require.Equal(s.T(), int64(800), *auction.HighestBid)

	// Pending list was consumed and nothing changed since
	s.syncer.Refresh(s.ctx)
	s.requireNoUpdate()
}

func (s *SyncerTestSuite) TestRefreshSkipsTerminalAuctions() {
	s.syncer.onAuctionCreated(createdEvent(1))
	s.syncer.onAuctionSettled(&stream.Event{
		Type:    stream.EventTypeAuctionSettled,
		Payload: &stream.AuctionSettled{AuctionId: 1},
	})
	s.nextUpdate()
	s.nextUpdate()

	s.syncer.Refresh(s.ctx)
	require.Zero(s.T(), s.gateway.callCount())
}

func (s *SyncerTestSuite) TestRefreshReadsTrackedAuctions() {
	s.syncer.tracked = []uint64{5, 6}
	s.gateway.setAuction(5, "Open", 0, nil, nil)

	s.syncer.Refresh(s.ctx)
	require.Equal(s.T(), 2, s.gateway.callCount())

	_, ok := s.arena.Get(5)
	require.True(s.T(), ok)
	_, ok = s.arena.Get(6)
	require.False(s.T(), ok)
}

func (s *SyncerTestSuite) TestConnectedRequestsRefreshOnce() {
	s.syncer.onConnected(&stream.Event{Type: stream.EventTypeConnected})
	s.syncer.onConnected(&stream.Event{Type: stream.EventTypeConnected})

	require.Len(s.T(), s.syncer.refresh, 1)
}

func (s *SyncerTestSuite) TestFullQueueDropsUpdates() {
	syncer := NewSyncer(s.config).
		WithArena(s.arena).
		WithGateway(s.gateway).
		WithOutput(1)

	syncer.onAuctionCreated(createdEvent(1))
	syncer.onAuctionCreated(createdEvent(2))

	require.Len(s.T(), syncer.Output, 1)
	require.Equal(s.T(), uint64(1), syncer.report.Errors.UpdatesDropped.Load())
}
