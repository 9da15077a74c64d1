package auction

import (
	"context"
	"testing"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/soroban"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestBidderTestSuite(t *testing.T) {
	suite.Run(t, new(BidderTestSuite))
}

type BidderTestSuite struct {
	suite.Suite
	ctx     context.Context
	config  *config.Config
	gateway *fakeGateway
	arena   *Arena
	signer  *soroban.KeypairSigner
	bidder  *Bidder
}

func (s *BidderTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.config = config.Default()
	s.config.Contracts.Auction = "CAUCTION"

	rules, err := NewRules(&s.config.Auction)
	require.Nil(s.T(), err)

	s.gateway = newFakeGateway()
	s.arena = NewArena()
	s.signer = newTestSigner()
	s.bidder = NewBidder(s.config).
		WithRules(rules).
		WithArena(s.arena).
		WithGateway(s.gateway).
		WithSigner(s.signer)
}

func (s *BidderTestSuite) TestRejectedBidIsNotSubmitted() {
	s.arena.Create(withLeader(openAuction(100, 200), "GA", 1000))

	_, err := s.bidder.PlaceBid(s.ctx, &model.Bid{AuctionId: 1, Amount: 1049, CampaignId: 9})
	requireBidError(s.T(), err, ErrBelowMinIncrement, 1050)
	require.Empty(s.T(), s.gateway.submitted())
}

func (s *BidderTestSuite) TestAcceptedBidIsSubmittedOnce() {
	s.arena.Create(withLeader(openAuction(100, 200), "GA", 1000))

	bid := &model.Bid{AuctionId: 1, Amount: 1050, CampaignId: 9}
	result, err := s.bidder.PlaceBid(s.ctx, bid)
	require.Nil(s.T(), err)
	require.Equal(s.T(), "abc", result.Hash)
	require.Equal(s.T(), s.signer.Address(), bid.Bidder)
	require.Equal(s.T(), uint64(77), bid.SubmittedAt)

	calls := s.gateway.submitted()
	require.Len(s.T(), calls, 1)
	require.Equal(s.T(), "CAUCTION", calls[0].contractId)
	require.Equal(s.T(), "place_bid", calls[0].method)
	require.Equal(s.T(), s.signer.Address(), calls[0].signer)

	args := calls[0].args
	require.Len(s.T(), args, 4)
	bidder, err := soroban.ToNative(args[0])
	require.Nil(s.T(), err)
	require.Equal(s.T(), s.signer.Address(), bidder)
	require.Equal(s.T(), uint64(1), uint64(args[1].MustU64()))
	amount, err := soroban.ToNative(args[2])
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1050), amount)
	require.Equal(s.T(), uint64(9), uint64(args[3].MustU64()))

	// Local state waits for the confirmed event
	auction, _ := s.arena.Get(1)
	require.Equal(s.T(), int64(1000), *auction.HighestBid)
}

func (s *BidderTestSuite) TestUnknownAuctionIsReadFromLedger() {
	s.gateway.setAuction(1, "Open", 1, ptr("GA"), ptr(int64(150)))

	auction, err := s.bidder.ValidateBid(s.ctx, 1, 155)
	requireBidError(s.T(), err, ErrBelowMinIncrement, 158)
	require.Equal(s.T(), uint64(1), auction.Id)
	require.Equal(s.T(), 1, s.gateway.callCount())

	// Cached in the arena now
	_, err = s.bidder.ValidateBid(s.ctx, 1, 200)
	require.Nil(s.T(), err)
	require.Equal(s.T(), 1, s.gateway.callCount())
}

func (s *BidderTestSuite) TestMissingAuction() {
	_, err := s.bidder.PlaceBid(s.ctx, &model.Bid{AuctionId: 5, Amount: 1000})
	require.ErrorIs(s.T(), err, ErrAuctionNotFound)
	require.Empty(s.T(), s.gateway.submitted())
}

func (s *BidderTestSuite) TestSettledAuction() {
	s.gateway.setAuction(1, "Settled", 1, ptr("GA"), ptr(int64(150)))

	_, err := s.bidder.PlaceBid(s.ctx, &model.Bid{AuctionId: 1, Amount: 1000})
	requireBidError(s.T(), err, ErrAuctionNotOpen, 0)
}

func (s *BidderTestSuite) TestSignerRequired() {
	s.arena.Create(openAuction(100, 200))

	_, err := s.bidder.WithSigner(nil).PlaceBid(s.ctx, &model.Bid{AuctionId: 1, Amount: 150})
	require.ErrorIs(s.T(), err, soroban.ErrSignerRequired)
	require.Empty(s.T(), s.gateway.submitted())
}

func (s *BidderTestSuite) TestBidderMustSign() {
	s.arena.Create(openAuction(100, 200))

	other := newTestSigner()
	_, err := s.bidder.PlaceBid(s.ctx, &model.Bid{AuctionId: 1, Amount: 150, Bidder: other.Address()})
	require.ErrorIs(s.T(), err, ErrBidderMismatch)
	require.Empty(s.T(), s.gateway.submitted())
}
