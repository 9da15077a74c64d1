package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuctionCloneIsDeep(t *testing.T) {
	bid, bidder := int64(150), "GA"
	auction := &Auction{Id: 1, Status: AuctionStatusOpen, HighestBid: &bid, HighestBidder: &bidder}

	clone := auction.Clone()
	*clone.HighestBid = 300
	*clone.HighestBidder = "GB"

	require.Equal(t, int64(150), *auction.HighestBid)
	require.Equal(t, "GA", *auction.HighestBidder)
	require.Nil(t, clone.WinningBid)

	var empty *Auction
	require.Nil(t, empty.Clone())
}

func TestAuctionStatusIsTerminal(t *testing.T) {
	require.False(t, AuctionStatusOpen.IsTerminal())
	require.True(t, AuctionStatusSettled.IsTerminal())
	require.True(t, AuctionStatusCancelled.IsTerminal())
}

func TestTimeRemaining(t *testing.T) {
	auction := &Auction{StartTime: 100, EndTime: 200}
	require.Equal(t, 50*time.Second, auction.TimeRemaining(time.Unix(150, 0)))
	require.Zero(t, auction.TimeRemaining(time.Unix(200, 0)))
	require.Zero(t, auction.TimeRemaining(time.Unix(500, 0)))
}

func TestSplitList(t *testing.T) {
	require.Equal(t, []string{"a", "b", "c"}, SplitList(" a,b ,, c,"))
	require.Empty(t, SplitList(""))
	require.Empty(t, SplitList(" , "))
}

func TestEscrowBlocksRelease(t *testing.T) {
	require.True(t, EscrowStateDisputed.BlocksRelease())
	require.False(t, EscrowStateActive.BlocksRelease())
}
