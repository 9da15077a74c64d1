package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"nhooyr.io/websocket"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.config = config.Default()
}

func (s *ClientTestSuite) TearDownSuite() {
	s.cancel()
}

// Collects delivered events
type recorder struct {
	mtx    sync.Mutex
	events []*Event
}

func (self *recorder) handle(event *Event) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.events = append(self.events, event)
}

func (self *recorder) types() (out []EventType) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	for _, e := range self.events {
		out = append(out, e.Type)
	}
	return
}

func (self *recorder) len() int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return len(self.events)
}

// Websocket server running handle for every accepted connection
func newServer(handle func(ctx context.Context, conn *websocket.Conn, n int)) (server *httptest.Server, connections *atomic.Int32) {
	connections = new(atomic.Int32)
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		handle(r.Context(), conn, int(connections.Add(1)))
	}))
	return
}

// Blocks until the client goes away
func waitForClose(ctx context.Context, conn *websocket.Conn) {
	for {
		_, _, err := conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

func send(ctx context.Context, conn *websocket.Conn, frames ...string) {
	for _, frame := range frames {
		_ = conn.Write(ctx, websocket.MessageText, []byte(frame))
	}
}

func (s *ClientTestSuite) newClient(url string, attempts int, delay time.Duration) *Client {
	streamConfig := s.config.EventStream
	streamConfig.Url = "ws" + strings.TrimPrefix(url, "http")
	streamConfig.MaxReconnectAttempts = attempts
	streamConfig.ReconnectDelay = delay
	streamConfig.DialTimeout = time.Second
	return NewClient(&streamConfig)
}

const validBid = `{"type":"bid_placed","data":{"auctionId":1,"bidder":"GA","amount":1500},"timestamp":1700000000}`

func (s *ClientTestSuite) TestMalformedFramesAreDropped() {
	server, _ := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		send(ctx, conn,
			`not json`,
			`{"type":"bid_placed","data":{"auctionId":1},"timestamp":1}`,
			`{"type":"unknown_event","data":{},"timestamp":1}`,
			`{"type":"connected","data":{},"timestamp":1}`,
			`{"type":"error","data":{},"timestamp":1}`,
			validBid,
		)
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 50*time.Millisecond)
	all := new(recorder)
	client.Subscribe(Wildcard, all.handle)

	require.Nil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()

	require.Eventually(s.T(), func() bool { return all.len() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(s.T(), []EventType{EventTypeConnected, EventTypeBidPlaced}, all.types())
	require.Equal(s.T(), uint64(5), client.report.Errors.InvalidMessages.Load())
}

func (s *ClientTestSuite) TestTypedSubscription() {
	server, _ := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		send(ctx, conn,
			validBid,
			`{"type":"auction_created","data":{"auctionId":2,"publisher":"GP","impressionSlot":"banner","floorPrice":100,"reservePrice":200,"startTime":1,"endTime":2},"timestamp":1}`,
		)
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 50*time.Millisecond)
	created := new(recorder)
	client.Subscribe(EventTypeAuctionCreated, created.handle)

	require.Nil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()

	require.Eventually(s.T(), func() bool { return created.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(s.T(), []EventType{EventTypeAuctionCreated}, created.types())
}

func (s *ClientTestSuite) TestOneConnectedEventPerConnection() {
	server, _ := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 50*time.Millisecond)
	all := new(recorder)
	client.Subscribe(Wildcard, all.handle)

	require.Nil(s.T(), client.Connect(s.ctx))
	require.Equal(s.T(), StateConnected, client.State())

	// Already connected
	require.Nil(s.T(), client.Connect(s.ctx))

	client.Disconnect()
	require.Equal(s.T(), StateDisconnected, client.State())

	require.Nil(s.T(), client.Connect(s.ctx))
	client.Disconnect()

	time.Sleep(100 * time.Millisecond)
	require.Equal(s.T(), []EventType{EventTypeConnected, EventTypeConnected}, all.types())
}

func (s *ClientTestSuite) TestReconnectAfterTransportError() {
	server, connections := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		if n == 1 {
			// Dropping the first connection
			_ = conn.Close(websocket.StatusInternalError, "restarting")
			return
		}
		send(ctx, conn, validBid)
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 20*time.Millisecond)
	all := new(recorder)
	client.Subscribe(Wildcard, all.handle)

	require.Nil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()

	require.Eventually(s.T(), func() bool { return all.len() == 4 }, 2*time.Second, 10*time.Millisecond)
	require.Equal(s.T(), []EventType{EventTypeConnected, EventTypeError, EventTypeConnected, EventTypeBidPlaced}, all.types())
	require.Equal(s.T(), int32(2), connections.Load())
	require.Equal(s.T(), 0, client.Attempts())
}

func (s *ClientTestSuite) TestGivesUpAfterMaxAttempts() {
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var gaveUp atomic.Int32
	client := s.newClient(server.URL, 3, 10*time.Millisecond).
		WithOnGaveUp(func() { gaveUp.Add(1) })
	all := new(recorder)
	client.Subscribe(Wildcard, all.handle)

	require.NotNil(s.T(), client.Connect(s.ctx))

	require.Eventually(s.T(), func() bool { return gaveUp.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(s.T(), StateGaveUp, client.State())
	require.Equal(s.T(), int32(4), dials.Load())

	// Every failed attempt is reported to subscribers
	require.Equal(s.T(), []EventType{EventTypeError, EventTypeError, EventTypeError, EventTypeError}, all.types())
	require.True(s.T(), client.report.State.GaveUp.Load())

	// Nothing happens without a manual connect
	time.Sleep(100 * time.Millisecond)
	require.Equal(s.T(), int32(4), dials.Load())

	// Manual connect starts over with a fresh budget
	require.NotNil(s.T(), client.Connect(s.ctx))
	require.Eventually(s.T(), func() bool { return gaveUp.Load() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(s.T(), int32(8), dials.Load())
}

func (s *ClientTestSuite) TestDisconnectCancelsPendingRetry() {
	var dials atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := s.newClient(server.URL, 3, 100*time.Millisecond)
	require.NotNil(s.T(), client.Connect(s.ctx))
	require.Equal(s.T(), 1, client.Attempts())

	client.Disconnect()
	time.Sleep(300 * time.Millisecond)

	require.Equal(s.T(), int32(1), dials.Load())
	require.Equal(s.T(), StateDisconnected, client.State())
}

func (s *ClientTestSuite) TestConnectDuringRetryJoinsTheAttempt() {
	var dials atomic.Int32
	var connections atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dials.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		// Keeps the retry in flight for a while
		time.Sleep(200 * time.Millisecond)
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		connections.Add(1)
		waitForClose(r.Context(), conn)
	}))
	defer server.Close()

	client := s.newClient(server.URL, 3, 10*time.Millisecond)
	require.NotNil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()

	require.Eventually(s.T(), func() bool { return dials.Load() == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(s.T(), StateConnecting, client.State())

	// Retry is already dialing
	require.Nil(s.T(), client.Connect(s.ctx))

	require.Eventually(s.T(), func() bool { return client.State() == StateConnected }, 2*time.Second, 10*time.Millisecond)
	require.Equal(s.T(), int32(2), dials.Load())
	require.Equal(s.T(), int32(1), connections.Load())
}

func (s *ClientTestSuite) TestUnsubscribeIsIdempotentAndIsolated() {
	release := make(chan struct{})
	server, _ := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		<-release
		send(ctx, conn, validBid)
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 50*time.Millisecond)
	first, second := new(recorder), new(recorder)
	unsubscribe := client.Subscribe(EventTypeBidPlaced, first.handle)
	client.Subscribe(EventTypeBidPlaced, second.handle)

	unsubscribe()
	unsubscribe()

	require.Nil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()
	close(release)

	require.Eventually(s.T(), func() bool { return second.len() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Zero(s.T(), first.len())
}

func (s *ClientTestSuite) TestPanickingHandlerDoesNotBreakDelivery() {
	server, _ := newServer(func(ctx context.Context, conn *websocket.Conn, n int) {
		send(ctx, conn, validBid, validBid)
		waitForClose(ctx, conn)
	})
	defer server.Close()

	client := s.newClient(server.URL, 3, 50*time.Millisecond)
	client.Subscribe(EventTypeBidPlaced, func(event *Event) { panic("boom") })
	bids := new(recorder)
	client.Subscribe(EventTypeBidPlaced, bids.handle)

	require.Nil(s.T(), client.Connect(s.ctx))
	defer client.Disconnect()

	require.Eventually(s.T(), func() bool { return bids.len() == 2 }, 2*time.Second, 10*time.Millisecond)
}
