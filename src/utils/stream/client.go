package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/logger"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
)

type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateGaveUp
)

func (self State) String() string {
	switch self {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateGaveUp:
		return "gave_up"
	}
	return fmt.Sprintf("state(%d)", int32(self))
}

// Called synchronously from the connection goroutine. Must not block.
type Handler func(event *Event)

type subscription struct {
	id        xid.ID
	eventType EventType
	handler   Handler
	active    atomic.Bool
}

// Maintains one websocket connection to the event indexer and fans out validated events.
// Lost connections are retried with a fixed delay, up to a configured number of attempts.
type Client struct {
	config *config.EventStream
	log    *logrus.Entry
	report *report.StreamReport

	// Subscribers, in registration order
	subMtx        sync.RWMutex
	subscriptions []*subscription

	// Connection state
	mtx        sync.Mutex
	state      State
	generation uint64
	conn       *websocket.Conn
	cancelConn context.CancelFunc
	retryTimer *time.Timer
	backoff    backoff.BackOff
	attempts   int

	onGaveUp func()
}

func NewClient(config *config.EventStream) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("event-stream")
	self.report = &report.StreamReport{}
	self.backoff = backoff.WithMaxRetries(backoff.NewConstantBackOff(config.ReconnectDelay), uint64(max(config.MaxReconnectAttempts, 0)))
	return
}

func (self *Client) WithMonitor(monitor monitoring.Monitor) *Client {
	self.report = monitor.GetReport().Stream
	return self
}

// Called once automatic reconnection is exhausted
func (self *Client) WithOnGaveUp(f func()) *Client {
	self.onGaveUp = f
	return self
}

func (self *Client) State() State {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.state
}

// Automatic reconnection attempts since the last successful connection
func (self *Client) Attempts() int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.attempts
}

// Registers a handler for one event type or Wildcard. The returned function unsubscribes, calling it again is a no-op.
func (self *Client) Subscribe(eventType EventType, handler Handler) (unsubscribe func()) {
	sub := &subscription{
		id:        xid.New(),
		eventType: eventType,
		handler:   handler,
	}
	sub.active.Store(true)

	self.subMtx.Lock()
	self.subscriptions = append(self.subscriptions, sub)
	self.subMtx.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)

			self.subMtx.Lock()
			defer self.subMtx.Unlock()
			for i, s := range self.subscriptions {
				if s.id == sub.id {
					self.subscriptions = append(self.subscriptions[:i:i], self.subscriptions[i+1:]...)
					break
				}
			}
		})
	}
}

// Opens the connection. Resets the attempt counter, also after the client gave up.
// On failure automatic reconnection is scheduled and the dial error is returned.
func (self *Client) Connect(ctx context.Context) error {
	self.mtx.Lock()
	if self.state == StateConnected || self.state == StateConnecting {
		self.mtx.Unlock()
		return nil
	}
	self.stopRetry()
	self.backoff.Reset()
	self.attempts = 0
	self.report.State.GaveUp.Store(false)
	generation := self.beginAttempt()
	self.mtx.Unlock()

	return self.dial(ctx, generation)
}

// Closes the connection. No reconnection follows until Connect is called.
func (self *Client) Disconnect() {
	self.mtx.Lock()
	// Pending retry has to be stopped before the transport is closed
	self.stopRetry()
	self.generation++
	conn, cancel := self.conn, self.cancelConn
	self.conn, self.cancelConn = nil, nil
	self.state = StateDisconnected
	self.mtx.Unlock()

	self.report.State.Connected.Store(false)

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		self.log.Info("Disconnected")
	}
}

// Must be called with mtx held
func (self *Client) stopRetry() {
	if self.retryTimer != nil {
		self.retryTimer.Stop()
		self.retryTimer = nil
	}
}

// Must be called with mtx held. Concurrent Connect calls see the attempt and return early.
func (self *Client) beginAttempt() uint64 {
	self.generation++
	self.state = StateConnecting
	return self.generation
}

func (self *Client) dial(ctx context.Context, generation uint64) (err error) {
	dialCtx, cancel := context.WithTimeout(ctx, self.config.DialTimeout)
	conn, _, err := websocket.Dial(dialCtx, self.config.Url, nil)
	cancel()

	self.mtx.Lock()
	if generation != self.generation {
		// Disconnect or another Connect happened in the meantime
		state := self.state
		self.mtx.Unlock()
		if conn != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
		}
		if state == StateConnecting || state == StateConnected {
			// Newer attempt is in charge
			return nil
		}
		return errors.New("connection attempt superseded")
	}

	if err != nil {
		self.state = StateDisconnected
		gaveUp := self.scheduleReconnect(generation)
		self.mtx.Unlock()

		self.report.Errors.DialFailures.Inc()
		self.log.WithError(err).WithField("url", self.config.Url).Warn("Failed to connect")
		self.deliver(newErrorEvent(err))
		if gaveUp {
			self.giveUp()
		}
		return
	}

	if self.config.MaxMessageSize > 0 {
		conn.SetReadLimit(self.config.MaxMessageSize)
	}

	connCtx, cancelConn := context.WithCancel(context.Background())
	self.conn = conn
	self.cancelConn = cancelConn
	self.state = StateConnected
	self.backoff.Reset()
	self.attempts = 0
	self.mtx.Unlock()

	self.report.State.Connected.Store(true)
	self.report.State.GaveUp.Store(false)
	self.report.State.Connections.Inc()
	self.log.WithField("url", self.config.Url).Info("Connected")

	// Subscribers learn about the connection before any event sent through it
	self.deliver(newConnectedEvent())

	go self.read(connCtx, conn, generation)

	return nil
}

func (self *Client) read(ctx context.Context, conn *websocket.Conn, generation uint64) {
	for {
		messageType, data, err := conn.Read(ctx)
		if err != nil {
			self.onTransportError(generation, err)
			return
		}

		self.report.State.MessagesReceived.Inc()

		if messageType != websocket.MessageText {
			self.report.Errors.InvalidMessages.Inc()
			self.log.Debug("Dropping binary frame")
			continue
		}

		event, err := ParseEvent(data)
		if err != nil {
			self.report.Errors.InvalidMessages.Inc()
			self.log.WithError(err).Debug("Dropping invalid frame")
			continue
		}

		self.deliver(event)
	}
}

func (self *Client) onTransportError(generation uint64, err error) {
	self.mtx.Lock()
	if generation != self.generation || self.state != StateConnected {
		// Closed on purpose
		self.mtx.Unlock()
		return
	}
	conn, cancel := self.conn, self.cancelConn
	self.conn, self.cancelConn = nil, nil
	self.state = StateDisconnected
	self.mtx.Unlock()

	cancel()
	_ = conn.Close(websocket.StatusGoingAway, "")

	self.report.State.Connected.Store(false)
	self.report.Errors.TransportErrors.Inc()
	self.log.WithError(err).Warn("Connection lost")

	self.deliver(newErrorEvent(err))

	self.mtx.Lock()
	if generation != self.generation {
		// Disconnect was called from a handler
		self.mtx.Unlock()
		return
	}
	gaveUp := self.scheduleReconnect(generation)
	self.mtx.Unlock()

	if gaveUp {
		self.giveUp()
	}
}

// Must be called with mtx held. Returns true if there are no attempts left.
func (self *Client) scheduleReconnect(generation uint64) (gaveUp bool) {
	delay := self.backoff.NextBackOff()
	if delay == backoff.Stop {
		self.state = StateGaveUp
		return true
	}

	self.attempts++
	self.log.WithField("attempt", self.attempts).WithField("delay", delay).Info("Scheduling reconnect")
	self.retryTimer = time.AfterFunc(delay, func() {
		self.mtx.Lock()
		if generation != self.generation || self.state != StateDisconnected {
			self.mtx.Unlock()
			return
		}
		self.retryTimer = nil
		next := self.beginAttempt()
		self.mtx.Unlock()

		self.report.State.ReconnectAttempts.Inc()
		_ = self.dial(context.Background(), next)
	})
	return false
}

func (self *Client) giveUp() {
	self.report.State.GaveUp.Store(true)
	self.log.WithField("attempts", self.config.MaxReconnectAttempts).Error("Giving up reconnecting, manual connect required")
	if self.onGaveUp != nil {
		self.onGaveUp()
	}
}

func (self *Client) deliver(event *Event) {
	self.subMtx.RLock()
	targets := make([]*subscription, 0, len(self.subscriptions))
	for _, sub := range self.subscriptions {
		if sub.eventType == Wildcard || sub.eventType == event.Type {
			targets = append(targets, sub)
		}
	}
	self.subMtx.RUnlock()

	for _, sub := range targets {
		if !sub.active.Load() {
			continue
		}
		self.invoke(sub, event)
	}

	self.report.State.EventsDelivered.Inc()
}

// A panicking handler doesn't affect other subscribers
func (self *Client) invoke(sub *subscription, event *Event) {
	defer func() {
		if p := recover(); p != nil {
			self.log.WithField("type", event.Type).WithField("panic", p).Error("Event handler panicked")
		}
	}()
	sub.handler(event)
}
