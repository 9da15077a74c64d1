package monitor_sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
)

type metric struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
	value     func() float64
}

type Collector struct {
	monitor *Monitor
	metrics []metric
}

func NewCollector() *Collector {
	return new(Collector)
}

func counter(v *atomic.Uint64) func() float64 {
	return func() float64 { return float64(v.Load()) }
}

func gauge(v *atomic.Int64) func() float64 {
	return func() float64 { return float64(v.Load()) }
}

func flag(v *atomic.Bool) func() float64 {
	return func() float64 {
		if v.Load() {
			return 1
		}
		return 0
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m

	labels := prometheus.Labels{
		"app": "auction_sync",
	}

	r := m.Report
	add := func(name string, valueType prometheus.ValueType, value func() float64) {
		self.metrics = append(self.metrics, metric{
			desc:      prometheus.NewDesc(name, "", nil, labels),
			valueType: valueType,
			value:     value,
		})
	}

	// Run
	add("up_for_seconds", prometheus.GaugeValue, func() float64 { return float64(r.Run.State.UpForSeconds.Load()) })

	// Gateway
	add("gateway_calls", prometheus.CounterValue, counter(&r.Gateway.State.Calls))
	add("gateway_submits", prometheus.CounterValue, counter(&r.Gateway.State.Submits))
	add("gateway_confirmed_submits", prometheus.CounterValue, counter(&r.Gateway.State.ConfirmedSubmits))
	add("gateway_latest_ledger", prometheus.GaugeValue, func() float64 { return float64(r.Gateway.State.LatestLedger.Load()) })
	add("gateway_simulation_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.Simulation))
	add("gateway_empty_result_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.EmptyResult))
	add("gateway_submission_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.Submission))
	add("gateway_transaction_failed_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.TransactionFailed))
	add("gateway_confirmation_timeout_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.ConfirmationTimeout))
	add("gateway_transport_errors", prometheus.CounterValue, counter(&r.Gateway.Errors.Transport))

	// Event stream
	add("stream_connected", prometheus.GaugeValue, flag(&r.Stream.State.Connected))
	add("stream_gave_up", prometheus.GaugeValue, flag(&r.Stream.State.GaveUp))
	add("stream_connections", prometheus.CounterValue, counter(&r.Stream.State.Connections))
	add("stream_reconnect_attempts", prometheus.CounterValue, counter(&r.Stream.State.ReconnectAttempts))
	add("stream_messages_received", prometheus.CounterValue, counter(&r.Stream.State.MessagesReceived))
	add("stream_events_delivered", prometheus.CounterValue, counter(&r.Stream.State.EventsDelivered))
	add("stream_dial_failures", prometheus.CounterValue, counter(&r.Stream.Errors.DialFailures))
	add("stream_transport_errors", prometheus.CounterValue, counter(&r.Stream.Errors.TransportErrors))
	add("stream_invalid_messages", prometheus.CounterValue, counter(&r.Stream.Errors.InvalidMessages))

	// Auctions
	add("auction_tracked", prometheus.GaugeValue, gauge(&r.Auction.State.TrackedAuctions))
	add("auction_events_applied", prometheus.CounterValue, counter(&r.Auction.State.EventsApplied))
	add("auction_events_ignored", prometheus.CounterValue, counter(&r.Auction.State.EventsIgnored))
	add("auction_snapshots_applied", prometheus.CounterValue, counter(&r.Auction.State.SnapshotsApplied))
	add("auction_refreshes", prometheus.CounterValue, counter(&r.Auction.State.Refreshes))
	add("auction_bids_accepted", prometheus.CounterValue, counter(&r.Auction.State.BidsAccepted))
	add("auction_bids_rejected", prometheus.CounterValue, counter(&r.Auction.State.BidsRejected))
	add("auction_bids_submitted", prometheus.CounterValue, counter(&r.Auction.State.BidsSubmitted))
	add("auction_refresh_failures", prometheus.CounterValue, counter(&r.Auction.Errors.RefreshFailures))
	add("auction_submit_failures", prometheus.CounterValue, counter(&r.Auction.Errors.SubmitFailures))
	add("auction_updates_dropped", prometheus.CounterValue, counter(&r.Auction.Errors.UpdatesDropped))

	// Serving
	add("serving_validations", prometheus.CounterValue, counter(&r.Serving.State.Validations))
	add("serving_passed", prometheus.CounterValue, counter(&r.Serving.State.Passed))
	add("serving_rejected", prometheus.CounterValue, counter(&r.Serving.State.Rejected))
	add("serving_warnings", prometheus.CounterValue, counter(&r.Serving.State.Warnings))
	add("serving_warnings_stored", prometheus.CounterValue, counter(&r.Serving.State.WarningsStored))
	add("serving_views_recorded", prometheus.CounterValue, counter(&r.Serving.State.ViewsRecorded))
	add("serving_clicks_recorded", prometheus.CounterValue, counter(&r.Serving.State.ClicksRecorded))
	add("serving_check_failures", prometheus.CounterValue, counter(&r.Serving.Errors.CheckFailures))
	add("serving_store_failures", prometheus.CounterValue, counter(&r.Serving.Errors.StoreFailures))
	add("serving_record_failures", prometheus.CounterValue, counter(&r.Serving.Errors.RecordFailures))

	// Redis
	add("redis_messages_published", prometheus.CounterValue, counter(&r.RedisPublisher.State.MessagesPublished))
	add("redis_publish_errors", prometheus.CounterValue, counter(&r.RedisPublisher.Errors.Publish))
	add("redis_persistent_failures", prometheus.CounterValue, counter(&r.RedisPublisher.Errors.PersistentFailure))

	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range self.metrics {
		ch <- m.desc
	}
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range self.metrics {
		ch <- prometheus.MustNewConstMetric(m.desc, m.valueType, m.value())
	}
}
