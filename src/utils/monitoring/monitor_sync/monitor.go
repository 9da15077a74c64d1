package monitor_sync

import (
	"net/http"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Stores and computes monitor counters
type Monitor struct {
	*task.Task

	Report    *report.Report
	collector *Collector
}

func NewMonitor(config *config.Config) (self *Monitor) {
	self = new(Monitor)

	self.Report = report.NewReport()
	self.Report.Run.State.StartTimestamp.Store(time.Now().Unix())

	self.collector = NewCollector().WithMonitor(self)

	self.Task = task.NewTask(config, "monitor").
		WithPeriodicSubtaskFunc(30*time.Second, self.monitorUptime)
	return
}

func (self *Monitor) monitorUptime() error {
	started := time.Unix(self.Report.Run.State.StartTimestamp.Load(), 0)
	self.Report.Run.State.UpForSeconds.Store(uint64(time.Since(started).Seconds()))
	return nil
}

func (self *Monitor) GetReport() *report.Report {
	return self.Report
}

func (self *Monitor) GetPrometheusCollector() (collector prometheus.Collector) {
	return self.collector
}

// Service is unhealthy once the event stream gave up reconnecting
func (self *Monitor) IsOK() bool {
	return !self.Report.Stream.State.GaveUp.Load()
}

func (self *Monitor) OnGetState(c *gin.Context) {
	c.JSON(http.StatusOK, self.Report)
}

func (self *Monitor) OnGetHealth(c *gin.Context) {
	if self.IsOK() {
		c.Status(http.StatusOK)
	} else {
		c.Status(http.StatusServiceUnavailable)
	}
}
