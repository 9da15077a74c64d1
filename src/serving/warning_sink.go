package serving

import (
	"github.com/pulsartrack/syncer/src/utils/config"
	"github.com/pulsartrack/syncer/src/utils/model"
	"github.com/pulsartrack/syncer/src/utils/monitoring"
	"github.com/pulsartrack/syncer/src/utils/monitoring/report"
	"github.com/pulsartrack/syncer/src/utils/task"

	"gorm.io/gorm"
)

// Inserts serving warnings in batches
type WarningSink struct {
	*task.Sink[*model.ServingWarning]

	db     *gorm.DB
	report *report.ServingReport

	Input chan *model.ServingWarning
}

func NewWarningSink(config *config.Config) (self *WarningSink) {
	self = new(WarningSink)
	self.report = &report.ServingReport{}
	self.Input = make(chan *model.ServingWarning, config.Serving.StoreQueueSize)

	self.Sink = task.NewSink[*model.ServingWarning](config, "warning-sink").
		WithInputChannel(self.Input).
		WithBatchSize(config.Serving.StoreBatchSize).
		WithOnFlush(config.Serving.StoreFlushInterval, self.save).
		WithBackoff(config.Serving.StoreMaxElapsedTime, config.Serving.StoreMaxInterval)

	return
}

func (self *WarningSink) WithDB(db *gorm.DB) *WarningSink {
	self.db = db
	return self
}

func (self *WarningSink) WithMonitor(monitor monitoring.Monitor) *WarningSink {
	self.report = monitor.GetReport().Serving
	return self
}

func (self *WarningSink) save(batch []*model.ServingWarning) (err error) {
	err = self.db.WithContext(self.Ctx).
		Table(model.TableServingWarning).
		CreateInBatches(batch, len(batch)).
		Error
	if err != nil {
		self.report.Errors.StoreFailures.Inc()
		return
	}

	self.report.State.WarningsStored.Add(uint64(len(batch)))
	self.Log.WithField("len", len(batch)).Debug("Stored serving warnings")
	return
}
