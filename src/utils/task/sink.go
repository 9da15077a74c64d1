package task

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"

	"github.com/cenkalti/backoff/v4"
	"github.com/gammazero/deque"
)

// Collects items from the input channel and flushes them in batches.
// Ensures flush is over before another is started.
type Sink[In any] struct {
	*Task

	// Channel for the data to be flushed
	input chan In

	// Called to handle a batch of data
	onFlush func([]In) error

	// Queue for the pending data
	queue deque.Deque[In]

	// Batch size that will trigger the onFlush function
	batchSize int

	// Flush interval
	flushInterval time.Duration

	// Max time flush should be retried. 0 means no limit.
	maxElapsedTime time.Duration

	// Max times between flush retries
	maxInterval time.Duration
}

func NewSink[In any](config *config.Config, name string) (self *Sink[In]) {
	self = new(Sink[In])
	self.batchSize = 1
	self.flushInterval = time.Second

	self.Task = NewTask(config, name).
		WithSubtaskFunc(self.run)

	return
}

func (self *Sink[In]) WithBatchSize(batchSize int) *Sink[In] {
	if batchSize < 1 {
		batchSize = 1
	}
	self.batchSize = batchSize
	exp := uint(math.Round(math.Logb(float64(batchSize)))) + 1
	self.queue.SetMinCapacity(exp)
	return self
}

func (self *Sink[In]) WithInputChannel(v chan In) *Sink[In] {
	self.input = v
	return self
}

func (self *Sink[In]) WithOnFlush(interval time.Duration, f func([]In) error) *Sink[In] {
	self.flushInterval = interval
	self.onFlush = f
	return self
}

func (self *Sink[In]) WithBackoff(maxElapsedTime, maxInterval time.Duration) *Sink[In] {
	self.maxElapsedTime = maxElapsedTime
	self.maxInterval = maxInterval
	return self
}

func (self *Sink[In]) flush() (err error) {
	size := self.queue.Len()
	if size == 0 {
		return
	}

	data := make([]In, 0, size)
	for i := 0; i < size; i++ {
		data = append(data, self.queue.PopFront())
	}

	err = NewRetry().
		WithContext(self.Ctx).
		WithMaxElapsedTime(self.maxElapsedTime).
		WithMaxInterval(self.maxInterval).
		WithOnError(func(err error, isDurationAcceptable bool) error {
			if errors.Is(err, context.Canceled) && self.IsStopping.Load() {
				// Stopping
				return backoff.Permanent(err)
			}

			self.Log.WithError(err).Warn("Failed to flush data, retrying")

			return err
		}).
		Run(func() error {
			return self.onFlush(data)
		})
	if err != nil {
		self.Log.WithError(err).WithField("len", len(data)).Error("Failed to flush data, no more retries")
		return
	}

	return
}

func (self *Sink[In]) run() (err error) {
	// Used to ensure data isn't stuck in the queue for too long
	timer := time.NewTimer(self.flushInterval)
	defer timer.Stop()

	for {
		select {
		case <-self.StopChannel:
			// Whatever arrived so far gets flushed, errors are only logged
			for {
				select {
				case in := <-self.input:
					self.queue.PushBack(in)
					continue
				default:
				}
				break
			}
			_ = self.flush()
			return nil

		case in, ok := <-self.input:
			if !ok {
				// There will be no more data, flush everything there is and quit.
				_ = self.flush()
				return nil
			}

			self.queue.PushBack(in)

			if self.queue.Len() >= self.batchSize {
				// Failed batches are dropped, the sink keeps running
				_ = self.flush()
			}

		case <-timer.C:
			_ = self.flush()
			timer.Reset(self.flushInterval)
		}
	}
}
