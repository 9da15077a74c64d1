package task

import (
	"sync"
	"testing"
	"time"

	"github.com/pulsartrack/syncer/src/utils/config"

	"github.com/stretchr/testify/require"
)

type batches struct {
	mtx  sync.Mutex
	data [][]int
}

func (self *batches) flush(in []int) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.data = append(self.data, append([]int(nil), in...))
	return nil
}

func (self *batches) get() [][]int {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return append([][]int(nil), self.data...)
}

func TestSinkFlushesFullBatches(t *testing.T) {
	input := make(chan int)
	out := new(batches)

	sink := NewSink[int](config.Default(), "sink-test").
		WithInputChannel(input).
		WithBatchSize(2).
		WithOnFlush(time.Hour, out.flush)
	require.Nil(t, sink.Start())

	for i := 1; i <= 4; i++ {
		input <- i
	}

	require.Eventually(t, func() bool { return len(out.get()) == 2 }, time.Second, 5*time.Millisecond)
	require.Equal(t, [][]int{{1, 2}, {3, 4}}, out.get())

	sink.StopWait()
}

func TestSinkFlushesRemainderOnStop(t *testing.T) {
	input := make(chan int, 10)
	out := new(batches)

	sink := NewSink[int](config.Default(), "sink-test").
		WithInputChannel(input).
		WithBatchSize(100).
		WithOnFlush(time.Hour, out.flush)
	require.Nil(t, sink.Start())

	input <- 1
	input <- 2
	sink.StopWait()

	require.Equal(t, [][]int{{1, 2}}, out.get())
}

func TestSinkFlushesOnInterval(t *testing.T) {
	input := make(chan int)
	out := new(batches)

	sink := NewSink[int](config.Default(), "sink-test").
		WithInputChannel(input).
		WithBatchSize(100).
		WithOnFlush(20*time.Millisecond, out.flush)
	require.Nil(t, sink.Start())
	defer sink.StopWait()

	input <- 7
	require.Eventually(t, func() bool { return len(out.get()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []int{7}, out.get()[0])
}
