package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingProcessor struct {
	calls atomic.Int32
	err   error
}

func (p *countingProcessor) ProcessJobs(ctx context.Context) error {
	p.calls.Add(1)
	return p.err
}

func TestWorker_ProcessesOnInterval(t *testing.T) {
	processor := &countingProcessor{}
	worker := NewWorker(processor, 10*time.Millisecond)

	go worker.Start(context.Background())
	time.Sleep(55 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, processor.calls.Load(), int32(3))
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	processor := &countingProcessor{}
	worker := NewWorker(processor, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}

func TestWorker_KeepsPollingAfterProcessorError(t *testing.T) {
	processor := &countingProcessor{err: errors.New("transient")}
	worker := NewWorker(processor, 10*time.Millisecond)

	go worker.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	worker.Stop()

	assert.GreaterOrEqual(t, processor.calls.Load(), int32(2))
}

func TestWorker_StopBlocksUntilLoopExits(t *testing.T) {
	processor := &countingProcessor{}
	worker := NewWorker(processor, 5*time.Millisecond)

	go worker.Start(context.Background())
	time.Sleep(12 * time.Millisecond)
	worker.Stop()

	// After Stop returns the loop is done; the call count stays fixed.
	before := processor.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, processor.calls.Load())
}
