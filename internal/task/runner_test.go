package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunnerExecutesSubmittedTasks(t *testing.T) {
	r := NewRunner(RunnerConfig{WorkerCount: 2, QueueSize: 8}, testLogger())
	r.Start()
	defer r.Stop()

	var done sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 5; i++ {
		done.Add(1)
		id := fmt.Sprintf("job-%d", i)
		err := r.Submit(NewFunc(id, "test", func(context.Context) error {
			count.Add(1)
			done.Done()
			return nil
		}))
		require.NoError(t, err)
	}

	waitDone(t, &done)
	assert.Equal(t, int32(5), count.Load())
}

func TestRunnerFullQueueRejectsSubmit(t *testing.T) {
	// No workers started, so nothing drains the queue.
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger())

	noop := NewFunc("a", "test", func(context.Context) error { return nil })
	require.NoError(t, r.Submit(noop))
	err := r.Submit(NewFunc("b", "test", func(context.Context) error { return nil }))
	assert.ErrorContains(t, err, "queue is full")
}

func TestRunnerInvokesErrorHandler(t *testing.T) {
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4}, testLogger())

	handled := make(chan error, 1)
	r.SetErrorHandler(func(_ Task, err error) {
		handled <- err
	})
	r.Start()
	defer r.Stop()

	boom := fmt.Errorf("boom")
	require.NoError(t, r.Submit(NewFunc("x", "test", func(context.Context) error {
		return boom
	})))

	select {
	case err := <-handled:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("error handler never invoked")
	}
}

func TestRunnerRejectsSubmitAfterStop(t *testing.T) {
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4}, testLogger())
	r.Start()
	r.Stop()

	err := r.Submit(NewFunc("x", "test", func(context.Context) error { return nil }))
	assert.ErrorContains(t, err, "stopped")
}

func TestRunnerStopWaitsForInFlightTask(t *testing.T) {
	r := NewRunner(RunnerConfig{WorkerCount: 1, QueueSize: 4}, testLogger())
	r.Start()

	started := make(chan struct{})
	var finished atomic.Bool
	require.NoError(t, r.Submit(NewFunc("x", "test", func(context.Context) error {
		close(started)
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})))

	<-started
	r.Stop()
	assert.True(t, finished.Load())
}

func waitDone(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("tasks did not finish in time")
	}
}
