// Package joblock provides per-key single-flight mutual exclusion with a
// bounded wait, used to suppress duplicate concurrent processing of the same
// logical job.
package joblock

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// pollInterval is the granularity at which Await re-checks a held key. Small
// relative to typical job duration (remote API pipelines run for seconds).
const pollInterval = 100 * time.Millisecond

// Lock tracks which job keys are currently being processed. At most one
// holder per key; no ownership transfer, no re-entrancy, no fairness beyond
// eventual notification. Safe for concurrent use.
type Lock struct {
	mu     sync.Mutex
	held   map[string]struct{}
	logger *slog.Logger
}

// New creates an empty Lock. Instances are constructed at service start and
// injected, so tests can run against isolated copies.
func New(logger *slog.Logger) *Lock {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lock{
		held:   make(map[string]struct{}),
		logger: logger,
	}
}

// TryAcquire attempts to take the key without blocking. It returns false
// immediately if the key is already held.
func (l *Lock) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		l.logger.Debug("job already being processed, skipping", "key", key)
		return false
	}
	l.held[key] = struct{}{}
	l.logger.Debug("lock acquired", "key", key)
	return true
}

// Release frees the key. Releasing a key that is not held is a no-op.
func (l *Lock) Release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		delete(l.held, key)
		l.logger.Debug("lock released", "key", key)
	}
}

// Held reports whether the key is currently being processed.
func (l *Lock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// Await blocks until the key becomes free or timeout elapses, returning true
// if it observed the key free. It polls rather than subscribing; waiting does
// not block unrelated work, and ctx cancellation ends the wait early.
func (l *Lock) Await(ctx context.Context, key string, timeout time.Duration) bool {
	if !l.Held(key) {
		return true
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			l.logger.Warn("timeout waiting for job lock", "key", key, "timeout", timeout)
			return false
		case <-tick.C:
			if !l.Held(key) {
				return true
			}
		}
	}
}
