// Package jobstatus maps job ids to their current status record and lets
// pollers block until a job resolves.
package jobstatus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/vocal-api/internal/domain"
)

// ErrWaitTimeout is returned by WaitFor when the job does not resolve within
// the caller's timeout.
var ErrWaitTimeout = errors.New("status wait timeout")

// ErrNotFound is returned by WaitFor when a job id was never registered and
// the wait expired without a Set.
var ErrNotFound = errors.New("job not found")

// Store keeps the current status record per job id, with blocking
// wait-until-resolved semantics for pollers. It keeps no history and no
// persistence: a process restart loses all state. Safe for concurrent use.
//
// Waiters are woken exactly once per Set and are handed that Set's value
// without a terminality re-check. The only legitimate non-terminal value is
// processing, and a job is never set back to processing after a terminal
// state, so a caller woken into processing simply polls again.
type Store struct {
	mu      sync.Mutex
	jobs    map[string]domain.Job
	setAt   map[string]time.Time
	waiters map[string][]chan domain.Job
	logger  *slog.Logger

	now func() time.Time
}

// New creates an empty Store. Constructed at service start and injected; no
// process-wide singleton.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		jobs:    make(map[string]domain.Job),
		setAt:   make(map[string]time.Time),
		waiters: make(map[string][]chan domain.Job),
		logger:  logger,
		now:     time.Now,
	}
}

// Set overwrites the job's status record and wakes every waiter registered
// for its id. Waiters receive the new record regardless of whether it is
// terminal.
func (s *Store) Set(job domain.Job) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.setAt[job.ID] = s.now()
	woken := s.waiters[job.ID]
	delete(s.waiters, job.ID)
	s.mu.Unlock()

	for _, ch := range woken {
		// Buffered; a waiter that already timed out just drops the value.
		ch <- job
	}

	s.logger.Debug("job status set",
		"job_id", job.ID,
		"status", job.Status,
		"waiters_woken", len(woken))
}

// Get returns the current record for the id, if any.
func (s *Store) Get(id string) (domain.Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Delete removes the record and any stale waiter registrations for the id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
	delete(s.setAt, id)
	delete(s.waiters, id)
}

// Sweep drops terminal records last written before maxAge ago and returns how
// many were removed. Records still in processing are kept regardless of age;
// their job may yet resolve.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if !job.Status.Terminal() || s.setAt[id].After(cutoff) {
			continue
		}
		delete(s.jobs, id)
		delete(s.setAt, id)
		removed++
	}
	return removed
}

// WaitFor blocks until the job resolves or timeout elapses. If the current
// status is already terminal it returns immediately. Otherwise the caller is
// registered as a waiter and woken exactly once by the next Set for the id,
// whatever status that Set carries. Expiry yields ErrWaitTimeout (or
// ErrNotFound when the id was never seen); ctx cancellation ends the wait
// early with the context's error.
func (s *Store) WaitFor(ctx context.Context, id string, timeout time.Duration) (domain.Job, error) {
	s.mu.Lock()
	job, known := s.jobs[id]
	if known && job.Status.Terminal() {
		s.mu.Unlock()
		return job, nil
	}
	ch := make(chan domain.Job, 1)
	s.waiters[id] = append(s.waiters[id], ch)
	s.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case woken := <-ch:
		return woken, nil
	case <-deadline.C:
		s.removeWaiter(id, ch)
		if !known {
			return domain.Job{}, ErrNotFound
		}
		return domain.Job{}, ErrWaitTimeout
	case <-ctx.Done():
		s.removeWaiter(id, ch)
		return domain.Job{}, ctx.Err()
	}
}

// removeWaiter unregisters an expired waiter so Set never blocks on it.
func (s *Store) removeWaiter(id string, ch chan domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.waiters[id]
	for i, w := range list {
		if w == ch {
			s.waiters[id] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(s.waiters[id]) == 0 {
		delete(s.waiters, id)
	}
}
