package storage

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// StatusSweeper expires stale job status records alongside their artifacts.
type StatusSweeper interface {
	Sweep(maxAge time.Duration) int
}

// Janitor periodically sweeps expired artifacts off disk, and their job
// status records, on a cron schedule.
type Janitor struct {
	cron     *cron.Cron
	disk     *Disk
	statuses StatusSweeper
	maxAge   time.Duration
	logger   *slog.Logger
}

// NewJanitor builds a janitor that sweeps artifacts older than maxAge on the
// given cron schedule (standard five-field syntax). statuses may be nil.
func NewJanitor(disk *Disk, statuses StatusSweeper, schedule string, maxAge time.Duration, logger *slog.Logger) (*Janitor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	j := &Janitor{
		cron:     cron.New(),
		disk:     disk,
		statuses: statuses,
		maxAge:   maxAge,
		logger:   logger,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins running sweeps in the background.
func (j *Janitor) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) sweep() {
	removed, err := j.disk.Sweep(j.maxAge)
	if err != nil {
		j.logger.Warn("artifact sweep failed", "error", err)
		return
	}
	expired := 0
	if j.statuses != nil {
		expired = j.statuses.Sweep(j.maxAge)
	}
	if removed > 0 || expired > 0 {
		j.logger.Info("swept expired artifacts",
			"files_removed", removed,
			"statuses_removed", expired)
	}
}
