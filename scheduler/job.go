package scheduler

import (
	"context"
	"time"

	"choretracker/services"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Job runs the weekly reset. Exporter is optional.
type Job struct {
	DB       *gorm.DB
	Exporter services.HistoryExporter
	Locker   Locker
	Logger   *log.Logger
	Location *time.Location

	// Now is replaced in tests.
	Now func() time.Time
	// ExportTimeout bounds the post-commit export. Zero means one minute.
	ExportTimeout time.Duration
}

// Run resets the week once. It fails with ErrResetInProgress when another
// run holds the lock. The export happens after commit and its failure does
// not fail the reset.
func (j *Job) Run(ctx context.Context) (*services.ResetSummary, error) {
	unlock, err := j.Locker.TryLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := time.Now()
	if j.Now != nil {
		now = j.Now()
	}

	summary, err := services.ResetWeek(ctx, j.DB, now, j.Location)
	if err != nil {
		return nil, err
	}
	j.Logger.Info("weekly reset done",
		"weekEnding", summary.WeekEnding.Format("2006-01-02"),
		"archived", summary.Archived,
		"entriesReset", summary.EntriesReset,
		"tasksReopened", summary.TasksReopened)

	if j.Exporter != nil {
		timeout := j.ExportTimeout
		if timeout <= 0 {
			timeout = time.Minute
		}
		exportCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := j.Exporter.ExportHistory(exportCtx, summary.WeekEnding, summary.Snapshot); err != nil {
			j.Logger.Error("history export failed", "weekEnding", summary.WeekEnding.Format("2006-01-02"), "err", err)
		}
	}
	return summary, nil
}

// OnScheduledTick is the cron entry point. Failures are logged and the next
// attempt is the next tick.
func (j *Job) OnScheduledTick() {
	if _, err := j.Run(context.Background()); err != nil {
		j.Logger.Error("scheduled weekly reset failed", "err", err)
	}
}
