package scheduler

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// cronLogger routes cron's own messages to the application logger.
type cronLogger struct {
	logger *log.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// StartScheduler registers the weekly reset under spec (standard five field
// cron syntax) evaluated in loc and starts the cron loop. A tick that fires
// while the previous one is still running is skipped. Stop the returned cron
// on shutdown.
func StartScheduler(job *Job, spec string, loc *time.Location, logger *log.Logger) (*cron.Cron, error) {
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(spec, job.OnScheduledTick); err != nil {
		return nil, fmt.Errorf("invalid reset schedule %q: %w", spec, err)
	}
	c.Start()

	logger.Info("weekly reset scheduled", "schedule", spec, "timezone", loc.String())
	return c, nil
}
