package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"choretracker/model"
	"choretracker/services"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingExporter struct {
	calls      int
	weekEnding time.Time
	rows       []model.ProgressHistory
	err        error
}

func (e *recordingExporter) ExportHistory(_ context.Context, weekEnding time.Time, rows []model.ProgressHistory) error {
	e.calls++
	e.weekEnding = weekEnding
	e.rows = rows
	return e.err
}

func newJobDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=1"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Task{}, &model.Assignment{}, &model.ProgressEntry{}, &model.ProgressHistory{}))
	return db
}

// seedCompleted creates one task whose single assignee finished every day.
func seedCompleted(t *testing.T, db *gorm.DB) string {
	t.Helper()
	ctx := context.Background()

	admin, err := services.Register(ctx, db, 4, services.RegisterInput{Username: "admin", Password: "pw", IsAdmin: true}, true)
	require.NoError(t, err)
	anna, err := services.Register(ctx, db, 4, services.RegisterInput{Username: "anna", Password: "pw"}, true)
	require.NoError(t, err)

	adminCaller := model.Caller{UserID: admin.ID, IsAdmin: true}
	task, err := services.CreateTask(ctx, db, adminCaller, services.TaskInput{
		Name:           "Dishes",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: model.Weekdays{model.Monday, model.Friday},
		Assignees:      []services.AssigneeInput{{UserID: anna.ID}},
	})
	require.NoError(t, err)

	_, err = services.MarkComplete(ctx, db, model.Caller{UserID: anna.ID}, task.ID, nil)
	require.NoError(t, err)
	return task.ID
}

func newJob(db *gorm.DB, exporter services.HistoryExporter) *Job {
	return &Job{
		DB:       db,
		Exporter: exporter,
		Locker:   NewLocalLocker(),
		Logger:   log.New(io.Discard),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC) },
	}
}

func TestJobRun(t *testing.T) {
	db := newJobDB(t)
	taskID := seedCompleted(t, db)
	exporter := &recordingExporter{}

	summary, err := newJob(db, exporter).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Archived)

	var task model.Task
	require.NoError(t, db.Where("id = ?", taskID).Take(&task).Error)
	assert.False(t, task.Completed)

	assert.Equal(t, 1, exporter.calls)
	assert.Equal(t, "2026-10-18", exporter.weekEnding.Format("2006-01-02"))
	assert.Len(t, exporter.rows, 2)
}

func TestJobRunExportFailureIsNotFatal(t *testing.T) {
	db := newJobDB(t)
	seedCompleted(t, db)
	exporter := &recordingExporter{err: errors.New("firestore down")}

	_, err := newJob(db, exporter).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, exporter.calls)

	var archived int64
	require.NoError(t, db.Model(&model.ProgressHistory{}).Count(&archived).Error)
	assert.EqualValues(t, 2, archived)
}

func TestJobRunWhileLocked(t *testing.T) {
	db := newJobDB(t)
	taskID := seedCompleted(t, db)
	job := newJob(db, nil)

	unlock, err := job.Locker.TryLock(context.Background())
	require.NoError(t, err)
	defer unlock()

	_, err = job.Run(context.Background())
	assert.ErrorIs(t, err, ErrResetInProgress)

	// the scheduled entry point only logs
	job.OnScheduledTick()

	var task model.Task
	require.NoError(t, db.Where("id = ?", taskID).Take(&task).Error)
	assert.True(t, task.Completed)
}

func TestOnScheduledTick(t *testing.T) {
	db := newJobDB(t)
	taskID := seedCompleted(t, db)

	newJob(db, nil).OnScheduledTick()

	var task model.Task
	require.NoError(t, db.Where("id = ?", taskID).Take(&task).Error)
	assert.False(t, task.Completed)
}
