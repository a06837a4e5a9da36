package services

import (
	"context"
	"testing"

	"choretracker/model"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testCost = bcrypt.MinCost

func newTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Task{},
		&model.Assignment{},
		&model.ProgressEntry{},
		&model.ProgressHistory{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string, admin bool) *model.User {
	t.Helper()
	u, err := Register(context.Background(), db, testCost, RegisterInput{
		Username: username,
		Password: username + "-password",
		IsAdmin:  admin,
	}, true)
	require.NoError(t, err)
	return u
}

func callerOf(u *model.User) model.Caller {
	return model.Caller{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func days(names ...model.Weekday) model.Weekdays {
	return model.Weekdays(names)
}

func dayPtr(d model.Weekday) *model.Weekday {
	return &d
}

func loadAssignment(t *testing.T, db *gorm.DB, taskID, userID string) model.Assignment {
	t.Helper()
	var a model.Assignment
	require.NoError(t, db.Where("task_id = ? AND user_id = ?", taskID, userID).Take(&a).Error)
	return a
}

func loadTask(t *testing.T, db *gorm.DB, taskID string) model.Task {
	t.Helper()
	var task model.Task
	require.NoError(t, db.Where("id = ?", taskID).Take(&task).Error)
	return task
}

// requireAggregateConsistent checks that the task flag equals the conjunction
// of its assignment flags and that each assignment flag matches its rows.
func requireAggregateConsistent(t *testing.T, db *gorm.DB, taskID string) {
	t.Helper()

	var assignments []model.Assignment
	require.NoError(t, db.Where("task_id = ?", taskID).Find(&assignments).Error)

	all := true
	for _, a := range assignments {
		var pending int64
		require.NoError(t, db.Model(&model.ProgressEntry{}).
			Where("task_id = ? AND user_id = ? AND completed = ?", taskID, a.UserID, false).
			Count(&pending).Error)
		require.Equal(t, pending == 0, a.Completed, "assignment flag of user %s", a.UserID)
		all = all && a.Completed
	}
	require.Equal(t, all, loadTask(t, db, taskID).Completed, "task aggregate")
}

func count(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
