package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"choretracker/model"

	"gorm.io/gorm"
)

type ProgressFilter struct {
	TaskID string
	All    bool // every user's rows; admin only
}

// MarkComplete sets the caller's completion flag for one day of a task, or
// for every day of the caller's assignment when day is nil, and recomputes
// the assignment and task aggregates in the same transaction. Completing an
// already completed item succeeds and changes nothing.
func MarkComplete(ctx context.Context, db *gorm.DB, caller model.Caller, taskID string, day *model.Weekday) (*model.Task, error) {
	if day != nil && !day.Valid() {
		return nil, invalidInput("invalid weekday %q", *day)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The task row lock serializes concurrent completions of the same
		// task so each recompute sees the others' committed rows.
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		var assignment model.Assignment
		if err := tx.Where("task_id = ? AND user_id = ?", task.ID, caller.UserID).Take(&assignment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotAssigned
			}
			return storeFailure("get assignment", err)
		}

		query := tx.Model(&model.ProgressEntry{}).
			Where("task_id = ? AND user_id = ? AND completed = ?", task.ID, caller.UserID, false)
		if day != nil {
			if !assignment.Days.Contains(*day) {
				return ErrNotAssigned
			}
			query = query.Where("day = ?", *day)
		}

		now := time.Now().UTC()
		if err := query.Updates(map[string]any{"completed": true, "completed_at": now}).Error; err != nil {
			return storeFailure("complete progress", err)
		}

		_, err = recomputeAggregate(tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return GetTask(ctx, db, caller, taskID)
}

// recomputeAggregate rewrites the derived flags of a task from its progress
// rows: an assignment is complete when none of its days is pending, and the
// task is complete when no progress row of any assignee is pending.
func recomputeAggregate(tx *gorm.DB, taskID string) (bool, error) {
	err := tx.Exec(`UPDATE user_tasks SET completed = NOT EXISTS (
			SELECT 1 FROM task_progress
			WHERE task_progress.task_id = user_tasks.task_id
			  AND task_progress.user_id = user_tasks.user_id
			  AND task_progress.completed = ?)
		WHERE task_id = ?`, false, taskID).Error
	if err != nil {
		return false, storeFailure("recompute assignments", err)
	}

	var pending int64
	if err := tx.Model(&model.ProgressEntry{}).Where("task_id = ? AND completed = ?", taskID, false).Count(&pending).Error; err != nil {
		return false, storeFailure("count pending progress", err)
	}

	completed := pending == 0
	if err := tx.Model(&model.Task{}).Where("id = ?", taskID).Update("completed", completed).Error; err != nil {
		return false, storeFailure("update task aggregate", err)
	}
	return completed, nil
}

// GetProgress returns joined progress rows. Admins may ask for every user's
// rows; everyone else only sees their own.
func GetProgress(ctx context.Context, db *gorm.DB, caller model.Caller, filter ProgressFilter) ([]model.ProgressRow, error) {
	if filter.All && !caller.IsAdmin {
		return nil, ErrForbidden
	}

	query := progressRows(db.WithContext(ctx))
	if !filter.All {
		query = query.Where("task_progress.user_id = ?", caller.UserID)
	}
	if filter.TaskID != "" {
		query = query.Where("task_progress.task_id = ?", filter.TaskID)
	}

	rows := []model.ProgressRow{}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, storeFailure("get progress", err)
	}
	sortProgressRows(rows)
	return rows, nil
}

// Reminders lists the progress rows still pending for today once the local
// time has reached the reminder hour. Before that hour it returns no rows.
func Reminders(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location, hour int) ([]model.ProgressRow, error) {
	local := now.In(loc)
	rows := []model.ProgressRow{}
	if local.Hour() < hour {
		return rows, nil
	}

	err := progressRows(db.WithContext(ctx)).
		Where("task_progress.day = ? AND task_progress.completed = ?", model.WeekdayOf(local), false).
		Scan(&rows).Error
	if err != nil {
		return nil, storeFailure("get reminders", err)
	}
	sortProgressRows(rows)
	return rows, nil
}

// CurrentWeek returns the weekly tasks whose optional date window contains
// the local date of now.
func CurrentWeek(ctx context.Context, db *gorm.DB, now time.Time, loc *time.Location) ([]model.Task, error) {
	var weekly []model.Task
	err := db.WithContext(ctx).
		Preload("Assignments.User").
		Preload("Progress").
		Where("frequency = ?", model.FrequencyWeekly).
		Order("name").
		Find(&weekly).Error
	if err != nil {
		return nil, storeFailure("get weekly tasks", err)
	}

	today := now.In(loc)
	tasks := []model.Task{}
	for i := range weekly {
		if weekly[i].ActiveOn(today) {
			sortTask(&weekly[i])
			tasks = append(tasks, weekly[i])
		}
	}
	return tasks, nil
}

func progressRows(db *gorm.DB) *gorm.DB {
	return db.Table("task_progress").
		Select(`task_progress.task_id AS task_id, tasks.name AS task_name,
			task_progress.user_id AS user_id, users.username AS username,
			task_progress.day AS day, task_progress.completed AS completed,
			task_progress.completed_at AS completed_at`).
		Joins("JOIN tasks ON tasks.id = task_progress.task_id").
		Joins("JOIN users ON users.id = task_progress.user_id")
}

func sortProgressRows(rows []model.ProgressRow) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		if a.TaskName != b.TaskName {
			return a.TaskName < b.TaskName
		}
		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		return a.Day.Index() < b.Day.Index()
	})
}
