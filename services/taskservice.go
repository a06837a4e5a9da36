package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"choretracker/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssigneeInput struct {
	UserID string
	Days   model.Weekdays // empty means the task's recurrence days
}

type TaskInput struct {
	Name           string
	Description    string
	Frequency      model.Frequency
	RecurrenceDays model.Weekdays
	StartDate      *time.Time
	EndDate        *time.Time
	Assignees      []AssigneeInput
}

// TaskUpdate holds the fields to change; nil means unchanged. A non-nil
// Assignees replaces the whole assignment set.
type TaskUpdate struct {
	Name           *string
	Description    *string
	Frequency      *model.Frequency
	RecurrenceDays *model.Weekdays
	StartDate      *time.Time
	EndDate        *time.Time
	Assignees      *[]AssigneeInput
}

type progressKey struct {
	userID string
	day    model.Weekday
}

// CreateTask inserts the task and then each assignment with its progress rows,
// one by one inside a single transaction. Any failure rolls everything back.
func CreateTask(ctx context.Context, db *gorm.DB, caller model.Caller, in TaskInput) (*model.Task, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}

	in.Name = strings.TrimSpace(in.Name)
	in.RecurrenceDays = in.RecurrenceDays.Normalize()
	if err := validateTask(in.Name, in.Frequency, in.RecurrenceDays, in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if err := validateAssignees(in.Assignees); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Description:    in.Description,
		Frequency:      in.Frequency,
		RecurrenceDays: in.RecurrenceDays,
		StartDate:      dateOnly(in.StartDate),
		EndDate:        dateOnly(in.EndDate),
		CreatedBy:      caller.UserID,
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return storeFailure("create task", err)
		}
		if err := insertAssignments(tx, task, in.Assignees, nil); err != nil {
			return err
		}
		completed, err := recomputeAggregate(tx, task.ID)
		if err != nil {
			return err
		}
		task.Completed = completed
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetTask(ctx, db, caller, task.ID)
}

// UpdateTask applies field changes and, when requested, replaces the
// assignment set: existing rows are deleted and the new set inserted in the
// same transaction. Completion of a (user, day) pair present in both sets is
// kept. Without new assignees, a change of recurrence days moves the
// assignments that use the default days onto the new ones.
func UpdateTask(ctx context.Context, db *gorm.DB, caller model.Caller, taskID string, upd TaskUpdate) (*model.Task, error) {
	if !caller.IsAdmin {
		return nil, ErrForbidden
	}
	if upd.Assignees != nil {
		if err := validateAssignees(*upd.Assignees); err != nil {
			return nil, err
		}
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			task.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.Description != nil {
			task.Description = *upd.Description
		}
		if upd.Frequency != nil {
			task.Frequency = *upd.Frequency
		}
		recurrenceChanged := false
		if upd.RecurrenceDays != nil {
			days := upd.RecurrenceDays.Normalize()
			recurrenceChanged = days.String() != task.RecurrenceDays.String()
			task.RecurrenceDays = days
		}
		if upd.StartDate != nil {
			task.StartDate = dateOnly(upd.StartDate)
		}
		if upd.EndDate != nil {
			task.EndDate = dateOnly(upd.EndDate)
		}
		if err := validateTask(task.Name, task.Frequency, task.RecurrenceDays, task.StartDate, task.EndDate); err != nil {
			return err
		}

		if err := tx.Model(task).Select("Name", "Description", "Frequency", "RecurrenceDays", "StartDate", "EndDate", "UpdatedAt").
			Updates(task).Error; err != nil {
			return storeFailure("update task", err)
		}

		switch {
		case upd.Assignees != nil:
			if err := replaceAssignments(tx, task, *upd.Assignees); err != nil {
				return err
			}
		case recurrenceChanged:
			if err := rederiveDefaultDays(tx, task); err != nil {
				return err
			}
		}

		_, err = recomputeAggregate(tx, task.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return GetTask(ctx, db, caller, taskID)
}

// DeleteTask removes progress rows and assignments before the task row.
func DeleteTask(ctx context.Context, db *gorm.DB, caller model.Caller, taskID string) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := lockTask(tx, taskID)
		if err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.ProgressEntry{}).Error; err != nil {
			return storeFailure("delete progress", err)
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.Assignment{}).Error; err != nil {
			return storeFailure("delete assignments", err)
		}
		if err := tx.Delete(task).Error; err != nil {
			return storeFailure("delete task", err)
		}
		return nil
	})
}

// ListTasks returns every task to an admin and only the caller's own
// assignments to anyone else.
func ListTasks(ctx context.Context, db *gorm.DB, caller model.Caller) ([]model.Task, error) {
	query := db.WithContext(ctx).Order("tasks.name").Order("tasks.id")
	if caller.IsAdmin {
		query = query.Preload("Assignments.User").Preload("Progress")
	} else {
		query = query.
			Joins("JOIN user_tasks ON user_tasks.task_id = tasks.id AND user_tasks.user_id = ?", caller.UserID).
			Preload("Assignments", "user_id = ?", caller.UserID).
			Preload("Assignments.User").
			Preload("Progress", "user_id = ?", caller.UserID)
	}

	tasks := []model.Task{}
	if err := query.Find(&tasks).Error; err != nil {
		return nil, storeFailure("list tasks", err)
	}
	for i := range tasks {
		sortTask(&tasks[i])
	}
	return tasks, nil
}

func GetTask(ctx context.Context, db *gorm.DB, caller model.Caller, taskID string) (*model.Task, error) {
	query := db.WithContext(ctx)
	if caller.IsAdmin {
		query = query.Preload("Assignments.User").Preload("Progress")
	} else {
		query = query.
			Preload("Assignments", "user_id = ?", caller.UserID).
			Preload("Assignments.User").
			Preload("Progress", "user_id = ?", caller.UserID)
	}

	var task model.Task
	if err := query.Where("id = ?", taskID).Take(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("task " + taskID)
		}
		return nil, storeFailure("get task", err)
	}
	if !caller.IsAdmin && len(task.Assignments) == 0 {
		return nil, ErrForbidden
	}

	sortTask(&task)
	return &task, nil
}

func lockTask(tx *gorm.DB, taskID string) (*model.Task, error) {
	var task model.Task
	if err := lockForUpdate(tx).Where("id = ?", taskID).Take(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("task " + taskID)
		}
		return nil, storeFailure("lock task", err)
	}
	return &task, nil
}

// lockForUpdate takes a row lock on PostgreSQL. SQLite already serializes
// writers at the database level.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func replaceAssignments(tx *gorm.DB, task *model.Task, assignees []AssigneeInput) error {
	var previous []model.ProgressEntry
	if err := tx.Where("task_id = ?", task.ID).Find(&previous).Error; err != nil {
		return storeFailure("load progress", err)
	}
	carried := make(map[progressKey]model.ProgressEntry, len(previous))
	for _, p := range previous {
		carried[progressKey{p.UserID, p.Day}] = p
	}

	if err := tx.Where("task_id = ?", task.ID).Delete(&model.ProgressEntry{}).Error; err != nil {
		return storeFailure("delete progress", err)
	}
	if err := tx.Where("task_id = ?", task.ID).Delete(&model.Assignment{}).Error; err != nil {
		return storeFailure("delete assignments", err)
	}
	return insertAssignments(tx, task, assignees, carried)
}

// rederiveDefaultDays moves assignments without explicit days onto the
// task's current recurrence days. Explicit days are kept as they are.
func rederiveDefaultDays(tx *gorm.DB, task *model.Task) error {
	var current []model.Assignment
	if err := tx.Where("task_id = ?", task.ID).Order("user_id").Find(&current).Error; err != nil {
		return storeFailure("load assignments", err)
	}

	assignees := make([]AssigneeInput, 0, len(current))
	changed := false
	for _, a := range current {
		in := AssigneeInput{UserID: a.UserID}
		if a.DefaultDays {
			changed = true
		} else {
			in.Days = a.Days
		}
		assignees = append(assignees, in)
	}
	if !changed {
		return nil
	}
	return replaceAssignments(tx, task, assignees)
}

func insertAssignments(tx *gorm.DB, task *model.Task, assignees []AssigneeInput, carried map[progressKey]model.ProgressEntry) error {
	for _, a := range assignees {
		if _, err := GetUserByID(tx, a.UserID); err != nil {
			return err
		}

		days := a.Days.Normalize()
		defaultDays := len(days) == 0
		if defaultDays {
			days = task.RecurrenceDays
		}
		if len(days) == 0 {
			return invalidInput("assignment of user %s covers no days", a.UserID)
		}

		assignment := model.Assignment{TaskID: task.ID, UserID: a.UserID, Days: days, DefaultDays: defaultDays}
		if err := tx.Omit(clause.Associations).Create(&assignment).Error; err != nil {
			return storeFailure("create assignment", err)
		}

		entries := make([]model.ProgressEntry, 0, len(days))
		for _, day := range days {
			entry := model.ProgressEntry{TaskID: task.ID, UserID: a.UserID, Day: day}
			if prev, ok := carried[progressKey{a.UserID, day}]; ok {
				entry.Completed = prev.Completed
				entry.CompletedAt = prev.CompletedAt
			}
			entries = append(entries, entry)
		}
		if err := tx.Create(&entries).Error; err != nil {
			return storeFailure("create progress", err)
		}
	}
	return nil
}

func validateTask(name string, frequency model.Frequency, days model.Weekdays, start, end *time.Time) error {
	if name == "" {
		return invalidInput("task name is required")
	}
	if !frequency.Valid() {
		return invalidInput("unknown frequency %q", frequency)
	}
	if err := days.Validate(); err != nil {
		return invalidInput("%v", err)
	}
	if start != nil && end != nil && end.Before(*start) {
		return invalidInput("end date is before start date")
	}
	return nil
}

func validateAssignees(assignees []AssigneeInput) error {
	if len(assignees) == 0 {
		return invalidInput("at least one assignee is required")
	}
	seen := make(map[string]bool, len(assignees))
	for _, a := range assignees {
		if a.UserID == "" {
			return invalidInput("assignee user id is required")
		}
		if seen[a.UserID] {
			return invalidInput("user %s is assigned twice", a.UserID)
		}
		seen[a.UserID] = true
		if err := a.Days.Validate(); err != nil {
			return invalidInput("%v", err)
		}
	}
	return nil
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := model.DateOf(*t)
	return &d
}

func sortTask(task *model.Task) {
	sort.Slice(task.Assignments, func(i, j int) bool {
		return task.Assignments[i].UserID < task.Assignments[j].UserID
	})
	sort.Slice(task.Progress, func(i, j int) bool {
		a, b := task.Progress[i], task.Progress[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		return a.Day.Index() < b.Day.Index()
	})
}
