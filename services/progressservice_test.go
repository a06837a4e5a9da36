package services

import (
	"context"
	"testing"
	"time"

	"choretracker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDishesScenario(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	a := createUser(t, db, "anna", false)
	b := createUser(t, db, "bela", false)

	task, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Dishes",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Monday, model.Wednesday),
		Assignees:      []AssigneeInput{{UserID: a.ID}, {UserID: b.ID}},
	})
	require.NoError(t, err)

	steps := []struct {
		user *model.User
		day  model.Weekday
		want bool
	}{
		{a, model.Monday, false},
		{b, model.Monday, false},
		{a, model.Wednesday, false},
		{b, model.Wednesday, true},
	}
	for _, s := range steps {
		got, err := MarkComplete(ctx, db, callerOf(s.user), task.ID, dayPtr(s.day))
		require.NoError(t, err)
		assert.Equal(t, s.want, got.Completed, "%s completes %s", s.user.Username, s.day)
		requireAggregateConsistent(t, db, task.ID)
	}

	loc := time.UTC
	_, err = ResetWeek(ctx, db, time.Date(2026, 10, 18, 23, 0, 0, 0, loc), loc)
	require.NoError(t, err)

	assert.False(t, loadTask(t, db, task.ID).Completed)
	assert.False(t, loadAssignment(t, db, task.ID, a.ID).Completed)
	assert.False(t, loadAssignment(t, db, task.ID, b.ID).Completed)
	requireAggregateConsistent(t, db, task.ID)

	_, err = MarkComplete(ctx, db, callerOf(a), task.ID, nil)
	require.NoError(t, err)
	assert.True(t, loadAssignment(t, db, task.ID, a.ID).Completed)
	requireAggregateConsistent(t, db, task.ID)
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	anna := createUser(t, db, "anna", false)

	task, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Trash",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Tuesday),
		Assignees:      []AssigneeInput{{UserID: anna.ID}},
	})
	require.NoError(t, err)

	first, err := MarkComplete(ctx, db, callerOf(anna), task.ID, dayPtr(model.Tuesday))
	require.NoError(t, err)
	require.Len(t, first.Progress, 1)
	firstAt := first.Progress[0].CompletedAt
	require.NotNil(t, firstAt)

	second, err := MarkComplete(ctx, db, callerOf(anna), task.ID, dayPtr(model.Tuesday))
	require.NoError(t, err)
	assert.True(t, second.Completed)
	require.NotNil(t, second.Progress[0].CompletedAt)
	assert.True(t, firstAt.Equal(*second.Progress[0].CompletedAt))
	requireAggregateConsistent(t, db, task.ID)
}

func TestMarkCompleteRejects(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	anna := createUser(t, db, "anna", false)
	bela := createUser(t, db, "bela", false)

	task, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Dishes",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Monday),
		Assignees:      []AssigneeInput{{UserID: anna.ID}},
	})
	require.NoError(t, err)

	_, err = MarkComplete(ctx, db, callerOf(bela), task.ID, nil)
	assert.ErrorIs(t, err, ErrNotAssigned)

	_, err = MarkComplete(ctx, db, callerOf(anna), task.ID, dayPtr(model.Sunday))
	assert.ErrorIs(t, err, ErrNotAssigned)

	_, err = MarkComplete(ctx, db, callerOf(anna), task.ID, dayPtr("someday"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = MarkComplete(ctx, db, callerOf(anna), "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, loadTask(t, db, task.ID).Completed)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	anna := createUser(t, db, "anna", false)
	bela := createUser(t, db, "bela", false)

	dishes, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Dishes",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Monday, model.Wednesday),
		Assignees:      []AssigneeInput{{UserID: anna.ID}, {UserID: bela.ID}},
	})
	require.NoError(t, err)
	_, err = CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Laundry",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Saturday),
		Assignees:      []AssigneeInput{{UserID: anna.ID}},
	})
	require.NoError(t, err)

	_, err = MarkComplete(ctx, db, callerOf(anna), dishes.ID, dayPtr(model.Wednesday))
	require.NoError(t, err)

	mine, err := GetProgress(ctx, db, callerOf(anna), ProgressFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "Dishes", mine[0].TaskName)
	assert.Equal(t, model.Monday, mine[0].Day)
	assert.False(t, mine[0].Completed)
	assert.Equal(t, model.Wednesday, mine[1].Day)
	assert.True(t, mine[1].Completed)
	assert.NotNil(t, mine[1].CompletedAt)
	assert.Equal(t, "Laundry", mine[2].TaskName)

	_, err = GetProgress(ctx, db, callerOf(anna), ProgressFilter{All: true})
	assert.ErrorIs(t, err, ErrForbidden)

	all, err := GetProgress(ctx, db, callerOf(admin), ProgressFilter{All: true, TaskID: dishes.ID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "anna", all[0].Username)
	assert.Equal(t, "bela", all[3].Username)
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	anna := createUser(t, db, "anna", false)
	bela := createUser(t, db, "bela", false)

	task, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
		Name:           "Dishes",
		Frequency:      model.FrequencyWeekly,
		RecurrenceDays: days(model.Monday, model.Tuesday),
		Assignees:      []AssigneeInput{{UserID: anna.ID}, {UserID: bela.ID}},
	})
	require.NoError(t, err)
	_, err = MarkComplete(ctx, db, callerOf(bela), task.ID, dayPtr(model.Monday))
	require.NoError(t, err)

	loc, err := time.LoadLocation("Europe/Budapest")
	require.NoError(t, err)
	monday := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)

	early, err := Reminders(ctx, db, monday.Add(19*time.Hour+59*time.Minute), loc, 20)
	require.NoError(t, err)
	assert.Empty(t, early)

	// 19:30 UTC is 21:30 in Budapest
	late, err := Reminders(ctx, db, time.Date(2026, 10, 19, 19, 30, 0, 0, time.UTC), loc, 20)
	require.NoError(t, err)
	require.Len(t, late, 1)
	assert.Equal(t, "anna", late[0].Username)
	assert.Equal(t, model.Monday, late[0].Day)
}

func TestCurrentWeek(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	admin := createUser(t, db, "admin", true)
	anna := createUser(t, db, "anna", false)

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	create := func(name string, freq model.Frequency, start, end *time.Time) {
		_, err := CreateTask(ctx, db, callerOf(admin), TaskInput{
			Name:           name,
			Frequency:      freq,
			RecurrenceDays: days(model.Monday),
			StartDate:      start,
			EndDate:        end,
			Assignees:      []AssigneeInput{{UserID: anna.ID}},
		})
		require.NoError(t, err)
	}
	create("Always", model.FrequencyWeekly, nil, nil)
	create("Ended", model.FrequencyWeekly, nil, &yesterday)
	create("Future", model.FrequencyWeekly, &tomorrow, nil)
	create("Today only", model.FrequencyWeekly, &now, &now)
	create("Daily", model.FrequencyDaily, nil, nil)

	tasks, err := CurrentWeek(ctx, db, now, time.UTC)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Always", tasks[0].Name)
	assert.Equal(t, "Today only", tasks[1].Name)
	assert.Len(t, tasks[0].Assignments, 1)
}
