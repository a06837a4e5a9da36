package model

import (
	"time"
)

type Frequency string

const (
	FrequencyOnce   Frequency = "once"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly:
		return true
	}
	return false
}

// Task.Completed is derived from the task_progress rows and rewritten in the
// same transaction as every change to them.
type Task struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Description    string          `json:"description"`
	Frequency      Frequency       `gorm:"size:20;not null" json:"frequency"`
	RecurrenceDays Weekdays        `gorm:"column:recurrence_days;not null" json:"recurrenceDays"`
	StartDate      *time.Time      `json:"startDate,omitempty"`
	EndDate        *time.Time      `json:"endDate,omitempty"`
	Completed      bool            `gorm:"not null" json:"completed"`
	CreatedBy      string          `gorm:"size:36" json:"createdBy"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Assignments    []Assignment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Progress       []ProgressEntry `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}

// ActiveOn reports whether day (a local calendar date) falls inside the
// task's optional start/end window.
func (t *Task) ActiveOn(day time.Time) bool {
	d := DateOf(day)
	if t.StartDate != nil && d.Before(DateOf(*t.StartDate)) {
		return false
	}
	if t.EndDate != nil && d.After(DateOf(*t.EndDate)) {
		return false
	}
	return true
}

// DateOf truncates t to its calendar date, expressed at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Assignment is the user_tasks edge: UserID is responsible for TaskID on Days.
// DefaultDays marks days taken from the task's recurrence days; they follow
// the task when its recurrence changes.
type Assignment struct {
	TaskID      string   `gorm:"primaryKey;size:36" json:"taskId"`
	UserID      string   `gorm:"primaryKey;size:36" json:"userId"`
	Days        Weekdays `gorm:"not null" json:"days"`
	DefaultDays bool     `gorm:"not null;default:false" json:"defaultDays"`
	Completed   bool     `gorm:"not null" json:"completed"`
	User        *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

func (Assignment) TableName() string {
	return "user_tasks"
}
