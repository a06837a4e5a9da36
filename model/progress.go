package model

import "time"

// ProgressEntry is one (task, user, day) completion flag.
type ProgressEntry struct {
	TaskID      string     `gorm:"primaryKey;size:36" json:"taskId"`
	UserID      string     `gorm:"primaryKey;size:36" json:"userId"`
	Day         Weekday    `gorm:"primaryKey;size:3" json:"day"`
	Completed   bool       `gorm:"not null;index" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (ProgressEntry) TableName() string {
	return "task_progress"
}

// ProgressHistory is the snapshot of a progress row taken when a week is closed.
type ProgressHistory struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WeekEnding  time.Time  `gorm:"index;not null" json:"weekEnding"`
	TaskID      string     `gorm:"size:36;not null" json:"taskId"`
	TaskName    string     `gorm:"size:200" json:"taskName"`
	UserID      string     `gorm:"size:36;not null" json:"userId"`
	Username    string     `gorm:"size:100" json:"username"`
	Day         Weekday    `gorm:"size:3;not null" json:"day"`
	Completed   bool       `gorm:"not null" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	ArchivedAt  time.Time  `gorm:"not null" json:"archivedAt"`
}

func (ProgressHistory) TableName() string {
	return "progress_history"
}

// ProgressRow is the joined read model returned by progress queries.
type ProgressRow struct {
	TaskID      string     `json:"taskId"`
	TaskName    string     `json:"taskName"`
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	Day         Weekday    `json:"day"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
