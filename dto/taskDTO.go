package dto

// Dates are calendar dates in 2006-01-02 form.
type CreateTaskRequest struct {
	Name           string            `json:"name" binding:"required,max=200"`
	Description    string            `json:"description"`
	Frequency      string            `json:"frequency" binding:"required,oneof=once daily weekly"`
	RecurrenceDays []string          `json:"recurrenceDays" binding:"dive,oneof=mon tue wed thu fri sat sun"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	Assignees      []AssigneeRequest `json:"assignees" binding:"required,min=1,dive"`
}

// UpdateTaskRequest leaves absent fields unchanged. A present assignees list
// replaces the whole assignment set.
type UpdateTaskRequest struct {
	Name           *string            `json:"name"`
	Description    *string            `json:"description"`
	Frequency      *string            `json:"frequency" binding:"omitempty,oneof=once daily weekly"`
	RecurrenceDays *[]string          `json:"recurrenceDays"`
	StartDate      *string            `json:"startDate"`
	EndDate        *string            `json:"endDate"`
	Assignees      *[]AssigneeRequest `json:"assignees"`
}

type AssigneeRequest struct {
	UserID string   `json:"userId" binding:"required"`
	Days   []string `json:"days" binding:"dive,oneof=mon tue wed thu fri sat sun"`
}

type CompleteTaskRequest struct {
	Day string `json:"day" binding:"omitempty,oneof=mon tue wed thu fri sat sun"`
}

type ResetWeekResponse struct {
	Message       string `json:"message"`
	WeekEnding    string `json:"weekEnding"`
	Archived      int    `json:"archived"`
	EntriesReset  int64  `json:"entriesReset"`
	TasksReopened int64  `json:"tasksReopened"`
}
