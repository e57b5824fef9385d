package models

import "strings"

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskStatuses lists every status in board column order.
var TaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusFailed,
}

// Valid reports whether s is one of the four known statuses.
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TaskType doubles as the recurrence pattern.
type TaskType string

const (
	TaskTypeOneTime TaskType = "one_time"
	TaskTypeDaily   TaskType = "daily"
	TaskTypeMonthly TaskType = "monthly"
)

// FilterAll disables the status predicate of the task filter.
const FilterAll = "all"

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description"`
	Status        TaskStatus `json:"status"`
	TaskType      TaskType   `json:"task_type"`
	ScheduledTime *string    `json:"scheduled_time"` // HH:MM
	ScheduledDate *string    `json:"scheduled_date"` // YYYY-MM-DD or day of month
	Recurrence    TaskType   `json:"recurrence"`
	NextRunAt     *Timestamp `json:"next_run_at"`
	CreatedAt     Timestamp  `json:"created_at"`
	UpdatedAt     Timestamp  `json:"updated_at"`
}

func (t Task) Key() string { return t.ID }

// TaskForm is the create/edit form as the user fills it in. Empty strings
// mean "not set".
type TaskForm struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	TaskType      TaskType `json:"task_type"`
	ScheduledTime string   `json:"scheduled_time"`
	ScheduledDate string   `json:"scheduled_date"`
	Recurrence    TaskType `json:"recurrence"`
}

// NewTaskForm returns the blank create form.
func NewTaskForm() TaskForm {
	return TaskForm{TaskType: TaskTypeOneTime, Recurrence: TaskTypeOneTime}
}

// FormFromTask prefills the edit form.
func FormFromTask(t Task) TaskForm {
	f := TaskForm{
		Title:      t.Title,
		TaskType:   t.TaskType,
		Recurrence: t.Recurrence,
	}
	if t.Description != nil {
		f.Description = *t.Description
	}
	if t.ScheduledTime != nil {
		f.ScheduledTime = *t.ScheduledTime
	}
	if t.ScheduledDate != nil {
		f.ScheduledDate = *t.ScheduledDate
	}
	if f.TaskType == "" {
		f.TaskType = TaskTypeOneTime
	}
	if f.Recurrence == "" {
		f.Recurrence = TaskTypeOneTime
	}
	return f
}

// WithType switches the task type. Recurrence follows the type and daily
// tasks carry no date.
func (f TaskForm) WithType(tt TaskType) TaskForm {
	f.TaskType = tt
	f.Recurrence = tt
	if tt == TaskTypeDaily {
		f.ScheduledDate = ""
	}
	return f
}

// Payload converts the form to the wire body shared by create and update.
func (f TaskForm) Payload() TaskPayload {
	tt := f.TaskType
	if tt == "" {
		tt = TaskTypeOneTime
	}
	rec := f.Recurrence
	if rec == "" {
		rec = tt
	}
	return TaskPayload{
		Title:         f.Title,
		Description:   optional(f.Description),
		TaskType:      tt,
		Recurrence:    rec,
		ScheduledTime: optional(f.ScheduledTime),
		ScheduledDate: optional(f.ScheduledDate),
	}
}

// TaskPayload is the JSON body of POST /api/tasks and full PUT /api/tasks/{id}.
type TaskPayload struct {
	Title         string   `json:"title"`
	Description   *string  `json:"description"`
	TaskType      TaskType `json:"task_type"`
	Recurrence    TaskType `json:"recurrence"`
	ScheduledTime *string  `json:"scheduled_time"`
	ScheduledDate *string  `json:"scheduled_date"`
}

// TaskStatusPatch is the partial PUT body used for status changes.
type TaskStatusPatch struct {
	Status TaskStatus `json:"status"`
}

// TaskStats are the counters shown above the task list.
type TaskStats struct {
	All        int `json:"all"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Board holds one bucket per status.
type Board struct {
	Pending    []Task `json:"pending"`
	InProgress []Task `json:"in_progress"`
	Completed  []Task `json:"completed"`
	Failed     []Task `json:"failed"`
}

// Column returns the bucket for status, or nil for an unknown status.
func (b *Board) Column(status TaskStatus) *[]Task {
	switch status {
	case TaskStatusPending:
		return &b.Pending
	case TaskStatusInProgress:
		return &b.InProgress
	case TaskStatusCompleted:
		return &b.Completed
	case TaskStatusFailed:
		return &b.Failed
	}
	return nil
}

type ViewMode string

const (
	ViewModeList  ViewMode = "list"
	ViewModeBoard ViewMode = "board"
)

// TaskView is what the console exposes for the tasks page.
type TaskView struct {
	Filter          string    `json:"filter"`
	Search          string    `json:"search"`
	Mode            ViewMode  `json:"mode"`
	Tasks           []Task    `json:"tasks"`
	Board           *Board    `json:"board,omitempty"`
	Stats           TaskStats `json:"stats"`
	Loading         bool      `json:"loading"`
	Error           string    `json:"error,omitempty"`
	ResourceVersion uint64    `json:"resource_version"`
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
