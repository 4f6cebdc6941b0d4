// Package httpapi provides HTTP handlers and data transfer objects for the taskpop API.
package httpapi

import "github.com/dsjohal14/taskpop/internal/scope/tasks"

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	TaskCount int    `json:"task_count"`
	PopCount  int    `json:"pop_count"`
}

// TaskDTO is a queued task with its rendered list line
type TaskDTO struct {
	ID          string `json:"id"`
	Description string `json:"desc"`
	Priority    int    `json:"priority"`
	Display     string `json:"display"`
}

// ListResponse represents the queue in priority order
type ListResponse struct {
	Tasks   []TaskDTO `json:"tasks"`
	Count   int       `json:"count"`
	Current *TaskDTO  `json:"current,omitempty"`
}

// AddTaskRequest represents a manual task entry
type AddTaskRequest struct {
	Description string `json:"description"`
}

// AddTaskResponse reports whether the task was queued.
// Blank descriptions are ignored, not rejected.
type AddTaskResponse struct {
	Added bool     `json:"added"`
	Task  *TaskDTO `json:"task,omitempty"`
	Count int      `json:"count"`
}

// PopResponse reports the popped task, if any
type PopResponse struct {
	Popped    bool     `json:"popped"`
	Task      *TaskDTO `json:"task,omitempty"`
	NowDoing  string   `json:"now_doing,omitempty"`
	PopCount  int      `json:"pop_count"`
	Remaining int      `json:"remaining"`
}

// ImportResponse reports how an uploaded file was interpreted
type ImportResponse struct {
	tasks.ImportResult
}

// ExportFileResponse reports where a manual export was written
type ExportFileResponse struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
