package types

import (
	"time"

	"cloud.google.com/go/civil"
)

// Task statuses double as Kanban columns.
const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID          string      `json:"id,omitempty"`
	CompanyID   string      `json:"company_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      string      `json:"status"`
	TagID       *string     `json:"tag_id"` // nullable
	Position    int         `json:"position"`
	Deadline    *civil.Date `json:"deadline"` // nullable, date only
	CreatedAt   *time.Time  `json:"created_at,omitempty"`

	// Populated on reads that embed children; never written.
	Subtasks    []Subtask        `json:"subtasks,omitempty"`
	Attachments []TaskAttachment `json:"task_attachments,omitempty"`
}

type Subtask struct {
	ID          string              `json:"id,omitempty"`
	TaskID      string              `json:"task_id"`
	Title       string              `json:"title"`
	IsDone      bool                `json:"is_done"`
	Position    int                 `json:"position"`
	Deadline    *civil.Date         `json:"deadline"`
	CreatedAt   *time.Time          `json:"created_at,omitempty"`
	Attachments []SubtaskAttachment `json:"subtask_attachments,omitempty"`
}

// Attachment types
const (
	AttachmentLink     = "link"
	AttachmentMaterial = "material"
)

type TaskAttachment struct {
	ID     string `json:"id,omitempty"`
	TaskID string `json:"task_id"`
	Label  string `json:"label"`
	URL    string `json:"url"`
	Type   string `json:"type"`
}

type SubtaskAttachment struct {
	ID        string `json:"id,omitempty"`
	SubtaskID string `json:"subtask_id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	Type      string `json:"type"`
}

type TaskComment struct {
	ID        string     `json:"id,omitempty"`
	TaskID    string     `json:"task_id"`
	AuthorID  string     `json:"author_id"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type TaskTag struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TaskResponse struct {
	Success      bool   `json:"success"`
	Task         Task   `json:"task,omitempty"`
	ErrorMessage string `json:"error,omitempty"` // only set on failure
}

type GetTasksResponse struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
}

// ApplyTemplateResponse is returned by template application. Children of the
// created tasks are not included.
type ApplyTemplateResponse struct {
	Success bool   `json:"success"`
	Created int    `json:"created"`
	Tasks   []Task `json:"tasks"`
}
