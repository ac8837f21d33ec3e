package tracker

import "github.com/intakehq/intake/engine/core"

// TaskRef points at a created task.
type TaskRef struct {
	ID  core.ID `json:"id"`
	URL string  `json:"url"`
}

// Project is a tracker-side project summary.
type Project struct {
	ID          core.ID `json:"id"`
	Name        string  `json:"name"`
	WorkspaceID string  `json:"workspace_id,omitempty"`
}

// User is a tracker-side user summary.
type User struct {
	ID    core.ID `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
}

// Section is a tracker-side section summary.
type Section struct {
	ID   core.ID `json:"id"`
	Name string  `json:"name"`
}

// CreateTaskInput is the full creation payload. Exactly one of DueOn and
// DueAt may be sent; DueAt wins when both are set. ParentID turns the task
// into a subtask, which inherits the parent's project and must not carry a
// project or section of its own.
type CreateTaskInput struct {
	Name       string
	Notes      string
	ProjectID  core.ID
	ParentID   core.ID
	AssigneeID core.ID
	SectionID  core.ID
	DueOn      string // YYYY-MM-DD
	DueAt      string // RFC 3339 with time
}
