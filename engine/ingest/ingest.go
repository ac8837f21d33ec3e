package ingest

import (
	"github.com/go-playground/validator/v10"
	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/resolver"
	"github.com/intakehq/intake/engine/tracker"
)

// State names the stations of the single-task flow. Terminal states are
// Created, AwaitingConfirmation, DuplicateSkipped, and Failed.
type State string

const (
	StateExtracting           State = "EXTRACTING"
	StateResolving            State = "RESOLVING"
	StateAwaitingConfirmation State = "AWAITING_CONFIRMATION"
	StateDeduping             State = "DEDUPING"
	StateDuplicateSkipped     State = "DUPLICATE_SKIPPED"
	StateCreating             State = "CREATING"
	StateCreated              State = "CREATED"
	StateFailed               State = "FAILED"
)

// Failure codes.
const (
	CodeNoIntent       = "NO_TASK_INTENT"
	CodeMissingProject = "MISSING_PROJECT"
	CodeMissingTitle   = "MISSING_TITLE"
	CodeTrackerError   = "TRACKER_ERROR"
)

// ConfirmedIDs carries the caller's picks from a previous
// AwaitingConfirmation round. The flow is stateless: resubmitting the same
// text with these IDs is the whole disambiguation protocol.
type ConfirmedIDs struct {
	ProjectID  core.ID `json:"project_id,omitempty"`
	AssigneeID core.ID `json:"assignee_id,omitempty"`
	SectionID  core.ID `json:"section_id,omitempty"`
}

// Request is one round of the resolve-and-create flow.
type Request struct {
	Text      string       `json:"text" validate:"required,min=1"`
	Confirmed ConfirmedIDs `json:"confirmed_ids"`
}

var validate = validator.New()

func (r *Request) Validate() error {
	return validate.Struct(r)
}

// FieldCandidates lists ranked options per unresolved field.
type FieldCandidates struct {
	Project  []resolver.Candidate `json:"project,omitempty"`
	Assignee []resolver.Candidate `json:"assignee,omitempty"`
	Section  []resolver.Candidate `json:"section,omitempty"`
}

func (f *FieldCandidates) empty() bool {
	return len(f.Project) == 0 && len(f.Assignee) == 0 && len(f.Section) == 0
}

// Outcome is the terminal result of one round.
type Outcome struct {
	State        State            `json:"state"`
	Task         *tracker.TaskRef `json:"task,omitempty"`
	Title        string           `json:"title,omitempty"`
	ProjectName  string           `json:"project_name,omitempty"`
	AssigneeName string           `json:"assignee_name,omitempty"`
	Candidates   *FieldCandidates `json:"candidates,omitempty"`
	Code         string           `json:"code,omitempty"`
	Reason       string           `json:"reason,omitempty"`
}

func failed(code, reason string) *Outcome {
	return &Outcome{State: StateFailed, Code: code, Reason: reason}
}
