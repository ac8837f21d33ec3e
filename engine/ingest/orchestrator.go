package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/dedupe"
	"github.com/intakehq/intake/engine/entity"
	"github.com/intakehq/intake/engine/extractor"
	"github.com/intakehq/intake/engine/resolver"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/pkg/logger"
)

// TaskCreator is the single tracker call this flow needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, input *tracker.CreateTaskInput) (*tracker.TaskRef, error)
}

// NameResolver maps raw names to match results.
type NameResolver interface {
	Resolve(ctx context.Context, rawName string, kind entity.Kind, scope resolver.Scope) (resolver.MatchResult, error)
}

// Guard is the idempotency check-and-record pair.
type Guard interface {
	WasRecentlyPerformed(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}

// Orchestrator drives a single free-text request through extraction,
// resolution, dedupe, and creation. It holds no per-request state; the
// confirmation protocol is a pure function of (text, confirmed IDs).
type Orchestrator struct {
	extractor extractor.Extractor
	resolver  NameResolver
	guard     Guard
	tracker   TaskCreator
	now       func() time.Time
}

func NewOrchestrator(ext extractor.Extractor, res NameResolver, guard Guard, tc TaskCreator) *Orchestrator {
	return &Orchestrator{
		extractor: ext,
		resolver:  res,
		guard:     guard,
		tracker:   tc,
		now:       time.Now,
	}
}

// ResolveAndCreate runs one round of the flow. Ambiguity and duplicates are
// modeled as outcomes, not errors; the returned error is reserved for
// entity-store and dedupe-store failures.
func (o *Orchestrator) ResolveAndCreate(ctx context.Context, req *Request) (*Outcome, error) {
	log := logger.FromContext(ctx)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	log.Debug("extracting intent", "state", StateExtracting)
	intent, err := o.extractor.ExtractIntent(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("intent extraction: %w", err)
	}
	if intent.Intent != extractor.IntentCreateTask {
		return failed(CodeNoIntent, "no task creation intent detected in the input"), nil
	}

	log.Debug("resolving references", "state", StateResolving,
		"project", intent.ProjectName, "assignee", intent.AssigneeName)
	res, err := o.resolveReferences(ctx, intent, req.Confirmed)
	if err != nil {
		return nil, core.NewError(err, "ENTITY_STORE_ERROR", map[string]any{"project": intent.ProjectName})
	}
	if !res.pending.empty() {
		return &Outcome{
			State:      StateAwaitingConfirmation,
			Title:      intent.Title,
			Candidates: res.pending,
		}, nil
	}
	if res.projectID.IsZero() {
		return failed(CodeMissingProject, "could not determine project, specify a project name"), nil
	}
	if intent.Title == "" {
		return failed(CodeMissingTitle, "could not determine task title from the input"), nil
	}

	log.Debug("checking for duplicates", "state", StateDeduping)
	key := dedupe.Key(res.projectID, res.assigneeID, intent.Title, o.now())
	seen, err := o.guard.WasRecentlyPerformed(ctx, key)
	if err != nil {
		return nil, core.NewError(err, "DEDUPE_STORE_ERROR", nil)
	}
	if seen {
		log.Info("duplicate task creation skipped", "title", intent.Title, "project_id", res.projectID)
		return &Outcome{
			State:       StateDuplicateSkipped,
			Title:       intent.Title,
			ProjectName: intent.ProjectName,
		}, nil
	}

	log.Debug("creating task", "state", StateCreating, "title", intent.Title)
	dueOn, dueAt := dueFields(ctx, intent)
	ref, err := o.tracker.CreateTask(ctx, &tracker.CreateTaskInput{
		Name:       intent.Title,
		Notes:      intent.Description,
		ProjectID:  res.projectID,
		AssigneeID: res.assigneeID,
		SectionID:  res.sectionID,
		DueOn:      dueOn,
		DueAt:      dueAt,
	})
	if err != nil {
		return failed(CodeTrackerError, err.Error()), nil
	}
	if err := o.guard.Record(ctx, key); err != nil {
		// The task exists; a failed record only risks a duplicate on the
		// next identical submission.
		log.Warn("failed to record idempotency key", "error", err)
	}
	log.Info("task created", "state", StateCreated, "task_id", ref.ID, "project_id", res.projectID)
	return &Outcome{
		State:        StateCreated,
		Task:         ref,
		Title:        intent.Title,
		ProjectName:  intent.ProjectName,
		AssigneeName: intent.AssigneeName,
	}, nil
}

type resolution struct {
	projectID  core.ID
	assigneeID core.ID
	sectionID  core.ID
	pending    *FieldCandidates
}

// resolveReferences resolves project, assignee, and section, honoring any
// IDs the caller already confirmed. The orchestrator never picks among
// candidates itself.
func (o *Orchestrator) resolveReferences(
	ctx context.Context,
	intent *extractor.Intent,
	confirmed ConfirmedIDs,
) (*resolution, error) {
	res := &resolution{
		projectID:  confirmed.ProjectID,
		assigneeID: confirmed.AssigneeID,
		sectionID:  confirmed.SectionID,
		pending:    &FieldCandidates{},
	}
	if res.projectID.IsZero() && intent.ProjectName != "" {
		match, err := o.resolver.Resolve(ctx, intent.ProjectName, entity.KindProject, resolver.Scope{})
		if err != nil {
			return nil, err
		}
		res.projectID = match.ID
		res.pending.Project = match.Candidates
	}
	if res.assigneeID.IsZero() && intent.AssigneeName != "" {
		match, err := o.resolver.Resolve(ctx, intent.AssigneeName, entity.KindUser, resolver.Scope{})
		if err != nil {
			return nil, err
		}
		res.assigneeID = match.ID
		res.pending.Assignee = match.Candidates
	}
	// Sections are scoped to the project, so an unresolved project defers
	// section resolution to the next round.
	if res.sectionID.IsZero() && intent.SectionName != "" && !res.projectID.IsZero() {
		match, err := o.resolver.Resolve(ctx, intent.SectionName, entity.KindSection, resolver.Scope{ProjectID: res.projectID})
		if err != nil {
			return nil, err
		}
		res.sectionID = match.ID
		res.pending.Section = match.Candidates
	}
	return res, nil
}

// dueFields keeps at most one well-formed due value; a datetime wins over a
// plain date. The extractor may echo natural language here, which the
// tracker would reject.
func dueFields(ctx context.Context, intent *extractor.Intent) (dueOn, dueAt string) {
	log := logger.FromContext(ctx)
	if intent.DueDateTime != "" {
		if _, err := time.Parse(time.RFC3339, intent.DueDateTime); err == nil {
			return "", intent.DueDateTime
		}
		log.Debug("dropping unparseable due datetime", "value", intent.DueDateTime)
	}
	if intent.DueDate != "" {
		if _, err := time.Parse("2006-01-02", intent.DueDate); err == nil {
			return intent.DueDate, ""
		}
		log.Debug("dropping unparseable due date", "value", intent.DueDate)
	}
	return "", ""
}
