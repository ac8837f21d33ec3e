package transcript

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/extractor"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/pkg/logger"
)

// Section names the pipeline routes its tasks to.
const (
	meetingNotesSection = "📅 Meeting Notes"
	strategySection     = "🧭 Strategy"
)

// TaskCreator is the tracker surface the pipeline needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, input *tracker.CreateTaskInput) (*tracker.TaskRef, error)
}

// SectionFinder resolves a section name inside a project to an ID. A zero
// ID means "use the tracker default" and is not an error.
type SectionFinder interface {
	ResolveSectionID(ctx context.Context, projectID core.ID, sectionName string) (core.ID, error)
}

// Input is one transcript-processing job.
type Input struct {
	ProjectID      core.ID
	TranscriptText string
	RecordingLink  string
	FileName       string
}

// Result aggregates everything the pipeline produced. Errors collects
// non-fatal branch failures; the result is usable as long as ParentTaskID
// is set.
type Result struct {
	ParentTaskID       core.ID       `json:"parent_task_id"`
	ParentTaskURL      string        `json:"parent_task_url"`
	SubtaskIDs         []core.ID     `json:"subtask_ids"`
	IntelligenceTaskID core.ID       `json:"intelligence_task_id,omitempty"`
	ProcessingTime     time.Duration `json:"processing_time"`
	Errors             []string      `json:"errors"`
}

// Pipeline turns a meeting transcript into a parent meeting task, action
// item subtasks, and a deal intelligence task. The parent task is created
// first; the two extraction branches then run concurrently and degrade
// independently.
type Pipeline struct {
	extractor extractor.Extractor
	tracker   TaskCreator
	sections  SectionFinder
	chunkSize int
	now       func() time.Time
}

func NewPipeline(ext extractor.Extractor, tc TaskCreator, sections SectionFinder) *Pipeline {
	return &Pipeline{
		extractor: ext,
		tracker:   tc,
		sections:  sections,
		chunkSize: defaultChunkSize,
		now:       time.Now,
	}
}

// Process runs the full pipeline. It returns an error only when the parent
// task cannot be created; every later failure lands in Result.Errors.
func (p *Pipeline) Process(ctx context.Context, in *Input) (*Result, error) {
	log := logger.FromContext(ctx)
	start := p.now()

	text := Sanitize(in.TranscriptText)
	meta := p.meetingMetadata(ctx, in.TranscriptText, text)

	parent, err := p.createParentTask(ctx, in, meta)
	if err != nil {
		return nil, fmt.Errorf("parent task creation: %w", err)
	}
	log.Info("parent meeting task created", "task_id", parent.ID, "client", meta.ClientName)

	result := &Result{
		ParentTaskID:  parent.ID,
		ParentTaskURL: parent.URL,
	}
	var mu sync.Mutex
	addError := func(msg string) {
		mu.Lock()
		result.Errors = append(result.Errors, msg)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := p.createActionItemSubtasks(gctx, text, parent.ID)
		if err != nil {
			addError(fmt.Sprintf("action items extraction failed: %s", err))
			return nil
		}
		mu.Lock()
		result.SubtaskIDs = ids
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		id, err := p.createIntelligenceTask(gctx, text, in.ProjectID, meta)
		if err != nil {
			addError(fmt.Sprintf("deal intelligence creation failed: %s", err))
			return nil
		}
		mu.Lock()
		result.IntelligenceTaskID = id
		mu.Unlock()
		return nil
	})
	// Branch failures are collected, never returned.
	_ = g.Wait()

	result.ProcessingTime = p.now().Sub(start)
	log.Info("transcript pipeline finished",
		"subtasks", len(result.SubtaskIDs),
		"errors", len(result.Errors),
		"duration", result.ProcessingTime)
	return result, nil
}

// meetingMetadata asks the extractor for structured metadata and falls back
// to regex scraping of the raw text when the extractor fails.
func (p *Pipeline) meetingMetadata(ctx context.Context, raw, sanitized string) *extractor.MeetingMetadata {
	meta, err := p.extractor.ExtractMeetingMetadata(ctx, sanitized)
	if err != nil {
		logger.FromContext(ctx).Warn("metadata extraction failed, using regex fallback", "error", err)
		return fallbackMetadata(raw, p.now())
	}
	return meta
}

func (p *Pipeline) createParentTask(
	ctx context.Context,
	in *Input,
	meta *extractor.MeetingMetadata,
) (*tracker.TaskRef, error) {
	sectionID, err := p.sections.ResolveSectionID(ctx, in.ProjectID, meetingNotesSection)
	if err != nil {
		return nil, err
	}
	return p.tracker.CreateTask(ctx, &tracker.CreateTaskInput{
		Name:      fmt.Sprintf("Meeting: %s - %s", meta.ClientName, meta.MeetingDate),
		Notes:     parentNotes(in, meta),
		ProjectID: in.ProjectID,
		SectionID: sectionID,
		DueOn:     meta.MeetingDate,
	})
}

func parentNotes(in *Input, meta *extractor.MeetingMetadata) string {
	var b strings.Builder
	b.WriteString("**Meeting Summary**\n")
	b.WriteString(meta.Summary)
	b.WriteString("\n\n**Attendees:** ")
	b.WriteString(strings.Join(meta.Attendees, ", "))
	b.WriteString("\n**Duration:** ")
	b.WriteString(orDefault(meta.Duration, "Not specified"))
	b.WriteString("\n**Meeting Type:** ")
	b.WriteString(meta.MeetingType)
	if in.RecordingLink != "" {
		b.WriteString("\n\n**Recording:** ")
		b.WriteString(in.RecordingLink)
	}
	if in.FileName != "" {
		b.WriteString("\n**Transcript:** ")
		b.WriteString(in.FileName)
	}
	return b.String()
}

// createActionItemSubtasks extracts action items chunk by chunk and creates
// one subtask per item. A failed chunk or a failed subtask is logged and
// skipped; the branch fails only when every chunk failed and nothing was
// extracted.
func (p *Pipeline) createActionItemSubtasks(
	ctx context.Context,
	text string,
	parentID core.ID,
) ([]core.ID, error) {
	log := logger.FromContext(ctx)
	chunks := Chunk(text, p.chunkSize)
	var items []extractor.ActionItem
	var chunkErr error
	for i, chunk := range chunks {
		extracted, err := p.extractor.ExtractActionItems(ctx, chunk)
		if err != nil {
			log.Error("action item extraction failed for chunk", "chunk", i, "error", err)
			chunkErr = err
			continue
		}
		items = append(items, extracted...)
	}
	if len(items) == 0 && chunkErr != nil {
		return nil, chunkErr
	}

	var ids []core.ID
	for _, item := range items {
		// Subtasks inherit the parent's project; the tracker rejects an
		// explicit project or section on them.
		input := &tracker.CreateTaskInput{
			Name:     item.Title,
			Notes:    fmt.Sprintf("Context: %s", item.Context),
			ParentID: parentID,
			DueOn:    item.DueDate,
		}
		ref, err := p.tracker.CreateTask(ctx, input)
		if err != nil {
			log.Error("failed to create subtask", "title", item.Title, "error", err)
			continue
		}
		ids = append(ids, ref.ID)
	}
	return ids, nil
}

func (p *Pipeline) createIntelligenceTask(
	ctx context.Context,
	text string,
	projectID core.ID,
	meta *extractor.MeetingMetadata,
) (core.ID, error) {
	intel, err := p.extractor.ExtractDealIntelligence(ctx, text)
	if err != nil {
		return "", err
	}
	sectionID, err := p.sections.ResolveSectionID(ctx, projectID, strategySection)
	if err != nil {
		return "", err
	}
	ref, err := p.tracker.CreateTask(ctx, &tracker.CreateTaskInput{
		Name:      fmt.Sprintf("Deal Intelligence: %s - %s", meta.ClientName, meta.MeetingDate),
		Notes:     intelligenceNotes(intel),
		ProjectID: projectID,
		SectionID: sectionID,
	})
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func intelligenceNotes(intel *extractor.DealIntelligence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Sentiment:** %s (Confidence: %d%%)\n\n", intel.Sentiment, intel.ConfidenceScore)
	b.WriteString("**Key Points:**\n")
	b.WriteString(bulleted(intel.KeyPoints, "None identified"))
	b.WriteString("\n\n**Objections/Concerns:**\n")
	b.WriteString(bulleted(intel.Objections, "None identified"))
	b.WriteString("\n\n**Competitors Mentioned:**\n")
	b.WriteString(orDefault(strings.Join(intel.CompetitorsMentioned, ", "), "None"))
	fmt.Fprintf(&b, "\n\n**Budget Discussed:** %s", yesNo(intel.BudgetDiscussed))
	fmt.Fprintf(&b, "\n**Decision Timeline:** %s", orDefault(intel.DecisionTimeline, "Not specified"))
	b.WriteString("\n\n**Recommended Next Action:**\n")
	b.WriteString(intel.NextBestAction)
	return b.String()
}

func bulleted(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "• " + item
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
