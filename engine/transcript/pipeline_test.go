package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/intakehq/intake/engine/core"
	"github.com/intakehq/intake/engine/extractor"
	"github.com/intakehq/intake/engine/tracker"
	"github.com/intakehq/intake/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	metadata     *extractor.MeetingMetadata
	metadataErr  error
	actionItems  []extractor.ActionItem
	actionErr    error
	intelligence *extractor.DealIntelligence
	intelErr     error

	mu          sync.Mutex
	actionCalls int
}

func (f *fakeExtractor) ExtractIntent(context.Context, string) (*extractor.Intent, error) {
	return nil, errors.New("not used")
}

func (f *fakeExtractor) ExtractMeetingMetadata(context.Context, string) (*extractor.MeetingMetadata, error) {
	return f.metadata, f.metadataErr
}

func (f *fakeExtractor) ExtractActionItems(context.Context, string) ([]extractor.ActionItem, error) {
	f.mu.Lock()
	f.actionCalls++
	f.mu.Unlock()
	return f.actionItems, f.actionErr
}

func (f *fakeExtractor) ExtractDealIntelligence(context.Context, string) (*extractor.DealIntelligence, error) {
	return f.intelligence, f.intelErr
}

type fakeTracker struct {
	mu     sync.Mutex
	calls  []*tracker.CreateTaskInput
	errFor map[string]error // task name prefix -> error
	nextID int
}

func (f *fakeTracker) CreateTask(_ context.Context, input *tracker.CreateTaskInput) (*tracker.TaskRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, input)
	for prefix, err := range f.errFor {
		if strings.HasPrefix(input.Name, prefix) {
			return nil, err
		}
	}
	f.nextID++
	id := core.ID(fmt.Sprintf("task-%d", f.nextID))
	return &tracker.TaskRef{ID: id, URL: "https://tracker/" + string(id)}, nil
}

func (f *fakeTracker) byPrefix(prefix string) []*tracker.CreateTaskInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*tracker.CreateTaskInput
	for _, c := range f.calls {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

type fakeSections struct {
	ids map[string]core.ID
	err error
}

func (f *fakeSections) ResolveSectionID(_ context.Context, _ core.ID, name string) (core.ID, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.ids[name], nil
}

func testMetadata() *extractor.MeetingMetadata {
	return &extractor.MeetingMetadata{
		ClientName:  "Acme",
		MeetingDate: "2026-03-10",
		Attendees:   []string{"Gabriel", "Dana"},
		Duration:    "45 minutes",
		MeetingType: "demo",
		Summary:     "Walked through the product.",
	}
}

func testIntelligence() *extractor.DealIntelligence {
	return &extractor.DealIntelligence{
		Sentiment:       "positive",
		ConfidenceScore: 70,
		KeyPoints:       []string{"pricing fits budget"},
		NextBestAction:  "Send proposal",
	}
}

func newTestPipeline(ext *fakeExtractor, tc *fakeTracker, sections *fakeSections) *Pipeline {
	if sections == nil {
		sections = &fakeSections{ids: map[string]core.ID{}}
	}
	return NewPipeline(ext, tc, sections)
}

func testCtx(t *testing.T) context.Context {
	return logger.ContextWithLogger(t.Context(), logger.NewLogger(logger.TestConfig()))
}

func TestPipeline_Process(t *testing.T) {
	t.Run("Should create parent subtasks and intelligence task", func(t *testing.T) {
		ext := &fakeExtractor{
			metadata: testMetadata(),
			actionItems: []extractor.ActionItem{
				{Title: "Send pricing deck", Context: "requested during demo", DueDate: "2026-03-12"},
				{Title: "Schedule follow-up", Context: "agreed at close"},
			},
			intelligence: testIntelligence(),
		}
		tc := &fakeTracker{}
		sections := &fakeSections{ids: map[string]core.ID{
			meetingNotesSection: "sec-notes",
			strategySection:     "sec-strategy",
		}}
		p := newTestPipeline(ext, tc, sections)

		res, err := p.Process(testCtx(t), &Input{
			ProjectID:      "p1",
			TranscriptText: "Gabriel: thanks for joining. Dana: happy to be here.",
			RecordingLink:  "https://grain.app/rec/1",
			FileName:       "acme-demo.pdf",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, res.ParentTaskID)
		assert.Len(t, res.SubtaskIDs, 2)
		assert.NotEmpty(t, res.IntelligenceTaskID)
		assert.Empty(t, res.Errors)

		parents := tc.byPrefix("Meeting: Acme - 2026-03-10")
		require.Len(t, parents, 1)
		assert.Equal(t, core.ID("sec-notes"), parents[0].SectionID)
		assert.Contains(t, parents[0].Notes, "Walked through the product.")
		assert.Contains(t, parents[0].Notes, "https://grain.app/rec/1")
		assert.Contains(t, parents[0].Notes, "acme-demo.pdf")
		assert.Equal(t, "2026-03-10", parents[0].DueOn)

		subtasks := tc.byPrefix("Send pricing deck")
		require.Len(t, subtasks, 1)
		assert.Equal(t, res.ParentTaskID, subtasks[0].ParentID)
		assert.Empty(t, subtasks[0].ProjectID)
		assert.Equal(t, "2026-03-12", subtasks[0].DueOn)

		intel := tc.byPrefix("Deal Intelligence: Acme - 2026-03-10")
		require.Len(t, intel, 1)
		assert.Equal(t, core.ID("sec-strategy"), intel[0].SectionID)
		assert.Contains(t, intel[0].Notes, "Send proposal")
		assert.Contains(t, intel[0].Notes, "• pricing fits budget")
	})

	t.Run("Should abort with zero branch calls when the parent task fails", func(t *testing.T) {
		ext := &fakeExtractor{metadata: testMetadata(), intelligence: testIntelligence()}
		tc := &fakeTracker{errFor: map[string]error{"Meeting:": errors.New("boom")}}
		p := newTestPipeline(ext, tc, nil)

		_, err := p.Process(testCtx(t), &Input{ProjectID: "p1", TranscriptText: "Hello there."})

		require.Error(t, err)
		assert.Equal(t, 0, ext.actionCalls)
		assert.Len(t, tc.calls, 1)
	})

	t.Run("Should keep the other branch when one fails", func(t *testing.T) {
		ext := &fakeExtractor{
			metadata:    testMetadata(),
			actionItems: []extractor.ActionItem{{Title: "Send pricing deck", Context: "asked"}},
			intelErr:    errors.New("model unavailable"),
		}
		tc := &fakeTracker{}
		p := newTestPipeline(ext, tc, nil)

		res, err := p.Process(testCtx(t), &Input{ProjectID: "p1", TranscriptText: "Hello there."})

		require.NoError(t, err)
		assert.NotEmpty(t, res.ParentTaskID)
		assert.Len(t, res.SubtaskIDs, 1)
		assert.Empty(t, res.IntelligenceTaskID)
		require.Len(t, res.Errors, 1)
		assert.Contains(t, res.Errors[0], "model unavailable")
	})

	t.Run("Should fall back to regex metadata when extraction fails", func(t *testing.T) {
		ext := &fakeExtractor{
			metadataErr:  errors.New("quota exceeded"),
			intelligence: testIntelligence(),
		}
		tc := &fakeTracker{}
		p := newTestPipeline(ext, tc, nil)

		res, err := p.Process(testCtx(t), &Input{
			ProjectID:      "p1",
			TranscriptText: "Meeting Date: 2026-04-01\nAttendees: Gabriel\nHello there.",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, res.ParentTaskID)
		parents := tc.byPrefix("Meeting: Unknown Client - 2026-04-01")
		require.Len(t, parents, 1)
	})

	t.Run("Should skip a failing subtask without failing the batch", func(t *testing.T) {
		ext := &fakeExtractor{
			metadata: testMetadata(),
			actionItems: []extractor.ActionItem{
				{Title: "Broken item", Context: "x"},
				{Title: "Good item", Context: "y"},
			},
			intelligence: testIntelligence(),
		}
		tc := &fakeTracker{errFor: map[string]error{"Broken item": errors.New("422")}}
		p := newTestPipeline(ext, tc, nil)

		res, err := p.Process(testCtx(t), &Input{ProjectID: "p1", TranscriptText: "Hello there."})

		require.NoError(t, err)
		assert.Len(t, res.SubtaskIDs, 1)
		assert.Empty(t, res.Errors)
	})

	t.Run("Should run one extraction call per chunk", func(t *testing.T) {
		ext := &fakeExtractor{metadata: testMetadata(), intelligence: testIntelligence()}
		tc := &fakeTracker{}
		p := newTestPipeline(ext, tc, nil)
		p.chunkSize = 100

		long := strings.TrimSpace(strings.Repeat("The prospect asked about pricing tiers today. ", 10))
		_, err := p.Process(testCtx(t), &Input{ProjectID: "p1", TranscriptText: long})

		require.NoError(t, err)
		assert.Greater(t, ext.actionCalls, 1)
	})
}
