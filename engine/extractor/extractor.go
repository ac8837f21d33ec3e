package extractor

import "context"

// Intent values.
const (
	IntentCreateTask = "create_task"
	IntentNone       = "none"
)

// Intent is the structured form of a free-text task request. All fields are
// best-effort; absence means the input did not mention them.
type Intent struct {
	Intent       string   `json:"intent"`
	ProjectName  string   `json:"projectName"`
	AssigneeName string   `json:"assigneeName"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	SectionName  string   `json:"sectionName"`
	Labels       []string `json:"labels"`
	DueDate      string   `json:"dueDate"`     // YYYY-MM-DD
	DueDateTime  string   `json:"dueDateTime"` // RFC 3339
}

// MeetingMetadata summarizes who met, when, and why.
type MeetingMetadata struct {
	ClientName  string   `json:"client_name"`
	MeetingDate string   `json:"meeting_date"` // YYYY-MM-DD
	Attendees   []string `json:"attendees"`
	Duration    string   `json:"duration"`
	MeetingType string   `json:"meeting_type"` // discovery, demo, negotiation, follow-up
	Summary     string   `json:"summary"`
}

// ActionItem is one concrete commitment extracted from a transcript.
type ActionItem struct {
	Assignee string `json:"assignee"`
	Title    string `json:"title"`
	DueDate  string `json:"due_date"`
	Section  string `json:"section"`
	Context  string `json:"context"`
}

// DealIntelligence is a strategic read of a sales conversation.
type DealIntelligence struct {
	Sentiment            string   `json:"sentiment"`
	ConfidenceScore      int      `json:"confidence_score"`
	KeyPoints            []string `json:"key_points"`
	Objections           []string `json:"objections"`
	NextBestAction       string   `json:"next_best_action"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	BudgetDiscussed      bool     `json:"budget_discussed"`
	DecisionTimeline     string   `json:"decision_timeline"`
}

// Extractor is the structured-extraction capability the orchestrators
// consume. Implementations may fail on any call; callers decide whether a
// failure is fatal or degradable.
type Extractor interface {
	ExtractIntent(ctx context.Context, text string) (*Intent, error)
	ExtractMeetingMetadata(ctx context.Context, text string) (*MeetingMetadata, error)
	ExtractActionItems(ctx context.Context, chunk string) ([]ActionItem, error)
	ExtractDealIntelligence(ctx context.Context, text string) (*DealIntelligence, error)
}
