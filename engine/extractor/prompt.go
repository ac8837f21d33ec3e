package extractor

import (
	"encoding/json"
	"fmt"
	"strings"
)

const intentSystemPrompt = `You are an intent extractor for task creation in a project tracker. Parse natural language input and extract structured information for creating a task.

Return ONLY valid JSON that matches the provided schema.

If the user didn't ask to create a task, set intent to 'none'.

When extracting information:
- Project names should be extracted as mentioned (e.g., "Onboarding Ops" not "onboarding ops")
- Person names should be extracted as mentioned (e.g., "Janelle" or "Janelle Alvarez")
- Task titles should be clear and actionable
- Descriptions can include additional context from the input
- Use dueDate (YYYY-MM-DD) for plain dates and dueDateTime (RFC 3339) when a time of day was given

Do not make up or infer information that isn't explicitly mentioned.`

const intentStrictSuffix = `

IMPORTANT: You MUST return valid JSON that exactly matches the schema. No additional text or explanation.`

type fewShotExample struct {
	input  string
	output Intent
}

var intentExamples = []fewShotExample{
	{
		input: "Create a task in Onboarding Ops for Janelle to update the SOP for client upgrades",
		output: Intent{
			Intent:       IntentCreateTask,
			ProjectName:  "Onboarding Ops",
			AssigneeName: "Janelle",
			Title:        "Update the SOP for client upgrades",
		},
	},
	{
		input: "Add a task to the Marketing project for Sarah Chen to review the Q4 campaign materials by end of week",
		output: Intent{
			Intent:       IntentCreateTask,
			ProjectName:  "Marketing",
			AssigneeName: "Sarah Chen",
			Title:        "Review the Q4 campaign materials",
			DueDate:      "end of week",
		},
	},
	{
		input: "In the Engineering Backlog, create a task called 'Fix login bug' and assign it to Mike in the Bugs section",
		output: Intent{
			Intent:       IntentCreateTask,
			ProjectName:  "Engineering Backlog",
			AssigneeName: "Mike",
			Title:        "Fix login bug",
			SectionName:  "Bugs",
		},
	},
	{
		input:  "What's the weather today?",
		output: Intent{Intent: IntentNone},
	},
}

func intentPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Examples:\n")
	for _, ex := range intentExamples {
		out, _ := json.Marshal(ex.output)
		fmt.Fprintf(&b, "Input: %q\nOutput: %s\n\n", ex.input, out)
	}
	fmt.Fprintf(&b, "Now extract from this input: %q", text)
	return b.String()
}

const metadataSystemPrompt = `You extract meeting metadata from call transcripts. Return ONLY valid JSON with keys: client_name, meeting_date (YYYY-MM-DD), attendees (array of names), duration, meeting_type (one of discovery, demo, negotiation, follow-up), summary (1-2 sentences).`

func metadataPrompt(text string) string {
	return fmt.Sprintf(`Extract meeting metadata from this transcript.

Focus on identifying:
- Client/prospect company name
- Meeting date
- Attendees
- Meeting type (discovery, demo, negotiation, or follow-up)
- Brief summary

Transcript beginning:
%s

Extract metadata:`, text)
}

const actionItemsSystemPrompt = `You analyze sales meeting transcripts. Extract ONLY concrete action items. Return ONLY valid JSON: {"action_items": [{"assignee": "...", "title": "...", "due_date": "YYYY-MM-DD or null", "section": "...", "context": "..."}]}.`

func actionItemsPrompt(chunk string) string {
	return fmt.Sprintf(`Extract concrete action items from this transcript chunk.

For each action item, identify:
1. WHO is responsible (a name or email, or note if it's the prospect's responsibility)
2. WHAT needs to be done (specific, actionable task)
3. WHEN it's due (if mentioned)
4. WHICH section it belongs to: Initial Outreach, Discovery, Demo/Presentation, Proposal, Negotiation, or Follow-up

Transcript chunk:
%s

Extract action items:`, chunk)
}

const intelligenceSystemPrompt = `You analyze sales meeting transcripts for strategic insights. Return ONLY valid JSON with keys: sentiment (very_positive, positive, neutral, negative, very_negative), confidence_score (0-100), key_points (array), objections (array), next_best_action, competitors_mentioned (array), budget_discussed (boolean), decision_timeline.`

func intelligencePrompt(text string) string {
	return fmt.Sprintf(`Analyze this sales meeting transcript for strategic insights.

Consider:
- Overall sentiment and buying signals
- Confidence in closing the deal (0-100)
- Key discussion points and objections
- Competitors mentioned
- Budget and timeline discussions
- Recommended next best action

Transcript:
%s

Provide strategic analysis:`, text)
}
