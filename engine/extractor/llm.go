package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"

	"github.com/intakehq/intake/pkg/logger"
)

const (
	extractionTemperature = 0.1
	// intelligenceInputCap bounds how much transcript the deal-intelligence
	// pass sees.
	intelligenceInputCap = 15000
	// metadataInputCap bounds how much transcript the metadata pass sees.
	metadataInputCap = 3000
)

// LLM implements Extractor on top of a langchaingo chat model in JSON mode.
// Only intent extraction retries (once, with a stricter prompt); every other
// call is a single shot and the caller degrades on failure.
type LLM struct {
	model llms.Model
}

func NewLLM(model llms.Model) *LLM {
	return &LLM{model: model}
}

// ExtractIntent parses a free-text request into an Intent. A model or parse
// failure triggers one stricter retry; if that also fails the safe "none"
// intent is returned so the caller can reject the request cleanly.
func (l *LLM) ExtractIntent(ctx context.Context, text string) (*Intent, error) {
	var out Intent
	err := l.generateJSON(ctx, intentSystemPrompt, intentPrompt(text), &out)
	if err == nil {
		return &out, nil
	}
	logger.FromContext(ctx).Warn("intent extraction failed, retrying with strict prompt", "error", err)
	out = Intent{}
	err = l.generateJSON(ctx, intentSystemPrompt+intentStrictSuffix, fmt.Sprintf("Extract from: %q", text), &out)
	if err != nil {
		logger.FromContext(ctx).Error("intent extraction retry failed", "error", err)
		return &Intent{Intent: IntentNone}, nil
	}
	return &out, nil
}

func (l *LLM) ExtractMeetingMetadata(ctx context.Context, text string) (*MeetingMetadata, error) {
	var out MeetingMetadata
	if err := l.generateJSON(ctx, metadataSystemPrompt, metadataPrompt(head(text, metadataInputCap)), &out); err != nil {
		return nil, fmt.Errorf("extracting meeting metadata: %w", err)
	}
	return &out, nil
}

func (l *LLM) ExtractActionItems(ctx context.Context, chunk string) ([]ActionItem, error) {
	var out struct {
		ActionItems []ActionItem `json:"action_items"`
	}
	if err := l.generateJSON(ctx, actionItemsSystemPrompt, actionItemsPrompt(chunk), &out); err != nil {
		return nil, fmt.Errorf("extracting action items: %w", err)
	}
	return out.ActionItems, nil
}

func (l *LLM) ExtractDealIntelligence(ctx context.Context, text string) (*DealIntelligence, error) {
	var out DealIntelligence
	if err := l.generateJSON(ctx, intelligenceSystemPrompt, intelligencePrompt(head(text, intelligenceInputCap)), &out); err != nil {
		return nil, fmt.Errorf("extracting deal intelligence: %w", err)
	}
	return &out, nil
}

// generateJSON runs one JSON-mode chat completion and unmarshals the first
// JSON object in the response into out.
func (l *LLM) generateJSON(ctx context.Context, system, prompt string, out any) error {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}
	resp, err := l.model.GenerateContent(ctx, messages,
		llms.WithTemperature(extractionTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return fmt.Errorf("llm generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return fmt.Errorf("llm returned no choices")
	}
	raw, err := firstJSONObject(resp.Choices[0].Content)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("unmarshal llm response: %w", err)
	}
	return nil
}

// firstJSONObject pulls the first balanced JSON object out of model output,
// tolerating markdown fences and prose around it.
func firstJSONObject(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in llm response")
	}
	candidate := content[start:]
	parsed := gjson.Parse(candidate)
	if !parsed.IsObject() {
		return "", fmt.Errorf("malformed JSON in llm response")
	}
	return parsed.Raw, nil
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
