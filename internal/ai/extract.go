package ai

import (
	"encoding/json"
	"regexp"

	"github.com/bytedance/sonic"
)

// Decision is the structured recommendation produced by the reasoning service.
// Recommendation and Rationale are admin-facing and always German; ActionReason
// is the text applied as the actual moderation reason. ReplySuggestion is only
// present when the report should be answered instead of actioned.
type Decision struct {
	Action          string `json:"action"`
	DurationHours   *int   `json:"duration_hours"`
	Recommendation  string `json:"recommendation"`
	ActionReason    string `json:"action_reason"`
	Rationale       string `json:"rationale"`
	ReplySuggestion string `json:"reply_suggestion,omitempty"`
}

// jsonSpanPattern matches the first { to the last } across newlines.
var jsonSpanPattern = regexp.MustCompile(`(?s)\{.*\}`)

// ExtractDecision recovers a Decision from a raw chat-completion response
// body. It tolerates wrapper JSON, a decision embedded in prose, and outright
// malformed text. A response carrying an error envelope, or one no parse stage
// can recover an object from, yields nil. No semantic validation happens here.
func ExtractDecision(raw []byte) *Decision {
	content := raw

	var envelope map[string]json.RawMessage
	if err := sonic.Unmarshal(raw, &envelope); err == nil {
		if _, ok := envelope["error"]; ok {
			return nil
		}

		if inner := unwrapCompletion(raw); inner != nil {
			content = inner
		}
	}

	var decision Decision
	if err := sonic.Unmarshal(content, &decision); err == nil {
		return &decision
	}

	// Fall back to the first {...} span embedded in surrounding prose.
	span := jsonSpanPattern.Find(content)
	if span == nil {
		return nil
	}

	decision = Decision{}
	if err := sonic.Unmarshal(span, &decision); err != nil {
		return nil
	}

	return &decision
}

// unwrapCompletion extracts the message content from a chat-completion
// envelope. The content is normally a JSON-encoded string but may already be
// an object. Returns nil if the body is not a completion envelope.
func unwrapCompletion(raw []byte) []byte {
	var wrapped struct {
		Choices []struct {
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := sonic.Unmarshal(raw, &wrapped); err != nil || len(wrapped.Choices) == 0 {
		return nil
	}

	content := wrapped.Choices[0].Message.Content
	if len(content) == 0 {
		return nil
	}

	var inner string
	if err := sonic.Unmarshal(content, &inner); err == nil {
		return []byte(inner)
	}

	return content
}
