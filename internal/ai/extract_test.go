package ai_test

import (
	"testing"

	"github.com/gbg-hll/watchdog/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want *ai.Decision
	}{
		{
			name: "error envelope returns nil",
			raw:  `{"error":{"message":"invalid api key","code":401}}`,
			want: nil,
		},
		{
			name: "error envelope with string value returns nil",
			raw:  `{"error":"rate limited"}`,
			want: nil,
		},
		{
			name: "wrapped completion with JSON string content",
			raw: `{"choices":[{"message":{"content":` +
				`"{\"action\":\"Kick\",\"recommendation\":\"Kick\",\"action_reason\":\"reason\",\"rationale\":\"Verstoß\"}"}}]}`,
			want: &ai.Decision{
				Action:         "Kick",
				Recommendation: "Kick",
				ActionReason:   "reason",
				Rationale:      "Verstoß",
			},
		},
		{
			name: "wrapped completion with prose around the object",
			raw: `{"choices":[{"message":{"content":` +
				`"Here is my recommendation:\n{\"action\":\"No-Action\",\"recommendation\":\"Trash\"}\nThanks."}}]}`,
			want: &ai.Decision{Action: "No-Action", Recommendation: "Trash"},
		},
		{
			name: "direct decision object",
			raw:  `{"action":"Punish","recommendation":"Punish","action_reason":"r","rationale":"v"}`,
			want: &ai.Decision{Action: "Punish", Recommendation: "Punish", ActionReason: "r", Rationale: "v"},
		},
		{
			name: "plain text without JSON returns nil",
			raw:  "Service temporarily unavailable",
			want: nil,
		},
		{
			name: "empty input returns nil",
			raw:  "",
			want: nil,
		},
		{
			name: "prose with embedded object spanning lines",
			raw:  "leading text {\n\"action\": \"Temp-Ban\",\n\"duration_hours\": 24\n} trailing",
			want: &ai.Decision{Action: "Temp-Ban", DurationHours: intPtr(24)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ai.ExtractDecision([]byte(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, tt.want.Action, got.Action)
			assert.Equal(t, tt.want.Recommendation, got.Recommendation)
			assert.Equal(t, tt.want.ActionReason, got.ActionReason)
			assert.Equal(t, tt.want.Rationale, got.Rationale)

			if tt.want.DurationHours != nil {
				require.NotNil(t, got.DurationHours)
				assert.Equal(t, *tt.want.DurationHours, *got.DurationHours)
			}
		})
	}
}

func TestExtractDecisionReplySuggestion(t *testing.T) {
	t.Parallel()

	raw := `{"action":"Message-Reporter","recommendation":"Nachfrage","action_reason":"",` +
		`"rationale":"unklar","reply_suggestion":"Hi, can you give more details?"}`

	got := ai.ExtractDecision([]byte(raw))
	require.NotNil(t, got)
	assert.Equal(t, "Message-Reporter", got.Action)
	assert.Equal(t, "Hi, can you give more details?", got.ReplySuggestion)
}

func intPtr(v int) *int {
	return &v
}
