package moderation_test

import (
	"strings"
	"testing"

	"github.com/gbg-hll/watchdog/internal/ai"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTarget() moderation.Target {
	return moderation.Target{
		PlayerName:     "Target",
		PlayerID:       "111",
		AuthorName:     "Reporter",
		AuthorPlayerID: "222",
	}
}

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	decision := &ai.Decision{
		Action:         "Kick",
		Recommendation: "Kick",
		ActionReason:   "Hello Target,\nyou were kicked for teamkilling.",
		Rationale:      "Teamkill",
	}

	req, err := moderation.BuildRequest(decision, normalizer, testTarget(), "Mod")
	require.NoError(t, err)

	assert.Equal(t, moderation.ActionKick, req.Action)
	assert.Equal(t, "Target", req.PlayerName)
	assert.Equal(t, "Mod", req.ModeratorName)
	assert.Equal(t, 1, strings.Count(req.Reason, contactLink))
}

func TestBuildRequestTempBanDuration(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	duration := 24
	decision := &ai.Decision{
		Action:        "Temp-Ban",
		ActionReason:  "reason",
		DurationHours: &duration,
	}

	req, err := moderation.BuildRequest(decision, normalizer, testTarget(), "Mod")
	require.NoError(t, err)
	assert.Equal(t, 24, req.DurationHours)
}

func TestBuildRequestTempBanInvalidDuration(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)
	zero := 0

	for _, duration := range []*int{nil, &zero} {
		decision := &ai.Decision{
			Action:        "Temp-Ban",
			ActionReason:  "reason",
			DurationHours: duration,
		}

		_, err := moderation.BuildRequest(decision, normalizer, testTarget(), "Mod")
		require.ErrorIs(t, err, moderation.ErrInvalidBanDuration)
	}
}

func TestBuildRequestReplySuggestionWins(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	decision := &ai.Decision{
		Action:          "Message-Reporter",
		Recommendation:  "Nachfrage",
		ActionReason:    "ignored",
		ReplySuggestion: "Hi Reporter, can you give more details?",
	}

	req, err := moderation.BuildRequest(decision, normalizer, testTarget(), "Mod")
	require.NoError(t, err)
	assert.Contains(t, req.Reason, "more details")
	assert.NotContains(t, req.Reason, "ignored")
}

func TestBuildRequestFallbackReason(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	req, err := moderation.BuildRequest(&ai.Decision{Action: "Punish"}, normalizer, testTarget(), "Mod")
	require.NoError(t, err)
	assert.Contains(t, req.Reason, "AI")

	req, err = moderation.BuildRequest(
		&ai.Decision{Action: "Punish", Recommendation: "short summary"}, normalizer, testTarget(), "Mod")
	require.NoError(t, err)
	assert.Contains(t, req.Reason, "short summary")
}

func TestBuildRequestUnknownAction(t *testing.T) {
	t.Parallel()

	normalizer := moderation.NewMessageNormalizer(contactLink)

	_, err := moderation.BuildRequest(&ai.Decision{Action: "Nuke"}, normalizer, testTarget(), "Mod")
	require.ErrorIs(t, err, moderation.ErrUnknownAction)
}
