package moderation

import (
	"errors"

	"github.com/gbg-hll/watchdog/internal/ai"
)

var (
	ErrUnknownAction      = errors.New("unknown recommended action")
	ErrInvalidBanDuration = errors.New("temp-ban duration is not a positive integer")
)

// Target identifies the players involved in a report.
type Target struct {
	PlayerName     string
	PlayerID       string
	AuthorName     string
	AuthorPlayerID string
	SelfReport     bool
}

// BuildRequest maps an accepted AI decision onto an execution request. The
// decision itself is never mutated. The reason text is run through the
// normalizer; for a Message-Reporter decision the reply suggestion takes
// precedence over the action reason. A Temp-Ban without a positive integer
// duration is rejected before any remote call can happen. The caller must
// short-circuit No-Action requests itself: they carry no remote call, only an
// audit line.
func BuildRequest(
	decision *ai.Decision, normalizer *MessageNormalizer, target Target, moderatorName string,
) (*ActionRequest, error) {
	action, ok := ParseAction(decision.Action)
	if !ok {
		return nil, ErrUnknownAction
	}

	reason := decision.ActionReason
	if reason == "" {
		reason = decision.Recommendation
	}

	if reason == "" {
		reason = "AI"
	}

	if action == ActionMessageReporter && decision.ReplySuggestion != "" {
		reason = decision.ReplySuggestion
	}

	reason = normalizer.Normalize(reason)

	var duration int

	if action == ActionTempBan {
		if decision.DurationHours == nil || *decision.DurationHours <= 0 {
			return nil, ErrInvalidBanDuration
		}

		duration = *decision.DurationHours
	}

	return &ActionRequest{
		Action:         action,
		Reason:         reason,
		PlayerName:     target.PlayerName,
		PlayerID:       target.PlayerID,
		AuthorName:     target.AuthorName,
		AuthorPlayerID: target.AuthorPlayerID,
		ModeratorName:  moderatorName,
		SelfReport:     target.SelfReport,
		DurationHours:  duration,
	}, nil
}
