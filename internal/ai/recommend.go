package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/gbg-hll/watchdog/internal/ai/client"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"go.uber.org/zap"
)

var (
	// ErrNotConfigured indicates no service credential is configured.
	ErrNotConfigured = errors.New("reasoning service is not configured")
	// ErrUpstream indicates the reasoning service was unreachable or its
	// response could not be parsed into a decision.
	ErrUpstream = errors.New("reasoning service failure")
)

// Recommender asks the reasoning service to pre-recommend a moderation action
// from free-text report content.
type Recommender struct {
	chat   *client.Client
	config *config.Grok
	logger *zap.Logger
}

// NewRecommender creates a new Recommender.
func NewRecommender(chat *client.Client, cfg *config.Grok, logger *zap.Logger) *Recommender {
	return &Recommender{
		chat:   chat,
		config: cfg,
		logger: logger.Named("recommender"),
	}
}

// IsConfigured reports whether recommendations are available.
func (r *Recommender) IsConfigured() bool {
	return r.chat.IsConfigured()
}

// GetRecommendation produces a Decision for the given report. The detected
// report language is passed to the service as context only; userLang is the
// language used for admin-facing text and never overridden by detection.
func (r *Recommender) GetRecommendation(
	ctx context.Context, reportText, reportedPlayerName string, playerStats map[string]any, userLang string,
) (*Decision, error) {
	if !r.chat.IsConfigured() {
		return nil, ErrNotConfigured
	}

	detectedLang := DetectLanguage(reportText)

	request := &client.ChatRequest{
		Model: r.config.Model,
		Messages: []client.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildUserPrompt(reportText, reportedPlayerName, playerStats, detectedLang)},
		},
		Temperature: 0.2,
	}

	raw, err := r.chat.CreateCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	decision := ExtractDecision(raw)
	if decision == nil {
		r.logger.Error("Failed to parse reasoning service response",
			zap.String("player", reportedPlayerName),
			zap.String("userLang", userLang),
			zap.String("detectedLang", detectedLang),
			zap.ByteString("body", raw))

		return nil, fmt.Errorf("%w: response parsing failed", ErrUpstream)
	}

	r.logger.Debug("Received recommendation",
		zap.String("player", reportedPlayerName),
		zap.String("action", decision.Action),
		zap.String("detectedLang", detectedLang))

	return decision, nil
}
