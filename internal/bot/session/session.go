package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gbg-hll/watchdog/internal/ai"
	"github.com/gbg-hll/watchdog/internal/bot/constants"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/gbg-hll/watchdog/internal/redis"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	// ReportKeyPrefix namespaces report contexts in Redis.
	ReportKeyPrefix = "report:"

	// PendingKeyPrefix namespaces pending confirmations in Redis.
	PendingKeyPrefix = "pending:"
)

var (
	ErrContextNotFound = errors.New("report context not found")
	ErrPendingNotFound = errors.New("pending action not found")
)

// ReportContext carries everything a handler needs to act on one report card.
// It is stored per card message so concurrent cards never share state.
type ReportContext struct {
	ReportText     string       `json:"reportText"`
	PlayerName     string       `json:"playerName"`
	PlayerID       string       `json:"playerId"`
	AuthorName     string       `json:"authorName"`
	AuthorPlayerID string       `json:"authorPlayerId"`
	SelfReport     bool         `json:"selfReport"`
	Decision       *ai.Decision `json:"decision,omitempty"`
}

// Target converts the context into the target descriptor the apply path takes.
func (rc *ReportContext) Target() moderation.Target {
	return moderation.Target{
		PlayerName:     rc.PlayerName,
		PlayerID:       rc.PlayerID,
		AuthorName:     rc.AuthorName,
		AuthorPlayerID: rc.AuthorPlayerID,
		SelfReport:     rc.SelfReport,
	}
}

// PendingAction is a fully parameterized action parked behind a confirmation
// click. It expires on its own; an abandoned confirmation executes nothing.
type PendingAction struct {
	Action        moderation.Action `json:"action"`
	Reason        string            `json:"reason"`
	DurationHours int               `json:"durationHours,omitempty"`
}

// Store keeps report contexts and pending confirmations in Redis with
// automatic expiration.
type Store struct {
	redis  rueidis.Client
	logger *zap.Logger
}

// NewStore creates a session store backed by the session database.
func NewStore(redisManager *redis.Manager, logger *zap.Logger) (*Store, error) {
	redisClient, err := redisManager.GetClient(redis.SessionDBIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to get Redis client: %w", err)
	}

	return NewStoreWithClient(redisClient, logger), nil
}

// NewStoreWithClient creates a session store on an existing Redis client.
func NewStoreWithClient(redisClient rueidis.Client, logger *zap.Logger) *Store {
	return &Store{
		redis:  redisClient,
		logger: logger.Named("session_store"),
	}
}

// SetContext stores the report context for a card message.
func (s *Store) SetContext(ctx context.Context, messageID uint64, reportCtx *ReportContext) error {
	return s.set(ctx, reportKey(messageID), reportCtx, constants.ReportContextTTL)
}

// GetContext loads the report context for a card message. Returns
// ErrContextNotFound once the card has expired.
func (s *Store) GetContext(ctx context.Context, messageID uint64) (*ReportContext, error) {
	var reportCtx ReportContext
	if err := s.get(ctx, reportKey(messageID), &reportCtx); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrContextNotFound
		}

		return nil, err
	}

	return &reportCtx, nil
}

// DeleteContext removes the report context once the card is resolved.
func (s *Store) DeleteContext(ctx context.Context, messageID uint64) {
	if err := s.redis.Do(ctx, s.redis.B().Del().Key(reportKey(messageID)).Build()).Error(); err != nil {
		s.logger.Error("Failed to delete report context",
			zap.Uint64("message_id", messageID),
			zap.Error(err))
	}
}

// SetPending parks an action behind its confirmation click.
func (s *Store) SetPending(ctx context.Context, messageID uint64, pending *PendingAction) error {
	return s.set(ctx, pendingKey(messageID), pending, constants.PendingActionTTL)
}

// GetPending loads the parked action for a card. Returns ErrPendingNotFound
// when the confirmation window has expired.
func (s *Store) GetPending(ctx context.Context, messageID uint64) (*PendingAction, error) {
	var pending PendingAction
	if err := s.get(ctx, pendingKey(messageID), &pending); err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, ErrPendingNotFound
		}

		return nil, err
	}

	return &pending, nil
}

// DeletePending removes the parked action after it was dispatched.
func (s *Store) DeletePending(ctx context.Context, messageID uint64) {
	if err := s.redis.Do(ctx, s.redis.B().Del().Key(pendingKey(messageID)).Build()).Error(); err != nil {
		s.logger.Error("Failed to delete pending action",
			zap.Uint64("message_id", messageID),
			zap.Error(err))
	}
}

func (s *Store) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	cmd := s.redis.B().Set().Key(key).Value(string(data)).Ex(ttl).Build()
	if err := s.redis.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to store session data: %w", err)
	}

	return nil
}

func (s *Store) get(ctx context.Context, key string, out any) error {
	result := s.redis.Do(ctx, s.redis.B().Get().Key(key).Build())
	if result.Error() != nil {
		return result.Error()
	}

	data, err := result.AsBytes()
	if err != nil {
		return fmt.Errorf("failed to read session data: %w", err)
	}

	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse session data: %w", err)
	}

	return nil
}

func reportKey(messageID uint64) string {
	return fmt.Sprintf("%s%d", ReportKeyPrefix, messageID)
}

func pendingKey(messageID uint64) string {
	return fmt.Sprintf("%s%d", PendingKeyPrefix, messageID)
}
