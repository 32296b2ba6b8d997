package crcon

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

const (
	standardMessagesKey = "crcon:standard_messages"
	standardMessagesTTL = 5 * time.Minute
)

// CachedAPI caches the predefined-reason catalogue in Redis in front of the
// live API. Every other call passes straight through.
type CachedAPI struct {
	API

	redis  rueidis.Client
	logger *zap.Logger
}

// NewCachedAPI wraps the given API with a Redis-backed message cache.
func NewCachedAPI(api API, redisClient rueidis.Client, logger *zap.Logger) *CachedAPI {
	return &CachedAPI{
		API:    api,
		redis:  redisClient,
		logger: logger.Named("crcon_cache"),
	}
}

// GetStandardMessages returns the cached catalogue when present, otherwise
// fetches it from the server and stores it for a few minutes. Cache failures
// fall back to the live call.
func (c *CachedAPI) GetStandardMessages(ctx context.Context) ([]string, error) {
	data, err := c.redis.Do(ctx, c.redis.B().Get().Key(standardMessagesKey).Build()).AsBytes()
	if err == nil {
		var messages []string
		if err := sonic.Unmarshal(data, &messages); err == nil {
			return messages, nil
		}

		c.logger.Warn("Discarding corrupt cached message catalogue")
	} else if !rueidis.IsRedisNil(err) {
		c.logger.Warn("Failed to read message cache", zap.Error(err))
	}

	messages, err := c.API.GetStandardMessages(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := sonic.Marshal(messages)
	if err != nil {
		return messages, nil
	}

	setCmd := c.redis.B().Set().
		Key(standardMessagesKey).
		Value(string(encoded)).
		Ex(standardMessagesTTL).
		Build()
	if err := c.redis.Do(ctx, setCmd).Error(); err != nil {
		c.logger.Warn("Failed to store message cache", zap.Error(err))
	}

	return messages, nil
}
