package crcon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"github.com/gbg-hll/watchdog/pkg/utils"
	"go.uber.org/zap"
)

var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrCommandFailed        = errors.New("server command failed")
	ErrPlayerNotFound       = errors.New("player not found")
)

// API is the remote moderation surface consumed by the action pipeline.
// Command calls are fail-fast: one attempt, no automatic retry.
type API interface {
	MessagePlayer(ctx context.Context, playerName, playerID, message string) error
	Punish(ctx context.Context, playerID, playerName, reason string) error
	Kick(ctx context.Context, playerName, playerID, reason string) error
	AddBlacklistRecord(ctx context.Context, playerID, reason, expiresAt string) error
	RemoveFromSquad(ctx context.Context, playerID, reason string) error
	SwitchTeamNow(ctx context.Context, playerID string) error
	SwitchTeamOnDeath(ctx context.Context, playerID, by string) error
	WatchPlayer(ctx context.Context, playerID, reason, by, playerName string) error
	UnwatchPlayer(ctx context.Context, playerID string) error
	PostComment(ctx context.Context, playerID, comment, by string) error
	GetPlayerNameByID(ctx context.Context, playerID string) string
	GetPlayerIDByName(ctx context.Context, playerName string) (string, error)
	GetStandardMessages(ctx context.Context) ([]string, error)
}

// Player is one entry of the live player list.
type Player struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id"`
}

// response is the envelope every CRCON endpoint returns.
type response struct {
	Result json.RawMessage `json:"result"`
	Failed bool            `json:"failed"`
	Error  string          `json:"error"`
}

// Client talks to a CRCON instance over its bearer-token JSON API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// NewClient creates a new CRCON API client.
func NewClient(cfg *config.CRCON, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// The client owns the /api prefix; a configured suffix is dropped so
	// both "host" and "host/api" base URLs reach the same endpoints.
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/api")

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.APIToken,
		logger:     logger.Named("crcon"),
	}
}

// MessagePlayer sends an in-game message to a player.
func (c *Client) MessagePlayer(ctx context.Context, playerName, playerID, message string) error {
	return c.execute(ctx, "message_player", map[string]any{
		"player_name": playerName,
		"player_id":   playerID,
		"message":     message,
	})
}

// Punish kills a player in-game with the given reason.
func (c *Client) Punish(ctx context.Context, playerID, playerName, reason string) error {
	return c.execute(ctx, "punish", map[string]any{
		"player_id":   playerID,
		"player_name": playerName,
		"reason":      reason,
	})
}

// Kick removes a player from the server with the given reason.
func (c *Client) Kick(ctx context.Context, playerName, playerID, reason string) error {
	return c.execute(ctx, "kick", map[string]any{
		"player_name": playerName,
		"player_id":   playerID,
		"reason":      reason,
	})
}

// AddBlacklistRecord bans a player. An empty expiresAt creates an unbounded
// record; otherwise expiresAt is the UTC expiry formatted as 2006-01-02T15:04.
func (c *Client) AddBlacklistRecord(ctx context.Context, playerID, reason, expiresAt string) error {
	payload := map[string]any{
		"player_id": playerID,
		"reason":    reason,
	}
	if expiresAt != "" {
		payload["expires_at"] = expiresAt
	}

	return c.execute(ctx, "add_blacklist_record", payload)
}

// RemoveFromSquad removes a player from their current squad.
func (c *Client) RemoveFromSquad(ctx context.Context, playerID, reason string) error {
	return c.execute(ctx, "remove_player_from_squad", map[string]any{
		"player_id": playerID,
		"reason":    reason,
	})
}

// SwitchTeamNow switches a player to the other team immediately.
func (c *Client) SwitchTeamNow(ctx context.Context, playerID string) error {
	return c.execute(ctx, "switch_player_now", map[string]any{
		"player_id": playerID,
	})
}

// SwitchTeamOnDeath schedules a team switch on the player's next death.
func (c *Client) SwitchTeamOnDeath(ctx context.Context, playerID, by string) error {
	return c.execute(ctx, "switch_player_on_death", map[string]any{
		"player_id": playerID,
		"by":        by,
	})
}

// WatchPlayer adds a player to the watch list.
func (c *Client) WatchPlayer(ctx context.Context, playerID, reason, by, playerName string) error {
	return c.execute(ctx, "watch_player", map[string]any{
		"player_id":   playerID,
		"reason":      reason,
		"by":          by,
		"player_name": playerName,
	})
}

// UnwatchPlayer removes a player from the watch list.
func (c *Client) UnwatchPlayer(ctx context.Context, playerID string) error {
	return c.execute(ctx, "unwatch_player", map[string]any{
		"player_id": playerID,
	})
}

// PostComment appends a comment to a player's profile.
func (c *Client) PostComment(ctx context.Context, playerID, comment, by string) error {
	payload := map[string]any{
		"player_id": playerID,
		"comment":   comment,
	}
	if by != "" {
		payload["by"] = by
	}

	return c.execute(ctx, "post_player_comment", payload)
}

// GetPlayerNameByID resolves a player name from an ID, falling back to the ID
// itself when the lookup fails.
func (c *Client) GetPlayerNameByID(ctx context.Context, playerID string) string {
	var result struct {
		Names []struct {
			Name string `json:"name"`
		} `json:"names"`
	}

	err := c.getWithRetry(ctx, "get_player_profile?player_id="+playerID, &result)
	if err != nil || len(result.Names) == 0 || result.Names[0].Name == "" {
		if err != nil {
			c.logger.Warn("Failed to resolve player name",
				zap.String("playerID", playerID),
				zap.Error(err))
		}

		return playerID
	}

	return result.Names[0].Name
}

// GetPlayerIDByName finds a player ID by exact (case-insensitive) name match
// against the live player list.
func (c *Client) GetPlayerIDByName(ctx context.Context, playerName string) (string, error) {
	players, err := c.GetPlayers(ctx)
	if err != nil {
		return "", err
	}

	for _, player := range players {
		if strings.EqualFold(player.Name, playerName) {
			return player.PlayerID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrPlayerNotFound, playerName)
}

// GetPlayers returns the live player list.
func (c *Client) GetPlayers(ctx context.Context) ([]Player, error) {
	var players []Player
	if err := c.getWithRetry(ctx, "get_players", &players); err != nil {
		return nil, err
	}

	return players, nil
}

// GetPlayerStats returns the raw profile record for a player. The record is
// passed as context to the recommendation prompt; an unavailable profile
// yields nil rather than an error.
func (c *Client) GetPlayerStats(ctx context.Context, playerID string) map[string]any {
	var profile map[string]any
	if err := c.getWithRetry(ctx, "get_player_profile?player_id="+playerID, &profile); err != nil {
		c.logger.Warn("Failed to retrieve player profile",
			zap.String("playerID", playerID),
			zap.Error(err))

		return nil
	}

	return profile
}

// GetStandardMessages returns the predefined punishment reasons configured on
// the server.
func (c *Client) GetStandardMessages(ctx context.Context) ([]string, error) {
	var messages []string
	if err := c.getWithRetry(ctx, "get_standard_punishments_messages", &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// execute performs a single command POST. Commands are never retried so a
// moderation action fires at most once.
func (c *Client) execute(ctx context.Context, endpoint string, payload map[string]any) error {
	result, err := c.doRequest(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return err
	}

	// Some commands report failure as a boolean false result.
	if string(result) == "false" {
		return fmt.Errorf("%w: %s", ErrCommandFailed, endpoint)
	}

	return nil
}

// getWithRetry performs a read request with bounded exponential retries.
func (c *Client) getWithRetry(ctx context.Context, endpoint string, out any) error {
	return utils.WithRetry(ctx, func() error {
		result, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			if errors.Is(err, ErrCommandFailed) {
				return backoff.Permanent(err)
			}

			return err
		}

		if err := sonic.Unmarshal(result, out); err != nil {
			return backoff.Permanent(fmt.Errorf("error decoding result: %w", err))
		}

		return nil
	}, utils.GetAPIRetryOptions())
}

// doRequest sends one request and unwraps the CRCON response envelope.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload map[string]any) (json.RawMessage, error) {
	url := c.baseURL + "/api/" + endpoint

	var body io.Reader

	if payload != nil {
		jsonBody, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request: %w", err)
		}

		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatusCode, resp.StatusCode, string(respBody))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var envelope response
	if err := sonic.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	if envelope.Failed {
		c.logger.Warn("Server command failed",
			zap.String("endpoint", endpoint),
			zap.String("error", envelope.Error))

		return nil, fmt.Errorf("%w: %s: %s", ErrCommandFailed, endpoint, envelope.Error)
	}

	return envelope.Result, nil
}
