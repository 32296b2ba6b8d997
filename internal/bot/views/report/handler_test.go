package report

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gbg-hll/watchdog/internal/bot/constants"
	"github.com/gbg-hll/watchdog/internal/bot/session"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI records every remote call by name.
type fakeAPI struct {
	calls []string
}

func (a *fakeAPI) call(name string) error {
	a.calls = append(a.calls, name)
	return nil
}

func (a *fakeAPI) MessagePlayer(_ context.Context, _, _, _ string) error {
	return a.call("message_player")
}

func (a *fakeAPI) Punish(_ context.Context, _, _, _ string) error { return a.call("punish") }

func (a *fakeAPI) Kick(_ context.Context, _, _, _ string) error { return a.call("kick") }

func (a *fakeAPI) AddBlacklistRecord(_ context.Context, _, _, _ string) error {
	return a.call("add_blacklist_record")
}

func (a *fakeAPI) RemoveFromSquad(_ context.Context, _, _ string) error {
	return a.call("remove_player_from_squad")
}

func (a *fakeAPI) SwitchTeamNow(_ context.Context, _ string) error {
	return a.call("switch_player_now")
}

func (a *fakeAPI) SwitchTeamOnDeath(_ context.Context, _, _ string) error {
	return a.call("switch_player_on_death")
}

func (a *fakeAPI) WatchPlayer(_ context.Context, _, _, _, _ string) error {
	return a.call("watch_player")
}

func (a *fakeAPI) UnwatchPlayer(_ context.Context, _ string) error {
	return a.call("unwatch_player")
}

func (a *fakeAPI) PostComment(_ context.Context, _, _, _ string) error {
	return a.call("post_player_comment")
}

func (a *fakeAPI) GetPlayerNameByID(_ context.Context, playerID string) string {
	_ = a.call("get_player_name")
	return playerID
}

func (a *fakeAPI) GetPlayerIDByName(_ context.Context, _ string) (string, error) {
	return "", a.call("get_player_id")
}

func (a *fakeAPI) GetStandardMessages(_ context.Context) ([]string, error) {
	return nil, a.call("get_standard_messages")
}

func (a *fakeAPI) remoteCommands() []string {
	var commands []string

	for _, name := range a.calls {
		switch name {
		case "get_player_name", "get_player_id", "get_standard_messages", "post_player_comment":
		default:
			commands = append(commands, name)
		}
	}

	return commands
}

// fakeRest captures the Discord REST calls the handler issues.
type fakeRest struct {
	rest.Rest

	followups []discord.MessageCreate
	reactions []string
}

func (r *fakeRest) CreateFollowupMessage(
	_ snowflake.ID, _ string, message discord.MessageCreate, _ ...rest.RequestOpt,
) (*discord.Message, error) {
	r.followups = append(r.followups, message)
	return &discord.Message{}, nil
}

func (r *fakeRest) GetMessage(_, messageID snowflake.ID, _ ...rest.RequestOpt) (*discord.Message, error) {
	return &discord.Message{
		ID:     messageID,
		Embeds: []discord.Embed{{Title: "Report from Reporter"}},
	}, nil
}

func (r *fakeRest) UpdateMessage(
	_, _ snowflake.ID, _ discord.MessageUpdate, _ ...rest.RequestOpt,
) (*discord.Message, error) {
	return &discord.Message{}, nil
}

func (r *fakeRest) AddReaction(_, _ snowflake.ID, emoji string, _ ...rest.RequestOpt) error {
	r.reactions = append(r.reactions, emoji)
	return nil
}

type fakeClient struct {
	bot.Client

	rest *fakeRest
}

func (c *fakeClient) Rest() rest.Rest { return c.rest }

type fakeEvent struct {
	client *fakeClient
}

func (e *fakeEvent) Client() bot.Client          { return e.client }
func (e *fakeEvent) ApplicationID() snowflake.ID { return 1 }
func (e *fakeEvent) Token() string               { return "interaction-token" }
func (e *fakeEvent) User() discord.User          { return discord.User{Username: "Mod"} }

var _ CommonEvent = (*fakeEvent)(nil)

func newTestHandler(t *testing.T, api *fakeAPI) (*Handler, *session.Store, *fakeEvent) {
	t.Helper()

	mr := miniredis.RunT(t)

	redisClient, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(redisClient.Close)

	store := session.NewStoreWithClient(redisClient, zap.NewNop())

	locales, err := locale.NewStore(filepath.Join("..", "..", "..", "..", "config", "locales"), zap.NewNop())
	require.NoError(t, err)

	cfg := &config.ModerationConfig{
		TempBanWarningHours: 12,
		MaxTempBanHours:     720,
		ContactLink:         "https://discord.gg/example",
	}

	executor := moderation.NewExecutor(api, locales, cfg, "en", zap.NewNop())
	normalizer := moderation.NewMessageNormalizer(cfg.ContactLink)
	handler := NewHandler(store, executor, api, locales, normalizer, cfg, 99, "en", zap.NewNop())
	event := &fakeEvent{client: &fakeClient{rest: &fakeRest{}}}

	return handler, store, event
}

func storedContext(t *testing.T, store *session.Store, cardID uint64) *session.ReportContext {
	t.Helper()

	reportCtx := &session.ReportContext{
		ReportText:     "Target keeps teamkilling us",
		PlayerName:     "Target",
		PlayerID:       "111",
		AuthorName:     "Reporter",
		AuthorPlayerID: "222",
	}
	require.NoError(t, store.SetContext(t.Context(), cardID, reportCtx))

	return reportCtx
}

func TestStageOrDispatchParksLongTempBan(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	handler, store, event := newTestHandler(t, api)
	reportCtx := storedContext(t, store, 42)

	handler.stageOrDispatch(t.Context(), event, 42, reportCtx, moderation.ActionTempBan, "teamkilling", 24)

	assert.Empty(t, api.remoteCommands())

	pending, err := store.GetPending(t.Context(), 42)
	require.NoError(t, err)
	assert.Equal(t, moderation.ActionTempBan, pending.Action)
	assert.Equal(t, 24, pending.DurationHours)
	assert.Equal(t, "teamkilling", pending.Reason)

	followups := event.client.rest.followups
	require.Len(t, followups, 1)
	require.Len(t, followups[0].Embeds, 1)
	assert.Contains(t, followups[0].Embeds[0].Title, "Temp-Ban")

	// The card stays open until the action is confirmed or discarded.
	_, err = store.GetContext(t.Context(), 42)
	require.NoError(t, err)
}

func TestStageOrDispatchPermaBanAlwaysParks(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	handler, store, event := newTestHandler(t, api)
	reportCtx := storedContext(t, store, 42)

	handler.stageOrDispatch(t.Context(), event, 42, reportCtx, moderation.ActionPermaBan, "cheating", 0)

	assert.Empty(t, api.remoteCommands())

	pending, err := store.GetPending(t.Context(), 42)
	require.NoError(t, err)
	assert.Equal(t, moderation.ActionPermaBan, pending.Action)
}

func TestStageOrDispatchExecutesShortTempBan(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	handler, store, event := newTestHandler(t, api)
	reportCtx := storedContext(t, store, 42)

	handler.stageOrDispatch(t.Context(), event, 42, reportCtx, moderation.ActionTempBan, "teamkilling", 6)

	assert.Contains(t, api.calls, "add_blacklist_record")

	_, err := store.GetPending(t.Context(), 42)
	require.ErrorIs(t, err, session.ErrPendingNotFound)

	_, err = store.GetContext(t.Context(), 42)
	require.ErrorIs(t, err, session.ErrContextNotFound)

	require.Len(t, event.client.rest.followups, 1)
	assert.NotEmpty(t, event.client.rest.followups[0].Content)
}

func TestStageOrDispatchExecutesKickDirectly(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	handler, store, event := newTestHandler(t, api)
	reportCtx := storedContext(t, store, 42)

	handler.stageOrDispatch(t.Context(), event, 42, reportCtx, moderation.ActionKick, "teamkilling", 0)

	assert.Contains(t, api.calls, "kick")
	assert.Contains(t, event.client.rest.reactions, constants.EmojiResolved)

	_, err := store.GetPending(t.Context(), 42)
	require.ErrorIs(t, err, session.ErrPendingNotFound)
}
