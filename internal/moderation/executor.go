package moderation

import (
	"context"
	"time"

	"github.com/gbg-hll/watchdog/internal/crcon"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"go.uber.org/zap"
)

// expiryFormat is the UTC timestamp format the blacklist endpoint expects.
const expiryFormat = "2006-01-02T15:04"

// Executor runs moderation actions against the game server. Every action
// issues exactly one remote call; failures are converted to an unsuccessful
// ActionResult with a localized message and never propagated.
type Executor struct {
	api    crcon.API
	locale *locale.Store
	config *config.ModerationConfig
	lang   string
	logger *zap.Logger
}

// NewExecutor creates a new Executor. lang selects the language used for
// moderator-facing messages and modlog lines.
func NewExecutor(
	api crcon.API, locales *locale.Store, cfg *config.ModerationConfig, lang string, logger *zap.Logger,
) *Executor {
	return &Executor{
		api:    api,
		locale: locales,
		config: cfg,
		lang:   lang,
		logger: logger.Named("executor"),
	}
}

// Execute dispatches one action request. The returned result is terminal; a
// failed action requires a fresh human-initiated request.
func (e *Executor) Execute(ctx context.Context, req *ActionRequest) *ActionResult {
	switch req.Action {
	case ActionMessage:
		return e.messagePlayer(ctx, req)
	case ActionMessageReporter:
		return e.messageReporter(ctx, req)
	case ActionPunish:
		return e.punish(ctx, req)
	case ActionKick:
		return e.kick(ctx, req)
	case ActionTempBan:
		return e.tempBan(ctx, req)
	case ActionPermaBan:
		return e.permaBan(ctx, req)
	case ActionRemoveFromSquad:
		return e.removeFromSquad(ctx, req)
	case ActionSwitchTeamNow:
		return e.switchTeamNow(ctx, req)
	case ActionSwitchTeamOnDeath:
		return e.switchTeamOnDeath(ctx, req)
	case ActionWatchPlayer:
		return e.watchPlayer(ctx, req)
	case ActionUnwatchPlayer:
		return e.unwatchPlayer(ctx, req)
	case ActionAddComment:
		return e.addComment(ctx, req)
	default:
		e.logger.Error("Unknown action type", zap.String("action", string(req.Action)))
		return e.failure("error_action")
	}
}

func (e *Executor) messagePlayer(ctx context.Context, req *ActionRequest) *ActionResult {
	if req.PlayerName == "" {
		return e.failure("player_name_not_retrieved")
	}

	if err := e.api.MessagePlayer(ctx, req.PlayerName, req.PlayerID, req.Reason); err != nil {
		e.logError("message", req, err)
		return e.failure("error_sending_message")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("message_sent_successfully", req.PlayerName, req.Reason),
		Modlog:  e.translate("log_message", req.ModeratorName, req.PlayerName, req.Reason),
	}
}

// messageReporter sends the reply to the report author instead of the target.
// It fails without a remote call when the author is not on the server.
func (e *Executor) messageReporter(ctx context.Context, req *ActionRequest) *ActionResult {
	if req.AuthorPlayerID == "" {
		return e.failure("error_sending_message")
	}

	if err := e.api.MessagePlayer(ctx, req.AuthorName, req.AuthorPlayerID, req.Reason); err != nil {
		e.logError("message_reporter", req, err)
		return e.failure("error_sending_message")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("message_sent_successfully", req.AuthorName, req.Reason),
		Modlog:  e.translate("log_message", req.ModeratorName, req.AuthorName, req.Reason),
	}
}

func (e *Executor) punish(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.Punish(ctx, req.PlayerID, req.PlayerName, req.Reason); err != nil {
		e.logError("punish", req, err)
		return e.failure("error_action")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("punish_confirmed"),
		Modlog:  e.translate("log_punish", req.ModeratorName, req.PlayerName, req.Reason),
	}
}

func (e *Executor) kick(ctx context.Context, req *ActionRequest) *ActionResult {
	if req.PlayerName == "" {
		return e.failure("player_name_not_retrieved")
	}

	if err := e.api.Kick(ctx, req.PlayerName, req.PlayerID, req.Reason); err != nil {
		e.logError("kick", req, err)
		return e.failure("error_kicking_player")
	}

	e.notifyAuthor(ctx, req, "message_to_author_kicked")

	return &ActionResult{
		Success: true,
		Message: e.translate("player_kicked_successfully", req.PlayerName),
		Modlog:  e.translate("log_kick", req.ModeratorName, e.api.GetPlayerNameByID(ctx, req.PlayerID), req.Reason),
	}
}

func (e *Executor) tempBan(ctx context.Context, req *ActionRequest) *ActionResult {
	if req.DurationHours <= 0 || req.DurationHours > e.config.MaxTempBanHours {
		return &ActionResult{
			Success: false,
			Message: e.translate("invalid_duration", 1, e.config.MaxTempBanHours),
		}
	}

	expiresAt := time.Now().UTC().Add(time.Duration(req.DurationHours) * time.Hour).Format(expiryFormat)

	if err := e.api.AddBlacklistRecord(ctx, req.PlayerID, req.Reason, expiresAt); err != nil {
		e.logError("temp_ban", req, err)
		return e.failure("error_temp_banning_player")
	}

	e.notifyAuthor(ctx, req, "message_to_author_temp_banned")

	return &ActionResult{
		Success: true,
		Message: e.translate("player_temp_banned_successfully", req.PlayerName, req.DurationHours, req.Reason),
		Modlog:  e.translate("log_tempban", req.ModeratorName, req.PlayerName, req.DurationHours, req.Reason),
	}
}

func (e *Executor) permaBan(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.AddBlacklistRecord(ctx, req.PlayerID, req.Reason, ""); err != nil {
		e.logError("perma_ban", req, err)
		return e.failure("error_perma_banning_player")
	}

	e.notifyAuthor(ctx, req, "message_to_author_perma_banned")

	return &ActionResult{
		Success: true,
		Message: e.translate("player_perma_banned_successfully", req.PlayerName, req.Reason),
		Modlog:  e.translate("log_perma", req.ModeratorName, e.api.GetPlayerNameByID(ctx, req.PlayerID), req.Reason),
	}
}

func (e *Executor) removeFromSquad(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.RemoveFromSquad(ctx, req.PlayerID, req.Reason); err != nil {
		e.logError("remove_from_squad", req, err)
		return e.failure("error_removing_from_squad")
	}

	// Best-effort notification; a failure never flips the primary result.
	notice := e.translate("message_to_player_removed_from_squad", req.Reason)
	if err := e.api.MessagePlayer(ctx, req.PlayerName, req.PlayerID, notice); err != nil {
		e.logger.Warn("Could not notify removed player",
			zap.String("player", req.PlayerName),
			zap.Error(err))
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("player_removed_from_squad_successfully", req.PlayerName),
		Modlog:  e.translate("log_remove_from_squad", req.ModeratorName, req.PlayerName, req.Reason),
	}
}

func (e *Executor) switchTeamNow(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.SwitchTeamNow(ctx, req.PlayerID); err != nil {
		e.logError("switch_team_now", req, err)
		return e.failure("error_switching_team")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("player_switched_team_now", req.PlayerName),
		Modlog:  e.translate("log_switch_team_now", req.ModeratorName, req.PlayerName),
	}
}

func (e *Executor) switchTeamOnDeath(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.SwitchTeamOnDeath(ctx, req.PlayerID, req.ModeratorName); err != nil {
		e.logError("switch_team_on_death", req, err)
		return e.failure("error_switching_team")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("player_switched_team_on_death", req.PlayerName),
		Modlog:  e.translate("log_switch_team_on_death", req.ModeratorName, req.PlayerName),
	}
}

func (e *Executor) watchPlayer(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.WatchPlayer(ctx, req.PlayerID, req.Reason, req.ModeratorName, req.PlayerName); err != nil {
		e.logError("watch_player", req, err)
		return e.failure("error_watch_player")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("player_added_to_watchlist", req.PlayerName, req.Reason),
		Modlog:  e.translate("log_watch_player", req.ModeratorName, req.PlayerName, req.Reason),
	}
}

func (e *Executor) unwatchPlayer(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.UnwatchPlayer(ctx, req.PlayerID); err != nil {
		e.logError("unwatch_player", req, err)
		return e.failure("error_unwatch_player")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("player_removed_from_watchlist", req.PlayerName),
		Modlog:  e.translate("log_unwatch_player", req.ModeratorName, req.PlayerName),
	}
}

func (e *Executor) addComment(ctx context.Context, req *ActionRequest) *ActionResult {
	if err := e.api.PostComment(ctx, req.PlayerID, req.Reason, req.ModeratorName); err != nil {
		e.logError("add_comment", req, err)
		return e.failure("error_add_comment")
	}

	return &ActionResult{
		Success: true,
		Message: e.translate("comment_added_successfully", req.PlayerName, req.Reason),
		Modlog:  e.translate("log_add_comment", req.ModeratorName, req.PlayerName, req.Reason),
	}
}

// notifyAuthor messages the report author after a successful kick or ban.
// Self-reports and unknown authors are skipped; failures are only logged.
func (e *Executor) notifyAuthor(ctx context.Context, req *ActionRequest, key string) {
	if req.SelfReport || req.AuthorPlayerID == "" {
		return
	}

	notice := e.translate(key, req.PlayerName)
	if err := e.api.MessagePlayer(ctx, req.AuthorName, req.AuthorPlayerID, notice); err != nil {
		e.logger.Warn("Could not notify report author",
			zap.String("author", req.AuthorName),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (e *Executor) translate(key string, args ...any) string {
	return e.locale.Translate(e.lang, key, args...)
}

func (e *Executor) failure(key string) *ActionResult {
	return &ActionResult{Success: false, Message: e.translate(key)}
}

func (e *Executor) logError(action string, req *ActionRequest, err error) {
	e.logger.Error("Action execution failed",
		zap.String("action", action),
		zap.String("player", req.PlayerName),
		zap.String("playerID", req.PlayerID),
		zap.String("moderator", req.ModeratorName),
		zap.Error(err))
}
