package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gbg-hll/watchdog/internal/bot/constants"
	"github.com/gbg-hll/watchdog/internal/bot/session"
	"github.com/gbg-hll/watchdog/internal/crcon"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"go.uber.org/zap"
)

// CommonEvent is the part of component and modal events the handler needs.
type CommonEvent interface {
	Client() bot.Client
	ApplicationID() snowflake.ID
	Token() string
	User() discord.User
}

var (
	_ CommonEvent = (*events.ComponentInteractionCreate)(nil)
	_ CommonEvent = (*events.ModalSubmitInteractionCreate)(nil)
)

// Handler routes every interaction on a report card through one parameterized
// dispatch path: action button, reason select, reason modal, optional confirm
// click, then exactly one call into the action pipeline.
type Handler struct {
	store      *session.Store
	executor   *moderation.Executor
	api        crcon.API
	builder    *Builder
	locales    *locale.Store
	normalizer *moderation.MessageNormalizer
	config     *config.ModerationConfig
	channelID  snowflake.ID
	lang       string
	logger     *zap.Logger
}

// NewHandler creates the report card interaction handler.
func NewHandler(
	store *session.Store,
	executor *moderation.Executor,
	api crcon.API,
	locales *locale.Store,
	normalizer *moderation.MessageNormalizer,
	cfg *config.ModerationConfig,
	channelID uint64,
	lang string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		store:      store,
		executor:   executor,
		api:        api,
		builder:    NewBuilder(locales, lang),
		locales:    locales,
		normalizer: normalizer,
		config:     cfg,
		channelID:  snowflake.ID(channelID),
		lang:       lang,
		logger:     logger.Named("report_handler"),
	}
}

// Builder exposes the card builder for the message ingest path.
func (h *Handler) Builder() *Builder {
	return h.builder
}

// HandleComponent processes button clicks and select choices on report cards
// and their ephemeral follow-up views.
func (h *Handler) HandleComponent(event *events.ComponentInteractionCreate) {
	customID := event.Data.CustomID()

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in component interaction handler",
				zap.Any("panic", r),
				zap.String("custom_id", customID))
		}
	}()

	// Opening a modal must be the first response, so the reason select is
	// handled before any defer.
	if strings.HasPrefix(customID, constants.ReasonSelectPrefix+":") {
		h.handleReasonSelect(event)
		return
	}

	if err := event.DeferCreateMessage(true); err != nil {
		h.logger.Error("Failed to defer interaction", zap.Error(err))
		return
	}

	ctx := context.Background()

	switch {
	case strings.HasPrefix(customID, constants.ActionButtonPrefix+":"):
		h.handleActionButton(ctx, event)
	case strings.HasPrefix(customID, constants.ConfirmButtonPrefix+":"):
		h.handleConfirm(ctx, event)
	case customID == constants.AIApplyButtonCustomID:
		h.handleAIApply(ctx, event)
	case customID == constants.UnjustifiedButtonCustomID:
		h.handleUnjustified(ctx, event)
	case customID == constants.NoActionButtonCustomID:
		h.handleNoAction(ctx, event)
	case customID == constants.ManualProcessButtonCustomID:
		h.handleManualProcess(ctx, event)
	case customID == constants.FinishedButtonCustomID:
		h.handleFinished(ctx, event)
	default:
		h.logger.Debug("Unhandled component interaction", zap.String("custom_id", customID))
	}
}

// HandleModal processes reason modal submissions.
func (h *Handler) HandleModal(event *events.ModalSubmitInteractionCreate) {
	customID := event.Data.CustomID
	if !strings.HasPrefix(customID, constants.ReasonModalPrefix+":") {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("Panic in modal submit handler",
				zap.Any("panic", r),
				zap.String("custom_id", customID))
		}
	}()

	cardID, action, err := parseCardAction(customID, constants.ReasonModalPrefix)
	if err != nil {
		h.logger.Error("Failed to parse modal custom ID", zap.Error(err))
		return
	}

	if err := event.DeferCreateMessage(true); err != nil {
		h.logger.Error("Failed to defer modal submit", zap.Error(err))
		return
	}

	ctx := context.Background()

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	reason := strings.TrimSpace(event.Data.Text(constants.ReasonInputCustomID))

	var duration int

	if action == moderation.ActionTempBan {
		duration, err = strconv.Atoi(strings.TrimSpace(event.Data.Text(constants.DurationInputCustomID)))
		if err != nil {
			h.followUp(event, h.translate("invalid_duration_format"))
			return
		}

		if duration <= 0 || duration > h.config.MaxTempBanHours {
			h.followUp(event, h.translate("invalid_duration", 1, h.config.MaxTempBanHours))
			return
		}
	}

	h.stageOrDispatch(ctx, event, cardID, reportCtx, action, reason, duration)
}

// handleActionButton shows the reason select for the chosen action, or
// dispatches immediately for actions that take no reason.
func (h *Handler) handleActionButton(ctx context.Context, event *events.ComponentInteractionCreate) {
	action, err := parseActionButton(event.Data.CustomID())
	if err != nil {
		h.logger.Error("Failed to parse action button", zap.Error(err))
		return
	}

	cardID := uint64(event.Message.ID)

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	if !action.NeedsReason() {
		req := h.requestFor(action, "", 0, reportCtx, moderatorName(event))
		h.followUp(event, h.dispatch(ctx, event.Client().Rest(), cardID, req))

		return
	}

	reasons, err := h.api.GetStandardMessages(ctx)
	if err != nil {
		h.logger.Warn("Failed to load predefined reasons", zap.Error(err))

		reasons = nil
	}

	message := discord.NewMessageCreateBuilder().
		SetContent(h.builder.SelectPrompt(action)).
		AddActionRow(h.builder.BuildReasonSelect(cardID, action, reasons)).
		SetEphemeral(true).
		Build()
	h.followUpMessage(event, message)
}

// handleReasonSelect opens the reason modal, prefilled with the selected
// predefined reason.
func (h *Handler) handleReasonSelect(event *events.ComponentInteractionCreate) {
	cardID, action, err := parseCardAction(event.Data.CustomID(), constants.ReasonSelectPrefix)
	if err != nil {
		h.logger.Error("Failed to parse reason select", zap.Error(err))
		return
	}

	data, ok := event.Data.(discord.StringSelectMenuInteractionData)
	if !ok || len(data.Values) == 0 {
		return
	}

	ctx := context.Background()

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.replyEphemeral(event, h.translate("report_expired"))
		return
	}

	prefill := ""

	if value := data.Values[0]; value != constants.OwnReasonValue {
		reasons, err := h.api.GetStandardMessages(ctx)
		if err != nil {
			h.logger.Warn("Failed to reload predefined reasons", zap.Error(err))
		} else if index, err := strconv.Atoi(value); err == nil && index >= 0 && index < len(reasons) {
			prefill = reasons[index]
		}
	}

	playerName := reportCtx.PlayerName
	if action == moderation.ActionMessageReporter {
		playerName = reportCtx.AuthorName
	}

	if err := event.Modal(h.builder.BuildReasonModal(cardID, action, playerName, prefill)); err != nil {
		h.logger.Error("Failed to open reason modal", zap.Error(err))
	}
}

// handleConfirm dispatches a parked action after its confirmation click. The
// pending record is deleted before dispatch so a duplicate click finds
// nothing to execute.
func (h *Handler) handleConfirm(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID, err := parseConfirmButton(event.Data.CustomID())
	if err != nil {
		h.logger.Error("Failed to parse confirm button", zap.Error(err))
		return
	}

	pending, err := h.store.GetPending(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	h.store.DeletePending(ctx, cardID)

	req := h.requestFor(pending.Action, pending.Reason, pending.DurationHours, reportCtx, moderatorName(event))
	h.followUp(event, h.dispatch(ctx, event.Client().Rest(), cardID, req))
}

// handleAIApply maps the stored decision onto an execution request. No-Action
// resolves the card with only an audit line; severe actions still pass the
// confirmation gate.
func (h *Handler) handleAIApply(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID := uint64(event.Message.ID)

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	decision := reportCtx.Decision
	if decision == nil {
		h.followUp(event, h.translate("ai_recommendation_missing"))
		return
	}

	moderator := moderatorName(event)

	if decision.Action == string(moderation.ActionNone) {
		reason := decision.ActionReason
		if reason == "" {
			reason = decision.Recommendation
		}

		restClient := event.Client().Rest()
		h.addModlog(ctx, restClient, cardID,
			h.translate("log_ai_recommendation_applied", moderator, decision.Action, reason), "", true, false)
		h.react(restClient, cardID, constants.EmojiDismissed)
		h.store.DeleteContext(ctx, cardID)
		h.followUp(event, h.translate("ai_recommendation_applied", decision.Action))

		return
	}

	req, err := moderation.BuildRequest(decision, h.normalizer, reportCtx.Target(), moderator)
	if err != nil {
		h.logger.Warn("Rejected AI recommendation", zap.Error(err))
		h.followUp(event, h.translate("ai_recommendation_failed"))

		return
	}

	h.stageOrDispatch(ctx, event, cardID, reportCtx, req.Action, req.Reason, req.DurationHours)
}

// handleUnjustified closes the card, informs the reporter and logs the call.
func (h *Handler) handleUnjustified(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID := uint64(event.Message.ID)

	reportCtx, err := h.store.GetContext(ctx, cardID)
	if err != nil {
		h.followUp(event, h.translate("report_expired"))
		return
	}

	if reportCtx.AuthorPlayerID != "" {
		err := h.api.MessagePlayer(ctx, reportCtx.AuthorName, reportCtx.AuthorPlayerID, h.translate("report_not_granted"))
		if err != nil {
			h.logger.Warn("Failed to inform reporter", zap.Error(err))
		}
	}

	restClient := event.Client().Rest()
	h.addModlog(ctx, restClient, cardID, h.translate("log_unjustified", moderatorName(event)), "", true, false)
	h.react(restClient, cardID, constants.EmojiUnjustified)
	h.store.DeleteContext(ctx, cardID)
	h.followUp(event, h.translate("unjustified_report_acknowledged"))
}

// handleNoAction closes the card without any remote call.
func (h *Handler) handleNoAction(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID := uint64(event.Message.ID)

	restClient := event.Client().Rest()
	h.addModlog(ctx, restClient, cardID, h.translate("log_no_action", moderatorName(event)), "", true, false)
	h.react(restClient, cardID, constants.EmojiDismissed)
	h.store.DeleteContext(ctx, cardID)
	h.followUp(event, h.translate("no_action_performed"))
}

// handleManualProcess parks the card for out-of-band handling, leaving only a
// finish button in place.
func (h *Handler) handleManualProcess(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID := uint64(event.Message.ID)
	restClient := event.Client().Rest()

	h.addModlog(ctx, restClient, cardID, h.translate("log_manual", moderatorName(event)), "", false, false)

	update := discord.NewMessageUpdateBuilder().
		ClearContainerComponents().
		AddActionRow(h.builder.BuildFinishRow()...).
		Build()
	if _, err := restClient.UpdateMessage(h.channelID, snowflake.ID(cardID), update); err != nil {
		h.logger.Error("Failed to swap card components", zap.Error(err))
	}

	h.react(restClient, cardID, constants.EmojiManual)
	h.followUp(event, h.translate("manual_process_respond"))
}

// handleFinished completes a manually processed card.
func (h *Handler) handleFinished(ctx context.Context, event *events.ComponentInteractionCreate) {
	cardID := uint64(event.Message.ID)
	restClient := event.Client().Rest()

	h.addModlog(ctx, restClient, cardID, h.translate("has_finished_report", moderatorName(event)), "", true, true)
	h.react(restClient, cardID, constants.EmojiResolved)

	err := restClient.RemoveOwnReaction(h.channelID, snowflake.ID(cardID), constants.EmojiManual)
	if err != nil {
		h.logger.Debug("Failed to remove manual reaction", zap.Error(err))
	}

	h.store.DeleteContext(ctx, cardID)
	h.followUp(event, h.translate("report_finished"))
}

// stageOrDispatch parks a severe action behind the confirmation gate or
// dispatches it directly.
func (h *Handler) stageOrDispatch(
	ctx context.Context, event CommonEvent, cardID uint64,
	reportCtx *session.ReportContext, action moderation.Action, reason string, duration int,
) {
	if action.NeedsConfirmation(duration, h.config.TempBanWarningHours) {
		pending := &session.PendingAction{Action: action, Reason: reason, DurationHours: duration}
		if err := h.store.SetPending(ctx, cardID, pending); err != nil {
			h.logger.Error("Failed to store pending action", zap.Error(err))
			h.followUp(event, h.translate("error_action"))

			return
		}

		message := discord.NewMessageCreateBuilder().
			SetEmbeds(h.builder.BuildConfirmEmbed(reportCtx, pending)).
			AddActionRow(h.builder.BuildConfirmRow(cardID)...).
			SetEphemeral(true).
			Build()
		h.followUpMessage(event, message)

		return
	}

	req := h.requestFor(action, reason, duration, reportCtx, moderatorName(event))
	h.followUp(event, h.dispatch(ctx, event.Client().Rest(), cardID, req))
}

// dispatch runs one execution request through the action pipeline and
// resolves the card accordingly. Returns the moderator-facing result text.
func (h *Handler) dispatch(ctx context.Context, restClient rest.Rest, cardID uint64, req *moderation.ActionRequest) string {
	result := h.executor.Execute(ctx, req)

	if result.Success {
		h.addModlog(ctx, restClient, cardID, result.Modlog, req.PlayerID, true, false)
		h.react(restClient, cardID, constants.EmojiResolved)
	} else {
		h.removeComponents(restClient, cardID)
		h.react(restClient, cardID, constants.EmojiFailed)
	}

	h.store.DeleteContext(ctx, cardID)

	return result.Message
}

// addModlog appends a timestamped audit line to the card's logbook field and
// posts it as a best-effort player comment when a player ID is given.
func (h *Handler) addModlog(
	ctx context.Context, restClient rest.Rest, cardID uint64,
	line, playerID string, removeButtons, appendEntry bool,
) {
	h.logger.Info("Modlog entry", zap.String("entry", line))

	if playerID != "" {
		if err := h.api.PostComment(ctx, playerID, line, ""); err != nil {
			h.logger.Warn("Failed to post player comment", zap.Error(err))
		}
	}

	messageID := snowflake.ID(cardID)

	message, err := restClient.GetMessage(h.channelID, messageID)
	if err != nil || len(message.Embeds) == 0 {
		h.logger.Error("Failed to fetch report card", zap.Error(err))
		return
	}

	entry := fmt.Sprintf("<t:%d:f>: %s", time.Now().Unix(), line)
	logbook := h.translate("logbook")
	embed := message.Embeds[0]

	last := len(embed.Fields) - 1
	if appendEntry && last >= 0 && embed.Fields[last].Name == logbook {
		embed.Fields[last].Value += "\n" + entry
	} else {
		embed.Fields = append(embed.Fields, discord.EmbedField{Name: logbook, Value: entry})
	}

	update := discord.NewMessageUpdateBuilder().SetEmbeds(embed)
	if removeButtons {
		update.ClearContainerComponents()
	}

	if _, err := restClient.UpdateMessage(h.channelID, messageID, update.Build()); err != nil {
		h.logger.Error("Failed to update report card", zap.Error(err))
	}
}

func (h *Handler) removeComponents(restClient rest.Rest, cardID uint64) {
	update := discord.NewMessageUpdateBuilder().ClearContainerComponents().Build()
	if _, err := restClient.UpdateMessage(h.channelID, snowflake.ID(cardID), update); err != nil {
		h.logger.Error("Failed to remove card components", zap.Error(err))
	}
}

func (h *Handler) react(restClient rest.Rest, cardID uint64, emoji string) {
	if err := restClient.AddReaction(h.channelID, snowflake.ID(cardID), emoji); err != nil {
		h.logger.Debug("Failed to add reaction", zap.Error(err))
	}
}

func (h *Handler) requestFor(
	action moderation.Action, reason string, duration int,
	reportCtx *session.ReportContext, moderator string,
) *moderation.ActionRequest {
	return &moderation.ActionRequest{
		Action:         action,
		Reason:         reason,
		PlayerName:     reportCtx.PlayerName,
		PlayerID:       reportCtx.PlayerID,
		AuthorName:     reportCtx.AuthorName,
		AuthorPlayerID: reportCtx.AuthorPlayerID,
		ModeratorName:  moderator,
		SelfReport:     reportCtx.SelfReport,
		DurationHours:  duration,
	}
}

// followUp sends an ephemeral text follow-up to a deferred interaction.
func (h *Handler) followUp(event CommonEvent, content string) {
	h.followUpMessage(event, discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
}

func (h *Handler) followUpMessage(event CommonEvent, message discord.MessageCreate) {
	_, err := event.Client().Rest().CreateFollowupMessage(event.ApplicationID(), event.Token(), message)
	if err != nil {
		h.logger.Error("Failed to send follow-up message", zap.Error(err))
	}
}

// replyEphemeral answers an interaction that has not been deferred.
func (h *Handler) replyEphemeral(event *events.ComponentInteractionCreate, content string) {
	err := event.CreateMessage(discord.NewMessageCreateBuilder().
		SetContent(content).
		SetEphemeral(true).
		Build())
	if err != nil {
		h.logger.Error("Failed to respond to interaction", zap.Error(err))
	}
}

func (h *Handler) translate(key string, args ...any) string {
	return h.locales.Translate(h.lang, key, args...)
}

func moderatorName(event CommonEvent) string {
	return event.User().EffectiveName()
}
