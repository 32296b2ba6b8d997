package report

import (
	"fmt"
	"strconv"

	"github.com/disgoorg/disgo/discord"
	"github.com/gbg-hll/watchdog/internal/bot/constants"
	"github.com/gbg-hll/watchdog/internal/bot/session"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/moderation"
)

// Builder creates the visual layout of a report card and its follow-up views.
type Builder struct {
	locales *locale.Store
	lang    string
}

// NewBuilder creates a report card builder for the configured language.
func NewBuilder(locales *locale.Store, lang string) *Builder {
	return &Builder{locales: locales, lang: lang}
}

// BuildCardEmbed renders the report card. AI fields are present once the
// context carries a decision.
func (b *Builder) BuildCardEmbed(reportCtx *session.ReportContext) discord.Embed {
	embed := discord.NewEmbedBuilder().
		SetTitle(b.translate("new_report_title", reportCtx.AuthorName)).
		SetDescription(reportCtx.ReportText).
		AddField(b.translate("reported_player"), reportCtx.PlayerName, true).
		AddField(b.translate("steam_id"), reportCtx.PlayerID, true).
		AddField(b.translate("reporter"), reportCtx.AuthorName, true).
		SetColor(constants.CardEmbedColor)

	if decision := reportCtx.Decision; decision != nil {
		recommendation := decision.Action
		if decision.Recommendation != "" {
			recommendation += "\n" + decision.Recommendation
		}

		embed.AddField(b.translate("ai_recommendation"), recommendation, false)

		if decision.Rationale != "" {
			embed.AddField(b.translate("ai_rationale"), decision.Rationale, false)
		}

		if decision.ReplySuggestion != "" {
			embed.AddField(b.translate("ai_reply_suggestion"), decision.ReplySuggestion, false)
		}
	}

	return embed.Build()
}

// BuildCardComponents renders the card's button rows. The AI apply button
// stays disabled until a decision is available.
func (b *Builder) BuildCardComponents(hasDecision bool) [][]discord.InteractiveComponent {
	return [][]discord.InteractiveComponent{
		{
			discord.NewSecondaryButton(b.translate("button_message_player"), actionButtonID(moderation.ActionMessage)),
			discord.NewSecondaryButton(b.translate("button_message_reporter"), actionButtonID(moderation.ActionMessageReporter)),
			discord.NewPrimaryButton(b.translate("button_punish"), actionButtonID(moderation.ActionPunish)),
			discord.NewPrimaryButton(b.translate("button_kick"), actionButtonID(moderation.ActionKick)),
			discord.NewPrimaryButton(b.translate("button_temp_ban"), actionButtonID(moderation.ActionTempBan)),
		},
		{
			discord.NewDangerButton(b.translate("button_perma_ban"), actionButtonID(moderation.ActionPermaBan)),
			discord.NewPrimaryButton(b.translate("button_remove_from_squad"), actionButtonID(moderation.ActionRemoveFromSquad)),
			discord.NewPrimaryButton(b.translate("button_switch_team_now"), actionButtonID(moderation.ActionSwitchTeamNow)),
			discord.NewPrimaryButton(b.translate("button_switch_team_on_death"), actionButtonID(moderation.ActionSwitchTeamOnDeath)),
			discord.NewSuccessButton(b.translate("button_watch_player"), actionButtonID(moderation.ActionWatchPlayer)),
		},
		{
			discord.NewSecondaryButton(b.translate("button_unwatch_player"), actionButtonID(moderation.ActionUnwatchPlayer)),
			discord.NewSecondaryButton(b.translate("button_add_comment"), actionButtonID(moderation.ActionAddComment)),
			discord.NewSuccessButton(b.translate("ai_apply_recommendation_button"), constants.AIApplyButtonCustomID).
				WithDisabled(!hasDecision),
		},
		{
			discord.NewSecondaryButton(b.translate("unjustified_report"), constants.UnjustifiedButtonCustomID),
			discord.NewSuccessButton(b.translate("wrong_player_reported"), constants.NoActionButtonCustomID),
			discord.NewSecondaryButton(b.translate("button_manual_process"), constants.ManualProcessButtonCustomID),
		},
	}
}

// BuildFinishRow renders the single button shown while a report is being
// processed manually.
func (b *Builder) BuildFinishRow() []discord.InteractiveComponent {
	return []discord.InteractiveComponent{
		discord.NewSuccessButton(b.translate("report_finished"), constants.FinishedButtonCustomID),
	}
}

// BuildReasonSelect renders the reason selection for an action. Predefined
// reasons come from the server's standard message config; the first option is
// always the free-text one.
func (b *Builder) BuildReasonSelect(cardID uint64, action moderation.Action, reasons []string) discord.StringSelectMenuComponent {
	options := []discord.StringSelectMenuOption{
		discord.NewStringSelectMenuOption(b.translate("own_reason"), constants.OwnReasonValue),
	}

	for i, reason := range reasons {
		if reason == "" {
			continue
		}

		if len(options) >= constants.MaxSelectOptions {
			break
		}

		options = append(options, discord.NewStringSelectMenuOption(
			truncate(reason, constants.MaxReasonDisplayLength), strconv.Itoa(i)))
	}

	return discord.NewStringSelectMenu(
		reasonSelectID(cardID, action), b.translate("select_reason"), options...)
}

// SelectPrompt returns the text shown above the reason select.
func (b *Builder) SelectPrompt(action moderation.Action) string {
	switch action {
	case moderation.ActionMessage, moderation.ActionMessageReporter:
		return b.translate("message_placeholder")
	case moderation.ActionKick:
		return b.translate("select_kick_reason")
	default:
		return b.translate("select_reason")
	}
}

// BuildReasonModal renders the reason entry modal, prefilled with the chosen
// predefined reason. Temp bans get an extra duration field.
func (b *Builder) BuildReasonModal(cardID uint64, action moderation.Action, playerName, prefill string) discord.ModalCreate {
	modal := discord.NewModalCreateBuilder().
		SetCustomID(reasonModalID(cardID, action)).
		SetTitle(b.modalTitle(action, playerName)).
		AddActionRow(
			discord.NewTextInput(constants.ReasonInputCustomID, discord.TextInputStyleParagraph, b.translate("input_reason")).
				WithRequired(true).
				WithMaxLength(constants.MaxReasonLength).
				WithValue(prefill),
		)

	if action == moderation.ActionTempBan {
		modal.AddActionRow(
			discord.NewTextInput(constants.DurationInputCustomID, discord.TextInputStyleShort, b.translate("temp_ban_duration_label")).
				WithRequired(true).
				WithMaxLength(5).
				WithPlaceholder(b.translate("temp_ban_duration_placeholder")),
		)
	}

	return modal.Build()
}

// BuildConfirmEmbed renders the confirmation prompt for severe actions.
func (b *Builder) BuildConfirmEmbed(reportCtx *session.ReportContext, pending *session.PendingAction) discord.Embed {
	description := b.translate("player_name") + ": " + reportCtx.PlayerName + "\n" +
		b.translate("steam_id") + ": " + reportCtx.PlayerID + "\n" +
		b.translate("action") + ": " + string(pending.Action) + "\n"

	if pending.Action == moderation.ActionTempBan {
		description += b.translate("temp_ban_duration_label") + ": " + strconv.Itoa(pending.DurationHours) + "\n"
	}

	description += b.translate("reason") + ": " + pending.Reason + "\n\n" +
		b.translate("discard_hint")

	return discord.NewEmbedBuilder().
		SetTitle(b.translate("confirm_action", string(pending.Action), reportCtx.PlayerName)).
		SetDescription(description).
		SetColor(constants.ConfirmEmbedColor).
		Build()
}

// BuildConfirmRow renders the confirm button for a parked action.
func (b *Builder) BuildConfirmRow(cardID uint64) []discord.InteractiveComponent {
	return []discord.InteractiveComponent{
		discord.NewSuccessButton(b.translate("confirm"), confirmButtonID(cardID)),
	}
}

func (b *Builder) modalTitle(action moderation.Action, playerName string) string {
	key := map[moderation.Action]string{
		moderation.ActionMessage:         "message_player_modal_title",
		moderation.ActionMessageReporter: "message_player_modal_title",
		moderation.ActionPunish:          "punish_name_player",
		moderation.ActionKick:            "kick_name_player",
		moderation.ActionTempBan:         "tempban_name_player",
		moderation.ActionPermaBan:        "perma_name_player",
		moderation.ActionRemoveFromSquad: "remove_from_squad_player",
	}[action]
	if key == "" {
		return fmt.Sprintf("%s: %s", action, playerName)
	}

	return b.translate(key, playerName)
}

func (b *Builder) translate(key string, args ...any) string {
	return b.locales.Translate(b.lang, key, args...)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}
