package bot

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/disgoorg/disgo"
	disgobot "github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"github.com/gbg-hll/watchdog/internal/ai"
	"github.com/gbg-hll/watchdog/internal/bot/session"
	"github.com/gbg-hll/watchdog/internal/bot/views/report"
	"github.com/gbg-hll/watchdog/internal/crcon"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"go.uber.org/zap"
)

// reportTimeout bounds the full ingest path for one report: player
// resolution, card creation and the recommendation call with its retries.
const reportTimeout = 5 * time.Minute

var (
	// Clan tags up to 4 characters in square brackets or between pipes,
	// plus the i|i combination.
	clanTagPattern = regexp.MustCompile(`\[.{1,4}?\]|\|.{1,4}?\||i\|i`)

	specialCharPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// Bot wires the Discord gateway to the report card handler. New messages in
// the report channel become cards; every further interaction goes through the
// report handler.
type Bot struct {
	client      disgobot.Client
	config      *config.Config
	store       *session.Store
	recommender *ai.Recommender
	crcon       *crcon.Client
	locales     *locale.Store
	handler     *report.Handler
	logger      *zap.Logger
}

// New initializes the Bot with the Discord client and its event listeners.
func New(
	cfg *config.Config,
	store *session.Store,
	recommender *ai.Recommender,
	crconClient *crcon.Client,
	api crcon.API,
	executor *moderation.Executor,
	locales *locale.Store,
	normalizer *moderation.MessageNormalizer,
	logger *zap.Logger,
) (*Bot, error) {
	b := &Bot{
		config:      cfg,
		store:       store,
		recommender: recommender,
		crcon:       crconClient,
		locales:     locales,
		logger:      logger.Named("bot"),
	}

	b.handler = report.NewHandler(
		store, executor, api, locales, normalizer,
		&cfg.Moderation, cfg.Discord.ReportChannelID, cfg.Discord.UserLanguage, logger,
	)

	client, err := disgo.New(cfg.Discord.Token,
		disgobot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentMessageContent,
			),
		),
		disgobot.WithEventListeners(&events.ListenerAdapter{
			OnMessageCreate: b.handleMessageCreate,
			OnComponentInteraction: func(event *events.ComponentInteractionCreate) {
				go b.handler.HandleComponent(event)
			},
			OnModalSubmit: func(event *events.ModalSubmitInteractionCreate) {
				go b.handler.HandleModal(event)
			},
		}),
	)
	if err != nil {
		return nil, err
	}

	b.client = client

	return b, nil
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	b.logger.Info("Starting bot")
	return b.client.OpenGateway(context.Background())
}

// Close gracefully shuts down the Discord gateway connection.
func (b *Bot) Close() {
	b.logger.Info("Closing bot")
	b.client.Close(context.Background())
}

// handleMessageCreate turns new messages in the report channel into report
// cards.
func (b *Bot) handleMessageCreate(event *events.MessageCreate) {
	message := event.Message
	if uint64(message.ChannelID) != b.config.Discord.ReportChannelID {
		return
	}

	if message.Author.ID == b.client.ID() {
		return
	}

	authorName, reportText := extractReport(message)
	if strings.TrimSpace(reportText) == "" {
		return
	}

	go b.processReport(authorName, reportText)
}

// processReport resolves the reported player, posts the card and asks the
// reasoning service for a recommendation. The card is interactive as soon as
// it is posted; the AI section arrives as an edit once the decision is in.
func (b *Bot) processReport(authorName, reportText string) {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	lang := b.config.Discord.UserLanguage
	channelID := snowflake.ID(b.config.Discord.ReportChannelID)

	players, err := b.crcon.GetPlayers(ctx)
	if err != nil {
		b.logger.Error("Failed to load player list for report", zap.Error(err))
		return
	}

	target, selfReport, ok := matchReportedPlayer(reportText, authorName, players)
	if !ok {
		b.logger.Info("No player matched the report",
			zap.String("author", authorName),
			zap.String("report", reportText))

		_, err := b.client.Rest().CreateMessage(channelID, discord.NewMessageCreateBuilder().
			SetContent(b.locales.Translate(lang, "player_not_found")).
			Build())
		if err != nil {
			b.logger.Error("Failed to post player-not-found notice", zap.Error(err))
		}

		return
	}

	authorPlayerID := ""
	if id, err := b.crcon.GetPlayerIDByName(ctx, authorName); err == nil {
		authorPlayerID = id
	}

	reportCtx := &session.ReportContext{
		ReportText:     reportText,
		PlayerName:     target.Name,
		PlayerID:       target.PlayerID,
		AuthorName:     authorName,
		AuthorPlayerID: authorPlayerID,
		SelfReport:     selfReport,
	}

	builder := b.handler.Builder()

	create := discord.NewMessageCreateBuilder().SetEmbeds(builder.BuildCardEmbed(reportCtx))
	for _, row := range builder.BuildCardComponents(false) {
		create.AddActionRow(row...)
	}

	card, err := b.client.Rest().CreateMessage(channelID, create.Build())
	if err != nil {
		b.logger.Error("Failed to post report card", zap.Error(err))
		return
	}

	if err := b.store.SetContext(ctx, uint64(card.ID), reportCtx); err != nil {
		b.logger.Error("Failed to store report context", zap.Error(err))
		return
	}

	b.logger.Info("Posted report card",
		zap.Uint64("message_id", uint64(card.ID)),
		zap.String("player", target.Name),
		zap.Bool("self_report", selfReport))

	stats := b.crcon.GetPlayerStats(ctx, target.PlayerID)

	decision, err := b.recommender.GetRecommendation(ctx, reportText, target.Name, stats, lang)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			b.logger.Warn("Failed to get recommendation", zap.Error(err))
		}

		return
	}

	reportCtx.Decision = decision
	if err := b.store.SetContext(ctx, uint64(card.ID), reportCtx); err != nil {
		b.logger.Error("Failed to store decision", zap.Error(err))
		return
	}

	update := discord.NewMessageUpdateBuilder().
		SetEmbeds(builder.BuildCardEmbed(reportCtx)).
		ClearContainerComponents()
	for _, row := range builder.BuildCardComponents(true) {
		update.AddActionRow(row...)
	}

	if _, err := b.client.Rest().UpdateMessage(channelID, card.ID, update.Build()); err != nil {
		b.logger.Error("Failed to add recommendation to card", zap.Error(err))
	}
}

// extractReport pulls the reporter name and report text out of a channel
// message. Webhook-relayed reports carry the reporter in the embed author;
// plain messages fall back to the Discord author.
func extractReport(message discord.Message) (string, string) {
	if len(message.Embeds) > 0 {
		embed := message.Embeds[0]
		if embed.Description != "" {
			authorName := message.Author.EffectiveName()
			if embed.Author != nil && embed.Author.Name != "" {
				authorName = embed.Author.Name
			}

			return authorName, embed.Description
		}
	}

	return message.Author.EffectiveName(), message.Content
}

// cleanPlayerName strips clan tags, special characters and emojis from a
// player name before matching.
func cleanPlayerName(name string) string {
	name = clanTagPattern.ReplaceAllString(name, "")
	name = specialCharPattern.ReplaceAllString(name, "")

	return strings.TrimSpace(name)
}

// matchReportedPlayer finds the reported player by scanning the report text
// for names from the live player list. Clan tags are ignored and the longest
// match wins. A report that only names its own author is a self report.
func matchReportedPlayer(reportText, authorName string, players []crcon.Player) (crcon.Player, bool, bool) {
	text := strings.ToLower(reportText)

	var (
		best      crcon.Player
		bestLen   int
		self      crcon.Player
		selfFound bool
	)

	for _, player := range players {
		name := strings.ToLower(cleanPlayerName(player.Name))
		if len(name) < 3 || !strings.Contains(text, name) {
			continue
		}

		if strings.EqualFold(player.Name, authorName) {
			self, selfFound = player, true
			continue
		}

		if len(name) > bestLen {
			best, bestLen = player, len(name)
		}
	}

	if bestLen > 0 {
		return best, false, true
	}

	if selfFound {
		return self, true, true
	}

	return crcon.Player{}, false, false
}
