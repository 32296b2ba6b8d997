package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gbg-hll/watchdog/internal/bot"
	"github.com/gbg-hll/watchdog/internal/setup"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// BotLogDir specifies where bot log files are stored.
const BotLogDir = "logs/bot_logs"

func main() {
	cmd := &cli.Command{
		Name:   "bot",
		Usage:  "Start the watchdog report bot",
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run(_ context.Context, _ *cli.Command) error {
	app, err := setup.InitializeApp(BotLogDir)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	discordBot, err := bot.New(
		app.Config,
		app.SessionStore,
		app.Recommender,
		app.CRCON,
		app.CachedAPI,
		app.Executor,
		app.Locales,
		app.Normalizer,
		app.Logger,
	)
	if err != nil {
		app.Logger.Error("Failed to create bot", zap.Error(err))
		return err
	}

	if err := discordBot.Start(); err != nil {
		app.Logger.Error("Failed to start bot", zap.Error(err))
		return err
	}

	app.Logger.Info("Bot started. Waiting for interrupt signal to gracefully shutdown")

	// Wait for interrupt so pending interactions finish before closing.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	discordBot.Close()

	return nil
}
