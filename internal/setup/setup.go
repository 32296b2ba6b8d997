package setup

import (
	"log"
	"path/filepath"
	"time"

	"github.com/gbg-hll/watchdog/internal/ai"
	aiclient "github.com/gbg-hll/watchdog/internal/ai/client"
	"github.com/gbg-hll/watchdog/internal/bot/session"
	"github.com/gbg-hll/watchdog/internal/crcon"
	"github.com/gbg-hll/watchdog/internal/locale"
	"github.com/gbg-hll/watchdog/internal/moderation"
	"github.com/gbg-hll/watchdog/internal/redis"
	"github.com/gbg-hll/watchdog/internal/setup/config"
	"github.com/gbg-hll/watchdog/internal/setup/logger"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// App bundles the shared application dependencies. The list of fields is
// ordered by initialization order; Cleanup tears them down in reverse.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	LogManager   *logger.Manager
	RedisManager *redis.Manager
	SessionStore *session.Store
	CRCON        *crcon.Client
	CachedAPI    crcon.API
	Recommender  *ai.Recommender
	Locales      *locale.Store
	Normalizer   *moderation.MessageNormalizer
	Executor     *moderation.Executor
}

// InitializeApp bootstraps all services in order: config, Sentry, logging,
// Redis, locales and the CRCON, AI and moderation layers.
func InitializeApp(logDir string) (*App, error) {
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:           cfg.Sentry.DSN,
			EnableTracing: false,
		}); err != nil {
			return nil, err
		}
	}

	logManager := logger.NewManager(logDir, &cfg.Debug)

	zapLogger, err := logManager.GetLogger()
	if err != nil {
		return nil, err
	}

	redisManager := redis.NewManager(&cfg.Redis, zapLogger)

	sessionStore, err := session.NewStore(redisManager, zapLogger)
	if err != nil {
		return nil, err
	}

	locales, err := locale.NewStore(filepath.Join(configDir, "locales"), zapLogger)
	if err != nil {
		return nil, err
	}

	crconClient := crcon.NewClient(&cfg.CRCON, zapLogger)

	cacheClient, err := redisManager.GetClient(redis.CacheDBIndex)
	if err != nil {
		return nil, err
	}

	cachedAPI := crcon.NewCachedAPI(crconClient, cacheClient, zapLogger)
	normalizer := moderation.NewMessageNormalizer(cfg.Moderation.ContactLink)
	executor := moderation.NewExecutor(crconClient, locales, &cfg.Moderation, cfg.Discord.UserLanguage, zapLogger)

	chatClient := aiclient.NewClient(&cfg.Grok, zapLogger)
	recommender := ai.NewRecommender(chatClient, &cfg.Grok, zapLogger)

	return &App{
		Config:       cfg,
		Logger:       zapLogger,
		LogManager:   logManager,
		RedisManager: redisManager,
		SessionStore: sessionStore,
		CRCON:        crconClient,
		CachedAPI:    cachedAPI,
		Recommender:  recommender,
		Locales:      locales,
		Normalizer:   normalizer,
		Executor:     executor,
	}, nil
}

// Cleanup releases the app's resources in reverse initialization order.
func (app *App) Cleanup() {
	app.RedisManager.Close()

	if err := app.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	sentry.Flush(2 * time.Second)
}
