// Package bootstrap wires adapters, services and the HTTP app together.
package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/imapmail"
	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/mongodb"
	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/notify"
	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/persistence"
	"github.com/parvatkhattak/onebox-email-aggregator/adapter/out/realtime"
	"github.com/parvatkhattak/onebox-email-aggregator/config"
	"github.com/parvatkhattak/onebox-email-aggregator/core/agent/llm"
	"github.com/parvatkhattak/onebox-email-aggregator/core/port/out"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/account"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/classification"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/email"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/ingest"
	"github.com/parvatkhattak/onebox-email-aggregator/core/service/notification"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/cache"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/crypto"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// Dependencies is the container of wired adapters and services.
type Dependencies struct {
	Config  *config.Config
	MongoDB *mongo.Client
	Redis   *redis.Client

	// Repositories
	EmailRepo    out.EmailRepository
	AccountRepo  out.AccountRepository
	SettingsRepo *persistence.SettingsStore

	// Realtime
	RealtimeAdapter *realtime.SSEAdapter
	SSEHub          *realtime.SSEHub

	// AI
	LLMClient  *llm.Client
	Classifier out.IntentClassifier

	// Services
	Registry       *ingest.Service
	AccountService *account.Service
	EmailService   *email.Service
	Notifications  *notification.Service
}

// NewDependencies builds the full dependency graph. The returned cleanup
// closes external connections and must run on shutdown.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	if err := crypto.Init(); err != nil {
		return nil, nil, err
	}

	// MongoDB
	mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
	if err != nil {
		return nil, nil, err
	}
	db := mongoClient.Database(cfg.MongoDBName)

	emailRepo := mongodb.NewEmailAdapter(db)
	if err := emailRepo.EnsureIndexes(context.Background()); err != nil {
		logger.WithError(err).Warn("Failed to ensure email indexes")
	}

	// Redis is optional. Without it classification results are simply
	// not cached across restarts.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("Invalid REDIS_URL, continuing without cache")
		} else {
			redisClient = redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := redisClient.Ping(pingCtx).Err(); err != nil {
				logger.WithError(err).Warn("Redis unreachable, continuing without cache")
				redisClient.Close()
				redisClient = nil
			}
			cancel()
		}
	}

	// File-backed stores
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, err
	}
	accountRepo := persistence.NewAccountStore(
		filepath.Join(cfg.DataDir, cfg.AccountsFile), crypto.GetEncryptor())
	settingsRepo := persistence.NewSettingsStore(
		filepath.Join(cfg.DataDir, cfg.SettingsFile))

	// Realtime
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()
	realtimeAdapter := realtime.NewSSEAdapter(zlog)
	sseHub := realtime.NewSSEHub(realtimeAdapter, zlog)

	// AI classification
	llmClient := llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	var classifier out.IntentClassifier = classification.NewIntentClassifier(llmClient)
	if redisClient != nil {
		classifier = classification.NewCachedClassifier(
			classifier,
			cache.NewRedisCache(redisClient),
			time.Duration(cfg.ClassifyCacheTTLHour)*time.Hour,
		)
	}

	// Interested-lead notifications
	notifications := notification.NewService(
		notify.NewSlackNotifier(settingsRepo, cfg.SlackWebhookURL),
		notify.NewWebhookNotifier(settingsRepo, cfg.ExternalWebhookURL),
	)

	// IMAP ingest
	registry := ingest.NewService(
		imapmail.NewDialer(cfg.IMAPDialTimeout),
		emailRepo,
		classifier,
		notifications,
		realtimeAdapter,
		crypto.Decrypt,
		ingest.Config{
			LookbackDays: cfg.IMAPLookbackDays,
			WatchRetry:   cfg.IMAPWatchRetry,
		},
	)

	deps := &Dependencies{
		Config:          cfg,
		MongoDB:         mongoClient,
		Redis:           redisClient,
		EmailRepo:       emailRepo,
		AccountRepo:     accountRepo,
		SettingsRepo:    settingsRepo,
		RealtimeAdapter: realtimeAdapter,
		SSEHub:          sseHub,
		LLMClient:       llmClient,
		Classifier:      classifier,
		Registry:        registry,
		AccountService:  account.NewService(accountRepo, emailRepo, registry),
		EmailService:    email.NewService(emailRepo, llmClient),
		Notifications:   notifications,
	}

	cleanup := func() {
		registry.CloseAll()

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close Redis client")
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.WithError(err).Warn("Failed to disconnect MongoDB")
		}
	}

	return deps, cleanup, nil
}
