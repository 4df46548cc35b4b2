package bootstrap

import (
	"context"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog"

	"github.com/parvatkhattak/onebox-email-aggregator/adapter/in/http"
	"github.com/parvatkhattak/onebox-email-aggregator/config"
	"github.com/parvatkhattak/onebox-email-aggregator/infra/middleware"
	"github.com/parvatkhattak/onebox-email-aggregator/pkg/logger"
)

// NewAPI builds the Fiber app, wires all handlers and starts the ingest
// sessions for every stored account.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logLevel := logger.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = logger.LevelDebug
	}
	logger.Init(logger.Config{
		Level:   logLevel,
		Service: "onebox-api",
	})

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		ReadBufferSize:  16384,
		WriteBufferSize: 16384,

		// go-json is a drop-in replacement for encoding/json
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit: 10 * 1024 * 1024,

		ServerHeader:       "",
		DisableDefaultDate: true,

		// Streaming keeps the SSE endpoint from buffering
		StreamRequestBody: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		if cfg.IsProduction() {
			allowOrigins = ""
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
		MaxAge:       86400,
	}))

	api := app.Group("/api")

	http.NewHealthHandler(deps.Registry).Register(api)
	http.NewAccountHandler(deps.AccountService).Register(api)
	http.NewEmailHandler(deps.EmailService).Register(api)
	http.NewSettingsHandler(deps.SettingsRepo).Register(api)

	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Logger()
	http.NewSSEHandler(deps.SSEHub, zlog).Register(api)

	// Reconnect every stored account on startup (async)
	go deps.Registry.OpenAll(context.Background(), deps.AccountRepo)

	logger.Info("API server initialized successfully")

	return app, cleanup, nil
}
