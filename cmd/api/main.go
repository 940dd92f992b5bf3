package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/securemov/ana-chat/backend/internal/config"
	"github.com/securemov/ana-chat/backend/internal/feed"
	"github.com/securemov/ana-chat/backend/internal/handler"
	"github.com/securemov/ana-chat/backend/internal/middleware"
	"github.com/securemov/ana-chat/backend/internal/model/persona"
	"github.com/securemov/ana-chat/backend/internal/service/ai"
	"github.com/securemov/ana-chat/backend/internal/service/assistant"
	"github.com/securemov/ana-chat/backend/internal/service/chat"
	"github.com/securemov/ana-chat/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := newLogger(cfg)
	log.Logger = logger
	if envErr != nil {
		logger.Debug().Err(envErr).Msg("no .env file, continuing with system environment variables only")
	}

	// Persistence
	messages, memoryStore, checks := openStore(ctx, cfg.Store, logger)
	defer messages.Close()

	// Live feed
	hub := feed.NewHub(0, logger)
	var publisher feed.Publisher = hub
	if cfg.Feed.RedisURL != "" {
		broker, err := feed.NewRedisBroker(ctx, cfg.Feed.RedisURL, cfg.Feed.Channel, hub, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, feed stays in-process")
		} else {
			defer broker.Close()
			publisher = broker
			checks["redis"] = broker
			go func() {
				if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error().Err(err).Msg("redis feed stopped")
				}
			}()
			logger.Info().Str("channel", cfg.Feed.Channel).Msg("redis feed enabled")
		}
	}

	// Language model
	var generator assistant.Generator
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err == nil {
			generator, err = ai.NewService(ctx, chatModel, cfg.AI.Timeout, logger.With().Str("component", "llm").Logger())
		}
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize AI service, assistant turns will report a configuration error")
			generator = nil
		} else {
			logger.Info().Str("model", cfg.AI.Model).Msg("AI service initialized")
		}
	} else {
		logger.Warn().Msg("Ark 凭证未配置，助手请求将返回配置错误")
	}

	// Assistant and chat
	personaStore := persona.NewMemoryStore(persona.Seed())
	ana, _ := personaStore.FindByID(persona.AnaID)

	assistantSvc := assistant.NewService(generator, memoryStore, ai.NewComposer(ana), logger)
	chatSvc := chat.NewService(messages, publisher, assistantSvc, chat.Config{
		JoinCode:    cfg.Room.JoinCode,
		DefaultRoom: cfg.Room.DefaultRoom,
		Documents:   ana.Documents,
	}, logger)

	router := handler.NewRouter(handler.Dependencies{
		Personas:         personaStore,
		Chat:             chatSvc,
		Assistant:        assistantSvc,
		Feed:             hub,
		Checks:           checks,
		AssistantLimiter: middleware.NewRateLimiter("ai", cfg.Assistant.RatePerMinute, cfg.Assistant.Burst, logger),
		Logger:           logger,
	})

	startServer(ctx, cfg.Server, router, logger)
}

// openStore picks the persistence backend. Without a database the chat log
// lives in memory but the assistant gets no memory store, so memory turns
// report a configuration error instead of silently forgetting.
func openStore(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (store.DataStore, store.MemoryStore, map[string]handler.Pinger) {
	checks := make(map[string]handler.Pinger)

	switch {
	case cfg.Driver == config.DriverMemory:
		mem := store.NewInMemoryStore()
		logger.Info().Msg("using in-memory store")
		return mem, mem, checks
	case cfg.Configured():
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		checks["postgres"] = pg
		logger.Info().Msg("connected to postgres")
		return pg, pg, checks
	default:
		logger.Warn().Msg("DATABASE_URL not set, chat log kept in memory and assistant memory disabled")
		return store.NewInMemoryStore(), nil, checks
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "ana-chat").Logger()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger zerolog.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", addr).Msg("SecureMov chat backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
