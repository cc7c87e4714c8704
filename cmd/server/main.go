package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"pitchtalk-backend/internal/config"
	"pitchtalk-backend/internal/database"
	"pitchtalk-backend/internal/handlers"
	"pitchtalk-backend/internal/repository"
	"pitchtalk-backend/internal/router"
	"pitchtalk-backend/internal/services"
	"pitchtalk-backend/internal/websocket"
	"pitchtalk-backend/internal/worker"
	"pitchtalk-backend/migrations"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger := newLogger(cfg.Env, cfg.LogLevel)
	logger.Info("🚀 Starting PitchTalk backend", "env", cfg.Env, "provider", cfg.LLMProvider)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fatal := func(msg string, err error) {
		logger.Error(msg, "error", err)
		os.Exit(1)
	}

	// ──── Step 2: Redis (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		var err error
		redisClients, err = database.NewRedisClients(ctx, cfg.RedisURL)
		if err != nil {
			fatal("✗ Redis connection failed", err)
		}
		defer redisClients.Close()
		logger.Info("✓ Redis connected")
	}

	// ──── Step 3: Transcript archive (optional) ────
	var archiver services.TranscriptArchiver
	var archivePool *worker.Pool
	var transcriptHandler *handlers.TranscriptHandler
	if cfg.ArchiveEnabled() {
		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fatal("✗ PostgreSQL connection failed", err)
		}
		defer pool.Close()
		logger.Info("✓ PostgreSQL connected")

		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			fatal("✗ Database migration failed", err)
		}
		logger.Info("✓ Database migrations applied")

		transcriptRepo := repository.NewTranscriptRepo(pool)
		archivePool = worker.NewPool(redisClients.Queue, transcriptRepo, cfg.ArchiveWorkers, logger)
		archivePool.Start()
		archiver = archivePool
		transcriptHandler = handlers.NewTranscriptHandler(transcriptRepo, logger)
	} else if cfg.DatabaseURL != "" {
		logger.Warn("DATABASE_URL is set but REDIS_URL is not; transcript archive disabled")
	}

	// ──── Step 4: Completion provider ────
	completer, closeCompleter, err := newCompleter(ctx, cfg, logger)
	if err != nil {
		fatal("✗ Completion provider initialization failed", err)
	}
	defer closeCompleter()
	logger.Info("✓ Completion provider initialized", "provider", completer.Name())

	// ──── Step 5: WebSocket hub + event publishing ────
	var pubsubClient *redis.Client
	if redisClients != nil {
		pubsubClient = redisClients.PubSub
	}
	wsHub := websocket.NewHub(pubsubClient, cfg.FrontendURL, logger)
	go wsHub.Run(ctx)

	var publisher services.EventPublisher
	if redisClients != nil {
		publisher = services.NewRedisPublisher(redisClients.PubSub)
	} else {
		publisher = services.NewLocalPublisher(wsHub)
	}

	// ──── Step 6: Chat service ────
	chatService := services.NewChatService(
		repository.NewConversationRepo(),
		completer,
		publisher,
		archiver,
		services.ChatOptions{
			SystemPrompt:              cfg.SystemPrompt,
			RollbackOnUpstreamFailure: cfg.RollbackOnUpstreamFailure,
		},
		logger,
	)

	// ──── Step 7: HTTP server ────
	r := router.New(
		handlers.NewRootHandler(cfg.Greeting),
		handlers.NewChatHandler(chatService, logger),
		wsHub.HandleWebSocket,
		router.Options{
			FrontendURL: cfg.FrontendURL,
			DevRoutes:   cfg.IsDevelopment(),
			Transcripts: transcriptHandler,
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout(cfg.LLMTimeout),
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
		wsHub.Close()
		if archivePool != nil {
			archivePool.Stop()
		}
	}()

	logger.Info(fmt.Sprintf("✓ PitchTalk backend ready on http://localhost:%s", cfg.Port))

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		fatal("server error", err)
	}
	<-shutdownDone
}

// writeTimeout leaves room for the provider call. With no provider timeout
// the write side is unbounded too.
func writeTimeout(llmTimeout time.Duration) time.Duration {
	if llmTimeout <= 0 {
		return 0
	}
	return llmTimeout + 15*time.Second
}
