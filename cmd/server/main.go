package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certbible/certprep/internal/catalog"
	"github.com/certbible/certprep/internal/chat"
	"github.com/certbible/certprep/internal/config"
	"github.com/certbible/certprep/internal/database"
	"github.com/certbible/certprep/internal/handler"
	"github.com/certbible/certprep/internal/history"
	"github.com/certbible/certprep/internal/logger"
	"github.com/certbible/certprep/internal/provider"
	"github.com/certbible/certprep/internal/repository"
	"github.com/certbible/certprep/internal/router"
	"github.com/certbible/certprep/internal/service"
	"github.com/certbible/certprep/internal/validator"
	"github.com/certbible/certprep/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Str("result_store", cfg.ResultStore).
		Msg("Starting certprep server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Connect to PostgreSQL (optional archive) ─────────────────────
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
	} else {
		log.Warn().Msg("DATABASE_URL not set, result archive and flag persistence disabled")
	}

	// ─── Result Store ──────────────────────────────────────────────────
	var store history.Store
	switch cfg.ResultStore {
	case config.ResultStoreSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open SQLite")
		}
		defer db.Close()
		sqliteStore, err := repository.NewSQLiteResultStore(ctx, db)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare SQLite result store")
		}
		store = sqliteStore
	case config.ResultStoreRedis:
		store = repository.NewRedisResultStore(rdb)
	default:
		log.Fatal().Str("result_store", cfg.ResultStore).Msg("Unknown RESULT_STORE")
	}

	// ─── Catalog & Upstream Clients ────────────────────────────────────
	cat, err := catalog.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam catalog")
	}

	questions := provider.NewClient(provider.Config{
		QuestionURL:     cfg.QuestionAPIURL,
		PracticeExamURL: cfg.PracticeExamAPIURL,
		APIKey:          cfg.QuestionAPIKey,
		Timeout:         cfg.ProviderTimeout,
	}, log)

	tutor := chat.NewClient(chat.Config{
		URL:         cfg.ChatAPIURL,
		APIKey:      cfg.ChatAPIKey,
		Model:       cfg.ChatModel,
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: cfg.ChatTemperature,
		Timeout:     cfg.ProviderTimeout,
	}, log)

	// ─── Initialize Queues & Repositories ─────────────────────────────
	archiveQueue := worker.NewRedisQueue(rdb, config.WorkerKey.ArchiveResultsQueue)
	flagQueue := worker.NewRedisQueue(rdb, config.WorkerKey.PersistFlagsQueue)
	snapshots := repository.NewSessionSnapshotRepository(rdb, cfg.SnapshotTTL)

	var archiveRepo *repository.ResultArchiveRepository
	if pool != nil {
		archiveRepo = repository.NewResultArchiveRepository(pool)
	}

	// ─── Initialize Services ──────────────────────────────────────────
	var resultService *service.ResultService
	sessionOpts := []service.SessionOption{
		service.WithSnapshots(snapshots),
		service.WithIdleTimeout(cfg.SessionIdleTimeout),
	}
	if archiveRepo != nil {
		resultService = service.NewResultService(store, cfg.HistoryLimit, archiveRepo, log)
		sessionOpts = append(sessionOpts, service.WithArchiveQueue(archiveQueue))
	} else {
		// A typed nil would defeat the nil check inside ResultService.
		resultService = service.NewResultService(store, cfg.HistoryLimit, nil, log)
	}
	sessionService := service.NewSessionService(questions, cat, resultService, log, sessionOpts...)
	chatService := service.NewChatService(tutor, sessionService, resultService, log)
	flagService := service.NewFlagService(sessionService, flagQueue, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Catalog: handler.NewCatalogHandler(cat),
		Session: handler.NewSessionHandler(sessionService, log),
		Result:  handler.NewResultHandler(resultService, log),
		Chat:    handler.NewChatHandler(chatService, log),
		Flag:    handler.NewFlagHandler(flagService, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(workerCtx)

	workers.Go(func() error {
		sessionService.RunJanitor(workerCtx)
		return nil
	})
	if pool != nil {
		archiveWorker := worker.NewArchiveWorker(archiveRepo, archiveQueue, log)
		flagWorker := worker.NewFlagWorker(repository.NewFlagRepository(pool), flagQueue, log)
		workers.Go(func() error {
			archiveWorker.Start(workerCtx)
			return nil
		})
		workers.Go(func() error {
			flagWorker.Start(workerCtx)
			return nil
		})
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for their queues to drain.
	workerCancel()
	if err := workers.Wait(); err != nil {
		log.Error().Err(err).Msg("Worker shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
