// Package cli provides the start-up steps shared by the revenueqa binaries.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"revenueqa/internal/backend"
	"revenueqa/internal/cache"
	"revenueqa/internal/config"
	"revenueqa/internal/log"
	"revenueqa/internal/nlq"
	"revenueqa/internal/revenue"
	"revenueqa/internal/services"
)

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger() *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// A missing file is not an error.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and exits the process when it
// is invalid.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured table source or exits the process.
func OpenBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.BackendResult {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend",
			log.FieldError, err,
			"backend", cfg.DataBackend)
		os.Exit(1)
	}
	return res
}

// GracefulShutdown sets up signal handling. The returned context is
// cancelled on SIGINT or SIGTERM after cleanup has run; the channel is
// closed once shutdown is complete or the timeout expired.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup(shutdownCtx)
			}
			close(finished)
		}()
		cancel()

		select {
		case <-finished:
			logger.Info("Shutdown complete")
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		}
	}()

	return ctx, done
}

// WaitForShutdown blocks until shutdown has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}

// QueryStack is everything needed to answer questions from the configured
// table source.
type QueryStack struct {
	Store   *revenue.Store
	Answers *cache.LRUCache[[]nlq.ClauseResult]
	Caches  *cache.Manager
	Service *services.QueryService
}

// NewQueryStack wires the snapshot store, the answer cache and the query
// service over source. The first load is left to the caller.
func NewQueryStack(logger *log.Logger, cfg *config.Config, source revenue.Source) *QueryStack {
	store := revenue.NewStore(source, cfg.LoadTimeout, logger)

	caches := cache.NewManager(logger)
	var (
		answers     *cache.LRUCache[[]nlq.ClauseResult]
		answerCache cache.Cache[[]nlq.ClauseResult]
	)
	if cfg.AnswerCacheSize > 0 {
		answers = cache.NewLRUCache[[]nlq.ClauseResult](cfg.AnswerCacheSize, cfg.AnswerCacheTTL)
		caches.Register(answers)
		answerCache = answers
	}

	engine := nlq.NewEngine(nlq.SystemClock{}, logger)
	return &QueryStack{
		Store:   store,
		Answers: answers,
		Caches:  caches,
		Service: services.NewQueryService(engine, store, answerCache, logger),
	}
}

// Start performs the first load and starts periodic reloads and cache
// cleanup. A failed first load is logged; the caller decides whether that
// is fatal.
func (q *QueryStack) Start(ctx context.Context, logger *log.Logger, cfg *config.Config) error {
	_, err := q.Service.Reload(ctx)
	if err != nil {
		logger.Error("Initial revenue table load failed", log.FieldError, err, log.FieldOperation, log.OpStartup)
	}
	q.Store.StartAutoReload(ctx, cfg.ReloadInterval)
	if q.Answers != nil {
		q.Caches.StartCleanup(time.Minute)
	}
	return err
}

// Stop releases background goroutines.
func (q *QueryStack) Stop() {
	q.Caches.Stop()
}
