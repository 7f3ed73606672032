package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"revenueqa/internal/cli"
	apphttp "revenueqa/internal/http"
	"revenueqa/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	stack := cli.NewQueryStack(logger, cfg, res.Reader)
	defer stack.Stop()

	// The server starts even without a table; /readyz reports 503 until a
	// load succeeds.
	_ = stack.Start(ctx, logger, cfg)

	opts := []apphttp.Option{apphttp.WithReloadTimeout(cfg.LoadTimeout)}
	if stack.Answers != nil {
		opts = append(opts, apphttp.WithAnswerCache(stack.Answers))
	}
	srv := apphttp.NewServer(":"+cfg.Port, stack.Service, logger, opts...)

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting revenueqa server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
