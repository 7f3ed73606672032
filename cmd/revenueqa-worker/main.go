package main

import (
	"context"
	"errors"
	"os"
	"time"

	"revenueqa/internal/amqp"
	"revenueqa/internal/cli"
	"revenueqa/internal/log"
	"revenueqa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting revenueqa-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	res := cli.OpenBackend(context.Background(), logger, cfg)
	defer func() {
		if res.Cleanup != nil {
			_ = res.Cleanup()
		}
	}()

	stack := cli.NewQueryStack(logger, cfg, res.Reader)
	defer stack.Stop()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	answerWorker := worker.NewAnswerWorker(stack.Service, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Questions that arrive before the first load are requeued by the
	// handler, so consumption starts regardless.
	_ = stack.Start(ctx, logger, cfg)

	if err := amqpClient.Run(ctx, answerWorker.HandleQuestion); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Question consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
