package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"laplata/internal/amqp"
	"laplata/internal/analysis"
	"laplata/internal/cli"
	"laplata/internal/ledger"
	applog "laplata/internal/log"
	"laplata/internal/services"
	"laplata/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)

	logger.Info("Starting laplata-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	store := cli.OpenBackend(logger, cfg)
	defer func() {
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Storage cleanup failed", applog.FieldError, err.Error())
			}
		}
	}()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
		os.Exit(1)
	}
	defer amqpClient.Close()

	mock := analysis.NewMock()
	mock.ReceiptDelay = cfg.ReceiptDelay
	mock.AudioDelay = cfg.AudioDelay
	mock.FileDelay = cfg.FileDelay

	runner := services.NewAnalysisService(ledger.NewStore(store.KV), mock, mock, mock)
	analysisWorker := worker.NewAnalysisWorker(runner)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := amqpClient.ConsumeWithReconnect(gctx, cfg.AMQPURL, analysisWorker.HandleJob); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Job consumption failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}
