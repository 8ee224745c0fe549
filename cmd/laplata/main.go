package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"laplata/internal/amqp"
	"laplata/internal/analysis"
	"laplata/internal/auth"
	"laplata/internal/cli"
	apphttp "laplata/internal/http"
	"laplata/internal/ledger"
	applog "laplata/internal/log"
	"laplata/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenBackend(logger, cfg)
	defer func() {
		if store.Cleanup != nil {
			if err := store.Cleanup(); err != nil {
				logger.Error("Storage cleanup failed", applog.FieldError, err.Error())
			}
		}
	}()

	ledgerStore := ledger.NewStore(store.KV)
	authSvc := auth.NewService(store.KV)

	mock := analysis.NewMock()
	mock.ReceiptDelay = cfg.ReceiptDelay
	mock.AudioDelay = cfg.AudioDelay
	mock.FileDelay = cfg.FileDelay
	runner := services.NewAnalysisService(ledgerStore, mock, mock, mock)

	// Without a broker analyses run inline on the request path.
	var queue services.JobPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err.Error())
			os.Exit(1)
		}
		defer amqpClient.Close()
		queue = amqpClient
		logger.Info("Analysis job queue enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("No AMQP broker configured, analyses run inline")
	}

	ledgerSvc := services.NewLedgerService(ledgerStore, queue, runner)
	srv := apphttp.NewServer(cfg, ledgerSvc, authSvc, store.KV, logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting laplata server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
