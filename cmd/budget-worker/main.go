package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/cli"
	"budget/internal/mirror"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting budget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	backend, err := mirror.NewBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize mirror backend", "error", err, "backend", cfg.MirrorBackend)
		os.Exit(1)
	}
	defer backend.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(backend, backend)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := amqpClient.Consume(gctx, mirrorWorker.HandleCreated, mirrorWorker.HandleRemoved)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return runPeriodicReport(gctx, logger, backend, cfg.ReportInterval)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}

// runPeriodicReport logs the mirror size on a fixed interval, as a
// cheap liveness signal for the pipeline. Backends without a counter
// skip the report.
func runPeriodicReport(ctx context.Context, logger *slog.Logger, backend mirror.Backend, interval time.Duration) error {
	counter, ok := backend.(interface {
		Count(ctx context.Context) (int64, error)
	})
	if !ok {
		logger.Info("Mirror backend has no counter, skipping periodic report")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := counter.Count(ctx)
			if err != nil {
				logger.Info("Mirror count unavailable", "error", err)
				continue
			}
			logger.Info("Mirror report", "transactions", n)
		}
	}
}
