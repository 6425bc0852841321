package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finly/internal/cli"
	"finly/internal/log"
	"finly/internal/worker"
)

// watcher is implemented by the file backend.
type watcher interface {
	Watch(ctx context.Context, logger *log.Logger, onChange func()) error
}

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info"))
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting finly-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the worker", "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	// With a memory backend the worker would scan an empty ledger of its own.
	if !cfg.SharedBackend() {
		logger.Error("The worker needs a shared data backend, set DATA_BACKEND to file or sqlite",
			log.FieldBackend, cfg.DataBackend, "error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	l, be, err := cli.OpenLedger(ctx, logger, cfg, true)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	// Snapshots refresh from the shared file on their own; watching keeps
	// the in-memory copy current between events.
	if w, ok := be.Store.KV().(watcher); ok {
		g.Go(func() error {
			if err := w.Watch(ctx, logger, l.Bus().Publish); err != nil {
				logger.Warn("Data file watch disabled", log.FieldError, err)
			}
			return nil
		})
	}

	var opts []worker.HandlerOption
	if mailer := cli.NewMailer(logger, cfg); mailer != nil {
		opts = append(opts, worker.WithDelivery(mailer))
	}
	handler := worker.NewEventHandler(l, logger, opts...)
	g.Go(func() error {
		logger.Info("Consuming change events", "queue", cfg.AMQPQueue)
		return be.AMQP.Consume(ctx, handler.Handle)
	})

	if cfg.RunReminders {
		scanner := worker.NewReminderScanner(l, be.AMQP, logger)
		if n, err := scanner.Scan(ctx); err != nil {
			logger.Warn("Startup reminder scan failed", log.FieldError, err)
		} else {
			logger.Info("Startup reminder scan complete", "reminders", n)
		}
		sched, err := worker.NewScheduler(cfg.ReminderSchedule, scanner, logger)
		if err != nil {
			logger.Error("Invalid reminder schedule", log.FieldError, err)
			os.Exit(1)
		}
		sched.Start()
		g.Go(func() error {
			<-ctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return sched.Stop(stopCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
