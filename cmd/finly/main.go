package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"finly/internal/backend"
	"finly/internal/cli"
	apphttp "finly/internal/http"
	"finly/internal/log"
	"finly/internal/worker"
)

// pinger is implemented by stores that can lose their connection.
type pinger interface {
	Ping(ctx context.Context) error
}

// watcher is implemented by the file backend.
type watcher interface {
	Watch(ctx context.Context, logger *log.Logger, onChange func()) error
}

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger("info"))
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	l, be, err := cli.OpenLedger(ctx, logger, cfg, false)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	var ready apphttp.ReadyFunc
	if p, ok := be.Store.KV().(pinger); ok {
		ready = p.Ping
	}

	srv := apphttp.NewServer(":"+cfg.Port, l, apphttp.Options{
		Logger:             logger,
		Advisor:            cli.NewAdvisor(ctx, logger, cfg),
		Ready:              ready,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, ctx := errgroup.WithContext(ctx)

	// Edits made by finlyctl on the same data file reach running clients.
	if w, ok := be.Store.KV().(watcher); ok {
		g.Go(func() error {
			if err := w.Watch(ctx, logger, l.Bus().Publish); err != nil {
				logger.Warn("Data file watch disabled", log.FieldError, err)
			}
			return nil
		})
	}

	// With a broker, changes fan out to finly-worker, which also owns the
	// reminder schedule. Without one the server scans on its own.
	if be.AMQP != nil {
		bridge := backend.NewBridge(be.AMQP, "finly", logger)
		detach := bridge.Attach(l.Bus())
		defer detach()
		g.Go(func() error { return bridge.Run(ctx) })
	} else if cfg.RunReminders {
		var delivery worker.ReminderPublisher
		if mailer := cli.NewMailer(logger, cfg); mailer != nil {
			delivery = mailer
		}
		sched, err := worker.NewScheduler(cfg.ReminderSchedule, worker.NewReminderScanner(l, delivery, logger), logger)
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

	g.Go(func() error {
		logger.Info("Starting finly server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"amqp_enabled", be.AMQP != nil,
			"chat_enabled", cfg.ChatEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
