package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"finly/internal/backend"
	"finly/internal/cli"
	"finly/internal/config"
	"finly/internal/core"
	"finly/internal/ledger"
	"finly/internal/log"
)

var verbose = flag.Bool("v", false, "log store and broker activity to stderr")

// session is an opened ledger plus whatever must be closed after use.
type session struct {
	cfg    *config.Config
	logger *log.Logger
	ledger *ledger.Ledger
	close  func()
}

// openSession opens the configured store. When a broker is configured each
// change is announced to it before the command returns, so finly-worker
// sees edits made from the terminal.
func openSession(ctx context.Context) (*session, error) {
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := log.NewText(os.Stderr, level, log.ComponentCLI)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, be, err := cli.OpenLedger(ctx, logger, cfg, false)
	if err != nil {
		return nil, err
	}

	detach := func() {}
	if be.AMQP != nil {
		detach = attachPublisher(l, be, logger)
	}
	return &session{
		cfg:    cfg,
		logger: logger,
		ledger: l,
		close: func() {
			detach()
			if err := be.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		},
	}, nil
}

func attachPublisher(l *ledger.Ledger, be *backend.BackendResult, logger *log.Logger) func() {
	return l.Bus().Subscribe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := be.AMQP.PublishDataChanged(ctx, "finlyctl"); err != nil {
			logger.Warn("Failed to publish data change", log.FieldError, err)
		}
	})
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// parseDate reads YYYY-MM-DD; an empty string is today.
func parseDate(s string, today core.Date) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return today, nil
	}
	return core.ParseDate(s)
}

// parseAmount accepts "1500000", "1.500.000" or "Rp 1.500.000".
func parseAmount(s string) (core.Money, error) {
	m := core.ParseRupiah(s)
	if err := m.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %q", err, s)
	}
	return m, nil
}
