// Package cli provides common CLI initialization utilities shared by
// cmd/finly, cmd/finly-worker and cmd/finlyctl.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finly/internal/backend"
	"finly/internal/chat"
	"finly/internal/config"
	"finly/internal/ledger"
	"finly/internal/log"
	"finly/internal/worker"
)

// SetupLogger initializes structured logging at the given level and makes
// it the process default.
func SetupLogger(level string) *log.Logger {
	logger := log.NewText(os.Stdout, log.ParseLevel(level), log.ComponentApp)
	slog.SetDefault(logger.Logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err,
			"error_type", log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// OpenLedger opens the configured backend and builds a ledger on it. The
// returned cleanup closes the store and any broker connection.
func OpenLedger(ctx context.Context, logger *log.Logger, cfg *config.Config, requireAMQP bool) (*ledger.Ledger, *backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	bcfg.RequireAMQP = requireAMQP
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	return ledger.New(result.Store, ledger.WithLogger(logger)), result, nil
}

// NewAdvisor builds the chat advisor. Without an API key it answers every
// question with the fallback message.
func NewAdvisor(ctx context.Context, logger *log.Logger, cfg *config.Config) *chat.Advisor {
	opts := []chat.Option{chat.WithLogger(logger), chat.WithTimeout(cfg.ChatTimeout)}
	if !cfg.ChatEnabled() {
		logger.Info("Chat advisor disabled, GEMINI_API_KEY not set")
		return chat.NewAdvisor(nil, opts...)
	}
	completer, err := chat.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.ChatModel)
	if err != nil {
		logger.Warn("Failed to initialize chat model, using fallback replies", log.FieldError, err)
		return chat.NewAdvisor(nil, opts...)
	}
	return chat.NewAdvisor(completer, opts...)
}

// NewMailer returns the reminder mailer, or nil when SMTP is not configured.
func NewMailer(logger *log.Logger, cfg *config.Config) *worker.Mailer {
	if !cfg.MailEnabled() {
		return nil
	}
	logger.Info("Reminder email enabled", "smtp_host", cfg.SMTPHost, "to", cfg.ReminderEmailTo)
	return worker.NewMailer(worker.MailConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		To:       cfg.ReminderEmailTo,
	}, logger)
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received", log.FieldOperation, log.OpShutdown)
	}()
	return ctx, cancel
}
