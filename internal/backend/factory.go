package backend

import (
	"context"
	"errors"
	"fmt"

	"finly/internal/amqp"
	"finly/internal/log"
	"finly/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	kv, err := f.openKV(config)
	if err != nil {
		return nil, err
	}
	result := &BackendResult{Store: storage.NewStore(kv)}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		switch {
		case err != nil && config.RequireAMQP:
			kv.Close()
			return nil, fmt.Errorf("connect AMQP: %w", err)
		case err != nil:
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		default:
			result.AMQP = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Cleanup = func() error {
		var errs []error
		if result.AMQP != nil {
			errs = append(errs, result.AMQP.Close())
		}
		errs = append(errs, result.Store.Close())
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		log.FieldBackend, config.Type.String(),
		"amqp_enabled", result.AMQP != nil)
	return result, nil
}

func (f *DefaultFactory) openKV(config Config) (storage.KV, error) {
	switch config.Type {
	case MemoryBackend:
		return storage.NewMemoryKV(), nil
	case FileBackend:
		kv, err := storage.NewFileKV(config.DataFile)
		if err != nil {
			return nil, fmt.Errorf("open data file: %w", err)
		}
		return kv, nil
	case SQLiteBackend:
		kv, err := storage.NewSQLiteKV(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		return kv, nil
	}
	return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}
