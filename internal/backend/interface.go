package backend

import (
	"context"

	"finly/internal/amqp"
	"finly/internal/storage"
)

// BackendType names where the ledger collections persist.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, FileBackend, SQLiteBackend:
		return true
	}
	return false
}

func (t BackendType) String() string { return string(t) }

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult is an opened store, plus the broker client when one is
// configured and reachable.
type BackendResult struct {
	Store   *storage.Store
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	DataFile     string
	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP turns a broker connection failure into an error instead
	// of a warning. The worker cannot run without one.
	RequireAMQP bool
}
