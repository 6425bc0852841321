package backend

import (
	"context"

	"finly/internal/events"
	"finly/internal/log"
)

// ChangePublisher announces ledger changes off-process.
type ChangePublisher interface {
	PublishDataChanged(ctx context.Context, source string) error
}

// Bridge forwards change-bus signals to a ChangePublisher. Signals that
// arrive while a publish is in flight collapse into one.
type Bridge struct {
	pub     ChangePublisher
	source  string
	logger  *log.Logger
	pending chan struct{}
}

func NewBridge(pub ChangePublisher, source string, logger *log.Logger) *Bridge {
	if logger == nil {
		logger = log.Discard()
	}
	return &Bridge{
		pub:     pub,
		source:  source,
		logger:  logger.WithComponent(log.ComponentAMQP),
		pending: make(chan struct{}, 1),
	}
}

// Attach subscribes the bridge to bus and returns the unsubscribe func.
// The subscriber never blocks the mutating caller.
func (b *Bridge) Attach(bus *events.Bus) func() {
	return bus.Subscribe(func() {
		select {
		case b.pending <- struct{}{}:
		default:
		}
	})
}

// Run publishes until ctx ends.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.pending:
			if err := b.pub.PublishDataChanged(ctx, b.source); err != nil {
				b.logger.WarnContext(ctx, "Failed to publish data change",
					log.FieldOperation, log.OpPublish,
					log.FieldError, err)
			}
		}
	}
}
