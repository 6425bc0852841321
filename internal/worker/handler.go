// Package worker holds the background side of finly: the event consumer and
// the debt reminder schedule.
package worker

import (
	"context"
	"fmt"
	"time"

	"finly/internal/amqp"
	"finly/internal/health"
	"finly/internal/log"
	"finly/internal/notify"
)

// EventHandler reacts to events on the finly queue.
type EventHandler struct {
	src      notify.Source
	notes    *notify.Service
	delivery ReminderPublisher
	logger   *log.Logger
}

type HandlerOption func(*EventHandler)

// WithDelivery forwards every reminder event to p, typically a Mailer.
func WithDelivery(p ReminderPublisher) HandlerOption {
	return func(h *EventHandler) { h.delivery = p }
}

func NewEventHandler(src notify.Source, logger *log.Logger, opts ...HandlerOption) *EventHandler {
	if logger == nil {
		logger = log.Discard()
	}
	h := &EventHandler{
		src:    src,
		notes:  notify.NewService(src),
		logger: logger.WithComponent(log.ComponentWorker),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle satisfies amqp.Handler.
func (h *EventHandler) Handle(ctx context.Context, ev *amqp.Event) error {
	switch ev.Kind {
	case amqp.KindDataChanged:
		return h.dataChanged(ctx, ev)
	case amqp.KindDebtReminder:
		r := ev.Reminder
		if h.delivery != nil {
			// Not requeued: the next scheduled scan sends it again.
			if err := h.delivery.PublishReminder(ctx, ev.Source, *r); err != nil {
				h.logger.WarnContext(ctx, "Reminder delivery failed",
					log.FieldDebtID, r.DebtID,
					log.FieldError, err)
				return nil
			}
		}
		h.logger.InfoContext(ctx, "Debt reminder delivered",
			log.FieldDebtID, r.DebtID,
			log.FieldPartyName, r.PartyName,
			log.FieldDueDate, r.DueDate,
			log.FieldAmount, r.Remaining,
			"overdue", r.Overdue,
			"lag_ms", time.Since(ev.Timestamp).Milliseconds(),
		)
		return nil
	}
	h.logger.WarnContext(ctx, "Ignoring unknown event", "kind", ev.Kind)
	return nil
}

func (h *EventHandler) dataChanged(ctx context.Context, ev *amqp.Event) error {
	snap, err := h.src.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	score := health.Compute(snap)
	if score.Available {
		h.logger.InfoContext(ctx, "Health score recomputed",
			log.FieldScore, score.Score,
			"tier", score.Tier,
			"source", ev.Source,
		)
	}

	list, err := h.notes.List(ctx)
	if err != nil {
		return err
	}
	for _, n := range list {
		if n.Priority != notify.High {
			continue
		}
		h.logger.WarnContext(ctx, "High priority notification",
			"notification_id", n.ID,
			"type", n.Type,
			"message", n.Message,
		)
	}
	return nil
}
