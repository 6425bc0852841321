package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"finly/internal/amqp"
	"finly/internal/core"
	"finly/internal/ledger"
	"finly/internal/log"
)

// DefaultReminderSchedule runs the scan every morning at 08:00.
const DefaultReminderSchedule = "0 8 * * *"

const reminderSource = "reminder-scanner"

// Snapshotter is the read side of the ledger.
type Snapshotter interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
}

// ReminderPublisher sends a reminder somewhere; nil means log only.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, source string, r amqp.DebtReminder) error
}

// ReminderScanner turns overdue and upcoming debts into reminders.
type ReminderScanner struct {
	ledger    Snapshotter
	publisher ReminderPublisher
	logger    *log.Logger
}

func NewReminderScanner(l Snapshotter, publisher ReminderPublisher, logger *log.Logger) *ReminderScanner {
	if logger == nil {
		logger = log.Discard()
	}
	return &ReminderScanner{
		ledger:    l,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentScheduler),
	}
}

// Reminders lists what a scan would send, overdue first.
func Reminders(snap ledger.Snapshot) []amqp.DebtReminder {
	overdue := snap.OverdueDebts()
	upcoming := snap.UpcomingDueDates()
	out := make([]amqp.DebtReminder, 0, len(overdue)+len(upcoming))
	for _, d := range overdue {
		out = append(out, reminderOf(d, true))
	}
	for _, d := range upcoming {
		out = append(out, reminderOf(d, false))
	}
	return out
}

func reminderOf(d core.DebtRecord, overdue bool) amqp.DebtReminder {
	return amqp.DebtReminder{
		DebtID:    d.ID,
		PartyName: d.PartyName,
		Type:      string(d.Type),
		Remaining: int64(d.Remaining()),
		DueDate:   d.DueDate.String(),
		Overdue:   overdue,
	}
}

// Scan sends one reminder per due record and returns how many went out.
// A publish failure stops the scan; the next run resends everything.
func (s *ReminderScanner) Scan(ctx context.Context) (int, error) {
	snap, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("snapshot: %w", err)
	}
	reminders := Reminders(snap)
	for i, r := range reminders {
		s.logger.InfoContext(ctx, "Debt reminder",
			log.FieldOperation, log.OpRemind,
			log.FieldDebtID, r.DebtID,
			log.FieldPartyName, r.PartyName,
			log.FieldDueDate, r.DueDate,
			log.FieldAmount, r.Remaining,
			"overdue", r.Overdue,
		)
		if s.publisher == nil {
			continue
		}
		if err := s.publisher.PublishReminder(ctx, reminderSource, r); err != nil {
			return i, fmt.Errorf("publish reminder %s: %w", r.DebtID, err)
		}
	}
	return len(reminders), nil
}

// Scheduler runs a ReminderScanner on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	scanner *ReminderScanner
	logger  *log.Logger
}

func NewScheduler(spec string, scanner *ReminderScanner, logger *log.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultReminderSchedule
	}
	if logger == nil {
		logger = log.Discard()
	}
	s := &Scheduler{
		cron:    cron.New(),
		scanner: scanner,
		logger:  logger.WithComponent(log.ComponentScheduler),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx := context.Background()
	n, err := s.scanner.Scan(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Reminder scan failed", log.FieldError, err, "sent", n)
		return
	}
	s.logger.InfoContext(ctx, "Reminder scan complete", "sent", n)
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Reminder scheduler started", "entries", len(s.cron.Entries()))
}

// Stop waits for a running scan to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
