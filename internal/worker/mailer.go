package worker

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"finly/internal/amqp"
	"finly/internal/core"
	"finly/internal/log"
)

// MailConfig is the SMTP relay and the single recipient of reminders.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer delivers debt reminders by email.
type Mailer struct {
	cfg    MailConfig
	dialer mailDialer
	logger *log.Logger
}

func NewMailer(cfg MailConfig, logger *log.Logger) *Mailer {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// PublishReminder sends r as one email. It satisfies ReminderPublisher so
// the scanner can mail directly when no broker is configured.
func (m *Mailer) PublishReminder(ctx context.Context, _ string, r amqp.DebtReminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(m.message(r)); err != nil {
		return fmt.Errorf("send reminder for %s: %w", r.DebtID, err)
	}
	m.logger.InfoContext(ctx, "Reminder email sent",
		log.FieldDebtID, r.DebtID,
		log.FieldPartyName, r.PartyName,
		"to", m.cfg.To)
	return nil
}

func (m *Mailer) message(r amqp.DebtReminder) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To)
	msg.SetHeader("Subject", reminderSubject(r))
	msg.SetBody("text/plain", reminderBody(r))
	return msg
}

func reminderParty(r amqp.DebtReminder) string {
	if r.Type == string(core.Loan) {
		return "Piutang dari " + r.PartyName
	}
	return "Hutang ke " + r.PartyName
}

func reminderSubject(r amqp.DebtReminder) string {
	if r.Overdue {
		return "Finly: " + reminderParty(r) + " sudah lewat jatuh tempo"
	}
	return "Finly: " + reminderParty(r) + " segera jatuh tempo"
}

func reminderBody(r amqp.DebtReminder) string {
	state := "jatuh tempo pada " + r.DueDate
	if r.Overdue {
		state = "sudah lewat jatuh tempo sejak " + r.DueDate
	}
	return fmt.Sprintf("%s, sisa %s, %s.\n", reminderParty(r), core.Money(r.Remaining), state)
}
