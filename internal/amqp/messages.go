package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Routing keys on the finly exchange.
const (
	KindDataChanged  = "data_changed"
	KindDebtReminder = "debt_reminder"
)

// Event is the envelope of every message. It is a signal, not a change
// record: consumers re-read the ledger to learn what changed.
type Event struct {
	Kind      string        `json:"kind"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source,omitempty"`
	Reminder  *DebtReminder `json:"reminder,omitempty"`
}

// DebtReminder is a due or overdue debt or loan, as of Timestamp.
type DebtReminder struct {
	DebtID    string `json:"debt_id"`
	PartyName string `json:"party_name"`
	Type      string `json:"type"`
	Remaining int64  `json:"remaining"`
	DueDate   string `json:"due_date"`
	Overdue   bool   `json:"overdue"`
}

func NewDataChanged(source string) *Event {
	return &Event{Kind: KindDataChanged, Timestamp: time.Now(), Source: source}
}

func NewDebtReminder(source string, r DebtReminder) *Event {
	return &Event{Kind: KindDebtReminder, Timestamp: time.Now(), Source: source, Reminder: &r}
}

// ToJSON converts the message to JSON bytes
func (m *Event) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventFromJSON decodes and checks a message body.
func EventFromJSON(data []byte) (*Event, error) {
	var msg Event
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindDataChanged:
	case KindDebtReminder:
		if msg.Reminder == nil {
			return nil, fmt.Errorf("%s event without reminder", msg.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown event kind %q", msg.Kind)
	}
	return &msg, nil
}
