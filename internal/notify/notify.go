// Package notify derives the user's financial notifications from a ledger
// snapshot. Nothing here is stored except which ids were dismissed.
package notify

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"finly/internal/core"
	"finly/internal/ledger"
)

type Type string

const (
	Income         Type = "income"
	ExpenseWarning Type = "expense_warning"
	LowBalance     Type = "low_balance"
	DebtPayment    Type = "debt_payment"
	DebtDue        Type = "debt_due"
	WeeklyReport   Type = "weekly_report"
)

type Priority string

const (
	High   Priority = "high"
	Medium Priority = "medium"
	Low    Priority = "low"
)

var rank = map[Priority]int{High: 0, Medium: 1, Low: 2}

// Thresholds, in percent.
const (
	ExpenseWarnPercent = 80
	LowBalancePercent  = 10
)

type Notification struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Priority  Priority  `json:"priority"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Generate builds the notifications for snap at now, minus dismissed ids.
// Ids are derived from the underlying facts, so a dismissal sticks until
// the facts change.
func Generate(snap ledger.Snapshot, now time.Time, dismissed []string) []Notification {
	hidden := make(map[string]bool, len(dismissed))
	for _, id := range dismissed {
		hidden[id] = true
	}

	var out []Notification
	add := func(n Notification) {
		if hidden[n.ID] {
			return
		}
		if n.Timestamp.IsZero() {
			n.Timestamp = now
		}
		out = append(out, n)
	}

	today := snap.Today
	for _, tx := range snap.Transactions {
		if tx.Type == core.Income && tx.Date == today {
			add(Notification{
				ID:       "income-" + tx.ID,
				Type:     Income,
				Priority: Low,
				Message:  fmt.Sprintf("Pemasukan %s sebesar %s tercatat hari ini.", tx.Category, tx.Amount),
			})
		}
	}

	month := snap.MonthlyData(today.Year(), today.Month())
	if n, ok := expenseWarning(month, today); ok {
		add(n)
	}

	balance := snap.Balance()
	if balance.Balance < 0 || (balance.TotalIncome > 0 && below(balance.Balance, balance.TotalIncome, LowBalancePercent)) {
		add(Notification{
			ID:       "low_balance-" + today.String(),
			Type:     LowBalance,
			Priority: High,
			Message:  fmt.Sprintf("Saldo tersisa %s. Hati-hati dengan pengeluaran berikutnya.", balance.Balance),
		})
	}

	for _, d := range snap.UpcomingDueDates() {
		add(Notification{
			ID:       fmt.Sprintf("debt_due-%s-%s", d.ID, d.DueDate),
			Type:     DebtDue,
			Priority: Medium,
			Message:  dueMessage(d),
		})
	}
	for _, d := range snap.OverdueDebts() {
		add(Notification{
			ID:       "debt_payment-" + d.ID,
			Type:     DebtPayment,
			Priority: High,
			Message:  overdueMessage(d),
		})
	}

	if today.Weekday() == time.Monday {
		add(weeklyReport(snap, today))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].Priority] != rank[out[j].Priority] {
			return rank[out[i].Priority] < rank[out[j].Priority]
		}
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// below reports whether part is under pct percent of whole.
func below(part, whole core.Money, pct int64) bool {
	return decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).
		LessThan(decimal.NewFromInt(int64(whole)).Mul(decimal.NewFromInt(pct)))
}

func expenseWarning(month core.MonthlyData, today core.Date) (Notification, bool) {
	if month.Expense <= 0 {
		return Notification{}, false
	}
	n := Notification{ID: "expense_warning-" + today.MonthKey(), Type: ExpenseWarning}
	switch {
	case month.Income <= 0 || month.Expense > month.Income:
		n.Priority = High
		n.Message = fmt.Sprintf("Pengeluaran bulan ini (%s) sudah melebihi pemasukan (%s).", month.Expense, month.Income)
	case !below(month.Expense, month.Income, ExpenseWarnPercent) && month.Expense*100 != month.Income*ExpenseWarnPercent:
		n.Priority = Medium
		n.Message = fmt.Sprintf("Pengeluaran bulan ini sudah %d%% dari pemasukan.", core.Percent(month.Expense, month.Income))
	default:
		return Notification{}, false
	}
	return n, true
}

func dueMessage(d core.DebtRecord) string {
	if d.Type == core.Loan {
		return fmt.Sprintf("Piutang dari %s sebesar %s jatuh tempo %s.", d.PartyName, d.Remaining(), d.DueDate)
	}
	return fmt.Sprintf("Hutang ke %s sebesar %s jatuh tempo %s.", d.PartyName, d.Remaining(), d.DueDate)
}

func overdueMessage(d core.DebtRecord) string {
	if d.Type == core.Loan {
		return fmt.Sprintf("Piutang dari %s (%s) sudah lewat jatuh tempo %s.", d.PartyName, d.Remaining(), d.DueDate)
	}
	return fmt.Sprintf("Hutang ke %s (%s) sudah lewat jatuh tempo %s. Segera lunasi.", d.PartyName, d.Remaining(), d.DueDate)
}

// weeklyReport summarizes the seven days before today.
func weeklyReport(snap ledger.Snapshot, today core.Date) Notification {
	from := today.AddDays(-7)
	var income, expense core.Money
	for _, tx := range snap.Transactions {
		if tx.Date.Before(from) || !tx.Date.Before(today) {
			continue
		}
		switch tx.Type {
		case core.Income:
			income += tx.Amount
		case core.Expense:
			expense += tx.Amount
		}
	}
	return Notification{
		ID:       "weekly_report-" + today.String(),
		Type:     WeeklyReport,
		Priority: Low,
		Message:  fmt.Sprintf("Ringkasan minggu lalu: pemasukan %s, pengeluaran %s.", income, expense),
	}
}

// Source is the part of the ledger notifications need.
type Source interface {
	Snapshot(ctx context.Context) (ledger.Snapshot, error)
	DismissedNotifications(ctx context.Context) ([]string, error)
	DismissNotification(ctx context.Context, id string) error
	Now() time.Time
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// List returns current, undismissed notifications.
func (s *Service) List(ctx context.Context) ([]Notification, error) {
	snap, err := s.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	dismissed, err := s.src.DismissedNotifications(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	list := Generate(snap, s.src.Now(), dismissed)
	if list == nil {
		list = []Notification{}
	}
	return list, nil
}

func (s *Service) Dismiss(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("dismiss notification: %w", core.ErrEmptyName)
	}
	return s.src.DismissNotification(ctx, id)
}
