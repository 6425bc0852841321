package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	Income      TransactionType = "income"
	Expense     TransactionType = "expense"
	DebtTx      TransactionType = "debt"
	LoanTx      TransactionType = "loan"
	DebtPayment TransactionType = "debt_payment"
)

const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

const (
	// Debt is money the user owes to someone.
	Debt DebtType = "debt"
	// Loan is money someone owes to the user.
	Loan DebtType = "loan"
)

// DateLayout is the persisted form of a Date.
const DateLayout = "2006-01-02"

type (
	TransactionType string
	CategoryType    string
	DebtType        string

	// Date is a calendar date without time of day, kept at UTC midnight.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID        string          `json:"id"`
		Date      Date            `json:"date"`
		Type      TransactionType `json:"type"`
		Category  string          `json:"category"` // joined by name against Category.Name
		Amount    Money           `json:"amount"`
		Notes     string          `json:"notes,omitempty"`
		BankID    string          `json:"bank_id,omitempty"`
		PartyName string          `json:"party_name,omitempty"`
		DebtType  DebtType        `json:"debt_type,omitempty"`
		LoanDate  *Date           `json:"loan_date,omitempty"`
		DueDate   *Date           `json:"due_date,omitempty"`
		DebtID    string          `json:"debt_id,omitempty"`
	}

	Category struct {
		ID            string       `json:"id"`
		Name          string       `json:"name"`
		Type          CategoryType `json:"type"`
		IsSavings     bool         `json:"is_savings,omitempty"`
		SavingsGoalID string       `json:"savings_goal_id,omitempty"`
		IsActive      bool         `json:"is_active"`
	}

	SavingsGoal struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		TargetAmount Money     `json:"target_amount"`
		IsActive     bool      `json:"is_active"`
		CreatedAt    time.Time `json:"created_at"`
		BankID       string    `json:"bank_id,omitempty"`
	}

	DebtRecord struct {
		ID         string   `json:"id"`
		PartyName  string   `json:"party_name"`
		Type       DebtType `json:"type"`
		Amount     Money    `json:"amount"`
		LoanDate   Date     `json:"loan_date"`
		DueDate    Date     `json:"due_date"`
		IsActive   bool     `json:"is_active"`
		Notes      string   `json:"notes,omitempty"`
		BankID     string   `json:"bank_id,omitempty"`
		PaidAmount Money    `json:"paid_amount"`
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM bucket of the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD and full RFC 3339 timestamps.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, DebtTx, LoanTx, DebtPayment:
		return true
	}
	return false
}

func (t DebtType) Valid() bool {
	return t == Debt || t == Loan
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t.Type)
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// Remaining is the unpaid part of the record; it goes negative on overpayment.
func (d DebtRecord) Remaining() Money {
	return d.Amount - d.PaidAmount
}

// DebtInput carries the user-supplied fields of a new debt or loan.
type DebtInput struct {
	PartyName string   `json:"party_name"`
	Type      DebtType `json:"type"`
	Amount    Money    `json:"amount"`
	LoanDate  Date     `json:"loan_date"`
	DueDate   Date     `json:"due_date"`
	Notes     string   `json:"notes,omitempty"`
	BankID    string   `json:"bank_id,omitempty"`
}

func (in DebtInput) Validate() error {
	if strings.TrimSpace(in.PartyName) == "" {
		return ErrEmptyPartyName
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, in.Type)
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if err := in.LoanDate.Validate(); err != nil {
		return fmt.Errorf("loan date: %w", err)
	}
	if err := in.DueDate.Validate(); err != nil {
		return fmt.Errorf("due date: %w", err)
	}
	return nil
}

// GoalInput carries the user-supplied fields of a new savings goal.
type GoalInput struct {
	Name         string `json:"name"`
	TargetAmount Money  `json:"target_amount"`
	BankID       string `json:"bank_id,omitempty"`
}

func (in GoalInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	return in.TargetAmount.Validate()
}

// GoalUpdate is a partial update; nil fields are left unchanged.
type GoalUpdate struct {
	Name         *string `json:"name,omitempty"`
	TargetAmount *Money  `json:"target_amount,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
	BankID       *string `json:"bank_id,omitempty"`
}

func (t Transaction) RecordID() string { return t.ID }
func (c Category) RecordID() string    { return c.ID }
func (g SavingsGoal) RecordID() string { return g.ID }
func (d DebtRecord) RecordID() string  { return d.ID }
