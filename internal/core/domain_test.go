package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-09"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d != NewDate(2025, 3, 9) {
		t.Fatalf("got %v", d)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-09"` {
		t.Fatalf("got %s", b)
	}

	// ISO timestamps, as written for goal creation dates, reduce to their date.
	if err := json.Unmarshal([]byte(`"2025-03-09T17:04:05Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d != NewDate(2025, 3, 9) {
		t.Fatalf("got %v", d)
	}

	if err := json.Unmarshal([]byte(`"09/03/2025"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	got := DateOf(time.Date(2025, 6, 1, 23, 30, 0, 0, loc))
	if got != NewDate(2025, 6, 1) {
		t.Fatalf("got %v", got)
	}
	if got.AddDays(3) != NewDate(2025, 6, 4) {
		t.Fatalf("AddDays: got %v", got.AddDays(3))
	}
	if got.MonthKey() != "2025-06" {
		t.Fatalf("MonthKey: got %s", got.MonthKey())
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:     NewDate(2025, 1, 1),
		Type:     Expense,
		Category: "Makan",
		Amount:   25000,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		{"blank category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = -5 }, ErrInvalidAmount},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx := good
			tc.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsValidation(tx.Validate()) {
				t.Fatalf("expected validation classification")
			}
		})
	}
}

func TestDebtInputValidate(t *testing.T) {
	good := DebtInput{
		PartyName: "Toko A",
		Type:      Debt,
		Amount:    1_000_000,
		LoanDate:  NewDate(2025, 1, 1),
		DueDate:   NewDate(2025, 2, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bad := good
	bad.PartyName = ""
	if err := bad.Validate(); !errors.Is(err, ErrEmptyPartyName) {
		t.Fatalf("expected ErrEmptyPartyName, got %v", err)
	}
	bad = good
	bad.Type = "gift"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	bad = good
	bad.DueDate = Date{}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestGoalInputValidate(t *testing.T) {
	if err := (GoalInput{Name: "Motor", TargetAmount: 10_000_000}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (GoalInput{Name: " ", TargetAmount: 1}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := (GoalInput{Name: "Motor"}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDebtRemaining(t *testing.T) {
	d := DebtRecord{Amount: 1_000_000, PaidAmount: 1_200_000}
	if d.Remaining() != -200_000 {
		t.Fatalf("overpayment should go negative, got %d", d.Remaining())
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsNotFound(ErrGoalNotFound) || !IsNotFound(ErrDebtNotFound) {
		t.Fatal("expected not-found classification")
	}
	if IsNotFound(ErrDuplicateGoalName) || IsValidation(ErrDuplicateGoalName) {
		t.Fatal("duplicate name is a conflict")
	}
}
