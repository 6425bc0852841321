package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"finly/internal/core"
	"finly/internal/log"
)

// DebtFreeGoalName is the goal kept in step with outstanding debt.
const DebtFreeGoalName = "Bebas Hutang"

// UpcomingWindowDays is how far ahead UpcomingDueDates looks, inclusive.
const UpcomingWindowDays = 3

// DebtPaymentCategory is the category of transactions written by PayDebt.
const DebtPaymentCategory = "Pembayaran Hutang"

// SaveDebt stores a new active record with nothing paid. Recording a debt
// (not a loan) creates or retargets the debt-free goal.
func (l *Ledger) SaveDebt(ctx context.Context, in core.DebtInput) (core.DebtRecord, error) {
	if err := in.Validate(); err != nil {
		return core.DebtRecord{}, fmt.Errorf("save debt: %w", err)
	}
	var saved core.DebtRecord
	err := l.mutate(ctx, func(ctx context.Context) error {
		var err error
		saved, err = l.store.Debts.Append(ctx, core.DebtRecord{
			PartyName:  strings.TrimSpace(in.PartyName),
			Type:       in.Type,
			Amount:     in.Amount,
			LoanDate:   in.LoanDate,
			DueDate:    in.DueDate,
			IsActive:   true,
			Notes:      in.Notes,
			BankID:     in.BankID,
			PaidAmount: 0,
		})
		if err != nil {
			return fmt.Errorf("save debt: %w", err)
		}
		l.logger.InfoContext(ctx, "Debt saved",
			log.NewFields().WithOperation(log.OpCreate).WithDebt(saved.ID, saved.PartyName).WithAmount(int64(saved.Amount)).ToSlice()...)

		if saved.Type == core.Debt {
			return l.syncDebtFreeGoalLocked(ctx)
		}
		return nil
	})
	return saved, err
}

// UpdateDebtPayment adds amount to what has been paid. The record closes
// once paid reaches the amount and never reopens; overpayment is kept.
func (l *Ledger) UpdateDebtPayment(ctx context.Context, debtID string, amount core.Money) (core.DebtRecord, error) {
	var updated core.DebtRecord
	err := l.mutate(ctx, func(ctx context.Context) error {
		var err error
		updated, err = l.applyPaymentLocked(ctx, debtID, amount)
		return err
	})
	return updated, err
}

// PayDebt records a debt_payment transaction and applies it to the record
// as one operation.
func (l *Ledger) PayDebt(ctx context.Context, debtID string, amount core.Money, bankID string) (core.DebtRecord, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.DebtRecord{}, core.Transaction{}, fmt.Errorf("pay debt: %w", err)
	}
	var (
		updated core.DebtRecord
		tx      core.Transaction
	)
	err := l.mutate(ctx, func(ctx context.Context) error {
		debt, ok, err := l.store.Debts.Find(ctx, debtID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("pay debt %s: %w", debtID, core.ErrDebtNotFound)
		}
		due := debt.DueDate
		tx, err = l.appendTransactionLocked(ctx, core.Transaction{
			Date:      l.Today(),
			Type:      core.DebtPayment,
			Category:  DebtPaymentCategory,
			Amount:    amount,
			Notes:     "Pembayaran " + debt.PartyName,
			BankID:    bankID,
			PartyName: debt.PartyName,
			DebtType:  debt.Type,
			DueDate:   &due,
			DebtID:    debt.ID,
		})
		if err != nil {
			return err
		}
		updated, err = l.applyPaymentLocked(ctx, debtID, amount)
		return err
	})
	return updated, tx, err
}

func (l *Ledger) applyPaymentLocked(ctx context.Context, debtID string, amount core.Money) (core.DebtRecord, error) {
	var updated core.DebtRecord
	err := l.store.Debts.Update(ctx, func(debts []core.DebtRecord) ([]core.DebtRecord, error) {
		for i := range debts {
			if debts[i].ID != debtID {
				continue
			}
			debts[i].PaidAmount += amount
			if debts[i].PaidAmount >= debts[i].Amount {
				debts[i].IsActive = false
			}
			updated = debts[i]
			return debts, nil
		}
		return nil, fmt.Errorf("debt payment %s: %w", debtID, core.ErrDebtNotFound)
	})
	if err != nil {
		return core.DebtRecord{}, err
	}
	l.logger.InfoContext(ctx, "Debt payment applied",
		log.NewFields().WithOperation(log.OpPayment).WithDebt(updated.ID, updated.PartyName).WithAmount(int64(amount)).ToSlice()...)

	if err := l.markDebtFreeGoalLocked(ctx); err != nil {
		return core.DebtRecord{}, err
	}
	return updated, nil
}

func (l *Ledger) Debts(ctx context.Context) ([]core.DebtRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Debts.List(ctx)
}

// TotalActiveDebt sums what is still owed on active debts. Loans are excluded.
func (l *Ledger) TotalActiveDebt(ctx context.Context) (core.Money, error) {
	debts, err := l.Debts(ctx)
	if err != nil {
		return 0, err
	}
	return totalActiveDebt(debts), nil
}

func totalActiveDebt(debts []core.DebtRecord) core.Money {
	var total core.Money
	for _, d := range debts {
		if d.Type == core.Debt && d.IsActive {
			total += d.Remaining()
		}
	}
	return total
}

// TotalDebtPayments sums what has been paid on every debt, active or not.
func (l *Ledger) TotalDebtPayments(ctx context.Context) (core.Money, error) {
	debts, err := l.Debts(ctx)
	if err != nil {
		return 0, err
	}
	var total core.Money
	for _, d := range debts {
		if d.Type == core.Debt {
			total += d.PaidAmount
		}
	}
	return total, nil
}

// UpcomingDueDates lists active records due between today and
// UpcomingWindowDays from now, inclusive, soonest first.
func (l *Ledger) UpcomingDueDates(ctx context.Context) ([]core.DebtRecord, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.UpcomingDueDates(), nil
}

func (s Snapshot) UpcomingDueDates() []core.DebtRecord {
	limit := s.Today.AddDays(UpcomingWindowDays)
	var out []core.DebtRecord
	for _, d := range s.Debts {
		if d.IsActive && !d.DueDate.Before(s.Today) && !d.DueDate.After(limit) {
			out = append(out, d)
		}
	}
	sortByDue(out)
	return out
}

// OverdueDebts lists active records whose due date is before today.
func (l *Ledger) OverdueDebts(ctx context.Context) ([]core.DebtRecord, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.OverdueDebts(), nil
}

func (s Snapshot) OverdueDebts() []core.DebtRecord {
	var out []core.DebtRecord
	for _, d := range s.Debts {
		if d.IsActive && d.DueDate.Before(s.Today) {
			out = append(out, d)
		}
	}
	sortByDue(out)
	return out
}

func sortByDue(debts []core.DebtRecord) {
	sort.SliceStable(debts, func(i, j int) bool {
		return debts[i].DueDate.Before(debts[j].DueDate)
	})
}

// DebtFreeProgress summarizes every debt-type record, paid off or not.
func (l *Ledger) DebtFreeProgress(ctx context.Context) (core.DebtFreeProgress, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return core.DebtFreeProgress{}, err
	}
	return snap.DebtFreeProgress(), nil
}

func (s Snapshot) DebtFreeProgress() core.DebtFreeProgress {
	var (
		total, paid core.Money
		active      []core.DebtRecord
	)
	for _, d := range s.Debts {
		if d.Type != core.Debt {
			continue
		}
		total += d.Amount
		paid += d.PaidAmount
		if d.IsActive {
			active = append(active, d)
		}
	}
	remaining := total - paid
	if remaining < 0 {
		remaining = 0
	}

	p := core.DebtFreeProgress{
		TotalDebt:       total,
		PaidAmount:      paid,
		RemainingDebt:   remaining,
		ProgressPercent: core.Percent(paid, total),
		IsAchieved:      remaining == 0 && total > 0,
	}
	if len(active) > 0 {
		sortByDue(active)
		p.NearestDueDate = &core.DueDate{Date: active[0].DueDate, PartyName: active[0].PartyName}
	}
	return p
}

func findGoalNamed(goals []core.SavingsGoal, name string) (core.SavingsGoal, bool) {
	for _, g := range goals {
		if g.Name == name {
			return g, true
		}
	}
	return core.SavingsGoal{}, false
}

// syncDebtFreeGoalLocked creates the debt-free goal when debt first appears
// and retargets it afterwards. An existing inactive goal is retargeted but
// stays inactive.
func (l *Ledger) syncDebtFreeGoalLocked(ctx context.Context) error {
	goals, err := l.store.Goals.List(ctx)
	if err != nil {
		return err
	}
	debts, err := l.store.Debts.List(ctx)
	if err != nil {
		return err
	}
	total := totalActiveDebt(debts)
	if total <= 0 {
		return nil
	}

	goal, exists := findGoalNamed(goals, DebtFreeGoalName)
	if !exists {
		_, err := l.createGoalLocked(ctx, DebtFreeGoalName, total, "")
		if errors.Is(err, core.ErrDuplicateGoalName) {
			// A user goal with a differently cased name holds the slot.
			l.logger.WarnContext(ctx, "Debt-free goal not created", log.FieldError, err.Error())
			return nil
		}
		return err
	}
	_, err = l.updateGoalLocked(ctx, goal.ID, core.GoalUpdate{TargetAmount: &total})
	return err
}

// markDebtFreeGoalLocked deactivates the debt-free goal once nothing is owed.
// It goes through the plain update path, so the savings category stays as is.
func (l *Ledger) markDebtFreeGoalLocked(ctx context.Context) error {
	goals, err := l.store.Goals.List(ctx)
	if err != nil {
		return err
	}
	goal, exists := findGoalNamed(goals, DebtFreeGoalName)
	if !exists {
		return nil
	}
	debts, err := l.store.Debts.List(ctx)
	if err != nil {
		return err
	}
	if totalActiveDebt(debts) != 0 {
		return nil
	}
	inactive := false
	_, err = l.updateGoalLocked(ctx, goal.ID, core.GoalUpdate{IsActive: &inactive})
	if err == nil {
		l.logger.InfoContext(ctx, "Debt-free goal achieved", log.FieldGoalID, goal.ID)
	}
	return err
}

// TotalActiveDebt is the snapshot form of Ledger.TotalActiveDebt.
func (s Snapshot) TotalActiveDebt() core.Money {
	return totalActiveDebt(s.Debts)
}
