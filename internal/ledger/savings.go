package ledger

import (
	"context"
	"fmt"
	"strings"

	"finly/internal/core"
	"finly/internal/log"
)

// CreateGoal stores a new active goal and its savings category.
func (l *Ledger) CreateGoal(ctx context.Context, in core.GoalInput) (core.SavingsGoal, error) {
	if err := in.Validate(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	var goal core.SavingsGoal
	err := l.mutate(ctx, func(ctx context.Context) error {
		var err error
		goal, err = l.createGoalLocked(ctx, strings.TrimSpace(in.Name), in.TargetAmount, in.BankID)
		return err
	})
	return goal, err
}

func (l *Ledger) createGoalLocked(ctx context.Context, name string, target core.Money, bankID string) (core.SavingsGoal, error) {
	goals, err := l.store.Goals.List(ctx)
	if err != nil {
		return core.SavingsGoal{}, err
	}
	if activeGoalNamed(goals, name, "") {
		return core.SavingsGoal{}, fmt.Errorf("create goal %q: %w", name, core.ErrDuplicateGoalName)
	}

	goal, err := l.store.Goals.Append(ctx, core.SavingsGoal{
		Name:         name,
		TargetAmount: target,
		IsActive:     true,
		CreatedAt:    l.now().UTC(),
		BankID:       bankID,
	})
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("create goal: %w", err)
	}
	if err := l.createSavingsCategoryLocked(ctx, goal); err != nil {
		return core.SavingsGoal{}, err
	}

	l.logger.InfoContext(ctx, "Savings goal created",
		log.NewFields().WithOperation(log.OpCreate).WithGoal(goal.ID, goal.Name).WithAmount(int64(target)).ToSlice()...)
	return goal, nil
}

// activeGoalNamed reports whether an active goal other than exceptID has name,
// compared case-insensitively.
func activeGoalNamed(goals []core.SavingsGoal, name, exceptID string) bool {
	for _, g := range goals {
		if g.IsActive && g.ID != exceptID && strings.EqualFold(g.Name, name) {
			return true
		}
	}
	return false
}

// UpdateGoal applies the non-nil fields of upd. A name change renames the
// savings category too; transactions recorded under the old name stop
// counting toward the goal.
func (l *Ledger) UpdateGoal(ctx context.Context, id string, upd core.GoalUpdate) (core.SavingsGoal, error) {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return core.SavingsGoal{}, fmt.Errorf("update goal: %w", core.ErrEmptyName)
		}
		upd.Name = &trimmed
	}
	if upd.TargetAmount != nil {
		if err := upd.TargetAmount.Validate(); err != nil {
			return core.SavingsGoal{}, fmt.Errorf("update goal: %w", err)
		}
	}
	var goal core.SavingsGoal
	err := l.mutate(ctx, func(ctx context.Context) error {
		var err error
		goal, err = l.updateGoalLocked(ctx, id, upd)
		return err
	})
	return goal, err
}

func (l *Ledger) updateGoalLocked(ctx context.Context, id string, upd core.GoalUpdate) (core.SavingsGoal, error) {
	var (
		updated core.SavingsGoal
		renamed bool
	)
	err := l.store.Goals.Update(ctx, func(goals []core.SavingsGoal) ([]core.SavingsGoal, error) {
		idx := -1
		for i, g := range goals {
			if g.ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("update goal %s: %w", id, core.ErrGoalNotFound)
		}

		g := goals[idx]
		if upd.Name != nil && *upd.Name != g.Name {
			g.Name = *upd.Name
			renamed = true
		}
		if upd.TargetAmount != nil {
			g.TargetAmount = *upd.TargetAmount
		}
		if upd.IsActive != nil {
			g.IsActive = *upd.IsActive
		}
		if upd.BankID != nil {
			g.BankID = *upd.BankID
		}
		if g.IsActive && (renamed || upd.IsActive != nil) && activeGoalNamed(goals, g.Name, g.ID) {
			return nil, fmt.Errorf("update goal %q: %w", g.Name, core.ErrDuplicateGoalName)
		}
		goals[idx] = g
		updated = g
		return goals, nil
	})
	if err != nil {
		return core.SavingsGoal{}, err
	}

	if renamed {
		if err := l.renameSavingsCategoryLocked(ctx, id, updated.Name); err != nil {
			return core.SavingsGoal{}, err
		}
	}
	l.logger.InfoContext(ctx, "Savings goal updated",
		log.NewFields().WithOperation(log.OpUpdate).WithGoal(updated.ID, updated.Name).ToSlice()...)
	return updated, nil
}

// DeactivateGoal soft-deletes the goal and its savings category.
func (l *Ledger) DeactivateGoal(ctx context.Context, id string) error {
	return l.mutate(ctx, func(ctx context.Context) error {
		err := l.store.Goals.Update(ctx, func(goals []core.SavingsGoal) ([]core.SavingsGoal, error) {
			for i := range goals {
				if goals[i].ID == id {
					goals[i].IsActive = false
					return goals, nil
				}
			}
			return nil, fmt.Errorf("deactivate goal %s: %w", id, core.ErrGoalNotFound)
		})
		if err != nil {
			return err
		}
		if err := l.deactivateSavingsCategoryLocked(ctx, id); err != nil {
			return err
		}
		l.logger.InfoContext(ctx, "Savings goal deactivated", log.FieldGoalID, id, log.FieldOperation, log.OpDeactivate)
		return nil
	})
}

func (l *Ledger) Goals(ctx context.Context) ([]core.SavingsGoal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Goals.List(ctx)
}

func (l *Ledger) ActiveGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	goals, err := l.Goals(ctx)
	if err != nil {
		return nil, err
	}
	return activeGoals(goals), nil
}

func activeGoals(goals []core.SavingsGoal) []core.SavingsGoal {
	out := make([]core.SavingsGoal, 0, len(goals))
	for _, g := range goals {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out
}

func findGoal(goals []core.SavingsGoal, id string) (core.SavingsGoal, bool) {
	for _, g := range goals {
		if g.ID == id {
			return g, true
		}
	}
	return core.SavingsGoal{}, false
}

// GoalProgress computes deposits minus withdrawals for the goal.
func (l *Ledger) GoalProgress(ctx context.Context, goalID string) (core.SavingsGoalProgress, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return core.SavingsGoalProgress{}, err
	}
	goal, ok := findGoal(snap.Goals, goalID)
	if !ok {
		return core.SavingsGoalProgress{}, fmt.Errorf("goal progress %s: %w", goalID, core.ErrGoalNotFound)
	}
	progress, _ := snap.GoalProgress(goal)
	return progress, nil
}

// GoalProgress is zero-valued, with ok false, when the goal has no savings category.
func (s Snapshot) GoalProgress(goal core.SavingsGoal) (progress core.SavingsGoalProgress, ok bool) {
	cat, ok := savingsCategoryOf(s.Categories, goal.ID)
	if !ok {
		return core.SavingsGoalProgress{}, false
	}
	withdrawalName := WithdrawalCategoryName(cat.Name)

	var deposits, withdrawals core.Money
	for _, tx := range s.Transactions {
		switch {
		case tx.Type == core.Expense && tx.Category == cat.Name:
			deposits += tx.Amount
		case tx.Type == core.Income && tx.Category == withdrawalName:
			withdrawals += tx.Amount
		}
	}

	collected := deposits - withdrawals
	remaining := goal.TargetAmount - collected
	if remaining < 0 {
		remaining = 0
	}
	return core.SavingsGoalProgress{
		CollectedAmount: collected,
		ProgressPercent: core.Percent(collected, goal.TargetAmount),
		RemainingAmount: remaining,
	}, true
}

// GoalView pairs a goal with its current progress.
type GoalView struct {
	core.SavingsGoal
	Progress core.SavingsGoalProgress `json:"progress"`
}

// GoalViews lists every goal, active first, with progress attached.
func (l *Ledger) GoalViews(ctx context.Context) ([]GoalView, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]GoalView, 0, len(snap.Goals))
	for _, active := range []bool{true, false} {
		for _, g := range snap.Goals {
			if g.IsActive != active {
				continue
			}
			p, _ := snap.GoalProgress(g)
			out = append(out, GoalView{SavingsGoal: g, Progress: p})
		}
	}
	return out, nil
}

// TotalSavings sums collected amounts over active goals.
func (l *Ledger) TotalSavings(ctx context.Context) (core.Money, error) {
	snap, err := l.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return snap.TotalSavings(), nil
}

func (s Snapshot) TotalSavings() core.Money {
	var total core.Money
	for _, g := range activeGoals(s.Goals) {
		p, _ := s.GoalProgress(g)
		total += p.CollectedAmount
	}
	return total
}

// Deposit records an expense under the goal's savings category, dated today.
func (l *Ledger) Deposit(ctx context.Context, goalID string, amount core.Money, notes string) (core.Transaction, error) {
	var tx core.Transaction
	err := l.mutate(ctx, func(ctx context.Context) error {
		goal, cat, err := l.goalWithCategoryLocked(ctx, goalID)
		if err != nil {
			return fmt.Errorf("deposit: %w", err)
		}
		if notes == "" {
			notes = "Setoran " + goal.Name
		}
		tx, err = l.appendTransactionLocked(ctx, core.Transaction{
			Date:     l.Today(),
			Type:     core.Expense,
			Category: cat.Name,
			Amount:   amount,
			Notes:    notes,
		})
		return err
	})
	return tx, err
}

// Withdraw records income under the goal's withdrawal category, creating the
// category on first use.
func (l *Ledger) Withdraw(ctx context.Context, goalID string, amount core.Money, notes string) (core.Transaction, error) {
	var tx core.Transaction
	err := l.mutate(ctx, func(ctx context.Context) error {
		goals, err := l.store.Goals.List(ctx)
		if err != nil {
			return err
		}
		goal, ok := findGoal(goals, goalID)
		if !ok {
			return fmt.Errorf("withdraw %s: %w", goalID, core.ErrGoalNotFound)
		}
		category, err := l.ensureWithdrawalCategoryLocked(ctx, goal)
		if err != nil {
			return err
		}
		if notes == "" {
			notes = "Penarikan " + goal.Name
		}
		tx, err = l.appendTransactionLocked(ctx, core.Transaction{
			Date:     l.Today(),
			Type:     core.Income,
			Category: category,
			Amount:   amount,
			Notes:    notes,
		})
		return err
	})
	return tx, err
}

func (l *Ledger) goalWithCategoryLocked(ctx context.Context, goalID string) (core.SavingsGoal, core.Category, error) {
	goals, err := l.store.Goals.List(ctx)
	if err != nil {
		return core.SavingsGoal{}, core.Category{}, err
	}
	goal, ok := findGoal(goals, goalID)
	if !ok {
		return core.SavingsGoal{}, core.Category{}, fmt.Errorf("goal %s: %w", goalID, core.ErrGoalNotFound)
	}
	cats, err := l.store.Categories.List(ctx)
	if err != nil {
		return core.SavingsGoal{}, core.Category{}, err
	}
	cat, ok := savingsCategoryOf(cats, goalID)
	if !ok {
		return core.SavingsGoal{}, core.Category{}, fmt.Errorf("goal %s: %w", goalID, core.ErrCategoryNotFound)
	}
	return goal, cat, nil
}
