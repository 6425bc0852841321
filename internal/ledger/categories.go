package ledger

import (
	"context"
	"fmt"
	"strings"

	"finly/internal/core"
	"finly/internal/log"
)

const (
	savingsPrefix    = "Impian: "
	withdrawalPrefix = "Penarikan Impian: "
)

// SavingsCategoryName is the category a goal's deposits are recorded under.
func SavingsCategoryName(goalName string) string {
	return savingsPrefix + goalName
}

// WithdrawalCategoryName derives the withdrawal category from a savings
// category name. Only the first "Impian: " is removed, wherever it appears.
func WithdrawalCategoryName(savingsCategory string) string {
	return withdrawalPrefix + strings.Replace(savingsCategory, savingsPrefix, "", 1)
}

func (l *Ledger) Categories(ctx context.Context) ([]core.Category, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Categories.List(ctx)
}

// ActiveCategories lists the categories offered for new transactions.
func (l *Ledger) ActiveCategories(ctx context.Context) ([]core.Category, error) {
	cats, err := l.Categories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(cats))
	for _, c := range cats {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func savingsCategoryOf(cats []core.Category, goalID string) (core.Category, bool) {
	for _, c := range cats {
		if c.IsSavings && c.SavingsGoalID == goalID {
			return c, true
		}
	}
	return core.Category{}, false
}

func categoryNamed(cats []core.Category, name string) (core.Category, bool) {
	for _, c := range cats {
		if c.Name == name {
			return c, true
		}
	}
	return core.Category{}, false
}

func (l *Ledger) createSavingsCategoryLocked(ctx context.Context, goal core.SavingsGoal) error {
	cat := core.Category{
		ID:            "savings_" + goal.ID,
		Name:          SavingsCategoryName(goal.Name),
		Type:          core.ExpenseCategory,
		IsSavings:     true,
		SavingsGoalID: goal.ID,
		IsActive:      true,
	}
	if err := l.store.Categories.Insert(ctx, cat); err != nil {
		return fmt.Errorf("create savings category: %w", err)
	}
	return nil
}

// renameSavingsCategoryLocked is a no-op when the goal has no savings category.
func (l *Ledger) renameSavingsCategoryLocked(ctx context.Context, goalID, newName string) error {
	return l.editSavingsCategoryLocked(ctx, goalID, func(c *core.Category) {
		c.Name = SavingsCategoryName(newName)
	})
}

// deactivateSavingsCategoryLocked is a no-op when the goal has no savings category.
// Transactions recorded under the category are left alone.
func (l *Ledger) deactivateSavingsCategoryLocked(ctx context.Context, goalID string) error {
	return l.editSavingsCategoryLocked(ctx, goalID, func(c *core.Category) {
		c.IsActive = false
	})
}

func (l *Ledger) editSavingsCategoryLocked(ctx context.Context, goalID string, edit func(*core.Category)) error {
	return l.store.Categories.Update(ctx, func(cats []core.Category) ([]core.Category, error) {
		for i := range cats {
			if cats[i].IsSavings && cats[i].SavingsGoalID == goalID {
				edit(&cats[i])
				return cats, nil
			}
		}
		l.logger.DebugContext(ctx, "No savings category to edit", log.FieldGoalID, goalID)
		return cats, nil
	})
}

// ensureWithdrawalCategoryLocked creates the goal's withdrawal category on first use.
func (l *Ledger) ensureWithdrawalCategoryLocked(ctx context.Context, goal core.SavingsGoal) (string, error) {
	name := withdrawalPrefix + goal.Name
	cats, err := l.store.Categories.List(ctx)
	if err != nil {
		return "", err
	}
	if _, ok := categoryNamed(cats, name); ok {
		return name, nil
	}

	id := "withdrawal_" + goal.ID
	for _, c := range cats {
		if c.ID == id {
			// A rename left the old withdrawal category behind under this id.
			id = "withdrawal_" + goal.ID + "_" + l.store.NewID()
			break
		}
	}
	cat := core.Category{
		ID:       id,
		Name:     name,
		Type:     core.IncomeCategory,
		IsActive: true,
	}
	if err := l.store.Categories.Insert(ctx, cat); err != nil {
		return "", fmt.Errorf("create withdrawal category: %w", err)
	}
	l.logger.InfoContext(ctx, "Withdrawal category created", log.FieldGoalID, goal.ID, log.FieldCategory, name)
	return name, nil
}
