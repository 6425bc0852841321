// Package health turns a ledger snapshot into a 0-100 financial health
// score with a label, a severity tier and suggestions.
//
// The score is rule based. Every weight and threshold is a named constant
// below so results are reproducible.
package health

import (
	"github.com/shopspring/decimal"

	"finly/internal/core"
	"finly/internal/ledger"
)

// Component weights; they add up to 100.
const (
	SavingsWeight = 30
	DebtWeight    = 25
	ExpenseWeight = 25
	GoalWeight    = 20
)

// Thresholds, in percent.
const (
	SavingsRatioGood = 20
	SavingsRatioFair = 10

	ExpenseRatioGood  = 50
	ExpenseRatioFair  = 70
	ExpenseRatioLoose = 90

	DebtToIncomeSafe = 30

	LowGoalProgress = 50
)

// Tier cut-offs on the final score.
const (
	TierGoodMin    = 80
	TierCautionMin = 60
)

type Tier string

const (
	Good     Tier = "good"
	Caution  Tier = "caution"
	Critical Tier = "critical"
)

const CriticalWarning = "🚨 Keuanganmu sedang kurang sehat. Fokus pada kurangi pengeluaran & lunasi hutang kecil dulu."

// NoDataMessage is shown when there is nothing to score yet.
const NoDataMessage = "💡 Belum ada data untuk menilai skor kesehatan finansialmu. Yuk mulai catat pengeluaran & pemasukan secara rutin!"

// Inputs are the aggregates the score is computed from.
type Inputs struct {
	TotalIncome        core.Money
	NonSavingsExpenses core.Money
	SavingsDeposits    core.Money
	ActiveDebt         core.Money
	HasOverdue         bool
	ActiveGoals        int
	AvgGoalProgress    int // percent, over active goals with a savings category
	TransactionCount   int
}

type Details struct {
	SavingsRatio   float64 `json:"savings_ratio"`
	DebtStatus     string  `json:"debt_status"`
	ExpenseControl string  `json:"expense_control"`
	GoalProgress   int     `json:"goal_progress"`
}

type Result struct {
	Available   bool     `json:"available"`
	Score       int      `json:"score"`
	Label       string   `json:"label"`
	Tier        Tier     `json:"tier"`
	Color       string   `json:"color"`
	Suggestions []string `json:"suggestions"`
	Warning     string   `json:"warning,omitempty"`
	Details     Details  `json:"details"`
	Message     string   `json:"message,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// ratio returns part/whole in percent; ok is false when whole is not positive.
func ratio(part, whole core.Money) (decimal.Decimal, bool) {
	if whole <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))), true
}

// Estimate scores in. With no transactions the result is unavailable.
func Estimate(in Inputs) Result {
	if in.TransactionCount == 0 {
		return Result{Available: false, Suggestions: []string{}, Message: NoDataMessage}
	}

	savingsPct, _ := ratio(in.SavingsDeposits, in.TotalIncome)
	savingsPts := savingsPoints(savingsPct)
	debtPts, debtStatus := debtPoints(in)
	expensePts, expenseControl := expensePoints(in)
	goalPts := int(decimal.NewFromInt(int64(in.AvgGoalProgress)).
		Mul(decimal.NewFromInt(GoalWeight)).
		Div(hundred).
		Round(0).
		IntPart())

	score := savingsPts + debtPts + expensePts + goalPts
	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	r := Result{
		Available: true,
		Score:     score,
		Details: Details{
			SavingsRatio:   savingsPct.Round(1).InexactFloat64(),
			DebtStatus:     debtStatus,
			ExpenseControl: expenseControl,
			GoalProgress:   in.AvgGoalProgress,
		},
	}
	switch {
	case score >= TierGoodMin:
		r.Tier, r.Label, r.Color = Good, "Sehat", "#16a34a"
	case score >= TierCautionMin:
		r.Tier, r.Label, r.Color = Caution, "Cukup Sehat", "#eab308"
	default:
		r.Tier, r.Label, r.Color = Critical, "Kurang Sehat", "#dc2626"
		r.Warning = CriticalWarning
	}
	r.Suggestions = suggestions(in, savingsPct)
	return r
}

func savingsPoints(pct decimal.Decimal) int {
	switch {
	case pct.GreaterThanOrEqual(decimal.NewFromInt(SavingsRatioGood)):
		return SavingsWeight
	case pct.GreaterThanOrEqual(decimal.NewFromInt(SavingsRatioFair)):
		return SavingsWeight * 2 / 3
	case pct.IsPositive():
		return SavingsWeight / 3
	}
	return 0
}

func debtPoints(in Inputs) (int, string) {
	if in.ActiveDebt <= 0 {
		return DebtWeight, "Tidak Ada Hutang"
	}
	if in.HasOverdue {
		return 0, "Ada Tunggakan"
	}
	if pct, ok := ratio(in.ActiveDebt, in.TotalIncome); ok && pct.LessThanOrEqual(decimal.NewFromInt(DebtToIncomeSafe)) {
		return DebtWeight * 3 / 5, "Terkendali"
	}
	return DebtWeight * 2 / 5, "Perlu Perhatian"
}

func expensePoints(in Inputs) (int, string) {
	pct, ok := ratio(in.NonSavingsExpenses, in.TotalIncome)
	if !ok {
		if in.NonSavingsExpenses > 0 {
			return 0, "Boros"
		}
		return ExpenseWeight, "Sangat Baik"
	}
	switch {
	case pct.LessThanOrEqual(decimal.NewFromInt(ExpenseRatioGood)):
		return ExpenseWeight, "Sangat Baik"
	case pct.LessThanOrEqual(decimal.NewFromInt(ExpenseRatioFair)):
		return ExpenseWeight * 18 / 25, "Baik"
	case pct.LessThanOrEqual(decimal.NewFromInt(ExpenseRatioLoose)):
		return ExpenseWeight * 2 / 5, "Cukup"
	}
	return 0, "Boros"
}

func suggestions(in Inputs, savingsPct decimal.Decimal) []string {
	var out []string
	if savingsPct.LessThan(decimal.NewFromInt(SavingsRatioFair)) {
		out = append(out, "Coba sisihkan minimal 10% pemasukan untuk tabungan impian.")
	}
	if in.HasOverdue && in.ActiveDebt > 0 {
		out = append(out, "Ada hutang yang lewat jatuh tempo. Prioritaskan pelunasannya.")
	} else if in.ActiveDebt > 0 {
		out = append(out, "Lunasi hutang secara bertahap, mulai dari yang terkecil.")
	}
	if pct, ok := ratio(in.NonSavingsExpenses, in.TotalIncome); (ok && pct.GreaterThan(decimal.NewFromInt(ExpenseRatioFair))) || (!ok && in.NonSavingsExpenses > 0) {
		out = append(out, "Pengeluaran sudah lebih dari 70% pemasukan. Kurangi belanja yang tidak penting.")
	}
	switch {
	case in.ActiveGoals == 0:
		out = append(out, "Buat impian pertamamu agar tabungan lebih terarah.")
	case in.AvgGoalProgress < LowGoalProgress:
		out = append(out, "Progress impian masih di bawah 50%. Rutin setor walau sedikit.")
	}
	if len(out) == 0 {
		out = append(out, "Keuanganmu sehat. Pertahankan kebiasaan baik ini!")
	}
	return out
}

// FromSnapshot gathers Inputs from a ledger snapshot.
func FromSnapshot(s ledger.Snapshot) Inputs {
	totals := s.SavingsTotals()
	in := Inputs{
		TotalIncome:        s.Balance().TotalIncome,
		NonSavingsExpenses: totals.NonSavingsExpenses,
		SavingsDeposits:    totals.SavingsDeposits,
		ActiveDebt:         s.TotalActiveDebt(),
		TransactionCount:   len(s.Transactions),
	}
	for _, d := range s.OverdueDebts() {
		if d.Type == core.Debt {
			in.HasOverdue = true
			break
		}
	}

	var sum, counted int
	for _, g := range s.Goals {
		if !g.IsActive {
			continue
		}
		in.ActiveGoals++
		if p, ok := s.GoalProgress(g); ok {
			sum += p.ProgressPercent
			counted++
		}
	}
	if counted > 0 {
		in.AvgGoalProgress = int(decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(counted))).Round(0).IntPart())
	}
	return in
}

// Compute scores the current state of s.
func Compute(s ledger.Snapshot) Result {
	return Estimate(FromSnapshot(s))
}
