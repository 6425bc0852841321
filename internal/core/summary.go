package core

// Derived views. None of these are persisted; they are recomputed from the
// collections on every read.

type Balance struct {
	Balance      Money `json:"balance"`
	TotalIncome  Money `json:"total_income"`
	TotalExpense Money `json:"total_expense"`
}

type MonthlyData struct {
	Income       Money         `json:"income"`
	Expense      Money         `json:"expense"`
	Difference   Money         `json:"difference"`
	Transactions []Transaction `json:"transactions"`
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name  string `json:"name"`
	Value Money  `json:"value"`
}

type BankBalance struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
}

type SavingsMonthlyData struct {
	SavingsDeposits    Money `json:"savings_deposits"`
	NonSavingsExpenses Money `json:"non_savings_expenses"`
	TotalExpenses      Money `json:"total_expenses"`
}

type SavingsGoalProgress struct {
	CollectedAmount Money `json:"collected_amount"`
	ProgressPercent int   `json:"progress_percent"`
	RemainingAmount Money `json:"remaining_amount"`
}

type DueDate struct {
	Date      Date   `json:"date"`
	PartyName string `json:"party_name"`
}

type DebtFreeProgress struct {
	TotalDebt       Money    `json:"total_debt"`
	PaidAmount      Money    `json:"paid_amount"`
	RemainingDebt   Money    `json:"remaining_debt"`
	ProgressPercent int      `json:"progress_percent"`
	NearestDueDate  *DueDate `json:"nearest_due_date,omitempty"`
	IsAchieved      bool     `json:"is_achieved"`
}
