package core

import "github.com/shopspring/decimal"

// UnknownCategoryName and UnknownCategoryColor label expense totals whose
// category no longer exists.
const (
	UnknownCategoryName  = "Unknown"
	UnknownCategoryColor = "#cbd5e1"
)

type CategoryTotal struct {
	CategoryID string          `json:"categoryId"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Color      string          `json:"color"`
}

// FinancialSummary is derived from the ledger for one month and never stored.
//
// Totals cover every transaction in the month; Realized totals only the
// COMPLETED ones.
type FinancialSummary struct {
	Year  int `json:"year"`
	Month int `json:"month"`

	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Balance      decimal.Decimal `json:"balance"`

	RealizedIncome  decimal.Decimal `json:"realizedIncome"`
	RealizedExpense decimal.Decimal `json:"realizedExpense"`
	RealizedBalance decimal.Decimal `json:"realizedBalance"`

	PendingIncome   decimal.Decimal `json:"pendingIncome"`
	PendingExpense  decimal.Decimal `json:"pendingExpense"`
	IncomeProgress  decimal.Decimal `json:"incomeProgress"`
	ExpenseProgress decimal.Decimal `json:"expenseProgress"`

	ByCategory   []CategoryTotal `json:"byCategory"`
	Transactions []Transaction   `json:"transactions"`
}
