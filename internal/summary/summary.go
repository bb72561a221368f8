// Package summary computes the month-scoped FinancialSummary of a ledger.
//
// Summarize is a pure function of its three inputs. Month membership is
// decided on the literal date components, so a transaction dated on the
// first or last day of a month never moves into a neighbouring month.
package summary

import (
	"slices"

	"github.com/shopspring/decimal"

	"finfamily/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Summarize aggregates the transactions that fall in month.
func Summarize(transactions []core.Transaction, categories []core.Category, month Month) core.FinancialSummary {
	s := core.FinancialSummary{
		Year:            month.Year,
		Month:           int(month.Month),
		TotalIncome:     decimal.Zero,
		TotalExpense:    decimal.Zero,
		RealizedIncome:  decimal.Zero,
		RealizedExpense: decimal.Zero,
		ByCategory:      []core.CategoryTotal{},
		Transactions:    []core.Transaction{},
	}

	var order []string
	byID := make(map[string]decimal.Decimal)

	for _, t := range transactions {
		if !month.Contains(t.Date) {
			continue
		}
		s.Transactions = append(s.Transactions, t)

		switch t.Type {
		case core.Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			if t.Status == core.Completed {
				s.RealizedIncome = s.RealizedIncome.Add(t.Amount)
			}
		case core.Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			if t.Status == core.Completed {
				s.RealizedExpense = s.RealizedExpense.Add(t.Amount)
			}
			if _, seen := byID[t.CategoryID]; !seen {
				order = append(order, t.CategoryID)
				byID[t.CategoryID] = decimal.Zero
			}
			byID[t.CategoryID] = byID[t.CategoryID].Add(t.Amount)
		}
	}

	s.Balance = s.TotalIncome.Sub(s.TotalExpense)
	s.RealizedBalance = s.RealizedIncome.Sub(s.RealizedExpense)
	s.PendingIncome = s.TotalIncome.Sub(s.RealizedIncome)
	s.PendingExpense = s.TotalExpense.Sub(s.RealizedExpense)
	s.IncomeProgress = progress(s.RealizedIncome, s.TotalIncome)
	s.ExpenseProgress = progress(s.RealizedExpense, s.TotalExpense)

	for _, id := range order {
		name, color := core.UnknownCategoryName, core.UnknownCategoryColor
		if c, ok := core.FindCategory(categories, id); ok {
			name, color = c.Name, c.Color
		}
		s.ByCategory = append(s.ByCategory, core.CategoryTotal{
			CategoryID: id,
			Name:       name,
			Value:      byID[id],
			Color:      color,
		})
	}
	slices.SortStableFunc(s.ByCategory, func(a, b core.CategoryTotal) int {
		return b.Value.Cmp(a.Value)
	})
	slices.SortStableFunc(s.Transactions, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return s
}

func progress(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(total, 2)
}
