// Package sheets defines the spreadsheet layout monthly summaries are
// exported to. Each year has its own "<year> <base>" sheet; month m lives on
// row m+1 under a fixed header row.
package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"finfamily/internal/core"
	"finfamily/internal/ports"
)

// DefaultSheetBase is the sheet name used when none is configured.
const DefaultSheetBase = "Summary"

// Header is the first row of every summary sheet.
var Header = []any{
	"Mês", "Receitas", "Despesas", "Saldo",
	"Receitas realizadas", "Despesas realizadas", "Saldo realizado",
	"Maior categoria", "Valor maior categoria",
}

// Columns is the A1 column span of Header.
const Columns = "A:I"

// Exporter writes one month summary row.
type Exporter = ports.SummaryExporter

// RowNumber returns the 1-based sheet row holding month (1-12).
func RowNumber(month int) int { return month + 1 }

// RowRange returns the A1 range of the month row on sheet.
func RowRange(sheet string, month int) string {
	n := RowNumber(month)
	return fmt.Sprintf("%s!A%d:I%d", sheet, n, n)
}

// SheetName returns "<year> <base>" unless base already starts with a
// four-digit year.
func SheetName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultSheetBase
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}

// Row renders the month summary in Header order. Amounts are written as
// plain decimal strings with two places so sheets parse them as numbers.
func Row(s core.FinancialSummary) []any {
	topName, topValue := "", ""
	if len(s.ByCategory) > 0 {
		topName = s.ByCategory[0].Name
		topValue = s.ByCategory[0].Value.StringFixed(2)
	}
	return []any{
		fmt.Sprintf("%04d-%02d", s.Year, s.Month),
		s.TotalIncome.StringFixed(2),
		s.TotalExpense.StringFixed(2),
		s.Balance.StringFixed(2),
		s.RealizedIncome.StringFixed(2),
		s.RealizedExpense.StringFixed(2),
		s.RealizedBalance.StringFixed(2),
		topName,
		topValue,
	}
}

// ValidMonth reports whether the summary can be placed on a sheet row.
func ValidMonth(s core.FinancialSummary) error {
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("%w: month %d", core.ErrInvalidMonth, s.Month)
	}
	if s.Year < 1 {
		return fmt.Errorf("%w: year %d", core.ErrInvalidMonth, s.Year)
	}
	return nil
}
