package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"finfamily/internal/core"
)

func TestMemoryStoreExportAndRow(t *testing.T) {
	s := New("")
	sum := core.FinancialSummary{
		Year: 2024, Month: 3,
		TotalIncome:  decimal.NewFromInt(100),
		TotalExpense: decimal.NewFromInt(40),
		Balance:      decimal.NewFromInt(60),
		ByCategory:   []core.CategoryTotal{{Name: "Moradia", Value: decimal.NewFromInt(40)}},
	}

	if err := s.ExportSummary(context.Background(), sum); err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	row, ok := s.Row(2024, 3)
	if !ok {
		t.Fatal("row 2024-03 should exist")
	}
	if row[0] != "2024-03" || row[1] != "100.00" || row[3] != "60.00" || row[7] != "Moradia" {
		t.Fatalf("unexpected row: %v", row)
	}

	// Rewriting the same month replaces the row.
	sum.TotalIncome = decimal.NewFromInt(200)
	if err := s.ExportSummary(context.Background(), sum); err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	row, _ = s.Row(2024, 3)
	if row[1] != "200.00" || s.Exports() != 2 {
		t.Fatalf("unexpected rewrite: row=%v exports=%d", row, s.Exports())
	}
	if _, ok := s.Row(2024, 4); ok {
		t.Fatal("row 2024-04 should not exist")
	}
}

func TestMemoryStoreRejectsInvalidMonth(t *testing.T) {
	s := New("Summary")
	err := s.ExportSummary(context.Background(), core.FinancialSummary{Year: 2024, Month: 13})
	if !errors.Is(err, core.ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestMemoryStoreFailWith(t *testing.T) {
	s := New("Summary")
	boom := errors.New("quota exceeded")
	s.FailWith(boom)
	if err := s.ExportSummary(context.Background(), core.FinancialSummary{Year: 2024, Month: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected configured failure, got %v", err)
	}
	s.FailWith(nil)
	if err := s.ExportSummary(context.Background(), core.FinancialSummary{Year: 2024, Month: 1}); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if s.Exports() != 1 {
		t.Fatalf("exports = %d, want 1", s.Exports())
	}
}
