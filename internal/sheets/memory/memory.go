// Package memory keeps exported summary rows in process. The worker uses it
// in dry-run mode and tests use it to inspect what would have been written.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finfamily/internal/core"
	"finfamily/internal/sheets"
)

type Store struct {
	mu      sync.Mutex
	base    string
	sheets  map[string]map[int][]any
	exports int
	failErr error
}

func New(base string) *Store {
	return &Store{base: base, sheets: make(map[string]map[int][]any)}
}

var _ sheets.Exporter = (*Store)(nil)

// ExportSummary stores the summary row and returns the configured failure,
// if any.
func (s *Store) ExportSummary(_ context.Context, summary core.FinancialSummary) error {
	if err := sheets.ValidMonth(summary); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	name := sheets.SheetName(s.base, summary.Year)
	rows, ok := s.sheets[name]
	if !ok {
		rows = map[int][]any{1: sheets.Header}
		s.sheets[name] = rows
	}
	rows[sheets.RowNumber(summary.Month)] = sheets.Row(summary)
	s.exports++
	return nil
}

// FailWith makes every following export return err. Pass nil to recover.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// Row returns a copy of the stored row, addressed like the sheet.
func (s *Store) Row(year, month int) ([]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.sheets[sheets.SheetName(s.base, year)][sheets.RowNumber(month)]
	if !ok {
		return nil, false
	}
	return append([]any(nil), row...), true
}

// Exports counts successful writes, including rewrites of the same row.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("memory sheets (%d sheets, %d exports)", len(s.sheets), s.exports)
}
