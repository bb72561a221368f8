// Package ports defines the boundaries the ledger talks to: a persistence
// backend, an advisory text generator and an event publisher.
package ports

import (
	"context"

	"finfamily/internal/core"
)

// Persistence is implemented by every storage backend. Failures are reported
// as *core.PersistenceError; ErrNotFound is returned as is.
type Persistence interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	// SeedDefaultCategories writes the default category set and returns it
	// with the ids the backend stored.
	SeedDefaultCategories(ctx context.Context) ([]core.Category, error)
	UpsertCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id string) error
	CreateTransactions(ctx context.Context, txs []core.Transaction) error
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

// Advisor produces a narrative report for a month. It never fails: problems
// are turned into a fixed apology text.
type Advisor interface {
	GenerateInsights(ctx context.Context, summary core.FinancialSummary, categories []core.Category, monthLabel string) string
}

// EventPublisher receives ledger events after the backend confirmed a mutation.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev core.LedgerEvent) error
}

// SummaryExporter writes a computed month summary to an external sheet.
type SummaryExporter interface {
	ExportSummary(ctx context.Context, summary core.FinancialSummary) error
}
