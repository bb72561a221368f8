package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfamily/internal/core"
)

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := Open(dir, nil)
	require.NoError(t, err)

	seeded, err := s.SeedDefaultCategories(ctx)
	require.NoError(t, err)

	tx := core.Transaction{
		ID: "t1", Date: core.NewDate(2024, 2, 29), Description: "Aluguel",
		Amount: decimal.RequireFromString("1500.50"), Type: core.Expense, Status: core.Pending,
		CategoryID: seeded[0].ID, InstallmentCurrent: 1, InstallmentTotal: 2,
	}
	require.NoError(t, s.CreateTransactions(ctx, []core.Transaction{tx}))
	require.NoError(t, s.DeleteCategory(ctx, seeded[4].ID))

	reopened, err := Open(dir, nil)
	require.NoError(t, err)

	cats, err := reopened.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, len(seeded)-1)

	txs, err := reopened.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-02-29", txs[0].Date.String())
	assert.True(t, txs[0].Amount.Equal(tx.Amount))
	assert.Equal(t, 2, txs[0].InstallmentTotal)

	raw, err := os.ReadFile(filepath.Join(dir, TransactionsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date": "2024-02-29"`)
	assert.Contains(t, string(raw), `"categoryId"`)
}

func TestFileStoreRejectsCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CategoriesFile), []byte("{not json"), 0o644))

	_, err := Open(dir, nil)
	assert.Error(t, err)
}

func TestFileStoreRestoresMemoryOnWriteFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err = s.UpsertCategory(ctx, core.Category{ID: "x", Name: "X", Type: core.Expense})
	var pe *core.PersistenceError
	require.ErrorAs(t, err, &pe)

	cats, _ := s.ListCategories(ctx)
	assert.Empty(t, cats)
}

func TestFileStoreKeepsDocumentsInStep(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, TransactionsFile), 0o755))

	// Category writes never touch the transactions document.
	require.NoError(t, s.UpsertCategory(ctx, core.Category{ID: "c1", Name: "New", Type: core.Expense}))

	err = s.CreateTransactions(ctx, []core.Transaction{{
		ID: "t1", Date: core.NewDate(2024, 3, 1), Description: "Mercado",
		Amount: decimal.RequireFromString("10"), Type: core.Expense, Status: core.Completed,
		CategoryID: "c1", InstallmentCurrent: 1, InstallmentTotal: 1,
	}})
	var pe *core.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "create transactions", pe.Op)

	txs, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	raw, err := os.ReadFile(filepath.Join(dir, CategoriesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"c1"`)
}

func TestFlushWritesBackReplacedDocuments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	before := core.Category{ID: "c0", Name: "Old", Type: core.Expense}
	require.NoError(t, s.UpsertCategory(ctx, before))
	require.NoError(t, os.Mkdir(filepath.Join(dir, TransactionsFile), 0o755))

	next := ledgerState{cats: []core.Category{before, {ID: "c1", Name: "New", Type: core.Expense}}}
	prev := ledgerState{cats: []core.Category{before}}
	err = s.flush(ctx, []string{CategoriesFile, TransactionsFile}, next, prev)
	require.Error(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, CategoriesFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"c0"`)
	assert.NotContains(t, string(raw), `"c1"`)
}
