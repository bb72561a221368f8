// Package file is the local fallback backend: the ledger is kept as two JSON
// documents in a data directory and rewritten after every change.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"finfamily/internal/core"
	"finfamily/internal/log"
	"finfamily/internal/storage/memory"
)

const (
	CategoriesFile   = "categories.json"
	TransactionsFile = "transactions.json"
)

// Store serves reads from memory and writes every mutation through to disk.
// A failed write restores the in-memory state.
type Store struct {
	dir    string
	mem    *memory.Store
	logger *log.Logger
	mu     sync.Mutex
}

// Open reads the documents found in dir, creating the directory if needed.
// Missing documents are treated as empty.
func Open(dir string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	var (
		cats []core.Category
		txs  []core.Transaction
	)
	if err := readJSON(filepath.Join(dir, CategoriesFile), &cats); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, TransactionsFile), &txs); err != nil {
		return nil, err
	}
	logger = logger.WithComponent(log.ComponentStorage).With(log.FieldBackend, "file")
	logger.Info("Opened file store", "dir", dir, "categories", len(cats), "transactions", len(txs))
	return &Store{
		dir:    dir,
		mem:    memory.NewWithData(cats, txs),
		logger: logger,
	}, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.mem.ListCategories(ctx)
}

func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.mem.ListTransactions(ctx)
}

func (s *Store) SeedDefaultCategories(ctx context.Context) ([]core.Category, error) {
	var seeded []core.Category
	err := s.write(ctx, "seed default categories", CategoriesFile, func() error {
		var err error
		seeded, err = s.mem.SeedDefaultCategories(ctx)
		return err
	})
	return seeded, err
}

func (s *Store) UpsertCategory(ctx context.Context, c core.Category) error {
	return s.write(ctx, "upsert category", CategoriesFile, func() error { return s.mem.UpsertCategory(ctx, c) })
}

func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.write(ctx, "delete category", CategoriesFile, func() error { return s.mem.DeleteCategory(ctx, id) })
}

func (s *Store) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	return s.write(ctx, "create transactions", TransactionsFile, func() error { return s.mem.CreateTransactions(ctx, txs) })
}

func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return s.write(ctx, "update transaction", TransactionsFile, func() error { return s.mem.UpdateTransaction(ctx, t) })
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	return s.write(ctx, "delete transaction", TransactionsFile, func() error { return s.mem.DeleteTransaction(ctx, id) })
}

// write applies mutate in memory and rewrites doc, the one document it touches.
func (s *Store) write(ctx context.Context, op string, doc string, mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, txs := s.mem.Snapshot()
	if err := mutate(); err != nil {
		return err
	}
	newCats, newTxs := s.mem.Snapshot()
	if err := s.flush(ctx, []string{doc}, ledgerState{newCats, newTxs}, ledgerState{cats, txs}); err != nil {
		s.mem.Restore(cats, txs)
		return &core.PersistenceError{Op: op, Err: err}
	}
	s.logger.DebugContext(ctx, "File store written", log.FieldOperation, op, "document", doc)
	return nil
}

type ledgerState struct {
	cats []core.Category
	txs  []core.Transaction
}

func (st ledgerState) document(name string) any {
	if name == CategoriesFile {
		return st.cats
	}
	return st.txs
}

// flush writes docs in order. When one fails, the documents already
// replaced are written back from prev so disk never mixes old and new state.
func (s *Store) flush(ctx context.Context, docs []string, next, prev ledgerState) error {
	for i, name := range docs {
		if err := writeJSON(filepath.Join(s.dir, name), next.document(name)); err != nil {
			for _, done := range docs[:i] {
				if rerr := writeJSON(filepath.Join(s.dir, done), prev.document(done)); rerr != nil {
					s.logger.ErrorContext(ctx, "File store left out of sync",
						"document", done, log.FieldError, rerr)
				}
			}
			return err
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically through a temp file in the same directory.
func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
