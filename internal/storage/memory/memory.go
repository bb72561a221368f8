// Package memory is an in-process persistence backend. Nothing survives a
// restart; it backs demos, tests and the file store.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"finfamily/internal/core"
)

type Store struct {
	mu    sync.Mutex
	cats  []core.Category
	items []core.Transaction
	newID func() string
}

func New() *Store {
	return &Store{newID: uuid.NewString}
}

// NewWithData returns a store holding copies of cats and txs.
func NewWithData(cats []core.Category, txs []core.Transaction) *Store {
	s := New()
	s.Restore(cats, txs)
	return s
}

// Snapshot returns copies of both collections.
func (s *Store) Snapshot() ([]core.Category, []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCategories(s.cats), slices.Clone(s.items)
}

// Restore replaces both collections.
func (s *Store) Restore(cats []core.Category, txs []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = cloneCategories(cats)
	s.items = slices.Clone(txs)
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneCategories(s.cats), nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) SeedDefaultCategories(_ context.Context) ([]core.Category, error) {
	seeded := core.SeedCategories(s.newID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = append(s.cats, cloneCategories(seeded)...)
	return seeded, nil
}

// UpsertCategory replaces the category with the same id or appends it.
func (s *Store) UpsertCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.cats, func(x core.Category) bool { return x.ID == c.ID }); i >= 0 {
		s.cats[i] = c.Clone()
		return nil
	}
	s.cats = append(s.cats, c.Clone())
	return nil
}

// DeleteCategory is idempotent.
func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats = slices.DeleteFunc(s.cats, func(x core.Category) bool { return x.ID == id })
	return nil
}

// CreateTransactions stores all of txs or none of them.
func (s *Store) CreateTransactions(_ context.Context, txs []core.Transaction) error {
	for _, t := range txs {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]struct{}, len(s.items)+len(txs))
	for _, t := range s.items {
		seen[t.ID] = struct{}{}
	}
	for _, t := range txs {
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("transaction %q: %w", t.ID, core.ErrDuplicateID)
		}
		seen[t.ID] = struct{}{}
	}
	s.items = append(s.items, txs...)
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.items, func(x core.Transaction) bool { return x.ID == t.ID })
	if i < 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, core.ErrNotFound)
	}
	s.items[i] = t
	return nil
}

// DeleteTransaction is idempotent.
func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(x core.Transaction) bool { return x.ID == id })
	return nil
}

func cloneCategories(in []core.Category) []core.Category {
	out := make([]core.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
