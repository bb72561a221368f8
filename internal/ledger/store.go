// Package ledger owns the in-memory categories and transactions and keeps
// them in step with a persistence backend.
//
// Every mutation is applied locally first, then sent to the backend. When the
// backend fails the affected collection is restored to the snapshot taken
// just before that mutation and the error is returned. Drafts are validated
// before anything changes.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"finfamily/internal/core"
	"finfamily/internal/installment"
	"finfamily/internal/log"
	"finfamily/internal/ports"
	"finfamily/internal/summary"
)

// Outcome of a mutation as reported to an Observer.
type Outcome string

const (
	OutcomeApplied    Outcome = "applied"
	OutcomeRolledBack Outcome = "rolled_back"
	OutcomeRejected   Outcome = "rejected"
	OutcomeNoop       Outcome = "noop"
)

// Observer is notified once per mutation.
type Observer interface {
	ObserveMutation(op string, outcome Outcome, elapsed time.Duration)
}

type Options struct {
	Publisher ports.EventPublisher
	Observer  Observer
	Logger    *log.Logger
	NewID     installment.IDFunc
	Now       func() time.Time

	// ReadOnly stores never write to the backend from Load, so an empty
	// category list stays empty instead of being seeded.
	ReadOnly bool
}

type Store struct {
	port      ports.Persistence
	publisher ports.EventPublisher
	observer  Observer
	logger    *log.Logger
	newID     installment.IDFunc
	now       func() time.Time
	readOnly  bool

	categories   *Optimistic[[]core.Category]
	transactions *Optimistic[[]core.Transaction]
}

// New creates an empty store backed by port. Call Load before use.
func New(port ports.Persistence, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	if opts.NewID == nil {
		opts.NewID = installment.NewUUID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		port:         port,
		publisher:    opts.Publisher,
		observer:     opts.Observer,
		logger:       opts.Logger.WithComponent(log.ComponentLedger),
		newID:        opts.NewID,
		now:          opts.Now,
		readOnly:     opts.ReadOnly,
		categories:   NewOptimistic([]core.Category{}, cloneCategories),
		transactions: NewOptimistic([]core.Transaction{}, cloneTransactions),
	}
}

// Load reads both collections from the backend concurrently. When the
// backend has no categories the default set is seeded first, unless the
// store is read-only.
func (s *Store) Load(ctx context.Context) error {
	var (
		cats []core.Category
		txs  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = s.port.ListCategories(gctx)
		return core.NewPersistenceError("list categories", err)
	})
	g.Go(func() error {
		var err error
		txs, err = s.port.ListTransactions(gctx)
		return core.NewPersistenceError("list transactions", err)
	})
	if err := g.Wait(); err != nil {
		s.logger.Fields(ctx, slog.LevelError, "Failed to load ledger",
			log.NewFields().WithOperation(log.OpLoad).WithError(err))
		return err
	}

	if len(cats) == 0 && !s.readOnly {
		seeded, err := s.port.SeedDefaultCategories(ctx)
		if err != nil {
			err = core.NewPersistenceError("seed default categories", err)
			s.logger.Fields(ctx, slog.LevelError, "Failed to seed default categories",
				log.NewFields().WithOperation(log.OpSeed).WithError(err))
			return err
		}
		s.logger.InfoContext(ctx, "Seeded default categories", log.FieldCount, len(seeded))
		cats = seeded
	}

	s.categories.Set(cats)
	s.transactions.Set(txs)
	s.logger.InfoContext(ctx, "Ledger loaded",
		log.FieldOperation, log.OpLoad,
		"categories", len(cats),
		"transactions", len(txs))
	return nil
}

func (s *Store) Categories() []core.Category { return s.categories.Get() }

func (s *Store) Transactions() []core.Transaction { return s.transactions.Get() }

func (s *Store) Category(id string) (core.Category, bool) {
	return core.FindCategory(s.categories.Get(), id)
}

func (s *Store) Transaction(id string) (core.Transaction, bool) {
	i, txs := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return txs[i], true
}

// Version changes whenever either collection changes locally.
func (s *Store) Version() uint64 {
	return s.categories.Version() + s.transactions.Version()
}

// Summary aggregates the current ledger for month.
func (s *Store) Summary(month summary.Month) core.FinancialSummary {
	return summary.Summarize(s.transactions.Get(), s.categories.Get(), month)
}

// AddTransactions validates and expands each draft into count installments,
// appends them all locally and creates them with a single backend call.
func (s *Store) AddTransactions(ctx context.Context, drafts []core.TransactionDraft, count int) ([]core.Transaction, error) {
	const op = log.OpAddTransactions
	start := time.Now()

	if err := installment.ValidateCount(count); err != nil {
		s.reject(ctx, op, start, err)
		return nil, err
	}

	cats := s.categories.Get()
	var created []core.Transaction
	for _, d := range drafts {
		expanded, err := installment.ExpandDraft(d, cats, count, s.newID)
		if err != nil {
			s.reject(ctx, op, start, err)
			return nil, err
		}
		created = append(created, expanded...)
	}
	if len(created) == 0 {
		s.observe(op, OutcomeNoop, start)
		return nil, nil
	}

	rolledBack, err := s.transactions.Apply(ctx,
		func(current []core.Transaction) ([]core.Transaction, error) {
			return append(current, created...), nil
		},
		func(ctx context.Context) error {
			return core.NewPersistenceError("create transactions", s.port.CreateTransactions(ctx, slices.Clone(created)))
		})
	if err != nil {
		s.fail(ctx, op, start, rolledBack, err)
		return nil, err
	}

	s.applied(ctx, op, start, len(created))
	s.publish(ctx, core.TransactionsCreated, idsOf(created), core.MonthsOf(created...))
	return created, nil
}

// UpdateTransaction merges patch onto the stored record with the same id.
// It returns core.ErrNotFound without calling the backend when no such
// record exists.
func (s *Store) UpdateTransaction(ctx context.Context, patch core.TransactionPatch) (core.Transaction, error) {
	const op = log.OpUpdateTransaction
	start := time.Now()

	var before, updated core.Transaction
	rolledBack, err := s.transactions.Apply(ctx,
		func(current []core.Transaction) ([]core.Transaction, error) {
			i := slices.IndexFunc(current, func(t core.Transaction) bool { return t.ID == patch.ID })
			if i < 0 {
				return nil, fmt.Errorf("transaction %q: %w", patch.ID, core.ErrNotFound)
			}
			before = current[i]
			updated = patch.Apply(before)
			if err := updated.Validate(); err != nil {
				return nil, err
			}
			if patch.TouchesReferences() {
				if err := updated.ValidateReferences(s.categories.Get()); err != nil {
					return nil, err
				}
			}
			current[i] = updated
			return current, nil
		},
		func(ctx context.Context) error {
			return core.NewPersistenceError("update transaction", s.port.UpdateTransaction(ctx, updated))
		})
	if err != nil {
		s.fail(ctx, op, start, rolledBack, err)
		return core.Transaction{}, err
	}

	s.applied(ctx, op, start, 1)
	s.publish(ctx, core.TransactionUpdated, []string{updated.ID}, core.MonthsOf(before, updated))
	return updated, nil
}

// DeleteTransaction removes one transaction. Sibling installments are left
// alone. An unknown id is a no-op and the backend is not called.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	const op = log.OpDeleteTransaction
	start := time.Now()

	var removed core.Transaction
	found := false
	rolledBack, err := s.transactions.Apply(ctx,
		func(current []core.Transaction) ([]core.Transaction, error) {
			i := slices.IndexFunc(current, func(t core.Transaction) bool { return t.ID == id })
			if i < 0 {
				return nil, ErrUnchanged
			}
			found = true
			removed = current[i]
			return slices.Delete(current, i, i+1), nil
		},
		func(ctx context.Context) error {
			return core.NewPersistenceError("delete transaction", s.port.DeleteTransaction(ctx, id))
		})
	if err != nil {
		s.fail(ctx, op, start, rolledBack, err)
		return err
	}
	if !found {
		s.logger.DebugContext(ctx, "Delete of unknown transaction ignored", log.FieldTransactionID, id)
		s.observe(op, OutcomeNoop, start)
		return nil
	}

	s.applied(ctx, op, start, 1)
	s.publish(ctx, core.TransactionDeleted, []string{id}, core.MonthsOf(removed))
	return nil
}

// ReplaceCategories installs next as the category list. Categories missing
// from next are deleted one by one, then every category in next is upserted.
// Any backend failure restores the whole previous list.
//
// Categories and subcategories without an id are given one. Transactions
// pointing at a deleted category are kept as they are.
func (s *Store) ReplaceCategories(ctx context.Context, next []core.Category) ([]core.Category, error) {
	const op = log.OpReplaceCategories
	start := time.Now()

	next = cloneCategories(next)
	for i := range next {
		if next[i].ID == "" {
			next[i].ID = s.newID()
		}
		for j := range next[i].SubCategories {
			if next[i].SubCategories[j].ID == "" {
				next[i].SubCategories[j].ID = s.newID()
			}
		}
	}
	if err := core.ValidateCategories(next); err != nil {
		s.reject(ctx, op, start, err)
		return nil, err
	}

	var deleted []string
	rolledBack, err := s.categories.Apply(ctx,
		func(current []core.Category) ([]core.Category, error) {
			deleted = deletedIDs(current, next)
			return cloneCategories(next), nil
		},
		func(ctx context.Context) error {
			for _, id := range deleted {
				if err := s.port.DeleteCategory(ctx, id); err != nil {
					return core.NewPersistenceError("delete category "+id, err)
				}
			}
			for _, c := range next {
				if err := s.port.UpsertCategory(ctx, c); err != nil {
					return core.NewPersistenceError("upsert category "+c.ID, err)
				}
			}
			return nil
		})
	if err != nil {
		s.fail(ctx, op, start, rolledBack, err)
		return nil, err
	}

	s.applied(ctx, op, start, len(next))
	ids := make([]string, 0, len(next)+len(deleted))
	for _, c := range next {
		ids = append(ids, c.ID)
	}
	s.publish(ctx, core.CategoriesReplaced, append(ids, deleted...), nil)
	return next, nil
}

func (s *Store) indexOf(id string) (int, []core.Transaction) {
	txs := s.transactions.Get()
	return slices.IndexFunc(txs, func(t core.Transaction) bool { return t.ID == id }), txs
}

func (s *Store) publish(ctx context.Context, kind core.EventKind, ids []string, months []core.MonthRef) {
	if s.publisher == nil {
		return
	}
	ev := core.LedgerEvent{Kind: kind, IDs: ids, Months: months, Timestamp: s.now().UTC()}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventKind, string(kind),
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
	}
}

func (s *Store) applied(ctx context.Context, op string, start time.Time, n int) {
	s.logger.InfoContext(ctx, "Mutation confirmed",
		log.FieldOperation, op,
		log.FieldCount, n,
		log.FieldVersion, s.Version())
	s.observe(op, OutcomeApplied, start)
}

func (s *Store) reject(ctx context.Context, op string, start time.Time, err error) {
	s.logger.Fields(ctx, slog.LevelWarn, "Mutation rejected", log.NewFields().WithOperation(op).WithError(err))
	s.observe(op, OutcomeRejected, start)
}

func (s *Store) fail(ctx context.Context, op string, start time.Time, rolledBack bool, err error) {
	if !rolledBack {
		s.reject(ctx, op, start, err)
		return
	}
	fields := log.NewFields().WithOperation(op).WithError(err)
	var pe *core.PersistenceError
	if errors.As(err, &pe) {
		fields["hint"] = pe.Hint()
	}
	s.logger.Fields(ctx, slog.LevelError, "Persistence failed, local state rolled back", fields)
	s.observe(op, OutcomeRolledBack, start)
}

func (s *Store) observe(op string, outcome Outcome, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveMutation(op, outcome, time.Since(start))
	}
}

func cloneCategories(in []core.Category) []core.Category {
	out := make([]core.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

func cloneTransactions(in []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(in))
	copy(out, in)
	return out
}

func deletedIDs(before, after []core.Category) []string {
	keep := make(map[string]struct{}, len(after))
	for _, c := range after {
		keep[c.ID] = struct{}{}
	}
	var out []string
	for _, c := range before {
		if _, ok := keep[c.ID]; !ok {
			out = append(out, c.ID)
		}
	}
	return out
}

func idsOf(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}
