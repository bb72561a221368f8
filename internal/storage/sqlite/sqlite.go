// Package sqlite stores the ledger in a local SQLite database using the
// pure Go modernc driver. The schema is managed with embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"finfamily/internal/core"
	"finfamily/internal/log"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db     *sql.DB
	logger *log.Logger
}

func NewRepository(dbPath string, logger *log.Logger) (*Repository, error) {
	if logger == nil {
		logger = log.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage).With(log.FieldBackend, "sqlite"),
	}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, type, sub_categories FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var (
			c    core.Category
			subs string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Type, &subs); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if err := json.Unmarshal([]byte(subs), &c.SubCategories); err != nil {
			return nil, fmt.Errorf("decode sub_categories of %s: %w", c.ID, err)
		}
		if c.SubCategories == nil {
			c.SubCategories = []core.SubCategory{}
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	r.logger.DebugContext(ctx, "Listed categories", log.FieldCount, len(out))
	return out, nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, description, amount, type, status, category_id,
		       sub_category_id, installment_current, installment_total
		FROM transactions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		var (
			t       core.Transaction
			sub     sql.NullString
			current sql.NullInt64
			total   sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.Type, &t.Status,
			&t.CategoryID, &sub, &current, &total); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.SubCategoryID = sub.String
		t.InstallmentCurrent = int(current.Int64)
		t.InstallmentTotal = int(total.Int64)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	r.logger.DebugContext(ctx, "Listed transactions", log.FieldCount, len(out))
	return out, nil
}

func (r *Repository) SeedDefaultCategories(ctx context.Context) ([]core.Category, error) {
	seeded := core.SeedCategories(uuid.NewString)
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		for _, c := range seeded {
			if err := upsertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	r.logger.InfoContext(ctx, "Seeded default categories", log.FieldCount, len(seeded))
	return seeded, nil
}

func (r *Repository) UpsertCategory(ctx context.Context, c core.Category) error {
	if err := upsertCategory(ctx, r.db, c); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Category saved", log.FieldCategoryID, c.ID)
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	r.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}

func (r *Repository) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (id, date, description, amount, type, status, category_id,
			                          sub_category_id, installment_current, installment_total)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, t := range txs {
			if _, err := stmt.ExecContext(ctx, t.ID, t.Date, t.Description, t.Amount.String(),
				string(t.Type), string(t.Status), t.CategoryID,
				nullString(t.SubCategoryID), nullInt(t.InstallmentCurrent), nullInt(t.InstallmentTotal)); err != nil {
				return fmt.Errorf("insert %s: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}
	r.logger.InfoContext(ctx, "Transactions saved", log.FieldCount, len(txs))
	return nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount = ?, type = ?, status = ?, category_id = ?,
		    sub_category_id = ?, installment_current = ?, installment_total = ?
		WHERE id = ?`,
		t.Date, t.Description, t.Amount.String(), string(t.Type), string(t.Status), t.CategoryID,
		nullString(t.SubCategoryID), nullInt(t.InstallmentCurrent), nullInt(t.InstallmentTotal), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, core.ErrNotFound)
	}
	r.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, t.ID)
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertCategory(ctx context.Context, db execer, c core.Category) error {
	subs := c.SubCategories
	if subs == nil {
		subs = []core.SubCategory{}
	}
	b, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("encode sub_categories: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, type, sub_categories)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			type = excluded.type,
			sub_categories = excluded.sub_categories,
			updated_at = CURRENT_TIMESTAMP`,
		c.ID, c.Name, c.Color, string(c.Type), string(b))
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
