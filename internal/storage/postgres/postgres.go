// Package postgres stores the ledger in a remote PostgreSQL database through gorm.
// Tables and columns use the snake_case names of the hosted schema
// (categories.sub_categories as JSONB, transactions.category_id, ...).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"finfamily/internal/core"
	"finfamily/internal/log"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type Repository struct {
	db     *gorm.DB
	logger *log.Logger
	now    func() time.Time
}

// Open connects to PostgreSQL and optionally migrates the schema.
func Open(cfg Config, logger *log.Logger) (*Repository, error) {
	db, err := gorm.Open(pgdriver.Open(cfg.DSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := NewWithDB(db, logger)
	if cfg.AutoMigrate {
		if err := repo.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// NewWithDB wraps an existing gorm handle.
func NewWithDB(db *gorm.DB, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Nop()
	}
	return &Repository{
		db:     db,
		logger: logger.WithComponent(log.ComponentStorage).With(log.FieldBackend, "postgres"),
		now:    time.Now,
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (r *Repository) AutoMigrate() error {
	if err := r.db.AutoMigrate(&categoryModel{}, &transactionModel{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) ListCategories(ctx context.Context) ([]core.Category, error) {
	var models []categoryModel
	if err := r.db.WithContext(ctx).Order("position").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(models))
	for i, m := range models {
		out[i] = m.toCore()
	}
	r.logger.DebugContext(ctx, "Listed categories", log.FieldCount, len(out))
	return out, nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var models []transactionModel
	if err := r.db.WithContext(ctx).Order("position").Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(models))
	for i, m := range models {
		out[i] = m.toCore()
	}
	r.logger.DebugContext(ctx, "Listed transactions", log.FieldCount, len(out))
	return out, nil
}

func (r *Repository) SeedDefaultCategories(ctx context.Context) ([]core.Category, error) {
	seeded := core.SeedCategories(uuid.NewString)
	base := r.now().UnixNano()
	models := make([]categoryModel, len(seeded))
	for i, c := range seeded {
		models[i] = categoryToModel(c, base+int64(i))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	r.logger.InfoContext(ctx, "Seeded default categories", log.FieldCount, len(seeded))
	return seeded, nil
}

// UpsertCategory inserts c or updates it in place. The row keeps its
// original position on update.
func (r *Repository) UpsertCategory(ctx context.Context, c core.Category) error {
	m := categoryToModel(c, r.now().UnixNano())
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "color", "type", "sub_categories"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	r.logger.InfoContext(ctx, "Category saved", log.FieldCategoryID, c.ID)
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryModel{}).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	r.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}

// CreateTransactions inserts the batch with one statement.
func (r *Repository) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	base := r.now().UnixNano()
	models := make([]transactionModel, len(txs))
	for i, t := range txs {
		models[i] = transactionToModel(t, base+int64(i))
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}
	r.logger.InfoContext(ctx, "Transactions saved", log.FieldCount, len(txs))
	return nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	m := transactionToModel(t, 0)
	res := r.db.WithContext(ctx).Model(&transactionModel{}).Where("id = ?", t.ID).Updates(map[string]any{
		"date":                m.Date,
		"description":         m.Description,
		"amount":              m.Amount,
		"type":                m.Type,
		"status":              m.Status,
		"category_id":         m.CategoryID,
		"sub_category_id":     m.SubCategoryID,
		"installment_current": m.InstallmentCurrent,
		"installment_total":   m.InstallmentTotal,
	})
	if res.Error != nil {
		return fmt.Errorf("update transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, core.ErrNotFound)
	}
	r.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, t.ID)
	return nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&transactionModel{}).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("delete transaction: %w", err)
	}
	r.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}
