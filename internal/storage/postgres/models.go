package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"finfamily/internal/core"
)

// subCategories is stored as a JSONB array on the category row.
type subCategories []core.SubCategory

func (s subCategories) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]core.SubCategory(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *subCategories) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*s = subCategories{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into sub_categories", src)
	}
	var out []core.SubCategory
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	if out == nil {
		out = []core.SubCategory{}
	}
	*s = out
	return nil
}

type categoryModel struct {
	ID            string        `gorm:"primaryKey;type:text"`
	Name          string        `gorm:"type:text;not null"`
	Color         string        `gorm:"type:text;not null"`
	Type          string        `gorm:"type:text;not null"`
	SubCategories subCategories `gorm:"column:sub_categories;type:jsonb;not null"`
	Position      int64         `gorm:"not null;index"`
}

func (categoryModel) TableName() string { return "categories" }

func categoryToModel(c core.Category, position int64) categoryModel {
	return categoryModel{
		ID:            c.ID,
		Name:          c.Name,
		Color:         c.Color,
		Type:          string(c.Type),
		SubCategories: subCategories(c.Clone().SubCategories),
		Position:      position,
	}
}

func (m categoryModel) toCore() core.Category {
	subs := []core.SubCategory(m.SubCategories)
	if subs == nil {
		subs = []core.SubCategory{}
	}
	return core.Category{
		ID:            m.ID,
		Name:          m.Name,
		Color:         m.Color,
		Type:          core.TransactionType(m.Type),
		SubCategories: subs,
	}
}

type transactionModel struct {
	ID                 string          `gorm:"primaryKey;type:text"`
	Date               core.Date       `gorm:"type:date;not null;index"`
	Description        string          `gorm:"type:text;not null"`
	Amount             decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Type               string          `gorm:"type:text;not null"`
	Status             string          `gorm:"type:text;not null"`
	CategoryID         string          `gorm:"type:text;not null;index"`
	SubCategoryID      *string         `gorm:"type:text"`
	InstallmentCurrent *int
	InstallmentTotal   *int
	Position           int64 `gorm:"not null;index"`
}

func (transactionModel) TableName() string { return "transactions" }

func transactionToModel(t core.Transaction, position int64) transactionModel {
	m := transactionModel{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Status:      string(t.Status),
		CategoryID:  t.CategoryID,
		Position:    position,
	}
	if t.SubCategoryID != "" {
		sub := t.SubCategoryID
		m.SubCategoryID = &sub
	}
	if t.HasInstallments() {
		current, total := t.InstallmentCurrent, t.InstallmentTotal
		m.InstallmentCurrent = &current
		m.InstallmentTotal = &total
	}
	return m
}

func (m transactionModel) toCore() core.Transaction {
	t := core.Transaction{
		ID:          m.ID,
		Date:        m.Date,
		Description: m.Description,
		Amount:      m.Amount,
		Type:        core.TransactionType(m.Type),
		Status:      core.Status(m.Status),
		CategoryID:  m.CategoryID,
	}
	if m.SubCategoryID != nil {
		t.SubCategoryID = *m.SubCategoryID
	}
	if m.InstallmentCurrent != nil && m.InstallmentTotal != nil {
		t.InstallmentCurrent = *m.InstallmentCurrent
		t.InstallmentTotal = *m.InstallmentTotal
	}
	return t
}
