package core

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []Category {
	return []Category{
		{ID: "c1", Name: "Moradia", Color: "#ef4444", Type: Expense, SubCategories: []SubCategory{{ID: "s1", Name: "Energia"}}},
		{ID: "c2", Name: "Salário", Color: "#22c55e", Type: Income},
	}
}

func TestDraftParse(t *testing.T) {
	d := TransactionDraft{
		Date:          "2024-03-01",
		Description:   "  Conta de luz ",
		Amount:        "120,50",
		Type:          Expense,
		CategoryID:    "c1",
		SubCategoryID: "s1",
	}
	tx, err := d.Parse(testCategories())
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 3, 1), tx.Date)
	assert.Equal(t, "Conta de luz", tx.Description)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, Completed, tx.Status, "missing status defaults to COMPLETED")
	assert.False(t, tx.HasInstallments())
	assert.Empty(t, tx.ID)
}

func TestDraftParseRejects(t *testing.T) {
	good := TransactionDraft{Date: "2024-03-01", Description: "x", Amount: "1", Type: Expense, CategoryID: "c1"}

	cases := []struct {
		name   string
		mutate func(*TransactionDraft)
		field  string
		target error
	}{
		{"blank description", func(d *TransactionDraft) { d.Description = "   " }, "description", ErrEmptyDescription},
		{"long description", func(d *TransactionDraft) { d.Description = strings.Repeat("a", 201) }, "description", ErrDescriptionTooLong},
		{"non numeric amount", func(d *TransactionDraft) { d.Amount = "abc" }, "amount", ErrInvalidAmount},
		{"negative amount", func(d *TransactionDraft) { d.Amount = "-5" }, "amount", ErrInvalidAmount},
		{"missing amount", func(d *TransactionDraft) { d.Amount = "" }, "amount", ErrInvalidAmount},
		{"bad date", func(d *TransactionDraft) { d.Date = "2024-02-30" }, "date", ErrInvalidDay},
		{"bad type", func(d *TransactionDraft) { d.Type = "TRANSFER" }, "type", ErrInvalidType},
		{"bad status", func(d *TransactionDraft) { d.Status = "DONE" }, "status", ErrInvalidStatus},
		{"missing category", func(d *TransactionDraft) { d.CategoryID = "" }, "categoryId", ErrUnknownCategory},
		{"unknown category", func(d *TransactionDraft) { d.CategoryID = "zz" }, "categoryId", ErrUnknownCategory},
		{"type mismatch", func(d *TransactionDraft) { d.CategoryID = "c2" }, "categoryId", ErrCategoryTypeMismatch},
		{"unknown subcategory", func(d *TransactionDraft) { d.SubCategoryID = "nope" }, "subCategoryId", ErrUnknownSubCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := good
			tc.mutate(&d)
			_, err := d.Parse(testCategories())
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.field, ve.Field)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

func TestValidateInstallments(t *testing.T) {
	cases := []struct {
		current, total int
		ok             bool
	}{
		{0, 0, true},
		{1, 2, true},
		{3, 3, true},
		{1, 1, false},
		{0, 3, false},
		{4, 3, false},
		{2, 0, false},
	}
	for _, tc := range cases {
		err := ValidateInstallments(tc.current, tc.total)
		if tc.ok && err != nil {
			t.Fatalf("%d/%d expected ok, got %v", tc.current, tc.total, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%d/%d expected error", tc.current, tc.total)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID: "t1", Date: NewDate(2024, 3, 1), Description: "ok", Amount: decimal.NewFromInt(10),
		Type: Expense, Status: Pending, CategoryID: "c1",
	}
	require.NoError(t, good.Validate())

	bad := good
	bad.InstallmentCurrent = 2
	assert.ErrorIs(t, bad.Validate(), ErrInvalidInstallments)

	bad = good
	bad.Amount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAmount)

	bad = good
	bad.Date = Date{}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidDate)
}

func TestPatchApplyKeepsOmittedFields(t *testing.T) {
	orig := Transaction{
		ID: "t1", Date: NewDate(2024, 3, 1), Description: "Mercado", Amount: decimal.NewFromInt(80),
		Type: Expense, Status: Pending, CategoryID: "c1", InstallmentCurrent: 1, InstallmentTotal: 3,
	}
	status := Completed
	desc := " Mercado grande "
	got := TransactionPatch{ID: "other", Status: &status, Description: &desc}.Apply(orig)

	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, Completed, got.Status)
	assert.Equal(t, "Mercado grande", got.Description)
	assert.True(t, got.Amount.Equal(orig.Amount))
	assert.Equal(t, 1, got.InstallmentCurrent)
	assert.Equal(t, 3, got.InstallmentTotal)
}

func TestCategoryValidate(t *testing.T) {
	require.NoError(t, ValidateCategories(testCategories()))

	dup := append(testCategories(), Category{ID: "c1", Name: "Again", Type: Expense})
	assert.ErrorIs(t, ValidateCategories(dup), ErrDuplicateID)

	noName := []Category{{ID: "x", Name: " ", Type: Income}}
	assert.ErrorIs(t, ValidateCategories(noName), ErrEmptyCategoryName)

	badType := []Category{{ID: "x", Name: "X", Type: "OTHER"}}
	assert.ErrorIs(t, ValidateCategories(badType), ErrInvalidType)
}

func TestCategoryCloneDoesNotAlias(t *testing.T) {
	c := testCategories()[0]
	cp := c.Clone()
	cp.SubCategories[0].Name = "changed"
	assert.Equal(t, "Energia", c.SubCategories[0].Name)
	assert.NotNil(t, Category{}.Clone().SubCategories)
}

func TestSeedCategoriesAssignsFreshIDs(t *testing.T) {
	n := 0
	seeded := SeedCategories(func() string { n++; return "id-" + strconv.Itoa(n) })

	require.Len(t, seeded, len(DefaultCategories))
	ids := map[string]bool{}
	for _, c := range seeded {
		ids[c.ID] = true
		for _, s := range c.SubCategories {
			ids[s.ID] = true
		}
	}
	assert.Len(t, ids, n, "every id must be distinct")
	assert.Equal(t, "1", DefaultCategories[0].ID, "defaults must not be mutated")
	assert.Len(t, CategoriesOfType(seeded, Expense), 3)
	assert.Len(t, CategoriesOfType(seeded, Income), 2)
	require.NoError(t, ValidateCategories(seeded))
}

func TestMonthsOf(t *testing.T) {
	txs := []Transaction{
		{Date: NewDate(2024, 3, 1)},
		{Date: NewDate(2024, 4, 1)},
		{Date: NewDate(2024, 3, 20)},
	}
	assert.Equal(t, []MonthRef{{2024, 3}, {2024, 4}}, MonthsOf(txs...))
}
