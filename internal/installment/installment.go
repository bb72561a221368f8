// Package installment turns one parsed transaction into a monthly series.
//
// Installment i is dated i calendar months after the base date. The day of
// month is kept and clamped to the last day of shorter months, always derived
// from the base date so a clamped month never shortens the ones after it:
//
//	2024-01-31 x3 -> 2024-01-31, 2024-02-29, 2024-03-31
//
// Only the first installment keeps the requested status; the rest are PENDING.
package installment

import (
	"fmt"

	"github.com/google/uuid"

	"finfamily/internal/core"
)

// MaxCount bounds the length of a series.
const MaxCount = 60

// IDFunc produces a fresh unique id for each generated transaction.
type IDFunc func() string

// NewUUID is the default IDFunc.
func NewUUID() string { return uuid.NewString() }

// ValidateCount checks that a series length is within 1..MaxCount.
func ValidateCount(count int) error {
	if count < 1 || count > MaxCount {
		return &core.ValidationError{
			Field: "installments",
			Err:   fmt.Errorf("%w: count must be between 1 and %d, got %d", core.ErrInvalidInstallments, MaxCount, count),
		}
	}
	return nil
}

// Expand returns count transactions derived from base. With count == 1 the
// result carries no installment metadata. base.ID and any installment fields
// on base are ignored.
func Expand(base core.Transaction, count int, newID IDFunc) ([]core.Transaction, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}
	if newID == nil {
		newID = NewUUID
	}

	base.InstallmentCurrent = 0
	base.InstallmentTotal = 0

	if count == 1 {
		base.ID = newID()
		return []core.Transaction{base}, nil
	}

	out := make([]core.Transaction, count)
	for i := range count {
		t := base
		t.ID = newID()
		t.Date = base.Date.AddMonths(i)
		t.InstallmentCurrent = i + 1
		t.InstallmentTotal = count
		if i > 0 {
			t.Status = core.Pending
		}
		out[i] = t
	}
	return out, nil
}

// ExpandDraft validates draft against categories and expands it.
func ExpandDraft(draft core.TransactionDraft, categories []core.Category, count int, newID IDFunc) ([]core.Transaction, error) {
	if err := ValidateCount(count); err != nil {
		return nil, err
	}
	base, err := draft.Parse(categories)
	if err != nil {
		return nil, err
	}
	return Expand(base, count, newID)
}
