package core

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"

	Pending   Status = "PENDING"
	Completed Status = "COMPLETED"
)

const maxDescriptionLength = 200

type (
	TransactionType string

	Status string

	SubCategory struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	Category struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Color         string          `json:"color"` // display hint, not validated
		Type          TransactionType `json:"type"`
		SubCategories []SubCategory   `json:"subCategories"`
	}

	// Transaction is one ledger entry. InstallmentCurrent and InstallmentTotal
	// are zero unless the entry belongs to a series of two or more.
	Transaction struct {
		ID                 string          `json:"id"`
		Date               Date            `json:"date"`
		Description        string          `json:"description"`
		Amount             decimal.Decimal `json:"amount"`
		Type               TransactionType `json:"type"`
		Status             Status          `json:"status"`
		CategoryID         string          `json:"categoryId"`
		SubCategoryID      string          `json:"subCategoryId,omitempty"`
		InstallmentCurrent int             `json:"installmentCurrent,omitempty"`
		InstallmentTotal   int             `json:"installmentTotal,omitempty"`
	}

	// TransactionDraft is a transaction as entered by a user, before parsing.
	TransactionDraft struct {
		Date          string          `json:"date" validate:"required"`
		Description   string          `json:"description" validate:"required,max=200"`
		Amount        string          `json:"amount" validate:"required"`
		Type          TransactionType `json:"type" validate:"required,oneof=EXPENSE INCOME"`
		Status        Status          `json:"status" validate:"omitempty,oneof=PENDING COMPLETED"`
		CategoryID    string          `json:"categoryId" validate:"required"`
		SubCategoryID string          `json:"subCategoryId,omitempty"`
	}

	// TransactionPatch carries the fields of an edit. Nil fields keep the
	// value of the record being edited.
	TransactionPatch struct {
		ID            string           `json:"id"`
		Date          *Date            `json:"date,omitempty"`
		Description   *string          `json:"description,omitempty"`
		Amount        *decimal.Decimal `json:"amount,omitempty"`
		Type          *TransactionType `json:"type,omitempty"`
		Status        *Status          `json:"status,omitempty"`
		CategoryID    *string          `json:"categoryId,omitempty"`
		SubCategoryID *string          `json:"subCategoryId,omitempty"`
	}
)

var (
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrUnknownSubCategory   = errors.New("unknown subcategory")
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidInstallments  = errors.New("invalid installments")
	ErrEmptyCategoryName    = errors.New("empty category name")
	ErrDuplicateID          = errors.New("duplicate id")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (t TransactionType) Valid() bool { return t == Expense || t == Income }

func (s Status) Valid() bool { return s == Pending || s == Completed }

// HasInstallments reports whether the transaction is part of a series.
func (t Transaction) HasInstallments() bool {
	return t.InstallmentTotal > 0 || t.InstallmentCurrent > 0
}

// ValidateInstallments checks that the installment pair is either unset or
// 1 <= current <= total with total >= 2.
func ValidateInstallments(current, total int) error {
	if current == 0 && total == 0 {
		return nil
	}
	if total < 2 || current < 1 || current > total {
		return fmt.Errorf("%w: %d of %d", ErrInvalidInstallments, current, total)
	}
	return nil
}

// Validate checks the record-level invariants of a transaction.
// Category existence is checked separately by ValidateReferences.
func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	if strings.TrimSpace(t.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if len(t.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Err: ErrDescriptionTooLong}
	}
	if t.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if !t.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if !t.Status.Valid() {
		return &ValidationError{Field: "status", Err: ErrInvalidStatus}
	}
	if strings.TrimSpace(t.CategoryID) == "" {
		return &ValidationError{Field: "categoryId", Err: ErrUnknownCategory}
	}
	if err := ValidateInstallments(t.InstallmentCurrent, t.InstallmentTotal); err != nil {
		return &ValidationError{Field: "installments", Err: err}
	}
	return nil
}

// ValidateReferences checks that the category (and subcategory, when set)
// referenced by t exist in categories and that the category type matches.
func (t Transaction) ValidateReferences(categories []Category) error {
	cat, ok := FindCategory(categories, t.CategoryID)
	if !ok {
		return &ValidationError{Field: "categoryId", Err: fmt.Errorf("%w: %q", ErrUnknownCategory, t.CategoryID)}
	}
	if cat.Type != t.Type {
		return &ValidationError{Field: "categoryId", Err: fmt.Errorf("%w: %s is %s", ErrCategoryTypeMismatch, cat.Name, cat.Type)}
	}
	if t.SubCategoryID != "" && !cat.HasSubCategory(t.SubCategoryID) {
		return &ValidationError{Field: "subCategoryId", Err: fmt.Errorf("%w: %q", ErrUnknownSubCategory, t.SubCategoryID)}
	}
	return nil
}

// Parse validates a draft against the current categories and returns the
// transaction it describes, without id or installment metadata.
// A draft with no status is COMPLETED.
func (d TransactionDraft) Parse(categories []Category) (Transaction, error) {
	d.Description = strings.TrimSpace(d.Description)
	d.CategoryID = strings.TrimSpace(d.CategoryID)
	d.SubCategoryID = strings.TrimSpace(d.SubCategoryID)

	if err := validate.Struct(d); err != nil {
		return Transaction{}, validationErrorFrom(err)
	}

	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "amount", Err: fmt.Errorf("%w: %q", err, d.Amount)}
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, &ValidationError{Field: "date", Err: err}
	}
	status := d.Status
	if status == "" {
		status = Completed
	}

	t := Transaction{
		Date:          date,
		Description:   d.Description,
		Amount:        amount,
		Type:          d.Type,
		Status:        status,
		CategoryID:    d.CategoryID,
		SubCategoryID: d.SubCategoryID,
	}
	if err := t.ValidateReferences(categories); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

// Apply merges the patch onto t. The id is never changed.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	if p.SubCategoryID != nil {
		t.SubCategoryID = *p.SubCategoryID
	}
	return t
}

// TouchesReferences reports whether the patch changes what the transaction points at.
func (p TransactionPatch) TouchesReferences() bool {
	return p.CategoryID != nil || p.SubCategoryID != nil || p.Type != nil
}

// Validate checks a category on its own. Color is a display hint and is not checked.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyCategoryName}
	}
	if !c.Type.Valid() {
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	seen := make(map[string]struct{}, len(c.SubCategories))
	for _, s := range c.SubCategories {
		if strings.TrimSpace(s.Name) == "" {
			return &ValidationError{Field: "subCategories", Err: fmt.Errorf("%w in %s", ErrEmptyCategoryName, c.Name)}
		}
		if _, dup := seen[s.ID]; dup {
			return &ValidationError{Field: "subCategories", Err: fmt.Errorf("%w: subcategory %q in %s", ErrDuplicateID, s.ID, c.Name)}
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Clone returns a copy that shares no slice with c.
func (c Category) Clone() Category {
	c.SubCategories = slices.Clone(c.SubCategories)
	if c.SubCategories == nil {
		c.SubCategories = []SubCategory{}
	}
	return c
}

func (c Category) HasSubCategory(id string) bool {
	return slices.ContainsFunc(c.SubCategories, func(s SubCategory) bool { return s.ID == id })
}

// SubCategoryName returns the name of a subcategory, or "" when it is gone.
func (c Category) SubCategoryName(id string) string {
	for _, s := range c.SubCategories {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}

// FindCategory looks a category up by id.
func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoriesOfType filters categories by type, keeping their order.
func CategoriesOfType(categories []Category, t TransactionType) []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ValidateCategories checks every category and that ids are unique across the list.
func ValidateCategories(categories []Category) error {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c.ID) == "" {
			return &ValidationError{Field: "id", Err: fmt.Errorf("category %q has no id", c.Name)}
		}
		if _, dup := seen[c.ID]; dup {
			return &ValidationError{Field: "id", Err: fmt.Errorf("%w: category %q", ErrDuplicateID, c.ID)}
		}
		seen[c.ID] = struct{}{}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validationErrorFrom(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Err: err}
	}
	fe := fieldErrs[0]
	var cause error
	switch fe.Field() {
	case "description":
		if fe.Tag() == "max" {
			cause = ErrDescriptionTooLong
		} else {
			cause = ErrEmptyDescription
		}
	case "amount":
		cause = ErrInvalidAmount
	case "date":
		cause = ErrInvalidDate
	case "type":
		cause = ErrInvalidType
	case "status":
		cause = ErrInvalidStatus
	case "categoryId":
		cause = ErrUnknownCategory
	default:
		cause = fmt.Errorf("failed on %q", fe.Tag())
	}
	return &ValidationError{Field: fe.Field(), Err: cause}
}
