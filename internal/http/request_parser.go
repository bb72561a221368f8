package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"finfamily/internal/core"
	"finfamily/internal/summary"
)

const maxBodyBytes = 1 << 20

// createTransactionRequest is a draft plus the installment count. Amount
// may arrive as a JSON string or number.
type createTransactionRequest struct {
	Date          string               `json:"date"`
	Description   string               `json:"description"`
	Amount        any                  `json:"amount"`
	Type          core.TransactionType `json:"type"`
	Status        core.Status          `json:"status"`
	CategoryID    string               `json:"categoryId"`
	SubCategoryID string               `json:"subCategoryId"`
	Installments  int                  `json:"installments"`
}

func (r createTransactionRequest) draft() core.TransactionDraft {
	return core.TransactionDraft{
		Date:          strings.TrimSpace(r.Date),
		Description:   r.Description,
		Amount:        strings.TrimSpace(stringValue(r.Amount)),
		Type:          core.TransactionType(strings.ToUpper(string(r.Type))),
		Status:        core.Status(strings.ToUpper(string(r.Status))),
		CategoryID:    r.CategoryID,
		SubCategoryID: r.SubCategoryID,
	}
}

// count treats a missing installment count as a single transaction.
func (r createTransactionRequest) count() int {
	if r.Installments == 0 {
		return 1
	}
	return r.Installments
}

// decodeJSON reads a JSON body into v, rejecting unknown fields and
// trailing data. Decoding problems become validation errors on "body".
func decodeJSON(c echo.Context, v any) error {
	body := io.LimitReader(c.Request().Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty request body")
		}
		return &core.ValidationError{Field: "body", Err: err}
	}
	if dec.More() {
		return &core.ValidationError{Field: "body", Err: errors.New("unexpected data after JSON value")}
	}
	return nil
}

// parseMonthParam reads ?month=YYYY-MM, defaulting to the month now falls in.
func parseMonthParam(c echo.Context, now time.Time) (summary.Month, error) {
	v := strings.TrimSpace(c.QueryParam("month"))
	if v == "" {
		return summary.CurrentMonth(now), nil
	}
	m, err := summary.ParseMonth(v)
	if err != nil {
		return summary.Month{}, &core.ValidationError{Field: "month", Err: err}
	}
	return m, nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
