// Package rest stores the ledger behind a PostgREST compatible endpoint
// (a hosted Supabase project, for example). Rows use the snake_case
// columns of the remote tables and the access key travels both as the
// apikey header and as a bearer token.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finfamily/internal/core"
	"finfamily/internal/log"
)

const (
	categoriesTable   = "categories"
	transactionsTable = "transactions"
	defaultTimeout    = 15 * time.Second
)

type Config struct {
	URL        string
	Key        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	base   *url.URL
	key    string
	http   *http.Client
	logger *log.Logger
}

// APIError is the error body PostgREST returns on failed requests.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "remote status %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Details != "" {
		b.WriteString(" (")
		b.WriteString(e.Details)
		b.WriteString(")")
	}
	return b.String()
}

func New(cfg Config, logger *log.Logger) (*Client, error) {
	var missing []string
	if strings.TrimSpace(cfg.URL) == "" {
		missing = append(missing, "REMOTE_URL")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		missing = append(missing, "REMOTE_KEY")
	}
	if len(missing) > 0 {
		return nil, &core.ConfigurationError{Missing: missing}
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", cfg.URL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		base:   base,
		key:    cfg.Key,
		http:   hc,
		logger: logger.WithComponent(log.ComponentStorage).With(log.FieldBackend, "rest"),
	}, nil
}

type categoryRow struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Color         string             `json:"color"`
	Type          string             `json:"type"`
	SubCategories []core.SubCategory `json:"sub_categories"`
}

type transactionRow struct {
	ID                 string          `json:"id"`
	Date               core.Date       `json:"date"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Type               string          `json:"type"`
	Status             string          `json:"status"`
	CategoryID         string          `json:"category_id"`
	SubCategoryID      *string         `json:"sub_category_id"`
	InstallmentCurrent *int            `json:"installment_current"`
	InstallmentTotal   *int            `json:"installment_total"`
}

func categoryToRow(c core.Category) categoryRow {
	return categoryRow{
		ID:            c.ID,
		Name:          c.Name,
		Color:         c.Color,
		Type:          string(c.Type),
		SubCategories: c.Clone().SubCategories,
	}
}

func (r categoryRow) toCore() core.Category {
	subs := r.SubCategories
	if subs == nil {
		subs = []core.SubCategory{}
	}
	return core.Category{
		ID:            r.ID,
		Name:          r.Name,
		Color:         r.Color,
		Type:          core.TransactionType(r.Type),
		SubCategories: subs,
	}
}

func transactionToRow(t core.Transaction) transactionRow {
	row := transactionRow{
		ID:          t.ID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Status:      string(t.Status),
		CategoryID:  t.CategoryID,
	}
	if t.SubCategoryID != "" {
		sub := t.SubCategoryID
		row.SubCategoryID = &sub
	}
	if t.HasInstallments() {
		current, total := t.InstallmentCurrent, t.InstallmentTotal
		row.InstallmentCurrent = &current
		row.InstallmentTotal = &total
	}
	return row
}

func (r transactionRow) toCore() core.Transaction {
	t := core.Transaction{
		ID:          r.ID,
		Date:        r.Date,
		Description: r.Description,
		Amount:      r.Amount,
		Type:        core.TransactionType(r.Type),
		Status:      core.Status(r.Status),
		CategoryID:  r.CategoryID,
	}
	// Rows written before statuses existed have none.
	if t.Status == "" {
		t.Status = core.Completed
	}
	if r.SubCategoryID != nil {
		t.SubCategoryID = *r.SubCategoryID
	}
	if r.InstallmentCurrent != nil && r.InstallmentTotal != nil {
		t.InstallmentCurrent = *r.InstallmentCurrent
		t.InstallmentTotal = *r.InstallmentTotal
	}
	return t
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var rows []categoryRow
	if err := c.do(ctx, http.MethodGet, categoriesTable, url.Values{"select": {"*"}}, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	c.logger.DebugContext(ctx, "Listed categories", log.FieldCount, len(out))
	return out, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var rows []transactionRow
	if err := c.do(ctx, http.MethodGet, transactionsTable, url.Values{"select": {"*"}}, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.toCore()
	}
	c.logger.DebugContext(ctx, "Listed transactions", log.FieldCount, len(out))
	return out, nil
}

func (c *Client) SeedDefaultCategories(ctx context.Context) ([]core.Category, error) {
	seeded := core.SeedCategories(uuid.NewString)
	rows := make([]categoryRow, len(seeded))
	for i, cat := range seeded {
		rows[i] = categoryToRow(cat)
	}
	if err := c.do(ctx, http.MethodPost, categoriesTable, nil, rows, "return=minimal", nil); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	c.logger.InfoContext(ctx, "Seeded default categories", log.FieldCount, len(seeded))
	return seeded, nil
}

func (c *Client) UpsertCategory(ctx context.Context, cat core.Category) error {
	prefer := "resolution=merge-duplicates,return=minimal"
	if err := c.do(ctx, http.MethodPost, categoriesTable, nil, []categoryRow{categoryToRow(cat)}, prefer, nil); err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	c.logger.InfoContext(ctx, "Category saved", log.FieldCategoryID, cat.ID)
	return nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, categoriesTable, idFilter(id), nil, "", nil); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	c.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)
	return nil
}

// CreateTransactions posts the batch as one JSON array, which PostgREST
// inserts in a single statement.
func (c *Client) CreateTransactions(ctx context.Context, txs []core.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	rows := make([]transactionRow, len(txs))
	for i, t := range txs {
		rows[i] = transactionToRow(t)
	}
	if err := c.do(ctx, http.MethodPost, transactionsTable, nil, rows, "return=minimal", nil); err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}
	c.logger.InfoContext(ctx, "Transactions saved", log.FieldCount, len(txs))
	return nil
}

func (c *Client) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	var updated []transactionRow
	err := c.do(ctx, http.MethodPatch, transactionsTable, idFilter(t.ID), transactionToRow(t), "return=representation", &updated)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("transaction %q: %w", t.ID, core.ErrNotFound)
	}
	c.logger.InfoContext(ctx, "Transaction updated", log.FieldTransactionID, t.ID)
	return nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, transactionsTable, idFilter(id), nil, "", nil); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	c.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	return nil
}

func idFilter(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

func (c *Client) endpoint(table string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/rest/v1/" + table
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(table, query), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(payload, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(payload))
		}
		return apiErr
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

