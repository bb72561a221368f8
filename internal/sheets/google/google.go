package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finfamily/internal/core"
	"finfamily/internal/log"
	"finfamily/internal/sheets"
)

type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
}

// Client exports month summaries to a spreadsheet, one "<year> <base>"
// sheet per year.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger

	mu     sync.Mutex
	known  map[string]bool
	header []any
}

var _ sheets.Exporter = (*Client)(nil)

// New creates a client authenticated with a service account. Inline JSON
// wins over the file; without either, application default credentials are
// tried.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, &core.ConfigurationError{Missing: []string{"GOOGLE_SPREADSHEET_ID"}}
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, id, cfg.SheetName, logger), nil
}

// NewWithService wraps an existing service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetBase string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		logger:        logger.WithComponent(log.ComponentSheets),
		known:         make(map[string]bool),
		header:        sheets.Header,
	}
}

func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	if logger == nil {
		logger = log.Nop()
	}
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	opts := []goption.ClientOption{goption.WithScopes(gsheet.SpreadsheetsScope)}
	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline service account credentials")
		opts = append(opts, goption.WithCredentialsJSON([]byte(serviceAccountJSON)))
	case serviceAccountFile != "":
		credentialsJSON, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		logger.DebugContext(ctx, "Read service account file", "path", serviceAccountFile)
		opts = append(opts, goption.WithCredentialsJSON(credentialsJSON))
	default:
		logger.InfoContext(ctx, "No service account configured, using application default credentials")
	}

	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// ExportSummary writes the month row. The write is skipped when the row
// already holds the same values.
func (c *Client) ExportSummary(ctx context.Context, s core.FinancialSummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := sheets.ValidMonth(s); err != nil {
		return err
	}

	name := sheets.SheetName(c.sheetBase, s.Year)
	if err := c.ensureSheet(ctx, name); err != nil {
		return err
	}

	rng := sheets.RowRange(name, s.Month)
	row := sheets.Row(s)

	current, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}
	if sameRow(current.Values, row) {
		c.logger.DebugContext(ctx, "Summary row unchanged", log.FieldSheetsRef, rng)
		return nil
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}

	c.logger.InfoContext(ctx, "Exported month summary",
		log.FieldSheetsRef, rng,
		log.FieldYear, s.Year,
		log.FieldMonth, s.Month)
	return nil
}

// ensureSheet creates the year sheet with its header row when missing.
// Known sheet names are remembered for the life of the client.
func (c *Client) ensureSheet(ctx context.Context, name string) error {
	c.mu.Lock()
	known := c.known[name]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet %s: %w", c.spreadsheetID, err)
	}
	if !hasSheet(ss, name) {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: name},
				},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}

		headerRange := fmt.Sprintf("%s!A1:I1", name)
		vr := &gsheet.ValueRange{Values: [][]any{c.header}}
		if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
			ValueInputOption("RAW").Context(ctx).Do(); err != nil {
			return fmt.Errorf("write header %s: %w", headerRange, err)
		}
		c.logger.InfoContext(ctx, "Created summary sheet", log.FieldSheetsRef, name)
	}

	c.mu.Lock()
	c.known[name] = true
	c.mu.Unlock()
	return nil
}

func hasSheet(ss *gsheet.Spreadsheet, name string) bool {
	if ss == nil {
		return false
	}
	for _, sh := range ss.Sheets {
		if sh != nil && sh.Properties != nil && sh.Properties.Title == name {
			return true
		}
	}
	return false
}
