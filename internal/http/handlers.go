package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"finfamily/internal/core"
	"finfamily/internal/summary"
)

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

// handleReady fails while the process waits for backend configuration.
func (s *Server) handleReady(c echo.Context) error {
	if s.deps.Ledger == nil {
		return s.deps.ConfigErr
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Backend               string   `json:"backend"`
	ConfigurationRequired bool     `json:"configurationRequired"`
	Missing               []string `json:"missing,omitempty"`
	AdvisorConfigured     bool     `json:"advisorConfigured"`
	ExportConfigured      bool     `json:"exportConfigured"`
	Version               uint64   `json:"version"`
	Categories            int      `json:"categories"`
	Transactions          int      `json:"transactions"`
}

func (s *Server) handleStatus(c echo.Context) error {
	resp := statusResponse{
		Backend:           s.deps.Backend,
		AdvisorConfigured: s.deps.AdvisorConfigured,
		ExportConfigured:  s.deps.ExportConfigured,
	}
	if s.deps.Ledger == nil {
		resp.ConfigurationRequired = true
		resp.Missing = s.deps.ConfigErr.Missing
		return c.JSON(http.StatusOK, resp)
	}
	resp.Version = s.deps.Ledger.Version()
	resp.Categories = len(s.deps.Ledger.Categories())
	resp.Transactions = len(s.deps.Ledger.Transactions())
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListCategories(c echo.Context) error {
	cats := s.deps.Ledger.Categories()
	if t := core.TransactionType(c.QueryParam("type")); t != "" {
		if !t.Valid() {
			return &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
		}
		cats = core.CategoriesOfType(cats, t)
	}
	return c.JSON(http.StatusOK, cats)
}

func (s *Server) handleReplaceCategories(c echo.Context) error {
	var next []core.Category
	if err := decodeJSON(c, &next); err != nil {
		return err
	}
	saved, err := s.deps.Ledger.ReplaceCategories(c.Request().Context(), next)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, saved)
}

// handleListTransactions returns the ledger in stored order, optionally
// narrowed to ?month=YYYY-MM.
func (s *Server) handleListTransactions(c echo.Context) error {
	txs := s.deps.Ledger.Transactions()
	if c.QueryParam("month") == "" {
		return c.JSON(http.StatusOK, txs)
	}
	month, err := parseMonthParam(c, s.now())
	if err != nil {
		return err
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if month.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateTransactions(c echo.Context) error {
	var req createTransactionRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	created, err := s.deps.Ledger.AddTransactions(c.Request().Context(), []core.TransactionDraft{req.draft()}, req.count())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(c echo.Context) error {
	var patch core.TransactionPatch
	if err := decodeJSON(c, &patch); err != nil {
		return err
	}
	patch.ID = c.Param("id")
	updated, err := s.deps.Ledger.UpdateTransaction(c.Request().Context(), patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(c echo.Context) error {
	if err := s.deps.Ledger.DeleteTransaction(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) summaryFor(month summary.Month) core.FinancialSummary {
	l := s.deps.Ledger
	sum := s.deps.Cache.GetOrCompute(l.Version(), month, func() core.FinancialSummary {
		return l.Summary(month)
	})
	if s.deps.Observer != nil {
		s.deps.Observer.SetSummaryCacheItems(s.deps.Cache.Size())
	}
	return sum
}

type summaryResponse struct {
	core.FinancialSummary
	Label string `json:"label"`
}

func (s *Server) handleSummary(c echo.Context) error {
	month, err := parseMonthParam(c, s.now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaryResponse{
		FinancialSummary: s.summaryFor(month),
		Label:            month.Label(s.deps.Language),
	})
}

type insightsResponse struct {
	Month  string `json:"month"`
	Label  string `json:"label"`
	Report string `json:"report"`
}

// handleInsights always answers 200 when the ledger is available: advisor
// problems come back as a fixed text in the report.
func (s *Server) handleInsights(c echo.Context) error {
	if s.deps.Advisor == nil {
		return &core.ConfigurationError{Missing: []string{"GEMINI_API_KEY"}}
	}
	month, err := parseMonthParam(c, s.now())
	if err != nil {
		return err
	}
	label := month.Label(s.deps.Language)
	report := s.deps.Advisor.GenerateInsights(c.Request().Context(),
		s.summaryFor(month), s.deps.Ledger.Categories(), label)
	return c.JSON(http.StatusOK, insightsResponse{
		Month:  month.String(),
		Label:  label,
		Report: report,
	})
}
