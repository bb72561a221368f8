// Package advisor asks the Gemini API for a written analysis of a month.
// It never returns an error: a missing key, a throttled call or a failed
// request each produce a fixed message instead.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"finfamily/internal/core"
	"finfamily/internal/log"
)

const (
	MissingKeyMessage  = "Erro: Chave de API do Gemini não configurada. Configure a variável de ambiente GEMINI_API_KEY."
	FailureMessage     = "Desculpe, ocorreu um erro ao tentar analisar seus dados financeiros. Verifique sua conexão ou tente novamente mais tarde."
	EmptyMessage       = "Não foi possível gerar uma análise no momento."
	RateLimitedMessage = "Muitas análises solicitadas em pouco tempo. Aguarde um minuto e tente novamente."
)

// Outcomes reported to an Observer.
const (
	OutcomeOK           = "ok"
	OutcomeUnconfigured = "unconfigured"
	OutcomeRateLimited  = "rate_limited"
	OutcomeFailed       = "failed"
	OutcomeEmpty        = "empty"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	defaultTimeout = 60 * time.Second
	temperature    = float32(0.7)
)

const systemInstruction = "Você é um especialista em finanças pessoais do Brasil. " +
	"Você entende de inflação, taxa Selic, CDI e custo de vida brasileiro. Seja objetivo."

type Observer interface {
	ObserveAdvisorCall(outcome string, elapsed time.Duration)
}

type Config struct {
	APIKey         string
	Model          string
	RatePerMinute  int
	CurrencySymbol string
	Timeout        time.Duration

	// Endpoint and HTTPClient override the Gemini base URL, mostly in tests.
	Endpoint   string
	HTTPClient *http.Client
}

type Advisor struct {
	client   *genai.Client
	model    string
	symbol   string
	timeout  time.Duration
	limiter  *rate.Limiter
	observer Observer
	logger   *log.Logger
}

// New builds an advisor. Without an API key the advisor still works and
// answers every request with MissingKeyMessage.
func New(ctx context.Context, cfg Config, observer Observer, logger *log.Logger) (*Advisor, error) {
	if logger == nil {
		logger = log.Nop()
	}
	a := &Advisor{
		model:    cfg.Model,
		symbol:   cfg.CurrencySymbol,
		timeout:  cfg.Timeout,
		observer: observer,
		logger:   logger.WithComponent(log.ComponentAdvisor),
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.symbol == "" {
		a.symbol = "R$"
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	perMinute := cfg.RatePerMinute
	if perMinute < 1 {
		perMinute = 1
	}
	a.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)

	if strings.TrimSpace(cfg.APIKey) == "" {
		a.logger.Warn("Advisor API key not configured")
		return a, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	a.client = client
	return a, nil
}

// Configured reports whether requests reach the API.
func (a *Advisor) Configured() bool { return a.client != nil }

// GenerateInsights implements ports.Advisor.
func (a *Advisor) GenerateInsights(ctx context.Context, summary core.FinancialSummary, categories []core.Category, monthLabel string) string {
	if a.client == nil {
		a.observe(OutcomeUnconfigured, 0)
		return MissingKeyMessage
	}
	if !a.limiter.Allow() {
		a.logger.WarnContext(ctx, "Advisor request throttled", log.FieldOperation, log.OpInsights)
		a.observe(OutcomeRateLimited, 0)
		return RateLimitedMessage
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Models.GenerateContent(ctx, a.model,
		genai.Text(BuildPrompt(summary, categories, monthLabel, a.symbol)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr(temperature),
		})
	elapsed := time.Since(start)
	if err != nil {
		a.logger.Fields(ctx, slog.LevelError, "Advisor request failed",
			log.NewFields().WithOperation(log.OpInsights).WithError(err))
		a.observe(OutcomeFailed, elapsed)
		return FailureMessage
	}

	text := responseText(resp)
	if text == "" {
		a.observe(OutcomeEmpty, elapsed)
		return EmptyMessage
	}
	a.logger.InfoContext(ctx, "Advisor report generated",
		log.FieldOperation, log.OpInsights,
		log.FieldYear, summary.Year,
		log.FieldMonth, summary.Month,
		log.FieldDuration, elapsed.Milliseconds())
	a.observe(OutcomeOK, elapsed)
	return text
}

func (a *Advisor) observe(outcome string, elapsed time.Duration) {
	if a.observer != nil {
		a.observer.ObserveAdvisorCall(outcome, elapsed)
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	return strings.TrimSpace(resp.Text())
}
