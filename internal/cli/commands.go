package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"finfamily/internal/advisor"
	"finfamily/internal/amqp"
	"finfamily/internal/cache"
	"finfamily/internal/config"
	"finfamily/internal/core"
	apphttp "finfamily/internal/http"
	"finfamily/internal/ledger"
	"finfamily/internal/log"
	"finfamily/internal/metrics"
	"finfamily/internal/ports"
	"finfamily/internal/summary"
)

const shutdownTimeout = 30 * time.Second

type ledgerPublisher interface {
	ports.EventPublisher
	SetObserver(o amqp.PublishObserver)
	Close() error
}

// dialPublisher connects serve to the event broker.
var dialPublisher = func(url, exchange, queue string, logger *log.Logger) (ledgerPublisher, error) {
	client, err := amqp.NewClient(url, exchange, queue, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// app is the state shared by every subcommand once the root pre-run hook
// has loaded the environment.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{now: time.Now}

	rootCmd := &cobra.Command{
		Use:   "finfamily",
		Short: "Household income and expense ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			LoadEnvFile()
			a.logger = SetupLogger(config.Load().LogLevel)
			cfg, err := LoadAndValidateConfig(a.logger)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.AddCommand(
		newServeCommand(a),
		newSummaryCommand(a),
		newAddCommand(a),
		newDeleteCommand(a),
		newCategoriesCommand(a),
		newAdviseCommand(a),
	)
	return rootCmd
}

func (a *app) openLedger(ctx context.Context, opts ledger.Options) (*Ledger, error) {
	opts.Now = a.now
	return OpenLedger(ctx, a.cfg, opts, a.logger)
}

func (a *app) month(flag string) (summary.Month, error) {
	if flag == "" {
		return summary.CurrentMonth(a.now()), nil
	}
	m, err := summary.ParseMonth(flag)
	if err != nil {
		return summary.Month{}, &core.ValidationError{Field: "month", Err: err}
	}
	return m, nil
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	m := metrics.New(prometheus.DefaultRegisterer)

	opts := ledger.Options{Observer: m}
	if cfg.AMQPURL != "" {
		client, err := dialPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, a.logger)
		if err != nil {
			// Events are best effort; the API keeps working without a broker.
			a.logger.Warn("AMQP unavailable, ledger events disabled", log.FieldError, err)
		} else {
			defer client.Close()
			client.SetObserver(m)
			opts.Publisher = client
		}
	}

	deps := apphttp.Deps{
		Observer:          m,
		Logger:            a.logger,
		Backend:           cfg.DataBackend,
		AdvisorConfigured: cfg.AdvisorConfigured(),
		ExportConfigured:  cfg.ExportConfigured(),
		Language:          cfg.Language,
		RatePerSecond:     cfg.APIRatePerSecond,
		Burst:             cfg.APIBurst,
		Now:               a.now,
		Cache:             cache.NewSummaryCache(cfg.SummaryCacheSize, cfg.SummaryCacheTTL),
	}

	l, err := a.openLedger(ctx, opts)
	switch ce, missing := IsConfigurationRequired(err); {
	case err == nil:
		deps.Ledger = l.Store
		defer func() {
			if err := l.Close(); err != nil {
				a.logger.Warn("Failed to close backend", log.FieldError, err)
			}
		}()
	case missing:
		deps.ConfigErr = ce
	default:
		return err
	}

	adv, err := advisor.New(ctx, advisor.Config{
		APIKey:         cfg.GeminiAPIKey,
		Model:          cfg.GeminiModel,
		RatePerMinute:  cfg.AdvisorRatePerMinute,
		CurrencySymbol: cfg.CurrencySymbol,
	}, m, a.logger)
	if err != nil {
		return err
	}
	deps.Advisor = adv

	caches := cache.NewManager(a.logger)
	caches.Register(deps.Cache)
	caches.StartCleanup(time.Minute)

	srv := apphttp.NewServer(deps)
	shutdownCtx, done := GracefulShutdown(a.logger, shutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	a.logger.Info("Starting finfamily server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"configuration_required", deps.Ledger == nil)
	serveErr := srv.Start(":" + cfg.Port)
	if serveErr == nil {
		<-shutdownCtx.Done()
		<-done
	}
	caches.Stop()
	return serveErr
}

func newSummaryCommand(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the summary of a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.month(month)
			if err != nil {
				return err
			}
			l, err := a.openLedger(cmd.Context(), ledger.Options{})
			if err != nil {
				return err
			}
			defer l.Close()
			printSummary(cmd.OutOrStdout(), l.Store.Summary(m), m.Label(a.cfg.Language), a.cfg.CurrencySymbol)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

func printSummary(w io.Writer, s core.FinancialSummary, label, symbol string) {
	fmt.Fprintf(w, "%s\n", label)
	fmt.Fprintf(w, "  Receitas:  %s (realizado %s, pendente %s)\n",
		core.FormatAmount(s.TotalIncome, symbol),
		core.FormatAmount(s.RealizedIncome, symbol),
		core.FormatAmount(s.PendingIncome, symbol))
	fmt.Fprintf(w, "  Despesas:  %s (realizado %s, pendente %s)\n",
		core.FormatAmount(s.TotalExpense, symbol),
		core.FormatAmount(s.RealizedExpense, symbol),
		core.FormatAmount(s.PendingExpense, symbol))
	fmt.Fprintf(w, "  Saldo:     %s (realizado %s)\n",
		core.FormatAmount(s.Balance, symbol),
		core.FormatAmount(s.RealizedBalance, symbol))
	for _, c := range s.ByCategory {
		fmt.Fprintf(w, "  - %s: %s\n", c.Name, core.FormatAmount(c.Value, symbol))
	}
}

func newAddCommand(a *app) *cobra.Command {
	var (
		draft        core.TransactionDraft
		txType       string
		status       string
		installments int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction, optionally split into monthly installments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			draft.Type = core.TransactionType(strings.ToUpper(txType))
			draft.Status = core.Status(strings.ToUpper(status))
			l, err := a.openLedger(cmd.Context(), ledger.Options{})
			if err != nil {
				return err
			}
			defer l.Close()

			created, err := l.Store.AddTransactions(cmd.Context(), []core.TransactionDraft{draft}, installments)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range created {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", t.ID, t.Date, t.Description,
					core.FormatAmount(t.Amount, a.cfg.CurrencySymbol))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&draft.Date, "date", "", "date as YYYY-MM-DD (required)")
	cmd.Flags().StringVar(&draft.Description, "description", "", "description (required)")
	cmd.Flags().StringVar(&draft.Amount, "amount", "", "positive amount (required)")
	cmd.Flags().StringVar(&txType, "type", string(core.Expense), "EXPENSE or INCOME")
	cmd.Flags().StringVar(&status, "status", "", "PENDING or COMPLETED (default COMPLETED)")
	cmd.Flags().StringVar(&draft.CategoryID, "category", "", "category id (required)")
	cmd.Flags().StringVar(&draft.SubCategoryID, "subcategory", "", "subcategory id")
	cmd.Flags().IntVar(&installments, "installments", 1, "number of monthly installments")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>",
		Short: "Delete one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := a.openLedger(cmd.Context(), ledger.Options{})
			if err != nil {
				return err
			}
			defer l.Close()
			return l.Store.DeleteTransaction(cmd.Context(), args[0])
		},
	}
}

func newCategoriesCommand(a *app) *cobra.Command {
	var txType string
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := a.openLedger(cmd.Context(), ledger.Options{})
			if err != nil {
				return err
			}
			defer l.Close()

			cats := l.Store.Categories()
			if txType != "" {
				t := core.TransactionType(strings.ToUpper(txType))
				if !t.Valid() {
					return &core.ValidationError{Field: "type", Err: core.ErrInvalidType}
				}
				cats = core.CategoriesOfType(cats, t)
			}
			out := cmd.OutOrStdout()
			for _, c := range cats {
				fmt.Fprintf(out, "%s\t%s\t%s\n", c.ID, c.Type, c.Name)
				for _, sc := range c.SubCategories {
					fmt.Fprintf(out, "  %s\t%s\n", sc.ID, sc.Name)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&txType, "type", "", "only EXPENSE or INCOME categories")
	return cmd
}

func newAdviseCommand(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "advise",
		Short: "Ask the advisor for a report on a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.month(month)
			if err != nil {
				return err
			}
			if !a.cfg.AdvisorConfigured() {
				return &core.ConfigurationError{Missing: []string{"GEMINI_API_KEY"}}
			}
			l, err := a.openLedger(cmd.Context(), ledger.Options{})
			if err != nil {
				return err
			}
			defer l.Close()

			adv, err := advisor.New(cmd.Context(), advisor.Config{
				APIKey:         a.cfg.GeminiAPIKey,
				Model:          a.cfg.GeminiModel,
				RatePerMinute:  a.cfg.AdvisorRatePerMinute,
				CurrencySymbol: a.cfg.CurrencySymbol,
			}, nil, a.logger)
			if err != nil {
				return err
			}
			report := adv.GenerateInsights(cmd.Context(), l.Store.Summary(m), l.Store.Categories(), m.Label(a.cfg.Language))
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report)
			return err
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	return cmd
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	}
	if _, ok := IsConfigurationRequired(err); ok {
		return 78
	}
	return 1
}
