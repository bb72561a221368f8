// Package worker keeps the spreadsheet export in step with the ledger. It
// reacts to ledger events and also exports the previous month on a cron
// schedule, which covers events lost while the worker was down.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"finfamily/internal/amqp"
	"finfamily/internal/core"
	"finfamily/internal/ledger"
	"finfamily/internal/log"
	"finfamily/internal/ports"
	"finfamily/internal/summary"
)

// Export triggers reported to the observer.
const (
	TriggerEvent    = "event"
	TriggerSchedule = "schedule"
	TriggerStartup  = "startup"
	TriggerManual   = "manual"
)

type ExportObserver interface {
	ObserveExport(trigger string, err error)
}

// EventSource delivers ledger events until ctx is cancelled.
type EventSource interface {
	ConsumeLedgerEvents(ctx context.Context, handler amqp.Handler) error
}

type Options struct {
	Observer ExportObserver
	Logger   *log.Logger
	Now      func() time.Time
}

// ExportWorker reloads the ledger from the persistence port and writes the
// summaries of affected months. Exports are serialized.
type ExportWorker struct {
	ledger   *ledger.Store
	exporter ports.SummaryExporter
	observer ExportObserver
	logger   *log.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewExportWorker(port ports.Persistence, exporter ports.SummaryExporter, opts Options) *ExportWorker {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &ExportWorker{
		ledger:   ledger.New(port, ledger.Options{Logger: logger, ReadOnly: true}),
		exporter: exporter,
		observer: opts.Observer,
		logger:   logger.WithComponent(log.ComponentWorker),
		now:      now,
	}
}

// HandleLedgerEvent exports every month named by the event. Events without
// months, such as a category replacement, refresh the current month since
// category names and colors show up in the summary.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, ev core.LedgerEvent) error {
	months := make([]summary.Month, 0, len(ev.Months))
	for _, m := range ev.Months {
		months = append(months, summary.Month{Year: m.Year, Month: time.Month(m.Month)})
	}
	if len(months) == 0 {
		months = append(months, summary.CurrentMonth(w.now()))
	}

	w.logger.InfoContext(ctx, "Processing ledger event",
		log.FieldEventKind, ev.Kind,
		log.FieldCount, len(ev.IDs))

	return w.export(ctx, TriggerEvent, months...)
}

// ExportMonth reloads the ledger and exports a single month.
func (w *ExportWorker) ExportMonth(ctx context.Context, month summary.Month) error {
	return w.export(ctx, TriggerManual, month)
}

// ExportPreviousMonth is the scheduled job: the month before now is final
// by the time it runs.
func (w *ExportWorker) ExportPreviousMonth(ctx context.Context) error {
	return w.export(ctx, TriggerSchedule, summary.CurrentMonth(w.now()).Shift(-1))
}

// StartupExport refreshes the current and previous month when the worker
// starts, in case events were missed while it was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	current := summary.CurrentMonth(w.now())
	return w.export(ctx, TriggerStartup, current.Shift(-1), current)
}

func (w *ExportWorker) export(ctx context.Context, trigger string, months ...summary.Month) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	if err := w.ledger.Load(ctx); err != nil {
		w.observe(trigger, err)
		return fmt.Errorf("reload ledger: %w", err)
	}

	var errs []error
	for _, m := range months {
		s := w.ledger.Summary(m)
		err := w.exporter.ExportSummary(ctx, s)
		w.observe(trigger, err)
		if err != nil {
			w.logger.Fields(ctx, slog.LevelError, "Failed to export month summary",
				log.NewFields().WithOperation(log.OpExport).WithMonth(m.Year, int(m.Month)).WithError(err))
			errs = append(errs, fmt.Errorf("export %s: %w", m, err))
			continue
		}
		w.logger.InfoContext(ctx, "Exported month summary",
			log.FieldOperation, log.OpExport,
			log.FieldYear, m.Year,
			log.FieldMonth, int(m.Month),
			"trigger", trigger,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
	return errors.Join(errs...)
}

func (w *ExportWorker) observe(trigger string, err error) {
	if w.observer != nil {
		w.observer.ObserveExport(trigger, err)
	}
}

// Run starts the cron schedule and, when source is not nil, the event
// consumer. It returns when ctx is cancelled or the consumer fails.
func (w *ExportWorker) Run(ctx context.Context, source EventSource, schedule string) error {
	sched, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("parse export schedule %q: %w", schedule, err)
	}

	c := cron.New()
	c.Schedule(sched, cron.FuncJob(func() {
		if err := w.ExportPreviousMonth(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Scheduled export failed", log.FieldError, err)
		}
	}))
	c.Start()
	defer func() {
		<-c.Stop().Done()
	}()
	w.logger.InfoContext(ctx, "Export schedule started",
		"schedule", schedule,
		"next_run", sched.Next(w.now()))

	g, gctx := errgroup.WithContext(ctx)
	if source != nil {
		g.Go(func() error {
			return source.ConsumeLedgerEvents(gctx, w.HandleLedgerEvent)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
