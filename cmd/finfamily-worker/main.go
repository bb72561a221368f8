package main

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"finfamily/internal/amqp"
	"finfamily/internal/backend"
	"finfamily/internal/cli"
	"finfamily/internal/config"
	"finfamily/internal/log"
	"finfamily/internal/metrics"
	"finfamily/internal/ports"
	gsheet "finfamily/internal/sheets/google"
	mem "finfamily/internal/sheets/memory"
	"finfamily/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(config.Load().LogLevel)
	logger.Info("Starting finfamily-worker")

	if err := run(logger); err != nil {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(cli.ExitCode(err))
	}
}

func run(logger *log.Logger) error {
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}
	if missing := cfg.RequiredState(); missing != nil {
		return missing
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), time.Minute)
	defer cancelStart()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(startCtx, bcfg)
	if err != nil {
		return err
	}
	defer res.Close()

	// Without a spreadsheet the worker runs dry and keeps rows in memory,
	// which is enough to check the event flow locally.
	var exporter ports.SummaryExporter
	if cfg.ExportConfigured() {
		client, err := gsheet.New(startCtx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		}, logger)
		if err != nil {
			return err
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		exporter = mem.New(cfg.GoogleSheetName)
		logger.Info("Google Sheets disabled, exporting to memory")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	w := worker.NewExportWorker(res.Persistence, exporter, worker.Options{
		Observer: m,
		Logger:   logger,
	})

	var source worker.EventSource
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		source = client
	} else {
		logger.Info("Skipping AMQP consumption - no AMQP_URL provided")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	// Catch up on anything missed while the worker was down.
	if err := w.StartupExport(ctx); err != nil {
		logger.Error("Startup export failed", log.FieldError, err)
	}

	err = w.Run(ctx, source, cfg.ExportSchedule)
	if err == nil {
		<-done
	}
	return err
}
