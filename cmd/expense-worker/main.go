package main

import (
	"context"
	"os"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets/google"
	"expensetracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting expense-worker")

	exporter, err := google.New(context.Background(), google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.LogError(context.Background(), "Failed to initialize Google Sheets client", err, applog.OpStartup,
			applog.NewFields().WithComponent(applog.ComponentSheets))
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.LogError(context.Background(), "Failed to initialize AMQP client", err, applog.OpStartup, nil)
		os.Exit(1)
	}

	ctx, cancel, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close failed", applog.FieldError, err)
		}
	})

	w := worker.NewExportWorker(exporter, logger)
	if err := w.Run(ctx, amqpClient); err != nil {
		logger.LogError(ctx, "Message consumption failed", err, applog.OpExport, nil)
		cancel()
		<-done
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped")
}
