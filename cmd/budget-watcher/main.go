package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetwise/internal/auth"
	"budgetwise/internal/backend"
	"budgetwise/internal/cli"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
	"budgetwise/internal/worker"
)

const statsInterval = 5 * time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting budget-watcher", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if !cfg.AMQPEnabled() {
		logger.Error("budget-watcher needs AMQP_URL")
		os.Exit(1)
	}
	if cfg.DataBackend != backend.SQLiteBackend.String() {
		logger.Warn("Memory backend is private to this process; budgets written by the server will not be visible",
			"backend", cfg.DataBackend)
	}

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()
	if res.Events == nil {
		logger.Error("AMQP broker unreachable, nothing to consume")
		os.Exit(1)
	}

	store := res.Store
	users := auth.NewDirectory(store, cfg.UserCacheSize, cfg.UserCacheTTL)
	// The watcher only reads, so it never publishes.
	budgets := services.NewBudgetService(users, store, store, store.Expenses(), nil, services.StatusAccessOwner)
	watcher := worker.NewBudgetWatcher(budgets, nil)

	go func() {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st := watcher.Stats()
				logger.Info("Budget watcher stats",
					log.FieldComponent, log.ComponentWorker,
					"processed", st.Processed,
					"skipped", st.Skipped,
					"overspent", st.Overspent)
			}
		}
	}()

	err := res.Events.ConsumeLedgerEvents(ctx, watcher.HandleLedgerEvent)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Ledger event consumption failed", "error", err)
		os.Exit(1)
	}

	st := watcher.Stats()
	logger.Info("budget-watcher stopped",
		"processed", st.Processed,
		"skipped", st.Skipped,
		"overspent", st.Overspent)
}
