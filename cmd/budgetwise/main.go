package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"budgetwise/internal/auth"
	"budgetwise/internal/cache"
	"budgetwise/internal/cli"
	apphttp "budgetwise/internal/http"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.ShutdownContext(logger)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	// A nil *amqp.Client must not become a non-nil Publisher.
	var events services.Publisher
	if res.Events != nil {
		events = res.Events
	}

	access, err := services.ParseStatusAccess(cfg.BudgetStatusAccess)
	if err != nil {
		logger.Error("Invalid budget status access", "error", err)
		os.Exit(1)
	}

	store := res.Store
	users := auth.NewDirectory(store, cfg.UserCacheSize, cfg.UserCacheTTL)
	caches := cache.NewManager()
	caches.Register("users", users.Cache())
	caches.StartCleanup(cfg.UserCacheTTL)
	defer caches.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Tokens:             auth.NewTokenResolver(cfg.JWTSecret, cfg.JWTIssuer),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              store.Ping,
	}, apphttp.Services{
		Budgets:    services.NewBudgetService(users, store, store, store.Expenses(), events, access),
		Incomes:    services.NewIncomeService(users, store, store.Incomes(), events),
		Expenses:   services.NewExpenseService(users, store, store.Expenses(), events),
		Categories: services.NewCategoryService(users, store, events),
		Reports:    services.NewReportService(users, store.Incomes(), store.Expenses()),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetwise server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"status_access", access,
			"events", events != nil,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
