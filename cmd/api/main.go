package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fintrack/internal/app"
	"github.com/MrJamesThe3rd/fintrack/internal/backend"
	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/config"
	"github.com/MrJamesThe3rd/fintrack/internal/export"
	fintrackHttp "github.com/MrJamesThe3rd/fintrack/internal/http"
	categoryHandler "github.com/MrJamesThe3rd/fintrack/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/fintrack/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/fintrack/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/fintrack/internal/http/matching"
	moneyHandler "github.com/MrJamesThe3rd/fintrack/internal/http/money"
	txHandler "github.com/MrJamesThe3rd/fintrack/internal/http/transaction"
	"github.com/MrJamesThe3rd/fintrack/internal/importer"
	"github.com/MrJamesThe3rd/fintrack/internal/importer/bank"
	"github.com/MrJamesThe3rd/fintrack/internal/importer/native"
	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler).With("app", cfg.App.Name))
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := backend.Open(ctx, cfg, time.Now())
	if err != nil {
		return err
	}
	defer b.Close()

	var (
		transactionService = transaction.NewService(b.Transactions)
		categoryService    = category.NewService(b.Categories)
		statsService       = stats.NewService(transactionService, categoryService, time.Local, nil)
		exportService      = export.NewService(transactionService)
		rateProvider       = rates.NewProvider(
			rates.NewHTTPFetcher(cfg.Rates.URL, nil),
			b.Cache,
			rates.Config{TTL: cfg.Rates.TTL, FetchTimeout: cfg.Rates.Timeout},
		)
		coordinator     = app.New(transactionService, categoryService, statsService, rateProvider, b.Cache, cfg.Currency.Default)
		matchingService = matching.NewService(b.Rules)
		importService   = importer.NewService(transactionService, matchingService, rateProvider, map[importer.Format]importer.Parser{
			importer.FormatNative: native.NewParser(),
			importer.FormatBank:   bank.NewParser(),
		})
	)

	defer rateProvider.Wait()

	coordinator.LoadCurrency(ctx)

	var (
		transactionH = txHandler.NewHandler(transactionService, statsService, rateProvider)
		categoryH    = categoryHandler.NewHandler(categoryService)
		moneyH       = moneyHandler.NewHandler(coordinator)
		exportH      = exportHandler.NewHandler(exportService, rateProvider)
		importH      = importHandler.NewHandler(importService)
		matchingH    = matchingHandler.NewHandler(matchingService)
	)

	router := fintrackHttp.New(
		fintrackHttp.Options{
			AllowedOrigins:    cfg.Server.AllowedOrigins,
			Timeout:           cfg.Server.Timeout,
			RequestsPerSecond: cfg.Server.RateLimit,
			Burst:             cfg.Server.RateBurst,
		},
		transactionH, categoryH, moneyH, exportH, importH, matchingH,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", server.Addr, "store", cfg.Store.Backend, "cache", cfg.Cache.Backend)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
