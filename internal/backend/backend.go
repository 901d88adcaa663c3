// Package backend builds the repositories and the durable cache selected by
// configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/fintrack/internal/apiclient"
	"github.com/MrJamesThe3rd/fintrack/internal/category"
	catstore "github.com/MrJamesThe3rd/fintrack/internal/category/store"
	"github.com/MrJamesThe3rd/fintrack/internal/config"
	"github.com/MrJamesThe3rd/fintrack/internal/database"
	"github.com/MrJamesThe3rd/fintrack/internal/kv"
	"github.com/MrJamesThe3rd/fintrack/internal/matching"
	matchstore "github.com/MrJamesThe3rd/fintrack/internal/matching/store"
	"github.com/MrJamesThe3rd/fintrack/internal/seed"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
	txstore "github.com/MrJamesThe3rd/fintrack/internal/transaction/store"
)

type Backend struct {
	Transactions transaction.Repository
	Categories   category.Repository
	Rules        matching.Repository
	Cache        kv.Store

	closers []io.Closer
}

// Close releases every connection opened by Open.
func (b *Backend) Close() error {
	var errs []error

	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}

	return errors.Join(errs...)
}

// Open wires the store named by STORE_BACKEND and the cache named by
// CACHE_BACKEND. now anchors the demo data when seeding.
func Open(ctx context.Context, cfg *config.Config, now time.Time) (*Backend, error) {
	b := &Backend{}

	if err := b.openStore(ctx, cfg, now); err != nil {
		b.Close()
		return nil, err
	}

	if err := b.openCache(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

func (b *Backend) openStore(ctx context.Context, cfg *config.Config, now time.Time) error {
	switch cfg.Store.Backend {
	case "postgres":
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		b.closers = append(b.closers, db)
		b.Transactions = txstore.NewPostgres(db)
		b.Categories = catstore.NewPostgres(db)
		b.Rules = matchstore.NewPostgres(db)

		if cfg.Store.Seed {
			return SeedIfEmpty(ctx, b.Transactions, b.Categories, now)
		}
	case "remote":
		client := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
		b.Transactions = apiclient.NewTransactions(client)
		b.Categories = apiclient.NewCategories(client)
		b.Rules = matchstore.NewMemory()
	default:
		var (
			txs  []*transaction.Transaction
			cats []*category.Category
		)

		if cfg.Store.Seed {
			txs, cats = seed.Transactions(now), seed.Categories()
		}

		b.Transactions = txstore.NewMemory(txs...)
		b.Categories = catstore.NewMemory(cats...)
		b.Rules = matchstore.NewMemory()
	}

	slog.Info("store ready", "backend", cfg.Store.Backend)

	return nil
}

func (b *Backend) openCache(ctx context.Context, cfg *config.Config) error {
	switch cfg.Cache.Backend {
	case "redis":
		client, err := kv.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}

		b.closers = append(b.closers, client)
		b.Cache = kv.NewRedis(client)
	case "sqlite":
		db, err := database.OpenSQLite(cfg.Cache.SQLitePath)
		if err != nil {
			return err
		}

		b.closers = append(b.closers, db)
		b.Cache = kv.NewSQLite(db)
	default:
		b.Cache = kv.NewMemory()
	}

	slog.Info("cache ready", "backend", cfg.Cache.Backend)

	return nil
}

// SeedIfEmpty loads the demo data into empty repositories. Repositories that
// already hold records are left alone.
func SeedIfEmpty(ctx context.Context, txs transaction.Repository, cats category.Repository, now time.Time) error {
	existing, err := cats.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("checking categories: %w", err)
	}

	if len(existing) == 0 {
		for _, c := range seed.Categories() {
			if err := cats.CreateCategory(ctx, c); err != nil {
				return fmt.Errorf("seeding category %s: %w", c.Name, err)
			}
		}
	}

	page, err := txs.ListTransactions(ctx, transaction.ListFilter{PageSize: 1})
	if err != nil {
		return fmt.Errorf("checking transactions: %w", err)
	}

	if page.Total == 0 {
		for _, tx := range seed.Transactions(now) {
			if err := txs.CreateTransaction(ctx, tx); err != nil {
				return fmt.Errorf("seeding transaction: %w", err)
			}
		}
	}

	return nil
}
