// Package app holds the state shared by the screens of a client: the loaded
// transaction page, categories, the last statistics snapshot and the display
// currency. The stores stay the source of truth.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/fintrack/internal/category"
	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/kv"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
	"github.com/MrJamesThe3rd/fintrack/internal/stats"
	"github.com/MrJamesThe3rd/fintrack/internal/transaction"
)

// CurrencyKey is the durable key of the display currency preference.
const CurrencyKey = "fintrack:currency"

var ErrUnsupportedCurrency = errors.New("unsupported currency")

type RateSource interface {
	Resolve(ctx context.Context) rates.Result
	Invalidate()
}

type State struct {
	Transactions []*transaction.Transaction
	Total        int
	Page         int
	HasMore      bool

	Categories []*category.Category
	Stats      *stats.Snapshot

	Currency       string
	Rates          currency.Rates
	RatesTier      rates.Tier
	RatesUpdatedAt time.Time

	Loading bool
	Err     string // Last load failure, empty when none
}

type Coordinator struct {
	txs   *transaction.Service
	cats  *category.Service
	stats *stats.Service
	rates RateSource
	prefs kv.Store // Optional

	mu         sync.Mutex
	state      State
	loading    int
	filter     transaction.ListFilter
	loaded     bool // a first page has been fetched
	statsMonth string
}

func New(
	txs *transaction.Service,
	cats *category.Service,
	st *stats.Service,
	rateSource RateSource,
	prefs kv.Store,
	defaultCurrency string,
) *Coordinator {
	if !currency.IsSupported(defaultCurrency) {
		defaultCurrency = currency.Base
	}

	return &Coordinator{
		txs:   txs,
		cats:  cats,
		stats: st,
		rates: rateSource,
		prefs: prefs,
		state: State{Currency: defaultCurrency, Page: 1, HasMore: true},
	}
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Transactions = cloneAll(c.state.Transactions, (*transaction.Transaction).Clone)
	s.Categories = cloneAll(c.state.Categories, (*category.Category).Clone)
	s.Rates = c.state.Rates.Clone()

	if c.state.Stats != nil {
		snap := *c.state.Stats
		snap.ByCategory = slices.Clone(snap.ByCategory)
		snap.Daily = slices.Clone(snap.Daily)
		s.Stats = &snap
	}

	return s
}

// Display converts amount from the base currency into the selected one and
// formats it.
func (c *Coordinator) Display(amount decimal.Decimal) string {
	c.mu.Lock()
	code, table := c.state.Currency, c.state.Rates
	c.mu.Unlock()

	return currency.Display(amount, code, table)
}

// Convert is Display without formatting.
func (c *Coordinator) Convert(amount decimal.Decimal) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return currency.Convert(amount, c.state.Currency, c.state.Rates)
}

// FromDisplay turns an amount typed in the selected currency into the base
// currency for storage.
func (c *Coordinator) FromDisplay(amount decimal.Decimal) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	return currency.ToBase(amount, c.state.Currency, c.state.Rates)
}

// LoadCurrency restores the persisted display currency, if any.
func (c *Coordinator) LoadCurrency(ctx context.Context) string {
	if c.prefs != nil {
		code, err := c.prefs.Get(ctx, CurrencyKey)

		switch {
		case err == nil && currency.IsSupported(code):
			c.mu.Lock()
			c.state.Currency = code
			c.mu.Unlock()
		case err != nil && !errors.Is(err, kv.ErrNotFound):
			slog.Warn("reading currency preference failed", "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Currency
}

// SetCurrency selects the display currency and persists the choice. A failed
// write is logged; the selection still applies.
func (c *Coordinator) SetCurrency(ctx context.Context, code string) error {
	if !currency.IsSupported(code) {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}

	c.mu.Lock()
	c.state.Currency = code
	c.mu.Unlock()

	if c.prefs != nil {
		if err := c.prefs.Set(ctx, CurrencyKey, code); err != nil {
			slog.Warn("persisting currency preference failed", "error", err)
		}
	}

	return nil
}

func (c *Coordinator) LoadRates(ctx context.Context) rates.Result {
	res := c.rates.Resolve(ctx)

	c.mu.Lock()
	c.state.Rates = res.Rates
	c.state.RatesTier = res.Tier
	c.state.RatesUpdatedAt = res.UpdatedAt
	c.mu.Unlock()

	return res
}

// LoadTransactions replaces the loaded list with the first page matching
// filter.
func (c *Coordinator) LoadTransactions(ctx context.Context, filter transaction.ListFilter) error {
	c.mu.Lock()
	c.state.Err = ""
	c.mu.Unlock()

	return c.loadTransactions(ctx, filter)
}

func (c *Coordinator) loadTransactions(ctx context.Context, filter transaction.ListFilter) error {
	filter.Page = 1
	filter.PageSize = transaction.DefaultPageSize

	c.begin()

	c.mu.Lock()
	c.filter = filter
	c.mu.Unlock()

	page, err := c.txs.List(ctx, filter)
	if err != nil {
		return c.fail(fmt.Errorf("loading transactions: %w", err))
	}

	c.mu.Lock()
	c.state.Transactions = page.Items
	c.state.Total = page.Total
	c.state.Page = 1
	c.state.HasMore = page.HasMore
	c.loaded = true
	c.mu.Unlock()

	c.end()

	return nil
}

// LoadMore appends the next page of the last filter. It does nothing while a
// load is in flight or when no pages remain. Before any first page it loads
// page 1 instead.
func (c *Coordinator) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	if c.loading > 0 || !c.state.HasMore {
		c.mu.Unlock()
		return nil
	}

	if !c.loaded {
		filter := c.filter
		c.mu.Unlock()

		return c.LoadTransactions(ctx, filter)
	}

	filter := c.filter
	filter.Page = c.state.Page + 1
	filter.PageSize = transaction.DefaultPageSize
	c.loading++
	c.state.Loading = true
	c.mu.Unlock()

	page, err := c.txs.List(ctx, filter)
	if err != nil {
		return c.fail(fmt.Errorf("loading more transactions: %w", err))
	}

	c.mu.Lock()
	c.state.Transactions = append(c.state.Transactions, page.Items...)
	c.state.Total = page.Total
	c.state.Page = filter.Page
	c.state.HasMore = page.HasMore
	c.mu.Unlock()

	c.end()

	return nil
}

func (c *Coordinator) AddTransaction(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error) {
	tx, err := c.txs.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state.Transactions = slices.Insert(c.state.Transactions, 0, tx.Clone())
	c.state.Total++
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return tx, nil
}

func (c *Coordinator) UpdateTransaction(ctx context.Context, id string, params transaction.UpdateParams) (*transaction.Transaction, error) {
	tx, err := c.txs.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if i := slices.IndexFunc(c.state.Transactions, func(t *transaction.Transaction) bool { return t.ID == id }); i >= 0 {
		c.state.Transactions[i] = tx.Clone()
	}
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return tx, nil
}

func (c *Coordinator) RemoveTransaction(ctx context.Context, id string) error {
	if err := c.txs.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	before := len(c.state.Transactions)
	c.state.Transactions = slices.DeleteFunc(c.state.Transactions, func(t *transaction.Transaction) bool { return t.ID == id })

	if len(c.state.Transactions) < before && c.state.Total > 0 {
		c.state.Total--
	}
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return nil
}

func (c *Coordinator) LoadCategories(ctx context.Context) error {
	cats, err := c.cats.List(ctx)
	if err != nil {
		return c.record(fmt.Errorf("loading categories: %w", err))
	}

	c.mu.Lock()
	c.state.Categories = cats
	c.mu.Unlock()

	return nil
}

func (c *Coordinator) AddCategory(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	cat, err := c.cats.Create(ctx, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.state.Categories = append(c.state.Categories, cat.Clone())
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return cat, nil
}

func (c *Coordinator) UpdateCategory(ctx context.Context, id string, params category.UpdateParams) (*category.Category, error) {
	cat, err := c.cats.Update(ctx, id, params)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if i := slices.IndexFunc(c.state.Categories, func(x *category.Category) bool { return x.ID == id }); i >= 0 {
		c.state.Categories[i] = cat.Clone()
	}
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return cat, nil
}

// RemoveCategory deletes the category. Transactions naming it are kept.
func (c *Coordinator) RemoveCategory(ctx context.Context, id string) error {
	if err := c.cats.Delete(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.Categories = slices.DeleteFunc(c.state.Categories, func(x *category.Category) bool { return x.ID == id })
	c.mu.Unlock()

	c.recomputeStats(ctx)

	return nil
}

// LoadStats computes the snapshot of month (YYYY-MM, empty for the current
// month) and remembers the month for later recomputation.
func (c *Coordinator) LoadStats(ctx context.Context, month string) (*stats.Snapshot, error) {
	snap, err := c.stats.Month(ctx, month)
	if err != nil {
		return nil, c.record(fmt.Errorf("loading stats: %w", err))
	}

	c.mu.Lock()
	c.statsMonth = month
	c.state.Stats = snap
	c.mu.Unlock()

	return snap, nil
}

// Refresh reloads transactions, categories, statistics and rates
// concurrently, skipping the rates memory tier.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	filter := c.filter
	month := c.statsMonth
	c.state.Err = ""
	c.mu.Unlock()

	c.rates.Invalidate()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.loadTransactions(ctx, filter) })
	g.Go(func() error { return c.LoadCategories(ctx) })
	g.Go(func() error {
		_, err := c.LoadStats(ctx, month)
		return err
	})
	g.Go(func() error {
		c.LoadRates(ctx)
		return nil
	})

	return g.Wait()
}

// recomputeStats refreshes the stats snapshot after a mutation, once one has
// been loaded. A failure is recorded in the state only.
func (c *Coordinator) recomputeStats(ctx context.Context) {
	c.mu.Lock()
	loaded := c.state.Stats != nil
	month := c.statsMonth
	c.mu.Unlock()

	if !loaded {
		return
	}

	if _, err := c.LoadStats(ctx, month); err != nil {
		slog.Warn("recomputing stats failed", "error", err)
	}
}

func (c *Coordinator) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading++
	c.state.Loading = true
}

func (c *Coordinator) end() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading--
	c.state.Loading = c.loading > 0
}

// fail ends a load and records err.
func (c *Coordinator) fail(err error) error {
	c.end()
	return c.record(err)
}

func (c *Coordinator) record(err error) error {
	c.mu.Lock()
	c.state.Err = err.Error()
	c.mu.Unlock()

	return err
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}

	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}

	return out
}
