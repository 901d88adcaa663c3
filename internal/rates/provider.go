package rates

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/kv"
)

const defaultPersistTimeout = 2 * time.Second

type Config struct {
	TTL            time.Duration // Memory freshness window, DefaultTTL when zero
	FetchTimeout   time.Duration // Network bound, FetchTimeout when zero
	PersistTimeout time.Duration // Durable read and write bound
	Now            func() time.Time
}

// Provider resolves the current rate table through memory, network, durable
// cache and the fallback table, in that order. Resolve never fails.
type Provider struct {
	fetcher Fetcher
	store   kv.Store // Optional
	cfg     Config

	group   singleflight.Group
	pending sync.WaitGroup

	mu       sync.Mutex
	memory   currency.Rates
	memoryAt time.Time
}

func NewProvider(fetcher Fetcher, store kv.Store, cfg Config) *Provider {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = FetchTimeout
	}

	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Provider{fetcher: fetcher, store: store, cfg: cfg}
}

// Rates returns the current table.
func (p *Provider) Rates(ctx context.Context) currency.Rates {
	return p.Resolve(ctx).Rates
}

// Resolve returns the current table tagged with the tier that produced it.
// Concurrent callers past the memory tier share one resolution.
func (p *Provider) Resolve(ctx context.Context) Result {
	if res, ok := p.fromMemory(); ok {
		return res
	}

	v, _, _ := p.group.Do("resolve", func() (any, error) {
		if res, ok := p.fromMemory(); ok {
			return res, nil
		}

		if res, ok := p.fromNetwork(ctx); ok {
			return res, nil
		}

		if res, ok := p.fromPersisted(ctx); ok {
			return res, nil
		}

		return p.fromFallback(), nil
	})

	res := v.(Result)
	res.Rates = res.Rates.Clone()

	return res
}

// Invalidate makes the next Resolve skip the memory tier.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.memoryAt = time.Time{}
}

// Wait blocks until every pending durable write has finished.
func (p *Provider) Wait() {
	p.pending.Wait()
}

func (p *Provider) fromMemory() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.memory == nil || p.memoryAt.IsZero() || p.cfg.Now().Sub(p.memoryAt) >= p.cfg.TTL {
		return Result{}, false
	}

	return Result{Rates: p.memory.Clone(), Tier: TierMemory, UpdatedAt: p.memoryAt}, true
}

func (p *Provider) fromNetwork(ctx context.Context) (Result, bool) {
	if p.fetcher == nil {
		return Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	table, err := p.fetcher.Fetch(ctx)
	if err != nil {
		slog.Warn("rate fetch failed", "error", err)
		return Result{}, false
	}

	if len(table) == 0 {
		slog.Warn("rate fetch returned an empty table")
		return Result{}, false
	}

	now := p.cfg.Now()
	table = p.adopt(table, now)
	p.persist(table, now)

	return Result{Rates: table, Tier: TierNetwork, UpdatedAt: now}, true
}

func (p *Provider) fromPersisted(ctx context.Context) (Result, bool) {
	if p.store == nil {
		return Result{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PersistTimeout)
	defer cancel()

	rawRates, err := p.store.Get(ctx, RatesKey)
	if err != nil {
		logReadError(err)
		return Result{}, false
	}

	rawTS, err := p.store.Get(ctx, RatesTSKey)
	if err != nil {
		logReadError(err)
		return Result{}, false
	}

	table, err := decodeRates(rawRates)
	if err != nil || len(table) == 0 {
		slog.Warn("discarding persisted rates", "error", err)
		return Result{}, false
	}

	ts, err := decodeTimestamp(rawTS)
	if err != nil {
		slog.Warn("discarding persisted rates", "error", err)
		return Result{}, false
	}

	table = p.adopt(table, ts)

	return Result{Rates: table, Tier: TierPersisted, UpdatedAt: ts}, true
}

// fromFallback marks memory fresh from now so the failing network is not
// retried within the freshness window.
func (p *Provider) fromFallback() Result {
	now := p.cfg.Now()
	table := p.adopt(Fallback(), now)

	return Result{Rates: table, Tier: TierFallback, UpdatedAt: now}
}

func (p *Provider) adopt(table currency.Rates, at time.Time) currency.Rates {
	table = table.Clone()

	p.mu.Lock()
	p.memory = table
	p.memoryAt = at
	p.mu.Unlock()

	return table
}

// persist writes table to the durable cache in the background. Its outcome
// is logged and otherwise discarded.
func (p *Provider) persist(table currency.Rates, at time.Time) {
	if p.store == nil {
		return
	}

	raw, err := encodeRates(table)
	if err != nil {
		slog.Warn("rates not persisted", "error", err)
		return
	}

	p.pending.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PersistTimeout)
		defer cancel()

		if err := p.store.Set(ctx, RatesKey, raw); err != nil {
			slog.Warn("rates not persisted", "error", err)
			return
		}

		if err := p.store.Set(ctx, RatesTSKey, encodeTimestamp(at)); err != nil {
			slog.Warn("rates timestamp not persisted", "error", err)
		}
	})
}

func logReadError(err error) {
	if errors.Is(err, kv.ErrNotFound) {
		slog.Debug("no persisted rates")
		return
	}

	slog.Warn("reading persisted rates failed", "error", err)
}
