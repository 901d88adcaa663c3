package rates_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fintrack/internal/currency"
	"github.com/MrJamesThe3rd/fintrack/internal/kv"
	"github.com/MrJamesThe3rd/fintrack/internal/rates"
)

type fakeFetcher struct {
	calls atomic.Int32
	table currency.Rates
	err   error
	block bool // Wait for ctx to expire
}

func (f *fakeFetcher) Fetch(ctx context.Context) (currency.Rates, error) {
	f.calls.Add(1)

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if f.err != nil {
		return nil, f.err
	}

	return f.table, nil
}

// blockingStore never completes a write until release is closed.
type blockingStore struct {
	*kv.Memory
	release chan struct{}
}

func (s *blockingStore) Set(ctx context.Context, key, value string) error {
	<-s.release
	return s.Memory.Set(ctx, key, value)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errors.New("disk gone") }
func (failingStore) Set(context.Context, string, string) error   { return errors.New("disk gone") }

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)
}

var t0 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func live() currency.Rates {
	return currency.Rates{
		"USD": decimal.RequireFromString("1.0001"),
		"EUR": decimal.RequireFromString("0.9"),
		"JPY": decimal.RequireFromString("150"),
	}
}

func TestProvider_NetworkThenMemory(t *testing.T) {
	clk := &clock{t: t0}
	fetcher := &fakeFetcher{table: live()}
	store := kv.NewMemory()
	p := rates.NewProvider(fetcher, store, rates.Config{Now: clk.Now})

	res := p.Resolve(context.Background())
	assert.Equal(t, rates.TierNetwork, res.Tier)
	assert.True(t, decimal.RequireFromString("0.9").Equal(res.Rates["EUR"]))
	assert.True(t, decimal.NewFromInt(1).Equal(res.Rates["USD"]), "base must be pinned to 1")

	p.Wait()

	raw, err := store.Get(context.Background(), rates.RatesKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"USD":1,"EUR":0.9,"JPY":150}`, raw)

	ts, err := store.Get(context.Background(), rates.RatesTSKey)
	require.NoError(t, err)
	assert.Equal(t, "1710072000000", ts)

	clk.Advance(59 * time.Minute)

	res = p.Resolve(context.Background())
	assert.Equal(t, rates.TierMemory, res.Tier)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	clk.Advance(time.Minute)

	res = p.Resolve(context.Background())
	assert.Equal(t, rates.TierNetwork, res.Tier)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestProvider_FallbackWithoutDurableCache(t *testing.T) {
	clk := &clock{t: t0}
	fetcher := &fakeFetcher{block: true}
	p := rates.NewProvider(fetcher, kv.NewMemory(), rates.Config{
		FetchTimeout: 50 * time.Millisecond,
		Now:          clk.Now,
	})

	start := time.Now()
	res := p.Resolve(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, rates.TierFallback, res.Tier)
	assert.Equal(t, rates.Fallback(), res.Rates)
	assert.Less(t, elapsed, time.Second)

	// Fallback counts as fresh: no new network attempt inside the window.
	clk.Advance(30 * time.Minute)

	res = p.Resolve(context.Background())
	assert.Equal(t, rates.TierMemory, res.Tier)
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestProvider_PersistedTier(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: t0}
	store := kv.NewMemory()

	stale := t0.Add(-48 * time.Hour)
	require.NoError(t, store.Set(ctx, rates.RatesKey, `{"USD":1,"EUR":0.95}`))
	require.NoError(t, store.Set(ctx, rates.RatesTSKey, "1709899200000"))

	p := rates.NewProvider(&fakeFetcher{err: errors.New("offline")}, store, rates.Config{Now: clk.Now})

	res := p.Resolve(ctx)
	assert.Equal(t, rates.TierPersisted, res.Tier)
	assert.True(t, stale.Equal(res.UpdatedAt))
	assert.True(t, decimal.RequireFromString("0.95").Equal(res.Rates["EUR"]))

	// Adopted with its stored age, so the next call tries the network again.
	res = p.Resolve(ctx)
	assert.Equal(t, rates.TierPersisted, res.Tier)
}

func TestProvider_InvalidResponsesFallThrough(t *testing.T) {
	for name, fetcher := range map[string]*fakeFetcher{
		"Error":      {err: rates.ErrInvalidResponse},
		"EmptyTable": {table: currency.Rates{}},
	} {
		t.Run(name, func(t *testing.T) {
			p := rates.NewProvider(fetcher, failingStore{}, rates.Config{Now: (&clock{t: t0}).Now})

			res := p.Resolve(context.Background())
			assert.Equal(t, rates.TierFallback, res.Tier)
		})
	}
}

func TestProvider_PersistDoesNotBlockResolve(t *testing.T) {
	store := &blockingStore{Memory: kv.NewMemory(), release: make(chan struct{})}
	p := rates.NewProvider(&fakeFetcher{table: live()}, store, rates.Config{
		PersistTimeout: time.Minute,
		Now:            (&clock{t: t0}).Now,
	})

	done := make(chan rates.Result, 1)

	go func() { done <- p.Resolve(context.Background()) }()

	select {
	case res := <-done:
		assert.Equal(t, rates.TierNetwork, res.Tier)
	case <-time.After(time.Second):
		t.Fatal("Resolve waited for the durable write")
	}

	close(store.release)
	p.Wait()

	_, err := store.Get(context.Background(), rates.RatesKey)
	assert.NoError(t, err)
}

func TestProvider_PersistFailureIsSwallowed(t *testing.T) {
	p := rates.NewProvider(&fakeFetcher{table: live()}, failingStore{}, rates.Config{Now: (&clock{t: t0}).Now})

	res := p.Resolve(context.Background())
	p.Wait()

	assert.Equal(t, rates.TierNetwork, res.Tier)
}

func TestProvider_Invalidate(t *testing.T) {
	fetcher := &fakeFetcher{table: live()}
	p := rates.NewProvider(fetcher, nil, rates.Config{Now: (&clock{t: t0}).Now})

	p.Resolve(context.Background())
	p.Invalidate()

	res := p.Resolve(context.Background())
	assert.Equal(t, rates.TierNetwork, res.Tier)
	assert.Equal(t, int32(2), fetcher.calls.Load())
}

func TestProvider_ResultIsACopy(t *testing.T) {
	p := rates.NewProvider(&fakeFetcher{table: live()}, nil, rates.Config{Now: (&clock{t: t0}).Now})

	first := p.Rates(context.Background())
	first["EUR"] = decimal.NewFromInt(42)

	second := p.Rates(context.Background())
	assert.True(t, decimal.RequireFromString("0.9").Equal(second["EUR"]))
}
