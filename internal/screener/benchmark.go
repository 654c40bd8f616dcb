package screener

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"stock-hunter/internal/dto"
)

// benchmarkSnapshot pairs a benchmark series with its fetch time. A refresh
// replaces the whole snapshot; the series itself is never mutated, so
// concurrent readers always see a consistent view.
type benchmarkSnapshot struct {
	series    *dto.PriceSeries
	fetchedAt time.Time
}

// BenchmarkCache holds the benchmark price series shared read-only across a
// screening run. Created lazily on first use, refreshed after the TTL via
// copy-and-atomic-replace.
type BenchmarkCache struct {
	symbol       string
	lookbackDays int
	ttl          time.Duration
	fetch        FetchFunc
	now          func() time.Time

	mu      sync.Mutex
	current atomic.Pointer[benchmarkSnapshot]
}

// FetchFunc is the acquisition contract the cache (and the orchestrator)
// depend on. Implementations must be idempotent and retryable.
type FetchFunc func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error)

func NewBenchmarkCache(symbol string, lookbackDays int, ttl time.Duration, fetch FetchFunc) *BenchmarkCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &BenchmarkCache{
		symbol:       symbol,
		lookbackDays: lookbackDays,
		ttl:          ttl,
		fetch:        fetch,
		now:          time.Now,
	}
}

// Get returns the cached benchmark series, fetching it when absent or older
// than the TTL. Only one caller fetches at a time; the rest block and then
// read the fresh snapshot.
func (c *BenchmarkCache) Get(ctx context.Context) (*dto.PriceSeries, error) {
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.fetchedAt) < c.ttl {
		return snap.series, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if snap := c.current.Load(); snap != nil && c.now().Sub(snap.fetchedAt) < c.ttl {
		return snap.series, nil
	}

	series, err := c.fetch(ctx, dto.GetDailyHistoryParam{
		Symbol:       c.symbol,
		LookbackDays: c.lookbackDays,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", ErrBenchmarkUnavailable, c.symbol, err)
	}
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series for %s", ErrBenchmarkUnavailable, c.symbol)
	}

	c.current.Store(&benchmarkSnapshot{series: series, fetchedAt: c.now()})
	return series, nil
}

// Invalidate drops the cached series so the next Get refetches.
func (c *BenchmarkCache) Invalidate() {
	c.current.Store(nil)
}

// Symbol returns the benchmark symbol the cache was built for.
func (c *BenchmarkCache) Symbol() string {
	return c.symbol
}
