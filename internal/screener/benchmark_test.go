package screener

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock-hunter/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkCache_Get(t *testing.T) {
	fetches := 0
	cache := NewBenchmarkCache("^GSPC", 400, time.Hour, func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
		fetches++
		assert.Equal(t, "^GSPC", param.Symbol)
		assert.Equal(t, 400, param.LookbackDays)
		return flatSeries("^GSPC", 300, 4000), nil
	})

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "within the TTL both calls see the same snapshot")
	assert.Equal(t, 1, fetches)
}

func TestBenchmarkCache_RefreshAfterTTL(t *testing.T) {
	fetches := 0
	cache := NewBenchmarkCache("^GSPC", 400, time.Hour, func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
		fetches++
		return flatSeries("^GSPC", 300, 4000), nil
	})

	clock := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	cache.now = func() time.Time { return clock }

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	clock = clock.Add(30 * time.Minute)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetches, "still fresh")

	clock = clock.Add(31 * time.Minute)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "stale snapshot refetched")
}

func TestBenchmarkCache_FetchFailure(t *testing.T) {
	cache := NewBenchmarkCache("^GSPC", 400, time.Hour, func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
		return nil, errors.New("upstream down")
	})

	got, err := cache.Get(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrBenchmarkUnavailable)
}

func TestBenchmarkCache_EmptySeries(t *testing.T) {
	cache := NewBenchmarkCache("^GSPC", 400, time.Hour, func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
		return &dto.PriceSeries{Symbol: "^GSPC"}, nil
	})

	got, err := cache.Get(context.Background())
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrBenchmarkUnavailable)
}

func TestBenchmarkCache_Invalidate(t *testing.T) {
	fetches := 0
	cache := NewBenchmarkCache("^GSPC", 400, time.Hour, func(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
		fetches++
		return flatSeries("^GSPC", 300, 4000), nil
	})

	_, err := cache.Get(context.Background())
	require.NoError(t, err)

	cache.Invalidate()

	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}
