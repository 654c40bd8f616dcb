package screener

import (
	"testing"

	"stock-hunter/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateIndicators_InsufficientHistory(t *testing.T) {
	tests := []struct {
		name   string
		series *dto.PriceSeries
	}{
		{name: "nil series", series: nil},
		{name: "empty series", series: &dto.PriceSeries{Symbol: "AAPL"}},
		{name: "199 bars", series: flatSeries("AAPL", 199, 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateIndicators(tt.series)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrInsufficientHistory)
		})
	}
}

func TestCalculateIndicators_RisingSeries(t *testing.T) {
	// Closes 1..260; highs close+1, lows close-1.
	series := makeTestSeries("NVDA", 260, func(i int) float64 { return float64(i + 1) })

	got, err := CalculateIndicators(series)
	require.NoError(t, err)

	assert.InDelta(t, 260, got.Price, 1e-9)
	assert.InDelta(t, 235.5, got.MA50, 1e-9)   // avg of 211..260
	assert.InDelta(t, 185.5, got.MA150, 1e-9)  // avg of 111..260
	assert.InDelta(t, 160.5, got.MA200, 1e-9)  // avg of 61..260
	assert.InDelta(t, 261, got.Week52High, 1e-9)
	assert.InDelta(t, 8, got.Week52Low, 1e-9) // 52-week window covers bars 9..260
	assert.InDelta(t, (260-8)/8.0*100, got.FromLowPct, 1e-9)
	assert.InDelta(t, (260-261)/261.0*100, got.FromHighPct, 1e-9)
	assert.True(t, got.MA200TrendingUp)
	assert.Equal(t, int64(1_000_000), got.Volume)
	assert.Equal(t, int64(1_000_000), got.AvgVolume50)
}

func TestCalculateIndicators_FlatSeriesNotTrendingUp(t *testing.T) {
	got, err := CalculateIndicators(flatSeries("KO", 300, 60))
	require.NoError(t, err)

	assert.False(t, got.MA200TrendingUp, "a flat 200-day average is not trending up")
	assert.InDelta(t, 60, got.MA50, 1e-9)
	assert.InDelta(t, 60, got.MA200, 1e-9)
}

func TestCalculateIndicators_TrendFlagNeedsWarmup(t *testing.T) {
	// Rising series, but without trendLookback bars of history beyond the
	// 200-day window the flag stays false instead of erroring.
	series := makeTestSeries("IPO", maLongWindow+trendLookback-1, func(i int) float64 { return float64(i + 2) })

	got, err := CalculateIndicators(series)
	require.NoError(t, err)
	assert.False(t, got.MA200TrendingUp)
}

func TestCalculateIndicators_NonPositiveRange(t *testing.T) {
	series := flatSeries("BAD", 260, 100)
	for i := range series.Bars {
		series.Bars[i].Low = 0
	}

	got, err := CalculateIndicators(series)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrComputation)
}

func TestMA200TrendingUp(t *testing.T) {
	rising := make([]float64, 220)
	for i := range rising {
		rising[i] = float64(i + 1)
	}
	falling := make([]float64, 220)
	for i := range falling {
		falling[i] = float64(len(falling) - i)
	}

	tests := []struct {
		name   string
		closes []float64
		want   bool
	}{
		{name: "rising", closes: rising, want: true},
		{name: "falling", closes: falling, want: false},
		{name: "too short", closes: rising[:219], want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ma200TrendingUp(tt.closes))
		})
	}
}
