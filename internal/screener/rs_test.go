package screener

import (
	"testing"

	"stock-hunter/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRS_IdenticalToBenchmark(t *testing.T) {
	series := makeTestSeries("SPY", 300, func(i int) float64 { return 100 + float64(i)*0.5 })
	bench := makeTestSeries("^GSPC", 300, func(i int) float64 { return 100 + float64(i)*0.5 })

	got, err := CalculateRS(series, bench, RSConfig{})
	require.NoError(t, err)

	for _, period := range DefaultRSPeriods {
		assert.InDelta(t, 0, got.PeriodExcess[period], 1e-9)
	}
	assert.InDelta(t, 0, got.WeightedExcess, 1e-9)
	assert.Equal(t, 63, got.Rating, "zero excess lands in the average band")
}

func TestCalculateRS_OutperformingStock(t *testing.T) {
	stock := makeTestSeries("NVDA", 300, func(i int) float64 { return 100 * (1 + float64(i)/100) })
	bench := flatSeries("^GSPC", 300, 4000)

	got, err := CalculateRS(stock, bench, RSConfig{})
	require.NoError(t, err)

	for _, period := range DefaultRSPeriods {
		assert.Greater(t, got.PeriodExcess[period], 0.0)
	}
	assert.Greater(t, got.WeightedExcess, 50.0)
	assert.GreaterOrEqual(t, got.Rating, 90)
	assert.LessOrEqual(t, got.Rating, 99)
}

func TestCalculateRS_ShortHistoryContributesZero(t *testing.T) {
	// 100 aligned bars: only the 63-day period has enough data, the longer
	// periods contribute zero excess with their weight still applied.
	stock := makeTestSeries("IPO", 100, func(i int) float64 { return 50 + float64(i) })
	bench := flatSeries("^GSPC", 300, 4000)

	got, err := CalculateRS(stock, bench, RSConfig{})
	require.NoError(t, err)

	assert.Greater(t, got.PeriodExcess[63], 0.0)
	assert.InDelta(t, 0, got.PeriodExcess[126], 1e-9)
	assert.InDelta(t, 0, got.PeriodExcess[189], 1e-9)
	assert.InDelta(t, 0, got.PeriodExcess[252], 1e-9)
	assert.InDelta(t, got.PeriodExcess[63]*0.40, got.WeightedExcess, 1e-9)
}

func TestCalculateRS_Errors(t *testing.T) {
	stock := flatSeries("AAPL", 300, 100)
	bench := flatSeries("^GSPC", 300, 4000)

	tests := []struct {
		name    string
		stock   *dto.PriceSeries
		bench   *dto.PriceSeries
		cfg     RSConfig
		wantErr error
	}{
		{name: "nil benchmark", stock: stock, bench: nil, wantErr: ErrBenchmarkUnavailable},
		{name: "empty benchmark", stock: stock, bench: &dto.PriceSeries{Symbol: "^GSPC"}, wantErr: ErrBenchmarkUnavailable},
		{name: "nil stock", stock: nil, bench: bench, wantErr: ErrInsufficientHistory},
		{name: "empty stock", stock: &dto.PriceSeries{Symbol: "AAPL"}, bench: bench, wantErr: ErrInsufficientHistory},
		{
			name:    "mismatched periods and weights",
			stock:   stock,
			bench:   bench,
			cfg:     RSConfig{Periods: []int{63, 126}, Weights: []float64{1}},
			wantErr: ErrComputation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateRS(tt.stock, tt.bench, tt.cfg)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRSRating_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		excess float64
		want   int
	}{
		{name: "deeply negative clamps to 1", excess: -80, want: 1},
		{name: "weak band", excess: -20, want: 35},
		{name: "bottom of average band", excess: -10, want: 50},
		{name: "zero excess", excess: 0, want: 63},
		{name: "top of average band clamps to 69", excess: 4.9, want: 69},
		{name: "bottom of good band", excess: 5, want: 70},
		{name: "top of good band", excess: 19.9, want: 77},
		{name: "bottom of strong band", excess: 20, want: 80},
		{name: "top of strong band", excess: 49.9, want: 87},
		{name: "bottom of exceptional band", excess: 50, want: 98},
		{name: "huge excess clamps to 99", excess: 500, want: 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rsRating(tt.excess))
		})
	}
}

func TestRSRating_BoundsAndMonotonicity(t *testing.T) {
	prev := 0
	for e := -100.0; e <= 100.0; e += 0.25 {
		r := rsRating(e)
		assert.GreaterOrEqual(t, r, 1)
		assert.LessOrEqual(t, r, 99)
		assert.GreaterOrEqual(t, r, prev, "rating must not decrease as excess grows (excess=%v)", e)
		prev = r
	}
}
