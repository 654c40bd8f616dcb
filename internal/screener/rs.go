package screener

import (
	"fmt"
	"math"

	"stock-hunter/internal/dto"
)

// Default lookback periods (trading days) and weights for the relative
// strength rating: most recent quarter counts double.
var (
	DefaultRSPeriods = []int{63, 126, 189, 252}
	DefaultRSWeights = []float64{0.40, 0.20, 0.20, 0.20}
)

// RSConfig overrides the lookback periods and weights, mainly for tests.
// Periods and Weights must have equal length.
type RSConfig struct {
	Periods []int
	Weights []float64
}

func (c RSConfig) periods() []int {
	if len(c.Periods) == 0 {
		return DefaultRSPeriods
	}
	return c.Periods
}

func (c RSConfig) weights() []float64 {
	if len(c.Weights) == 0 {
		return DefaultRSWeights
	}
	return c.Weights
}

// CalculateRS computes the 1-99 relative strength rating of a symbol versus
// the benchmark. The two series are aligned on the intersection of their
// trading dates first. A period with fewer aligned bars than its lookback
// contributes zero excess, weight still applied.
func CalculateRS(stock, bench *dto.PriceSeries, cfg RSConfig) (*dto.RSResult, error) {
	if bench == nil || bench.Len() == 0 {
		return nil, fmt.Errorf("%w: empty benchmark series", ErrBenchmarkUnavailable)
	}
	if stock == nil || stock.Len() == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrInsufficientHistory)
	}

	periods := cfg.periods()
	weights := cfg.weights()
	if len(periods) != len(weights) {
		return nil, fmt.Errorf("%w: %d periods but %d weights", ErrComputation, len(periods), len(weights))
	}

	stockCloses, benchCloses := AlignSeries(stock, bench)

	result := &dto.RSResult{
		Symbol:       stock.Symbol,
		PeriodExcess: make(map[int]float64, len(periods)),
	}

	for i, period := range periods {
		if len(stockCloses) < period {
			result.PeriodExcess[period] = 0
			continue
		}

		stockRet, err := periodReturn(stockCloses, period)
		if err != nil {
			return nil, fmt.Errorf("%s period %d: %w", stock.Symbol, period, err)
		}
		benchRet, err := periodReturn(benchCloses, period)
		if err != nil {
			return nil, fmt.Errorf("benchmark period %d: %w", period, err)
		}

		excess := stockRet - benchRet
		result.PeriodExcess[period] = excess
		result.WeightedExcess += excess * weights[i]
	}

	result.Rating = rsRating(result.WeightedExcess)
	return result, nil
}

// periodReturn is the percentage return over the trailing period bars.
func periodReturn(closes []float64, period int) (float64, error) {
	now := closes[len(closes)-1]
	ago := closes[len(closes)-period]
	if ago <= 0 {
		return 0, fmt.Errorf("%w: non-positive reference close", ErrComputation)
	}
	return (now/ago - 1) * 100, nil
}

// rsRating maps a weighted excess return onto the 1-99 scale.
//
// The piecewise thresholds are empirically calibrated to approximate the
// industry 1-99 rating convention; they are not a statistical percentile and
// there is no canonical public formula to match exactly. The mapping is a
// deterministic, monotonically non-decreasing function of the excess.
func rsRating(excess float64) int {
	var rating int
	switch {
	case excess >= 50:
		rating = 90 + int(math.Min(9, math.Floor(excess/6.25)))
	case excess >= 20:
		rating = 80 + int(math.Floor((excess-20)/3.75))
	case excess >= 5:
		rating = 70 + int(math.Floor((excess-5)/1.875))
	case excess >= -10:
		rating = 50 + int(math.Floor((excess+10)/0.75))
		if rating > 69 {
			rating = 69
		}
	default:
		rating = 45 - int(math.Floor(math.Abs(excess+10)))
	}

	if rating < 1 {
		rating = 1
	}
	if rating > 99 {
		rating = 99
	}
	return rating
}
