package screener

import (
	"fmt"

	"stock-hunter/internal/dto"
)

const (
	maShortWindow = 50
	maMidWindow   = 150
	maLongWindow  = 200

	// week52Window is one trading year of daily bars.
	week52Window = 252

	// trendLookback is how many bars back the 200-day average is compared
	// against when deciding whether it is trending up.
	trendLookback = 20

	avgVolumeWindow = 50
)

// CalculateIndicators derives the moving averages, 52-week range and trend
// flag from a daily price series. It is a pure function of the series and the
// window constants. Fails with ErrInsufficientHistory when fewer than 200
// bars are available.
func CalculateIndicators(series *dto.PriceSeries) (*dto.Indicators, error) {
	if series == nil || series.Len() < maLongWindow {
		n := 0
		if series != nil {
			n = series.Len()
		}
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientHistory, n, maLongWindow)
	}

	closes := series.Closes()
	price := closes[len(closes)-1]

	window := week52Window
	if series.Len() < window {
		window = series.Len()
	}
	recent := series.Bars[series.Len()-window:]
	high := recent[0].High
	low := recent[0].Low
	for _, b := range recent[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}

	if low <= 0 || high <= 0 {
		return nil, fmt.Errorf("%w: non-positive 52-week range for %s", ErrComputation, series.Symbol)
	}

	var volume, avgVolume int64
	volume = series.Bars[series.Len()-1].Volume
	volWindow := avgVolumeWindow
	if series.Len() < volWindow {
		volWindow = series.Len()
	}
	var volSum int64
	for _, b := range series.Bars[series.Len()-volWindow:] {
		volSum += b.Volume
	}
	avgVolume = volSum / int64(volWindow)

	return &dto.Indicators{
		Price:           price,
		MA50:            sma(closes, maShortWindow),
		MA150:           sma(closes, maMidWindow),
		MA200:           sma(closes, maLongWindow),
		Week52High:      high,
		Week52Low:       low,
		FromLowPct:      (price - low) / low * 100,
		FromHighPct:     (price - high) / high * 100,
		MA200TrendingUp: ma200TrendingUp(closes),
		Volume:          volume,
		AvgVolume50:     avgVolume,
	}, nil
}

// ma200TrendingUp compares the current 200-day average against its value
// trendLookback bars earlier. When the series is too short for the earlier
// window the flag is false rather than an error.
func ma200TrendingUp(closes []float64) bool {
	if len(closes) < maLongWindow+trendLookback {
		return false
	}
	current := sma(closes, maLongWindow)
	earlier := sma(closes[:len(closes)-trendLookback], maLongWindow)
	return current > earlier
}
