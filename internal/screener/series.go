package screener

import (
	"sort"
	"time"

	"stock-hunter/internal/dto"
)

// dateKey truncates a bar timestamp to its trading day so that series from
// different sources align regardless of intraday timestamps.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// AlignSeries restricts two price series to the intersection of their trading
// dates and returns the aligned closing prices ordered oldest to newest.
// Dates present in only one series are discarded; halts and listing
// differences routinely desynchronize the two.
func AlignSeries(stock, bench *dto.PriceSeries) (stockCloses, benchCloses []float64) {
	benchByDate := make(map[string]float64, len(bench.Bars))
	for _, b := range bench.Bars {
		benchByDate[dateKey(b.Date)] = b.Close
	}

	type alignedBar struct {
		date  time.Time
		stock float64
		bench float64
	}

	aligned := make([]alignedBar, 0, len(stock.Bars))
	for _, b := range stock.Bars {
		bc, ok := benchByDate[dateKey(b.Date)]
		if !ok {
			continue
		}
		aligned = append(aligned, alignedBar{date: b.Date, stock: b.Close, bench: bc})
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].date.Before(aligned[j].date)
	})

	stockCloses = make([]float64, len(aligned))
	benchCloses = make([]float64, len(aligned))
	for i, a := range aligned {
		stockCloses[i] = a.stock
		benchCloses[i] = a.bench
	}
	return stockCloses, benchCloses
}

// sma computes the simple moving average of the trailing window bars of
// values. Returns 0 when fewer than window values exist.
func sma(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}
