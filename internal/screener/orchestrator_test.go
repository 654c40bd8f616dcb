package screener

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"stock-hunter/config"
	"stock-hunter/internal/dto"
	"stock-hunter/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistorySource serves canned series and errors per symbol. Unknown
// symbols get a permanent failure, like a delisted ticker would.
type fakeHistorySource struct {
	mu     sync.Mutex
	series map[string]*dto.PriceSeries
	errs   map[string][]error
	calls  map[string]int
}

func newFakeHistorySource() *fakeHistorySource {
	return &fakeHistorySource{
		series: make(map[string]*dto.PriceSeries),
		errs:   make(map[string][]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeHistorySource) GetDailyHistory(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[param.Symbol]++
	if queued := f.errs[param.Symbol]; len(queued) > 0 {
		err := queued[0]
		f.errs[param.Symbol] = queued[1:]
		return nil, err
	}
	if s, ok := f.series[param.Symbol]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown symbol %s", ErrFetchPermanent, param.Symbol)
}

func (f *fakeHistorySource) callCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

func testScreenerConfig() *config.Config {
	return &config.Config{
		Screener: config.ScreenerConfig{
			MaxWorkers:     4,
			BatchSize:      3,
			LookbackDays:   400,
			MaxRetries:     3,
			RetryBaseDelay: time.Millisecond,
		},
		Benchmark: config.BenchmarkConfig{
			Symbol: "^GSPC",
			TTL:    time.Hour,
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

// strongSeries is long enough for every indicator window and keeps rising, so
// it passes the full template against a flat benchmark.
func strongSeries(symbol string) *dto.PriceSeries {
	return makeTestSeries(symbol, 300, func(i int) float64 { return 100 + float64(i) })
}

func recordsBySymbol(report *dto.BatchReport) map[string]dto.AnalysisRecord {
	out := make(map[string]dto.AnalysisRecord, len(report.Records))
	for _, r := range report.Records {
		out[r.Symbol] = r
	}
	return out
}

func TestOrchestrator_Screen(t *testing.T) {
	source := newFakeHistorySource()
	source.series["^GSPC"] = flatSeries("^GSPC", 300, 4000)
	source.series["AAA"] = strongSeries("AAA")
	source.series["BBB"] = strongSeries("BBB")
	source.series["CCC"] = strongSeries("CCC")
	source.series["SHORT"] = flatSeries("SHORT", 100, 50)

	o := NewOrchestrator(testScreenerConfig(), testLogger(t), source)

	symbols := []string{"AAA", "BBB", "CCC", "SHORT", "GONE"}
	report, err := o.Screen(context.Background(), symbols)
	require.NoError(t, err)

	assert.Len(t, report.Records, len(symbols), "exactly one record per requested symbol")
	assert.Equal(t, len(symbols), report.TotalRequested)
	assert.Equal(t, 3, report.TotalSucceeded)
	assert.Equal(t, 2, report.TotalFailed)

	bySymbol := recordsBySymbol(report)
	for _, s := range []string{"AAA", "BBB", "CCC"} {
		rec := bySymbol[s]
		require.True(t, rec.Succeeded(), "symbol %s: %s", s, rec.Error)
		assert.True(t, rec.Criteria.Passed)
		assert.Equal(t, MaxTemplateScore, rec.Criteria.Score)
		assert.GreaterOrEqual(t, rec.RS.Rating, minRSRating)
	}

	assert.False(t, bySymbol["SHORT"].Succeeded())
	assert.Contains(t, bySymbol["SHORT"].Error, "insufficient price history")
	assert.False(t, bySymbol["GONE"].Succeeded())
	assert.Contains(t, bySymbol["GONE"].Error, "unknown symbol")
}

func TestOrchestrator_ScreenEmptySymbols(t *testing.T) {
	o := NewOrchestrator(testScreenerConfig(), testLogger(t), newFakeHistorySource())

	report, err := o.Screen(context.Background(), nil)
	assert.Nil(t, report)
	assert.Error(t, err)
}

func TestOrchestrator_ScreenRetriesTransientFailures(t *testing.T) {
	source := newFakeHistorySource()
	source.series["^GSPC"] = flatSeries("^GSPC", 300, 4000)
	source.series["FLAKY"] = strongSeries("FLAKY")
	source.errs["FLAKY"] = []error{
		fmt.Errorf("%w: connection reset", ErrFetchTransient),
		fmt.Errorf("%w: 429 too many requests", ErrFetchTransient),
	}

	o := NewOrchestrator(testScreenerConfig(), testLogger(t), source)

	report, err := o.Screen(context.Background(), []string{"FLAKY"})
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	assert.True(t, report.Records[0].Succeeded())
	assert.Equal(t, 3, source.callCount("FLAKY"))
}

func TestOrchestrator_ScreenRetriesTransientBenchmarkFailure(t *testing.T) {
	source := newFakeHistorySource()
	source.series["^GSPC"] = flatSeries("^GSPC", 300, 4000)
	source.series["AAA"] = strongSeries("AAA")
	source.errs["^GSPC"] = []error{
		fmt.Errorf("%w: 429 too many requests", ErrFetchTransient),
	}

	o := NewOrchestrator(testScreenerConfig(), testLogger(t), source)

	report, err := o.Screen(context.Background(), []string{"AAA"})
	require.NoError(t, err)

	require.Len(t, report.Records, 1)
	assert.True(t, report.Records[0].Succeeded(), "a transient benchmark blip must not fail the run: %s", report.Records[0].Error)
	assert.Equal(t, 1, report.TotalSucceeded)
	assert.Equal(t, 2, source.callCount("^GSPC"), "benchmark fetch gets the same retries as any symbol")
}

func TestOrchestrator_ScreenBenchmarkUnavailable(t *testing.T) {
	// The fake has no ^GSPC series, so the benchmark fetch fails permanently
	// and every symbol carries the benchmark error instead of its own result.
	source := newFakeHistorySource()
	symbols := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		s := fmt.Sprintf("SYM%d", i)
		source.series[s] = strongSeries(s)
		symbols = append(symbols, s)
	}

	o := NewOrchestrator(testScreenerConfig(), testLogger(t), source)
	report, err := o.Screen(context.Background(), symbols)
	require.NoError(t, err, "a benchmark outage degrades the report, it does not abort the run")

	assert.Len(t, report.Records, len(symbols))
	assert.Equal(t, 0, report.TotalSucceeded)
	assert.Equal(t, len(symbols), report.TotalFailed)
	for _, rec := range report.Records {
		assert.Contains(t, rec.Error, "benchmark data unavailable")
	}
	assert.Equal(t, 0, source.callCount("SYM0"), "per-symbol fetches are skipped without a benchmark")
}

func TestOrchestrator_ScreenCancelledContext(t *testing.T) {
	source := newFakeHistorySource()
	source.series["^GSPC"] = flatSeries("^GSPC", 300, 4000)
	source.series["AAA"] = strongSeries("AAA")

	o := NewOrchestrator(testScreenerConfig(), testLogger(t), source)

	// Warm the benchmark cache, then cancel before the next run.
	_, err := o.Screen(context.Background(), []string{"AAA"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	symbols := []string{"AAA", "BBB", "CCC"}
	report, err := o.Screen(ctx, symbols)
	require.NoError(t, err)

	assert.Len(t, report.Records, len(symbols), "cancelled symbols still get records")
	assert.Equal(t, len(symbols), report.TotalFailed)
	for _, rec := range report.Records {
		assert.False(t, rec.Succeeded())
	}
}
