package screener

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"stock-hunter/config"
	"stock-hunter/internal/dto"
	"stock-hunter/pkg/logger"
	"stock-hunter/pkg/utils"
)

// SymbolState tracks a symbol through the per-symbol state machine.
type SymbolState string

const (
	StateQueued    SymbolState = "queued"
	StateFetching  SymbolState = "fetching"
	StateComputing SymbolState = "computing"
	StateSucceeded SymbolState = "succeeded"
	StateFailed    SymbolState = "failed"
)

const (
	defaultBatchSize    = 200
	defaultLookbackDays = 400
	maxDefaultWorkers   = 8
)

// HistorySource is the acquisition contract the orchestrator consumes.
type HistorySource interface {
	GetDailyHistory(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error)
}

// Orchestrator fans symbol analysis out across a bounded worker pool under
// rate limiting, retry and partial-failure isolation, and assembles the
// per-symbol results into a BatchReport.
type Orchestrator struct {
	cfg       *config.Config
	log       *logger.Logger
	source    HistorySource
	benchmark *BenchmarkCache
	retry     RetryPolicy
	throttle  *throttle
	rs        RSConfig
}

func NewOrchestrator(cfg *config.Config, log *logger.Logger, source HistorySource) *Orchestrator {
	o := &Orchestrator{
		cfg:    cfg,
		log:    log,
		source: source,
		retry: RetryPolicy{
			MaxAttempts: cfg.Screener.MaxRetries,
			BaseDelay:   cfg.Screener.RetryBaseDelay,
			Retryable:   IsRetryable,
		},
		throttle: newThrottle(cfg.Screener.MinRequestDelay, cfg.Screener.MaxRequestDelay),
		rs: RSConfig{
			Periods: cfg.Screener.RSPeriods,
			Weights: cfg.Screener.RSWeights,
		},
	}
	o.benchmark = NewBenchmarkCache(cfg.Benchmark.Symbol, o.lookbackDays(), cfg.Benchmark.TTL, o.fetchSeriesWithRetry)
	return o
}

// Screen runs the full analysis for the given symbols. Exactly one record is
// produced per requested symbol, in completion order; no per-symbol failure
// ever aborts the batch. An empty symbol list is the only caller-visible hard
// failure.
func (o *Orchestrator) Screen(ctx context.Context, symbols []string) (*dto.BatchReport, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to screen")
	}

	report := &dto.BatchReport{
		Records:        make([]dto.AnalysisRecord, 0, len(symbols)),
		TotalRequested: len(symbols),
	}

	bench, err := o.benchmark.Get(ctx)
	if err != nil {
		// Without a benchmark no RS rating can be computed for anyone;
		// record the failure per symbol instead of aborting the run.
		o.log.WarnContextWithAlert(ctx, "Benchmark unavailable, failing all symbols in batch",
			logger.StringField("benchmark", o.benchmark.Symbol()),
			logger.IntField("total_symbols", len(symbols)),
			logger.ErrorField(err),
		)
		for _, symbol := range symbols {
			report.Records = append(report.Records, dto.AnalysisRecord{Symbol: symbol, Error: err.Error()})
		}
		report.TotalFailed = len(symbols)
		return report, nil
	}

	batchSize := o.cfg.Screener.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		semaphore = make(chan struct{}, o.workerCount())
	)

	for start := 0; start < len(symbols); start += batchSize {
		end := start + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		for _, symbol := range symbols[start:end] {
			if !utils.ShouldContinue(ctx, o.log) {
				// Cancelled between symbols. The in-flight workers finish
				// normally; everything not yet dispatched gets an error
				// record so the report still covers every requested symbol.
				mu.Lock()
				report.Records = append(report.Records, dto.AnalysisRecord{
					Symbol: symbol,
					Error:  fmt.Sprintf("screen cancelled: %v", ctx.Err()),
				})
				mu.Unlock()
				continue
			}

			symbol := symbol
			wg.Add(1)
			semaphore <- struct{}{}

			utils.GoSafe(func() {
				defer func() {
					<-semaphore
					wg.Done()
				}()

				record := o.processSymbol(ctx, symbol, bench)

				mu.Lock()
				report.Records = append(report.Records, record)
				mu.Unlock()
			})
		}

		wg.Wait()
		o.log.DebugContext(ctx, "Screen batch completed",
			logger.IntField("processed", end),
			logger.IntField("total", len(symbols)),
		)
	}

	for _, rec := range report.Records {
		if rec.Succeeded() {
			report.TotalSucceeded++
		} else {
			report.TotalFailed++
		}
	}

	o.log.InfoContext(ctx, "Screen completed",
		logger.IntField("total_requested", report.TotalRequested),
		logger.IntField("total_succeeded", report.TotalSucceeded),
		logger.IntField("total_failed", report.TotalFailed),
	)

	return report, nil
}

// InvalidateBenchmark forces a benchmark refetch on the next run.
func (o *Orchestrator) InvalidateBenchmark() {
	o.benchmark.Invalidate()
}

// processSymbol walks one symbol through Fetching and Computing. All errors
// end up in the record; nothing escapes.
func (o *Orchestrator) processSymbol(ctx context.Context, symbol string, bench *dto.PriceSeries) dto.AnalysisRecord {
	record := dto.AnalysisRecord{Symbol: symbol}
	state := StateQueued

	fail := func(err error) dto.AnalysisRecord {
		state = StateFailed
		record.Error = err.Error()
		o.log.DebugContext(ctx, "Symbol analysis failed",
			logger.StringField("symbol", symbol),
			logger.StringField("state", string(state)),
			logger.ErrorField(err),
		)
		return record
	}

	state = StateFetching
	series, err := o.fetchSeriesWithRetry(ctx, dto.GetDailyHistoryParam{
		Symbol:       symbol,
		LookbackDays: o.lookbackDays(),
	})
	if err != nil {
		return fail(err)
	}

	state = StateComputing
	indicators, err := CalculateIndicators(series)
	if err != nil {
		return fail(err)
	}

	rs, err := CalculateRS(series, bench, o.rs)
	if err != nil {
		return fail(err)
	}

	criteria, err := EvaluateTemplate(indicators, rs)
	if err != nil {
		return fail(err)
	}

	state = StateSucceeded
	record.Indicators = indicators
	record.RS = rs
	record.Criteria = criteria
	o.log.DebugContext(ctx, "Symbol analysis completed",
		logger.StringField("symbol", symbol),
		logger.StringField("state", string(state)),
		logger.IntField("score", criteria.Score),
		logger.IntField("rs_rating", rs.Rating),
	)
	return record
}

// fetchSeries throttles and delegates to the history source.
func (o *Orchestrator) fetchSeries(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
	if err := o.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTransient, err)
	}
	return o.source.GetDailyHistory(ctx, param)
}

// fetchSeriesWithRetry applies the retry policy to an acquisition. Both the
// per-symbol fetch and the benchmark cache go through here, so a transient
// blip on the benchmark request gets the same retries as any other symbol.
func (o *Orchestrator) fetchSeriesWithRetry(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
	var series *dto.PriceSeries
	err := o.retry.Do(ctx, func() error {
		var fetchErr error
		series, fetchErr = o.fetchSeries(ctx, param)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

func (o *Orchestrator) workerCount() int {
	if n := o.cfg.Screener.MaxWorkers; n > 0 {
		return n
	}
	n := runtime.GOMAXPROCS(0)
	if n > maxDefaultWorkers {
		n = maxDefaultWorkers
	}
	return n
}

// lookbackDays extends the configured lookback so the 200-day average and the
// 252-day RS period always have warm-up room.
func (o *Orchestrator) lookbackDays() int {
	if d := o.cfg.Screener.LookbackDays; d >= defaultLookbackDays {
		return d
	}
	return defaultLookbackDays
}

// throttle enforces an orchestrator-wide jittered delay between consecutive
// provider calls. Workers reserve a slot under the lock and sleep outside it.
type throttle struct {
	mu   sync.Mutex
	next time.Time
	min  time.Duration
	max  time.Duration
	rnd  *rand.Rand
}

func newThrottle(min, max time.Duration) *throttle {
	if min < 0 {
		min = 0
	}
	if max < min {
		max = min
	}
	return &throttle{
		min: min,
		max: max,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (t *throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	start := t.next
	if start.Before(now) {
		start = now
	}
	delay := t.min
	if t.max > t.min {
		delay += time.Duration(t.rnd.Int63n(int64(t.max - t.min)))
	}
	t.next = start.Add(delay)
	t.mu.Unlock()

	wait := time.Until(start)
	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
