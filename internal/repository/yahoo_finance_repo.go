package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"stock-hunter/config"
	"stock-hunter/internal/dto"
	"stock-hunter/internal/screener"
	"stock-hunter/pkg/httpclient"
	"stock-hunter/pkg/logger"
	"stock-hunter/pkg/utils"

	"golang.org/x/time/rate"
)

// symbolAliases maps tickers whose dotted class notation Yahoo Finance
// rejects, plus renames it never picked up.
var symbolAliases = map[string]string{
	"BRK.A": "BRK-A",
	"BRK.B": "BRK-B",
	"BF.B":  "BF-B",
	"SQ":    "BLOCK",
}

type YahooFinanceRepository interface {
	GetDailyHistory(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates the daily price history source backed by
// the Yahoo Finance chart API, rate-limited to the configured requests per
// minute.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &yahooFinanceRepository{
		httpClient:     httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

// GetDailyHistory fetches the daily OHLCV series covering the trailing
// lookback window. Idempotent and safe to retry; errors are classified into
// the screener taxonomy so the orchestrator knows which ones to retry.
func (r *yahooFinanceRepository) GetDailyHistory(ctx context.Context, param dto.GetDailyHistoryParam) (*dto.PriceSeries, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", screener.ErrFetchTransient, err)
	}

	symbol := utils.NormalizeSymbol(param.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", screener.ErrFetchPermanent)
	}
	if alias, ok := symbolAliases[symbol]; ok {
		symbol = alias
	}

	now := utils.TimeNowMarket()
	period1 := now.AddDate(0, 0, -param.LookbackDays).Unix()
	period2 := now.Unix()

	endpoint := "/" + symbol
	queryParams := map[string]string{
		"period1":        fmt.Sprintf("%d", period1),
		"period2":        fmt.Sprintf("%d", period2),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	headers := map[string]string{
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
		"Accept":          "application/json, text/plain, */*",
		"Accept-Language": "en-US,en;q=0.9",
		"Referer":         "https://finance.yahoo.com/",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, endpoint, queryParams, headers, &yahooResp)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.WarnContext(ctx, "Yahoo Finance returned non-OK status",
			logger.StringField("symbol", symbol),
			logger.IntField("status_code", resp.StatusCode),
		)
		return nil, classifyStatusError(symbol, resp.StatusCode)
	}

	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: provider error for %s: %v", screener.ErrFetchPermanent, symbol, yahooResp.Chart.Error)
	}

	if len(yahooResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no data returned for %s", screener.ErrFetchPermanent, symbol)
	}

	result := yahooResp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: no quote data for %s", screener.ErrFetchPermanent, symbol)
	}

	quote := result.Indicators.Quote[0]
	loc := utils.GetMarketTimeLocation()

	bars := make([]dto.PriceBar, 0, len(result.Timestamp))
	for i, timestamp := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}

		// Zero values mean missing data for that day.
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 ||
			quote.Close[i] == 0 || quote.Volume[i] == 0 {
			continue
		}

		bars = append(bars, dto.PriceBar{
			Date:   time.Unix(timestamp, 0).In(loc),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: quote.Volume[i],
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no valid bars for %s", screener.ErrFetchPermanent, symbol)
	}

	return &dto.PriceSeries{
		Symbol: utils.NormalizeSymbol(param.Symbol),
		Bars:   bars,
	}, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", screener.ErrFetchTransient, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: deadline exceeded: %v", screener.ErrFetchTransient, err)
	}
	return fmt.Errorf("%w: %v", screener.ErrFetchTransient, err)
}

func classifyStatusError(symbol string, status int) error {
	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: unknown symbol %s", screener.ErrFetchPermanent, symbol)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited by provider (%d)", screener.ErrFetchTransient, status)
	case status >= 500:
		return fmt.Errorf("%w: provider error %d", screener.ErrFetchTransient, status)
	default:
		return fmt.Errorf("%w: unexpected status %d for %s", screener.ErrFetchPermanent, status, symbol)
	}
}
