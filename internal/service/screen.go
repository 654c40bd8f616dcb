package service

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"stock-hunter/config"
	"stock-hunter/internal/dto"
	"stock-hunter/internal/model"
	"stock-hunter/internal/repository"
	"stock-hunter/internal/screener"
	"stock-hunter/pkg/cache"
	"stock-hunter/pkg/common"
	"stock-hunter/pkg/logger"
	"stock-hunter/pkg/utils"
)

type ScreenService interface {
	Screen(ctx context.Context, symbols []string) (*dto.BatchReport, error)
	ScreenWatchlist(ctx context.Context) (*dto.BatchReport, error)
	WriteCSV(report *dto.BatchReport, w io.Writer) error
}

type screenService struct {
	cfg           *config.Config
	log           *logger.Logger
	orchestrator  *screener.Orchestrator
	watchlistRepo repository.WatchlistRepository
	cache         cache.Cache
}

// NewScreenService wires the orchestrator behind caching and the watch list.
// watchlistRepo may be nil when no database is attached (one-shot CLI runs);
// ScreenWatchlist then reports the watch list as unavailable.
func NewScreenService(
	cfg *config.Config,
	log *logger.Logger,
	orchestrator *screener.Orchestrator,
	watchlistRepo repository.WatchlistRepository,
	inmemoryCache cache.Cache,
) ScreenService {
	return &screenService{
		cfg:           cfg,
		log:           log,
		orchestrator:  orchestrator,
		watchlistRepo: watchlistRepo,
		cache:         inmemoryCache,
	}
}

// Screen runs the trend-template analysis for the given symbols. Recent
// reports are served from the in-memory cache keyed by the symbol set, so a
// page refresh does not rerun the whole batch against the provider.
func (s *screenService) Screen(ctx context.Context, symbols []string) (*dto.BatchReport, error) {
	symbols = utils.DedupSymbols(symbols)
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols to screen")
	}

	cacheKey := fmt.Sprintf(common.KEY_BATCH_REPORT, hashSymbols(symbols))
	if cached, found := cache.GetFromCache[*dto.BatchReport](cacheKey); found {
		s.log.DebugContext(ctx, "Serving batch report from cache",
			logger.IntField("total_symbols", len(symbols)),
		)
		return cached, nil
	}

	report, err := s.orchestrator.Screen(ctx, symbols)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cacheKey, report, s.cfg.Screener.ReportCacheTTL)
	return report, nil
}

// ScreenWatchlist runs the analysis over every persisted watch-list symbol.
func (s *screenService) ScreenWatchlist(ctx context.Context) (*dto.BatchReport, error) {
	if s.watchlistRepo == nil {
		return nil, fmt.Errorf("watchlist is not available without a database")
	}

	items, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("watchlist is empty")
	}

	symbols := make([]string, 0, len(items))
	for _, item := range items {
		symbols = append(symbols, item.Symbol)
	}
	return s.Screen(ctx, symbols)
}

// WriteCSV serializes the report as flat rows, one line per symbol.
func (s *screenService) WriteCSV(report *dto.BatchReport, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{
		"symbol", "passed", "score", "max_score", "price",
		"ma50", "ma150", "ma200", "week_52_high", "week_52_low",
		"from_low_pct", "from_high_pct", "ma200_trending_up",
		"rs_rating", "rs_description", "fail_reasons", "error",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range report.Flatten() {
		record := []string{
			row.Symbol,
			strconv.FormatBool(row.Passed),
			strconv.Itoa(row.Score),
			strconv.Itoa(row.MaxScore),
			formatFloat(row.Price),
			formatFloat(row.MA50),
			formatFloat(row.MA150),
			formatFloat(row.MA200),
			formatFloat(row.Week52High),
			formatFloat(row.Week52Low),
			formatFloat(row.FromLowPct),
			formatFloat(row.FromHighPct),
			strconv.FormatBool(row.MA200TrendingUp),
			strconv.Itoa(row.RSRating),
			row.RSDescription,
			strings.Join(row.FailReasons, "; "),
			row.Error,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", row.Symbol, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// hashSymbols builds a stable cache key for a symbol set, order-independent.
func hashSymbols(symbols []string) string {
	sorted := make([]string, len(symbols))
	copy(sorted, symbols)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
