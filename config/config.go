package config

import (
	"fmt"
	"strings"
	"time"

	"stock-hunter/pkg/common"

	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger             `mapstructure:"logger"`
	DB           Database           `mapstructure:"database"`
	API          API                `mapstructure:"api"`
	Cache        Cache              `mapstructure:"cache"`
	YahooFinance YahooFinanceConfig `mapstructure:"yahoo_finance"`
	Screener     ScreenerConfig     `mapstructure:"screener"`
	Benchmark    BenchmarkConfig    `mapstructure:"benchmark"`
	Scheduler    Scheduler          `mapstructure:"scheduler"`
	Alert        AlertConfig        `mapstructure:"alert"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type YahooFinanceConfig struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// ScreenerConfig controls the batch orchestrator. MaxWorkers of zero means
// "number of CPUs, capped at 8".
type ScreenerConfig struct {
	MaxWorkers      int           `mapstructure:"max_workers"`
	BatchSize       int           `mapstructure:"batch_size"`
	LookbackDays    int           `mapstructure:"lookback_days"`
	MinRequestDelay time.Duration `mapstructure:"min_request_delay"`
	MaxRequestDelay time.Duration `mapstructure:"max_request_delay"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"`
	RSPeriods       []int         `mapstructure:"rs_periods"`
	RSWeights       []float64     `mapstructure:"rs_weights"`
	ReportCacheTTL  time.Duration `mapstructure:"report_cache_ttl"`
}

type BenchmarkConfig struct {
	Symbol string        `mapstructure:"symbol"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type Scheduler struct {
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

type AlertConfig struct {
	TelegramBotToken string `mapstructure:"telegram_bot_token"`
	TelegramChatID   string `mapstructure:"telegram_chat_id"`
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")
	viper.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.timeout", "30s")
	viper.SetDefault("yahoo_finance.max_request_per_minute", 60)
	viper.SetDefault("screener.batch_size", 200)
	viper.SetDefault("screener.lookback_days", 400)
	viper.SetDefault("screener.min_request_delay", "200ms")
	viper.SetDefault("screener.max_request_delay", "600ms")
	viper.SetDefault("screener.max_retries", 3)
	viper.SetDefault("screener.retry_base_delay", "1s")
	viper.SetDefault("screener.report_cache_ttl", "10m")
	viper.SetDefault("benchmark.symbol", common.DEFAULT_BENCHMARK_SYMBOL)
	viper.SetDefault("benchmark.ttl", "1h")
	viper.SetDefault("scheduler.max_concurrency", 2)
	viper.SetDefault("scheduler.timeout_duration", "30m")
}
