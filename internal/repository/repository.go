package repository

import (
	"stock-hunter/config"
	"stock-hunter/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	YahooFinanceRepo YahooFinanceRepository
	WatchlistRepo    WatchlistRepository
	ScreenJobRepo    ScreenJobRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		YahooFinanceRepo: NewYahooFinanceRepository(cfg, log),
		WatchlistRepo:    NewWatchlistRepository(db),
		ScreenJobRepo:    NewScreenJobRepository(db),
	}, nil
}
