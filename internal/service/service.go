package service

import (
	"stock-hunter/config"
	"stock-hunter/internal/repository"
	"stock-hunter/internal/screener"
	"stock-hunter/pkg/cache"
	"stock-hunter/pkg/logger"
)

type Service struct {
	ScreenService    ScreenService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
) *Service {
	orchestrator := screener.NewOrchestrator(cfg, log, repo.YahooFinanceRepo)
	screenService := NewScreenService(cfg, log, orchestrator, repo.WatchlistRepo, inmemoryCache)
	schedulerService := NewSchedulerService(cfg, log, repo.ScreenJobRepo, screenService)

	return &Service{
		ScreenService:    screenService,
		SchedulerService: schedulerService,
	}
}
