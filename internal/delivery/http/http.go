package http

import (
	"context"

	"stock-hunter/internal/repository"
	"stock-hunter/internal/service"
	"stock-hunter/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type HttpAPIHandler struct {
	echo          *echo.Echo
	validator     *goValidator.Validate
	service       *service.Service
	watchlistRepo repository.WatchlistRepository
}

func NewHttpAPIHandler(ctx context.Context, echo *echo.Echo, validator *goValidator.Validate, service *service.Service, watchlistRepo repository.WatchlistRepository) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:          echo,
		validator:     validator,
		service:       service,
		watchlistRepo: watchlistRepo,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.NewRateLimiterMiddleware(5, 10))

	base := h.echo.Group("/api")
	h.SetupScreen(base)
	h.SetupWatchlist(base)
	h.SetupJobs(base)
}
