package http

import (
	"net/http"

	"stock-hunter/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupScreen(base *echo.Group) {
	v1 := base.Group("/v1/screen")
	{
		v1.POST("", h.RunScreen)
		v1.POST("/export", h.ExportScreen)
		v1.POST("/watchlist", h.RunWatchlistScreen)
	}
}

func (h *HttpAPIHandler) RunScreen(c echo.Context) error {
	var req dto.ScreenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	report, err := h.service.ScreenService.Screen(c.Request().Context(), req.Symbols)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Screen completed", report.Flatten()))
}

func (h *HttpAPIHandler) RunWatchlistScreen(c echo.Context) error {
	report, err := h.service.ScreenService.ScreenWatchlist(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlist screen completed", report.Flatten()))
}

// ExportScreen runs a screen and streams the report back as CSV.
func (h *HttpAPIHandler) ExportScreen(c echo.Context) error {
	var req dto.ScreenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	report, err := h.service.ScreenService.Screen(c.Request().Context(), req.Symbols)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="screen_report.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	return h.service.ScreenService.WriteCSV(report, c.Response())
}
