package http

import (
	"errors"
	"net/http"

	"stock-hunter/internal/dto"
	"stock-hunter/internal/importer"
	"stock-hunter/internal/model"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func (h *HttpAPIHandler) SetupWatchlist(base *echo.Group) {
	v1 := base.Group("/v1/watchlist")
	{
		v1.GET("", h.GetWatchlist)
		v1.POST("", h.AddWatchlistItem)
		v1.DELETE("/:symbol", h.DeleteWatchlistItem)
		v1.POST("/import", h.ImportWatchlist)
	}
}

func (h *HttpAPIHandler) GetWatchlist(c echo.Context) error {
	items, err := h.watchlistRepo.Get(c.Request().Context(), model.GetWatchlistParam{})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlist", items))
}

func (h *HttpAPIHandler) AddWatchlistItem(c echo.Context) error {
	var req dto.AddWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	item := &model.WatchlistItem{Symbol: req.Symbol, Notes: req.Notes}
	if err := h.watchlistRepo.Upsert(c.Request().Context(), item); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlist item saved", item))
}

func (h *HttpAPIHandler) DeleteWatchlistItem(c echo.Context) error {
	symbol := c.Param("symbol")
	err := h.watchlistRepo.Delete(c.Request().Context(), symbol)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "symbol not in watchlist", nil))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlist item deleted", nil))
}

// ImportWatchlist accepts a CSV, TSV or XLSX upload and adds every symbol in
// its first column to the watch list.
func (h *HttpAPIHandler) ImportWatchlist(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("missing file upload"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	defer file.Close()

	symbols, err := importer.ReadSymbols(fileHeader.Filename, file)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}
	if len(symbols) == 0 {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("no symbols found in file"))
	}

	items := make([]model.WatchlistItem, 0, len(symbols))
	for _, s := range symbols {
		items = append(items, model.WatchlistItem{Symbol: s})
	}
	if err := h.watchlistRepo.UpsertMany(c.Request().Context(), items); err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}

	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Watchlist imported", map[string]interface{}{
		"imported": len(symbols),
		"symbols":  symbols,
	}))
}
