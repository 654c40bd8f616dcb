package repository

import (
	"context"
	"fmt"

	"stock-hunter/internal/model"
	"stock-hunter/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WatchlistRepository interface {
	Get(ctx context.Context, param model.GetWatchlistParam) ([]model.WatchlistItem, error)
	Upsert(ctx context.Context, item *model.WatchlistItem) error
	UpsertMany(ctx context.Context, items []model.WatchlistItem) error
	Delete(ctx context.Context, symbol string) error
}

type watchlistRepository struct {
	db *gorm.DB
}

func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) Get(ctx context.Context, param model.GetWatchlistParam) ([]model.WatchlistItem, error) {
	var items []model.WatchlistItem

	query := r.db.WithContext(ctx).Order("symbol asc")
	if len(param.Symbols) > 0 {
		query = query.Where("symbol IN ?", param.Symbols)
	}
	if param.Limit != nil {
		query = query.Limit(*param.Limit)
	}

	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return items, nil
}

func (r *watchlistRepository) Upsert(ctx context.Context, item *model.WatchlistItem) error {
	item.Symbol = utils.NormalizeSymbol(item.Symbol)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"notes", "updated_at"}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert watchlist item %s: %w", item.Symbol, err)
	}
	return nil
}

func (r *watchlistRepository) UpsertMany(ctx context.Context, items []model.WatchlistItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].Symbol = utils.NormalizeSymbol(items[i].Symbol)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(&items).Error
	if err != nil {
		return fmt.Errorf("failed to upsert watchlist items: %w", err)
	}
	return nil
}

func (r *watchlistRepository) Delete(ctx context.Context, symbol string) error {
	result := r.db.WithContext(ctx).
		Where("symbol = ?", utils.NormalizeSymbol(symbol)).
		Delete(&model.WatchlistItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete watchlist item %s: %w", symbol, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
