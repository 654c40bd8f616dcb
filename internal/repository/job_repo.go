package repository

import (
	"context"
	"fmt"

	"stock-hunter/internal/model"
	"stock-hunter/pkg/utils"

	"gorm.io/gorm"
)

type ScreenJobRepository interface {
	Get(ctx context.Context, param model.GetScreenJobParam, opts ...utils.DBOption) ([]model.ScreenJob, error)
	FindDue(ctx context.Context) ([]model.ScreenJob, error)
	UpdateSchedule(ctx context.Context, job *model.ScreenJob) error
	CreateHistory(ctx context.Context, history *model.ScreenJobHistory) error
	UpdateHistory(ctx context.Context, history *model.ScreenJobHistory) error
}

type screenJobRepository struct {
	db *gorm.DB
}

func NewScreenJobRepository(db *gorm.DB) ScreenJobRepository {
	return &screenJobRepository{db: db}
}

func (r *screenJobRepository) Get(ctx context.Context, param model.GetScreenJobParam, opts ...utils.DBOption) ([]model.ScreenJob, error) {
	var jobs []model.ScreenJob

	query := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if len(param.IDs) > 0 {
		query = query.Where("id IN ?", param.IDs)
	}
	if param.IsActive != nil {
		query = query.Where("is_active = ?", *param.IsActive)
	}
	if param.Limit != nil {
		query = query.Limit(*param.Limit)
	}

	if err := query.Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to get screen jobs: %w", err)
	}
	return jobs, nil
}

// FindDue returns active jobs whose next execution is unset or in the past.
func (r *screenJobRepository) FindDue(ctx context.Context) ([]model.ScreenJob, error) {
	var jobs []model.ScreenJob
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_execution IS NULL OR next_execution <= ?", utils.TimeNowMarket()).
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due screen jobs: %w", err)
	}
	return jobs, nil
}

func (r *screenJobRepository) UpdateSchedule(ctx context.Context, job *model.ScreenJob) error {
	err := r.db.WithContext(ctx).Model(job).
		Select("last_execution", "next_execution").
		Updates(job).Error
	if err != nil {
		return fmt.Errorf("failed to update screen job schedule: %w", err)
	}
	return nil
}

func (r *screenJobRepository) CreateHistory(ctx context.Context, history *model.ScreenJobHistory) error {
	if err := r.db.WithContext(ctx).Create(history).Error; err != nil {
		return fmt.Errorf("failed to create screen job history: %w", err)
	}
	return nil
}

func (r *screenJobRepository) UpdateHistory(ctx context.Context, history *model.ScreenJobHistory) error {
	if err := r.db.WithContext(ctx).Save(history).Error; err != nil {
		return fmt.Errorf("failed to update screen job history: %w", err)
	}
	return nil
}
