package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/freshspot/jobharvest/internal/domain"
)

// RunRepository persists harvest run records.
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run record.
func (r *RunRepository) Create(ctx context.Context, run *domain.HarvestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Update saves a run record's current state.
func (r *RunRepository) Update(ctx context.Context, run *domain.HarvestRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

// ListRecent retrieves the most recent runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]domain.HarvestRun, error) {
	var runs []domain.HarvestRun
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
