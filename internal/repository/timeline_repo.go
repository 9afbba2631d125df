package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimelineRepository is the append-only recorder of request state
// transitions. It deliberately exposes no update or delete operation.
type TimelineRepository interface {
	Create(ctx context.Context, entry *model.TimelineEntry) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.TimelineEntry, error)
}

type timelineRepository struct {
	db *gorm.DB
}

func NewTimelineRepository(db *gorm.DB) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Create(ctx context.Context, entry *model.TimelineEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *timelineRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.TimelineEntry, error) {
	var entries []model.TimelineEntry
	if err := GetDB(ctx, r.db).
		Where("service_request_id = ?", requestID).
		Order("timestamp ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
