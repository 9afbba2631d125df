package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestRepository is the persistence ledger for ServiceRequest records.
// It carries no business validation; that belongs to the request service.
type RequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	// FindByIDForUpdate reads the row under a FOR UPDATE lock. Must be
	// called inside a transaction; concurrent deciders serialize on it.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ServiceRequest, error)
	ListByStatus(ctx context.Context, status string) ([]model.ServiceRequest, error)
	Update(ctx context.Context, req *model.ServiceRequest) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).Preload("User").Preload("Service").Preload("Approver").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	if err := GetDB(ctx, r.db).Preload("Service").Preload("Approver").
		Where("user_id = ?", userID).
		Order("requested_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByStatus(ctx context.Context, status string) ([]model.ServiceRequest, error) {
	var requests []model.ServiceRequest
	if err := GetDB(ctx, r.db).Preload("User").Preload("Service").Preload("Approver").
		Where("status = ?", status).
		Order("requested_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}
