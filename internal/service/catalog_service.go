package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateServiceDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
}

type ServiceResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       string `json:"price"`
	CreatedAt   string `json:"created_at"`
}

// CatalogService manages the purchasable service catalog
type CatalogService interface {
	CreateService(ctx context.Context, req CreateServiceDTO) (ServiceResponse, error)
	ListServices(ctx context.Context) ([]ServiceResponse, error)
}

type catalogService struct {
	repo repository.ServiceRepository
}

func NewCatalogService(repo repository.ServiceRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) CreateService(ctx context.Context, req CreateServiceDTO) (ServiceResponse, error) {
	if _, err := s.repo.GetByName(ctx, req.Name); err == nil {
		return ServiceResponse{}, fmt.Errorf("service %q: %w", req.Name, ErrExists)
	}

	price := decimal.Zero
	if req.Price != "" {
		parsed, err := decimal.NewFromString(req.Price)
		if err != nil {
			return ServiceResponse{}, fmt.Errorf("invalid price: %w", err)
		}
		if parsed.IsNegative() {
			return ServiceResponse{}, fmt.Errorf("price must not be negative")
		}
		price = parsed
	}

	svc := model.Service{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       price,
	}
	if err := s.repo.Create(ctx, &svc); err != nil {
		return ServiceResponse{}, fmt.Errorf("failed to create service: %w", err)
	}

	return toServiceResponse(svc), nil
}

func (s *catalogService) ListServices(ctx context.Context) ([]ServiceResponse, error) {
	services, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	result := make([]ServiceResponse, 0, len(services))
	for _, svc := range services {
		result = append(result, toServiceResponse(svc))
	}
	return result, nil
}

func toServiceResponse(svc model.Service) ServiceResponse {
	return ServiceResponse{
		ID:          svc.ID.String(),
		Name:        svc.Name,
		Description: svc.Description,
		Category:    svc.Category,
		Price:       svc.Price.StringFixed(2),
		CreatedAt:   svc.CreatedAt.Format(time.RFC3339),
	}
}
