package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRequestDTO struct {
	ServiceID string `json:"service_id" binding:"required"`
	Details   string `json:"details"`
}

type ServiceRequestResponse struct {
	ID             string  `json:"id"`
	UserID         string  `json:"user_id"`
	ServiceID      string  `json:"service_id"`
	ServiceName    string  `json:"service_name"`
	Status         string  `json:"status"`
	Details        string  `json:"details"`
	RequestedAt    string  `json:"requested_at"`
	ApprovedByID   *string `json:"approved_by_id"`
	ApprovedByName string  `json:"approved_by_name"`
	ApprovedAt     *string `json:"approved_at"`
}

type TimelineEntryResponse struct {
	ID               string `json:"id"`
	ServiceRequestID string `json:"service_request_id"`
	Event            string `json:"event"`
	Details          string `json:"details"`
	Timestamp        string `json:"timestamp"`
}

// --- Interface ---

// RequestService orchestrates the service-request approval workflow: request
// creation, the single PENDING -> APPROVED/REJECTED transition, and the
// append-only timeline recorded atomically with each transition.
type RequestService interface {
	CreateRequest(ctx context.Context, userID uuid.UUID, req CreateRequestDTO) (ServiceRequestResponse, error)
	Decide(ctx context.Context, requestID, approverID uuid.UUID, approve bool) (ServiceRequestResponse, error)
	RequestsForUser(ctx context.Context, userID uuid.UUID) ([]ServiceRequestResponse, error)
	PendingRequests(ctx context.Context) ([]ServiceRequestResponse, error)
	Timeline(ctx context.Context, requestID uuid.UUID) ([]TimelineEntryResponse, error)
}

type requestService struct {
	requests repository.RequestRepository
	timeline repository.TimelineRepository
	users    repository.UserRepository
	services repository.ServiceRepository
	txm      repository.TransactionManager
}

func NewRequestService(
	requests repository.RequestRepository,
	timeline repository.TimelineRepository,
	users repository.UserRepository,
	services repository.ServiceRepository,
	txm repository.TransactionManager,
) RequestService {
	return &requestService{
		requests: requests,
		timeline: timeline,
		users:    users,
		services: services,
		txm:      txm,
	}
}

// --- Implementation ---

func (s *requestService) CreateRequest(ctx context.Context, userID uuid.UUID, req CreateRequestDTO) (ServiceRequestResponse, error) {
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		return ServiceRequestResponse{}, fmt.Errorf("service id %q: %w", req.ServiceID, ErrInvalid)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return ServiceRequestResponse{}, notFoundOr(err, "user %s", userID)
	}

	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return ServiceRequestResponse{}, notFoundOr(err, "service %s", serviceID)
	}

	request := model.ServiceRequest{
		UserID:      user.ID,
		ServiceID:   svc.ID,
		Status:      model.RequestPending,
		Details:     req.Details,
		RequestedAt: time.Now(),
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requests.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create service request: %w", createErr)
		}

		entry := model.TimelineEntry{
			ServiceRequestID: request.ID,
			Event:            model.EventRequested,
			Details:          "User requested service: " + svc.Name,
			Timestamp:        time.Now(),
		}
		if entryErr := s.timeline.Create(txCtx, &entry); entryErr != nil {
			return fmt.Errorf("failed to record timeline entry: %w", entryErr)
		}

		return nil
	})

	if err != nil {
		return ServiceRequestResponse{}, err
	}

	request.Service = svc
	return toRequestResponse(request), nil
}

// Decide transitions a PENDING request to APPROVED or REJECTED and appends
// the matching timeline entry in the same transaction. The request row is
// read under a FOR UPDATE lock so two concurrent deciders serialize; the
// loser sees a non-PENDING status and fails with ErrConflict, keeping the
// timeline at exactly one terminal entry.
func (s *requestService) Decide(ctx context.Context, requestID, approverID uuid.UUID, approve bool) (ServiceRequestResponse, error) {
	approver, err := s.users.GetByID(ctx, approverID)
	if err != nil {
		return ServiceRequestResponse{}, notFoundOr(err, "approver %s", approverID)
	}

	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		request, findErr := s.requests.FindByIDForUpdate(txCtx, requestID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("service request %s: %w", requestID, ErrNotFound)
			}
			return fmt.Errorf("failed to load service request: %w", findErr)
		}

		if request.Status != model.RequestPending {
			return fmt.Errorf("service request is already %s: %w", request.Status, ErrConflict)
		}

		now := time.Now()
		event := model.EventApproved
		details := "Approved by " + approver.FullName
		request.Status = model.RequestApproved
		if !approve {
			event = model.EventRejected
			details = "Rejected by " + approver.FullName
			request.Status = model.RequestRejected
		}
		request.ApprovedBy = &approver.ID
		request.ApprovedAt = &now

		if saveErr := s.requests.Update(txCtx, request); saveErr != nil {
			return fmt.Errorf("failed to update service request: %w", saveErr)
		}

		entry := model.TimelineEntry{
			ServiceRequestID: request.ID,
			Event:            event,
			Details:          details,
			Timestamp:        now,
		}
		if entryErr := s.timeline.Create(txCtx, &entry); entryErr != nil {
			return fmt.Errorf("failed to record timeline entry: %w", entryErr)
		}

		return nil
	})

	if err != nil {
		return ServiceRequestResponse{}, err
	}

	// Reload with relations for the response shape
	request, err := s.requests.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		return ServiceRequestResponse{}, fmt.Errorf("failed to reload service request: %w", err)
	}

	return toRequestResponse(*request), nil
}

func (s *requestService) RequestsForUser(ctx context.Context, userID uuid.UUID) ([]ServiceRequestResponse, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, notFoundOr(err, "user %s", userID)
	}

	requests, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}

	result := make([]ServiceRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, nil
}

func (s *requestService) PendingRequests(ctx context.Context) ([]ServiceRequestResponse, error) {
	requests, err := s.requests.ListByStatus(ctx, model.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	result := make([]ServiceRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRequestResponse(r))
	}
	return result, nil
}

func (s *requestService) Timeline(ctx context.Context, requestID uuid.UUID) ([]TimelineEntryResponse, error) {
	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, notFoundOr(err, "service request %s", requestID)
	}

	entries, err := s.timeline.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}

	result := make([]TimelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, TimelineEntryResponse{
			ID:               e.ID.String(),
			ServiceRequestID: e.ServiceRequestID.String(),
			Event:            e.Event,
			Details:          e.Details,
			Timestamp:        e.Timestamp.Format(time.RFC3339),
		})
	}
	return result, nil
}

// --- Helpers ---

// notFoundOr maps a missing row to ErrNotFound and keeps storage failures
// distinct so they surface as 500s rather than 404s.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func toRequestResponse(r model.ServiceRequest) ServiceRequestResponse {
	resp := ServiceRequestResponse{
		ID:          r.ID.String(),
		UserID:      r.UserID.String(),
		ServiceID:   r.ServiceID.String(),
		Status:      r.Status,
		Details:     r.Details,
		RequestedAt: r.RequestedAt.Format(time.RFC3339),
	}

	if r.Service != nil {
		resp.ServiceName = r.Service.Name
	}
	if r.ApprovedBy != nil {
		s := r.ApprovedBy.String()
		resp.ApprovedByID = &s
	}
	if r.Approver != nil {
		resp.ApprovedByName = r.Approver.FullName
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}

	return resp
}
