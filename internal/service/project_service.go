package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type ProjectDTO struct {
	Name               string  `json:"name" binding:"required"`
	Summary            string  `json:"summary"`
	Details            string  `json:"details"`
	Status             string  `json:"status"`
	ProgressPercentage int     `json:"progress_percentage"`
	Highlighted        bool    `json:"highlighted"`
	StartDate          *string `json:"start_date"` // YYYY-MM-DD
	EndDate            *string `json:"end_date"`
	RepoLink           string  `json:"repo_link"`
	ClientID           *string `json:"client_id"`
	OwnerID            *string `json:"owner_id"`
}

type ProjectResponse struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Summary            string  `json:"summary"`
	Details            string  `json:"details"`
	Status             string  `json:"status"`
	ProgressPercentage int     `json:"progress_percentage"`
	Highlighted        bool    `json:"highlighted"`
	StartDate          *string `json:"start_date"`
	EndDate            *string `json:"end_date"`
	RepoLink           string  `json:"repo_link"`
	ClientID           *string `json:"client_id"`
	ClientName         string  `json:"client_name"`
	OwnerID            *string `json:"owner_id"`
	CreatedAt          string  `json:"created_at"`
}

// ProjectService manages project records and the public showcase
type ProjectService interface {
	CreateProject(ctx context.Context, req ProjectDTO) (ProjectResponse, error)
	GetProject(ctx context.Context, id uuid.UUID) (ProjectResponse, error)
	ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error)
	HighlightedProjects(ctx context.Context) ([]ProjectResponse, error)
	UpdateProject(ctx context.Context, id uuid.UUID, req ProjectDTO) (ProjectResponse, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
}

type projectService struct {
	repo  repository.ProjectRepository
	users repository.UserRepository
}

func NewProjectService(repo repository.ProjectRepository, users repository.UserRepository) ProjectService {
	return &projectService{repo: repo, users: users}
}

func (s *projectService) CreateProject(ctx context.Context, req ProjectDTO) (ProjectResponse, error) {
	project := model.Project{Status: model.ProjectPlanning}
	if err := s.applyDTO(ctx, &project, req); err != nil {
		return ProjectResponse{}, err
	}

	if err := s.repo.Create(ctx, &project); err != nil {
		return ProjectResponse{}, fmt.Errorf("failed to create project: %w", err)
	}
	return toProjectResponse(project), nil
}

func (s *projectService) GetProject(ctx context.Context, id uuid.UUID) (ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, notFoundOr(err, "project %s", id)
	}
	return toProjectResponse(*project), nil
}

func (s *projectService) ListProjects(ctx context.Context, page, limit int) ([]ProjectResponse, int64, error) {
	projects, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, toProjectResponse(p))
	}
	return result, total, nil
}

func (s *projectService) HighlightedProjects(ctx context.Context) ([]ProjectResponse, error) {
	projects, err := s.repo.ListHighlighted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list highlighted projects: %w", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, toProjectResponse(p))
	}
	return result, nil
}

func (s *projectService) UpdateProject(ctx context.Context, id uuid.UUID, req ProjectDTO) (ProjectResponse, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ProjectResponse{}, notFoundOr(err, "project %s", id)
	}

	if err := s.applyDTO(ctx, project, req); err != nil {
		return ProjectResponse{}, err
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return ProjectResponse{}, fmt.Errorf("failed to update project: %w", err)
	}
	return toProjectResponse(*project), nil
}

func (s *projectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "project %s", id)
	}
	return s.repo.Delete(ctx, id)
}

func (s *projectService) applyDTO(ctx context.Context, project *model.Project, req ProjectDTO) error {
	if req.Status != "" {
		if !model.ValidProjectStatus(req.Status) {
			return fmt.Errorf("invalid project status %q", req.Status)
		}
		project.Status = req.Status
	}
	if req.ProgressPercentage < 0 || req.ProgressPercentage > 100 {
		return fmt.Errorf("progress percentage must be between 0 and 100")
	}

	project.Name = req.Name
	project.Summary = req.Summary
	project.Details = req.Details
	project.ProgressPercentage = req.ProgressPercentage
	project.Highlighted = req.Highlighted
	project.RepoLink = req.RepoLink

	var err error
	if project.StartDate, err = parseDate(req.StartDate); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	if project.EndDate, err = parseDate(req.EndDate); err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}

	if project.ClientID, err = s.resolveUser(ctx, req.ClientID); err != nil {
		return fmt.Errorf("client: %w", err)
	}
	if project.OwnerID, err = s.resolveUser(ctx, req.OwnerID); err != nil {
		return fmt.Errorf("owner: %w", err)
	}

	return nil
}

// resolveUser verifies the referenced user exists and returns its id
func (s *projectService) resolveUser(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user %s", id)
	}
	return &user.ID, nil
}

func parseDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toProjectResponse(p model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:                 p.ID.String(),
		Name:               p.Name,
		Summary:            p.Summary,
		Details:            p.Details,
		Status:             p.Status,
		ProgressPercentage: p.ProgressPercentage,
		Highlighted:        p.Highlighted,
		RepoLink:           p.RepoLink,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}

	if p.StartDate != nil {
		s := p.StartDate.Format("2006-01-02")
		resp.StartDate = &s
	}
	if p.EndDate != nil {
		s := p.EndDate.Format("2006-01-02")
		resp.EndDate = &s
	}
	if p.ClientID != nil {
		s := p.ClientID.String()
		resp.ClientID = &s
	}
	if p.Client != nil {
		resp.ClientName = p.Client.FullName
	}
	if p.OwnerID != nil {
		s := p.OwnerID.String()
		resp.OwnerID = &s
	}

	return resp
}
