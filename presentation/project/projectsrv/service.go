package projectsrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/textgen"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/material"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/google/uuid"
)

const (
	// DefaultOutlinePages is used when the request does not pin a page count.
	DefaultOutlinePages = 8
	MaxOutlinePages     = 30

	// DefaultShareTTL bounds how long a share link stays valid.
	DefaultShareTTL = 7 * 24 * time.Hour
)

type Service struct {
	repo         project.Repository
	pageRepo     page.Repository
	materialRepo material.Repository
	textGen      *textgen.Generator

	shareSecret []byte
	shareTTL    time.Duration
}

// NewService creates a new project service
func NewService(
	repo project.Repository,
	pageRepo page.Repository,
	materialRepo material.Repository,
	textGen *textgen.Generator,
	shareSecret []byte,
) *Service {
	return &Service{
		repo:         repo,
		pageRepo:     pageRepo,
		materialRepo: materialRepo,
		textGen:      textGen,
		shareSecret:  shareSecret,
		shareTTL:     DefaultShareTTL,
	}
}

// ============================================================================
// CRUD
// ============================================================================

// CreateProject creates a new draft project
func (s *Service) CreateProject(ctx context.Context, req project.CreateProjectRequest) (*project.Project, error) {
	now := time.Now()
	entity := &project.Project{
		ID:                 kernel.NewProjectID(uuid.NewString()),
		Title:              req.Title,
		Idea:               req.Idea,
		Status:             project.ProjectStatusDraft,
		TemplateID:         req.TemplateID,
		ExportAllowPartial: req.ExportAllowPartial,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	logx.Infof("Created project: %s (%s)", entity.ID, entity.Title)
	return entity, nil
}

// GetProject retrieves a project by ID
func (s *Service) GetProject(ctx context.Context, id kernel.ProjectID) (*project.Project, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProjects retrieves all projects with pagination
func (s *Service) ListProjects(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[project.Project], error) {
	return s.repo.List(ctx, pagination)
}

// UpdateProject applies the requested field changes
func (s *Service) UpdateProject(ctx context.Context, id kernel.ProjectID, req project.UpdateProjectRequest) (*project.Project, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	idea := ""
	if req.Idea != nil {
		idea = *req.Idea
	}
	entity.UpdateDetails(title, idea)

	if req.TemplateID != nil {
		entity.TemplateID = req.TemplateID
	}
	if req.ExportAllowPartial != nil {
		entity.ExportAllowPartial = *req.ExportAllowPartial
	}
	if req.Outline != nil {
		if err := entity.SetOutline(*req.Outline); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// DeleteProject deletes a project and everything attached to it
func (s *Service) DeleteProject(ctx context.Context, id kernel.ProjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logx.Infof("Deleted project: %s", id)
	return nil
}
