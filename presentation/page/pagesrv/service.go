package pagesrv

import (
	"context"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/imagegen"
	"github.com/Abraxas-365/deckgen/pkg/fsx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/Abraxas-365/deckgen/presentation/template"
	"github.com/google/uuid"
)

type Service struct {
	repo         page.Repository
	projectRepo  project.Repository
	templateRepo template.Repository
	imageGen     *imagegen.Generator
	fs           fsx.FileSystem
}

// NewService creates a new page service
func NewService(
	repo page.Repository,
	projectRepo project.Repository,
	templateRepo template.Repository,
	imageGen *imagegen.Generator,
	fs fsx.FileSystem,
) *Service {
	return &Service{
		repo:         repo,
		projectRepo:  projectRepo,
		templateRepo: templateRepo,
		imageGen:     imageGen,
		fs:           fs,
	}
}

// ============================================================================
// CRUD
// ============================================================================

// CreatePage inserts a page into a project, appending by default or at
// the requested position.
func (s *Service) CreatePage(ctx context.Context, projectID kernel.ProjectID, req page.CreatePageRequest) (*page.Page, error) {
	if _, err := s.projectRepo.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	count, err := s.repo.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entity := &page.Page{
		ID:          kernel.NewPageID(uuid.NewString()),
		ProjectID:   projectID,
		Position:    int(count),
		Title:       req.Title,
		Description: req.Description,
		Status:      page.PageStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	// Move the appended page into place when a position was requested.
	if req.Position != nil && *req.Position >= 0 && *req.Position < int(count) {
		if err := s.moveToPosition(ctx, projectID, entity.ID, *req.Position); err != nil {
			return nil, err
		}
		entity.Position = *req.Position
	}

	logx.Infof("Created page %s in project %s at position %d", entity.ID, projectID, entity.Position)
	return entity, nil
}

// moveToPosition rebuilds the project's page order with the given page
// at target.
func (s *Service) moveToPosition(ctx context.Context, projectID kernel.ProjectID, pageID kernel.PageID, target int) error {
	pages, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	order := make([]kernel.PageID, 0, len(pages))
	for _, p := range pages {
		if p.ID != pageID {
			order = append(order, p.ID)
		}
	}
	if target > len(order) {
		target = len(order)
	}
	order = append(order[:target], append([]kernel.PageID{pageID}, order[target:]...)...)

	return s.repo.Reorder(ctx, projectID, order)
}

// GetPage retrieves a page by ID
func (s *Service) GetPage(ctx context.Context, id kernel.PageID) (*page.Page, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPages retrieves a project's pages in deck order
func (s *Service) ListPages(ctx context.Context, projectID kernel.ProjectID) ([]*page.Page, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// ListPagesPaginated retrieves a project's pages with pagination
func (s *Service) ListPagesPaginated(ctx context.Context, projectID kernel.ProjectID, pagination kernel.PaginationOptions) (*kernel.Paginated[page.Page], error) {
	return s.repo.ListByProjectPaginated(ctx, projectID, pagination)
}

// UpdatePage updates a page's text content
func (s *Service) UpdatePage(ctx context.Context, id kernel.PageID, req page.UpdatePageRequest) (*page.Page, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	description := ""
	if req.Description != nil {
		description = *req.Description
	}
	entity.UpdateContent(title, description)

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// DeletePage removes a page and its stored images
func (s *Service) DeletePage(ctx context.Context, id kernel.PageID) error {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if entity.ImagePath != "" {
		_ = s.fs.DeleteFile(ctx, entity.ImagePath)
	}
	if entity.ThumbPath != "" {
		_ = s.fs.DeleteFile(ctx, entity.ThumbPath)
	}

	logx.Infof("Deleted page %s from project %s", id, entity.ProjectID)
	return nil
}

// ReorderPages applies a full ordering to a project's pages
func (s *Service) ReorderPages(ctx context.Context, projectID kernel.ProjectID, req page.ReorderRequest) error {
	if len(req.PageIDs) == 0 {
		return page.ErrInvalidReorder().WithDetail("project_id", projectID)
	}

	seen := make(map[kernel.PageID]struct{}, len(req.PageIDs))
	for _, id := range req.PageIDs {
		if _, dup := seen[id]; dup {
			return page.ErrInvalidReorder().
				WithDetail("project_id", projectID).
				WithDetail("duplicate_page_id", id.String())
		}
		seen[id] = struct{}{}
	}

	return s.repo.Reorder(ctx, projectID, req.PageIDs)
}
