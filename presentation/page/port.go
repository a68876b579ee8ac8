package page

import (
	"context"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

type Repository interface {
	// Create creates a new page
	Create(ctx context.Context, page *Page) error

	// CreateBatch inserts multiple pages in one transaction
	CreateBatch(ctx context.Context, pages []*Page) error

	// Update updates an existing page
	Update(ctx context.Context, id kernel.PageID, page *Page) error

	// GetByID retrieves a page by ID
	GetByID(ctx context.Context, id kernel.PageID) (*Page, error)

	// Delete deletes a page and closes the position gap
	Delete(ctx context.Context, id kernel.PageID) error

	// ListByProject retrieves a project's pages ordered by position
	ListByProject(ctx context.Context, projectID kernel.ProjectID) ([]*Page, error)

	// ListByProjectPaginated retrieves a project's pages with pagination
	ListByProjectPaginated(ctx context.Context, projectID kernel.ProjectID, pagination kernel.PaginationOptions) (*kernel.Paginated[Page], error)

	// Reorder assigns dense positions 0..n-1 following the given order
	Reorder(ctx context.Context, projectID kernel.ProjectID, pageIDs []kernel.PageID) error

	// CountByProject counts a project's pages
	CountByProject(ctx context.Context, projectID kernel.ProjectID) (int64, error)
}
