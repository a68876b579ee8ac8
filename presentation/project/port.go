package project

import (
	"context"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

type Repository interface {
	// Create creates a new project
	Create(ctx context.Context, project *Project) error

	// Update updates an existing project
	Update(ctx context.Context, id kernel.ProjectID, project *Project) error

	// GetByID retrieves a project by ID
	GetByID(ctx context.Context, id kernel.ProjectID) (*Project, error)

	// Delete deletes a project and everything hanging off it
	Delete(ctx context.Context, id kernel.ProjectID) error

	// List retrieves all projects with pagination
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Project], error)

	// Exists checks if a project exists by ID
	Exists(ctx context.Context, id kernel.ProjectID) (bool, error)
}
