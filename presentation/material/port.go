package material

import (
	"context"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

type Repository interface {
	// Create creates a new material record
	Create(ctx context.Context, material *Material) error

	// GetByID retrieves a material by ID
	GetByID(ctx context.Context, id kernel.MaterialID) (*Material, error)

	// ListByProject retrieves all materials for a project
	ListByProject(ctx context.Context, projectID kernel.ProjectID) ([]*Material, error)

	// Delete deletes a material record
	Delete(ctx context.Context, id kernel.MaterialID) error
}
