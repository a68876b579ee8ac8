package template

import (
	"context"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

type Repository interface {
	// Create creates a new template
	Create(ctx context.Context, template *Template) error

	// Update updates an existing template
	Update(ctx context.Context, id kernel.TemplateID, template *Template) error

	// GetByID retrieves a template by ID
	GetByID(ctx context.Context, id kernel.TemplateID) (*Template, error)

	// Delete deletes a template
	Delete(ctx context.Context, id kernel.TemplateID) error

	// List retrieves all templates with pagination
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Template], error)

	// SemanticSearch finds templates by embedding cosine distance
	SemanticSearch(ctx context.Context, embedding []float32, limit int) ([]TemplateMatch, error)
}
