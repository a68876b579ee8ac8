package templateinfra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/template"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// PostgresTemplateRepository implements template.Repository using
// PostgreSQL with the pgvector extension for semantic search.
type PostgresTemplateRepository struct {
	db *sqlx.DB
}

// NewPostgresTemplateRepository creates a new PostgreSQL template repository
func NewPostgresTemplateRepository(db *sqlx.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{
		db: db,
	}
}

const defaultSearchLimit = 10

// ============================================================================
// Database Model
// ============================================================================

type templateModel struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	StylePrompt string          `db:"style_prompt"`
	ThumbPath   string          `db:"thumb_path"`
	Embedding   pgvector.Vector `db:"embedding"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (m *templateModel) toEntity() *template.Template {
	return &template.Template{
		ID:          kernel.TemplateID(m.ID),
		Name:        m.Name,
		Description: m.Description,
		StylePrompt: m.StylePrompt,
		ThumbPath:   m.ThumbPath,
		Embedding:   m.Embedding.Slice(),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromEntity(t *template.Template) *templateModel {
	return &templateModel{
		ID:          string(t.ID),
		Name:        t.Name,
		Description: t.Description,
		StylePrompt: t.StylePrompt,
		ThumbPath:   t.ThumbPath,
		Embedding:   pgvector.NewVector(t.Embedding),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new template
func (r *PostgresTemplateRepository) Create(ctx context.Context, entity *template.Template) error {
	model := fromEntity(entity)

	query := `
		INSERT INTO templates (
			id, name, description, style_prompt, thumb_path,
			embedding, created_at, updated_at
		) VALUES (
			:id, :name, :description, :style_prompt, :thumb_path,
			:embedding, :created_at, :updated_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// Update updates an existing template
func (r *PostgresTemplateRepository) Update(ctx context.Context, id kernel.TemplateID, entity *template.Template) error {
	model := fromEntity(entity)

	query := `
		UPDATE templates SET
			name = :name,
			description = :description,
			style_prompt = :style_prompt,
			thumb_path = :thumb_path,
			embedding = :embedding,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return template.ErrTemplateNotFound()
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id kernel.TemplateID) (*template.Template, error) {
	query := `
		SELECT id, name, description, style_prompt, thumb_path,
		       embedding, created_at, updated_at
		FROM templates
		WHERE id = $1
	`

	var model templateModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, template.ErrTemplateNotFound()
		}
		return nil, fmt.Errorf("failed to get template by id: %w", err)
	}

	return model.toEntity(), nil
}

// Delete deletes a template
func (r *PostgresTemplateRepository) Delete(ctx context.Context, id kernel.TemplateID) error {
	query := `DELETE FROM templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return template.ErrTemplateNotFound()
	}

	return nil
}

// List retrieves all templates with pagination
func (r *PostgresTemplateRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[template.Template], error) {
	pagination = pagination.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM templates`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, fmt.Errorf("failed to count templates: %w", err)
	}

	query := `
		SELECT id, name, description, style_prompt, thumb_path,
		       embedding, created_at, updated_at
		FROM templates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var models []templateModel
	err := r.db.SelectContext(ctx, &models, query, pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	entities := make([]template.Template, 0, len(models))
	for _, model := range models {
		entities = append(entities, *model.toEntity())
	}

	result := kernel.NewPaginated(entities, pagination.Page, pagination.PageSize, total)
	return &result, nil
}

// SemanticSearch finds templates by embedding cosine distance
func (r *PostgresTemplateRepository) SemanticSearch(ctx context.Context, embedding []float32, limit int) ([]template.TemplateMatch, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	query := `
		SELECT id, name, description, style_prompt, thumb_path,
		       embedding, created_at, updated_at,
		       embedding <=> $1 AS distance
		FROM templates
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT $2
	`

	var rows []struct {
		templateModel
		Distance float64 `db:"distance"`
	}
	err := r.db.SelectContext(ctx, &rows, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search templates: %w", err)
	}

	matches := make([]template.TemplateMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, template.TemplateMatch{
			Template: *row.toEntity(),
			Distance: row.Distance,
		})
	}

	return matches, nil
}
