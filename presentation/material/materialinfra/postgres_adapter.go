package materialinfra

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/material"
	"github.com/jmoiron/sqlx"
)

// PostgresMaterialRepository implements material.Repository using PostgreSQL
type PostgresMaterialRepository struct {
	db *sqlx.DB
}

// NewPostgresMaterialRepository creates a new PostgreSQL material repository
func NewPostgresMaterialRepository(db *sqlx.DB) *PostgresMaterialRepository {
	return &PostgresMaterialRepository{
		db: db,
	}
}

const materialColumns = `
	id, project_id, file_name, file_type, file_path, file_size,
	page_count, extracted_text, created_at
`

// Create creates a new material record
func (r *PostgresMaterialRepository) Create(ctx context.Context, entity *material.Material) error {
	query := `
		INSERT INTO materials (
			id, project_id, file_name, file_type, file_path, file_size,
			page_count, extracted_text, created_at
		) VALUES (
			:id, :project_id, :file_name, :file_type, :file_path, :file_size,
			:page_count, :extracted_text, :created_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entity); err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}

	return nil
}

// GetByID retrieves a material by ID
func (r *PostgresMaterialRepository) GetByID(ctx context.Context, id kernel.MaterialID) (*material.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE id = $1`

	var entity material.Material
	err := r.db.GetContext(ctx, &entity, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, material.ErrMaterialNotFound()
		}
		return nil, fmt.Errorf("failed to get material by id: %w", err)
	}

	return &entity, nil
}

// ListByProject retrieves all materials for a project
func (r *PostgresMaterialRepository) ListByProject(ctx context.Context, projectID kernel.ProjectID) ([]*material.Material, error) {
	query := `SELECT ` + materialColumns + ` FROM materials WHERE project_id = $1 ORDER BY created_at DESC`

	var entities []*material.Material
	err := r.db.SelectContext(ctx, &entities, query, string(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	return entities, nil
}

// Delete deletes a material record
func (r *PostgresMaterialRepository) Delete(ctx context.Context, id kernel.MaterialID) error {
	query := `DELETE FROM materials WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return material.ErrMaterialNotFound()
	}

	return nil
}
