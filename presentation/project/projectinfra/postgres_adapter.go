package projectinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresProjectRepository implements project.Repository using PostgreSQL
type PostgresProjectRepository struct {
	db *sqlx.DB
}

// NewPostgresProjectRepository creates a new PostgreSQL project repository
func NewPostgresProjectRepository(db *sqlx.DB) *PostgresProjectRepository {
	return &PostgresProjectRepository{
		db: db,
	}
}

// ============================================================================
// Database Model
// ============================================================================

type projectModel struct {
	ID                 string          `db:"id"`
	Title              string          `db:"title"`
	Idea               string          `db:"idea"`
	Status             string          `db:"status"`
	Outline            json.RawMessage `db:"outline"`
	TemplateID         *string         `db:"template_id"`
	ExportAllowPartial bool            `db:"export_allow_partial"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (m *projectModel) toEntity() (*project.Project, error) {
	var outline []project.OutlineItem
	if len(m.Outline) > 0 {
		if err := json.Unmarshal(m.Outline, &outline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal outline: %w", err)
		}
	}

	var templateID *kernel.TemplateID
	if m.TemplateID != nil {
		id := kernel.TemplateID(*m.TemplateID)
		templateID = &id
	}

	return &project.Project{
		ID:                 kernel.ProjectID(m.ID),
		Title:              m.Title,
		Idea:               m.Idea,
		Status:             project.ProjectStatus(m.Status),
		Outline:            outline,
		TemplateID:         templateID,
		ExportAllowPartial: m.ExportAllowPartial,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

func fromEntity(p *project.Project) (*projectModel, error) {
	outline, err := json.Marshal(p.Outline)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outline: %w", err)
	}

	var templateID *string
	if p.TemplateID != nil {
		id := p.TemplateID.String()
		templateID = &id
	}

	return &projectModel{
		ID:                 string(p.ID),
		Title:              p.Title,
		Idea:               p.Idea,
		Status:             string(p.Status),
		Outline:            outline,
		TemplateID:         templateID,
		ExportAllowPartial: p.ExportAllowPartial,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}, nil
}

// ============================================================================
// Repository Implementation
// ============================================================================

// Create creates a new project
func (r *PostgresProjectRepository) Create(ctx context.Context, entity *project.Project) error {
	model, err := fromEntity(entity)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO projects (
			id, title, idea, status, outline, template_id,
			export_allow_partial, created_at, updated_at
		) VALUES (
			:id, :title, :idea, :status, :outline, :template_id,
			:export_allow_partial, :created_at, :updated_at
		)
	`

	_, err = r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return project.ErrProjectAlreadyExists()
			}
			if pqErr.Code == "23503" { // foreign_key_violation
				return fmt.Errorf("invalid template_id: %w", err)
			}
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// Update updates an existing project
func (r *PostgresProjectRepository) Update(ctx context.Context, id kernel.ProjectID, entity *project.Project) error {
	model, err := fromEntity(entity)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects SET
			title = :title,
			idea = :idea,
			status = :status,
			outline = :outline,
			template_id = :template_id,
			export_allow_partial = :export_allow_partial,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, model)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return project.ErrProjectNotFound()
	}

	return nil
}

// GetByID retrieves a project by ID
func (r *PostgresProjectRepository) GetByID(ctx context.Context, id kernel.ProjectID) (*project.Project, error) {
	query := `
		SELECT
			id, title, idea, status, outline, template_id,
			export_allow_partial, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var model projectModel
	err := r.db.GetContext(ctx, &model, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, project.ErrProjectNotFound()
		}
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}

	return model.toEntity()
}

// Delete deletes a project. Pages, materials and export jobs cascade.
func (r *PostgresProjectRepository) Delete(ctx context.Context, id kernel.ProjectID) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return project.ErrProjectNotFound()
	}

	return nil
}

// List retrieves all projects with pagination
func (r *PostgresProjectRepository) List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[project.Project], error) {
	pagination = pagination.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM projects`
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `
		SELECT
			id, title, idea, status, outline, template_id,
			export_allow_partial, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var models []projectModel
	err := r.db.SelectContext(ctx, &models, query, pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	entities := make([]project.Project, 0, len(models))
	for _, model := range models {
		entity, err := model.toEntity()
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}

	result := kernel.NewPaginated(entities, pagination.Page, pagination.PageSize, total)
	return &result, nil
}

// Exists checks if a project exists by ID
func (r *PostgresProjectRepository) Exists(ctx context.Context, id kernel.ProjectID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, string(id))
	if err != nil {
		return false, fmt.Errorf("failed to check project existence: %w", err)
	}

	return exists, nil
}
