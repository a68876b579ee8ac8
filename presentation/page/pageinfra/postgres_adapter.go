package pageinfra

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/jmoiron/sqlx"
)

// PostgresPageRepository implements page.Repository using PostgreSQL
type PostgresPageRepository struct {
	db *sqlx.DB
}

// NewPostgresPageRepository creates a new PostgreSQL page repository
func NewPostgresPageRepository(db *sqlx.DB) *PostgresPageRepository {
	return &PostgresPageRepository{
		db: db,
	}
}

const pageColumns = `
	id, project_id, position, title, description, status,
	image_path, thumb_path, version, error_message,
	created_at, updated_at
`

// Create creates a new page
func (r *PostgresPageRepository) Create(ctx context.Context, entity *page.Page) error {
	query := `
		INSERT INTO pages (
			id, project_id, position, title, description, status,
			image_path, thumb_path, version, error_message,
			created_at, updated_at
		) VALUES (
			:id, :project_id, :position, :title, :description, :status,
			:image_path, :thumb_path, :version, :error_message,
			:created_at, :updated_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entity); err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	return nil
}

// CreateBatch inserts multiple pages in one transaction
func (r *PostgresPageRepository) CreateBatch(ctx context.Context, pages []*page.Page) error {
	if len(pages) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pages (
			id, project_id, position, title, description, status,
			image_path, thumb_path, version, error_message,
			created_at, updated_at
		) VALUES (
			:id, :project_id, :position, :title, :description, :status,
			:image_path, :thumb_path, :version, :error_message,
			:created_at, :updated_at
		)
	`

	for _, p := range pages {
		if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
			return fmt.Errorf("failed to insert page at position %d: %w", p.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page batch: %w", err)
	}

	return nil
}

// Update updates an existing page
func (r *PostgresPageRepository) Update(ctx context.Context, id kernel.PageID, entity *page.Page) error {
	query := `
		UPDATE pages SET
			position = :position,
			title = :title,
			description = :description,
			status = :status,
			image_path = :image_path,
			thumb_path = :thumb_path,
			version = :version,
			error_message = :error_message,
			updated_at = :updated_at
		WHERE id = :id
	`

	result, err := r.db.NamedExecContext(ctx, query, entity)
	if err != nil {
		return fmt.Errorf("failed to update page: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return page.ErrPageNotFound()
	}

	return nil
}

// GetByID retrieves a page by ID
func (r *PostgresPageRepository) GetByID(ctx context.Context, id kernel.PageID) (*page.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	var entity page.Page
	err := r.db.GetContext(ctx, &entity, query, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, page.ErrPageNotFound()
		}
		return nil, fmt.Errorf("failed to get page by id: %w", err)
	}

	return &entity, nil
}

// Delete removes a page and shifts later positions down to keep the
// sequence dense.
func (r *PostgresPageRepository) Delete(ctx context.Context, id kernel.PageID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var deleted struct {
		ProjectID string `db:"project_id"`
		Position  int    `db:"position"`
	}
	err = tx.GetContext(ctx, &deleted,
		`DELETE FROM pages WHERE id = $1 RETURNING project_id, position`, string(id))
	if err != nil {
		if err == sql.ErrNoRows {
			return page.ErrPageNotFound()
		}
		return fmt.Errorf("failed to delete page: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE pages SET position = position - 1 WHERE project_id = $1 AND position > $2`,
		deleted.ProjectID, deleted.Position)
	if err != nil {
		return fmt.Errorf("failed to compact page positions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page delete: %w", err)
	}

	return nil
}

// ListByProject retrieves a project's pages ordered by position
func (r *PostgresPageRepository) ListByProject(ctx context.Context, projectID kernel.ProjectID) ([]*page.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE project_id = $1 ORDER BY position ASC`

	var entities []*page.Page
	err := r.db.SelectContext(ctx, &entities, query, string(projectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	return entities, nil
}

// ListByProjectPaginated retrieves a project's pages with pagination
func (r *PostgresPageRepository) ListByProjectPaginated(ctx context.Context, projectID kernel.ProjectID, pagination kernel.PaginationOptions) (*kernel.Paginated[page.Page], error) {
	pagination = pagination.Normalize()

	var total int
	countQuery := `SELECT COUNT(*) FROM pages WHERE project_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, string(projectID)); err != nil {
		return nil, fmt.Errorf("failed to count pages: %w", err)
	}

	query := `SELECT ` + pageColumns + ` FROM pages
		WHERE project_id = $1
		ORDER BY position ASC
		LIMIT $2 OFFSET $3`

	var entities []page.Page
	err := r.db.SelectContext(ctx, &entities, query, string(projectID), pagination.PageSize, pagination.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	result := kernel.NewPaginated(entities, pagination.Page, pagination.PageSize, total)
	return &result, nil
}

// Reorder assigns dense positions 0..n-1 following the given order.
// The ID list must cover the project's pages exactly.
func (r *PostgresPageRepository) Reorder(ctx context.Context, projectID kernel.ProjectID, pageIDs []kernel.PageID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM pages WHERE project_id = $1`, string(projectID)); err != nil {
		return fmt.Errorf("failed to count pages: %w", err)
	}
	if total != len(pageIDs) {
		return page.ErrInvalidReorder().
			WithDetail("project_pages", total).
			WithDetail("request_pages", len(pageIDs))
	}

	for pos, id := range pageIDs {
		result, err := tx.ExecContext(ctx,
			`UPDATE pages SET position = $1, updated_at = NOW() WHERE id = $2 AND project_id = $3`,
			pos, string(id), string(projectID))
		if err != nil {
			return fmt.Errorf("failed to reposition page %s: %w", id, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return page.ErrInvalidReorder().WithDetail("unknown_page_id", id.String())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}

	return nil
}

// CountByProject counts a project's pages
func (r *PostgresPageRepository) CountByProject(ctx context.Context, projectID kernel.ProjectID) (int64, error) {
	query := `SELECT COUNT(*) FROM pages WHERE project_id = $1`

	var count int64
	err := r.db.GetContext(ctx, &count, query, string(projectID))
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}

	return count, nil
}
