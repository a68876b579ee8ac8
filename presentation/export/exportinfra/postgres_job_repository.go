package exportinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) export.JobRepository {
	return &PostgresJobRepository{db: db}
}

// dbJob is the database model with proper JSON handling
type dbJob struct {
	ID        string `db:"id"`
	ProjectID string `db:"project_id"`

	Status       string `db:"status"`
	Format       string `db:"format"`
	AllowPartial bool   `db:"allow_partial"`

	AttemptCount int `db:"attempt_count"`
	MaxAttempts  int `db:"max_attempts"`

	ErrorMessage string         `db:"error_message"`
	ErrorDetails sql.NullString `db:"error_details"`

	CurrentStep        *string `db:"current_step"`
	ProgressPercentage int     `db:"progress_percentage"`

	ArtifactPath string `db:"artifact_path"`
	PageCount    int    `db:"page_count"`
	SkippedPages int    `db:"skipped_pages"`
	LeanEncoded  bool   `db:"lean_encoded"`

	CreatedAt   time.Time  `db:"created_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
	NextRetryAt *time.Time `db:"next_retry_at"`
}

const jobColumns = `
	id, project_id, status, format, allow_partial,
	attempt_count, max_attempts, error_message, error_details,
	current_step, progress_percentage,
	artifact_path, page_count, skipped_pages, lean_encoded,
	created_at, started_at, completed_at, failed_at, next_retry_at
`

// Create creates a new export job record
func (r *PostgresJobRepository) Create(ctx context.Context, job *export.ExportJob) error {
	query := `
		INSERT INTO export_jobs (` + jobColumns + `) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19, $20
		)
	`

	model := r.toDBJob(job)
	_, err := r.db.ExecContext(ctx, query,
		model.ID, model.ProjectID, model.Status, model.Format, model.AllowPartial,
		model.AttemptCount, model.MaxAttempts, model.ErrorMessage, model.ErrorDetails,
		model.CurrentStep, model.ProgressPercentage,
		model.ArtifactPath, model.PageCount, model.SkippedPages, model.LeanEncoded,
		model.CreatedAt, model.StartedAt, model.CompletedAt, model.FailedAt, model.NextRetryAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("job already exists: %w", err)
		}
		return fmt.Errorf("create job: %w", err)
	}

	logx.Infof("Created export job: %s", job.ID)
	return nil
}

// Update updates an existing job
func (r *PostgresJobRepository) Update(ctx context.Context, job *export.ExportJob) error {
	query := `
		UPDATE export_jobs SET
			status = $2,
			allow_partial = $3,
			attempt_count = $4,
			error_message = $5,
			error_details = $6,
			current_step = $7,
			progress_percentage = $8,
			artifact_path = $9,
			page_count = $10,
			skipped_pages = $11,
			lean_encoded = $12,
			started_at = $13,
			completed_at = $14,
			failed_at = $15,
			next_retry_at = $16
		WHERE id = $1
	`

	model := r.toDBJob(job)
	result, err := r.db.ExecContext(ctx, query,
		model.ID, model.Status, model.AllowPartial, model.AttemptCount,
		model.ErrorMessage, model.ErrorDetails,
		model.CurrentStep, model.ProgressPercentage,
		model.ArtifactPath, model.PageCount, model.SkippedPages, model.LeanEncoded,
		model.StartedAt, model.CompletedAt, model.FailedAt, model.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return export.ErrJobNotFound().WithDetail("job_id", job.ID.String())
	}

	return nil
}

// GetByID retrieves a job by ID
func (r *PostgresJobRepository) GetByID(ctx context.Context, jobID kernel.JobID) (*export.ExportJob, error) {
	query := `SELECT ` + jobColumns + ` FROM export_jobs WHERE id = $1`

	var model dbJob
	err := r.db.GetContext(ctx, &model, query, jobID.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, export.ErrJobNotFound().WithDetail("job_id", jobID.String())
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return r.toDomainJob(&model), nil
}

// ListByProject retrieves all export jobs for a project with pagination
func (r *PostgresJobRepository) ListByProject(
	ctx context.Context,
	projectID kernel.ProjectID,
	pagination kernel.PaginationOptions,
) (*kernel.Paginated[export.ExportJob], error) {
	pagination = pagination.Normalize()

	countQuery := `SELECT COUNT(*) FROM export_jobs WHERE project_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, projectID.String()); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	query := `SELECT ` + jobColumns + ` FROM export_jobs
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var models []dbJob
	if err := r.db.SelectContext(ctx, &models, query, projectID.String(), pagination.PageSize, pagination.Offset()); err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}

	jobs := make([]export.ExportJob, 0, len(models))
	for i := range models {
		jobs = append(jobs, *r.toDomainJob(&models[i]))
	}

	result := kernel.NewPaginated(jobs, pagination.Page, pagination.PageSize, total)
	return &result, nil
}

// MarkAsProcessing marks a job as processing
func (r *PostgresJobRepository) MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error {
	query := `
		UPDATE export_jobs
		SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(export.JobStatusProcessing),
		now,
		string(export.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark as processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("job not found or not in pending status: %s", jobID)
	}

	logx.Infof("Marked export job as processing: %s", jobID)
	return nil
}

// MarkAsCompleted marks a job as completed with its artifact info
func (r *PostgresJobRepository) MarkAsCompleted(
	ctx context.Context,
	jobID kernel.JobID,
	artifactPath string,
	pageCount, skippedPages int,
	leanEncoded bool,
) error {
	query := `
		UPDATE export_jobs
		SET
			status = $2,
			artifact_path = $3,
			page_count = $4,
			skipped_pages = $5,
			lean_encoded = $6,
			completed_at = $7,
			progress_percentage = 100,
			error_message = '',
			error_details = NULL,
			next_retry_at = NULL
		WHERE id = $1
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(export.JobStatusCompleted),
		artifactPath,
		pageCount,
		skippedPages,
		leanEncoded,
		now,
	)
	if err != nil {
		return fmt.Errorf("mark as completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	logx.Infof("Marked export job as completed: %s, artifact: %s", jobID, artifactPath)
	return nil
}

// MarkAsFailed marks a job as failed
func (r *PostgresJobRepository) MarkAsFailed(
	ctx context.Context,
	jobID kernel.JobID,
	errorMsg string,
	errorDetails map[string]any,
) error {
	var errorDetailsJSON sql.NullString
	if len(errorDetails) > 0 {
		jsonBytes, err := json.Marshal(errorDetails)
		if err != nil {
			logx.Warnf("Failed to marshal error details: %v", err)
		} else {
			errorDetailsJSON = sql.NullString{
				String: string(jsonBytes),
				Valid:  true,
			}
		}
	}

	query := `
		UPDATE export_jobs
		SET
			status = $2,
			failed_at = $3,
			error_message = $4,
			error_details = $5
		WHERE id = $1
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(export.JobStatusFailed),
		now,
		errorMsg,
		errorDetailsJSON,
	)
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	logx.Warnf("Marked export job as failed: %s, Error: %s", jobID, errorMsg)
	return nil
}

// UpdateProgress updates the progress of a job
func (r *PostgresJobRepository) UpdateProgress(
	ctx context.Context,
	jobID kernel.JobID,
	step export.ProcessingStep,
	percentage int,
) error {
	query := `
		UPDATE export_jobs
		SET
			current_step = $2,
			progress_percentage = $3
		WHERE id = $1
	`

	stepStr := string(step)
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		stepStr,
		percentage,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	return nil
}

// ============================================================================
// Helper Methods
// ============================================================================

func (r *PostgresJobRepository) toDBJob(job *export.ExportJob) *dbJob {
	var errorDetails sql.NullString
	if len(job.ErrorDetails) > 0 {
		errorDetailsJSON, err := json.Marshal(job.ErrorDetails)
		if err != nil {
			logx.Warnf("Failed to marshal error details: %v", err)
		} else {
			errorDetails = sql.NullString{
				String: string(errorDetailsJSON),
				Valid:  true,
			}
		}
	}

	var currentStep *string
	if job.CurrentStep != nil {
		stepStr := string(*job.CurrentStep)
		currentStep = &stepStr
	}

	return &dbJob{
		ID:                 job.ID.String(),
		ProjectID:          job.ProjectID.String(),
		Status:             string(job.Status),
		Format:             string(job.Format),
		AllowPartial:       job.AllowPartial,
		AttemptCount:       job.AttemptCount,
		MaxAttempts:        job.MaxAttempts,
		ErrorMessage:       job.ErrorMessage,
		ErrorDetails:       errorDetails,
		CurrentStep:        currentStep,
		ProgressPercentage: job.ProgressPercentage,
		ArtifactPath:       job.ArtifactPath,
		PageCount:          job.PageCount,
		SkippedPages:       job.SkippedPages,
		LeanEncoded:        job.LeanEncoded,
		CreatedAt:          job.CreatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
		FailedAt:           job.FailedAt,
		NextRetryAt:        job.NextRetryAt,
	}
}

func (r *PostgresJobRepository) toDomainJob(model *dbJob) *export.ExportJob {
	var errorDetails map[string]any
	if model.ErrorDetails.Valid && model.ErrorDetails.String != "" {
		if err := json.Unmarshal([]byte(model.ErrorDetails.String), &errorDetails); err != nil {
			logx.Warnf("Failed to unmarshal error details for job %s: %v", model.ID, err)
			errorDetails = nil
		}
	}

	var currentStep *export.ProcessingStep
	if model.CurrentStep != nil {
		step := export.ProcessingStep(*model.CurrentStep)
		currentStep = &step
	}

	return &export.ExportJob{
		ID:                 kernel.JobID(model.ID),
		ProjectID:          kernel.ProjectID(model.ProjectID),
		Status:             export.JobStatus(model.Status),
		Format:             export.Format(model.Format),
		AllowPartial:       model.AllowPartial,
		AttemptCount:       model.AttemptCount,
		MaxAttempts:        model.MaxAttempts,
		ErrorMessage:       model.ErrorMessage,
		ErrorDetails:       errorDetails,
		CurrentStep:        currentStep,
		ProgressPercentage: model.ProgressPercentage,
		ArtifactPath:       model.ArtifactPath,
		PageCount:          model.PageCount,
		SkippedPages:       model.SkippedPages,
		LeanEncoded:        model.LeanEncoded,
		CreatedAt:          model.CreatedAt,
		StartedAt:          model.StartedAt,
		CompletedAt:        model.CompletedAt,
		FailedAt:           model.FailedAt,
		NextRetryAt:        model.NextRetryAt,
	}
}
