package export

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// EnqueueExportRequest - DTO for requesting an export
type EnqueueExportRequest struct {
	ProjectID kernel.ProjectID `json:"project_id" validate:"required"`
	Format    Format           `json:"format" validate:"required"`

	// AllowPartial overrides the project's export_allow_partial flag
	// for this job when set.
	AllowPartial *bool `json:"allow_partial,omitempty"`
}

// JobStatusResponse - Response for job status queries
type JobStatusResponse struct {
	JobID     kernel.JobID     `json:"job_id"`
	ProjectID kernel.ProjectID `json:"project_id"`
	Format    Format           `json:"format"`
	Status    JobStatus        `json:"status"`
	Message   string           `json:"message"`
	Progress  int              `json:"progress"`

	CurrentStep *ProcessingStep `json:"current_step,omitempty"`
	Error       *JobError       `json:"error,omitempty"`

	PageCount    int  `json:"page_count,omitempty"`
	SkippedPages int  `json:"skipped_pages,omitempty"`
	LeanEncoded  bool `json:"lean_encoded,omitempty"`

	AttemptCount int        `json:"attempt_count,omitempty"`
	NextRetryAt  *time.Time `json:"next_retry_at,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

// JobError - Error details for failed jobs
type JobError struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
