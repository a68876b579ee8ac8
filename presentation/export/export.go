package export

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// Format is the requested artifact format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPPTX Format = "pptx"
)

// Valid checks the format against the supported set
func (f Format) Valid() bool {
	return f == FormatPDF || f == FormatPPTX
}

// ContentType returns the MIME type for download responses
func (f Format) ContentType() string {
	switch f {
	case FormatPPTX:
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	default:
		return "application/pdf"
	}
}

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type ProcessingStep string

const (
	StepCollecting ProcessingStep = "collecting"
	StepEncoding   ProcessingStep = "encoding"
	StepUploading  ProcessingStep = "uploading"
)

type ExportJob struct {
	ID        kernel.JobID     `db:"id" json:"id"`
	ProjectID kernel.ProjectID `db:"project_id" json:"project_id"`

	Status       JobStatus `db:"status" json:"status"`
	Format       Format    `db:"format" json:"format"`
	AllowPartial bool      `db:"allow_partial" json:"allow_partial"`

	AttemptCount int `db:"attempt_count" json:"attempt_count"`
	MaxAttempts  int `db:"max_attempts" json:"max_attempts"`

	ErrorMessage string         `db:"error_message" json:"error_message,omitempty"`
	ErrorDetails map[string]any `db:"error_details" json:"error_details,omitempty"`

	CurrentStep        *ProcessingStep `db:"current_step" json:"current_step,omitempty"`
	ProgressPercentage int             `db:"progress_percentage" json:"progress_percentage"`

	// Artifact info, set on completion.
	ArtifactPath string `db:"artifact_path" json:"artifact_path,omitempty"`
	PageCount    int    `db:"page_count" json:"page_count"`
	SkippedPages int    `db:"skipped_pages" json:"skipped_pages"`
	LeanEncoded  bool   `db:"lean_encoded" json:"lean_encoded"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	FailedAt    *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	NextRetryAt *time.Time `db:"next_retry_at" json:"next_retry_at,omitempty"`
}

// IsTerminal checks if the job can no longer change on its own
func (j *ExportJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
