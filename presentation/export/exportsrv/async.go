package exportsrv

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/google/uuid"
)

// EnqueueExport queues a project export for background processing
func (s *Service) EnqueueExport(ctx context.Context, req export.EnqueueExportRequest) (*export.JobStatusResponse, error) {
	logx.Infof("Queueing export: ProjectID=%s, Format=%s", req.ProjectID, req.Format)

	if !req.Format.Valid() {
		return nil, export.ErrInvalidFormat().
			WithDetail("format", string(req.Format))
	}

	proj, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	count, err := s.pageRepo.CountByProject(ctx, req.ProjectID)
	if err != nil {
		return nil, export.ErrJobCreationFailed().
			WithDetail("project_id", req.ProjectID).
			WithDetails(map[string]any{"error": err.Error()})
	}
	if count == 0 {
		return nil, export.ErrNoPages().
			WithDetail("project_id", req.ProjectID)
	}

	// The request can override the project's partial-export policy.
	allowPartial := proj.ExportAllowPartial
	if req.AllowPartial != nil {
		allowPartial = *req.AllowPartial
	}

	// Create job record
	jobID := kernel.NewJobID(uuid.NewString())
	job := &export.ExportJob{
		ID:                 jobID,
		ProjectID:          req.ProjectID,
		Status:             export.JobStatusPending,
		Format:             req.Format,
		AllowPartial:       allowPartial,
		AttemptCount:       0,
		MaxAttempts:        DefaultMaxAttempts,
		ProgressPercentage: 0,
		CreatedAt:          time.Now(),
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, export.ErrJobCreationFailed().
			WithDetail("project_id", req.ProjectID).
			WithDetail("format", req.Format).
			WithDetails(map[string]any{"error": err.Error()})
	}

	// Enqueue to Redis
	if err := s.queue.Enqueue(ctx, jobID, job); err != nil {
		// Mark job as failed if we can't queue it
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, export.ErrQueueEnqueueFailed().
			WithDetail("job_id", jobID).
			WithDetail("project_id", req.ProjectID).
			WithDetails(map[string]any{"error": err.Error()})
	}

	logx.Infof("Export job queued: JobID=%s", jobID)

	return &export.JobStatusResponse{
		JobID:     jobID,
		ProjectID: req.ProjectID,
		Format:    req.Format,
		Status:    export.JobStatusPending,
		Message:   "Export queued for processing",
		Progress:  0,
		CreatedAt: job.CreatedAt,
	}, nil
}

// ProcessExportJob - Worker function to process a job
func (s *Service) ProcessExportJob(ctx context.Context, job *export.ExportJob) error {
	logx.Infof("Processing export job: JobID=%s, Format=%s, Attempt=%d/%d",
		job.ID, job.Format, job.AttemptCount+1, job.MaxAttempts)

	// Mark as processing
	if err := s.jobRepo.MarkAsProcessing(ctx, job.ID); err != nil {
		return export.ErrJobUpdateFailed().
			WithDetail("job_id", job.ID).
			WithDetail("status", "processing").
			WithDetails(map[string]any{"error": err.Error()})
	}

	// Collect the project's pages in deck order
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, export.StepCollecting, 10)

	pages, err := s.pageRepo.ListByProject(ctx, job.ProjectID)
	if err != nil {
		return s.handleJobError(ctx, job, "page_listing_failed", err)
	}
	if len(pages) == 0 {
		return s.handleJobError(ctx, job, "no_pages",
			fmt.Errorf("project %s has no pages", job.ProjectID))
	}

	sources, skipped, err := s.collectSources(pages, job.AllowPartial)
	if err != nil {
		return s.handleJobError(ctx, job, "incomplete_pages", err)
	}

	// Encode and stream into storage
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, export.StepEncoding, 40)

	path, outcome, err := s.renderArtifact(ctx, job, sources)
	if err != nil {
		return s.handleJobError(ctx, job, "encoding_failed", err)
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, export.StepUploading, 90)

	// Mark as completed
	if err := s.jobRepo.MarkAsCompleted(ctx, job.ID, path, outcome.pageCount, skipped, outcome.leanEncoded); err != nil {
		logx.Errorf("Failed to mark export job as completed: %v", err)
		// Don't fail the job if we can't update status - the artifact was stored
	}

	logx.Infof("Export job completed: JobID=%s, Artifact=%s, Pages=%d, Skipped=%d, Lean=%t",
		job.ID, path, outcome.pageCount, skipped, outcome.leanEncoded)
	return nil
}

// handleJobError handles job processing errors with retry logic
func (s *Service) handleJobError(ctx context.Context, job *export.ExportJob, errorType string, err error) error {
	job.AttemptCount++

	errorDetails := map[string]any{
		"error":        err.Error(),
		"error_type":   errorType,
		"attempt":      job.AttemptCount,
		"max_attempts": job.MaxAttempts,
		"project_id":   job.ProjectID.String(),
		"format":       string(job.Format),
	}

	// Check if we should retry
	if job.AttemptCount < job.MaxAttempts {
		// Calculate exponential backoff: 2^attempt minutes
		retryDelay := time.Duration(1<<uint(job.AttemptCount)) * time.Minute
		nextRetry := time.Now().Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Export job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, errorType)

		// Enqueue for retry
		if queueErr := s.queue.EnqueueDelayed(ctx, job.ID, job, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue export job for retry: %v", queueErr)

			// If we can't enqueue, mark as failed
			_ = s.jobRepo.MarkAsFailed(ctx, job.ID,
				fmt.Sprintf("%s (retry enqueue failed)", errorType),
				errorDetails)

			return export.ErrJobRetryFailed().
				WithDetail("job_id", job.ID).
				WithDetail("error_type", errorType).
				WithDetails(errorDetails)
		}

		// Update job with retry info
		job.ErrorMessage = fmt.Sprintf("%s (will retry)", errorType)
		job.ErrorDetails = errorDetails
		job.Status = export.JobStatusPending // Reset to pending for retry

		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			logx.Errorf("Failed to update export job for retry: %v", updateErr)
		}

		return export.ErrJobFailed().
			WithDetail("job_id", job.ID).
			WithDetail("error_type", errorType).
			WithDetail("will_retry", true).
			WithDetail("next_retry_at", nextRetry).
			WithDetails(errorDetails)
	}

	// Max attempts reached - mark as permanently failed
	logx.Errorf("Export job permanently failed: JobID=%s, Error=%s, Attempts=%d/%d",
		job.ID, errorType, job.AttemptCount, job.MaxAttempts)

	_ = s.jobRepo.MarkAsFailed(ctx, job.ID, errorType, errorDetails)

	return export.ErrJobMaxRetriesReached().
		WithDetail("job_id", job.ID).
		WithDetail("error_type", errorType).
		WithDetail("final_attempt", job.AttemptCount).
		WithDetails(errorDetails)
}

// GetJobStatus retrieves the current status of a job
func (s *Service) GetJobStatus(ctx context.Context, jobID kernel.JobID) (*export.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	response := &export.JobStatusResponse{
		JobID:     job.ID,
		ProjectID: job.ProjectID,
		Format:    job.Format,
		Status:    job.Status,
		Progress:  job.ProgressPercentage,
		CreatedAt: job.CreatedAt,
	}

	// Set message based on status
	switch job.Status {
	case export.JobStatusPending:
		if job.AttemptCount > 0 {
			response.Message = fmt.Sprintf("Export pending retry (attempt %d/%d)", job.AttemptCount, job.MaxAttempts)
		} else {
			response.Message = "Export queued and waiting to be processed"
		}
		if job.NextRetryAt != nil {
			response.NextRetryAt = job.NextRetryAt
		}

	case export.JobStatusProcessing:
		response.Message = "Rendering export artifact"
		response.CurrentStep = job.CurrentStep
		response.StartedAt = job.StartedAt

	case export.JobStatusCompleted:
		response.Message = "Export completed"
		response.PageCount = job.PageCount
		response.SkippedPages = job.SkippedPages
		response.LeanEncoded = job.LeanEncoded
		response.CompletedAt = job.CompletedAt

	case export.JobStatusFailed:
		response.Message = job.ErrorMessage
		response.Error = &export.JobError{
			Message: job.ErrorMessage,
			Details: job.ErrorDetails,
		}
		response.FailedAt = job.FailedAt
		response.AttemptCount = job.AttemptCount
	}

	return response, nil
}

// ListJobsByProject retrieves all export jobs for a project
func (s *Service) ListJobsByProject(ctx context.Context, projectID kernel.ProjectID, pagination kernel.PaginationOptions) (*kernel.Paginated[export.ExportJob], error) {
	jobs, err := s.jobRepo.ListByProject(ctx, projectID, pagination)
	if err != nil {
		return nil, export.ErrRegistry.NewWithCause(export.CodeJobNotFound, err).
			WithDetail("project_id", projectID)
	}

	return jobs, nil
}

// CancelJob cancels a pending or processing job
func (s *Service) CancelJob(ctx context.Context, jobID kernel.JobID) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	if job.Status == export.JobStatusCompleted {
		return export.ErrJobAlreadyCompleted().
			WithDetail("job_id", jobID)
	}

	if job.Status == export.JobStatusProcessing {
		// Note: This won't stop an actively running job, just marks it
		logx.Warnf("Attempting to cancel export job that is currently processing: %s", jobID)
	}

	// Mark as failed with cancellation message
	now := time.Now()
	job.Status = export.JobStatusFailed
	job.FailedAt = &now
	job.ErrorMessage = "Export cancelled by user"
	job.ErrorDetails = map[string]any{
		"cancelled_at": now,
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return export.ErrJobUpdateFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{"error": err.Error()})
	}

	logx.Infof("Export job cancelled: JobID=%s", jobID)
	return nil
}

// RetryFailedJob manually retries a failed job
func (s *Service) RetryFailedJob(ctx context.Context, jobID kernel.JobID) (*export.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	// Can only retry failed jobs
	if job.Status != export.JobStatusFailed {
		return nil, export.ErrInvalidJobStatus().
			WithDetail("job_id", jobID).
			WithDetail("current_status", job.Status).
			WithDetail("required_status", export.JobStatusFailed)
	}

	// Reset job for retry
	job.Status = export.JobStatusPending
	job.AttemptCount = 0 // Reset attempt count for manual retry
	job.ErrorMessage = ""
	job.ErrorDetails = nil
	job.FailedAt = nil
	job.NextRetryAt = nil
	job.ProgressPercentage = 0
	job.CurrentStep = nil

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, export.ErrJobUpdateFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{"error": err.Error()})
	}

	// Re-enqueue
	if err := s.queue.Enqueue(ctx, jobID, job); err != nil {
		// Mark as failed again
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to re-enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, export.ErrQueueEnqueueFailed().
			WithDetail("job_id", jobID).
			WithDetails(map[string]any{"error": err.Error()})
	}

	logx.Infof("Export job manually retried: JobID=%s", jobID)

	return &export.JobStatusResponse{
		JobID:     jobID,
		ProjectID: job.ProjectID,
		Format:    job.Format,
		Status:    export.JobStatusPending,
		Message:   "Export requeued for processing",
		Progress:  0,
		CreatedAt: job.CreatedAt,
	}, nil
}
