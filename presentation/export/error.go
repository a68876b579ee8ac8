package export

import (
	"net/http"

	"github.com/Abraxas-365/deckgen/pkg/errx"
)

// Error Registry
var ErrRegistry = errx.NewRegistry("EXPORT")

// Error codes
var (
	CodeJobNotFound         = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Export job not found")
	CodeInvalidFormat       = ErrRegistry.Register("INVALID_FORMAT", errx.TypeValidation, http.StatusBadRequest, "Unsupported export format")
	CodeNoPages             = ErrRegistry.Register("NO_PAGES", errx.TypeBusiness, http.StatusBadRequest, "Project has no pages to export")
	CodeIncompletePages     = ErrRegistry.Register("INCOMPLETE_PAGES", errx.TypeBusiness, http.StatusConflict, "Project has pages without images and partial export is not allowed")
	CodeJobCreationFailed   = ErrRegistry.Register("JOB_CREATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to create export job")
	CodeQueueEnqueueFailed  = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue export job")
	CodeJobUpdateFailed     = ErrRegistry.Register("JOB_UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update export job")
	CodeJobFailed           = ErrRegistry.Register("JOB_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Export job failed")
	CodeJobRetryFailed      = ErrRegistry.Register("JOB_RETRY_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to schedule job retry")
	CodeJobMaxRetries       = ErrRegistry.Register("JOB_MAX_RETRIES", errx.TypeInternal, http.StatusInternalServerError, "Export job failed after maximum retries")
	CodeJobAlreadyCompleted = ErrRegistry.Register("JOB_ALREADY_COMPLETED", errx.TypeConflict, http.StatusConflict, "Export job already completed")
	CodeInvalidJobStatus    = ErrRegistry.Register("INVALID_JOB_STATUS", errx.TypeBusiness, http.StatusConflict, "Job is not in a state that allows this operation")
	CodeArtifactNotReady    = ErrRegistry.Register("ARTIFACT_NOT_READY", errx.TypeBusiness, http.StatusConflict, "Export artifact is not ready for download")
)

// Helper functions
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrInvalidFormat() *errx.Error {
	return ErrRegistry.New(CodeInvalidFormat)
}

func ErrNoPages() *errx.Error {
	return ErrRegistry.New(CodeNoPages)
}

func ErrIncompletePages() *errx.Error {
	return ErrRegistry.New(CodeIncompletePages)
}

func ErrJobCreationFailed() *errx.Error {
	return ErrRegistry.New(CodeJobCreationFailed)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrJobUpdateFailed() *errx.Error {
	return ErrRegistry.New(CodeJobUpdateFailed)
}

func ErrJobFailed() *errx.Error {
	return ErrRegistry.New(CodeJobFailed)
}

func ErrJobRetryFailed() *errx.Error {
	return ErrRegistry.New(CodeJobRetryFailed)
}

func ErrJobMaxRetriesReached() *errx.Error {
	return ErrRegistry.New(CodeJobMaxRetries)
}

func ErrJobAlreadyCompleted() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyCompleted)
}

func ErrInvalidJobStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidJobStatus)
}

func ErrArtifactNotReady() *errx.Error {
	return ErrRegistry.New(CodeArtifactNotReady)
}
