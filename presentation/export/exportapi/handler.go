package exportapi

import (
	"fmt"

	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/Abraxas-365/deckgen/presentation/export/exportsrv"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for export operations
type Handlers struct {
	service *exportsrv.Service
}

// NewHandlers creates a new export handlers instance
func NewHandlers(service *exportsrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// EnqueueExport queues a project export
// POST /api/v1/exports
func (h *Handlers) EnqueueExport(c *fiber.Ctx) error {
	var req export.EnqueueExportRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	status, err := h.service.EnqueueExport(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(status)
}

// GetJobStatus retrieves the status of an export job
// GET /api/v1/exports/:jobId
func (h *Handlers) GetJobStatus(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("jobId"))
	if jobID.IsEmpty() {
		return export.ErrJobNotFound().WithDetail("job_id", "missing or empty")
	}

	status, err := h.service.GetJobStatus(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.JSON(status)
}

// ListJobsByProject retrieves a project's export jobs
// GET /api/v1/projects/:projectId/exports
func (h *Handlers) ListJobsByProject(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	pagination := parsePaginationOptions(c)

	jobs, err := h.service.ListJobsByProject(c.Context(), projectID, pagination)
	if err != nil {
		return err
	}

	return c.JSON(jobs)
}

// CancelJob cancels a pending or processing export job
// POST /api/v1/exports/:jobId/cancel
func (h *Handlers) CancelJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("jobId"))
	if jobID.IsEmpty() {
		return export.ErrJobNotFound().WithDetail("job_id", "missing or empty")
	}

	if err := h.service.CancelJob(c.Context(), jobID); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Export job cancelled",
	})
}

// RetryJob manually retries a failed export job
// POST /api/v1/exports/:jobId/retry
func (h *Handlers) RetryJob(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("jobId"))
	if jobID.IsEmpty() {
		return export.ErrJobNotFound().WithDetail("job_id", "missing or empty")
	}

	status, err := h.service.RetryFailedJob(c.Context(), jobID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(status)
}

// DownloadArtifact streams the finished artifact
// GET /api/v1/exports/:jobId/download
func (h *Handlers) DownloadArtifact(c *fiber.Ctx) error {
	jobID := kernel.JobID(c.Params("jobId"))
	if jobID.IsEmpty() {
		return export.ErrJobNotFound().WithDetail("job_id", "missing or empty")
	}

	reader, job, err := h.service.DownloadArtifact(c.Context(), jobID)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("%s.%s", job.ProjectID, job.Format)
	c.Set(fiber.HeaderContentType, job.Format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))

	// fasthttp closes the stream when the response finishes.
	return c.SendStream(reader)
}

// ============================================================================
// Helper Functions
// ============================================================================

// parsePaginationOptions extracts pagination options from query parameters
func parsePaginationOptions(c *fiber.Ctx) kernel.PaginationOptions {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	return kernel.PaginationOptions{
		Page:     page,
		PageSize: pageSize,
	}
}

// RegisterRoutes registers all export routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/v1/exports")

	api.Post("/", handlers.EnqueueExport)
	api.Get("/:jobId", handlers.GetJobStatus)
	api.Post("/:jobId/cancel", handlers.CancelJob)
	api.Post("/:jobId/retry", handlers.RetryJob)
	api.Get("/:jobId/download", handlers.DownloadArtifact)

	app.Get("/api/v1/projects/:projectId/exports", handlers.ListJobsByProject)
}
