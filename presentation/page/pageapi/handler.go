package pageapi

import (
	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/page/pagesrv"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for page operations
type Handlers struct {
	service *pagesrv.Service
}

// NewHandlers creates a new page handlers instance
func NewHandlers(service *pagesrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreatePage inserts a page into a project
// POST /api/v1/projects/:projectId/pages
func (h *Handlers) CreatePage(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	var req page.CreatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	created, err := h.service.CreatePage(c.Context(), projectID, req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ListPages retrieves a project's pages in deck order
// GET /api/v1/projects/:projectId/pages
func (h *Handlers) ListPages(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	pages, err := h.service.ListPages(c.Context(), projectID)
	if err != nil {
		return err
	}

	return c.JSON(pages)
}

// ReorderPages applies a full ordering to a project's pages
// POST /api/v1/projects/:projectId/pages/reorder
func (h *Handlers) ReorderPages(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	var req page.ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	if err := h.service.ReorderPages(c.Context(), projectID, req); err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Pages reordered successfully",
	})
}

// BulkGenerate renders images for every page without one
// POST /api/v1/projects/:projectId/pages/generate-all
func (h *Handlers) BulkGenerate(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	result, err := h.service.BulkGenerate(c.Context(), projectID)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// GetPage retrieves a page by ID
// GET /api/v1/pages/:id
func (h *Handlers) GetPage(c *fiber.Ctx) error {
	id := kernel.PageID(c.Params("id"))
	if id.IsEmpty() {
		return page.ErrPageNotFound().WithDetail("id", "missing or empty")
	}

	entity, err := h.service.GetPage(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// UpdatePage updates a page's text content
// PUT /api/v1/pages/:id
func (h *Handlers) UpdatePage(c *fiber.Ctx) error {
	id := kernel.PageID(c.Params("id"))
	if id.IsEmpty() {
		return page.ErrPageNotFound().WithDetail("id", "missing or empty")
	}

	var req page.UpdatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	updated, err := h.service.UpdatePage(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// DeletePage removes a page
// DELETE /api/v1/pages/:id
func (h *Handlers) DeletePage(c *fiber.Ctx) error {
	id := kernel.PageID(c.Params("id"))
	if id.IsEmpty() {
		return page.ErrPageNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeletePage(c.Context(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// GenerateImage renders or edits the slide image for a page
// POST /api/v1/pages/:id/image
func (h *Handlers) GenerateImage(c *fiber.Ctx) error {
	id := kernel.PageID(c.Params("id"))
	if id.IsEmpty() {
		return page.ErrPageNotFound().WithDetail("id", "missing or empty")
	}

	var req page.GenerateImageRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errx.Wrap(err, "invalid request body", errx.TypeValidation)
		}
	}

	entity, err := h.service.GenerateImage(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// RegisterRoutes registers all page routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	byProject := app.Group("/api/v1/projects/:projectId/pages")
	byProject.Post("/", handlers.CreatePage)
	byProject.Get("/", handlers.ListPages)
	byProject.Post("/reorder", handlers.ReorderPages)
	byProject.Post("/generate-all", handlers.BulkGenerate)

	byID := app.Group("/api/v1/pages")
	byID.Get("/:id", handlers.GetPage)
	byID.Put("/:id", handlers.UpdatePage)
	byID.Delete("/:id", handlers.DeletePage)
	byID.Post("/:id/image", handlers.GenerateImage)
}
