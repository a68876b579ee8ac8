package templateapi

import (
	"io"

	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/template"
	"github.com/Abraxas-365/deckgen/presentation/template/templatesrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for template operations
type Handlers struct {
	service *templatesrv.Service
}

// NewHandlers creates a new template handlers instance
func NewHandlers(service *templatesrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateTemplate creates a new template
// POST /api/v1/templates
func (h *Handlers) CreateTemplate(c *fiber.Ctx) error {
	var req template.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	created, err := h.service.CreateTemplate(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetTemplate retrieves a template by ID
// GET /api/v1/templates/:id
func (h *Handlers) GetTemplate(c *fiber.Ctx) error {
	id := kernel.TemplateID(c.Params("id"))
	if id.IsEmpty() {
		return template.ErrTemplateNotFound().WithDetail("id", "missing or empty")
	}

	entity, err := h.service.GetTemplate(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// ListTemplates retrieves all templates with pagination
// GET /api/v1/templates
func (h *Handlers) ListTemplates(c *fiber.Ctx) error {
	pagination := parsePaginationOptions(c)

	templates, err := h.service.ListTemplates(c.Context(), pagination)
	if err != nil {
		return err
	}

	return c.JSON(templates)
}

// UpdateTemplate updates an existing template
// PUT /api/v1/templates/:id
func (h *Handlers) UpdateTemplate(c *fiber.Ctx) error {
	id := kernel.TemplateID(c.Params("id"))
	if id.IsEmpty() {
		return template.ErrTemplateNotFound().WithDetail("id", "missing or empty")
	}

	var req template.UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	updated, err := h.service.UpdateTemplate(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// DeleteTemplate deletes a template
// DELETE /api/v1/templates/:id
func (h *Handlers) DeleteTemplate(c *fiber.Ctx) error {
	id := kernel.TemplateID(c.Params("id"))
	if id.IsEmpty() {
		return template.ErrTemplateNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeleteTemplate(c.Context(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// UploadThumbnail stores a preview image for a template
// POST /api/v1/templates/:id/thumbnail
func (h *Handlers) UploadThumbnail(c *fiber.Ctx) error {
	id := kernel.TemplateID(c.Params("id"))
	if id.IsEmpty() {
		return template.ErrTemplateNotFound().WithDetail("id", "missing or empty")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errx.Wrap(err, "missing file in multipart form", errx.TypeValidation)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errx.Wrap(err, "failed to open uploaded file", errx.TypeValidation)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errx.Wrap(err, "failed to read uploaded file", errx.TypeValidation)
	}

	updated, err := h.service.UploadThumbnail(c.Context(), id, data)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// SearchTemplates finds templates semantically close to a query
// POST /api/v1/templates/search
func (h *Handlers) SearchTemplates(c *fiber.Ctx) error {
	var req template.SearchTemplatesRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}
	if req.Query == "" {
		return template.ErrSearchFailed().WithDetail("query", "missing or empty")
	}

	matches, err := h.service.SearchTemplates(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(matches)
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

// RegisterRoutes registers all template routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/v1/templates")

	api.Post("/", handlers.CreateTemplate)
	api.Get("/", handlers.ListTemplates)
	api.Post("/search", handlers.SearchTemplates)
	api.Get("/:id", handlers.GetTemplate)
	api.Put("/:id", handlers.UpdateTemplate)
	api.Delete("/:id", handlers.DeleteTemplate)
	api.Post("/:id/thumbnail", handlers.UploadThumbnail)
}
