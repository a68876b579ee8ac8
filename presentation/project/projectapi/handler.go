package projectapi

import (
	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/Abraxas-365/deckgen/presentation/project/projectsrv"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for project operations
type Handlers struct {
	service *projectsrv.Service
}

// NewHandlers creates a new project handlers instance
func NewHandlers(service *projectsrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// CreateProject creates a new deck project
// POST /api/v1/projects
func (h *Handlers) CreateProject(c *fiber.Ctx) error {
	var req project.CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	created, err := h.service.CreateProject(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetProject retrieves a project by ID
// GET /api/v1/projects/:id
func (h *Handlers) GetProject(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	entity, err := h.service.GetProject(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// ListProjects retrieves all projects with pagination
// GET /api/v1/projects
func (h *Handlers) ListProjects(c *fiber.Ctx) error {
	pagination := parsePaginationOptions(c)

	projects, err := h.service.ListProjects(c.Context(), pagination)
	if err != nil {
		return err
	}

	return c.JSON(projects)
}

// UpdateProject updates an existing project
// PUT /api/v1/projects/:id
func (h *Handlers) UpdateProject(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	var req project.UpdateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.Wrap(err, "invalid request body", errx.TypeValidation)
	}

	updated, err := h.service.UpdateProject(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

// DeleteProject deletes a project
// DELETE /api/v1/projects/:id
func (h *Handlers) DeleteProject(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeleteProject(c.Context(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// GenerateOutline generates a slide outline for the project
// POST /api/v1/projects/:id/outline
func (h *Handlers) GenerateOutline(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	var req project.GenerateOutlineRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return errx.Wrap(err, "invalid request body", errx.TypeValidation)
		}
	}

	entity, err := h.service.GenerateOutline(c.Context(), id, req)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// GenerateDescriptions fills per-slide visual descriptions
// POST /api/v1/projects/:id/descriptions
func (h *Handlers) GenerateDescriptions(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	entity, err := h.service.GenerateDescriptions(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(entity)
}

// MaterializePages creates page rows from the outline
// POST /api/v1/projects/:id/pages/materialize
func (h *Handlers) MaterializePages(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	result, err := h.service.MaterializePages(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// CreateShareLink issues a read-only share token
// POST /api/v1/projects/:id/share
func (h *Handlers) CreateShareLink(c *fiber.Ctx) error {
	id := kernel.ProjectID(c.Params("id"))
	if id.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("id", "missing or empty")
	}

	link, err := h.service.CreateShareLink(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// ResolveShareLink loads a project via its share token
// GET /api/v1/shared/:token
func (h *Handlers) ResolveShareLink(c *fiber.Ctx) error {
	token := c.Params("token")
	if token == "" {
		return project.ErrInvalidShareLink().WithDetail("token", "missing or empty")
	}

	entity, err := h.service.ResolveShareLink(c.Context(), token)
	if err != nil {
		return err
	}

	return c.JSON(entity)
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

// RegisterRoutes registers all project routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	api := app.Group("/api/v1/projects")

	api.Post("/", handlers.CreateProject)
	api.Get("/", handlers.ListProjects)
	api.Get("/:id", handlers.GetProject)
	api.Put("/:id", handlers.UpdateProject)
	api.Delete("/:id", handlers.DeleteProject)

	api.Post("/:id/outline", handlers.GenerateOutline)
	api.Post("/:id/descriptions", handlers.GenerateDescriptions)
	api.Post("/:id/pages/materialize", handlers.MaterializePages)
	api.Post("/:id/share", handlers.CreateShareLink)

	app.Get("/api/v1/shared/:token", handlers.ResolveShareLink)
}
