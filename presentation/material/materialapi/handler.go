package materialapi

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/material"
	"github.com/Abraxas-365/deckgen/presentation/material/materialsrv"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/gofiber/fiber/v2"
)

// Handlers provides HTTP handlers for material operations
type Handlers struct {
	service *materialsrv.Service
}

// NewHandlers creates a new material handlers instance
func NewHandlers(service *materialsrv.Service) *Handlers {
	return &Handlers{
		service: service,
	}
}

// UploadMaterial uploads a reference material (multipart form, field "file")
// POST /api/v1/projects/:projectId/materials
func (h *Handlers) UploadMaterial(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errx.Wrap(err, "missing file in multipart form", errx.TypeValidation)
	}

	if fileHeader.Size > material.MaxFileSize {
		return material.ErrFileTooLarge().
			WithDetail("file_name", fileHeader.Filename).
			WithDetail("file_size", fileHeader.Size).
			WithDetail("max_size", material.MaxFileSize)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return errx.Wrap(err, "failed to open uploaded file", errx.TypeValidation)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errx.Wrap(err, "failed to read uploaded file", errx.TypeValidation)
	}

	req := material.UploadMaterialRequest{
		ProjectID: projectID,
		FileName:  fileHeader.Filename,
		FileType:  strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."),
		Data:      data,
	}

	uploaded, err := h.service.Upload(c.Context(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(materialsrv.ToResponse(uploaded))
}

// ListMaterials retrieves a project's materials
// GET /api/v1/projects/:projectId/materials
func (h *Handlers) ListMaterials(c *fiber.Ctx) error {
	projectID := kernel.ProjectID(c.Params("projectId"))
	if projectID.IsEmpty() {
		return project.ErrProjectNotFound().WithDetail("project_id", "missing or empty")
	}

	materials, err := h.service.ListMaterials(c.Context(), projectID)
	if err != nil {
		return err
	}

	responses := make([]material.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		responses = append(responses, materialsrv.ToResponse(m))
	}

	return c.JSON(responses)
}

// GetMaterial retrieves a material by ID
// GET /api/v1/materials/:id
func (h *Handlers) GetMaterial(c *fiber.Ctx) error {
	id := kernel.MaterialID(c.Params("id"))
	if id.IsEmpty() {
		return material.ErrMaterialNotFound().WithDetail("id", "missing or empty")
	}

	entity, err := h.service.GetMaterial(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(materialsrv.ToResponse(entity))
}

// DeleteMaterial removes a material
// DELETE /api/v1/materials/:id
func (h *Handlers) DeleteMaterial(c *fiber.Ctx) error {
	id := kernel.MaterialID(c.Params("id"))
	if id.IsEmpty() {
		return material.ErrMaterialNotFound().WithDetail("id", "missing or empty")
	}

	if err := h.service.DeleteMaterial(c.Context(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).Send(nil)
}

// RegisterRoutes registers all material routes
func RegisterRoutes(app *fiber.App, handlers *Handlers) {
	byProject := app.Group("/api/v1/projects/:projectId/materials")
	byProject.Post("/", handlers.UploadMaterial)
	byProject.Get("/", handlers.ListMaterials)

	byID := app.Group("/api/v1/materials")
	byID.Get("/:id", handlers.GetMaterial)
	byID.Delete("/:id", handlers.DeleteMaterial)
}
