package page

import (
	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// CreatePageRequest - DTO for inserting a page manually
type CreatePageRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	Position    *int   `json:"position,omitempty"` // nil = append
}

// UpdatePageRequest - DTO for updating page content
type UpdatePageRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ReorderRequest - DTO for reordering a project's pages. The list must
// contain every page of the project exactly once.
type ReorderRequest struct {
	PageIDs []kernel.PageID `json:"page_ids" validate:"required,min=1"`
}

// GenerateImageRequest - DTO for per-page image generation
type GenerateImageRequest struct {
	EditInstruction string `json:"edit_instruction,omitempty"` // non-empty = edit previous image
}

// BulkGenerateResponse - Result of generating all pending pages
type BulkGenerateResponse struct {
	ProjectID kernel.ProjectID         `json:"project_id"`
	Requested int                      `json:"requested"`
	Succeeded []kernel.PageID          `json:"succeeded"`
	Failed    map[kernel.PageID]string `json:"failed,omitempty"`
}

// Response type alias for paginated pages
type PaginatedPagesResponse = kernel.Paginated[Page]
