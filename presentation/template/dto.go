package template

import (
	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// CreateTemplateRequest - DTO for creating a template
type CreateTemplateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	StylePrompt string `json:"style_prompt" validate:"required"`
}

// UpdateTemplateRequest - DTO for updating a template
type UpdateTemplateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	StylePrompt *string `json:"style_prompt,omitempty"`
}

// SearchTemplatesRequest - DTO for semantic template search
type SearchTemplatesRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit,omitempty"` // 0 = default
}

// TemplateMatch - A search hit with its cosine distance
type TemplateMatch struct {
	Template Template `json:"template"`
	Distance float64  `json:"distance"`
}

// Response type alias for paginated templates
type PaginatedTemplatesResponse = kernel.Paginated[Template]
