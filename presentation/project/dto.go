package project

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// CreateProjectRequest - DTO for creating a new project
type CreateProjectRequest struct {
	Title              string             `json:"title" validate:"required"`
	Idea               string             `json:"idea" validate:"required"`
	TemplateID         *kernel.TemplateID `json:"template_id,omitempty"`
	ExportAllowPartial bool               `json:"export_allow_partial"`
}

// UpdateProjectRequest - DTO for updating an existing project
type UpdateProjectRequest struct {
	Title              *string            `json:"title,omitempty"`
	Idea               *string            `json:"idea,omitempty"`
	TemplateID         *kernel.TemplateID `json:"template_id,omitempty"`
	ExportAllowPartial *bool              `json:"export_allow_partial,omitempty"`
	Outline            *[]OutlineItem     `json:"outline,omitempty"`
}

// GenerateOutlineRequest - DTO for outline generation
type GenerateOutlineRequest struct {
	PageCount int    `json:"page_count,omitempty"` // 0 = model decides
	Language  string `json:"language,omitempty"`
}

// MaterializePagesResponse - Result of creating page rows from the outline
type MaterializePagesResponse struct {
	ProjectID kernel.ProjectID `json:"project_id"`
	PageCount int              `json:"page_count"`
	PageIDs   []kernel.PageID  `json:"page_ids"`
}

// ShareLinkResponse - Signed read-only share token
type ShareLinkResponse struct {
	ProjectID kernel.ProjectID `json:"project_id"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// Response type alias for paginated projects
type PaginatedProjectsResponse = kernel.Paginated[Project]
