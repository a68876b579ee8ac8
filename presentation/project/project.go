package project

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// ProjectStatus represents the lifecycle of a deck project
type ProjectStatus string

const (
	ProjectStatusDraft    ProjectStatus = "DRAFT"    // Created, no outline yet
	ProjectStatusOutlined ProjectStatus = "OUTLINED" // Outline generated
	ProjectStatusReady    ProjectStatus = "READY"    // Pages materialized
)

// OutlineItem is one planned slide: a title plus talking points.
type OutlineItem struct {
	Title       string   `json:"title"`
	Bullets     []string `json:"bullets,omitempty"`
	Description string   `json:"description,omitempty"`
}

type Project struct {
	ID                 kernel.ProjectID   `db:"id" json:"id"`
	Title              string             `db:"title" json:"title"`
	Idea               string             `db:"idea" json:"idea"`
	Status             ProjectStatus      `db:"status" json:"status"`
	Outline            []OutlineItem      `db:"outline" json:"outline,omitempty"`
	TemplateID         *kernel.TemplateID `db:"template_id" json:"template_id,omitempty"`
	ExportAllowPartial bool               `db:"export_allow_partial" json:"export_allow_partial"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// HasOutline checks if the project has a generated outline
func (p *Project) HasOutline() bool {
	return len(p.Outline) > 0
}

// IsReady checks if pages have been materialized
func (p *Project) IsReady() bool {
	return p.Status == ProjectStatusReady
}

// SetOutline replaces the outline and advances the status
func (p *Project) SetOutline(items []OutlineItem) error {
	if len(items) == 0 {
		return ErrEmptyOutline()
	}
	p.Outline = items
	if p.Status == ProjectStatusDraft {
		p.Status = ProjectStatusOutlined
	}
	p.UpdatedAt = time.Now()
	return nil
}

// SetDescriptions fills per-item descriptions, keeping titles and bullets.
func (p *Project) SetDescriptions(descriptions []string) error {
	if len(descriptions) != len(p.Outline) {
		return ErrOutlineMismatch().
			WithDetail("outline_items", len(p.Outline)).
			WithDetail("descriptions", len(descriptions))
	}
	for i := range p.Outline {
		p.Outline[i].Description = descriptions[i]
	}
	p.UpdatedAt = time.Now()
	return nil
}

// MarkReady records that page rows exist for every outline item
func (p *Project) MarkReady() error {
	if !p.HasOutline() {
		return ErrNoOutline()
	}
	p.Status = ProjectStatusReady
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateDetails updates mutable project fields
func (p *Project) UpdateDetails(title, idea string) {
	if title != "" {
		p.Title = title
	}
	if idea != "" {
		p.Idea = idea
	}
	p.UpdatedAt = time.Now()
}
