package page

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// PageStatus tracks image generation for a single slide
type PageStatus string

const (
	PageStatusPending    PageStatus = "pending"
	PageStatusGenerating PageStatus = "generating"
	PageStatusCompleted  PageStatus = "completed"
	PageStatusFailed     PageStatus = "failed"
)

type Page struct {
	ID        kernel.PageID    `db:"id" json:"id"`
	ProjectID kernel.ProjectID `db:"project_id" json:"project_id"`

	Position    int    `db:"position" json:"position"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`

	Status    PageStatus `db:"status" json:"status"`
	ImagePath string     `db:"image_path" json:"image_path,omitempty"`
	ThumbPath string     `db:"thumb_path" json:"thumb_path,omitempty"`

	// Version increments on every successful image generation so stale
	// thumbnails can be detected by clients.
	Version int `db:"version" json:"version"`

	ErrorMessage string `db:"error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ============================================================================
// Domain Methods
// ============================================================================

// HasImage checks if the page has a completed slide image
func (p *Page) HasImage() bool {
	return p.Status == PageStatusCompleted && p.ImagePath != ""
}

// MarkGenerating transitions the page into generation
func (p *Page) MarkGenerating() {
	p.Status = PageStatusGenerating
	p.ErrorMessage = ""
	p.UpdatedAt = time.Now()
}

// MarkCompleted records the stored image and bumps the version
func (p *Page) MarkCompleted(imagePath, thumbPath string) {
	p.Status = PageStatusCompleted
	p.ImagePath = imagePath
	p.ThumbPath = thumbPath
	p.Version++
	p.ErrorMessage = ""
	p.UpdatedAt = time.Now()
}

// MarkFailed records a generation failure
func (p *Page) MarkFailed(msg string) {
	p.Status = PageStatusFailed
	p.ErrorMessage = msg
	p.UpdatedAt = time.Now()
}

// UpdateContent updates the slide text content
func (p *Page) UpdateContent(title, description string) {
	if title != "" {
		p.Title = title
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now()
}
