package template

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// Template is a reusable visual style for slide generation. The style
// prompt is appended to every image generation call; the embedding is
// built from name + description for semantic search.
type Template struct {
	ID          kernel.TemplateID `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Description string            `db:"description" json:"description"`
	StylePrompt string            `db:"style_prompt" json:"style_prompt"`
	ThumbPath   string            `db:"thumb_path" json:"thumb_path,omitempty"`

	Embedding []float32 `db:"embedding" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EmbeddingText is the text the search embedding is computed from.
func (t *Template) EmbeddingText() string {
	return t.Name + "\n" + t.Description
}
