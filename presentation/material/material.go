package material

import (
	"time"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// MaxFileSize caps uploads at 20MB.
const MaxFileSize = 20 << 20

// SupportedFileTypes lists the accepted upload extensions.
var SupportedFileTypes = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"txt":  true,
	"md":   true,
}

type Material struct {
	ID        kernel.MaterialID `db:"id" json:"id"`
	ProjectID kernel.ProjectID  `db:"project_id" json:"project_id"`

	FileName string `db:"file_name" json:"file_name"`
	FileType string `db:"file_type" json:"file_type"`
	FilePath string `db:"file_path" json:"file_path"`
	FileSize int64  `db:"file_size" json:"file_size"`

	// PDFs are paged to JPEGs at upload; PageCount records how many.
	PageCount int `db:"page_count" json:"page_count,omitempty"`

	// Text files keep their content for outline conditioning.
	ExtractedText string `db:"extracted_text" json:"extracted_text,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsImage checks if the material is a directly usable image
func (m *Material) IsImage() bool {
	switch m.FileType {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}

// IsText checks if the material carries extractable text
func (m *Material) IsText() bool {
	return m.FileType == "txt" || m.FileType == "md"
}
