package material

import (
	"github.com/Abraxas-365/deckgen/pkg/kernel"
)

// UploadMaterialRequest - DTO carrying a validated upload
type UploadMaterialRequest struct {
	ProjectID kernel.ProjectID `json:"project_id" validate:"required"`
	FileName  string           `json:"file_name" validate:"required"`
	FileType  string           `json:"file_type" validate:"required"`
	Data      []byte           `json:"-"`
}

// MaterialResponse - DTO for returning material metadata (no text body)
type MaterialResponse struct {
	ID        kernel.MaterialID `json:"id"`
	ProjectID kernel.ProjectID  `json:"project_id"`
	FileName  string            `json:"file_name"`
	FileType  string            `json:"file_type"`
	FileSize  int64             `json:"file_size"`
	PageCount int               `json:"page_count,omitempty"`
	HasText   bool              `json:"has_text"`
}
