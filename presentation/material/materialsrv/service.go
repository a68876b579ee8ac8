package materialsrv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/textgen"
	"github.com/Abraxas-365/deckgen/internal/pdf"
	"github.com/Abraxas-365/deckgen/pkg/fsx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/material"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/google/uuid"
)

const (
	// maxVisionPages bounds how many PDF pages get described at upload.
	maxVisionPages = 3

	// maxPDFPages caps how large a PDF gets paged to images at upload.
	maxPDFPages = 50

	visionSystemPrompt = "You extract content from presentation reference material. Transcribe the text visible in the image and briefly describe any charts or figures. Respond with plain text only."
)

type Service struct {
	repo        material.Repository
	projectRepo project.Repository
	textGen     *textgen.Generator
	fs          fsx.FileSystem
}

// NewService creates a new material service
func NewService(
	repo material.Repository,
	projectRepo project.Repository,
	textGen *textgen.Generator,
	fs fsx.FileSystem,
) *Service {
	return &Service{
		repo:        repo,
		projectRepo: projectRepo,
		textGen:     textGen,
		fs:          fs,
	}
}

// Upload validates, stores, and processes a reference material. Text
// is extracted immediately so outline generation can use it without
// touching the file again.
func (s *Service) Upload(ctx context.Context, req material.UploadMaterialRequest) (*material.Material, error) {
	fileType := strings.ToLower(strings.TrimPrefix(req.FileType, "."))
	if !material.SupportedFileTypes[fileType] {
		return nil, material.ErrInvalidFileType().
			WithDetail("file_type", req.FileType).
			WithDetail("file_name", req.FileName)
	}
	if int64(len(req.Data)) > material.MaxFileSize {
		return nil, material.ErrFileTooLarge().
			WithDetail("file_name", req.FileName).
			WithDetail("file_size", len(req.Data)).
			WithDetail("max_size", material.MaxFileSize)
	}

	if _, err := s.projectRepo.GetByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	id := kernel.NewMaterialID(uuid.NewString())
	filePath := fmt.Sprintf("materials/%s/%s/%s", req.ProjectID, id, req.FileName)

	if err := s.fs.WriteFile(ctx, filePath, req.Data); err != nil {
		return nil, material.ErrUploadFailed().
			WithDetail("file_name", req.FileName).
			WithDetails(map[string]any{"error": err.Error()})
	}

	entity := &material.Material{
		ID:        id,
		ProjectID: req.ProjectID,
		FileName:  req.FileName,
		FileType:  fileType,
		FilePath:  filePath,
		FileSize:  int64(len(req.Data)),
		CreatedAt: time.Now(),
	}

	if err := s.extractContent(ctx, entity, req.Data); err != nil {
		_ = s.fs.DeleteFile(ctx, filePath)
		return nil, material.ErrProcessingFailed().
			WithDetail("file_name", req.FileName).
			WithDetail("file_type", fileType).
			WithDetails(map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		_ = s.fs.DeleteFile(ctx, filePath)
		return nil, err
	}

	logx.Infof("Uploaded material %s (%s, %d bytes) to project %s",
		id, fileType, entity.FileSize, req.ProjectID)
	return entity, nil
}

// extractContent fills ExtractedText and PageCount according to the
// material type.
func (s *Service) extractContent(ctx context.Context, entity *material.Material, data []byte) error {
	switch {
	case entity.IsText():
		entity.ExtractedText = string(data)
		return nil

	case entity.IsImage():
		format, err := pdf.DetectImageFormat(data)
		if err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
		// The vision payload is sent as a JPEG data URL.
		if format != "jpeg" {
			if data, err = pdf.ConvertImageToJPEG(data); err != nil {
				return fmt.Errorf("convert %s to jpeg: %w", format, err)
			}
		}
		text, err := s.describeImage(ctx, data)
		if err != nil {
			return err
		}
		entity.ExtractedText = text
		return nil

	case entity.FileType == "pdf":
		pages, err := pdf.PageCount(data)
		if err != nil {
			return fmt.Errorf("read pdf: %w", err)
		}
		if pages > maxPDFPages {
			return fmt.Errorf("pdf has %d pages, limit is %d", pages, maxPDFPages)
		}

		images, err := pdf.ConvertPDFToImages(data)
		if err != nil {
			return fmt.Errorf("convert pdf: %w", err)
		}
		entity.PageCount = len(images)

		var sb strings.Builder
		for i, img := range images {
			if i >= maxVisionPages {
				break
			}
			text, err := s.describeImage(ctx, img)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			fmt.Fprintf(&sb, "[page %d]\n%s\n", i+1, text)
		}
		entity.ExtractedText = sb.String()
		return nil

	default:
		return fmt.Errorf("no extractor for file type %q", entity.FileType)
	}
}

func (s *Service) describeImage(ctx context.Context, imageData []byte) (string, error) {
	return s.textGen.GenerateWithImage(ctx, visionSystemPrompt,
		"Extract the content of this reference image.", imageData)
}

// GetMaterial retrieves a material by ID
func (s *Service) GetMaterial(ctx context.Context, id kernel.MaterialID) (*material.Material, error) {
	return s.repo.GetByID(ctx, id)
}

// ListMaterials retrieves all materials of a project
func (s *Service) ListMaterials(ctx context.Context, projectID kernel.ProjectID) ([]*material.Material, error) {
	return s.repo.ListByProject(ctx, projectID)
}

// DeleteMaterial removes a material and its stored file
func (s *Service) DeleteMaterial(ctx context.Context, id kernel.MaterialID) error {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.fs.DeleteFile(ctx, entity.FilePath)

	logx.Infof("Deleted material %s from project %s", id, entity.ProjectID)
	return nil
}

// ToResponse maps a material to its transport shape
func ToResponse(m *material.Material) material.MaterialResponse {
	return material.MaterialResponse{
		ID:        m.ID,
		ProjectID: m.ProjectID,
		FileName:  m.FileName,
		FileType:  m.FileType,
		FileSize:  m.FileSize,
		PageCount: m.PageCount,
		HasText:   m.ExtractedText != "",
	}
}
