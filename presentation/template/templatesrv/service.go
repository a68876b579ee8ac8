package templatesrv

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/embeddings"
	"github.com/Abraxas-365/deckgen/pkg/fsx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/template"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// thumbWidth is the pixel width of stored template thumbnails.
const thumbWidth = 320

type Service struct {
	repo     template.Repository
	embedGen *embeddings.Generator
	fs       fsx.FileSystem
}

// NewService creates a new template service
func NewService(repo template.Repository, embedGen *embeddings.Generator, fs fsx.FileSystem) *Service {
	return &Service{
		repo:     repo,
		embedGen: embedGen,
		fs:       fs,
	}
}

// CreateTemplate creates a template and its search embedding
func (s *Service) CreateTemplate(ctx context.Context, req template.CreateTemplateRequest) (*template.Template, error) {
	now := time.Now()
	entity := &template.Template{
		ID:          kernel.NewTemplateID(uuid.NewString()),
		Name:        req.Name,
		Description: req.Description,
		StylePrompt: req.StylePrompt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	embedding, err := s.embedGen.Generate(ctx, entity.EmbeddingText())
	if err != nil {
		return nil, template.ErrEmbeddingFailed().
			WithDetail("template_name", req.Name).
			WithDetails(map[string]any{"error": err.Error()})
	}
	entity.Embedding = embedding

	if err := s.repo.Create(ctx, entity); err != nil {
		return nil, err
	}

	logx.Infof("Created template: %s (%s)", entity.ID, entity.Name)
	return entity, nil
}

// UpdateTemplate applies field changes, recomputing the embedding when
// the searchable text changed.
func (s *Service) UpdateTemplate(ctx context.Context, id kernel.TemplateID, req template.UpdateTemplateRequest) (*template.Template, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reembed := false
	if req.Name != nil && *req.Name != entity.Name {
		entity.Name = *req.Name
		reembed = true
	}
	if req.Description != nil && *req.Description != entity.Description {
		entity.Description = *req.Description
		reembed = true
	}
	if req.StylePrompt != nil {
		entity.StylePrompt = *req.StylePrompt
	}
	entity.UpdatedAt = time.Now()

	if reembed {
		embedding, err := s.embedGen.Generate(ctx, entity.EmbeddingText())
		if err != nil {
			return nil, template.ErrEmbeddingFailed().
				WithDetail("template_id", id).
				WithDetails(map[string]any{"error": err.Error()})
		}
		entity.Embedding = embedding
	}

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	return entity, nil
}

// GetTemplate retrieves a template by ID
func (s *Service) GetTemplate(ctx context.Context, id kernel.TemplateID) (*template.Template, error) {
	return s.repo.GetByID(ctx, id)
}

// ListTemplates retrieves all templates with pagination
func (s *Service) ListTemplates(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[template.Template], error) {
	return s.repo.List(ctx, pagination)
}

// DeleteTemplate deletes a template and its stored thumbnail
func (s *Service) DeleteTemplate(ctx context.Context, id kernel.TemplateID) error {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if entity.ThumbPath != "" {
		_ = s.fs.DeleteFile(ctx, entity.ThumbPath)
	}

	logx.Infof("Deleted template: %s", id)
	return nil
}

// UploadThumbnail stores a preview image for the template, resized to
// the standard thumbnail width.
func (s *Service) UploadThumbnail(ctx context.Context, id kernel.TemplateID, data []byte) (*template.Template, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, template.ErrInvalidThumbnail().
			WithDetail("template_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, template.ErrInvalidThumbnail().
			WithDetail("template_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	path := fmt.Sprintf("templates/%s/thumb.jpg", id)
	if err := s.fs.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return nil, err
	}

	entity.ThumbPath = path
	entity.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	logx.Infof("Stored thumbnail for template %s at %s", id, path)
	return entity, nil
}

// SearchTemplates finds templates semantically close to a query
func (s *Service) SearchTemplates(ctx context.Context, req template.SearchTemplatesRequest) ([]template.TemplateMatch, error) {
	embedding, err := s.embedGen.Generate(ctx, req.Query)
	if err != nil {
		return nil, template.ErrEmbeddingFailed().
			WithDetail("query", req.Query).
			WithDetails(map[string]any{"error": err.Error()})
	}

	matches, err := s.repo.SemanticSearch(ctx, embedding, req.Limit)
	if err != nil {
		return nil, template.ErrSearchFailed().
			WithDetail("query", req.Query).
			WithDetails(map[string]any{"error": err.Error()})
	}

	return matches, nil
}
