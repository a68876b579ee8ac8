package pagesrv

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/disintegration/imaging"
)

const (
	// thumbWidth is the pixel width of generated slide thumbnails.
	thumbWidth = 320

	// bulkConcurrency bounds parallel image generations per request.
	bulkConcurrency = 3
)

// GenerateImage renders (or edits) the slide image for a page and
// stores both the full image and a thumbnail.
func (s *Service) GenerateImage(ctx context.Context, id kernel.PageID, req page.GenerateImageRequest) (*page.Page, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entity.Status == page.PageStatusGenerating {
		return nil, page.ErrAlreadyGenerating().WithDetail("page_id", id)
	}

	if req.EditInstruction != "" && !entity.HasImage() {
		return nil, page.ErrNoImageToEdit().WithDetail("page_id", id)
	}

	entity.MarkGenerating()
	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	if err := s.renderPage(ctx, entity, req.EditInstruction); err != nil {
		entity.MarkFailed(err.Error())
		if updateErr := s.repo.Update(ctx, id, entity); updateErr != nil {
			logx.Errorf("Failed to record page generation failure for %s: %v", id, updateErr)
		}
		return nil, page.ErrGenerationFailed().
			WithDetail("page_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	logx.Infof("Generated image for page %s (version %d)", id, entity.Version)
	return entity, nil
}

// renderPage runs generation and storage, mutating the page on success.
func (s *Service) renderPage(ctx context.Context, entity *page.Page, editInstruction string) error {
	var (
		imageData []byte
		err       error
	)

	if editInstruction != "" {
		var original []byte
		original, err = s.fs.ReadFile(ctx, entity.ImagePath)
		if err != nil {
			return fmt.Errorf("read original image: %w", err)
		}
		imageData, err = s.imageGen.Edit(ctx, original, editInstruction)
	} else {
		prompt, promptErr := s.buildPrompt(ctx, entity)
		if promptErr != nil {
			return promptErr
		}
		imageData, err = s.imageGen.Generate(ctx, prompt)
	}
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}

	version := entity.Version + 1
	imagePath := fmt.Sprintf("pages/%s/%s/v%d.png", entity.ProjectID, entity.ID, version)
	thumbPath := fmt.Sprintf("pages/%s/%s/v%d_thumb.jpg", entity.ProjectID, entity.ID, version)

	if err := s.fs.WriteFile(ctx, imagePath, imageData); err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	thumbData, err := makeThumbnail(imageData)
	if err != nil {
		return fmt.Errorf("make thumbnail: %w", err)
	}
	if err := s.fs.WriteFile(ctx, thumbPath, thumbData); err != nil {
		return fmt.Errorf("store thumbnail: %w", err)
	}

	entity.MarkCompleted(imagePath, thumbPath)
	return nil
}

// buildPrompt combines the template style with the page content.
func (s *Service) buildPrompt(ctx context.Context, entity *page.Page) (string, error) {
	var sb strings.Builder

	proj, err := s.projectRepo.GetByID(ctx, entity.ProjectID)
	if err != nil {
		return "", err
	}

	if proj.TemplateID != nil {
		tmpl, err := s.templateRepo.GetByID(ctx, *proj.TemplateID)
		if err != nil {
			logx.Warnf("Template %s not found for project %s, generating without style: %v",
				*proj.TemplateID, entity.ProjectID, err)
		} else if tmpl.StylePrompt != "" {
			sb.WriteString(tmpl.StylePrompt)
			sb.WriteString("\n\n")
		}
	}

	fmt.Fprintf(&sb, "A 16:9 presentation slide titled %q.", entity.Title)
	if entity.Description != "" {
		fmt.Fprintf(&sb, " %s", entity.Description)
	}

	return sb.String(), nil
}

func makeThumbnail(imageData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}

	return buf.Bytes(), nil
}

// BulkGenerate renders every page of the project that has no completed
// image yet, a few at a time.
func (s *Service) BulkGenerate(ctx context.Context, projectID kernel.ProjectID) (*page.BulkGenerateResponse, error) {
	pages, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pending := make([]*page.Page, 0, len(pages))
	for _, p := range pages {
		if !p.HasImage() && p.Status != page.PageStatusGenerating {
			pending = append(pending, p)
		}
	}

	response := &page.BulkGenerateResponse{
		ProjectID: projectID,
		Requested: len(pending),
		Succeeded: make([]kernel.PageID, 0, len(pending)),
		Failed:    make(map[kernel.PageID]string),
	}
	if len(pending) == 0 {
		return response, nil
	}

	logx.Infof("Bulk generating %d pages for project %s", len(pending), projectID)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, bulkConcurrency)
	)

	for _, p := range pending {
		wg.Add(1)
		go func(p *page.Page) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			_, err := s.GenerateImage(ctx, p.ID, page.GenerateImageRequest{})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				response.Failed[p.ID] = err.Error()
				return
			}
			response.Succeeded = append(response.Succeeded, p.ID)
		}(p)
	}

	wg.Wait()

	logx.Infof("Bulk generation for project %s: %d succeeded, %d failed",
		projectID, len(response.Succeeded), len(response.Failed))
	return response, nil
}
