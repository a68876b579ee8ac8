package projectsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/deckgen/internal/ai/textgen"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
	"github.com/google/uuid"
)

const (
	// Caps on how much reference material gets inlined into prompts.
	maxContextPerMaterial = 2000
	maxContextTotal       = 8000
)

const outlineSystemPrompt = `You are a presentation planner. Given a deck idea and optional reference material, produce a slide outline.
Respond with a JSON object of the form:
{"slides": [{"title": "...", "bullets": ["...", "..."]}]}
Titles must be short. Each slide gets 2-4 bullets. Do not include any other keys.`

const descriptionSystemPrompt = `You are a presentation designer. For each slide in the outline, write one visual description: what the rendered slide image should show, in 1-2 sentences, concrete enough for an image model.
Respond with a JSON object of the form:
{"descriptions": ["...", "..."]}
The array must have exactly one entry per slide, in order.`

// GenerateOutline asks the model for a slide outline and stores it on
// the project.
func (s *Service) GenerateOutline(ctx context.Context, id kernel.ProjectID, req project.GenerateOutlineRequest) (*project.Project, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pageCount := req.PageCount
	if pageCount <= 0 {
		pageCount = DefaultOutlinePages
	}
	if pageCount > MaxOutlinePages {
		pageCount = MaxOutlinePages
	}

	materialContext, err := s.buildMaterialContext(ctx, id)
	if err != nil {
		logx.Warnf("Failed to load materials for project %s, generating without them: %v", id, err)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Deck title: %s\nDeck idea: %s\nNumber of slides: %d\n", entity.Title, entity.Idea, pageCount)
	if req.Language != "" {
		fmt.Fprintf(&prompt, "Language: %s\n", req.Language)
	}
	if materialContext != "" {
		fmt.Fprintf(&prompt, "\nReference material:\n%s\n", materialContext)
	}

	raw, err := s.textGen.GenerateJSON(ctx, outlineSystemPrompt, prompt.String())
	if err != nil {
		return nil, project.ErrGenerationFailed().
			WithDetail("project_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	var parsed struct {
		Slides []struct {
			Title   string   `json:"title"`
			Bullets []string `json:"bullets"`
		} `json:"slides"`
	}
	if err := json.Unmarshal([]byte(textgen.StripCodeFence(raw)), &parsed); err != nil {
		return nil, project.ErrGenerationFailed().
			WithDetail("project_id", id).
			WithDetails(map[string]any{
				"error":    err.Error(),
				"response": raw,
			})
	}

	items := make([]project.OutlineItem, 0, len(parsed.Slides))
	for _, slide := range parsed.Slides {
		items = append(items, project.OutlineItem{
			Title:   slide.Title,
			Bullets: slide.Bullets,
		})
	}

	if err := entity.SetOutline(items); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	logx.Infof("Generated outline for project %s: %d slides", id, len(items))
	return entity, nil
}

// GenerateDescriptions fills the per-slide visual descriptions that the
// image generator works from.
func (s *Service) GenerateDescriptions(ctx context.Context, id kernel.ProjectID) (*project.Project, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.HasOutline() {
		return nil, project.ErrNoOutline().WithDetail("project_id", id)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Deck title: %s\nDeck idea: %s\n\nOutline:\n", entity.Title, entity.Idea)
	for i, item := range entity.Outline {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, item.Title)
		for _, b := range item.Bullets {
			fmt.Fprintf(&prompt, "   - %s\n", b)
		}
	}

	raw, err := s.textGen.GenerateJSON(ctx, descriptionSystemPrompt, prompt.String())
	if err != nil {
		return nil, project.ErrGenerationFailed().
			WithDetail("project_id", id).
			WithDetails(map[string]any{"error": err.Error()})
	}

	var parsed struct {
		Descriptions []string `json:"descriptions"`
	}
	if err := json.Unmarshal([]byte(textgen.StripCodeFence(raw)), &parsed); err != nil {
		return nil, project.ErrGenerationFailed().
			WithDetail("project_id", id).
			WithDetails(map[string]any{
				"error":    err.Error(),
				"response": raw,
			})
	}

	if err := entity.SetDescriptions(parsed.Descriptions); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	logx.Infof("Generated descriptions for project %s", id)
	return entity, nil
}

// MaterializePages turns the outline into page rows, one per slide, in
// outline order. Pages start in pending status with no image.
func (s *Service) MaterializePages(ctx context.Context, id kernel.ProjectID) (*project.MaterializePagesResponse, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.HasOutline() {
		return nil, project.ErrNoOutline().WithDetail("project_id", id)
	}

	existing, err := s.pageRepo.CountByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, project.ErrAlreadyMaterialized().
			WithDetail("project_id", id).
			WithDetail("existing_pages", existing)
	}

	now := time.Now()
	pages := make([]*page.Page, 0, len(entity.Outline))
	pageIDs := make([]kernel.PageID, 0, len(entity.Outline))

	for i, item := range entity.Outline {
		description := item.Description
		if description == "" {
			description = strings.Join(item.Bullets, ". ")
		}

		pageID := kernel.NewPageID(uuid.NewString())
		pageIDs = append(pageIDs, pageID)
		pages = append(pages, &page.Page{
			ID:          pageID,
			ProjectID:   id,
			Position:    i,
			Title:       item.Title,
			Description: description,
			Status:      page.PageStatusPending,
			Version:     0,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.pageRepo.CreateBatch(ctx, pages); err != nil {
		return nil, err
	}

	if err := entity.MarkReady(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, entity); err != nil {
		return nil, err
	}

	logx.Infof("Materialized %d pages for project %s", len(pages), id)

	return &project.MaterializePagesResponse{
		ProjectID: id,
		PageCount: len(pages),
		PageIDs:   pageIDs,
	}, nil
}

// buildMaterialContext concatenates extracted material text, capped so
// prompts stay within model limits.
func (s *Service) buildMaterialContext(ctx context.Context, id kernel.ProjectID) (string, error) {
	materials, err := s.materialRepo.ListByProject(ctx, id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, m := range materials {
		if m.ExtractedText == "" {
			continue
		}
		text := m.ExtractedText
		if len(text) > maxContextPerMaterial {
			text = text[:maxContextPerMaterial]
		}
		if sb.Len()+len(text) > maxContextTotal {
			break
		}
		fmt.Fprintf(&sb, "--- %s ---\n%s\n", m.FileName, text)
	}

	return sb.String(), nil
}
