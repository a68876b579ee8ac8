package exportsrv

import (
	"context"
	"fmt"
	"io"

	"github.com/Abraxas-365/deckgen/internal/export/pdfenc"
	"github.com/Abraxas-365/deckgen/internal/export/pptxenc"
	"github.com/Abraxas-365/deckgen/pkg/fsx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/pkg/logx"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
)

const (
	// DefaultMaxAttempts is how many times a job runs before it is
	// permanently failed.
	DefaultMaxAttempts = 3
)

type Service struct {
	projectRepo project.Repository
	pageRepo    page.Repository
	jobRepo     export.JobRepository
	queue       export.JobQueue
	fs          fsx.FileSystem
}

// NewService creates a new export service
func NewService(
	projectRepo project.Repository,
	pageRepo page.Repository,
	jobRepo export.JobRepository,
	queue export.JobQueue,
	fs fsx.FileSystem,
) *Service {
	return &Service{
		projectRepo: projectRepo,
		pageRepo:    pageRepo,
		jobRepo:     jobRepo,
		queue:       queue,
		fs:          fs,
	}
}

// ============================================================================
// Artifact Rendering
// ============================================================================

// renderOutcome reports what the encoder goroutine produced.
type renderOutcome struct {
	pageCount   int
	leanEncoded bool
	err         error
}

// artifactPath builds the storage key for a finished artifact.
func artifactPath(projectID kernel.ProjectID, jobID kernel.JobID, format export.Format) string {
	return fmt.Sprintf("exports/%s/%s.%s", projectID, jobID, format)
}

// collectSources splits a project's pages into renderable sources and
// skipped pages. A page without a completed image fails the job unless
// partial export is allowed.
func (s *Service) collectSources(pages []*page.Page, allowPartial bool) ([]page.Page, int, error) {
	renderable := make([]page.Page, 0, len(pages))
	skipped := 0

	for _, p := range pages {
		if p.HasImage() {
			renderable = append(renderable, *p)
			continue
		}
		if !allowPartial {
			return nil, 0, export.ErrIncompletePages().
				WithDetail("page_id", p.ID.String()).
				WithDetail("page_position", p.Position).
				WithDetail("page_status", p.Status)
		}
		skipped++
	}

	if len(renderable) == 0 {
		return nil, 0, export.ErrNoPages().
			WithDetail("total_pages", len(pages)).
			WithDetail("skipped_pages", skipped)
	}

	return renderable, skipped, nil
}

// renderArtifact encodes the pages and streams the result into storage
// through a pipe, so the artifact never has to fit in memory on the
// lean path.
func (s *Service) renderArtifact(
	ctx context.Context,
	job *export.ExportJob,
	pages []page.Page,
) (string, renderOutcome, error) {
	path := artifactPath(job.ProjectID, job.ID, job.Format)

	pr, pw := io.Pipe()
	done := make(chan renderOutcome, 1)

	go func() {
		var out renderOutcome
		switch job.Format {
		case export.FormatPPTX:
			res, err := pptxenc.Encode(ctx, pw, s.pptxSources(pages), pptxenc.Options{
				Title: fmt.Sprintf("Deck %s", job.ProjectID),
			})
			out = renderOutcome{pageCount: res.PageCount, err: err}
		default:
			res, lean, err := pdfenc.EncodeAuto(ctx, pw, s.pdfSources(pages), pdfenc.Options{})
			out = renderOutcome{pageCount: res.PageCount, leanEncoded: lean, err: err}
		}
		pw.CloseWithError(out.err)
		done <- out
	}()

	writeErr := s.fs.WriteFileStream(ctx, path, pr)
	if writeErr != nil {
		// Unblock the encoder if it is still writing.
		pr.CloseWithError(writeErr)
	}
	out := <-done

	if out.err != nil {
		_ = s.fs.DeleteFile(ctx, path)
		return "", out, fmt.Errorf("encode %s artifact: %w", job.Format, out.err)
	}
	if writeErr != nil {
		return "", out, fmt.Errorf("store %s artifact: %w", job.Format, writeErr)
	}

	return path, out, nil
}

func (s *Service) pdfSources(pages []page.Page) []pdfenc.Source {
	sources := make([]pdfenc.Source, 0, len(pages))
	for _, p := range pages {
		imagePath := p.ImagePath
		sources = append(sources, pdfenc.Source{
			Name: p.Title,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return s.fs.ReadFileStream(ctx, imagePath)
			},
		})
	}
	return sources
}

func (s *Service) pptxSources(pages []page.Page) []pptxenc.Source {
	sources := make([]pptxenc.Source, 0, len(pages))
	for _, p := range pages {
		imagePath := p.ImagePath
		sources = append(sources, pptxenc.Source{
			Name: p.Title,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return s.fs.ReadFileStream(ctx, imagePath)
			},
		})
	}
	return sources
}

// ============================================================================
// Artifact Download
// ============================================================================

// DownloadArtifact opens the finished artifact for streaming to the
// client. The caller must close the returned reader.
func (s *Service) DownloadArtifact(ctx context.Context, jobID kernel.JobID) (io.ReadCloser, *export.ExportJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	if job.Status != export.JobStatusCompleted || job.ArtifactPath == "" {
		return nil, nil, export.ErrArtifactNotReady().
			WithDetail("job_id", jobID.String()).
			WithDetail("status", job.Status)
	}

	reader, err := s.fs.ReadFileStream(ctx, job.ArtifactPath)
	if err != nil {
		logx.Errorf("Failed to open artifact %s: %v", job.ArtifactPath, err)
		return nil, nil, export.ErrArtifactNotReady().
			WithDetail("job_id", jobID.String()).
			WithDetails(map[string]any{"error": err.Error()})
	}

	return reader, job, nil
}
