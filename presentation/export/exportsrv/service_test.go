package exportsrv

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/export"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
)

// ============================================================================
// In-memory stubs
// ============================================================================

type memProjectRepo struct {
	projects map[kernel.ProjectID]*project.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[kernel.ProjectID]*project.Project)}
}

func (r *memProjectRepo) Create(_ context.Context, p *project.Project) error {
	r.projects[p.ID] = p
	return nil
}

func (r *memProjectRepo) Update(_ context.Context, id kernel.ProjectID, p *project.Project) error {
	r.projects[id] = p
	return nil
}

func (r *memProjectRepo) GetByID(_ context.Context, id kernel.ProjectID) (*project.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, project.ErrProjectNotFound()
	}
	return p, nil
}

func (r *memProjectRepo) Delete(_ context.Context, id kernel.ProjectID) error {
	delete(r.projects, id)
	return nil
}

func (r *memProjectRepo) List(_ context.Context, _ kernel.PaginationOptions) (*kernel.Paginated[project.Project], error) {
	return nil, nil
}

func (r *memProjectRepo) Exists(_ context.Context, id kernel.ProjectID) (bool, error) {
	_, ok := r.projects[id]
	return ok, nil
}

type memPageRepo struct {
	pages map[kernel.ProjectID][]*page.Page
}

func newMemPageRepo() *memPageRepo {
	return &memPageRepo{pages: make(map[kernel.ProjectID][]*page.Page)}
}

func (r *memPageRepo) Create(_ context.Context, p *page.Page) error {
	r.pages[p.ProjectID] = append(r.pages[p.ProjectID], p)
	return nil
}

func (r *memPageRepo) CreateBatch(ctx context.Context, pages []*page.Page) error {
	for _, p := range pages {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *memPageRepo) Update(_ context.Context, _ kernel.PageID, _ *page.Page) error { return nil }

func (r *memPageRepo) GetByID(_ context.Context, _ kernel.PageID) (*page.Page, error) {
	return nil, page.ErrPageNotFound()
}

func (r *memPageRepo) Delete(_ context.Context, _ kernel.PageID) error { return nil }

func (r *memPageRepo) ListByProject(_ context.Context, projectID kernel.ProjectID) ([]*page.Page, error) {
	return r.pages[projectID], nil
}

func (r *memPageRepo) ListByProjectPaginated(_ context.Context, _ kernel.ProjectID, _ kernel.PaginationOptions) (*kernel.Paginated[page.Page], error) {
	return nil, nil
}

func (r *memPageRepo) Reorder(_ context.Context, _ kernel.ProjectID, _ []kernel.PageID) error {
	return nil
}

func (r *memPageRepo) CountByProject(_ context.Context, projectID kernel.ProjectID) (int64, error) {
	return int64(len(r.pages[projectID])), nil
}

type memJobRepo struct {
	mu   sync.Mutex
	jobs map[kernel.JobID]*export.ExportJob

	completedArtifact string
	completedPages    int
	completedSkipped  int
	completedLean     bool
	failedMessage     string
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[kernel.JobID]*export.ExportJob)}
}

func (r *memJobRepo) Create(_ context.Context, job *export.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) Update(_ context.Context, job *export.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, jobID kernel.JobID) (*export.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, export.ErrJobNotFound()
	}
	cp := *job
	return &cp, nil
}

func (r *memJobRepo) ListByProject(_ context.Context, _ kernel.ProjectID, _ kernel.PaginationOptions) (*kernel.Paginated[export.ExportJob], error) {
	return nil, nil
}

func (r *memJobRepo) MarkAsProcessing(_ context.Context, jobID kernel.JobID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[jobID]; ok {
		job.Status = export.JobStatusProcessing
	}
	return nil
}

func (r *memJobRepo) MarkAsCompleted(_ context.Context, jobID kernel.JobID, artifactPath string, pageCount, skippedPages int, leanEncoded bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completedArtifact = artifactPath
	r.completedPages = pageCount
	r.completedSkipped = skippedPages
	r.completedLean = leanEncoded
	if job, ok := r.jobs[jobID]; ok {
		job.Status = export.JobStatusCompleted
		job.ArtifactPath = artifactPath
	}
	return nil
}

func (r *memJobRepo) MarkAsFailed(_ context.Context, jobID kernel.JobID, errorMsg string, _ map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedMessage = errorMsg
	if job, ok := r.jobs[jobID]; ok {
		job.Status = export.JobStatusFailed
		job.ErrorMessage = errorMsg
	}
	return nil
}

func (r *memJobRepo) UpdateProgress(_ context.Context, _ kernel.JobID, _ export.ProcessingStep, _ int) error {
	return nil
}

type memQueue struct {
	mu      sync.Mutex
	ready   [][]byte
	delayed int
}

func (q *memQueue) Enqueue(_ context.Context, _ kernel.JobID, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ready = append(q.ready, []byte("job"))
	return nil
}

func (q *memQueue) Dequeue(_ context.Context, _ time.Duration) ([]byte, error) { return nil, nil }

func (q *memQueue) EnqueueDelayed(_ context.Context, _ kernel.JobID, _ any, _ time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.delayed++
	return nil
}

func (q *memQueue) MoveDelayedToReady(_ context.Context) (int, error) { return 0, nil }
func (q *memQueue) GetQueueSize(_ context.Context) (int64, error)     { return int64(len(q.ready)), nil }
func (q *memQueue) GetDelayedQueueSize(_ context.Context) (int64, error) {
	return int64(q.delayed), nil
}

// memFS stores files in a map.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (f *memFS) ReadFile(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return data, nil
}

func (f *memFS) ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := f.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *memFS) WriteFile(_ context.Context, path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = data
	return nil
}

func (f *memFS) WriteFileStream(ctx context.Context, path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return f.WriteFile(ctx, path, data)
}

func (f *memFS) DeleteFile(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, path)
	return nil
}

func (f *memFS) Exists(_ context.Context, path string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[path]
	return ok, nil
}

// ============================================================================
// Fixtures
// ============================================================================

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func completedPage(projectID kernel.ProjectID, id string, pos int, imagePath string) *page.Page {
	return &page.Page{
		ID:        kernel.PageID(id),
		ProjectID: projectID,
		Position:  pos,
		Title:     "Slide " + id,
		Status:    page.PageStatusCompleted,
		ImagePath: imagePath,
		Version:   1,
	}
}

func pendingPage(projectID kernel.ProjectID, id string, pos int) *page.Page {
	return &page.Page{
		ID:        kernel.PageID(id),
		ProjectID: projectID,
		Position:  pos,
		Title:     "Slide " + id,
		Status:    page.PageStatusPending,
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestCollectSources(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc := &Service{}

	t.Run("all pages complete", func(t *testing.T) {
		pages := []*page.Page{
			completedPage(projectID, "a", 0, "img/a.jpg"),
			completedPage(projectID, "b", 1, "img/b.jpg"),
		}
		sources, skipped, err := svc.collectSources(pages, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sources) != 2 || skipped != 0 {
			t.Fatalf("got %d sources, %d skipped", len(sources), skipped)
		}
	})

	t.Run("incomplete page fails strict export", func(t *testing.T) {
		pages := []*page.Page{
			completedPage(projectID, "a", 0, "img/a.jpg"),
			pendingPage(projectID, "b", 1),
		}
		_, _, err := svc.collectSources(pages, false)
		if !errx.IsCode(err, export.CodeIncompletePages) {
			t.Fatalf("expected INCOMPLETE_PAGES, got %v", err)
		}
	})

	t.Run("incomplete page skipped when partial allowed", func(t *testing.T) {
		pages := []*page.Page{
			completedPage(projectID, "a", 0, "img/a.jpg"),
			pendingPage(projectID, "b", 1),
			completedPage(projectID, "c", 2, "img/c.jpg"),
		}
		sources, skipped, err := svc.collectSources(pages, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sources) != 2 || skipped != 1 {
			t.Fatalf("got %d sources, %d skipped", len(sources), skipped)
		}
	})

	t.Run("nothing renderable", func(t *testing.T) {
		pages := []*page.Page{
			pendingPage(projectID, "a", 0),
		}
		_, _, err := svc.collectSources(pages, true)
		if !errx.IsCode(err, export.CodeNoPages) {
			t.Fatalf("expected NO_PAGES, got %v", err)
		}
	})
}

func TestEnqueueExport(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	setup := func() (*Service, *memProjectRepo, *memPageRepo, *memJobRepo, *memQueue) {
		projects := newMemProjectRepo()
		pages := newMemPageRepo()
		jobs := newMemJobRepo()
		queue := &memQueue{}
		svc := NewService(projects, pages, jobs, queue, newMemFS())
		return svc, projects, pages, jobs, queue
	}

	t.Run("rejects unknown format", func(t *testing.T) {
		svc, _, _, _, _ := setup()
		_, err := svc.EnqueueExport(context.Background(), export.EnqueueExportRequest{
			ProjectID: projectID,
			Format:    "docx",
		})
		if !errx.IsCode(err, export.CodeInvalidFormat) {
			t.Fatalf("expected INVALID_FORMAT, got %v", err)
		}
	})

	t.Run("rejects missing project", func(t *testing.T) {
		svc, _, _, _, _ := setup()
		_, err := svc.EnqueueExport(context.Background(), export.EnqueueExportRequest{
			ProjectID: projectID,
			Format:    export.FormatPDF,
		})
		if !errx.IsCode(err, project.CodeProjectNotFound) {
			t.Fatalf("expected project not found, got %v", err)
		}
	})

	t.Run("rejects project without pages", func(t *testing.T) {
		svc, projects, _, _, _ := setup()
		projects.projects[projectID] = &project.Project{ID: projectID}

		_, err := svc.EnqueueExport(context.Background(), export.EnqueueExportRequest{
			ProjectID: projectID,
			Format:    export.FormatPDF,
		})
		if !errx.IsCode(err, export.CodeNoPages) {
			t.Fatalf("expected NO_PAGES, got %v", err)
		}
	})

	t.Run("queues a pending job", func(t *testing.T) {
		svc, projects, pages, jobs, queue := setup()
		projects.projects[projectID] = &project.Project{ID: projectID, ExportAllowPartial: true}
		pages.pages[projectID] = []*page.Page{completedPage(projectID, "a", 0, "img/a.jpg")}

		status, err := svc.EnqueueExport(context.Background(), export.EnqueueExportRequest{
			ProjectID: projectID,
			Format:    export.FormatPDF,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if status.Status != export.JobStatusPending {
			t.Fatalf("expected pending status, got %s", status.Status)
		}
		if len(queue.ready) != 1 {
			t.Fatalf("expected 1 queued job, got %d", len(queue.ready))
		}

		job, err := jobs.GetByID(context.Background(), status.JobID)
		if err != nil {
			t.Fatalf("job not persisted: %v", err)
		}
		if !job.AllowPartial {
			t.Fatal("expected job to inherit the project's partial policy")
		}
	})

	t.Run("request overrides partial policy", func(t *testing.T) {
		svc, projects, pages, jobs, _ := setup()
		projects.projects[projectID] = &project.Project{ID: projectID, ExportAllowPartial: true}
		pages.pages[projectID] = []*page.Page{completedPage(projectID, "a", 0, "img/a.jpg")}

		strict := false
		status, err := svc.EnqueueExport(context.Background(), export.EnqueueExportRequest{
			ProjectID:    projectID,
			Format:       export.FormatPPTX,
			AllowPartial: &strict,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		job, _ := jobs.GetByID(context.Background(), status.JobID)
		if job.AllowPartial {
			t.Fatal("expected override to disable partial export")
		}
	})
}

func TestProcessExportJobPDF(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	projects := newMemProjectRepo()
	projects.projects[projectID] = &project.Project{ID: projectID}

	fs := newMemFS()
	img := jpegBytes(t, 320, 180)
	_ = fs.WriteFile(context.Background(), "img/a.jpg", img)
	_ = fs.WriteFile(context.Background(), "img/b.jpg", img)

	pages := newMemPageRepo()
	pages.pages[projectID] = []*page.Page{
		completedPage(projectID, "a", 0, "img/a.jpg"),
		pendingPage(projectID, "skip", 1),
		completedPage(projectID, "b", 2, "img/b.jpg"),
	}

	jobs := newMemJobRepo()
	job := &export.ExportJob{
		ID:           kernel.JobID("j1"),
		ProjectID:    projectID,
		Status:       export.JobStatusPending,
		Format:       export.FormatPDF,
		AllowPartial: true,
		MaxAttempts:  3,
		CreatedAt:    time.Now(),
	}
	_ = jobs.Create(context.Background(), job)

	svc := NewService(projects, pages, jobs, &memQueue{}, fs)

	if err := svc.ProcessExportJob(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if jobs.completedPages != 2 || jobs.completedSkipped != 1 {
		t.Fatalf("got pages=%d skipped=%d", jobs.completedPages, jobs.completedSkipped)
	}
	if !jobs.completedLean {
		t.Fatal("baseline JPEGs should take the lean path")
	}
	if !strings.HasSuffix(jobs.completedArtifact, ".pdf") {
		t.Fatalf("unexpected artifact path %q", jobs.completedArtifact)
	}

	artifact, err := fs.ReadFile(context.Background(), jobs.completedArtifact)
	if err != nil {
		t.Fatalf("artifact not stored: %v", err)
	}
	if !bytes.HasPrefix(artifact, []byte("%PDF-")) {
		t.Fatal("artifact is not a PDF")
	}
}

func TestProcessExportJobStrictFailsOnIncomplete(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	projects := newMemProjectRepo()
	projects.projects[projectID] = &project.Project{ID: projectID}

	pages := newMemPageRepo()
	pages.pages[projectID] = []*page.Page{pendingPage(projectID, "a", 0)}

	jobs := newMemJobRepo()
	queue := &memQueue{}
	job := &export.ExportJob{
		ID:          kernel.JobID("j1"),
		ProjectID:   projectID,
		Status:      export.JobStatusPending,
		Format:      export.FormatPDF,
		MaxAttempts: 3,
	}
	_ = jobs.Create(context.Background(), job)

	svc := NewService(projects, pages, jobs, queue, newMemFS())

	err := svc.ProcessExportJob(context.Background(), job)
	if err == nil {
		t.Fatal("expected job failure")
	}
	// First attempt of three schedules a retry.
	if queue.delayed != 1 {
		t.Fatalf("expected 1 delayed retry, got %d", queue.delayed)
	}
}

func TestHandleJobErrorExhaustsRetries(t *testing.T) {
	jobs := newMemJobRepo()
	queue := &memQueue{}
	svc := NewService(newMemProjectRepo(), newMemPageRepo(), jobs, queue, newMemFS())

	job := &export.ExportJob{
		ID:           kernel.JobID("j1"),
		ProjectID:    kernel.ProjectID("p1"),
		Status:       export.JobStatusProcessing,
		Format:       export.FormatPDF,
		AttemptCount: 2,
		MaxAttempts:  3,
	}
	_ = jobs.Create(context.Background(), job)

	err := svc.handleJobError(context.Background(), job, "encoding_failed", io.ErrUnexpectedEOF)
	if !errx.IsCode(err, export.CodeJobMaxRetries) {
		t.Fatalf("expected JOB_MAX_RETRIES, got %v", err)
	}
	if queue.delayed != 0 {
		t.Fatal("final attempt must not be requeued")
	}
	if jobs.failedMessage != "encoding_failed" {
		t.Fatalf("job not marked failed, message=%q", jobs.failedMessage)
	}
}

func TestDownloadArtifact(t *testing.T) {
	jobs := newMemJobRepo()
	fs := newMemFS()
	svc := NewService(newMemProjectRepo(), newMemPageRepo(), jobs, &memQueue{}, fs)

	jobID := kernel.JobID("j1")
	_ = jobs.Create(context.Background(), &export.ExportJob{
		ID:        jobID,
		ProjectID: kernel.ProjectID("p1"),
		Status:    export.JobStatusProcessing,
		Format:    export.FormatPDF,
	})

	if _, _, err := svc.DownloadArtifact(context.Background(), jobID); !errx.IsCode(err, export.CodeArtifactNotReady) {
		t.Fatalf("expected ARTIFACT_NOT_READY, got %v", err)
	}

	_ = fs.WriteFile(context.Background(), "exports/p1/j1.pdf", []byte("%PDF-1.4 test"))
	_ = jobs.MarkAsCompleted(context.Background(), jobID, "exports/p1/j1.pdf", 3, 0, true)

	reader, job, err := svc.DownloadArtifact(context.Background(), jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer reader.Close()

	if job.Format != export.FormatPDF {
		t.Fatalf("unexpected format %s", job.Format)
	}
	data, _ := io.ReadAll(reader)
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatal("downloaded artifact mismatch")
	}
}
