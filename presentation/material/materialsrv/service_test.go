package materialsrv

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"testing"

	"github.com/Abraxas-365/deckgen/internal/export/pdfenc"
	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/material"
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

type memMaterialRepo struct {
	materials map[kernel.MaterialID]*material.Material
}

func newMemMaterialRepo() *memMaterialRepo {
	return &memMaterialRepo{materials: make(map[kernel.MaterialID]*material.Material)}
}

func (r *memMaterialRepo) Create(_ context.Context, m *material.Material) error {
	r.materials[m.ID] = m
	return nil
}

func (r *memMaterialRepo) GetByID(_ context.Context, id kernel.MaterialID) (*material.Material, error) {
	m, ok := r.materials[id]
	if !ok {
		return nil, material.ErrMaterialNotFound()
	}
	return m, nil
}

func (r *memMaterialRepo) ListByProject(_ context.Context, projectID kernel.ProjectID) ([]*material.Material, error) {
	var out []*material.Material
	for _, m := range r.materials {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memMaterialRepo) Delete(_ context.Context, id kernel.MaterialID) error {
	delete(r.materials, id)
	return nil
}

type memFS struct {
	files map[string][]byte
}

func newMemFS() *memFS {
	return &memFS{files: make(map[string][]byte)}
}

func (f *memFS) ReadFile(_ context.Context, path string) ([]byte, error) {
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
	delete(f.files, path)
	return nil
}

func (f *memFS) Exists(_ context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

// ============================================================================
// Fixtures
// ============================================================================

func newTestService(t *testing.T) (*Service, *memProjectRepo, *memMaterialRepo, *memFS) {
	t.Helper()
	projects := newMemProjectRepo()
	materials := newMemMaterialRepo()
	fs := newMemFS()
	svc := NewService(materials, projects, nil, fs)
	return svc, projects, materials, fs
}

// pdfBytes builds a real PDF with the given number of pages.
func pdfBytes(t *testing.T, pages int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := imgBuf.Bytes()

	sources := make([]pdfenc.Source, 0, pages)
	for i := 0; i < pages; i++ {
		sources = append(sources, pdfenc.Source{
			Name: "page",
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			},
		})
	}

	var buf bytes.Buffer
	if _, err := pdfenc.Encode(context.Background(), &buf, sources, pdfenc.Options{}); err != nil {
		t.Fatalf("build pdf fixture: %v", err)
	}
	return buf.Bytes()
}

// ============================================================================
// Tests
// ============================================================================

func TestUploadValidation(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	t.Run("rejects unsupported file type", func(t *testing.T) {
		svc, projects, _, _ := newTestService(t)
		projects.projects[projectID] = &project.Project{ID: projectID}

		_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
			ProjectID: projectID,
			FileName:  "deck.docx",
			FileType:  "docx",
			Data:      []byte("word soup"),
		})
		if !errx.IsCode(err, material.CodeInvalidFileType) {
			t.Fatalf("expected INVALID_FILE_TYPE, got %v", err)
		}
	})

	t.Run("normalizes dotted uppercase extensions", func(t *testing.T) {
		svc, projects, _, _ := newTestService(t)
		projects.projects[projectID] = &project.Project{ID: projectID}

		entity, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
			ProjectID: projectID,
			FileName:  "notes.TXT",
			FileType:  ".TXT",
			Data:      []byte("some notes"),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if entity.FileType != "txt" {
			t.Fatalf("file type = %q, want txt", entity.FileType)
		}
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		svc, projects, _, _ := newTestService(t)
		projects.projects[projectID] = &project.Project{ID: projectID}

		_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
			ProjectID: projectID,
			FileName:  "huge.txt",
			FileType:  "txt",
			Data:      make([]byte, material.MaxFileSize+1),
		})
		if !errx.IsCode(err, material.CodeFileTooLarge) {
			t.Fatalf("expected FILE_TOO_LARGE, got %v", err)
		}
	})

	t.Run("rejects missing project", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
			ProjectID: projectID,
			FileName:  "notes.txt",
			FileType:  "txt",
			Data:      []byte("some notes"),
		})
		if !errx.IsCode(err, project.CodeProjectNotFound) {
			t.Fatalf("expected project not found, got %v", err)
		}
	})
}

func TestUploadTextMaterial(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc, projects, materials, fs := newTestService(t)
	projects.projects[projectID] = &project.Project{ID: projectID}

	entity, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
		ProjectID: projectID,
		FileName:  "brief.md",
		FileType:  "md",
		Data:      []byte("# Brief\nTalk about Q3."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entity.ExtractedText != "# Brief\nTalk about Q3." {
		t.Fatalf("extracted text = %q", entity.ExtractedText)
	}
	if _, ok := materials.materials[entity.ID]; !ok {
		t.Fatal("material not persisted")
	}
	stored, err := fs.ReadFile(context.Background(), entity.FilePath)
	if err != nil || !bytes.Equal(stored, []byte("# Brief\nTalk about Q3.")) {
		t.Fatalf("stored file mismatch: %v", err)
	}
}

func TestUploadRejectsOversizedPDF(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc, projects, materials, fs := newTestService(t)
	projects.projects[projectID] = &project.Project{ID: projectID}

	data := pdfBytes(t, maxPDFPages+1)

	_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
		ProjectID: projectID,
		FileName:  "tome.pdf",
		FileType:  "pdf",
		Data:      data,
	})
	if !errx.IsCode(err, material.CodeProcessingFailed) {
		t.Fatalf("expected PROCESSING_FAILED, got %v", err)
	}
	var e *errx.Error
	if e, _ = err.(*errx.Error); e == nil || !strings.Contains(e.Details["error"].(string), "limit") {
		t.Fatalf("error does not name the page limit: %v", err)
	}

	// The stored file must be cleaned up and nothing persisted.
	if len(materials.materials) != 0 {
		t.Fatal("material persisted despite processing failure")
	}
	if len(fs.files) != 0 {
		t.Fatal("stored file not cleaned up after processing failure")
	}
}

func TestUploadRejectsCorruptPDF(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc, projects, _, fs := newTestService(t)
	projects.projects[projectID] = &project.Project{ID: projectID}

	_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
		ProjectID: projectID,
		FileName:  "broken.pdf",
		FileType:  "pdf",
		Data:      []byte("%PDF-1.4 but not really"),
	})
	if !errx.IsCode(err, material.CodeProcessingFailed) {
		t.Fatalf("expected PROCESSING_FAILED, got %v", err)
	}
	if len(fs.files) != 0 {
		t.Fatal("stored file not cleaned up after processing failure")
	}
}

func TestUploadRejectsUndecodableImage(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc, projects, _, fs := newTestService(t)
	projects.projects[projectID] = &project.Project{ID: projectID}

	_, err := svc.Upload(context.Background(), material.UploadMaterialRequest{
		ProjectID: projectID,
		FileName:  "photo.png",
		FileType:  "png",
		Data:      []byte("renamed text file"),
	})
	if !errx.IsCode(err, material.CodeProcessingFailed) {
		t.Fatalf("expected PROCESSING_FAILED, got %v", err)
	}
	if len(fs.files) != 0 {
		t.Fatal("stored file not cleaned up after processing failure")
	}
}
