package pagesrv

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"testing"

	"github.com/Abraxas-365/deckgen/pkg/errx"
	"github.com/Abraxas-365/deckgen/pkg/kernel"
	"github.com/Abraxas-365/deckgen/presentation/page"
	"github.com/Abraxas-365/deckgen/presentation/project"
)

// ============================================================================
// In-memory stubs
// ============================================================================

type memProjectRepo struct {
	projects map[kernel.ProjectID]*project.Project
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
	pages       map[kernel.PageID]*page.Page
	lastReorder []kernel.PageID
	deleted     []kernel.PageID
}

func newMemPageRepo() *memPageRepo {
	return &memPageRepo{pages: make(map[kernel.PageID]*page.Page)}
}

func (r *memPageRepo) Create(_ context.Context, p *page.Page) error {
	r.pages[p.ID] = p
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

func (r *memPageRepo) Update(_ context.Context, id kernel.PageID, p *page.Page) error {
	r.pages[id] = p
	return nil
}

func (r *memPageRepo) GetByID(_ context.Context, id kernel.PageID) (*page.Page, error) {
	p, ok := r.pages[id]
	if !ok {
		return nil, page.ErrPageNotFound()
	}
	return p, nil
}

func (r *memPageRepo) Delete(_ context.Context, id kernel.PageID) error {
	delete(r.pages, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memPageRepo) ListByProject(_ context.Context, projectID kernel.ProjectID) ([]*page.Page, error) {
	var out []*page.Page
	for _, p := range r.pages {
		if p.ProjectID == projectID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *memPageRepo) ListByProjectPaginated(_ context.Context, _ kernel.ProjectID, _ kernel.PaginationOptions) (*kernel.Paginated[page.Page], error) {
	return nil, nil
}

func (r *memPageRepo) Reorder(_ context.Context, _ kernel.ProjectID, pageIDs []kernel.PageID) error {
	r.lastReorder = pageIDs
	for i, id := range pageIDs {
		if p, ok := r.pages[id]; ok {
			p.Position = i
		}
	}
	return nil
}

func (r *memPageRepo) CountByProject(_ context.Context, projectID kernel.ProjectID) (int64, error) {
	var n int64
	for _, p := range r.pages {
		if p.ProjectID == projectID {
			n++
		}
	}
	return n, nil
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

func newTestService(t *testing.T) (*Service, *memProjectRepo, *memPageRepo, *memFS) {
	t.Helper()
	projects := &memProjectRepo{projects: make(map[kernel.ProjectID]*project.Project)}
	pages := newMemPageRepo()
	fs := newMemFS()
	svc := NewService(pages, projects, nil, nil, fs)
	return svc, projects, pages, fs
}

func seedPages(repo *memPageRepo, projectID kernel.ProjectID, ids ...string) []kernel.PageID {
	out := make([]kernel.PageID, 0, len(ids))
	for i, id := range ids {
		repo.pages[kernel.PageID(id)] = &page.Page{
			ID:        kernel.PageID(id),
			ProjectID: projectID,
			Position:  i,
			Title:     "Slide " + id,
			Status:    page.PageStatusPending,
		}
		out = append(out, kernel.PageID(id))
	}
	return out
}

// ============================================================================
// Tests
// ============================================================================

func TestCreatePage(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	t.Run("rejects missing project", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)
		_, err := svc.CreatePage(context.Background(), projectID, page.CreatePageRequest{Title: "Intro"})
		if !errx.IsCode(err, project.CodeProjectNotFound) {
			t.Fatalf("expected project not found, got %v", err)
		}
	})

	t.Run("appends by default", func(t *testing.T) {
		svc, projects, pages, _ := newTestService(t)
		projects.projects[projectID] = &project.Project{ID: projectID}
		seedPages(pages, projectID, "a", "b")

		created, err := svc.CreatePage(context.Background(), projectID, page.CreatePageRequest{Title: "Outro"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Position != 2 {
			t.Fatalf("expected appended position 2, got %d", created.Position)
		}
		if created.Status != page.PageStatusPending {
			t.Fatalf("expected pending status, got %s", created.Status)
		}
	})

	t.Run("inserts at requested position", func(t *testing.T) {
		svc, projects, pages, _ := newTestService(t)
		projects.projects[projectID] = &project.Project{ID: projectID}
		seedPages(pages, projectID, "a", "b", "c")

		pos := 1
		created, err := svc.CreatePage(context.Background(), projectID, page.CreatePageRequest{
			Title:    "Inserted",
			Position: &pos,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Position != 1 {
			t.Fatalf("expected position 1, got %d", created.Position)
		}

		want := []kernel.PageID{"a", created.ID, "b", "c"}
		if len(pages.lastReorder) != len(want) {
			t.Fatalf("reorder got %v, want %v", pages.lastReorder, want)
		}
		for i := range want {
			if pages.lastReorder[i] != want[i] {
				t.Fatalf("reorder got %v, want %v", pages.lastReorder, want)
			}
		}
	})
}

func TestReorderPages(t *testing.T) {
	projectID := kernel.ProjectID("p1")

	tests := []struct {
		name     string
		pageIDs  []kernel.PageID
		wantCode errx.Code
	}{
		{
			name:     "empty list",
			pageIDs:  nil,
			wantCode: page.CodeInvalidReorder,
		},
		{
			name:     "duplicate id",
			pageIDs:  []kernel.PageID{"a", "b", "a"},
			wantCode: page.CodeInvalidReorder,
		},
		{
			name:    "valid order",
			pageIDs: []kernel.PageID{"c", "a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, pages, _ := newTestService(t)
			seedPages(pages, projectID, "a", "b", "c")

			err := svc.ReorderPages(context.Background(), projectID, page.ReorderRequest{PageIDs: tt.pageIDs})
			if tt.wantCode != "" {
				if !errx.IsCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pages.pages["c"].Position != 0 || pages.pages["a"].Position != 1 || pages.pages["b"].Position != 2 {
				t.Fatal("positions not reassigned in request order")
			}
		})
	}
}

func TestDeletePageRemovesStoredImages(t *testing.T) {
	projectID := kernel.ProjectID("p1")
	svc, _, pages, fs := newTestService(t)

	pageID := kernel.PageID("a")
	pages.pages[pageID] = &page.Page{
		ID:        pageID,
		ProjectID: projectID,
		Status:    page.PageStatusCompleted,
		ImagePath: "pages/p1/a/v1.png",
		ThumbPath: "pages/p1/a/v1_thumb.jpg",
	}
	_ = fs.WriteFile(context.Background(), "pages/p1/a/v1.png", []byte("png"))
	_ = fs.WriteFile(context.Background(), "pages/p1/a/v1_thumb.jpg", []byte("jpg"))

	if err := svc.DeletePage(context.Background(), pageID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := fs.files["pages/p1/a/v1.png"]; ok {
		t.Fatal("image not deleted")
	}
	if _, ok := fs.files["pages/p1/a/v1_thumb.jpg"]; ok {
		t.Fatal("thumbnail not deleted")
	}
}

func TestMakeThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 800, 450))
	for y := 0; y < 450; y++ {
		for x := 0; x < 800; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	thumbData, err := makeThumbnail(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	thumb, err := jpeg.Decode(bytes.NewReader(thumbData))
	if err != nil {
		t.Fatalf("thumbnail is not a JPEG: %v", err)
	}

	bounds := thumb.Bounds()
	if bounds.Dx() != thumbWidth {
		t.Fatalf("thumbnail width = %d, want %d", bounds.Dx(), thumbWidth)
	}
	// 800x450 scaled to 320 wide keeps the 16:9 ratio.
	if bounds.Dy() != 180 {
		t.Fatalf("thumbnail height = %d, want 180", bounds.Dy())
	}

	if _, err := makeThumbnail([]byte("not an image")); err == nil {
		t.Fatal("expected decode error for junk input")
	}
}
