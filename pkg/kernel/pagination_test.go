package kernel

import "testing"

func TestPaginationNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       PaginationOptions
		wantPage int
		wantSize int
	}{
		{"zero values", PaginationOptions{}, 1, DefaultPageSize},
		{"negative page", PaginationOptions{Page: -3, PageSize: 10}, 1, 10},
		{"oversized page size", PaginationOptions{Page: 2, PageSize: 500}, 2, MaxPageSize},
		{"already sane", PaginationOptions{Page: 4, PageSize: 25}, 4, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got.Page != tt.wantPage || got.PageSize != tt.wantSize {
				t.Fatalf("Normalize() = %+v, want page=%d size=%d", got, tt.wantPage, tt.wantSize)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	tests := []struct {
		name string
		in   PaginationOptions
		want int
	}{
		{"first page", PaginationOptions{Page: 1, PageSize: 20}, 0},
		{"third page", PaginationOptions{Page: 3, PageSize: 10}, 20},
		{"unnormalized input", PaginationOptions{Page: 0, PageSize: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Offset(); got != tt.want {
				t.Fatalf("Offset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewPaginated(t *testing.T) {
	t.Run("has next when more remain", func(t *testing.T) {
		p := NewPaginated([]int{1, 2, 3}, 1, 3, 10)
		if !p.Page.HasNext {
			t.Fatal("expected HasNext")
		}
		if p.Page.Total != 10 || p.Page.Number != 1 || p.Page.Size != 3 {
			t.Fatalf("unexpected page info %+v", p.Page)
		}
	})

	t.Run("no next on last page", func(t *testing.T) {
		p := NewPaginated([]int{7}, 4, 3, 10)
		if p.Page.HasNext {
			t.Fatal("did not expect HasNext")
		}
	})

	t.Run("exact boundary", func(t *testing.T) {
		p := NewPaginated([]int{1, 2, 3}, 2, 3, 6)
		if p.Page.HasNext {
			t.Fatal("page*size == total must not have a next page")
		}
	})

	t.Run("nil items become empty slice", func(t *testing.T) {
		p := NewPaginated[string](nil, 1, 20, 0)
		if p.Items == nil {
			t.Fatal("items must not be nil")
		}
		if len(p.Items) != 0 {
			t.Fatalf("expected no items, got %d", len(p.Items))
		}
	})
}
