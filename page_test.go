package prism

import (
	"testing"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		size      int
		wantCount int
	}{
		{"exact", 20, 10, 2},
		{"remainder", 23, 10, 3},
		{"single", 1, 10, 1},
		{"empty", 0, 10, 0},
		{"negative total", -1, 10, 0},
		{"unbounded size", 7, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := NewPage([]int{1}, tt.total, PageRequest{PageNum: 1, PageSize: tt.size}, Sort{})
			if page.PageCount != tt.wantCount {
				t.Errorf("PageCount = %d, want %d", page.PageCount, tt.wantCount)
			}
			if page.Total != tt.total {
				t.Errorf("Total = %d, want %d", page.Total, tt.total)
			}
		})
	}
}

func TestNewPage_NilList(t *testing.T) {
	page := NewPage[string](nil, 0, PageRequest{}, Sort{})

	if page.List == nil {
		t.Error("nil list should become empty so it serializes as []")
	}
	if page.Len() != 0 {
		t.Errorf("Len() = %d, want 0", page.Len())
	}
}

func TestPage_IsPager(t *testing.T) {
	var v any = NewPage([]int{1, 2}, 2, PageRequest{}, Sort{Field: "id", Direction: Desc})

	pg, ok := v.(pager)
	if !ok {
		t.Fatal("*Page should satisfy pager")
	}
	if pg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", pg.Len())
	}

	if _, ok := any(Page[int]{List: []int{1}}).(pager); !ok {
		t.Error("Page value should satisfy pager")
	}
}
