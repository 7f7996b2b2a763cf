package prism

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// PageRequest identifies the requested page. PageNum starts at 1.
type PageRequest struct {
	PageNum  int `json:"pageNum" yaml:"pageNum" msgpack:"pageNum" bson:"pageNum" xml:"pageNum"`
	PageSize int `json:"pageSize" yaml:"pageSize" msgpack:"pageSize" bson:"pageSize" xml:"pageSize"`
}

// Sort names the ordering applied to a page.
type Sort struct {
	Field     string    `json:"field,omitempty" yaml:"field,omitempty" msgpack:"field,omitempty" bson:"field,omitempty" xml:"field,omitempty"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty" msgpack:"direction,omitempty" bson:"direction,omitempty" xml:"direction,omitempty"`
}

// Page is a paged list response.
type Page[T any] struct {
	Total     int         `json:"total" yaml:"total" msgpack:"total" bson:"total" xml:"total"`
	PageCount int         `json:"pageCount" yaml:"pageCount" msgpack:"pageCount" bson:"pageCount" xml:"pageCount"`
	List      []T         `json:"list" yaml:"list" msgpack:"list" bson:"list" xml:"list"`
	Page      PageRequest `json:"page" yaml:"page" msgpack:"page" bson:"page" xml:"page"`
	Sort      Sort        `json:"sort" yaml:"sort" msgpack:"sort" bson:"sort" xml:"sort"`
}

// NewPage wraps one page of results. PageCount is derived from total and the
// page size; a non-positive page size yields a single page.
func NewPage[T any](list []T, total int, req PageRequest, sort Sort) *Page[T] {
	if list == nil {
		list = []T{}
	}

	pageCount := 0
	switch {
	case total <= 0:
	case req.PageSize <= 0:
		pageCount = 1
	default:
		pageCount = (total + req.PageSize - 1) / req.PageSize
	}

	return &Page[T]{
		Total:     total,
		PageCount: pageCount,
		List:      list,
		Page:      req,
		Sort:      sort,
	}
}

// Len returns the number of items on this page.
func (p Page[T]) Len() int {
	return len(p.List)
}

// isPage marks Page for shape detection.
func (p Page[T]) isPage() {}

type pager interface {
	Len() int
	isPage()
}
