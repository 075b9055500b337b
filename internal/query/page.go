package query

// Pagination bounds. Callers are expected to send validated values; the
// normalization here only restores the documented defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a validated page request
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a page request to the documented defaults
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// Skip returns the record offset of the page
func (p Page) Skip() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns the page count for a total matching record count
func (p Page) TotalPages(total int) int {
	if total <= 0 {
		return 0
	}
	return (total + p.Size - 1) / p.Size
}
