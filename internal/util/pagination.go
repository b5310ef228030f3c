package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Window is a normalized page request.
type Window struct {
	Page   int
	Size   int
	Offset int
}

// Paginate clamps page and size to sane values. Pages start at 1.
func Paginate(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return Window{Page: page, Size: size, Offset: (page - 1) * size}
}

// Limit caps n at MaxPageSize; zero or negative means no limit.
func Limit(n int) int {
	if n <= 0 {
		return 0
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}
