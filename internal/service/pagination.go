package service

const (
	// DefaultPageSize applies when a listing does not ask for a limit.
	DefaultPageSize = 10
	// MaxPageSize caps a single page.
	MaxPageSize = 100
)

// TotalPages returns ceil(total/limit), or 0 for an empty result.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
