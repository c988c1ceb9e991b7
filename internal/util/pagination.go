package util

import "strconv"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxResultWindow matches the default index.max_result_window of
	// Elasticsearch; from+size never exceeds it.
	MaxResultWindow = 10000
)

// Calculate turns a 1-based page and a page size into an offset and a limit.
// A missing size becomes DefaultPageSize, larger sizes are capped at
// MaxPageSize and pages past MaxResultWindow are clamped to the last one.
func Calculate(page, size int) (from, limit int) {
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := MaxResultWindow / size; page > maxPage {
		page = maxPage
	}
	from = (page - 1) * size
	return from, size
}

// ParsePage reads page and size query values; unparsable input becomes 0 and
// is normalised by Calculate.
func ParsePage(pageRaw, sizeRaw string) (page, size int) {
	page, _ = strconv.Atoi(pageRaw)
	size, _ = strconv.Atoi(sizeRaw)
	return page, size
}
