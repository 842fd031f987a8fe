package feed

import (
	"math"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a 1-indexed page request
type Page struct {
	Number int
	Limit  int
}

// ParsePage reads page and limit query values, falling back to the defaults
// for missing, malformed or non-positive values.
func ParsePage(pageParam, limitParam string) Page {
	page, err := strconv.Atoi(pageParam)
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(limitParam)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: page, Limit: limit}
}

// Skip is the number of items before this page. It saturates at
// math.MaxInt64 for pages too far out to count.
func (p Page) Skip() int64 {
	if p.Number < 1 || p.Limit < 1 {
		return 0
	}
	before := int64(p.Number - 1)
	if before > math.MaxInt64/int64(p.Limit) {
		return math.MaxInt64
	}
	return before * int64(p.Limit)
}

// TotalPages is ceil(total/limit)
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
