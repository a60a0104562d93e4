// Package pagination computes stable page windows over an ordered collection.
//
// Pages are 1-indexed. A request without an explicit limit gets the whole
// collection in one page; a page past the end of the collection is an empty
// window, not an error.
package pagination

// MaxLimit caps an explicit per-page limit so a caller can't request the
// entire database in one response by accident.
const MaxLimit = 100

// Params is a normalized page request. Limit <= 0 means "no limit".
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps raw query values into a valid Params: page below 1 becomes
// 1, a non-positive limit stays "unlimited", and an explicit limit is capped
// at MaxLimit.
func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Unlimited reports whether the request wants the full collection.
func (p Params) Unlimited() bool {
	return p.Limit <= 0
}

// Offset is the number of items to skip for this page.
func (p Params) Offset() int {
	if p.Unlimited() {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// PageSize is the effective page size given the total count: the limit when
// one is set, otherwise the whole collection (so an un-paginated response
// still reports a meaningful page_size).
func (p Params) PageSize(total int) int {
	if p.Unlimited() {
		return total
	}
	return p.Limit
}

// TotalPages is the number of pages the collection spans under this limit.
// An empty collection has 0 pages; an unlimited request spans at most 1.
func (p Params) TotalPages(total int) int {
	if total == 0 {
		return 0
	}
	if p.Unlimited() {
		return 1
	}
	pages := total / p.Limit
	if total%p.Limit > 0 {
		pages++
	}
	return pages
}
