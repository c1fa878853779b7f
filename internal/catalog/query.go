package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// Sort keys.
const (
	SortCreatedAt = "createdAt"
	SortTitle     = "title"
)

// Sort directions.
const (
	DirAsc  = "asc"
	DirDesc = "desc"
)

// Search field scopes. Empty scope searches title and author together.
const (
	FieldTitle  = "title"
	FieldAuthor = "author"
)

// titleCollator orders titles the way a human browsing a shelf expects:
// case-insensitive, locale-aware, digits compared numerically.
var titleCollator = collate.New(language.Und, collate.IgnoreCase, collate.Numeric)

// QueryOptions selects, orders, and pages the catalog.
// Zero values mean: no tag filter, no search, newest first, first page,
// engine default page size.
type QueryOptions struct {
	// Tags is an AND filter: an item matches only if it carries every tag.
	Tags []string

	// Search is whitespace-split into keywords; every keyword must substring-
	// match case-insensitively. Field scopes the match to one field; empty
	// scope matches against title and author together.
	Search string
	Field  string

	Sort      string
	Direction string

	// Page is 1-based. Out-of-range pages clamp to the last page.
	Page     int
	PageSize int
}

// QueryResult is one page of query output.
type QueryResult struct {
	Items      []*domain.Item `json:"items"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
}

// Query runs the filter, search, sort, paginate pipeline over a snapshot of
// the catalog. The engine's own ordering is never mutated.
func (e *Engine) Query(opts QueryOptions) *QueryResult {
	e.mu.RLock()
	matched := e.filterLocked(opts)
	e.mu.RUnlock()

	sortItems(matched, opts.Sort, opts.Direction)
	return paginate(matched, opts.Page, e.pageSize(opts.PageSize))
}

func (e *Engine) pageSize(requested int) int {
	if requested < 1 {
		return e.defaultPageSize
	}
	return requested
}

// filterLocked applies the tag filter and keyword search. Caller holds the
// read lock; the returned slice holds independent copies, so sorting and
// paging run safely after the lock is released.
func (e *Engine) filterLocked(opts QueryOptions) []*domain.Item {
	tags := domain.NormalizeTags(opts.Tags)
	keywords := strings.Fields(strings.ToLower(opts.Search))

	matched := make([]*domain.Item, 0, len(e.items))
	for _, item := range e.items {
		if !hasAllTags(item, tags) {
			continue
		}
		if !matchesKeywords(item, keywords, opts.Field) {
			continue
		}
		matched = append(matched, item.Clone())
	}
	return matched
}

// hasAllTags reports whether the item's tag set is a superset of tags.
func hasAllTags(item *domain.Item, tags []string) bool {
	for _, tag := range tags {
		if !item.HasTag(tag) {
			return false
		}
	}
	return true
}

// matchesKeywords reports whether every keyword appears in the scoped fields.
// Each keyword may match a different field in the unscoped case.
func matchesKeywords(item *domain.Item, keywords []string, field string) bool {
	if len(keywords) == 0 {
		return true
	}

	var haystacks []string
	switch field {
	case FieldTitle:
		haystacks = []string{strings.ToLower(item.Title)}
	case FieldAuthor:
		haystacks = []string{strings.ToLower(item.Author)}
	default:
		haystacks = []string{strings.ToLower(item.Title), strings.ToLower(item.Author)}
	}

	for _, keyword := range keywords {
		found := false
		for _, h := range haystacks {
			if strings.Contains(h, keyword) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// sortItems orders items by the requested key, then applies direction as a
// final comparator flip. Defaults: newest first for createdAt, A-Z for title.
func sortItems(items []*domain.Item, key, direction string) {
	var cmp func(a, b *domain.Item) int
	switch key {
	case SortTitle:
		cmp = func(a, b *domain.Item) int {
			return titleCollator.CompareString(a.Title, b.Title)
		}
		if direction == "" {
			direction = DirAsc
		}
	default:
		cmp = func(a, b *domain.Item) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
		if direction == "" {
			direction = DirDesc
		}
	}

	if direction == DirDesc {
		inner := cmp
		cmp = func(a, b *domain.Item) int { return -inner(a, b) }
	}

	slices.SortStableFunc(items, cmp)
}

// paginate slices one 1-based page out of items, clamping out-of-range pages
// to the last page. No pages at all yields an empty page 1.
func paginate(items []*domain.Item, page, pageSize int) *QueryResult {
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	if page < 1 {
		page = 1
	}
	if totalPages == 0 {
		return &QueryResult{
			Items:      []*domain.Item{},
			Total:      0,
			TotalPages: 0,
			Page:       1,
			PageSize:   pageSize,
		}
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)

	return &QueryResult{
		Items:      items[start:end],
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		PageSize:   pageSize,
	}
}
