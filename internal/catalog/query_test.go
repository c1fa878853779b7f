package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// seedCatalog loads a fixed set of items with staggered creation times.
// Returned engine order is newest first: Neuromancer, Hyperion, Dune, 1984.
func seedCatalog(t *testing.T) *Engine {
	t.Helper()

	e, _ := newTestEngine(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []*domain.Item{
		{ID: "item-1", Title: "1984", Author: "George Orwell", Tags: []string{"dystopia", "classic"}, CreatedAt: base, UpdatedAt: base},
		{ID: "item-2", Title: "Dune", Author: "Frank Herbert", Tags: []string{"sci-fi", "classic"}, CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)},
		{ID: "item-3", Title: "Hyperion", Author: "Dan Simmons", Tags: []string{"sci-fi"}, CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "item-4", Title: "Neuromancer", Author: "William Gibson", Tags: []string{"sci-fi", "cyberpunk"}, CreatedAt: base.Add(3 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
	}
	e.ReplaceAll(context.Background(), items)
	return e
}

func titles(result *QueryResult) []string {
	out := make([]string, len(result.Items))
	for i, item := range result.Items {
		out[i] = item.Title
	}
	return out
}

func TestQuery_Default_NewestFirst(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{})
	assert.Equal(t, []string{"Neuromancer", "Hyperion", "Dune", "1984"}, titles(result))
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 1, result.TotalPages)
	assert.Equal(t, 1, result.Page)
}

func TestQuery_TagFilter_AndSemantics(t *testing.T) {
	e := seedCatalog(t)

	// Single tag.
	result := e.Query(QueryOptions{Tags: []string{"sci-fi"}})
	assert.Equal(t, []string{"Neuromancer", "Hyperion", "Dune"}, titles(result))

	// Both tags required: only Dune carries sci-fi AND classic.
	result = e.Query(QueryOptions{Tags: []string{"sci-fi", "classic"}})
	assert.Equal(t, []string{"Dune"}, titles(result))

	// Tag input is normalized before matching.
	result = e.Query(QueryOptions{Tags: []string{" SCI-FI "}})
	assert.Equal(t, 3, result.Total)

	// No holder of this combination.
	result = e.Query(QueryOptions{Tags: []string{"cyberpunk", "classic"}})
	assert.Empty(t, result.Items)
}

func TestQuery_KeywordSearch(t *testing.T) {
	e := seedCatalog(t)

	// Case-insensitive substring over title and author.
	result := e.Query(QueryOptions{Search: "gibson"})
	assert.Equal(t, []string{"Neuromancer"}, titles(result))

	// Every keyword must match, fields may differ per keyword.
	result = e.Query(QueryOptions{Search: "dune herbert"})
	assert.Equal(t, []string{"Dune"}, titles(result))

	result = e.Query(QueryOptions{Search: "dune simmons"})
	assert.Empty(t, result.Items)

	// Whitespace-only search matches everything.
	result = e.Query(QueryOptions{Search: "   "})
	assert.Equal(t, 4, result.Total)
}

func TestQuery_ScopedSearch(t *testing.T) {
	e := seedCatalog(t)

	// "an" appears in author "Dan Simmons" and "Frank Herbert" but scoping to
	// title only matches none of those.
	result := e.Query(QueryOptions{Search: "herbert", Field: FieldTitle})
	assert.Empty(t, result.Items)

	result = e.Query(QueryOptions{Search: "herbert", Field: FieldAuthor})
	assert.Equal(t, []string{"Dune"}, titles(result))
}

func TestQuery_SearchAndTagsCombined(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{Tags: []string{"classic"}, Search: "dune"})
	assert.Equal(t, []string{"Dune"}, titles(result))
}

func TestQuery_TitleSort_Collation(t *testing.T) {
	e, _ := newTestEngine(t)
	now := time.Now()
	e.ReplaceAll(context.Background(), []*domain.Item{
		{ID: "item-1", Title: "apple", CreatedAt: now, UpdatedAt: now},
		{ID: "item-2", Title: "Banana", CreatedAt: now, UpdatedAt: now},
		{ID: "item-3", Title: "Äpfel", CreatedAt: now, UpdatedAt: now},
		{ID: "item-4", Title: "Volume 10", CreatedAt: now, UpdatedAt: now},
		{ID: "item-5", Title: "Volume 2", CreatedAt: now, UpdatedAt: now},
	})

	result := e.Query(QueryOptions{Sort: SortTitle})

	// Case-insensitive, accent-aware, numeric-aware ordering.
	assert.Equal(t, []string{"Äpfel", "apple", "Banana", "Volume 2", "Volume 10"}, titles(result))
}

func TestQuery_SortDirection(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{Sort: SortCreatedAt, Direction: DirAsc})
	assert.Equal(t, []string{"1984", "Dune", "Hyperion", "Neuromancer"}, titles(result))

	result = e.Query(QueryOptions{Sort: SortTitle, Direction: DirDesc})
	assert.Equal(t, []string{"Neuromancer", "Hyperion", "Dune", "1984"}, titles(result))
}

func TestQuery_Pagination(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{PageSize: 3, Page: 1})
	assert.Equal(t, []string{"Neuromancer", "Hyperion", "Dune"}, titles(result))
	assert.Equal(t, 2, result.TotalPages)

	result = e.Query(QueryOptions{PageSize: 3, Page: 2})
	assert.Equal(t, []string{"1984"}, titles(result))
	assert.Equal(t, 2, result.Page)
}

func TestQuery_Pagination_ClampToLastPage(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{PageSize: 3, Page: 99})
	assert.Equal(t, 2, result.Page)
	assert.Equal(t, []string{"1984"}, titles(result))

	result = e.Query(QueryOptions{PageSize: 3, Page: -1})
	assert.Equal(t, 1, result.Page)
}

func TestQuery_Pagination_NoMatches(t *testing.T) {
	e := seedCatalog(t)

	result := e.Query(QueryOptions{Search: "nomatch", Page: 5})
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 1, result.Page)
}

func TestQuery_DoesNotMutateEngineOrder(t *testing.T) {
	e := seedCatalog(t)

	_ = e.Query(QueryOptions{Sort: SortTitle})

	// The engine's own newest-first order is untouched.
	require.Equal(t, "item-4", e.Items()[0].ID)
	assert.Equal(t, "item-1", e.Items()[3].ID)
}
