package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// createItem posts a minimal item and returns its decoded form.
func (ts *testServer) createItem(t *testing.T, fields map[string]any) domain.Item {
	t.Helper()

	resp := ts.api.Post("/api/v1/items", fields)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var item domain.Item
	decodeBody(t, resp, &item)
	return item
}

func TestItemCRUD(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createItem(t, map[string]any{
		"title":  "Dune",
		"author": "Frank Herbert",
		"tags":   []string{"Sci-Fi", "classic"},
	})
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, []string{"sci-fi", "classic"}, created.Tags)
	assert.Equal(t, domain.CalibredNo, created.CalibredStatus)

	// Read it back.
	resp := ts.api.Get("/api/v1/items/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	var fetched domain.Item
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.ID, fetched.ID)

	// Update.
	resp = ts.api.Put("/api/v1/items/"+created.ID, map[string]any{
		"title":          "Dune Messiah",
		"author":         "Frank Herbert",
		"calibredStatus": "yes",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var updated domain.Item
	decodeBody(t, resp, &updated)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, domain.CalibredYes, updated.CalibredStatus)

	// Delete.
	resp = ts.api.Delete("/api/v1/items/" + created.ID)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/items/" + created.ID)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateItem_UnknownID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/items/nope", map[string]any{
		"title": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListItems_QueryPipeline(t *testing.T) {
	ts := setupTestServer(t)

	ts.createItem(t, map[string]any{"title": "A Memory of Light", "author": "Jordan", "tags": []string{"fantasy"}})
	ts.createItem(t, map[string]any{"title": "Consider Phlebas", "author": "Banks", "tags": []string{"sci-fi"}})
	ts.createItem(t, map[string]any{"title": "Use of Weapons", "author": "Banks", "tags": []string{"sci-fi", "culture"}})

	list := func(query string) *catalog.QueryResult {
		resp := ts.api.Get("/api/v1/items" + query)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		var result catalog.QueryResult
		decodeBody(t, resp, &result)
		return &result
	}

	// Default ordering is newest first.
	all := list("")
	require.Equal(t, 3, all.Total)
	assert.Equal(t, "Use of Weapons", all.Items[0].Title)

	// Keyword search over title and author.
	byAuthor := list("?search=banks")
	assert.Equal(t, 2, byAuthor.Total)

	// Scoped search misses when the keyword lives in the other field.
	scoped := list("?search=banks&field=title")
	assert.Zero(t, scoped.Total)

	// AND tag filter.
	tagged := list("?tags=sci-fi,culture")
	require.Equal(t, 1, tagged.Total)
	assert.Equal(t, "Use of Weapons", tagged.Items[0].Title)

	// Title sort defaults ascending.
	byTitle := list("?sort=title")
	assert.Equal(t, "A Memory of Light", byTitle.Items[0].Title)

	// Out-of-range pages clamp to the last page.
	clamped := list("?page=99&page_size=2")
	assert.Equal(t, 2, clamped.Page)
	assert.Equal(t, 1, len(clamped.Items))
}

func TestCoverUploadAndServe(t *testing.T) {
	ts := setupTestServer(t)

	item := ts.createItem(t, map[string]any{"title": "Hyperion"})
	payload := testPNG(t)

	resp := ts.api.Put("/api/v1/items/"+item.ID+"/cover",
		"Content-Type: image/png", bytes.NewReader(payload))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var cover CoverResponse
	decodeBody(t, resp, &cover)
	assert.Equal(t, domain.UploadRef(item.ID), cover.ImageRef)
	assert.NotEmpty(t, cover.BlurHash)

	// The cover endpoint redirects into the raw streaming route.
	resp = ts.api.Get("/api/v1/items/" + item.ID + "/cover")
	require.Equal(t, http.StatusTemporaryRedirect, resp.Code)
	location := resp.Header().Get("Location")
	assert.Equal(t, "/covers/"+item.ID, location)

	req := httptest.NewRequest(http.MethodGet, location, nil)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/png")

	// Delete drops both the reference and the stored bytes.
	resp = ts.api.Delete("/api/v1/items/" + item.ID + "/cover")
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/items/" + item.ID + "/cover")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	rec = httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, location, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCoverRedirect_RemoteURL(t *testing.T) {
	ts := setupTestServer(t)

	item := ts.createItem(t, map[string]any{
		"title":    "Ilium",
		"imageUrl": "https://example.com/ilium.jpg",
	})

	resp := ts.api.Get("/api/v1/items/" + item.ID + "/cover")
	require.Equal(t, http.StatusTemporaryRedirect, resp.Code)
	assert.Equal(t, "https://example.com/ilium.jpg", resp.Header().Get("Location"))
}
