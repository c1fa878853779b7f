package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) listTags(t *testing.T) []string {
	t.Helper()

	resp := ts.api.Get("/api/v1/tags")
	require.Equal(t, http.StatusOK, resp.Code)

	var body TagsResponse
	decodeBody(t, resp, &body)
	return body.Tags
}

func TestTagLifecycle(t *testing.T) {
	ts := setupTestServer(t)

	assert.Empty(t, ts.listTags(t))

	// Create normalizes to lowercase.
	resp := ts.api.Post("/api/v1/tags", map[string]any{"tag": "  Fantasy "})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created TagResponse
	decodeBody(t, resp, &created)
	assert.Equal(t, "fantasy", created.Tag)
	assert.True(t, created.Added)

	// Creating again reports added=false.
	resp = ts.api.Post("/api/v1/tags", map[string]any{"tag": "FANTASY"})
	require.Equal(t, http.StatusCreated, resp.Code)
	decodeBody(t, resp, &created)
	assert.False(t, created.Added)

	assert.Equal(t, []string{"fantasy"}, ts.listTags(t))

	// Rename rewrites the universe entry.
	resp = ts.api.Patch("/api/v1/tags/fantasy", map[string]any{"newName": "epic-fantasy"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"epic-fantasy"}, ts.listTags(t))

	// Delete removes it.
	resp = ts.api.Delete("/api/v1/tags/epic-fantasy")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, ts.listTags(t))
}

func TestRenameTag_RewritesItems(t *testing.T) {
	ts := setupTestServer(t)

	item := ts.createItem(t, map[string]any{
		"title": "The Fifth Season",
		"tags":  []string{"scifi"},
	})

	resp := ts.api.Patch("/api/v1/tags/scifi", map[string]any{"newName": "sci-fi"})
	require.Equal(t, http.StatusOK, resp.Code)

	fetched := ts.api.Get("/api/v1/items/" + item.ID)
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.Contains(t, fetched.Body.String(), "sci-fi")
}

func TestRenameTag_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/api/v1/tags/ghost", map[string]any{"newName": "phantom"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteTag_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/tags/ghost")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
