package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func testItem(id, title string) *domain.Item {
	now := time.Now()
	return &domain.Item{
		ID:             id,
		Title:          title,
		Tags:           []string{},
		CalibredStatus: domain.CalibredNo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestStore_ItemRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := testItem("item-abc", "Dune")
	item.Tags = []string{"sci-fi"}
	require.NoError(t, s.SetItem(ctx, item))

	got, err := s.GetItem(ctx, "item-abc")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, []string{"sci-fi"}, got.Tags)

	exists, err := s.HasItem(ctx, "item-abc")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_GetItem_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetItem(context.Background(), "item-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetItem_RequiresID(t *testing.T) {
	s := newTestStore(t)

	err := s.SetItem(context.Background(), &domain.Item{Title: "no id"})
	assert.Error(t, err)
}

func TestStore_DeleteItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, testItem("item-1", "A")))
	require.NoError(t, s.DeleteItem(ctx, "item-1"))

	_, err := s.GetItem(ctx, "item-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.DeleteItem(ctx, "item-1"))
}

func TestStore_ListItemKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, testItem("item-b", "B")))
	require.NoError(t, s.SetItem(ctx, testItem("item-a", "A")))

	keys, err := s.ListItemKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"item-a", "item-b"}, keys)
}

func TestStore_StreamRawItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, testItem("item-1", "One")))
	require.NoError(t, s.SetItem(ctx, testItem("item-2", "Two")))

	// The tag universe must not leak into the item stream.
	require.NoError(t, s.SetTagUniverse(ctx, []string{"x"}))

	var titles []string
	for record, err := range s.StreamRawItems(ctx) {
		require.NoError(t, err)
		titles = append(titles, record["title"].(string))
	}
	assert.ElementsMatch(t, []string{"One", "Two"}, titles)
}

func TestStore_ClearItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetItem(ctx, testItem("item-1", "One")))
	require.NoError(t, s.SetTagUniverse(ctx, []string{"keep"}))

	require.NoError(t, s.ClearItems(ctx))

	keys, err := s.ListItemKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Only the item prefix is cleared.
	tags, err := s.GetTagUniverse(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, tags)
}

func TestStore_TagUniverse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tags, err := s.GetTagUniverse(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)

	require.NoError(t, s.SetTagUniverse(ctx, []string{"fantasy", "horror"}))

	tags, err = s.GetTagUniverse(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fantasy", "horror"}, tags)
}

func TestStore_InitializeInstance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.InitializeInstance(ctx, "test-shelf")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "test-shelf", first.Name)

	// Second call returns the existing record, identity is stable.
	second, err := s.InitializeInstance(ctx, "other-name")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "test-shelf", second.Name)
}

func TestStore_UpdateInstance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	instance, err := s.InitializeInstance(ctx, "shelf")
	require.NoError(t, err)

	instance.Name = "renamed"
	require.NoError(t, s.UpdateInstance(ctx, instance))

	got, err := s.GetInstance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)

	missing := newTestStore(t)
	err = missing.UpdateInstance(ctx, instance)
	assert.ErrorIs(t, err, ErrNotFound)
}
