package catalog

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
	"github.com/shelfstash/shelfstash-server/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	imgs, err := images.NewStorage(t.TempDir())
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, imgs, logger, 20), s
}

func coverDataURI(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 60), B: uint8(y * 60), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestEngine_AddItem(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{
		Title:  "Dune",
		Author: "Frank Herbert",
		Tags:   []string{"Sci-Fi", "classic"},
	})

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, []string{"sci-fi", "classic"}, item.Tags)
	assert.Equal(t, domain.CalibredNo, item.CalibredStatus)
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)

	// Newest first.
	second := e.AddItem(ctx, &domain.ItemForm{Title: "Hyperion"})
	ids := []string{e.Items()[0].ID, e.Items()[1].ID}
	assert.Equal(t, []string{second.ID, item.ID}, ids)

	// Tags joined the universe, sorted.
	assert.Equal(t, []string{"classic", "sci-fi"}, e.AllTags())
}

func TestEngine_AddItem_PersistsToStore(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{Title: "Dune"})

	stored, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", stored.Title)
}

func TestEngine_AddItem_BlankTitleFallsBack(t *testing.T) {
	e, _ := newTestEngine(t)

	item := e.AddItem(context.Background(), &domain.ItemForm{Title: "   "})
	assert.Equal(t, domain.DefaultTitle, item.Title)
}

func TestEngine_AddItem_UploadedCover(t *testing.T) {
	e, _ := newTestEngine(t)

	item := e.AddItem(context.Background(), &domain.ItemForm{
		Title:    "Dune",
		ImageRef: coverDataURI(t),
	})

	assert.Equal(t, domain.UploadRef(item.ID), item.ImageRef)
	assert.NotEmpty(t, item.BlurHash)
	assert.True(t, e.images.Exists(item.ID))
}

func TestEngine_AddItem_MalformedCoverDiscarded(t *testing.T) {
	e, _ := newTestEngine(t)

	item := e.AddItem(context.Background(), &domain.ItemForm{
		Title:    "Dune",
		ImageRef: "data:image/png;base64,!!!notbase64",
	})

	assert.Empty(t, item.ImageRef)
	assert.False(t, e.images.Exists(item.ID))
}

func TestEngine_UpdateItem(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{Title: "Dune", Tags: []string{"sci-fi"}})
	time.Sleep(5 * time.Millisecond)

	updated, ok := e.UpdateItem(ctx, item.ID, &domain.ItemForm{
		Title: "Dune Messiah",
		Tags:  []string{"sci-fi", "sequel"},
	})
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	// Universe grows, never shrinks on item edits.
	assert.Equal(t, []string{"sci-fi", "sequel"}, e.AllTags())

	stored, err := s.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", stored.Title)
}

func TestEngine_UpdateItem_UnknownID(t *testing.T) {
	e, _ := newTestEngine(t)

	_, ok := e.UpdateItem(context.Background(), "item-missing", &domain.ItemForm{Title: "X"})
	assert.False(t, ok)
	assert.Zero(t, e.Len())
}

func TestEngine_UpdateItem_ReplacingUploadWithURL(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{Title: "Dune", ImageRef: coverDataURI(t)})
	require.True(t, e.images.Exists(item.ID))

	updated, ok := e.UpdateItem(ctx, item.ID, &domain.ItemForm{
		Title:    "Dune",
		ImageRef: "https://example.com/cover.jpg",
	})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/cover.jpg", updated.ImageRef)
	assert.Empty(t, updated.BlurHash)
	assert.False(t, e.images.Exists(item.ID))
}

func TestEngine_UpdateItem_KeepingUpload(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{Title: "Dune", ImageRef: coverDataURI(t)})

	updated, ok := e.UpdateItem(ctx, item.ID, &domain.ItemForm{
		Title:    "Dune (revised)",
		ImageRef: domain.UploadRef(item.ID),
	})
	require.True(t, ok)
	assert.Equal(t, domain.UploadRef(item.ID), updated.ImageRef)
	assert.True(t, e.images.Exists(item.ID))
}

func TestEngine_DeleteItem(t *testing.T) {
	e, s := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{
		Title:    "Dune",
		Tags:     []string{"sci-fi"},
		ImageRef: coverDataURI(t),
	})

	require.True(t, e.DeleteItem(ctx, item.ID))
	assert.Zero(t, e.Len())
	assert.False(t, e.images.Exists(item.ID))

	_, err := s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Universe is not pruned.
	assert.Equal(t, []string{"sci-fi"}, e.AllTags())

	// Unknown id.
	assert.False(t, e.DeleteItem(ctx, item.ID))
}

func TestEngine_Load(t *testing.T) {
	dir := t.TempDir()
	imgDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	s, err := store.New(dir, nil)
	require.NoError(t, err)
	imgs, err := images.NewStorage(imgDir)
	require.NoError(t, err)

	e := New(s, imgs, logger, 20)
	older := e.AddItem(ctx, &domain.ItemForm{Title: "Older", Tags: []string{"a"}})
	time.Sleep(5 * time.Millisecond)
	newer := e.AddItem(ctx, &domain.ItemForm{Title: "Newer", Tags: []string{"b"}})
	require.NoError(t, s.Close())

	// Reopen and reload.
	s, err = store.New(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	reloaded := New(s, imgs, logger, 20)
	require.NoError(t, reloaded.Load(ctx))

	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, newer.ID, reloaded.Items()[0].ID)
	assert.Equal(t, older.ID, reloaded.Items()[1].ID)
	assert.Equal(t, []string{"a", "b"}, reloaded.AllTags())
}

func TestEngine_ReplaceAll(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.AddItem(ctx, &domain.ItemForm{Title: "Old", Tags: []string{"old"}})

	now := time.Now()
	replacement := []*domain.Item{
		{ID: "item-1", Title: "One", Tags: []string{"x"}, CreatedAt: now.Add(-time.Hour), UpdatedAt: now},
		{ID: "item-2", Title: "Two", Tags: []string{"y"}, CreatedAt: now, UpdatedAt: now},
	}
	e.ReplaceAll(ctx, replacement)

	require.Equal(t, 2, e.Len())
	assert.Equal(t, "item-2", e.Items()[0].ID) // newest first
	assert.Equal(t, []string{"x", "y"}, e.AllTags())

	_, found := e.Get("item-1")
	assert.True(t, found)
}

func TestEngine_ReturnedItemsAreCopies(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	added := e.AddItem(ctx, &domain.ItemForm{Title: "Hyperion", Tags: []string{"sci-fi"}})

	// Scribbling on the returned item must not reach the catalog.
	added.Title = "Scribbled"
	added.Tags[0] = "scribbled"

	got, found := e.Get(added.ID)
	require.True(t, found)
	assert.Equal(t, "Hyperion", got.Title)
	assert.Equal(t, []string{"sci-fi"}, got.Tags)

	// Same for items coming out of the query pipeline and the full snapshot.
	page := e.Query(QueryOptions{})
	require.Len(t, page.Items, 1)
	page.Items[0].Title = "Scribbled"
	e.Items()[0].Tags[0] = "scribbled"

	got, found = e.Get(added.ID)
	require.True(t, found)
	assert.Equal(t, "Hyperion", got.Title)
	assert.Equal(t, []string{"sci-fi"}, got.Tags)
}

func TestEngine_ConcurrentReadsAndWrites(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	item := e.AddItem(ctx, &domain.ItemForm{Title: "Solaris", Tags: []string{"sci-fi"}})

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			e.UpdateItem(ctx, item.ID, &domain.ItemForm{
				Title: "Solaris " + strconv.Itoa(i),
				Tags:  []string{"sci-fi", "classic"},
			})
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			page := e.Query(QueryOptions{Sort: SortTitle, Direction: DirAsc})
			for _, it := range page.Items {
				_ = it.Title
				_ = len(it.Tags)
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if got, found := e.Get(item.ID); found {
				_ = got.Title
			}
			for _, it := range e.Items() {
				_ = it.Tags
			}
		}
	}()

	wg.Wait()

	got, found := e.Get(item.ID)
	require.True(t, found)
	assert.Equal(t, "Solaris 99", got.Title)
}
