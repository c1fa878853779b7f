// Package catalog owns the in-memory catalog state and its query pipeline.
//
// The Engine holds the authoritative item list (newest first) and the global
// tag universe. All mutations update memory synchronously and mirror to the
// store best-effort: a persistence failure is logged loudly but the in-memory
// mutation stands, so a disk hiccup never loses the user's edit mid-session.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
	"github.com/shelfstash/shelfstash-server/internal/sanitize"
	"github.com/shelfstash/shelfstash-server/internal/store"
)

// Engine is the single catalog instance for the process.
// All access is serialized behind one RWMutex.
type Engine struct {
	mu sync.RWMutex

	store  *store.Store
	images *images.Storage
	logger *slog.Logger

	// items is ordered newest first.
	items []*domain.Item

	// tags is the sorted global tag universe. It grows with item tags and
	// through the tag operations; deleting an item never prunes it.
	tags []string

	defaultPageSize int
}

// New creates an Engine. Call Load before serving requests.
func New(s *store.Store, imgs *images.Storage, logger *slog.Logger, defaultPageSize int) *Engine {
	if defaultPageSize < 1 {
		defaultPageSize = 20
	}
	return &Engine{
		store:           s,
		images:          imgs,
		logger:          logger,
		items:           []*domain.Item{},
		tags:            []string{},
		defaultPageSize: defaultPageSize,
	}
}

// Load populates the engine from the store. Every stored record passes
// through the sanitizer, so a catalog written by an older version or damaged
// on disk still loads into a valid state.
func (e *Engine) Load(ctx context.Context) error {
	var items []*domain.Item

	for record, err := range e.store.StreamRawItems(ctx) {
		if err != nil {
			return err
		}
		items = append(items, sanitize.Sanitize(record))
	}

	// Newest first. Ties keep store key order, which is stable.
	slices.SortStableFunc(items, func(a, b *domain.Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	universe, err := e.store.GetTagUniverse(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = items
	e.tags = universe
	e.mergeTagsLocked(ctx, itemTags(items)...)

	e.logger.Info("catalog loaded", "items", len(items), "tags", len(e.tags))
	return nil
}

// Items returns a snapshot of the item list, newest first. Every element is
// an independent copy, safe to read after the lock is released.
func (e *Engine) Items() []*domain.Item {
	e.mu.RLock()
	defer e.mu.RUnlock()

	items := make([]*domain.Item, len(e.items))
	for i, item := range e.items {
		items[i] = item.Clone()
	}
	return items
}

// Len returns the number of items.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items)
}

// Get returns a copy of the item with the given id.
func (e *Engine) Get(id string) (*domain.Item, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	item, found := e.findLocked(id)
	if !found {
		return nil, false
	}
	return item.Clone(), true
}

// AllTags returns a snapshot of the sorted global tag universe.
func (e *Engine) AllTags() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.tags)
}

// ReplaceAll swaps the whole in-memory catalog and rebuilds the tag universe
// from the new items. Restore uses this after rewriting the store; the engine
// does not write item records here.
func (e *Engine) ReplaceAll(ctx context.Context, items []*domain.Item) {
	sorted := make([]*domain.Item, len(items))
	for i, item := range items {
		sorted[i] = item.Clone()
	}
	slices.SortStableFunc(sorted, func(a, b *domain.Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = sorted
	e.tags = []string{}
	e.mergeTagsLocked(ctx, itemTags(sorted)...)

	e.logger.Info("catalog replaced", "items", len(sorted), "tags", len(e.tags))
}

// findLocked returns the item with the given id. Caller holds the lock.
func (e *Engine) findLocked(id string) (*domain.Item, bool) {
	for _, item := range e.items {
		if item.ID == id {
			return item, true
		}
	}
	return nil, false
}

// mergeTagsLocked adds any unknown tags to the universe, keeping it sorted,
// and mirrors the universe to the store when it changed. Caller holds the lock.
func (e *Engine) mergeTagsLocked(ctx context.Context, tags ...string) {
	changed := false
	for _, tag := range tags {
		normalized := domain.NormalizeTag(tag)
		if normalized == "" {
			continue
		}
		if idx, found := slices.BinarySearch(e.tags, normalized); !found {
			e.tags = slices.Insert(e.tags, idx, normalized)
			changed = true
		}
	}
	if changed {
		e.persistTagsLocked(ctx)
	}
}

// persistTagsLocked mirrors the tag universe to the store. Caller holds the lock.
func (e *Engine) persistTagsLocked(ctx context.Context) {
	if err := e.store.SetTagUniverse(ctx, e.tags); err != nil {
		e.logger.Error("failed to persist tag universe, in-memory state kept", "error", err)
	}
}

// persistItem mirrors one item to the store.
func (e *Engine) persistItem(ctx context.Context, item *domain.Item) {
	if err := e.store.SetItem(ctx, item); err != nil {
		e.logger.Error("failed to persist item, in-memory state kept",
			"item_id", item.ID, "error", err)
	}
}

// itemTags collects every tag carried by the given items.
func itemTags(items []*domain.Item) []string {
	var tags []string
	for _, item := range items {
		tags = append(tags, item.Tags...)
	}
	return tags
}
