package store

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// GetItem retrieves an item by ID. Returns ErrNotFound if it does not exist.
func (s *Store) GetItem(_ context.Context, id string) (*domain.Item, error) {
	var item domain.Item
	if err := s.get([]byte(itemPrefix+id), &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// SetItem writes an item record, creating or replacing it.
func (s *Store) SetItem(_ context.Context, item *domain.Item) error {
	if item.ID == "" {
		return fmt.Errorf("item has no id")
	}
	return s.set([]byte(itemPrefix+item.ID), item)
}

// DeleteItem removes an item record. Deleting a missing item is not an error.
func (s *Store) DeleteItem(_ context.Context, id string) error {
	return s.delete([]byte(itemPrefix + id))
}

// HasItem reports whether an item record exists.
func (s *Store) HasItem(_ context.Context, id string) (bool, error) {
	return s.exists([]byte(itemPrefix + id))
}

// StreamRawItems yields every stored item record as loosely decoded JSON,
// in key order. Callers run each record through the sanitizer; the store
// itself never assumes persisted data is well formed.
func (s *Store) StreamRawItems(ctx context.Context) iter.Seq2[map[string]any, error] {
	return streamRaw(s.db, ctx, itemPrefix)
}

// ListItemKeys returns the IDs of all stored items in key order.
func (s *Store) ListItemKeys(ctx context.Context) ([]string, error) {
	return s.listKeys(ctx, itemPrefix)
}

// ClearItems removes every item record. Used by restore.
func (s *Store) ClearItems(ctx context.Context) error {
	return s.deleteByPrefix(ctx, itemPrefix)
}

// GetTagUniverse retrieves the global tag list. A missing record is an
// empty universe, not an error.
func (s *Store) GetTagUniverse(_ context.Context) ([]string, error) {
	var tags []string
	err := s.get(tagsKey, &tags)
	if errors.Is(err, ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// SetTagUniverse replaces the global tag list.
func (s *Store) SetTagUniverse(_ context.Context, tags []string) error {
	return s.set(tagsKey, tags)
}
