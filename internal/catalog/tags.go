package catalog

import (
	"context"
	"slices"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// AddGlobalTag adds a tag to the universe without attaching it to any item.
// Returns the normalized tag and whether the universe changed; blank input
// and already-known tags are a no-op.
func (e *Engine) AddGlobalTag(ctx context.Context, tag string) (string, bool) {
	normalized := domain.NormalizeTag(tag)
	if normalized == "" {
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, found := slices.BinarySearch(e.tags, normalized)
	if found {
		return normalized, false
	}

	e.tags = slices.Insert(e.tags, idx, normalized)
	e.persistTagsLocked(ctx)

	e.logger.Info("tag added", "tag", normalized)
	return normalized, true
}

// RenameGlobalTag renames a tag in the universe and rewrites every item
// carrying it. Set semantics: an item already holding the new name does not
// end up with a duplicate. No-op when the new name normalizes empty or the
// names are equal after normalization.
func (e *Engine) RenameGlobalTag(ctx context.Context, oldTag, newTag string) bool {
	from := domain.NormalizeTag(oldTag)
	to := domain.NormalizeTag(newTag)
	if from == "" || to == "" || from == to {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, found := slices.BinarySearch(e.tags, from)
	if !found {
		return false
	}

	// Swap the universe entry. Merge if the target already exists.
	e.tags = slices.Delete(e.tags, idx, idx+1)
	if at, exists := slices.BinarySearch(e.tags, to); !exists {
		e.tags = slices.Insert(e.tags, at, to)
	}
	e.persistTagsLocked(ctx)

	// Rewrite every holding item.
	for _, item := range e.items {
		if !item.HasTag(from) {
			continue
		}
		tags := make([]string, 0, len(item.Tags))
		for _, t := range item.Tags {
			if t == from {
				t = to
			}
			if !slices.Contains(tags, t) {
				tags = append(tags, t)
			}
		}
		item.Tags = tags
		item.Touch()
		e.persistItem(ctx, item)
	}

	e.logger.Info("tag renamed", "from", from, "to", to)
	return true
}

// DeleteGlobalTag removes a tag from the universe and strips it from every
// holding item. Returns false for unknown tags.
func (e *Engine) DeleteGlobalTag(ctx context.Context, tag string) bool {
	normalized := domain.NormalizeTag(tag)
	if normalized == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	idx, found := slices.BinarySearch(e.tags, normalized)
	if !found {
		return false
	}

	e.tags = slices.Delete(e.tags, idx, idx+1)
	e.persistTagsLocked(ctx)

	for _, item := range e.items {
		if !item.HasTag(normalized) {
			continue
		}
		item.Tags = slices.DeleteFunc(slices.Clone(item.Tags), func(t string) bool {
			return t == normalized
		})
		item.Touch()
		e.persistItem(ctx, item)
	}

	e.logger.Info("tag deleted", "tag", normalized)
	return true
}
