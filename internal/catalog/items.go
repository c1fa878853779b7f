package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/id"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
)

// AddItem creates a new catalog item from a validated form, persists it, and
// prepends it to the list. New tags join the universe.
func (e *Engine) AddItem(ctx context.Context, form *domain.ItemForm) *domain.Item {
	item := &domain.Item{
		ID:             id.MustGenerate(id.PrefixItem),
		Tags:           []string{},
		CalibredStatus: domain.CalibredNo,
	}
	item.InitTimestamps()
	applyForm(item, form)
	e.applyImage(item, form.ImageRef)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = slices.Insert(e.items, 0, item)
	e.mergeTagsLocked(ctx, item.Tags...)
	e.persistItem(ctx, item)

	e.logger.Info("item added", "item_id", item.ID, "title", item.Title)
	return item.Clone()
}

// UpdateItem merges a validated form into an existing item. Unknown ids are
// a silent no-op, mirroring how a stale edit form should not resurrect a
// deleted item. Tags are merged into the universe, never removed from it.
func (e *Engine) UpdateItem(ctx context.Context, itemID string, form *domain.ItemForm) (*domain.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, found := e.findLocked(itemID)
	if !found {
		return nil, false
	}

	applyForm(item, form)
	e.applyImage(item, form.ImageRef)
	item.Touch()

	e.mergeTagsLocked(ctx, item.Tags...)
	e.persistItem(ctx, item)

	e.logger.Info("item updated", "item_id", item.ID)
	return item.Clone(), true
}

// DeleteItem removes an item from memory, the store, and the image sub-store.
// The tag universe is not pruned. Returns false for unknown ids.
func (e *Engine) DeleteItem(ctx context.Context, itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, found := e.findLocked(itemID)
	if !found {
		return false
	}

	e.items = slices.DeleteFunc(e.items, func(i *domain.Item) bool {
		return i.ID == itemID
	})

	if err := e.store.DeleteItem(ctx, itemID); err != nil {
		e.logger.Error("failed to delete item record, in-memory state kept",
			"item_id", itemID, "error", err)
	}

	if domain.IsUploadRef(item.ImageRef) {
		if err := e.images.Delete(itemID); err != nil {
			e.logger.Warn("failed to delete cover image", "item_id", itemID, "error", err)
		}
	}

	e.logger.Info("item deleted", "item_id", itemID)
	return true
}

// applyForm copies the writable fields from a validated form onto an item.
// The same normalization the sanitizer applies to untrusted input runs here,
// so both write paths converge on identical invariants.
func applyForm(item *domain.Item, form *domain.ItemForm) {
	item.Title = strings.TrimSpace(form.Title)
	if item.Title == "" {
		item.Title = domain.DefaultTitle
	}
	item.Author = form.Author
	item.PublicationDate = form.PublicationDate
	item.Description = form.Description
	item.Notes = form.Notes
	item.Tags = domain.NormalizeTags(form.Tags)
	item.OriginalFileFormats = slices.Clone(form.OriginalFileFormats)
	item.OriginalName = form.OriginalName
	item.IsOriginalNameNA = form.IsOriginalNameNA
	item.EnforceOriginalNameCoupling()

	if domain.CalibredStatus(form.CalibredStatus).Valid() {
		item.CalibredStatus = domain.CalibredStatus(form.CalibredStatus)
	} else {
		item.CalibredStatus = domain.CalibredNo
	}
}

// applyImage resolves the submitted image reference onto the item. Inline
// data URIs are decoded into the image sub-store and replaced by the
// "upload:{id}" token; item records never carry image payloads.
func (e *Engine) applyImage(item *domain.Item, ref string) {
	switch {
	case domain.IsDataURI(ref):
		data, err := images.DecodeDataURI(ref)
		if err != nil {
			e.logger.Warn("discarding malformed cover upload", "item_id", item.ID, "error", err)
			e.clearUpload(item)
			return
		}
		if err := e.images.Save(item.ID, data); err != nil {
			e.logger.Error("failed to save cover upload", "item_id", item.ID, "error", err)
			e.clearUpload(item)
			return
		}
		item.ImageRef = domain.UploadRef(item.ID)
		if hash, err := images.ComputeBlurHash(data); err != nil {
			e.logger.Warn("failed to compute cover placeholder", "item_id", item.ID, "error", err)
			item.BlurHash = ""
		} else {
			item.BlurHash = hash
		}

	case domain.IsUploadRef(ref):
		// Keeping an existing upload. Nothing to do.

	default:
		// Remote URL or no image. Drop any stored upload.
		e.clearUpload(item)
		item.ImageRef = ref
		item.BlurHash = ""
	}
}

// clearUpload removes the stored image when the item previously carried one.
func (e *Engine) clearUpload(item *domain.Item) {
	if !domain.IsUploadRef(item.ImageRef) {
		return
	}
	if err := e.images.Delete(item.ID); err != nil {
		e.logger.Warn("failed to delete replaced cover image", "item_id", item.ID, "error", err)
	}
	item.ImageRef = ""
	item.BlurHash = ""
}
