package catalog

import (
	"context"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
)

// SetCover stores raw image bytes as the item's uploaded cover, replacing
// any previous image reference. Returns false for unknown items.
func (e *Engine) SetCover(ctx context.Context, itemID string, data []byte) (*domain.Item, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.findLocked(itemID)
	if !ok {
		return nil, false
	}

	if err := e.images.Save(item.ID, data); err != nil {
		e.logger.Error("failed to save cover upload", "item_id", item.ID, "error", err)
		return item.Clone(), true
	}

	item.ImageRef = domain.UploadRef(item.ID)
	if hash, err := images.ComputeBlurHash(data); err != nil {
		e.logger.Warn("failed to compute cover placeholder", "item_id", item.ID, "error", err)
		item.BlurHash = ""
	} else {
		item.BlurHash = hash
	}

	item.Touch()
	e.persistItem(ctx, item)

	return item.Clone(), true
}

// RemoveCover drops the item's image reference and deletes the uploaded
// payload when one exists. Returns false for unknown items.
func (e *Engine) RemoveCover(ctx context.Context, itemID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	item, ok := e.findLocked(itemID)
	if !ok {
		return false
	}

	e.clearUpload(item)
	item.ImageRef = ""
	item.BlurHash = ""
	item.Touch()
	e.persistItem(ctx, item)

	return true
}
