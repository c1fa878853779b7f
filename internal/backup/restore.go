package backup

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shelfstash/shelfstash-server/internal/domain"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
	"github.com/shelfstash/shelfstash-server/internal/sanitize"
)

// Restore replaces the whole catalog with the contents of a JSON backup file.
//
// A safety backup (full scope) is always written before anything destructive
// happens, and every validation step runs before the store is cleared. Once
// the clear has happened a write failure leaves the safety backup as the
// recovery path.
func (s *Service) Restore(ctx context.Context, path string) (*RestoreResult, error) {
	s.logger.Info("starting restore", "path", path)

	if !strings.EqualFold(filepath.Ext(path), backupExt) {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, filepath.Base(path))
	}

	data, err := os.ReadFile(path) //#nosec G304 -- Restore path is user supplied by design
	if err != nil {
		return nil, fmt.Errorf("read restore file: %w", err)
	}

	// Safety net before any destructive step.
	safety, err := s.Create(ctx, Options{Scope: ScopeBoth})
	if err != nil {
		return nil, fmt.Errorf("create safety backup: %w", err)
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("restore file is not valid JSON: %w", err)
	}

	records, ok := decoded.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	// Sanitize everything up front. Nothing destructive has happened yet, so
	// any failure here leaves the catalog untouched.
	items := make([]*domain.Item, 0, len(records))
	for _, record := range records {
		item := sanitize.Sanitize(record)
		s.internalizeCover(item)
		items = append(items, item)
	}

	// Point of no return.
	if err := s.store.ClearItems(ctx); err != nil {
		return nil, fmt.Errorf("clear catalog (safety backup at %s): %w", safety.Path, err)
	}
	for _, item := range items {
		if err := s.store.SetItem(ctx, item); err != nil {
			return nil, fmt.Errorf("write item %s (safety backup at %s): %w", item.ID, safety.Path, err)
		}
	}

	s.engine.ReplaceAll(ctx, items)

	s.logger.Info("restore complete", "restored", len(items), "safety_backup", safety.Path)

	return &RestoreResult{
		Restored:         len(items),
		SafetyBackupPath: safety.Path,
	}, nil
}

// internalizeCover moves an inline data-URI cover from a restore record into
// the image sub-store. Item records never persist image payloads; a restore
// file that carries one gets the payload extracted and the reference swapped
// for the upload token. Malformed payloads are dropped with a warning.
func (s *Service) internalizeCover(item *domain.Item) {
	if !domain.IsDataURI(item.ImageRef) {
		return
	}

	data, err := images.DecodeDataURI(item.ImageRef)
	if err != nil {
		s.logger.Warn("dropping malformed cover in restore file", "item_id", item.ID, "error", err)
		item.ImageRef = ""
		item.BlurHash = ""
		return
	}
	if err := s.images.Save(item.ID, data); err != nil {
		s.logger.Warn("failed to store cover from restore file", "item_id", item.ID, "error", err)
		item.ImageRef = ""
		item.BlurHash = ""
		return
	}

	item.ImageRef = domain.UploadRef(item.ID)
	if hash, err := images.ComputeBlurHash(data); err == nil {
		item.BlurHash = hash
	} else {
		item.BlurHash = ""
	}
}
