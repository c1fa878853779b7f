package backup

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// Create exports every stored item into a pretty-printed JSON array on disk,
// streaming item by item so even a large catalog never sits in memory twice.
// The export reads the store, not the engine, so what lands in the file is
// exactly what would load after a restart.
func (s *Service) Create(ctx context.Context, opts Options) (*Result, error) {
	if !opts.Scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, opts.Scope)
	}

	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	start := time.Now()
	outputPath := s.nextBackupPath(opts.Scope)

	s.logger.Info("creating backup", "output", outputPath, "scope", opts.Scope)

	keys, err := s.store.ListItemKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create backup file: %w", err)
	}
	defer file.Close()

	enc := jsontext.NewEncoder(file, jsontext.WithIndent("  "))
	if err := enc.WriteToken(jsontext.BeginArray); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	count := 0
	for _, id := range keys {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		item, err := s.store.GetItem(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("read item %s: %w", id, err)
		}

		applyScope(item, opts.Scope)

		if err := json.MarshalEncode(enc, item); err != nil {
			return nil, fmt.Errorf("write item %s: %w", id, err)
		}
		count++
	}

	if err := enc.WriteToken(jsontext.EndArray); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}
	if err := file.Sync(); err != nil {
		return nil, fmt.Errorf("sync backup file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat backup file: %w", err)
	}

	result := &Result{
		Path:     outputPath,
		Size:     info.Size(),
		Items:    count,
		Scope:    opts.Scope,
		Duration: time.Since(start),
	}

	s.logger.Info("backup complete",
		"path", result.Path,
		"items", result.Items,
		"size", result.Size,
		"duration", result.Duration)

	return result, nil
}

// nextBackupPath builds the next free
// shelfstash_backup_{date}_{scope}_{n}.json path, advancing the per-session
// counter past any names already on disk.
func (s *Service) nextBackupPath(scope Scope) string {
	date := time.Now().Format("2006-01-02")
	for {
		n := s.counter.Add(1)
		name := fmt.Sprintf("shelfstash_backup_%s_%s_%d%s", date, scope, n, backupExt)
		path := filepath.Join(s.backupDir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}

// applyScope blanks the image references the scope excludes. Items come from
// fresh store reads, so mutating here never touches engine state.
func applyScope(item *domain.Item, scope Scope) {
	switch scope {
	case ScopeURLOnly:
		if domain.IsUploadRef(item.ImageRef) {
			item.ImageRef = ""
			item.BlurHash = ""
		}
	case ScopeUploadOnly:
		if item.ImageRef != "" && !domain.IsUploadRef(item.ImageRef) {
			item.ImageRef = ""
		}
	case ScopeBoth:
		// Keep everything.
	}
}
