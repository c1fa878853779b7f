package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfstash/shelfstash-server/internal/config"
	"github.com/shelfstash/shelfstash-server/internal/importer"
	"github.com/shelfstash/shelfstash-server/internal/logger"
	"github.com/shelfstash/shelfstash-server/internal/watcher"
)

// WatcherHandle wraps the drop-folder watcher with lifecycle management.
// The watcher is optional; Watcher is nil when no import directory is set.
type WatcherHandle struct {
	Watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *WatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideImportWatcher starts the import drop-folder watcher when an import
// directory is configured.
func ProvideImportWatcher(i do.Injector) (*WatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Import.WatchPath == "" {
		log.Info("Import folder watching disabled")
		return &WatcherHandle{}, nil
	}

	imp := do.MustInvoke[*importer.Importer](i)

	w, err := watcher.New(cfg.Import.WatchPath, imp, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Import watcher stopped", "error", err)
		}
	}()

	return &WatcherHandle{Watcher: w, cancel: cancel}, nil
}
