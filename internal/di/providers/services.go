package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/shelfstash/shelfstash-server/internal/backup"
	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/config"
	"github.com/shelfstash/shelfstash-server/internal/importer"
	"github.com/shelfstash/shelfstash-server/internal/logger"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
)

// ProvideEngine builds the catalog engine and loads it from the store.
// The instance identity record is initialized here too, so every later
// consumer can rely on it existing.
func ProvideEngine(i do.Injector) (*catalog.Engine, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	covers := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	if _, err := storeHandle.InitializeInstance(ctx, cfg.Server.Name); err != nil {
		return nil, err
	}

	engine := catalog.New(storeHandle.Store, covers, log.Logger, cfg.Catalog.PageSize)
	if err := engine.Load(ctx); err != nil {
		return nil, err
	}

	log.Info("Catalog loaded", "items", engine.Len())
	return engine, nil
}

// ProvideBackupService provides the backup/restore controller.
func ProvideBackupService(i do.Injector) (*backup.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	engine := do.MustInvoke[*catalog.Engine](i)
	covers := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewService(storeHandle.Store, engine, covers, cfg.Data.BackupPath, log.Logger), nil
}

// ProvideImporter provides the bulk import reconciler.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	engine := do.MustInvoke[*catalog.Engine](i)
	log := do.MustInvoke[*logger.Logger](i)

	return importer.New(engine, log.Logger), nil
}
