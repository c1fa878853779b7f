// Package di provides dependency injection configuration for the ShelfStash server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/shelfstash/shelfstash-server/internal/backup"
	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/config"
	"github.com/shelfstash/shelfstash-server/internal/di/providers"
	"github.com/shelfstash/shelfstash-server/internal/importer"
	"github.com/shelfstash/shelfstash-server/internal/logger"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCoverStorage)

	// Catalog services
	do.Provide(injector, providers.ProvideEngine)
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvideImporter)

	// Workers
	do.Provide(injector, providers.ProvideImportWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*catalog.Engine](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*backup.Service](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*importer.Importer](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.WatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
