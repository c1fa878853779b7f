package backup

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
	"github.com/shelfstash/shelfstash-server/internal/store"
)

const backupExt = ".json"

// Service manages backup creation, listing, and restore.
type Service struct {
	store     *store.Store
	engine    *catalog.Engine
	images    *images.Storage
	backupDir string
	logger    *slog.Logger

	// counter numbers backups within one process lifetime, so same-day
	// exports with the same scope get distinct filenames.
	counter atomic.Int64
}

// NewService creates a backup Service.
func NewService(s *store.Store, engine *catalog.Engine, imgs *images.Storage, backupDir string, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		engine:    engine,
		images:    imgs,
		backupDir: backupDir,
		logger:    logger,
	}
}

// List returns all backup files on disk, newest first.
func (s *Service) List() ([]Info, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, Info{
			ID:        strings.TrimSuffix(entry.Name(), backupExt),
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get returns a backup by ID.
func (s *Service) Get(id string) (*Info, error) {
	path := s.GetPath(id)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	return &Info{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

// Delete removes a backup file.
func (s *Service) Delete(id string) error {
	path := s.GetPath(id)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return ErrBackupNotFound
		}
		return err
	}

	return os.Remove(path)
}

// GetPath returns the file path for a backup ID.
func (s *Service) GetPath(id string) string {
	return filepath.Join(s.backupDir, id+backupExt)
}
