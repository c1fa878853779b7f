package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shelfstash/shelfstash-server/internal/domain"
)

// GetInstance retrieves the singleton installation record.
// Returns ErrNotFound if no instance exists.
func (s *Store) GetInstance(_ context.Context) (*domain.Instance, error) {
	var instance domain.Instance
	if err := s.get(instanceKey, &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}

// UpdateInstance updates the installation record.
func (s *Store) UpdateInstance(ctx context.Context, instance *domain.Instance) error {
	if _, err := s.GetInstance(ctx); err != nil {
		return err
	}

	instance.UpdatedAt = time.Now()
	return s.set(instanceKey, instance)
}

// InitializeInstance ensures an installation record exists, creating one
// with a fresh identity on first startup. Returns the record.
func (s *Store) InitializeInstance(ctx context.Context, name string) (*domain.Instance, error) {
	instance, err := s.GetInstance(ctx)
	if err == nil {
		if s.logger != nil {
			s.logger.Info("Installation record found", "id", instance.ID)
		}
		return instance, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to initialize instance: %w", err)
	}

	now := time.Now()
	instance = &domain.Instance{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.set(instanceKey, instance); err != nil {
		return nil, fmt.Errorf("failed to create instance: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Installation record created", "id", instance.ID, "name", name)
	}

	return instance, nil
}
