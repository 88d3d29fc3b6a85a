package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/storefront/internal/app/model"
	"github.com/ikkim/storefront/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend persists entries in the local_storage_entries table.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (s *SQLBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	if err := checkNames(namespace, key); err != nil {
		return "", err
	}

	var entry model.StorageEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND storage_key = ?", namespace, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		logger.Error("Failed to find storage entry in database", err, map[string]interface{}{
			"namespace": namespace,
			"key":       key,
		})
		return "", fmt.Errorf("failed to read storage entry: %w", err)
	}
	return entry.Value, nil
}

func (s *SQLBackend) Set(ctx context.Context, namespace, key, value string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	entry := model.StorageEntry{Namespace: namespace, Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		logger.Error("Failed to upsert storage entry in database", err, map[string]interface{}{
			"namespace": namespace,
			"key":       key,
		})
		return fmt.Errorf("failed to write storage entry: %w", err)
	}
	return nil
}

func (s *SQLBackend) Delete(ctx context.Context, namespace, key string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("namespace = ? AND storage_key = ?", namespace, key).
		Delete(&model.StorageEntry{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete storage entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Close leaves the shared *gorm.DB open; internal/db owns its lifecycle.
func (s *SQLBackend) Close() error {
	return nil
}
