package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ikkim/storefront/pkg/logger"
)

// FileBackend stores each value in <dir>/<namespace>/<key>.json.
type FileBackend struct {
	dir string
	mu  sync.Mutex
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	logger.Info("File storage backend ready", map[string]interface{}{
		"dir": dir,
	})
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) path(namespace, key string) string {
	return filepath.Join(f.dir, namespace, key+".json")
}

func (f *FileBackend) Get(_ context.Context, namespace, key string) (string, error) {
	if err := checkNames(namespace, key); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.path(namespace, key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}
	return string(data), nil
}

// Set writes through a temp file and rename so readers never see a torn value.
func (f *FileBackend) Set(_ context.Context, namespace, key, value string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.dir, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create namespace directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(namespace, key)); err != nil {
		return fmt.Errorf("failed to replace %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (f *FileBackend) Delete(_ context.Context, namespace, key string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(namespace, key))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (f *FileBackend) Close() error {
	return nil
}
