package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound         = errors.New("storage key not found")
	ErrInvalidNamespace = errors.New("invalid storage namespace")
	ErrInvalidKey       = errors.New("invalid storage key")
)

// Backend persists string values under (namespace, key). A namespace is one
// visitor's private local storage area.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Close() error
}

// LocalStorage is a namespace-bound view over a Backend with the familiar
// getItem/setItem/removeItem surface.
type LocalStorage struct {
	backend   Backend
	namespace string
}

func NewLocalStorage(backend Backend, namespace string) (*LocalStorage, error) {
	if err := validateName(namespace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNamespace, err)
	}
	return &LocalStorage{backend: backend, namespace: namespace}, nil
}

func (l *LocalStorage) Namespace() string {
	return l.namespace
}

// GetItem reports ok=false when the key has never been written.
func (l *LocalStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := l.backend.Get(ctx, l.namespace, key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (l *LocalStorage) SetItem(ctx context.Context, key, value string) error {
	return l.backend.Set(ctx, l.namespace, key, value)
}

func (l *LocalStorage) RemoveItem(ctx context.Context, key string) error {
	err := l.backend.Delete(ctx, l.namespace, key)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// validateName keeps namespaces and keys safe to embed in file paths,
// redis keys and object keys.
func validateName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}
	if len(name) > 128 {
		return errors.New("name too long")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\:*?"<>|`) {
		return fmt.Errorf("name %q contains reserved characters", name)
	}
	return nil
}

func checkNames(namespace, key string) error {
	if err := validateName(namespace); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidNamespace, err)
	}
	if err := validateName(key); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return nil
}
