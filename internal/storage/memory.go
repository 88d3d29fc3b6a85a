package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps everything in process memory; state is lost on restart.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]map[string]string)}
}

func (m *MemoryBackend) Get(_ context.Context, namespace, key string) (string, error) {
	if err := checkNames(namespace, key); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[namespace][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *MemoryBackend) Set(_ context.Context, namespace, key, value string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		ns = make(map[string]string)
		m.data[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, namespace, key string) error {
	if err := checkNames(namespace, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ns, ok := m.data[namespace]
	if !ok {
		return ErrNotFound
	}
	if _, ok := ns[key]; !ok {
		return ErrNotFound
	}
	delete(ns, key)
	if len(ns) == 0 {
		delete(m.data, namespace)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
