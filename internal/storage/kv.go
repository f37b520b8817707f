// Package storage provides named persisted slots over a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned by KV.Get when the slot is absent.
var ErrNotFound = errors.New("slot not found")

// KV is a durable string key-value store.
type KV interface {
	// Get returns the raw value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// StorageError is a read, parse or write failure on a slot.
type StorageError struct {
	Op  string // "read", "parse", "write", "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Memory is an in-process KV. The zero value is not usable; call NewMemory.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.m[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m[key] = value
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.m, key)
	return nil
}
