package testutil

import (
	"context"
	"sync"

	"taskflow/internal/storage"
)

// FaultyKV wraps an in-memory KV and fails operations on demand.
type FaultyKV struct {
	inner *storage.Memory

	mu        sync.Mutex
	getErr    error
	setErr    error
	deleteErr error
}

// NewFaultyKV creates an empty FaultyKV that succeeds until told otherwise.
func NewFaultyKV() *FaultyKV {
	return &FaultyKV{inner: storage.NewMemory()}
}

// FailGet makes Get return err. A nil err restores normal behavior.
func (f *FaultyKV) FailGet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

// FailSet makes Set return err. A nil err restores normal behavior.
func (f *FaultyKV) FailSet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// FailDelete makes Delete return err. A nil err restores normal behavior.
func (f *FaultyKV) FailDelete(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteErr = err
}

// Get implements storage.KV.
func (f *FaultyKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return "", err
	}
	return f.inner.Get(ctx, key)
}

// Set implements storage.KV.
func (f *FaultyKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	err := f.setErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.Set(ctx, key, value)
}

// Delete implements storage.KV.
func (f *FaultyKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.inner.Delete(ctx, key)
}

// Raw returns the stored value for key, bypassing injected failures.
func (f *FaultyKV) Raw(key string) (string, bool) {
	v, err := f.inner.Get(context.Background(), key)
	if err != nil {
		return "", false
	}
	return v, true
}

var _ storage.KV = (*FaultyKV)(nil)
