package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"taskflow/internal/logger"
	"taskflow/internal/metrics"
)

// DefaultTimeout bounds a single backend call made by a Slot.
const DefaultTimeout = 2 * time.Second

// Read decodes the JSON value stored under key.
// An absent slot yields def and a nil error. Any other failure yields def and
// a *StorageError.
func Read[T any](ctx context.Context, kv KV, key string, def T) (T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return def, &StorageError{Op: "read", Key: key, Err: err}
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def, &StorageError{Op: "parse", Key: key, Err: err}
	}
	return v, nil
}

// Write encodes v as JSON and stores it under key.
func Write[T any](ctx context.Context, kv KV, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	if err := kv.Set(ctx, key, string(data)); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

// Slot is one named value in a KV with a fallback default.
//
// Slot never returns errors to its caller. A corrupt value loads as the
// default. The first backend I/O failure switches the slot to degraded mode:
// from then on the session runs in memory only and later writes are skipped.
type Slot[T any] struct {
	kv      KV
	key     string
	def     T
	timeout time.Duration
	log     *slog.Logger

	mu       sync.Mutex
	degraded bool
	lastErr  error
}

// NewSlot creates a slot for key with the given default.
func NewSlot[T any](kv KV, key string, def T) *Slot[T] {
	return &Slot[T]{
		kv:      kv,
		key:     key,
		def:     def,
		timeout: DefaultTimeout,
		log:     logger.With("component", "storage", "key", key),
	}
}

// Load returns the stored value, or the default when absent or unparsable.
func (s *Slot[T]) Load(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return s.def
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	v, err := Read(ctx, s.kv, s.key, s.def)
	if err != nil {
		var se *StorageError
		if errors.As(err, &se) && se.Op == "read" {
			s.degrade(err)
		} else {
			s.record(err)
		}
		return s.def
	}
	return v
}

// Save writes v. Failures are logged and swallowed.
func (s *Slot[T]) Save(ctx context.Context, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := Write(ctx, s.kv, s.key, v); err != nil {
		s.degrade(err)
	}
}

// Clear removes the slot and returns the default value.
func (s *Slot[T]) Clear(ctx context.Context) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.degraded {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()

		if err := s.kv.Delete(ctx, s.key); err != nil {
			s.degrade(&StorageError{Op: "delete", Key: s.key, Err: err})
		}
	}
	return s.def
}

// Degraded reports whether the slot stopped persisting.
func (s *Slot[T]) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// LastError returns the most recent recovered failure, if any.
func (s *Slot[T]) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Slot[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Slot[T]) record(err error) {
	s.lastErr = err
	op := "unknown"
	var se *StorageError
	if errors.As(err, &se) {
		op = se.Op
	}
	metrics.StorageFailures.WithLabelValues(op).Inc()
	s.log.Warn("using default value", "error", err)
}

// degrade must be called with s.mu held.
func (s *Slot[T]) degrade(err error) {
	s.record(err)
	s.degraded = true
	s.log.Warn("persistence disabled for this session")
}
