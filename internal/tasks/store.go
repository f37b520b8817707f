// Package tasks implements the persisted task collection.
package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskflow/internal/metrics"
	"taskflow/internal/service"
	"taskflow/internal/storage"
)

// SlotKey is the storage key holding the serialized collection.
const SlotKey = "tasks"

// Store is the in-memory task collection mirrored to a storage slot.
// Every mutation writes the whole collection back.
type Store struct {
	mu    sync.RWMutex
	slot  *storage.Slot[[]service.Task]
	tasks []service.Task

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation-time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the task id source.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Open loads the collection from kv. An absent or corrupt slot opens empty.
func Open(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		slot:  storage.NewSlot[[]service.Task](kv, SlotKey, nil),
		now:   time.Now,
		newID: newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = s.slot.Load(ctx)
	s.observe()
	return s
}

// newID returns a time-ordered UUID (v7), falling back to v4.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// All implements service.TaskStore.
func (s *Store) All() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Add implements service.TaskStore.
func (s *Store) Add(ctx context.Context, title string) (service.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, service.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := service.Task{
		ID:        s.newID(),
		Title:     title,
		Completed: false,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	s.tasks = append(s.tasks, t)
	s.persist(ctx, "add")
	return t, nil
}

// Toggle implements service.TaskStore.
func (s *Store) Toggle(ctx context.Context, id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return service.Task{}, false
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	s.persist(ctx, "toggle")
	return t, true
}

// Delete implements service.TaskStore.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	s.persist(ctx, "delete")
	return true
}

// Clear implements service.TaskStore.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = s.slot.Clear(ctx)
	metrics.TaskMutations.WithLabelValues("clear").Inc()
	s.observe()
}

// Stats implements service.TaskStore.
func (s *Store) Stats() service.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats()
}

func (s *Store) stats() service.Stats {
	var st service.Stats
	for _, t := range s.tasks {
		st.Total++
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
	}
	return st
}

// Filter implements service.TaskStore.
func (s *Store) Filter(f service.Filter) []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]service.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Degraded implements service.TaskStore.
func (s *Store) Degraded() bool {
	return s.slot.Degraded()
}

// Find resolves a task reference: a 1-based position in the collection, a
// full id, or an unambiguous id prefix.
func (s *Store) Find(ref string) (service.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.Task{}, service.ErrTaskNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(s.tasks) {
			return service.Task{}, fmt.Errorf("task number out of range: %d", n)
		}
		return s.tasks[n-1], nil
	}

	if i := s.index(ref); i >= 0 {
		return s.tasks[i], nil
	}

	var match *service.Task
	for i := range s.tasks {
		if strings.HasPrefix(s.tasks[i].ID, ref) {
			if match != nil {
				return service.Task{}, fmt.Errorf("ambiguous task reference: %s", ref)
			}
			match = &s.tasks[i]
		}
	}
	if match == nil {
		return service.Task{}, fmt.Errorf("%w: %s", service.ErrTaskNotFound, ref)
	}
	return *match, nil
}

func (s *Store) index(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context, op string) {
	s.slot.Save(ctx, s.tasks)
	metrics.TaskMutations.WithLabelValues(op).Inc()
	s.observe()
}

func (s *Store) observe() {
	st := s.stats()
	metrics.TasksGauge.WithLabelValues("active").Set(float64(st.Active))
	metrics.TasksGauge.WithLabelValues("completed").Set(float64(st.Completed))
}

var _ service.TaskStore = (*Store)(nil)
