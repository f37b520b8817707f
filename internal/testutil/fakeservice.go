// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskflow/internal/posts"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

// FakePostSource is an in-memory service.PostSource for testing.
type FakePostSource struct {
	mu    sync.Mutex
	posts []service.Post
	calls int

	// Errs is consumed one per call; a nil entry or an exhausted slice means success.
	Errs []error

	// Gate, when set, blocks FetchPosts until a value is received or ctx ends.
	Gate chan struct{}
}

// NewFakePostSource creates a source serving the given posts.
func NewFakePostSource(p []service.Post) *FakePostSource {
	return &FakePostSource{posts: p}
}

// SetPosts replaces the posts served by later calls.
func (f *FakePostSource) SetPosts(p []service.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = p
}

// Calls returns the number of FetchPosts calls.
func (f *FakePostSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FetchPosts implements service.PostSource.
func (f *FakePostSource) FetchPosts(ctx context.Context) ([]service.Post, error) {
	f.mu.Lock()
	f.calls++
	var err error
	if len(f.Errs) > 0 {
		err = f.Errs[0]
		f.Errs = f.Errs[1:]
	}
	out := append([]service.Post(nil), f.posts...)
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &service.FetchError{Err: ctx.Err()}
		}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MakePosts builds n posts with ids 1..n and titles "post N".
func MakePosts(n int) []service.Post {
	out := make([]service.Post, n)
	for i := range out {
		out[i] = service.Post{
			UserID: i/10 + 1,
			ID:     i + 1,
			Title:  fmt.Sprintf("post %d", i+1),
			Body:   fmt.Sprintf("body of post %d", i+1),
		}
	}
	return out
}

// FakeService is a service.Service backed by a FaultyKV and a FakePostSource.
type FakeService struct {
	KV     *FaultyKV
	Source *FakePostSource

	store   *tasks.Store
	browser *posts.Browser
}

// NewFakeService creates a FakeService with deterministic task ids (t1, t2, ...)
// and creation times.
func NewFakeService(p []service.Post) *FakeService {
	kv := NewFaultyKV()
	src := NewFakePostSource(p)

	n := 0
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store := tasks.Open(context.Background(), kv,
		tasks.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("t%d", n)
		}),
		tasks.WithClock(func() time.Time {
			return base.Add(time.Duration(n) * time.Hour)
		}),
	)

	return &FakeService{
		KV:      kv,
		Source:  src,
		store:   store,
		browser: posts.NewBrowser(src),
	}
}

// AddTask adds a task and optionally marks it completed.
func (f *FakeService) AddTask(title string, completed bool) service.Task {
	ctx := context.Background()
	t, err := f.store.Add(ctx, title)
	if err != nil {
		panic(err)
	}
	if completed {
		t, _ = f.store.Toggle(ctx, t.ID)
	}
	return t
}

// Tasks implements service.Service.
func (f *FakeService) Tasks() service.TaskStore { return f.store }

// Store returns the concrete task store.
func (f *FakeService) Store() *tasks.Store { return f.store }

// Posts implements service.Service.
func (f *FakeService) Posts() service.PostBrowser { return f.browser }

// Close implements service.Service.
func (f *FakeService) Close() error { return nil }
