package posts

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"taskflow/internal/logger"
	"taskflow/internal/metrics"
	"taskflow/internal/service"
)

// ErrNotRetriable is returned by Retry unless the last fetch failed.
var ErrNotRetriable = errors.New("nothing to retry: last fetch did not fail")

// ErrSuperseded is delivered to a fetch whose result was discarded because a
// newer fetch was started in the meantime.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// Browser is a fetch-once, filter-and-paginate view over a PostSource.
//
// State moves Idle -> Loading -> {Loaded, Failed}; Failed goes back to Loading
// only through Retry. When fetches overlap the latest request wins: results of
// older requests are dropped.
type Browser struct {
	src service.PostSource
	log *slog.Logger

	mu       sync.Mutex
	state    service.FetchState
	err      error
	gen      uint64
	items    []service.Post
	filtered []service.Post
	query    string
	page     int
}

// NewBrowser creates an idle browser over src.
func NewBrowser(src service.PostSource) *Browser {
	return &Browser{
		src:   src,
		log:   logger.With("component", "posts"),
		state: service.Idle,
		page:  1,
	}
}

// Start begins a fetch and returns a channel that receives its outcome once.
func (b *Browser) Start(ctx context.Context) <-chan error {
	b.mu.Lock()
	gen := b.begin()
	b.mu.Unlock()
	return b.launch(ctx, gen)
}

// Fetch starts a fetch and waits for it.
func (b *Browser) Fetch(ctx context.Context) error {
	return <-b.Start(ctx)
}

// Retry re-issues the fetch after a failure. The state check and the move to
// Loading happen under one lock, so of several concurrent retries only the
// first reaches the source.
func (b *Browser) Retry(ctx context.Context) error {
	b.mu.Lock()
	if b.state != service.Failed {
		b.mu.Unlock()
		return ErrNotRetriable
	}
	gen := b.begin()
	b.mu.Unlock()
	return <-b.launch(ctx, gen)
}

// begin moves to Loading under a new generation. Callers hold b.mu.
func (b *Browser) begin() uint64 {
	b.gen++
	b.state = service.Loading
	b.err = nil
	return b.gen
}

func (b *Browser) launch(ctx context.Context, gen uint64) <-chan error {
	b.log.Debug("fetch started", "generation", gen)

	done := make(chan error, 1)
	go func() {
		defer close(done)
		items, err := b.src.FetchPosts(ctx)
		done <- b.finish(gen, items, err)
	}()
	return done
}

func (b *Browser) finish(gen uint64, items []service.Post, err error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		metrics.PostFetches.WithLabelValues("stale").Inc()
		b.log.Debug("dropping stale fetch result", "generation", gen, "current", b.gen)
		return ErrSuperseded
	}

	if err != nil {
		if !service.IsFetchError(err) {
			err = &service.FetchError{Err: err}
		}
		b.state = service.Failed
		b.err = err
		b.items = nil
		b.filtered = nil
		b.query = ""
		b.page = 1
		metrics.PostFetches.WithLabelValues("error").Inc()
		b.log.Warn("fetch failed", "error", err)
		return err
	}

	b.state = service.Loaded
	b.items = items
	b.query = ""
	b.filtered = FilterPosts(items, "")
	b.page = 1
	metrics.PostFetches.WithLabelValues("ok").Inc()
	b.log.Debug("fetch finished", "posts", len(items))
	return nil
}

// State returns the fetch state.
func (b *Browser) State() service.FetchState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Status returns the fetch state together with its error in one snapshot.
// The error is non-nil exactly when the state is Failed.
func (b *Browser) Status() (service.FetchState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state, b.err
}

// Err returns the failure of the last fetch, or nil.
func (b *Browser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// SetQuery changes the search query and always resets to page 1.
func (b *Browser) SetQuery(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query = q
	b.filtered = FilterPosts(b.items, q)
	b.page = 1
}

// Query returns the current search query.
func (b *Browser) Query() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// Items returns every fetched post.
func (b *Browser) Items() []service.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]service.Post(nil), b.items...)
}

// Filtered returns the posts matching the current query.
func (b *Browser) Filtered() []service.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]service.Post(nil), b.filtered...)
}

// GoToPage moves to page n, clamped to the available pages, and returns the
// resulting page.
func (b *Browser) GoToPage(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = Clamp(n, TotalPages(len(b.filtered), PageSize))
	return b.page
}

// CurrentPage returns the 1-based current page.
func (b *Browser) CurrentPage() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// TotalPages returns the number of pages of the filtered view.
func (b *Browser) TotalPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return TotalPages(len(b.filtered), PageSize)
}

// CurrentSlice returns the posts on the current page.
func (b *Browser) CurrentSlice() []service.Post {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]service.Post(nil), Slice(b.filtered, b.page, PageSize)...)
}

// Window returns the page numbers to offer as navigation.
func (b *Browser) Window() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return PageWindow(b.page, TotalPages(len(b.filtered), PageSize))
}

var _ service.PostBrowser = (*Browser)(nil)
