package service

import "context"

// PostSource fetches the remote collection.
// Backends never leak transport types; failures are *FetchError.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]Post, error)
}

// TaskStore is the persisted task collection.
type TaskStore interface {
	// All returns the collection in insertion order.
	All() []Task

	// Find resolves a 1-based position, an id or a unique id prefix.
	Find(ref string) (Task, error)

	// Add appends a task. Returns ErrEmptyTitle for blank titles.
	Add(ctx context.Context, title string) (Task, error)

	// Toggle flips completion. Reports false if id is unknown.
	Toggle(ctx context.Context, id string) (Task, bool)

	// Delete removes a task. Reports false if id is unknown.
	Delete(ctx context.Context, id string) bool

	// Clear removes every task and the persisted slot.
	Clear(ctx context.Context)

	// Stats counts the collection in a single pass.
	Stats() Stats

	// Filter returns the subsequence matching f.
	Filter(f Filter) []Task

	// Degraded reports whether persistence was abandoned for this session.
	Degraded() bool
}

// PostBrowser is the fetch-once, filter-and-paginate view over a PostSource.
type PostBrowser interface {
	Start(ctx context.Context) <-chan error
	Fetch(ctx context.Context) error
	Retry(ctx context.Context) error
	State() FetchState
	Err() error

	// Status reads State and Err atomically.
	Status() (FetchState, error)

	SetQuery(q string)
	Query() string
	Items() []Post
	Filtered() []Post
	GoToPage(n int) int
	CurrentPage() int
	TotalPages() int
	CurrentSlice() []Post
	Window() []int
}

// Service bundles what commands need. Implementations own all mutable state.
type Service interface {
	Tasks() TaskStore
	Posts() PostBrowser
	Close() error
}
