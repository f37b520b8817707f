// Package posts implements search and pagination over the remote collection.
package posts

import (
	"strings"

	"taskflow/internal/service"
)

const (
	// PageSize is the number of posts per page.
	PageSize = 9

	// WindowSize is the maximum number of page buttons.
	WindowSize = 5
)

// Match reports whether the post's title or body contains q, ignoring case.
// The empty query matches everything.
func Match(p service.Post, q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Body), q)
}

// FilterPosts returns the posts matching q, in source order.
func FilterPosts(items []service.Post, q string) []service.Post {
	out := make([]service.Post, 0, len(items))
	for _, p := range items {
		if Match(p, q) {
			out = append(out, p)
		}
	}
	return out
}

// TotalPages returns ceil(n/size). Zero items means zero pages.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Clamp limits page to [1, total]. With no pages the requested page is kept,
// raised to 1 if needed.
func Clamp(page, total int) int {
	if page < 1 {
		page = 1
	}
	if total > 0 && page > total {
		page = total
	}
	return page
}

// Slice returns items[(page-1)*size : page*size], bounded to the input.
func Slice(items []service.Post, page, size int) []service.Post {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// PageWindow returns up to WindowSize consecutive page numbers around current.
//
//	total <= 5           -> 1..total
//	current <= 3         -> 1..5
//	current >= total-2   -> total-4..total
//	otherwise            -> current-2..current+2
func PageWindow(current, total int) []int {
	if total <= 0 {
		return nil
	}

	var first int
	switch {
	case total <= WindowSize:
		first = 1
	case current <= 3:
		first = 1
	case current >= total-2:
		first = total - WindowSize + 1
	default:
		first = current - 2
	}

	n := WindowSize
	if total < n {
		n = total
	}
	window := make([]int, n)
	for i := range window {
		window[i] = first + i
	}
	return window
}

// Page is one rendered page of a filtered collection.
type Page struct {
	Query      string         `json:"query"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int            `json:"total"`
	Matched    int            `json:"matched"`
	Items      []service.Post `json:"items"`
	Window     []int          `json:"window"`
}

// View filters items by q and renders the requested page. It is the stateless
// counterpart of Browser used by the HTTP surface.
func View(items []service.Post, q string, page int) Page {
	filtered := FilterPosts(items, q)
	total := TotalPages(len(filtered), PageSize)
	page = Clamp(page, total)
	slice := Slice(filtered, page, PageSize)
	if slice == nil {
		slice = []service.Post{}
	}
	window := PageWindow(page, total)
	if window == nil {
		window = []int{}
	}
	return Page{
		Query:      q,
		Page:       page,
		TotalPages: total,
		Total:      len(items),
		Matched:    len(filtered),
		Items:      slice,
		Window:     window,
	}
}
