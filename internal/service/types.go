// Package service defines the domain types and the interfaces commands and the
// HTTP server operate on.
package service

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Task represents a single to-do item.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is an item of the remote collection. Fields mirror the endpoint's JSON.
type Post struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Stats summarizes a task collection.
type Stats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// Percentage returns round(100*completed/total), or 0 for an empty collection.
func (s Stats) Percentage() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Completed) * 100 / float64(s.Total)))
}

// Filter selects a subsequence of the task collection.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name (case-insensitive, trimmed).
// The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	default:
		return "", fmt.Errorf("invalid filter: %s", s)
	}
}

// Matches reports whether t belongs to the filtered view.
func (f Filter) Matches(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// FetchState is the lifecycle of the remote collection.
type FetchState int

const (
	Idle FetchState = iota
	Loading
	Loaded
	Failed
)

func (s FetchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("FetchState(%d)", int(s))
	}
}
