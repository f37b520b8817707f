// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"taskflow/internal/service"
)

const (
	// ProgressWidth is the number of cells in the progress bar.
	ProgressWidth = 20

	// BodyPreviewLen is the maximum number of runes of a post body shown.
	BodyPreviewLen = 120

	// NoPostsMessage is printed when a search matches nothing.
	NoPostsMessage = "No posts found matching your search."
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces,
// checkbox, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	fmt.Fprintf(w, "%4d  [%s] %s\n", num, mark, normalizeTitle(task.Title))
}

// FormatStats prints the counters and the completion progress.
func FormatStats(w io.Writer, st service.Stats) {
	fmt.Fprintf(w, "Total:      %d\n", st.Total)
	fmt.Fprintf(w, "Active:     %d\n", st.Active)
	fmt.Fprintf(w, "Completed:  %d\n", st.Completed)
	if st.Total > 0 {
		pct := st.Percentage()
		fmt.Fprintf(w, "Progress:   %3d%% %s\n", pct, ProgressBar(pct, ProgressWidth))
	}
}

// ProgressBar renders pct (0-100) as "[####----]" with width cells.
func ProgressBar(pct, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := pct * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// FormatPost formats one post as a header line and an indented body preview.
func FormatPost(w io.Writer, post service.Post) {
	fmt.Fprintf(w, "#%-4d user %-3d %s\n", post.ID, post.UserID, normalizeTitle(post.Title))
	body := truncate(flatten(post.Body), BodyPreviewLen)
	if body != "" {
		fmt.Fprintf(w, "      %s\n", body)
	}
}

// FormatPageSummary prints "Showing X of Y posts" and, when there are
// results, "Page P of T".
func FormatPageSummary(w io.Writer, shown, matched, page, totalPages int) {
	fmt.Fprintf(w, "Showing %d of %d posts\n", shown, matched)
	if matched > 0 {
		fmt.Fprintf(w, "Page %d of %d\n", page, totalPages)
	}
}

// FormatPageWindow prints the navigation line, e.g. "< [1] 2 3 4 5 >".
// The arrows are replaced by spaces on the first and last page.
// Nothing is printed for a single page.
func FormatPageWindow(w io.Writer, window []int, current, totalPages int) {
	if totalPages <= 1 {
		return
	}
	parts := make([]string, 0, len(window)+2)
	if current > 1 {
		parts = append(parts, "<")
	} else {
		parts = append(parts, " ")
	}
	for _, n := range window {
		if n == current {
			parts = append(parts, "["+strconv.Itoa(n)+"]")
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	if current < totalPages {
		parts = append(parts, ">")
	} else {
		parts = append(parts, " ")
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, " "), " "))
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimRight(string(r[:n]), " ") + "..."
}
