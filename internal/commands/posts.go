package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/logger"
	"taskflow/internal/output"
	"taskflow/internal/service"
)

func init() {
	Register(&PostsCmd{})
}

// PostsCmd implements the posts command: fetch, search and show one page.
type PostsCmd struct {
	query   string
	page    int
	retries int
}

// SetQuery sets the search query (for testing).
func (c *PostsCmd) SetQuery(q string) { c.query = q }

// SetPage sets the page number (for testing).
func (c *PostsCmd) SetPage(page int) { c.page = page }

// SetRetries sets the number of explicit retries after a failed fetch (for testing).
func (c *PostsCmd) SetRetries(n int) { c.retries = n }

func (c *PostsCmd) Name() string       { return "posts" }
func (c *PostsCmd) Aliases() []string  { return []string{"browse"} }
func (c *PostsCmd) Synopsis() string   { return "Search and page through remote posts" }
func (c *PostsCmd) Usage() string      { return "taskflow posts [--query <text>] [--page <n>] [--retries <n>]" }
func (c *PostsCmd) NeedsService() bool { return true }

func (c *PostsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.query, "query", "", "")
	fs.StringVar(&c.query, "q", "", "")
	fs.IntVar(&c.page, "page", 1, "")
	fs.IntVar(&c.retries, "retries", 0, "")
}

func (c *PostsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.page < 1 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}
	if c.retries < 0 {
		fmt.Fprintf(errOut, "error: invalid retries: %d\n", c.retries)
		return exitcode.UserError
	}

	// Positional words are joined into the query, like add does for titles
	if len(args) > 0 {
		if c.query != "" {
			fmt.Fprintln(errOut, "error: cannot use both --query and positional query")
			return exitcode.UserError
		}
		c.query = joinArgs(args)
	}

	browser := svc.Posts()
	err := browser.Fetch(ctx)
	for attempt := 1; err != nil && attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			break
		}
		logger.Info("retrying fetch", "attempt", attempt, "error", err)
		err = browser.Retry(ctx)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "error: interrupted")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.FetchError
	}

	browser.SetQuery(c.query)
	browser.GoToPage(c.page)

	slice := browser.CurrentSlice()
	matched := len(browser.Filtered())
	page, total := browser.CurrentPage(), browser.TotalPages()

	output.FormatPageSummary(out, len(slice), matched, page, total)
	if matched == 0 {
		fmt.Fprintln(out, output.NoPostsMessage)
		return exitcode.Success
	}

	fmt.Fprintln(out)
	for _, p := range slice {
		output.FormatPost(out, p)
	}

	if total > 1 {
		fmt.Fprintln(out)
		output.FormatPageWindow(out, browser.Window(), page, total)
	}
	return exitcode.Success
}
