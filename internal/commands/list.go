package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/output"
	"taskflow/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command. It is also the default command.
type ListCmd struct {
	filter string
}

// SetFilter sets the filter name (for testing).
func (c *ListCmd) SetFilter(f string) {
	c.filter = f
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "taskflow list [--filter all|active|completed]" }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.filter, "f", "all", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := service.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Numbers are positions in the whole collection so they stay valid
	// references for toggle and rm under any filter.
	shown := 0
	for i, task := range svc.Tasks().All() {
		if !filter.Matches(task) {
			continue
		}
		output.FormatTask(out, i+1, task)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
