package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "taskflow rm <ref>" }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(svc.Tasks(), args, errOut)
	if code != exitcode.Success {
		return code
	}

	if !svc.Tasks().Delete(ctx, task.ID) {
		fmt.Fprintf(errOut, "error: task not found: %s\n", task.ID)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
