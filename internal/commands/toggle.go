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
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string       { return "toggle" }
func (c *ToggleCmd) Aliases() []string  { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string   { return "Flip a task between active and completed" }
func (c *ToggleCmd) Usage() string      { return "taskflow toggle <ref>" }
func (c *ToggleCmd) NeedsService() bool { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(svc.Tasks(), args, errOut)
	if code != exitcode.Success {
		return code
	}

	updated, ok := svc.Tasks().Toggle(ctx, task.ID)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", task.ID)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		if updated.Completed {
			fmt.Fprintln(out, "ok: completed")
		} else {
			fmt.Fprintln(out, "ok: active")
		}
	}
	return exitcode.Success
}
