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
	"taskflow/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "taskflow add <title...>" }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	title := joinArgs(args)
	task, err := svc.Tasks().Add(ctx, title)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			// Blank titles are dropped without a message.
			logger.Debug("ignoring task", "reason", err)
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	logger.Debug("task added", "id", task.ID)
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
