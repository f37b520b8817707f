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
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
type ClearCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *ClearCmd) SetForce(force bool) {
	c.force = force
}

func (c *ClearCmd) Name() string       { return "clear" }
func (c *ClearCmd) Aliases() []string  { return nil }
func (c *ClearCmd) Synopsis() string   { return "Delete all tasks" }
func (c *ClearCmd) Usage() string      { return "taskflow clear [--force]" }
func (c *ClearCmd) NeedsService() bool { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Refuse to drop a non-empty list unless --force is given
	if n := svc.Tasks().Stats().Total; n > 0 && !c.force {
		fmt.Fprintf(errOut, "error: refusing to delete %d tasks (use --force)\n", n)
		return exitcode.UserError
	}

	svc.Tasks().Clear(ctx)

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
