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
	Register(&StatsCmd{})
}

// StatsCmd implements the stats command.
type StatsCmd struct{}

func (c *StatsCmd) Name() string       { return "stats" }
func (c *StatsCmd) Aliases() []string  { return nil }
func (c *StatsCmd) Synopsis() string   { return "Print task counts and progress" }
func (c *StatsCmd) Usage() string      { return "taskflow stats" }
func (c *StatsCmd) NeedsService() bool { return true }

func (c *StatsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	output.FormatStats(out, svc.Tasks().Stats())
	return exitcode.Success
}
