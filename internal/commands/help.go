package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "taskflow help" }
func (c *HelpCmd) NeedsService() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintf(out, "  %-66s %s\n", "taskflow", "List all tasks")
	for _, cmd := range DefaultRegistry.All() {
		synopsis := cmd.Synopsis()
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			synopsis += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintf(out, "  %-66s %s\n", cmd.Usage(), synopsis)
	}
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `
A <ref> is a task number as shown by list, a task id, or a unique id prefix.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment (also read from <config dir>/.env and ./.env):
  TASKFLOW_STORE            file (default), redis or memory
  TASKFLOW_REDIS_ADDR       host:port of the redis server
  TASKFLOW_REDIS_PASSWORD   redis password
  TASKFLOW_REDIS_DB         redis database index
  TASKFLOW_POSTS_URL        posts endpoint
  TASKFLOW_API_TOKEN        bearer token sent to the posts endpoint
  TASKFLOW_LOG_LEVEL        debug, info, warn (default) or error
  TASKFLOW_LOG_FORMAT       text (default) or json
  TASKFLOW_LISTEN           listen address for serve (default :8080)
`
