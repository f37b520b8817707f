package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/server"
	"taskflow/internal/service"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd implements the serve command.
type ServeCmd struct {
	addr string
}

// SetAddr sets the listen address (for testing).
func (c *ServeCmd) SetAddr(addr string) {
	c.addr = addr
}

func (c *ServeCmd) Name() string       { return "serve" }
func (c *ServeCmd) Aliases() []string  { return nil }
func (c *ServeCmd) Synopsis() string   { return "Serve tasks and posts over HTTP" }
func (c *ServeCmd) Usage() string      { return "taskflow serve [--addr host:port]" }
func (c *ServeCmd) NeedsService() bool { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	addr := c.addr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "listening on %s\n", addr)
	}
	if err := server.Run(ctx, svc, addr, Version); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
