package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/export"
	"taskflow/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	output string
	filter string
}

// SetFormat sets the export format (for testing).
func (c *ExportCmd) SetFormat(f string) { c.format = f }

// SetOutput sets the output path (for testing).
func (c *ExportCmd) SetOutput(path string) { c.output = path }

func (c *ExportCmd) Name() string       { return "export" }
func (c *ExportCmd) Aliases() []string  { return nil }
func (c *ExportCmd) Synopsis() string   { return "Write tasks as json, csv or pdf" }
func (c *ExportCmd) Usage() string      { return "taskflow export [--format json|csv|pdf] [--filter <f>] [--output <file>]" }
func (c *ExportCmd) NeedsService() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
	fs.StringVar(&c.filter, "filter", "all", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	format := c.format
	if format == "" {
		format = "json"
	}
	filter, err := service.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	data, err := export.New().Export(svc.Tasks().Filter(filter), format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v (want %s)\n", err, strings.Join(export.Formats, ", "))
		return exitcode.UserError
	}

	if c.output == "" || c.output == "-" {
		if _, err := out.Write(data); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	if err := os.WriteFile(c.output, data, 0644); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %s\n", c.output)
	}
	return exitcode.Success
}
