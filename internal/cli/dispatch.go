// Package cli parses the command line and dispatches to registered commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskflow/internal/app"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/exitcode"
	"taskflow/internal/logger"
	"taskflow/internal/service"
)

// DefaultCommand runs when no command is given.
const DefaultCommand = "list"

// ServiceFactory creates a Service from config.
// Used to inject the storage backend and post source during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// AppFactory builds the production service from config.
func AppFactory(ctx context.Context, cfg *config.Config) (service.Service, error) {
	return app.New(ctx, cfg)
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
// A nil factory means AppFactory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	if factory == nil {
		factory = AppFactory
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, DefaultCommand, nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.UserError
	}

	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") && positionalArgs[0] != "-" {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger.Init(cfg.EffectiveLogLevel(), cfg.LogJSON)
	logger.Debug("dispatch", "command", cmd.Name(), "config", cfg.Dir, "store", cfg.Store)

	var svc service.Service
	if cmd.NeedsService() {
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: storage error: %s\n", err)
			return exitcode.StorageError
		}
		defer func() {
			if cerr := svc.Close(); cerr != nil {
				logger.Warn("close service", "error", cerr)
			}
		}()
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// flagErrorMessage rewrites flag package errors into the CLI's wording.
func flagErrorMessage(err error) string {
	errStr := err.Error()

	if strings.HasPrefix(errStr, "flag needs an argument:") {
		name := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + name
	}

	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
