// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"duties/internal/backend/googletasks"
	"duties/internal/backend/rest"
	"duties/internal/commands"
	"duties/internal/config"
	"duties/internal/exitcode"
	"duties/internal/service"
)

// ErrNotLoggedIn is returned by the default factory when the googletasks
// backend has no credentials.
var ErrNotLoggedIn = errors.New("not logged in (run: duties login)")

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error)

// DefaultFactory builds the backend named by cfg.Backend.
func DefaultFactory(ctx context.Context, cfg *config.Config, log *slog.Logger) (service.Service, error) {
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("oauth_client.json not found in %s: %w", cfg.Dir, ErrNotLoggedIn)
		}
		if !cfg.HasToken() {
			return nil, ErrNotLoggedIn
		}
		return googletasks.New(ctx, cfg)
	default:
		return rest.New(cfg.APIURL, rest.WithTimeout(cfg.Timeout), rest.WithLogger(log))
	}
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service
// factory. A nil factory selects DefaultFactory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
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

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	apiURL    string
	backend   string
	quiet     bool
	debug     bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configDir, "config", "", "")
	fs.StringVar(&c.apiURL, "api-url", "", "")
	fs.StringVar(&c.backend, "backend", "", "")
	fs.BoolVar(&c.quiet, "quiet", false, "")
	fs.BoolVar(&c.debug, "debug", false, "")
}

// apply loads the config and layers the flags over it.
func (c *commonFlags) apply() (*config.Config, error) {
	cfg, err := config.Load(c.configDir)
	if err != nil {
		return nil, err
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	if c.backend != "" {
		if err := cfg.SetBackend(c.backend); err != nil {
			return nil, err
		}
	}
	cfg.Quiet = c.quiet
	cfg.Debug = c.debug
	return cfg, nil
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", describeFlagError(err))
		return exitcode.UserError
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := common.apply()
	if err != nil {
		fmt.Fprintf(errOut, "error: config: %s\n", err)
		return exitcode.AuthError
	}

	var svc service.Service
	if cmd.NeedsBackend() {
		svc, err = d.factory(ctx, cfg, cfg.Logger(errOut))
		if err != nil {
			if errors.Is(err, ErrNotLoggedIn) || service.IsAuthError(err) {
				fmt.Fprintf(errOut, "error: auth error: %s\n", err)
				return exitcode.AuthError
			}
			// Backend construction only fails on configuration
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.AuthError
		}
	}

	return cmd.Run(ctx, cfg, svc, positionalArgs, out, errOut)
}

// describeFlagError rewrites flag package errors in the CLI's wording.
func describeFlagError(err error) string {
	errStr := err.Error()

	switch {
	case strings.HasPrefix(errStr, "flag needs an argument:"):
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + flagName
	case strings.HasPrefix(errStr, "flag provided but not defined:"):
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		return "unknown flag: " + flagName
	}
	return errStr
}
