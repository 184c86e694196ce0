package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"scrumboard/internal/backend/restapi"
	"scrumboard/internal/board"
	"scrumboard/internal/commands"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/logging"
	"scrumboard/internal/session"
)

// BoardFactory creates the application context from config.
// Used to inject the backend during dispatch.
type BoardFactory func(ctx context.Context, cfg *config.Config) (*board.Board, error)

// RemoteBoard returns a factory for a board talking to cfg.APIURL, with the
// token persisted under cfg.Dir and logs written to logOut.
func RemoteBoard(logOut io.Writer) BoardFactory {
	return func(ctx context.Context, cfg *config.Config) (*board.Board, error) {
		log := logging.New(logOut, cfg.LogLevel, cfg.Debug)
		tokens := session.NewFile(cfg.TokenPath())
		return board.New(restapi.New(cfg, tokens, log), tokens, log), nil
	}
}

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BoardFactory
}

// NewDispatcher creates a new dispatcher with the given registry and board factory.
func NewDispatcher(registry *commands.Registry, factory BoardFactory) *Dispatcher {
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

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var apiURL string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.StringVar(&apiURL, "api-url", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return flagError(errOut, err)
	}

	// Check if first positional arg starts with - (should have been parsed as flag)
	positionalArgs := fs.Args()
	if len(positionalArgs) > 0 && strings.HasPrefix(positionalArgs[0], "-") {
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", positionalArgs[0])
		return exitcode.UserError
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	b, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return exitcode.BackendError
	}

	// Auth pre-flight: a missing or expired token fails before any request
	if cmd.NeedsAuth() {
		if !b.LoggedIn() {
			fmt.Fprintln(errOut, "error: not logged in (run: scrumboard login)")
			return exitcode.AuthError
		}
		// Tokens that do not decode are left for the API to judge
		if claims, err := b.Claims(); err == nil && claims.Expired(time.Now()) {
			fmt.Fprintln(errOut, "error: session expired (run: scrumboard login)")
			return exitcode.AuthError
		}
	}

	return cmd.Run(ctx, cfg, b, positionalArgs, out, errOut)
}

// flagError reports a flag parsing error.
func flagError(errOut io.Writer, err error) int {
	errStr := err.Error()

	// Check for missing flag value
	if strings.Contains(errStr, "needs a value") || strings.Contains(errStr, "flag needs an argument") {
		parts := strings.Split(errStr, ":")
		flagPart := strings.TrimSpace(parts[len(parts)-1])
		fmt.Fprintf(errOut, "error: flag needs an argument: %s\n", flagPart)
		return exitcode.UserError
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		flagName := strings.TrimPrefix(errStr, "flag provided but not defined: ")
		fmt.Fprintf(errOut, "error: unknown flag: %s\n", flagName)
		return exitcode.UserError
	}

	fmt.Fprintf(errOut, "error: %s\n", errStr)
	return exitcode.UserError
}
