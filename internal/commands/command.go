// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a stored, unexpired token.
	// Commands like help, version, login, register and logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, settings).
	// b is the application context; help and version ignore it.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	var alert *board.AlertError
	switch {
	case errors.Is(err, board.ErrSessionInvalid):
		fmt.Fprintln(errOut, "error: session invalid (run: scrumboard login)")
		return exitcode.AuthError
	case errors.As(err, &alert):
		fmt.Fprintf(errOut, "alert: %v\n", alert)
		return exitcode.BackendError
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// parseTaskID parses the single positional task id.
func parseTaskID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("task id required")
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// loadTask loads the task list and returns task id, printing errors.
func loadTask(ctx context.Context, b *board.Board, args []string, errOut io.Writer) (service.Task, int) {
	id, err := parseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	if err := b.LoadTasks(ctx); err != nil {
		return service.Task{}, reportError(errOut, err)
	}
	task, ok := b.Tasks().Task(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
