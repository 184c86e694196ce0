package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	flags taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "scrumboard add --task <title> --description <text> --criteria <text> [--status n] [--category n] [--estimate n] [--responsible n]"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags = taskFlags{}
	c.flags.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	// Positional words form the title when --task is absent
	if !c.flags.task.set && len(args) > 0 {
		c.flags.task.Set(strings.Join(args, " "))
	} else if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	draft := service.TaskDraft{Status: service.StatusNotStarted}
	if err := c.flags.apply(&draft); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b.EditTask(draft)
	task, err := b.SubmitDraft(ctx)
	if err != nil {
		if errors.Is(err, board.ErrDraftIncomplete) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "ok: %d\n", task.ID)
	}
	return exitcode.Success
}
