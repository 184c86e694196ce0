package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
)

func init() {
	Register(&UpdateCmd{})
}

// UpdateCmd implements the update command. Fields not given keep their
// current value.
type UpdateCmd struct {
	flags taskFlags
}

func (c *UpdateCmd) Name() string      { return "update" }
func (c *UpdateCmd) Aliases() []string { return []string{"edit"} }
func (c *UpdateCmd) Synopsis() string  { return "Change a task" }
func (c *UpdateCmd) Usage() string {
	return "scrumboard update <id> [--task ..] [--description ..] [--criteria ..] [--status n] [--category n] [--estimate n] [--responsible n]"
}
func (c *UpdateCmd) NeedsAuth() bool { return true }

func (c *UpdateCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags = taskFlags{}
	c.flags.register(fs)
}

func (c *UpdateCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	task, code := loadTask(ctx, b, args, errOut)
	if code != exitcode.Success {
		return code
	}

	draft := task.Draft()
	if err := c.flags.apply(&draft); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	b.SelectTask(task)
	b.EditTask(draft)
	if _, err := b.SubmitDraft(ctx); err != nil {
		if errors.Is(err, board.ErrDraftIncomplete) {
			b.CancelEdit()
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
