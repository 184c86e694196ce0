package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	render bool
}

// SetRender sets the render flag (for testing).
func (c *ShowCmd) SetRender(render bool) {
	c.render = render
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show every field of a task" }
func (c *ShowCmd) Usage() string     { return "scrumboard show [--render] <id>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.render, "render", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	task, code := loadTask(ctx, b, args, errOut)
	if code != exitcode.Success {
		return code
	}

	b.SelectTask(task)
	if err := output.FormatTaskDetail(out, b.Tasks().SelectedTask(), c.render); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
