package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `scrumboard` (no args) and `scrumboard list`.
type ListCmd struct {
	sortKey string
	desc    bool
}

// SetSort sets the sort key and direction (for testing).
func (c *ListCmd) SetSort(key string, desc bool) {
	c.sortKey, c.desc = key, desc
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "scrumboard list [--sort <key>] [--desc]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.sortKey, "sort", "", "")
	fs.BoolVar(&c.desc, "desc", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Without --sort, tasks keep API order
	if c.sortKey != "" && !slices.Contains(output.SortKeys, c.sortKey) {
		fmt.Fprintf(errOut, "error: unknown sort key: %s (valid: %s)\n", c.sortKey, strings.Join(output.SortKeys, ", "))
		return exitcode.UserError
	}

	if err := b.LoadTasks(ctx); err != nil {
		return reportError(errOut, err)
	}

	tasks := b.Tasks().Tasks()
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if c.sortKey != "" {
		if err := output.SortTasks(tasks, c.sortKey, c.desc); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	} else if c.desc {
		slices.Reverse(tasks)
	}

	for _, task := range tasks {
		output.FormatTask(out, task)
	}
	return exitcode.Success
}
