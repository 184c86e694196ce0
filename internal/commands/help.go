package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "scrumboard help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range DefaultRegistry.All() {
		line := fmt.Sprintf("  %-12s %s", cmd.Name(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			line += " (alias: " + strings.Join(aliases, ", ") + ")"
		}
		fmt.Fprintln(out, line)
	}
	return exitcode.Success
}

const helpText = `Usage:
  scrumboard                                       List tasks
  scrumboard list [common flags] [--sort <key>] [--desc]
  scrumboard show [common flags] [--render] <id>
  scrumboard add [common flags] --task <title> --description <text> --criteria <text>
                 [--status <1|2|3>] [--category <id>] [--estimate <days>] [--responsible <user-id>]
  scrumboard update [common flags] <id> [same flags as add]
  scrumboard rm [common flags] <id>
  scrumboard categories [common flags]
  scrumboard addcategory [common flags] <label...>
  scrumboard users [common flags]
  scrumboard whoami [common flags]
  scrumboard avatar [common flags] <image-file>
  scrumboard login [common flags] --username <u> --password <p>
  scrumboard register [common flags] --username <u> --password <p>
  scrumboard logout [common flags]
  scrumboard help
  scrumboard version [--verbose]

Sort keys: id, task, status, category, estimate, responsible, owner

Common flags:
  --config <dir>   Override config directory
  --api-url <url>  Override the API base URL
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
