package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd implements the version command.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "scrumboard version [--verbose]" }
func (c *VersionCmd) NeedsAuth() bool   { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	c.verbose = false
	fs.BoolVar(&c.verbose, "verbose", false, "Print API and config details")
}

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "scrumboard %s\n", Version)
	if c.verbose {
		fmt.Fprintf(out, "api:    %s\n", cfg.APIURL)
		fmt.Fprintf(out, "config: %s\n", cfg.Dir)
		fmt.Fprintf(out, "go:     %s\n", runtime.Version())
	}
	return exitcode.Success
}
