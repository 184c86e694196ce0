package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/service"
)

func init() {
	Register(&AvatarCmd{})
}

// AvatarCmd implements the avatar command.
type AvatarCmd struct{}

func (c *AvatarCmd) Name() string      { return "avatar" }
func (c *AvatarCmd) Aliases() []string { return nil }
func (c *AvatarCmd) Synopsis() string  { return "Upload a profile image" }
func (c *AvatarCmd) Usage() string     { return "scrumboard avatar <image-file>" }
func (c *AvatarCmd) NeedsAuth() bool   { return true }

func (c *AvatarCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AvatarCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: image file required")
		return exitcode.UserError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := b.LoadOwnProfile(ctx); err != nil {
		return reportError(errOut, err)
	}
	b.LoadProfiles(ctx)

	img := &service.Image{Name: filepath.Base(args[0]), Data: data}
	profile, err := b.UpdateMyAvatar(ctx, img)
	if err != nil {
		if errors.Is(err, board.ErrNoProfile) {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if profile.Img != nil {
			fmt.Fprintf(out, "ok: %s\n", *profile.Img)
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
