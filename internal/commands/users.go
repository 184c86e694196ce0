package commands

import (
	"context"
	"flag"
	"io"
	"time"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/output"
)

func init() {
	Register(&UsersCmd{})
	Register(&WhoamiCmd{})
}

// UsersCmd implements the users command.
type UsersCmd struct{}

func (c *UsersCmd) Name() string      { return "users" }
func (c *UsersCmd) Aliases() []string { return nil }
func (c *UsersCmd) Synopsis() string  { return "List users and their avatars" }
func (c *UsersCmd) Usage() string     { return "scrumboard users" }
func (c *UsersCmd) NeedsAuth() bool   { return true }

func (c *UsersCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UsersCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	if err := b.LoadUsers(ctx); err != nil {
		return reportError(errOut, err)
	}
	// Avatars are optional
	b.LoadProfiles(ctx)

	profiles := b.Auth().Profiles()
	for _, u := range b.Tasks().Users() {
		output.FormatUser(out, u, profiles)
	}
	return exitcode.Success
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Show the logged-in user" }
func (c *WhoamiCmd) Usage() string     { return "scrumboard whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	if err := b.LoadOwnProfile(ctx); err != nil {
		return reportError(errOut, err)
	}
	b.LoadProfiles(ctx)

	var expires time.Time
	if claims, err := b.Claims(); err == nil {
		expires = claims.ExpiresAt
	}

	me := b.Auth().LoginUser()
	if profile, ok := b.Auth().MyProfile(); ok {
		output.FormatIdentity(out, me, &profile, expires)
	} else {
		output.FormatIdentity(out, me, nil, expires)
	}
	return exitcode.Success
}
