package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"scrumboard/internal/board"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/service"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// credentialFlags are the username/password flags of login and register.
type credentialFlags struct {
	username string
	password string
}

func (f *credentialFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.username, "username", "", "")
	fs.StringVar(&f.username, "u", "", "")
	fs.StringVar(&f.password, "password", "", "")
	fs.StringVar(&f.password, "p", "", "")
}

func (f *credentialFlags) credential() (service.Credential, error) {
	if f.username == "" || f.password == "" {
		return service.Credential{}, fmt.Errorf("--username and --password required")
	}
	return service.Credential{Username: f.username, Password: f.password}, nil
}

// LoginCmd implements the login command.
type LoginCmd struct {
	flags credentialFlags
}

// SetCredential sets the username and password (for testing).
func (c *LoginCmd) SetCredential(username, password string) {
	c.flags = credentialFlags{username: username, password: password}
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store the access token" }
func (c *LoginCmd) Usage() string     { return "scrumboard login --username <u> --password <p>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags = credentialFlags{}
	c.flags.register(fs)
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	return submitCredentials(ctx, cfg, b, c.flags, false, out, errOut)
}

// RegisterCmd implements the register command: create the account, sign
// in with it and create its profile.
type RegisterCmd struct {
	flags credentialFlags
}

// SetCredential sets the username and password (for testing).
func (c *RegisterCmd) SetCredential(username, password string) {
	c.flags = credentialFlags{username: username, password: password}
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string     { return "scrumboard register --username <u> --password <p>" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.flags = credentialFlags{}
	c.flags.register(fs)
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, b *board.Board, args []string, out, errOut io.Writer) int {
	return submitCredentials(ctx, cfg, b, c.flags, true, out, errOut)
}

// submitCredentials is the shared implementation of login and register.
func submitCredentials(ctx context.Context, cfg *config.Config, b *board.Board, flags credentialFlags, register bool, out, errOut io.Writer) int {
	cred, err := flags.credential()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if register == b.Auth().IsLoginView() {
		b.ToggleMode()
	}
	if err := b.SubmitCredentials(ctx, cred); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
