package commands_test

import (
	"errors"
	"slices"
	"testing"

	"scrumboard/internal/board"
	"scrumboard/internal/commands"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/logging"
	"scrumboard/internal/session"
	"scrumboard/internal/testutil"
)

func loggedOutBoard(svc *testutil.FakeService) (*board.Board, *session.Memory) {
	tokens := session.NewMemory()
	return board.New(svc, tokens, logging.Discard()), tokens
}

func TestLoginCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret")
	b, tokens := loggedOutBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, b, []string{"--username", "alice", "--password", "secret"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if got, _ := tokens.Get(); got != "access-alice" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestLoginCommand_ShortFlags(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret")
	b, _ := loggedOutBoard(svc)

	_, _, code := runCommand(t, &commands.LoginCmd{}, b, []string{"-u", "alice", "-p", "secret"}, true)
	if code != exitcode.Success {
		t.Errorf("expected success, got %d", code)
	}
}

func TestLoginCommand_MissingCredentials(t *testing.T) {
	b, _ := loggedOutBoard(testutil.NewFakeService())

	stdout, stderr, code := runCommand(t, &commands.LoginCmd{}, b, []string{"--username", "alice"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: --username and --password required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestLoginCommand_BadPassword(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "secret")
	b, tokens := loggedOutBoard(svc)

	_, stderr, code := runCommand(t, &commands.LoginCmd{}, b, []string{"--username", "alice", "--password", "nope"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr == "" {
		t.Error("expected an error message")
	}
	if _, ok := tokens.Get(); ok {
		t.Error("failed login must not store a token")
	}
}

func TestRegisterCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	b, tokens := loggedOutBoard(svc)

	cmd := &commands.RegisterCmd{}
	stdout, stderr, code := runCommand(t, cmd, b, []string{"--username", "bob", "--password", "pw"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	want := []string{"Register", "Authenticate", "CreateOwnProfile"}
	if got := svc.Calls(); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if _, ok := tokens.Get(); !ok {
		t.Error("expected token after registration")
	}
}

func TestRegisterCommand_Failure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.RegisterErr = errors.New("400 Bad Request: username taken")
	b, _ := loggedOutBoard(svc)

	_, stderr, code := runCommand(t, &commands.RegisterCmd{}, b, []string{"--username", "bob", "--password", "pw"}, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: register failed: 400 Bad Request: username taken\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if got := svc.Calls(); !slices.Equal(got, []string{"Register"}) {
		t.Errorf("chain should stop after register, got %v", got)
	}
}

func TestLogoutCommand(t *testing.T) {
	b, _ := newBoard(testutil.NewFakeService())

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, b, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected success, got %d", code)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok\\n', got %q", stdout)
	}
	if b.LoggedIn() {
		t.Error("token should be removed")
	}

	stdout, _, _ = runCommand(t, &commands.LogoutCmd{}, b, nil, false)
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

func TestLogoutCommand_Quiet(t *testing.T) {
	b, _ := loggedOutBoard(testutil.NewFakeService())

	stdout, _, code := runCommand(t, &commands.LogoutCmd{}, b, nil, true)
	if code != exitcode.Success || stdout != "" {
		t.Errorf("expected silent success, got code %d stdout %q", code, stdout)
	}
}
