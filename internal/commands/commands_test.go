package commands_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"scrumboard/internal/board"
	"scrumboard/internal/commands"
	"scrumboard/internal/config"
	"scrumboard/internal/exitcode"
	"scrumboard/internal/logging"
	"scrumboard/internal/service"
	"scrumboard/internal/session"
	"scrumboard/internal/testutil"
)

// newBoard returns a logged-in board over a FakeService.
func newBoard(svc *testutil.FakeService) (*board.Board, *session.Memory) {
	tokens := session.NewMemory()
	tokens.Set("access-token")
	return board.New(svc, tokens, logging.Discard()), tokens
}

// runCommand is a helper to run a command against a board. argv is parsed
// with the command's own flags.
func runCommand(t *testing.T, cmd commands.Command, b *board.Board, argv []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("parse %v: %v", argv, err)
	}

	var outBuf, errBuf bytes.Buffer
	cfg := config.New(t.TempDir())
	cfg.Quiet = quiet

	code = cmd.Run(context.Background(), cfg, b, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seedTasks(svc *testutil.FakeService) {
	svc.AddTask(service.Task{ID: 3, Task: "Write docs", Description: "README", Criteria: "reviewed", Status: "1", StatusName: "Not started", CategoryItem: "Docs", Estimate: 2, ResponsibleUsername: "alice"})
	svc.AddTask(service.Task{ID: 1, Task: "Fix login", Description: "bug", Criteria: "no 500", Status: "2", StatusName: "On going", Estimate: 5})
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	cmd := &commands.VersionCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "scrumboard 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	cmd := &commands.HelpCmd{}

	stdout, stderr, code := runCommand(t, cmd, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "scrumboard add", "--api-url", "Sort keys:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestRegistryHasEveryCommand(t *testing.T) {
	for _, name := range []string{
		"list", "ls", "show", "add", "create", "update", "rm", "categories", "addcategory",
		"users", "whoami", "avatar", "login", "register", "logout", "help", "version",
	} {
		if _, ok := commands.DefaultRegistry.Find(name); !ok {
			t.Errorf("command %q not registered", name)
		}
	}
}

// Tests for list command
func TestListCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, b, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   3  Not started  Write docs  [Docs]  @alice\n   1  On going     Fix login\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Sorted(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.ListCmd{}, b, []string{"--sort", "estimate", "--desc"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if !strings.HasPrefix(stdout, "   1  ") {
		t.Errorf("expected the 5-day task first, got %q", stdout)
	}
}

func TestListCommand_UnknownSortKey(t *testing.T) {
	svc := testutil.NewFakeService()
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.ListCmd{}, b, []string{"--sort", "priority"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: unknown sort key: priority") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Error("no request expected for a bad sort key")
	}
}

func TestListCommand_Empty(t *testing.T) {
	for _, quiet := range []bool{false, true} {
		b, _ := newBoard(testutil.NewFakeService())
		stdout, _, code := runCommand(t, &commands.ListCmd{}, b, nil, quiet)

		if code != exitcode.Success {
			t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
		}
		want := "no tasks found\n"
		if quiet {
			want = ""
		}
		if stdout != want {
			t.Errorf("quiet=%v: expected %q, got %q", quiet, want, stdout)
		}
	}
}

func TestListCommand_SessionInvalid(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FetchTasksErr = errors.New("401 Unauthorized")
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, b, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: session invalid (run: scrumboard login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for show command
func TestShowCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.ShowCmd{}, b, []string{"3"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	for _, want := range []string{"#3 Write docs", "Description  README", "Estimate     2 days", "Status       Not started"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("missing %q in:\n%s", want, stdout)
		}
	}
	if b.Tasks().SelectedTask().ID != 3 {
		t.Error("shown task should be selected")
	}
}

func TestShowCommand_Errors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"missing id", nil, "error: task id required\n"},
		{"bad id", []string{"abc"}, "error: invalid task id: abc\n"},
		{"zero id", []string{"0"}, "error: invalid task id: 0\n"},
		{"extra arg", []string{"1", "2"}, "error: unexpected argument: 2\n"},
		{"unknown id", []string{"99"}, "error: task not found: 99\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := testutil.NewFakeService()
			seedTasks(svc)
			b, _ := newBoard(svc)

			_, stderr, code := runCommand(t, &commands.ShowCmd{}, b, tt.args, false)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr)
			}
		})
	}
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := testutil.NewFakeService()
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, b, []string{
		"--task", "Login API", "--description", "JWT", "--criteria", "tests pass",
		"--category", "4", "--estimate", "3", "--responsible", "2",
	}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}

	tasks := svc.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Task != "Login API" || got.Status != service.StatusNotStarted || got.Category != 4 || got.Estimate != 3 || got.Responsible != 2 {
		t.Errorf("unexpected task %+v", got)
	}
	if stdout != "ok: "+strconv.Itoa(got.ID)+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if b.Tasks().Tasks()[0].ID != got.ID {
		t.Error("created task should be first in the store")
	}
}

func TestAddCommand_TitleFromArgs(t *testing.T) {
	svc := testutil.NewFakeService()
	b, _ := newBoard(svc)

	_, _, code := runCommand(t, &commands.AddCmd{}, b, []string{"--description", "d", "--criteria", "c", "Buy", "groceries"}, true)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if svc.Tasks()[0].Task != "Buy groceries" {
		t.Errorf("expected title from args, got %q", svc.Tasks()[0].Task)
	}
}

func TestAddCommand_Incomplete(t *testing.T) {
	svc := testutil.NewFakeService()
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, b, []string{"--task", "only title"}, false)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: task, description and criteria are required\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if len(svc.Calls()) != 0 {
		t.Errorf("no request expected, got %v", svc.Calls())
	}
}

func TestAddCommand_InvalidFields(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{"status", []string{"--status", "7"}, "error: invalid status: 7"},
		{"estimate", []string{"--estimate", "1001"}, "error: estimate out of range: 1001"},
		{"negative estimate", []string{"--estimate", "-1"}, "error: estimate out of range: -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newBoard(testutil.NewFakeService())
			argv := append([]string{"--task", "t", "--description", "d", "--criteria", "c"}, tt.argv...)

			_, stderr, code := runCommand(t, &commands.AddCmd{}, b, argv, false)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if !strings.HasPrefix(stderr, tt.want) {
				t.Errorf("expected %q prefix, got %q", tt.want, stderr)
			}
		})
	}
}

func TestAddCommand_BackendFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.CreateTaskErr = errors.New("403 Forbidden")
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.AddCmd{}, b, []string{"--task", "t", "--description", "d", "--criteria", "c"}, false)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: session invalid (run: scrumboard login)\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for update command
func TestUpdateCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.UpdateCmd{}, b, []string{"--status", "3", "1"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	tasks := svc.Tasks()
	if tasks[1].ID != 1 || tasks[1].Status != service.StatusDone {
		t.Errorf("status not updated: %+v", tasks[1])
	}
	// Unset flags keep their values
	if tasks[1].Task != "Fix login" || tasks[1].Estimate != 5 {
		t.Errorf("untouched fields changed: %+v", tasks[1])
	}
	if got := b.Tasks().Tasks(); got[1].ID != 1 {
		t.Errorf("update must keep position, got %+v", got)
	}
	if b.Tasks().Editing() || b.Tasks().HasSelection() {
		t.Error("draft and selection should be reset")
	}
}

func TestUpdateCommand_ClearingRequiredField(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.UpdateCmd{}, b, []string{"--criteria", "", "1"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.UserError, code, stderr)
	}
	if b.Tasks().Editing() {
		t.Error("rejected draft should be discarded")
	}
}

// Tests for rm command
func TestRmCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.RmCmd{}, b, []string{"3"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if tasks := svc.Tasks(); len(tasks) != 1 || tasks[0].ID != 1 {
		t.Errorf("expected only task 1 left, got %+v", tasks)
	}
}

func TestRmCommand_NotFound(t *testing.T) {
	svc := testutil.NewFakeService()
	seedTasks(svc)
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.RmCmd{}, b, []string{"42"}, false)
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 42\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	for _, call := range svc.Calls() {
		if call == "DeleteTask" {
			t.Error("delete should not be sent for an unknown id")
		}
	}
}

// Tests for categories commands
func TestCategoriesCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddCategory("Backend")
	svc.AddCategory("Frontend")
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.CategoriesCmd{}, b, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "   1  Backend\n   2  Frontend\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestCategoriesCommand_Failure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FetchCategoriesErr = errors.New("connection refused")
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.CategoriesCmd{}, b, nil, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: fetch categories: connection refused\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestAddCategoryCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.AddCategoryCmd{}, b, []string{"Release", "prep"}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	cats := svc.Categories()
	if len(cats) != 1 || cats[0].Item != "Release prep" {
		t.Errorf("unexpected categories %+v", cats)
	}
	if stdout != "ok: "+strconv.Itoa(cats[0].ID)+"\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}

	_, stderr, code := runCommand(t, &commands.AddCategoryCmd{}, b, nil, false)
	if code != exitcode.UserError || stderr != "error: category label required\n" {
		t.Errorf("empty label: code %d, stderr %q", code, stderr)
	}
}

// Tests for users and whoami commands
func TestUsersCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	alice := svc.AddUser("alice", "x")
	svc.AddUser("bob", "y")
	img := "/media/alice.png"
	svc.AddProfile(alice.ID, &img)
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.UsersCmd{}, b, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	if stdout != "   1  alice  /media/alice.png\n   2  bob\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestUsersCommand_ProfilesUnavailable(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddUser("alice", "x")
	svc.FetchProfilesErr = errors.New("500")
	b, _ := newBoard(svc)

	stdout, stderr, code := runCommand(t, &commands.UsersCmd{}, b, nil, false)
	if code != exitcode.Success || stderr != "" {
		t.Errorf("profile failure should be silent: code %d stderr %q", code, stderr)
	}
	if stdout != "   1  alice\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestWhoamiCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	me := svc.AddUser("alice", "x")
	svc.SetMe(me)
	svc.AddProfile(me.ID, nil)
	b, _ := newBoard(svc)

	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, b, nil, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d", code)
	}
	for _, want := range []string{"User         alice", "Avatar       (none)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("missing %q in:\n%s", want, stdout)
		}
	}
}

func TestWhoamiCommand_Alert(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.FetchOwnProfileErr = errors.New("502 Bad Gateway")
	b, _ := newBoard(svc)

	_, stderr, code := runCommand(t, &commands.WhoamiCmd{}, b, nil, false)
	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "alert: fetch own profile: 502 Bad Gateway\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

// Tests for avatar command
func TestAvatarCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	me := svc.AddUser("alice", "x")
	svc.SetMe(me)
	svc.AddProfile(me.ID, nil)
	b, _ := newBoard(svc)

	path := filepath.Join(t.TempDir(), "me.png")
	if err := os.WriteFile(path, []byte("PNG"), 0600); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, code := runCommand(t, &commands.AvatarCmd{}, b, []string{path}, false)
	if code != exitcode.Success {
		t.Fatalf("expected success, got %d (%s)", code, stderr)
	}
	if stdout != "ok: /media/me.png\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestAvatarCommand_Errors(t *testing.T) {
	b, _ := newBoard(testutil.NewFakeService())

	_, stderr, code := runCommand(t, &commands.AvatarCmd{}, b, nil, false)
	if code != exitcode.UserError || stderr != "error: image file required\n" {
		t.Errorf("missing file: code %d stderr %q", code, stderr)
	}

	_, _, code = runCommand(t, &commands.AvatarCmd{}, b, []string{filepath.Join(t.TempDir(), "nope.png")}, false)
	if code != exitcode.UserError {
		t.Errorf("unreadable file: expected exit code %d, got %d", exitcode.UserError, code)
	}

	path := filepath.Join(t.TempDir(), "me.png")
	os.WriteFile(path, []byte("PNG"), 0600)
	_, stderr, code = runCommand(t, &commands.AvatarCmd{}, b, []string{path}, false)
	if code != exitcode.UserError || stderr != "error: no profile for the current user\n" {
		t.Errorf("no profile: code %d stderr %q", code, stderr)
	}
}

func TestHelpCommand_ListsRegisteredCommands(t *testing.T) {
	stdout, _, _ := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if !strings.Contains(stdout, "\nCommands:\n") {
		t.Fatalf("missing command summary:\n%s", stdout)
	}
	for _, want := range []string{
		"  add          Create a task (alias: create)\n",
		"  version      Print version\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(stdout, "  create       ") {
		t.Error("aliases should not be listed as commands")
	}
}

func TestVersionCommand_Verbose(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.VersionCmd{}, nil, []string{"--verbose"}, false)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "scrumboard 0.1.0\n") {
		t.Errorf("missing version line: %q", stdout)
	}
	if !strings.Contains(stdout, "api:    http://127.0.0.1:8000\n") {
		t.Errorf("missing api line: %q", stdout)
	}
}
