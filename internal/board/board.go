// Package board is the application context of the scrum board client.
// It owns the remote service, the session token and both state stores,
// and turns user intents into service calls and store events.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"scrumboard/internal/service"
	"scrumboard/internal/session"
	"scrumboard/internal/state"
)

// Board implements every user intent.
type Board struct {
	svc    service.Service
	tokens session.Store
	log    *slog.Logger
	auth   *state.Auth
	tasks  *state.Tasks
}

// New returns a board with fresh stores.
func New(svc service.Service, tokens session.Store, log *slog.Logger) *Board {
	return &Board{
		svc:    svc,
		tokens: tokens,
		log:    log,
		auth:   state.NewAuth(),
		tasks:  state.NewTasks(),
	}
}

// Auth returns the auth store.
func (b *Board) Auth() *state.Auth {
	return b.auth
}

// Tasks returns the task store.
func (b *Board) Tasks() *state.Tasks {
	return b.tasks
}

// SubmitCredentials logs in or registers depending on the current mode.
func (b *Board) SubmitCredentials(ctx context.Context, cred service.Credential) error {
	if b.auth.IsLoginView() {
		return b.Login(ctx, cred)
	}
	return b.Register(ctx, cred)
}

// ToggleMode switches between the login and register forms.
func (b *Board) ToggleMode() {
	b.auth.Apply(state.ModeToggled{})
}

// Login authenticates and stores the access token.
func (b *Board) Login(ctx context.Context, cred service.Credential) error {
	pair, err := b.svc.Authenticate(ctx, cred)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if pair.Access == "" {
		return errors.New("login failed: server returned no access token")
	}
	if err := b.tokens.Set(pair.Access); err != nil {
		return err
	}
	b.log.Debug("logged in", "username", cred.Username)
	return nil
}

// Register creates the account, logs in with the same credential and
// creates the user's profile. The chain stops at the first failure.
func (b *Board) Register(ctx context.Context, cred service.Credential) error {
	if _, err := b.svc.Register(ctx, cred); err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	b.log.Debug("registered", "username", cred.Username)

	if err := b.Login(ctx, cred); err != nil {
		return err
	}
	if _, err := b.svc.CreateOwnProfile(ctx); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// LoggedIn reports whether an access token is stored.
func (b *Board) LoggedIn() bool {
	_, ok := b.tokens.Get()
	return ok
}

// Claims decodes the stored access token.
func (b *Board) Claims() (session.Claims, error) {
	access, ok := b.tokens.Get()
	if !ok {
		return session.Claims{}, session.ErrNoToken
	}
	return session.Inspect(access)
}

// Logout forgets the access token.
func (b *Board) Logout() error {
	return b.tokens.Clear()
}

// Boot loads everything the board shows, one fetch after another.
// The first failure stops the sequence.
func (b *Board) Boot(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.LoadTasks,
		b.LoadOwnProfile,
		b.LoadUsers,
		b.LoadCategories,
		b.LoadProfiles,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// LoadTasks replaces the task collection.
func (b *Board) LoadTasks(ctx context.Context) error {
	tasks, err := b.svc.FetchTasks(ctx)
	if err != nil {
		return &SessionError{Op: "fetch tasks", Err: err}
	}
	b.tasks.Apply(state.TasksFetched{Tasks: tasks})
	b.log.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// LoadOwnProfile replaces the logged-in identity.
func (b *Board) LoadOwnProfile(ctx context.Context) error {
	user, err := b.svc.FetchOwnProfile(ctx)
	if err != nil {
		return &AlertError{Op: "fetch own profile", Err: err}
	}
	b.auth.Apply(state.OwnProfileFetched{User: user})
	return nil
}

// LoadUsers replaces the user directory.
func (b *Board) LoadUsers(ctx context.Context) error {
	users, err := b.svc.FetchUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	b.tasks.Apply(state.UsersFetched{Users: users})
	return nil
}

// LoadCategories replaces the category directory.
func (b *Board) LoadCategories(ctx context.Context) error {
	categories, err := b.svc.FetchCategories(ctx)
	if err != nil {
		return fmt.Errorf("fetch categories: %w", err)
	}
	b.tasks.Apply(state.CategoriesFetched{Categories: categories})
	return nil
}

// LoadProfiles replaces the profile collection. Failures leave the
// profiles untouched and are not reported.
func (b *Board) LoadProfiles(ctx context.Context) error {
	profiles, err := b.svc.FetchProfiles(ctx)
	if err != nil {
		b.log.Debug("profile list unavailable", "error", err)
		return nil
	}
	b.auth.Apply(state.ProfilesFetched{Profiles: profiles})
	return nil
}

// CreateCategory creates a category and appends it to the directory.
func (b *Board) CreateCategory(ctx context.Context, label string) (service.Category, error) {
	if strings.TrimSpace(label) == "" {
		return service.Category{}, ErrEmptyLabel
	}
	c, err := b.svc.CreateCategory(ctx, label)
	if err != nil {
		return service.Category{}, fmt.Errorf("create category: %w", err)
	}
	b.tasks.Apply(state.CategoryCreated{Category: c})
	return c, nil
}

// EditTask replaces the draft.
func (b *Board) EditTask(draft service.TaskDraft) {
	b.tasks.Apply(state.TaskEdited{Draft: draft})
}

// SelectTask replaces the selected task.
func (b *Board) SelectTask(task service.Task) {
	b.tasks.Apply(state.TaskSelected{Task: task})
}

// CancelEdit discards the draft and the selection.
func (b *Board) CancelEdit() {
	b.tasks.Apply(state.TaskEdited{})
	b.tasks.Apply(state.TaskSelected{})
}

// SubmitDraft creates the draft when it is new and updates it otherwise.
func (b *Board) SubmitDraft(ctx context.Context) (service.Task, error) {
	draft := b.tasks.EditedTask()
	if !draft.Complete() {
		return service.Task{}, ErrDraftIncomplete
	}
	if draft.IsNew() {
		return b.CreateTask(ctx, draft)
	}
	return b.UpdateTask(ctx, draft)
}

// CreateTask creates a task and puts it first.
func (b *Board) CreateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	t, err := b.svc.CreateTask(ctx, draft)
	if err != nil {
		return service.Task{}, &SessionError{Op: "create task", Err: err}
	}
	b.tasks.Apply(state.TaskCreated{Task: t})
	b.log.Debug("task created", "id", t.ID)
	return t, nil
}

// UpdateTask replaces a task in place.
func (b *Board) UpdateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	t, err := b.svc.UpdateTask(ctx, draft)
	if err != nil {
		return service.Task{}, &SessionError{Op: "update task", Err: err}
	}
	b.tasks.Apply(state.TaskUpdated{Task: t})
	b.log.Debug("task updated", "id", t.ID)
	return t, nil
}

// DeleteTask removes a task.
func (b *Board) DeleteTask(ctx context.Context, id int) error {
	deleted, err := b.svc.DeleteTask(ctx, id)
	if err != nil {
		return &SessionError{Op: "delete task", Err: err}
	}
	b.tasks.Apply(state.TaskDeleted{ID: deleted})
	b.log.Debug("task deleted", "id", deleted)
	return nil
}

// UpdateProfile uploads img to profile id.
func (b *Board) UpdateProfile(ctx context.Context, id int, img *service.Image) (service.Profile, error) {
	p, err := b.svc.UpdateProfile(ctx, id, img)
	if err != nil {
		return service.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	b.auth.Apply(state.ProfileUpdated{Profile: p})
	return p, nil
}

// UpdateMyAvatar uploads img to the logged-in user's profile.
// Own profile and profiles must be loaded.
func (b *Board) UpdateMyAvatar(ctx context.Context, img *service.Image) (service.Profile, error) {
	mine, ok := b.auth.MyProfile()
	if !ok {
		return service.Profile{}, ErrNoProfile
	}
	return b.UpdateProfile(ctx, mine.ID, img)
}
