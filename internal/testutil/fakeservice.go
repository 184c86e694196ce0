// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"scrumboard/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu         sync.Mutex
	nextID     int
	users      []service.User
	passwords  map[string]string
	me         service.User
	profiles   []service.Profile
	tasks      []service.Task
	categories []service.Category
	calls      []string
	creds      []service.Credential

	// Error injection for testing
	AuthenticateErr     error
	RegisterErr         error
	FetchOwnProfileErr  error
	CreateOwnProfileErr error
	FetchProfilesErr    error
	UpdateProfileErr    error
	FetchTasksErr       error
	FetchUsersErr       error
	FetchCategoriesErr  error
	CreateCategoryErr   error
	CreateTaskErr       error
	UpdateTaskErr       error
	DeleteTaskErr       error

	// AccessToken is returned by Authenticate. Empty means "access-<username>".
	AccessToken string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID:    1,
		passwords: make(map[string]string),
	}
}

// AddUser adds a user that can authenticate with password.
func (f *FakeService) AddUser(username, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: f.allocID(), Username: username}
	f.users = append(f.users, u)
	f.passwords[username] = password
	return u
}

// SetMe sets the identity returned by FetchOwnProfile.
func (f *FakeService) SetMe(u service.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.me = u
}

// AddProfile adds a profile for userID.
func (f *FakeService) AddProfile(userID int, img *string) service.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := service.Profile{ID: f.allocID(), UserProfile: userID, Img: img}
	f.profiles = append(f.profiles, p)
	return p
}

// AddCategory adds a category.
func (f *FakeService) AddCategory(item string) service.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := service.Category{ID: f.allocID(), Item: item}
	f.categories = append(f.categories, c)
	return c
}

// AddTask stores t as is, allocating an ID when t.ID is 0.
func (f *FakeService) AddTask(t service.Task) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == 0 {
		t.ID = f.allocID()
	}
	f.tasks = append(f.tasks, t)
	return t
}

// Calls returns the names of the methods invoked so far, in order.
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Credentials returns the credentials passed to Authenticate and Register.
func (f *FakeService) Credentials() []service.Credential {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.creds)
}

// Tasks returns the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// Profiles returns the stored profiles.
func (f *FakeService) Profiles() []service.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.profiles)
}

// Categories returns the stored categories.
func (f *FakeService) Categories() []service.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.categories)
}

func (f *FakeService) allocID() int {
	id := f.nextID
	f.nextID++
	return id
}

// call records name and returns err. Caller holds f.mu.
func (f *FakeService) call(name string, err error) error {
	f.calls = append(f.calls, name)
	return err
}

// Authenticate implements service.Service.
func (f *FakeService) Authenticate(ctx context.Context, cred service.Credential) (service.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, cred)
	if err := f.call("Authenticate", f.AuthenticateErr); err != nil {
		return service.TokenPair{}, err
	}
	if pw, ok := f.passwords[cred.Username]; !ok || pw != cred.Password {
		return service.TokenPair{}, fmt.Errorf("%w: bad credentials", service.ErrUnauthorized)
	}
	access := f.AccessToken
	if access == "" {
		access = "access-" + cred.Username
	}
	for _, u := range f.users {
		if u.Username == cred.Username {
			f.me = u
		}
	}
	return service.TokenPair{Refresh: "refresh-" + cred.Username, Access: access}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, cred service.Credential) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = append(f.creds, cred)
	if err := f.call("Register", f.RegisterErr); err != nil {
		return service.User{}, err
	}
	if _, ok := f.passwords[cred.Username]; ok {
		return service.User{}, fmt.Errorf("user %q already exists", cred.Username)
	}
	u := service.User{ID: f.allocID(), Username: cred.Username}
	f.users = append(f.users, u)
	f.passwords[cred.Username] = cred.Password
	return u, nil
}

// FetchOwnProfile implements service.Service.
func (f *FakeService) FetchOwnProfile(ctx context.Context) (service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchOwnProfile", f.FetchOwnProfileErr); err != nil {
		return service.User{}, err
	}
	return f.me, nil
}

// CreateOwnProfile implements service.Service.
func (f *FakeService) CreateOwnProfile(ctx context.Context) (service.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateOwnProfile", f.CreateOwnProfileErr); err != nil {
		return service.Profile{}, err
	}
	p := service.Profile{ID: f.allocID(), UserProfile: f.me.ID}
	f.profiles = append(f.profiles, p)
	return p, nil
}

// FetchProfiles implements service.Service.
func (f *FakeService) FetchProfiles(ctx context.Context) ([]service.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchProfiles", f.FetchProfilesErr); err != nil {
		return nil, err
	}
	return slices.Clone(f.profiles), nil
}

// UpdateProfile implements service.Service.
func (f *FakeService) UpdateProfile(ctx context.Context, id int, img *service.Image) (service.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateProfile", f.UpdateProfileErr); err != nil {
		return service.Profile{}, err
	}
	for i := range f.profiles {
		if f.profiles[i].ID != id {
			continue
		}
		if img != nil {
			url := "/media/" + img.Name
			f.profiles[i].Img = &url
		}
		return f.profiles[i], nil
	}
	return service.Profile{}, service.ErrNotFound
}

// FetchTasks implements service.Service.
func (f *FakeService) FetchTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchTasks", f.FetchTasksErr); err != nil {
		return nil, err
	}
	return slices.Clone(f.tasks), nil
}

// FetchUsers implements service.Service.
func (f *FakeService) FetchUsers(ctx context.Context) ([]service.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchUsers", f.FetchUsersErr); err != nil {
		return nil, err
	}
	return slices.Clone(f.users), nil
}

// FetchCategories implements service.Service.
func (f *FakeService) FetchCategories(ctx context.Context) ([]service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("FetchCategories", f.FetchCategoriesErr); err != nil {
		return nil, err
	}
	return slices.Clone(f.categories), nil
}

// CreateCategory implements service.Service.
func (f *FakeService) CreateCategory(ctx context.Context, item string) (service.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateCategory", f.CreateCategoryErr); err != nil {
		return service.Category{}, err
	}
	c := service.Category{ID: f.allocID(), Item: item}
	f.categories = append(f.categories, c)
	return c, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateTask", f.CreateTaskErr); err != nil {
		return service.Task{}, err
	}
	draft.ID = f.allocID()
	t := f.readForm(draft, f.me.ID)
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UpdateTask", f.UpdateTaskErr); err != nil {
		return service.Task{}, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == draft.ID {
			f.tasks[i] = f.readForm(draft, f.tasks[i].Owner)
			return f.tasks[i], nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteTask", f.DeleteTaskErr); err != nil {
		return 0, err
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = slices.Delete(f.tasks, i, i+1)
			return id, nil
		}
	}
	return 0, service.ErrNotFound
}

// readForm fills the computed labels of a task. Caller holds f.mu.
func (f *FakeService) readForm(d service.TaskDraft, ownerID int) service.Task {
	t := service.Task{
		ID:          d.ID,
		Task:        d.Task,
		Description: d.Description,
		Criteria:    d.Criteria,
		Status:      d.Status,
		StatusName:  service.StatusLabel(d.Status),
		Category:    d.Category,
		Estimate:    d.Estimate,
		Responsible: d.Responsible,
		Owner:       ownerID,
		CreatedAt:   FakeTimestamp,
		UpdatedAt:   FakeTimestamp,
	}
	for _, u := range f.users {
		if u.ID == d.Responsible {
			t.ResponsibleUsername = u.Username
		}
		if u.ID == ownerID {
			t.OwnerUsername = u.Username
		}
	}
	for _, c := range f.categories {
		if c.ID == d.Category {
			t.CategoryItem = c.Item
		}
	}
	return t
}
