// Package service defines the backend-agnostic interface for scrum board operations.
package service

import (
	"context"
	"errors"
)

var (
	// ErrUnauthorized is matched by backend errors for rejected or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is matched by backend errors for unknown resources.
	ErrNotFound = errors.New("not found")
)

// Service defines one operation per remote resource.
// Every method except Authenticate and Register requires a stored access token.
// Failures are reported as errors; callers treat them as binary.
type Service interface {
	// Authenticate exchanges a credential for a token pair.
	Authenticate(ctx context.Context, cred Credential) (TokenPair, error)

	// Register creates a new user account.
	Register(ctx context.Context, cred Credential) (User, error)

	// FetchOwnProfile returns the identity of the authenticated user.
	FetchOwnProfile(ctx context.Context) (User, error)

	// CreateOwnProfile creates an empty profile for the authenticated user.
	CreateOwnProfile(ctx context.Context) (Profile, error)

	// FetchProfiles returns every profile.
	FetchProfiles(ctx context.Context) ([]Profile, error)

	// UpdateProfile replaces the image of profile id. img may be nil.
	UpdateProfile(ctx context.Context, id int, img *Image) (Profile, error)

	// FetchTasks returns every task in API order.
	FetchTasks(ctx context.Context) ([]Task, error)

	// FetchUsers returns the user directory.
	FetchUsers(ctx context.Context) ([]User, error)

	// FetchCategories returns the category directory.
	FetchCategories(ctx context.Context) ([]Category, error)

	// CreateCategory creates a category with the given label.
	CreateCategory(ctx context.Context, item string) (Category, error)

	// CreateTask creates a task from a draft.
	CreateTask(ctx context.Context, draft TaskDraft) (Task, error)

	// UpdateTask replaces task draft.ID with the draft's fields.
	UpdateTask(ctx context.Context, draft TaskDraft) (Task, error)

	// DeleteTask deletes a task and echoes its id.
	DeleteTask(ctx context.Context, id int) (int, error)
}
