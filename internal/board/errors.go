package board

import "errors"

var (
	// ErrSessionInvalid matches every failure that requires signing in again.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrDraftIncomplete is returned when the draft lacks task, description or criteria.
	ErrDraftIncomplete = errors.New("task, description and criteria are required")

	// ErrNoProfile is returned when the logged-in user has no profile.
	ErrNoProfile = errors.New("no profile for the current user")

	// ErrEmptyLabel is returned when creating a category without a label.
	ErrEmptyLabel = errors.New("category label is empty")
)

// SessionError is a failure routed to the sign-in screen.
// It matches ErrSessionInvalid with errors.Is.
type SessionError struct {
	Op  string
	Err error
}

func (e *SessionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return target == ErrSessionInvalid
}

// AlertError is a failure that must be shown to the user as a blocking alert.
type AlertError struct {
	Op  string
	Err error
}

func (e *AlertError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *AlertError) Unwrap() error {
	return e.Err
}
