// Package state holds the client-side auth and task stores.
//
// Each store is mutated only by applying one of its event types, which
// represent completed actions (a finished API call or a local edit).
// Applying an event is deterministic and never performs I/O; reading goes
// through selector methods that return copies.
package state

import (
	"slices"
	"sync"

	"scrumboard/internal/service"
)

// AuthEvent is a completed action applied to Auth.
// Implemented only by the event types in this package.
type AuthEvent interface {
	applyAuth(a *Auth)
}

// ModeToggled flips between the login and the registration view.
type ModeToggled struct{}

// OwnProfileFetched carries the authenticated identity.
type OwnProfileFetched struct {
	User service.User
}

// ProfilesFetched carries the complete profile collection.
type ProfilesFetched struct {
	Profiles []service.Profile
}

// ProfileUpdated carries one updated profile.
type ProfileUpdated struct {
	Profile service.Profile
}

// Auth is the authentication store.
type Auth struct {
	mu          sync.RWMutex
	isLoginView bool
	loginUser   service.User
	profiles    []service.Profile
}

// NewAuth returns the start-of-process auth state: login view, no identity,
// no profiles.
func NewAuth() *Auth {
	return &Auth{isLoginView: true}
}

// Apply applies ev.
func (a *Auth) Apply(ev AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ev.applyAuth(a)
}

func (ModeToggled) applyAuth(a *Auth) {
	a.isLoginView = !a.isLoginView
}

func (e OwnProfileFetched) applyAuth(a *Auth) {
	a.loginUser = e.User
}

func (e ProfilesFetched) applyAuth(a *Auth) {
	a.profiles = slices.Clone(e.Profiles)
}

func (e ProfileUpdated) applyAuth(a *Auth) {
	for i := range a.profiles {
		if a.profiles[i].ID == e.Profile.ID {
			a.profiles[i] = e.Profile
		}
	}
}

// IsLoginView reports whether the login (rather than registration) view is active.
func (a *Auth) IsLoginView() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.isLoginView
}

// LoginUser returns the authenticated identity, zero before it is fetched.
func (a *Auth) LoginUser() service.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loginUser
}

// Profiles returns a copy of the profile collection.
func (a *Auth) Profiles() []service.Profile {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(a.profiles)
}

// MyProfile returns the profile owned by the authenticated user.
func (a *Auth) MyProfile() (service.Profile, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return ProfileOf(a.profiles, a.loginUser.ID)
}

// ProfileOf returns the first profile owned by userID. Profiles and users
// are matched on the owning user id only.
func ProfileOf(profiles []service.Profile, userID int) (service.Profile, bool) {
	for _, p := range profiles {
		if p.UserProfile == userID {
			return p, true
		}
	}
	return service.Profile{}, false
}
