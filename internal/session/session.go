// Package session holds the access token shared by every authenticated request.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// TokenType is the scheme used in the Authorization header.
const TokenType = "JWT"

// ErrNoToken is returned when no access token is stored.
var ErrNoToken = errors.New("not logged in")

// Store is the single access-token cell of a session.
// Stores also act as oauth2.TokenSource so HTTP transports read the
// current token on every request.
type Store interface {
	oauth2.TokenSource

	// Get returns the stored access token.
	Get() (string, bool)

	// Set replaces the stored access token.
	Set(access string) error

	// Clear removes the stored access token.
	Clear() error
}

func newToken(access string) *oauth2.Token {
	return &oauth2.Token{AccessToken: access, TokenType: TokenType}
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	access string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, m.access != ""
}

func (m *Memory) Set(access string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	return nil
}

func (m *Memory) Clear() error {
	return m.Set("")
}

// Token implements oauth2.TokenSource.
func (m *Memory) Token() (*oauth2.Token, error) {
	access, ok := m.Get()
	if !ok {
		return nil, ErrNoToken
	}
	return newToken(access), nil
}

// File is a Store persisted as a JSON-encoded oauth2.Token with mode 0600.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by the file at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the token file path.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tok, err := f.read()
	if err != nil || tok.AccessToken == "" {
		return "", false
	}
	return tok.AccessToken, true
}

func (f *File) Set(access string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(newToken(access), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear removes the token file. A missing file is not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// Token implements oauth2.TokenSource.
func (f *File) Token() (*oauth2.Token, error) {
	access, ok := f.Get()
	if !ok {
		return nil, ErrNoToken
	}
	return newToken(access), nil
}

func (f *File) read() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(f.path), err)
	}
	return &tok, nil
}
