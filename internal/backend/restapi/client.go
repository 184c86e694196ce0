// Package restapi implements the service.Service interface over the scrum board REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"scrumboard/internal/config"
	"scrumboard/internal/service"
)

const (
	loginPath     = "/authen/jwt/create"
	registerPath  = "/api/create/"
	loginUserPath = "/api/loginuser/"
	profilesPath  = "/api/profile/"
	tasksPath     = "/api/tasks/"
	usersPath     = "/api/users/"
	categoryPath  = "/api/category/"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4096
)

// Client implements service.Service over HTTP/JSON.
type Client struct {
	baseURL string
	tokens  oauth2.TokenSource
	anon    *http.Client
	authed  *http.Client
	log     *slog.Logger
}

// New creates a client for cfg.APIURL. Authenticated requests carry the
// token returned by tokens at request time.
func New(cfg *config.Config, tokens oauth2.TokenSource, log *slog.Logger) *Client {
	return NewWithHTTPClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout}, tokens, log)
}

// NewWithHTTPClient creates a client on top of base (for testing).
func NewWithHTTPClient(baseURL string, base *http.Client, tokens oauth2.TokenSource, log *slog.Logger) *Client {
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		anon:    &http.Client{Transport: transport, Timeout: base.Timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: transport},
			Timeout:   base.Timeout,
		},
		log: log,
	}
}

// Authenticate exchanges a credential for a token pair.
func (c *Client) Authenticate(ctx context.Context, cred service.Credential) (service.TokenPair, error) {
	var out service.TokenPair
	if err := c.sendJSON(ctx, false, http.MethodPost, loginPath, cred, &out); err != nil {
		return service.TokenPair{}, err
	}
	return out, nil
}

// Register creates a new user account.
func (c *Client) Register(ctx context.Context, cred service.Credential) (service.User, error) {
	var out service.User
	if err := c.sendJSON(ctx, false, http.MethodPost, registerPath, cred, &out); err != nil {
		return service.User{}, err
	}
	return out, nil
}

// FetchOwnProfile returns the authenticated identity.
func (c *Client) FetchOwnProfile(ctx context.Context) (service.User, error) {
	var out service.User
	if err := c.do(ctx, true, http.MethodGet, loginUserPath, nil, "", &out); err != nil {
		return service.User{}, err
	}
	return out, nil
}

// CreateOwnProfile creates an image-less profile for the authenticated user.
func (c *Client) CreateOwnProfile(ctx context.Context) (service.Profile, error) {
	var out service.Profile
	body := map[string]any{"img": nil}
	if err := c.sendJSON(ctx, true, http.MethodPost, profilesPath, body, &out); err != nil {
		return service.Profile{}, err
	}
	return out, nil
}

// FetchProfiles returns every profile.
func (c *Client) FetchProfiles(ctx context.Context) ([]service.Profile, error) {
	var out []service.Profile
	if err := c.do(ctx, true, http.MethodGet, profilesPath, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile uploads img as the multipart part "img". Without an image
// the request carries an empty JSON object.
func (c *Client) UpdateProfile(ctx context.Context, id int, img *service.Image) (service.Profile, error) {
	path := fmt.Sprintf("%s%d/", profilesPath, id)

	var out service.Profile
	if img == nil {
		if err := c.sendJSON(ctx, true, http.MethodPut, path, struct{}{}, &out); err != nil {
			return service.Profile{}, err
		}
		return out, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("img", img.Name)
	if err != nil {
		return service.Profile{}, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return service.Profile{}, err
	}
	if err := mw.Close(); err != nil {
		return service.Profile{}, err
	}

	if err := c.do(ctx, true, http.MethodPut, path, &buf, mw.FormDataContentType(), &out); err != nil {
		return service.Profile{}, err
	}
	return out, nil
}

// FetchTasks returns every task in API order.
func (c *Client) FetchTasks(ctx context.Context) ([]service.Task, error) {
	var out []service.Task
	if err := c.do(ctx, true, http.MethodGet, tasksPath, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchUsers returns the user directory.
func (c *Client) FetchUsers(ctx context.Context) ([]service.User, error) {
	var out []service.User
	if err := c.do(ctx, true, http.MethodGet, usersPath, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchCategories returns the category directory.
func (c *Client) FetchCategories(ctx context.Context) ([]service.Category, error) {
	var out []service.Category
	if err := c.do(ctx, true, http.MethodGet, categoryPath, nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(ctx context.Context, item string) (service.Category, error) {
	var out service.Category
	body := map[string]string{"item": item}
	if err := c.sendJSON(ctx, true, http.MethodPost, categoryPath, body, &out); err != nil {
		return service.Category{}, err
	}
	return out, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	var out service.Task
	if err := c.sendJSON(ctx, true, http.MethodPost, tasksPath, draft, &out); err != nil {
		return service.Task{}, err
	}
	return out, nil
}

// UpdateTask replaces task draft.ID.
func (c *Client) UpdateTask(ctx context.Context, draft service.TaskDraft) (service.Task, error) {
	var out service.Task
	path := fmt.Sprintf("%s%d/", tasksPath, draft.ID)
	if err := c.sendJSON(ctx, true, http.MethodPut, path, draft, &out); err != nil {
		return service.Task{}, err
	}
	return out, nil
}

// DeleteTask deletes a task and echoes its id.
func (c *Client) DeleteTask(ctx context.Context, id int) (int, error) {
	path := fmt.Sprintf("%s%d/", tasksPath, id)
	if err := c.do(ctx, true, http.MethodDelete, path, nil, "", nil); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Client) sendJSON(ctx context.Context, auth bool, method, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return c.do(ctx, auth, method, path, bytes.NewReader(data), "application/json", out)
}

// do sends one request and decodes a 2xx JSON response into out (if non-nil).
// Authenticated requests fail before sending when no token is stored.
func (c *Client) do(ctx context.Context, auth bool, method, path string, body io.Reader, contentType string, out any) error {
	hc := c.anon
	if auth {
		if _, err := c.tokens.Token(); err != nil {
			return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
		}
		hc = c.authed
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "id", reqID, "method", method, "path", path, "error", err)
		return wrapError(err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request", "id", reqID, "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

// StatusError is a non-2xx API response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is matches service.ErrUnauthorized for 401/403 and service.ErrNotFound for 404.
func (e *StatusError) Is(target error) bool {
	switch target {
	case service.ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case service.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// wrapError maps transport errors to user-facing ones.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("request timed out")
	}

	return err
}
