package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"scrumboard/internal/service"
)

// FakeTimestamp is the created_at/updated_at value of every fake task.
const FakeTimestamp = "2024-01-01T00:00:00Z"

// RecordedRequest is one request received by FakeAPI.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

type fakeAccount struct {
	user     service.User
	password string
}

// FakeAPI is an in-memory emulation of the scrum board REST API served
// over httptest. Access tokens are HS256 JWTs carrying a user_id claim.
type FakeAPI struct {
	*httptest.Server

	mu         sync.Mutex
	key        []byte
	nextID     int
	accounts   []fakeAccount
	profiles   []service.Profile
	tasks      []service.Task
	categories []service.Category
	requests   []RecordedRequest
	failures   map[string]int
	lastImage  *service.Image

	// TokenTTL is the lifetime of issued access tokens.
	TokenTTL time.Duration
}

// NewFakeAPI starts a fake API server that is closed when t finishes.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		key:      []byte("fake-api-signing-key"),
		nextID:   1,
		failures: make(map[string]int),
		TokenTTL: time.Hour,
	}

	r := gin.New()
	r.Use(f.record, f.injectFailures)

	r.POST("/authen/jwt/create", f.handleLogin)
	r.POST("/api/create/", f.handleRegister)

	api := r.Group("/api", f.requireJWT)
	api.GET("/loginuser/", f.handleLoginUser)
	api.GET("/profile/", f.handleListProfiles)
	api.POST("/profile/", f.handleCreateProfile)
	api.PUT("/profile/:id/", f.handleUpdateProfile)
	api.GET("/tasks/", f.handleListTasks)
	api.POST("/tasks/", f.handleCreateTask)
	api.PUT("/tasks/:id/", f.handleUpdateTask)
	api.DELETE("/tasks/:id/", f.handleDeleteTask)
	api.GET("/users/", f.handleListUsers)
	api.GET("/category/", f.handleListCategories)
	api.POST("/category/", f.handleCreateCategory)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// AddUser registers an account.
func (f *FakeAPI) AddUser(username, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := service.User{ID: f.allocID(), Username: username}
	f.accounts = append(f.accounts, fakeAccount{user: u, password: password})
	return u
}

// AddProfile adds a profile owned by userID.
func (f *FakeAPI) AddProfile(userID int, img *string) service.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := service.Profile{ID: f.allocID(), UserProfile: userID, Img: img}
	f.profiles = append(f.profiles, p)
	return p
}

// AddCategory adds a category.
func (f *FakeAPI) AddCategory(item string) service.Category {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := service.Category{ID: f.allocID(), Item: item}
	f.categories = append(f.categories, c)
	return c
}

// AddTask adds a task owned by ownerID built from draft.
func (f *FakeAPI) AddTask(draft service.TaskDraft, ownerID int) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft.ID = f.allocID()
	t := f.readForm(draft, ownerID)
	f.tasks = append(f.tasks, t)
	return t
}

// Token issues an access token for userID.
func (f *FakeAPI) Token(userID int) string {
	return f.sign(userID, "access", time.Now().Add(f.TokenTTL))
}

// ExpiredToken issues an access token for userID that expired an hour ago.
func (f *FakeAPI) ExpiredToken(userID int) string {
	return f.sign(userID, "access", time.Now().Add(-time.Hour))
}

// Fail makes every request matching method and path answer with status.
func (f *FakeAPI) Fail(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// Requests returns the requests received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests)
}

// LastRequest returns the most recent request.
func (f *FakeAPI) LastRequest() (RecordedRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return RecordedRequest{}, false
	}
	return f.requests[len(f.requests)-1], true
}

// LastImage returns the last uploaded profile image.
func (f *FakeAPI) LastImage() *service.Image {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastImage
}

// Tasks returns the server-side task collection.
func (f *FakeAPI) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// Profiles returns the server-side profile collection.
func (f *FakeAPI) Profiles() []service.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.profiles)
}

func (f *FakeAPI) allocID() int {
	id := f.nextID
	f.nextID++
	return id
}

func (f *FakeAPI) sign(userID int, kind string, exp time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"token_type": kind,
		"user_id":    userID,
		"exp":        exp.Unix(),
	})
	s, err := tok.SignedString(f.key)
	if err != nil {
		panic(err)
	}
	return s
}

func (f *FakeAPI) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}
	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Authorization: c.GetHeader("Authorization"),
		ContentType:   c.GetHeader("Content-Type"),
		Body:          body,
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) injectFailures(c *gin.Context) {
	f.mu.Lock()
	status, ok := f.failures[c.Request.Method+" "+c.Request.URL.Path]
	f.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(status, gin.H{"detail": "injected failure"})
		return
	}
	c.Next()
}

func (f *FakeAPI) requireJWT(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "JWT ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return f.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
		return
	}

	uid, _ := claims["user_id"].(float64)
	c.Set("uid", int(uid))
	c.Next()
}

func (f *FakeAPI) handleLogin(c *gin.Context) {
	var cred service.Credential
	if err := c.ShouldBindJSON(&cred); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	var found *fakeAccount
	for i := range f.accounts {
		if f.accounts[i].user.Username == cred.Username && f.accounts[i].password == cred.Password {
			found = &f.accounts[i]
		}
	}
	f.mu.Unlock()

	if found == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "No active account found with the given credentials"})
		return
	}
	c.JSON(http.StatusOK, service.TokenPair{
		Refresh: f.sign(found.user.ID, "refresh", time.Now().Add(24*time.Hour)),
		Access:  f.Token(found.user.ID),
	})
}

func (f *FakeAPI) handleRegister(c *gin.Context) {
	var cred service.Credential
	if err := c.ShouldBindJSON(&cred); err != nil || cred.Username == "" || cred.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"username": []string{"This field is required."}})
		return
	}

	f.mu.Lock()
	for _, a := range f.accounts {
		if a.user.Username == cred.Username {
			f.mu.Unlock()
			c.JSON(http.StatusBadRequest, gin.H{"username": []string{"A user with that username already exists."}})
			return
		}
	}
	f.mu.Unlock()

	c.JSON(http.StatusCreated, f.AddUser(cred.Username, cred.Password))
}

func (f *FakeAPI) handleLoginUser(c *gin.Context) {
	uid := c.GetInt("uid")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.user.ID == uid {
			c.JSON(http.StatusOK, a.user)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) handleListProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, f.Profiles())
}

func (f *FakeAPI) handleCreateProfile(c *gin.Context) {
	uid := c.GetInt("uid")
	f.mu.Lock()
	for _, p := range f.profiles {
		if p.UserProfile == uid {
			f.mu.Unlock()
			c.JSON(http.StatusBadRequest, gin.H{"user_profile": []string{"profile with this user profile already exists."}})
			return
		}
	}
	f.mu.Unlock()
	c.JSON(http.StatusCreated, f.AddProfile(uid, nil))
}

func (f *FakeAPI) handleUpdateProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var upload *service.Image
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("img")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"img": []string{err.Error()}})
			return
		}
		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"img": []string{err.Error()}})
			return
		}
		data, _ := io.ReadAll(file)
		file.Close()
		upload = &service.Image{Name: fh.Filename, Data: data}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.profiles {
		if f.profiles[i].ID != id {
			continue
		}
		if upload != nil {
			url := fmt.Sprintf("http://%s/media/%s", c.Request.Host, upload.Name)
			f.profiles[i].Img = &url
			f.lastImage = upload
		}
		c.JSON(http.StatusOK, f.profiles[i])
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) handleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, f.Tasks())
}

func (f *FakeAPI) handleCreateTask(c *gin.Context) {
	var draft service.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if draft.Task == "" {
		c.JSON(http.StatusBadRequest, gin.H{"task": []string{"This field may not be blank."}})
		return
	}
	c.JSON(http.StatusCreated, f.AddTask(draft, c.GetInt("uid")))
}

func (f *FakeAPI) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var draft service.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			draft.ID = id
			f.tasks[i] = f.readForm(draft, f.tasks[i].Owner)
			c.JSON(http.StatusOK, f.tasks[i])
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = slices.Delete(f.tasks, i, i+1)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func (f *FakeAPI) handleListUsers(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]service.User, 0, len(f.accounts))
	for _, a := range f.accounts {
		users = append(users, a.user)
	}
	c.JSON(http.StatusOK, users)
}

func (f *FakeAPI) handleListCategories(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.JSON(http.StatusOK, slices.Clone(f.categories))
}

func (f *FakeAPI) handleCreateCategory(c *gin.Context) {
	var req struct {
		Item string `json:"item"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Item == "" {
		c.JSON(http.StatusBadRequest, gin.H{"item": []string{"This field is required."}})
		return
	}
	c.JSON(http.StatusCreated, f.AddCategory(req.Item))
}

// readForm joins the labels of a stored task. Caller holds f.mu.
func (f *FakeAPI) readForm(d service.TaskDraft, ownerID int) service.Task {
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
	for _, a := range f.accounts {
		if a.user.ID == d.Responsible {
			t.ResponsibleUsername = a.user.Username
		}
		if a.user.ID == ownerID {
			t.OwnerUsername = a.user.Username
		}
	}
	for _, cat := range f.categories {
		if cat.ID == d.Category {
			t.CategoryItem = cat.Item
		}
	}
	return t
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return 0, false
	}
	return id, true
}
