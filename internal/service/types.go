// Package service defines the backend-agnostic interface for scrum board operations.
package service

// Credential is a username/password pair. It is never stored.
type Credential struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is the result of a successful authentication.
type TokenPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// User is an entry of the user directory. The authenticated identity
// returned by the login-user endpoint has the same shape.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Profile belongs to exactly one user (UserProfile is the owning user ID).
// Img is the image URL, nil when no image was uploaded.
type Profile struct {
	ID          int     `json:"id"`
	UserProfile int     `json:"user_profile"`
	Img         *string `json:"img"`
}

// Image is an uploaded binary blob with a filename.
type Image struct {
	Name string
	Data []byte
}

// Category is a task category label.
type Category struct {
	ID   int    `json:"id"`
	Item string `json:"item"`
}

// Task status codes.
const (
	StatusNotStarted = "1"
	StatusOnGoing    = "2"
	StatusDone       = "3"
)

// MaxEstimate is the largest accepted estimate in days.
const MaxEstimate = 1000

// StatusLabel returns the display label for a status code.
func StatusLabel(code string) string {
	switch code {
	case StatusNotStarted:
		return "Not started"
	case StatusOnGoing:
		return "On going"
	case StatusDone:
		return "Done"
	}
	return ""
}

// Task is the read form of a task. StatusName, CategoryItem and the
// username fields are computed by the server and are display-only.
type Task struct {
	ID                  int    `json:"id"`
	Task                string `json:"task"`
	Description         string `json:"description"`
	Criteria            string `json:"criteria"`
	Status              string `json:"status"`
	StatusName          string `json:"status_name"`
	Category            int    `json:"category"`
	CategoryItem        string `json:"category_item"`
	Estimate            int    `json:"estimate"`
	Responsible         int    `json:"responsible"`
	ResponsibleUsername string `json:"responsible_username"`
	Owner               int    `json:"owner"`
	OwnerUsername       string `json:"owner_username"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// Draft returns the write form of t, used to open an edit session.
func (t Task) Draft() TaskDraft {
	return TaskDraft{
		ID:          t.ID,
		Task:        t.Task,
		Description: t.Description,
		Criteria:    t.Criteria,
		Status:      t.Status,
		Category:    t.Category,
		Estimate:    t.Estimate,
		Responsible: t.Responsible,
	}
}

// TaskDraft is the write form of a task. ID 0 means the task has not been
// created yet.
type TaskDraft struct {
	ID          int    `json:"id"`
	Task        string `json:"task"`
	Description string `json:"description"`
	Criteria    string `json:"criteria"`
	Status      string `json:"status"`
	Category    int    `json:"category"`
	Estimate    int    `json:"estimate"`
	Responsible int    `json:"responsible"`
}

// IsNew reports whether the draft describes a task that does not exist yet.
func (d TaskDraft) IsNew() bool {
	return d.ID == 0
}

// Complete reports whether the text fields required for submission are set.
func (d TaskDraft) Complete() bool {
	return d.Task != "" && d.Description != "" && d.Criteria != ""
}
