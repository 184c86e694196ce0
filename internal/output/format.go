// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"scrumboard/internal/service"
)

const (
	// ListSeparator is the separator line under list headers.
	ListSeparator = "------------"
)

// FormatTask formats a task line for the task list.
// Format: "{ID:>4}  {STATUS:<11}  {TITLE}[  [CATEGORY]][  @RESPONSIBLE]\n"
func FormatTask(w io.Writer, task service.Task) {
	line := fmt.Sprintf("%4d  %-11s  %s", task.ID, statusName(task), normalizeTitle(task.Task))
	if task.CategoryItem != "" {
		line += "  [" + task.CategoryItem + "]"
	}
	if task.ResponsibleUsername != "" {
		line += "  @" + task.ResponsibleUsername
	}
	fmt.Fprintln(w, line)
}

// FormatListHeader formats a section header.
func FormatListHeader(w io.Writer, title string) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, normalizeTitle(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatCategory formats a category line.
func FormatCategory(w io.Writer, c service.Category) {
	fmt.Fprintf(w, "%4d  %s\n", c.ID, normalizeTitle(c.Item))
}

// FormatUser formats a user line, followed by the avatar URL when the
// user's profile has one.
func FormatUser(w io.Writer, u service.User, profiles []service.Profile) {
	line := fmt.Sprintf("%4d  %s", u.ID, u.Username)
	for _, p := range profiles {
		if p.UserProfile == u.ID && p.Img != nil {
			line += "  " + *p.Img
			break
		}
	}
	fmt.Fprintln(w, line)
}

// FormatTimestamp reformats an API timestamp as "2006-01-02 15:04".
// Values that do not parse are returned unchanged.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04")
}

func statusName(t service.Task) string {
	if t.StatusName != "" {
		return t.StatusName
	}
	if label := service.StatusLabel(t.Status); label != "" {
		return label
	}
	return "-"
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
