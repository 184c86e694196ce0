package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"scrumboard/internal/service"
)

const (
	labelWidth   = 13
	markdownWrap = 80
)

type field struct {
	label string
	value string
}

// stylesFor returns a renderer bound to w with its styles. Writers that are not
// terminals get plain text.
func stylesFor(w io.Writer) (*lipgloss.Renderer, lipgloss.Style, lipgloss.Style) {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Bold(true).Width(labelWidth).Foreground(lipgloss.Color("#5f9fb0"))
	heading := r.NewStyle().Bold(true).Underline(true)
	return r, label, heading
}

func writeFields(w io.Writer, label lipgloss.Style, fields []field) {
	for _, f := range fields {
		value := f.value
		if value == "" {
			value = "-"
		}
		// Continuation lines are indented under the value column.
		value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", labelWidth))
		fmt.Fprintln(w, label.Render(f.label)+value)
	}
}

// FormatTaskDetail writes every field of task. With render set, description
// and criteria are rendered as Markdown.
func FormatTaskDetail(w io.Writer, task service.Task, render bool) error {
	r, label, heading := stylesFor(w)

	description, criteria := task.Description, task.Criteria
	if render {
		var err error
		if description, err = renderMarkdown(r, description); err != nil {
			return err
		}
		if criteria, err = renderMarkdown(r, criteria); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, heading.Render(fmt.Sprintf("#%d %s", task.ID, normalizeTitle(task.Task))))
	writeFields(w, label, []field{
		{"Task", task.Task},
		{"Description", description},
		{"Criteria", criteria},
		{"Owner", task.OwnerUsername},
		{"Responsible", task.ResponsibleUsername},
		{"Estimate", strconv.Itoa(task.Estimate) + " days"},
		{"Category", task.CategoryItem},
		{"Status", statusName(task)},
		{"Created", FormatTimestamp(task.CreatedAt)},
		{"Updated", FormatTimestamp(task.UpdatedAt)},
	})
	return nil
}

// FormatIdentity writes the logged-in user, its profile image and the
// token expiry. A zero expires is omitted.
func FormatIdentity(w io.Writer, u service.User, profile *service.Profile, expires time.Time) {
	_, label, _ := stylesFor(w)

	fields := []field{
		{"User", u.Username},
		{"ID", strconv.Itoa(u.ID)},
	}
	if profile != nil {
		img := "(none)"
		if profile.Img != nil {
			img = *profile.Img
		}
		fields = append(fields, field{"Profile", strconv.Itoa(profile.ID)}, field{"Avatar", img})
	}
	if !expires.IsZero() {
		fields = append(fields, field{"Expires", expires.Local().Format("2006-01-02 15:04")})
	}
	writeFields(w, label, fields)
}

func renderMarkdown(r *lipgloss.Renderer, md string) (string, error) {
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}

	style := styles.NoTTYStyle
	if r.ColorProfile() != termenv.Ascii {
		style = styles.LightStyle
		if r.HasDarkBackground() {
			style = styles.DarkStyle
		}
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}
