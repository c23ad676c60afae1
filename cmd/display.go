package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/procrastinator/internal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
)

var statusStyles = map[internal.TaskStatus]lipgloss.Style{
	internal.TaskPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	internal.TaskInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	internal.TaskCompleted:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	internal.TaskCancelled:  lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true),
}

func renderStatus(s internal.TaskStatus) string {
	label := strings.ReplaceAll(string(s), "_", " ")
	if style, ok := statusStyles[s]; ok {
		return style.Render(label)
	}
	return label
}

// swatch renders the category name in its own color.
func swatch(name, color string) string {
	if !internal.IsHexColor(color) {
		return name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("● ") + name
}

func truncate(s string, max int) string {
	if len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

// formatDue renders a due date relative to now.
func formatDue(due string, now time.Time) string {
	if due == "" {
		return dateStyle.Render("—")
	}
	t, err := time.Parse("2006-01-02", due)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, due); err != nil {
			return dateStyle.Render(due)
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(today).Hours() / 24)
	switch {
	case days < 0:
		return failStyle.Render(day.Format("Jan 02") + " (overdue)")
	case days == 0:
		return warnStyle.Render("Today")
	case days == 1:
		return dateStyle.Render("Tomorrow")
	case days < 7:
		return dateStyle.Render(day.Format("Mon"))
	case days < 365:
		return dateStyle.Render(day.Format("Jan 02"))
	default:
		return dateStyle.Render(day.Format("2006-01-02"))
	}
}

func renderTasks(out io.Writer, res *internal.TasksResponse, now time.Time) {
	if len(res.Tasks) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("📋 No tasks found"))
		return
	}

	p := res.Pagination
	header := fmt.Sprintf("📋 %d task(s)", p.Total)
	if p.TotalPages > 1 {
		header += fmt.Sprintf(", page %d of %d", p.Page, p.TotalPages)
	}
	_, _ = fmt.Fprintln(out, headerStyle.Render(header))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Status")+"\t"+titleStyle.Render("Due")+"\t"+titleStyle.Render("Category")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, t := range res.Tasks {
		category := dateStyle.Render("—")
		if t.Category != nil {
			category = swatch(t.Category.Name, t.Category.Color)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(t.ID.String()),
			truncate(t.Title, 40),
			renderStatus(t.Status),
			formatDue(t.DueDate, now),
			category,
		)
	}
	_ = w.Flush()

	if p.HasNext {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, idStyle.Render(fmt.Sprintf("💡 Tip: more tasks with --page %d", p.Page+1)))
	}
}

func renderTask(out io.Writer, t *internal.Task, now time.Time) {
	_, _ = fmt.Fprintln(out, headerStyle.Render(t.Title))
	_, _ = fmt.Fprintln(out)
	field := func(label, value string) {
		_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
	}
	field("ID", t.ID.String())
	field("Status", renderStatus(t.Status))
	field("Due", formatDue(t.DueDate, now))
	if t.Category != nil {
		field("Category", swatch(t.Category.Name, t.Category.Color))
	}
	if t.CreatedAt != "" {
		field("Created", dateStyle.Render(t.CreatedAt))
	}
	if t.UpdatedAt != "" {
		field("Updated", dateStyle.Render(t.UpdatedAt))
	}
	if t.Description != "" {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, t.Description)
	}
}

func renderCategories(out io.Writer, categories []internal.Category) {
	if len(categories) == 0 {
		_, _ = fmt.Fprintln(out, headerStyle.Render("🏷  No categories found"))
		return
	}

	_, _ = fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🏷  %d categor%s", len(categories), plural(len(categories), "y", "ies"))))
	_, _ = fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Name")+"\t"+titleStyle.Render("Color")+"\t"+titleStyle.Render("Tasks")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 60))
	for _, c := range categories {
		tasks := dateStyle.Render("—")
		if c.Count != nil {
			tasks = countStyle.Render(fmt.Sprint(c.Count.Tasks))
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", idStyle.Render(c.ID.String()), swatch(truncate(c.Name, 30), c.Color), c.Color, tasks)
	}
	_ = w.Flush()
}

func renderCategory(out io.Writer, c *internal.Category) {
	_, _ = fmt.Fprintln(out, headerStyle.Render(swatch(c.Name, c.Color)))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("ID:        "), c.ID)
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Color:     "), c.Color)
	if c.Count != nil {
		_, _ = fmt.Fprintf(out, "%s %d\n", labelStyle.Render("Tasks:     "), c.Count.Tasks)
	}
}

func renderUser(out io.Writer, u *internal.User) {
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Name: "), u.Name)
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("Email:"), u.Email)
	_, _ = fmt.Fprintf(out, "%s %s\n", labelStyle.Render("ID:   "), u.ID)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
