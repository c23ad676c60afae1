package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/procrastinator/internal"
)

// MarkdownExporter exports tasks as a Markdown checklist
type MarkdownExporter struct{}

// Export writes tasks as a Markdown checklist, one section per task
func (e *MarkdownExporter) Export(tasks []internal.Task, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Tasks\n\n")
	_, _ = fmt.Fprintf(w, "**Total:** %d\n\n", len(tasks))

	if len(tasks) == 0 {
		_, _ = fmt.Fprintf(w, "_No tasks._\n")
		return nil
	}

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, task := range tasks {
		_, _ = fmt.Fprintf(w, "## %s %s\n\n", checkbox(task.Status), escapeMarkdown(task.Title))
		_, _ = fmt.Fprintf(w, "**Status:** %s  \n", task.Status)
		if task.DueDate != "" {
			_, _ = fmt.Fprintf(w, "**Due:** %s  \n", task.DueDate)
		}
		if task.Category != nil {
			_, _ = fmt.Fprintf(w, "**Category:** %s (%s)  \n", task.Category.Name, task.Category.Color)
		}
		_, _ = fmt.Fprintf(w, "**ID:** %s\n\n", task.ID)

		if task.Description != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(task.Description))
		}

		if i < len(tasks)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func checkbox(status internal.TaskStatus) string {
	switch status {
	case internal.TaskCompleted:
		return "[x]"
	case internal.TaskCancelled:
		return "[-]"
	default:
		return "[ ]"
	}
}

// escapeMarkdown escapes markdown emphasis outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
