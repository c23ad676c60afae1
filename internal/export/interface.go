package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/procrastinator/internal"
)

// Exporter writes a task list in one output format
type Exporter interface {
	Export(tasks []internal.Task, w io.Writer) error
	Extension() string
}

// Formats lists the format names accepted by NewExporter, aliases excluded.
var Formats = []string{"jsonl", "md", "yaml", "json"}

// UnsupportedFormatError is returned by NewExporter for an unknown format
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %q (supported: %s)", e.Format, strings.Join(Formats, ", "))
}

// NewExporter returns the exporter for format. Names are case-insensitive.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jsonl", "ndjson":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, &UnsupportedFormatError{Format: format}
	}
}
