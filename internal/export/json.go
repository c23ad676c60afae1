package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/procrastinator/internal"
)

// JSONExporter exports tasks as one pretty-printed JSON array
type JSONExporter struct{}

// Export writes tasks as a JSON array. A nil slice is written as [].
func (e *JSONExporter) Export(tasks []internal.Task, w io.Writer) error {
	if tasks == nil {
		tasks = []internal.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(tasks)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
