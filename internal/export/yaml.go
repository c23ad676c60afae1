package export

import (
	"io"

	"github.com/iksnae/procrastinator/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports tasks in YAML format
type YAMLExporter struct{}

// Export exports tasks as a YAML sequence
func (e *YAMLExporter) Export(tasks []internal.Task, w io.Writer) error {
	if tasks == nil {
		tasks = []internal.Task{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(tasks)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
