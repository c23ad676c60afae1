package export

import (
	"testing"

	"github.com/iksnae/procrastinator/internal"
	"github.com/iksnae/procrastinator/testutil"
)

// loadTasks reads the API-shaped task list in testdata/tasks.json
func loadTasks(t *testing.T) []internal.Task {
	t.Helper()
	var tasks []internal.Task
	testutil.JSONUnmarshal(t, testutil.LoadFixture(t, "tasks.json"), &tasks)
	return tasks
}
