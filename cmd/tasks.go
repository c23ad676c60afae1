package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/procrastinator/internal"
	"github.com/iksnae/procrastinator/internal/export"
	"github.com/spf13/cobra"
)

var (
	taskFilters internal.TaskFilters
	taskJSON    bool

	taskTitle       string
	taskDescription string
	taskDue         string
	taskStatus      string
	taskCategory    string

	exportFormat string
	exportOutput string
)

// exportPageSize is the page size used when export walks every page
const exportPageSize = 100

var tasksCmd = &cobra.Command{
	Use:     "tasks",
	Aliases: []string{"task"},
	Short:   "List and manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		var res *internal.TasksResponse
		err := a.run(cmd.Context(), "Loading tasks", func() error {
			var err error
			res, err = a.services.Tasks.List(cmd.Context(), taskFilters)
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}
		if taskJSON {
			return writeJSON(cmd.OutOrStdout(), res)
		}
		renderTasks(cmd.OutOrStdout(), res, time.Now())
		return nil
	}),
}

var tasksShowCmd = &cobra.Command{
	Use:   "show <task-id>",
	Short: "Show one task",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		var task *internal.Task
		err := a.run(cmd.Context(), "Loading task", func() error {
			var err error
			task, err = a.services.Tasks.Get(cmd.Context(), internal.ID(args[0]))
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}
		if taskJSON {
			return writeJSON(cmd.OutOrStdout(), task)
		}
		renderTask(cmd.OutOrStdout(), task, time.Now())
		return nil
	}),
}

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		req := internal.CreateTaskRequest{
			Title:       taskTitle,
			Description: taskDescription,
			DueDate:     taskDue,
			Status:      taskStatus,
		}
		if taskCategory != "" {
			id := internal.ID(taskCategory)
			req.CategoryID = &id
		}

		var res *internal.TaskResult
		err := a.run(cmd.Context(), "Creating task", func() error {
			var err error
			res, err = a.services.Tasks.Create(cmd.Context(), req)
			return err
		})
		if err := a.report(internal.ActionCreateTask, err); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render("ID:"), res.Task.ID)
		return nil
	}),
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update the given fields of a task",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		req := updateTaskRequest(cmd)
		err := a.run(cmd.Context(), "Updating task", func() error {
			_, err := a.services.Tasks.Update(cmd.Context(), internal.ID(args[0]), req)
			return err
		})
		return a.report(internal.ActionUpdateTask, err)
	}),
}

// updateTaskRequest sends only the flags that were set.
func updateTaskRequest(cmd *cobra.Command) internal.UpdateTaskRequest {
	var req internal.UpdateTaskRequest
	flags := cmd.Flags()
	if flags.Changed("title") {
		req.Title = &taskTitle
	}
	if flags.Changed("description") {
		req.Description = &taskDescription
	}
	if flags.Changed("due") {
		req.DueDate = &taskDue
	}
	if flags.Changed("status") {
		req.Status = &taskStatus
	}
	if flags.Changed("category") {
		id := internal.ID(taskCategory)
		req.CategoryID = &id
	}
	return req
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		err := a.run(cmd.Context(), "Deleting task", func() error {
			_, err := a.services.Tasks.Delete(cmd.Context(), internal.ID(args[0]))
			return err
		})
		return a.report(internal.ActionDeleteTask, err)
	}),
}

var tasksExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to a file",
	Long: `Export every task matching the list filters in one of the supported
formats (jsonl, md, yaml, json). Without --output the export is written to stdout.`,
	RunE: withSession(func(cmd *cobra.Command, a *app, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		var tasks []internal.Task
		err = a.run(cmd.Context(), "Collecting tasks", func() error {
			var err error
			tasks, err = allTasks(cmd.Context(), a, taskFilters)
			return err
		})
		if err != nil {
			return a.report(internal.ActionLoad, err)
		}

		if exportOutput == "" {
			return exporter.Export(tasks, cmd.OutOrStdout())
		}

		path := exportOutput
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, "tasks."+exporter.Extension())
		}
		f, err := os.Create(path)
		if err != nil {
			return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
		}
		defer func() { _ = f.Close() }()

		if err := exporter.Export(tasks, f); err != nil {
			return &internal.ExportError{Format: exportFormat, Path: path, Err: err}
		}
		a.printer.Success(fmt.Sprintf("Exported %d task(s) to %s", len(tasks), path))
		return nil
	}),
}

// allTasks walks every page of the listing for filters.
func allTasks(ctx context.Context, a *app, filters internal.TaskFilters) ([]internal.Task, error) {
	filters.Limit = exportPageSize
	var tasks []internal.Task
	for page := 1; ; page++ {
		filters.Page = page
		res, err := a.services.Tasks.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, res.Tasks...)
		if !res.Pagination.HasNext || len(res.Tasks) == 0 {
			return tasks, nil
		}
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd, tasksCreateCmd, tasksUpdateCmd, tasksDeleteCmd, tasksExportCmd)

	for _, c := range []*cobra.Command{tasksListCmd, tasksExportCmd} {
		c.Flags().StringVar(&taskFilters.Status, "status", "", "Filter by status (pending, in_progress, completed, cancelled)")
		c.Flags().StringVar((*string)(&taskFilters.CategoryID), "category", "", "Filter by category ID")
		c.Flags().StringVar(&taskFilters.Search, "search", "", "Search titles and descriptions")
		c.Flags().StringVar(&taskFilters.Sort, "sort", "", "Sort order understood by the server")
	}
	tasksListCmd.Flags().IntVar(&taskFilters.Page, "page", 0, "Page number")
	tasksListCmd.Flags().IntVar(&taskFilters.Limit, "limit", 0, "Tasks per page")
	tasksListCmd.Flags().BoolVar(&taskJSON, "json", false, "Print raw JSON")
	tasksShowCmd.Flags().BoolVar(&taskJSON, "json", false, "Print raw JSON")

	for _, c := range []*cobra.Command{tasksCreateCmd, tasksUpdateCmd} {
		c.Flags().StringVarP(&taskTitle, "title", "t", "", "Task title")
		c.Flags().StringVarP(&taskDescription, "description", "d", "", "Task description")
		c.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD)")
		c.Flags().StringVar(&taskStatus, "status", "", "Status (pending, in_progress, completed, cancelled)")
		c.Flags().StringVarP(&taskCategory, "category", "c", "", "Category ID")
	}

	tasksExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	tasksExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file or directory (default stdout)")
}
