package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/iksnae/procrastinator/internal"
)

// TasksPath is the task collection endpoint
const TasksPath = "/tasks"

// TaskService covers task CRUD
type TaskService struct {
	client *Client
	cache  *responseCache
}

func taskPath(id internal.ID) string {
	return TasksPath + "/" + url.PathEscape(id.String())
}

// List returns one page of tasks matching filters.
func (s *TaskService) List(ctx context.Context, filters internal.TaskFilters) (*internal.TasksResponse, error) {
	req := Request{Method: http.MethodGet, Path: TasksPath, Query: filters.Values()}

	var out internal.TasksResponse
	if err := s.client.call(ctx, req, &out); err != nil {
		if s.cache.fallback(req, &out, err) {
			return &out, nil
		}
		return nil, err
	}

	tags := make([]internal.Tag, 0, len(out.Tasks)+1)
	for _, t := range out.Tasks {
		tags = append(tags, internal.IDTag(internal.TagTask, t.ID))
	}
	tags = append(tags, internal.ListTag(internal.TagTask))
	s.cache.store(req, out, tags...)

	return &out, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id internal.ID) (*internal.Task, error) {
	req := Request{Method: http.MethodGet, Path: taskPath(id)}

	var task internal.Task
	resp, err := s.client.Do(ctx, req)
	if err != nil {
		if s.cache.fallback(req, &task, err) {
			return &task, nil
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Error(req)
	}
	if err := decodeEnvelope(resp.Body, "task", &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}

	s.cache.store(req, task, internal.IDTag(internal.TagTask, id))
	return &task, nil
}

// Create validates and creates a task.
func (s *TaskService) Create(ctx context.Context, in internal.CreateTaskRequest) (*internal.TaskResult, error) {
	if err := internal.Validate(in); err != nil {
		return nil, err
	}

	var out internal.TaskResult
	if err := s.client.call(ctx, Request{Method: http.MethodPost, Path: TasksPath, Body: in}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(internal.ListTag(internal.TagTask))
	return &out, nil
}

// Update validates and applies a partial update to task id.
func (s *TaskService) Update(ctx context.Context, id internal.ID, in internal.UpdateTaskRequest) (*internal.TaskResult, error) {
	if err := internal.Validate(in); err != nil {
		return nil, err
	}

	var out internal.TaskResult
	if err := s.client.call(ctx, Request{Method: http.MethodPut, Path: taskPath(id), Body: in}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(internal.IDTag(internal.TagTask, id), internal.ListTag(internal.TagTask))
	return &out, nil
}

// Delete removes task id.
func (s *TaskService) Delete(ctx context.Context, id internal.ID) (*internal.MessageResult, error) {
	var out internal.MessageResult
	if err := s.client.call(ctx, Request{Method: http.MethodDelete, Path: taskPath(id)}, &out); err != nil {
		return nil, err
	}
	s.cache.invalidate(internal.IDTag(internal.TagTask, id), internal.ListTag(internal.TagTask))
	return &out, nil
}
