package internal

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ID is an opaque identifier issued by the API. The API sends numbers, but
// strings are accepted as well; numeric IDs are written back as numbers.
type ID string

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid id %s: %w", b, err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes numeric IDs as JSON numbers.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// MarshalYAML keeps numeric IDs unquoted in YAML output.
func (id ID) MarshalYAML() (interface{}, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return n, nil
	}
	return string(id), nil
}

func (id ID) String() string { return string(id) }

func (id ID) numeric() bool {
	_, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil
}

// User is the identity payload returned by the auth endpoints
type User struct {
	ID    ID     `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name" yaml:"name"`
}

// TokenPair holds the access and refresh tokens issued by the API
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TaskStatus is the lifecycle state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskCancelled}

// TaskCategory is the category summary embedded in a task
type TaskCategory struct {
	ID    ID     `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Task represents a to-do item
type Task struct {
	ID          ID            `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	DueDate     string        `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Status      TaskStatus    `json:"status" yaml:"status"`
	CategoryID  *ID           `json:"category_id,omitempty" yaml:"category_id,omitempty"`
	UserID      ID            `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	CreatedAt   string        `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   string        `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Category    *TaskCategory `json:"category,omitempty" yaml:"category,omitempty"`
}

// Pagination describes one page of a task listing
type Pagination struct {
	Page       int  `json:"page" yaml:"page"`
	Limit      int  `json:"limit" yaml:"limit"`
	Total      int  `json:"total" yaml:"total"`
	TotalPages int  `json:"totalPages" yaml:"total_pages"`
	HasNext    bool `json:"hasNext" yaml:"has_next"`
	HasPrev    bool `json:"hasPrev" yaml:"has_prev"`
}

// TasksResponse is the body of GET /tasks
type TasksResponse struct {
	Tasks      []Task     `json:"tasks" yaml:"tasks"`
	Pagination Pagination `json:"pagination" yaml:"pagination"`
}

// TaskFilters are the optional query parameters of GET /tasks
type TaskFilters struct {
	Page       int
	Limit      int
	Status     string
	CategoryID ID
	Search     string
	Sort       string
}

// Values encodes only the filters that are set.
func (f TaskFilters) Values() url.Values {
	v := url.Values{}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.CategoryID != "" {
		v.Set("category_id", f.CategoryID.String())
	}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.Sort != "" {
		v.Set("sort", f.Sort)
	}
	return v
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty" validate:"omitempty,duedate"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	CategoryID  *ID    `json:"category_id,omitempty"`
}

// UpdateTaskRequest is the body of PUT /tasks/:id; nil fields are left untouched
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,notblank"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,duedate"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed cancelled"`
	CategoryID  *ID     `json:"category_id,omitempty"`
}

// TaskResult is the body returned by task create and update
type TaskResult struct {
	Message string `json:"message"`
	Task    Task   `json:"task"`
}

// CategoryCount carries aggregate counts attached to a category
type CategoryCount struct {
	Tasks int `json:"tasks" yaml:"tasks"`
}

// Category groups tasks under a name and a color
type Category struct {
	ID        ID             `json:"id" yaml:"id"`
	Name      string         `json:"name" yaml:"name"`
	Color     string         `json:"color" yaml:"color"`
	UserID    ID             `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	CreatedAt string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt string         `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Count     *CategoryCount `json:"_count,omitempty" yaml:"count,omitempty"`
}

// CreateCategoryRequest is the body of POST /categories
type CreateCategoryRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Color string `json:"color" validate:"required,hexcolor6"`
}

// UpdateCategoryRequest is the body of PUT /categories/:id
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,notblank"`
	Color *string `json:"color,omitempty" validate:"omitempty,hexcolor6"`
}

// CategoryResult is the body returned by category create and update
type CategoryResult struct {
	Message  string   `json:"message"`
	Category Category `json:"category"`
}

// MessageResult is the body returned by deletes and logout
type MessageResult struct {
	Message string `json:"message"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register. ConfirmPassword is
// checked locally and never sent.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=50"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"-" form:"confirm_password" validate:"required,eqfield=Password"`
}

// AuthResult is what login and register yield once the response is parsed
type AuthResult struct {
	Tokens TokenPair
	User   *User
}
