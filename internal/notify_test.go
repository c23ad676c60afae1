package internal

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotificationFor(t *testing.T) {
	tests := []struct {
		name      string
		action    Action
		err       error
		wantKind  NotificationKind
		wantTitle string
		wantText  string
	}{
		{
			name:      "task created",
			action:    ActionCreateTask,
			wantKind:  NotifySuccess,
			wantTitle: "Task Created",
			wantText:  "New task has been created successfully",
		},
		{
			name:      "validation",
			action:    ActionLogin,
			err:       ValidationErrors{{Field: "email", Rule: "required", Message: "Please fill in all fields"}, {Field: "password", Rule: "required", Message: "Please fill in all fields"}},
			wantKind:  NotifyError,
			wantTitle: "Validation Error",
			wantText:  "Please fill in all fields",
		},
		{
			name:      "bad login",
			action:    ActionLogin,
			err:       &APIError{Status: 401, Message: "Invalid email or password"},
			wantKind:  NotifyError,
			wantTitle: "Error",
			wantText:  "Invalid credentials. Please try again.",
		},
		{
			name:      "register duplicate email",
			action:    ActionRegister,
			err:       &APIError{Status: 409, Message: "Email already exists"},
			wantKind:  NotifyError,
			wantTitle: "Email Error",
			wantText:  "Email already exists",
		},
		{
			name:      "register other 4xx without message",
			action:    ActionRegister,
			err:       &APIError{Status: 400},
			wantKind:  NotifyError,
			wantTitle: "Registration Failed",
			wantText:  "Please check your information and try again.",
		},
		{
			name:      "server error",
			action:    ActionUpdateTask,
			err:       &APIError{Status: 503},
			wantKind:  NotifyError,
			wantTitle: "Server Error",
			wantText:  "Something went wrong on our end. Please try again later.",
		},
		{
			name:      "session expired after failed recovery",
			action:    ActionLoad,
			err:       &APIError{Status: 401},
			wantKind:  NotifyError,
			wantTitle: "Session Expired",
			wantText:  "Please log in again",
		},
		{
			name:      "4xx message passed through",
			action:    ActionDeleteCategory,
			err:       &APIError{Status: 400, Message: "Category has tasks"},
			wantKind:  NotifyError,
			wantTitle: "Delete Failed",
			wantText:  "Category has tasks",
		},
		{
			name:      "4xx without message",
			action:    ActionCreateTask,
			err:       &APIError{Status: 404},
			wantKind:  NotifyError,
			wantTitle: "Creation Failed",
			wantText:  "Please try again",
		},
		{
			name:      "network",
			action:    ActionCreateCategory,
			err:       fmt.Errorf("create: %w", &NetworkError{Method: "POST", Path: "/categories", Err: errors.New("refused")}),
			wantKind:  NotifyError,
			wantTitle: "Network Error",
			wantText:  "Please check your connection and try again",
		},
		{
			name:      "manual refresh without token",
			action:    ActionRefresh,
			err:       ErrNoRefreshToken,
			wantKind:  NotifyError,
			wantTitle: "Session Expired",
			wantText:  "Please log in again",
		},
		{
			name:      "logout remote failure",
			action:    ActionLogout,
			err:       &APIError{Status: 500},
			wantKind:  NotifyInfo,
			wantTitle: "Logged Out",
			wantText:  "You have been logged out locally.",
		},
		{
			name:      "unknown error",
			action:    ActionRegister,
			err:       errors.New("boom"),
			wantKind:  NotifyError,
			wantTitle: "Registration Failed",
			wantText:  "An unexpected error occurred. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NotificationFor(tt.action, tt.err)
			if got.Kind != tt.wantKind || got.Title != tt.wantTitle || got.Text != tt.wantText {
				t.Errorf("NotificationFor() = %+v, want {%s %q %q}", got, tt.wantKind, tt.wantTitle, tt.wantText)
			}
		})
	}
}
