package internal

import (
	"errors"
	"net/http"
	"strings"
)

// NotificationKind classifies a user-facing message
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyInfo    NotificationKind = "info"
)

// Notification is a short user-facing message
type Notification struct {
	Kind  NotificationKind
	Title string
	Text  string
}

// Action names the user operation a notification reports on
type Action string

const (
	ActionLogin          Action = "login"
	ActionRegister       Action = "register"
	ActionLogout         Action = "logout"
	ActionRefresh        Action = "refresh"
	ActionLoad           Action = "load"
	ActionCreateTask     Action = "create-task"
	ActionUpdateTask     Action = "update-task"
	ActionDeleteTask     Action = "delete-task"
	ActionCreateCategory Action = "create-category"
	ActionUpdateCategory Action = "update-category"
	ActionDeleteCategory Action = "delete-category"
)

const (
	msgTryAgain       = "Please try again"
	msgUnexpected     = "An unexpected error occurred. Please try again."
	msgCheckInfo      = "Please check your information and try again."
	msgBadCredentials = "Invalid credentials. Please try again."
)

var successNotifications = map[Action]Notification{
	ActionLogin:          {NotifySuccess, "Logged In", "Welcome back!"},
	ActionRegister:       {NotifySuccess, "Success!", "Account created successfully. Welcome to Procrastinator!"},
	ActionLogout:         {NotifySuccess, "Logged Out Successfully", "You have been successfully logged out."},
	ActionRefresh:        {NotifySuccess, "Session Renewed", "Your session has been refreshed"},
	ActionCreateTask:     {NotifySuccess, "Task Created", "New task has been created successfully"},
	ActionUpdateTask:     {NotifySuccess, "Task Updated", "Task has been updated successfully"},
	ActionDeleteTask:     {NotifySuccess, "Task Deleted", "Task has been deleted successfully"},
	ActionCreateCategory: {NotifySuccess, "Category Created", "New category has been created successfully"},
	ActionUpdateCategory: {NotifySuccess, "Category Updated", "Category has been updated successfully"},
	ActionDeleteCategory: {NotifySuccess, "Category Deleted", "Category has been deleted successfully"},
}

var failureTitles = map[Action]string{
	ActionLogin:          "Login Failed",
	ActionRegister:       "Registration Failed",
	ActionRefresh:        "Session Expired",
	ActionLoad:           "Load Failed",
	ActionCreateTask:     "Creation Failed",
	ActionUpdateTask:     "Update Failed",
	ActionDeleteTask:     "Delete Failed",
	ActionCreateCategory: "Creation Failed",
	ActionUpdateCategory: "Update Failed",
	ActionDeleteCategory: "Delete Failed",
}

var (
	sessionExpired = Notification{NotifyError, "Session Expired", "Please log in again"}
	networkFailure = Notification{NotifyError, "Network Error", "Please check your connection and try again"}
	serverFailure  = Notification{NotifyError, "Server Error", "Something went wrong on our end. Please try again later."}
)

// NotificationFor maps the outcome of action to a user-facing message.
// A nil err yields the action's success message.
func NotificationFor(action Action, err error) Notification {
	if err == nil {
		if n, ok := successNotifications[action]; ok {
			return n
		}
		return Notification{Kind: NotifySuccess, Title: "Done"}
	}

	// Local state is always cleared, so a failed logout is still a logout.
	if action == ActionLogout {
		return Notification{NotifyInfo, "Logged Out", "You have been logged out locally."}
	}

	var (
		verrs  ValidationErrors
		apiErr *APIError
		netErr *NetworkError
	)
	switch {
	case errors.As(err, &verrs):
		return Notification{NotifyError, "Validation Error", strings.Join(uniqueMessages(verrs), "\n")}
	case errors.Is(err, ErrNotAuthenticated):
		return Notification{NotifyError, "Not Logged In", "Please log in to continue"}
	case errors.Is(err, ErrNoRefreshToken), errors.Is(err, ErrMissingAccessToken):
		return sessionExpired
	case errors.As(err, &netErr):
		return networkFailure
	case errors.As(err, &apiErr):
		return apiNotification(action, apiErr)
	}

	return Notification{NotifyError, failureTitle(action), msgUnexpected}
}

func apiNotification(action Action, err *APIError) Notification {
	if err.IsServerError() {
		return serverFailure
	}

	switch action {
	case ActionLogin:
		if err.Status == http.StatusUnauthorized || err.Status == http.StatusBadRequest {
			return Notification{NotifyError, "Error", msgBadCredentials}
		}
	case ActionRegister:
		switch {
		case err.Message != "" && strings.Contains(strings.ToLower(err.Message), "email"):
			return Notification{NotifyError, "Email Error", err.Message}
		case err.Message != "":
			return Notification{NotifyError, "Registration Failed", err.Message}
		default:
			return Notification{NotifyError, "Registration Failed", msgCheckInfo}
		}
	case ActionRefresh:
		return sessionExpired
	}

	if err.IsUnauthorized() {
		return sessionExpired
	}
	if err.Message != "" {
		return Notification{NotifyError, failureTitle(action), err.Message}
	}
	if err.IsClientError() {
		return Notification{NotifyError, failureTitle(action), msgTryAgain}
	}
	return Notification{NotifyError, failureTitle(action), msgUnexpected}
}

func failureTitle(action Action) string {
	if title, ok := failureTitles[action]; ok {
		return title
	}
	return "Error"
}

func uniqueMessages(verrs ValidationErrors) []string {
	seen := make(map[string]bool, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if seen[fe.Message] {
			continue
		}
		seen[fe.Message] = true
		msgs = append(msgs, fe.Message)
	}
	return msgs
}
