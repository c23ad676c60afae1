package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iksnae/procrastinator/internal"
)

func strPtr(s string) *string { return &s }

func TestAuthLogin(t *testing.T) {
	h := newHarness(t)
	h.api.AddUser("ann@example.com", "secret", "Ann")

	res, err := h.services.Auth.Login(context.Background(), internal.LoginRequest{Email: "ann@example.com", Password: "secret"})
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "Ann", res.User.Name)
	assert.NotEmpty(t, res.Tokens.AccessToken)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	assert.Equal(t, res.Tokens.AccessToken, h.get(t, internal.KeyAccessToken))
	assert.Equal(t, res.Tokens.RefreshToken, h.get(t, internal.KeyRefreshToken))
	assert.JSONEq(t, `{"id":1,"email":"ann@example.com","name":"Ann"}`, h.get(t, internal.KeyUser))
	assert.True(t, h.session.IsAuthenticated())

	reqs := h.api.RequestsTo(http.MethodPost, LoginPath)
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)
}

func TestAuthLoginFailures(t *testing.T) {
	tests := []struct {
		name       string
		req        internal.LoginRequest
		wantStatus int
		wantValid  bool
	}{
		{name: "missing fields", req: internal.LoginRequest{}, wantValid: true},
		{name: "bad email", req: internal.LoginRequest{Email: "ann", Password: "x"}, wantValid: true},
		{name: "wrong password", req: internal.LoginRequest{Email: "ann@example.com", Password: "nope"}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.api.AddUser("ann@example.com", "secret", "Ann")

			_, err := h.services.Auth.Login(context.Background(), tt.req)
			require.Error(t, err)

			if tt.wantValid {
				var verrs internal.ValidationErrors
				assert.True(t, errors.As(err, &verrs))
				assert.Empty(t, h.api.Requests())
			} else {
				var apiErr *internal.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, tt.wantStatus, apiErr.Status)
				assert.Equal(t, "Invalid email or password", apiErr.Message)
				assert.Zero(t, h.api.RefreshCalls())
			}
			assert.Zero(t, h.store.Len())
			assert.False(t, h.session.IsAuthenticated())
		})
	}
}

func TestAuthLoginReplacesPreviousCredentials(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.api.AddUser("bob@example.com", "hunter2", "Bob")
	h.api.OmitFromAuth("refreshToken")

	res, err := h.services.Auth.Login(context.Background(), internal.LoginRequest{Email: "bob@example.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", res.User.Name)

	assert.Equal(t, res.Tokens.AccessToken, h.get(t, internal.KeyAccessToken))
	assert.Empty(t, h.get(t, internal.KeyRefreshToken))
	assert.Equal(t, "Bob", h.session.User().Name)
}

func TestAuthLoginWithoutUserInResponse(t *testing.T) {
	tests := []struct {
		name          string
		profileStatus int
		wantErr       bool
	}{
		{name: "profile fetched", wantErr: false},
		{name: "profile fails", profileStatus: http.StatusInternalServerError, wantErr: true},
		{name: "profile rejected", profileStatus: http.StatusUnauthorized, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.signIn(t)
			h.api.AddUser("bob@example.com", "hunter2", "Bob")
			h.api.OmitFromAuth("user")
			if tt.profileStatus != 0 {
				h.api.FailProfile(tt.profileStatus)
			}

			res, err := h.services.Auth.Login(context.Background(), internal.LoginRequest{Email: "bob@example.com", Password: "hunter2"})
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "Bob", res.User.Name)
				assert.Equal(t, "Bob", h.session.User().Name)
				assert.Contains(t, h.get(t, internal.KeyUser), "bob@example.com")
				return
			}

			require.Error(t, err)
			assert.Zero(t, h.store.Len())
			assert.False(t, h.session.IsAuthenticated())
			assert.Zero(t, h.api.RefreshCalls())
		})
	}
}

func TestAuthRegister(t *testing.T) {
	h := newHarness(t)

	req := internal.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "pw", ConfirmPassword: "pw"}
	res, err := h.services.Auth.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", res.User.Email)
	assert.True(t, h.session.IsAuthenticated())
	assert.Equal(t, 3, h.store.Len())

	reqs := h.api.RequestsTo(http.MethodPost, RegisterPath)
	require.Len(t, reqs, 1)
	assert.NotContains(t, reqs[0].Body, "confirm")

	// registering the same email again is rejected by the server
	_, err = h.services.Auth.Register(context.Background(), req)
	var apiErr *internal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "User with this email already exists", apiErr.Message)
}

func TestAuthRegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)

	_, err := h.services.Auth.Register(context.Background(), internal.RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "pw", ConfirmPassword: "other",
	})
	var verrs internal.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	f, ok := verrs.Field("confirm_password")
	require.True(t, ok)
	assert.Equal(t, "Passwords must match", f.Message)
	assert.Empty(t, h.api.Requests())
}

func TestAuthLogout(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "server accepts"},
		{name: "server fails", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			_, _, refresh := h.signIn(t)
			h.api.FailLogout(tt.status)

			_, err := h.services.Tasks.List(context.Background(), internal.TaskFilters{})
			require.NoError(t, err)
			require.Equal(t, 1, h.cache.Len())

			err = h.services.Auth.Logout(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.Zero(t, h.store.Len())
			assert.False(t, h.session.IsAuthenticated())
			assert.True(t, h.session.IsInitialized())
			assert.Zero(t, h.cache.Len())

			reqs := h.api.RequestsTo(http.MethodPost, LogoutPath)
			require.Len(t, reqs, 1)
			assert.JSONEq(t, `{"refreshToken":"`+refresh+`"}`, reqs[0].Body)
		})
	}
}

func TestAuthLogoutOffline(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)
	h.api.Close()

	err := h.services.Auth.Logout(context.Background())
	var netErr *internal.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Zero(t, h.store.Len())
	assert.False(t, h.session.IsAuthenticated())
}

func TestAuthProfileAndValidate(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	user, err := h.services.Auth.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	ok, err := h.services.Auth.ValidateToken(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	h.api.ExpireAccessTokens()
	ok, err = h.services.Auth.ValidateToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, h.api.RefreshCalls())
	assert.True(t, h.session.IsAuthenticated())

	// the profile itself recovers through a refresh
	_, err = h.services.Auth.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, h.api.RefreshCalls())
}

func TestAuthValidateWithoutToken(t *testing.T) {
	h := newHarness(t)

	ok, err := h.services.Auth.ValidateToken(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, h.api.Requests())
}

func TestTaskCRUD(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	cat := h.api.AddCategory(u.ID, "Work", "#FF0000")
	h.api.AddTask(u.ID, "Existing", "pending", &cat.ID)
	ctx := context.Background()

	list, err := h.services.Tasks.List(ctx, internal.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	require.NotNil(t, list.Tasks[0].Category)
	assert.Equal(t, "Work", list.Tasks[0].Category.Name)
	assert.Equal(t, 1, list.Pagination.Total)

	catID := internal.ID(strconv.Itoa(cat.ID))
	created, err := h.services.Tasks.Create(ctx, internal.CreateTaskRequest{Title: "Write tests", DueDate: "2030-01-02", CategoryID: &catID})
	require.NoError(t, err)
	assert.Equal(t, "Write tests", created.Task.Title)
	assert.Equal(t, internal.TaskPending, created.Task.Status)
	assert.Equal(t, 2, h.api.TaskCount())

	got, err := h.services.Tasks.Get(ctx, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2030-01-02", got.DueDate)

	updated, err := h.services.Tasks.Update(ctx, created.Task.ID, internal.UpdateTaskRequest{Status: strPtr("completed")})
	require.NoError(t, err)
	assert.Equal(t, internal.TaskCompleted, updated.Task.Status)
	assert.Equal(t, "Write tests", updated.Task.Title)

	deleted, err := h.services.Tasks.Delete(ctx, created.Task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Task deleted successfully", deleted.Message)
	assert.Equal(t, 1, h.api.TaskCount())

	_, err = h.services.Tasks.Get(ctx, created.Task.ID)
	var apiErr *internal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestTaskListFilters(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	for i := 0; i < 5; i++ {
		h.api.AddTask(u.ID, "Task "+strconv.Itoa(i), "pending", nil)
	}
	h.api.AddTask(u.ID, "Done", "completed", nil)

	page, err := h.services.Tasks.List(context.Background(), internal.TaskFilters{Status: "pending", Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, 5, page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)
}

func TestTaskCreateValidation(t *testing.T) {
	h := newHarness(t)
	h.signIn(t)

	_, err := h.services.Tasks.Create(context.Background(), internal.CreateTaskRequest{Title: "   "})
	var verrs internal.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Title is required", verrs[0].Message)
	assert.Empty(t, h.api.Requests())
}

func TestTaskRequestsSurviveTokenExpiry(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	h.api.AddTask(u.ID, "One", "pending", nil)
	h.api.ExpireAccessTokens()

	list, err := h.services.Tasks.List(context.Background(), internal.TaskFilters{})
	require.NoError(t, err)
	assert.Len(t, list.Tasks, 1)
	assert.Equal(t, 1, h.api.RefreshCalls())
}

func TestCategoryCRUD(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	h.api.AddCategory(u.ID, "Home", "#00FF00")
	ctx := context.Background()

	list, err := h.services.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Count)

	created, err := h.services.Categories.Create(ctx, internal.CreateCategoryRequest{Name: "Work", Color: "#3366FF"})
	require.NoError(t, err)
	assert.Equal(t, "Category created successfully", created.Message)

	_, err = h.services.Categories.Create(ctx, internal.CreateCategoryRequest{Name: "work", Color: "#3366FF"})
	var apiErr *internal.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Category with this name already exists", apiErr.Message)

	got, err := h.services.Categories.Get(ctx, created.Category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", got.Name)

	updated, err := h.services.Categories.Update(ctx, created.Category.ID, internal.UpdateCategoryRequest{Color: strPtr("#000000")})
	require.NoError(t, err)
	assert.Equal(t, "#000000", updated.Category.Color)

	_, err = h.services.Categories.Delete(ctx, created.Category.ID)
	require.NoError(t, err)

	list, err = h.services.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCategoryValidation(t *testing.T) {
	tests := []struct {
		name string
		req  internal.CreateCategoryRequest
		want string
	}{
		{name: "blank name", req: internal.CreateCategoryRequest{Name: " ", Color: "#FFFFFF"}, want: "Category name is required"},
		{name: "bad color", req: internal.CreateCategoryRequest{Name: "Work", Color: "red"}, want: "Color must be a valid hex color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.signIn(t)

			_, err := h.services.Categories.Create(context.Background(), tt.req)
			var verrs internal.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.want, verrs[0].Message)
		})
	}
}

func TestCacheInvalidationByMutation(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	task := h.api.AddTask(u.ID, "One", "pending", nil)
	taskID := internal.ID(strconv.Itoa(task.ID))
	ctx := context.Background()

	_, err := h.services.Tasks.List(ctx, internal.TaskFilters{})
	require.NoError(t, err)
	_, err = h.services.Tasks.Get(ctx, taskID)
	require.NoError(t, err)
	_, err = h.services.Categories.List(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, h.cache.Len())

	// create only drops task lists
	_, err = h.services.Tasks.Create(ctx, internal.CreateTaskRequest{Title: "Two"})
	require.NoError(t, err)
	assert.Equal(t, 2, h.cache.Len())

	_, err = h.services.Tasks.List(ctx, internal.TaskFilters{})
	require.NoError(t, err)
	require.Equal(t, 3, h.cache.Len())

	// update drops the item and every list
	_, err = h.services.Tasks.Update(ctx, taskID, internal.UpdateTaskRequest{Title: strPtr("Uno")})
	require.NoError(t, err)
	assert.Equal(t, 1, h.cache.Len())

	// categories survive task mutations
	var cats []internal.Category
	hit, err := h.cache.Lookup(cacheKey(Request{Method: http.MethodGet, Path: CategoriesPath}), &cats)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestCacheFallbackWhenOffline(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	h.api.AddTask(u.ID, "Cached", "pending", nil)
	h.api.AddCategory(u.ID, "Home", "#00FF00")
	ctx := context.Background()

	_, err := h.services.Tasks.List(ctx, internal.TaskFilters{})
	require.NoError(t, err)
	_, err = h.services.Categories.List(ctx)
	require.NoError(t, err)
	_, err = h.services.Auth.Profile(ctx)
	require.NoError(t, err)

	h.api.Close()

	list, err := h.services.Tasks.List(ctx, internal.TaskFilters{})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)
	assert.Equal(t, "Cached", list.Tasks[0].Title)

	cats, err := h.services.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	user, err := h.services.Auth.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)

	// uncached queries still report the network failure
	_, err = h.services.Tasks.List(ctx, internal.TaskFilters{Status: "completed"})
	var netErr *internal.NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestServicesWithoutCache(t *testing.T) {
	h := newHarness(t)
	u, _, _ := h.signIn(t)
	h.api.AddTask(u.ID, "One", "pending", nil)
	services := NewServices(h.client, nil)

	_, err := services.Tasks.List(context.Background(), internal.TaskFilters{})
	require.NoError(t, err)
	_, err = services.Tasks.Create(context.Background(), internal.CreateTaskRequest{Title: "Two"})
	require.NoError(t, err)
	require.NoError(t, services.Auth.Logout(context.Background()))
	assert.Zero(t, h.cache.Len())
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		req  Request
		want string
	}{
		{Request{Method: http.MethodGet, Path: TasksPath}, "GET /tasks"},
		{Request{Method: http.MethodGet, Path: TasksPath, Query: internal.TaskFilters{Search: "milk"}.Values()}, "GET /tasks?search=milk"},
		{Request{Method: http.MethodGet, Path: categoryPath("7")}, "GET /categories/7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cacheKey(tt.req))
	}
}

func TestDecodeEnvelope(t *testing.T) {
	var u internal.User
	require.NoError(t, decodeEnvelope([]byte(`{"user":{"id":3,"email":"a@b.c"}}`), "user", &u))
	assert.Equal(t, internal.ID("3"), u.ID)

	var c internal.Category
	require.NoError(t, decodeEnvelope([]byte(`{"id":4,"name":"Work","color":"#FFFFFF"}`), "category", &c))
	assert.Equal(t, "Work", c.Name)

	var cs []internal.Category
	require.NoError(t, decodeEnvelope([]byte(`[{"id":1,"name":"A","color":"#000000"}]`), "categories", &cs))
	assert.Len(t, cs, 1)
}
