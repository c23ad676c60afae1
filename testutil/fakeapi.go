package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// FakeUser is a user account known to the fake API
type FakeUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	password string
}

// FakeCategoryRef is the category summary embedded in tasks
type FakeCategoryRef struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FakeTask is a task as the fake API serves it
type FakeTask struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	DueDate     string           `json:"due_date,omitempty"`
	Status      string           `json:"status"`
	CategoryID  *int             `json:"category_id,omitempty"`
	UserID      int              `json:"user_id"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Category    *FakeCategoryRef `json:"category,omitempty"`
}

// FakeCategory is a category as the fake API serves it
type FakeCategory struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	UserID    int    `json:"user_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Count     *struct {
		Tasks int `json:"tasks"`
	} `json:"_count,omitempty"`
}

// RecordedRequest is one request observed by the fake API
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	Body          string
}

// FakeAPI is an in-memory stand-in for the Procrastinator API, served by
// chi behind an httptest.Server under the /api prefix.
type FakeAPI struct {
	server *httptest.Server

	mu         sync.Mutex
	seq        int
	users      map[string]*FakeUser
	access     map[string]int
	refresh    map[string]int
	tasks      map[int]*FakeTask
	categories map[int]*FakeCategory
	requests   []RecordedRequest
	refreshes  int

	refreshField  string
	rotateRefresh bool
	refreshUser   bool
	refreshStatus int
	refreshBody   string
	refreshDelay  time.Duration
	logoutStatus  int
	profileStatus int
	rejectAll     bool
	omitFromAuth  []string
}

// NewFakeAPI starts a fake API that is shut down when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		users:        make(map[string]*FakeUser),
		access:       make(map[string]int),
		refresh:      make(map[string]int),
		tasks:        make(map[int]*FakeTask),
		categories:   make(map[int]*FakeCategory),
		refreshField: "token",
	}
	f.server = httptest.NewServer(f.router())
	t.Cleanup(f.server.Close)
	return f
}

// URL returns the API base URL, including the /api prefix.
func (f *FakeAPI) URL() string {
	return f.server.URL + "/api"
}

// Close stops the server; later requests fail at the network level.
func (f *FakeAPI) Close() {
	f.server.Close()
}

func (f *FakeAPI) router() http.Handler {
	root := chi.NewRouter()
	root.Use(f.record)

	api := chi.NewRouter()
	api.Post("/auth/login", f.login)
	api.Post("/auth/register", f.register)
	api.Post("/auth/refresh", f.refreshToken)

	api.Group(func(r chi.Router) {
		r.Use(f.authenticate)
		r.Post("/auth/logout", f.logout)
		r.Get("/auth/profile", f.profile)

		r.Get("/tasks", f.listTasks)
		r.Post("/tasks", f.createTask)
		r.Get("/tasks/{id}", f.getTask)
		r.Put("/tasks/{id}", f.updateTask)
		r.Delete("/tasks/{id}", f.deleteTask)

		r.Get("/categories", f.listCategories)
		r.Post("/categories", f.createCategory)
		r.Get("/categories/{id}", f.getCategory)
		r.Put("/categories/{id}", f.updateCategory)
		r.Delete("/categories/{id}", f.deleteCategory)
	})

	root.Mount("/api", api)
	return root
}

// --- configuration ---

// SetRefreshField names the field carrying the new access token in refresh responses.
func (f *FakeAPI) SetRefreshField(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshField = name
}

// SetRotateRefresh makes refresh responses issue a new refresh token.
func (f *FakeAPI) SetRotateRefresh(rotate bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotateRefresh = rotate
}

// SetRefreshUser makes refresh responses include the user.
func (f *FakeAPI) SetRefreshUser(include bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshUser = include
}

// FailRefresh makes every refresh respond with status. Zero restores normal behavior.
func (f *FakeAPI) FailRefresh(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshStatus = status
}

// SetRefreshBody makes every refresh respond 200 with body verbatim.
func (f *FakeAPI) SetRefreshBody(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshBody = body
}

// SetRefreshDelay slows refresh responses down.
func (f *FakeAPI) SetRefreshDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshDelay = d
}

// FailLogout makes logout respond with status. Zero restores normal behavior.
func (f *FakeAPI) FailLogout(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutStatus = status
}

// FailProfile makes the profile endpoint respond with status.
func (f *FakeAPI) FailProfile(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileStatus = status
}

// OmitFromAuth drops the named fields (for example "user" or "refreshToken")
// from login and register responses.
func (f *FakeAPI) OmitFromAuth(fields ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.omitFromAuth = fields
}

// authResponseLocked builds a login or register body for u.
func (f *FakeAPI) authResponseLocked(message string, u *FakeUser) map[string]interface{} {
	body := map[string]interface{}{
		"message":      message,
		"token":        f.issueAccessLocked(u.ID),
		"refreshToken": f.issueRefreshLocked(u.ID),
		"user":         u,
	}
	for _, field := range f.omitFromAuth {
		delete(body, field)
	}
	return body
}

// RejectAll makes every authenticated route answer 401 regardless of the token.
func (f *FakeAPI) RejectAll(reject bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejectAll = reject
}

// --- state helpers ---

// AddUser registers an account and returns it.
func (f *FakeAPI) AddUser(email, password, name string) FakeUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.addUserLocked(email, password, name)
}

func (f *FakeAPI) addUserLocked(email, password, name string) *FakeUser {
	f.seq++
	u := &FakeUser{ID: f.seq, Email: email, Name: name, password: password}
	f.users[strings.ToLower(email)] = u
	return u
}

// IssueTokens creates a valid access and refresh token for userID.
func (f *FakeAPI) IssueTokens(userID int) (access, refresh string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueAccessLocked(userID), f.issueRefreshLocked(userID)
}

func (f *FakeAPI) issueAccessLocked(userID int) string {
	f.seq++
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.Itoa(userID),
		"jti": strconv.Itoa(f.seq),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("fake-api"))
	if err != nil {
		panic(err)
	}
	f.access[signed] = userID
	return signed
}

func (f *FakeAPI) issueRefreshLocked(userID int) string {
	f.seq++
	token := fmt.Sprintf("refresh-%d-%d", userID, f.seq)
	f.refresh[token] = userID
	return token
}

// ExpireAccessTokens invalidates every issued access token.
func (f *FakeAPI) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]int)
}

// RevokeRefreshTokens invalidates every issued refresh token.
func (f *FakeAPI) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = make(map[string]int)
}

// AddCategory stores a category owned by userID.
func (f *FakeAPI) AddCategory(userID int, name, color string) FakeCategory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	c := &FakeCategory{ID: f.seq, Name: name, Color: color, UserID: userID, CreatedAt: now, UpdatedAt: now}
	f.categories[c.ID] = c
	return *c
}

// AddTask stores a task owned by userID.
func (f *FakeAPI) AddTask(userID int, title, status string, categoryID *int) FakeTask {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	t := &FakeTask{ID: f.seq, Title: title, Status: status, CategoryID: categoryID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	f.tasks[t.ID] = t
	return *f.withCategoryLocked(t)
}

// TaskCount returns the number of stored tasks.
func (f *FakeAPI) TaskCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// RefreshCalls returns how many refresh requests were received.
func (f *FakeAPI) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsTo returns the requests received for method and path (without /api).
func (f *FakeAPI) RequestsTo(method, path string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// --- middleware ---

func (f *FakeAPI) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, "/api"),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

type userKey struct{}

func withUser(r *http.Request, id int) context.Context {
	return context.WithValue(r.Context(), userKey{}, id)
}

func userFrom(r *http.Request) int {
	id, _ := r.Context().Value(userKey{}).(int)
	return id
}

func (f *FakeAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		f.mu.Lock()
		userID, ok := f.access[token]
		reject := f.rejectAll
		f.mu.Unlock()

		if !ok || reject {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r, userID)))
	})
}

// --- auth handlers ---

type credentialsBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f *FakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(in.Email)]
	if !ok || u.password != in.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, f.authResponseLocked("Login successful", u))
}

func (f *FakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var in credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name, email and password are required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[strings.ToLower(in.Email)]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User with this email already exists"})
		return
	}
	u := f.addUserLocked(in.Email, in.Password, in.Name)
	writeJSON(w, http.StatusCreated, f.authResponseLocked("User registered successfully", u))
}

func (f *FakeAPI) refreshToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.refreshes++
	delay := f.refreshDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.refreshStatus != 0 {
		writeJSON(w, f.refreshStatus, map[string]string{"message": "Refresh failed"})
		return
	}
	if f.refreshBody != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, f.refreshBody)
		return
	}

	userID, ok := f.refresh[in.RefreshToken]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid refresh token"})
		return
	}

	out := map[string]interface{}{f.refreshField: f.issueAccessLocked(userID)}
	if f.rotateRefresh {
		delete(f.refresh, in.RefreshToken)
		out["refreshToken"] = f.issueRefreshLocked(userID)
	}
	if f.refreshUser {
		out["user"] = f.userByIDLocked(userID)
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) logout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logoutStatus != 0 {
		writeJSON(w, f.logoutStatus, map[string]string{"message": "Logout failed"})
		return
	}
	delete(f.refresh, in.RefreshToken)
	delete(f.access, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (f *FakeAPI) profile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileStatus != 0 {
		writeJSON(w, f.profileStatus, map[string]string{"message": "Profile unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": f.userByIDLocked(userFrom(r))})
}

func (f *FakeAPI) userByIDLocked(id int) *FakeUser {
	for _, u := range f.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// --- task handlers ---

type taskBody struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status"`
	CategoryID  *int    `json:"category_id"`
}

func (f *FakeAPI) withCategoryLocked(t *FakeTask) *FakeTask {
	out := *t
	out.Category = nil
	if t.CategoryID != nil {
		if c, ok := f.categories[*t.CategoryID]; ok {
			out.Category = &FakeCategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
		}
	}
	return &out
}

func (f *FakeAPI) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	limit := atoiDefault(q.Get("limit"), 10)
	status := q.Get("status")
	categoryID := q.Get("category_id")
	search := strings.ToLower(q.Get("search"))
	userID := userFrom(r)

	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*FakeTask
	for _, t := range f.tasks {
		if t.UserID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		if categoryID != "" && (t.CategoryID == nil || strconv.Itoa(*t.CategoryID) != categoryID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title+" "+t.Description), search) {
			continue
		}
		matched = append(matched, f.withCategoryLocked(t))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": append([]*FakeTask{}, matched[start:end]...),
		"pagination": map[string]interface{}{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
			"hasNext":    page < totalPages,
			"hasPrev":    page > 1,
		},
	})
}

func (f *FakeAPI) ownedTaskLocked(w http.ResponseWriter, r *http.Request) (*FakeTask, bool) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	t, ok := f.tasks[id]
	if !ok || t.UserID != userFrom(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Task not found"})
		return nil, false
	}
	return t, true
}

func (f *FakeAPI) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.ownedTaskLocked(w, r); ok {
		writeJSON(w, http.StatusOK, f.withCategoryLocked(t))
	}
}

func (f *FakeAPI) createTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Title is required"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	t := &FakeTask{ID: f.seq, Title: *in.Title, Status: "pending", UserID: userFrom(r), CreatedAt: now, UpdatedAt: now}
	applyTask(t, in)
	f.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Task created successfully", "task": f.withCategoryLocked(t)})
}

func (f *FakeAPI) updateTask(w http.ResponseWriter, r *http.Request) {
	var in taskBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.ownedTaskLocked(w, r)
	if !ok {
		return
	}
	applyTask(t, in)
	t.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Task updated successfully", "task": f.withCategoryLocked(t)})
}

func applyTask(t *FakeTask, in taskBody) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.DueDate != nil {
		t.DueDate = *in.DueDate
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.CategoryID != nil {
		id := *in.CategoryID
		t.CategoryID = &id
	}
}

func (f *FakeAPI) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.ownedTaskLocked(w, r)
	if !ok {
		return
	}
	delete(f.tasks, t.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// --- category handlers ---

type categoryBody struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (f *FakeAPI) withCountLocked(c *FakeCategory) *FakeCategory {
	out := *c
	n := 0
	for _, t := range f.tasks {
		if t.CategoryID != nil && *t.CategoryID == c.ID {
			n++
		}
	}
	out.Count = &struct {
		Tasks int `json:"tasks"`
	}{Tasks: n}
	return &out
}

func (f *FakeAPI) listCategories(w http.ResponseWriter, r *http.Request) {
	userID := userFrom(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*FakeCategory, 0)
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, f.withCountLocked(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeAPI) ownedCategoryLocked(w http.ResponseWriter, r *http.Request) (*FakeCategory, bool) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, ok := f.categories[id]
	if !ok || c.UserID != userFrom(r) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Category not found"})
		return nil, false
	}
	return c, true
}

func (f *FakeAPI) getCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.ownedCategoryLocked(w, r); ok {
		writeJSON(w, http.StatusOK, f.withCountLocked(c))
	}
}

func (f *FakeAPI) createCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == nil || in.Color == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Name and color are required"})
		return
	}
	userID := userFrom(r)

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.UserID == userID && strings.EqualFold(c.Name, *in.Name) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Category with this name already exists"})
			return
		}
	}
	f.seq++
	now := time.Now().UTC().Format(time.RFC3339)
	c := &FakeCategory{ID: f.seq, Name: *in.Name, Color: *in.Color, UserID: userID, CreatedAt: now, UpdatedAt: now}
	f.categories[c.ID] = c
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "Category created successfully", "category": f.withCountLocked(c)})
}

func (f *FakeAPI) updateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.ownedCategoryLocked(w, r)
	if !ok {
		return
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Color != nil {
		c.Color = *in.Color
	}
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Category updated successfully", "category": f.withCountLocked(c)})
}

func (f *FakeAPI) deleteCategory(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.ownedCategoryLocked(w, r)
	if !ok {
		return
	}
	delete(f.categories, c.ID)
	for _, t := range f.tasks {
		if t.CategoryID != nil && *t.CategoryID == c.ID {
			t.CategoryID = nil
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
