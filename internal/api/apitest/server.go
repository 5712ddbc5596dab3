// Package apitest runs an in-memory TaskHub service over httptest for
// client-side tests. It mirrors the real service's response shapes,
// including RFC1123 dates and the {"error": ...} failure bodies.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const sessionCookie = "session"

type user struct {
	ID       int64
	Name     string
	Email    string
	Password string
}

type Category struct {
	ID     int64
	Name   string
	UserID int64
}

type Task struct {
	ID         int64
	Task       string
	Date       time.Time
	Time       string
	CategoryID int64
	IsComplete bool
	UserID     int64
}

type failure struct {
	status int
	body   string
}

// Server is safe for concurrent use.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	nextID     int64
	users      map[int64]*user
	sessions   map[string]int64
	categories map[int64]*Category
	tasks      map[int64]*Task
	failures   map[string]failure
	requests   []string
}

// New starts a server that is closed with t's cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:      map[int64]*user{},
		sessions:   map[string]int64{},
		categories: map[int64]*Category{},
		tasks:      map[int64]*Task{},
		failures:   map[string]failure{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users", s.signUp)
	mux.HandleFunc("POST /login", s.login)
	mux.HandleFunc("GET /check_session", s.checkSession)
	mux.HandleFunc("DELETE /logout", s.logout)
	mux.HandleFunc("GET /categories", s.authed(s.listCategories))
	mux.HandleFunc("POST /categories", s.authed(s.createCategory))
	mux.HandleFunc("PATCH /category/{id}", s.authed(s.renameCategory))
	mux.HandleFunc("DELETE /category/{id}", s.authed(s.deleteCategory))
	mux.HandleFunc("GET /tasks", s.authed(s.listTasks))
	mux.HandleFunc("POST /tasks", s.authed(s.createTask))
	mux.HandleFunc("PATCH /task/{id}", s.authed(s.updateTask))
	mux.HandleFunc("DELETE /task/{id}", s.authed(s.deleteTask))

	s.Server = httptest.NewServer(s.intercept(mux))
	t.Cleanup(s.Close)
	return s
}

// Fail makes the next request matching "METHOD /path" answer with status and
// an {"error": msg} body.
func (s *Server) Fail(route string, status int, msg string) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	s.mu.Lock()
	s.failures[route] = failure{status: status, body: string(b)}
	s.mu.Unlock()
}

// Requests returns "METHOD /path" for every request seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// SeedUser registers an account directly and returns its id.
func (s *Server) SeedUser(name, email, password string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(name, email, password)
}

func (s *Server) SeedCategory(userID int64, name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.categories[s.nextID] = &Category{ID: s.nextID, Name: name, UserID: userID}
	return s.nextID
}

func (s *Server) SeedTask(userID, categoryID int64, text, date, clock string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, _ := time.Parse("2006-01-02", date)
	s.nextID++
	s.tasks[s.nextID] = &Task{ID: s.nextID, Task: text, Date: d, Time: clock, CategoryID: categoryID, UserID: userID}
	return s.nextID
}

// TaskByID returns a copy of the stored task.
func (s *Server) TaskByID(id int64) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, route)
		f, ok := s.failures[route]
		if ok {
			delete(s.failures, route)
		}
		s.mu.Unlock()
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			fmt.Fprint(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) addUserLocked(name, email, password string) int64 {
	s.nextID++
	id := s.nextID
	s.users[id] = &user{ID: id, Name: name, Email: email, Password: password}
	for _, c := range []string{"Work", "Personal", "Shopping", "Health"} {
		s.nextID++
		s.categories[s.nextID] = &Category{ID: s.nextID, Name: c, UserID: id}
	}
	return id
}

func (s *Server) startSession(w http.ResponseWriter, userID int64) {
	token := fmt.Sprintf("tok-%d-%d", userID, time.Now().UnixNano())
	s.sessions[token] = userID
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: token, Path: "/", HttpOnly: true})
}

func (s *Server) currentUser(r *http.Request) (int64, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return 0, false
	}
	id, ok := s.sessions[c.Value]
	return id, ok
}

func (s *Server) authed(h func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		id, ok := s.currentUser(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		h(w, r, id)
	}
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == body.Email {
			writeJSON(w, http.StatusConflict, map[string]string{"msg": "User already exists"})
			return
		}
	}
	id := s.addUserLocked(body.Name, body.Email, body.Password)
	s.startSession(w, id)
	writeJSON(w, http.StatusCreated, userJSON(s.users[id]))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email and password are required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == body.Email && u.Password == body.Password {
			s.startSession(w, u.ID)
			writeJSON(w, http.StatusOK, userJSON(u))
			return
		}
	}
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
}

func (s *Server) checkSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.currentUser(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"msg": "401: Not Authorized"})
		return
	}
	writeJSON(w, http.StatusOK, userJSON(s.users[id]))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, err := r.Cookie(sessionCookie); err == nil {
		delete(s.sessions, c.Value)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request, userID int64) {
	out := []map[string]any{}
	for _, c := range s.sortedCategories(userID) {
		out = append(out, map[string]any{"id": c.ID, "name": c.Name, "created_by": userID})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	var body struct {
		Name string `json:"name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	for _, c := range s.categories {
		if c.UserID == userID && c.Name == body.Name {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "You already have a category with this name"})
			return
		}
	}
	s.nextID++
	s.categories[s.nextID] = &Category{ID: s.nextID, Name: body.Name, UserID: userID}
	writeJSON(w, http.StatusCreated, map[string]any{"msg": "Category created successfully", "id": s.nextID, "name": body.Name})
}

func (s *Server) renameCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Category %d does not exist or does not belong to you", id)})
		return
	}
	var body struct {
		UpdatedName string `json:"updated_name"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	for _, other := range s.categories {
		if other.UserID == userID && other.Name == body.UpdatedName {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "You already have a category with this name"})
			return
		}
	}
	c.Name = body.UpdatedName
	writeJSON(w, http.StatusOK, map[string]any{"msg": "Category name updated successfully", "name": c.Name, "id": c.ID})
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Category %d does not exist or does not belong to you", id)})
		return
	}
	delete(s.categories, id)
	for tid, t := range s.tasks {
		if t.CategoryID == id {
			delete(s.tasks, tid)
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": fmt.Sprintf("Category %q deleted successfully", c.Name)})
}

func (s *Server) listTasks(w http.ResponseWriter, _ *http.Request, userID int64) {
	ids := make([]int64, 0, len(s.tasks))
	for id, t := range s.tasks {
		if t.UserID == userID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := []map[string]any{}
	for _, id := range ids {
		out = append(out, s.taskJSON(s.tasks[id]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request, userID int64) {
	var body struct {
		Task       string `json:"task"`
		Date       string `json:"date"`
		Time       string `json:"time"`
		CategoryID int64  `json:"category_id"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	d, err := time.Parse("2006-01-02", body.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date"})
		return
	}
	s.nextID++
	t := &Task{ID: s.nextID, Task: body.Task, Date: d, Time: body.Time, CategoryID: body.CategoryID, UserID: userID}
	s.tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, s.taskJSON(t))
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Task %d not found or does not belong to the current user", id)})
		return
	}
	var body struct {
		Task       string `json:"updated_task"`
		Date       string `json:"updated_date"`
		Time       string `json:"updated_time"`
		Category   int64  `json:"updated_category"`
		IsComplete *bool  `json:"is_complete"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.Task != "" {
		t.Task = body.Task
	}
	if body.Date != "" {
		if d, err := time.Parse("2006-01-02", body.Date); err == nil {
			t.Date = d
		}
	}
	if body.Time != "" {
		t.Time = body.Time
	}
	if body.Category != 0 {
		t.CategoryID = body.Category
	}
	if body.IsComplete != nil {
		t.IsComplete = *body.IsComplete
	}
	var catName any
	if c, ok := s.categories[t.CategoryID]; ok {
		catName = c.Name
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":          t.Task,
		"date":          httpDate(t.Date),
		"time":          t.Time,
		"category_id":   t.CategoryID,
		"category_name": catName,
		"is_complete":   t.IsComplete,
	})
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, userID int64) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("Task %d not found or does not belong to the current user", id)})
		return
	}
	delete(s.tasks, id)
	writeJSON(w, http.StatusOK, map[string]string{"msg": fmt.Sprintf("Successfully deleted task %d", id)})
}

// ============================================================
// Encoding helpers
// ============================================================

func (s *Server) sortedCategories(userID int64) []*Category {
	var out []*Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) taskJSON(t *Task) map[string]any {
	cat := map[string]any{"id": t.CategoryID, "name": nil}
	if c, ok := s.categories[t.CategoryID]; ok {
		cat["name"] = c.Name
	}
	return map[string]any{
		"id":          t.ID,
		"task":        t.Task,
		"date":        httpDate(t.Date),
		"time":        t.Time,
		"is_complete": t.IsComplete,
		"category_id": t.CategoryID,
		"user_id":     t.UserID,
		"category":    cat,
	}
}

func userJSON(u *user) map[string]any {
	return map[string]any{"id": u.ID, "name": u.Name, "email": strings.ToLower(u.Email)}
}

// httpDate matches the service's JSON encoding of a date column.
func httpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
