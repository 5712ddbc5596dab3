package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sadopc/taskhub/internal/model"
)

type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CategoryResult is the create/rename answer: the canonical category plus
// the service's confirmation text.
type CategoryResult struct {
	model.Category
	Msg string `json:"msg"`
}

type NewTask struct {
	Task       string `json:"task"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	CategoryID int64  `json:"category_id"`
}

// TaskPatch is the full edit body. Empty fields are left alone by the service.
type TaskPatch struct {
	Task       string `json:"updated_task,omitempty"`
	Date       string `json:"updated_date,omitempty"`
	Time       string `json:"updated_time,omitempty"`
	CategoryID int64  `json:"updated_category,omitempty"`
}

// TaskPatchResult is what PATCH /task/:id answers with.
type TaskPatchResult struct {
	Task         string     `json:"task"`
	Date         model.Date `json:"date"`
	Time         string     `json:"time"`
	CategoryID   int64      `json:"category_id"`
	CategoryName *string    `json:"category_name"`
	IsComplete   bool       `json:"is_complete"`
}

type message struct {
	Msg string `json:"msg"`
}

// ============================================================
// Session
// ============================================================

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/users", req, &u)
	return u, err
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodPost, "/login", req, &u)
	return u, err
}

func (c *Client) CheckSession(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/check_session", nil, &u)
	return u, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/logout", nil, nil)
}

// ============================================================
// Categories
// ============================================================

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.do(ctx, http.MethodGet, "/categories", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (CategoryResult, error) {
	var out CategoryResult
	err := c.do(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &out)
	return out, err
}

func (c *Client) RenameCategory(ctx context.Context, id int64, name string) (CategoryResult, error) {
	var out CategoryResult
	err := c.do(ctx, http.MethodPatch, categoryPath(id), map[string]string{"updated_name": name}, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) (string, error) {
	var out message
	err := c.do(ctx, http.MethodDelete, categoryPath(id), nil, &out)
	return out.Msg, err
}

// ============================================================
// Tasks
// ============================================================

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, t NewTask) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", t, &out)
	return out, err
}

func (c *Client) UpdateTask(ctx context.Context, id int64, p TaskPatch) (TaskPatchResult, error) {
	var out TaskPatchResult
	err := c.do(ctx, http.MethodPatch, taskPath(id), p, &out)
	return out, err
}

func (c *Client) SetTaskComplete(ctx context.Context, id int64, complete bool) (TaskPatchResult, error) {
	var out TaskPatchResult
	err := c.do(ctx, http.MethodPatch, taskPath(id), map[string]bool{"is_complete": complete}, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, id int64) (string, error) {
	var out message
	err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &out)
	return out.Msg, err
}

func categoryPath(id int64) string { return fmt.Sprintf("/category/%d", id) }
func taskPath(id int64) string     { return fmt.Sprintf("/task/%d", id) }
