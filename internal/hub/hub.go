// Package hub wires validation, the REST client, the in-memory board and the
// per-view notices together. Each operation validates its input, issues one
// request, and only on a 2xx answer patches local state with the values the
// service returned.
package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/notice"
	"github.com/sadopc/taskhub/internal/state"
	"github.com/sadopc/taskhub/internal/validate"
)

// ErrNotFound is returned for ids the local board does not hold.
var ErrNotFound = errors.New("not found")

// Service is the subset of *api.Client the hub talks to.
type Service interface {
	SignUp(ctx context.Context, req api.SignUpRequest) (model.User, error)
	Login(ctx context.Context, req api.LoginRequest) (model.User, error)
	CheckSession(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error

	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name string) (api.CategoryResult, error)
	RenameCategory(ctx context.Context, id int64, name string) (api.CategoryResult, error)
	DeleteCategory(ctx context.Context, id int64) (string, error)

	ListTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, t api.NewTask) (model.Task, error)
	UpdateTask(ctx context.Context, id int64, p api.TaskPatch) (api.TaskPatchResult, error)
	SetTaskComplete(ctx context.Context, id int64, complete bool) (api.TaskPatchResult, error)
	DeleteTask(ctx context.Context, id int64) (string, error)
}

// Component names the view a notice belongs to.
type Component int

const (
	Categories Component = iota
	AddTask
	TaskList
	Auth
)

func (c Component) String() string {
	switch c {
	case Categories:
		return "categories"
	case AddTask:
		return "add-task"
	case TaskList:
		return "tasks"
	case Auth:
		return "auth"
	}
	return fmt.Sprintf("Component(%d)", int(c))
}

// requestFailed is shown when the service could not be reached at all.
const requestFailed = "Request failed, check your connection"

type Options struct {
	Policy    state.DanglingPolicy
	NoticeTTL time.Duration
	Logger    *slog.Logger
	// OnNotice is called after any notice changes, including auto-clears.
	OnNotice func(Component, notice.Message)
}

type Hub struct {
	svc Service
	log *slog.Logger

	notices map[Component]*notice.Notice

	mu            sync.Mutex
	board         *state.Board
	policy        state.DanglingPolicy
	user          *model.User
	categoryInput string
	taskDraft     validate.Task
}

func New(svc Service, opts Options) *Hub {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	h := &Hub{
		svc:     svc,
		log:     log,
		board:   state.NewBoard(),
		policy:  opts.Policy,
		notices: make(map[Component]*notice.Notice, 4),
	}
	for _, c := range []Component{Categories, AddTask, TaskList, Auth} {
		var onChange func(notice.Message)
		if opts.OnNotice != nil {
			onChange = func(m notice.Message) { opts.OnNotice(c, m) }
		}
		h.notices[c] = notice.New(opts.NoticeTTL, onChange)
	}
	return h
}

// Notice returns the banner owned by c.
func (h *Hub) Notice(c Component) *notice.Notice { return h.notices[c] }

// Close cancels every pending notice clear.
func (h *Hub) Close() {
	for _, n := range h.notices {
		n.Stop()
	}
}

func (h *Hub) SetPolicy(p state.DanglingPolicy) {
	h.mu.Lock()
	h.policy = p
	h.mu.Unlock()
}

func (h *Hub) Policy() state.DanglingPolicy {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.policy
}

// SetNoticeTTL changes how long every banner stays up.
func (h *Hub) SetNoticeTTL(d time.Duration) {
	for _, n := range h.notices {
		n.SetTTL(d)
	}
}

// report routes err to c's notice and returns it, wrapped for transport
// failures.
func (h *Hub) report(c Component, op string, err error) error {
	n := h.notices[c]
	var apiErr *api.Error
	var verr validate.Errors
	switch {
	case errors.As(err, &verr):
		n.Error(verr.Error())
		return err
	case errors.Is(err, validate.ErrEmptyCategoryName), errors.Is(err, ErrNotFound):
		n.Error(capitalize(err.Error()))
		return err
	case errors.As(err, &apiErr):
		n.Error(apiErr.Message)
		return err
	case errors.Is(err, context.Canceled):
		return err
	default:
		h.log.Error("request failed", "op", op, "component", c.String(), "err", err)
		n.Error(requestFailed)
		return fmt.Errorf("%s: %w", op, err)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ============================================================
// Reads
// ============================================================

func (h *Hub) Categories() []model.Category {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Categories()
}

func (h *Hub) Category(id int64) (model.Category, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Category(id)
}

func (h *Hub) Tasks() []model.Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Tasks()
}

func (h *Hub) Task(id int64) (model.Task, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Task(id)
}

// Visible returns the tasks passing the category filter.
func (h *Hub) Visible() []model.Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Visible()
}

func (h *Hub) Stats() state.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Stats()
}

func (h *Hub) StatsByCategory() []state.CategoryStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.StatsByCategory()
}

func (h *Hub) Selected() *int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Selected()
}

// SelectCategory sets the filter. It never touches the network.
func (h *Hub) SelectCategory(id *int64) {
	h.mu.Lock()
	h.board.Select(id)
	h.mu.Unlock()
}

func (h *Hub) Edit() state.EditState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.board.Edit()
}

// BeginEdit opens an inline editor, closing whichever one was open.
func (h *Hub) BeginEdit(e state.EditState) {
	h.mu.Lock()
	h.board.BeginEdit(e)
	h.mu.Unlock()
}

func (h *Hub) EndEdit() {
	h.mu.Lock()
	h.board.EndEdit()
	h.mu.Unlock()
}

// User is the signed-in account, if any.
func (h *Hub) User() (model.User, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.user == nil {
		return model.User{}, false
	}
	return *h.user, true
}

func (h *Hub) CategoryInput() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.categoryInput
}

func (h *Hub) SetCategoryInput(s string) {
	h.mu.Lock()
	h.categoryInput = s
	h.mu.Unlock()
}

// TaskDraft is the pending add-task form.
func (h *Hub) TaskDraft() validate.Task {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.taskDraft
}

func (h *Hub) SetTaskDraft(f validate.Task) {
	h.mu.Lock()
	h.taskDraft = f
	h.mu.Unlock()
}

// Load fetches both collections and replaces the board.
func (h *Hub) Load(ctx context.Context) error {
	cats, err := h.svc.ListCategories(ctx)
	if err != nil {
		return h.report(TaskList, "load categories", err)
	}
	tasks, err := h.svc.ListTasks(ctx)
	if err != nil {
		return h.report(TaskList, "load tasks", err)
	}
	h.mu.Lock()
	h.board.Load(cats, tasks)
	h.mu.Unlock()
	h.log.Debug("board loaded", "categories", len(cats), "tasks", len(tasks))
	return nil
}
