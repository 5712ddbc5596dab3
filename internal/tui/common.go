package tui

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/notice"
	"github.com/sadopc/taskhub/internal/reminder"
	"github.com/sadopc/taskhub/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTasks viewState = iota
	viewCategories
	viewReports
	viewSettings
)

var viewNames = []string{"Tasks", "Categories", "Reports", "Settings"}

// session is shared by every copy of the models. Bubble Tea passes models
// by value, so anything mutable across updates lives behind this pointer.
type session struct {
	ctx   context.Context
	hub   *hub.Hub
	store *store.Store
	log   *slog.Logger

	afterLogin  func(model.User)
	afterLogout func()

	window   atomic.Int64 // reminder window, read by the scheduler job
	recorder reminder.Recorder
}

func (s *session) reminderWindow() time.Duration { return time.Duration(s.window.Load()) }

func (s *session) setReminderWindow(d time.Duration) { s.window.Store(int64(d)) }

// checkReminders is safe to call from the scheduler goroutine.
func (s *session) checkReminders() remindersMsg {
	w := reminder.Watcher{
		Tasks:    s.hub.Tasks,
		Window:   s.reminderWindow(),
		Recorder: s.recorder,
		Log:      s.log,
	}
	all, fresh := w.Check()
	return remindersMsg{all: all, fresh: fresh}
}

// --- Messages ---

type noticeMsg struct {
	component hub.Component
	message   notice.Message
}

type sessionMsg struct {
	user model.User
	err  error
}

type authDoneMsg struct {
	user model.User
	err  error
}

type loggedOutMsg struct {
	err error
}

type boardLoadedMsg struct {
	err error
}

// opKind names the mutation an opDoneMsg reports on.
type opKind int

const (
	opAddTask opKind = iota
	opEditTask
	opToggleTask
	opDeleteTask
	opAddCategory
	opRenameCategory
	opDeleteCategory
)

type opDoneMsg struct {
	op  opKind
	err error
}

type remindersMsg struct {
	all   []reminder.Reminder
	fresh []reminder.Reminder
}

type settingsSavedMsg struct {
	err error
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func renderNotice(m notice.Message) string {
	switch m.Kind {
	case notice.Success:
		return successStyle.Render("✓ " + m.Text)
	case notice.Error:
		return errorStyle.Render("✗ " + m.Text)
	}
	return ""
}

func checkbox(done bool) string {
	if done {
		return successStyle.Render("[x]")
	}
	return mutedStyle.Render("[ ]")
}

// schedule renders a task's date and time, or a dash when it has none.
func schedule(t model.Task) string {
	if t.Date.IsZero() {
		return "-"
	}
	if t.Time == "" {
		return t.Date.String()
	}
	return t.Date.String() + " " + t.Time
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// formatDuration drops zero trailing units: 1h0m0s becomes 1h.
func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}
