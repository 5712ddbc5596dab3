package tui

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskhub/internal/api"
	"github.com/sadopc/taskhub/internal/config"
	"github.com/sadopc/taskhub/internal/export"
	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/reminder"
	"github.com/sadopc/taskhub/internal/store"
)

// Deps is what the interface needs from the caller.
type Deps struct {
	Hub    *hub.Hub
	Store  *store.Store // optional; settings and reminder history live here
	Config config.Config
	Logger *slog.Logger

	// AfterLogin and AfterLogout run once a session starts or ends, so the
	// caller can keep its saved profile and cookies in step.
	AfterLogin  func(model.User)
	AfterLogout func()
}

// App is the root Bubble Tea model.
type App struct {
	sess   *session
	width  int
	height int

	activeView    viewState
	checking      bool
	authed        bool
	showHelp      bool
	exportPicking bool
	exportCursor  int

	auth       authModel
	tasks      tasksModel
	categories categoriesModel
	reports    reportsModel
	settings   settingsModel

	help      help.Model
	status    string
	statusErr bool
	reminders []reminder.Reminder
}

func NewApp(ctx context.Context, d Deps) App {
	log := d.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	sess := &session{
		ctx:         ctx,
		hub:         d.Hub,
		store:       d.Store,
		log:         log,
		afterLogin:  d.AfterLogin,
		afterLogout: d.AfterLogout,
	}
	sess.setReminderWindow(d.Config.ReminderWindow)
	if d.Store != nil {
		sess.recorder = d.Store
	}

	h := help.New()
	h.ShowAll = false

	return App{
		sess:       sess,
		activeView: viewTasks,
		checking:   true,
		auth:       newAuthModel(sess),
		tasks:      newTasksModel(sess),
		categories: newCategoriesModel(sess),
		reports:    newReportsModel(sess),
		settings:   newSettingsModel(sess, d.Config).refresh(),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.checkSession(),
		a.auth.Init(),
	)
}

func (a App) checkSession() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		u, err := sess.hub.CheckSession(sess.ctx)
		return sessionMsg{user: u, err: err}
	}
}

func (a App) loadBoard() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return boardLoadedMsg{err: sess.hub.Load(sess.ctx)}
	}
}

func (a App) logout() tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		return loggedOutMsg{err: sess.hub.Logout(sess.ctx)}
	}
}

func (a App) checkReminders() tea.Cmd {
	sess := a.sess
	return func() tea.Msg { return sess.checkReminders() }
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.auth.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.categories.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.reports = a.reports.refresh()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.checking {
			return a, nil
		}
		if !a.authed {
			var cmd tea.Cmd
			a.auth, cmd = a.auth.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Reload):
			a.status = "Reloading..."
			return a, a.loadBoard()
		case key.Matches(msg, keys.Logout):
			return a, a.logout()
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewCategories)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case sessionMsg:
		a.checking = false
		if msg.err != nil {
			if !api.IsStatus(msg.err, http.StatusUnauthorized) {
				a.sess.log.Warn("session check failed", "err", msg.err)
				a.setStatus("Could not reach the server, log in to retry", true)
			}
			return a, nil
		}
		return a.startSession(msg.user)

	case authDoneMsg:
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		if msg.err != nil {
			return a, cmd
		}
		return a.startSession(msg.user)

	case loggedOutMsg:
		if msg.err != nil {
			a.setStatus("Log out failed", true)
			return a, nil
		}
		if a.sess.afterLogout != nil {
			a.sess.afterLogout()
		}
		a.authed = false
		a.reminders = nil
		a.activeView = viewTasks
		a.auth = newAuthModel(a.sess)
		a.tasks = newTasksModel(a.sess)
		a.categories = newCategoriesModel(a.sess)
		a.auth.setSize(a.width, a.height-4)
		a.tasks.setSize(a.width, a.height-4)
		a.categories.setSize(a.width, a.height-4)
		a.reports = a.reports.refresh()
		a.setStatus("Logged out", false)
		return a, a.auth.Init()

	case boardLoadedMsg:
		a.reports, _ = a.reports.update(msg)
		if msg.err != nil {
			a.setStatus("Could not load your tasks", true)
			return a, nil
		}
		a.status = ""
		return a, a.checkReminders()

	case opDoneMsg:
		var cmd tea.Cmd
		switch msg.op {
		case opAddTask, opEditTask, opToggleTask, opDeleteTask:
			a.tasks, cmd = a.tasks.update(msg)
		default:
			a.categories, cmd = a.categories.update(msg)
		}
		a.reports, _ = a.reports.update(msg)
		return a, cmd

	case noticeMsg:
		// Notices are read from the hub at render time.
		return a, nil

	case remindersMsg:
		a.reminders = msg.all
		if len(msg.fresh) == 1 {
			a.setStatus(msg.fresh[0].Describe(time.Now()), msg.fresh[0].Status == reminder.Overdue)
		} else if len(msg.fresh) > 1 {
			a.setStatus(reminder.Summary(msg.fresh), false)
		}
		return a, nil

	case settingsSavedMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Settings not saved: %v", msg.err), true)
			return a, nil
		}
		a.setStatus("Settings saved", false)
		return a, a.checkReminders()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	if !a.authed {
		var cmd tea.Cmd
		a.auth, cmd = a.auth.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) startSession(u model.User) (tea.Model, tea.Cmd) {
	a.authed = true
	a.activeView = viewTasks
	if a.sess.afterLogin != nil {
		a.sess.afterLogin(u)
	}
	a.setStatus("Signed in as "+u.Name, false)
	return a, a.loadBoard()
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	switch v {
	case viewReports:
		a.reports = a.reports.refresh()
	case viewSettings:
		a.settings = a.settings.refresh()
	}
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewCategories:
		return a.categories.inputActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch {
	case a.checking:
		content = highlightStyle.Render("  Checking your session...")
	case !a.authed:
		content = a.auth.view()
	default:
		switch a.activeView {
		case viewTasks:
			content = a.tasks.view()
		case viewCategories:
			content = a.categories.view()
		case viewReports:
			content = a.reports.view()
		case viewSettings:
			content = a.settings.view()
		}
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("taskhub")
	if !a.authed {
		return headerStyle.Render(title)
	}

	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	if u, ok := a.sess.hub.User(); ok {
		title += mutedStyle.Render("  " + u.Name)
	}

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := ""
	if a.authed {
		left = footerStyle.Render(a.help.View(keys))
	}

	right := ""
	if len(a.reminders) > 0 {
		right = warningStyle.Render(" ⏰ " + reminder.Summary(a.reminders))
	}
	if a.status != "" {
		style := mutedStyle
		if a.statusErr {
			style = errorStyle
		}
		right += style.Render(" " + a.status)
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []export.Format{export.CSV, export.JSON}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.tasks.filterName() + " tasks")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		return a, a.doExport(exportFormats[a.exportCursor], home)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// doExport writes the tasks currently visible under the filter into dir.
func (a App) doExport(format export.Format, dir string) tea.Cmd {
	h := a.sess.hub
	log := a.sess.log
	return func() tea.Msg {
		path := filepath.Join(dir, export.DefaultFilename(format, time.Now()))
		if err := export.ToFile(path, format, h.Visible(), h.Categories()); err != nil {
			log.Error("export failed", "path", path, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		log.Info("exported tasks", "path", path, "format", string(format))
		return exportDoneMsg{path: path}
	}
}
