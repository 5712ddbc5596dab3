package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/state"
	"github.com/sadopc/taskhub/internal/validate"
)

type taskFormKind int

const (
	taskFormAdd taskFormKind = iota
	taskFormEdit
)

type tasksModel struct {
	sess   *session
	width  int
	height int

	cursor int
	bar    progress.Model

	formActive bool
	form       *huh.Form
	formKind   taskFormKind
	editingID  int64

	// Form field pointers (survive value copies)
	text     *string
	date     *string
	clock    *string
	category *int64
}

func newTasksModel(sess *session) tasksModel {
	text, date, clock := "", "", ""
	var cat int64
	return tasksModel{
		sess:     sess,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		text:     &text,
		date:     &date,
		clock:    &clock,
		category: &cat,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.bar.Width = max(10, min(w-30, 60))
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case opDoneMsg:
		if msg.op == opEditTask && msg.err != nil {
			if _, ok := m.sess.hub.Task(m.editingID); ok {
				// Reopen with what was submitted so the user can fix it.
				return m.openForm(taskFormEdit)
			}
			m.sess.hub.EndEdit()
		}
		m.cursor = clamp(m.cursor, len(m.sess.hub.Visible()))
		return m, nil

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	h := m.sess.hub
	visible := h.Visible()
	m.cursor = clamp(m.cursor, len(visible))

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showAddForm()
	case key.Matches(msg, keys.Edit):
		if len(visible) > 0 {
			return m.showEditForm(visible[m.cursor])
		}
	case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
		if len(visible) > 0 {
			t := visible[m.cursor]
			return m, m.toggle(t.ID, !t.IsComplete)
		}
	case key.Matches(msg, keys.Delete):
		if len(visible) > 0 {
			return m, m.remove(visible[m.cursor].ID)
		}
	case key.Matches(msg, keys.Filter):
		h.SelectCategory(nextFilter(h.Categories(), h.Selected()))
		m.cursor = 0
	}
	return m, nil
}

// nextFilter cycles All -> each category -> All.
func nextFilter(cats []model.Category, selected *int64) *int64 {
	if len(cats) == 0 {
		return nil
	}
	if selected == nil {
		id := cats[0].ID
		return &id
	}
	for i, c := range cats {
		if c.ID == *selected && i+1 < len(cats) {
			id := cats[i+1].ID
			return &id
		}
	}
	return nil
}

func (m tasksModel) showAddForm() (tasksModel, tea.Cmd) {
	h := m.sess.hub
	if len(h.Categories()) == 0 {
		h.Notice(hub.AddTask).Error("Add a category first")
		return m, nil
	}
	draft := h.TaskDraft()
	*m.text = draft.Task
	*m.date = draft.Date
	*m.clock = draft.Time
	*m.category = draft.CategoryID
	if *m.category == 0 {
		if sel := h.Selected(); sel != nil {
			*m.category = *sel
		}
	}
	return m.openForm(taskFormAdd)
}

func (m tasksModel) showEditForm(t model.Task) (tasksModel, tea.Cmd) {
	m.sess.hub.BeginEdit(state.EditingTask{ID: t.ID})
	m.editingID = t.ID
	*m.text = t.Task
	*m.date = ""
	if !t.Date.IsZero() {
		*m.date = t.Date.String()
	}
	*m.clock = t.Time
	*m.category = t.Category.ID
	return m.openForm(taskFormEdit)
}

func (m tasksModel) openForm(kind taskFormKind) (tasksModel, tea.Cmd) {
	m.formKind = kind
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.text).
				Validate(validate.Func(validate.TaskTextRules...)),
			huh.NewInput().Title("Date").Placeholder(model.DateLayout).Value(m.date).
				Validate(validate.Func(validate.TaskDateRules...)),
			huh.NewInput().Title("Time").Placeholder(model.TimeLayout).Value(m.clock).
				Validate(validate.Func(validate.TaskTimeRules...)),
			huh.NewSelect[int64]().Title("Category").
				Options(categoryOptions(m.sess.hub.Categories(), *m.category)...).
				Value(m.category).
				Validate(categoryChoice),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

// categoryOptions lists the known categories. A task pointing at a deleted
// category keeps its id selectable so editing does not silently move it.
func categoryOptions(cats []model.Category, current int64) []huh.Option[int64] {
	opts := []huh.Option[int64]{huh.NewOption("Select a category", int64(0))}
	found := current == 0
	for _, c := range cats {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
		if c.ID == current {
			found = true
		}
	}
	if !found {
		opts = append(opts, huh.NewOption(fmt.Sprintf("Unknown (#%d)", current), current))
	}
	return opts
}

func categoryChoice(id int64) error {
	if id > 0 {
		return nil
	}
	return validate.Func(validate.CategoryChoiceRules...)("")
}

func (m tasksModel) formValue() validate.Task {
	return validate.Task{
		Task:       *m.text,
		Date:       *m.date,
		Time:       *m.clock,
		CategoryID: *m.category,
	}
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Back) {
		m.formActive = false
		m.form = nil
		if m.formKind == taskFormAdd {
			m.sess.hub.SetTaskDraft(m.formValue())
		} else {
			m.sess.hub.EndEdit()
		}
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		if m.formKind == taskFormAdd {
			return m, m.submitAdd()
		}
		return m, m.submitEdit()
	}
	return m, cmd
}

func (m tasksModel) submitAdd() tea.Cmd {
	sess := m.sess
	form := m.formValue()
	// Kept until the service accepts the task.
	sess.hub.SetTaskDraft(form)
	return func() tea.Msg {
		_, err := sess.hub.AddTask(sess.ctx, form)
		return opDoneMsg{op: opAddTask, err: err}
	}
}

func (m tasksModel) submitEdit() tea.Cmd {
	sess := m.sess
	id := m.editingID
	form := m.formValue()
	return func() tea.Msg {
		_, err := sess.hub.EditTask(sess.ctx, id, form)
		return opDoneMsg{op: opEditTask, err: err}
	}
}

func (m tasksModel) toggle(id int64, complete bool) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return opDoneMsg{op: opToggleTask, err: sess.hub.ToggleComplete(sess.ctx, id, complete)}
	}
}

func (m tasksModel) remove(id int64) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return opDoneMsg{op: opDeleteTask, err: sess.hub.DeleteTask(sess.ctx, id)}
	}
}

func (m tasksModel) filterName() string {
	h := m.sess.hub
	sel := h.Selected()
	if sel == nil {
		return "All"
	}
	if c, ok := h.Category(*sel); ok {
		return c.Name
	}
	return fmt.Sprintf("#%d", *sel)
}

func (m tasksModel) view() string {
	w := m.width - 4
	h := m.sess.hub

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formKind == taskFormEdit {
			title = titleStyle.Render("Edit Task")
		}
		rows := []string{title, "", m.form.View()}
		owner := hub.AddTask
		if m.formKind == taskFormEdit {
			owner = hub.TaskList
		}
		if n := renderNotice(h.Notice(owner).Current()); n != "" {
			rows = append(rows, "", n)
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Tasks"), "  ", subtitleStyle.Render(m.filterName()),
	)

	stats := h.Stats()
	summary := mutedStyle.Render(fmt.Sprintf("  %d/%d complete (%d%%)", stats.Completed, stats.Total, stats.Percentage))
	barRow := lipgloss.JoinHorizontal(lipgloss.Center, m.bar.ViewAs(float64(stats.Percentage)/100), summary)

	rows := []string{title, "", barRow, ""}

	visible := h.Visible()
	if len(visible) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks here. Press n to add one."))
	} else {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-36s %-17s %s", "", "Task", "Due", "Category")))
		cursor := clamp(m.cursor, len(visible))
		for i, t := range visible {
			rows = append(rows, m.renderRow(t, i == cursor))
		}
	}

	for _, c := range []hub.Component{hub.AddTask, hub.TaskList} {
		if n := renderNotice(h.Notice(c).Current()); n != "" {
			rows = append(rows, "", n)
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  r: edit  space: toggle  d: delete  f: filter  e: export"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m tasksModel) renderRow(t model.Task, selected bool) string {
	cursor := "  "
	style := normalItemStyle
	if t.IsComplete {
		style = doneItemStyle
	}
	if selected {
		cursor = "> "
		style = style.Foreground(colorPrimary).Bold(true)
	}
	text := style.Render(fmt.Sprintf("%-36s", truncate(t.Task, 36)))
	due := mutedStyle.Render(fmt.Sprintf("%-17s", schedule(t)))
	cat := highlightStyle.Render(t.Category.Name)
	if _, ok := m.sess.hub.Category(t.Category.ID); !ok {
		cat = warningStyle.Render(t.Category.Name)
	}
	return fmt.Sprintf("%s%s %s %s %s", cursor, checkbox(t.IsComplete), text, due, cat)
}
