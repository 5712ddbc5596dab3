package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/model"
	"github.com/sadopc/taskhub/internal/state"
)

type inputMode int

const (
	inputAdd inputMode = iota
	inputRename
)

// categoriesModel lists "All" followed by the user's categories. Row 0 is
// the unfiltered view; row i+1 is categories[i].
type categoriesModel struct {
	sess   *session
	width  int
	height int

	cursor int

	inputActive bool
	mode        inputMode
	input       textinput.Model
	renamingID  int64
	pending     bool // rename sent, waiting for the answer
}

func newCategoriesModel(sess *session) categoriesModel {
	ti := textinput.New()
	ti.Placeholder = "Category name"
	ti.CharLimit = 64
	ti.Prompt = "› "
	return categoriesModel{sess: sess, input: ti}
}

func (m *categoriesModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = max(10, min(w-12, 48))
}

func (m categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		if msg.op == opRenameCategory {
			m.pending = false
			if msg.err == nil {
				m.closeInput()
			}
		}
		m.cursor = clamp(m.cursor, len(m.sess.hub.Categories())+1)
		return m, nil

	case tea.KeyMsg:
		if m.inputActive {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	if m.inputActive {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m categoriesModel) updateList(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	h := m.sess.hub
	cats := h.Categories()
	m.cursor = clamp(m.cursor, len(cats)+1)

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(cats) {
			m.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if m.cursor == 0 {
			h.SelectCategory(nil)
		} else {
			id := cats[m.cursor-1].ID
			h.SelectCategory(&id)
		}
	case key.Matches(msg, keys.New):
		m.mode = inputAdd
		m.input.SetValue(h.CategoryInput())
		m.input.CursorEnd()
		m.inputActive = true
		return m, m.input.Focus()
	case key.Matches(msg, keys.Edit):
		if m.cursor > 0 {
			c := cats[m.cursor-1]
			h.BeginEdit(state.EditingCategory{ID: c.ID})
			m.mode = inputRename
			m.renamingID = c.ID
			m.input.SetValue(c.Name)
			m.input.CursorEnd()
			m.inputActive = true
			return m, m.input.Focus()
		}
	case key.Matches(msg, keys.Delete):
		if m.cursor > 0 {
			return m, m.remove(cats[m.cursor-1].ID)
		}
	}
	return m, nil
}

func (m categoriesModel) updateInput(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	if m.pending {
		return m, nil
	}
	switch {
	case key.Matches(msg, keys.Back):
		if m.mode == inputRename {
			m.sess.hub.EndEdit()
		}
		m.closeInput()
		return m, nil
	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		if m.mode == inputAdd {
			// The hub clears the pending input whatever the outcome.
			m.closeInput()
			return m, m.add(value)
		}
		m.pending = true
		return m, m.rename(m.renamingID, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == inputAdd {
		m.sess.hub.SetCategoryInput(m.input.Value())
	}
	return m, cmd
}

func (m *categoriesModel) closeInput() {
	m.inputActive = false
	m.renamingID = 0
	m.input.Blur()
	m.input.SetValue("")
}

func (m categoriesModel) add(name string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		_, err := sess.hub.AddCategory(sess.ctx, name)
		return opDoneMsg{op: opAddCategory, err: err}
	}
}

func (m categoriesModel) rename(id int64, name string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		_, err := sess.hub.RenameCategory(sess.ctx, id, name)
		return opDoneMsg{op: opRenameCategory, err: err}
	}
}

func (m categoriesModel) remove(id int64) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		return opDoneMsg{op: opDeleteCategory, err: sess.hub.DeleteCategory(sess.ctx, id)}
	}
}

func (m categoriesModel) view() string {
	w := m.width - 4
	h := m.sess.hub
	cats := h.Categories()
	tasks := h.Tasks()
	sel := h.Selected()

	var rows []string
	rows = append(rows, titleStyle.Render("Categories"))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %8s", "", "Name", "Tasks")))

	cursor := clamp(m.cursor, len(cats)+1)
	rows = append(rows, m.renderRow("All", len(tasks), sel == nil, cursor == 0))
	for i, c := range cats {
		label := c.Name
		if m.inputActive && m.mode == inputRename && m.renamingID == c.ID {
			label = m.input.View()
		}
		active := sel != nil && *sel == c.ID
		rows = append(rows, m.renderRow(label, countIn(tasks, c.ID), active, cursor == i+1))
	}

	if m.inputActive && m.mode == inputAdd {
		rows = append(rows, "", subtitleStyle.Render("New category"), m.input.View())
	}
	if m.pending {
		rows = append(rows, "", highlightStyle.Render("Saving..."))
	}
	if n := renderNotice(h.Notice(hub.Categories).Current()); n != "" {
		rows = append(rows, "", n)
	}

	rows = append(rows, "")
	if m.inputActive {
		rows = append(rows, mutedStyle.Render("  enter: save  esc: cancel"))
	} else {
		rows = append(rows, mutedStyle.Render("  enter: filter  n: new  r: rename  d: delete"))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m categoriesModel) renderRow(label string, count int, active, selected bool) string {
	cursor := "  "
	style := normalItemStyle
	if selected {
		cursor = "> "
		style = selectedItemStyle
	}
	mark := " "
	if active {
		mark = successStyle.Render("●")
	}
	return fmt.Sprintf("%s%s  %s %s", cursor, mark, style.Render(fmt.Sprintf("%-28s", label)), mutedStyle.Render(fmt.Sprintf("%8d", count)))
}

func countIn(tasks []model.Task, categoryID int64) int {
	n := 0
	for _, t := range tasks {
		if t.Category.ID == categoryID {
			n++
		}
	}
	return n
}
