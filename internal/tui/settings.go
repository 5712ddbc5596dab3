package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskhub/internal/config"
	"github.com/sadopc/taskhub/internal/state"
)

// editableKeys are the settings the TUI may override in the local store.
var editableKeys = []string{config.KeyDanglingPolicy, config.KeyNoticeTTL, config.KeyReminderWindow}

type settingsModel struct {
	sess   *session
	width  int
	height int

	cfg        config.Config
	overridden map[string]bool
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	policy *string
	ttl    *string
	window *string
}

func newSettingsModel(sess *session, cfg config.Config) settingsModel {
	policy, ttl, window := "", "", ""
	return settingsModel{
		sess:       sess,
		cfg:        cfg,
		overridden: map[string]bool{},
		policy:     &policy,
		ttl:        &ttl,
		window:     &window,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

// refresh marks which keys currently come from the local store.
func (s settingsModel) refresh() settingsModel {
	s.overridden = map[string]bool{}
	if s.sess.store == nil {
		return s
	}
	settings, err := s.sess.store.GetAllSettings()
	if err != nil {
		s.sess.log.Error("read settings", "err", err)
		return s
	}
	for _, st := range settings {
		s.overridden[st.Key] = true
	}
	return s
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.policy = s.cfg.DanglingPolicy.String()
	*s.ttl = formatDuration(s.cfg.NoticeTTL)
	*s.window = formatDuration(s.cfg.ReminderWindow)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("When a category is deleted").
				Options(
					huh.NewOption("Keep its tasks as they are", state.KeepDangling.String()),
					huh.NewOption("Remove its tasks", state.CascadeDelete.String()),
					huh.NewOption("Move its tasks to Uncategorized", state.Uncategorize.String()),
				).Value(s.policy),
			huh.NewInput().Title("Notice duration").Description("e.g. 3s, 1.5").
				Value(s.ttl).Validate(keyValidator(config.KeyNoticeTTL)),
			huh.NewInput().Title("Remind me of tasks due within").Description("e.g. 30m, 1h").
				Value(s.window).Validate(keyValidator(config.KeyReminderWindow)),
		).Title("Settings"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

// keyValidator checks a value with the same parser config.Load uses.
func keyValidator(key string) func(string) error {
	return func(v string) error {
		c := config.Config{}
		return c.Set(key, v)
	}
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Back) {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		var err error
		s, err = s.save(map[string]string{
			config.KeyDanglingPolicy: *s.policy,
			config.KeyNoticeTTL:      *s.ttl,
			config.KeyReminderWindow: *s.window,
		})
		return s.refresh(), func() tea.Msg { return settingsSavedMsg{err: err} }
	}

	return s, cmd
}

// save validates values, persists them and applies them to the running
// session. Nothing is applied when any value is invalid.
func (s settingsModel) save(values map[string]string) (settingsModel, error) {
	next := s.cfg
	for _, k := range editableKeys {
		if err := next.Set(k, values[k]); err != nil {
			return s, err
		}
	}
	if st := s.sess.store; st != nil {
		for _, k := range editableKeys {
			v, _ := next.Get(k)
			if err := st.SetSetting(k, v); err != nil {
				return s, fmt.Errorf("save setting %s: %w", k, err)
			}
		}
	}

	s.cfg = next
	s.sess.hub.SetPolicy(next.DanglingPolicy)
	s.sess.hub.SetNoticeTTL(next.NoticeTTL)
	s.sess.setReminderWindow(next.ReminderWindow)
	s.sess.log.Info("settings updated",
		"dangling_policy", next.DanglingPolicy.String(),
		"notice_ttl", next.NoticeTTL,
		"reminder_window", next.ReminderWindow)
	return s, nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, k := range config.Keys() {
		v, _ := s.cfg.Get(k)
		if v == "" {
			v = "-"
		}
		label := lipgloss.NewStyle().Width(20).Render(k)
		value := highlightStyle.Render(formatSettingValue(k, v))
		if s.overridden[k] {
			value += mutedStyle.Render("  (saved here)")
		}
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("Press enter to edit the dangling policy, notice duration and reminder window"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case config.KeyRequestTimeout:
		if v == "0s" {
			return "none"
		}
	case config.KeyDanglingPolicy:
		switch v {
		case state.KeepDangling.String():
			return "keep tasks"
		case state.CascadeDelete.String():
			return "delete tasks"
		case state.Uncategorize.String():
			return "move to Uncategorized"
		}
	}
	return v
}
