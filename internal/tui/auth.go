package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/taskhub/internal/hub"
	"github.com/sadopc/taskhub/internal/validate"
)

type authMode int

const (
	authLogin authMode = iota
	authSignUp
)

// authModel is the login / sign-up screen shown while nobody is signed in.
type authModel struct {
	sess   *session
	width  int
	height int

	mode       authMode
	form       *huh.Form
	submitting bool

	// Form field pointers (survive value copies)
	name     *string
	email    *string
	password *string
	confirm  *string
}

func newAuthModel(sess *session) authModel {
	name, email, password, confirm := "", "", "", ""
	m := authModel{
		sess:     sess,
		name:     &name,
		email:    &email,
		password: &password,
		confirm:  &confirm,
	}
	m.form = m.buildForm()
	return m
}

func (m *authModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m authModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m authModel) buildForm() *huh.Form {
	*m.password = ""
	*m.confirm = ""

	if m.mode == authSignUp {
		return huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Name").Value(m.name).
					Validate(validate.Func(validate.SignUpNameRules...)),
				huh.NewInput().Title("Email").Value(m.email).
					Validate(validate.Func(validate.EmailRules...)),
				huh.NewInput().Title("Password").Value(m.password).
					EchoMode(huh.EchoModePassword).
					Validate(validate.Func(validate.PasswordRules...)),
				huh.NewInput().Title("Confirm password").Value(m.confirm).
					EchoMode(huh.EchoModePassword).
					Validate(validate.Func(validate.ConfirmRules(func() string { return *m.password })...)),
			).Title("Create an account"),
		).WithShowHelp(true).WithShowErrors(true)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(m.email).
				Validate(validate.Func(validate.EmailRules...)),
			huh.NewInput().Title("Password").Value(m.password).
				EchoMode(huh.EchoModePassword).
				Validate(validate.Func(validate.LoginPasswordRules...)),
		).Title("Log in"),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.form = m.buildForm()
			return m, m.form.Init()
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if key.Matches(msg, keys.SwitchAuth) {
			return m.switchMode()
		}
	}

	if m.submitting {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.submitting = true
		return m, m.submit()
	}
	return m, cmd
}

func (m authModel) switchMode() (authModel, tea.Cmd) {
	if m.mode == authLogin {
		m.mode = authSignUp
	} else {
		m.mode = authLogin
	}
	m.sess.hub.Notice(hub.Auth).Clear()
	m.form = m.buildForm()
	return m, m.form.Init()
}

func (m authModel) submit() tea.Cmd {
	sess := m.sess
	mode := m.mode
	signUp := validate.SignUp{
		Name:            *m.name,
		Email:           *m.email,
		Password:        *m.password,
		ConfirmPassword: *m.confirm,
	}
	login := validate.Login{Email: *m.email, Password: *m.password}

	return func() tea.Msg {
		if mode == authSignUp {
			u, err := sess.hub.SignUp(sess.ctx, signUp)
			return authDoneMsg{user: u, err: err}
		}
		u, err := sess.hub.Login(sess.ctx, login)
		return authDoneMsg{user: u, err: err}
	}
}

func (m authModel) view() string {
	w := min(m.width-4, 72)

	title := titleStyle.Render("Welcome to TaskHub")
	sub := mutedStyle.Render("Log in to see your tasks")
	hint := mutedStyle.Render("ctrl+n: create an account  ctrl+c: quit")
	if m.mode == authSignUp {
		sub = mutedStyle.Render("Create an account to get started")
		hint = mutedStyle.Render("ctrl+n: back to log in  ctrl+c: quit")
	}

	body := m.form.View()
	if m.submitting {
		body = highlightStyle.Render("Contacting the server...")
	}

	rows := []string{title, sub, "", body}
	if n := renderNotice(m.sess.hub.Notice(hub.Auth).Current()); n != "" {
		rows = append(rows, "", n)
	}
	rows = append(rows, "", hint)

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
