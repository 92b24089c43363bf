// Package auth is the sign-in and sign-up screen shown while no session
// is held.
package auth

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/matchbox/internal/api"
	"github.com/nhle/matchbox/internal/model"
	"github.com/nhle/matchbox/internal/state"
	"github.com/nhle/matchbox/internal/theme"
	"github.com/nhle/matchbox/internal/ui"
)

// SignedInMsg is emitted when the backend accepts a sign-in or sign-up.
// User is nil when the backend only returned a token.
type SignedInMsg struct {
	Token string
	Email string
	User  *model.User
}

type authMode int

const (
	modeChoose authMode = iota
	modeLogin
	modeRegister
)

const (
	choiceLogin    = "login"
	choiceRegister = "register"
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	choice   string
	fullName string
	username string
	email    string
	password string
	role     model.Role
}

type authFailedMsg struct{ err error }

// Model is the Bubble Tea model for the auth screen.
type Model struct {
	mode    authMode
	backend api.AuthService
	device  string
	auth    state.Auth
	form    *huh.Form
	fb      *formBindings
	width   int
	height  int
}

// New creates the auth screen. device is sent with sign-in requests.
func New(backend api.AuthService, device string, width, height int) Model {
	m := Model{
		backend: backend,
		device:  device,
		fb:      &formBindings{choice: choiceLogin, role: model.RoleUser},
		width:   width,
		height:  height,
	}
	m.form = m.buildChooser()
	return m
}

// Init starts the sign-in / sign-up chooser.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Reset returns the screen to the chooser, keeping the typed email.
func (m *Model) Reset() tea.Cmd {
	m.mode = modeChoose
	m.auth = state.Auth{}
	m.fb.password = ""
	m.form = m.buildChooser()
	return m.form.Init()
}

// Loading reports whether a request is in flight.
func (m Model) Loading() bool {
	return m.auth.Loading
}

// Update handles messages for the auth screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case authFailedMsg:
		m.auth = m.auth.Failure(msg.err)
		m.fb.password = ""
		m.form = m.buildFormFor(m.mode)
		return m, m.form.Init()
	}

	if m.form == nil || m.auth.Loading {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit()
	case huh.StateAborted:
		if m.mode == modeChoose {
			return m, tea.Quit
		}
		cmd = m.Reset()
		return m, cmd
	}
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	switch m.mode {
	case modeChoose:
		if m.fb.choice == choiceRegister {
			m.mode = modeRegister
		} else {
			m.mode = modeLogin
		}
		m.form = m.buildFormFor(m.mode)
		return m, m.form.Init()

	case modeLogin:
		m.auth = m.auth.StartLoading()
		return m, m.login()

	case modeRegister:
		m.auth = m.auth.StartLoading()
		return m, m.register()
	}
	return m, nil
}

func (m Model) buildFormFor(mode authMode) *huh.Form {
	if mode == modeRegister {
		return m.buildRegisterForm()
	}
	return m.buildLoginForm()
}

func (m Model) buildChooser() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Welcome to MatchBox").
				Options(
					huh.NewOption("Sign in", choiceLogin),
					huh.NewOption("Create an account", choiceRegister),
				).
				Value(&m.fb.choice),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildLoginForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(ui.Required("Email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(ui.Required("Password")),
			huh.NewSelect[model.Role]().
				Title("Role").
				Options(
					huh.NewOption("User", model.RoleUser),
					huh.NewOption("Admin", model.RoleAdmin),
				).
				Value(&m.fb.role),
		),
	).WithWidth(w).WithHeight(h)
}

func (m Model) buildRegisterForm() *huh.Form {
	w, h := ui.FormSize(m.width, m.height)
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full name").
				Value(&m.fb.fullName).
				Validate(ui.Required("Full name")),
			huh.NewInput().
				Title("Username").
				Value(&m.fb.username).
				Validate(ui.Required("Username")),
			huh.NewInput().
				Title("Email").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(validatePassword),
		),
	).WithWidth(w).WithHeight(h)
}

func validateEmail(s string) error {
	if err := ui.Required("Email")(s); err != nil {
		return err
	}
	if !strings.Contains(s, "@") {
		return errInvalidEmail
	}
	return nil
}

func validatePassword(s string) error {
	if len(s) < minPasswordLen {
		return errShortPassword
	}
	return nil
}

func (m Model) login() tea.Cmd {
	backend := m.backend
	req := model.LoginRequest{
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
		Role:     m.fb.role,
		Device:   m.device,
	}
	return func() tea.Msg {
		resp, err := backend.Login(context.Background(), req)
		if err != nil {
			return authFailedMsg{err: err}
		}
		return signedIn(resp, req.Email)
	}
}

func (m Model) register() tea.Cmd {
	backend := m.backend
	req := model.RegisterRequest{
		FullName: strings.TrimSpace(m.fb.fullName),
		Username: strings.TrimSpace(m.fb.username),
		Email:    strings.TrimSpace(m.fb.email),
		Password: m.fb.password,
	}
	return func() tea.Msg {
		resp, err := backend.Register(context.Background(), req)
		if err != nil {
			return authFailedMsg{err: err}
		}
		return signedIn(resp, req.Email)
	}
}

func signedIn(resp *model.AuthResponse, email string) SignedInMsg {
	msg := SignedInMsg{Token: resp.Token, Email: resp.Email, User: resp.User}
	if msg.Email == "" {
		msg.Email = email
	}
	return msg
}

// View renders the auth screen.
func (m Model) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).MarginBottom(1)
	switch m.mode {
	case modeLogin:
		b.WriteString(titleStyle.Render("Sign in"))
	case modeRegister:
		b.WriteString(titleStyle.Render("Create an account"))
	default:
		b.WriteString(titleStyle.Render("MatchBox"))
	}
	b.WriteString("\n")

	if m.auth.Err != nil {
		b.WriteString(theme.ErrorStyle.Render(failureText(m.mode, m.auth.Err)))
		b.WriteString("\n\n")
	}

	if m.auth.Loading {
		b.WriteString(theme.MutedStyle.Render("Contacting server..."))
	} else if m.form != nil {
		b.WriteString(m.form.View())
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func failureText(mode authMode, err error) string {
	if mode == modeRegister {
		return api.Message(err, "Registration failed")
	}
	if api.IsAuthError(err) {
		return "Invalid email or password"
	}
	return api.Message(err, "Sign in failed")
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
