package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/advisor"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

const (
	title            = "Math Placement Advisor"
	loginPlaceholder = "Student ID"
	chatPlaceholder  = "Ask about math placement..."
	invalidLogin     = "Invalid Student ID. Please try again."
	emptyLogin       = "Please enter your Student ID."
)

type screen int

const (
	screenLogin screen = iota
	screenChat
)

// Model is the Bubble Tea model for the advisor TUI. It shows a login
// screen until the session is authenticated and a chat screen afterwards.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model

	loop    *advisor.Loop
	roster  RosterProvider
	session *advisor.Session
	theme   advisor.Theme
	styles  Styles

	screen   screen
	blocks   []MessageBlock
	loginErr string
	notice   string
	running  bool
	width    int
	ready    bool
}

// New creates a TUI Model driving session through loop. Logins are checked
// against the roster returned by roster.
func New(loop *advisor.Loop, roster RosterProvider, session *advisor.Session, theme advisor.Theme) Model {
	m := Model{
		Input:   textinput.New(),
		loop:    loop,
		roster:  roster,
		session: session,
		theme:   theme,
		styles:  NewStyles(theme),
	}
	m.Input.CharLimit = 0
	if session.Authenticated() {
		m.screen = screenChat
		m.Input = chatInput(m.Input)
	} else {
		m.Input = loginInput(m.Input)
	}
	return m
}

// Running returns whether a login or turn is in flight.
func (m Model) Running() bool { return m.running }

// Session returns the session driven by the model.
func (m Model) Session() *advisor.Session { return m.session }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case RosterLoadedMsg:
		m.running = false
		return m.finishLogin(msg)

	case AnswerMsg:
		m.running = false
		if msg.Err != nil {
			m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
		} else {
			m.blocks = append(m.blocks, NewAssistantTextBlock(msg.Reply.Content, m.theme))
		}
		m = m.refresh()
		cmd := m.Input.Focus()
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.screen == screenChat {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.screen == screenLogin {
		return m.loginView()
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(m.styles.Accent.Render(title))
	b.WriteString("\n")
	b.WriteString(m.styles.Accent.Render(strings.Repeat("─", min(m.width, 40))))
	b.WriteString("\n\n")
	b.WriteString("Welcome! Please sign in\n")
	b.WriteString("Enter your Student ID:\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n\n")
	switch {
	case m.loginErr != "":
		b.WriteString(m.styles.Error.Render(m.loginErr))
	case m.running:
		b.WriteString(m.styles.Muted.Render("Signing in..."))
	case m.notice != "":
		b.WriteString(m.styles.Success.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(m.truncate("Enter to sign in, Ctrl+G to continue as guest, Ctrl+C to quit")))
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	m.width = msg.Width
	m.Input.Width = msg.Width
	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	return m.refresh()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		// An issued generation call cannot be cancelled.
		if m.running {
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if m.screen == screenLogin {
			return m.submitLogin(text)
		}
		if text == "" {
			return m, nil
		}
		return m.submitQuestion(text)

	case tea.KeyCtrlG:
		if m.running || m.screen != screenLogin {
			return m, nil
		}
		return m.signInGuest()

	case tea.KeyCtrlL:
		if m.running || m.screen != screenChat {
			return m, nil
		}
		return m.signOut()
	}

	if m.running {
		return m, nil
	}
	var cmd tea.Cmd
	var cmds []tea.Cmd
	// Character keys go only to the input so 'j'/'k' type instead of scroll.
	if m.screen == screenChat && msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) submitLogin(text string) (tea.Model, tea.Cmd) {
	m.notice = ""
	if text == "" {
		m.loginErr = emptyLogin
		return m, nil
	}
	if advisor.IsGuestID(text) {
		return m.signInGuest()
	}
	m.loginErr = ""
	m.running = true
	return m, loadRoster(m.roster, text)
}

func (m Model) finishLogin(msg RosterLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil && !errors.Is(msg.Err, advisor.ErrRosterUnavailable) {
		m.loginErr = fmt.Sprintf("Error: %v", msg.Err)
		return m, nil
	}
	rec, err := m.loop.Login(m.session, msg.Roster, msg.Submitted)
	switch {
	case errors.Is(err, advisor.ErrInvalidStudentID), errors.Is(err, advisor.ErrStudentNotFound):
		m.loginErr = invalidLogin
		m.Input.SetValue("")
		return m, nil
	case err != nil:
		m.loginErr = fmt.Sprintf("Error: %v", err)
		return m, nil
	}
	return m.enterChat(fmt.Sprintf("Welcome, %s!", rec.Name()))
}

func (m Model) signInGuest() (tea.Model, tea.Cmd) {
	if _, err := m.loop.Guest(m.session); err != nil {
		m.loginErr = fmt.Sprintf("Error: %v", err)
		return m, nil
	}
	return m.enterChat("Welcome, Guest!")
}

func (m Model) enterChat(greeting string) (tea.Model, tea.Cmd) {
	m.screen = screenChat
	m.loginErr = ""
	m.notice = ""
	m.Input = chatInput(m.Input)
	m.blocks = []MessageBlock{NewNoticeBlock(greeting, m.styles)}
	m = m.refresh()
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) signOut() (tea.Model, tea.Cmd) {
	m.loop.Logout(m.session)
	m.screen = screenLogin
	m.blocks = nil
	m.notice = "Signed out."
	m.Input = loginInput(m.Input)
	m = m.refresh()
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) submitQuestion(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.blocks = append(m.blocks, NewUserMessageBlock(text, m.speaker(), m.styles))
	m.running = true
	m.Input.Blur()
	m = m.refresh()
	return m, ask(m.loop, m.session, text)
}

// renderSession creates blocks from an existing transcript.
func (m Model) renderSession() Model {
	for _, msg := range m.session.Transcript() {
		switch msg.Role {
		case advisor.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.speaker(), m.styles))
		case advisor.RoleAssistant:
			m.blocks = append(m.blocks, NewAssistantTextBlock(msg.Content, m.theme))
		}
	}
	return m
}

// speaker labels the signed-in user's questions with their first name.
func (m Model) speaker() string {
	rec, ok := m.session.Student()
	switch {
	case !ok:
		return ""
	case rec.Guest:
		return advisor.GuestID
	}
	name, _, _ := strings.Cut(rec.Name(), " ")
	return name
}

func (m Model) refresh() Model {
	if !m.ready {
		return m
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) statusLine() string {
	if m.running {
		return m.styles.Muted.Render("Thinking...")
	}
	status := advisor.Describe(m.session) + " · Enter to send, Ctrl+L to sign out, Ctrl+C to quit"
	return m.styles.Muted.Render(m.truncate(status))
}

func (m Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return runewidth.Truncate(s, m.width, "…")
}

func loginInput(in textinput.Model) textinput.Model {
	in.Reset()
	in.Prompt = "> "
	in.Placeholder = loginPlaceholder
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Focus()
	return in
}

func chatInput(in textinput.Model) textinput.Model {
	in.Reset()
	in.Prompt = ""
	in.Placeholder = chatPlaceholder
	in.EchoMode = textinput.EchoNormal
	in.Focus()
	return in
}

func loadRoster(roster RosterProvider, submitted string) tea.Cmd {
	return func() tea.Msg {
		r, err := roster.Get(context.Background())
		return RosterLoadedMsg{Submitted: submitted, Roster: r, Err: err}
	}
}

// ask runs one turn off the update loop. The session is not touched by the
// model until the resulting AnswerMsg arrives.
func ask(loop *advisor.Loop, session *advisor.Session, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := loop.Ask(context.Background(), session, text)
		return AnswerMsg{Reply: reply, Err: err}
	}
}
