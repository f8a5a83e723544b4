package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/models"
	"github.com/diogo/intellimind/internal/render"
)

// Message types for the TUI
type (
	// refreshMsg tells the model the screen state changed
	refreshMsg struct{}
	errMsg     struct {
		err error
	}
)

// Controller is the part of chat.Controller the TUI uses
type Controller interface {
	Dispatch(ctx context.Context, action chat.Action, value string) error
	LastResponse() string
	UpdateStatus(text string, kind chat.Kind)
}

// Model represents the TUI state
type Model struct {
	ctx       context.Context
	ctrl      Controller
	screen    *Screen
	serverURL string
	copyFn    func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	view              snapshot
	inputVersion      uint64
	focusVersion      uint64
	transcriptVersion uint64
	spinning          bool
	settingsOpen      bool
	settingsCursor    int
	ready             bool
	err               error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model rendering screen and dispatching
// user actions to ctrl.
func NewChatModel(ctx context.Context, ctrl Controller, screen *Screen, serverURL string) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = chat.MaxInputLength
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		screen:    screen,
		serverURL: serverURL,
		copyFn:    clipboard.WriteAll,
		textarea:  ta,
		spinner:   s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		func() tea.Msg { return refreshMsg{} },
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.updateViewport()

	case refreshMsg:
		cmds = append(cmds, m.refresh())

	case errMsg:
		m.err = msg.err

	case spinner.TickMsg:
		if m.view.Busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	case tea.KeyMsg:
		if m.view.ConfirmPrompt != "" {
			return m, m.handleConfirmKey(msg)
		}
		if m.view.Alert != "" {
			return m, m.handleAlertKey(msg)
		}
		if m.settingsOpen {
			return m, m.handleSettingsKey(msg)
		}

		handled, cmd := m.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if handled {
			return m, tea.Batch(cmds...)
		}

		// Only pass KeyMsg to textarea to prevent escape sequence leaks
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		m.screen.syncInput(m.textarea.Value())
		return m, tea.Batch(cmds...)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes chat-level shortcuts. It reports whether the key was consumed.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return true, tea.Quit

	case "enter":
		m.screen.syncInput(m.textarea.Value())
		if !m.view.SendEnabled || strings.TrimSpace(m.textarea.Value()) == "" {
			return true, nil
		}
		m.err = nil
		return true, m.dispatch(chat.ActionSend, "")

	case "shift+enter", "alt+enter", "ctrl+j":
		m.textarea.InsertString("\n")
		m.screen.syncInput(m.textarea.Value())
		return true, nil

	case "ctrl+l":
		return true, m.dispatch(chat.ActionClear, "")

	case "ctrl+r":
		if !m.view.Caps.Recognition {
			return true, nil
		}
		return true, m.dispatch(chat.ActionToggleVoice, "")

	case "ctrl+s":
		if !m.view.Caps.Synthesis {
			return true, nil
		}
		return true, m.dispatch(chat.ActionSpeak, "")

	case "ctrl+k":
		return true, m.textarea.Focus()

	case "ctrl+y":
		return true, m.copyLastResponse()

	case "ctrl+o":
		m.settingsOpen = true
		m.settingsCursor = 0
		return true, nil

	case "up", "down":
		// arrows move the cursor while the input spans several lines
		if m.textarea.LineCount() > 1 {
			return false, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return true, cmd

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return true, cmd
	}
	return false, nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		m.screen.answerConfirm(true)
	case "n", "esc":
		m.screen.answerConfirm(false)
	case "ctrl+c":
		m.screen.answerConfirm(false)
		return tea.Quit
	}
	return nil
}

func (m *Model) handleAlertKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", " ":
		m.screen.dismissAlert()
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

// dispatch runs action on the controller outside the event loop
func (m Model) dispatch(action chat.Action, value string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if err := ctrl.Dispatch(ctx, action, value); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// copyLastResponse puts the most recent reply on the clipboard
func (m Model) copyLastResponse() tea.Cmd {
	ctrl, copyFn := m.ctrl, m.copyFn
	return func() tea.Msg {
		text := ctrl.LastResponse()
		if text == "" {
			ctrl.UpdateStatus("No response to copy", chat.KindError)
			return nil
		}
		if err := copyFn(text); err != nil {
			return errMsg{err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		ctrl.UpdateStatus("Copied to clipboard", chat.KindReady)
		return nil
	}
}

// refresh pulls the screen state and syncs the components with it
func (m *Model) refresh() tea.Cmd {
	m.view = m.screen.snapshot()

	var cmds []tea.Cmd
	if m.view.InputVersion != m.inputVersion {
		m.inputVersion = m.view.InputVersion
		m.textarea.SetValue(m.view.Input)
	}
	if m.view.FocusVersion != m.focusVersion {
		m.focusVersion = m.view.FocusVersion
		cmds = append(cmds, m.textarea.Focus())
	}
	if m.view.TranscriptVersion != m.transcriptVersion {
		m.transcriptVersion = m.view.TranscriptVersion
		m.updateViewport()
		m.viewport.GotoBottom()
	}
	if m.view.Busy && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m *Model) resize() {
	headerHeight := 3
	inputHeight := 5
	statusHeight := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderTranscript(m.view.Messages, m.viewport.Width-6))
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ IntelliMind Assistant"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.serverURL),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View()))

	switch {
	case m.view.ConfirmPrompt != "":
		sections = append(sections, renderConfirm(m.view.ConfirmPrompt, contentWidth))
	case m.view.Alert != "":
		sections = append(sections, renderAlert(m.view.Alert, contentWidth))
	case m.settingsOpen:
		sections = append(sections, renderSettings(m.view.Settings, m.settingsCursor, contentWidth))
	default:
		sections = append(sections, m.renderInput(contentWidth))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderInput(width int) string {
	var content string
	if m.view.Busy {
		content = fmt.Sprintf("%s %s", m.spinner.View(), loadingStyle.Render(chat.StatusThinking))
	} else {
		n, level := chat.CharCount(m.textarea.Value())
		counter := charStyle(level).Render(fmt.Sprintf("%d/%d", n, chat.MaxInputLength))
		label := lipgloss.JoinHorizontal(lipgloss.Center, inputLabelStyle.Render("You"), counter)
		content = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	return inputPanelStyle.Width(width).Render(content)
}

// renderStatusBar renders the status line and the shortcuts
func (m Model) renderStatusBar(width int) string {
	status := statusStyle(m.view.Status.Kind).Render("● " + m.view.Status.Text)
	if m.view.Listening {
		status += indicatorStyle.Render("  🎤 Listening")
	}
	if m.view.Speaking {
		status += indicatorStyle.Render("  🔊 Speaking")
	}

	var items []string
	for _, s := range shortcuts(m.view.Caps) {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	keys := statusBarStyle.Render(strings.Join(items, "  │  "))

	return lipgloss.JoinVertical(lipgloss.Left, status, lipgloss.NewStyle().Width(width).Render(keys))
}

type shortcut struct {
	key  string
	desc string
}

// shortcuts lists the key bindings shown in the status bar; speech keys only
// appear when the capability exists
func shortcuts(caps chat.Capabilities) []shortcut {
	list := []shortcut{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Ctrl+L", "Clear"},
	}
	if caps.Recognition {
		list = append(list, shortcut{"Ctrl+R", "Voice"})
	}
	if caps.Synthesis {
		list = append(list, shortcut{"Ctrl+S", "Speak"})
	}
	if caps.Recognition || caps.Synthesis {
		list = append(list, shortcut{"Ctrl+O", "Voice settings"})
	}
	return append(list, shortcut{"Ctrl+Y", "Copy"}, shortcut{"Esc", "Quit"})
}

func renderConfirm(prompt string, width int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		modalTitleStyle.Render(prompt),
		statusKeyStyle.Render("y")+statusDescStyle.Render(" Yes")+"   "+
			statusKeyStyle.Render("n")+statusDescStyle.Render(" No"),
	)
	return modalStyle.Width(width).Render(body)
}

func renderAlert(message string, width int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		errorStyle.Render(message),
		statusKeyStyle.Render("Enter")+statusDescStyle.Render(" OK"),
	)
	return alertStyle.Width(width).Render(body)
}

// renderTranscript renders every message with its label, time and inline markup
func renderTranscript(msgs []models.Message, bubbleWidth int) string {
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	var content strings.Builder
	for i, msg := range msgs {
		if i > 0 {
			content.WriteString("\n")
		}
		body := render.Terminal(render.FormatMessage(msg.Text), inlineStyles)
		stamp := timeStyle.Render(" " + msg.Time())

		if msg.IsUser() {
			content.WriteString(userLabelStyle.Render("⬤ You") + stamp + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(body))
		} else {
			content.WriteString(assistantLabelStyle.Render("✦ IntelliMind") + stamp + "\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(body))
		}
		content.WriteString("\n")
	}
	return content.String()
}
