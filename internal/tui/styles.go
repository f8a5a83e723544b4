// Package tui provides the terminal user interface for intellimind.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/errors"
	"github.com/diogo/intellimind/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle    lipgloss.Style
	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	timeStyle            lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	charNormalStyle lipgloss.Style
	charWarnStyle   lipgloss.Style
	charLimitStyle  lipgloss.Style

	statusBarStyle    lipgloss.Style
	statusKeyStyle    lipgloss.Style
	statusDescStyle   lipgloss.Style
	statusReadyStyle  lipgloss.Style
	statusTypingStyle lipgloss.Style
	statusErrorStyle  lipgloss.Style
	indicatorStyle    lipgloss.Style

	errorStyle lipgloss.Style

	modalStyle      lipgloss.Style
	alertStyle      lipgloss.Style
	modalTitleStyle lipgloss.Style

	settingsPanelStyle    lipgloss.Style
	settingsTitleStyle    lipgloss.Style
	settingsItemStyle     lipgloss.Style
	settingsSelectedStyle lipgloss.Style
	settingsValueStyle    lipgloss.Style
	settingsCursorStyle   lipgloss.Style

	inlineStyles render.InlineStyles
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

// rebuildStyles creates all lipgloss styles with current color values
func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Foreground(colorText).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(4)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	timeStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	charNormalStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	charWarnStyle = lipgloss.NewStyle().Foreground(colorWarning)
	charLimitStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusReadyStyle = lipgloss.NewStyle().Foreground(colorSecondary)
	statusTypingStyle = lipgloss.NewStyle().Foreground(colorWarning)
	statusErrorStyle = lipgloss.NewStyle().Foreground(colorError).Bold(true)

	indicatorStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	modalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorWarning).
		Padding(1, 2)

	alertStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorError).
		Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		MarginBottom(1)

	settingsPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Background(colorSurface).
		Padding(1, 2)

	settingsTitleStyle = lipgloss.NewStyle().
		Foreground(colorText).
		Bold(true).
		MarginBottom(1)

	settingsItemStyle = lipgloss.NewStyle().
		Foreground(colorText).
		PaddingLeft(2)

	settingsSelectedStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	settingsValueStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	settingsCursorStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	inlineStyles = render.InlineStyles{
		Text:   lipgloss.NewStyle().Foreground(colorText),
		Strong: lipgloss.NewStyle().Foreground(colorText).Bold(true),
		Em:     lipgloss.NewStyle().Foreground(colorText).Italic(true),
		Code:   lipgloss.NewStyle().Foreground(colorWarning).Background(colorSurface),
	}
}

// statusStyle picks the status line style for kind
func statusStyle(kind chat.Kind) lipgloss.Style {
	switch kind {
	case chat.KindTyping:
		return statusTypingStyle
	case chat.KindError:
		return statusErrorStyle
	default:
		return statusReadyStyle
	}
}

// charStyle picks the character counter style for level
func charStyle(level chat.CharLevel) lipgloss.Style {
	switch level {
	case chat.CharLimit:
		return charLimitStyle
	case chat.CharWarn:
		return charWarnStyle
	default:
		return charNormalStyle
	}
}

// FormatError returns a styled error message with additional context
// extracted from the structured error types.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %v", err)))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case errors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the IntelliMind server is running and reachable"))
	case errors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise request_timeout_seconds"))
	case errors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server answered with an unexpected response"))
	}

	return sb.String()
}

// PrintError prints a styled error message.
func PrintError(err error) {
	if err == nil {
		return
	}
	fmt.Println(FormatError(err))
}
