package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/intellimind/internal/chat"
	"github.com/diogo/intellimind/internal/models"
)

// settingsStep is how far one left/right press moves a slider
const settingsStep = 0.1

type settingsField struct {
	label  string
	action chat.Action
}

var settingsFields = []settingsField{
	{"Rate", chat.ActionRate},
	{"Pitch", chat.ActionPitch},
	{"Volume", chat.ActionVolume},
	{"Language", chat.ActionLanguage},
}

// handleSettingsKey drives the voice settings panel
func (m *Model) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "ctrl+o", "enter":
		m.settingsOpen = false
	case "up", "k":
		m.settingsCursor = (m.settingsCursor + len(settingsFields) - 1) % len(settingsFields)
	case "down", "j", "tab":
		m.settingsCursor = (m.settingsCursor + 1) % len(settingsFields)
	case "left", "h", "-":
		return m.adjustSetting(-1)
	case "right", "l", "+", "=":
		return m.adjustSetting(1)
	}
	return nil
}

// adjustSetting moves the selected field one step in dir and dispatches the new value
func (m *Model) adjustSetting(dir int) tea.Cmd {
	field := settingsFields[m.settingsCursor]
	value := nextSettingValue(m.view.Settings, field.action, dir)
	return m.dispatch(field.action, value)
}

// nextSettingValue returns the control value one step away from the current setting
func nextSettingValue(s models.VoiceSettings, action chat.Action, dir int) string {
	step := settingsStep * float64(dir)
	switch action {
	case chat.ActionRate:
		return formatSetting(s.Rate + step)
	case chat.ActionPitch:
		return formatSetting(s.Pitch + step)
	case chat.ActionVolume:
		return formatSetting(s.Volume + step)
	default:
		langs := models.Languages()
		idx := 0
		for i, l := range langs {
			if strings.EqualFold(l, s.Lang) {
				idx = i
				break
			}
		}
		return langs[(idx+dir+len(langs))%len(langs)]
	}
}

// formatSetting rounds to one decimal so repeated steps do not drift
func formatSetting(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func renderSettings(s models.VoiceSettings, cursor, width int) string {
	values := []string{
		fmt.Sprintf("%.1f", s.Rate),
		fmt.Sprintf("%.1f", s.Pitch),
		fmt.Sprintf("%.1f", s.Volume),
		s.Lang,
	}

	var b strings.Builder
	b.WriteString(settingsTitleStyle.Render("Voice settings"))
	b.WriteString("\n")
	for i, f := range settingsFields {
		line := fmt.Sprintf("%-9s %s", f.label, settingsValueStyle.Render(values[i]))
		if i == cursor {
			b.WriteString(settingsCursorStyle.Render("▸ ") + settingsSelectedStyle.Render(line))
		} else {
			b.WriteString(settingsItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString(hintStyle.Render("↑↓ select  ←→ adjust  Esc close"))

	return settingsPanelStyle.Width(width).Render(b.String())
}
