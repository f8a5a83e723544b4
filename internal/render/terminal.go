package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// InlineStyles maps the transcript markup tags onto terminal styles
type InlineStyles struct {
	Text   lipgloss.Style
	Strong lipgloss.Style
	Em     lipgloss.Style
	Code   lipgloss.Style
}

// DefaultInlineStyles returns bold, italic and a highlighted code span
func DefaultInlineStyles() InlineStyles {
	return InlineStyles{
		Text:   lipgloss.NewStyle(),
		Strong: lipgloss.NewStyle().Bold(true),
		Em:     lipgloss.NewStyle().Italic(true),
		Code:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")).Background(lipgloss.Color("#24283b")),
	}
}

var inlineTags = []string{"<br>", "<strong>", "</strong>", "<em>", "</em>", "<code>", "</code>"}

// Terminal renders markup produced by FormatMessage for a terminal.
// Only the four tags FormatMessage emits are interpreted; anything else is
// printed literally.
func Terminal(markup string, styles InlineStyles) string {
	var (
		out              strings.Builder
		text             strings.Builder
		strong, em, code int
	)

	flush := func() {
		if text.Len() == 0 {
			return
		}
		style := styles.Text
		if strong > 0 {
			style = style.Inherit(styles.Strong).Bold(true)
		}
		if em > 0 {
			style = style.Inherit(styles.Em).Italic(true)
		}
		if code > 0 {
			style = styles.Code.Inherit(style)
		}
		out.WriteString(style.Render(text.String()))
		text.Reset()
	}

	for i := 0; i < len(markup); {
		tag := matchTag(markup[i:])
		if tag == "" {
			text.WriteByte(markup[i])
			i++
			continue
		}

		flush()
		switch tag {
		case "<br>":
			out.WriteString("\n")
		case "<strong>":
			strong++
		case "</strong>":
			strong = max(strong-1, 0)
		case "<em>":
			em++
		case "</em>":
			em = max(em-1, 0)
		case "<code>":
			code++
		case "</code>":
			code = max(code-1, 0)
		}
		i += len(tag)
	}
	flush()

	return out.String()
}

// Plain strips the inline markup, turning <br> back into newlines
func Plain(markup string) string {
	r := strings.NewReplacer(
		"<br>", "\n",
		"<strong>", "", "</strong>", "",
		"<em>", "", "</em>", "",
		"<code>", "", "</code>", "",
	)
	return r.Replace(markup)
}

func matchTag(s string) string {
	if len(s) == 0 || s[0] != '<' {
		return ""
	}
	for _, tag := range inlineTags {
		if strings.HasPrefix(s, tag) {
			return tag
		}
	}
	return ""
}
