package render

import (
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
)

// FormatMessage converts plain message text into the limited inline markup
// used by the transcript: newline becomes <br>, **x** becomes <strong>,
// *x* becomes <em> and `x` becomes <code>. The rules run in that order over
// the whole string, each exactly once.
//
// The input is NOT escaped. Markup already present in user or backend text
// passes through untouched, so the result must never be fed to an HTML
// renderer that trusts it.
func FormatMessage(text string) string {
	out := strings.ReplaceAll(text, "\n", "<br>")
	out = boldPattern.ReplaceAllString(out, "<strong>${1}</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>${1}</em>")
	out = codePattern.ReplaceAllString(out, "<code>${1}</code>")
	return out
}
