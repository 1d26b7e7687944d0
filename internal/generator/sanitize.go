package generator

import (
	"regexp"
	"strings"
)

// Markdown artifacts that models emit despite instructions.
var (
	reBold      = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reUnder     = regexp.MustCompile(`__(.+?)__`)
	reHeading   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	reQuote     = regexp.MustCompile(`(?m)^>\s?`)
	reBullet    = regexp.MustCompile(`(?m)^[-*+]\s+`)
	reManyBlank = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips markdown artifacts and wrapping quotes from generated post
// text so it renders literally on the target platforms.
func Sanitize(text string) string {
	text = reBold.ReplaceAllString(text, "$1")
	text = reUnder.ReplaceAllString(text, "$1")
	text = reHeading.ReplaceAllString(text, "")
	text = reQuote.ReplaceAllString(text, "")
	text = reBullet.ReplaceAllString(text, "- ")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	text = strings.Join(lines, "\n")
	text = reManyBlank.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	// strip one pair of wrapping quotes, if any
	for _, pair := range [][2]string{{`"`, `"`}, {"“", "”"}, {"「", "」"}} {
		if strings.HasPrefix(text, pair[0]) && strings.HasSuffix(text, pair[1]) && len(text) > len(pair[0])+len(pair[1]) {
			text = strings.TrimSpace(text[len(pair[0]) : len(text)-len(pair[1])])
			break
		}
	}
	return text
}
