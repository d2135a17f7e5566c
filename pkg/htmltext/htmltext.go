// Package htmltext renders HTML template content as plain text for
// channels that cannot display markup.
package htmltext

import (
	"regexp"
	"strings"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	breakRe = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>`)
	wsRe    = regexp.MustCompile(`[ \t]+`)
)

// Strip removes HTML markup, turning block and line-break tags into
// newlines and collapsing runs of spaces.
func Strip(s string) string {
	s = breakRe.ReplaceAllString(s, "\n")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = wsRe.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
