package annot

import (
	"strings"
	"time"
)

// BuildBlock renders a complete annotation block ready for insertion into a
// document. The header line carries the body's first line and the instant in
// embedded-timestamp form; any remaining body lines follow as quoted
// continuation lines. Keeping the first line on the header matters: the
// matcher reads header lines only, so text on the header is what surfaces as
// the annotation's body on re-extraction.
//
// The header parses back through a matcher configured with the same author
// as a tag, and the timestamp round-trips through Extract.
func BuildBlock(author, body string, at time.Time) string {
	var b strings.Builder
	b.WriteString("> [!")
	b.WriteString(strings.ToLower(author))
	b.WriteString("]- ")

	var rest []string
	if trimmed := strings.TrimRight(body, "\n"); strings.TrimSpace(trimmed) != "" {
		lines := strings.Split(trimmed, "\n")
		b.WriteString(lines[0])
		b.WriteString(" ")
		rest = lines[1:]
	}

	b.WriteString("(")
	b.WriteString(at.Format(TimestampLayout))
	b.WriteString(")\n")

	for _, line := range rest {
		b.WriteString("> ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
