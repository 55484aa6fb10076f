package annot

import (
	"regexp"
	"strings"
	"time"
)

// timestampRe finds an embedded "(YYYY-MM-DD HH:MM)" instant inside a body.
var timestampRe = regexp.MustCompile(`\((\d{4}-\d{2}-\d{2} \d{2}:\d{2})\)`)

// TimestampLayout is the embedded timestamp format, in time.Parse notation.
const TimestampLayout = "2006-01-02 15:04"

// Extract runs the matcher over every line of text and returns the flat
// annotation sequence in document order. Line indices are zero-based and
// strictly increasing; blank and non-matching lines are skipped but never
// renumbered. Extract is a pure function: every call allocates fresh
// annotations and no state survives between calls.
func Extract(text string, rules []TagRule) []*Annotation {
	m := NewMatcher(rules)
	var out []*Annotation
	for i, line := range strings.Split(text, "\n") {
		hit, ok := m.Match(line)
		if !ok {
			continue
		}
		body := hit.Body
		if body == "" {
			body = UntitledBody
		}
		out = append(out, &Annotation{
			LineIndex: i,
			Author:    hit.Author,
			Body:      body,
			Timestamp: parseEmbeddedTimestamp(body),
			Depth:     hit.Depth,
		})
	}
	return out
}

// parseEmbeddedTimestamp returns the Unix-millisecond value of the first
// embedded timestamp in body, or 0 when none is present or it does not
// parse. Parse failures are silent: the annotation simply has no timestamp.
func parseEmbeddedTimestamp(body string) int64 {
	sub := timestampRe.FindStringSubmatch(body)
	if sub == nil {
		return 0
	}
	ts, err := time.ParseInLocation(TimestampLayout, sub[1], time.Local)
	if err != nil {
		return 0
	}
	return ts.UnixMilli()
}
