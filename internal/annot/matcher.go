package annot

import (
	"regexp"
	"strings"
)

// Matcher recognizes annotation header lines for a fixed set of tags.
// A header line is zero or more leading spaces, one or more quote markers
// (each ">" optionally followed by whitespace), "[!tag]" with an optional
// single fold modifier ("-" or "+"), then the free-text body.
type Matcher struct {
	re *regexp.Regexp
}

// Match is the result of matching one line.
type Match struct {
	Author string // matched tag, lowercased
	Depth  int    // count of ">" markers preceding the tag
	Body   string // trimmed text after the tag, may be empty
}

// NewMatcher compiles a matcher for the given rules. Tag text is treated
// literally, so tags containing regexp metacharacters are safe. An empty
// rule set yields a matcher that matches nothing.
func NewMatcher(rules []TagRule) *Matcher {
	tags := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Tag == "" {
			continue
		}
		tags = append(tags, regexp.QuoteMeta(r.Tag))
	}
	if len(tags) == 0 {
		return &Matcher{}
	}
	pattern := `(?i)^[ \t]*((?:>[ \t]*)+)\[!(` + strings.Join(tags, "|") + `)\][-+]?[ \t]*(.*)$`
	return &Matcher{re: regexp.MustCompile(pattern)}
}

// Match tests a single line. The second return value reports whether the
// line is an annotation header.
func (m *Matcher) Match(line string) (Match, bool) {
	if m.re == nil {
		return Match{}, false
	}
	sub := m.re.FindStringSubmatch(line)
	if sub == nil {
		return Match{}, false
	}
	return Match{
		Author: strings.ToLower(sub[2]),
		Depth:  strings.Count(sub[1], ">"),
		Body:   strings.TrimSpace(sub[3]),
	}, true
}
