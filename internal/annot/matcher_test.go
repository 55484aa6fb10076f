package annot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(tags ...string) []TagRule {
	out := make([]TagRule, len(tags))
	for i, tag := range tags {
		out[i] = TagRule{Tag: tag, Color: "#ff0000"}
	}
	return out
}

func TestMatcher_Basic(t *testing.T) {
	m := NewMatcher(rules("me", "you"))

	hit, ok := m.Match("> [!me] first thoughts")
	require.True(t, ok)
	assert.Equal(t, "me", hit.Author)
	assert.Equal(t, 1, hit.Depth)
	assert.Equal(t, "first thoughts", hit.Body)
}

func TestMatcher_CaseInsensitive(t *testing.T) {
	m := NewMatcher(rules("Me"))

	hit, ok := m.Match("> [!ME] shouty")
	require.True(t, ok)
	assert.Equal(t, "me", hit.Author, "author is lowercased")

	_, ok = m.Match("> [!me] lower tag matches mixed-case rule")
	assert.True(t, ok)
}

func TestMatcher_DepthCounting(t *testing.T) {
	m := NewMatcher(rules("me"))

	cases := []struct {
		line  string
		depth int
	}{
		{"> [!me] one", 1},
		{">> [!me] two", 2},
		{"> > [!me] two spaced", 2},
		{"  > >\t> [!me] three indented", 3},
	}
	for _, tc := range cases {
		hit, ok := m.Match(tc.line)
		require.True(t, ok, "line %q", tc.line)
		assert.Equal(t, tc.depth, hit.Depth, "line %q", tc.line)
	}
}

func TestMatcher_Modifier(t *testing.T) {
	m := NewMatcher(rules("me"))

	hit, ok := m.Match("> [!me]- folded body")
	require.True(t, ok)
	assert.Equal(t, "folded body", hit.Body)

	hit, ok = m.Match("> [!me]+ expanded body")
	require.True(t, ok)
	assert.Equal(t, "expanded body", hit.Body)
}

func TestMatcher_SpecialCharsInTag(t *testing.T) {
	// Regexp metacharacters in a tag must be treated literally.
	m := NewMatcher(rules("c++", "q.a"))

	hit, ok := m.Match("> [!c++] pointer talk")
	require.True(t, ok)
	assert.Equal(t, "c++", hit.Author)

	// "q.a" must not match "qxa".
	_, ok = m.Match("> [!qxa] nope")
	assert.False(t, ok)
}

func TestMatcher_EmptyRuleSet(t *testing.T) {
	m := NewMatcher(nil)
	_, ok := m.Match("> [!me] anything")
	assert.False(t, ok)

	// Rules with empty tags are ignored too.
	m = NewMatcher([]TagRule{{Tag: ""}})
	_, ok = m.Match("> [!me] anything")
	assert.False(t, ok)
}

func TestMatcher_NonMatchingLines(t *testing.T) {
	m := NewMatcher(rules("me"))

	for _, line := range []string{
		"plain text",
		"[!me] no quote marker",
		"> [!them] unknown tag",
		"> [! me] space inside brackets",
		"> quoted but no tag",
		"",
	} {
		_, ok := m.Match(line)
		assert.False(t, ok, "line %q should not match", line)
	}
}
