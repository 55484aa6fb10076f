// Package annot extracts tagged quote-block annotations from Markdown text
// and arranges them into orderable comment threads.
package annot

import "strings"

// UntitledBody is the placeholder body for annotations with no text after the tag.
const UntitledBody = "Untitled"

// DefaultColor is the render color used when no tag rule matches an author.
const DefaultColor = "#888888"

// TagRule binds a recognized annotation tag to a display color.
// Tags are compared case-insensitively. Duplicate tags are permitted;
// the first rule wins when resolving a color.
type TagRule struct {
	Tag   string `json:"tag" yaml:"tag"`
	Color string `json:"color" yaml:"color"`
}

// Annotation is a single extracted comment.
//
// LineIndex, Author, Body, Timestamp, and Depth are fixed at extraction.
// Children is populated exactly once, by BuildForest; the extractor always
// leaves it nil.
type Annotation struct {
	LineIndex int    `json:"line_index"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	// Timestamp is a Unix-millisecond instant parsed from an embedded
	// (YYYY-MM-DD HH:MM) pattern in the body; 0 means none.
	Timestamp int64         `json:"timestamp,omitempty"`
	Depth     int           `json:"depth"`
	Children  []*Annotation `json:"children,omitempty"`
}

// View selects how annotations are arranged for presentation.
type View struct {
	// ByTimestamp switches from document order to chronological order.
	ByTimestamp bool `json:"by_timestamp" yaml:"by_timestamp"`
	// Flatten drops nesting entirely; only meaningful with ByTimestamp.
	Flatten bool `json:"flatten" yaml:"flatten"`
	// Ascending selects the sort direction.
	Ascending bool `json:"ascending" yaml:"ascending"`
}

// ColorFor resolves the display color for an author against the rule set,
// falling back to DefaultColor when no rule matches.
func ColorFor(rules []TagRule, author string) string {
	for _, r := range rules {
		if strings.EqualFold(r.Tag, author) {
			return r.Color
		}
	}
	return DefaultColor
}
