package annot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorFor(t *testing.T) {
	rs := []TagRule{
		{Tag: "me", Color: "#ff0000"},
		{Tag: "you", Color: "#00ff00"},
		{Tag: "me", Color: "#0000ff"}, // duplicate: first rule wins
	}
	assert.Equal(t, "#ff0000", ColorFor(rs, "me"))
	assert.Equal(t, "#ff0000", ColorFor(rs, "ME"), "case-insensitive join")
	assert.Equal(t, "#00ff00", ColorFor(rs, "you"))
	assert.Equal(t, DefaultColor, ColorFor(rs, "stranger"))
	assert.Equal(t, DefaultColor, ColorFor(nil, "me"))
}
