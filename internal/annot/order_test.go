package annot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleThread is a small three-comment document with one reply:
//
//	> [!me] A
//	> > [!you] B
//	> [!me] C (2024-01-01 10:00)
func sampleThread(t *testing.T) []*Annotation {
	t.Helper()
	anns := Extract("> [!me] A\n> > [!you] B\n> [!me] C (2024-01-01 10:00)", rules("me", "you"))
	require.Len(t, anns, 3)
	return anns
}

func TestArrange_LineAscending(t *testing.T) {
	forest := Arrange(sampleThread(t), View{Ascending: true})

	require.Len(t, forest, 2)
	assert.Equal(t, "A", forest[0].Body)
	// The embedded timestamp text stays part of the body.
	assert.Equal(t, "C (2024-01-01 10:00)", forest[1].Body)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "B", forest[0].Children[0].Body)
}

func TestArrange_LineDescendingReversesRootsOnly(t *testing.T) {
	forest := Arrange(sampleThread(t), View{Ascending: false})

	require.Len(t, forest, 2)
	assert.Equal(t, "C (2024-01-01 10:00)", forest[0].Body)
	assert.Equal(t, "A", forest[1].Body)
	// Children keep document order: the reversal never recurses.
	require.Len(t, forest[1].Children, 1)
	assert.Equal(t, "B", forest[1].Children[0].Body)
}

func TestArrange_ChronoFlatten(t *testing.T) {
	anns := sampleThread(t)

	asc := Arrange(anns, View{ByTimestamp: true, Flatten: true, Ascending: true})
	assert.Equal(t, []string{"A", "B", "C (2024-01-01 10:00)"}, bodies(asc), "zero timestamps sort first, stable")
	for _, a := range asc {
		assert.Empty(t, a.Children, "flatten drops nesting entirely")
	}

	desc := Arrange(anns, View{ByTimestamp: true, Flatten: true, Ascending: false})
	assert.Equal(t, []string{"C (2024-01-01 10:00)", "A", "B"}, bodies(desc))
}

func TestArrange_ChronoStableOnTies(t *testing.T) {
	same := []*Annotation{
		{LineIndex: 0, Body: "first", Depth: 1, Timestamp: 100},
		{LineIndex: 1, Body: "second", Depth: 1, Timestamp: 100},
		{LineIndex: 2, Body: "third", Depth: 1, Timestamp: 100},
	}
	got := Arrange(same, View{ByTimestamp: true, Flatten: true, Ascending: true})
	assert.Equal(t, []string{"first", "second", "third"}, bodies(got))

	got = Arrange(same, View{ByTimestamp: true, Flatten: true, Ascending: false})
	assert.Equal(t, []string{"first", "second", "third"}, bodies(got), "descending keeps tie order too")
}

func TestArrange_ChronoNestedOrdersChildren(t *testing.T) {
	// Root with two children whose timestamps invert their document order.
	anns := []*Annotation{
		{LineIndex: 0, Body: "root", Depth: 1, Timestamp: 50},
		{LineIndex: 1, Body: "late", Depth: 2, Timestamp: 200},
		{LineIndex: 2, Body: "early", Depth: 2, Timestamp: 100},
	}
	forest := Arrange(anns, View{ByTimestamp: true, Ascending: true})

	require.Len(t, forest, 1)
	require.Len(t, forest[0].Children, 2)
	assert.Equal(t, "early", forest[0].Children[0].Body)
	assert.Equal(t, "late", forest[0].Children[1].Body)

	// Descending rebuilds the forest from the reversed sequence: the deeper
	// nodes now precede their parent, so each becomes its own root (the
	// structural caveat documented on Arrange).
	forest = Arrange(anns, View{ByTimestamp: true, Ascending: false})
	require.Len(t, forest, 3)
	assert.Equal(t, []string{"late", "early", "root"}, bodies(forest))
	for _, n := range forest {
		assert.Empty(t, n.Children)
	}
}

func TestArrange_Reapplicable(t *testing.T) {
	anns := sampleThread(t)

	first := Arrange(anns, View{Ascending: true})
	require.Len(t, first[0].Children, 1)

	// A second arrangement over the same extraction must not duplicate
	// children accumulated by the first.
	second := Arrange(anns, View{Ascending: true})
	require.Len(t, second[0].Children, 1)

	flat := Arrange(anns, View{ByTimestamp: true, Flatten: true, Ascending: true})
	assert.Len(t, flat, 3)
}

func TestArrange_EmptyInput(t *testing.T) {
	assert.Empty(t, Arrange(nil, View{Ascending: true}))
	assert.Empty(t, Arrange(nil, View{ByTimestamp: true, Flatten: true}))
}
