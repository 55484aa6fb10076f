package annot

import "sort"

// Arrange produces the presentation order for a flat extraction result.
//
// Line mode (ByTimestamp false): annotations are ordered by line ascending
// and nested; a descending direction reverses the top-level root sequence
// only. Children keep document order at every level regardless of direction.
// This asymmetry is intentional and load-bearing for display: do not
// "fix" it by recursing the reversal.
//
// Chronological mode (ByTimestamp true): annotations are stably sorted by
// timestamp in the requested direction, missing timestamps sorting as 0
// (earliest). With Flatten the sorted flat list is final. Without Flatten
// the forest is built from the sorted sequence and every children list is
// re-ordered recursively with the same comparator, so no subtree is left in
// document order. Because the builder consumes the sorted sequence, an
// ordering that places a reply before its parent dissolves that nesting
// into additional roots.
//
// Arrange resets Children on every call, so it can be re-applied to the
// same extraction result with different views.
func Arrange(anns []*Annotation, v View) []*Annotation {
	flat := make([]*Annotation, len(anns))
	copy(flat, anns)
	for _, a := range flat {
		a.Children = nil
	}

	if v.ByTimestamp {
		sortByTimestamp(flat, v.Ascending)
		if v.Flatten {
			return flat
		}
		forest := BuildForest(flat)
		orderChildren(forest, v)
		return forest
	}

	sortByLine(flat)
	forest := BuildForest(flat)
	if !v.Ascending {
		reverse(forest)
	}
	orderChildren(forest, v)
	return forest
}

// orderChildren applies the view's comparator to every children list,
// recursively. In line mode children are always line-ascending: direction
// never recurses below the roots.
func orderChildren(nodes []*Annotation, v View) {
	for _, n := range nodes {
		if len(n.Children) == 0 {
			continue
		}
		if v.ByTimestamp {
			sortByTimestamp(n.Children, v.Ascending)
		} else {
			sortByLine(n.Children)
		}
		orderChildren(n.Children, v)
	}
}

// sortByTimestamp stably sorts by timestamp in the given direction. Ties
// (including all-zero timestamps) keep their relative extraction order.
func sortByTimestamp(anns []*Annotation, ascending bool) {
	sort.SliceStable(anns, func(i, j int) bool {
		if ascending {
			return anns[i].Timestamp < anns[j].Timestamp
		}
		return anns[i].Timestamp > anns[j].Timestamp
	})
}

func sortByLine(anns []*Annotation) {
	sort.SliceStable(anns, func(i, j int) bool {
		return anns[i].LineIndex < anns[j].LineIndex
	})
}

func reverse(anns []*Annotation) {
	for i, j := 0, len(anns)-1; i < j; i, j = i+1, j-1 {
		anns[i], anns[j] = anns[j], anns[i]
	}
}
