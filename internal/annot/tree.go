package annot

// BuildForest reconstructs parent/child nesting from a flat sequence using
// Depth as the sole structural signal, and returns the roots.
//
// The input must be in document order (ascending LineIndex) with empty
// Children; the structural result for any other ordering is unspecified.
// Depth gaps are tolerated: an annotation two levels deeper than the nearest
// open ancestor still attaches to that ancestor.
func BuildForest(anns []*Annotation) []*Annotation {
	var roots []*Annotation
	// Stack of currently open annotations, shallowest first.
	stack := make([]*Annotation, 0, 8)
	for _, a := range anns {
		// Anything at the same depth or deeper cannot be an ancestor.
		for len(stack) > 0 && stack[len(stack)-1].Depth >= a.Depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, a)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, a)
		}
		stack = append(stack, a)
	}
	return roots
}

// Flatten returns the pre-order traversal of a forest as a flat sequence.
func Flatten(roots []*Annotation) []*Annotation {
	var out []*Annotation
	var walk func(*Annotation)
	walk = func(a *Annotation) {
		out = append(out, a)
		for _, c := range a.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
