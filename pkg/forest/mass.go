package forest

// DescendantCounts returns, for every node index, the number of nodes strictly
// below it: Σ (1 + descendants(child)) over its children.
//
// It is computed by its own post-order pass rather than derived from
// [SubtreeSizes]; the two always satisfy descendants = size - 1.
func DescendantCounts(f *Forest) []int {
	counts := make([]int, f.Len())
	for _, i := range f.PostOrder() {
		for _, c := range f.children[i] {
			counts[i] += 1 + counts[c]
		}
	}
	return counts
}

// AncestorCounts returns, for every node index, the number of parent edges
// between it and its root. Roots have zero ancestors.
//
// Each count comes from walking parent links upward. The walk stops early at
// the first ancestor whose count is already known, so the total work stays
// linear even for long chains.
func AncestorCounts(f *Forest) []int {
	const unknown = -1
	counts := make([]int, f.Len())
	for i := range counts {
		counts[i] = unknown
	}

	var path []int
	for start := range counts {
		path = path[:0]
		cur := start
		for cur != NoParent && counts[cur] == unknown {
			path = append(path, cur)
			cur = f.parent[cur]
		}
		base := -1 // ancestors of the virtual parent above a root
		if cur != NoParent {
			base = counts[cur]
		}
		for k := len(path) - 1; k >= 0; k-- {
			base++
			counts[path[k]] = base
		}
	}
	return counts
}

// Masses returns mass(node) = ancestors(node) + descendants(node) for every
// node index.
//
// Mass is a visual weight used to size bodies. It is never a partition
// weight; the layout partitions by [SubtreeSizes].
func Masses(f *Forest) []int {
	anc := AncestorCounts(f)
	desc := DescendantCounts(f)
	masses := make([]int, f.Len())
	for i := range masses {
		masses[i] = anc[i] + desc[i]
	}
	return masses
}
