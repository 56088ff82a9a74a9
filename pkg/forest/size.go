package forest

// SubtreeSizes returns, for every node index, the number of nodes in its
// subtree including itself: size(leaf) = 1 and
// size(node) = 1 + Σ size(child).
//
// Each node is visited exactly once in post-order, so the computation is O(N).
func SubtreeSizes(f *Forest) []int {
	sizes := make([]int, f.Len())
	for _, i := range f.PostOrder() {
		sizes[i] = 1
		for _, c := range f.children[i] {
			sizes[i] += sizes[c]
		}
	}
	return sizes
}
