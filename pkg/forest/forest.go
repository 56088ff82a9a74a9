package forest

// NoParent is the parent index reported for roots.
const NoParent = -1

// Entry is one input record: a node id and the id of its parent.
// An empty Parent marks a root.
type Entry struct {
	ID     string
	Parent string
}

// Forest is an immutable set of disjoint trees stored as an index-addressed
// node table. Index i refers to the i-th entry of the collection passed to
// [Build], so input order is preserved everywhere.
//
// The zero value is an empty forest; use [Build] to create a populated one.
type Forest struct {
	ids      []string
	index    map[string]int
	parent   []int
	children [][]int
	roots    []int
}

// Len returns the number of nodes in the forest.
func (f *Forest) Len() int { return len(f.ids) }

// ID returns the id of the node at index i.
func (f *Forest) ID(i int) string { return f.ids[i] }

// IDs returns all node ids in input order.
// The returned slice must not be modified.
func (f *Forest) IDs() []string { return f.ids }

// Index returns the table index of id and true, or -1 and false if absent.
func (f *Forest) Index(id string) (int, bool) {
	i, ok := f.index[id]
	if !ok {
		return -1, false
	}
	return i, true
}

// Parent returns the parent index of node i, or [NoParent] for roots.
func (f *Forest) Parent(i int) int { return f.parent[i] }

// IsRoot reports whether node i has no parent.
func (f *Forest) IsRoot(i int) bool { return f.parent[i] == NoParent }

// IsLeaf reports whether node i has no children.
func (f *Forest) IsLeaf(i int) bool { return len(f.children[i]) == 0 }

// Children returns the child indices of node i in first-occurrence order.
// The returned slice must not be modified.
func (f *Forest) Children(i int) []int { return f.children[i] }

// Roots returns root indices in input order.
// The returned slice must not be modified.
func (f *Forest) Roots() []int { return f.roots }

// RootIDs returns the ids of all roots in input order.
func (f *Forest) RootIDs() []string { return f.idsOf(f.roots) }

// ChildIDs returns the ids of the children of id in first-occurrence order.
// Returns nil if id is unknown or a leaf.
func (f *Forest) ChildIDs(id string) []string {
	i, ok := f.index[id]
	if !ok {
		return nil
	}
	return f.idsOf(f.children[i])
}

// ParentID returns the parent id of id, or "" for roots and unknown ids.
func (f *Forest) ParentID(id string) string {
	i, ok := f.index[id]
	if !ok || f.parent[i] == NoParent {
		return ""
	}
	return f.ids[f.parent[i]]
}

// LeafCount returns the number of nodes without children.
func (f *Forest) LeafCount() int {
	n := 0
	for _, c := range f.children {
		if len(c) == 0 {
			n++
		}
	}
	return n
}

// ByID converts an index-addressed value table into a map keyed by node id.
// It panics if len(values) != f.Len().
func ByID[T any](f *Forest, values []T) map[string]T {
	if len(values) != len(f.ids) {
		panic("forest: value table length does not match node count")
	}
	m := make(map[string]T, len(values))
	for i, v := range values {
		m[f.ids[i]] = v
	}
	return m
}

func (f *Forest) idsOf(idx []int) []string {
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = f.ids[n]
	}
	return out
}
