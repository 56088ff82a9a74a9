package forest

import (
	orerrors "github.com/matzehuels/orrery/pkg/errors"
)

// BuildOptions configures [Build].
type BuildOptions struct {
	// MaxDepth bounds the depth of any node (roots have depth 1).
	// Zero or negative disables the bound.
	MaxDepth int
}

// Build validates entries and assembles them into a [Forest].
//
// Entries are processed in order: node i of the result is entries[i], child
// lists follow first-occurrence order, and roots keep their relative input
// order. Checks run in this order, and the first failing check aborts the
// build:
//
//  1. Every id is valid and unique (SCHEMA, DUPLICATE_NODE)
//  2. Every parent id names an entry (DANGLING_REFERENCE, all offenders listed)
//  3. Every node reaches a root along parent links (CYCLE, cycle members listed)
//  4. At least one root exists (EMPTY_FOREST)
//  5. No node is deeper than opts.MaxDepth (RECURSION_LIMIT)
//
// Build runs in O(N) time and never recurses.
func Build(entries []Entry, opts BuildOptions) (*Forest, error) {
	n := len(entries)
	f := &Forest{
		ids:      make([]string, n),
		index:    make(map[string]int, n),
		parent:   make([]int, n),
		children: make([][]int, n),
	}

	for i, e := range entries {
		if err := orerrors.ValidateNodeID(e.ID); err != nil {
			return nil, err
		}
		if _, dup := f.index[e.ID]; dup {
			return nil, orerrors.NewNodes(orerrors.ErrCodeDuplicateNode, []string{e.ID},
				"node %q appears more than once", e.ID)
		}
		f.ids[i] = e.ID
		f.index[e.ID] = i
	}

	var dangling []string
	for i, e := range entries {
		if e.Parent == "" {
			f.parent[i] = NoParent
			f.roots = append(f.roots, i)
			continue
		}
		p, ok := f.index[e.Parent]
		if !ok {
			dangling = append(dangling, e.ID)
			continue
		}
		f.parent[i] = p
		f.children[p] = append(f.children[p], i)
	}
	if len(dangling) > 0 {
		return nil, danglingError(entries, f, dangling)
	}

	depths, reached := f.levels()
	if reached < n {
		cycle := f.cycleMembers(depths)
		return nil, orerrors.NewNodes(orerrors.ErrCodeCycle, cycle,
			"parent links form a cycle through %s", orerrors.QuoteIDs(cycle))
	}

	if len(f.roots) == 0 {
		return nil, orerrors.New(orerrors.ErrCodeEmptyForest, "no root nodes found; nothing to lay out")
	}

	if opts.MaxDepth > 0 {
		for i, d := range depths {
			if d > opts.MaxDepth {
				return nil, orerrors.NewNodes(orerrors.ErrCodeRecursionLimit, []string{f.ids[i]},
					"node %q is at depth %d, exceeding the limit of %d", f.ids[i], d, opts.MaxDepth)
			}
		}
	}

	return f, nil
}

func danglingError(entries []Entry, f *Forest, ids []string) error {
	first := entries[f.index[ids[0]]]
	if len(ids) == 1 {
		return orerrors.NewNodes(orerrors.ErrCodeDanglingReference, ids,
			"node %q names unknown parent %q", first.ID, first.Parent)
	}
	return orerrors.NewNodes(orerrors.ErrCodeDanglingReference, ids,
		"%d nodes name unknown parents: %s", len(ids), orerrors.QuoteIDs(ids))
}

// levels walks every tree from its root and returns the depth of each
// reachable node (roots = 1, unreachable = 0) and the number reached.
func (f *Forest) levels() ([]int, int) {
	depths := make([]int, len(f.ids))
	stack := make([]int, 0, len(f.roots))
	for i := len(f.roots) - 1; i >= 0; i-- {
		r := f.roots[i]
		depths[r] = 1
		stack = append(stack, r)
	}

	reached := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		reached++
		for _, c := range f.children[cur] {
			depths[c] = depths[cur] + 1
			stack = append(stack, c)
		}
	}
	return depths, reached
}

// cycleMembers returns, in input order, the ids of nodes that lie on a
// parent cycle. Nodes merely hanging below a cycle are not included.
func (f *Forest) cycleMembers(depths []int) []string {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]int, len(f.ids))
	onCycle := make([]bool, len(f.ids))

	for start := range f.ids {
		if depths[start] > 0 || state[start] != unvisited {
			continue
		}
		var path []int
		cur := start
		for cur != NoParent && state[cur] == unvisited && depths[cur] == 0 {
			state[cur] = onPath
			path = append(path, cur)
			cur = f.parent[cur]
		}
		if cur != NoParent && state[cur] == onPath {
			for k := len(path) - 1; k >= 0; k-- {
				onCycle[path[k]] = true
				if path[k] == cur {
					break
				}
			}
		}
		for _, p := range path {
			state[p] = done
		}
	}

	var ids []string
	for i, c := range onCycle {
		if c {
			ids = append(ids, f.ids[i])
		}
	}
	return ids
}
