package forest

import "slices"

// PreOrder returns every node index in depth-first pre-order: each root in
// input order, and within a tree each parent before its children, children
// visited in first-occurrence order.
func (f *Forest) PreOrder() []int {
	order := make([]int, 0, len(f.ids))
	stack := make([]int, 0, len(f.roots))
	stack = append(stack, reversed(f.roots)...)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, cur)
		stack = append(stack, reversed(f.children[cur])...)
	}
	return order
}

// PostOrder returns every node index with all children before their parent.
// Siblings keep their first-occurrence order and trees keep root order.
func (f *Forest) PostOrder() []int {
	type frame struct {
		node int
		next int // index of the next child to descend into
	}

	order := make([]int, 0, len(f.ids))
	stack := make([]frame, 0, 16)

	for _, r := range f.roots {
		stack = append(stack, frame{node: r})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			kids := f.children[top.node]
			if top.next < len(kids) {
				child := kids[top.next]
				top.next++
				stack = append(stack, frame{node: child})
				continue
			}
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}
	return order
}

// Depths returns the depth of every node, with roots at depth 1.
func (f *Forest) Depths() []int {
	depths := make([]int, len(f.ids))
	for _, i := range f.PreOrder() {
		if p := f.parent[i]; p == NoParent {
			depths[i] = 1
		} else {
			depths[i] = depths[p] + 1
		}
	}
	return depths
}

func reversed(s []int) []int {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}
