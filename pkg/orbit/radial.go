package orbit

import (
	"math"

	orerrors "github.com/matzehuels/orrery/pkg/errors"
	"github.com/matzehuels/orrery/pkg/forest"
)

// FullCircle is the angular extent shared by all roots.
const FullCircle = 2 * math.Pi

// DefaultDepthSpacing is the radius increment per ring.
const DefaultDepthSpacing = 200.0

// RootWeighting selects how the circle is divided among multiple roots.
type RootWeighting string

const (
	// RootWeightingEqual gives every root an arc of 2π / root count.
	RootWeightingEqual RootWeighting = "equal"
	// RootWeightingSubtree gives every root an arc proportional to its
	// subtree size, the same rule used below the roots.
	RootWeightingSubtree RootWeighting = "subtree"
)

// Options configures [Radial].
type Options struct {
	// DepthSpacing is the radius increment per depth level. Must be > 0.
	DepthSpacing float64

	// RootsShareCircle divides [0, 2π) among the roots. When false every
	// root receives the full circle and trees overlap angularly.
	RootsShareCircle bool

	// RootWeighting applies when RootsShareCircle is set. Empty means
	// [RootWeightingEqual].
	RootWeighting RootWeighting
}

// DefaultOptions returns the standard layout parameters: 200 units per ring
// and equal arcs per root.
func DefaultOptions() Options {
	return Options{
		DepthSpacing:     DefaultDepthSpacing,
		RootsShareCircle: true,
		RootWeighting:    RootWeightingEqual,
	}
}

// Span is a half-open angular interval [Start, End) in radians.
type Span struct {
	Start float64
	End   float64
}

// Width returns End - Start.
func (s Span) Width() float64 { return s.End - s.Start }

// Mid returns the midpoint of the interval.
func (s Span) Mid() float64 { return (s.Start + s.End) / 2 }

// Contains reports whether theta lies in [Start, End).
func (s Span) Contains(theta float64) bool { return theta >= s.Start && theta < s.End }

// Placement is the computed orbital position of one node.
type Placement struct {
	Radius float64 // Depth × DepthSpacing
	Depth  int     // Ring index, roots at 1
	Theta0 float64 // Midpoint of Span
	Span   Span    // Angular slice owned by the node
}

// Layout holds one [Placement] per node, addressed by forest index.
type Layout struct {
	Placements []Placement
}

// MaxDepth returns the deepest ring in use, or 0 for an empty layout.
func (l Layout) MaxDepth() int {
	d := 0
	for _, p := range l.Placements {
		d = max(d, p.Depth)
	}
	return d
}

// Radial lays out f by recursive angular subdivision weighted by sizes,
// which must be the subtree sizes of f (see [forest.SubtreeSizes]).
//
// The traversal uses an explicit stack. Slice boundaries accumulate with a
// running cursor (start += width), so a parent's last child ends at the
// parent's end angle up to floating-point rounding.
func Radial(f *forest.Forest, sizes []int, opts Options) (Layout, error) {
	if err := orerrors.ValidatePositive("depth_spacing", opts.DepthSpacing); err != nil {
		return Layout{}, err
	}
	if err := checkSizes(f, sizes); err != nil {
		return Layout{}, err
	}

	type frame struct {
		node  int
		span  Span
		depth int
	}

	placements := make([]Placement, f.Len())
	stack := make([]frame, 0, len(f.Roots()))
	rootSpans := rootSpans(f, sizes, opts)
	for i := len(f.Roots()) - 1; i >= 0; i-- {
		stack = append(stack, frame{node: f.Roots()[i], span: rootSpans[i], depth: 1})
	}

	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		placements[fr.node] = Placement{
			Radius: float64(fr.depth) * opts.DepthSpacing,
			Depth:  fr.depth,
			Theta0: fr.span.Mid(),
			Span:   fr.span,
		}

		kids := f.Children(fr.node)
		if len(kids) == 0 {
			continue
		}
		spans := partition(fr.span, kids, sizes)
		for k := len(kids) - 1; k >= 0; k-- {
			stack = append(stack, frame{node: kids[k], span: spans[k], depth: fr.depth + 1})
		}
	}

	return Layout{Placements: placements}, nil
}

// rootSpans returns the starting slice of every root, in root order.
func rootSpans(f *forest.Forest, sizes []int, opts Options) []Span {
	roots := f.Roots()
	full := Span{Start: 0, End: FullCircle}
	spans := make([]Span, len(roots))

	switch {
	case !opts.RootsShareCircle:
		for i := range spans {
			spans[i] = full
		}
	case opts.RootWeighting == RootWeightingSubtree:
		copy(spans, partition(full, roots, sizes))
	default:
		per := FullCircle / float64(len(roots))
		for i := range spans {
			start := float64(i) * per
			spans[i] = Span{Start: start, End: start + per}
		}
	}
	return spans
}

// partition splits s among nodes in order, proportionally to their sizes.
func partition(s Span, nodes []int, sizes []int) []Span {
	total := 0
	for _, n := range nodes {
		total += sizes[n]
	}

	width := s.Width()
	out := make([]Span, len(nodes))
	cursor := s.Start
	for k, n := range nodes {
		w := width * float64(sizes[n]) / float64(total)
		out[k] = Span{Start: cursor, End: cursor + w}
		cursor += w
	}
	return out
}

func checkSizes(f *forest.Forest, sizes []int) error {
	if len(sizes) != f.Len() {
		return orerrors.New(orerrors.ErrCodeInvalidInput,
			"subtree sizes cover %d nodes, forest has %d", len(sizes), f.Len())
	}
	for i, s := range sizes {
		if s < 1 {
			return orerrors.NewNodes(orerrors.ErrCodeInvalidInput, []string{f.ID(i)},
				"node %q has non-positive subtree size %d", f.ID(i), s)
		}
	}
	return nil
}
