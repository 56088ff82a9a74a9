package planet

import (
	"cmp"
	"slices"
)

// Ring summarizes the bodies sharing one depth.
type Ring struct {
	Depth  int     `json:"depth"`
	Radius float64 `json:"radius"`
	Bodies int     `json:"bodies"`
	Omega  float64 `json:"omega"`
}

// Stats summarizes a system.
type Stats struct {
	Mode     Mode   `json:"mode"`
	Bodies   int    `json:"bodies"`
	Roots    int    `json:"roots"`
	Leaves   int    `json:"leaves"`
	MaxDepth int    `json:"max_depth"`
	Rings    []Ring `json:"rings,omitempty"`
}

// Stats computes per-ring totals. Rings are only reported for radial systems.
func (s *System) Stats() Stats {
	st := Stats{Mode: s.Mode, Bodies: len(s.Planets)}

	hasChild := make(map[string]bool, len(s.Planets))
	for _, p := range s.Planets {
		if p.Parent == "" {
			st.Roots++
		} else {
			hasChild[p.Parent] = true
		}
	}

	rings := make(map[int]*Ring)
	for _, p := range s.Planets {
		if !hasChild[p.ID] {
			st.Leaves++
		}
		if s.Mode != ModeRadial {
			continue
		}
		st.MaxDepth = max(st.MaxDepth, p.Depth)
		r, ok := rings[p.Depth]
		if !ok {
			r = &Ring{Depth: p.Depth, Radius: p.Radius, Omega: p.Omega}
			rings[p.Depth] = r
		}
		r.Bodies++
	}

	for _, r := range rings {
		st.Rings = append(st.Rings, *r)
	}
	slices.SortFunc(st.Rings, func(a, b Ring) int { return cmp.Compare(a.Depth, b.Depth) })
	return st
}

// SortedByOrbit returns the planets ordered by depth, then theta0, then id.
func (s *System) SortedByOrbit() []Planet {
	out := slices.Clone(s.Planets)
	slices.SortStableFunc(out, func(a, b Planet) int {
		return cmp.Or(
			cmp.Compare(a.Depth, b.Depth),
			cmp.Compare(a.Theta0, b.Theta0),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}
