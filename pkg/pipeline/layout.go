package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/orrery/pkg/forest"
	"github.com/matzehuels/orrery/pkg/observability"
	"github.com/matzehuels/orrery/pkg/orbit"
	"github.com/matzehuels/orrery/pkg/planet"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Layout lays out c without caching. Options must already be validated
// (see [Options.ValidateForLayout]).
//
// The forest is built once and every later stage reads from it, so a
// rejected collection never reaches placement.
func Layout(ctx context.Context, c *planet.Collection, opts Options) (*planet.System, error) {
	hooks := observability.Pipeline()

	f, err := build(ctx, c, opts)
	if err != nil {
		return nil, err
	}

	hooks.OnLayoutStart(ctx, opts.Mode, f.Len())
	start := time.Now()
	sys, err := place(c, f, opts)
	hooks.OnLayoutComplete(ctx, opts.Mode, time.Since(start), err)
	return sys, err
}

// build runs the build stage: parent links to forest.
func build(ctx context.Context, c *planet.Collection, opts Options) (*forest.Forest, error) {
	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, c.Len())
	start := time.Now()

	entries, err := c.Entries()
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	f, err := forest.Build(entries, forest.BuildOptions{MaxDepth: opts.buildMaxDepth()})
	if err != nil {
		hooks.OnBuildComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnBuildComplete(ctx, f.Len(), len(f.Roots()), time.Since(start), nil)
	return f, nil
}

// place runs the metric, placement and assembly stages.
func place(c *planet.Collection, f *forest.Forest, opts Options) (*planet.System, error) {
	m := planet.Metrics{Masses: forest.Masses(f)}

	if opts.IsJitter() {
		pts, err := orbit.Jitter(f, m.Masses, opts.JitterOptions())
		if err != nil {
			return nil, err
		}
		m.Positions = pts
	} else {
		l, err := orbit.Radial(f, forest.SubtreeSizes(f), opts.RadialOptions())
		if err != nil {
			return nil, err
		}
		omega, err := orbit.AngularSpeeds(l, opts.SpeedOptions())
		if err != nil {
			return nil, err
		}
		m.Layout, m.Omega = l, omega
	}

	return planet.Assemble(c, f, m, planet.AssembleOptions{KeepInputMass: opts.KeepInputMass})
}
