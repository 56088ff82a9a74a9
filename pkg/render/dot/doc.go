// Package dot draws a laid-out system as a Graphviz graph.
//
// # Overview
//
// Every body becomes a filled circle pinned at its computed position with
// pos="x,y!", and every parent link becomes an undirected edge. The sun sits
// at the origin. Positions are fixed, so the neato engine only draws; it
// never moves a body.
//
// # Usage
//
// Convert a system to DOT, then render to SVG:
//
//	src := dot.ToDOT(sys, dot.Options{Labels: true})
//	svg, err := dot.RenderSVG(ctx, src)
//
// Radial systems are projected with x = r·cos(theta0), y = r·sin(theta0).
// Jitter systems drop the z coordinate.
package dot
