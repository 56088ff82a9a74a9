// Package orbit computes the spatial layout of a [forest.Forest] as a solar
// system.
//
// # Radial Partition Layout
//
// [Radial] gives every node a ring and an angular slice. A node's ring is its
// depth (roots orbit on ring 1, the center is reserved for the sun) and its
// radius is depth × DepthSpacing. Its slice is a half-open interval
// [start, end) carved out of its parent's slice in proportion to subtree
// size:
//
//	width(child) = width(parent) × size(child) / Σ size(siblings)
//
// Siblings are laid side by side in child order starting at the parent's
// start angle, so sibling slices never overlap, never leave gaps, and
// together cover the parent's slice. A node's emitted angle theta0 is the
// midpoint of its slice.
//
// With several roots the full circle is first cut into equal arcs, one per
// root, regardless of how large each tree is. This asymmetry is kept
// deliberately; [RootWeightingSubtree] opts into proportional root arcs and
// [Options.RootsShareCircle] = false gives every tree the whole circle.
//
// # Angular Speed
//
// [AngularSpeed] maps a radius to omega = base / (radius + epsilon), so
// inner orbits are always faster than outer ones.
//
// # Spherical Jitter
//
// [Jitter] is an alternative, non-deterministic-by-design placement that
// scatters each body on a sphere around its parent. It carries no ordering or
// partition guarantees; the seed only makes a run repeatable.
package orbit
