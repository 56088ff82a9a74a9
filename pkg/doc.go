// Package pkg provides the core libraries for Orrery hierarchy layouts.
//
// # Overview
//
// Orrery places a parent-linked hierarchy (genres, taxonomies, org charts)
// on concentric rings around a sun. The pkg directory is organized as:
//
//  1. [planet] - Input collections and laid-out systems (JSON/TOML codecs)
//  2. [forest] - Validated parent/child structure, subtree sizes and masses
//  3. [orbit] - Radial partition layout, angular speeds and spherical jitter
//  4. [pipeline] - Orchestration (build → place → render) with caching
//  5. [cache], [store] - Layout cache backends and stored snapshots
//  6. [render/dot] - Graphviz DOT and SVG output
//
// # Architecture
//
// The typical data flow:
//
//	hierarchy.json / hierarchy.toml
//	         ↓
//	    [planet] package (decode, keep attribute order)
//	         ↓
//	    [forest] package (validate, index children)
//	         ↓
//	    [orbit] package (rings, slices, omega)
//	         ↓
//	    [planet] System (records with r, theta0, depth, omega, mass)
//	         ↓
//	    JSON / DOT / SVG output
//
// # Quick Start
//
//	coll, _ := planet.ReadFile("genres.json")
//	sys, _ := pipeline.Layout(ctx, coll, pipeline.Options{})
//	sys.Encode(os.Stdout)
package pkg
