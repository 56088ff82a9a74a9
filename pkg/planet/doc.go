// Package planet reads taxonomy collections and writes laid-out solar
// systems.
//
// # Input
//
// A [Collection] is an ordered mapping from node id to an attribute record.
// The only attribute the layout reads is "parent": absent, null or "" marks
// a root, any other string names the parent node. Everything else (color,
// preview_url, prior coordinates, ...) is carried through untouched and in
// its original order. Collections decode from JSON ([DecodeJSON]) or TOML
// ([DecodeTOML]):
//
//	{
//	  "Rock":     {"color": "#c0392b"},
//	  "Punk":     {"parent": "Rock", "color": "#8e44ad"},
//	  "Hardcore": {"parent": "Punk"}
//	}
//
// Anything other than an object of objects is rejected with a SCHEMA error.
// A JSON object that repeats a node id is rejected with DUPLICATE_NODE
// rather than silently keeping the last record.
//
// # Output
//
// [Assemble] merges a computed layout back into the collection, producing a
// [System] with one [Planet] per node. Radial systems emit
//
//	{..., "r": 400, "theta0": 1.047, "depth": 2, "omega": 0.002, "mass": 1}
//
// with any prior x/y/z removed. Jitter systems emit x, y, z, mass and size
// instead. Keys that already exist in the input keep their position; new
// keys are appended.
package planet
