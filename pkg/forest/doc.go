// Package forest turns a flat, parent-annotated collection of named entities
// into an immutable forest and computes the per-node weights that drive the
// orbital layout.
//
// # Overview
//
// Orrery lays out a taxonomy (music genres, for instance) as a solar system.
// Every entity names at most one parent; entities without a parent are roots.
// This package owns the first three pipeline stages:
//
//  1. [Build] validates the collection and produces a [Forest]: an
//     index-addressed node table with ordered child lists and ordered roots.
//  2. [SubtreeSizes] counts every node plus its descendants. Subtree size is
//     the proportionality weight used to partition angular space.
//  3. [Masses] computes ancestor count plus descendant count, a separate
//     visual-weight metric used to size bodies, never to partition space.
//
// # Ordering
//
// Child order is the order in which children first appear in the input
// collection, and root order is the order in which roots appear. Both are
// significant: they decide which angular sub-range each child receives.
//
// # Validation
//
// [Build] rejects malformed hierarchies with a coded error from
// [github.com/matzehuels/orrery/pkg/errors] naming the offending node ids:
//
//   - DUPLICATE_NODE or SCHEMA for repeated or invalid ids
//   - DANGLING_REFERENCE when a parent id is not in the collection
//   - CYCLE when following parent links never reaches a root
//   - EMPTY_FOREST when there is nothing to lay out
//   - RECURSION_LIMIT when the hierarchy is deeper than [BuildOptions.MaxDepth]
//
// # Traversal
//
// All traversals use explicit stacks over the node table rather than call
// recursion, so pathologically deep chains cannot exhaust the goroutine stack.
//
// # Concurrency
//
// A [Forest] is never mutated after [Build] returns. It is safe for concurrent
// readers; slices returned by accessors are shared views and must not be
// modified.
package forest
