// Package tree provides the node arena for descent-graph (family tree)
// layouts.
//
// # Overview
//
// A descent graph has two kinds of nodes: individuals and unions. An
// individual is a child of at most one union and may found any number of
// unions as a partner. A union has up to two partners and an ordered list of
// children. Layout treats both kinds uniformly as placed nodes with a
// generation level and an integer (X, Y) coordinate.
//
// All nodes live in a single arena owned by [Tree] and are addressed by a
// stable [NodeID]. Edges are stored as non-owning ID lists on each node, so
// the bidirectional parent/child structure never forms reference cycles.
//
// # Building
//
// Use [Build] to construct a tree from source records:
//
//	t, warnings, err := tree.Build(individuals, unions)
//
// Dangling references (a union naming an unknown partner or child) omit the
// single link and are reported as [Warning] values instead of failing the
// build. Duplicate or empty record keys are errors.
//
// # Edges
//
// Parent→child edges run partner→union and union→child. For an individual,
// [Node.Parents] holds the union it was born into and [Node.Children] holds
// the unions it founded. For a union, [Node.Parents] holds its partners and
// [Node.Children] its children.
//
// # Cycles
//
// Layout assumes the parent/child relation is acyclic. [Tree.CheckAcyclic]
// reports [ErrCycle] for inputs such as a person marrying their own
// descendant's parent, which the leveler cannot resolve.
//
// # Concurrency
//
// Tree instances are not safe for concurrent mutation. Read-only snapshots
// obtained with [Tree.Positions] may be shared freely.
package tree
