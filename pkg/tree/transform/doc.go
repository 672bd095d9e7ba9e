// Package transform provides structural passes over descent graphs.
//
// # Generation Leveling
//
// [AssignLevels] gives every node a generation level so that each
// parent→child edge strictly increases the level:
//
//	transform.AssignLevels(t)
//
// The leveler alternates two rules until neither changes anything:
//
//  1. Push-down: every child sits at least one level below its parent.
//  2. Pull-up: a node with children sits exactly one level above its
//     deepest child.
//
// Pull-up keeps partners next to their unions and unions next to their
// children, so every parent→child edge spans exactly one level after
// convergence. The result is consistent but not necessarily the narrowest
// possible leveling.
//
// # Divergence
//
// In a fixpoint every edge spans exactly one level, so no level can reach
// the node count. Some acyclic trees still have no fixpoint: a marriage
// across generations asks pull-up to lift a partner that push-down keeps
// lowering. When a level reaches the node count, [AssignLevels] re-levels
// with pull-up relaxed to the shallowest child and returns [ErrNoFixpoint].
// The relaxed levels still descend along every edge.
//
// A relation cycle diverges under push-down alone and yields
// [tree.ErrCycle]. Callers that want a precise report run
// [tree.Tree.CheckAcyclic] first.
//
// [tree.Tree.CheckAcyclic]: github.com/matzehuels/stemma/pkg/tree
package transform
