// Package optimize refines initial Y coordinates by greedy local search.
//
// # Cost
//
// The cost of a layout is
//
//	overlaps × OverlapPenalty + Σ edge length
//
// where overlaps counts unordered pairs of nodes sharing one (X, Y) cell and
// each parent→child edge contributes its Euclidean length.
//
// # Search
//
// Every iteration builds move groups in arena order: each node alone, each
// node with its parents, and each node with its children. Every group is
// tried with shifts +1..+5 and then -1..-5. A shifted member that lands on
// a node outside the group displaces that bystander in the opposite
// direction, one slot at a time, until it is clear of the group's targets
// and of every other node. Bystanders are resolved in a fixed order:
// farthest along the shift first, then by X, then by node ID.
//
// Candidate variants are scored as cost deltas against a read-only snapshot
// by a pool of workers. The variant with the most negative delta is
// committed (ties go to the first enumerated), and one [Notification] per
// moved node is sent to the [Sink] in commit order. The search stops at a
// local optimum, when no delta is below -[Epsilon].
//
// # Budget
//
// Each commit strictly lowers the cost, so the search terminates, but it
// may take long on large trees. [Options.MaxIterations] and the context
// deadline both stop it early with [ErrBudgetExhausted]; the coordinates
// committed so far stay valid.
package optimize
