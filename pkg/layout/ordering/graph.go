package ordering

import (
	"github.com/matzehuels/stemma/pkg/tree"
)

// Constraint places Upper on a strictly smaller Y than Lower.
type Constraint struct {
	Upper tree.NodeID
	Lower tree.NodeID
}

// Graph is an append-only DAG of order constraints.
//
// The zero value is not usable; use [NewGraph].
type Graph struct {
	constraints []Constraint
	below       map[tree.NodeID][]tree.NodeID
	pairs       map[Constraint]struct{}
}

// NewGraph creates an empty constraint graph.
func NewGraph() *Graph {
	return &Graph{
		below: make(map[tree.NodeID][]tree.NodeID),
		pairs: make(map[Constraint]struct{}),
	}
}

// Add inserts upper→lower and reports whether it was inserted.
//
// The candidate is rejected when upper equals lower, when the same or the
// reversed pair already exists, or when lower already reaches upper, since
// the new edge would then close a cycle.
func (g *Graph) Add(upper, lower tree.NodeID) bool {
	if upper == lower {
		return false
	}
	c := Constraint{Upper: upper, Lower: lower}
	if _, ok := g.pairs[c]; ok {
		return false
	}
	if _, ok := g.pairs[Constraint{Upper: lower, Lower: upper}]; ok {
		return false
	}
	if g.Reachable(lower, upper) {
		return false
	}

	g.constraints = append(g.constraints, c)
	g.pairs[c] = struct{}{}
	g.below[upper] = append(g.below[upper], lower)
	return true
}

// Reachable reports whether a directed path leads from one union to
// another. It runs a breadth-first search over the current constraints.
func (g *Graph) Reachable(from, to tree.NodeID) bool {
	if from == to {
		return true
	}
	seen := map[tree.NodeID]bool{from: true}
	queue := []tree.NodeID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range g.below[id] {
			if next == to {
				return true
			}
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// Constraints returns the constraints in insertion order. The slice must not
// be modified.
func (g *Graph) Constraints() []Constraint { return g.constraints }

// Len returns the number of constraints.
func (g *Graph) Len() int { return len(g.constraints) }

// HasCycle reports whether any union can reach itself. It never does for a
// graph built through [Graph.Add].
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[tree.NodeID]int)

	var visit func(id tree.NodeID) bool
	visit = func(id tree.NodeID) bool {
		color[id] = gray
		for _, next := range g.below[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, c := range g.constraints {
		if color[c.Upper] == white && visit(c.Upper) {
			return true
		}
	}
	return false
}
