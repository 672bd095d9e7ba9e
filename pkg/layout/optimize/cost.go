package optimize

import (
	"math"

	"github.com/matzehuels/stemma/pkg/tree"
)

// OverlapPenalty is the cost of one pair of nodes sharing a cell.
const OverlapPenalty = 10

// Cost returns the cost of the current coordinates of t.
func Cost(t *tree.Tree) float64 {
	return newSnapshot(t).cost()
}

// Overlaps returns the number of node pairs sharing a cell in t.
func Overlaps(t *tree.Tree) int {
	return newSnapshot(t).overlaps()
}

type cell struct{ x, y int }

// snapshot is an immutable copy of the coordinates the search reads from.
// Workers share one snapshot per iteration.
type snapshot struct {
	xs, ys   []int
	edges    []tree.Edge
	incident [][]int // edge indices per node
	cells    map[cell]int
}

func newSnapshot(t *tree.Tree) *snapshot {
	s := &snapshot{
		xs:       make([]int, t.Len()),
		ys:       make([]int, t.Len()),
		edges:    t.Edges(),
		incident: make([][]int, t.Len()),
		cells:    make(map[cell]int, t.Len()),
	}
	for i, n := range t.Nodes() {
		s.xs[i], s.ys[i] = n.X, n.Y
		s.cells[cell{n.X, n.Y}]++
	}
	for i, e := range s.edges {
		s.incident[e.From] = append(s.incident[e.From], i)
		s.incident[e.To] = append(s.incident[e.To], i)
	}
	return s
}

func (s *snapshot) at(id tree.NodeID) cell { return cell{s.xs[id], s.ys[id]} }

func (s *snapshot) overlaps() int {
	pairs := 0
	for _, k := range s.cells {
		pairs += k * (k - 1) / 2
	}
	return pairs
}

func (s *snapshot) length() float64 {
	total := 0.0
	for _, e := range s.edges {
		total += dist(s.xs[e.From], s.ys[e.From], s.xs[e.To], s.ys[e.To])
	}
	return total
}

func (s *snapshot) cost() float64 {
	return float64(s.overlaps()*OverlapPenalty) + s.length()
}

// delta returns the cost change of applying moves without mutating s.
// Moves must name distinct nodes.
func (s *snapshot) delta(moves []Move) float64 {
	newY := make(map[tree.NodeID]int, len(moves))
	for _, m := range moves {
		newY[m.Node] = m.ToY
	}
	y := func(id tree.NodeID) int {
		if v, ok := newY[id]; ok {
			return v
		}
		return s.ys[id]
	}

	length := 0.0
	seen := make(map[int]bool)
	for _, m := range moves {
		for _, i := range s.incident[m.Node] {
			if seen[i] {
				continue
			}
			seen[i] = true
			e := s.edges[i]
			length += dist(s.xs[e.From], y(e.From), s.xs[e.To], y(e.To))
			length -= dist(s.xs[e.From], s.ys[e.From], s.xs[e.To], s.ys[e.To])
		}
	}

	shift := make(map[cell]int, 2*len(moves))
	for _, m := range moves {
		x := s.xs[m.Node]
		shift[cell{x, m.FromY}]--
		shift[cell{x, m.ToY}]++
	}
	pairs := 0
	for c, d := range shift {
		before := s.cells[c]
		after := before + d
		pairs += after*(after-1)/2 - before*(before-1)/2
	}

	return float64(pairs*OverlapPenalty) + length
}

// apply commits moves to the snapshot.
func (s *snapshot) apply(moves []Move) {
	for _, m := range moves {
		x := s.xs[m.Node]
		if s.cells[cell{x, m.FromY}]--; s.cells[cell{x, m.FromY}] == 0 {
			delete(s.cells, cell{x, m.FromY})
		}
		s.cells[cell{x, m.ToY}]++
		s.ys[m.Node] = m.ToY
	}
}

func dist(x1, y1, x2, y2 int) float64 {
	dx, dy := float64(x2-x1), float64(y2-y1)
	return math.Sqrt(dx*dx + dy*dy)
}
