package placement

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stemma/pkg/layout/ordering"
	"github.com/matzehuels/stemma/pkg/tree"
)

// Stats describes a placement run.
type Stats struct {
	Rounds   int // constraint resolution rounds, including the final clean one
	Cascades int // founder insertions that moved other nodes
	Isolated int // individuals without parents or unions
}

// Place sets Y for every node of t. Levels must already be assigned.
func Place(t *tree.Tree, g *ordering.Graph) Stats {
	var stats Stats
	for _, n := range t.Nodes() {
		n.Y = 0
	}

	stats.Rounds = resolve(t, g)

	levels := unionLevels(t)
	for _, lvl := range levels {
		for i, u := range sortedUnions(t, lvl) {
			u.Y = i
		}
	}

	p := &placer{t: t, placed: make([]bool, t.Len())}
	for _, u := range t.Unions() {
		p.placed[u.ID] = true
	}
	for _, lvl := range levels {
		p.interleave(sortedUnions(t, lvl))
	}

	for _, lvl := range slices.Backward(levels) {
		for _, u := range sortedUnions(t, lvl) {
			if p.founder(u.Partners[1], u.Y-1) {
				stats.Cascades++
			}
			if p.founder(u.Partners[0], u.Y) {
				stats.Cascades++
			}
		}
	}

	stats.Isolated = p.isolated()
	return stats
}

// resolve moves lower unions down until every constraint holds.
func resolve(t *tree.Tree, g *ordering.Graph) int {
	rounds := 0
	for {
		rounds++
		changed := false
		for _, c := range g.Constraints() {
			upper, lower := t.Node(c.Upper), t.Node(c.Lower)
			if lower.Y <= upper.Y {
				lower.Y++
				changed = true
			}
		}
		if !changed {
			return rounds
		}
	}
}

type placer struct {
	t      *tree.Tree
	placed []bool
}

func (p *placer) interleave(unions []*tree.Node) {
	shift := 0
	for _, u := range unions {
		c := len(u.Kids)
		u.Y += shift + c/2
		if c > 1 {
			shift += c - 1
		}
		for k, id := range u.Kids {
			p.t.Node(id).Y = u.Y + k - c/2
			p.placed[id] = true
		}
	}
}

// founder places a root partner at y and reports whether it had to insert
// itself by moving other nodes.
func (p *placer) founder(id tree.NodeID, y int) bool {
	n := p.t.Node(id)
	if n == nil || !n.IsRoot() || p.placed[id] {
		return false
	}

	collided := false
	for _, m := range p.t.Nodes() {
		if p.placed[m.ID] && m.Level == n.Level && m.Y == y {
			collided = true
			break
		}
	}
	if collided {
		for _, m := range p.t.Nodes() {
			if m.Y < y {
				continue
			}
			if (p.placed[m.ID] && m.Level == n.Level) || (m.IsUnion() && m.Level == n.Level-1) {
				m.Y++
			}
		}
	}

	n.Y = y
	p.placed[id] = true
	return collided
}

// isolated appends unplaced individuals below their generation.
func (p *placer) isolated() int {
	bottom := make(map[int]int)
	for _, n := range p.t.Nodes() {
		if !p.placed[n.ID] {
			continue
		}
		if y, ok := bottom[n.Level]; !ok || n.Y > y {
			bottom[n.Level] = n.Y
		}
	}

	count := 0
	for _, n := range p.t.Nodes() {
		if p.placed[n.ID] {
			continue
		}
		y, ok := bottom[n.Level]
		if ok {
			y++
		}
		n.Y = y
		bottom[n.Level] = y
		p.placed[n.ID] = true
		count++
	}
	return count
}

func unionLevels(t *tree.Tree) []int {
	var levels []int
	for _, u := range t.Unions() {
		levels = append(levels, u.Level)
	}
	slices.Sort(levels)
	return slices.Compact(levels)
}

// sortedUnions returns the unions at level ordered by Y, then arena order.
func sortedUnions(t *tree.Tree, level int) []*tree.Node {
	var out []*tree.Node
	for _, u := range t.Unions() {
		if u.Level == level {
			out = append(out, u)
		}
	}
	slices.SortStableFunc(out, func(a, b *tree.Node) int { return cmp.Compare(a.Y, b.Y) })
	return out
}
