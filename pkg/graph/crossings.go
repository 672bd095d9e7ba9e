package graph

import (
	"slices"
)

// Crossings returns the number of edge pairs that cross.
//
// Two edges cross when they join the same pair of generations and their
// endpoints appear in opposite Y order on the two sides. Edges that share an
// endpoint never cross. Each group of edges is counted by sorting on the
// source Y and counting inversions of the target Y with a Fenwick tree, so
// the cost is O(E log E).
func (l *Layout) Crossings() int {
	type end struct{ level, y int }
	pos := make(map[string]end, len(l.Nodes))
	for _, n := range l.Nodes {
		pos[n.ID] = end{n.Level, n.Y}
	}

	type span struct{ from, to int }
	type edge struct{ from, to int }
	groups := make(map[span][]edge)
	for _, e := range l.Edges {
		a, ok1 := pos[e.From]
		b, ok2 := pos[e.To]
		if !ok1 || !ok2 {
			continue
		}
		k := span{a.level, b.level}
		groups[k] = append(groups[k], edge{a.y, b.y})
	}

	total := 0
	for _, edges := range groups {
		total += countInversions(edges, func(e edge) (int, int) { return e.from, e.to })
	}
	return total
}

// countInversions counts pairs (i, j) with from(i) < from(j) and
// to(i) > to(j). Pairs that tie on either end are not counted.
func countInversions[E any](edges []E, ends func(E) (int, int)) int {
	if len(edges) < 2 {
		return 0
	}
	type pair struct{ from, to int }
	ps := make([]pair, len(edges))
	targets := make([]int, len(edges))
	for i, e := range edges {
		f, t := ends(e)
		ps[i] = pair{f, t}
		targets[i] = t
	}
	slices.SortFunc(ps, func(a, b pair) int {
		if a.from != b.from {
			return a.from - b.from
		}
		return a.to - b.to
	})

	// Compress target coordinates to 1-based ranks.
	slices.Sort(targets)
	targets = slices.Compact(targets)
	rank := func(y int) int {
		i, _ := slices.BinarySearch(targets, y)
		return i + 1
	}

	fenwick := make([]int, len(targets)+1)
	query := func(r int) int {
		n := 0
		for ; r > 0; r -= r & (-r) {
			n += fenwick[r]
		}
		return n
	}
	add := func(r int) {
		for ; r < len(fenwick); r += r & (-r) {
			fenwick[r]++
		}
	}

	crossings, seen := 0, 0
	for i := 0; i < len(ps); {
		// Edges sharing a source are queried before any of them is added.
		j := i
		for j < len(ps) && ps[j].from == ps[i].from {
			crossings += seen - query(rank(ps[j].to))
			j++
		}
		for ; i < j; i++ {
			add(rank(ps[i].to))
			seen++
		}
	}
	return crossings
}
