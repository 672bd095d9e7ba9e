package optimize

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stemma/pkg/tree"
)

// MaxShift is the largest vertical shift tried for a group.
const MaxShift = 5

// Move relocates one node vertically.
type Move struct {
	Node  tree.NodeID
	FromY int
	ToY   int
}

// Variant is a candidate set of moves with its cost delta. Group members
// come first, followed by displaced bystanders in resolution order.
type Variant struct {
	Moves []Move
	Delta float64
}

// shifts returns the shift sequence +1..+MaxShift, -1..-MaxShift.
func shifts() []int {
	out := make([]int, 0, 2*MaxShift)
	for s := 1; s <= MaxShift; s++ {
		out = append(out, s)
	}
	for s := 1; s <= MaxShift; s++ {
		out = append(out, -s)
	}
	return out
}

// groups returns the move groups of t: every node alone, then every node
// with its parents, then every node with its children. Relatives precede
// the node itself.
func groups(t *tree.Tree) [][]tree.NodeID {
	nodes := t.Nodes()
	out := make([][]tree.NodeID, 0, 3*len(nodes))
	for _, n := range nodes {
		out = append(out, []tree.NodeID{n.ID})
	}
	for _, n := range nodes {
		if len(n.Parents) > 0 {
			out = append(out, append(slices.Clone(n.Parents), n.ID))
		}
	}
	for _, n := range nodes {
		if len(n.Children) > 0 {
			out = append(out, append(slices.Clone(n.Children), n.ID))
		}
	}
	return out
}

// variant builds the moves for shifting group by shift, displacing every
// bystander the shift lands on.
func (s *snapshot) variant(group []tree.NodeID, shift int) []Move {
	moves := make([]Move, 0, len(group))
	member := make(map[tree.NodeID]bool, len(group))
	targets := make(map[cell]bool, len(group))
	origins := make(map[cell]int, len(group))
	for _, id := range group {
		if member[id] {
			continue
		}
		member[id] = true
		from := s.ys[id]
		moves = append(moves, Move{Node: id, FromY: from, ToY: from + shift})
		targets[cell{s.xs[id], from + shift}] = true
		origins[s.at(id)]++
	}

	bystanders := s.bystanders(member, targets)
	if len(bystanders) == 0 {
		return moves
	}
	slices.SortFunc(bystanders, func(a, b tree.NodeID) int {
		if c := cmp.Compare(s.ys[a], s.ys[b]); c != 0 {
			if shift > 0 {
				return -c
			}
			return c
		}
		if c := cmp.Compare(s.xs[a], s.xs[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	// displaced tracks bystanders that have already moved.
	displaced := make(map[cell]int)
	occupied := func(c cell) bool {
		return s.cells[c]-origins[c]+displaced[c] > 0
	}

	step := -1
	if shift < 0 {
		step = 1
	}
	for _, id := range bystanders {
		from := s.at(id)
		to := from
		for {
			to.y += step
			if !targets[to] && !occupied(to) {
				break
			}
		}
		displaced[from]--
		displaced[to]++
		moves = append(moves, Move{Node: id, FromY: from.y, ToY: to.y})
	}
	return moves
}

// bystanders returns the non-members sitting on any target, without
// duplicates.
func (s *snapshot) bystanders(member map[tree.NodeID]bool, targets map[cell]bool) []tree.NodeID {
	hit := 0
	for c := range targets {
		hit += s.cells[c]
	}
	if hit == 0 {
		return nil
	}

	var out []tree.NodeID
	for i := range s.ys {
		id := tree.NodeID(i)
		if !member[id] && targets[s.at(id)] {
			out = append(out, id)
		}
	}
	return out
}
