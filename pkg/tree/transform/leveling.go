package transform

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/stemma/pkg/tree"
)

// ErrNoFixpoint is returned by [AssignLevels] when push-down and pull-up
// contradict each other, as with a marriage across generations. The tree is
// still leveled consistently using the relaxed pull-up rule, so callers may
// log the error and continue.
var ErrNoFixpoint = errors.New("leveling has no fixpoint")

// AssignLevels resets every level to 0 and applies push-down and pull-up
// passes until a fixpoint is reached. X is set to the level of each node.
// It returns the number of passes run, including the final unchanged one.
//
// Existing level assignments are overwritten. Running AssignLevels on an
// already leveled tree reproduces the same levels.
//
// In a fixpoint every parent→child edge spans exactly one level, so no level
// can reach the node count. A level that does means the rules diverge: the
// tree is re-leveled with pull-up relaxed to the shallowest child and
// [ErrNoFixpoint] is returned. A relation cycle diverges under push-down
// alone and yields [tree.ErrCycle].
func AssignLevels(t *tree.Tree) (int, error) {
	passes, ok := iterate(t, pullUp)
	if ok {
		t.SyncX()
		return passes, nil
	}

	more, ok := iterate(t, pullUpSafe)
	passes += more
	t.SyncX()
	if !ok {
		return passes, fmt.Errorf("leveling: %w", tree.ErrCycle)
	}
	return passes, ErrNoFixpoint
}

func iterate(t *tree.Tree, pull func(*tree.Tree) bool) (int, bool) {
	nodes := t.Nodes()
	for _, n := range nodes {
		n.Level = 0
	}

	passes := 0
	for changed := true; changed; {
		passes++
		changed = pushDown(t)
		if pull(t) {
			changed = true
		}
		for _, n := range nodes {
			if n.Level >= len(nodes) {
				return passes, false
			}
		}
	}
	return passes, true
}

// pushDown raises every child to at least one level below its parent.
func pushDown(t *tree.Tree) bool {
	changed := false
	for _, n := range t.Nodes() {
		level := n.Level + 1
		for _, id := range n.Children {
			if c := t.Node(id); c.Level < level {
				c.Level = level
				changed = true
			}
		}
	}
	return changed
}

// pullUp moves nodes with children down to one level above their deepest
// child.
func pullUp(t *tree.Tree) bool {
	return pullTo(t, slices.Max[[]int, int])
}

// pullUpSafe moves nodes with children down to one level above their
// shallowest child. It never creates work for pushDown.
func pullUpSafe(t *tree.Tree) bool {
	return pullTo(t, slices.Min[[]int, int])
}

func pullTo(t *tree.Tree, pick func([]int) int) bool {
	changed := false
	var levels []int
	for _, n := range t.Nodes() {
		if len(n.Children) == 0 {
			continue
		}
		levels = levels[:0]
		for _, id := range n.Children {
			levels = append(levels, t.Node(id).Level)
		}
		if level := pick(levels) - 1; level > n.Level {
			n.Level = level
			changed = true
		}
	}
	return changed
}
