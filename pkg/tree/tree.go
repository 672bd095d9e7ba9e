package tree

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidKey is returned by [Build] when a record has an empty key.
	ErrInvalidKey = errors.New("record key must not be empty")

	// ErrDuplicateKey is returned by [Build] when two records share a key.
	// Individual and union keys share one namespace.
	ErrDuplicateKey = errors.New("duplicate record key")

	// ErrCycle is returned by [Tree.CheckAcyclic] when the parent/child
	// relation contains a directed cycle.
	ErrCycle = errors.New("descent graph contains a cycle")
)

// NodeID addresses a node in the tree arena.
type NodeID int

// None marks an absent node reference.
const None NodeID = -1

// Kind distinguishes individuals from unions.
type Kind int

const (
	// KindIndividual is a person.
	KindIndividual Kind = iota
	// KindUnion is a partnership with optional children.
	KindUnion
)

// String returns "individual" or "union".
func (k Kind) String() string {
	if k == KindUnion {
		return "union"
	}
	return "individual"
}

// Node is a placed entity in the layout: an individual or a union.
//
// X always equals Level once the tree has been leveled. Y is the vertical
// slot; smaller values are higher on the page.
type Node struct {
	ID    NodeID
	Key   string // Source record identifier
	Kind  Kind
	Label string

	Level int
	X, Y  int

	// Source is an opaque back-reference to the originating record.
	Source any

	Parents  []NodeID
	Children []NodeID

	// Individual fields.
	ChildOf NodeID   // union this individual was born into, or None
	Founded []NodeID // unions founded as a partner
	Birth   string   // free-text birth date

	// Union fields.
	Partners [2]NodeID // first and second partner, None when absent
	Kids     []NodeID  // children in record order
	Date     string    // free-text union start date
}

// IsUnion reports whether the node is a union.
func (n *Node) IsUnion() bool { return n.Kind == KindUnion }

// IsRoot reports whether an individual has no parent union.
// Unions are never roots.
func (n *Node) IsRoot() bool { return n.Kind == KindIndividual && n.ChildOf == None }

// Edge is a parent→child connection between two nodes.
type Edge struct {
	From NodeID
	To   NodeID
}

// Tree is the arena holding every node of a descent graph.
//
// The zero value is not usable; use [New] or [Build].
type Tree struct {
	nodes []*Node
	byKey map[string]NodeID
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{byKey: make(map[string]NodeID)}
}

func (t *Tree) add(key, label string, kind Kind, src any) (*Node, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if _, exists := t.byKey[key]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	n := &Node{
		ID:       NodeID(len(t.nodes)),
		Key:      key,
		Kind:     kind,
		Label:    label,
		Source:   src,
		ChildOf:  None,
		Partners: [2]NodeID{None, None},
	}
	t.nodes = append(t.nodes, n)
	t.byKey[key] = n.ID
	return n, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given ID, or nil if it is out of range.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns all nodes in arena order. The slice must not be modified;
// the nodes themselves may be.
func (t *Tree) Nodes() []*Node { return t.nodes }

// Lookup returns the node with the given record key.
func (t *Tree) Lookup(key string) (*Node, bool) {
	id, ok := t.byKey[key]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

// Individuals returns all individual nodes in arena order.
func (t *Tree) Individuals() []*Node { return t.ofKind(KindIndividual) }

// Unions returns all union nodes in arena order.
func (t *Tree) Unions() []*Node { return t.ofKind(KindUnion) }

func (t *Tree) ofKind(k Kind) []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.Kind == k {
			out = append(out, n)
		}
	}
	return out
}

// Edges returns every parent→child edge, grouped by parent in arena order.
func (t *Tree) Edges() []Edge {
	var edges []Edge
	for _, n := range t.nodes {
		for _, c := range n.Children {
			edges = append(edges, Edge{From: n.ID, To: c})
		}
	}
	return edges
}

// Generations returns nodes grouped by level. Each group is in arena order.
func (t *Tree) Generations() map[int][]*Node {
	gens := make(map[int][]*Node)
	for _, n := range t.nodes {
		gens[n.Level] = append(gens[n.Level], n)
	}
	return gens
}

// MaxLevel returns the deepest level, or 0 for an empty tree.
func (t *Tree) MaxLevel() int {
	maxLevel := 0
	for _, n := range t.nodes {
		maxLevel = max(maxLevel, n.Level)
	}
	return maxLevel
}

// Positions returns a snapshot of every node's Y coordinate indexed by NodeID.
func (t *Tree) Positions() []int {
	ys := make([]int, len(t.nodes))
	for i, n := range t.nodes {
		ys[i] = n.Y
	}
	return ys
}

// SetPositions restores Y coordinates from a snapshot taken with Positions.
func (t *Tree) SetPositions(ys []int) {
	for i, n := range t.nodes {
		if i < len(ys) {
			n.Y = ys[i]
		}
	}
}

// SyncX sets X to the generation level for every node.
func (t *Tree) SyncX() {
	for _, n := range t.nodes {
		n.X = n.Level
	}
}

// CheckAcyclic returns an error wrapping [ErrCycle] if any node can reach
// itself along parent→child edges. The error names a node on the cycle.
//
// Detection runs in O(N+E) using depth-first search with white/gray/black
// coloring.
func (t *Tree) CheckAcyclic() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(t.nodes))
	var found NodeID = None

	var dfs func(id NodeID)
	dfs = func(id NodeID) {
		color[id] = gray
		for _, child := range t.nodes[id].Children {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				found = child
			}
			if found != None {
				return
			}
		}
		color[id] = black
	}

	for _, n := range t.nodes {
		if color[n.ID] == white {
			dfs(n.ID)
			if found != None {
				return fmt.Errorf("%w: through %s", ErrCycle, t.nodes[found].Key)
			}
		}
	}
	return nil
}

func (t *Tree) link(parent, child *Node) {
	if slices.Contains(parent.Children, child.ID) {
		return
	}
	parent.Children = append(parent.Children, child.ID)
	child.Parents = append(child.Parents, parent.ID)
}
