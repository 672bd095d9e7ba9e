package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matzehuels/stemma/pkg/layout"
	"github.com/matzehuels/stemma/pkg/tree"
)

// Node kinds.
const (
	KindIndividual = "individual"
	KindUnion      = "union"
)

// Layout is the serialization format for a computed layout.
type Layout struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" bson:"created_at,omitempty"`

	Generations int    `json:"generations" bson:"generations"`
	Nodes       []Node `json:"nodes" bson:"nodes"`
	Edges       []Edge `json:"edges" bson:"edges"`
	Stats       Stats  `json:"stats" bson:"stats"`
}

// Node is a positioned individual or union.
type Node struct {
	ID    string `json:"id" bson:"id"`
	Kind  string `json:"kind" bson:"kind"`
	Label string `json:"label,omitempty" bson:"label,omitempty"`
	Level int    `json:"level" bson:"level"`
	X     int    `json:"x" bson:"x"`
	Y     int    `json:"y" bson:"y"`
}

// IsUnion returns true if this is a union node.
func (n *Node) IsUnion() bool { return n.Kind == KindUnion }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a parent→child connection.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// Stats summarizes how a layout was computed.
type Stats struct {
	Individuals int     `json:"individuals" bson:"individuals"`
	Unions      int     `json:"unions" bson:"unions"`
	Constraints int     `json:"constraints" bson:"constraints"`
	Fixpoint    bool    `json:"fixpoint" bson:"fixpoint"`
	Cascades    int     `json:"cascades" bson:"cascades"`
	Iterations  int     `json:"iterations" bson:"iterations"`
	Moves       int     `json:"moves" bson:"moves"`
	Converged   bool    `json:"converged" bson:"converged"`
	Exhausted   bool    `json:"exhausted,omitempty" bson:"exhausted,omitempty"`
	InitialCost float64 `json:"initial_cost" bson:"initial_cost"`
	Cost        float64 `json:"cost" bson:"cost"`
	Overlaps    int     `json:"overlaps" bson:"overlaps"`
	Crossings   int     `json:"crossings" bson:"crossings"`
	DurationMS  int64   `json:"duration_ms" bson:"duration_ms"`
}

// FromLayout converts a computed layout to its serialization format.
// Nodes keep arena order, which is record order.
func FromLayout(l *layout.Layout) Layout {
	t := l.Tree
	out := Layout{
		Generations: l.Stats.Generations,
		Nodes:       make([]Node, 0, t.Len()),
		Stats:       statsFrom(l.Stats),
	}
	for _, n := range t.Nodes() {
		out.Nodes = append(out.Nodes, Node{
			ID:    n.Key,
			Kind:  n.Kind.String(),
			Label: n.Label,
			Level: n.Level,
			X:     n.X,
			Y:     n.Y,
		})
	}
	for _, e := range t.Edges() {
		out.Edges = append(out.Edges, Edge{From: t.Node(e.From).Key, To: t.Node(e.To).Key})
	}
	out.Stats.Crossings = out.Crossings()
	return out
}

func statsFrom(s layout.Stats) Stats {
	out := Stats{
		Individuals: s.Individuals,
		Unions:      s.Unions,
		Constraints: s.Constraints,
		Fixpoint:    s.Fixpoint,
		Cascades:    s.Placement.Cascades,
		Iterations:  s.Optimizer.Iterations,
		Moves:       s.Optimizer.Moves,
		Converged:   s.Optimizer.Converged,
		Exhausted:   s.Exhausted,
		InitialCost: s.Optimizer.InitialCost,
		Cost:        s.Cost,
		Overlaps:    s.Overlaps,
		DurationMS:  s.Duration.Milliseconds(),
	}
	if out.InitialCost == 0 {
		out.InitialCost = s.Cost
	}
	return out
}

// Bounds returns the smallest and largest X and Y over all nodes.
func (l *Layout) Bounds() (minX, minY, maxX, maxY int) {
	for i, n := range l.Nodes {
		if i == 0 {
			minX, maxX, minY, maxY = n.X, n.X, n.Y, n.Y
			continue
		}
		minX, maxX = min(minX, n.X), max(maxX, n.X)
		minY, maxY = min(minY, n.Y), max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY
}

// Apply copies the coordinates of l onto matching nodes of t. Unknown IDs
// are ignored.
func (l *Layout) Apply(t *tree.Tree) {
	for _, n := range l.Nodes {
		if tn, ok := t.Lookup(n.ID); ok {
			tn.Level, tn.X, tn.Y = n.Level, n.X, n.Y
		}
	}
}

// MarshalLayout converts a layout to JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalLayout parses JSON bytes into a layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

// WriteLayoutFile writes a layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(f, l)
}

// ReadLayoutFile reads a layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
