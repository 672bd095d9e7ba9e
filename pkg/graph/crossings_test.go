package graph

import "testing"

func TestCrossings(t *testing.T) {
	node := func(id string, level, y int) Node { return Node{ID: id, Level: level, X: level, Y: y} }
	tests := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  int
	}{
		{
			name:  "parallel",
			nodes: []Node{node("a", 0, 0), node("b", 0, 2), node("c", 1, 0), node("d", 1, 2)},
			edges: []Edge{{"a", "c"}, {"b", "d"}},
			want:  0,
		},
		{
			name:  "crossed",
			nodes: []Node{node("a", 0, 0), node("b", 0, 2), node("c", 1, 0), node("d", 1, 2)},
			edges: []Edge{{"a", "d"}, {"b", "c"}},
			want:  1,
		},
		{
			name:  "shared endpoint",
			nodes: []Node{node("a", 0, 0), node("c", 1, 0), node("d", 1, 2)},
			edges: []Edge{{"a", "c"}, {"a", "d"}},
			want:  0,
		},
		{
			name: "different generation pairs",
			nodes: []Node{
				node("a", 0, 0), node("b", 0, 2),
				node("c", 1, 0), node("d", 2, -1),
			},
			edges: []Edge{{"a", "d"}, {"b", "c"}},
			want:  0,
		},
		{
			name: "fan",
			nodes: []Node{
				node("a", 0, 0), node("b", 0, 1), node("c", 0, 2),
				node("x", 1, 0), node("y", 1, 1), node("z", 1, 2),
			},
			edges: []Edge{{"a", "z"}, {"b", "y"}, {"c", "x"}},
			want:  3,
		},
		{
			name:  "unknown endpoint",
			nodes: []Node{node("a", 0, 0)},
			edges: []Edge{{"a", "ghost"}, {"ghost", "a"}},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Layout{Nodes: tt.nodes, Edges: tt.edges}
			if got := l.Crossings(); got != tt.want {
				t.Errorf("Crossings() = %d, want %d", got, tt.want)
			}
		})
	}
}
