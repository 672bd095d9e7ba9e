package ordering

import (
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/stemma/pkg/tree"
)

func TestGraph_Add(t *testing.T) {
	g := NewGraph()
	tests := []struct {
		name         string
		upper, lower tree.NodeID
		want         bool
	}{
		{"first", 1, 2, true},
		{"self", 3, 3, false},
		{"duplicate", 1, 2, false},
		{"reverse", 2, 1, false},
		{"chain", 2, 3, true},
		{"closes cycle", 3, 1, false},
		{"transitive duplicate", 1, 3, true},
	}
	for _, tt := range tests {
		if got := g.Add(tt.upper, tt.lower); got != tt.want {
			t.Errorf("%s: Add(%d, %d) = %v, want %v", tt.name, tt.upper, tt.lower, got, tt.want)
		}
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	if !g.Reachable(1, 3) || g.Reachable(3, 1) {
		t.Error("Reachable() wrong for 1 and 3")
	}
}

func TestGraph_RandomInsertionsStayAcyclic(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 20 {
		g := NewGraph()
		const nodes = 12
		for range 200 {
			g.Add(tree.NodeID(rng.IntN(nodes)), tree.NodeID(rng.IntN(nodes)))
		}
		if g.HasCycle() {
			t.Fatalf("round %d: graph has a cycle after random insertions", round)
		}
		for _, c := range g.Constraints() {
			if g.Reachable(c.Lower, c.Upper) {
				t.Fatalf("round %d: %d reaches back to %d", round, c.Lower, c.Upper)
			}
		}
	}
}
