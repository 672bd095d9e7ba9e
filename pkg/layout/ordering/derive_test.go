package ordering

import (
	"testing"

	"github.com/matzehuels/stemma/pkg/tree"
)

type person struct {
	key, birth string
}

func build(t *testing.T, people []person, unions []tree.UnionRecord) *tree.Tree {
	t.Helper()
	recs := make([]tree.IndividualRecord, len(people))
	for i, p := range people {
		recs[i] = tree.IndividualRecord{Key: p.key, Birth: p.birth}
	}
	tr, warnings, err := tree.Build(recs, unions)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(warnings) > 0 {
		t.Fatalf("Build() warnings = %v", warnings)
	}
	return tr
}

func id(t *testing.T, tr *tree.Tree, key string) tree.NodeID {
	t.Helper()
	n, ok := tr.Lookup(key)
	if !ok {
		t.Fatalf("no node %q", key)
	}
	return n.ID
}

func assertAbove(t *testing.T, tr *tree.Tree, g *Graph, upper, lower string) {
	t.Helper()
	if !g.Reachable(id(t, tr, upper), id(t, tr, lower)) {
		t.Errorf("%s is not ordered above %s; constraints = %v", upper, lower, g.Constraints())
	}
}

// siblings: root union R has children older (1900) and younger (1905), who
// found F1 and F2 with spouses from outside the tree.
func siblings(t *testing.T, olderBirth, youngerBirth string) *tree.Tree {
	return build(t,
		[]person{{"pa", ""}, {"ma", ""}, {"younger", youngerBirth}, {"older", olderBirth}, {"s1", ""}, {"s2", ""}},
		[]tree.UnionRecord{
			{Key: "R", Partners: []string{"pa", "ma"}, Children: []string{"younger", "older"}},
			{Key: "F2", Partners: []string{"younger", "s2"}},
			{Key: "F1", Partners: []string{"older", "s1"}},
		})
}

func TestDerive_SiblingsByBirth(t *testing.T) {
	tr := siblings(t, "1900", "1905")
	g := Derive(tr)
	assertAbove(t, tr, g, "F1", "F2")
}

func TestDerive_UndatedSiblingSortsFirst(t *testing.T) {
	tr := siblings(t, "1900", "")
	g := Derive(tr)
	assertAbove(t, tr, g, "F2", "F1")
}

func TestDerive_PartnerOrigins(t *testing.T) {
	tr := build(t,
		[]person{{"h", ""}, {"w", ""}, {"a", ""}, {"b", ""}, {"c", ""}, {"d", ""}},
		[]tree.UnionRecord{
			{Key: "W", Partners: []string{"c", "d"}, Children: []string{"w"}},
			{Key: "H", Partners: []string{"a", "b"}, Children: []string{"h"}},
			{Key: "M", Partners: []string{"h", "w"}},
		})
	g := Derive(tr)
	assertAbove(t, tr, g, "H", "W")
}

func TestDerive_UnionsByDate(t *testing.T) {
	tr := build(t,
		[]person{{"p", ""}, {"x", ""}, {"y", ""}, {"z", ""}},
		[]tree.UnionRecord{
			{Key: "late", Partners: []string{"p", "x"}, Date: "1950"},
			{Key: "early", Partners: []string{"p", "y"}, Date: "ABT 1930"},
			{Key: "middle", Partners: []string{"p", "z"}, Date: "12 MAR 1940"},
		})
	g := Derive(tr)
	assertAbove(t, tr, g, "early", "middle")
	assertAbove(t, tr, g, "middle", "late")
}

func TestDerive_Propagation(t *testing.T) {
	// F1 above F2 by birth order; their children's unions follow.
	tr := build(t,
		[]person{
			{"pa", ""}, {"ma", ""}, {"older", "1900"}, {"younger", "1905"}, {"s1", ""}, {"s2", ""},
			{"k1", ""}, {"k2", ""}, {"t1", ""}, {"t2", ""},
		},
		[]tree.UnionRecord{
			{Key: "R", Partners: []string{"pa", "ma"}, Children: []string{"older", "younger"}},
			{Key: "F1", Partners: []string{"older", "s1"}, Children: []string{"k1"}},
			{Key: "F2", Partners: []string{"younger", "s2"}, Children: []string{"k2"}},
			{Key: "G2", Partners: []string{"k2", "t2"}},
			{Key: "G1", Partners: []string{"k1", "t1"}},
		})
	g := Derive(tr)
	assertAbove(t, tr, g, "F1", "F2")
	assertAbove(t, tr, g, "G1", "G2")
	if g.HasCycle() {
		t.Error("derived graph has a cycle")
	}
}

func TestDerive_ConflictingRulesStayAcyclic(t *testing.T) {
	// Cousins marry in both directions, so rule 1 and rule 3 disagree.
	tr := build(t,
		[]person{
			{"pa", ""}, {"ma", ""}, {"a", "1900"}, {"b", "1902"}, {"sa", ""}, {"sb", ""},
			{"a1", ""}, {"a2", ""}, {"b1", ""}, {"b2", ""},
		},
		[]tree.UnionRecord{
			{Key: "R", Partners: []string{"pa", "ma"}, Children: []string{"a", "b"}},
			{Key: "A", Partners: []string{"a", "sa"}, Children: []string{"a1", "a2"}},
			{Key: "B", Partners: []string{"b", "sb"}, Children: []string{"b1", "b2"}},
			{Key: "M1", Partners: []string{"b1", "a1"}},
			{Key: "M2", Partners: []string{"a2", "b2"}},
		})
	g := Derive(tr)
	if g.HasCycle() {
		t.Error("derived graph has a cycle")
	}
	assertAbove(t, tr, g, "B", "A")
}
