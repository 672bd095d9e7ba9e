package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/stemma/pkg/graph"
)

func sample() graph.Layout {
	return graph.Layout{
		Nodes: []graph.Node{
			{ID: "pa", Kind: graph.KindIndividual, Label: "Karl", X: 0, Y: 0},
			{ID: "ma", Kind: graph.KindIndividual, X: 0, Y: -1},
			{ID: "fam", Kind: graph.KindUnion, Level: 1, X: 1, Y: 0},
			{ID: "kid", Kind: graph.KindIndividual, Level: 2, X: 2, Y: 2},
		},
		Edges: []graph.Edge{{From: "pa", To: "fam"}, {From: "ma", To: "fam"}, {From: "fam", To: "kid"}},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{ColumnGap: 2, RowGap: 0.5})

	for _, want := range []string{
		`"pa" [pos="0,0!", label="Karl"]`,
		`"ma" [pos="0,0.5!", label="ma"]`,
		`"fam" [pos="2,0!", shape=circle`,
		`"kid" [pos="4,-1!", label="kid"]`,
		`"fam" -> "kid";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Karl\npa (0, 0)"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.HasPrefix(got, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
}
