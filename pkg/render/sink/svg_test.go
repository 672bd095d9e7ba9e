package sink

import (
	"encoding/xml"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/stemma/pkg/graph"
)

func sample() graph.Layout {
	return graph.Layout{
		Nodes: []graph.Node{
			{ID: "pa", Kind: graph.KindIndividual, Label: "Karl <Sr.>", X: 0, Y: 0},
			{ID: "ma", Kind: graph.KindIndividual, X: 0, Y: -1},
			{ID: "fam", Kind: graph.KindUnion, Level: 1, X: 1, Y: 0},
			{ID: "kid", Kind: graph.KindIndividual, Level: 2, X: 2, Y: 0},
		},
		Edges: []graph.Edge{{From: "pa", To: "fam"}, {From: "ma", To: "fam"}, {From: "fam", To: "kid"}},
	}
}

func TestRenderSVG_WellFormed(t *testing.T) {
	svg := RenderSVG(sample())

	dec := xml.NewDecoder(strings.NewReader(string(svg)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, svg)
		}
	}
}

func TestRenderSVG_Contents(t *testing.T) {
	s := string(RenderSVG(sample(), WithCell(100, 40), WithMargin(10)))

	// 3 columns by 2 rows plus margins.
	if !strings.Contains(s, `viewBox="0 0 320.0 100.0"`) {
		t.Errorf("unexpected viewBox:\n%s", s)
	}
	if got := strings.Count(s, `class="person"`); got != 3 {
		t.Errorf("person boxes = %d, want 3", got)
	}
	if got := strings.Count(s, `class="union"`); got != 1 {
		t.Errorf("union markers = %d, want 1", got)
	}
	if got := strings.Count(s, `<path class="edge"`); got != 3 {
		t.Errorf("edges = %d, want 3", got)
	}
	if !strings.Contains(s, "Karl &lt;Sr.&gt;") {
		t.Error("label not escaped")
	}
	// ma sits one row above pa: y=-1 maps to the first row.
	if !strings.Contains(s, `id="node-ma" class="person" x="20.0" y="16.0"`) {
		t.Errorf("ma not in the first row:\n%s", s)
	}
}

func TestRenderSVG_Options(t *testing.T) {
	s := string(RenderSVG(sample(), WithoutEdges(), WithCoordinates()))
	if strings.Contains(s, `<path class="edge"`) {
		t.Error("WithoutEdges still drew edges")
	}
	if !strings.Contains(s, `>0,-1</text>`) {
		t.Error("WithCoordinates did not label ma")
	}
}

func TestRenderSVG_Empty(t *testing.T) {
	s := string(RenderSVG(graph.Layout{}))
	if !strings.Contains(s, `viewBox="0 0 48.0 48.0"`) {
		t.Errorf("empty layout viewBox:\n%s", s)
	}
}
