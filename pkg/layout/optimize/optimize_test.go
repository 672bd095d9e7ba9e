package optimize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stemma/pkg/layout/ordering"
	"github.com/matzehuels/stemma/pkg/layout/placement"
	"github.com/matzehuels/stemma/pkg/tree"
	"github.com/matzehuels/stemma/pkg/tree/transform"
)

func build(t *testing.T, keys []string, unions []tree.UnionRecord) *tree.Tree {
	t.Helper()
	recs := make([]tree.IndividualRecord, len(keys))
	for i, k := range keys {
		recs[i] = tree.IndividualRecord{Key: k}
	}
	tr, warnings, err := tree.Build(recs, unions)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(warnings) > 0 {
		t.Fatalf("Build() warnings = %v", warnings)
	}
	if _, err := transform.AssignLevels(tr); err != nil {
		t.Fatalf("AssignLevels() error = %v", err)
	}
	return tr
}

func setY(t *testing.T, tr *tree.Tree, ys map[string]int) {
	t.Helper()
	for key, y := range ys {
		n, ok := tr.Lookup(key)
		if !ok {
			t.Fatalf("no node %q", key)
		}
		n.Y = y
	}
}

// family is three generations with two intermarrying branches.
func family(t *testing.T) *tree.Tree {
	return build(t,
		[]string{"g1", "g2", "g3", "g4", "a", "b", "c", "d", "e", "k1", "k2", "k3"},
		[]tree.UnionRecord{
			{Key: "U1", Partners: []string{"g1", "g2"}, Children: []string{"a", "b"}},
			{Key: "U2", Partners: []string{"g3", "g4"}, Children: []string{"c", "d"}},
			{Key: "U3", Partners: []string{"a", "c"}, Children: []string{"k1", "k2"}},
			{Key: "U4", Partners: []string{"b", "e"}, Children: []string{"k3"}},
		})
}

func scramble(tr *tree.Tree, seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e37))
	for _, n := range tr.Nodes() {
		n.Y = rng.IntN(7) - 3
	}
}

func TestCost(t *testing.T) {
	tr := build(t, []string{"p", "c", "x", "y"}, []tree.UnionRecord{
		{Key: "u", Partners: []string{"p"}, Children: []string{"c"}},
	})
	setY(t, tr, map[string]int{"p": 0, "u": 1, "c": 1, "x": 0, "y": 0})

	// p→u is √2, u→c is 1; p, x and y share (0, 0): three pairs.
	want := 3*OverlapPenalty + math.Sqrt2 + 1
	if got := Cost(tr); math.Abs(got-want) > 1e-12 {
		t.Errorf("Cost() = %v, want %v", got, want)
	}
	if got := Overlaps(tr); got != 3 {
		t.Errorf("Overlaps() = %d, want 3", got)
	}
}

func TestDeltaMatchesRecomputedCost(t *testing.T) {
	tr := family(t)
	for seed := range uint64(5) {
		scramble(tr, seed)
		snap := newSnapshot(tr)
		base := snap.cost()
		before := tr.Positions()

		for _, g := range groups(tr) {
			for _, shift := range shifts() {
				moves := snap.variant(g, shift)
				for _, m := range moves {
					tr.Node(m.Node).Y = m.ToY
				}
				if got, want := snap.delta(moves), Cost(tr)-base; math.Abs(got-want) > 1e-9 {
					t.Fatalf("seed %d group %v shift %d: delta = %v, want %v", seed, g, shift, got, want)
				}
				tr.SetPositions(before)
			}
		}
	}
}

func TestVariant_NeverAddsCollisions(t *testing.T) {
	tr := family(t)
	for seed := range uint64(5) {
		scramble(tr, seed)
		snap := newSnapshot(tr)
		base := Overlaps(tr)
		before := tr.Positions()

		for _, g := range groups(tr) {
			for _, shift := range shifts() {
				for _, m := range snap.variant(g, shift) {
					tr.Node(m.Node).Y = m.ToY
				}
				if got := Overlaps(tr); got > base {
					t.Fatalf("seed %d group %v shift %d: overlaps %d -> %d", seed, g, shift, base, got)
				}
				tr.SetPositions(before)
			}
		}
	}
}

// column places unrelated nodes in one column at the given Y values. Node
// IDs follow key order.
func column(t *testing.T, ys map[string]int) (*tree.Tree, func(string) tree.NodeID) {
	t.Helper()
	var keys []string
	for k := range ys {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	tr := build(t, keys, nil)
	setY(t, tr, ys)
	return tr, func(key string) tree.NodeID {
		n, _ := tr.Lookup(key)
		return n.ID
	}
}

func TestVariant_CascadeOrder(t *testing.T) {
	tests := []struct {
		name  string
		ys    map[string]int
		group []string
		shift int
		want  []string // node:fromY->toY
	}{
		{
			name:  "single swap",
			ys:    map[string]int{"a": 0, "b": 1},
			group: []string{"a"},
			shift: 1,
			want:  []string{"a:0->1", "b:1->0"},
		},
		{
			name:  "downward shift resolves lowest bystander first",
			ys:    map[string]int{"p": 0, "q": 1, "b2": 2, "b3": 3},
			group: []string{"p", "q"},
			shift: 2,
			want:  []string{"p:0->2", "q:1->3", "b3:3->1", "b2:2->0"},
		},
		{
			name:  "upward shift resolves highest bystander first",
			ys:    map[string]int{"p": 3, "q": 2, "b1": 1, "b0": 0},
			group: []string{"p", "q"},
			shift: -2,
			want:  []string{"p:3->1", "q:2->0", "b0:0->2", "b1:1->3"},
		},
		{
			name:  "bystander skips stationary nodes",
			ys:    map[string]int{"a": 0, "b": 1, "s": 0, "t": 2},
			group: []string{"b"},
			shift: -1,
			want:  []string{"b:1->0", "a:0->1", "s:0->3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, id := column(t, tt.ys)
			var group []tree.NodeID
			for _, k := range tt.group {
				group = append(group, id(k))
			}

			var got []string
			for _, m := range newSnapshot(tr).variant(group, tt.shift) {
				got = append(got, moveString(tr.Node(m.Node).Key, m))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("moves mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func moveString(key string, m Move) string {
	return fmt.Sprintf("%s:%d->%d", key, m.FromY, m.ToY)
}

func TestRun_LinearChainNeedsNoMoves(t *testing.T) {
	tr := build(t, []string{"G1", "G2", "C1", "S1", "D1"}, []tree.UnionRecord{
		{Key: "F1", Partners: []string{"G1", "G2"}, Children: []string{"C1"}},
		{Key: "F2", Partners: []string{"C1", "S1"}, Children: []string{"D1"}},
	})
	placement.Place(tr, ordering.Derive(tr))

	var notes []Notification
	res, err := Run(context.Background(), tr, Options{Sink: SinkFunc(func(n Notification) { notes = append(notes, n) })})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Converged || res.Iterations != 0 || len(notes) != 0 {
		t.Errorf("Run() = %+v with %d notifications, want converged with no moves", res, len(notes))
	}
	if want := 4 + 2*math.Sqrt2; math.Abs(res.FinalCost-want) > 1e-9 {
		t.Errorf("FinalCost = %v, want %v", res.FinalCost, want)
	}
}

func TestRun_CostsStrictlyDecrease(t *testing.T) {
	for seed := range uint64(4) {
		tr := family(t)
		scramble(tr, seed)

		var notes []Notification
		res, err := Run(context.Background(), tr, Options{
			Workers: 3,
			Sink:    SinkFunc(func(n Notification) { notes = append(notes, n) }),
		})
		if err != nil {
			t.Fatalf("seed %d: Run() error = %v", seed, err)
		}
		if !res.Converged {
			t.Errorf("seed %d: not converged", seed)
		}

		prev := res.InitialCost
		for i, c := range res.Costs {
			if c >= prev {
				t.Errorf("seed %d: cost[%d] = %v, not below %v", seed, i, c, prev)
			}
			prev = c
		}
		if math.Abs(res.FinalCost-Cost(tr)) > 1e-9 {
			t.Errorf("seed %d: FinalCost = %v, tree cost = %v", seed, res.FinalCost, Cost(tr))
		}
		if len(notes) != res.Moves {
			t.Errorf("seed %d: %d notifications, want %d", seed, len(notes), res.Moves)
		}
		for i := 1; i < len(notes); i++ {
			if notes[i].Iteration < notes[i-1].Iteration {
				t.Fatalf("seed %d: notification %d out of commit order", seed, i)
			}
		}
	}
}

func TestRun_SameResultForAnyWorkerCount(t *testing.T) {
	var want []int
	for _, workers := range []int{1, 2, 7} {
		tr := family(t)
		scramble(tr, 42)
		if _, err := Run(context.Background(), tr, Options{Workers: workers}); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		got := tr.Positions()
		if want == nil {
			want = got
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("workers=%d positions differ (-want +got):\n%s", workers, diff)
		}
	}
}

func stretched(t *testing.T) *tree.Tree {
	tr := build(t, []string{"a", "b"}, []tree.UnionRecord{
		{Key: "u", Partners: []string{"a"}, Children: []string{"b"}},
	})
	setY(t, tr, map[string]int{"a": 0, "u": 10, "b": 20})
	return tr
}

func TestRun_MaxIterations(t *testing.T) {
	tr := stretched(t)
	res, err := Run(context.Background(), tr, Options{MaxIterations: 1})
	if !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("Run() error = %v, want ErrBudgetExhausted", err)
	}
	if res.Iterations != 1 || res.Converged {
		t.Errorf("Run() = %+v, want one iteration, not converged", res)
	}
	if res.FinalCost >= res.InitialCost {
		t.Errorf("FinalCost = %v, want below %v", res.FinalCost, res.InitialCost)
	}
}

func TestRun_CanceledContext(t *testing.T) {
	tr := stretched(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	before := tr.Positions()
	res, err := Run(ctx, tr, Options{})
	if !errors.Is(err, ErrBudgetExhausted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want ErrBudgetExhausted wrapping context.Canceled", err)
	}
	if res.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", res.Iterations)
	}
	if diff := cmp.Diff(before, tr.Positions()); diff != "" {
		t.Errorf("positions changed (-want +got):\n%s", diff)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Notification, 1)
	ChannelSink(ch).Moved(Notification{Key: "a", Y: 3})
	if n := <-ch; n.Key != "a" || n.Y != 3 {
		t.Errorf("received %+v", n)
	}
}
