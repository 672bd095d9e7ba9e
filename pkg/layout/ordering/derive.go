package ordering

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stemma/pkg/gedate"
	"github.com/matzehuels/stemma/pkg/tree"
)

// Option configures [Derive].
type Option func(*deriver)

// WithLogger sets the logger used for derivation statistics.
func WithLogger(l *log.Logger) Option { return func(d *deriver) { d.logger = l } }

type deriver struct {
	t      *tree.Tree
	g      *Graph
	logger *log.Logger
}

// Derive builds the order-constraint graph for t.
func Derive(t *tree.Tree, opts ...Option) *Graph {
	d := &deriver{t: t, g: NewGraph()}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	d.partnerOrigins()
	d.unionsByDate()
	d.siblingsByBirth()
	d.propagate()
	return d.g
}

// partnerOrigins places the first partner's birth union above the second's.
func (d *deriver) partnerOrigins() {
	before := d.g.Len()
	for _, u := range d.t.Unions() {
		first, second := d.t.Node(u.Partners[0]), d.t.Node(u.Partners[1])
		if first == nil || second == nil {
			continue
		}
		if first.ChildOf == tree.None || second.ChildOf == tree.None {
			continue
		}
		d.g.Add(first.ChildOf, second.ChildOf)
	}
	d.logger.Debug("order constraints", "rule", "partner origins", "added", d.g.Len()-before)
}

// unionsByDate chains the unions of each individual by start date.
func (d *deriver) unionsByDate() {
	before := d.g.Len()
	for _, n := range d.t.Individuals() {
		founded := d.byDate(n.Founded)
		for i := 0; i+1 < len(founded); i++ {
			d.g.Add(founded[i], founded[i+1])
		}
	}
	d.logger.Debug("order constraints", "rule", "union dates", "added", d.g.Len()-before)
}

// siblingsByBirth orders the unions of consecutive siblings by birth date.
func (d *deriver) siblingsByBirth() {
	before := d.g.Len()
	for _, u := range d.t.Unions() {
		var founders []*tree.Node
		for _, id := range u.Kids {
			if c := d.t.Node(id); len(c.Founded) > 0 {
				founders = append(founders, c)
			}
		}
		slices.SortStableFunc(founders, func(a, b *tree.Node) int {
			return gedate.Compare(a.Birth, b.Birth)
		})
		for i := 0; i+1 < len(founders); i++ {
			d.addAll(founders[i].Founded, founders[i+1].Founded)
		}
	}
	d.logger.Debug("order constraints", "rule", "sibling births", "added", d.g.Len()-before)
}

// propagate carries each existing constraint down to the next generation.
func (d *deriver) propagate() {
	before := d.g.Len()
	for _, c := range slices.Clone(d.g.Constraints()) {
		d.addAll(d.childUnions(c.Upper), d.childUnions(c.Lower))
	}
	d.logger.Debug("order constraints", "rule", "propagation", "added", d.g.Len()-before, "total", d.g.Len())
}

func (d *deriver) addAll(uppers, lowers []tree.NodeID) {
	for _, up := range uppers {
		for _, lo := range lowers {
			d.g.Add(up, lo)
		}
	}
}

func (d *deriver) childUnions(union tree.NodeID) []tree.NodeID {
	var out []tree.NodeID
	for _, id := range d.t.Node(union).Kids {
		out = append(out, d.t.Node(id).Founded...)
	}
	return out
}

func (d *deriver) byDate(unions []tree.NodeID) []tree.NodeID {
	sorted := slices.Clone(unions)
	slices.SortStableFunc(sorted, func(a, b tree.NodeID) int {
		return gedate.Compare(d.t.Node(a).Date, d.t.Node(b).Date)
	})
	return sorted
}
