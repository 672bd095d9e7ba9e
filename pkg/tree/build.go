package tree

import (
	"fmt"
	"slices"
)

// IndividualRecord describes a person as supplied by the source parser.
//
// ChildOf and Founded are optional cross-references. Union records are
// authoritative; these fields only add links the unions did not already
// declare.
type IndividualRecord struct {
	Key     string
	Label   string
	Birth   string
	ChildOf string
	Founded []string
	Source  any
}

// UnionRecord describes a partnership as supplied by the source parser.
// Partners holds at most two keys: the first partner then the second.
type UnionRecord struct {
	Key      string
	Label    string
	Partners []string
	Children []string
	Date     string
	Source   any
}

// Warning reports a relation that was dropped while building a tree.
type Warning struct {
	Record string // key of the record holding the reference
	Ref    string // referenced key
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s -> %s: %s", w.Record, w.Ref, w.Reason)
}

// Build creates a tree with one node per record, individuals first, then
// links partners and children.
//
// Dangling or conflicting references drop only the offending link and are
// returned as warnings. Empty or duplicate keys are errors.
func Build(individuals []IndividualRecord, unions []UnionRecord) (*Tree, []Warning, error) {
	t := New()
	for _, r := range individuals {
		n, err := t.add(r.Key, r.Label, KindIndividual, r.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("individual %q: %w", r.Key, err)
		}
		n.Birth = r.Birth
	}
	for _, r := range unions {
		n, err := t.add(r.Key, r.Label, KindUnion, r.Source)
		if err != nil {
			return nil, nil, fmt.Errorf("union %q: %w", r.Key, err)
		}
		n.Date = r.Date
	}

	b := builder{t: t}
	for _, r := range unions {
		u, _ := t.Lookup(r.Key)
		if len(r.Partners) > 2 {
			b.warn(r.Key, r.Partners[2], "more than two partners")
		}
		for slot, key := range r.Partners[:min(len(r.Partners), 2)] {
			if key == "" {
				continue
			}
			p, ok := b.individual(r.Key, key)
			if !ok {
				continue
			}
			b.addPartner(u, p, slot)
		}
		for _, key := range r.Children {
			c, ok := b.individual(r.Key, key)
			if !ok {
				continue
			}
			b.addChild(u, c)
		}
	}

	for _, r := range individuals {
		n, _ := t.Lookup(r.Key)
		if r.ChildOf != "" {
			if u, ok := b.union(r.Key, r.ChildOf); ok {
				b.addChild(u, n)
			}
		}
		for _, key := range r.Founded {
			u, ok := b.union(r.Key, key)
			if !ok || slices.Contains(u.Partners[:], n.ID) {
				continue
			}
			switch {
			case u.Partners[0] == None:
				b.addPartner(u, n, 0)
			case u.Partners[1] == None:
				b.addPartner(u, n, 1)
			default:
				b.warn(r.Key, key, "union already has two partners")
			}
		}
	}

	return t, b.warnings, nil
}

type builder struct {
	t        *Tree
	warnings []Warning
}

func (b *builder) warn(record, ref, reason string) {
	b.warnings = append(b.warnings, Warning{Record: record, Ref: ref, Reason: reason})
}

func (b *builder) individual(record, key string) (*Node, bool) {
	n, ok := b.t.Lookup(key)
	if !ok {
		b.warn(record, key, "unknown individual")
		return nil, false
	}
	if n.Kind != KindIndividual {
		b.warn(record, key, "not an individual")
		return nil, false
	}
	return n, true
}

func (b *builder) union(record, key string) (*Node, bool) {
	n, ok := b.t.Lookup(key)
	if !ok {
		b.warn(record, key, "unknown union")
		return nil, false
	}
	if n.Kind != KindUnion {
		b.warn(record, key, "not a union")
		return nil, false
	}
	return n, true
}

func (b *builder) addPartner(u, p *Node, slot int) {
	if slices.Contains(u.Partners[:], p.ID) {
		b.warn(u.Key, p.Key, "duplicate partner")
		return
	}
	if u.Partners[slot] != None {
		b.warn(u.Key, p.Key, "partner slot already taken")
		return
	}
	u.Partners[slot] = p.ID
	p.Founded = append(p.Founded, u.ID)
	b.t.link(p, u)
	// Partner order defines parent order: first partner before second.
	if slot == 0 && u.Partners[1] != None {
		slices.Reverse(u.Parents)
	}
}

func (b *builder) addChild(u, c *Node) {
	switch c.ChildOf {
	case u.ID:
		return
	case None:
	default:
		b.warn(u.Key, c.Key, "already a child of "+b.t.nodes[c.ChildOf].Key)
		return
	}
	c.ChildOf = u.ID
	u.Kids = append(u.Kids, c.ID)
	b.t.link(u, c)
}
