// Package graph provides serialization types for family records and layouts.
//
// This package defines the canonical wire format for stemma data, used for
// JSON files, API requests and responses, caching, and the layout store.
//
// # Records
//
// Input is a list of individuals and unions that reference each other by
// ID:
//
//	{
//	  "individuals": [
//	    {"id": "I1", "name": "Anna", "birth": "ABT 1850"},
//	    {"id": "I2", "name": "Karl", "birth": "12 MAR 1848"},
//	    {"id": "I3", "name": "Marie"}
//	  ],
//	  "unions": [
//	    {"id": "F1", "partners": ["I2", "I1"], "children": ["I3"], "date": "1872"}
//	  ]
//	}
//
// The first partner is the father side. Children keep their listed order.
// Individuals may also name their birth union in "child_of" and the unions
// they founded in "founded".
//
//	recs, _ := graph.ReadRecordsFile("family.json")
//	t, warnings, err := recs.ToTree()
//
// # Layouts
//
// A [Layout] carries every node with its generation level and integer
// coordinates, the parent→child edges, and run statistics:
//
//	{
//	  "nodes": [{"id": "F1", "kind": "union", "level": 1, "x": 1, "y": 0}, ...],
//	  "edges": [{"from": "I2", "to": "F1"}, ...],
//	  "stats": {"iterations": 12, "cost": 18.3, ...}
//	}
//
// Use [FromLayout] to export a computed layout and [MarshalLayout],
// [WriteLayoutFile] or [ReadLayoutFile] to move it across boundaries.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
