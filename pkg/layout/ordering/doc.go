// Package ordering derives the vertical order of unions within a generation.
//
// An order constraint (upper, lower) states that union upper sits on a
// strictly smaller Y than union lower. Constraints are collected in a
// [Graph], an append-only DAG that rejects any insertion which would close a
// cycle. [Derive] fills a graph from the family structure of a leveled
// [tree.Tree]:
//
//  1. When both partners of a union were born into unions, the first
//     partner's birth union sits above the second partner's.
//  2. The unions founded by one individual are ordered by start date.
//  3. Siblings who founded unions are ordered by birth date; every union of
//     the older sibling sits above every union of the younger.
//  4. When union A sits above union B, every union founded by a child of A
//     sits above every union founded by a child of B.
//
// Rule 4 runs once over the constraints produced by rules 1 to 3. Missing or
// unparseable dates sort first (see [gedate.OrderKey]). Sorting is stable,
// so records with equal dates keep their input order.
//
// Conflicting candidates are dropped silently: whichever constraint arrives
// first wins.
//
// [tree.Tree]: github.com/matzehuels/stemma/pkg/tree
// [gedate.OrderKey]: github.com/matzehuels/stemma/pkg/gedate
package ordering
