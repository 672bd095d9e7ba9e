// Package placement assigns initial Y coordinates to a leveled tree.
//
// [Place] runs four steps:
//
//  1. Every union starts at Y = 0. Order constraints are resolved to a
//     fixpoint by moving the lower union of each violated constraint down
//     one slot per round.
//  2. Unions of each generation are compressed to dense slots 0..n-1,
//     keeping their relative order.
//  3. Children are interleaved: walking a generation's unions in Y order,
//     each union moves to its slot plus a running shift plus half its child
//     count, and its children are centered on it. Every union with more than
//     one child widens the shift for the unions after it.
//  4. Root founders, partners not born into any union, are placed from the
//     youngest generation to the oldest. The second partner goes one slot
//     above the union and the first partner shares its row. A founder whose
//     slot is taken inserts itself: every placed node at or below the slot
//     in the founder's generation, and every union at or below it one
//     generation up, moves down one slot.
//
// Individuals without any union are then appended below their generation.
// Smaller Y is higher on the page.
package placement
