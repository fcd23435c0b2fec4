// Package sym is a small canonicalizing expression library: exact rational
// numbers, symbols with assumptions, sums, products, powers, relations,
// matrices, function applications, calculus nodes, and physical units.
//
// Expressions are immutable once constructed. Constructors such as Add, Mul,
// and Pow flatten and combine their arguments so that structurally equal
// inputs produce structurally equal outputs, but sym makes no attempt at
// general simplification; it only does what is needed to compare and
// re-express terms.
package sym
