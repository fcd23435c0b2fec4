// Package latexpr compiles LaTeX math into symbolic expressions.
//
// Source text is written the way you'd write it in a paper: "2 a" is a
// multiplication, "\frac{1}{2} m v^2" is half of m times v squared, and
// "|x|" is an absolute value. Multi-line input in an align environment or
// separated by \\ compiles to a System with one expression per line, and a
// chain like "a = b = c" compiles to the pairwise relations a = b and b = c.
//
// An Environment declares symbols with assumptions, variables whose values
// are themselves LaTeX text, and functions with parameters. Variables may
// refer to each other as long as the references don't form a cycle.
//
// Physical units are recognized in braces, like "3 {km}", and, if the
// environment asks for it, in free symbols named like units. Results are
// normalized so that each term's units take the least complex form
// available in the environment's unit system: "kg m / s^2" becomes "N".
//
package latexpr
