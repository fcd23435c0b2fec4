package latexpr

import (
	"strings"

	"github.com/zephyrtronium/latexpr/sym"
)

// Located is an expression with the source span it was compiled from.
type Located struct {
	Expr sym.Expr
	Span Span
}

// StartLine and EndLine give the 1-based source lines of the expression.
func (l Located) StartLine() int { return l.Span.Start.Line }
func (l Located) EndLine() int   { return l.Span.End.Line }

func (l Located) String() string {
	return l.Expr.String()
}

// System is an ordered list of expressions compiled from multi-line input or
// from a chained relation like a = b = c. Each element of a chain carries
// the span of the whole chain.
type System struct {
	Exprs []Located
}

// Last returns the final expression of the system.
func (s *System) Last() Located {
	return s.Exprs[len(s.Exprs)-1]
}

func (s *System) String() string {
	var b strings.Builder
	for i, e := range s.Exprs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Expr.String())
	}
	return b.String()
}

// Result is the result of a compile. Exactly one of Expr and System is
// non-nil.
type Result struct {
	Expr   sym.Expr
	System *System
}

// Exprs returns the expressions of the result in order. A single expression
// is located at the zero span.
func (r *Result) Exprs() []Located {
	if r.System != nil {
		return r.System.Exprs
	}
	return []Located{{Expr: r.Expr}}
}

// Last returns the expression of a single-expression result or the last
// expression of a system.
func (r *Result) Last() sym.Expr {
	if r.System != nil {
		return r.System.Last().Expr
	}
	return r.Expr
}

func (r *Result) String() string {
	if r.System != nil {
		return r.System.String()
	}
	return r.Expr.String()
}
