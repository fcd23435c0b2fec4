package sym

import (
	"sort"
	"strconv"
	"strings"
)

// Expr is an expression node. The concrete types in this package are the
// only implementations.
type Expr interface {
	String() string
	// prec is the binding strength of the node's top-level operator, used to
	// decide where parentheses are needed when formatting.
	prec() int
}

const (
	precRel = iota
	precAdd
	precMul
	precPow
	precAtom
)

// Symbol is a named variable carrying a set of assumptions, e.g. "real" or
// "positive". Two symbols are equal only if both their names and their
// assumptions are equal.
type Symbol struct {
	Name        string
	Assumptions []string
}

// NewSymbol creates a symbol. The assumptions are sorted and deduplicated.
func NewSymbol(name string, assumptions ...string) *Symbol {
	var a []string
	if len(assumptions) > 0 {
		a = append(a, assumptions...)
		sort.Strings(a)
		k := 0
		for i, s := range a {
			if i > 0 && s == a[k-1] {
				continue
			}
			a[k] = s
			k++
		}
		a = a[:k]
	}
	return &Symbol{Name: name, Assumptions: a}
}

// Is reports whether the symbol carries the given assumption.
func (s *Symbol) Is(assumption string) bool {
	k := sort.SearchStrings(s.Assumptions, assumption)
	return k < len(s.Assumptions) && s.Assumptions[k] == assumption
}

func (s *Symbol) String() string { return s.Name }
func (s *Symbol) prec() int      { return precAtom }

// Constant is a named mathematical constant.
type Constant struct {
	Name string
}

var (
	Pi       = &Constant{Name: "pi"}
	E        = &Constant{Name: "E"}
	I        = &Constant{Name: "I"}
	Infinity = &Constant{Name: "oo"}
)

func (c *Constant) String() string { return c.Name }
func (c *Constant) prec() int      { return precAtom }

// Placeholder stands in for a missing side of a relation. Placeholders with
// the same index are equal, so indices must be unique within one compile.
type Placeholder struct {
	N int
}

// NewPlaceholder creates a placeholder with index n.
func NewPlaceholder(n int) *Placeholder { return &Placeholder{N: n} }

func (p *Placeholder) String() string { return "_" + strconv.Itoa(p.N) }
func (p *Placeholder) prec() int      { return precAtom }

// Bool is the result of evaluating a decidable relation.
type Bool bool

const (
	True  Bool = true
	False Bool = false
)

func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

func (b Bool) prec() int { return precAtom }

// Func is an application of a named function to arguments. Functions are
// opaque: sym only evaluates a few of them on numeric arguments.
type Func struct {
	Name string
	Args []Expr
}

func (f *Func) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	b.WriteByte('(')
	for i, a := range f.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (f *Func) prec() int { return precAtom }

// paren formats e, wrapping it in parentheses if it binds less tightly than p.
func paren(e Expr, p int) string {
	if e.prec() < p {
		return "(" + e.String() + ")"
	}
	return e.String()
}
