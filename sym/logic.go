package sym

import "strings"

// LogicOp is a propositional connective.
type LogicOp int8

const (
	And LogicOp = iota
	Or
	Xor
	Nand
	Nor
	Xnor
	Not
	Implies
	Equivalent
)

var logicops = [...]string{
	And: "And", Or: "Or", Xor: "Xor", Nand: "Nand", Nor: "Nor", Xnor: "Xnor",
	Not: "Not", Implies: "Implies", Equivalent: "Equivalent",
}

func (op LogicOp) String() string { return logicops[op] }

// Logic is an unevaluated propositional formula. Not has one argument and
// Implies has two; the other connectives take any number of arguments.
type Logic struct {
	Op   LogicOp
	Args []Expr
}

// LogicOf applies a connective. Nested conjunctions and disjunctions are
// flattened and absorb truth values. Double negations cancel. The result is
// a Bool when every argument is one.
func LogicOf(op LogicOp, args ...Expr) Expr {
	if op == And || op == Or {
		// absorb is the value that decides the connective alone.
		absorb := Bool(op == Or)
		flat := make([]Expr, 0, len(args))
		for _, a := range args {
			switch a := a.(type) {
			case Bool:
				if a == absorb {
					return absorb
				}
				continue
			case *Logic:
				if a.Op == op {
					flat = append(flat, a.Args...)
					continue
				}
			}
			flat = append(flat, a)
		}
		if len(flat) == 0 {
			return !absorb
		}
		args = flat
	}
	if op == Not {
		if l, ok := args[0].(*Logic); ok && l.Op == Not {
			return l.Args[0]
		}
	}
	if len(args) == 1 {
		switch op {
		case And, Or, Xor:
			return args[0]
		}
	}
	vals := make([]bool, len(args))
	for i, a := range args {
		b, ok := a.(Bool)
		if !ok {
			return &Logic{Op: op, Args: args}
		}
		vals[i] = bool(b)
	}
	return Bool(truth(op, vals))
}

// truth evaluates a connective on truth values.
func truth(op LogicOp, v []bool) bool {
	count := 0
	for _, b := range v {
		if b {
			count++
		}
	}
	switch op {
	case And:
		return count == len(v)
	case Or:
		return count > 0
	case Xor:
		return count%2 == 1
	case Nand:
		return count != len(v)
	case Nor:
		return count == 0
	case Xnor:
		return count%2 == 0
	case Not:
		return !v[0]
	case Implies:
		return !v[0] || v[1]
	case Equivalent:
		return count == 0 || count == len(v)
	}
	panic("sym: invalid connective")
}

func (l *Logic) String() string {
	var b strings.Builder
	b.WriteString(l.Op.String())
	b.WriteByte('(')
	for i, a := range l.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (l *Logic) prec() int { return precAtom }
