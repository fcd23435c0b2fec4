package sym

// RelOp is a relational operator.
type RelOp int8

const (
	Eq RelOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var relops = [...]string{Eq: "=", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">="}

func (op RelOp) String() string { return relops[op] }

// Relation is an unevaluated relation between two expressions.
type Relation struct {
	Op       RelOp
	LHS, RHS Expr
}

// Rel returns the unevaluated relation l op r.
func Rel(op RelOp, l, r Expr) *Relation {
	return &Relation{Op: op, LHS: l, RHS: r}
}

// Evaluate returns the truth value of l op r when it can be decided from
// numbers or structural equality, and otherwise the unevaluated relation.
func Evaluate(op RelOp, l, r Expr) Expr {
	ln, lok := l.(*Number)
	rn, rok := r.(*Number)
	if lok && rok {
		c := ln.r.Cmp(rn.r)
		var b bool
		switch op {
		case Eq:
			b = c == 0
		case Ne:
			b = c != 0
		case Lt:
			b = c < 0
		case Le:
			b = c <= 0
		case Gt:
			b = c > 0
		case Ge:
			b = c >= 0
		}
		return Bool(b)
	}
	if Equal(l, r) {
		switch op {
		case Eq, Le, Ge:
			return True
		case Ne, Lt, Gt:
			return False
		}
	}
	return Rel(op, l, r)
}

func (r *Relation) String() string {
	return r.LHS.String() + " " + r.Op.String() + " " + r.RHS.String()
}

func (r *Relation) prec() int { return precRel }
