package sym

import "sort"

// Equal reports whether a and b are structurally equal. Numbers compare by
// value regardless of exactness; matrix markup is ignored.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && x.r.Cmp(y.r) == 0
	case *Symbol:
		y, ok := b.(*Symbol)
		if !ok || x.Name != y.Name || len(x.Assumptions) != len(y.Assumptions) {
			return false
		}
		for i := range x.Assumptions {
			if x.Assumptions[i] != y.Assumptions[i] {
				return false
			}
		}
		return true
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.Name == y.Name
	case *Placeholder:
		y, ok := b.(*Placeholder)
		return ok && x.N == y.N
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case *Quantity:
		y, ok := b.(*Quantity)
		return ok && x.Unit == y.Unit
	case *Add:
		y, ok := b.(*Add)
		return ok && equalAll(x.Terms, y.Terms)
	case *Mul:
		y, ok := b.(*Mul)
		return ok && equalAll(x.Factors, y.Factors)
	case *Pow:
		y, ok := b.(*Pow)
		return ok && Equal(x.Base, y.Base) && Equal(x.Exp, y.Exp)
	case *Func:
		y, ok := b.(*Func)
		return ok && x.Name == y.Name && equalAll(x.Args, y.Args)
	case *Relation:
		y, ok := b.(*Relation)
		return ok && x.Op == y.Op && Equal(x.LHS, y.LHS) && Equal(x.RHS, y.RHS)
	case *Logic:
		y, ok := b.(*Logic)
		return ok && x.Op == y.Op && equalAll(x.Args, y.Args)
	case *Matrix:
		y, ok := b.(*Matrix)
		if !ok || len(x.Rows) != len(y.Rows) {
			return false
		}
		for i := range x.Rows {
			if !equalAll(x.Rows[i], y.Rows[i]) {
				return false
			}
		}
		return true
	case *Derivative:
		y, ok := b.(*Derivative)
		return ok && x.Order == y.Order && Equal(x.Expr, y.Expr) && Equal(x.Var, y.Var)
	case *Integral:
		y, ok := b.(*Integral)
		return ok && equalAll([]Expr{x.Expr, x.Var, x.Lower, x.Upper}, []Expr{y.Expr, y.Var, y.Lower, y.Upper})
	case *Summation:
		y, ok := b.(*Summation)
		return ok && equalAll([]Expr{x.Expr, x.Var, x.Lower, x.Upper}, []Expr{y.Expr, y.Var, y.Lower, y.Upper})
	case *Product:
		y, ok := b.(*Product)
		return ok && equalAll([]Expr{x.Expr, x.Var, x.Lower, x.Upper}, []Expr{y.Expr, y.Var, y.Lower, y.Upper})
	case *Limit:
		y, ok := b.(*Limit)
		return ok && Equal(x.Expr, y.Expr) && Equal(x.Var, y.Var) && Equal(x.Point, y.Point)
	}
	return false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Children returns the direct subexpressions of e in a fixed order. Optional
// children that are absent are omitted.
func Children(e Expr) []Expr {
	switch x := e.(type) {
	case *Add:
		return x.Terms
	case *Mul:
		return x.Factors
	case *Pow:
		return []Expr{x.Base, x.Exp}
	case *Func:
		return x.Args
	case *Relation:
		return []Expr{x.LHS, x.RHS}
	case *Logic:
		return x.Args
	case *Matrix:
		var c []Expr
		for _, r := range x.Rows {
			c = append(c, r...)
		}
		return c
	case *Derivative:
		return []Expr{x.Expr, x.Var}
	case *Integral:
		return nonNil(x.Expr, x.Var, x.Lower, x.Upper)
	case *Summation:
		return nonNil(x.Expr, x.Var, x.Lower, x.Upper)
	case *Product:
		return nonNil(x.Expr, x.Var, x.Lower, x.Upper)
	case *Limit:
		return []Expr{x.Expr, x.Var, x.Point}
	}
	return nil
}

func nonNil(es ...Expr) []Expr {
	r := es[:0]
	for _, e := range es {
		if e != nil {
			r = append(r, e)
		}
	}
	return r
}

// Has reports whether e or any of its subexpressions satisfies pred.
func Has(e Expr, pred func(Expr) bool) bool {
	if pred(e) {
		return true
	}
	for _, c := range Children(e) {
		if Has(c, pred) {
			return true
		}
	}
	return false
}

// FreeSymbols returns the distinct symbols in e, sorted by name. Variables
// bound by definite integrals, sums, products, and limits are excluded
// within their bodies.
func FreeSymbols(e Expr) []*Symbol {
	var syms []*Symbol
	freeSymbols(e, nil, &syms)
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	return syms
}

func freeSymbols(e Expr, bound []Expr, syms *[]*Symbol) {
	switch x := e.(type) {
	case *Symbol:
		for _, b := range bound {
			if Equal(b, x) {
				return
			}
		}
		for _, s := range *syms {
			if Equal(s, x) {
				return
			}
		}
		*syms = append(*syms, x)
		return
	case *Integral:
		if x.Lower != nil {
			freeSymbols(x.Lower, bound, syms)
			freeSymbols(x.Upper, bound, syms)
			freeSymbols(x.Expr, append(bound[:len(bound):len(bound)], x.Var), syms)
			return
		}
	case *Summation:
		freeBound(x.Expr, x.Var, x.Lower, x.Upper, bound, syms)
		return
	case *Product:
		freeBound(x.Expr, x.Var, x.Lower, x.Upper, bound, syms)
		return
	case *Limit:
		freeSymbols(x.Point, bound, syms)
		freeSymbols(x.Expr, append(bound[:len(bound):len(bound)], x.Var), syms)
		return
	}
	for _, c := range Children(e) {
		freeSymbols(c, bound, syms)
	}
}

func freeBound(body, v, lo, hi Expr, bound []Expr, syms *[]*Symbol) {
	if lo != nil {
		freeSymbols(lo, bound, syms)
	}
	if hi != nil {
		freeSymbols(hi, bound, syms)
	}
	freeSymbols(body, append(bound[:len(bound):len(bound)], v), syms)
}

// Replace rebuilds e bottom-up through the canonicalizing constructors,
// substituting f(x) for each subexpression x for which f reports true.
// Replacement is attempted before descending, and replaced subtrees are not
// visited again.
func Replace(e Expr, f func(Expr) (Expr, bool)) Expr {
	if r, ok := f(e); ok {
		return r
	}
	rep := func(x Expr) Expr {
		if x == nil {
			return nil
		}
		return Replace(x, f)
	}
	switch x := e.(type) {
	case *Add:
		return AddOf(replaceAll(x.Terms, f)...)
	case *Mul:
		return MulOf(replaceAll(x.Factors, f)...)
	case *Pow:
		return PowOf(rep(x.Base), rep(x.Exp))
	case *Func:
		return Apply(x.Name, replaceAll(x.Args, f)...)
	case *Relation:
		return Rel(x.Op, rep(x.LHS), rep(x.RHS))
	case *Logic:
		return LogicOf(x.Op, replaceAll(x.Args, f)...)
	case *Matrix:
		return x.Map(rep)
	case *Derivative:
		return NewDerivative(rep(x.Expr), rep(x.Var), x.Order)
	case *Integral:
		return NewIntegral(rep(x.Expr), rep(x.Var), rep(x.Lower), rep(x.Upper))
	case *Summation:
		return NewSum(rep(x.Expr), rep(x.Var), rep(x.Lower), rep(x.Upper))
	case *Product:
		return NewProduct(rep(x.Expr), rep(x.Var), rep(x.Lower), rep(x.Upper))
	case *Limit:
		return NewLimit(rep(x.Expr), rep(x.Var), rep(x.Point))
	}
	return e
}

func replaceAll(es []Expr, f func(Expr) (Expr, bool)) []Expr {
	r := make([]Expr, len(es))
	for i, e := range es {
		r[i] = Replace(e, f)
	}
	return r
}
