package sym

import (
	"math/big"
	"strconv"
)

// Apply returns the application of the named function to args. A few
// functions are evaluated on numeric arguments: exp and log of inexact
// numbers, factorial, binomial, Abs, and Mod of integers. log with two
// arguments is the logarithm of the first in the base of the second.
func Apply(name string, args ...Expr) Expr {
	switch name {
	case "exp":
		if len(args) == 1 {
			if n, ok := args[0].(*Number); ok {
				if n.isZero() {
					return one
				}
				if r, ok := evalInexact(name, n); ok {
					return r
				}
			}
		}
	case "log":
		switch len(args) {
		case 1:
			if n, ok := args[0].(*Number); ok {
				if n.isOne() {
					return zero
				}
				if r, ok := evalInexact(name, n); ok {
					return r
				}
			}
			if args[0] == E {
				return one
			}
		case 2:
			return Div(Apply(name, args[0]), Apply(name, args[1]))
		}
	case "factorial":
		if len(args) == 1 {
			if n, ok := args[0].(*Number); ok && !n.inexact {
				if k, ok := n.Int64(); ok && k >= 0 && k <= maxExp {
					return Rat(new(big.Rat).SetInt(new(big.Int).MulRange(1, k)))
				}
			}
		}
	case "binomial":
		if len(args) == 2 {
			n, nok := args[0].(*Number)
			k, kok := args[1].(*Number)
			if nok && kok && !n.inexact && !k.inexact {
				a, aok := n.Int64()
				b, bok := k.Int64()
				if aok && bok && a >= 0 && b >= 0 && a <= maxExp {
					if b > a {
						return zero
					}
					return Rat(new(big.Rat).SetInt(new(big.Int).Binomial(a, b)))
				}
			}
		}
	case "Abs":
		if len(args) == 1 {
			switch v := args[0].(type) {
			case *Number:
				return &Number{r: new(big.Rat).Abs(v.r), inexact: v.inexact}
			case *Symbol:
				if v.Is("positive") || v.Is("nonnegative") {
					return v
				}
			}
		}
	case "Mod":
		if len(args) == 2 {
			a, aok := args[0].(*Number)
			b, bok := args[1].(*Number)
			if aok && bok && a.IsInt() && b.IsInt() && !b.isZero() {
				x, y := a.r.Num(), b.r.Num()
				r := new(big.Int).Mod(x, y)
				if y.Sign() < 0 && r.Sign() != 0 {
					r.Add(r, y)
				}
				return &Number{r: new(big.Rat).SetInt(r), inexact: a.inexact || b.inexact}
			}
		}
	}
	return &Func{Name: name, Args: args}
}

// Derivative is an unevaluated derivative of Expr with respect to Var.
type Derivative struct {
	Expr, Var Expr
	Order     int
}

// NewDerivative returns the order-th derivative of e with respect to v.
func NewDerivative(e, v Expr, order int) *Derivative {
	return &Derivative{Expr: e, Var: v, Order: order}
}

func (d *Derivative) String() string {
	if d.Order == 1 {
		return "Derivative(" + d.Expr.String() + ", " + d.Var.String() + ")"
	}
	return "Derivative(" + d.Expr.String() + ", (" + d.Var.String() + ", " + strconv.Itoa(d.Order) + "))"
}

func (d *Derivative) prec() int { return precAtom }

// Integral is an unevaluated integral. Lower and Upper are nil for an
// indefinite integral.
type Integral struct {
	Expr, Var    Expr
	Lower, Upper Expr
}

// NewIntegral returns the integral of e over v. lower and upper may be nil.
func NewIntegral(e, v, lower, upper Expr) *Integral {
	return &Integral{Expr: e, Var: v, Lower: lower, Upper: upper}
}

func (n *Integral) String() string {
	return "Integral(" + n.Expr.String() + ", " + limits(n.Var, n.Lower, n.Upper) + ")"
}

func (n *Integral) prec() int { return precAtom }

// Summation is an unevaluated sum of Expr as Var runs from Lower to Upper.
type Summation struct {
	Expr, Var    Expr
	Lower, Upper Expr
}

// NewSum returns the sum of e for v from lower to upper.
func NewSum(e, v, lower, upper Expr) *Summation {
	return &Summation{Expr: e, Var: v, Lower: lower, Upper: upper}
}

func (s *Summation) String() string {
	return "Sum(" + s.Expr.String() + ", " + limits(s.Var, s.Lower, s.Upper) + ")"
}

func (s *Summation) prec() int { return precAtom }

// Product is an unevaluated product of Expr as Var runs from Lower to Upper.
type Product struct {
	Expr, Var    Expr
	Lower, Upper Expr
}

// NewProduct returns the product of e for v from lower to upper.
func NewProduct(e, v, lower, upper Expr) *Product {
	return &Product{Expr: e, Var: v, Lower: lower, Upper: upper}
}

func (p *Product) String() string {
	return "Product(" + p.Expr.String() + ", " + limits(p.Var, p.Lower, p.Upper) + ")"
}

func (p *Product) prec() int { return precAtom }

// Limit is an unevaluated limit of Expr as Var approaches Point.
type Limit struct {
	Expr, Var, Point Expr
}

// NewLimit returns the limit of e as v approaches p.
func NewLimit(e, v, p Expr) *Limit {
	return &Limit{Expr: e, Var: v, Point: p}
}

func (l *Limit) String() string {
	return "Limit(" + l.Expr.String() + ", " + l.Var.String() + ", " + l.Point.String() + ")"
}

func (l *Limit) prec() int { return precAtom }

func limits(v, lo, hi Expr) string {
	if lo == nil || hi == nil {
		return v.String()
	}
	return "(" + v.String() + ", " + lo.String() + ", " + hi.String() + ")"
}
