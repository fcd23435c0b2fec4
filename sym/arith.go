package sym

import (
	"math/big"
	"sort"
	"strings"
)

// Add is a sum of two or more terms in canonical order.
type Add struct {
	Terms []Expr
}

// Mul is a product of two or more factors. A numeric coefficient, if any, is
// the first factor.
type Mul struct {
	Factors []Expr
}

// Pow is a power.
type Pow struct {
	Base, Exp Expr
}

// AddOf returns the sum of terms. Nested sums are flattened, numbers are
// folded, and terms differing only by a numeric coefficient are combined.
// Matrices of equal shape add elementwise.
func AddOf(terms ...Expr) Expr {
	var flat []Expr
	for _, t := range terms {
		if a, ok := t.(*Add); ok {
			flat = append(flat, a.Terms...)
			continue
		}
		flat = append(flat, t)
	}
	if m, ok := addMatrices(flat); ok {
		return m
	}
	type term struct {
		coef *Number
		rest Expr
	}
	sum := zero
	var ts []term
	for _, t := range flat {
		if n, ok := t.(*Number); ok {
			sum = addNum(sum, n)
			continue
		}
		c, r := splitCoef(t)
		found := false
		for i := range ts {
			if Equal(ts[i].rest, r) {
				ts[i].coef = addNum(ts[i].coef, c)
				found = true
				break
			}
		}
		if !found {
			ts = append(ts, term{coef: c, rest: r})
		}
	}
	out := make([]Expr, 0, len(ts)+1)
	keys := make(map[Expr]string, len(ts))
	for _, t := range ts {
		if t.coef.isZero() {
			continue
		}
		e := withCoef(t.coef, t.rest)
		keys[e] = t.rest.String()
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return keys[out[i]] < keys[out[j]] })
	if len(out) == 0 {
		return sum
	}
	if !sum.isZero() {
		out = append(out, sum)
	}
	if len(out) == 1 {
		return out[0]
	}
	return &Add{Terms: out}
}

// splitCoef separates the numeric coefficient of a term.
func splitCoef(t Expr) (*Number, Expr) {
	m, ok := t.(*Mul)
	if !ok {
		return one, t
	}
	c, ok := m.Factors[0].(*Number)
	if !ok {
		return one, t
	}
	if len(m.Factors) == 2 {
		return c, m.Factors[1]
	}
	return c, &Mul{Factors: m.Factors[1:]}
}

func withCoef(c *Number, rest Expr) Expr {
	if c.isOne() && !c.inexact {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		f := make([]Expr, 0, len(m.Factors)+1)
		f = append(f, c)
		return &Mul{Factors: append(f, m.Factors...)}
	}
	return &Mul{Factors: []Expr{c, rest}}
}

// MulOf returns the product of factors. Nested products are flattened,
// numbers are folded, and powers of equal bases are combined. Scalars scale
// matrices, and adjacent matrices of compatible shape are multiplied.
func MulOf(factors ...Expr) Expr {
	var flat []Expr
	for _, f := range factors {
		if m, ok := f.(*Mul); ok {
			flat = append(flat, m.Factors...)
			continue
		}
		flat = append(flat, f)
	}
	if m, ok := mulMatrices(flat); ok {
		return m
	}
	type power struct {
		base, exp Expr
	}
	coef := one
	var ps []power
	for _, f := range flat {
		if n, ok := f.(*Number); ok {
			coef = mulNum(coef, n)
			continue
		}
		b, e := AsBaseExp(f)
		found := false
		for i := range ps {
			if Equal(ps[i].base, b) {
				ps[i].exp = AddOf(ps[i].exp, e)
				found = true
				break
			}
		}
		if !found {
			ps = append(ps, power{base: b, exp: e})
		}
	}
	if coef.isZero() {
		return coef
	}
	pows := make([]Expr, 0, len(ps))
	for _, p := range ps {
		pows = append(pows, PowOf(p.base, p.exp))
	}
	for _, v := range pows {
		if _, ok := v.(*Mul); ok {
			// Combining exponents turned a power of a product back into a
			// product, so its factors need another pass.
			return MulOf(append([]Expr{coef}, pows...)...)
		}
	}
	out := make([]Expr, 0, len(pows)+1)
	for _, v := range pows {
		if n, ok := v.(*Number); ok {
			coef = mulNum(coef, n)
			continue
		}
		out = append(out, v)
	}
	if coef.isZero() {
		return coef
	}
	sort.SliceStable(out, func(i, j int) bool { return factorKey(out[i]) < factorKey(out[j]) })
	if !coef.isOne() || coef.inexact {
		out = append([]Expr{coef}, out...)
	}
	switch len(out) {
	case 0:
		return coef
	case 1:
		return out[0]
	}
	return &Mul{Factors: out}
}

func factorKey(f Expr) string {
	b, e := AsBaseExp(f)
	return b.String() + "^" + e.String()
}

// AsBaseExp returns the base and exponent of e, treating a non-power as its
// own base with exponent 1.
func AsBaseExp(e Expr) (base, exp Expr) {
	if p, ok := e.(*Pow); ok {
		return p.Base, p.Exp
	}
	return e, one
}

// PowOf returns b^e. Numeric powers are evaluated where exact, integer powers
// distribute over products and compose with powers, and integer powers of
// square matrices are evaluated.
func PowOf(b, e Expr) Expr {
	if en, ok := e.(*Number); ok {
		if en.isZero() {
			return one
		}
		if en.isOne() && !en.inexact {
			return b
		}
		switch bv := b.(type) {
		case *Number:
			if r, ok := powNum(bv, en); ok {
				return r
			}
		case *Constant:
			if bv == I && en.IsInt() {
				k, _ := en.Int64()
				switch (k%4 + 4) % 4 {
				case 0:
					return one
				case 1:
					return I
				case 2:
					return negOne
				case 3:
					return &Mul{Factors: []Expr{negOne, I}}
				}
			}
		case *Pow:
			if en.IsInt() {
				return PowOf(bv.Base, MulOf(bv.Exp, en))
			}
		case *Mul:
			if en.IsInt() {
				fs := make([]Expr, len(bv.Factors))
				for i, f := range bv.Factors {
					fs[i] = PowOf(f, en)
				}
				return MulOf(fs...)
			}
		case *Matrix:
			if k, ok := en.Int64(); ok && k > 1 && k <= maxExp {
				if r, ok := matPow(bv, int(k)); ok {
					return r
				}
			}
		}
	}
	if bn, ok := b.(*Number); ok && bn.isOne() && !bn.inexact {
		return one
	}
	return &Pow{Base: b, Exp: e}
}

// Neg returns -x.
func Neg(x Expr) Expr { return MulOf(negOne, x) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return AddOf(a, Neg(b)) }

// Div returns a / b.
func Div(a, b Expr) Expr { return MulOf(a, PowOf(b, negOne)) }

// Sqrt returns the principal square root of x.
func Sqrt(x Expr) Expr { return PowOf(x, Frac(1, 2)) }

// Root returns the n-th root of x.
func Root(x, n Expr) Expr { return PowOf(x, PowOf(n, negOne)) }

// isNegative reports whether a term formats with a leading minus sign, and
// returns its negation if so.
func isNegative(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Number:
		if v.Sign() < 0 {
			return &Number{r: new(big.Rat).Neg(v.r), inexact: v.inexact}, true
		}
	case *Mul:
		if c, ok := v.Factors[0].(*Number); ok && c.Sign() < 0 {
			return withCoef(&Number{r: new(big.Rat).Neg(c.r), inexact: c.inexact}, restOf(v)), true
		}
	}
	return nil, false
}

func restOf(m *Mul) Expr {
	if len(m.Factors) == 2 {
		return m.Factors[1]
	}
	return &Mul{Factors: m.Factors[1:]}
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.Terms {
		if n, ok := isNegative(t); ok {
			if i == 0 {
				b.WriteString("-")
			} else {
				b.WriteString(" - ")
			}
			b.WriteString(paren(n, precMul))
			continue
		}
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

func (a *Add) prec() int { return precAdd }

func (m *Mul) String() string {
	var num, den []string
	neg := false
	for _, f := range m.Factors {
		if c, ok := f.(*Number); ok {
			abs := c
			if c.Sign() < 0 {
				neg = true
				abs = &Number{r: new(big.Rat).Neg(c.r), inexact: c.inexact}
			}
			switch {
			case !abs.inexact && !abs.r.IsInt():
				if abs.r.Num().Cmp(bigOne) != 0 {
					num = append(num, abs.r.Num().String())
				}
				den = append(den, abs.r.Denom().String())
			case abs.isOne() && !abs.inexact:
			default:
				num = append(num, abs.String())
			}
			continue
		}
		if p, ok := f.(*Pow); ok {
			// A zero base stays a power so that division by zero reads
			// the same with or without other factors.
			if e, ok := p.Exp.(*Number); ok && e.Sign() < 0 && !isZeroNum(p.Base) {
				inv := PowOf(p.Base, &Number{r: new(big.Rat).Neg(e.r), inexact: e.inexact})
				den = append(den, paren(inv, precPow))
				continue
			}
		}
		num = append(num, paren(f, precPow))
	}
	s := strings.Join(num, "*")
	if s == "" {
		s = "1"
	}
	switch len(den) {
	case 0:
	case 1:
		s += "/" + den[0]
	default:
		s += "/(" + strings.Join(den, "*") + ")"
	}
	if neg {
		s = "-" + s
	}
	return s
}

func (m *Mul) prec() int { return precMul }

func isZeroNum(x Expr) bool {
	n, ok := x.(*Number)
	return ok && n.isZero()
}

func (p *Pow) String() string {
	return paren(p.Base, precAtom) + "^" + paren(p.Exp, precAtom)
}

func (p *Pow) prec() int { return precPow }
