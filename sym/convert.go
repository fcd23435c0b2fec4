package sym

import "math/big"

// UnitPower is a unit raised to a numeric exponent within a term.
type UnitPower struct {
	Unit *Unit
	Exp  *Number
}

// UnitPowers splits a term into its non-unit factors and its unit factors.
// The last result is false if a unit appears other than as a quantity raised
// to a numeric power, e.g. inside a function or with a symbolic exponent.
func UnitPowers(term Expr) (rest []Expr, units []UnitPower, ok bool) {
	factors := []Expr{term}
	if m, isMul := term.(*Mul); isMul {
		factors = m.Factors
	}
	for _, f := range factors {
		b, e := AsBaseExp(f)
		q, isQ := b.(*Quantity)
		if !isQ {
			if HasQuantity(f) {
				return nil, nil, false
			}
			rest = append(rest, f)
			continue
		}
		n, isNum := e.(*Number)
		if !isNum {
			return nil, nil, false
		}
		units = append(units, UnitPower{Unit: q.Unit, Exp: n})
	}
	return rest, units, true
}

// HasQuantity reports whether e contains a unit quantity.
func HasQuantity(e Expr) bool {
	return Has(e, func(x Expr) bool {
		_, ok := x.(*Quantity)
		return ok
	})
}

// ConvertTo re-expresses e in terms of powers of the target units. Sums
// convert term by term, matrices entry by entry, relations side by side, and
// formulas operand by operand. A term whose dimension is not exactly a
// product of powers of the targets is left unchanged.
func ConvertTo(e Expr, targets []*Unit) Expr {
	switch v := e.(type) {
	case *Add:
		ts := make([]Expr, len(v.Terms))
		for i, t := range v.Terms {
			ts[i] = ConvertTo(t, targets)
		}
		return AddOf(ts...)
	case *Matrix:
		return v.Map(func(x Expr) Expr { return ConvertTo(x, targets) })
	case *Relation:
		return Rel(v.Op, ConvertTo(v.LHS, targets), ConvertTo(v.RHS, targets))
	case *Logic:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = ConvertTo(a, targets)
		}
		return LogicOf(v.Op, args...)
	}
	if r, ok := ConvertTerm(e, targets); ok {
		return r
	}
	return e
}

// ConvertTerm re-expresses a single term in the target units. The second
// result is false if the term has no units or cannot be expressed in the
// targets.
func ConvertTerm(term Expr, targets []*Unit) (Expr, bool) {
	rest, ups, ok := UnitPowers(term)
	if !ok || len(ups) == 0 {
		return nil, false
	}
	var d Dimension
	out := rest
	for _, up := range ups {
		d = d.addScaled(up.Unit.Dim, up.Exp.r)
		out = append(out, PowOf(Rat(up.Unit.Scale), up.Exp))
	}
	x, ok := solveDims(d, targets)
	if !ok {
		return nil, false
	}
	for j, t := range targets {
		if x[j].Sign() == 0 {
			continue
		}
		xe := Rat(x[j])
		out = append(out, PowOf(Rat(t.Scale), Neg(xe)), PowOf(NewQuantity(t), xe))
	}
	return MulOf(out...), true
}

// solveDims finds exponents x such that the product of targets[j]^x[j] has
// dimension d, by Gauss-Jordan elimination over the rationals. Free exponents
// are zero. The second result is false if no exact solution exists.
func solveDims(d Dimension, targets []*Unit) ([]*big.Rat, bool) {
	n := len(targets)
	a := make([][]*big.Rat, numDims)
	for i := range a {
		a[i] = make([]*big.Rat, n+1)
		for j, t := range targets {
			a[i][j] = new(big.Rat).Set(t.Dim.at(BaseDim(i)))
		}
		a[i][n] = new(big.Rat).Set(d.at(BaseDim(i)))
	}
	var pivots []int
	row := 0
	for col := 0; col < n && row < len(a); col++ {
		p := -1
		for i := row; i < len(a); i++ {
			if a[i][col].Sign() != 0 {
				p = i
				break
			}
		}
		if p < 0 {
			continue
		}
		a[row], a[p] = a[p], a[row]
		inv := new(big.Rat).Inv(a[row][col])
		for j := col; j <= n; j++ {
			a[row][j].Mul(a[row][j], inv)
		}
		for i := range a {
			if i == row || a[i][col].Sign() == 0 {
				continue
			}
			f := new(big.Rat).Set(a[i][col])
			for j := col; j <= n; j++ {
				a[i][j].Sub(a[i][j], new(big.Rat).Mul(f, a[row][j]))
			}
		}
		pivots = append(pivots, col)
		row++
	}
	for i := row; i < len(a); i++ {
		if a[i][n].Sign() != 0 {
			return nil, false
		}
	}
	x := make([]*big.Rat, n)
	for j := range x {
		x[j] = new(big.Rat)
	}
	for i, col := range pivots {
		x[col].Set(a[i][n])
	}
	return x, true
}
