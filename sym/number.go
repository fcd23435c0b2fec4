package sym

import (
	"math/big"
	"strings"

	"github.com/zephyrtronium/bigfloat"
)

// Number is a rational number. A number is inexact if it came from a decimal
// literal or from arithmetic involving an inexact number; inexact numbers
// format as decimals and may be evaluated through floating-point functions.
type Number struct {
	r       *big.Rat
	inexact bool
}

// FloatPrec is the precision in bits of floating-point evaluation of inexact
// numbers.
const FloatPrec = 113

var (
	zero   = Int(0)
	one    = Int(1)
	negOne = Int(-1)

	bigOne = big.NewInt(1)
)

// Int returns an exact integer.
func Int(n int64) *Number {
	return &Number{r: big.NewRat(n, 1)}
}

// Frac returns the exact fraction a/b. Panics if b is zero.
func Frac(a, b int64) *Number {
	return &Number{r: big.NewRat(a, b)}
}

// Rat returns an exact number with the value of r.
func Rat(r *big.Rat) *Number {
	return &Number{r: new(big.Rat).Set(r)}
}

// Float returns an inexact number with the value of r.
func Float(r *big.Rat) *Number {
	return &Number{r: new(big.Rat).Set(r), inexact: true}
}

// ParseNumber parses a decimal literal such as "12" or "3.25". Literals with
// a decimal point are inexact.
func ParseNumber(s string) (*Number, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return &Number{r: r, inexact: strings.ContainsRune(s, '.')}, true
}

// ParseInt parses the digits of an integer in the given base.
func ParseInt(digits string, base int) (*Number, bool) {
	z, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, false
	}
	return &Number{r: new(big.Rat).SetInt(z)}, true
}

// BigRat returns a copy of the number's value.
func (n *Number) BigRat() *big.Rat { return new(big.Rat).Set(n.r) }

// Inexact reports whether the number is inexact.
func (n *Number) Inexact() bool { return n.inexact }

// Sign returns -1, 0, or +1 according to the sign of n.
func (n *Number) Sign() int { return n.r.Sign() }

// IsInt reports whether n is an integer.
func (n *Number) IsInt() bool { return n.r.IsInt() }

// Int64 returns n as an int64 if it is an integer that fits.
func (n *Number) Int64() (int64, bool) {
	if !n.r.IsInt() || !n.r.Num().IsInt64() {
		return 0, false
	}
	return n.r.Num().Int64(), true
}

func (n *Number) isOne() bool  { return n.r.Cmp(one.r) == 0 }
func (n *Number) isZero() bool { return n.r.Sign() == 0 }

func (n *Number) String() string {
	if !n.inexact {
		return n.r.RatString()
	}
	if n.r.IsInt() {
		return n.r.Num().String() + ".0"
	}
	f := new(big.Float).SetPrec(64).SetRat(n.r)
	return f.Text('g', 15)
}

func (n *Number) prec() int {
	switch {
	case n.r.Sign() < 0:
		return precAdd
	case !n.inexact && !n.r.IsInt():
		return precMul
	}
	return precAtom
}

func addNum(a, b *Number) *Number {
	return &Number{r: new(big.Rat).Add(a.r, b.r), inexact: a.inexact || b.inexact}
}

func mulNum(a, b *Number) *Number {
	return &Number{r: new(big.Rat).Mul(a.r, b.r), inexact: a.inexact || b.inexact}
}

// maxExp bounds integer exponents evaluated exactly.
const maxExp = 1 << 12

// powNum evaluates b^e when the result is representable. The second result is
// false if the power must remain unevaluated.
func powNum(b, e *Number) (*Number, bool) {
	inexact := b.inexact || e.inexact
	if e.r.IsInt() {
		k, ok := e.Int64()
		if !ok || k > maxExp || k < -maxExp {
			return nil, false
		}
		if b.isZero() && k < 0 {
			return nil, false
		}
		neg := k < 0
		if neg {
			k = -k
		}
		num := new(big.Int).Exp(b.r.Num(), big.NewInt(k), nil)
		den := new(big.Int).Exp(b.r.Denom(), big.NewInt(k), nil)
		r := new(big.Rat).SetFrac(num, den)
		if neg {
			r.Inv(r)
		}
		return &Number{r: r, inexact: inexact}, true
	}
	if b.Sign() < 0 {
		return nil, false
	}
	if !inexact {
		// Only exact square roots of perfect squares are evaluated.
		if e.r.Denom().Cmp(big.NewInt(2)) != 0 {
			return nil, false
		}
		rn, okn := isqrt(b.r.Num())
		rd, okd := isqrt(b.r.Denom())
		if !okn || !okd {
			return nil, false
		}
		root := &Number{r: new(big.Rat).SetFrac(rn, rd)}
		return powNum(root, &Number{r: new(big.Rat).SetInt(e.r.Num())})
	}
	x := new(big.Float).SetPrec(FloatPrec).SetRat(b.r)
	y := new(big.Float).SetPrec(FloatPrec).SetRat(e.r)
	z := bigfloat.Pow(new(big.Float).SetPrec(FloatPrec), x, y)
	return fromFloat(z)
}

func isqrt(x *big.Int) (*big.Int, bool) {
	r := new(big.Int).Sqrt(x)
	return r, new(big.Int).Mul(r, r).Cmp(x) == 0
}

func fromFloat(f *big.Float) (*Number, bool) {
	if f.IsInf() {
		return nil, false
	}
	r, _ := f.Rat(nil)
	return &Number{r: r, inexact: true}, true
}

// evalInexact evaluates exp and ln of an inexact number.
func evalInexact(name string, n *Number) (*Number, bool) {
	if !n.inexact {
		return nil, false
	}
	x := new(big.Float).SetPrec(FloatPrec).SetRat(n.r)
	z := new(big.Float).SetPrec(FloatPrec)
	switch name {
	case "exp":
		return fromFloat(bigfloat.Exp(z, x))
	case "log":
		if n.Sign() <= 0 {
			return nil, false
		}
		return fromFloat(bigfloat.Log(z, x))
	}
	return nil, false
}
