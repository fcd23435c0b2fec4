package sym

import (
	"math/big"
	"sort"
)

// BaseDim indexes the seven SI base dimensions.
type BaseDim int

const (
	Length BaseDim = iota
	Mass
	Time
	Current
	Temperature
	Amount
	Luminosity

	numDims
)

// Dimension is a vector of rational exponents over the base dimensions. Nil
// entries are zero. Dimensions are never modified after construction.
type Dimension [numDims]*big.Rat

func dim(pairs ...int64) Dimension {
	var d Dimension
	for i := 0; i+1 < len(pairs); i += 2 {
		d[pairs[i]] = big.NewRat(pairs[i+1], 1)
	}
	return d
}

func (d Dimension) at(k BaseDim) *big.Rat {
	if d[k] == nil {
		return new(big.Rat)
	}
	return d[k]
}

// IsZero reports whether d is dimensionless.
func (d Dimension) IsZero() bool {
	for _, x := range d {
		if x != nil && x.Sign() != 0 {
			return false
		}
	}
	return true
}

// addScaled returns d + k*e.
func (d Dimension) addScaled(e Dimension, k *big.Rat) Dimension {
	var r Dimension
	for i := range r {
		x := new(big.Rat).Mul(e.at(BaseDim(i)), k)
		r[i] = x.Add(x, d.at(BaseDim(i)))
	}
	return r
}

// Unit is a physical unit: a named quantity with a dimension and a scale
// factor relative to the coherent SI unit of that dimension.
type Unit struct {
	Name    string
	Abbrev  string
	Aliases []string
	Dim     Dimension
	Scale   *big.Rat
	// Prefixed is set for units formed with a metric prefix, e.g. km.
	Prefixed bool
}

// Quantity is a unit appearing in an expression.
type Quantity struct {
	Unit *Unit
}

// NewQuantity returns the quantity for u.
func NewQuantity(u *Unit) *Quantity { return &Quantity{Unit: u} }

func (q *Quantity) String() string { return q.Unit.Abbrev }
func (q *Quantity) prec() int      { return precAtom }

// UnitSystem is a set of base units and named units derived from them.
type UnitSystem struct {
	Name  string
	base  []*Unit
	named []*Unit
	dims  [numDims]bool
}

// BaseUnits returns the system's base units.
func (s *UnitSystem) BaseUnits() []*Unit { return s.base }

// NamedUnits returns the system's non-prefixed named derived units in
// preference order.
func (s *UnitSystem) NamedUnits() []*Unit { return s.named }

// Covers reports whether u's dimension lies entirely within the dimensions of
// the system's base units.
func (s *UnitSystem) Covers(u *Unit) bool {
	for i, x := range u.Dim {
		if x != nil && x.Sign() != 0 && !s.dims[i] {
			return false
		}
	}
	return true
}

// Registry maps unit names and aliases to units and holds the known unit
// systems. A registry is immutable once built.
type Registry struct {
	units   []*Unit
	byAlias map[string]*Unit
	systems map[string]*UnitSystem
}

// Lookup returns the unit with the given name, abbreviation, or alias.
func (r *Registry) Lookup(name string) (*Unit, bool) {
	u, ok := r.byAlias[name]
	return u, ok
}

// System returns the named unit system.
func (r *Registry) System(name string) (*UnitSystem, bool) {
	s, ok := r.systems[name]
	return s, ok
}

// Systems returns the names of the known unit systems in sorted order.
func (r *Registry) Systems() []string {
	s := make([]string, 0, len(r.systems))
	for k := range r.systems {
		s = append(s, k)
	}
	sort.Strings(s)
	return s
}

// Units returns all registered units in registration order.
func (r *Registry) Units() []*Unit { return r.units }

func (r *Registry) add(u *Unit) *Unit {
	r.units = append(r.units, u)
	for _, a := range append([]string{u.Name, u.Abbrev}, u.Aliases...) {
		if _, ok := r.byAlias[a]; !ok {
			r.byAlias[a] = u
		}
	}
	return u
}

func (r *Registry) system(name string, base []*Unit, named []*Unit) {
	s := &UnitSystem{Name: name, base: base, named: named}
	for _, u := range base {
		for i, x := range u.Dim {
			if x != nil && x.Sign() != 0 {
				s.dims[i] = true
			}
		}
	}
	r.systems[name] = s
}
