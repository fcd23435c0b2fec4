package latexpr

import (
	"math/big"
	"regexp"
	"strconv"

	"github.com/zephyrtronium/latexpr/sym"
)

// unknownUnitError is returned by lookupUnit for names that are not units.
// Callers treat it as "leave the name alone".
type unknownUnitError struct {
	name string
}

func (err *unknownUnitError) Error() string {
	return "unknown unit " + strconv.Quote(err.name)
}

// formatRE matches unit names wrapped in a formatting macro, like
// \mathrm{kg}.
var formatRE = regexp.MustCompile(`^\\(?:mathrm|text|textrm|operatorname|mathit|mathsf)\{\s*([^{}]*?)\s*\}$`)

// lookupUnit finds the unit a name denotes.
func lookupUnit(reg *sym.Registry, name string) (*sym.Unit, error) {
	if m := formatRE.FindStringSubmatch(name); m != nil {
		name = m[1]
	}
	if u, ok := reg.Lookup(name); ok {
		return u, nil
	}
	return nil, &unknownUnitError{name}
}

// SubstituteUnits replaces each free symbol of e whose name is a unit with
// that unit, unless the symbol is excluded or the unit has dimensions
// outside the system.
func SubstituteUnits(e sym.Expr, excluded []string, system *sym.UnitSystem) sym.Expr {
	skip := make(map[string]bool, len(excluded))
	for _, x := range excluded {
		skip[x] = true
	}
	reg := sym.DefaultRegistry()
	subs := make(map[string]*sym.Quantity)
	for _, s := range sym.FreeSymbols(e) {
		if skip[s.Name] {
			continue
		}
		u, err := lookupUnit(reg, s.Name)
		if err != nil || !system.Covers(u) {
			continue
		}
		subs[s.Name] = sym.NewQuantity(u)
	}
	if len(subs) == 0 {
		return e
	}
	return sym.Replace(e, func(x sym.Expr) (sym.Expr, bool) {
		s, ok := x.(*sym.Symbol)
		if !ok {
			return nil, false
		}
		q, ok := subs[s.Name]
		return q, ok
	})
}

// AutoConvert re-expresses the units of each term of e in the form with the
// lowest complexity. The candidates are the system's base units, then each
// named unit of the system alone. A candidate replaces the current form
// only if it is strictly less complex. Matrices convert element-wise and
// formulas operand by operand, with relations in formulas converted side by
// side. Relations alone are returned unchanged.
func AutoConvert(e sym.Expr, system *sym.UnitSystem) sym.Expr {
	switch x := e.(type) {
	case *sym.Matrix:
		return x.Map(func(y sym.Expr) sym.Expr { return AutoConvert(y, system) })
	case *sym.Relation:
		return e
	case *sym.Logic:
		args := make([]sym.Expr, len(x.Args))
		for i, a := range x.Args {
			if rel, ok := a.(*sym.Relation); ok {
				args[i] = sym.Rel(rel.Op, AutoConvert(rel.LHS, system), AutoConvert(rel.RHS, system))
				continue
			}
			args[i] = AutoConvert(a, system)
		}
		return sym.LogicOf(x.Op, args...)
	case *sym.Add:
		ts := make([]sym.Expr, len(x.Terms))
		for i, t := range x.Terms {
			ts[i] = convertTerm(t, system)
		}
		return sym.AddOf(ts...)
	}
	return convertTerm(e, system)
}

func convertTerm(term sym.Expr, system *sym.UnitSystem) sym.Expr {
	score, ok := complexity(term)
	if !ok || score.Sign() == 0 {
		return term
	}
	candidates := make([][]*sym.Unit, 0, len(system.NamedUnits())+1)
	candidates = append(candidates, system.BaseUnits())
	for _, u := range system.NamedUnits() {
		candidates = append(candidates, []*sym.Unit{u})
	}
	best := term
	for _, c := range candidates {
		r, ok := sym.ConvertTerm(term, c)
		if !ok {
			continue
		}
		s, ok := complexity(r)
		if ok && s.Cmp(score) < 0 {
			best, score = r, s
		}
	}
	return best
}

// complexity is the sum of the magnitudes of the exponents of the units of
// a term, with exponents strictly between -1 and 1 inverted so that roots
// count by their order. The second result is false if the units of the term
// cannot be separated.
func complexity(term sym.Expr) (*big.Rat, bool) {
	_, ups, ok := sym.UnitPowers(term)
	if !ok {
		return nil, false
	}
	r := new(big.Rat)
	one := big.NewRat(1, 1)
	for _, up := range ups {
		x := up.Exp.BigRat()
		x.Abs(x)
		if x.Sign() != 0 && x.Cmp(one) < 0 {
			x.Inv(x)
		}
		r.Add(r, x)
	}
	return r, true
}

// ConvertUnits re-expresses e in powers of the named units. Names that are
// not units are ignored.
func ConvertUnits(e sym.Expr, targets []string) sym.Expr {
	reg := sym.DefaultRegistry()
	us := make([]*sym.Unit, 0, len(targets))
	for _, name := range targets {
		if u, err := lookupUnit(reg, name); err == nil {
			us = append(us, u)
		}
	}
	if len(us) == 0 {
		return e
	}
	return sym.ConvertTo(e, us)
}

// Normalize substitutes units in the expressions of r if env directs and
// converts their units to the least complex form in env's unit system.
// Relations are normalized side by side.
func Normalize(r *Result, env *Environment) (*Result, error) {
	system, err := env.System()
	if err != nil {
		return nil, err
	}
	subst := env.SubstitutesUnits()
	excluded := env.Excluded()
	norm := func(e sym.Expr) sym.Expr {
		if subst {
			e = SubstituteUnits(e, excluded, system)
		}
		if rel, ok := e.(*sym.Relation); ok {
			return sym.Rel(rel.Op, AutoConvert(rel.LHS, system), AutoConvert(rel.RHS, system))
		}
		return AutoConvert(e, system)
	}
	if r.System == nil {
		return &Result{Expr: norm(r.Expr)}, nil
	}
	exprs := make([]Located, len(r.System.Exprs))
	for i, l := range r.System.Exprs {
		exprs[i] = Located{Expr: norm(l.Expr), Span: l.Span}
	}
	return &Result{System: &System{Exprs: exprs}}, nil
}

// Convert compiles src with unit substitution enabled and re-expresses the
// result in powers of the named units.
func Convert(src string, env *Environment, targets []string, opts ...Option) (*Result, error) {
	env = env.clone()
	on := true
	env.Units = &on
	r, err := Compile(src, env, append(opts, Raw())...)
	if err != nil {
		return nil, err
	}
	system, err := env.System()
	if err != nil {
		return nil, err
	}
	excluded := env.Excluded()
	conv := func(e sym.Expr) sym.Expr {
		return ConvertUnits(SubstituteUnits(e, excluded, system), targets)
	}
	if r.System == nil {
		return &Result{Expr: conv(r.Expr)}, nil
	}
	for i, l := range r.System.Exprs {
		r.System.Exprs[i].Expr = conv(l.Expr)
	}
	return r, nil
}
