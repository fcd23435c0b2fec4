package sym_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/latexpr/sym"
)

func unit(t *testing.T, name string) *sym.Quantity {
	t.Helper()
	u, ok := sym.DefaultRegistry().Lookup(name)
	require.True(t, ok, "no unit %q", name)
	return sym.NewQuantity(u)
}

func units(t *testing.T, names ...string) []*sym.Unit {
	t.Helper()
	r := make([]*sym.Unit, len(names))
	for i, n := range names {
		r[i] = unit(t, n).Unit
	}
	return r
}

func TestConvertTo(t *testing.T) {
	kg, m, s := unit(t, "kg"), unit(t, "m"), unit(t, "s")
	cases := []struct {
		name    string
		e       sym.Expr
		targets []string
		want    string
	}{
		{"force", sym.MulOf(kg, m, sym.PowOf(s, sym.Int(-2))), []string{"N"}, "N"},
		{"joule-base", sym.MulOf(unit(t, "J"), sym.PowOf(m, sym.Int(-1)), sym.PowOf(s, sym.Int(2))), []string{"m", "kg", "s"}, "kg*m"},
		{"speed", sym.MulOf(mustNumber(t, "7.2"), unit(t, "km"), sym.PowOf(unit(t, "h"), sym.Int(-1))), []string{"m", "s"}, "2.0*m/s"},
		{"incompatible", unit(t, "km"), []string{"N"}, "km"},
		{"prefix", sym.MulOf(sym.Int(3), unit(t, "km")), []string{"m"}, "3000*m"},
		{"sum", sym.AddOf(unit(t, "km"), m), []string{"m"}, "1001*m"},
		{"nounits", sym.NewSymbol("x"), []string{"m"}, "x"},
		{"coefficient", sym.MulOf(sym.NewSymbol("x"), unit(t, "g")), []string{"kg"}, "kg*x/1000"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := sym.ConvertTo(c.e, units(t, c.targets...))
			assert.Equal(t, c.want, got.String())
		})
	}
}

func TestUnitPowers(t *testing.T) {
	kg, s := unit(t, "kg"), unit(t, "s")
	x := sym.NewSymbol("x")
	rest, ups, ok := sym.UnitPowers(sym.MulOf(sym.Int(2), x, kg, sym.PowOf(s, sym.Int(-2))))
	require.True(t, ok)
	assert.Len(t, rest, 2)
	require.Len(t, ups, 2)
	assert.Equal(t, "kilogram", ups[0].Unit.Name)
	assert.Equal(t, "second", ups[1].Unit.Name)
	assert.Equal(t, "-2", ups[1].Exp.String())

	_, _, ok = sym.UnitPowers(sym.PowOf(kg, x))
	assert.False(t, ok)
	_, _, ok = sym.UnitPowers(sym.Apply("sin", kg))
	assert.False(t, ok)
}

func TestRegistry(t *testing.T) {
	reg := sym.DefaultRegistry()
	sec, ok := reg.Lookup("sec")
	require.True(t, ok)
	assert.Equal(t, "second", sec.Name)
	minute, ok := reg.Lookup("min")
	require.True(t, ok)
	assert.Equal(t, "minute", minute.Name)

	si, ok := reg.System("SI")
	require.True(t, ok)
	mks, ok := reg.System("MKS")
	require.True(t, ok)
	amp, _ := reg.Lookup("A")
	newton, _ := reg.Lookup("N")
	assert.True(t, si.Covers(amp))
	assert.False(t, mks.Covers(amp))
	assert.True(t, mks.Covers(newton))
	assert.Len(t, si.BaseUnits(), 7)
	assert.Equal(t, "newton", si.NamedUnits()[0].Name)
	assert.Equal(t, []string{"MKS", "MKSA", "SI"}, reg.Systems())
}
