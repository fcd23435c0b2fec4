package sym

import "math/big"

var defaultRegistry = buildRegistry()

// DefaultRegistry returns the registry of SI units, common prefixed and
// non-SI units, and the SI, MKSA, and MKS unit systems. The registry is built
// once at package initialization and must not be modified.
func DefaultRegistry() *Registry { return defaultRegistry }

func rat(s string) *big.Rat {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("sym: bad unit scale " + s)
	}
	return r
}

func buildRegistry() *Registry {
	r := &Registry{byAlias: make(map[string]*Unit), systems: make(map[string]*UnitSystem)}
	unit := func(name, abbrev, scale string, d Dimension, prefixed bool, aliases ...string) *Unit {
		return r.add(&Unit{Name: name, Abbrev: abbrev, Aliases: aliases, Dim: d, Scale: rat(scale), Prefixed: prefixed})
	}
	const (
		L = int64(Length)
		M = int64(Mass)
		T = int64(Time)
		I = int64(Current)
		K = int64(Temperature)
		N = int64(Amount)
		J = int64(Luminosity)
	)

	m := unit("meter", "m", "1", dim(L, 1), false, "metre")
	kg := unit("kilogram", "kg", "1", dim(M, 1), false)
	s := unit("second", "s", "1", dim(T, 1), false, "sec")
	a := unit("ampere", "A", "1", dim(I, 1), false)
	kelvin := unit("kelvin", "K", "1", dim(K, 1), false)
	mol := unit("mole", "mol", "1", dim(N, 1), false)
	cd := unit("candela", "cd", "1", dim(J, 1), false)

	newton := unit("newton", "N", "1", dim(L, 1, M, 1, T, -2), false)
	joule := unit("joule", "J", "1", dim(L, 2, M, 1, T, -2), false)
	watt := unit("watt", "W", "1", dim(L, 2, M, 1, T, -3), false)
	pascal := unit("pascal", "Pa", "1", dim(L, -1, M, 1, T, -2), false)
	hertz := unit("hertz", "Hz", "1", dim(T, -1), false)
	coulomb := unit("coulomb", "C", "1", dim(T, 1, I, 1), false)
	volt := unit("volt", "V", "1", dim(L, 2, M, 1, T, -3, I, -1), false)
	ohm := unit("ohm", "Ω", "1", dim(L, 2, M, 1, T, -3, I, -2), false, `\Omega`)
	farad := unit("farad", "F", "1", dim(L, -2, M, -1, T, 4, I, 2), false)
	henry := unit("henry", "H", "1", dim(L, 2, M, 1, T, -2, I, -2), false)
	tesla := unit("tesla", "T", "1", dim(M, 1, T, -2, I, -1), false)
	weber := unit("weber", "Wb", "1", dim(L, 2, M, 1, T, -2, I, -1), false)
	siemens := unit("siemens", "S", "1", dim(L, -2, M, -1, T, 3, I, 2), false)
	unit("gray", "Gy", "1", dim(L, 2, T, -2), false)
	unit("becquerel", "Bq", "1", dim(T, -1), false)
	unit("katal", "kat", "1", dim(N, 1, T, -1), false)

	unit("kilometer", "km", "1000", dim(L, 1), true, "kilometre")
	unit("centimeter", "cm", "1/100", dim(L, 1), true, "centimetre")
	unit("millimeter", "mm", "1/1000", dim(L, 1), true, "millimetre")
	unit("micrometer", "µm", "1/1000000", dim(L, 1), true, "um")
	unit("nanometer", "nm", "1/1000000000", dim(L, 1), true)
	unit("gram", "g", "1/1000", dim(M, 1), false)
	unit("milligram", "mg", "1/1000000", dim(M, 1), true)
	unit("tonne", "t", "1000", dim(M, 1), false, "ton")
	unit("millisecond", "ms", "1/1000", dim(T, 1), true)
	unit("microsecond", "µs", "1/1000000", dim(T, 1), true, "us")
	unit("nanosecond", "ns", "1/1000000000", dim(T, 1), true)
	unit("minute", "min", "60", dim(T, 1), false)
	unit("hour", "h", "3600", dim(T, 1), false)
	unit("day", "day", "86400", dim(T, 1), false)
	unit("liter", "L", "1/1000", dim(L, 3), false, "l", "litre")
	unit("milliliter", "mL", "1/1000000", dim(L, 3), true, "ml")
	unit("milliampere", "mA", "1/1000", dim(I, 1), true)
	unit("millivolt", "mV", "1/1000", volt.Dim, true)
	unit("kilovolt", "kV", "1000", volt.Dim, true)
	unit("kilonewton", "kN", "1000", newton.Dim, true)
	unit("kilojoule", "kJ", "1000", joule.Dim, true)
	unit("megajoule", "MJ", "1000000", joule.Dim, true)
	unit("kilowatt", "kW", "1000", watt.Dim, true)
	unit("megawatt", "MW", "1000000", watt.Dim, true)
	unit("kilopascal", "kPa", "1000", pascal.Dim, true)
	unit("megapascal", "MPa", "1000000", pascal.Dim, true)
	unit("kilohertz", "kHz", "1000", hertz.Dim, true)
	unit("megahertz", "MHz", "1000000", hertz.Dim, true)
	unit("gigahertz", "GHz", "1000000000", hertz.Dim, true)
	unit("kiloohm", "kΩ", "1000", ohm.Dim, true, "kohm")
	unit("bar", "bar", "100000", pascal.Dim, false)
	unit("atmosphere", "atm", "101325", pascal.Dim, false)
	unit("electronvolt", "eV", "1.602176634e-19", joule.Dim, false)
	unit("calorie", "cal", "4.184", joule.Dim, false)
	unit("kilocalorie", "kcal", "4184", joule.Dim, true)

	mech := []*Unit{newton, joule, watt, pascal, hertz}
	elec := append(append([]*Unit(nil), mech...), coulomb, volt, ohm, farad, henry, tesla, weber, siemens)
	r.system("SI", []*Unit{m, kg, s, a, kelvin, mol, cd}, elec)
	r.system("MKSA", []*Unit{m, kg, s, a}, elec)
	r.system("MKS", []*Unit{m, kg, s}, mech)
	return r
}
