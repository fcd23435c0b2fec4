//go:build go1.18
// +build go1.18

package latexpr_test

import (
	"testing"

	"github.com/zephyrtronium/latexpr"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add(`\frac{d}{dx} x^2`)
	f.Add(`\begin{pmatrix} 1 & 2 \\ 3 & 4 \end{pmatrix}`)
	f.Add(`|a (|b|)|`)
	f.Fuzz(func(t *testing.T, s string) {
		latexpr.Parse(s)
	})
}

func FuzzCompile(f *testing.F) {
	f.Add("1 + 2")
	f.Add(`\sum_{i=1}^{n} i^2`)
	f.Add(`x = 2 km \\ y = \sqrt{x}`)
	f.Add(`\int_0^1 t\,dt`)
	env := &latexpr.Environment{UnitSystem: "SI"}
	f.Fuzz(func(t *testing.T, s string) {
		r, err := latexpr.Compile(s, env)
		if err != nil {
			return
		}
		if r.Expr == nil && r.System == nil {
			t.Errorf("compiling %q: empty result", s)
		}
	})
}
