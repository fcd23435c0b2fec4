package latexpr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/latexpr"
	"github.com/zephyrtronium/latexpr/sym"
)

func TestCompile(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		// arithmetic
		{"add", "1 + 2", "3"},
		{"implicit", "2 a", "2*a"},
		{"implicit-digits", "2x", "2*x"},
		{"combine", "a + a", "2*a"},
		{"precedence", `2 \cdot 3 + 4`, "10"},
		{"sub", "a - a", "0"},
		{"decimal", "3.5", "3.5"},
		{"frac", `\frac{1}{2}`, "1/2"},
		{"frac-digits", `\frac12`, "1/2"},
		{"sqrt", `\sqrt{4}`, "2"},
		{"hex", "0x1F", "31"},
		{"binary", "0b101", "5"},
		{"octal", "0o17", "15"},
		{"percent", `50\%`, "1/2"},
		{"permille", `5\textperthousand`, "1/200"},
		{"factorial", "5!", "120"},
		{"binom", `\binom{5}{2}`, "10"},
		{"abs", "|-3|", "3"},
		{"mod", `7 \bmod 3`, "1"},
		{"power", "x^2", "x^2"},
		{"i", "i^2", "-1"},
		// constants and symbols
		{"pi", `\pi`, "pi"},
		{"infinity", `\infty`, "oo"},
		{"e", `\ln e`, "1"},
		{"subscript", "x_1", "x_{1}"},
		{"subscript-braces", "x_{1}", "x_{1}"},
		{"prime", "f'", "f'"},
		{"greek", `\alpha`, `\alpha`},
		{"formatted", `\mathbf{v}`, `\mathbf{v}`},
		{"unit-braces", "5 {km}", "5*km"},
		// functions
		{"sin", `\sin x`, "sin(x)"},
		{"sin-paren", `\sin(x)`, "sin(x)"},
		{"sin-squared", `\sin^2 x`, "sin(x)^2"},
		{"arcsin", `\sin^{-1} x`, "asin(x)"},
		{"log-base", `\log_2 8`, "log(8)/log(2)"},
		{"log-base-one", `\log_1 5`, "0^(-1)*log(5)"},
		{"div-zero", "1/0", "0^(-1)"},
		{"max", `\max(a, b)`, "Max(a, b)"},
		{"undefined-call", "f(x)", "f(x)"},
		{"operatorname", `\operatorname{sgn}(x)`, "sgn(x)"},
		{"ambiguous-call", "f (x)", "f*x"},
		// relations
		{"eq", "a = b", "a = b"},
		{"lt", "a < b", "a < b"},
		{"le", `a \leq b`, "a <= b"},
		{"ne", `a \neq b`, "a != b"},
		{"ge", "a ≥ b", "a >= b"},
		{"placeholder-lhs", "= 5", "_0 = 5"},
		{"placeholder-rhs", "x >", "x > _0"},
		// matrices
		{"matrix", `\begin{bmatrix} 1 & 2 \\ 3 & 4 \end{bmatrix}`, "Matrix([[1, 2], [3, 4]])"},
		{"matrix-trailing-row", `\begin{bmatrix} 1 & 2 \\ 3 & 4 \\ \end{bmatrix}`, "Matrix([[1, 2], [3, 4]])"},
		{"column", `\begin{pmatrix} 1 \\ 2 \end{pmatrix}`, "Matrix([[1], [2]])"},
		{"transpose", `\begin{bmatrix} 1 & 2 \\ 3 & 4 \end{bmatrix}^T`, "Matrix([[1, 3], [2, 4]])"},
		{"det", `\begin{vmatrix} 1 & 2 \\ 3 & 4 \end{vmatrix}`, "-2"},
		{"det-func", `\det \begin{bmatrix} 1 & 2 \\ 3 & 4 \end{bmatrix}`, "-2"},
		{"matrix-product", `\begin{bmatrix} 1 & 2 \end{bmatrix} \begin{bmatrix} 3 \\ 4 \end{bmatrix}`, "Matrix([[11]])"},
		{"inner", `\langle a, b \rangle`, "inner(a, b)"},
		{"inner-vectors", `\langle \begin{bmatrix} 1 \\ 2 \end{bmatrix}, \begin{bmatrix} 3 \\ 4 \end{bmatrix} \rangle`, "11"},
		// calculus
		{"derivative", `\frac{d}{dx} x^2`, "Derivative(x^2, x)"},
		{"derivative-braced", `\frac{d}{dt}{a t}`, "Derivative(a*t, t)"},
		{"partial", `\frac{\partial}{\partial y} x y`, "Derivative(x, y)*y"},
		{"integral", `\int x dx`, "Integral(x, x)"},
		{"integral-bounds", `\int_0^1 x dx`, "Integral(x, (x, 0, 1))"},
		{"integral-empty", `\int dx`, "Integral(1, x)"},
		{"sum", `\sum_{i=1}^{n} i^2`, "Sum(i^2, (i, 1, n))"},
		{"product", `\prod_{k=1}^{3} k`, "Product(k, (k, 1, 3))"},
		{"limit", `\lim_{x \to \infty} x`, "Limit(x, x, oo)"},
		{"gradient", `\nabla (x^2 y)`, "Matrix([[Derivative(x^2*y, x), Derivative(x^2*y, y)]])"},
		{"gradient-constant", `\nabla 5`, "0"},
		{"hessian", `\mathbf{H}(x y)`, "Matrix([[Derivative(x*y, (x, 2)), Derivative(Derivative(x*y, y), x)], [Derivative(Derivative(x*y, x), y), Derivative(x*y, (y, 2))]])"},
		{"jacobian", `\mathbf{J}(\begin{bmatrix} x y \\ x + y \end{bmatrix})`, "Matrix([[Derivative(x*y, x), Derivative(x*y, y)], [Derivative(x + y, x), Derivative(x + y, y)]])"},
		{"jacobian-scalar", `\mathbf{J}(x^2)`, "Matrix([[Derivative(x^2, x)]])"},
		{"rref", `\mathrm{rref}(\begin{bmatrix} 20 & 50 \\ 10 & 25 \end{bmatrix})`, "Matrix([[1, 5/2], [0, 0]])"},
		{"rref-operatorname", `\operatorname{rref}(\begin{bmatrix} 0 & 2 \\ 1 & 1 \end{bmatrix})`, "Matrix([[1, 0], [0, 1]])"},
		{"rref-symbolic", `\mathrm{rref}(\begin{bmatrix} a & 1 \end{bmatrix})`, "rref(Matrix([[a, 1]]))"},
		{"hessian-symbol", `\mathbf{H} x`, `\mathbf{H}*x`},
		// propositions
		{"not", `\neg a`, "Not(a)"},
		{"double-not", `\neg \lnot a`, "a"},
		{"and-not", `\neg a \wedge b`, "And(Not(a), b)"},
		{"or-flat", `a \vee b \lor c`, "Or(a, b, c)"},
		{"or-and", `a \vee b \wedge c`, "Or(a, And(b, c))"},
		{"xor", `a \oplus b`, "Xor(a, b)"},
		{"xnor", `a \odot b`, "Xnor(a, b)"},
		{"nand", `a \bar{\wedge} b`, "Nand(a, b)"},
		{"nor", `a \overline \vee b`, "Nor(a, b)"},
		{"implies", `a \implies b`, "Implies(a, b)"},
		{"implies-right", `a \to b \Rightarrow c`, "Implies(a, Implies(b, c))"},
		{"implied-by", `a \Leftarrow b`, "Implies(b, a)"},
		{"iff", `a \iff b \Leftrightarrow c`, "Equivalent(a, b, c)"},
		{"relations", `x < 1 \wedge x > 0`, "And(x < 1, x > 0)"},
		{"relation-chain", `(a < b < c) \vee d`, "Or(And(a < b, b < c), d)"},
		{"truth", `\mathrm{T} \wedge \mathrm{F}`, "False"},
		{"tautology", `a \vee \top`, "True"},
		{"contradiction-absorbed", `a \vee \bot`, "a"},
		{"truth-implies", `\bot \implies a`, "Implies(False, a)"},
		{"relation-operand", `1 < 2 \wedge a`, "And(1 < 2, a)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := latexpr.CompileString(c.src, nil)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestCompileSystems(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		want  []string
		lines []int
	}{
		{"chain", "a = b = c", []string{"a = b", "b = c"}, []int{1, 1}},
		{"lines", "x = 1 \\\\\ny = 2", []string{"x = 1", "y = 2"}, []int{1, 2}},
		{"blank-lines", "x \\\\ \\\\ y", []string{"x", "y"}, []int{1, 1}},
		{"align", "\\begin{align}\nx &= 1 \\\\\ny &= 2\n\\end{align}", []string{"x = 1", "y = 2"}, []int{2, 3}},
		{"placeholders", `= a \\ = b`, []string{"_0 = a", "_1 = b"}, []int{1, 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, err := latexpr.Compile(c.src, nil)
			require.NoError(t, err)
			require.NotNil(t, r.System)
			require.Len(t, r.System.Exprs, len(c.want))
			for i, l := range r.System.Exprs {
				assert.Equal(t, c.want[i], l.String())
				assert.Equal(t, c.lines[i], l.StartLine())
			}
			assert.Equal(t, c.want[len(c.want)-1], r.Last().String())
			assert.Len(t, r.Exprs(), len(c.want))
		})
	}
}

func TestCompileChainSpans(t *testing.T) {
	r, err := latexpr.Compile("a = b = c", nil)
	require.NoError(t, err)
	require.NotNil(t, r.System)
	first, second := r.System.Exprs[0].Span, r.System.Exprs[1].Span
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.Start.Col)
	assert.Equal(t, 10, first.End.Col)
}

func TestCompileSingle(t *testing.T) {
	r, err := latexpr.Compile("x + 1", nil)
	require.NoError(t, err)
	assert.Nil(t, r.System)
	require.NotNil(t, r.Expr)
	assert.Equal(t, "x + 1", r.String())
	require.Len(t, r.Exprs(), 1)
	assert.True(t, r.Exprs()[0].Span.IsZero())
}

func TestCompileDeterministic(t *testing.T) {
	srcs := []string{
		`\frac{d}{dx} \sin x + \sum_{i=1}^{n} x_i`,
		`a = b = c`,
		`\begin{bmatrix} a & b \\ c & d \end{bmatrix}^T`,
		`= x \\ y <`,
	}
	for _, src := range srcs {
		a, err := latexpr.CompileString(src, nil)
		require.NoError(t, err, src)
		b, err := latexpr.CompileString(src, nil)
		require.NoError(t, err, src)
		assert.Equal(t, a, b, src)
	}
}

func TestMatrixMarkup(t *testing.T) {
	a, err := latexpr.Compile(`\left(\begin{matrix} 1 & 2 \end{matrix}\right)`, nil)
	require.NoError(t, err)
	b, err := latexpr.Compile(`\begin{bmatrix} 1 & 2 \end{bmatrix}`, nil)
	require.NoError(t, err)
	assert.True(t, sym.Equal(a.Expr, b.Expr))
	m, ok := a.Expr.(*sym.Matrix)
	require.True(t, ok)
	assert.Equal(t, `\left(\begin{matrix}`, m.Begin)
	assert.Equal(t, `\end{matrix}\right)`, m.End)
	m, ok = b.Expr.(*sym.Matrix)
	require.True(t, ok)
	assert.Equal(t, `\begin{bmatrix}`, m.Begin)
}

func TestBoundVariables(t *testing.T) {
	r, err := latexpr.Compile(`\sum_{i=1}^{3} i`, nil, latexpr.Define("i", "5"))
	require.NoError(t, err)
	assert.Equal(t, "Sum(i, (i, 1, 3))", r.String())
	r, err = latexpr.Compile(`\int_0^a x dx`, nil, latexpr.Define("a", "2"), latexpr.Define("x", "7"))
	require.NoError(t, err)
	assert.Equal(t, "Integral(x, (x, 0, 2))", r.String())
}

func TestVariables(t *testing.T) {
	env := &latexpr.Environment{
		Variables: map[string]string{
			"a":     "b + 1",
			"b":     "2",
			"v":     "3",
			"alpha": "2",
			"w":     "x + 1",
		},
	}
	cases := []struct {
		src  string
		want string
	}{
		{"a", "3"},
		{"2 v", "6"},
		{`\alpha + 1`, "3"},
		{"w^2", "(x + 1)^2"},
		{"a + b + v", "8"},
	}
	for _, c := range cases {
		got, err := latexpr.CompileString(c.src, env)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, got, c.src)
	}
}

func TestDefineOverridesEnvironment(t *testing.T) {
	env := &latexpr.Environment{Variables: map[string]string{"a": "1"}}
	got, err := latexpr.CompileString("a", env, latexpr.Define("a", "2"))
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	// The environment itself is unchanged.
	assert.Equal(t, "1", env.Variables["a"])
}

func TestCyclicDefinitions(t *testing.T) {
	cases := []struct {
		name    string
		vars    map[string]string
		src     string
		members []string
	}{
		{"pair", map[string]string{"a": "b", "b": "a"}, "a", []string{"a", "b"}},
		{"self", map[string]string{"a": "a + 1"}, "a", []string{"a"}},
		{"downstream", map[string]string{"a": "b", "b": "c", "c": "2 b"}, "a", []string{"b", "c"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := latexpr.Compile(c.src, &latexpr.Environment{Variables: c.vars})
			var cerr *latexpr.CyclicDefinitionError
			require.True(t, errors.As(err, &cerr), "got %v", err)
			assert.Equal(t, c.members, cerr.Members)
		})
	}
	t.Run("through-function", func(t *testing.T) {
		env := &latexpr.Environment{
			Variables: map[string]string{"a": "f(1)", "b": "a"},
			Functions: map[string]latexpr.FunctionDef{
				"f": {Args: []string{"x"}, Expr: "b + x"},
			},
		}
		_, err := latexpr.Compile("a", env)
		var cerr *latexpr.CyclicDefinitionError
		require.True(t, errors.As(err, &cerr), "got %v", err)
		assert.Equal(t, []string{"a", "b"}, cerr.Members)
	})
	t.Run("through-nested-functions", func(t *testing.T) {
		env := &latexpr.Environment{
			Variables: map[string]string{"a": "g(2)", "b": "3 a"},
			Functions: map[string]latexpr.FunctionDef{
				"f": {Args: []string{"y"}, Expr: "b y"},
				"g": {Args: []string{"b"}, Expr: "f(b)"},
			},
		}
		_, err := latexpr.Compile("a", env)
		var cerr *latexpr.CyclicDefinitionError
		require.True(t, errors.As(err, &cerr), "got %v", err)
		assert.Equal(t, []string{"a", "b"}, cerr.Members)
	})
}

func TestFunctions(t *testing.T) {
	env := &latexpr.Environment{
		Variables: map[string]string{"x": "100"},
		Functions: map[string]latexpr.FunctionDef{
			"g": {Args: []string{"a", "b"}, Expr: "a b"},
		},
	}
	opts := []latexpr.Option{
		latexpr.DefineFunc("f", []string{"x"}, "2 x"),
		latexpr.DefineFunc("h", []string{"x"}, "x + 1"),
		latexpr.DefineFunc("p", []string{"y"}, "y z"),
		latexpr.DefineFunc("q", []string{"z"}, "p(2)"),
	}
	cases := []struct {
		src  string
		want string
	}{
		{"f(y)", "2*y"},
		{"f(3)", "6"},
		{"g(2, 3)", "6"},
		{"h(2)", "3"},
		{"h(2) + x", "103"},
		{"f(h(1))", "4"},
		{`\operatorname{f}(5)`, "10"},
		// Parameters of the caller are not visible in the callee.
		{"q(3)", "2*z"},
		{"q(3) + p(4)", "6*z"},
	}
	for _, c := range cases {
		got, err := latexpr.CompileString(c.src, env, opts...)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, got, c.src)
	}
}

func TestFunctionOperators(t *testing.T) {
	opts := []latexpr.Option{
		latexpr.DefineFunc("u", []string{"y", "x"}, "x^2 y"),
		latexpr.DefineFunc("c", nil, "5"),
		latexpr.Define("v", "3"),
		latexpr.DefineFunc("v", []string{"x"}, "x"),
	}
	cases := []struct {
		src  string
		want string
	}{
		{"u'", "Derivative(x^2*y, x)"},
		{"u''", "Derivative(x^2*y, (x, 2))"},
		{"c'", "0"},
		{"w'", "w'"},
		// Variables take precedence over functions.
		{"v'", "v'"},
		{`\nabla u`, "Matrix([[Derivative(x^2*y, y), Derivative(x^2*y, x)]])"},
		{`\mathbf{H}(u)`, "Matrix([[Derivative(x^2*y, (y, 2)), Derivative(Derivative(x^2*y, x), y)], [Derivative(Derivative(x^2*y, y), x), Derivative(x^2*y, (x, 2))]])"},
		{`\mathbf{J}(u)`, "Matrix([[Derivative(x^2*y, y), Derivative(x^2*y, x)]])"},
	}
	for _, c := range cases {
		got, err := latexpr.CompileString(c.src, nil, opts...)
		require.NoError(t, err, c.src)
		assert.Equal(t, c.want, got, c.src)
	}
}

func TestOperatorErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"jacobian-square", `\mathbf{J}(\begin{bmatrix} x & 1 \\ 2 & y \end{bmatrix})`},
		{"rref-scalar", `\mathrm{rref}(x)`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := latexpr.Compile(c.src, nil)
			var gerr *latexpr.GrammarParseError
			require.ErrorAs(t, err, &gerr)
			var ierr latexpr.InputError
			assert.ErrorAs(t, err, &ierr)
		})
	}
}

func TestFunctionErrors(t *testing.T) {
	t.Run("arity", func(t *testing.T) {
		_, err := latexpr.Compile("f(1, 2)", nil, latexpr.DefineFunc("f", []string{"x"}, "x"))
		var aerr *latexpr.ArityMismatchError
		require.True(t, errors.As(err, &aerr), "got %v", err)
		assert.Equal(t, "f", aerr.Name)
		assert.Equal(t, 1, aerr.Want)
		assert.Equal(t, 2, aerr.Got)
	})
	t.Run("builtin-arity", func(t *testing.T) {
		_, err := latexpr.Compile(`\sin(1, 2)`, nil)
		var aerr *latexpr.ArityMismatchError
		require.True(t, errors.As(err, &aerr), "got %v", err)
		assert.Equal(t, 2, aerr.Got)
		assert.Less(t, aerr.Want, 0)
	})
	t.Run("recursive", func(t *testing.T) {
		_, err := latexpr.Compile("f(1)", nil, latexpr.DefineFunc("f", []string{"x"}, "f(x) + 1"))
		var cerr *latexpr.CyclicDefinitionError
		require.True(t, errors.As(err, &cerr), "got %v", err)
		assert.Equal(t, []string{"f"}, cerr.Members)
	})
	t.Run("duplicate-params", func(t *testing.T) {
		_, err := latexpr.Compile("f(1, 2)", nil, latexpr.DefineFunc("f", []string{"x", "x"}, "x"))
		var aerr *latexpr.ArityMismatchError
		require.True(t, errors.As(err, &aerr), "got %v", err)
		assert.Equal(t, "f", aerr.Name)
	})
	t.Run("bad-body", func(t *testing.T) {
		_, err := latexpr.Compile("f(1)", nil, latexpr.DefineFunc("f", []string{"x"}, "(x"))
		var derr *latexpr.DefinitionError
		require.True(t, errors.As(err, &derr), "got %v", err)
		assert.Equal(t, "f", derr.Name)
		var serr *latexpr.LexicalScopeError
		assert.True(t, errors.As(err, &serr))
	})
}

func TestDefinitionErrors(t *testing.T) {
	_, err := latexpr.Compile("a", nil, latexpr.Define("a", `1 \\ 2`))
	var derr *latexpr.DefinitionError
	require.True(t, errors.As(err, &derr), "got %v", err)
	assert.Equal(t, "a", derr.Name)

	_, err = latexpr.Compile("a", nil, latexpr.Define("a", "$"))
	require.True(t, errors.As(err, &derr), "got %v", err)
	var lerr *latexpr.LexError
	assert.True(t, errors.As(err, &lerr))
}

func TestStrict(t *testing.T) {
	cases := []struct {
		name string
		src  string
		opts []latexpr.Option
		want string
		// unknown is the name of the unknown symbol, if compiling fails.
		unknown string
	}{
		{"undeclared", "x + 1", nil, "", "x"},
		{"declared", "x + 1", []latexpr.Option{latexpr.Declare("x")}, "x + 1", ""},
		{"variable", "x + 1", []latexpr.Option{latexpr.Define("x", "2")}, "3", ""},
		{"unit", "2 m", nil, "2*m", ""},
		{"constant", "e", nil, "E", ""},
		{"function", "g(1)", nil, "", "g"},
		{"parameter", "f(2)", []latexpr.Option{latexpr.DefineFunc("f", []string{"y"}, "y^2")}, "4", ""},
		{"parameter-body", "f(2)", []latexpr.Option{latexpr.DefineFunc("f", []string{"y"}, "y z")}, "", "z"},
		{"bound", `\sum_{k=1}^{3} k`, nil, "Sum(k, (k, 1, 3))", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			opts := append([]latexpr.Option{latexpr.Strict()}, c.opts...)
			got, err := latexpr.CompileString(c.src, nil, opts...)
			if c.unknown != "" {
				var uerr *latexpr.UnknownSymbolError
				require.True(t, errors.As(err, &uerr), "got %v", err)
				assert.Equal(t, c.unknown, uerr.Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestStrictEnvironment(t *testing.T) {
	env := &latexpr.Environment{Strict: true, Symbols: map[string][]string{"x": nil}}
	_, err := latexpr.Compile("x y", env)
	var uerr *latexpr.UnknownSymbolError
	require.True(t, errors.As(err, &uerr), "got %v", err)
	assert.Equal(t, "y", uerr.Name)
	assert.Equal(t, 3, uerr.Span().Start.Col)
}

func TestAssumptions(t *testing.T) {
	got, err := latexpr.CompileString("|x|", nil, latexpr.Declare("x", "positive"))
	require.NoError(t, err)
	assert.Equal(t, "x", got)
	got, err = latexpr.CompileString("|x|", nil)
	require.NoError(t, err)
	assert.Equal(t, "Abs(x)", got)

	r, err := latexpr.Compile("x", &latexpr.Environment{Symbols: map[string][]string{"x": {"real", "nonzero"}}})
	require.NoError(t, err)
	x, ok := r.Expr.(*sym.Symbol)
	require.True(t, ok)
	assert.True(t, x.Is("real"))
	assert.True(t, x.Is("nonzero"))
	assert.False(t, x.Is("positive"))
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		src    string
		env    *latexpr.Environment
		target any
	}{
		{"lex", "$", nil, new(*latexpr.LexError)},
		{"scope", "(x", nil, new(*latexpr.LexicalScopeError)},
		{"grammar", "x)", nil, new(*latexpr.GrammarParseError)},
		{"ragged-matrix", `\begin{matrix} 1 & 2 \\ 3 \end{matrix}`, nil, new(*latexpr.GrammarParseError)},
		{"unit-system", "x", &latexpr.Environment{UnitSystem: "CGS"}, new(*latexpr.EnvironmentError)},
		{"assumption", "x", &latexpr.Environment{Symbols: map[string][]string{"x": {"blue"}}}, new(*latexpr.EnvironmentError)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := latexpr.Compile(c.src, c.env)
			require.Error(t, err)
			assert.ErrorAs(t, err, c.target)
		})
	}
}

func TestCustomFuncs(t *testing.T) {
	got, err := latexpr.CompileString(`\sin x`, nil, latexpr.WithFunc("sin", nil))
	require.NoError(t, err)
	assert.Equal(t, "sin(x)", got)

	got, err = latexpr.CompileString(`\arcsin x`, nil, latexpr.DisableDefaultFuncs())
	require.NoError(t, err)
	assert.Equal(t, "arcsin(x)", got)

	got, err = latexpr.CompileString("sq(3)", nil, latexpr.WithFuncs(map[string]latexpr.Func{"sq": square{}}))
	require.NoError(t, err)
	assert.Equal(t, "9", got)

	preset := latexpr.Preset(latexpr.WithFunc("sq", square{}), latexpr.Define("a", "4"))
	got, err = latexpr.CompileString(`\operatorname{sq}(a)`, nil, preset)
	require.NoError(t, err)
	assert.Equal(t, "16", got)
}

type square struct{}

func (square) Call(args []sym.Expr) (sym.Expr, error) {
	return sym.PowOf(args[0], sym.Int(2)), nil
}

func (square) CanCall(n int) bool {
	return n == 1
}
