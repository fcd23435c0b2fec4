package latexpr

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zephyrtronium/latexpr/sym"
)

// transformer converts a parse tree into engine expressions. It visits the
// tree bottom-up except for rules that bind variables, whose bounds are
// transformed before their bodies.
type transformer struct {
	store Store
	funcs map[string]Func
	reg   *sym.Registry
	// bound holds the variables bound by enclosing sums, products, limits,
	// and integrals.
	bound []string
}

// result is the value of a transformed node.
type result struct {
	expr sym.Expr
	// tok is the token of a leaf.
	tok Token
	// args holds argument lists and matrix rows.
	args []sym.Expr
	// lines holds the elements of chained relations and systems.
	lines []Located
	chain bool
}

func (t *transformer) transform(n Node) (result, error) {
	switch n := n.(type) {
	case *Leaf:
		return result{tok: n.Token}, nil
	case *Choice:
		return t.transform(n.Alts[0])
	case *Branch:
		switch n.Rule {
		case ruleSum, ruleProduct, ruleLimit, ruleIntegral:
			return t.binding(n)
		case ruleIff, ruleImplies, ruleOr, ruleNand, ruleAnd, ruleNor, ruleXor, ruleXnor, ruleNot:
			return t.logic(n)
		case ruleGradient, ruleHessian, ruleJacobian:
			return t.differentiate(n)
		}
		kids := make([]result, len(n.Children))
		for i, c := range n.Children {
			r, err := t.transform(c)
			if err != nil {
				return result{}, err
			}
			kids[i] = r
		}
		return t.apply(n, kids)
	}
	panic("latexpr: invalid node type")
}

func expr(e sym.Expr) (result, error) {
	return result{expr: e}, nil
}

func (t *transformer) apply(n *Branch, k []result) (result, error) {
	switch n.Rule {
	case ruleSystem:
		var lines []Located
		chain := false
		for i, c := range n.Children {
			switch {
			case k[i].lines != nil:
				lines = append(lines, k[i].lines...)
				chain = true
			case k[i].expr != nil:
				lines = append(lines, Located{Expr: k[i].expr, Span: c.Span()})
			}
		}
		if len(lines) == 1 && !chain {
			return expr(lines[0].Expr)
		}
		return result{lines: lines, chain: true}, nil
	case ruleRelation:
		sides := make([]sym.Expr, 0, (len(k)+1)/2)
		for i := 0; i < len(k); i += 2 {
			e := k[i].expr
			if e == nil {
				e = sym.NewPlaceholder(t.store.session().placeholder())
			}
			sides = append(sides, e)
		}
		if len(sides) == 2 {
			return expr(sym.Rel(relop(k[1].tok), sides[0], sides[1]))
		}
		lines := make([]Located, 0, len(sides)-1)
		for i := 1; i < len(sides); i++ {
			lines = append(lines, Located{Expr: sym.Rel(relop(k[2*i-1].tok), sides[i-1], sides[i]), Span: n.Span()})
		}
		return result{lines: lines, chain: true}, nil
	case ruleEmpty, ruleSubscript, rulePrimes, ruleFormatted:
		return result{}, nil
	case ruleAdd:
		return expr(sym.AddOf(k[0].expr, k[2].expr))
	case ruleSub:
		return expr(sym.Sub(k[0].expr, k[2].expr))
	case ruleNeg:
		return expr(sym.Neg(k[1].expr))
	case rulePos:
		return expr(k[1].expr)
	case ruleMul:
		return expr(sym.MulOf(k[0].expr, k[2].expr))
	case ruleDiv:
		return expr(sym.Div(k[0].expr, k[2].expr))
	case ruleMod:
		return expr(sym.Apply("Mod", k[0].expr, k[2].expr))
	case ruleImplicit:
		fs := make([]sym.Expr, len(k))
		for i, r := range k {
			fs[i] = r.expr
		}
		return expr(sym.MulOf(fs...))
	case rulePow:
		return expr(t.power(k[0].expr, n.Children[2], k[2]))
	case ruleFactorial:
		return expr(sym.Apply("factorial", k[0].expr))
	case rulePercent:
		return expr(sym.MulOf(k[0].expr, sym.Frac(1, 100)))
	case rulePermille:
		return expr(sym.MulOf(k[0].expr, sym.Frac(1, 1000)))
	case ruleNumber:
		return t.number(k[0].tok)
	case ruleConst:
		if k[0].tok.Text == `\pi` {
			return expr(sym.Pi)
		}
		return expr(sym.Infinity)
	case ruleSymbol:
		if e, ok, err := t.quickDerivative(n); ok || err != nil {
			return result{expr: e}, err
		}
		e, err := t.symbol(symbolName(n), n.Span())
		return result{expr: e}, err
	case ruleGroup:
		if k[1].lines != nil {
			return expr(conjunction(k[1].lines))
		}
		return k[1], nil
	case ruleRref:
		m, ok := k[1].expr.(*sym.Matrix)
		if !ok {
			return result{}, &GrammarParseError{At: n.Children[1].Span(), Found: k[1].expr.String(), Expected: "matrix"}
		}
		return expr(sym.RREF(m))
	case ruleAbs:
		return expr(sym.Apply("Abs", k[1].expr))
	case ruleNorm:
		return expr(sym.Apply("Norm", k[1].expr))
	case ruleFrac:
		return expr(sym.Div(k[1].expr, k[2].expr))
	case ruleBinom:
		return expr(sym.Apply("binomial", k[1].expr, k[2].expr))
	case ruleSqrt:
		if len(k) == 4 {
			return expr(sym.Root(k[2].expr, k[1].expr))
		}
		return expr(sym.Sqrt(k[1].expr))
	case ruleArgs, ruleRow:
		args := make([]sym.Expr, len(k))
		for i, r := range k {
			args[i] = r.expr
		}
		return result{args: args}, nil
	case ruleFunc:
		e, err := t.function(n.Children[0], k[1].args, n.Span())
		return result{expr: e}, err
	case ruleFuncPow:
		f, ok := k[0].expr.(*sym.Func)
		if ok && sym.Equal(k[1].expr, sym.Int(-1)) {
			if inv, ok := inverses[f.Name]; ok {
				return expr(sym.Apply(inv, f.Args...))
			}
		}
		return expr(sym.PowOf(k[0].expr, k[1].expr))
	case ruleCall:
		e, err := t.call(k[0].tok, k[1].args, n.Span())
		return result{expr: e}, err
	case ruleMatrix:
		return t.matrix(n, k)
	case ruleDerivative:
		return expr(sym.NewDerivative(k[2].expr, k[1].expr, 1))
	case ruleDifferential:
		return expr(t.store.Symbol(differentialName(n)))
	case ruleInner:
		return expr(inner(k[1].expr, k[2].expr))
	case ruleUnit:
		name := k[1].tok.Text
		if u, err := lookupUnit(t.reg, name); err == nil {
			return expr(sym.NewQuantity(u))
		}
		e, err := t.symbol(name, n.Span())
		return result{expr: e}, err
	}
	panic("latexpr: unhandled rule " + n.Rule.String())
}

// binding transforms a rule that binds a variable in its body.
func (t *transformer) binding(n *Branch) (result, error) {
	var name string
	var bounds []Node
	var body Node
	switch n.Rule {
	case ruleSum, ruleProduct:
		idx := n.Children[1].(*Branch)
		name = symbolName(idx.Children[0].(*Branch))
		bounds = []Node{idx.Children[2], n.Children[2]}
		body = n.Children[3]
	case ruleLimit:
		name = symbolName(n.Children[1].(*Branch))
		bounds = []Node{n.Children[2]}
		body = n.Children[3]
	case ruleIntegral:
		name = differentialName(n.Children[len(n.Children)-1].(*Branch))
		if len(n.Children) == 5 {
			bounds = []Node{n.Children[1], n.Children[2]}
		}
		body = n.Children[len(n.Children)-2]
	}
	bs := make([]sym.Expr, len(bounds))
	for i, b := range bounds {
		r, err := t.transform(b)
		if err != nil {
			return result{}, err
		}
		bs[i] = r.expr
	}
	t.bound = append(t.bound, name)
	r, err := t.transform(body)
	t.bound = t.bound[:len(t.bound)-1]
	if err != nil {
		return result{}, err
	}
	v := t.store.Symbol(name)
	switch n.Rule {
	case ruleSum:
		return expr(sym.NewSum(r.expr, v, bs[0], bs[1]))
	case ruleProduct:
		return expr(sym.NewProduct(r.expr, v, bs[0], bs[1]))
	case ruleLimit:
		return expr(sym.NewLimit(r.expr, v, bs[0]))
	}
	if r.expr == nil {
		r.expr = sym.Int(1)
	}
	if len(bs) == 0 {
		return expr(sym.NewIntegral(r.expr, v, nil, nil))
	}
	return expr(sym.NewIntegral(r.expr, v, bs[0], bs[1]))
}

// symbolName returns the name of the symbol a ruleSymbol node denotes, like
// x_{1}' or \mathrm{kg}.
func symbolName(n *Branch) string {
	var b strings.Builder
	switch base := n.Children[0].(type) {
	case *Leaf:
		b.WriteString(base.Text)
	case *Branch:
		// Formatted.
		b.WriteString(base.Children[0].(*Leaf).Text)
		b.WriteString("{" + base.Children[1].(*Leaf).Text + "}")
	}
	for _, c := range n.Children[1:] {
		d := c.(*Branch)
		switch d.Rule {
		case ruleSubscript:
			b.WriteString("_{" + d.Children[1].(*Leaf).Text + "}")
		case rulePrimes:
			b.WriteString(strings.Repeat("'", len(d.Children)))
		}
	}
	return b.String()
}

// differentialName returns the variable of a ruleDifferential node.
func differentialName(n *Branch) string {
	if len(n.Children) == 1 {
		return n.Children[0].(*Leaf).Text[1:]
	}
	return symbolName(n.Children[1].(*Branch))
}

// symbol resolves a name through the store. Bound variables are never
// substituted.
func (t *transformer) symbol(name string, at Span) (sym.Expr, error) {
	for _, b := range t.bound {
		if b == name {
			return t.store.Symbol(name), nil
		}
	}
	v, ok, err := t.store.SymbolDefinition(name)
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if _, err := t.store.Declared(name); err == nil {
		return t.store.Symbol(name), nil
	}
	switch name {
	case "e":
		return sym.E, nil
	case "i":
		return sym.I, nil
	}
	if t.store.session().strict {
		if _, err := lookupUnit(t.reg, name); err == nil {
			return t.store.Symbol(name), nil
		}
		return nil, &UnknownSymbolError{Name: name, At: at}
	}
	return t.store.Symbol(name), nil
}

func (t *transformer) number(tok Token) (result, error) {
	text := tok.Text
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		case 'x', 'X':
			base = 16
		}
		if base != 0 {
			if n, ok := sym.ParseInt(text[2:], base); ok {
				return expr(n)
			}
		}
	}
	n, ok := sym.ParseNumber(text)
	if !ok {
		return result{}, &GrammarParseError{At: tok.Span, Found: text, Expected: "number"}
	}
	return expr(n)
}

// relop returns the relational operator a token denotes.
func relop(tok Token) sym.RelOp {
	switch tok.Text {
	case "<", `\lt`:
		return sym.Lt
	case ">", `\gt`:
		return sym.Gt
	case `\le`, `\leq`, `\leqslant`, "≤":
		return sym.Le
	case `\ge`, `\geq`, `\geqslant`, "≥":
		return sym.Ge
	case `\ne`, `\neq`, "≠":
		return sym.Ne
	}
	return sym.Eq
}

// power applies an exponent. Superscripts T and \top transpose matrices;
// H, \dagger, *, and \ast take adjoints of matrices and conjugates of other
// expressions.
func (t *transformer) power(base sym.Expr, expNode Node, exp result) sym.Expr {
	m, isMat := base.(*sym.Matrix)
	if l, ok := expNode.(*Leaf); ok && l.Kind == tokenMul {
		if isMat {
			return sym.Adjoint(m)
		}
		return sym.Conjugate(base)
	}
	if b, ok := expNode.(*Branch); ok && isMat && b.Rule == ruleSymbol && len(b.Children) == 1 {
		switch b.Children[0].(*Leaf).Text {
		case "T", `\top`:
			return sym.Transpose(m)
		case "H", `\dagger`:
			return sym.Adjoint(m)
		}
	}
	return sym.PowOf(base, exp.expr)
}

// function applies a known function command or \operatorname.
func (t *transformer) function(name Node, args []sym.Expr, at Span) (sym.Expr, error) {
	switch name := name.(type) {
	case *Leaf:
		f := t.funcs[strings.TrimPrefix(name.Text, `\`)]
		if f == nil {
			return sym.Apply(strings.TrimPrefix(name.Text, `\`), args...), nil
		}
		return t.invoke(name.Text, f, args, at)
	case *Branch:
		// \operatorname{name}
		return t.call(name.Children[1].(*Leaf).Token, args, at)
	}
	panic("latexpr: invalid function node")
}

// call applies a user-defined function, a registered Func, or an undefined
// function.
func (t *transformer) call(name Token, args []sym.Expr, at Span) (sym.Expr, error) {
	if fn, ok := t.store.FunctionDefinition(name.Text); ok {
		return fn.Call(t.store, args, at)
	}
	if f := t.funcs[name.Text]; f != nil {
		return t.invoke(name.Text, f, args, at)
	}
	if t.store.session().strict {
		return nil, &UnknownSymbolError{Name: name.Text, At: name.Span}
	}
	return sym.Apply(name.Text, args...), nil
}

func (t *transformer) invoke(name string, f Func, args []sym.Expr, at Span) (sym.Expr, error) {
	if !f.CanCall(len(args)) {
		return nil, &ArityMismatchError{Name: name, Want: -1, Got: len(args), At: at}
	}
	return f.Call(args)
}

// markupRE finds the environment name in matrix markup, which may be
// preceded by a \left delimiter.
var markupRE = regexp.MustCompile(`\\begin\s*\{\s*([A-Za-z]+\*?)\s*\}`)

func (t *transformer) matrix(n *Branch, k []result) (result, error) {
	begin, end := k[0].tok, k[len(k)-1].tok
	rows := make([][]sym.Expr, 0, len(k)-2)
	for _, r := range k[1 : len(k)-1] {
		rows = append(rows, r.args)
	}
	m, ok := sym.NewMatrix(rows)
	if !ok {
		return result{}, &GrammarParseError{At: n.Span(), Found: begin.Text, Expected: "rows of equal length"}
	}
	env := ""
	if s := markupRE.FindStringSubmatch(begin.Text); s != nil {
		env = s[1]
	}
	switch env {
	case "vmatrix":
		return expr(sym.Det(m))
	case "Vmatrix":
		return expr(sym.Apply("Norm", m))
	}
	return expr(m.WithMarkup(begin.Text, end.Text))
}

// inner computes the inner product of two vectors of the same shape, or an
// unevaluated inner product otherwise.
func inner(a, b sym.Expr) sym.Expr {
	x, xok := a.(*sym.Matrix)
	y, yok := b.(*sym.Matrix)
	if xok && yok {
		xr, xc := x.Shape()
		yr, yc := y.Shape()
		if xr == yr && xc == yc {
			var terms []sym.Expr
			for i := range x.Rows {
				for j := range x.Rows[i] {
					terms = append(terms, sym.MulOf(sym.Conjugate(x.Rows[i][j]), y.Rows[i][j]))
				}
			}
			return sym.AddOf(terms...)
		}
	}
	return sym.Apply("inner", a, b)
}

// logicOps maps connective rules to their operators.
var logicOps = map[Rule]sym.LogicOp{
	ruleIff: sym.Equivalent, ruleOr: sym.Or, ruleNand: sym.Nand,
	ruleAnd: sym.And, ruleNor: sym.Nor, ruleXor: sym.Xor, ruleXnor: sym.Xnor,
}

// logic transforms a propositional connective. Its operands are
// transformed here so that truth constants are never looked up as symbols.
func (t *transformer) logic(n *Branch) (result, error) {
	var args []sym.Expr
	for _, c := range n.Children {
		if _, ok := c.(*Leaf); ok {
			continue
		}
		if b, ok := c.(*Branch); ok && b.Rule == ruleSymbol {
			if v, ok := truthConsts[symbolName(b)]; ok {
				args = append(args, v)
				continue
			}
		}
		r, err := t.transform(c)
		if err != nil {
			return result{}, err
		}
		if r.lines != nil {
			args = append(args, conjunction(r.lines))
			continue
		}
		args = append(args, r.expr)
	}
	switch n.Rule {
	case ruleNot:
		return expr(sym.LogicOf(sym.Not, args[0]))
	case ruleImplies:
		if n.Children[1].(*Leaf).Kind == tokenImpliedBy {
			args[0], args[1] = args[1], args[0]
		}
		return expr(sym.LogicOf(sym.Implies, args...))
	}
	return expr(sym.LogicOf(logicOps[n.Rule], args...))
}

// truthConsts are the names that denote truth values as operands of
// connectives.
var truthConsts = map[string]sym.Expr{
	`\mathrm{T}`: sym.True, `\top`: sym.True,
	`\mathrm{F}`: sym.False, `\bot`: sym.False,
}

// conjunction joins the relations of a chain.
func conjunction(lines []Located) sym.Expr {
	args := make([]sym.Expr, len(lines))
	for i, l := range lines {
		args[i] = l.Expr
	}
	return sym.LogicOf(sym.And, args...)
}

// userFunction returns the body of the user-defined function that a bare
// name denotes, compiled with its parameters as symbols. The third result
// is false if the name is bound, is a variable, or is not a function.
func (t *transformer) userFunction(name string, at Span) (sym.Expr, []sym.Expr, bool, error) {
	for _, b := range t.bound {
		if b == name {
			return nil, nil, false, nil
		}
	}
	if _, ok, err := t.store.SymbolDefinition(name); ok || err != nil {
		return nil, nil, false, err
	}
	fn, ok := t.store.FunctionDefinition(name)
	if !ok {
		return nil, nil, false, nil
	}
	params := make([]sym.Expr, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = t.store.Symbol(p)
	}
	body, err := fn.Call(t.store, params, at)
	if err != nil {
		return nil, nil, false, err
	}
	return body, params, true, nil
}

// quickDerivative differentiates the body of a user-defined function named
// with primes, like f'', by its alphabetically first parameter. The second
// result is false if n is not such a name.
func (t *transformer) quickDerivative(n *Branch) (sym.Expr, bool, error) {
	last, ok := n.Children[len(n.Children)-1].(*Branch)
	if !ok || last.Rule != rulePrimes {
		return nil, false, nil
	}
	base := branch(ruleSymbol, n.Children[:len(n.Children)-1]...)
	body, params, ok, err := t.userFunction(symbolName(base), n.Span())
	if !ok || err != nil {
		return nil, false, err
	}
	if len(params) == 0 {
		return sym.Int(0), true, nil
	}
	sort.Slice(params, func(i, j int) bool { return params[i].String() < params[j].String() })
	return sym.NewDerivative(body, params[0], len(last.Children)), true, nil
}

// differentiate transforms a gradient, Hessian, or Jacobian. The variables
// are the parameters of a user-defined function operand in order, or else
// the free symbols of the operand sorted by name.
func (t *transformer) differentiate(n *Branch) (result, error) {
	operand := n.Children[1]
	if is(operand, ruleGroup) {
		operand = operand.(*Branch).Children[1]
	}
	var e sym.Expr
	var vars []sym.Expr
	if b, ok := operand.(*Branch); ok && b.Rule == ruleSymbol {
		body, params, ok, err := t.userFunction(symbolName(b), b.Span())
		if err != nil {
			return result{}, err
		}
		if ok {
			e, vars = body, params
		}
	}
	if e == nil {
		r, err := t.transform(n.Children[1])
		if err != nil {
			return result{}, err
		}
		e = r.expr
		for _, s := range sym.FreeSymbols(e) {
			vars = append(vars, s)
		}
	}
	switch n.Rule {
	case ruleGradient:
		return expr(gradient(e, vars))
	case ruleHessian:
		if len(vars) == 0 {
			return expr(sym.Int(0))
		}
		rows := make([][]sym.Expr, len(vars))
		for i, r := range vars {
			rows[i] = make([]sym.Expr, len(vars))
			for j, c := range vars {
				if i == j {
					rows[i][j] = sym.NewDerivative(e, c, 2)
					continue
				}
				rows[i][j] = sym.NewDerivative(sym.NewDerivative(e, c, 1), r, 1)
			}
		}
		m, _ := sym.NewMatrix(rows)
		return expr(m)
	}
	m, ok := e.(*sym.Matrix)
	if !ok {
		m, _ = sym.NewMatrix([][]sym.Expr{{e}})
	}
	if r, c := m.Shape(); r != 1 && c != 1 {
		return result{}, &GrammarParseError{At: operand.Span(), Found: e.String(), Expected: "a row or column vector"}
	}
	if len(vars) == 0 {
		return expr(sym.Int(0))
	}
	var rows [][]sym.Expr
	for _, x := range sym.Children(m) {
		rows = append(rows, gradient(x, vars).(*sym.Matrix).Rows[0])
	}
	j, _ := sym.NewMatrix(rows)
	return expr(j)
}

// gradient returns the row vector of the derivatives of e by each of vars,
// or 0 if there are no variables.
func gradient(e sym.Expr, vars []sym.Expr) sym.Expr {
	if len(vars) == 0 {
		return sym.Int(0)
	}
	row := make([]sym.Expr, len(vars))
	for i, v := range vars {
		row[i] = sym.NewDerivative(e, v, 1)
	}
	m, _ := sym.NewMatrix([][]sym.Expr{row})
	return m
}
