package latexpr

import (
	"strconv"
	"strings"
)

// System = Line { ('\\' | ExprDelim) Line } | '\begin{align}' System '\end{align}'
// Line = Iff
// Iff = Implies { iff Implies }
// Implies = Or [(implies | impliedby | '\to') Implies]
// Or = Nand { or Nand }, and so on through Nand, And, Nor, Xor, Xnor
// Not = not Not | Relation
// Relation = [Expr] { RelOp [Expr] }
// Expr = [Sign] Term { ('+' | '-') Term }
// Term = Implicit { MulOp [Sign] Implicit }
// Implicit = Postfix { Postfix }
// Postfix = Primary { '^' Script | '!' | '\%' | '\textperthousand' }
// Primary = num | const | Symbol | Call | Group | Abs | Norm | Frac | Binom
//	| Sqrt | Func | Matrix | Derivative | Integral | Sum | Prod | Limit
//	| Inner | '{' ident '}' | '\nabla' Postfix | Operator Group
// Operator = '\mathbf{H}' | '\mathbf{J}' | '\mathrm{rref}'
// Symbol = (ident | greek | Formatted) ['_' Raw] {'''}
// Call = ident '(' [Expr {',' Expr}] ')'
// Func = func ['^' Script] ['_' Script] ('(' Expr {',' Expr} ')' | [Sign] Postfix)
// Frac = '\frac' Arg ArgDelim Arg ArgEnd
// Sqrt = '\sqrt' ['[' Expr ']'] Arg ArgEnd
// Matrix = '\begin{env}' Expr {(MatCol | MatRow) Expr} [MatRow] '\end{env}'
// Derivative = '\frac{d}{' Differential '}' ('{' Expr '}' | Postfix)
// Integral = '\int' ['_' Script '^' Script] Expr Differential
// Sum = '\sum' '_' '{' Symbol '=' Expr '}' '^' Script Term
// Limit = '\lim' '_' '{' Symbol '\to' Expr '}' Term

// Parse parses LaTeX source text into a parse tree. Ambiguous regions of the
// tree are represented by *Choice nodes.
func Parse(src string) (Node, error) {
	l := lex(src)
	toks, err := l.all()
	if err != nil {
		return nil, err
	}
	toks, unclosed := scopes(toks)
	p := parser{src: l.src, toks: toks, unclosed: unclosed}
	return p.parse()
}

type parser struct {
	// src is the normalized source text.
	src  string
	toks []Token
	// pushed holds tokens to read before toks, last first.
	pushed   []Token
	unclosed []Token
}

// next returns the next token. Alignment markers are skipped.
func (p *parser) next() Token {
	for {
		var t Token
		if n := len(p.pushed); n > 0 {
			t = p.pushed[n-1]
			p.pushed = p.pushed[:n-1]
		} else {
			t = p.toks[0]
			if t.Kind != tokenEOF {
				p.toks = p.toks[1:]
			}
		}
		if t.Kind != tokenAmp {
			return t
		}
	}
}

func (p *parser) push(t Token) {
	p.pushed = append(p.pushed, t)
}

func (p *parser) peek() Token {
	t := p.next()
	p.push(t)
	return t
}

// fail creates an error for the unexpected token t.
func (p *parser) fail(t Token, expected string) error {
	if t.Kind == tokenEOF && len(p.unclosed) > 0 {
		open := p.unclosed[len(p.unclosed)-1]
		return &LexicalScopeError{Open: open, Found: t, Context: errorContext(p.src, open.Span.Start.Offset, 30)}
	}
	found := t.Text
	if found == "" && t.Kind != tokenEOF {
		found = t.Kind.String()
	}
	return &GrammarParseError{
		At:       t.Span,
		Found:    found,
		Expected: expected,
		Context:  errorContext(p.src, t.Span.Start.Offset, 30),
	}
}

// closers are the kinds of tokens that close scopes.
var closers = map[TokenKind]bool{
	tokenRParen: true, tokenRBrack: true, tokenRBrace: true, tokenRCurly: true,
	tokenRight: true, tokenEnd: true, tokenRAngle: true, tokenCloseBar: true,
	tokenCloseDoubleBar: true,
}

var describe = map[TokenKind]string{
	tokenRParen:         `")"`,
	tokenRBrack:         `"]"`,
	tokenRBrace:         `"}"`,
	tokenRCurly:         `"\}"`,
	tokenRight:          `"\right"`,
	tokenEnd:            `"\end"`,
	tokenRAngle:         `"\rangle"`,
	tokenCloseBar:       `"|"`,
	tokenCloseDoubleBar: `"\|"`,
	tokenArgDelim:       "another argument",
	tokenArgEnd:         "end of arguments",
	tokenInnerSep:       `","`,
	tokenTo:             `"\to"`,
	tokenUnder:          `"_"`,
	tokenCaret:          `"^"`,
	tokenLBrace:         `"{"`,
}

// expect consumes a token of kind k which closes the scope opened by open.
func (p *parser) expect(k TokenKind, open Token) (Token, error) {
	t := p.next()
	if t.Kind == k {
		return t, nil
	}
	if closers[t.Kind] && open.Kind != tokenNone {
		return Token{}, &LexicalScopeError{Open: open, Found: t, Context: errorContext(p.src, t.Span.Start.Offset, 30)}
	}
	return Token{}, p.fail(t, describe[k])
}

func (p *parser) parse() (Node, error) {
	if t := p.peek(); t.Kind == tokenBegin && alignEnvs[envName(t)] {
		begin := p.next()
		sys, err := p.system(tokenEnd)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(tokenEnd, begin)
		if err != nil {
			return nil, err
		}
		if envName(end) != envName(begin) {
			return nil, &LexicalScopeError{Open: begin, Found: end, Context: errorContext(p.src, end.Span.Start.Offset, 30)}
		}
		if t := p.next(); t.Kind != tokenEOF {
			return nil, p.fail(t, "end of input")
		}
		return sys, nil
	}
	sys, err := p.system(tokenEOF)
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.Kind != tokenEOF {
		return nil, p.fail(t, "end of input")
	}
	return sys, nil
}

// system parses lines up to a token of kind end, which it leaves unread.
// Empty lines are skipped, but at least one line must be present.
func (p *parser) system(end TokenKind) (*Branch, error) {
	var kids []Node
	lines := 0
	for {
		t := p.peek()
		switch t.Kind {
		case tokenNewline, tokenExprDelim:
			kids = append(kids, leaf(p.next()))
			continue
		case end:
			if lines == 0 {
				return nil, p.fail(t, "expression")
			}
			return branch(ruleSystem, kids...), nil
		}
		line, err := p.proposition()
		if err != nil {
			return nil, err
		}
		kids = append(kids, line)
		lines++
		switch t := p.peek(); t.Kind {
		case tokenNewline, tokenExprDelim, end:
		default:
			return nil, p.fail(p.next(), "operator or end of line")
		}
	}
}

// stops are the kinds of tokens that can follow a complete expression.
var stops = map[TokenKind]bool{
	tokenRel: true, tokenNewline: true, tokenExprDelim: true, tokenEOF: true,
	tokenEnd: true, tokenRBrace: true, tokenRParen: true, tokenRBrack: true,
	tokenRCurly: true, tokenRight: true, tokenComma: true, tokenMatCol: true,
	tokenMatRow: true, tokenArgDelim: true, tokenArgEnd: true,
	tokenCloseBar: true, tokenCloseDoubleBar: true, tokenRAngle: true,
	tokenInnerSep: true, tokenDiff: true, tokenTo: true, tokenAnd: true,
	tokenOr: true, tokenXor: true, tokenXnor: true, tokenNand: true,
	tokenNor: true, tokenImplies: true, tokenImpliedBy: true, tokenIff: true,
}

// connectives are the binary connectives from loosest to tightest. The
// implication level is parsed separately because it is right associative.
var connectives = []struct {
	kind TokenKind
	rule Rule
}{
	{tokenIff, ruleIff},
	{tokenNone, ruleImplies},
	{tokenOr, ruleOr},
	{tokenNand, ruleNand},
	{tokenAnd, ruleAnd},
	{tokenNor, ruleNor},
	{tokenXor, ruleXor},
	{tokenXnor, ruleXnor},
}

// proposition parses a line, which is a relation or a formula of relations.
func (p *parser) proposition() (Node, error) {
	return p.connective(0)
}

// connective parses the binary connective at the given level of
// connectives. A chain of one connective is a single node.
func (p *parser) connective(level int) (Node, error) {
	if level == len(connectives) {
		return p.negation()
	}
	c := connectives[level]
	x, err := p.connective(level + 1)
	if err != nil {
		return nil, err
	}
	if c.rule == ruleImplies {
		switch t := p.peek(); t.Kind {
		case tokenImplies, tokenImpliedBy, tokenTo:
			p.next()
			y, err := p.connective(level)
			if err != nil {
				return nil, err
			}
			return branch(ruleImplies, x, leaf(t), y), nil
		}
		return x, nil
	}
	kids := []Node{x}
	for p.peek().Kind == c.kind {
		kids = append(kids, leaf(p.next()))
		y, err := p.connective(level + 1)
		if err != nil {
			return nil, err
		}
		kids = append(kids, y)
	}
	if len(kids) == 1 {
		return x, nil
	}
	return branch(c.rule, kids...), nil
}

func (p *parser) negation() (Node, error) {
	if t := p.peek(); t.Kind == tokenNot {
		p.next()
		x, err := p.negation()
		if err != nil {
			return nil, err
		}
		return branch(ruleNot, leaf(t), x), nil
	}
	return p.relation()
}

// relation parses a line. A missing side of a relation is a ruleEmpty node.
func (p *parser) relation() (Node, error) {
	var kids []Node
	side := func() error {
		if stops[p.peek().Kind] {
			kids = append(kids, branch(ruleEmpty))
			return nil
		}
		x, err := p.expression()
		if err != nil {
			return err
		}
		kids = append(kids, x)
		return nil
	}
	if err := side(); err != nil {
		return nil, err
	}
	for p.peek().Kind == tokenRel {
		kids = append(kids, leaf(p.next()))
		if err := side(); err != nil {
			return nil, err
		}
	}
	if len(kids) == 1 {
		if is(kids[0], ruleEmpty) {
			return nil, p.fail(p.next(), "expression")
		}
		return kids[0], nil
	}
	return branch(ruleRelation, kids...), nil
}

func (p *parser) expression() (Node, error) {
	var n Node
	var err error
	if t := p.peek(); t.Kind == tokenPlus || t.Kind == tokenMinus {
		p.next()
		n, err = p.term()
		if err != nil {
			return nil, err
		}
		n = branch(signRule(t), leaf(t), n)
	} else {
		n, err = p.term()
		if err != nil {
			return nil, err
		}
	}
	for {
		t := p.peek()
		var rule Rule
		switch t.Kind {
		case tokenPlus:
			rule = ruleAdd
		case tokenMinus:
			rule = ruleSub
		default:
			return n, nil
		}
		p.next()
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		n = branch(rule, n, leaf(t), r)
	}
}

func signRule(t Token) Rule {
	if t.Kind == tokenMinus {
		return ruleNeg
	}
	return rulePos
}

func (p *parser) term() (Node, error) {
	n, err := p.implicit()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		var rule Rule
		switch t.Kind {
		case tokenMul:
			rule = ruleMul
		case tokenDiv:
			rule = ruleDiv
		case tokenMod:
			rule = ruleMod
		default:
			return n, nil
		}
		p.next()
		r, err := p.signed()
		if err != nil {
			return nil, err
		}
		n = branch(rule, n, leaf(t), r)
	}
}

// signed parses an implicit product with any number of leading signs.
func (p *parser) signed() (Node, error) {
	if t := p.peek(); t.Kind == tokenPlus || t.Kind == tokenMinus {
		p.next()
		x, err := p.signed()
		if err != nil {
			return nil, err
		}
		return branch(signRule(t), leaf(t), x), nil
	}
	return p.implicit()
}

// startsPrimary reports whether t can begin a primary expression.
func startsPrimary(t Token) bool {
	switch t.Kind {
	case tokenNum, tokenIdent, tokenGreek, tokenConst, tokenFunc, tokenOpName,
		tokenFormat, tokenLParen, tokenLBrack, tokenLBrace, tokenLCurly,
		tokenLeft, tokenBar, tokenDoubleBar, tokenLAngle, tokenFrac,
		tokenBinom, tokenSqrt, tokenDeriv, tokenInt, tokenSum, tokenProd,
		tokenLim, tokenNabla:
		return true
	case tokenBegin:
		return matrixEnvs[envName(t)]
	}
	return false
}

func (p *parser) implicit() (Node, error) {
	first, err := p.postfix()
	if err != nil {
		return nil, err
	}
	kids := []Node{first}
	for startsPrimary(p.peek()) {
		n, err := p.postfix()
		if err != nil {
			return nil, err
		}
		kids = append(kids, n)
	}
	if len(kids) == 1 {
		return first, nil
	}
	return branch(ruleImplicit, kids...), nil
}

func (p *parser) postfix() (Node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		switch t.Kind {
		case tokenCaret:
			p.next()
			e, err := p.script()
			if err != nil {
				return nil, err
			}
			n = branch(rulePow, n, leaf(t), e)
		case tokenBang:
			n = branch(ruleFactorial, n, leaf(p.next()))
		case tokenPercent:
			n = branch(rulePercent, n, leaf(p.next()))
		case tokenPermille:
			n = branch(rulePermille, n, leaf(p.next()))
		default:
			return n, nil
		}
	}
}

// script parses a superscript or subscript: a braced expression, or a single
// atom with an optional sign. A lone * or \ast is kept as a leaf.
func (p *parser) script() (Node, error) {
	t := p.next()
	switch t.Kind {
	case tokenLBrace:
		if s := p.peek(); s.Kind == tokenMul {
			p.next()
			if _, err := p.expect(tokenRBrace, t); err != nil {
				return nil, err
			}
			return leaf(s), nil
		}
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBrace, t); err != nil {
			return nil, err
		}
		return x, nil
	case tokenPlus, tokenMinus:
		x, err := p.atom()
		if err != nil {
			return nil, err
		}
		return branch(signRule(t), leaf(t), x), nil
	case tokenMul:
		return leaf(t), nil
	}
	p.push(t)
	return p.atom()
}

// atom parses a single-rune number or identifier, or a primary.
func (p *parser) atom() (Node, error) {
	t := p.next()
	switch t.Kind {
	case tokenNum, tokenIdent:
		first, rest := splitFirst(t)
		if rest.Kind != tokenNone {
			p.push(rest)
		}
		if t.Kind == tokenNum {
			return branch(ruleNumber, leaf(first)), nil
		}
		return branch(ruleSymbol, leaf(first)), nil
	}
	p.push(t)
	return p.primary()
}

// raw consumes a braced group or a single token and returns its source text
// as a leaf.
func (p *parser) raw() (Node, error) {
	t := p.next()
	switch t.Kind {
	case tokenLBrace:
		depth := 1
		for {
			u := p.next()
			switch u.Kind {
			case tokenEOF:
				return nil, p.fail(u, describe[tokenRBrace])
			case tokenLBrace, tokenDerivArg:
				depth++
			case tokenRBrace:
				depth--
			}
			if depth == 0 {
				text := strings.TrimSpace(p.src[t.Span.End.Offset:u.Span.Start.Offset])
				if text == "" {
					return nil, p.fail(u, "subscript or argument")
				}
				return leaf(Token{Kind: tokenRaw, Text: text, Span: Span{Start: t.Span.Start, End: u.Span.End}}), nil
			}
		}
	case tokenNum, tokenIdent:
		first, rest := splitFirst(t)
		if rest.Kind != tokenNone {
			p.push(rest)
		}
		first.Kind = tokenRaw
		return leaf(first), nil
	case tokenGreek, tokenConst:
		t.Kind = tokenRaw
		return leaf(t), nil
	}
	return nil, p.fail(t, "subscript or argument")
}

func (p *parser) primary() (Node, error) {
	t := p.next()
	switch t.Kind {
	case tokenNum:
		return branch(ruleNumber, leaf(t)), nil
	case tokenConst:
		return branch(ruleConst, leaf(t)), nil
	case tokenIdent:
		return p.identifier(t)
	case tokenGreek:
		return p.decorate(leaf(t))
	case tokenFormat:
		arg, err := p.raw()
		if err != nil {
			return nil, err
		}
		f := branch(ruleFormatted, leaf(t), arg)
		if rule := operatorRule(t, arg); rule != ruleNone {
			if open := p.peek(); open.Kind == tokenLParen {
				p.next()
				g, err := p.group(open, tokenRParen)
				if err != nil {
					return nil, err
				}
				return branch(rule, f, g), nil
			}
		}
		return p.decorate(f)
	case tokenNabla:
		x, err := p.postfix()
		if err != nil {
			return nil, err
		}
		return branch(ruleGradient, leaf(t), x), nil
	case tokenLParen:
		return p.group(t, tokenRParen)
	case tokenLBrack:
		return p.group(t, tokenRBrack)
	case tokenLCurly:
		return p.group(t, tokenRCurly)
	case tokenLBrace:
		return p.brace(t)
	case tokenLeft:
		return p.left(t)
	case tokenBar:
		return p.enclosed(t, ruleAbs, tokenCloseBar)
	case tokenDoubleBar:
		return p.enclosed(t, ruleNorm, tokenCloseDoubleBar)
	case tokenLAngle:
		return p.inner(t)
	case tokenFrac:
		return p.command(t, ruleFrac)
	case tokenBinom:
		return p.command(t, ruleBinom)
	case tokenSqrt:
		return p.sqrt(t)
	case tokenFunc:
		return p.function(leaf(t))
	case tokenOpName:
		arg, err := p.raw()
		if err != nil {
			return nil, err
		}
		return p.function(branch(ruleFormatted, leaf(t), arg))
	case tokenBegin:
		return p.matrix(t)
	case tokenDeriv:
		return p.derivative(t)
	case tokenInt:
		return p.integral(t)
	case tokenSum:
		return p.bigop(t, ruleSum)
	case tokenProd:
		return p.bigop(t, ruleProduct)
	case tokenLim:
		return p.limit(t)
	}
	return nil, p.fail(t, "expression")
}

// operatorRule returns the rule of a formatted name that applies to a
// parenthesized operand, or ruleNone if the name is an ordinary symbol.
func operatorRule(cmd Token, arg Node) Rule {
	name := cmd.Text + "{" + arg.(*Leaf).Text + "}"
	switch name {
	case `\mathbf{H}`:
		return ruleHessian
	case `\mathbf{J}`:
		return ruleJacobian
	case `\mathrm{rref}`:
		return ruleRref
	}
	return ruleNone
}

// identifier parses a symbol or a call. An identifier followed by a
// parenthesized argument after whitespace is ambiguous between the two.
func (p *parser) identifier(t Token) (Node, error) {
	if open := p.peek(); open.Kind == tokenLParen {
		p.next()
		args, rp, err := p.arglist(open)
		if err != nil {
			return nil, err
		}
		call := branch(ruleCall, leaf(t), args)
		if !open.Spaced || len(args.Children) != 1 {
			return call, nil
		}
		mul := branch(ruleImplicit,
			branch(ruleSymbol, leaf(t)),
			branch(ruleGroup, leaf(open), args.Children[0], leaf(rp)),
		)
		return &Choice{Alts: []Node{mul, call}}, nil
	}
	return p.decorate(leaf(t))
}

// decorate parses the optional subscript and primes of a symbol.
func (p *parser) decorate(base Node) (Node, error) {
	kids := []Node{base}
	if u := p.peek(); u.Kind == tokenUnder {
		p.next()
		r, err := p.raw()
		if err != nil {
			return nil, err
		}
		kids = append(kids, branch(ruleSubscript, leaf(u), r))
	}
	var primes []Node
	for p.peek().Kind == tokenPrime {
		primes = append(primes, leaf(p.next()))
	}
	if len(primes) > 0 {
		kids = append(kids, branch(rulePrimes, primes...))
	}
	return branch(ruleSymbol, kids...), nil
}

// arglist parses a comma-separated argument list after its open paren.
func (p *parser) arglist(open Token) (*Branch, Token, error) {
	var args []Node
	if t := p.peek(); t.Kind == tokenRParen {
		p.next()
		return branch(ruleArgs), t, nil
	}
	for {
		x, err := p.expression()
		if err != nil {
			return nil, Token{}, err
		}
		args = append(args, x)
		t := p.next()
		switch t.Kind {
		case tokenComma:
			continue
		case tokenRParen:
			return branch(ruleArgs, args...), t, nil
		}
		if closers[t.Kind] {
			return nil, Token{}, &LexicalScopeError{Open: open, Found: t, Context: errorContext(p.src, t.Span.Start.Offset, 30)}
		}
		return nil, Token{}, p.fail(t, `"," or ")"`)
	}
}

func (p *parser) group(open Token, closer TokenKind) (Node, error) {
	x, err := p.proposition()
	if err != nil {
		return nil, err
	}
	c, err := p.expect(closer, open)
	if err != nil {
		return nil, err
	}
	return branch(ruleGroup, leaf(open), x, leaf(c)), nil
}

// brace parses a braced group. A lone identifier in braces is a unit.
func (p *parser) brace(open Token) (Node, error) {
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	c, err := p.expect(tokenRBrace, open)
	if err != nil {
		return nil, err
	}
	if b, ok := x.(*Branch); ok && b.Rule == ruleSymbol && len(b.Children) == 1 {
		if l, ok := b.Children[0].(*Leaf); ok && l.Kind == tokenIdent {
			return branch(ruleUnit, leaf(open), l, leaf(c)), nil
		}
	}
	return branch(ruleGroup, leaf(open), x, leaf(c)), nil
}

// left parses a \left ... \right group. Bars make absolute values and
// norms, and a lone matrix absorbs the delimiters into its markup.
func (p *parser) left(open Token) (Node, error) {
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	c, err := p.expect(tokenRight, open)
	if err != nil {
		return nil, err
	}
	if m, ok := x.(*Branch); ok && m.Rule == ruleMatrix {
		kids := append([]Node(nil), m.Children...)
		begin, end := kids[0].Span(), kids[len(kids)-1].Span()
		kids[0] = leaf(Token{Kind: tokenRaw, Text: p.src[open.Span.Start.Offset:begin.End.Offset], Span: Span{Start: open.Span.Start, End: begin.End}})
		kids[len(kids)-1] = leaf(Token{Kind: tokenRaw, Text: p.src[end.Start.Offset:c.Span.End.Offset], Span: Span{Start: end.Start, End: c.Span.End}})
		return branch(ruleMatrix, kids...), nil
	}
	switch delimiter(open) {
	case "|", `\vert`, `\lvert`:
		return branch(ruleAbs, leaf(open), x, leaf(c)), nil
	case `\|`, `\Vert`, `\lVert`:
		return branch(ruleNorm, leaf(open), x, leaf(c)), nil
	}
	return branch(ruleGroup, leaf(open), x, leaf(c)), nil
}

func (p *parser) enclosed(open Token, rule Rule, closer TokenKind) (Node, error) {
	x, err := p.expression()
	if err != nil {
		return nil, err
	}
	c, err := p.expect(closer, open)
	if err != nil {
		return nil, err
	}
	return branch(rule, leaf(open), x, leaf(c)), nil
}

func (p *parser) inner(open Token) (Node, error) {
	a, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenInnerSep, open); err != nil {
		return nil, err
	}
	b, err := p.expression()
	if err != nil {
		return nil, err
	}
	c, err := p.expect(tokenRAngle, open)
	if err != nil {
		return nil, err
	}
	return branch(ruleInner, leaf(open), a, b, leaf(c)), nil
}

// arg parses one argument of a multi-argument command.
func (p *parser) arg(cmd Token) (Node, error) {
	t := p.next()
	if t.Kind == tokenLBrace {
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBrace, t); err != nil {
			return nil, err
		}
		return x, nil
	}
	if t.Kind == tokenArgDelim || t.Kind == tokenArgEnd {
		return nil, p.fail(t, "argument to "+strconv.Quote(cmd.Text))
	}
	p.push(t)
	return p.primary()
}

func (p *parser) command(cmd Token, rule Rule) (Node, error) {
	a, err := p.arg(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenArgDelim, cmd); err != nil {
		return nil, err
	}
	b, err := p.arg(cmd)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(tokenArgEnd, cmd)
	if err != nil {
		return nil, err
	}
	return branch(rule, leaf(cmd), a, b, leaf(end)), nil
}

func (p *parser) sqrt(cmd Token) (Node, error) {
	kids := []Node{leaf(cmd)}
	if open := p.peek(); open.Kind == tokenLBrack {
		p.next()
		n, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBrack, open); err != nil {
			return nil, err
		}
		kids = append(kids, n)
	}
	x, err := p.arg(cmd)
	if err != nil {
		return nil, err
	}
	end, err := p.expect(tokenArgEnd, cmd)
	if err != nil {
		return nil, err
	}
	kids = append(kids, x, leaf(end))
	return branch(ruleSqrt, kids...), nil
}

// function parses a known function or \operatorname application. name is
// the function's leaf or formatted node.
func (p *parser) function(name Node) (Node, error) {
	var pow, base Node
	for {
		t := p.peek()
		if t.Kind == tokenCaret && pow == nil {
			p.next()
			x, err := p.script()
			if err != nil {
				return nil, err
			}
			pow = x
			continue
		}
		if t.Kind == tokenUnder && base == nil {
			p.next()
			x, err := p.script()
			if err != nil {
				return nil, err
			}
			base = x
			continue
		}
		break
	}
	var args *Branch
	if open := p.peek(); open.Kind == tokenLParen {
		p.next()
		a, _, err := p.arglist(open)
		if err != nil {
			return nil, err
		}
		args = a
	} else {
		var x Node
		var err error
		if t := p.peek(); t.Kind == tokenPlus || t.Kind == tokenMinus {
			p.next()
			x, err = p.postfix()
			if err != nil {
				return nil, err
			}
			x = branch(signRule(t), leaf(t), x)
		} else {
			x, err = p.postfix()
			if err != nil {
				return nil, err
			}
		}
		args = branch(ruleArgs, x)
	}
	if base != nil {
		args = branch(ruleArgs, append(args.Children[:len(args.Children):len(args.Children)], base)...)
	}
	var n Node = branch(ruleFunc, name, args)
	if pow != nil {
		n = branch(ruleFuncPow, n, pow)
	}
	return n, nil
}

func (p *parser) matrix(begin Token) (Node, error) {
	name := envName(begin)
	if !matrixEnvs[name] {
		return nil, p.fail(begin, "expression")
	}
	kids := []Node{leaf(begin)}
	var cells []Node
	for {
		x, err := p.expression()
		if err != nil {
			return nil, err
		}
		cells = append(cells, x)
		t := p.next()
		switch t.Kind {
		case tokenMatCol:
			continue
		case tokenMatRow:
			kids = append(kids, branch(ruleRow, cells...))
			cells = nil
			if e := p.peek(); e.Kind != tokenEnd {
				continue
			}
			t = p.next()
		case tokenEnd:
			kids = append(kids, branch(ruleRow, cells...))
		default:
			if closers[t.Kind] {
				return nil, &LexicalScopeError{Open: begin, Found: t, Context: errorContext(p.src, t.Span.Start.Offset, 30)}
			}
			return nil, p.fail(t, `"&", "\\", or "\end"`)
		}
		if envName(t) != name {
			return nil, &LexicalScopeError{Open: begin, Found: t, Context: errorContext(p.src, t.Span.Start.Offset, 30)}
		}
		return branch(ruleMatrix, append(kids, leaf(t))...), nil
	}
}

// differential parses dx, d followed by a symbol, or \partial followed by a
// symbol.
func (p *parser) differential() (Node, error) {
	t := p.next()
	switch t.Kind {
	case tokenDiff:
		if len(t.Text) > 1 {
			return branch(ruleDifferential, leaf(t)), nil
		}
	case tokenPartial:
	default:
		return nil, p.fail(t, "differential")
	}
	v := p.next()
	switch v.Kind {
	case tokenIdent, tokenGreek:
		x, err := p.decorate(leaf(v))
		if err != nil {
			return nil, err
		}
		return branch(ruleDifferential, leaf(t), x), nil
	}
	return nil, p.fail(v, "variable")
}

func (p *parser) derivative(op Token) (Node, error) {
	d, err := p.differential()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRBrace, op); err != nil {
		return nil, err
	}
	var arg Node
	if t := p.peek(); t.Kind == tokenDerivArg {
		p.next()
		arg, err = p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRBrace, t); err != nil {
			return nil, err
		}
	} else {
		arg, err = p.postfix()
		if err != nil {
			return nil, err
		}
	}
	return branch(ruleDerivative, leaf(op), d, arg), nil
}

// bounds parses optional subscript and superscript limits in either order.
func (p *parser) bounds() (lower, upper Node, err error) {
	for k := 0; k < 2; k++ {
		switch t := p.peek(); {
		case t.Kind == tokenUnder && lower == nil:
			p.next()
			lower, err = p.script()
		case t.Kind == tokenCaret && upper == nil:
			p.next()
			upper, err = p.script()
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return lower, upper, nil
}

func (p *parser) integral(op Token) (Node, error) {
	lower, upper, err := p.bounds()
	if err != nil {
		return nil, err
	}
	if (lower == nil) != (upper == nil) {
		return nil, p.fail(p.next(), "both integration bounds")
	}
	var body Node = branch(ruleEmpty)
	if t := p.peek(); t.Kind != tokenDiff {
		body, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	d, err := p.differential()
	if err != nil {
		return nil, err
	}
	if lower == nil {
		return branch(ruleIntegral, leaf(op), body, d), nil
	}
	return branch(ruleIntegral, leaf(op), lower, upper, body, d), nil
}

// bigop parses a sum or product. The subscript must assign the index.
func (p *parser) bigop(op Token, rule Rule) (Node, error) {
	var index, upper Node
	for k := 0; k < 2; k++ {
		t := p.peek()
		switch {
		case t.Kind == tokenUnder && index == nil:
			p.next()
			open, err := p.expect(tokenLBrace, Token{})
			if err != nil {
				return nil, err
			}
			index, err = p.relation()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokenRBrace, open); err != nil {
				return nil, err
			}
			if !isIndex(index) {
				return nil, p.fail(open, `index like "i=1"`)
			}
		case t.Kind == tokenCaret && upper == nil:
			p.next()
			x, err := p.script()
			if err != nil {
				return nil, err
			}
			upper = x
		}
	}
	if index == nil {
		return nil, p.fail(p.next(), describe[tokenUnder])
	}
	if upper == nil {
		return nil, p.fail(p.next(), describe[tokenCaret])
	}
	body, err := p.term()
	if err != nil {
		return nil, err
	}
	return branch(rule, leaf(op), index, upper, body), nil
}

// isIndex reports whether n is a relation assigning a symbol.
func isIndex(n Node) bool {
	b, ok := n.(*Branch)
	if !ok || b.Rule != ruleRelation || len(b.Children) != 3 {
		return false
	}
	op := b.Children[1].(*Leaf)
	return op.Text == "=" && is(b.Children[0], ruleSymbol) && !is(b.Children[2], ruleEmpty)
}

func (p *parser) limit(op Token) (Node, error) {
	if _, err := p.expect(tokenUnder, Token{}); err != nil {
		return nil, err
	}
	open, err := p.expect(tokenLBrace, Token{})
	if err != nil {
		return nil, err
	}
	v := p.next()
	if v.Kind != tokenIdent && v.Kind != tokenGreek {
		return nil, p.fail(v, "variable")
	}
	x, err := p.decorate(leaf(v))
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenTo, Token{}); err != nil {
		return nil, err
	}
	point, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenRBrace, open); err != nil {
		return nil, err
	}
	body, err := p.term()
	if err != nil {
		return nil, err
	}
	return branch(ruleLimit, leaf(op), x, point, body), nil
}
