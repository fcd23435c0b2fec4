package latexpr

import (
	"strings"
	"unicode/utf8"
)

type scopeKind int8

const (
	scopePlain scopeKind = iota
	scopeParity
	scopeArgs
	scopeMatrix
	scopeAlign
	scopeDeriv
	scopeIntegral
	scopeAngle
)

// scope is a lexical scope: a region between an opening token and a closing
// token within which some tokens change meaning.
type scope struct {
	kind scopeKind
	open Token
	// remap retags tokens inside the scope but not inside nested scopes.
	remap map[TokenKind]TokenKind
	// diff retags identifiers starting with d as differentials.
	diff   bool
	closes func(Token) bool
	// arity and optional describe commands taking braced arguments.
	arity    int
	optional bool
}

func closesOn(k TokenKind) func(Token) bool {
	return func(t Token) bool { return t.Kind == k }
}

func plainScope(open Token, close TokenKind) *scope {
	return &scope{kind: scopePlain, open: open, closes: closesOn(close)}
}

var (
	parityBar   = map[TokenKind]TokenKind{tokenBar: tokenCloseBar}
	parityNorm  = map[TokenKind]TokenKind{tokenDoubleBar: tokenCloseDoubleBar}
	matrixRemap = map[TokenKind]TokenKind{tokenAmp: tokenMatCol, tokenNewline: tokenMatRow}
	alignRemap  = map[TokenKind]TokenKind{tokenNewline: tokenExprDelim}
	angleRemap  = map[TokenKind]TokenKind{tokenComma: tokenInnerSep, tokenBar: tokenInnerSep}
)

// opens returns the scope that t opens, or nil if it opens none.
func opens(t Token) *scope {
	switch t.Kind {
	case tokenLParen:
		return plainScope(t, tokenRParen)
	case tokenLBrack:
		return plainScope(t, tokenRBrack)
	case tokenLBrace, tokenDerivArg:
		return plainScope(t, tokenRBrace)
	case tokenLCurly:
		return plainScope(t, tokenRCurly)
	case tokenLeft:
		return plainScope(t, tokenRight)
	case tokenBar:
		return &scope{kind: scopeParity, open: t, remap: parityBar, closes: closesOn(tokenCloseBar)}
	case tokenDoubleBar:
		return &scope{kind: scopeParity, open: t, remap: parityNorm, closes: closesOn(tokenCloseDoubleBar)}
	case tokenLAngle:
		return &scope{kind: scopeAngle, open: t, remap: angleRemap, closes: closesOn(tokenRAngle)}
	case tokenFrac, tokenBinom:
		return &scope{kind: scopeArgs, open: t, arity: 2}
	case tokenSqrt:
		return &scope{kind: scopeArgs, open: t, arity: 1, optional: true}
	case tokenBegin:
		name := envName(t)
		sc := &scope{kind: scopePlain, open: t, closes: func(u Token) bool {
			return u.Kind == tokenEnd && envName(u) == name
		}}
		switch {
		case matrixEnvs[name]:
			sc.kind, sc.remap = scopeMatrix, matrixRemap
		case alignEnvs[name]:
			sc.kind, sc.remap = scopeAlign, alignRemap
		}
		return sc
	case tokenDeriv:
		return &scope{kind: scopeDeriv, open: t, diff: true, closes: closesOn(tokenRBrace)}
	case tokenInt:
		return &scope{kind: scopeIntegral, open: t, diff: true, closes: closesOn(tokenDiff)}
	}
	return nil
}

// scopeEngine rewrites a token stream so that the grammar can be context
// free. It retags tokens according to their enclosing scopes and injects
// sentinels between the arguments of multi-argument commands.
type scopeEngine struct {
	in []Token
	// pending holds tokens to read before in, last first.
	pending []Token
	out     []Token
	// open holds the tokens that opened the scopes currently entered.
	open []Token
}

// scopes runs the scope engine over tokens ending in an EOF token. The
// returned unclosed tokens opened scopes that the input never closed,
// innermost last.
func scopes(toks []Token) (out, unclosed []Token) {
	e := scopeEngine{in: toks}
	e.body(&scope{kind: scopePlain, closes: func(Token) bool { return false }})
	e.out = append(e.out, toks[len(toks)-1])
	return e.out, e.open
}

// take returns the next token, or false at EOF.
func (e *scopeEngine) take() (Token, bool) {
	if n := len(e.pending); n > 0 {
		t := e.pending[n-1]
		e.pending = e.pending[:n-1]
		return t, true
	}
	if len(e.in) == 0 || e.in[0].Kind == tokenEOF {
		return Token{}, false
	}
	t := e.in[0]
	e.in = e.in[1:]
	return t, true
}

func (e *scopeEngine) untake(t Token) {
	e.pending = append(e.pending, t)
}

func (e *scopeEngine) emit(t Token) {
	e.out = append(e.out, t)
}

// sentinel emits a zero-width token at the end of the last emitted token.
func (e *scopeEngine) sentinel(k TokenKind) {
	var p Pos
	if n := len(e.out); n > 0 {
		p = e.out[n-1].Span.End
	}
	e.emit(Token{Kind: k, Span: Span{Start: p, End: p}})
}

// body processes tokens until sc closes. It returns false if the input ended
// first.
func (e *scopeEngine) body(sc *scope) bool {
	for {
		t, ok := e.take()
		if !ok {
			return false
		}
		if k, ok := sc.remap[t.Kind]; ok {
			t.Kind = k
		}
		if sc.diff && t.Kind == tokenIdent && strings.HasPrefix(t.Text, "d") {
			t.Kind = tokenDiff
		}
		e.emit(t)
		if child := opens(t); child != nil {
			if !e.enter(child) {
				return false
			}
			continue
		}
		if sc.closes(t) {
			return true
		}
	}
}

// enter processes a nested scope whose opening token has been emitted.
func (e *scopeEngine) enter(sc *scope) bool {
	e.open = append(e.open, sc.open)
	var ok bool
	if sc.kind == scopeArgs {
		ok = e.args(sc)
	} else {
		ok = e.body(sc)
	}
	if !ok {
		return false
	}
	e.open = e.open[:len(e.open)-1]
	if sc.kind == scopeDeriv {
		t, ok := e.take()
		if !ok {
			return true
		}
		if t.Kind != tokenLBrace {
			e.untake(t)
			return true
		}
		t.Kind = tokenDerivArg
		e.emit(t)
		return e.enter(opens(t))
	}
	return true
}

// args forwards one balanced group per argument of a command like \frac.
// Multi-rune numbers and identifiers contribute only their first rune, as
// in \frac12.
func (e *scopeEngine) args(sc *scope) bool {
	if sc.optional {
		t, ok := e.take()
		if !ok {
			return false
		}
		if t.Kind == tokenLBrack {
			e.emit(t)
			if !e.enter(opens(t)) {
				return false
			}
		} else {
			e.untake(t)
		}
	}
	for k := 0; k < sc.arity; k++ {
		if k > 0 {
			e.sentinel(tokenArgDelim)
		}
		t, ok := e.take()
		if !ok {
			return false
		}
		if t.Kind == tokenNum || t.Kind == tokenIdent {
			var rest Token
			t, rest = splitFirst(t)
			if rest.Kind != tokenNone {
				e.untake(rest)
			}
		}
		e.emit(t)
		if child := opens(t); child != nil {
			if !e.enter(child) {
				return false
			}
		}
	}
	e.sentinel(tokenArgEnd)
	return true
}

// splitFirst splits a token into its first rune and the remainder. If the
// token is a single rune, rest has kind tokenNone.
func splitFirst(t Token) (first, rest Token) {
	_, sz := utf8.DecodeRuneInString(t.Text)
	if sz == len(t.Text) {
		return t, Token{}
	}
	mid := Pos{Offset: t.Span.Start.Offset + sz, Line: t.Span.Start.Line, Col: t.Span.Start.Col + 1}
	first = Token{Kind: t.Kind, Text: t.Text[:sz], Span: Span{Start: t.Span.Start, End: mid}, Spaced: t.Spaced}
	rest = Token{Kind: t.Kind, Text: t.Text[sz:], Span: Span{Start: mid, End: t.Span.End}}
	return first, rest
}
