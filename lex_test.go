package latexpr

import (
	"errors"
	"testing"
)

// lexed is the kind and text of a token, without position.
type lexed struct {
	kind TokenKind
	text string
}

func TestLex(t *testing.T) {
	cases := []struct {
		src    string
		tokens []lexed
	}{
		// spaces
		{"", nil},
		{" \t \r\n ~", nil},
		{`\, \; \quad \qquad \displaystyle`, nil},
		{"% comment only", nil},
		// numbers
		{"0", []lexed{{tokenNum, "0"}}},
		{"9876543210", []lexed{{tokenNum, "9876543210"}}},
		{"1 0", []lexed{{tokenNum, "1"}, {tokenNum, "0"}}},
		{"3.14", []lexed{{tokenNum, "3.14"}}},
		{".5", []lexed{{tokenNum, ".5"}}},
		{"0x1F", []lexed{{tokenNum, "0x1F"}}},
		{"0b101", []lexed{{tokenNum, "0b101"}}},
		{"0o17", []lexed{{tokenNum, "0o17"}}},
		{"0b102", []lexed{{tokenNum, "0b10"}, {tokenNum, "2"}}},
		{"0x", []lexed{{tokenNum, "0"}, {tokenIdent, "x"}}},
		{"2x", []lexed{{tokenNum, "2"}, {tokenIdent, "x"}}},
		{"50\\%", []lexed{{tokenNum, "50"}, {tokenPercent, `\%`}}},
		{`5\textperthousand`, []lexed{{tokenNum, "5"}, {tokenPermille, `\textperthousand`}}},
		// identifiers
		{"x", []lexed{{tokenIdent, "x"}}},
		{"kg", []lexed{{tokenIdent, "kg"}}},
		{"αβ", []lexed{{tokenIdent, "αβ"}}},
		{"e\u0301", []lexed{{tokenIdent, "\u00e9"}}},
		{"x % comment\ny", []lexed{{tokenIdent, "x"}, {tokenIdent, "y"}}},
		{`\alpha`, []lexed{{tokenGreek, `\alpha`}}},
		{`\Omega`, []lexed{{tokenGreek, `\Omega`}}},
		{`\pi`, []lexed{{tokenConst, `\pi`}}},
		{"∞", []lexed{{tokenConst, "∞"}}},
		{`\sin x`, []lexed{{tokenFunc, `\sin`}, {tokenIdent, "x"}}},
		{`\operatorname{f}`, []lexed{{tokenOpName, `\operatorname`}, {tokenLBrace, "{"}, {tokenIdent, "f"}, {tokenRBrace, "}"}}},
		{`\mathrm{kg}`, []lexed{{tokenFormat, `\mathrm`}, {tokenLBrace, "{"}, {tokenIdent, "kg"}, {tokenRBrace, "}"}}},
		// operators
		{"a+b-c", []lexed{{tokenIdent, "a"}, {tokenPlus, "+"}, {tokenIdent, "b"}, {tokenMinus, "-"}, {tokenIdent, "c"}}},
		{`a \cdot b`, []lexed{{tokenIdent, "a"}, {tokenMul, `\cdot`}, {tokenIdent, "b"}}},
		{"2×3", []lexed{{tokenNum, "2"}, {tokenMul, "×"}, {tokenNum, "3"}}},
		{"a/b", []lexed{{tokenIdent, "a"}, {tokenDiv, "/"}, {tokenIdent, "b"}}},
		{`a \bmod b`, []lexed{{tokenIdent, "a"}, {tokenMod, `\bmod`}, {tokenIdent, "b"}}},
		{"x^2", []lexed{{tokenIdent, "x"}, {tokenCaret, "^"}, {tokenNum, "2"}}},
		{"x_1", []lexed{{tokenIdent, "x"}, {tokenUnder, "_"}, {tokenNum, "1"}}},
		{"f''", []lexed{{tokenIdent, "f"}, {tokenPrime, "'"}, {tokenPrime, "'"}}},
		{"5!", []lexed{{tokenNum, "5"}, {tokenBang, "!"}}},
		{`a \le b`, []lexed{{tokenIdent, "a"}, {tokenRel, `\le`}, {tokenIdent, "b"}}},
		{"a≠b", []lexed{{tokenIdent, "a"}, {tokenRel, "≠"}, {tokenIdent, "b"}}},
		// delimiters
		{"()[]{}", []lexed{{tokenLParen, "("}, {tokenRParen, ")"}, {tokenLBrack, "["}, {tokenRBrack, "]"}, {tokenLBrace, "{"}, {tokenRBrace, "}"}}},
		{`\{\}`, []lexed{{tokenLCurly, `\{`}, {tokenRCurly, `\}`}}},
		{`|x|`, []lexed{{tokenBar, "|"}, {tokenIdent, "x"}, {tokenBar, "|"}}},
		{`\|x\|`, []lexed{{tokenDoubleBar, `\|`}, {tokenIdent, "x"}, {tokenDoubleBar, `\|`}}},
		{`\left( x \right)`, []lexed{{tokenLeft, `\left(`}, {tokenIdent, "x"}, {tokenRight, `\right)`}}},
		{`\left\{ x \right.`, []lexed{{tokenLeft, `\left\{`}, {tokenIdent, "x"}, {tokenRight, `\right.`}}},
		{`\langle a, b \rangle`, []lexed{{tokenLAngle, `\langle`}, {tokenIdent, "a"}, {tokenComma, ","}, {tokenIdent, "b"}, {tokenRAngle, `\rangle`}}},
		{`a \\ b`, []lexed{{tokenIdent, "a"}, {tokenNewline, `\\`}, {tokenIdent, "b"}}},
		// environments
		{`\begin{pmatrix}`, []lexed{{tokenBegin, `\begin{pmatrix}`}}},
		{`\begin { align* }`, []lexed{{tokenBegin, `\begin { align* }`}}},
		{`\begin{array}{c|c} 1`, []lexed{{tokenBegin, `\begin{array}{c|c}`}, {tokenNum, "1"}}},
		{`\end{bmatrix}`, []lexed{{tokenEnd, `\end{bmatrix}`}}},
		// commands with arguments
		{`\frac{1}{2}`, []lexed{{tokenFrac, `\frac`}, {tokenLBrace, "{"}, {tokenNum, "1"}, {tokenRBrace, "}"}, {tokenLBrace, "{"}, {tokenNum, "2"}, {tokenRBrace, "}"}}},
		{`\frac{d}{dx}`, []lexed{{tokenDeriv, `\frac{d}{`}, {tokenIdent, "dx"}, {tokenRBrace, "}"}}},
		{`\dfrac{\partial}{\partial y}`, []lexed{{tokenDeriv, `\dfrac{\partial}{`}, {tokenPartial, `\partial`}, {tokenIdent, "y"}, {tokenRBrace, "}"}}},
		{`\frac{d}{2}`, []lexed{{tokenFrac, `\frac`}, {tokenLBrace, "{"}, {tokenIdent, "d"}, {tokenRBrace, "}"}, {tokenLBrace, "{"}, {tokenNum, "2"}, {tokenRBrace, "}"}}},
		{`\binom{n}{k}`, []lexed{{tokenBinom, `\binom`}, {tokenLBrace, "{"}, {tokenIdent, "n"}, {tokenRBrace, "}"}, {tokenLBrace, "{"}, {tokenIdent, "k"}, {tokenRBrace, "}"}}},
		{`\sqrt[3]{x}`, []lexed{{tokenSqrt, `\sqrt`}, {tokenLBrack, "["}, {tokenNum, "3"}, {tokenRBrack, "]"}, {tokenLBrace, "{"}, {tokenIdent, "x"}, {tokenRBrace, "}"}}},
		{`\int \sum \prod \lim \to`, []lexed{{tokenInt, `\int`}, {tokenSum, `\sum`}, {tokenProd, `\prod`}, {tokenLim, `\lim`}, {tokenTo, `\to`}}},
		{`\nabla f`, []lexed{{tokenNabla, `\nabla`}, {tokenIdent, "f"}}},
		// connectives
		{`\neg a \wedge b`, []lexed{{tokenNot, `\neg`}, {tokenIdent, "a"}, {tokenAnd, `\wedge`}, {tokenIdent, "b"}}},
		{`\lor \oplus \odot`, []lexed{{tokenOr, `\lor`}, {tokenXor, `\oplus`}, {tokenXnor, `\odot`}}},
		{`a \bar \wedge b`, []lexed{{tokenIdent, "a"}, {tokenNand, `\bar \wedge`}, {tokenIdent, "b"}}},
		{`\overline{\vee}`, []lexed{{tokenNor, `\overline{\vee}`}}},
		{`\overline{v}`, []lexed{{tokenFormat, `\overline`}, {tokenLBrace, "{"}, {tokenIdent, "v"}, {tokenRBrace, "}"}}},
		{`\implies \Longleftarrow \iff \rightleftharpoons`, []lexed{{tokenImplies, `\implies`}, {tokenImpliedBy, `\Longleftarrow`}, {tokenIff, `\iff`}, {tokenIff, `\rightleftharpoons`}}},
		{`\leftarrow \rightarrow`, []lexed{{tokenImpliedBy, `\leftarrow`}, {tokenTo, `\rightarrow`}}},
	}
	for _, c := range cases {
		toks, err := lex(c.src).all()
		if err != nil {
			t.Errorf("scanning %q: unexpected error %v", c.src, err)
			continue
		}
		if last := toks[len(toks)-1]; last.Kind != tokenEOF {
			t.Errorf("scanning %q: last token is %v, not EOF", c.src, last)
			continue
		}
		toks = toks[:len(toks)-1]
		if len(toks) != len(c.tokens) {
			t.Errorf("scanning %q: want %d tokens, got %v", c.src, len(c.tokens), toks)
			continue
		}
		for i, want := range c.tokens {
			got := lexed{toks[i].Kind, toks[i].Text}
			if got != want {
				t.Errorf("scanning %q: token %d: want %v %q, got %v %q", c.src, i, want.kind, want.text, got.kind, got.text)
			}
		}
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		text string
		kind string
		col  int
	}{
		{"$", "$", "", 1},
		{"a$", "$", "", 2},
		{"1.", ".", "", 2},
		{`\foo`, `\foo`, "command", 1},
		{`x + \#`, `\#`, "command", 5},
		{`\`, `\`, "command", 1},
		{`\bar \veebar`, `\veebar`, "command", 6},
	}
	for _, c := range cases {
		_, err := lex(c.src).all()
		var lerr *LexError
		if !errors.As(err, &lerr) {
			t.Errorf("scanning %q: want LexError, got %v", c.src, err)
			continue
		}
		if lerr.Text != c.text || lerr.Kind != c.kind {
			t.Errorf("scanning %q: want %q (%q), got %q (%q)", c.src, c.text, c.kind, lerr.Text, lerr.Kind)
		}
		if lerr.At.Start.Col != c.col {
			t.Errorf("scanning %q: want error at column %d, got %v", c.src, c.col, lerr.At.Start)
		}
	}
}

func TestLexPositions(t *testing.T) {
	toks, err := lex("αβ x\n  \\sin y").all()
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		text       string
		start, end Pos
		spaced     bool
	}{
		{"αβ", Pos{0, 1, 1}, Pos{4, 1, 3}, false},
		{"x", Pos{5, 1, 4}, Pos{6, 1, 5}, true},
		{`\sin`, Pos{9, 2, 3}, Pos{13, 2, 7}, true},
		{"y", Pos{14, 2, 8}, Pos{15, 2, 9}, true},
		{"", Pos{15, 2, 9}, Pos{15, 2, 9}, false},
	}
	if len(toks) != len(want) {
		t.Fatalf("want %d tokens, got %v", len(want), toks)
	}
	for i, w := range want {
		got := toks[i]
		if got.Text != w.text || got.Span.Start != w.start || got.Span.End != w.end || got.Spaced != w.spaced {
			t.Errorf("token %d: want %q %v-%v spaced=%t, got %q %v-%v spaced=%t", i, w.text, w.start, w.end, w.spaced, got.Text, got.Span.Start, got.Span.End, got.Spaced)
		}
	}
}

func TestSpanJoin(t *testing.T) {
	a := Span{Start: Pos{0, 1, 1}, End: Pos{2, 1, 3}}
	b := Span{Start: Pos{5, 1, 6}, End: Pos{7, 1, 8}}
	if got := a.join(b); got.Start != a.Start || got.End != b.End {
		t.Errorf("joining %v and %v: got %v", a, b, got)
	}
	if got := (Span{}).join(b); got != b {
		t.Errorf("joining zero span and %v: got %v", b, got)
	}
	if got := a.join(Span{}); got != a {
		t.Errorf("joining %v and zero span: got %v", a, got)
	}
}
