package latexpr

import (
	"testing"
)

func TestScopes(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		kinds []TokenKind
		open  int
	}{
		{"plain", "(a)", []TokenKind{tokenLParen, tokenIdent, tokenRParen}, 0},
		{"abs", "|x|", []TokenKind{tokenBar, tokenIdent, tokenCloseBar}, 0},
		{"abs-nested", "(|x|)", []TokenKind{tokenLParen, tokenBar, tokenIdent, tokenCloseBar, tokenRParen}, 0},
		{"abs-in-abs", "|a (|b|)|", []TokenKind{tokenBar, tokenIdent, tokenLParen, tokenBar, tokenIdent, tokenCloseBar, tokenRParen, tokenCloseBar}, 0},
		{"norm", `\|v\|`, []TokenKind{tokenDoubleBar, tokenIdent, tokenCloseDoubleBar}, 0},
		{"abs-unclosed", "|x", []TokenKind{tokenBar, tokenIdent}, 1},
		{"paren-unclosed", "((x)", []TokenKind{tokenLParen, tokenLParen, tokenIdent, tokenRParen}, 1},
		{"frac", `\frac{a}{b}`, []TokenKind{tokenFrac, tokenLBrace, tokenIdent, tokenRBrace, tokenArgDelim, tokenLBrace, tokenIdent, tokenRBrace, tokenArgEnd}, 0},
		{"frac-digits", `\frac12`, []TokenKind{tokenFrac, tokenNum, tokenArgDelim, tokenNum, tokenArgEnd}, 0},
		{"frac-letters", `\frac ab c`, []TokenKind{tokenFrac, tokenIdent, tokenArgDelim, tokenIdent, tokenArgEnd, tokenIdent}, 0},
		{"binom", `\binom{n}k`, []TokenKind{tokenBinom, tokenLBrace, tokenIdent, tokenRBrace, tokenArgDelim, tokenIdent, tokenArgEnd}, 0},
		{"sqrt", `\sqrt{x}`, []TokenKind{tokenSqrt, tokenLBrace, tokenIdent, tokenRBrace, tokenArgEnd}, 0},
		{"sqrt-index", `\sqrt[3]{x}`, []TokenKind{tokenSqrt, tokenLBrack, tokenNum, tokenRBrack, tokenLBrace, tokenIdent, tokenRBrace, tokenArgEnd}, 0},
		{"frac-unclosed", `\frac{a}`, []TokenKind{tokenFrac, tokenLBrace, tokenIdent, tokenRBrace, tokenArgDelim}, 1},
		{
			"matrix",
			`\begin{matrix} a & b \\ c & d \end{matrix}`,
			[]TokenKind{tokenBegin, tokenIdent, tokenMatCol, tokenIdent, tokenMatRow, tokenIdent, tokenMatCol, tokenIdent, tokenEnd},
			0,
		},
		{
			"matrix-nested-paren",
			`\begin{pmatrix} (a & b) \end{pmatrix}`,
			[]TokenKind{tokenBegin, tokenLParen, tokenIdent, tokenAmp, tokenIdent, tokenRParen, tokenEnd},
			0,
		},
		{
			"align",
			`\begin{align} a &= b \\ c &= d \end{align}`,
			[]TokenKind{tokenBegin, tokenIdent, tokenAmp, tokenRel, tokenIdent, tokenExprDelim, tokenIdent, tokenAmp, tokenRel, tokenIdent, tokenEnd},
			0,
		},
		{
			"matrix-wrong-end",
			`\begin{matrix} a \end{bmatrix}`,
			[]TokenKind{tokenBegin, tokenIdent, tokenEnd},
			1,
		},
		{"newline-outside", `a \\ b`, []TokenKind{tokenIdent, tokenNewline, tokenIdent}, 0},
		{"deriv", `\frac{d}{dx} x`, []TokenKind{tokenDeriv, tokenDiff, tokenRBrace, tokenIdent}, 0},
		{"deriv-arg", `\frac{d}{dx}{x}`, []TokenKind{tokenDeriv, tokenDiff, tokenRBrace, tokenDerivArg, tokenIdent, tokenRBrace}, 0},
		{"integral", `\int x dx`, []TokenKind{tokenInt, tokenIdent, tokenDiff}, 0},
		{"integral-bounds", `\int_0^1 t dt`, []TokenKind{tokenInt, tokenUnder, tokenNum, tokenCaret, tokenNum, tokenIdent, tokenDiff}, 0},
		{"integral-unclosed", `\int x`, []TokenKind{tokenInt, tokenIdent}, 1},
		{"angle", `\langle a, b \rangle`, []TokenKind{tokenLAngle, tokenIdent, tokenInnerSep, tokenIdent, tokenRAngle}, 0},
		{"angle-bar", `\langle a | b \rangle`, []TokenKind{tokenLAngle, tokenIdent, tokenInnerSep, tokenIdent, tokenRAngle}, 0},
		{"angle-call", `\langle f(a, b), c \rangle`, []TokenKind{tokenLAngle, tokenIdent, tokenLParen, tokenIdent, tokenComma, tokenIdent, tokenRParen, tokenInnerSep, tokenIdent, tokenRAngle}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			toks, err := lex(c.src).all()
			if err != nil {
				t.Fatal(err)
			}
			out, unclosed := scopes(toks)
			if last := out[len(out)-1]; last.Kind != tokenEOF {
				t.Errorf("last token is %v, not EOF", last)
			}
			out = out[:len(out)-1]
			if len(out) != len(c.kinds) {
				t.Fatalf("want %v, got %v", c.kinds, out)
			}
			for i, k := range c.kinds {
				if out[i].Kind != k {
					t.Errorf("token %d: want %v, got %v", i, k, out[i])
				}
			}
			if len(unclosed) != c.open {
				t.Errorf("want %d unclosed scopes, got %v", c.open, unclosed)
			}
		})
	}
}

func TestScopeSentinels(t *testing.T) {
	toks, err := lex(`\frac12`).all()
	if err != nil {
		t.Fatal(err)
	}
	out, _ := scopes(toks)
	// \frac 1 ArgDelim 2 ArgEnd EOF
	if len(out) != 6 {
		t.Fatalf("want 6 tokens, got %v", out)
	}
	if out[1].Text != "1" || out[3].Text != "2" {
		t.Errorf("digits not split: %v", out)
	}
	if out[3].Span.Start.Col != 7 || out[3].Span.End.Col != 8 {
		t.Errorf("wrong span for split digit: %v", out[3].Span)
	}
	if d := out[2]; d.Span.Start != out[1].Span.End || d.Span.End != out[1].Span.End {
		t.Errorf("delimiter %v should be empty at the end of %v", d.Span, out[1].Span)
	}
}
