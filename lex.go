package latexpr

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Pos is a position in source text. Line and Col are 1-based; Col counts
// runes.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Span is a half-open range of source text.
type Span struct {
	Start, End Pos
}

// IsZero reports whether s is the zero span, which belongs to synthesized
// nodes.
func (s Span) IsZero() bool { return s == Span{} }

// join returns the smallest span covering s and t, ignoring zero spans.
func (s Span) join(t Span) Span {
	switch {
	case s.IsZero():
		return t
	case t.IsZero():
		return s
	}
	if t.Start.Offset < s.Start.Offset {
		s.Start = t.Start
	}
	if t.End.Offset > s.End.Offset {
		s.End = t.End
	}
	return s
}

// Token is a lexical token.
type Token struct {
	Kind TokenKind
	Text string
	Span Span
	// Spaced is set if whitespace or a spacing command preceded the token.
	Spaced bool
}

func (t Token) String() string {
	return t.Kind.String() + ":" + strconv.Quote(t.Text) + "@" + t.Span.Start.String()
}

// TokenKind classifies tokens. The scope engine retags tokens whose meaning
// depends on their enclosing scope.
type TokenKind int

const (
	tokenNone TokenKind = iota
	tokenEOF
	// tokenNum is a decimal number or a 0b/0o/0x prefixed integer.
	tokenNum
	// tokenIdent is a run of letters.
	tokenIdent
	// tokenGreek is a command naming a symbol, e.g. \alpha.
	tokenGreek
	// tokenConst is \pi or \infty.
	tokenConst
	// tokenFunc is a known function command, e.g. \sin.
	tokenFunc
	tokenOpName
	// tokenFormat is a formatting macro taking one argument, e.g. \mathrm.
	tokenFormat
	tokenPlus
	tokenMinus
	tokenMul
	tokenDiv
	tokenMod
	tokenCaret
	tokenUnder
	tokenBang
	tokenPrime
	tokenPercent
	tokenPermille
	// tokenRel is a relational operator: = < > or a command like \leq.
	tokenRel
	tokenComma
	tokenSemi
	tokenColon
	tokenAmp
	// tokenNewline is \\.
	tokenNewline
	tokenLParen
	tokenRParen
	tokenLBrack
	tokenRBrack
	tokenLBrace
	tokenRBrace
	// tokenLCurly and tokenRCurly are the visible braces \{ and \}.
	tokenLCurly
	tokenRCurly
	// tokenLeft and tokenRight are \left and \right with their delimiter.
	tokenLeft
	tokenRight
	tokenBar
	tokenCloseBar
	tokenDoubleBar
	tokenCloseDoubleBar
	tokenLAngle
	tokenRAngle
	tokenInnerSep
	// tokenBegin and tokenEnd are \begin{env} and \end{env}, including an
	// array column specification.
	tokenBegin
	tokenEnd
	tokenFrac
	tokenBinom
	tokenSqrt
	// tokenArgDelim and tokenArgEnd separate and terminate the arguments of
	// a multi-argument command. They are only produced by the scope engine.
	tokenArgDelim
	tokenArgEnd
	tokenMatCol
	tokenMatRow
	tokenExprDelim
	// tokenDeriv is the opening of a derivative operator, \frac{d}{ or
	// \frac{\partial}{.
	tokenDeriv
	// tokenDiff is a differential like dx.
	tokenDiff
	tokenPartial
	// tokenDerivArg is the brace opening the argument of a derivative.
	tokenDerivArg
	tokenInt
	tokenSum
	tokenProd
	tokenLim
	tokenTo
	// tokenNot through tokenIff are propositional connectives. tokenNand
	// and tokenNor are an overlined \wedge or \vee.
	tokenNot
	tokenAnd
	tokenOr
	tokenXor
	tokenXnor
	tokenNand
	tokenNor
	tokenImplies
	tokenImpliedBy
	tokenIff
	tokenNabla
	// tokenRaw is synthesized by the parser to hold raw source text.
	tokenRaw
)

var tokenNames = [...]string{
	"None", "EOF", "Num", "Ident", "Greek", "Const", "Func", "OpName", "Format",
	"Plus", "Minus", "Mul", "Div", "Mod", "Caret", "Under", "Bang", "Prime",
	"Percent", "Permille", "Rel", "Comma", "Semi", "Colon", "Amp", "Newline",
	"LParen", "RParen", "LBrack", "RBrack", "LBrace", "RBrace", "LCurly",
	"RCurly", "Left", "Right", "Bar", "CloseBar", "DoubleBar", "CloseDoubleBar",
	"LAngle", "RAngle", "InnerSep", "Begin", "End", "Frac", "Binom", "Sqrt",
	"ArgDelim", "ArgEnd", "MatCol", "MatRow", "ExprDelim", "Deriv", "Diff",
	"Partial", "DerivArg", "Int", "Sum", "Prod", "Lim", "To", "Not", "And",
	"Or", "Xor", "Xnor", "Nand", "Nor", "Implies", "ImpliedBy", "Iff", "Nabla",
	"Raw",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// singles maps single-rune tokens to their kinds.
var singles = map[rune]TokenKind{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenMul,
	'×': tokenMul,
	'·': tokenMul,
	'/': tokenDiv,
	'÷': tokenDiv,
	'^': tokenCaret,
	'_': tokenUnder,
	'!': tokenBang,
	'\'': tokenPrime,
	'=': tokenRel,
	'<': tokenRel,
	'>': tokenRel,
	'≠': tokenRel,
	'≤': tokenRel,
	'≥': tokenRel,
	',': tokenComma,
	';': tokenSemi,
	':': tokenColon,
	'&': tokenAmp,
	'(': tokenLParen,
	')': tokenRParen,
	'[': tokenLBrack,
	']': tokenRBrack,
	'{': tokenLBrace,
	'}': tokenRBrace,
	'|': tokenBar,
	'∞': tokenConst,
}

// commands maps command names, without the backslash, to token kinds.
var commands = map[string]TokenKind{
	"cdot": tokenMul, "times": tokenMul, "ast": tokenMul,
	"div": tokenDiv,
	"bmod": tokenMod, "mod": tokenMod,
	"neq": tokenRel, "ne": tokenRel, "lt": tokenRel, "gt": tokenRel,
	"le": tokenRel, "leq": tokenRel, "leqslant": tokenRel,
	"ge": tokenRel, "geq": tokenRel, "geqslant": tokenRel,
	"pi": tokenConst, "infty": tokenConst,
	"sin": tokenFunc, "cos": tokenFunc, "tan": tokenFunc, "sec": tokenFunc,
	"csc": tokenFunc, "cot": tokenFunc, "arcsin": tokenFunc, "arccos": tokenFunc,
	"arctan": tokenFunc, "sinh": tokenFunc, "cosh": tokenFunc, "tanh": tokenFunc,
	"coth": tokenFunc, "exp": tokenFunc, "ln": tokenFunc, "log": tokenFunc,
	"min": tokenFunc, "max": tokenFunc, "det": tokenFunc, "gcd": tokenFunc,
	"operatorname": tokenOpName,
	"mathrm": tokenFormat, "mathbf": tokenFormat, "mathit": tokenFormat,
	"mathcal": tokenFormat, "mathbb": tokenFormat, "mathsf": tokenFormat,
	"mathtt": tokenFormat, "boldsymbol": tokenFormat, "pmb": tokenFormat,
	"vec": tokenFormat, "hat": tokenFormat, "bar": tokenFormat,
	"tilde": tokenFormat, "dot": tokenFormat, "ddot": tokenFormat,
	"overline": tokenFormat, "text": tokenFormat,
	"binom": tokenBinom, "dbinom": tokenBinom, "tbinom": tokenBinom,
	"frac": tokenFrac, "dfrac": tokenFrac, "tfrac": tokenFrac,
	"sqrt": tokenSqrt,
	"int": tokenInt, "sum": tokenSum, "prod": tokenProd, "lim": tokenLim,
	"to": tokenTo, "rightarrow": tokenTo,
	"partial": tokenPartial,
	"langle": tokenLAngle, "rangle": tokenRAngle,
	"lbrace": tokenLCurly, "rbrace": tokenRCurly,
	"vert": tokenBar, "lvert": tokenBar, "rvert": tokenBar,
	"Vert": tokenDoubleBar, "lVert": tokenDoubleBar, "rVert": tokenDoubleBar,
	"textperthousand": tokenPermille,
	"neg": tokenNot, "lnot": tokenNot,
	"wedge": tokenAnd, "land": tokenAnd,
	"vee": tokenOr, "lor": tokenOr,
	"oplus": tokenXor, "odot": tokenXnor,
	"implies": tokenImplies, "Rightarrow": tokenImplies,
	"Longrightarrow": tokenImplies, "longrightarrow": tokenImplies,
	"impliedby": tokenImpliedBy, "Leftarrow": tokenImpliedBy,
	"Longleftarrow": tokenImpliedBy, "longleftarrow": tokenImpliedBy,
	"leftarrow": tokenImpliedBy,
	"iff": tokenIff, "Leftrightarrow": tokenIff, "Longleftrightarrow": tokenIff,
	"longleftrightarrow": tokenIff, "leftrightarrow": tokenIff,
	"leftrightharpoons": tokenIff, "rightleftharpoons": tokenIff,
	"nabla": tokenNabla,
}

// symbolCommands are commands that name symbols.
var symbolCommands = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "varepsilon", "zeta", "eta",
	"theta", "vartheta", "iota", "kappa", "lambda", "mu", "nu", "xi", "rho",
	"varrho", "sigma", "tau", "upsilon", "phi", "varphi", "chi", "psi", "omega",
	"Gamma", "Delta", "Theta", "Lambda", "Xi", "Pi", "Sigma", "Upsilon", "Phi",
	"Psi", "Omega", "ell", "hbar", "top", "bot", "dagger",
}

// spacing commands are skipped like whitespace.
var spacing = map[string]bool{
	"quad": true, "qquad": true, "displaystyle": true, "limits": true,
	"nolimits": true, "textstyle": true,
}

func init() {
	for _, s := range symbolCommands {
		commands[s] = tokenGreek
	}
}

var (
	// derivRE matches the opening of a derivative operator up to the brace
	// of its denominator. The empty group marks the end of the token; the
	// rest only checks that the denominator starts with a differential.
	derivRE = regexp.MustCompile(`^\\[dt]?frac\s*\{\s*(d|\\partial)\s*\}\s*\{()\s*(?:d\s*[A-Za-z\\]|\\partial)`)
	envRE   = regexp.MustCompile(`^\\(begin|end)\s*\{\s*([A-Za-z]+\*?)\s*\}`)
	// leftRE matches \left or \right and its delimiter.
	leftRE = regexp.MustCompile(`^\\(left|right)\s*(\\[A-Za-z]+|\\[{}|]|[()\[\]|./<>])`)
	// overRE matches an overlined conjunction or disjunction.
	overRE = regexp.MustCompile(`^\\(?:bar|overline)\s*(?:\\(wedge|land|vee|lor)\b|\{\s*\\(wedge|land|vee|lor)\s*\})`)
)

// matrixEnvs and alignEnvs are the environment names with special scoping.
var (
	matrixEnvs = map[string]bool{
		"matrix": true, "pmatrix": true, "bmatrix": true, "Bmatrix": true,
		"vmatrix": true, "Vmatrix": true, "smallmatrix": true, "array": true,
	}
	alignEnvs = map[string]bool{
		"align": true, "align*": true, "aligned": true, "cases": true,
		"gather": true, "gather*": true, "split": true,
	}
)

// envName returns the environment name of a tokenBegin or tokenEnd token.
func envName(t Token) string {
	m := envRE.FindStringSubmatch(t.Text)
	if m == nil {
		return ""
	}
	return m[2]
}

// delimiter returns the delimiter of a tokenLeft or tokenRight token.
func delimiter(t Token) string {
	m := leftRE.FindStringSubmatch(t.Text)
	if m == nil {
		return ""
	}
	return m[2]
}

type lexState struct {
	off, line, col int
}

type lexer struct {
	src string
	lexState
}

// lex creates a lexer over the NFC normalization of src.
func lex(src string) *lexer {
	return &lexer{src: norm.NFC.String(src), lexState: lexState{line: 1, col: 1}}
}

func (l *lexer) pos() Pos {
	return Pos{Offset: l.off, Line: l.line, Col: l.col}
}

func (l *lexer) save() lexState     { return l.lexState }
func (l *lexer) restore(s lexState) { l.lexState = s }

// readRune reads a rune from the source and updates the position info.
func (l *lexer) readRune() (rune, bool) {
	if l.off >= len(l.src) {
		return 0, false
	}
	r, sz := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += sz
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r, true
}

func (l *lexer) peekRune() (rune, bool) {
	if l.off >= len(l.src) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r, true
}

// advanceTo reads runes until the offset reaches off.
func (l *lexer) advanceTo(off int) {
	for l.off < off {
		l.readRune()
	}
}

// all scans every token through EOF.
func (l *lexer) all() ([]Token, error) {
	var toks []Token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == tokenEOF {
			return toks, nil
		}
	}
}

// next scans the next token. At the end of input, the result is an EOF
// token.
func (l *lexer) next() (Token, error) {
	spaced := false
	for {
		start := l.pos()
		tok := func(k TokenKind) Token {
			return Token{Kind: k, Text: l.src[start.Offset:l.off], Span: Span{Start: start, End: l.pos()}, Spaced: spaced}
		}
		r, ok := l.readRune()
		if !ok {
			return tok(tokenEOF), nil
		}
		switch {
		case unicode.IsSpace(r), r == '~':
			spaced = true
			continue
		case r == '%':
			// Comment through the end of the line.
			for {
				r, ok := l.readRune()
				if !ok || r == '\n' {
					break
				}
			}
			spaced = true
			continue
		case '0' <= r && r <= '9', r == '.' && l.digitNext():
			l.restore(lexState{off: start.Offset, line: start.Line, col: start.Col})
			l.scanNum()
			return tok(tokenNum), nil
		case unicode.IsLetter(r):
			for {
				s := l.save()
				r, ok := l.readRune()
				if !ok {
					break
				}
				if !unicode.IsLetter(r) {
					l.restore(s)
					break
				}
			}
			return tok(tokenIdent), nil
		case r == '\\':
			k, err := l.scanCommand(start)
			if err != nil {
				return Token{}, err
			}
			if k == tokenNone {
				spaced = true
				continue
			}
			return tok(k), nil
		}
		if k, ok := singles[r]; ok {
			return tok(k), nil
		}
		return Token{}, &LexError{Text: string(r), At: Span{Start: start, End: l.pos()}}
	}
}

func (l *lexer) digitNext() bool {
	r, ok := l.peekRune()
	return ok && '0' <= r && r <= '9'
}

func isDigit(r rune, base int) bool {
	switch base {
	case 2:
		return r == '0' || r == '1'
	case 8:
		return '0' <= r && r <= '7'
	case 16:
		return '0' <= r && r <= '9' || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
	}
	return '0' <= r && r <= '9'
}

// scanNum scans a number. The caller has checked that one starts here.
func (l *lexer) scanNum() {
	s := l.save()
	if r, _ := l.readRune(); r == '0' {
		if p, ok := l.readRune(); ok {
			base := 0
			switch p {
			case 'b', 'B':
				base = 2
			case 'o', 'O':
				base = 8
			case 'x', 'X':
				base = 16
			}
			n := 0
			for base != 0 {
				t := l.save()
				r, ok := l.readRune()
				if !ok || !isDigit(r, base) {
					l.restore(t)
					break
				}
				n++
			}
			if n > 0 {
				return
			}
		}
	}
	l.restore(s)
	for l.digitNext() {
		l.readRune()
	}
	if r, ok := l.peekRune(); ok && r == '.' {
		t := l.save()
		l.readRune()
		if !l.digitNext() {
			l.restore(t)
			return
		}
		for l.digitNext() {
			l.readRune()
		}
	}
}

// scanCommand scans the remainder of a command after its backslash. The
// result is tokenNone for spacing commands.
func (l *lexer) scanCommand(start Pos) (TokenKind, error) {
	rest := l.src[start.Offset:]
	if m := leftRE.FindStringSubmatchIndex(rest); m != nil {
		l.advanceTo(start.Offset + m[1])
		if rest[m[2]:m[3]] == "left" {
			return tokenLeft, nil
		}
		return tokenRight, nil
	}
	if m := overRE.FindStringSubmatchIndex(rest); m != nil {
		l.advanceTo(start.Offset + m[1])
		op := m[2:4]
		if op[0] < 0 {
			op = m[4:6]
		}
		switch rest[op[0]:op[1]] {
		case "wedge", "land":
			return tokenNand, nil
		}
		return tokenNor, nil
	}
	if m := envRE.FindStringSubmatchIndex(rest); m != nil {
		l.advanceTo(start.Offset + m[1])
		if rest[m[2]:m[3]] == "end" {
			return tokenEnd, nil
		}
		if rest[m[4]:m[5]] == "array" {
			l.scanColspec()
		}
		return tokenBegin, nil
	}
	if m := derivRE.FindStringSubmatchIndex(rest); m != nil {
		l.advanceTo(start.Offset + m[4])
		return tokenDeriv, nil
	}
	r, ok := l.readRune()
	if !ok {
		return tokenNone, &LexError{Text: `\`, Kind: "command", At: Span{Start: start, End: l.pos()}}
	}
	if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
		switch r {
		case '\\':
			return tokenNewline, nil
		case '{':
			return tokenLCurly, nil
		case '}':
			return tokenRCurly, nil
		case '|':
			return tokenDoubleBar, nil
		case '%':
			return tokenPercent, nil
		case ',', ';', ':', '!', ' ', '>', '\n', '\t':
			return tokenNone, nil
		}
		return tokenNone, &LexError{Text: `\` + string(r), Kind: "command", At: Span{Start: start, End: l.pos()}}
	}
	for {
		s := l.save()
		r, ok := l.readRune()
		if !ok {
			break
		}
		if !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z') {
			l.restore(s)
			break
		}
	}
	name := l.src[start.Offset+1 : l.off]
	if k, ok := commands[name]; ok {
		return k, nil
	}
	if spacing[name] {
		return tokenNone, nil
	}
	return tokenNone, &LexError{Text: `\` + name, Kind: "command", At: Span{Start: start, End: l.pos()}}
}

// scanColspec consumes an array column specification like {r | c}, if one
// follows.
func (l *lexer) scanColspec() {
	s := l.save()
	for {
		r, ok := l.peekRune()
		if !ok || !unicode.IsSpace(r) {
			break
		}
		l.readRune()
	}
	if r, ok := l.readRune(); !ok || r != '{' {
		l.restore(s)
		return
	}
	depth := 1
	for depth > 0 {
		r, ok := l.readRune()
		if !ok {
			l.restore(s)
			return
		}
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		}
	}
}

// compact removes whitespace from markup so that equivalent markup compares
// equal.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// LexError indicates an invalid token. It implements InputError.
type LexError struct {
	// Text is the invalid text.
	Text string
	// Kind is the type of token the lexer was scanning, e.g. "command", or
	// the empty string if a token kind hadn't been decided.
	Kind string
	// At is the location of the invalid text.
	At Span
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.At.Start, "invalid token "+strconv.Quote(err.Text))
	}
	return errpos(err.At.Start, "invalid "+err.Kind+" token "+strconv.Quote(err.Text))
}

func (err *LexError) Span() Span {
	return err.At
}
