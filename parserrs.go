package latexpr

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// LexicalScopeError is an error indicating a scope that was opened but never
// closed, or that was closed by the wrong delimiter. It implements
// InputError.
type LexicalScopeError struct {
	// Open is the token that opened the scope.
	Open Token
	// Found is the token that appeared where the scope's closer was
	// expected. It is an EOF token for unterminated scopes.
	Found Token
	// Context is a window of source text around Found with a caret line.
	Context string
}

func (err *LexicalScopeError) Error() string {
	if err.Found.Kind == tokenEOF {
		return errpos(err.Open.Span.Start, "unterminated "+strconv.Quote(err.Open.Text))
	}
	return errpos(err.Found.Span.Start, "mismatched "+strconv.Quote(err.Found.Text)+" closing "+strconv.Quote(err.Open.Text)+" at "+err.Open.Span.Start.String())
}

func (err *LexicalScopeError) Span() Span {
	if err.Found.Kind == tokenEOF {
		return err.Open.Span
	}
	return err.Found.Span
}

// GrammarParseError is an error indicating a token sequence that the grammar
// does not accept. It implements InputError.
type GrammarParseError struct {
	// At is the span of the offending token.
	At Span
	// Found is the text of the offending token, or the empty string at the
	// end of input.
	Found string
	// Expected describes what the parser would have accepted.
	Expected string
	// Context is a window of source text around the error with a caret line.
	Context string
}

func (err *GrammarParseError) Error() string {
	var b strings.Builder
	if err.Found == "" {
		b.WriteString("unexpected end of input")
	} else {
		b.WriteString("unexpected " + strconv.Quote(err.Found))
	}
	if err.Expected != "" {
		b.WriteString(", expected " + err.Expected)
	}
	return errpos(err.At.Start, b.String())
}

func (err *GrammarParseError) Span() Span {
	return err.At
}

// UnknownSymbolError is an error indicating a name that strict compilation
// could not resolve. It implements InputError.
type UnknownSymbolError struct {
	Name string
	At   Span
}

func (err *UnknownSymbolError) Error() string {
	return errpos(err.At.Start, "unknown symbol "+strconv.Quote(err.Name))
}

func (err *UnknownSymbolError) Span() Span {
	return err.At
}

// ArityMismatchError is an error indicating a call with the wrong number of
// arguments. It implements InputError.
type ArityMismatchError struct {
	// Name is the function that was called.
	Name string
	// Want and Got are the declared and supplied argument counts. Want is
	// negative for functions that accept several counts.
	Want, Got int
	At        Span
}

func (err *ArityMismatchError) Error() string {
	msg := "cannot call " + err.Name + " with " + strconv.Itoa(err.Got) + " arguments"
	if err.Want >= 0 {
		msg += ", want " + strconv.Itoa(err.Want)
	}
	if err.At.IsZero() {
		return msg
	}
	return errpos(err.At.Start, msg)
}

func (err *ArityMismatchError) Span() Span {
	return err.At
}

// CyclicDefinitionError is an error indicating variable definitions that
// depend on each other, or a user-defined function that calls itself.
type CyclicDefinitionError struct {
	// Members are the names in the cycle, sorted. Only variables are listed
	// when the cycle passes through variable definitions, even when it also
	// runs through function bodies. A function that calls itself, directly
	// or through other functions, is reported alone by its own name: f(x)=f(x)
	// gives [f], and f(x)=g(x) with g(x)=f(x) gives the name of whichever was
	// called first.
	Members []string
}

func (err *CyclicDefinitionError) Error() string {
	return "cyclic definition among " + strings.Join(err.Members, ", ")
}

// EnvironmentError is an error indicating an invalid environment.
type EnvironmentError struct {
	// Field is the environment key at fault.
	Field string
	Msg   string
}

func (err *EnvironmentError) Error() string {
	return "environment: " + err.Field + ": " + err.Msg
}

// DefinitionError wraps an error that occurred while compiling the
// definition of a variable or function.
type DefinitionError struct {
	Name string
	Err  error
}

func (err *DefinitionError) Error() string {
	return "in definition of " + strconv.Quote(err.Name) + ": " + err.Err.Error()
}

func (err *DefinitionError) Unwrap() error {
	return err.Err
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos Pos, msg string) string {
	return pos.String() + ": " + msg
}

// InputError is an error with position information. Every error resulting
// from invalid source text implements InputError. Spans of errors from
// definitions refer to the definition's text.
type InputError interface {
	error
	// Span returns the source span of the token that caused the error.
	Span() Span
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*LexicalScopeError)(nil)
	_ InputError = (*GrammarParseError)(nil)
	_ InputError = (*UnknownSymbolError)(nil)
	_ InputError = (*ArityMismatchError)(nil)
)

// errorContext renders up to span runes of src on either side of off,
// limited to the line containing it, followed by a caret line pointing at
// off.
func errorContext(src string, off, span int) string {
	if off > len(src) {
		off = len(src)
	}
	before := src[:off]
	for n := 0; n < span && before != ""; n++ {
		_, sz := utf8.DecodeLastRuneInString(before)
		before = before[:len(before)-sz]
	}
	before = src[len(before):off]
	if i := strings.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	after := src[off:]
	end := 0
	for n := 0; n < span && end < len(after); n++ {
		_, sz := utf8.DecodeRuneInString(after[end:])
		end += sz
	}
	after = after[:end]
	if i := strings.IndexByte(after, '\n'); i >= 0 {
		after = after[:i]
	}
	before = strings.ReplaceAll(before, "\t", "        ")
	return before + after + "\n" + strings.Repeat(" ", utf8.RuneCountInString(before)) + "^\n"
}
