package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/zephyrtronium/latexpr"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = successColorFG
	infoStyleBG    = successStyleBG
)

// display prints results and errors at a log level.
type display struct {
	level string
}

func (d display) verbose() bool { return d.level == "verbose" }
func (d display) silent() bool  { return d.level == "silent" }

// errorTag names the kind of a compile error.
func errorTag(err error) string {
	var (
		lex   *latexpr.LexError
		scope *latexpr.LexicalScopeError
		gram  *latexpr.GrammarParseError
		unk   *latexpr.UnknownSymbolError
		cyc   *latexpr.CyclicDefinitionError
		arity *latexpr.ArityMismatchError
		env   *latexpr.EnvironmentError
	)
	switch {
	case errors.As(err, &lex):
		return "Lex Error"
	case errors.As(err, &scope):
		return "Scope Error"
	case errors.As(err, &gram):
		return "Syntax Error"
	case errors.As(err, &unk):
		return "Name Error"
	case errors.As(err, &cyc):
		return "Definition Error"
	case errors.As(err, &arity):
		return "Arity Error"
	case errors.As(err, &env):
		return "Environment Error"
	}
	return "Error"
}

// printError prints an error. If the error has a position in src, the
// offending source is shown with carets beneath it.
func (d display) printError(tag string, err error, src string) {
	if d.silent() {
		return
	}
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
	var def *latexpr.DefinitionError
	if errors.As(err, &def) {
		// Positions refer to the definition, not to src.
		return
	}
	var ie latexpr.InputError
	if errors.As(err, &ie) && src != "" && !ie.Span().IsZero() {
		showSelection(src, ie.Span())
	}
}

// printInfo prints an informational message in verbose mode.
func (d display) printInfo(tag, msg string) {
	if !d.verbose() {
		return
	}
	infoStyleBG.Print(tag)
	infoColorFG.Println(" " + msg)
}

// printResult prints each expression of a result. In verbose mode, each is
// labeled with its source lines.
func (d display) printResult(r *latexpr.Result) {
	for _, e := range r.Exprs() {
		if d.verbose() && !e.Span.IsZero() {
			infoColorFG.Print(lineLabel(e) + " ")
		}
		fmt.Println(e.Expr)
	}
}

func lineLabel(e latexpr.Located) string {
	if e.StartLine() == e.EndLine() {
		return "[" + strconv.Itoa(e.StartLine()) + "]"
	}
	return "[" + strconv.Itoa(e.StartLine()) + "-" + strconv.Itoa(e.EndLine()) + "]"
}

// showSelection prints the lines of src that sp covers, with line numbers
// and carets under the selected text.
func showSelection(src string, sp latexpr.Span) {
	lines := strings.Split(src, "\n")
	start, end := sp.Start.Line, sp.End.Line
	if start < 1 || start > len(lines) {
		return
	}
	if end < start {
		end = start
	}
	if end > len(lines) {
		end = len(lines)
	}
	width := len(strconv.Itoa(end)) + 1
	lnfmt := "%-" + strconv.Itoa(width) + "v"
	fmt.Println()
	for ln := start; ln <= end; ln++ {
		line := strings.ReplaceAll(lines[ln-1], "\t", " ")
		n := len([]rune(line))
		infoColorFG.Print(fmt.Sprintf(lnfmt, ln))
		fmt.Println("|  " + line)
		from, to := 1, n+1
		if ln == start {
			from = sp.Start.Col
		}
		if ln == end && sp.End.Col > from {
			to = sp.End.Col
		}
		if to <= from {
			to = from + 1
		}
		fmt.Print(strings.Repeat(" ", width), "|  ", strings.Repeat(" ", from-1))
		errorColorFG.Println(strings.Repeat("^", to-from))
	}
	fmt.Println()
}
