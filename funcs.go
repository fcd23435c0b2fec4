package latexpr

import (
	"github.com/zephyrtronium/latexpr/sym"
)

// Func is a function applied to compiled arguments. Known function commands
// like \sin resolve to Funcs, as do calls to names registered with WithFunc.
type Func interface {
	// Call applies the function. args has a length for which CanCall
	// returned true. Call may modify the elements of args.
	Call(args []sym.Expr) (sym.Expr, error)

	// CanCall returns whether the function can be called with n arguments.
	CanCall(n int) bool
}

// globalfuncs maps function command names, without the backslash, to their
// implementations.
var globalfuncs = map[string]Func{
	"sin":    Monadic("sin"),
	"cos":    Monadic("cos"),
	"tan":    Monadic("tan"),
	"sec":    Monadic("sec"),
	"csc":    Monadic("csc"),
	"cot":    Monadic("cot"),
	"arcsin": Monadic("asin"),
	"arccos": Monadic("acos"),
	"arctan": Monadic("atan"),
	"sinh":   Monadic("sinh"),
	"cosh":   Monadic("cosh"),
	"tanh":   Monadic("tanh"),
	"coth":   Monadic("coth"),
	"exp":    Monadic("exp"),
	"ln":     Monadic("log"),
	"log":    logFunc{},
	"min":    Variadic("Min"),
	"max":    Variadic("Max"),
	"gcd":    Variadic("gcd"),
	"det":    detFunc{},
	"rref":   rrefFunc{},
}

// inverses maps functions to their inverses for notation like \sin^{-1}.
var inverses = map[string]string{
	"sin": "asin", "cos": "acos", "tan": "atan",
	"asin": "sin", "acos": "cos", "atan": "tan",
	"sinh": "asinh", "cosh": "acosh", "tanh": "atanh",
	"exp": "log", "log": "exp",
}

type monadic struct {
	name string
}

func (m monadic) Call(args []sym.Expr) (sym.Expr, error) {
	return sym.Apply(m.name, args[0]), nil
}

func (m monadic) CanCall(n int) bool {
	return n == 1
}

// Monadic creates a Func of one argument which applies the named engine
// function.
func Monadic(name string) Func {
	return monadic{name}
}

type variadic struct {
	name string
}

func (v variadic) Call(args []sym.Expr) (sym.Expr, error) {
	return sym.Apply(v.name, args...), nil
}

func (v variadic) CanCall(n int) bool {
	return n > 0
}

// Variadic creates a Func of one or more arguments which applies the named
// engine function.
func Variadic(name string) Func {
	return variadic{name}
}

// logFunc is the natural logarithm, or the logarithm in the base of its
// second argument as in \log_b x.
type logFunc struct{}

func (logFunc) Call(args []sym.Expr) (sym.Expr, error) {
	return sym.Apply("log", args...), nil
}

func (logFunc) CanCall(n int) bool {
	return n == 1 || n == 2
}

type detFunc struct{}

func (detFunc) Call(args []sym.Expr) (sym.Expr, error) {
	if m, ok := args[0].(*sym.Matrix); ok {
		return sym.Det(m), nil
	}
	return sym.Apply("det", args[0]), nil
}

func (detFunc) CanCall(n int) bool {
	return n == 1
}

// rrefFunc is the reduced row echelon form, for \operatorname{rref}.
type rrefFunc struct{}

func (rrefFunc) Call(args []sym.Expr) (sym.Expr, error) {
	if m, ok := args[0].(*sym.Matrix); ok {
		return sym.RREF(m), nil
	}
	return sym.Apply("rref", args[0]), nil
}

func (rrefFunc) CanCall(n int) bool {
	return n == 1
}
