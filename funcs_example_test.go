package latexpr_test

import (
	"fmt"

	"github.com/zephyrtronium/latexpr"
	"github.com/zephyrtronium/latexpr/sym"
)

type nargin struct{}

func (nargin) CanCall(n int) bool {
	return true
}

func (nargin) Call(args []sym.Expr) (sym.Expr, error) {
	return sym.Int(int64(len(args))), nil
}

func ExampleFunc() {
	opt := latexpr.WithFunc("nargin", nargin{})

	a, _ := latexpr.CompileString("nargin(100)", nil, opt)
	b, _ := latexpr.CompileString("nargin(3, 2, 1)", nil, opt)
	c, _ := latexpr.CompileString(`\operatorname{nargin}(x, y) + 1`, nil, opt)
	fmt.Println(a)
	fmt.Println(b)
	fmt.Println(c)

	// Output:
	// 1
	// 3
	// 3
}
