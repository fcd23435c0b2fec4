package latexpr

import (
	"strconv"
	"strings"
)

// Node is a node in the parse tree of a LaTeX source text. It is one of
// *Leaf, *Branch, or *Choice.
type Node interface {
	// Span returns the source span covered by the node.
	Span() Span
	fmt(b *strings.Builder, square bool)
}

// Leaf is a token in the parse tree.
type Leaf struct {
	Token
}

// Branch is a grammar rule applied to its children.
type Branch struct {
	Rule     Rule
	Children []Node
	span     Span
}

// Choice holds the alternative parses of an ambiguous region. The transformer
// uses the first alternative.
type Choice struct {
	Alts []Node
}

// Rule names a grammar rule.
type Rule int8

const (
	ruleNone Rule = iota

	ruleSystem   // lines interleaved with delimiter leaves
	ruleRelation // sides interleaved with relation leaves
	ruleEmpty    // missing side of a relation

	ruleAdd
	ruleSub
	ruleNeg
	rulePos
	ruleMul
	ruleDiv
	ruleMod
	ruleImplicit // juxtaposed factors
	rulePow
	ruleFactorial
	rulePercent
	rulePermille

	ruleNumber
	ruleConst
	ruleSymbol    // base, then optional subscript and primes
	ruleSubscript // raw subscript text
	rulePrimes
	ruleFormatted // formatting command and raw argument
	ruleGroup     // open leaf, inner, close leaf
	ruleAbs
	ruleNorm
	ruleFrac
	ruleBinom
	ruleSqrt // radicand, or index and radicand
	ruleFunc // name leaf and arguments
	ruleFuncPow
	ruleArgs
	ruleCall // name leaf and arguments
	ruleMatrix
	ruleRow
	ruleDerivative   // operator leaf, differential, argument
	ruleDifferential // differential leaf and variable
	ruleIntegral     // operator leaf, optional lower and upper bounds, integrand, differential
	ruleSum          // operator leaf, index relation, upper bound, body
	ruleProduct
	ruleLimit // operator leaf, variable, point, body
	ruleInner
	ruleUnit // identifier in braces

	// Connectives other than ruleNot and ruleImplies interleave any number
	// of operands with operator leaves.
	ruleIff
	ruleImplies // operand, arrow leaf, operand
	ruleOr
	ruleNand
	ruleAnd
	ruleNor
	ruleXor
	ruleXnor
	ruleNot

	ruleGradient // operator leaf, operand
	ruleHessian  // formatted name, group
	ruleJacobian
	ruleRref
)

var ruleNames = [...]string{
	"None", "System", "Relation", "Empty", "Add", "Sub", "Neg", "Pos", "Mul",
	"Div", "Mod", "Implicit", "Pow", "Factorial", "Percent", "Permille",
	"Number", "Const", "Symbol", "Subscript", "Primes", "Formatted", "Group",
	"Abs", "Norm", "Frac", "Binom", "Sqrt", "Func", "FuncPow", "Args", "Call",
	"Matrix", "Row", "Derivative", "Differential", "Integral", "Sum",
	"Product", "Limit", "Inner", "Unit", "Iff", "Implies", "Or", "Nand", "And",
	"Nor", "Xor", "Xnor", "Not", "Gradient", "Hessian", "Jacobian", "Rref",
}

func (r Rule) String() string {
	if r < 0 || int(r) >= len(ruleNames) {
		return "Rule(" + strconv.Itoa(int(r)) + ")"
	}
	return ruleNames[r]
}

// branch creates a branch node spanning its children.
func branch(rule Rule, children ...Node) *Branch {
	b := &Branch{Rule: rule, Children: children}
	for _, c := range children {
		b.span = b.span.join(c.Span())
	}
	return b
}

// leaf creates a leaf node.
func leaf(t Token) *Leaf {
	return &Leaf{Token: t}
}

func (n *Leaf) Span() Span   { return n.Token.Span }
func (n *Branch) Span() Span { return n.span }

func (n *Choice) Span() Span {
	var s Span
	for _, a := range n.Alts {
		s = s.join(a.Span())
	}
	return s
}

// is reports whether n is a branch of the given rule.
func is(n Node, rule Rule) bool {
	b, ok := n.(*Branch)
	return ok && b.Rule == rule
}

// TreeString formats a parse tree. Nesting alternates between parentheses
// and square brackets.
func TreeString(n Node) string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *Leaf) fmt(b *strings.Builder, square bool) {
	b.WriteString(n.Text)
}

func (n *Branch) fmt(b *strings.Builder, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteString(n.Rule.String())
	b.WriteByte(l)
	for i, c := range n.Children {
		if i > 0 {
			b.WriteByte(' ')
		}
		c.fmt(b, !square)
	}
	b.WriteByte(r)
}

func (n *Choice) fmt(b *strings.Builder, square bool) {
	b.WriteByte('{')
	for i, a := range n.Alts {
		if i > 0 {
			b.WriteString(" | ")
		}
		a.fmt(b, square)
	}
	b.WriteByte('}')
}
