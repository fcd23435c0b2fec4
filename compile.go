package latexpr

import (
	"github.com/zephyrtronium/latexpr/sym"
)

// Compile compiles LaTeX source text to an expression or a system of
// expressions, resolving names through env and normalizing units as env
// directs. env may be nil.
func Compile(src string, env *Environment, opts ...Option) (*Result, error) {
	cfg, err := configure(env, opts)
	if err != nil {
		return nil, err
	}
	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}
	store := newDefStore(symbolNames(tree), cfg)
	r, err := transformTree(tree, store)
	if err != nil {
		return nil, err
	}
	if cfg.raw {
		return r, nil
	}
	return Normalize(r, cfg.env)
}

// CompileString compiles src and formats the result. It is a convenience
// for callers that only display results.
func CompileString(src string, env *Environment, opts ...Option) (string, error) {
	r, err := Compile(src, env, opts...)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

// compileWith compiles source text against an existing store. Definitions
// of variables and functions compile through it.
func compileWith(src string, s Store) (*Result, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return transformTree(tree, s)
}

func transformTree(tree Node, s Store) (*Result, error) {
	t := transformer{
		store: s,
		funcs: s.session().funcs,
		reg:   sym.DefaultRegistry(),
	}
	r, err := t.transform(tree)
	if err != nil {
		return nil, err
	}
	if r.lines != nil {
		return &Result{System: &System{Exprs: r.lines}}, nil
	}
	return &Result{Expr: r.expr}, nil
}
