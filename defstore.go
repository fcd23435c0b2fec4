package latexpr

import (
	"errors"
	"sort"
	"strings"

	"github.com/zephyrtronium/latexpr/sym"
)

// Store resolves names during compilation. A Store is created per compile
// and is not safe for concurrent use.
type Store interface {
	// SymbolDefinition returns the compiled definition of a variable. The
	// second result is false if name is not a variable.
	SymbolDefinition(name string) (sym.Expr, bool, error)
	// FunctionDefinition returns a user-defined function.
	FunctionDefinition(name string) (*Function, bool)
	// Symbol returns the symbol for name with its declared assumptions.
	Symbol(name string) *sym.Symbol
	// Declared returns the symbol for a declared name, or an
	// *UnknownSymbolError if name is not declared.
	Declared(name string) (*sym.Symbol, error)

	session() *session
}

// session holds the state shared by every store of a compile.
type session struct {
	places  int
	calling map[string]bool
	strict  bool
	funcs   map[string]Func
}

// placeholder returns the index of a new placeholder.
func (s *session) placeholder() int {
	n := s.places
	s.places++
	return n
}

// DefStore is the Store for a compile request. It resolves variable
// definitions lazily: the first variable lookup builds the dependency graph
// of the variables the request references and compiles them in dependency
// order. Variables reached only through function bodies are resolved when
// they are first looked up.
type DefStore struct {
	env   *Environment
	roots []string
	sess  *session

	symbols   map[string]*sym.Symbol
	values    map[string]sym.Expr
	resolving map[string]bool
	// chain is the variables being defined, outermost first.
	chain []string
	built bool
	funcs map[string]*Function
}

// NewDefStore creates a store for compiling src in env.
func NewDefStore(src string, env *Environment, opts ...Option) (*DefStore, error) {
	cfg, err := configure(env, opts)
	if err != nil {
		return nil, err
	}
	names, err := ExtractSymbolNames(src)
	if err != nil {
		return nil, err
	}
	return newDefStore(names, cfg), nil
}

func newDefStore(roots []string, cfg *config) *DefStore {
	s := &DefStore{
		env:   cfg.env,
		roots: roots,
		sess: &session{
			calling: make(map[string]bool),
			strict:  cfg.env.Strict,
			funcs:   cfg.funcs,
		},
		symbols:   make(map[string]*sym.Symbol),
		values:    make(map[string]sym.Expr),
		resolving: make(map[string]bool),
		funcs:     make(map[string]*Function, len(cfg.env.Functions)),
	}
	for name, def := range cfg.env.Functions {
		s.funcs[name] = &Function{Name: name, Params: def.Args, Body: def.Expr, store: s}
	}
	return s
}

func (s *DefStore) session() *session {
	return s.sess
}

// escaped returns the alternate spelling of a name with or without a
// leading backslash, so that \alpha and alpha name the same definition.
func escaped(name string) string {
	if strings.HasPrefix(name, `\`) {
		return name[1:]
	}
	return `\` + name
}

// variable returns the key under which name is defined as a variable.
func (s *DefStore) variable(name string) (string, bool) {
	if _, ok := s.env.Variables[name]; ok {
		return name, true
	}
	alt := escaped(name)
	if _, ok := s.env.Variables[alt]; ok {
		return alt, true
	}
	return "", false
}

func (s *DefStore) SymbolDefinition(name string) (sym.Expr, bool, error) {
	k, ok := s.variable(name)
	if !ok {
		return nil, false, nil
	}
	if v, ok := s.values[k]; ok {
		return v, true, nil
	}
	if s.resolving[k] {
		return nil, false, s.cycleFrom(k)
	}
	if !s.built {
		s.built = true
		if err := s.resolve(s.roots); err != nil {
			return nil, false, err
		}
		if v, ok := s.values[k]; ok {
			return v, true, nil
		}
	}
	if err := s.resolve([]string{k}); err != nil {
		return nil, false, err
	}
	return s.values[k], true, nil
}

func (s *DefStore) FunctionDefinition(name string) (*Function, bool) {
	f, ok := s.funcs[name]
	return f, ok
}

func (s *DefStore) Symbol(name string) *sym.Symbol {
	if x, ok := s.symbols[name]; ok {
		return x
	}
	as, ok := s.env.Symbols[name]
	if !ok {
		as = s.env.Symbols[escaped(name)]
	}
	x := sym.NewSymbol(name, as...)
	s.symbols[name] = x
	return x
}

func (s *DefStore) Declared(name string) (*sym.Symbol, error) {
	if _, ok := s.env.Symbols[name]; ok {
		return s.Symbol(name), nil
	}
	if _, ok := s.env.Symbols[escaped(name)]; ok {
		return s.Symbol(name), nil
	}
	return nil, &UnknownSymbolError{Name: name}
}

// resolve compiles the variables reachable from roots that are not yet
// resolved, dependencies first.
func (s *DefStore) resolve(roots []string) error {
	graph := make(map[string][]string)
	var queue []string
	for _, r := range roots {
		if k, ok := s.variable(r); ok {
			queue = append(queue, k)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if _, ok := graph[n]; ok {
			continue
		}
		if _, ok := s.values[n]; ok {
			continue
		}
		names, err := s.dependencies(n)
		if err != nil {
			return err
		}
		deps := make([]string, 0, len(names))
		for _, m := range names {
			k, ok := s.variable(m)
			if !ok {
				continue
			}
			if _, ok := s.values[k]; ok {
				continue
			}
			deps = append(deps, k)
			queue = append(queue, k)
		}
		graph[n] = deps
	}
	order, err := topoSort(graph)
	if err != nil {
		return err
	}
	for i := len(order) - 1; i >= 0; i-- {
		if err := s.define(order[i]); err != nil {
			return err
		}
	}
	return nil
}

// define compiles the definition of a variable.
func (s *DefStore) define(name string) error {
	if _, ok := s.values[name]; ok {
		return nil
	}
	if s.resolving[name] {
		return s.cycleFrom(name)
	}
	s.resolving[name] = true
	s.chain = append(s.chain, name)
	defer func() {
		delete(s.resolving, name)
		s.chain = s.chain[:len(s.chain)-1]
	}()
	r, err := compileWith(s.env.Variables[name], s)
	if err != nil {
		return &DefinitionError{Name: name, Err: err}
	}
	if r.System != nil {
		return &DefinitionError{Name: name, Err: errNotSingle}
	}
	s.values[name] = r.Expr
	return nil
}

var errNotSingle = errors.New("definition is not a single expression")

// cycleFrom reports the cycle closed by looking up name while it is being
// defined.
func (s *DefStore) cycleFrom(name string) error {
	members := []string{name}
	for i, n := range s.chain {
		if n == name {
			members = append([]string(nil), s.chain[i:]...)
			break
		}
	}
	sort.Strings(members)
	return &CyclicDefinitionError{Members: members}
}

// dependencies returns the names the definition of variable name refers to.
// Calls to user functions contribute the free names of their bodies.
func (s *DefStore) dependencies(name string) ([]string, error) {
	tree, err := Parse(s.env.Variables[name])
	if err != nil {
		return nil, &DefinitionError{Name: name, Err: err}
	}
	set := make(map[string]bool)
	calls := make(map[string]bool)
	collectNames(tree, set, calls)
	seen := make(map[string]bool)
	for _, c := range sortedKeys(calls) {
		if err := s.funcFree(c, set, seen); err != nil {
			return nil, err
		}
	}
	return sortedKeys(set), nil
}

// funcFree adds to set the names in the body of the user function name that
// are not its parameters, following the functions it calls.
func (s *DefStore) funcFree(name string, set, seen map[string]bool) error {
	f, ok := s.funcs[name]
	if !ok || seen[name] {
		return nil
	}
	seen[name] = true
	tree, err := Parse(f.Body)
	if err != nil {
		return &DefinitionError{Name: name, Err: err}
	}
	names := make(map[string]bool)
	calls := make(map[string]bool)
	collectNames(tree, names, calls)
	for _, p := range f.Params {
		delete(names, p)
	}
	for n := range names {
		set[n] = true
	}
	for _, c := range sortedKeys(calls) {
		if err := s.funcFree(c, set, seen); err != nil {
			return err
		}
	}
	return nil
}

// topoSort orders a dependency graph so that every node precedes its
// dependencies, using Kahn's algorithm. Ties are broken by name. If the
// graph has cycles, the error names the nodes on them.
func topoSort(graph map[string][]string) ([]string, error) {
	indeg := make(map[string]int, len(graph))
	for n, deps := range graph {
		indeg[n] += 0
		for _, d := range deps {
			indeg[d]++
		}
	}
	var ready []string
	for n, d := range indeg {
		if d == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)
	order := make([]string, 0, len(indeg))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, d := range graph[n] {
			indeg[d]--
			if indeg[d] == 0 {
				ready = append(ready, d)
			}
		}
	}
	if len(order) == len(indeg) {
		return order, nil
	}
	// Nodes left over are on cycles or downstream of them. Peel off the
	// ones that depend on nothing left over.
	left := make(map[string]bool)
	for n, d := range indeg {
		if d > 0 {
			left[n] = true
		}
	}
	for changed := true; changed; {
		changed = false
		for n := range left {
			sink := true
			for _, d := range graph[n] {
				if left[d] {
					sink = false
					break
				}
			}
			if sink {
				delete(left, n)
				changed = true
			}
		}
	}
	members := make([]string, 0, len(left))
	for n := range left {
		members = append(members, n)
	}
	sort.Strings(members)
	return nil, &CyclicDefinitionError{Members: members}
}

// Function is a user-defined function.
type Function struct {
	Name   string
	Params []string
	// Body is the LaTeX source of the function body.
	Body string

	// store is the store that defines the function. Names in the body that
	// are not parameters resolve through it.
	store *DefStore
}

// Call compiles the function body with its parameters bound to args. Names
// that are not parameters resolve through the store that defines f, or
// through s if f was not created by a store.
func (f *Function) Call(s Store, args []sym.Expr, at Span) (sym.Expr, error) {
	if len(args) != len(f.Params) {
		return nil, &ArityMismatchError{Name: f.Name, Want: len(f.Params), Got: len(args), At: at}
	}
	sess := s.session()
	if sess.calling[f.Name] {
		return nil, &CyclicDefinitionError{Members: []string{f.Name}}
	}
	sess.calling[f.Name] = true
	defer delete(sess.calling, f.Name)
	var parent Store = s
	if f.store != nil {
		parent = f.store
	}
	sc := &scopedStore{Store: parent, params: make(map[string]sym.Expr, len(args))}
	for i, p := range f.Params {
		sc.params[p] = args[i]
	}
	r, err := compileWith(f.Body, sc)
	if err != nil {
		return nil, &DefinitionError{Name: f.Name, Err: err}
	}
	if r.System != nil {
		return nil, &DefinitionError{Name: f.Name, Err: errNotSingle}
	}
	return r.Expr, nil
}

// scopedStore binds function parameters over another store.
type scopedStore struct {
	Store
	params map[string]sym.Expr
}

func (s *scopedStore) SymbolDefinition(name string) (sym.Expr, bool, error) {
	if v, ok := s.params[name]; ok {
		return v, true, nil
	}
	return s.Store.SymbolDefinition(name)
}

// ExtractSymbolNames returns the sorted names of the symbols that appear in
// src. Names of called functions are excluded.
func ExtractSymbolNames(src string) ([]string, error) {
	tree, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return symbolNames(tree), nil
}

func symbolNames(tree Node) []string {
	set := make(map[string]bool)
	collectNames(tree, set, nil)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// collectNames adds the symbol names in n to set and, if calls is not nil,
// the names that may refer to user-defined functions to calls.
func collectNames(n Node, set, calls map[string]bool) {
	switch n := n.(type) {
	case *Choice:
		collectNames(n.Alts[0], set, calls)
	case *Branch:
		switch n.Rule {
		case ruleSymbol:
			set[symbolName(n)] = true
			if calls != nil {
				// A bare function name, as in f' or \nabla f, uses the body.
				kids := n.Children
				if is(kids[len(kids)-1], rulePrimes) {
					kids = kids[:len(kids)-1]
				}
				calls[symbolName(branch(ruleSymbol, kids...))] = true
			}
			return
		case ruleUnit:
			set[n.Children[1].(*Leaf).Text] = true
			return
		case ruleDifferential:
			set[differentialName(n)] = true
			return
		case ruleCall, ruleFunc:
			if calls != nil {
				switch name := n.Children[0].(type) {
				case *Leaf:
					calls[strings.TrimPrefix(name.Text, `\`)] = true
				case *Branch:
					// \operatorname{name}
					calls[name.Children[1].(*Leaf).Text] = true
				}
			}
			collectNames(n.Children[1], set, calls)
			return
		}
		for _, c := range n.Children {
			collectNames(c, set, calls)
		}
	}
}
