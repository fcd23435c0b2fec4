package latexpr

// Option is an option for compiling.
type Option interface {
	compileOption(*config)
}

// config holds the settings of a compile. It owns its copy of the
// environment, so options may modify it freely.
type config struct {
	env   *Environment
	funcs map[string]Func
	// raw skips unit normalization.
	raw bool
}

// configure applies options to a copy of env and validates the result.
func configure(env *Environment, opts []Option) (*config, error) {
	c := config{
		env:   env.clone(),
		funcs: make(map[string]Func, len(globalfuncs)),
	}
	for k, v := range globalfuncs {
		c.funcs[k] = v
	}
	for _, opt := range opts {
		opt.compileOption(&c)
	}
	if err := c.env.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

type funcopt struct {
	name string
	fn   Func
}

type fndefopt struct {
	name string
	def  FunctionDef
}

type declopt struct {
	name string
	as   []string
}

type (
	funcsopt  map[string]Func
	defopt    struct{ name, src string }
	strictopt struct{}
	rawopt    struct{}
	presetopt []Option
)

// WithFunc sets a function for compiling. Calls to name, whether written as
// a command like \sin or as name(x) or \operatorname{name}(x), apply fn. To
// disable a function, pass nil for fn; calls to it become opaque function
// applications.
func WithFunc(name string, fn Func) Option {
	return &funcopt{name, fn}
}

func (o *funcopt) compileOption(c *config) {
	c.funcs[o.name] = o.fn
}

// WithFuncs sets a group of functions for compiling. To disable any
// function, set it to nil.
func WithFuncs(fns map[string]Func) Option {
	return funcsopt(fns)
}

func (o funcsopt) compileOption(c *config) {
	for k, v := range o {
		c.funcs[k] = v
	}
}

// DisableDefaultFuncs disables all default functions. Function commands
// still parse as functions, but compile to opaque applications.
func DisableDefaultFuncs() Option {
	return disablefns
}

var disablefns = func() funcsopt {
	m := make(funcsopt, len(globalfuncs))
	for k := range globalfuncs {
		m[k] = nil
	}
	return m
}()

// Define adds a variable whose value is the LaTeX text src, overriding any
// definition in the environment.
func Define(name, src string) Option {
	return &defopt{name, src}
}

func (o *defopt) compileOption(c *config) {
	c.env.Variables[o.name] = o.src
}

// DefineFunc adds a function whose body is the LaTeX text body.
func DefineFunc(name string, params []string, body string) Option {
	return &fndefopt{name, FunctionDef{Args: params, Expr: body}}
}

func (o *fndefopt) compileOption(c *config) {
	c.env.Functions[o.name] = o.def
}

// Declare declares a symbol with assumptions like "real" or "positive".
func Declare(name string, assumptions ...string) Option {
	return &declopt{name, assumptions}
}

func (o *declopt) compileOption(c *config) {
	c.env.Symbols[o.name] = append(c.env.Symbols[o.name], o.as...)
}

// Strict makes compiling fail on names that are not declared symbols,
// variables, function parameters, or units.
func Strict() Option {
	return strictopt{}
}

func (strictopt) compileOption(c *config) {
	c.env.Strict = true
}

// Raw skips unit normalization.
func Raw() Option {
	return rawopt{}
}

func (rawopt) compileOption(c *config) {
	c.raw = true
}

// Preset combines options so that the same set can be passed to many
// compiles. Options given after a preset override it.
func Preset(opts ...Option) Option {
	return presetopt(append([]Option(nil), opts...))
}

func (o presetopt) compileOption(c *config) {
	for _, opt := range o {
		opt.compileOption(c)
	}
}
