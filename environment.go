package latexpr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pelletier/go-toml"

	"github.com/zephyrtronium/latexpr/sym"
)

// Environment holds the declarations that source text is compiled against.
// The zero value and nil are both empty environments.
type Environment struct {
	// Version is the schema version of the environment. Empty means the
	// current version.
	Version string `json:"version,omitempty" toml:"version"`
	// Symbols maps symbol names to their assumptions.
	Symbols map[string][]string `json:"symbols,omitempty" toml:"symbols"`
	// Variables maps names to the LaTeX text of their values.
	Variables map[string]string `json:"variables,omitempty" toml:"variables"`
	// Functions maps names to parameterized function definitions.
	Functions map[string]FunctionDef `json:"functions,omitempty" toml:"functions"`
	// UnitSystem names the preferred unit system, e.g. "SI".
	UnitSystem string `json:"unitSystem,omitempty" toml:"unitSystem"`
	// ExcludedSymbols are names never substituted with units. If empty,
	// g and L are excluded.
	ExcludedSymbols []string `json:"excludedSymbols,omitempty" toml:"excludedSymbols"`
	// Domain is the LaTeX text of the domain over which results are
	// interpreted. Compiling carries it but does not apply it.
	Domain string `json:"domain,omitempty" toml:"domain"`
	// Units controls substitution of unit names in free symbols. If nil,
	// substitution happens exactly when UnitSystem is set.
	Units *bool `json:"units,omitempty" toml:"units"`
	// Strict makes unknown names an error.
	Strict bool `json:"strict,omitempty" toml:"strict"`
}

// FunctionDef is the definition of a function in an environment.
type FunctionDef struct {
	Args []string `json:"args" toml:"args"`
	Expr string   `json:"expr" toml:"expr"`
}

// SchemaVersion is the environment schema version this package writes.
const SchemaVersion = "1.0.0"

var schemaConstraint = func() *semver.Constraints {
	c, err := semver.NewConstraint(">= 1.0.0, < 2.0.0")
	if err != nil {
		panic(err)
	}
	return c
}()

// assumptions is the vocabulary of symbol assumptions.
var assumptions = map[string]bool{
	"real":        true,
	"positive":    true,
	"negative":    true,
	"nonnegative": true,
	"nonpositive": true,
	"nonzero":     true,
	"integer":     true,
	"rational":    true,
	"complex":     true,
	"imaginary":   true,
	"finite":      true,
	"commutative": true,
}

// defaultExcluded are the symbols excluded from unit substitution when the
// environment names none, since they are more often variables than grams
// and liters.
var defaultExcluded = []string{"g", "L"}

// clone returns a copy of env whose maps may be modified independently.
func (env *Environment) clone() *Environment {
	r := Environment{
		Symbols:   make(map[string][]string),
		Variables: make(map[string]string),
		Functions: make(map[string]FunctionDef),
	}
	if env == nil {
		return &r
	}
	r.Version = env.Version
	r.UnitSystem = env.UnitSystem
	r.ExcludedSymbols = append([]string(nil), env.ExcludedSymbols...)
	r.Domain = env.Domain
	r.Units = env.Units
	r.Strict = env.Strict
	for k, v := range env.Symbols {
		r.Symbols[k] = append([]string(nil), v...)
	}
	for k, v := range env.Variables {
		r.Variables[k] = v
	}
	for k, v := range env.Functions {
		r.Functions[k] = v
	}
	return &r
}

// Validate checks the environment for an incompatible version, unknown
// assumptions, an unknown unit system, and functions with duplicate
// parameters.
func (env *Environment) Validate() error {
	if env == nil {
		return nil
	}
	if env.Version != "" {
		v, err := semver.NewVersion(env.Version)
		if err != nil {
			return &EnvironmentError{Field: "version", Msg: err.Error()}
		}
		if !schemaConstraint.Check(v) {
			return &EnvironmentError{Field: "version", Msg: fmt.Sprintf("version %s is not compatible with %s", v, SchemaVersion)}
		}
	}
	for _, name := range sortedKeys(env.Symbols) {
		for _, a := range env.Symbols[name] {
			if !assumptions[a] {
				return &EnvironmentError{Field: "symbols." + name, Msg: "unknown assumption " + a}
			}
		}
	}
	if _, err := env.System(); err != nil {
		return err
	}
	for _, name := range sortedKeys(env.Functions) {
		args := env.Functions[name].Args
		seen := make(map[string]bool, len(args))
		for _, a := range args {
			seen[a] = true
		}
		if len(seen) != len(args) {
			return &ArityMismatchError{Name: name, Want: len(seen), Got: len(args)}
		}
	}
	if env.Domain != "" {
		if _, err := Parse(env.Domain); err != nil {
			return &EnvironmentError{Field: "domain", Msg: err.Error()}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	r := make([]string, 0, len(m))
	for k := range m {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// System returns the environment's unit system, or SI if none is named.
func (env *Environment) System() (*sym.UnitSystem, error) {
	reg := sym.DefaultRegistry()
	name := "SI"
	if env != nil && env.UnitSystem != "" {
		name = strings.ToUpper(env.UnitSystem)
	}
	s, ok := reg.System(name)
	if !ok {
		return nil, &EnvironmentError{Field: "unitSystem", Msg: "unknown unit system " + env.UnitSystem + "; known systems are " + strings.Join(reg.Systems(), ", ")}
	}
	return s, nil
}

// SubstitutesUnits reports whether free symbols named like units become
// units.
func (env *Environment) SubstitutesUnits() bool {
	if env == nil {
		return false
	}
	if env.Units != nil {
		return *env.Units
	}
	return env.UnitSystem != ""
}

// Excluded returns the names that are never substituted with units.
func (env *Environment) Excluded() []string {
	if env == nil || len(env.ExcludedSymbols) == 0 {
		return defaultExcluded
	}
	return env.ExcludedSymbols
}

// DecodeEnvironment decodes an environment in the given format, either
// "json" or "toml", and validates it.
func DecodeEnvironment(data []byte, format string) (*Environment, error) {
	var env Environment
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decoding environment: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decoding environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment format %q", format)
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// LoadEnvironment reads an environment file. The format is chosen by the
// file extension: .toml for TOML, anything else for JSON.
func LoadEnvironment(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := "json"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	env, err := DecodeEnvironment(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}
