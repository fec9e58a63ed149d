// Package modules provides the namespaces snippets can import with
// -i MODULE[:MEMBER][@ALIAS].
package modules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kolkov/upype/internal/lexer"
	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/types"
)

// Import is one parsed -i argument.
type Import struct {
	Module string
	Member string // empty to import the whole module
	Alias  string // empty to bind under Member or Module
}

// BindName returns the global name the import is bound to.
func (imp Import) BindName() string {
	switch {
	case imp.Alias != "":
		return imp.Alias
	case imp.Member != "":
		return imp.Member
	}
	return imp.Module
}

// String returns the import in MODULE[:MEMBER][@ALIAS] form.
func (imp Import) String() string {
	s := imp.Module
	if imp.Member != "" {
		s += ":" + imp.Member
	}
	if imp.Alias != "" {
		s += "@" + imp.Alias
	}
	return s
}

// ImportError reports a malformed or unresolvable import.
type ImportError struct {
	Spec string
	Msg  string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %q: %s", e.Spec, e.Msg)
}

// ParseImport parses MODULE[:MEMBER][@ALIAS]. Every part must be a
// name a snippet can refer to.
func ParseImport(spec string) (Import, error) {
	var imp Import
	rest := spec
	if i := strings.LastIndexByte(rest, '@'); i >= 0 {
		imp.Alias = rest[i+1:]
		rest = rest[:i]
		if !lexer.IsName(imp.Alias) {
			return Import{}, &ImportError{Spec: spec, Msg: "invalid alias"}
		}
	}
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		imp.Member = rest[i+1:]
		rest = rest[:i]
		if !lexer.IsName(imp.Member) {
			return Import{}, &ImportError{Spec: spec, Msg: "invalid member name"}
		}
	}
	imp.Module = rest
	if !lexer.IsName(imp.Module) {
		return Import{}, &ImportError{Spec: spec, Msg: "invalid module name"}
	}
	return imp, nil
}

// Registry builds module namespaces on first use.
type Registry struct {
	regexes *runtime.RegexCache
	loaded  map[string]*types.Namespace
}

// NewRegistry creates a registry. The regex module compiles its patterns
// through regexes.
func NewRegistry(regexes *runtime.RegexCache) *Registry {
	if regexes == nil {
		regexes = runtime.NewRegexCache(100)
	}
	return &Registry{regexes: regexes, loaded: make(map[string]*types.Namespace)}
}

var builders = map[string]func(r *Registry) *types.Namespace{
	"math":    mathModule,
	"os":      osModule,
	"path":    pathModule,
	"regex":   regexModule,
	"strconv": strconvModule,
	"strings": stringsModule,
	"time":    timeModule,
}

// Names returns the importable module names, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Module returns the namespace of the named module.
func (r *Registry) Module(name string) (*types.Namespace, bool) {
	if ns, ok := r.loaded[name]; ok {
		return ns, true
	}
	build, ok := builders[name]
	if !ok {
		return nil, false
	}
	ns := build(r)
	r.loaded[name] = ns
	return ns, true
}

// Resolve returns the value an import binds.
func (r *Registry) Resolve(imp Import) (types.Value, error) {
	ns, ok := r.Module(imp.Module)
	if !ok {
		return types.Null(), &ImportError{Spec: imp.String(), Msg: "no module named " + imp.Module}
	}
	if imp.Member == "" {
		return types.ObjectVal(ns), nil
	}
	v, err := ns.Get(imp.Member)
	if err != nil {
		return types.Null(), &ImportError{Spec: imp.String(), Msg: err.Error()}
	}
	return v, nil
}

// Bind resolves imp and stores it in globals under its bind name.
func (r *Registry) Bind(globals map[string]types.Value, imp Import) error {
	v, err := r.Resolve(imp)
	if err != nil {
		return err
	}
	globals[imp.BindName()] = v
	return nil
}

// fn is shorthand for a native module function.
func fn(module, name string, minArgs, maxArgs int, f func(args []types.Value) (types.Value, error)) types.Value {
	return types.FuncVal(&types.NativeFunc{
		Name:    module + "." + name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Fn:      f,
	})
}
