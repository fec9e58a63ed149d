// Package interp evaluates parsed snippets against an explicit environment.
//
// An Interp holds no process-wide state: everything a snippet can see lives
// in the Env passed to New, which the before, main and after snippets share
// for the whole run.
package interp

import (
	"io"
	"math/rand"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/bundle"
	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/types"
)

// maxCallDepth bounds snippet function recursion.
const maxCallDepth = 1000

// Env holds the names visible to snippets. Locals carries the bundle under
// bundle.Name; Globals carries imports, -v variables, functions and every
// variable a snippet assigns.
type Env struct {
	Globals map[string]types.Value
	Locals  map[string]types.Value
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{
		Globals: make(map[string]types.Value),
		Locals:  make(map[string]types.Value),
	}
}

// Config configures an Interp.
type Config struct {
	// Output receives print and printf output.
	Output io.Writer
	// Stdin and Stderr are handed to commands run by system().
	Stdin  io.Reader
	Stderr io.Writer
	// Regexes caches dynamic patterns. A new cache is used when nil.
	Regexes *runtime.RegexCache
}

// Interp executes compiled snippets.
type Interp struct {
	env     *Env
	out     io.Writer
	stdin   io.Reader
	stderr  io.Writer
	regexes *runtime.RegexCache

	// frames holds the parameters of active snippet function calls.
	frames []map[string]types.Value
	retval types.Value

	declared map[*Program]bool

	rnd  *rand.Rand
	seed float64
}

// New creates an interpreter bound to env.
func New(env *Env, cfg Config) *Interp {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.Stderr == nil {
		cfg.Stderr = io.Discard
	}
	if cfg.Regexes == nil {
		cfg.Regexes = runtime.NewRegexCache(100)
	}
	return &Interp{
		env:      env,
		out:      cfg.Output,
		stdin:    cfg.Stdin,
		stderr:   cfg.Stderr,
		regexes:  cfg.Regexes,
		declared: make(map[*Program]bool),
		rnd:      rand.New(rand.NewSource(0)),
	}
}

// Env returns the environment the interpreter runs against.
func (in *Interp) Env() *Env { return in.env }

// Exec runs p once. The first run of a program binds its functions into
// the globals. It returns nil, ErrNext, an *ExitError or a *RuntimeError.
func (in *Interp) Exec(p *Program) error {
	if !in.declared[p] {
		in.declared[p] = true
		for _, fn := range p.ast.Functions {
			in.env.Globals[fn.Name] = types.FuncVal(&userFunc{decl: fn, in: in, prog: p})
		}
	}
	return in.execStmts(p, p.ast.Stmts)
}

// bundle returns the shared bundle, or nil when none is bound.
func (in *Interp) bundle() types.Object {
	v, ok := in.env.Locals[bundle.Name]
	if !ok {
		return nil
	}
	o, _ := v.Object()
	return o
}

// lookup resolves name: function parameters, then locals, then globals,
// then builtins. Unknown names are null.
func (in *Interp) lookup(name string) types.Value {
	if n := len(in.frames); n > 0 {
		if v, ok := in.frames[n-1][name]; ok {
			return v
		}
	}
	if v, ok := in.env.Locals[name]; ok {
		return v
	}
	if v, ok := in.env.Globals[name]; ok {
		return v
	}
	if b, ok := builtins[name]; ok {
		return types.FuncVal(in.nativeBuiltin(name, b))
	}
	return types.Null()
}

// assign stores v under name in the innermost scope that holds it.
// New names become globals.
func (in *Interp) assign(node ast.Node, name string, v types.Value) error {
	if name == bundle.Name {
		return errorf(node, "cannot assign to %s", bundle.Name)
	}
	if n := len(in.frames); n > 0 {
		if _, ok := in.frames[n-1][name]; ok {
			in.frames[n-1][name] = v
			return nil
		}
	}
	if _, ok := in.env.Locals[name]; ok {
		in.env.Locals[name] = v
		return nil
	}
	in.env.Globals[name] = v
	return nil
}

// userFunc is a function declared in a snippet.
type userFunc struct {
	decl *ast.FuncDecl
	in   *Interp
	prog *Program
}

func (f *userFunc) FuncName() string { return f.decl.Name }

// Call runs the function body with its parameters bound. Missing
// arguments are null.
func (f *userFunc) Call(args []types.Value) (types.Value, error) {
	in := f.in
	if len(args) > len(f.decl.Params) {
		return types.Null(), errorf(f.decl, "function %s called with %d args, accepts only %d",
			f.decl.Name, len(args), len(f.decl.Params))
	}
	if len(in.frames) >= maxCallDepth {
		return types.Null(), errorf(f.decl, "calling %s: maximum call depth %d exceeded", f.decl.Name, maxCallDepth)
	}

	frame := make(map[string]types.Value, len(f.decl.Params))
	for i, p := range f.decl.Params {
		if i < len(args) {
			frame[p] = args[i]
		} else {
			frame[p] = types.Null()
		}
	}

	in.frames = append(in.frames, frame)
	defer func() { in.frames = in.frames[:len(in.frames)-1] }()

	in.retval = types.Null()
	err := in.execStmt(f.prog, f.decl.Body)
	if err == errReturn {
		ret := in.retval
		in.retval = types.Null()
		return ret, nil
	}
	return types.Null(), err
}

var _ types.Func = (*userFunc)(nil)
