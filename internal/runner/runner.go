// Package runner drives the per-record execution loop: it feeds each record
// of the inputs through the bundle, runs the snippets against one shared
// environment, and echoes the result.
package runner

import (
	"errors"
	"fmt"
	"io"
	"maps"

	"github.com/kolkov/upype/internal/bundle"
	"github.com/kolkov/upype/internal/interp"
	"github.com/kolkov/upype/internal/modules"
	"github.com/kolkov/upype/internal/record"
	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/types"
)

// Programs are the three snippets of a run. Main is required.
type Programs struct {
	Before *interp.Program
	Main   *interp.Program
	After  *interp.Program
}

// Config controls one run.
type Config struct {
	// Delimiter splits the inputs into records.
	Delimiter record.Delimiter

	// Strip removes the trailing delimiter into _.record_end.
	Strip bool

	// Echo writes _.record and _.record_end after main.
	Echo bool

	// Fields splits each record into _.fields. Nil leaves fields null.
	Fields Splitter

	// Imports are bound into the globals before the before snippet runs.
	Imports []modules.Import

	// Variables are bound into the globals as numeric strings.
	Variables map[string]string

	// Output receives echoed records and print output.
	Output io.Writer

	// Stdin and Stderr are handed to system().
	Stdin  io.Reader
	Stderr io.Writer

	// Flush is called after main runs for each record when set, so print
	// output and the echo reach the writer before the next record is read.
	Flush func() error

	// Regexes is shared by the interpreter and the regex module.
	Regexes *runtime.RegexCache
}

// Error is a snippet failure together with where the run was.
type Error struct {
	Snippet   string // "before", "main" or "after"
	RecordNum int    // 0 before the first record
	Err       error
}

func (e *Error) Error() string {
	if e.Snippet == "main" {
		return fmt.Sprintf("%v (record %d)", e.Err, e.RecordNum)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrNoMain is returned when Programs has no main snippet.
var ErrNoMain = errors.New("no main snippet")

// Runner holds the state of one run. Use Run unless the environment must
// be inspected afterwards.
type Runner struct {
	progs   Programs
	cfg     Config
	env     *interp.Env
	bundle  *bundle.Bundle
	in      *interp.Interp
	sources []*record.Source

	file    *record.Source
	fileVal types.Value

	// count is the number of records read so far. Snippets may overwrite
	// _.record_num; the next record still gets count+1.
	count int

	exit *interp.ExitError
}

// New prepares a run over sources. It binds the bundle, the imports and
// the variables; an unresolvable import is returned as *modules.ImportError.
func New(progs Programs, sources []*record.Source, cfg Config) (*Runner, error) {
	if progs.Main == nil {
		return nil, ErrNoMain
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.Regexes == nil {
		cfg.Regexes = runtime.NewRegexCache(100)
	}

	r := &Runner{
		progs:   progs,
		cfg:     cfg,
		env:     interp.NewEnv(),
		bundle:  bundle.New(),
		sources: sources,
	}

	reg := modules.NewRegistry(cfg.Regexes)
	for _, imp := range cfg.Imports {
		if err := reg.Bind(r.env.Globals, imp); err != nil {
			return nil, err
		}
	}
	for name, value := range cfg.Variables {
		r.env.Globals[name] = types.NumStr(value)
	}
	r.env.Locals[bundle.Name] = types.ObjectVal(r.bundle)

	r.in = interp.New(r.env, interp.Config{
		Output:  cfg.Output,
		Stdin:   cfg.Stdin,
		Stderr:  cfg.Stderr,
		Regexes: cfg.Regexes,
	})
	return r, nil
}

// Env returns the environment shared by the snippets.
func (r *Runner) Env() *interp.Env { return r.env }

// Bundle returns the per-record state.
func (r *Runner) Bundle() *bundle.Bundle { return r.bundle }

// Run executes the snippets over every record and closes every source
// once, whatever the outcome. It returns nil, an *interp.ExitError for
// exit, a *record.ReadError, or an *Error wrapping the snippet failure.
func (r *Runner) Run() (err error) {
	defer func() {
		for _, s := range r.sources {
			if cerr := s.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()

	if err := r.exec("before", r.progs.Before); err != nil {
		return err
	}

	if r.exit == nil {
		if err := r.loop(); err != nil {
			return err
		}
	}
	r.bundle.RecordNum = r.count

	// exit in after replaces the code of an earlier exit.
	if err := r.exec("after", r.progs.After); err != nil {
		return err
	}
	if r.exit != nil {
		return r.exit
	}
	return nil
}

func (r *Runner) loop() error {
	b := r.bundle
	recs := record.NewRecords(r.sources, r.cfg.Delimiter)
	for !b.End && recs.Next() {
		text := recs.Text()
		r.count++
		b.RecordNum = r.count
		if r.cfg.Strip {
			b.Record, b.RecordEnd = record.Strip(text, r.cfg.Delimiter)
		} else {
			b.Record, b.RecordEnd = text, ""
		}
		if r.cfg.Fields != nil {
			fields, err := r.cfg.Fields.Split(b.Record)
			if err != nil {
				return &Error{Snippet: "main", RecordNum: r.count, Err: fmt.Errorf("splitting fields: %w", err)}
			}
			b.SetFields(fields)
		}
		b.File = r.fileValue(recs.Source())

		echo := r.cfg.Echo
		if err := r.in.Exec(r.progs.Main); err != nil {
			var ee *interp.ExitError
			switch {
			case errors.Is(err, interp.ErrNext):
				echo = false
			case errors.As(err, &ee):
				r.exit = ee
			default:
				return &Error{Snippet: "main", RecordNum: r.count, Err: err}
			}
		}

		if echo {
			if err := r.echo(); err != nil {
				return err
			}
		}
		if r.cfg.Flush != nil {
			if err := r.cfg.Flush(); err != nil {
				return err
			}
		}
		if r.exit != nil {
			return nil
		}
	}
	return recs.Err()
}

// exec runs a before or after snippet. An exit is recorded, not returned.
func (r *Runner) exec(name string, p *interp.Program) error {
	if p == nil {
		return nil
	}
	err := r.in.Exec(p)
	var ee *interp.ExitError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ee):
		r.exit = ee
		return nil
	}
	return &Error{Snippet: name, RecordNum: r.count, Err: err}
}

func (r *Runner) echo() error {
	b := r.bundle
	_, err := io.WriteString(r.cfg.Output, b.Record+b.RecordEnd)
	return err
}

// fileValue returns the _.file object for src, reusing it while the
// source does not change.
func (r *Runner) fileValue(src *record.Source) types.Value {
	if src != r.file {
		r.file = src
		r.fileVal = types.ObjectVal(&bundle.File{Name: src.Name, Index: src.Index})
	}
	return r.fileVal
}

// Run executes progs over sources with cfg.
func Run(progs Programs, sources []*record.Source, cfg Config) error {
	r, err := New(progs, sources, cfg)
	if err != nil {
		for _, s := range sources {
			s.Close()
		}
		return err
	}
	return r.Run()
}

// Globals returns a copy of the globals, for inspection after a run.
func (r *Runner) Globals() map[string]types.Value {
	return maps.Clone(r.env.Globals)
}
