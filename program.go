package upype

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/bundle"
	"github.com/kolkov/upype/internal/interp"
	"github.com/kolkov/upype/internal/lexer"
	"github.com/kolkov/upype/internal/modules"
	"github.com/kolkov/upype/internal/record"
	"github.com/kolkov/upype/internal/runner"
	"github.com/kolkov/upype/internal/runtime"
)

// Program represents a compiled script ready for execution. Each call to
// Run starts from a fresh environment.
type Program struct {
	before *interp.Program
	main   *interp.Program
	after  *interp.Program
	source string // main snippet source, for debugging
}

// Run executes the program over a single input and returns the output.
//
// If config is nil, default configuration is used.
// If config.Output is set, output is written there and the returned
// string will be empty.
func (p *Program) Run(input io.Reader, config *Config) (string, error) {
	if input == nil {
		input = eofReader{}
	}
	cfg, outputBuf := p.prepare(config)
	sources := []*record.Source{record.NewSource(record.StdinName, 0, io.NopCloser(input))}
	err := p.run(sources, cfg)
	if outputBuf != nil {
		return outputBuf.String(), err
	}
	return "", err
}

// RunInputs executes the program over the named files in order. No paths,
// or the path "-", reads config.Stdin. Output goes to config.Output, or is
// discarded when it is nil. Every file is opened before the first record
// is read; a file that cannot be opened is a *ConfigError.
func (p *Program) RunInputs(paths []string, config *Config) error {
	cfg, _ := p.prepare(config)
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	inputs, err := runtime.OpenInputs(paths, cfg.Stdin)
	if err != nil {
		return &ConfigError{Message: err.Error(), Err: err}
	}
	defer inputs.CloseAll()
	return p.run(inputs.Sources(), cfg)
}

// prepare copies config with defaults applied, capturing output into a
// buffer when none is set.
func (p *Program) prepare(config *Config) (*Config, *bytes.Buffer) {
	cfg := &Config{}
	if config != nil {
		*cfg = *config
	}
	cfg.applyDefaults()
	var outputBuf *bytes.Buffer
	if cfg.Output == nil {
		outputBuf = &bytes.Buffer{}
		cfg.Output = outputBuf
	}
	return cfg, outputBuf
}

func (p *Program) run(sources []*record.Source, cfg *Config) error {
	rc, err := runnerConfig(cfg)
	if err != nil {
		for _, s := range sources {
			s.Close()
		}
		return err
	}

	err = runner.Run(runner.Programs{Before: p.before, Main: p.main, After: p.after}, sources, rc)
	return convertRunError(err)
}

// runnerConfig validates cfg and converts it for the runner.
func runnerConfig(cfg *Config) (runner.Config, error) {
	regexes := runtime.NewRegexCache(100)
	rc := runner.Config{
		Delimiter: record.Universal(),
		Strip:     !cfg.NoStrip,
		Echo:      cfg.PrintRecords,
		Output:    cfg.Output,
		Stdin:     cfg.Stdin,
		Stderr:    cfg.Stderr,
		Regexes:   regexes,
	}
	if cfg.RecordSep != nil {
		rc.Delimiter = record.Literal(*cfg.RecordSep)
	}

	switch {
	case cfg.CSV:
		var comma rune
		if cfg.FieldSep != "" {
			r, size := utf8.DecodeRuneInString(cfg.FieldSep)
			if size != len(cfg.FieldSep) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
				return rc, &ConfigError{Message: fmt.Sprintf("invalid CSV separator %q", cfg.FieldSep)}
			}
			comma = r
		}
		rc.Fields = runner.CSVSplitter{Comma: comma}
	case cfg.FieldSep != "":
		re, err := regexes.Get(cfg.FieldSep)
		if err != nil {
			return rc, &ConfigError{Message: fmt.Sprintf("invalid field separator: %v", err), Err: err}
		}
		rc.Fields = runner.RegexSplitter{Re: re}
	}

	for _, spec := range cfg.Imports {
		imp, err := modules.ParseImport(spec)
		if err != nil {
			return rc, &ConfigError{Message: err.Error(), Err: err}
		}
		rc.Imports = append(rc.Imports, imp)
	}

	for name := range cfg.Variables {
		if !lexer.IsName(name) || name == bundle.Name {
			return rc, &ConfigError{Message: fmt.Sprintf("invalid variable name %q", name)}
		}
	}
	rc.Variables = cfg.Variables

	if cfg.Flush {
		if f, ok := cfg.Output.(interface{ Flush() error }); ok {
			rc.Flush = f.Flush
		}
	}
	return rc, nil
}

// convertRunError converts errors from the runner to public types.
func convertRunError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *interp.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			return nil
		}
		return &ExitError{Code: exitErr.Code}
	}

	var impErr *modules.ImportError
	if errors.As(err, &impErr) {
		return &ConfigError{Message: err.Error(), Err: err}
	}

	rerr := &RuntimeError{Message: err.Error(), Err: err}
	var snippetErr *runner.Error
	if errors.As(err, &snippetErr) {
		rerr.RecordNum = snippetErr.RecordNum
	}
	return rerr
}

// Format returns the parsed snippets pretty-printed, before and after
// included when present.
func (p *Program) Format() string {
	var sb strings.Builder
	for _, part := range []struct {
		name string
		prog *interp.Program
	}{{"before", p.before}, {"main", p.main}, {"after", p.after}} {
		if part.prog == nil {
			continue
		}
		fmt.Fprintf(&sb, "# %s\n", part.name)
		sb.WriteString(ast.String(part.prog.AST()))
	}
	return sb.String()
}

// Source returns the source of the main snippet.
func (p *Program) Source() string {
	return p.source
}
