package upype

import (
	"errors"
	"io"

	"github.com/kolkov/upype/internal/interp"
	"github.com/kolkov/upype/internal/modules"
	"github.com/kolkov/upype/internal/parser"
	"github.com/kolkov/upype/internal/semantic"
)

// Version is the upype version string.
const Version = "0.1.0"

// Script holds the snippets of a program. Main is required; Before runs
// once before the first record and After once after the last.
type Script struct {
	Before string
	Main   string
	After  string

	// BeforeFile, MainFile and AfterFile name snippets loaded from files
	// in diagnostics. Empty names use "before", "main" and "after".
	BeforeFile string
	MainFile   string
	AfterFile  string
}

// Run executes a main snippet over input.
// This is a convenience function for one-off execution.
// For repeated execution of the same program, use Compile followed by Program.Run.
//
// Example:
//
//	output, err := upype.Run(`print $1`, strings.NewReader("a,b\n"), &upype.Config{FieldSep: ","})
//	// output: "a\n"
func Run(program string, input io.Reader, config *Config) (string, error) {
	prog, err := Compile(program)
	if err != nil {
		return "", err
	}
	return prog.Run(input, config)
}

// Compile parses and compiles a main snippet for execution.
// The returned Program can be executed multiple times with different inputs.
func Compile(program string) (*Program, error) {
	return CompileScript(Script{Main: program})
}

// CompileScript parses and compiles the snippets of s.
func CompileScript(s Script) (*Program, error) {
	before, err := compileSnippet(s.Before, s.BeforeFile, semantic.RoleBefore, true)
	if err != nil {
		return nil, err
	}
	main, err := compileSnippet(s.Main, s.MainFile, semantic.RoleMain, false)
	if err != nil {
		return nil, err
	}
	after, err := compileSnippet(s.After, s.AfterFile, semantic.RoleAfter, true)
	if err != nil {
		return nil, err
	}
	return &Program{before: before, main: main, after: after, source: s.Main}, nil
}

// compileSnippet parses, checks and compiles one snippet. An empty
// optional snippet compiles to nil.
func compileSnippet(src, filename string, role semantic.Role, optional bool) (*interp.Program, error) {
	if optional && src == "" {
		return nil, nil
	}
	if filename == "" {
		filename = role.String()
	}

	// Parse
	tree, err := parser.Parse(src, filename)
	if err != nil {
		return nil, convertParseError(err, filename)
	}

	// Check for semantic errors
	if err := semantic.Check(tree, role); err != nil {
		return nil, &CompileError{Message: err.Error()}
	}

	// Compile regex literals
	prog, err := interp.Compile(filename, tree)
	if err != nil {
		return nil, &CompileError{Message: err.Error()}
	}
	return prog, nil
}

// convertParseError converts a parser error to the public type.
func convertParseError(err error, filename string) error {
	var pe *parser.ParseError
	var el parser.ErrorList
	switch {
	case errors.As(err, &el) && len(el) > 0:
		pe = el.First()
	case errors.As(err, &pe):
	default:
		return &ParseError{Snippet: filename, Message: err.Error()}
	}
	return &ParseError{
		Snippet: filename,
		Line:    pe.Pos.Line,
		Column:  pe.Pos.Column,
		Message: pe.Message,
	}
}

// Exec is a simplified interface for running a main snippet.
// It reads from input, writes to output, and returns any error.
//
// Example:
//
//	err := upype.Exec(`_.record = toupper(_.record)`, os.Stdin, os.Stdout,
//	    &upype.Config{PrintRecords: true})
func Exec(program string, input io.Reader, output io.Writer, config *Config) error {
	prog, err := Compile(program)
	if err != nil {
		return err
	}

	cfg := Config{}
	if config != nil {
		cfg = *config
	}
	cfg.Output = output

	_, err = prog.Run(input, &cfg)
	return err
}

// MustCompile is like Compile but panics if the program cannot be compiled.
// It simplifies initialization of global program variables.
//
// Example:
//
//	var upper = upype.MustCompile(`_.record = toupper(_.record)`)
func MustCompile(program string) *Program {
	prog, err := Compile(program)
	if err != nil {
		panic(err)
	}
	return prog
}

// Modules returns the names of the modules Config.Imports can bind.
func Modules() []string {
	return modules.Names()
}
