package upype

import (
	"errors"
	"fmt"
)

// ParseError represents a syntax error in a snippet.
type ParseError struct {
	Snippet string // snippet name or script path
	Line    int    // 1-based line number
	Column  int    // 1-based column number
	Message string // Error description
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s:%d:%d: %s", e.Snippet, e.Line, e.Column, e.Message)
}

// CompileError represents a semantic error during compilation.
type CompileError struct {
	Message string // Error description
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error: %s", e.Message)
}

// ConfigError reports configuration that cannot run: an invalid field
// separator, an unknown import, an input that cannot be opened.
type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	return e.Message
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RuntimeError represents a failure while the snippets run.
type RuntimeError struct {
	Message   string // Error description
	RecordNum int    // record being processed, 0 outside the main loop
	Err       error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %s", e.Message)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// ExitError represents a normal exit with a status code.
// This is not an error condition; it indicates a snippet
// called exit with the given status.
type ExitError struct {
	Code int // Exit status code (0 = success)
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// IsExitError reports whether err is an ExitError and returns the exit code.
// Returns (code, true) if err is an ExitError, or (0, false) otherwise.
func IsExitError(err error) (int, bool) {
	var e *ExitError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
