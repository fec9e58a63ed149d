package interp

import (
	"errors"
	"fmt"

	"github.com/kolkov/upype/internal/token"
)

// ErrNext is returned by Exec when the snippet executed next.
var ErrNext = errors.New("next")

// Loop and function control flow. These never escape Exec.
var (
	errBreak    = errors.New("break")
	errContinue = errors.New("continue")
	errReturn   = errors.New("return")
)

// ExitError is returned by Exec when the snippet executed exit.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

// RuntimeError is a failure inside a running snippet.
type RuntimeError struct {
	Pos token.Position
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return e.Err.Error()
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// CompileError reports a regex literal that does not compile.
type CompileError struct {
	Pos     token.Position
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: invalid regex /%s/: %v", e.Pos, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// errorAt wraps err with the position of node, keeping an existing
// position and passing control-flow signals through unchanged.
func errorAt(node interface{ Pos() token.Position }, err error) error {
	if err == nil {
		return nil
	}
	switch err {
	case ErrNext, errBreak, errContinue, errReturn:
		return err
	}
	var re *RuntimeError
	var ee *ExitError
	if errors.As(err, &re) || errors.As(err, &ee) {
		return err
	}
	return &RuntimeError{Pos: node.Pos(), Err: err}
}

func errorf(node interface{ Pos() token.Position }, format string, args ...any) error {
	return &RuntimeError{Pos: node.Pos(), Err: fmt.Errorf(format, args...)}
}
