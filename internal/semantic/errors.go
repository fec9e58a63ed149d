// Package semantic validates parsed snippets before they run.
//
// The checker enforces what the grammar alone cannot:
//   - the bundle "_" has a closed attribute set and cannot be rebound
//   - next is only meaningful in the main snippet
//   - a snippet declares each function once
package semantic

import (
	"fmt"
	"strings"

	"github.com/kolkov/upype/internal/token"
)

// Error represents a semantic analysis error with source location.
type Error struct {
	Pos     token.Position
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// ErrorList is a collection of semantic errors.
type ErrorList []*Error

// Add appends an error to the list.
func (el *ErrorList) Add(pos token.Position, format string, args ...any) {
	*el = append(*el, &Error{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	})
}

// Err returns an error if the list is non-empty, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Error implements the error interface for ErrorList.
func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		var sb strings.Builder
		sb.WriteString(el[0].Error())
		for _, e := range el[1:] {
			sb.WriteByte('\n')
			sb.WriteString(e.Error())
		}
		return sb.String()
	}
}

const (
	errNextOutsideMain  = "next can only be used in the main snippet"
	errDuplicateFunc    = "function %q already defined at %s"
	errUnknownAttr      = "_ has no attribute %q"
	errReadOnlyAttr     = "cannot assign to read-only attribute _.%s"
	errAssignBundle     = "cannot assign to _"
	errAssignBundleItem = "cannot assign to _[...]: bundle items are read-only"
	errDeleteBundle     = "cannot delete bundle attributes"
	errBundleParam      = "cannot use _ as a parameter name"
	errBundleFunc       = "cannot use _ as a function name"
)
