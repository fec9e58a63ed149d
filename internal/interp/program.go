package interp

import (
	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/runtime"
)

// Program is a snippet ready to run: the checked syntax tree plus its
// regex literals, compiled once.
type Program struct {
	Name    string
	ast     *ast.Program
	regexes map[*ast.RegexLit]*runtime.Regex
}

// Compile prepares prog for execution. Every regex literal is compiled
// here so a bad pattern fails before any record is read.
func Compile(name string, prog *ast.Program) (*Program, error) {
	p := &Program{
		Name:    name,
		ast:     prog,
		regexes: make(map[*ast.RegexLit]*runtime.Regex),
	}

	var err error
	ast.Walk(prog, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		lit, ok := n.(*ast.RegexLit)
		if !ok {
			return true
		}
		re, cerr := runtime.Compile(lit.Pattern)
		if cerr != nil {
			err = &CompileError{Pos: lit.Pos(), Pattern: lit.Pattern, Err: cerr}
			return false
		}
		p.regexes[lit] = re
		return true
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AST returns the syntax tree of the program.
func (p *Program) AST() *ast.Program { return p.ast }
