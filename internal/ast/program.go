package ast

import "github.com/kolkov/upype/internal/token"

// Program is one parsed snippet: a list of top-level statements plus the
// functions it declares. Functions become global values when the snippet
// first runs, so a function declared in the before snippet is visible to
// main and after.
type Program struct {
	// Filename is the snippet name used in diagnostics.
	Filename string

	Stmts     []Stmt
	Functions []*FuncDecl

	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the first token in the program.
func (p *Program) Pos() token.Position { return p.StartPos }

// End returns the position after the last token in the program.
func (p *Program) End() token.Position { return p.EndPos }

// FuncDecl represents function name(a, b) { body }.
// Parameters are local to the call; every other assignment is global.
type FuncDecl struct {
	Name    string
	Params  []string
	Body    *BlockStmt
	NamePos token.Position

	StartPos token.Position
	EndPos   token.Position
}

// Pos returns the position of the function keyword.
func (f *FuncDecl) Pos() token.Position { return f.StartPos }

// End returns the position after the function body.
func (f *FuncDecl) End() token.Position { return f.EndPos }

var (
	_ Node = (*Program)(nil)
	_ Node = (*FuncDecl)(nil)
)
