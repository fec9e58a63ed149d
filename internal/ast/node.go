// Package ast defines the abstract syntax tree for upype snippets.
//
// Node hierarchy:
//
//	Node (interface)
//	├── Expr (interface) - expressions that produce values
//	│   ├── NumLit, StrLit, RegexLit - literals
//	│   ├── Ident, FieldExpr, IndexExpr, MemberExpr - references
//	│   ├── BinaryExpr, UnaryExpr, TernaryExpr, AssignExpr - operations
//	│   ├── ConcatExpr, GroupExpr, InExpr, MatchExpr - special
//	│   └── CallExpr - calls of builtins, imports and snippet functions
//	├── Stmt (interface) - statements that perform actions
//	│   ├── ExprStmt, PrintStmt, IfStmt, BlockStmt - basic
//	│   ├── WhileStmt, DoWhileStmt, ForStmt, ForInStmt - loops
//	│   └── BreakStmt, ContinueStmt, NextStmt, ExitStmt, ReturnStmt, DeleteStmt - control
//	└── Program, FuncDecl - top-level structures
package ast

import "github.com/kolkov/upype/internal/token"

// Node is the interface implemented by all AST nodes.
type Node interface {
	// Pos returns the position of the first character belonging to this node.
	Pos() token.Position

	// End returns the position of the first character immediately after this node.
	End() token.Position
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// BaseExpr provides common fields for all expression nodes.
type BaseExpr struct {
	StartPos token.Position
	EndPos   token.Position
}

func (b *BaseExpr) Pos() token.Position { return b.StartPos }
func (b *BaseExpr) End() token.Position { return b.EndPos }
func (b *BaseExpr) exprNode()           {}

// BaseStmt provides common fields for all statement nodes.
type BaseStmt struct {
	StartPos token.Position
	EndPos   token.Position
}

func (b *BaseStmt) Pos() token.Position { return b.StartPos }
func (b *BaseStmt) End() token.Position { return b.EndPos }
func (b *BaseStmt) stmtNode()           {}

// IsLValue returns true if the expression can be assigned to.
func IsLValue(e Expr) bool {
	switch e.(type) {
	case *Ident, *FieldExpr, *IndexExpr, *MemberExpr:
		return true
	default:
		return false
	}
}

// MakeBaseExpr creates a BaseExpr with the given positions.
func MakeBaseExpr(start, end token.Position) BaseExpr {
	return BaseExpr{StartPos: start, EndPos: end}
}

// MakeBaseStmt creates a BaseStmt with the given positions.
func MakeBaseStmt(start, end token.Position) BaseStmt {
	return BaseStmt{StartPos: start, EndPos: end}
}
