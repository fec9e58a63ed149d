package ast

import "github.com/kolkov/upype/internal/token"

// -----------------------------------------------------------------------------
// Literals
// -----------------------------------------------------------------------------

// NumLit represents a numeric literal.
// Examples: 42, 3.14, 1e10, 0x1F
type NumLit struct {
	BaseExpr
	Value float64
	Raw   string // Original source text
}

// StrLit represents a string literal.
type StrLit struct {
	BaseExpr
	Value string // Unescaped string value
}

// RegexLit represents a regex literal. On its own it matches against the
// current record; as an operand of ~ or a builtin argument it is a pattern.
type RegexLit struct {
	BaseExpr
	Pattern string
}

// -----------------------------------------------------------------------------
// References
// -----------------------------------------------------------------------------

// Ident represents a variable or function name.
type Ident struct {
	BaseExpr
	Name string
}

// FieldExpr is $n: $0 aliases _.record, $n (n >= 1) aliases _.fields[n].
type FieldExpr struct {
	BaseExpr
	Index Expr
}

// IndexExpr represents a subscript: arr[key], _.fields[2].
type IndexExpr struct {
	BaseExpr
	X     Expr
	Index Expr
}

// MemberExpr represents attribute access: _.record, strings.upper.
type MemberExpr struct {
	BaseExpr
	X       Expr
	Name    string
	NamePos token.Position
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// BinaryExpr represents a binary operation.
type BinaryExpr struct {
	BaseExpr
	Left  Expr
	Op    token.Token
	Right Expr
}

// UnaryExpr represents -x, +x, !x, ++x, x++, --x, x--.
type UnaryExpr struct {
	BaseExpr
	Op   token.Token
	Expr Expr
	Post bool // true for postfix
}

// TernaryExpr represents cond ? a : b.
type TernaryExpr struct {
	BaseExpr
	Cond Expr
	Then Expr
	Else Expr
}

// AssignExpr represents an assignment expression.
type AssignExpr struct {
	BaseExpr
	Left  Expr // Ident, FieldExpr, IndexExpr or MemberExpr
	Op    token.Token
	Right Expr
}

// ConcatExpr represents implicit string concatenation: a b c.
type ConcatExpr struct {
	BaseExpr
	Exprs []Expr
}

// GroupExpr represents a parenthesized expression.
type GroupExpr struct {
	BaseExpr
	Expr Expr
}

// InExpr represents key in container.
type InExpr struct {
	BaseExpr
	Key       Expr
	Container Expr
}

// MatchExpr represents expr ~ pattern and expr !~ pattern.
type MatchExpr struct {
	BaseExpr
	Expr    Expr
	Op      token.Token // MATCH or NOT_MATCH
	Pattern Expr
}

// -----------------------------------------------------------------------------
// Calls
// -----------------------------------------------------------------------------

// CallExpr represents a call. Func is an *Ident for builtins, imported
// members and snippet functions, or a *MemberExpr for module.member(...).
type CallExpr struct {
	BaseExpr
	Func Expr
	Args []Expr
}

var (
	_ Expr = (*NumLit)(nil)
	_ Expr = (*StrLit)(nil)
	_ Expr = (*RegexLit)(nil)
	_ Expr = (*Ident)(nil)
	_ Expr = (*FieldExpr)(nil)
	_ Expr = (*IndexExpr)(nil)
	_ Expr = (*MemberExpr)(nil)
	_ Expr = (*BinaryExpr)(nil)
	_ Expr = (*UnaryExpr)(nil)
	_ Expr = (*TernaryExpr)(nil)
	_ Expr = (*AssignExpr)(nil)
	_ Expr = (*ConcatExpr)(nil)
	_ Expr = (*GroupExpr)(nil)
	_ Expr = (*InExpr)(nil)
	_ Expr = (*MatchExpr)(nil)
	_ Expr = (*CallExpr)(nil)
)
