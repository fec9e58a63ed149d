package ast

// ExprStmt represents an expression used as a statement.
type ExprStmt struct {
	BaseStmt
	Expr Expr
}

// PrintStmt represents print and printf.
// print joins its arguments with a space and ends with a newline;
// print with no arguments prints the current record.
type PrintStmt struct {
	BaseStmt
	Printf bool
	Args   []Expr
}

// BlockStmt represents { stmt; stmt }.
type BlockStmt struct {
	BaseStmt
	Stmts []Stmt
}

// IfStmt represents if (cond) stmt [else stmt].
type IfStmt struct {
	BaseStmt
	Cond Expr
	Then Stmt
	Else Stmt // nil, or another *IfStmt for else-if
}

// WhileStmt represents while (cond) body.
type WhileStmt struct {
	BaseStmt
	Cond Expr
	Body Stmt
}

// DoWhileStmt represents do body while (cond).
type DoWhileStmt struct {
	BaseStmt
	Body Stmt
	Cond Expr
}

// ForStmt represents for (init; cond; post) body.
type ForStmt struct {
	BaseStmt
	Init Stmt // may be nil
	Cond Expr // may be nil, meaning true
	Post Stmt // may be nil
	Body Stmt
}

// ForInStmt represents for (var in container) body.
// Arrays yield their keys in sorted order, lists their 1-based indexes.
type ForInStmt struct {
	BaseStmt
	Var       *Ident
	Container Expr
	Body      Stmt
}

// BreakStmt represents break.
type BreakStmt struct{ BaseStmt }

// ContinueStmt represents continue.
type ContinueStmt struct{ BaseStmt }

// NextStmt abandons the main snippet for the current record and suppresses its echo.
type NextStmt struct{ BaseStmt }

// ExitStmt ends the run after the current record. Code may be nil.
type ExitStmt struct {
	BaseStmt
	Code Expr
}

// ReturnStmt returns from a snippet function. Value may be nil.
type ReturnStmt struct {
	BaseStmt
	Value Expr
}

// DeleteStmt represents delete arr[key] or delete arr.
type DeleteStmt struct {
	BaseStmt
	Target Expr // *Ident or *IndexExpr
}

var (
	_ Stmt = (*ExprStmt)(nil)
	_ Stmt = (*PrintStmt)(nil)
	_ Stmt = (*BlockStmt)(nil)
	_ Stmt = (*IfStmt)(nil)
	_ Stmt = (*WhileStmt)(nil)
	_ Stmt = (*DoWhileStmt)(nil)
	_ Stmt = (*ForStmt)(nil)
	_ Stmt = (*ForInStmt)(nil)
	_ Stmt = (*BreakStmt)(nil)
	_ Stmt = (*ContinueStmt)(nil)
	_ Stmt = (*NextStmt)(nil)
	_ Stmt = (*ExitStmt)(nil)
	_ Stmt = (*ReturnStmt)(nil)
	_ Stmt = (*DeleteStmt)(nil)
)
