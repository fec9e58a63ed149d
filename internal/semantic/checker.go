package semantic

import (
	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/bundle"
	"github.com/kolkov/upype/internal/token"
)

// Role identifies which of the three snippets a program is.
type Role uint8

const (
	RoleBefore Role = iota
	RoleMain
	RoleAfter
)

// String returns the snippet name used in diagnostics.
func (r Role) String() string {
	switch r {
	case RoleBefore:
		return "before"
	case RoleMain:
		return "main"
	case RoleAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Checker validates a single parsed snippet.
type Checker struct {
	role   Role
	errors ErrorList
	funcs  map[string]token.Position
}

// Check validates prog as the snippet identified by role.
// It returns an ErrorList, or nil when the snippet is valid.
func Check(prog *ast.Program, role Role) error {
	c := &Checker{
		role:  role,
		funcs: make(map[string]token.Position),
	}
	c.checkProgram(prog)
	return c.errors.Err()
}

func (c *Checker) checkProgram(prog *ast.Program) {
	for _, fn := range prog.Functions {
		c.checkFunction(fn)
	}
	for _, stmt := range prog.Stmts {
		c.checkStmt(stmt)
	}
}

func (c *Checker) checkFunction(fn *ast.FuncDecl) {
	if fn.Name == bundle.Name {
		c.errors.Add(fn.NamePos, errBundleFunc)
	}
	if prev, ok := c.funcs[fn.Name]; ok {
		c.errors.Add(fn.NamePos, errDuplicateFunc, fn.Name, prev)
	} else {
		c.funcs[fn.Name] = fn.NamePos
	}
	for _, p := range fn.Params {
		if p == bundle.Name {
			c.errors.Add(fn.NamePos, errBundleParam)
		}
	}
	if fn.Body != nil {
		c.checkStmt(fn.Body)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt) {
	if stmt == nil {
		return
	}

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		c.checkExpr(s.Expr)

	case *ast.PrintStmt:
		for _, arg := range s.Args {
			c.checkExpr(arg)
		}

	case *ast.BlockStmt:
		if s == nil {
			return
		}
		for _, inner := range s.Stmts {
			c.checkStmt(inner)
		}

	case *ast.IfStmt:
		c.checkExpr(s.Cond)
		c.checkStmt(s.Then)
		c.checkStmt(s.Else)

	case *ast.WhileStmt:
		c.checkExpr(s.Cond)
		c.checkStmt(s.Body)

	case *ast.DoWhileStmt:
		c.checkStmt(s.Body)
		c.checkExpr(s.Cond)

	case *ast.ForStmt:
		c.checkStmt(s.Init)
		c.checkExpr(s.Cond)
		c.checkStmt(s.Post)
		c.checkStmt(s.Body)

	case *ast.ForInStmt:
		if s.Var.Name == bundle.Name {
			c.errors.Add(s.Var.Pos(), errAssignBundle)
		}
		c.checkExpr(s.Container)
		c.checkStmt(s.Body)

	case *ast.NextStmt:
		if c.role != RoleMain {
			c.errors.Add(s.Pos(), errNextOutsideMain)
		}

	case *ast.ExitStmt:
		c.checkExpr(s.Code)

	case *ast.ReturnStmt:
		c.checkExpr(s.Value)

	case *ast.DeleteStmt:
		switch target := s.Target.(type) {
		case *ast.Ident:
			if target.Name == bundle.Name {
				c.errors.Add(s.Pos(), errDeleteBundle)
			}
		case *ast.IndexExpr:
			if isBundle(target.X) {
				c.errors.Add(s.Pos(), errDeleteBundle)
			}
		}
		c.checkExpr(s.Target)

	case *ast.BreakStmt, *ast.ContinueStmt:
		// placement is checked by the parser
	}
}

func (c *Checker) checkExpr(expr ast.Expr) {
	if expr == nil {
		return
	}

	switch e := expr.(type) {
	case *ast.NumLit, *ast.StrLit, *ast.RegexLit, *ast.Ident:
		// No additional checks needed

	case *ast.MemberExpr:
		if isBundle(e.X) && !bundle.IsAttr(e.Name) {
			c.errors.Add(e.NamePos, errUnknownAttr, e.Name)
		}
		c.checkExpr(e.X)

	case *ast.FieldExpr:
		c.checkExpr(e.Index)

	case *ast.IndexExpr:
		c.checkExpr(e.X)
		c.checkExpr(e.Index)

	case *ast.BinaryExpr:
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)

	case *ast.UnaryExpr:
		if e.Op == token.INCR || e.Op == token.DECR {
			c.checkTarget(e.Expr)
		}
		c.checkExpr(e.Expr)

	case *ast.TernaryExpr:
		c.checkExpr(e.Cond)
		c.checkExpr(e.Then)
		c.checkExpr(e.Else)

	case *ast.AssignExpr:
		c.checkTarget(e.Left)
		c.checkExpr(e.Left)
		c.checkExpr(e.Right)

	case *ast.ConcatExpr:
		for _, sub := range e.Exprs {
			c.checkExpr(sub)
		}

	case *ast.GroupExpr:
		c.checkExpr(e.Expr)

	case *ast.InExpr:
		c.checkExpr(e.Key)
		c.checkExpr(e.Container)

	case *ast.MatchExpr:
		c.checkExpr(e.Expr)
		c.checkExpr(e.Pattern)

	case *ast.CallExpr:
		c.checkExpr(e.Func)
		for _, arg := range e.Args {
			c.checkExpr(arg)
		}
	}
}

// checkTarget validates the left side of an assignment or ++/--.
func (c *Checker) checkTarget(target ast.Expr) {
	switch t := target.(type) {
	case *ast.Ident:
		if t.Name == bundle.Name {
			c.errors.Add(t.Pos(), errAssignBundle)
		}
	case *ast.IndexExpr:
		if isBundle(t.X) {
			c.errors.Add(t.Pos(), errAssignBundleItem)
		}
	case *ast.MemberExpr:
		if isBundle(t.X) && bundle.IsReadOnly(t.Name) {
			c.errors.Add(t.NamePos, errReadOnlyAttr, t.Name)
		}
	}
}

func isBundle(e ast.Expr) bool {
	id, ok := e.(*ast.Ident)
	return ok && id.Name == bundle.Name
}
