package ast_test

import (
	"strings"
	"testing"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/token"
)

// TestNodeInterface verifies all node types implement Node correctly.
func TestNodeInterface(t *testing.T) {
	pos := token.Position{Line: 1, Column: 1, Offset: 0}
	endPos := token.Position{Line: 1, Column: 10, Offset: 9}

	tests := []struct {
		name string
		node ast.Node
	}{
		{"NumLit", &ast.NumLit{BaseExpr: ast.MakeBaseExpr(pos, endPos)}},
		{"StrLit", &ast.StrLit{BaseExpr: ast.MakeBaseExpr(pos, endPos)}},
		{"MemberExpr", &ast.MemberExpr{BaseExpr: ast.MakeBaseExpr(pos, endPos)}},
		{"CallExpr", &ast.CallExpr{BaseExpr: ast.MakeBaseExpr(pos, endPos)}},
		{"ExprStmt", &ast.ExprStmt{BaseStmt: ast.MakeBaseStmt(pos, endPos)}},
		{"NextStmt", &ast.NextStmt{BaseStmt: ast.MakeBaseStmt(pos, endPos)}},
		{"Program", &ast.Program{StartPos: pos, EndPos: endPos}},
		{"FuncDecl", &ast.FuncDecl{StartPos: pos, EndPos: endPos}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Pos(); got != pos {
				t.Errorf("Pos() = %v, want %v", got, pos)
			}
			if got := tt.node.End(); got != endPos {
				t.Errorf("End() = %v, want %v", got, endPos)
			}
		})
	}
}

// TestIsLValue verifies lvalue detection.
func TestIsLValue(t *testing.T) {
	tests := []struct {
		name   string
		expr   ast.Expr
		expect bool
	}{
		{"Ident", &ast.Ident{Name: "x"}, true},
		{"FieldExpr", &ast.FieldExpr{}, true},
		{"IndexExpr", &ast.IndexExpr{}, true},
		{"MemberExpr", &ast.MemberExpr{Name: "record"}, true},
		{"NumLit", &ast.NumLit{Value: 42}, false},
		{"StrLit", &ast.StrLit{Value: "hello"}, false},
		{"BinaryExpr", &ast.BinaryExpr{}, false},
		{"CallExpr", &ast.CallExpr{}, false},
		{"GroupExpr", &ast.GroupExpr{Expr: &ast.Ident{Name: "x"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.IsLValue(tt.expr); got != tt.expect {
				t.Errorf("IsLValue(%s) = %v, want %v", tt.name, got, tt.expect)
			}
		})
	}
}

// TestWalk verifies AST walking, including optional children left nil.
func TestWalk(t *testing.T) {
	// function f(a) { return a + y }
	// for (;;) { if (x) print _.record }
	prog := &ast.Program{
		Functions: []*ast.FuncDecl{{
			Name:   "f",
			Params: []string{"a"},
			Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.BinaryExpr{
					Left:  &ast.Ident{Name: "a"},
					Op:    token.ADD,
					Right: &ast.Ident{Name: "y"},
				}},
			}},
		}},
		Stmts: []ast.Stmt{
			&ast.ForStmt{Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.IfStmt{
					Cond: &ast.Ident{Name: "x"},
					Then: &ast.PrintStmt{Args: []ast.Expr{
						&ast.MemberExpr{X: &ast.Ident{Name: "_"}, Name: "record"},
					}},
				},
			}}},
		},
	}

	var identCount, binaryCount, memberCount int
	ast.Walk(prog, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Ident:
			identCount++
		case *ast.BinaryExpr:
			binaryCount++
		case *ast.MemberExpr:
			memberCount++
		}
		return true
	})

	if identCount != 4 {
		t.Errorf("identCount = %d, want 4", identCount)
	}
	if binaryCount != 1 {
		t.Errorf("binaryCount = %d, want 1", binaryCount)
	}
	if memberCount != 1 {
		t.Errorf("memberCount = %d, want 1", memberCount)
	}
}

// Returning false from the callback skips a subtree.
func TestWalkPrune(t *testing.T) {
	prog := &ast.Program{Stmts: []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.CallExpr{
			Func: &ast.Ident{Name: "f"},
			Args: []ast.Expr{&ast.Ident{Name: "x"}},
		}},
	}}

	var idents []string
	ast.Walk(prog, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok {
			idents = append(idents, id.Name)
		}
		_, isCall := n.(*ast.CallExpr)
		return !isCall
	})

	if len(idents) != 0 {
		t.Errorf("visited %v inside a pruned call", idents)
	}
}

// TestPrinter verifies AST pretty-printing.
func TestPrinter(t *testing.T) {
	tests := []struct {
		name   string
		node   ast.Node
		expect string
	}{
		{
			name:   "NumLit raw",
			node:   &ast.NumLit{Value: 3.14, Raw: "3.14"},
			expect: "3.14",
		},
		{
			name:   "NumLit value",
			node:   &ast.NumLit{Value: 42},
			expect: "42",
		},
		{
			name:   "StrLit",
			node:   &ast.StrLit{Value: "a\tb"},
			expect: `"a\tb"`,
		},
		{
			name:   "RegexLit with slash",
			node:   &ast.RegexLit{Pattern: "a/b"},
			expect: `/a\/b/`,
		},
		{
			name:   "FieldExpr",
			node:   &ast.FieldExpr{Index: &ast.NumLit{Value: 1, Raw: "1"}},
			expect: "$1",
		},
		{
			name: "MemberExpr",
			node: &ast.MemberExpr{
				X:    &ast.MemberExpr{X: &ast.Ident{Name: "_"}, Name: "file"},
				Name: "name",
			},
			expect: "_.file.name",
		},
		{
			name: "nested binary",
			node: &ast.BinaryExpr{
				Left: &ast.BinaryExpr{
					Left:  &ast.Ident{Name: "a"},
					Op:    token.ADD,
					Right: &ast.Ident{Name: "b"},
				},
				Op:    token.MUL,
				Right: &ast.Ident{Name: "c"},
			},
			expect: "(a + b) * c",
		},
		{
			name:   "UnaryExpr postfix",
			node:   &ast.UnaryExpr{Op: token.INCR, Expr: &ast.Ident{Name: "n"}, Post: true},
			expect: "n++",
		},
		{
			name: "CallExpr",
			node: &ast.CallExpr{
				Func: &ast.Ident{Name: "substr"},
				Args: []ast.Expr{&ast.Ident{Name: "s"}, &ast.NumLit{Value: 2, Raw: "2"}},
			},
			expect: "substr(s, 2)",
		},
		{
			name:   "NextStmt",
			node:   &ast.NextStmt{},
			expect: "next",
		},
		{
			name: "ExitStmt",
			node:   &ast.ExitStmt{Code: &ast.NumLit{Value: 3, Raw: "3"}},
			expect: "exit 3",
		},
		{
			name: "PrintStmt",
			node: &ast.PrintStmt{Args: []ast.Expr{
				&ast.Ident{Name: "a"},
				&ast.Ident{Name: "b"},
			}},
			expect: "print a, b",
		},
		{
			name: "ForInStmt",
			node: &ast.ForInStmt{
				Var:       &ast.Ident{Name: "k"},
				Container: &ast.Ident{Name: "seen"},
				Body:      &ast.BreakStmt{},
			},
			expect: "for (k in seen) break",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ast.String(tt.node); got != tt.expect {
				t.Errorf("String() = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestPrintProgram(t *testing.T) {
	prog := &ast.Program{
		Functions: []*ast.FuncDecl{{
			Name:   "f",
			Params: []string{"a", "b"},
			Body: &ast.BlockStmt{Stmts: []ast.Stmt{
				&ast.ReturnStmt{Value: &ast.Ident{Name: "a"}},
			}},
		}},
		Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.RegexLit{Pattern: "x"},
				Then: &ast.BlockStmt{Stmts: []ast.Stmt{&ast.NextStmt{}}},
			},
		},
	}

	want := strings.Join([]string{
		"function f(a, b) {",
		"    return a",
		"}",
		"if (/x/) {",
		"    next",
		"}",
		"",
	}, "\n")
	if got := ast.String(prog); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}
}
