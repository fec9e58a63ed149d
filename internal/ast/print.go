package ast

import (
	"fmt"
	"io"
	"strings"

	"github.com/kolkov/upype/internal/token"
)

// Printer provides pretty-printing for AST nodes.
// It outputs a human-readable representation suitable for debugging.
type Printer struct {
	w      io.Writer
	indent int
	err    error
}

// NewPrinter creates a new Printer that writes to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Print writes a pretty-printed representation of the node to the writer.
func (p *Printer) Print(node Node) error {
	p.printNode(node)
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) writeIndent() {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, strings.Repeat("    ", p.indent))
}

func (p *Printer) printNode(node Node) {
	if isNil(node) {
		p.printf("<nil>")
		return
	}

	switch n := node.(type) {
	case *Program:
		p.printProgram(n)
	case *FuncDecl:
		p.printFuncDecl(n)
	case Expr:
		p.printExpr(n)
	case Stmt:
		p.printStmt(n)
	default:
		p.printf("<%T>", node)
	}
}

func (p *Printer) printProgram(prog *Program) {
	for _, f := range prog.Functions {
		p.printFuncDecl(f)
		p.printf("\n")
	}
	for _, s := range prog.Stmts {
		p.printStmt(s)
		p.printf("\n")
	}
}

func (p *Printer) printFuncDecl(f *FuncDecl) {
	p.printf("function %s(%s) ", f.Name, strings.Join(f.Params, ", "))
	p.printStmt(f.Body)
}

func (p *Printer) printExpr(e Expr) {
	if e == nil {
		p.printf("<nil>")
		return
	}

	switch n := e.(type) {
	case *NumLit:
		if n.Raw != "" {
			p.printf("%s", n.Raw)
		} else {
			p.printf("%g", n.Value)
		}

	case *StrLit:
		p.printf("%q", n.Value)

	case *RegexLit:
		p.printf("/%s/", strings.ReplaceAll(n.Pattern, "/", `\/`))

	case *Ident:
		p.printf("%s", n.Name)

	case *FieldExpr:
		p.printf("$")
		p.printOperand(n.Index)

	case *IndexExpr:
		p.printOperand(n.X)
		p.printf("[")
		p.printExpr(n.Index)
		p.printf("]")

	case *MemberExpr:
		p.printOperand(n.X)
		p.printf(".%s", n.Name)

	case *BinaryExpr:
		p.printOperand(n.Left)
		p.printf(" %s ", n.Op)
		p.printOperand(n.Right)

	case *UnaryExpr:
		if n.Post {
			p.printOperand(n.Expr)
			p.printf("%s", n.Op)
		} else {
			p.printf("%s", n.Op)
			p.printOperand(n.Expr)
		}

	case *TernaryExpr:
		p.printOperand(n.Cond)
		p.printf(" ? ")
		p.printOperand(n.Then)
		p.printf(" : ")
		p.printOperand(n.Else)

	case *AssignExpr:
		p.printExpr(n.Left)
		p.printf(" %s ", n.Op)
		p.printExpr(n.Right)

	case *ConcatExpr:
		for i, expr := range n.Exprs {
			if i > 0 {
				p.printf(" ")
			}
			p.printOperand(expr)
		}

	case *GroupExpr:
		p.printf("(")
		p.printExpr(n.Expr)
		p.printf(")")

	case *InExpr:
		p.printOperand(n.Key)
		p.printf(" in ")
		p.printOperand(n.Container)

	case *MatchExpr:
		p.printOperand(n.Expr)
		p.printf(" %s ", n.Op)
		p.printOperand(n.Pattern)

	case *CallExpr:
		p.printExpr(n.Func)
		p.printf("(")
		for i, arg := range n.Args {
			if i > 0 {
				p.printf(", ")
			}
			p.printExpr(arg)
		}
		p.printf(")")

	default:
		p.printf("<%T>", e)
	}
}

// printOperand prints e, parenthesized when it is itself an operation.
func (p *Printer) printOperand(e Expr) {
	if !needsParens(e) {
		p.printExpr(e)
		return
	}
	p.printf("(")
	p.printExpr(e)
	p.printf(")")
}

func (p *Printer) printStmt(s Stmt) {
	if s == nil {
		p.printf("<nil>")
		return
	}

	switch n := s.(type) {
	case *ExprStmt:
		p.printExpr(n.Expr)

	case *PrintStmt:
		if n.Printf {
			p.printf("printf")
		} else {
			p.printf("print")
		}
		for i, arg := range n.Args {
			if i > 0 {
				p.printf(",")
			}
			p.printf(" ")
			p.printExpr(arg)
		}

	case *BlockStmt:
		p.printf("{\n")
		p.indent++
		for _, stmt := range n.Stmts {
			p.writeIndent()
			p.printStmt(stmt)
			p.printf("\n")
		}
		p.indent--
		p.writeIndent()
		p.printf("}")

	case *IfStmt:
		p.printf("if (")
		p.printExpr(n.Cond)
		p.printf(") ")
		p.printStmt(n.Then)
		if n.Else != nil {
			p.printf(" else ")
			p.printStmt(n.Else)
		}

	case *WhileStmt:
		p.printf("while (")
		p.printExpr(n.Cond)
		p.printf(") ")
		p.printStmt(n.Body)

	case *DoWhileStmt:
		p.printf("do ")
		p.printStmt(n.Body)
		p.printf(" while (")
		p.printExpr(n.Cond)
		p.printf(")")

	case *ForStmt:
		p.printf("for (")
		if n.Init != nil {
			p.printStmt(n.Init)
		}
		p.printf("; ")
		if n.Cond != nil {
			p.printExpr(n.Cond)
		}
		p.printf("; ")
		if n.Post != nil {
			p.printStmt(n.Post)
		}
		p.printf(") ")
		p.printStmt(n.Body)

	case *ForInStmt:
		p.printf("for (%s in ", n.Var.Name)
		p.printExpr(n.Container)
		p.printf(") ")
		p.printStmt(n.Body)

	case *BreakStmt:
		p.printf("break")

	case *ContinueStmt:
		p.printf("continue")

	case *NextStmt:
		p.printf("next")

	case *ReturnStmt:
		p.printf("return")
		if n.Value != nil {
			p.printf(" ")
			p.printExpr(n.Value)
		}

	case *ExitStmt:
		p.printf("exit")
		if n.Code != nil {
			p.printf(" ")
			p.printExpr(n.Code)
		}

	case *DeleteStmt:
		p.printf("delete ")
		p.printExpr(n.Target)

	default:
		p.printf("<%T>", s)
	}
}

// String returns a string representation of the node.
func String(node Node) string {
	var sb strings.Builder
	p := NewPrinter(&sb)
	p.Print(node)
	return sb.String()
}

func needsParens(e Expr) bool {
	switch n := e.(type) {
	case *BinaryExpr, *TernaryExpr, *AssignExpr, *ConcatExpr, *InExpr, *MatchExpr:
		return true
	case *UnaryExpr:
		return n.Op == token.SUB || n.Op == token.ADD || n.Op == token.NOT
	default:
		return false
	}
}
