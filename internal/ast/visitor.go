package ast

// Walk traverses an AST in depth-first order.
// For each node, it calls fn(node). If fn returns false,
// the children of that node are not visited.
//
// Example: count all identifiers
//
//	count := 0
//	ast.Walk(program, func(n ast.Node) bool {
//	    if _, ok := n.(*ast.Ident); ok {
//	        count++
//	    }
//	    return true
//	})
func Walk(node Node, fn func(Node) bool) {
	if isNil(node) || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, f := range n.Functions {
			Walk(f, fn)
		}
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *FuncDecl:
		Walk(n.Body, fn)

	case *NumLit, *StrLit, *RegexLit, *Ident:
		// no children

	case *FieldExpr:
		Walk(n.Index, fn)

	case *IndexExpr:
		Walk(n.X, fn)
		Walk(n.Index, fn)

	case *MemberExpr:
		Walk(n.X, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryExpr:
		Walk(n.Expr, fn)

	case *TernaryExpr:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *AssignExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *ConcatExpr:
		for _, e := range n.Exprs {
			Walk(e, fn)
		}

	case *GroupExpr:
		Walk(n.Expr, fn)

	case *InExpr:
		Walk(n.Key, fn)
		Walk(n.Container, fn)

	case *MatchExpr:
		Walk(n.Expr, fn)
		Walk(n.Pattern, fn)

	case *CallExpr:
		Walk(n.Func, fn)
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *ExprStmt:
		Walk(n.Expr, fn)

	case *PrintStmt:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *IfStmt:
		Walk(n.Cond, fn)
		Walk(n.Then, fn)
		Walk(n.Else, fn)

	case *WhileStmt:
		Walk(n.Cond, fn)
		Walk(n.Body, fn)

	case *DoWhileStmt:
		Walk(n.Body, fn)
		Walk(n.Cond, fn)

	case *ForStmt:
		Walk(n.Init, fn)
		Walk(n.Cond, fn)
		Walk(n.Post, fn)
		Walk(n.Body, fn)

	case *ForInStmt:
		Walk(n.Var, fn)
		Walk(n.Container, fn)
		Walk(n.Body, fn)

	case *ExitStmt:
		Walk(n.Code, fn)

	case *ReturnStmt:
		Walk(n.Value, fn)

	case *DeleteStmt:
		Walk(n.Target, fn)

	case *BreakStmt, *ContinueStmt, *NextStmt:
		// no children
	}
}

// isNil catches both a nil interface and a typed nil pointer stored in one,
// which is how optional children (Else, Init, Code...) arrive here.
func isNil(node Node) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *BlockStmt:
		return n == nil
	case *Ident:
		return n == nil
	case *FuncDecl:
		return n == nil
	}
	return false
}
