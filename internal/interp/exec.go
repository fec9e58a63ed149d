package interp

import (
	"io"
	"strings"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/types"
)

func (in *Interp) execStmts(p *Program, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := in.execStmt(p, s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interp) execStmt(p *Program, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.eval(p, s.Expr)
		return err

	case *ast.PrintStmt:
		return in.execPrint(p, s)

	case *ast.BlockStmt:
		if s == nil {
			return nil
		}
		return in.execStmts(p, s.Stmts)

	case *ast.IfStmt:
		cond, err := in.eval(p, s.Cond)
		if err != nil {
			return err
		}
		if cond.AsBool() {
			return in.execStmt(p, s.Then)
		}
		if s.Else != nil {
			return in.execStmt(p, s.Else)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := in.eval(p, s.Cond)
			if err != nil {
				return err
			}
			if !cond.AsBool() {
				return nil
			}
			if brk, err := loopBody(in.execStmt(p, s.Body)); brk || err != nil {
				return err
			}
		}

	case *ast.DoWhileStmt:
		for {
			if brk, err := loopBody(in.execStmt(p, s.Body)); brk || err != nil {
				return err
			}
			cond, err := in.eval(p, s.Cond)
			if err != nil {
				return err
			}
			if !cond.AsBool() {
				return nil
			}
		}

	case *ast.ForStmt:
		return in.execFor(p, s)

	case *ast.ForInStmt:
		return in.execForIn(p, s)

	case *ast.BreakStmt:
		return errBreak

	case *ast.ContinueStmt:
		return errContinue

	case *ast.NextStmt:
		return ErrNext

	case *ast.ReturnStmt:
		in.retval = types.Null()
		if s.Value != nil {
			v, err := in.eval(p, s.Value)
			if err != nil {
				return err
			}
			in.retval = v
		}
		return errReturn

	case *ast.ExitStmt:
		code := 0
		if s.Code != nil {
			v, err := in.eval(p, s.Code)
			if err != nil {
				return err
			}
			code = int(v.AsNum())
		}
		return &ExitError{Code: code}

	case *ast.DeleteStmt:
		return in.execDelete(p, s)
	}
	return errorf(stmt, "unexpected statement %T", stmt)
}

// loopBody interprets the result of one loop iteration. It reports whether
// the loop must stop and the error to return when it does.
func loopBody(err error) (bool, error) {
	switch err {
	case nil, errContinue:
		return false, nil
	case errBreak:
		return true, nil
	}
	return true, err
}

func (in *Interp) execFor(p *Program, s *ast.ForStmt) error {
	if s.Init != nil {
		if err := in.execStmt(p, s.Init); err != nil {
			return err
		}
	}
	for {
		if s.Cond != nil {
			cond, err := in.eval(p, s.Cond)
			if err != nil {
				return err
			}
			if !cond.AsBool() {
				return nil
			}
		}
		if brk, err := loopBody(in.execStmt(p, s.Body)); brk || err != nil {
			return err
		}
		if s.Post != nil {
			if err := in.execStmt(p, s.Post); err != nil {
				return err
			}
		}
	}
}

// execForIn iterates over a snapshot of the container: array keys in
// sorted order, list indexes from 1, or object attribute names.
func (in *Interp) execForIn(p *Program, s *ast.ForInStmt) error {
	c, err := in.eval(p, s.Container)
	if err != nil {
		return err
	}

	var keys []types.Value
	switch c.Kind() {
	case types.KindNull:
		return nil
	case types.KindArray:
		a, _ := c.Array()
		for _, k := range a.Keys() {
			keys = append(keys, types.NumStr(k))
		}
	case types.KindList:
		l, _ := c.List()
		for i := range l.Len() {
			keys = append(keys, types.Num(float64(i+1)))
		}
	case types.KindObject:
		o, _ := c.Object()
		for _, name := range o.Names() {
			keys = append(keys, types.Str(name))
		}
	default:
		return errorf(s.Container, "cannot iterate over %s", c.TypeName())
	}

	for _, k := range keys {
		if err := in.assign(s.Var, s.Var.Name, k); err != nil {
			return err
		}
		if brk, err := loopBody(in.execStmt(p, s.Body)); brk || err != nil {
			return err
		}
	}
	return nil
}

func (in *Interp) execDelete(p *Program, s *ast.DeleteStmt) error {
	switch t := s.Target.(type) {
	case *ast.Ident:
		v := in.lookup(t.Name)
		switch v.Kind() {
		case types.KindNull:
			return nil
		case types.KindArray:
			a, _ := v.Array()
			a.Clear()
			return nil
		case types.KindList:
			l, _ := v.List()
			for l.Len() > 0 {
				l.Delete(l.Len() - 1)
			}
			return nil
		}
		return errorf(s, "cannot delete from %s", v.TypeName())

	case *ast.IndexExpr:
		c, err := in.eval(p, t.X)
		if err != nil {
			return err
		}
		key, err := in.eval(p, t.Index)
		if err != nil {
			return err
		}
		switch c.Kind() {
		case types.KindNull:
			return nil
		case types.KindArray:
			a, _ := c.Array()
			a.Delete(key.Text())
			return nil
		case types.KindList:
			l, _ := c.List()
			l.Delete(int(key.AsNum()) - 1)
			return nil
		}
		return errorf(s, "cannot delete from %s", c.TypeName())
	}
	return errorf(s, "cannot delete %T", s.Target)
}

func (in *Interp) execPrint(p *Program, s *ast.PrintStmt) error {
	args := make([]types.Value, 0, len(s.Args))
	for _, a := range s.Args {
		v, err := in.eval(p, a)
		if err != nil {
			return err
		}
		args = append(args, v)
	}

	if s.Printf {
		_, err := io.WriteString(in.out, Sprintf(args[0].Text(), args[1:]))
		return errorAt(s, err)
	}

	var sb strings.Builder
	if len(args) == 0 {
		if b := in.bundle(); b != nil {
			sb.WriteString(types.ObjectVal(b).Text())
		}
	}
	for i, v := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(v.Text())
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(in.out, sb.String())
	return errorAt(s, err)
}
