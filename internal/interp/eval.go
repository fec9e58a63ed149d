package interp

import (
	"errors"
	"math"
	"strings"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/bundle"
	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/token"
	"github.com/kolkov/upype/internal/types"
)

var errDivZero = errors.New("division by zero")

func (in *Interp) eval(p *Program, e ast.Expr) (types.Value, error) {
	switch n := e.(type) {
	case *ast.NumLit:
		return types.Num(n.Value), nil

	case *ast.StrLit:
		return types.Str(n.Value), nil

	case *ast.RegexLit:
		// A bare /re/ tests the current record.
		rec, err := (&fieldRef{in: in, node: n}).get()
		if err != nil {
			return types.Null(), err
		}
		return types.Bool(p.regexes[n].MatchString(rec.Text())), nil

	case *ast.Ident:
		return in.lookup(n.Name), nil

	case *ast.FieldExpr, *ast.IndexExpr, *ast.MemberExpr:
		lv, err := in.resolve(p, e, false)
		if err != nil {
			return types.Null(), err
		}
		v, err := lv.get()
		return v, errorAt(e, err)

	case *ast.GroupExpr:
		return in.eval(p, n.Expr)

	case *ast.BinaryExpr:
		return in.evalBinary(p, n)

	case *ast.UnaryExpr:
		return in.evalUnary(p, n)

	case *ast.TernaryExpr:
		cond, err := in.eval(p, n.Cond)
		if err != nil {
			return types.Null(), err
		}
		if cond.AsBool() {
			return in.eval(p, n.Then)
		}
		return in.eval(p, n.Else)

	case *ast.AssignExpr:
		return in.evalAssign(p, n)

	case *ast.ConcatExpr:
		var sb strings.Builder
		for _, x := range n.Exprs {
			v, err := in.eval(p, x)
			if err != nil {
				return types.Null(), err
			}
			sb.WriteString(v.Text())
		}
		return types.Str(sb.String()), nil

	case *ast.InExpr:
		return in.evalIn(p, n)

	case *ast.MatchExpr:
		subject, err := in.eval(p, n.Expr)
		if err != nil {
			return types.Null(), err
		}
		re, err := in.pattern(p, n.Pattern)
		if err != nil {
			return types.Null(), err
		}
		matched := re.MatchString(subject.Text())
		if n.Op == token.NOT_MATCH {
			matched = !matched
		}
		return types.Bool(matched), nil

	case *ast.CallExpr:
		return in.evalCall(p, n)
	}
	return types.Null(), errorf(e, "unexpected expression %T", e)
}

// pattern returns the regex for e: a literal compiled ahead of time, or
// any other expression used as a dynamic pattern string.
func (in *Interp) pattern(p *Program, e ast.Expr) (*runtime.Regex, error) {
	if lit, ok := e.(*ast.RegexLit); ok {
		return p.regexes[lit], nil
	}
	v, err := in.eval(p, e)
	if err != nil {
		return nil, err
	}
	re, err := in.regexes.Get(v.Text())
	return re, errorAt(e, err)
}

func (in *Interp) evalBinary(p *Program, n *ast.BinaryExpr) (types.Value, error) {
	left, err := in.eval(p, n.Left)
	if err != nil {
		return types.Null(), err
	}

	switch n.Op {
	case token.AND:
		if !left.AsBool() {
			return types.Num(0), nil
		}
		right, err := in.eval(p, n.Right)
		if err != nil {
			return types.Null(), err
		}
		return types.Bool(right.AsBool()), nil
	case token.OR:
		if left.AsBool() {
			return types.Num(1), nil
		}
		right, err := in.eval(p, n.Right)
		if err != nil {
			return types.Null(), err
		}
		return types.Bool(right.AsBool()), nil
	}

	right, err := in.eval(p, n.Right)
	if err != nil {
		return types.Null(), err
	}

	switch n.Op {
	case token.EQUALS:
		return types.Bool(types.Equal(left, right)), nil
	case token.NOT_EQUALS:
		return types.Bool(!types.Equal(left, right)), nil
	case token.LESS:
		return types.Bool(types.Compare(left, right) < 0), nil
	case token.LTE:
		return types.Bool(types.Compare(left, right) <= 0), nil
	case token.GREATER:
		return types.Bool(types.Compare(left, right) > 0), nil
	case token.GTE:
		return types.Bool(types.Compare(left, right) >= 0), nil
	}

	r, err := arith(n.Op, left.AsNum(), right.AsNum())
	if err != nil {
		return types.Null(), errorAt(n, err)
	}
	return types.Num(r), nil
}

// arith applies a numeric operator.
func arith(op token.Token, l, r float64) (float64, error) {
	switch op {
	case token.ADD, token.ADD_ASSIGN:
		return l + r, nil
	case token.SUB, token.SUB_ASSIGN:
		return l - r, nil
	case token.MUL, token.MUL_ASSIGN:
		return l * r, nil
	case token.DIV, token.DIV_ASSIGN:
		if r == 0 {
			return 0, errDivZero
		}
		return l / r, nil
	case token.MOD, token.MOD_ASSIGN:
		if r == 0 {
			return 0, errDivZero
		}
		return math.Mod(l, r), nil
	case token.POW, token.POW_ASSIGN:
		return math.Pow(l, r), nil
	}
	return 0, errors.New("unknown operator " + op.String())
}

func (in *Interp) evalUnary(p *Program, n *ast.UnaryExpr) (types.Value, error) {
	switch n.Op {
	case token.INCR, token.DECR:
		lv, err := in.resolve(p, n.Expr, true)
		if err != nil {
			return types.Null(), err
		}
		cur, err := lv.get()
		if err != nil {
			return types.Null(), errorAt(n, err)
		}
		old := cur.AsNum()
		next := old + 1
		if n.Op == token.DECR {
			next = old - 1
		}
		if err := lv.set(types.Num(next)); err != nil {
			return types.Null(), errorAt(n, err)
		}
		if n.Post {
			return types.Num(old), nil
		}
		return types.Num(next), nil
	}

	v, err := in.eval(p, n.Expr)
	if err != nil {
		return types.Null(), err
	}
	switch n.Op {
	case token.NOT:
		return types.Bool(!v.AsBool()), nil
	case token.SUB:
		return types.Num(-v.AsNum()), nil
	case token.ADD:
		return types.Num(v.AsNum()), nil
	}
	return types.Null(), errorf(n, "unexpected unary operator %s", n.Op)
}

func (in *Interp) evalAssign(p *Program, n *ast.AssignExpr) (types.Value, error) {
	lv, err := in.resolve(p, n.Left, true)
	if err != nil {
		return types.Null(), err
	}
	v, err := in.eval(p, n.Right)
	if err != nil {
		return types.Null(), err
	}
	if n.Op != token.ASSIGN {
		cur, err := lv.get()
		if err != nil {
			return types.Null(), errorAt(n, err)
		}
		r, err := arith(n.Op, cur.AsNum(), v.AsNum())
		if err != nil {
			return types.Null(), errorAt(n, err)
		}
		v = types.Num(r)
	}
	if err := lv.set(v); err != nil {
		return types.Null(), errorAt(n, err)
	}
	return v, nil
}

func (in *Interp) evalIn(p *Program, n *ast.InExpr) (types.Value, error) {
	key, err := in.eval(p, n.Key)
	if err != nil {
		return types.Null(), err
	}
	c, err := in.eval(p, n.Container)
	if err != nil {
		return types.Null(), err
	}
	switch c.Kind() {
	case types.KindNull:
		return types.Num(0), nil
	case types.KindArray:
		a, _ := c.Array()
		return types.Bool(a.Has(key.Text())), nil
	case types.KindList:
		l, _ := c.List()
		i := int(key.AsNum())
		return types.Bool(i >= 1 && i <= l.Len()), nil
	case types.KindObject:
		o, _ := c.Object()
		_, err := o.Get(key.Text())
		return types.Bool(err == nil), nil
	}
	return types.Null(), errorf(n, "'in' needs an array, list or object, not %s", c.TypeName())
}

func (in *Interp) evalCall(p *Program, n *ast.CallExpr) (types.Value, error) {
	if id, ok := n.Func.(*ast.Ident); ok && !in.defined(id.Name) {
		switch id.Name {
		case "sub":
			return in.callSub(p, n, false)
		case "gsub":
			return in.callSub(p, n, true)
		}
	}

	fv, err := in.eval(p, n.Func)
	if err != nil {
		return types.Null(), err
	}
	f, ok := fv.Func()
	if !ok {
		return types.Null(), errorf(n, "%s is not a function (%s)", ast.String(n.Func), fv.TypeName())
	}

	args := make([]types.Value, len(n.Args))
	for i, a := range n.Args {
		// A regex literal argument passes its pattern.
		if lit, ok := a.(*ast.RegexLit); ok {
			args[i] = types.Str(lit.Pattern)
			continue
		}
		v, err := in.eval(p, a)
		if err != nil {
			return types.Null(), err
		}
		args[i] = v
	}

	v, err := f.Call(args)
	return v, errorAt(n, err)
}

// defined reports whether name is bound in any scope, so it shadows a
// builtin of the same name.
func (in *Interp) defined(name string) bool {
	if n := len(in.frames); n > 0 {
		if _, ok := in.frames[n-1][name]; ok {
			return true
		}
	}
	if _, ok := in.env.Locals[name]; ok {
		return true
	}
	_, ok := in.env.Globals[name]
	return ok
}

// callSub implements sub(re, repl[, target]) and gsub. The target, by
// default the record, is assigned the result; the count is returned.
func (in *Interp) callSub(p *Program, n *ast.CallExpr, global bool) (types.Value, error) {
	name := "sub"
	if global {
		name = "gsub"
	}
	if len(n.Args) < 2 || len(n.Args) > 3 {
		return types.Null(), errorf(n, "%s: expected 2 or 3 arguments, got %d", name, len(n.Args))
	}

	re, err := in.pattern(p, n.Args[0])
	if err != nil {
		return types.Null(), err
	}
	repl, err := in.eval(p, n.Args[1])
	if err != nil {
		return types.Null(), err
	}

	var target lvalue = &fieldRef{in: in, node: n}
	if len(n.Args) == 3 {
		arg := n.Args[2]
		if !ast.IsLValue(arg) {
			v, err := in.eval(p, arg)
			if err != nil {
				return types.Null(), err
			}
			_, count := substitute(re, repl.Text(), v.Text(), global)
			return types.Num(float64(count)), nil
		}
		if target, err = in.resolve(p, arg, true); err != nil {
			return types.Null(), err
		}
	}

	cur, err := target.get()
	if err != nil {
		return types.Null(), errorAt(n, err)
	}
	result, count := substitute(re, repl.Text(), cur.Text(), global)
	if count > 0 {
		if err := target.set(types.Str(result)); err != nil {
			return types.Null(), errorAt(n, err)
		}
	}
	return types.Num(float64(count)), nil
}

// substitute replaces the first (or every) match of re in s. In repl, &
// stands for the matched text and \& for a literal &.
func substitute(re *runtime.Regex, repl, s string, global bool) (string, int) {
	count := 0
	expand := func(matched string) string {
		count++
		return expandReplacement(repl, matched)
	}
	if global {
		return re.ReplaceAllStringFunc(s, expand), count
	}
	result, _ := re.ReplaceFirst(s, expand)
	return result, count
}

func expandReplacement(repl, matched string) string {
	if !strings.ContainsAny(repl, `&\`) {
		return repl
	}
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		if c == '\\' && i+1 < len(repl) && (repl[i+1] == '&' || repl[i+1] == '\\') {
			sb.WriteByte(repl[i+1])
			i++
			continue
		}
		if c == '&' {
			sb.WriteString(matched)
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// lvalue is a resolved assignment target. Index expressions inside it
// are evaluated once, so a[i++] += 1 touches one element.
type lvalue interface {
	get() (types.Value, error)
	set(v types.Value) error
}

// resolve evaluates the parts of an assignable expression. With create
// set, a null container on the way is replaced by a new array.
func (in *Interp) resolve(p *Program, e ast.Expr, create bool) (lvalue, error) {
	switch n := e.(type) {
	case *ast.Ident:
		return &varRef{in: in, node: n, name: n.Name}, nil

	case *ast.FieldExpr:
		v, err := in.eval(p, n.Index)
		if err != nil {
			return nil, err
		}
		i := int(v.AsNum())
		if i < 0 {
			return nil, errorf(n, "field index %d is negative", i)
		}
		return &fieldRef{in: in, node: n, idx: i}, nil

	case *ast.IndexExpr:
		var c types.Value
		var err error
		if create {
			c, err = in.container(p, n.X)
		} else {
			c, err = in.eval(p, n.X)
		}
		if err != nil {
			return nil, err
		}
		key, err := in.eval(p, n.Index)
		if err != nil {
			return nil, err
		}
		return &indexRef{node: n, c: c, key: key}, nil

	case *ast.MemberExpr:
		x, err := in.eval(p, n.X)
		if err != nil {
			return nil, err
		}
		o, ok := x.Object()
		if !ok {
			return nil, errorf(n, "%s has no attribute %q", x.TypeName(), n.Name)
		}
		return &memberRef{obj: o, name: n.Name}, nil

	case *ast.GroupExpr:
		return in.resolve(p, n.Expr, create)
	}
	return nil, errorf(e, "cannot assign to %s", ast.String(e))
}

// container returns the value of x for indexing, creating an array in
// place of a null.
func (in *Interp) container(p *Program, x ast.Expr) (types.Value, error) {
	if !ast.IsLValue(x) {
		return in.eval(p, x)
	}
	lv, err := in.resolve(p, x, true)
	if err != nil {
		return types.Null(), err
	}
	v, err := lv.get()
	if err != nil {
		return types.Null(), errorAt(x, err)
	}
	if v.IsNull() {
		v = types.ArrayVal(types.NewArray())
		if err := lv.set(v); err != nil {
			return types.Null(), errorAt(x, err)
		}
	}
	return v, nil
}

type varRef struct {
	in   *Interp
	node ast.Node
	name string
}

func (r *varRef) get() (types.Value, error) { return r.in.lookup(r.name), nil }

func (r *varRef) set(v types.Value) error { return r.in.assign(r.node, r.name, v) }

// fieldRef is $n: $0 is the record, $n the nth field.
type fieldRef struct {
	in   *Interp
	node ast.Node
	idx  int
}

func (r *fieldRef) get() (types.Value, error) {
	b := r.in.bundle()
	if b == nil {
		return types.Null(), nil
	}
	if r.idx == 0 {
		return b.Get(bundle.AttrRecord)
	}
	fields, err := b.Get(bundle.AttrFields)
	if err != nil {
		return types.Null(), err
	}
	l, ok := fields.List()
	if !ok {
		return types.Null(), nil
	}
	return l.Get(r.idx - 1), nil
}

func (r *fieldRef) set(v types.Value) error {
	b := r.in.bundle()
	if b == nil {
		return errors.New("no record is bound")
	}
	if r.idx == 0 {
		return b.Set(bundle.AttrRecord, v)
	}
	fields, err := b.Get(bundle.AttrFields)
	if err != nil {
		return err
	}
	l, ok := fields.List()
	if !ok {
		l = types.NewList()
		if err := b.Set(bundle.AttrFields, types.ListVal(l)); err != nil {
			return err
		}
	}
	l.Set(r.idx-1, v)
	return nil
}

// indexer is implemented by objects whose attributes can be read by
// position, like the bundle.
type indexer interface {
	Index(i int) (types.Value, error)
}

type indexRef struct {
	node ast.Node
	c    types.Value
	key  types.Value
}

func (r *indexRef) get() (types.Value, error) {
	switch r.c.Kind() {
	case types.KindNull:
		return types.Null(), nil
	case types.KindArray:
		a, _ := r.c.Array()
		v, _ := a.Get(r.key.Text())
		return v, nil
	case types.KindList:
		l, _ := r.c.List()
		return l.Get(int(r.key.AsNum()) - 1), nil
	case types.KindObject:
		o, _ := r.c.Object()
		if ix, ok := o.(indexer); ok {
			if _, isStr := r.key.IsTrueStr(); !isStr {
				return ix.Index(int(r.key.AsNum()))
			}
		}
		return o.Get(r.key.Text())
	}
	return types.Null(), errors.New("cannot index " + r.c.TypeName())
}

func (r *indexRef) set(v types.Value) error {
	switch r.c.Kind() {
	case types.KindArray:
		a, _ := r.c.Array()
		a.Set(r.key.Text(), v)
		return nil
	case types.KindList:
		l, _ := r.c.List()
		i := int(r.key.AsNum())
		if i < 1 {
			return errors.New("list index " + r.key.Text() + " out of range")
		}
		l.Set(i-1, v)
		return nil
	case types.KindObject:
		o, _ := r.c.Object()
		if _, isStr := r.key.IsTrueStr(); !isStr {
			return errors.New("cannot assign to " + o.TypeName() + "[" + r.key.Text() + "]")
		}
		return o.Set(r.key.Text(), v)
	}
	return errors.New("cannot index " + r.c.TypeName())
}

type memberRef struct {
	obj  types.Object
	name string
}

func (r *memberRef) get() (types.Value, error) { return r.obj.Get(r.name) }

func (r *memberRef) set(v types.Value) error { return r.obj.Set(r.name, v) }
