package parser

import (
	"strconv"

	"github.com/kolkov/upype/internal/ast"
	"github.com/kolkov/upype/internal/lexer"
	"github.com/kolkov/upype/internal/token"
)

// maxErrors bounds error accumulation so garbage input fails quickly.
const maxErrors = 10

// Parser is a recursive descent parser for snippets.
type Parser struct {
	lexer   *lexer.Lexer
	tok     lexer.Token
	prevTok lexer.Token
	errors  ErrorList

	funcName  string // current function name, empty if not in function
	loopDepth int    // nesting depth of loops (for break/continue validation)

	// listPos is where print's parenthesized argument list starts, if any.
	listPos token.Position
}

// Parse parses snippet source. filename names the snippet in positions
// and error messages.
func Parse(src, filename string) (*ast.Program, error) {
	p := &Parser{
		lexer: lexer.New([]byte(src), filename),
	}
	p.next()

	prog := p.parseProgram()
	prog.Filename = filename

	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// ParseExpr parses a single expression (useful for testing).
func ParseExpr(src string) (ast.Expr, error) {
	p := &Parser{
		lexer: lexer.NewFromString(src),
	}
	p.next()

	expr := p.parseExpr()
	if p.tok.Type != token.EOF {
		p.errorf("unexpected %s after expression", p.tokenDesc())
	}

	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// -----------------------------------------------------------------------------
// Token handling
// -----------------------------------------------------------------------------

func (p *Parser) next() {
	p.prevTok = p.tok
	p.tok = p.lexer.Scan()
}

// expect checks that the current token is tok and advances.
// If not, it records an error.
func (p *Parser) expect(tok token.Token) bool {
	if p.tok.Type != tok {
		p.errorf("expected %s, got %s", tok, p.tokenDesc())
		return false
	}
	p.next()
	return true
}

func (p *Parser) expectName() (string, token.Position) {
	name, pos := p.tok.Value, p.tok.Pos
	if !p.expect(token.NAME) {
		return "", pos
	}
	return name, pos
}

// match returns true if current token matches any of the given types.
func (p *Parser) match(types ...token.Token) bool {
	for _, t := range types {
		if p.tok.Type == t {
			return true
		}
	}
	return false
}

// tokenDesc returns a description of the current token for error messages.
func (p *Parser) tokenDesc() string {
	switch p.tok.Type {
	case token.NAME, token.NUMBER:
		return p.tok.Value
	case token.STRING:
		return strconv.Quote(p.tok.Value)
	case token.ILLEGAL:
		// ILLEGAL carries the lexer's message.
		return p.tok.Value
	default:
		return p.tok.Type.String()
	}
}

func (p *Parser) errorf(format string, args ...any) {
	if len(p.errors) >= maxErrors {
		return
	}
	p.errors = append(p.errors, errorf(p.tok.Pos, format, args...))
}

// -----------------------------------------------------------------------------
// Newline and terminator handling
// -----------------------------------------------------------------------------

func (p *Parser) optionalNewlines() {
	for p.tok.Type == token.NEWLINE {
		p.next()
	}
}

// isTerminator returns true if current token ends a simple statement.
func (p *Parser) isTerminator() bool {
	return p.match(token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF, token.ELSE)
}

// endSimple reports trailing garbage after a simple statement.
func (p *Parser) endSimple() {
	if !p.isTerminator() {
		p.errorf("unexpected %s at end of statement", p.tokenDesc())
	}
}

// recover skips to the next statement boundary after an error.
func (p *Parser) recover() {
	for !p.match(token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF) {
		p.next()
	}
}

// -----------------------------------------------------------------------------
// Program parsing
// -----------------------------------------------------------------------------

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{StartPos: p.tok.Pos}

	for p.tok.Type != token.EOF && len(p.errors) < maxErrors {
		if p.match(token.NEWLINE, token.SEMICOLON) {
			p.next()
			continue
		}
		if p.tok.Type == token.FUNCTION {
			if fn := p.parseFunction(); fn != nil {
				prog.Functions = append(prog.Functions, fn)
			}
			continue
		}
		if p.tok.Type == token.RBRACE {
			p.errorf("unexpected }")
			p.next()
			continue
		}
		if stmt := p.parseStmtRecover(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
	}

	prog.EndPos = p.tok.Pos
	return prog
}

// parseStmtRecover parses a statement and resynchronizes on error so a
// single mistake does not cascade.
func (p *Parser) parseStmtRecover() ast.Stmt {
	before := len(p.errors)
	start := p.tok.Pos
	stmt := p.parseStmt()
	if len(p.errors) > before {
		p.recover()
		return nil
	}
	if p.tok.Pos == start && p.tok.Type != token.EOF {
		p.next()
	}
	return stmt
}

func (p *Parser) parseFunction() *ast.FuncDecl {
	startPos := p.tok.Pos
	p.next() // function

	if p.funcName != "" {
		p.errorf("function declarations cannot be nested")
	}
	name, namePos := p.expectName()
	if name == "" {
		p.recover()
		return nil
	}

	p.expect(token.LPAREN)
	var params []string
	seen := make(map[string]bool)
	for p.tok.Type != token.RPAREN && p.tok.Type != token.EOF {
		if len(params) > 0 {
			p.expect(token.COMMA)
			p.optionalNewlines()
		}
		param, _ := p.expectName()
		if param == "" {
			break
		}
		if param == name {
			p.errorf("cannot use function name %q as parameter", name)
		}
		if seen[param] {
			p.errorf("duplicate parameter %q", param)
		}
		seen[param] = true
		params = append(params, param)
	}
	p.expect(token.RPAREN)
	p.optionalNewlines()

	p.funcName = name
	depth := p.loopDepth
	p.loopDepth = 0
	body := p.parseBlock()
	p.loopDepth = depth
	p.funcName = ""

	if body == nil {
		return nil
	}
	return &ast.FuncDecl{
		Name:     name,
		Params:   params,
		Body:     body,
		NamePos:  namePos,
		StartPos: startPos,
		EndPos:   p.prevTok.Pos,
	}
}

func (p *Parser) parseBlock() *ast.BlockStmt {
	startPos := p.tok.Pos
	if !p.expect(token.LBRACE) {
		return nil
	}

	var stmts []ast.Stmt
	for p.tok.Type != token.RBRACE && p.tok.Type != token.EOF && len(p.errors) < maxErrors {
		if p.match(token.SEMICOLON, token.NEWLINE) {
			p.next()
			continue
		}
		if p.tok.Type == token.FUNCTION {
			p.errorf("functions must be declared at the top level")
			p.recover()
			continue
		}
		if stmt := p.parseStmtRecover(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	endPos := p.tok.Pos
	p.expect(token.RBRACE)

	return &ast.BlockStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, endPos),
		Stmts:    stmts,
	}
}

// -----------------------------------------------------------------------------
// Statement parsing
// -----------------------------------------------------------------------------

func (p *Parser) parseStmt() ast.Stmt {
	startPos := p.tok.Pos

	switch p.tok.Type {
	case token.IF:
		return p.parseIfStmt()

	case token.WHILE:
		return p.parseWhileStmt()

	case token.FOR:
		return p.parseForStmt()

	case token.DO:
		return p.parseDoWhileStmt()

	case token.LBRACE:
		return p.parseBlock()

	case token.BREAK:
		if p.loopDepth == 0 {
			p.errorf("break must be inside a loop")
		}
		p.next()
		p.endSimple()
		return &ast.BreakStmt{BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos)}

	case token.CONTINUE:
		if p.loopDepth == 0 {
			p.errorf("continue must be inside a loop")
		}
		p.next()
		p.endSimple()
		return &ast.ContinueStmt{BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos)}

	case token.NEXT:
		if p.funcName != "" {
			p.errorf("next cannot be used inside a function")
		}
		p.next()
		p.endSimple()
		return &ast.NextStmt{BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos)}

	case token.EXIT:
		p.next()
		var code ast.Expr
		if !p.isTerminator() {
			code = p.parseExpr()
		}
		p.endSimple()
		return &ast.ExitStmt{
			BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
			Code:     code,
		}

	case token.RETURN:
		if p.funcName == "" {
			p.errorf("return must be inside a function")
		}
		p.next()
		var value ast.Expr
		if !p.isTerminator() {
			value = p.parseExpr()
		}
		p.endSimple()
		return &ast.ReturnStmt{
			BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
			Value:    value,
		}

	default:
		stmt := p.parseSimpleStmt()
		p.endSimple()
		return stmt
	}
}

// parseSimpleStmt parses an expression, print or delete statement.
func (p *Parser) parseSimpleStmt() ast.Stmt {
	startPos := p.tok.Pos

	switch p.tok.Type {
	case token.PRINT, token.PRINTF:
		return p.parsePrintStmt()

	case token.DELETE:
		return p.parseDeleteStmt()

	default:
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		return &ast.ExprStmt{
			BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
			Expr:     expr,
		}
	}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	startPos := p.tok.Pos
	p.next() // if

	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.optionalNewlines()

	then := p.parseBody()

	// Allow "if (c) x; else y" and an else on the following line.
	if p.match(token.SEMICOLON, token.NEWLINE) {
		save := p.lexerState()
		for p.match(token.SEMICOLON, token.NEWLINE) {
			p.next()
		}
		if p.tok.Type != token.ELSE {
			p.restore(save)
		}
	}

	var elseStmt ast.Stmt
	if p.tok.Type == token.ELSE {
		p.next()
		p.optionalNewlines()
		elseStmt = p.parseBody()
	}

	return &ast.IfStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Cond:     cond,
		Then:     then,
		Else:     elseStmt,
	}
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	startPos := p.tok.Pos
	p.next() // while

	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.optionalNewlines()

	body := p.parseLoopBody()

	return &ast.WhileStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Cond:     cond,
		Body:     body,
	}
}

func (p *Parser) parseDoWhileStmt() *ast.DoWhileStmt {
	startPos := p.tok.Pos
	p.next() // do
	p.optionalNewlines()

	body := p.parseLoopBody()
	for p.match(token.SEMICOLON, token.NEWLINE) {
		p.next()
	}

	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	p.endSimple()

	return &ast.DoWhileStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Body:     body,
		Cond:     cond,
	}
}

// parseForStmt parses for (init; cond; post) and for (k in container).
func (p *Parser) parseForStmt() ast.Stmt {
	startPos := p.tok.Pos
	p.next() // for
	p.expect(token.LPAREN)

	var pre ast.Stmt
	if p.tok.Type != token.SEMICOLON {
		pre = p.parseSimpleStmt()
	}

	if pre != nil && p.tok.Type == token.RPAREN {
		p.next()
		p.optionalNewlines()

		exprStmt, ok := pre.(*ast.ExprStmt)
		if !ok {
			p.errorf("expected 'for (name in container)'")
			return nil
		}
		inExpr, ok := exprStmt.Expr.(*ast.InExpr)
		if !ok {
			p.errorf("expected 'for (name in container)'")
			return nil
		}
		varExpr, ok := inExpr.Key.(*ast.Ident)
		if !ok {
			p.errorf("expected variable name in for-in")
			return nil
		}

		body := p.parseLoopBody()
		return &ast.ForInStmt{
			BaseStmt:  ast.MakeBaseStmt(startPos, p.tok.Pos),
			Var:       varExpr,
			Container: inExpr.Container,
			Body:      body,
		}
	}

	p.expect(token.SEMICOLON)
	p.optionalNewlines()

	var cond ast.Expr
	if p.tok.Type != token.SEMICOLON {
		cond = p.parseExpr()
	}
	p.expect(token.SEMICOLON)
	p.optionalNewlines()

	var post ast.Stmt
	if p.tok.Type != token.RPAREN {
		post = p.parseSimpleStmt()
	}
	p.expect(token.RPAREN)
	p.optionalNewlines()

	body := p.parseLoopBody()

	return &ast.ForStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Init:     pre,
		Cond:     cond,
		Post:     post,
		Body:     body,
	}
}

func (p *Parser) parseLoopBody() ast.Stmt {
	p.loopDepth++
	stmt := p.parseBody()
	p.loopDepth--
	return stmt
}

// parseBody parses the body of if/while/for: a block, a single statement,
// or an empty statement (a lone semicolon).
func (p *Parser) parseBody() ast.Stmt {
	switch p.tok.Type {
	case token.SEMICOLON:
		pos := p.tok.Pos
		p.next()
		return &ast.BlockStmt{BaseStmt: ast.MakeBaseStmt(pos, pos)}
	case token.LBRACE:
		return p.parseBlock()
	default:
		return p.parseStmt()
	}
}

func (p *Parser) parseDeleteStmt() *ast.DeleteStmt {
	startPos := p.tok.Pos
	p.next() // delete

	target := p.parsePostfix()
	switch target.(type) {
	case *ast.Ident, *ast.IndexExpr:
	case nil:
		return nil
	default:
		p.errorf("delete needs a variable or an element")
		return nil
	}

	return &ast.DeleteStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Target:   target,
	}
}

func (p *Parser) parsePrintStmt() *ast.PrintStmt {
	startPos := p.tok.Pos
	isPrintf := p.tok.Type == token.PRINTF
	p.next()
	if p.tok.Type == token.LPAREN {
		p.listPos = p.tok.Pos
		defer func() { p.listPos = token.NoPos }()
	}

	var args []ast.Expr
	for !p.isTerminator() {
		if len(args) > 0 {
			if !p.expect(token.COMMA) {
				break
			}
			p.optionalNewlines()
		}
		arg := p.parseExpr()
		if arg == nil {
			break
		}
		args = append(args, arg)
	}

	// print(a, b) parses as a single group holding a comma; undo that.
	if len(args) == 1 {
		if g, ok := args[0].(*ast.GroupExpr); ok {
			if list, ok := g.Expr.(*groupList); ok {
				args = list.exprs
			}
		}
	}

	if isPrintf && len(args) == 0 {
		p.errorf("printf requires at least one argument")
	}

	return &ast.PrintStmt{
		BaseStmt: ast.MakeBaseStmt(startPos, p.tok.Pos),
		Printf:   isPrintf,
		Args:     args,
	}
}

// -----------------------------------------------------------------------------
// Expression parsing
// -----------------------------------------------------------------------------

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

// parseAssign parses right-associative assignment.
func (p *Parser) parseAssign() ast.Expr {
	expr := p.parseCond()
	if expr == nil {
		return nil
	}

	if !p.tok.Type.IsAssign() {
		return expr
	}
	op := p.tok.Type
	if !ast.IsLValue(expr) {
		p.errorf("cannot assign to %s", ast.String(expr))
		return nil
	}
	p.next()
	p.optionalNewlines()
	right := p.parseAssign()
	if right == nil {
		return nil
	}
	return &ast.AssignExpr{
		BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
		Left:     expr,
		Op:       op,
		Right:    right,
	}
}

func (p *Parser) parseCond() ast.Expr {
	expr := p.parseOr()
	if expr == nil || p.tok.Type != token.QUESTION {
		return expr
	}

	p.next()
	p.optionalNewlines()
	then := p.parseExpr()
	p.optionalNewlines()
	p.expect(token.COLON)
	p.optionalNewlines()
	els := p.parseExpr()
	if then == nil || els == nil {
		return nil
	}
	return &ast.TernaryExpr{
		BaseExpr: ast.MakeBaseExpr(expr.Pos(), els.End()),
		Cond:     expr,
		Then:     then,
		Else:     els,
	}
}

func (p *Parser) parseOr() ast.Expr {
	return p.parseBinaryLeft(p.parseAnd, true, token.OR)
}

func (p *Parser) parseAnd() ast.Expr {
	return p.parseBinaryLeft(p.parseIn, true, token.AND)
}

func (p *Parser) parseIn() ast.Expr {
	expr := p.parseMatch()
	for expr != nil && p.tok.Type == token.IN {
		p.next()
		container := p.parseMatch()
		if container == nil {
			return nil
		}
		expr = &ast.InExpr{
			BaseExpr:  ast.MakeBaseExpr(expr.Pos(), container.End()),
			Key:       expr,
			Container: container,
		}
	}
	return expr
}

func (p *Parser) parseMatch() ast.Expr {
	expr := p.parseCompare()
	for expr != nil && p.match(token.MATCH, token.NOT_MATCH) {
		op := p.tok.Type
		p.next()
		pattern := p.parseCompare()
		if pattern == nil {
			return nil
		}
		expr = &ast.MatchExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), pattern.End()),
			Expr:     expr,
			Op:       op,
			Pattern:  pattern,
		}
	}
	return expr
}

// parseCompare parses a non-associative comparison.
func (p *Parser) parseCompare() ast.Expr {
	expr := p.parseConcat()
	if expr == nil {
		return nil
	}

	if p.match(token.EQUALS, token.NOT_EQUALS, token.LESS, token.LTE, token.GTE, token.GREATER) {
		op := p.tok.Type
		p.next()
		right := p.parseConcat()
		if right == nil {
			return nil
		}
		return &ast.BinaryExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
			Left:     expr,
			Op:       op,
			Right:    right,
		}
	}
	return expr
}

// parseConcat parses implicit concatenation of adjacent operands.
func (p *Parser) parseConcat() ast.Expr {
	expr := p.parseAdd()
	if expr == nil || !p.canStartOperand() {
		return expr
	}

	exprs := []ast.Expr{expr}
	for p.canStartOperand() {
		next := p.parseAdd()
		if next == nil {
			return nil
		}
		exprs = append(exprs, next)
	}
	return &ast.ConcatExpr{
		BaseExpr: ast.MakeBaseExpr(exprs[0].Pos(), exprs[len(exprs)-1].End()),
		Exprs:    exprs,
	}
}

// canStartOperand returns true if the current token can begin a
// concatenated operand. Unary minus and ! are excluded: "a -1" subtracts.
func (p *Parser) canStartOperand() bool {
	switch p.tok.Type {
	case token.DOLLAR, token.NAME, token.NUMBER, token.STRING,
		token.LPAREN, token.INCR, token.DECR:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAdd() ast.Expr {
	return p.parseBinaryLeft(p.parseMul, false, token.ADD, token.SUB)
}

func (p *Parser) parseMul() ast.Expr {
	return p.parseBinaryLeft(p.parseUnary, false, token.MUL, token.DIV, token.MOD)
}

// parseUnary parses prefix operators. Unary minus binds looser than ^,
// so -2^2 is -4.
func (p *Parser) parseUnary() ast.Expr {
	startPos := p.tok.Pos

	switch p.tok.Type {
	case token.SUB, token.ADD, token.NOT:
		op := p.tok.Type
		p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{
			BaseExpr: ast.MakeBaseExpr(startPos, operand.End()),
			Op:       op,
			Expr:     operand,
		}

	case token.INCR, token.DECR:
		op := p.tok.Type
		p.next()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		if !ast.IsLValue(operand) {
			p.errorf("%s needs a variable, field or element", op)
			return nil
		}
		return &ast.UnaryExpr{
			BaseExpr: ast.MakeBaseExpr(startPos, operand.End()),
			Op:       op,
			Expr:     operand,
		}
	}
	return p.parsePow()
}

// parsePow parses right-associative ^.
func (p *Parser) parsePow() ast.Expr {
	expr := p.parsePostfix()
	if expr == nil || p.tok.Type != token.POW {
		return expr
	}

	p.next()
	right := p.parseUnary()
	if right == nil {
		return nil
	}
	return &ast.BinaryExpr{
		BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
		Left:     expr,
		Op:       token.POW,
		Right:    right,
	}
}

// parsePostfix parses member access, subscripts, calls and postfix ++/--.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}

	for {
		switch p.tok.Type {
		case token.DOT:
			p.next()
			name, namePos := p.expectName()
			if name == "" {
				return nil
			}
			expr = &ast.MemberExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.tok.Pos),
				X:        expr,
				Name:     name,
				NamePos:  namePos,
			}

		case token.LBRACKET:
			p.next()
			p.optionalNewlines()
			index := p.parseExpr()
			if index == nil {
				return nil
			}
			p.optionalNewlines()
			if !p.expect(token.RBRACKET) {
				return nil
			}
			expr = &ast.IndexExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.prevTok.Pos),
				X:        expr,
				Index:    index,
			}

		case token.LPAREN:
			// A call needs the paren glued to a name: f(x). "f (x)" concatenates.
			if p.lexer.HadSpace() || !isCallable(expr) {
				return expr
			}
			args, ok := p.parseArgs()
			if !ok {
				return nil
			}
			expr = &ast.CallExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.prevTok.Pos),
				Func:     expr,
				Args:     args,
			}

		case token.INCR, token.DECR:
			if !ast.IsLValue(expr) {
				return expr
			}
			op := p.tok.Type
			p.next()
			return &ast.UnaryExpr{
				BaseExpr: ast.MakeBaseExpr(expr.Pos(), p.tok.Pos),
				Op:       op,
				Expr:     expr,
				Post:     true,
			}

		default:
			return expr
		}
	}
}

func isCallable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.MemberExpr:
		return true
	}
	return false
}

// parseArgs parses a parenthesized, comma-separated argument list.
func (p *Parser) parseArgs() ([]ast.Expr, bool) {
	p.next() // (
	p.optionalNewlines()

	var args []ast.Expr
	for p.tok.Type != token.RPAREN {
		if len(args) > 0 {
			if !p.expect(token.COMMA) {
				return nil, false
			}
			p.optionalNewlines()
		}
		arg := p.parseExpr()
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		p.optionalNewlines()
	}
	p.next() // )
	return args, true
}

func (p *Parser) parsePrimary() ast.Expr {
	startPos := p.tok.Pos

	switch p.tok.Type {
	case token.NUMBER:
		raw := p.tok.Value
		n, err := parseNumber(raw)
		if err != nil {
			p.errorf("invalid number %q", raw)
			return nil
		}
		p.next()
		return &ast.NumLit{
			BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
			Value:    n,
			Raw:      raw,
		}

	case token.STRING:
		s := p.tok.Value
		p.next()
		return &ast.StrLit{
			BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
			Value:    s,
		}

	case token.REGEX:
		pattern := p.tok.Value
		p.next()
		return &ast.RegexLit{
			BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
			Pattern:  pattern,
		}

	case token.NAME:
		name := p.tok.Value
		p.next()
		return &ast.Ident{
			BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
			Name:     name,
		}

	case token.DOLLAR:
		p.next()
		var index ast.Expr
		if p.tok.Type == token.LPAREN {
			index = p.parseGroup()
		} else {
			index = p.parsePrimary()
		}
		if index == nil {
			return nil
		}
		return &ast.FieldExpr{
			BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
			Index:    index,
		}

	case token.SUB, token.ADD, token.NOT:
		// $-1 and similar: let parseUnary handle it.
		return p.parseUnary()

	case token.LPAREN:
		return p.parseGroup()

	case token.ILLEGAL:
		p.errorf("%s", p.tok.Value)
		return nil

	default:
		p.errorf("unexpected %s", p.tokenDesc())
		return nil
	}
}

// groupList is a parse-time only node for "(a, b)" used by print(a, b).
type groupList struct {
	ast.BaseExpr
	exprs []ast.Expr
}

func (p *Parser) parseGroup() ast.Expr {
	startPos := p.tok.Pos
	p.next() // (
	p.optionalNewlines()

	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	p.optionalNewlines()

	if p.tok.Type == token.COMMA {
		exprs := []ast.Expr{expr}
		for p.tok.Type == token.COMMA {
			p.next()
			p.optionalNewlines()
			e := p.parseExpr()
			if e == nil {
				return nil
			}
			exprs = append(exprs, e)
			p.optionalNewlines()
		}
		if !p.expect(token.RPAREN) {
			return nil
		}
		if startPos == p.listPos && p.isTerminator() {
			return &ast.GroupExpr{
				BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
				Expr:     &groupList{BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos), exprs: exprs},
			}
		}
		p.errorf("unexpected list of expressions")
		return nil
	}

	if !p.expect(token.RPAREN) {
		return nil
	}
	return &ast.GroupExpr{
		BaseExpr: ast.MakeBaseExpr(startPos, p.tok.Pos),
		Expr:     expr,
	}
}

// parseBinaryLeft parses left-associative binary operators.
func (p *Parser) parseBinaryLeft(higher func() ast.Expr, allowNewline bool, ops ...token.Token) ast.Expr {
	expr := higher()
	if expr == nil {
		return nil
	}

	for p.match(ops...) {
		op := p.tok.Type
		p.next()
		if allowNewline {
			p.optionalNewlines()
		}
		right := higher()
		if right == nil {
			return nil
		}
		expr = &ast.BinaryExpr{
			BaseExpr: ast.MakeBaseExpr(expr.Pos(), right.End()),
			Left:     expr,
			Op:       op,
			Right:    right,
		}
	}
	return expr
}

// parseNumber converts a NUMBER token, accepting hex integers.
func parseNumber(raw string) (float64, error) {
	if len(raw) > 2 && raw[0] == '0' && (raw[1] == 'x' || raw[1] == 'X') {
		n, err := strconv.ParseUint(raw[2:], 16, 64)
		return float64(n), err
	}
	return strconv.ParseFloat(raw, 64)
}

// parserState is a checkpoint used for one-token lookahead past terminators.
type parserState struct {
	lexer   lexer.Lexer
	tok     lexer.Token
	prevTok lexer.Token
}

func (p *Parser) lexerState() parserState {
	return parserState{lexer: *p.lexer, tok: p.tok, prevTok: p.prevTok}
}

func (p *Parser) restore(s parserState) {
	*p.lexer = s.lexer
	p.tok = s.tok
	p.prevTok = s.prevTok
}
