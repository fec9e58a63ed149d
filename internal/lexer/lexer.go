// Package lexer provides tokenization of upype snippet source.
package lexer

import (
	"unicode/utf8"

	"github.com/kolkov/upype/internal/token"
)

// eof is the sentinel rune stored in Lexer.ch at end of input.
const eof = -1

// Lexer tokenizes snippet source code.
type Lexer struct {
	src     []byte         // Source code
	ch      rune           // Current character (eof at end)
	offset  int            // Byte offset of the character after ch
	pos     token.Position // Position of ch
	nextPos token.Position // Position of the next character

	hadSpace bool        // Was there whitespace before current token?
	lastTok  token.Token // Previous token (for regex detection)
}

// New creates a new Lexer for src. filename is recorded in every token position.
func New(src []byte, filename string) *Lexer {
	l := &Lexer{
		src: src,
		nextPos: token.Position{
			Filename: filename,
			Line:     1,
			Column:   1,
		},
		lastTok: token.NEWLINE,
	}
	l.next()
	return l
}

// NewFromString creates a new Lexer from a string with no filename.
func NewFromString(src string) *Lexer {
	return New([]byte(src), "")
}

// Token represents a scanned token with its position and value.
type Token struct {
	Type  token.Token
	Pos   token.Position
	Value string
}

// Scan scans and returns the next token.
func (l *Lexer) Scan() Token {
	tok := l.scan()
	l.lastTok = tok.Type
	return tok
}

// HadSpace returns true if there was whitespace before the current token.
// The parser uses it to tell a call f(x) from a concatenation f (x).
func (l *Lexer) HadSpace() bool {
	return l.hadSpace
}

func (l *Lexer) scan() Token {
	l.skipWhitespace()
	if l.ch == '#' {
		l.skipComment()
	}

	pos := l.pos
	if l.ch == eof {
		return Token{Type: token.EOF, Pos: pos}
	}

	switch l.ch {
	case '\n':
		l.next()
		return Token{Type: token.NEWLINE, Pos: pos}
	case '+':
		return l.either(pos, token.ADD, '+', token.INCR, '=', token.ADD_ASSIGN)
	case '-':
		return l.either(pos, token.SUB, '-', token.DECR, '=', token.SUB_ASSIGN)
	case '*':
		return l.either(pos, token.MUL, '=', token.MUL_ASSIGN, 0, 0)
	case '%':
		return l.either(pos, token.MOD, '=', token.MOD_ASSIGN, 0, 0)
	case '^':
		return l.either(pos, token.POW, '=', token.POW_ASSIGN, 0, 0)
	case '=':
		return l.either(pos, token.ASSIGN, '=', token.EQUALS, 0, 0)
	case '!':
		return l.either(pos, token.NOT, '=', token.NOT_EQUALS, '~', token.NOT_MATCH)
	case '<':
		return l.either(pos, token.LESS, '=', token.LTE, 0, 0)
	case '>':
		return l.either(pos, token.GREATER, '=', token.GTE, 0, 0)
	case '/':
		if l.canBeRegex() {
			return l.scanRegex(pos)
		}
		return l.either(pos, token.DIV, '=', token.DIV_ASSIGN, 0, 0)
	case '&':
		l.next()
		if l.ch == '&' {
			l.next()
			return Token{Type: token.AND, Pos: pos, Value: "&&"}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected '&'"}
	case '|':
		l.next()
		if l.ch == '|' {
			l.next()
			return Token{Type: token.OR, Pos: pos, Value: "||"}
		}
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected '|'"}
	case '~':
		return l.single(pos, token.MATCH)
	case '(':
		return l.single(pos, token.LPAREN)
	case ')':
		return l.single(pos, token.RPAREN)
	case '{':
		return l.single(pos, token.LBRACE)
	case '}':
		return l.single(pos, token.RBRACE)
	case '[':
		return l.single(pos, token.LBRACKET)
	case ']':
		return l.single(pos, token.RBRACKET)
	case ',':
		return l.single(pos, token.COMMA)
	case ';':
		return l.single(pos, token.SEMICOLON)
	case ':':
		return l.single(pos, token.COLON)
	case '?':
		return l.single(pos, token.QUESTION)
	case '$':
		return l.single(pos, token.DOLLAR)
	case '.':
		if isDigit(l.peek()) {
			return l.scanNumber(pos)
		}
		return l.single(pos, token.DOT)
	case '"', '\'':
		return l.scanString(pos)
	}

	if isDigit(l.ch) {
		return l.scanNumber(pos)
	}
	if isIdentStart(l.ch) {
		return l.scanIdent(pos)
	}
	ch := l.ch
	l.next()
	return Token{Type: token.ILLEGAL, Pos: pos, Value: "unexpected " + quoteRune(ch)}
}

// single consumes one character and returns tok.
func (l *Lexer) single(pos token.Position, tok token.Token) Token {
	l.next()
	return Token{Type: tok, Pos: pos, Value: tok.String()}
}

// either consumes the current character and, if the following one is c1
// or c2, that one too. It returns the matching token.
func (l *Lexer) either(pos token.Position, base token.Token, c1 rune, t1 token.Token, c2 rune, t2 token.Token) Token {
	l.next()
	switch {
	case c1 != 0 && l.ch == c1:
		l.next()
		return Token{Type: t1, Pos: pos, Value: t1.String()}
	case c2 != 0 && l.ch == c2:
		l.next()
		return Token{Type: t2, Pos: pos, Value: t2.String()}
	}
	return Token{Type: base, Pos: pos, Value: base.String()}
}

func (l *Lexer) scanRegex(pos token.Position) Token {
	l.next() // opening /
	start := l.pos.Offset

	for l.ch != eof && l.ch != '/' && l.ch != '\n' {
		if l.ch == '\\' {
			l.next()
			if l.ch != eof && l.ch != '\n' {
				l.next()
			}
			continue
		}
		l.next()
	}
	if l.ch != '/' {
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unterminated regex"}
	}

	value := string(l.src[start:l.pos.Offset])
	l.next() // closing /
	return Token{Type: token.REGEX, Pos: pos, Value: unescapeSlash(value)}
}

// unescapeSlash turns \/ into / and leaves every other escape to the regex engine.
func unescapeSlash(s string) string {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '\\' && s[i+1] == '/' {
			b := make([]byte, 0, len(s))
			for j := 0; j < len(s); j++ {
				if s[j] == '\\' && j+1 < len(s) && s[j+1] == '/' {
					continue
				}
				b = append(b, s[j])
			}
			return string(b)
		}
	}
	return s
}

func (l *Lexer) scanString(pos token.Position) Token {
	quote := l.ch
	l.next()

	var sb []byte
	for l.ch != eof && l.ch != quote && l.ch != '\n' {
		if l.ch != '\\' {
			sb = utf8.AppendRune(sb, l.ch)
			l.next()
			continue
		}

		l.next()
		switch l.ch {
		case 'n':
			sb = append(sb, '\n')
		case 't':
			sb = append(sb, '\t')
		case 'r':
			sb = append(sb, '\r')
		case 'b':
			sb = append(sb, '\b')
		case 'f':
			sb = append(sb, '\f')
		case 'a':
			sb = append(sb, '\a')
		case 'v':
			sb = append(sb, '\v')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			n := int(l.ch - '0')
			l.next()
			for i := 0; i < 2 && l.ch >= '0' && l.ch <= '7'; i++ {
				n = n*8 + int(l.ch-'0')
				l.next()
			}
			sb = append(sb, byte(n))
			continue
		case 'x':
			l.next()
			if !isHexDigit(l.ch) {
				sb = append(sb, 'x')
				continue
			}
			n := hexValue(l.ch)
			l.next()
			if isHexDigit(l.ch) {
				n = n*16 + hexValue(l.ch)
				l.next()
			}
			sb = append(sb, byte(n))
			continue
		case eof, '\n':
			continue
		default:
			// \\, \", \' and unknown escapes keep the escaped character.
			sb = utf8.AppendRune(sb, l.ch)
		}
		l.next()
	}

	if l.ch != quote {
		return Token{Type: token.ILLEGAL, Pos: pos, Value: "unterminated string"}
	}
	l.next()
	return Token{Type: token.STRING, Pos: pos, Value: string(sb)}
}

func (l *Lexer) scanNumber(pos token.Position) Token {
	start := pos.Offset

	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.next() // 0
		l.next() // x
		for isHexDigit(l.ch) {
			l.next()
		}
		return Token{Type: token.NUMBER, Pos: pos, Value: string(l.src[start:l.endOffset()])}
	}

	for isDigit(l.ch) {
		l.next()
	}
	if l.ch == '.' && isDigit(l.peek()) || l.ch == '.' && start == l.pos.Offset {
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
	}
	// Only take e/E when an exponent actually follows: 1e+a is 1, e, +, a.
	if (l.ch == 'e' || l.ch == 'E') && l.hasValidExponent() {
		l.next()
		if l.ch == '+' || l.ch == '-' {
			l.next()
		}
		for isDigit(l.ch) {
			l.next()
		}
	}

	return Token{Type: token.NUMBER, Pos: pos, Value: string(l.src[start:l.endOffset()])}
}

func (l *Lexer) scanIdent(pos token.Position) Token {
	start := pos.Offset
	for isIdentContinue(l.ch) {
		l.next()
	}
	name := string(l.src[start:l.endOffset()])
	return Token{Type: token.LookupIdent(name), Pos: pos, Value: name}
}

// endOffset returns the end offset for slicing l.src. At end of input
// l.pos is not advanced, so len(l.src) is used instead.
func (l *Lexer) endOffset() int {
	if l.ch == eof {
		return len(l.src)
	}
	return l.pos.Offset
}

// hasValidExponent reports whether the e/E at l.ch is followed by digits,
// optionally signed.
func (l *Lexer) hasValidExponent() bool {
	idx := l.offset
	if idx >= len(l.src) {
		return false
	}
	ch := l.src[idx]
	if ch == '+' || ch == '-' {
		idx++
		if idx >= len(l.src) {
			return false
		}
		ch = l.src[idx]
	}
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) skipWhitespace() {
	l.hadSpace = false
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\\' {
		if l.ch == '\\' {
			// Line continuation; anything else is reported by the next scan.
			if next := l.peek(); next != '\n' && next != '\r' {
				return
			}
			l.next()
			if l.ch == '\r' {
				l.next()
			}
		}
		l.hadSpace = true
		l.next()
	}
}

func (l *Lexer) skipComment() {
	for l.ch != eof && l.ch != '\n' {
		l.next()
	}
}

// peek returns the byte after the current character without consuming it.
func (l *Lexer) peek() rune {
	if l.offset >= len(l.src) {
		return eof
	}
	return rune(l.src[l.offset])
}

func (l *Lexer) next() {
	if l.offset >= len(l.src) {
		if l.ch != eof {
			l.pos = l.nextPos
		}
		l.ch = eof
		return
	}

	l.pos = l.nextPos

	r, size := rune(l.src[l.offset]), 1
	if r >= utf8.RuneSelf {
		r, size = utf8.DecodeRune(l.src[l.offset:])
	}
	l.offset += size
	l.nextPos.Column += size
	l.nextPos.Offset = l.offset
	if r == '\n' {
		l.nextPos.Line++
		l.nextPos.Column = 1
	}
	l.ch = r
}

// canBeRegex returns true if a / at this point starts a regex literal.
func (l *Lexer) canBeRegex() bool {
	switch l.lastTok {
	case token.ILLEGAL, token.EOF, token.NEWLINE,
		token.LPAREN, token.LBRACE, token.LBRACKET,
		token.COMMA, token.SEMICOLON, token.COLON, token.QUESTION,
		token.AND, token.OR, token.NOT, token.MATCH, token.NOT_MATCH,
		token.ADD, token.SUB, token.MUL, token.DIV, token.MOD, token.POW,
		token.ASSIGN, token.ADD_ASSIGN, token.SUB_ASSIGN, token.MUL_ASSIGN,
		token.DIV_ASSIGN, token.MOD_ASSIGN, token.POW_ASSIGN,
		token.EQUALS, token.NOT_EQUALS, token.LESS, token.LTE, token.GREATER, token.GTE,
		token.PRINT, token.PRINTF, token.IF, token.WHILE, token.FOR, token.DO,
		token.RETURN, token.IN, token.ELSE:
		return true
	default:
		return false
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexValue(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch - 'a' + 10)
	default:
		return int(ch - 'A' + 10)
	}
}

func isIdentStart(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// IsName reports whether s scans as a single NAME token: an identifier
// that is not a keyword. Variables and imports are bound under such names.
func IsName(s string) bool {
	if s == "" || !isIdentStart(rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentContinue(rune(s[i])) {
			return false
		}
	}
	return token.LookupIdent(s) == token.NAME
}

func quoteRune(ch rune) string {
	return "'" + string(ch) + "'"
}
