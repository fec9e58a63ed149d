// Package token defines lexical tokens for upype snippets.
package token

// Token represents a lexical token type.
type Token uint8

const (
	// Special tokens
	ILLEGAL Token = iota
	EOF
	NEWLINE

	// Operators and delimiters
	operatorStart
	ADD        // +
	ADD_ASSIGN // +=
	SUB        // -
	SUB_ASSIGN // -=
	MUL        // *
	MUL_ASSIGN // *=
	DIV        // /
	DIV_ASSIGN // /=
	MOD        // %
	MOD_ASSIGN // %=
	POW        // ^
	POW_ASSIGN // ^=

	ASSIGN     // =
	EQUALS     // ==
	NOT_EQUALS // !=
	LESS       // <
	LTE        // <=
	GREATER    // >
	GTE        // >=

	AND       // &&
	OR        // ||
	NOT       // !
	MATCH     // ~
	NOT_MATCH // !~

	INCR // ++
	DECR // --

	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?
	DOLLAR    // $
	DOT       // .
	operatorEnd

	// Keywords
	keywordStart
	IF       // if
	ELSE     // else
	WHILE    // while
	FOR      // for
	DO       // do
	BREAK    // break
	CONTINUE // continue
	FUNCTION // function
	RETURN   // return
	DELETE   // delete
	EXIT     // exit
	NEXT     // next
	PRINT    // print
	PRINTF   // printf
	IN       // in
	keywordEnd

	// Literals
	NAME   // name
	NUMBER // number
	STRING // string
	REGEX  // regex
)

var names = [...]string{
	ILLEGAL:    "illegal",
	EOF:        "end of file",
	NEWLINE:    "newline",
	ADD:        "+",
	ADD_ASSIGN: "+=",
	SUB:        "-",
	SUB_ASSIGN: "-=",
	MUL:        "*",
	MUL_ASSIGN: "*=",
	DIV:        "/",
	DIV_ASSIGN: "/=",
	MOD:        "%",
	MOD_ASSIGN: "%=",
	POW:        "^",
	POW_ASSIGN: "^=",
	ASSIGN:     "=",
	EQUALS:     "==",
	NOT_EQUALS: "!=",
	LESS:       "<",
	LTE:        "<=",
	GREATER:    ">",
	GTE:        ">=",
	AND:        "&&",
	OR:         "||",
	NOT:        "!",
	MATCH:      "~",
	NOT_MATCH:  "!~",
	INCR:       "++",
	DECR:       "--",
	LPAREN:     "(",
	RPAREN:     ")",
	LBRACE:     "{",
	RBRACE:     "}",
	LBRACKET:   "[",
	RBRACKET:   "]",
	COMMA:      ",",
	SEMICOLON:  ";",
	COLON:      ":",
	QUESTION:   "?",
	DOLLAR:     "$",
	DOT:        ".",
	IF:         "if",
	ELSE:       "else",
	WHILE:      "while",
	FOR:        "for",
	DO:         "do",
	BREAK:      "break",
	CONTINUE:   "continue",
	FUNCTION:   "function",
	RETURN:     "return",
	DELETE:     "delete",
	EXIT:       "exit",
	NEXT:       "next",
	PRINT:      "print",
	PRINTF:     "printf",
	IN:         "in",
	NAME:       "name",
	NUMBER:     "number",
	STRING:     "string",
	REGEX:      "regex",
}

// String returns the source spelling of operators and keywords,
// and a descriptive name for the other tokens.
func (t Token) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "token(" + itoa(int(t)) + ")"
}

// IsOperator returns true if the token is an operator.
func (t Token) IsOperator() bool {
	return t > operatorStart && t < operatorEnd
}

// IsKeyword returns true if the token is a keyword.
func (t Token) IsKeyword() bool {
	return t > keywordStart && t < keywordEnd
}

// IsLiteral returns true if the token is a literal (name, number, string, regex).
func (t Token) IsLiteral() bool {
	return t == NAME || t == NUMBER || t == STRING || t == REGEX
}

// IsAssign returns true for = and the augmented assignment operators.
func (t Token) IsAssign() bool {
	switch t {
	case ASSIGN, ADD_ASSIGN, SUB_ASSIGN, MUL_ASSIGN, DIV_ASSIGN, MOD_ASSIGN, POW_ASSIGN:
		return true
	}
	return false
}

// BinaryOf maps an augmented assignment operator to its binary operator.
// It returns ILLEGAL for plain assignment and non-assignment tokens.
func (t Token) BinaryOf() Token {
	switch t {
	case ADD_ASSIGN:
		return ADD
	case SUB_ASSIGN:
		return SUB
	case MUL_ASSIGN:
		return MUL
	case DIV_ASSIGN:
		return DIV
	case MOD_ASSIGN:
		return MOD
	case POW_ASSIGN:
		return POW
	default:
		return ILLEGAL
	}
}

var keywords = map[string]Token{
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"do":       DO,
	"break":    BREAK,
	"continue": CONTINUE,
	"function": FUNCTION,
	"return":   RETURN,
	"delete":   DELETE,
	"exit":     EXIT,
	"next":     NEXT,
	"print":    PRINT,
	"printf":   PRINTF,
	"in":       IN,
}

// LookupIdent returns the keyword token for ident, or NAME.
// Builtin functions are plain names so that imports may shadow them.
func LookupIdent(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return NAME
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
