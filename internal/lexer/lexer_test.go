package lexer

import (
	"testing"

	"github.com/kolkov/upype/internal/token"
)

func TestScanBasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"+", []token.Token{token.ADD, token.EOF}},
		{"-", []token.Token{token.SUB, token.EOF}},
		{"*", []token.Token{token.MUL, token.EOF}},
		{"%", []token.Token{token.MOD, token.EOF}},
		{"^", []token.Token{token.POW, token.EOF}},
		{"++", []token.Token{token.INCR, token.EOF}},
		{"--", []token.Token{token.DECR, token.EOF}},
		{"+=", []token.Token{token.ADD_ASSIGN, token.EOF}},
		{"-=", []token.Token{token.SUB_ASSIGN, token.EOF}},
		{"*=", []token.Token{token.MUL_ASSIGN, token.EOF}},
		{"x /= 1", []token.Token{token.NAME, token.DIV_ASSIGN, token.NUMBER, token.EOF}},
		{"%=", []token.Token{token.MOD_ASSIGN, token.EOF}},
		{"^=", []token.Token{token.POW_ASSIGN, token.EOF}},
		{"=", []token.Token{token.ASSIGN, token.EOF}},
		{"==", []token.Token{token.EQUALS, token.EOF}},
		{"!=", []token.Token{token.NOT_EQUALS, token.EOF}},
		{"<", []token.Token{token.LESS, token.EOF}},
		{"<=", []token.Token{token.LTE, token.EOF}},
		{">", []token.Token{token.GREATER, token.EOF}},
		{">=", []token.Token{token.GTE, token.EOF}},
		{"~", []token.Token{token.MATCH, token.EOF}},
		{"!~", []token.Token{token.NOT_MATCH, token.EOF}},
		{"!", []token.Token{token.NOT, token.EOF}},
		{"&&", []token.Token{token.AND, token.EOF}},
		{"||", []token.Token{token.OR, token.EOF}},
		{"(", []token.Token{token.LPAREN, token.EOF}},
		{")", []token.Token{token.RPAREN, token.EOF}},
		{"{", []token.Token{token.LBRACE, token.EOF}},
		{"}", []token.Token{token.RBRACE, token.EOF}},
		{"[", []token.Token{token.LBRACKET, token.EOF}},
		{"]", []token.Token{token.RBRACKET, token.EOF}},
		{",", []token.Token{token.COMMA, token.EOF}},
		{";", []token.Token{token.SEMICOLON, token.EOF}},
		{":", []token.Token{token.COLON, token.EOF}},
		{"?", []token.Token{token.QUESTION, token.EOF}},
		{"$", []token.Token{token.DOLLAR, token.EOF}},
		{".", []token.Token{token.DOT, token.EOF}},
		{"\n", []token.Token{token.NEWLINE, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			for i, exp := range tt.expected {
				tok := l.Scan()
				if tok.Type != exp {
					t.Errorf("token[%d]: expected %v, got %v", i, exp, tok.Type)
				}
			}
		})
	}
}

func TestScanKeywords(t *testing.T) {
	tests := []struct {
		input    string
		expected token.Token
	}{
		{"if", token.IF},
		{"else", token.ELSE},
		{"while", token.WHILE},
		{"for", token.FOR},
		{"do", token.DO},
		{"break", token.BREAK},
		{"continue", token.CONTINUE},
		{"function", token.FUNCTION},
		{"return", token.RETURN},
		{"delete", token.DELETE},
		{"exit", token.EXIT},
		{"next", token.NEXT},
		{"print", token.PRINT},
		{"printf", token.PRINTF},
		{"in", token.IN},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			tok := l.Scan()
			if tok.Type != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, tok.Type)
			}
			if tok.Value != tt.input {
				t.Errorf("expected value %q, got %q", tt.input, tok.Value)
			}
		})
	}
}

// Builtin functions are ordinary names so imports may shadow them.
func TestScanBuiltinsAreNames(t *testing.T) {
	for _, name := range []string{"length", "substr", "gsub", "split", "upper", "BEGIN", "_"} {
		t.Run(name, func(t *testing.T) {
			tok := NewFromString(name).Scan()
			if tok.Type != token.NAME {
				t.Errorf("expected NAME, got %v", tok.Type)
			}
			if tok.Value != name {
				t.Errorf("expected value %q, got %q", name, tok.Value)
			}
		})
	}
}

func TestIsName(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"x", true},
		{"_", true},
		{"threshold_2", true},
		{"Upper", true},
		{"length", true},
		{"", false},
		{"2x", false},
		{"a-b", false},
		{"a b", false},
		{"é", false},
		{"in", false},
		{"print", false},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			if got := IsName(tt.s); got != tt.want {
				t.Errorf("IsName(%q) = %v, want %v", tt.s, got, tt.want)
			}
			// A name scans as exactly one NAME token.
			if tt.want {
				l := NewFromString(tt.s)
				if tok := l.Scan(); tok.Type != token.NAME || tok.Value != tt.s {
					t.Errorf("Scan(%q) = %v %q", tt.s, tok.Type, tok.Value)
				}
			}
		})
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{".5", ".5"},
		{"1e10", "1e10"},
		{"1E-3", "1E-3"},
		{"2.5e+2", "2.5e+2"},
		{"0x1F", "0x1F"},
		{"0XaB", "0XaB"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewFromString(tt.input).Scan()
			if tok.Type != token.NUMBER {
				t.Fatalf("expected NUMBER, got %v", tok.Type)
			}
			if tok.Value != tt.value {
				t.Errorf("expected %q, got %q", tt.value, tok.Value)
			}
		})
	}
}

// An e without digits is not an exponent.
func TestScanNumberBareExponent(t *testing.T) {
	l := NewFromString("1e+a")
	want := []token.Token{token.NUMBER, token.NAME, token.ADD, token.NAME, token.EOF}
	for i, exp := range want {
		if tok := l.Scan(); tok.Type != exp {
			t.Errorf("token[%d]: expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestScanStrings(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{`"hello"`, "hello"},
		{`'single'`, "single"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"a\rb"`, "a\rb"},
		{`"q\"q"`, `q"q`},
		{`'it\'s'`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"\101"`, "A"},
		{`"\x41\x4a"`, "AJ"},
		{`"\xZ"`, "xZ"},
		{`"\/"`, "/"},
		{`"привет"`, "привет"},
		{`"emoji 🎉"`, "emoji 🎉"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewFromString(tt.input).Scan()
			if tok.Type != token.STRING {
				t.Fatalf("expected STRING, got %v (%q)", tok.Type, tok.Value)
			}
			if tok.Value != tt.value {
				t.Errorf("expected %q, got %q", tt.value, tok.Value)
			}
		})
	}
}

func TestScanUnterminated(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{`"abc`, "unterminated string"},
		{"\"abc\ndef\"", "unterminated string"},
		{"/abc", "unterminated regex"},
		{"/abc\n/", "unterminated regex"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewFromString(tt.input).Scan()
			if tok.Type != token.ILLEGAL {
				t.Fatalf("expected ILLEGAL, got %v", tok.Type)
			}
			if tok.Value != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tok.Value)
			}
		})
	}
}

func TestScanRegex(t *testing.T) {
	tests := []struct {
		input string
		value string
	}{
		{"/foo/", "foo"},
		{"/a+b*/", "a+b*"},
		{`/foo\/bar/`, "foo/bar"},
		{`/\d+/`, `\d+`},
		{`/[/]/`, "["},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewFromString(tt.input).Scan()
			if tok.Type != token.REGEX {
				t.Fatalf("expected REGEX, got %v", tok.Type)
			}
			if tok.Value != tt.value {
				t.Errorf("expected %q, got %q", tt.value, tok.Value)
			}
		})
	}
}

// After an operand, / is division.
func TestScanDivisionVersusRegex(t *testing.T) {
	tests := []struct {
		input    string
		expected []token.Token
	}{
		{"a / b", []token.Token{token.NAME, token.DIV, token.NAME, token.EOF}},
		{"1/2", []token.Token{token.NUMBER, token.DIV, token.NUMBER, token.EOF}},
		{"(x)/2", []token.Token{token.LPAREN, token.NAME, token.RPAREN, token.DIV, token.NUMBER, token.EOF}},
		{"x ~ /y/", []token.Token{token.NAME, token.MATCH, token.REGEX, token.EOF}},
		{"f(/y/)", []token.Token{token.NAME, token.LPAREN, token.REGEX, token.RPAREN, token.EOF}},
		{"a[1] / 2", []token.Token{token.NAME, token.LBRACKET, token.NUMBER, token.RBRACKET, token.DIV, token.NUMBER, token.EOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewFromString(tt.input)
			for i, exp := range tt.expected {
				if tok := l.Scan(); tok.Type != exp {
					t.Errorf("token[%d]: expected %v, got %v", i, exp, tok.Type)
				}
			}
		})
	}
}

func TestScanMemberAccess(t *testing.T) {
	l := NewFromString("_.fields[2]")
	want := []token.Token{token.NAME, token.DOT, token.NAME, token.LBRACKET, token.NUMBER, token.RBRACKET, token.EOF}
	for i, exp := range want {
		if tok := l.Scan(); tok.Type != exp {
			t.Errorf("token[%d]: expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestScanCommentsAndContinuation(t *testing.T) {
	l := NewFromString("a # comment\nb \\\n c")
	want := []token.Token{token.NAME, token.NEWLINE, token.NAME, token.NAME, token.EOF}
	for i, exp := range want {
		if tok := l.Scan(); tok.Type != exp {
			t.Errorf("token[%d]: expected %v, got %v", i, exp, tok.Type)
		}
	}
}

func TestHadSpace(t *testing.T) {
	l := NewFromString("f(x) f (x)")

	tok := l.Scan() // f
	if tok.Type != token.NAME {
		t.Fatalf("expected NAME, got %v", tok.Type)
	}
	l.Scan() // (
	if l.HadSpace() {
		t.Error("f(: expected no space before (")
	}
	l.Scan() // x
	l.Scan() // )
	l.Scan() // f
	l.Scan() // (
	if !l.HadSpace() {
		t.Error("f (: expected space before (")
	}
}

func TestPositions(t *testing.T) {
	l := New([]byte("x = 1\n  y"), "main")

	tests := []struct {
		typ  token.Token
		line int
		col  int
	}{
		{token.NAME, 1, 1},
		{token.ASSIGN, 1, 3},
		{token.NUMBER, 1, 5},
		{token.NEWLINE, 1, 6},
		{token.NAME, 2, 3},
		{token.EOF, 2, 4},
	}

	for i, tt := range tests {
		tok := l.Scan()
		if tok.Type != tt.typ {
			t.Fatalf("token[%d]: expected %v, got %v", i, tt.typ, tok.Type)
		}
		if tok.Pos.Line != tt.line || tok.Pos.Column != tt.col {
			t.Errorf("token[%d] %v: expected %d:%d, got %d:%d", i, tt.typ, tt.line, tt.col, tok.Pos.Line, tok.Pos.Column)
		}
		if tok.Pos.Filename != "main" {
			t.Errorf("token[%d]: expected filename main, got %q", i, tok.Pos.Filename)
		}
	}
}

func TestScanIllegal(t *testing.T) {
	for _, input := range []string{"&", "|", "@", "`"} {
		t.Run(input, func(t *testing.T) {
			tok := NewFromString(input).Scan()
			if tok.Type != token.ILLEGAL {
				t.Errorf("expected ILLEGAL, got %v", tok.Type)
			}
		})
	}
}
