package runtime

import (
	"slices"
	"strings"
	"testing"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"literal", "ERROR", false},
		{"anchored word", `^\w+$`, false},
		{"alternation", "(GET|POST) /", false},
		{"class", `[,;\t]`, false},
		{"unclosed class", "[a-", true},
		{"unclosed group", "(x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Compile(%q) succeeded, want error", tt.pattern)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.pattern, err)
			}
			if re.Pattern() != tt.pattern {
				t.Errorf("Pattern() = %q, want %q", re.Pattern(), tt.pattern)
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustCompile did not panic on a bad pattern")
		}
	}()
	MustCompile("(x")
}

// Record filters of the form _.record ~ /re/.
func TestMatchRecord(t *testing.T) {
	tests := []struct {
		pattern string
		record  string
		want    bool
	}{
		{"ERROR", "2024-01-02 ERROR disk full", true},
		{"ERROR", "2024-01-02 INFO ok", false},
		{"^#", "# comment", true},
		{"^#", "x = 1 # trailing", false},
		{`\.go$`, "cmd/upype/main.go", true},
		{`\.go$`, "main.go.orig", false},
		{"^$", "", true},
		{"^(GET|POST) ", "POST /login", true},
		{"^(GET|POST) ", "PUT /login", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.record, func(t *testing.T) {
			if got := MustCompile(tt.pattern).MatchString(tt.record); got != tt.want {
				t.Errorf("MatchString(%q) = %v, want %v", tt.record, got, tt.want)
			}
		})
	}
}

// Field separators as given to -F.
func TestSplitFields(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		record  string
		want    []string
	}{
		{"comma", ",", "a,b,c", []string{"a", "b", "c"}},
		{"empty fields kept", ",", "a,b,,c", []string{"a", "b", "", "c"}},
		{"whitespace run", `[ \t]+`, "a  b\tc", []string{"a", "b", "c"}},
		{"multi char", "::", "k::v::w", []string{"k", "v", "w"}},
		{"no separator", ",", "abc", []string{"abc"}},
		{"empty record", ":", "", []string{""}},
		{"trailing separator", ";", "x;y;", []string{"x", "y", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustCompile(tt.pattern).Split(tt.record, -1)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.record, got, tt.want)
			}
		})
	}
}

func TestSplitLimit(t *testing.T) {
	got := MustCompile("=").Split("key=a=b", 2)
	if want := []string{"key", "a=b"}; !slices.Equal(got, want) {
		t.Errorf("Split = %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	re := MustCompile("[0-9]+")
	record := "id=7 qty=23 price=456"

	if loc := re.FindStringIndex(record); !slices.Equal(loc, []int{3, 4}) {
		t.Errorf("FindStringIndex = %v, want [3 4]", loc)
	}
	if loc := re.FindStringIndex("none"); loc != nil {
		t.Errorf("FindStringIndex without match = %v, want nil", loc)
	}
	if s, ok := re.FindString(record); !ok || s != "7" {
		t.Errorf("FindString = %q, %v", s, ok)
	}
	if s, ok := re.FindString("none"); ok || s != "" {
		t.Errorf("FindString without match = %q, %v", s, ok)
	}

	all := re.FindAllStringIndex(record, -1)
	if len(all) != 3 || !slices.Equal(all[2], []int{18, 21}) {
		t.Errorf("FindAllStringIndex = %v", all)
	}
	if got := re.FindAllString(record, -1); strings.Join(got, " ") != "7 23 456" {
		t.Errorf("FindAllString = %q", got)
	}
	if got := re.FindAllString(record, 2); strings.Join(got, " ") != "7 23" {
		t.Errorf("FindAllString(n=2) = %q", got)
	}
	if got := re.FindAllString("none", -1); len(got) != 0 {
		t.Errorf("FindAllString without match = %q", got)
	}
}

func TestMatchSemantics(t *testing.T) {
	t.Run("leftmost first", func(t *testing.T) {
		if s, _ := MustCompile("a|ab").FindString("abc"); s != "a" {
			t.Errorf("got %q, want \"a\"", s)
		}
	})
	t.Run("dot stops at newline", func(t *testing.T) {
		if s, _ := MustCompile("b.*").FindString("abc\n"); s != "bc" {
			t.Errorf("got %q, want \"bc\"", s)
		}
	})
}

func TestReplace(t *testing.T) {
	re := MustCompile("o+")

	if got := re.ReplaceAllStringFunc("foo boo", strings.ToUpper); got != "fOO bOO" {
		t.Errorf("ReplaceAllStringFunc = %q", got)
	}

	got, ok := re.ReplaceFirst("foo boo", strings.ToUpper)
	if !ok || got != "fOO boo" {
		t.Errorf("ReplaceFirst = %q, %v", got, ok)
	}
	got, ok = re.ReplaceFirst("xyz", strings.ToUpper)
	if ok || got != "xyz" {
		t.Errorf("ReplaceFirst without match = %q, %v", got, ok)
	}

	swap := MustCompile(`(\w+)@(\w+)`)
	if got := swap.ReplaceAllString("me@host", "${2} at ${1}"); got != "host at me" {
		t.Errorf("ReplaceAllString = %q", got)
	}
}

func TestRegexCache(t *testing.T) {
	cache := NewRegexCache(3)
	if cache.Len() != 0 {
		t.Fatalf("new cache Len() = %d", cache.Len())
	}

	first, err := cache.Get(",")
	if err != nil {
		t.Fatal(err)
	}
	again, _ := cache.Get(",")
	if first != again {
		t.Error("same pattern compiled twice")
	}

	for _, p := range []string{";", ":", `\t`} {
		if _, err := cache.Get(p); err != nil {
			t.Fatal(err)
		}
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cache.Len())
	}

	// "," was the oldest entry and has been evicted.
	evicted, _ := cache.Get(",")
	if evicted == first {
		t.Error("oldest pattern was not evicted")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear Len() = %d", cache.Len())
	}
}

func TestRegexCacheInvalid(t *testing.T) {
	cache := NewRegexCache(0)
	if _, err := cache.Get("(x"); err == nil {
		t.Fatal("Get accepted a bad pattern")
	}
	if cache.Len() != 0 {
		t.Errorf("bad pattern was cached, Len() = %d", cache.Len())
	}
}

func BenchmarkMatchRecord(b *testing.B) {
	re := MustCompile(`^(GET|POST) /api/\w+`)
	record := "POST /api/orders HTTP/1.1"
	for b.Loop() {
		re.MatchString(record)
	}
}

func BenchmarkSplitFields(b *testing.B) {
	re := MustCompile(`[ \t]+`)
	record := "alpha beta\tgamma  delta epsilon"
	for b.Loop() {
		re.Split(record, -1)
	}
}

func BenchmarkRegexCacheHit(b *testing.B) {
	cache := NewRegexCache(100)
	cache.Get(",")
	for b.Loop() {
		cache.Get(",")
	}
}
