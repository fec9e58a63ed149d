package runner

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/kolkov/upype/internal/interp"
	"github.com/kolkov/upype/internal/modules"
	"github.com/kolkov/upype/internal/parser"
	"github.com/kolkov/upype/internal/record"
	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/semantic"
)

func compile(t *testing.T, role semantic.Role, src string) *interp.Program {
	t.Helper()
	if src == "" {
		return nil
	}
	tree, err := parser.Parse(src, role.String())
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	if err := semantic.Check(tree, role); err != nil {
		t.Fatalf("Check(%q): %v", src, err)
	}
	p, err := interp.Compile(role.String(), tree)
	if err != nil {
		t.Fatalf("Compile(%q): %v", src, err)
	}
	return p
}

func programs(t *testing.T, before, main, after string) Programs {
	t.Helper()
	return Programs{
		Before: compile(t, semantic.RoleBefore, before),
		Main:   compile(t, semantic.RoleMain, main),
		After:  compile(t, semantic.RoleAfter, after),
	}
}

// closeCounter is a reader that counts Close calls.
type closeCounter struct {
	io.Reader
	closes int
}

func (c *closeCounter) Close() error {
	c.closes++
	return nil
}

func sources(inputs ...string) ([]*record.Source, []*closeCounter) {
	srcs := make([]*record.Source, len(inputs))
	counters := make([]*closeCounter, len(inputs))
	for i, in := range inputs {
		counters[i] = &closeCounter{Reader: strings.NewReader(in)}
		srcs[i] = record.NewSource("in"+string(rune('0'+i)), i, counters[i])
	}
	return srcs, counters
}

func echoConfig(out io.Writer) Config {
	return Config{Delimiter: record.Universal(), Strip: true, Echo: true, Output: out}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name                string
		before, main, after string
		inputs              []string
		cfg                 func(*Config)
		want                string
	}{
		{
			name:   "round trip",
			main:   `x = 1`,
			inputs: []string{"a\r\nb\n\nc\rd"},
			want:   "a\r\nb\n\nc\rd",
		},
		{
			name:   "uppercase doubled",
			main:   `_.record = toupper(_.record) _.record`,
			inputs: []string{"1\n2\nab\n"},
			want:   "11\n22\nABab\n",
		},
		{
			name:   "record numbers across files",
			main:   `_.record = _.record_num ":" _.record ":" _.file.name ":" _.file.index`,
			inputs: []string{"a\nb\n", "c"},
			want:   "1:a:in0:0\n2:b:in0:0\n3:c:in1:1",
		},
		{
			name:   "before main after",
			before: `n = 0; print "start"`,
			main:   `n += _.record`,
			after:  `print "sum", n, _.record_num`,
			inputs: []string{"1\n2\n3\n"},
			cfg:    func(c *Config) { c.Echo = false },
			want:   "start\nsum 6 3\n",
		},
		{
			name:   "record_num survives writes",
			main:   `print _.record_num; _.record_num = 100`,
			after:  `print "after", _.record_num`,
			inputs: []string{"a\nb\n", "c\n"},
			cfg:    func(c *Config) { c.Echo = false },
			want:   "1\n2\n3\nafter 3\n",
		},
		{
			name:   "record_num reset in main",
			main:   `_.record = _.record_num; _.record_num = 0`,
			inputs: []string{"a\nb\nc\n"},
			want:   "1\n2\n3\n",
		},
		{
			name:   "functions from before",
			before: `function twice(s) { return s s }`,
			main:   `_.record = twice(_.record)`,
			inputs: []string{"x\n"},
			want:   "xx\n",
		},
		{
			name:   "next suppresses echo",
			main:   `if (_.record ~ /^#/) next; _.record = "[" _.record "]"`,
			inputs: []string{"a\n#b\nc\n"},
			want:   "[a]\n[c]\n",
		},
		{
			name:   "end stops after current record",
			main:   `if (_.record == "b") _.end = 1`,
			after:  `print "after", _.record_num`,
			inputs: []string{"a\nb\nc\n"},
			want:   "a\nb\nafter 2\n",
		},
		{
			name:   "end in before skips records",
			before: `_.end = 1`,
			after:  `print _.record_num`,
			main:   `print "never"`,
			inputs: []string{"a\n"},
			want:   "0\n",
		},
		{
			name:   "no strip",
			main:   `_.record = length(_.record) _.record_end "|"`,
			inputs: []string{"ab\ncd"},
			cfg:    func(c *Config) { c.Strip = false },
			want:   "3|2|",
		},
		{
			name:   "slurp",
			main:   `_.record = "<" _.record ">"`,
			inputs: []string{"a\nb\n", "", "c"},
			cfg:    func(c *Config) { c.Delimiter = record.Slurp() },
			want:   "<a\nb\n><c>",
		},
		{
			name:   "literal delimiter",
			main:   `_.record = toupper(_.record)`,
			inputs: []string{"a;;b;;c"},
			cfg:    func(c *Config) { c.Delimiter = record.Literal(";;") },
			want:   "A;;B;;C",
		},
		{
			name:   "regex fields",
			main:   `_.record = length(_.fields) ":" _.fields[3] ":" $4`,
			inputs: []string{"a,b,,c\n"},
			cfg: func(c *Config) {
				c.Fields = RegexSplitter{Re: runtime.MustCompile(",")}
			},
			want: "4::c\n",
		},
		{
			name:   "csv fields",
			main:   `_.record = $2 "|" length(_.fields)`,
			inputs: []string{`1,"x, y",3` + "\n" + "\n"},
			cfg:    func(c *Config) { c.Fields = CSVSplitter{} },
			want:   "x, y|3\n|0\n",
		},
		{
			name:   "variables",
			main:   `_.record = prefix _.record (limit + 1)`,
			inputs: []string{"a\n"},
			cfg: func(c *Config) {
				c.Variables = map[string]string{"prefix": "> ", "limit": "41"}
			},
			want: "> a42\n",
		},
		{
			name:   "imports",
			main:   `_.record = up(_.record) S.repeat("-", 2) (pi > 3)`,
			inputs: []string{"a\n"},
			cfg: func(c *Config) {
				c.Imports = []modules.Import{
					{Module: "strings", Member: "upper", Alias: "up"},
					{Module: "strings", Alias: "S"},
					{Module: "math", Member: "pi"},
				}
			},
			want: "A--1\n",
		},
		{
			name:   "empty input",
			before: `print "b"`,
			main:   `print "m"`,
			after:  `print "a", _.record_num`,
			inputs: []string{""},
			want:   "b\na 0\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cfg := echoConfig(&out)
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			srcs, counters := sources(tt.inputs...)
			err := Run(programs(t, tt.before, tt.main, tt.after), srcs, cfg)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			for i, c := range counters {
				if c.closes != 1 {
					t.Errorf("source %d closed %d times, want 1", i, c.closes)
				}
			}
		})
	}
}

func TestRecordNumEqualsCount(t *testing.T) {
	srcs, _ := sources("a\nb\n", "c\nd\ne\n", "f")
	r, err := New(programs(t, "", `seen[_.record_num] = _.record`, ""), srcs, Config{Delimiter: record.Universal(), Strip: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Bundle().RecordNum != 6 {
		t.Errorf("record_num = %d, want 6", r.Bundle().RecordNum)
	}
	seen, ok := r.Globals()["seen"].Array()
	if !ok {
		t.Fatalf("seen = %v", r.Globals()["seen"])
	}
	if got := seen.Keys(); !slices.Equal(got, []string{"1", "2", "3", "4", "5", "6"}) {
		t.Errorf("keys = %v", got)
	}
	if v, _ := seen.Get("6"); v.Text() != "f" {
		t.Errorf("seen[6] = %v", v)
	}
}

func TestStripSplitsDelimiter(t *testing.T) {
	srcs, _ := sources("a\nb\nc")
	r, err := New(programs(t, "", `ends = ends "[" _.record_end "]"; recs = recs _.record`, ""), srcs, Config{Delimiter: record.Literal("\n"), Strip: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	g := r.Globals()
	if g["recs"].Text() != "abc" || g["ends"].Text() != "[\n][\n][]" {
		t.Errorf("recs = %q, ends = %q", g["recs"].Text(), g["ends"].Text())
	}
}

func TestRuntimeErrorHalts(t *testing.T) {
	var out bytes.Buffer
	srcs, counters := sources("1\n2\n0\n4\n", "5\n")
	err := Run(programs(t, "", `x = 10 / _.record`, `print "after"`), srcs, echoConfig(&out))

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if re.Snippet != "main" || re.RecordNum != 3 {
		t.Errorf("error at %s record %d, want main record 3", re.Snippet, re.RecordNum)
	}
	var ie *interp.RuntimeError
	if !errors.As(err, &ie) {
		t.Errorf("err does not wrap *interp.RuntimeError: %v", err)
	}
	if !strings.Contains(err.Error(), "(record 3)") {
		t.Errorf("message %q lacks the record number", err.Error())
	}
	if got := out.String(); got != "1\n2\n" {
		t.Errorf("output = %q, want the records before the failure", got)
	}
	for i, c := range counters {
		if c.closes != 1 {
			t.Errorf("source %d closed %d times, want 1", i, c.closes)
		}
	}
}

func TestBeforeAfterErrors(t *testing.T) {
	tests := []struct {
		name, before, after string
		snippet             string
	}{
		{"before", `x = 1 / 0`, "", "before"},
		{"after", "", `y = 1 % 0`, "after"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs, counters := sources("a\n")
			err := Run(programs(t, tt.before, `z = 1`, tt.after), srcs, echoConfig(io.Discard))
			var re *Error
			if !errors.As(err, &re) || re.Snippet != tt.snippet {
				t.Fatalf("err = %v, want *Error in %s", err, tt.snippet)
			}
			if counters[0].closes != 1 {
				t.Errorf("closed %d times", counters[0].closes)
			}
		})
	}
}

func TestExit(t *testing.T) {
	tests := []struct {
		name                string
		before, main, after string
		code                int
		want                string
	}{
		{"in main runs after", "", `if (_.record == "b") exit 3`, `print "after"`, 3, "a\nb\nafter\n"},
		{"in before skips records", `exit 4`, `print "never"`, `print "after"`, 4, "after\n"},
		{"in after replaces code", "", `exit 1`, `exit 5; print "unreached"`, 5, "a\n"},
		{"zero", "", `exit`, "", 0, "a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			srcs, counters := sources("a\nb\nc\n")
			err := Run(programs(t, tt.before, tt.main, tt.after), srcs, echoConfig(&out))
			var ee *interp.ExitError
			if !errors.As(err, &ee) {
				t.Fatalf("err = %v, want *interp.ExitError", err)
			}
			if ee.Code != tt.code {
				t.Errorf("code = %d, want %d", ee.Code, tt.code)
			}
			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
			if counters[0].closes != 1 {
				t.Errorf("closed %d times", counters[0].closes)
			}
		})
	}
}

func TestFlushPerRecord(t *testing.T) {
	tests := []struct {
		name string
		main string
		echo bool
		want []int // output length at each flush
	}{
		{"echo", `x = 1`, true, []int{2, 5}},
		{"print only", `print toupper(_.record)`, false, []int{2, 5}},
		{"print and echo", `print "-"`, true, []int{4, 9}},
		{"next", `if (_.record == "a") next; print "kept"`, true, []int{0, 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var flushedAt []int
			cfg := echoConfig(&out)
			cfg.Echo = tt.echo
			cfg.Flush = func() error {
				flushedAt = append(flushedAt, out.Len())
				return nil
			}
			srcs, _ := sources("a\nbb\n")
			if err := Run(programs(t, "", tt.main, ""), srcs, cfg); err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(flushedAt, tt.want) {
				t.Errorf("flushed at %v, want %v (output %q)", flushedAt, tt.want, out.String())
			}
		})
	}
}

func TestFlushError(t *testing.T) {
	srcs, counters := sources("a\nb\n")
	cfg := echoConfig(io.Discard)
	cfg.Echo = false
	cfg.Flush = func() error { return errBroken }
	err := Run(programs(t, "", `print "x"`, ""), srcs, cfg)
	if !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want %v", err, errBroken)
	}
	if counters[0].closes != 1 {
		t.Errorf("closed %d times", counters[0].closes)
	}
}

var errBroken = errors.New("broken pipe")

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errBroken }

func TestEchoWriteError(t *testing.T) {
	srcs, counters := sources("a\nb\n")
	err := Run(programs(t, "", `x = 1`, ""), srcs, echoConfig(failWriter{}))
	if !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want %v", err, errBroken)
	}
	if counters[0].closes != 1 {
		t.Errorf("closed %d times", counters[0].closes)
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errBroken }

func TestReadError(t *testing.T) {
	srcs := []*record.Source{record.NewSource("bad", 0, failReader{})}
	err := Run(programs(t, "", `x = 1`, `print "after"`), srcs, echoConfig(io.Discard))
	var re *record.ReadError
	if !errors.As(err, &re) || !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want *record.ReadError", err)
	}
}

func TestUnknownImport(t *testing.T) {
	srcs, counters := sources("a\n")
	cfg := echoConfig(io.Discard)
	cfg.Imports = []modules.Import{{Module: "nosuch"}}
	err := Run(programs(t, "", `x = 1`, ""), srcs, cfg)
	var ie *modules.ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("err = %v, want *modules.ImportError", err)
	}
	if counters[0].closes != 1 {
		t.Errorf("closed %d times", counters[0].closes)
	}
}

func TestNoMain(t *testing.T) {
	if _, err := New(Programs{}, nil, Config{}); !errors.Is(err, ErrNoMain) {
		t.Errorf("err = %v, want ErrNoMain", err)
	}
}

func TestUnknownAttributeAtRuntime(t *testing.T) {
	srcs, _ := sources("a\n")
	main := "function set(o, v) { o.nope = v }\nset(_, 1)"
	err := Run(programs(t, "", main, ""), srcs, echoConfig(io.Discard))
	var re *Error
	if !errors.As(err, &re) || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("err = %v, want a main error naming the attribute", err)
	}
}
