package interp

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/types"
)

// builtin is a function every snippet can call by name unless a variable
// or import of the same name shadows it. sub and gsub assign to their
// target and are handled by callSub instead.
type builtin struct {
	min, max int // max -1 means variadic
	fn       func(in *Interp, args []types.Value) (types.Value, error)
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"atan2":   {2, 2, math2(math.Atan2)},
		"cos":     {1, 1, math1(math.Cos)},
		"exp":     {1, 1, math1(math.Exp)},
		"index":   {2, 2, (*Interp).builtinIndex},
		"int":     {1, 1, math1(math.Trunc)},
		"join":    {1, 2, (*Interp).builtinJoin},
		"length":  {0, 1, (*Interp).builtinLength},
		"log":     {1, 1, math1(math.Log)},
		"match":   {2, 2, (*Interp).builtinMatch},
		"num":     {1, 1, math1(func(x float64) float64 { return x })},
		"rand":    {0, 0, (*Interp).builtinRand},
		"sin":     {1, 1, math1(math.Sin)},
		"split":   {1, 2, (*Interp).builtinSplit},
		"sprintf": {1, -1, (*Interp).builtinSprintf},
		"sqrt":    {1, 1, math1(math.Sqrt)},
		"srand":   {0, 1, (*Interp).builtinSrand},
		"str":     {1, 1, (*Interp).builtinStr},
		"substr":  {2, 3, (*Interp).builtinSubstr},
		"system":  {1, 1, (*Interp).builtinSystem},
		"tolower": {1, 1, str1(toLowerASCII)},
		"toupper": {1, 1, str1(toUpperASCII)},
		"trim":    {1, 2, (*Interp).builtinTrim},
		"typeof":  {1, 1, (*Interp).builtinTypeof},
	}
}

// Builtins returns the names of the builtin functions, sub and gsub included.
func Builtins() []string {
	names := make([]string, 0, len(builtins)+2)
	for name := range builtins {
		names = append(names, name)
	}
	return append(names, "sub", "gsub")
}

// nativeBuiltin wraps a builtin as a callable value.
func (in *Interp) nativeBuiltin(name string, b builtin) *types.NativeFunc {
	return &types.NativeFunc{
		Name:    name,
		MinArgs: b.min,
		MaxArgs: b.max,
		Fn: func(args []types.Value) (types.Value, error) {
			return b.fn(in, args)
		},
	}
}

func math1(f func(float64) float64) func(*Interp, []types.Value) (types.Value, error) {
	return func(_ *Interp, args []types.Value) (types.Value, error) {
		return types.Num(f(args[0].AsNum())), nil
	}
}

func math2(f func(float64, float64) float64) func(*Interp, []types.Value) (types.Value, error) {
	return func(_ *Interp, args []types.Value) (types.Value, error) {
		return types.Num(f(args[0].AsNum(), args[1].AsNum())), nil
	}
}

func str1(f func(string) string) func(*Interp, []types.Value) (types.Value, error) {
	return func(_ *Interp, args []types.Value) (types.Value, error) {
		return types.Str(f(args[0].Text())), nil
	}
}

// builtinLength returns the length of a string, list or array; with no
// argument, of the record.
func (in *Interp) builtinLength(args []types.Value) (types.Value, error) {
	if len(args) == 0 {
		rec, err := (&fieldRef{in: in}).get()
		if err != nil {
			return types.Null(), err
		}
		return types.Num(float64(len(rec.Text()))), nil
	}
	v := args[0]
	switch v.Kind() {
	case types.KindList:
		l, _ := v.List()
		return types.Num(float64(l.Len())), nil
	case types.KindArray:
		a, _ := v.Array()
		return types.Num(float64(a.Len())), nil
	}
	return types.Num(float64(len(v.Text()))), nil
}

// builtinIndex returns the 1-based position of t in s, or 0.
func (in *Interp) builtinIndex(args []types.Value) (types.Value, error) {
	return types.Num(float64(strings.Index(args[0].Text(), args[1].Text()) + 1)), nil
}

// builtinSubstr implements substr(s, start[, length]) with 1-based start.
// A start below 1 is treated as 1; a length running past the end stops
// at the end.
func (in *Interp) builtinSubstr(args []types.Value) (types.Value, error) {
	s := args[0].Text()
	start := int(args[1].AsNum())
	length := len(s)
	if len(args) == 3 {
		length = int(args[2].AsNum())
	}

	if start < 1 {
		start = 1
	}
	start--
	if start >= len(s) || length <= 0 {
		return types.Str(""), nil
	}
	end := min(start+length, len(s))
	return types.Str(s[start:end]), nil
}

// builtinSplit splits s into a list. Without a separator, s is split on
// runs of whitespace; an empty separator splits into characters; a single
// character splits literally; anything longer is a regex.
func (in *Interp) builtinSplit(args []types.Value) (types.Value, error) {
	s := args[0].Text()
	sep := " "
	if len(args) == 2 {
		sep = args[1].Text()
	}
	if s == "" {
		return types.ListVal(types.NewList()), nil
	}

	var parts []string
	switch {
	case sep == " ":
		parts = strings.Fields(s)
	case sep == "":
		parts = strings.Split(s, "")
	case len(sep) == 1 && !strings.ContainsAny(sep, `\^$.[]|()*+?{}`):
		parts = strings.Split(s, sep)
	default:
		re, err := in.regexes.Get(sep)
		if err != nil {
			return types.Null(), err
		}
		parts = re.Split(s, -1)
	}
	return types.Strings(parts), nil
}

// builtinJoin joins the items of a list, or the values of an array in key
// order, with sep (default a single space).
func (in *Interp) builtinJoin(args []types.Value) (types.Value, error) {
	sep := " "
	if len(args) == 2 {
		sep = args[1].Text()
	}
	v := args[0]
	switch v.Kind() {
	case types.KindList:
		l, _ := v.List()
		return types.Str(strings.Join(l.Texts(), sep)), nil
	case types.KindArray:
		a, _ := v.Array()
		keys := a.Keys()
		parts := make([]string, len(keys))
		for i, k := range keys {
			item, _ := a.Get(k)
			parts[i] = item.Text()
		}
		return types.Str(strings.Join(parts, sep)), nil
	case types.KindNull:
		return types.Str(""), nil
	}
	return types.Null(), fmt.Errorf("join: expected a list or array, got %s", v.TypeName())
}

// builtinMatch returns the 1-based position of the first match of the
// pattern in s, or 0.
func (in *Interp) builtinMatch(args []types.Value) (types.Value, error) {
	re, err := in.regexes.Get(args[1].Text())
	if err != nil {
		return types.Null(), err
	}
	loc := re.FindStringIndex(args[0].Text())
	if loc == nil {
		return types.Num(0), nil
	}
	return types.Num(float64(loc[0] + 1)), nil
}

func (in *Interp) builtinSprintf(args []types.Value) (types.Value, error) {
	return types.Str(Sprintf(args[0].Text(), args[1:])), nil
}

func (in *Interp) builtinTrim(args []types.Value) (types.Value, error) {
	if len(args) == 2 {
		return types.Str(strings.Trim(args[0].Text(), args[1].Text())), nil
	}
	return types.Str(strings.TrimSpace(args[0].Text())), nil
}

func (in *Interp) builtinStr(args []types.Value) (types.Value, error) {
	return types.Str(args[0].Text()), nil
}

func (in *Interp) builtinTypeof(args []types.Value) (types.Value, error) {
	return types.Str(args[0].TypeName()), nil
}

func (in *Interp) builtinRand(_ []types.Value) (types.Value, error) {
	return types.Num(in.rnd.Float64()), nil
}

// builtinSrand reseeds the generator, from the clock when no seed is
// given, and returns the previous seed.
func (in *Interp) builtinSrand(args []types.Value) (types.Value, error) {
	prev := in.seed
	seed := float64(time.Now().UnixNano())
	if len(args) == 1 {
		seed = args[0].AsNum()
	}
	in.seed = seed
	in.rnd = rand.New(rand.NewSource(int64(seed)))
	return types.Num(prev), nil
}

// builtinSystem runs a shell command and returns its exit status.
// Pending output is flushed first so it appears before the command's.
func (in *Interp) builtinSystem(args []types.Value) (types.Value, error) {
	if f, ok := in.out.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return types.Null(), err
		}
	}
	code, err := runtime.RunCommand(args[0].Text(), in.stdin, in.out, in.stderr)
	if err != nil {
		return types.Null(), fmt.Errorf("system: %w", err)
	}
	return types.Num(float64(code)), nil
}

// toLowerASCII converts s to lower case, skipping the Unicode tables for
// pure ASCII input.
func toLowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c > 127 {
			return strings.ToLower(s)
		}
		if c >= 'A' && c <= 'Z' {
			return mapASCII(s, i, 'A', 'Z', 'a'-'A', strings.ToLower)
		}
	}
	return s
}

// toUpperASCII is the upper case counterpart of toLowerASCII.
func toUpperASCII(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c > 127 {
			return strings.ToUpper(s)
		}
		if c >= 'a' && c <= 'z' {
			return mapASCII(s, i, 'a', 'z', 'A'-'a', strings.ToUpper)
		}
	}
	return s
}

// mapASCII shifts bytes in [lo, hi] by delta from position start on,
// falling back to slow when a non-ASCII byte turns up.
func mapASCII(s string, start int, lo, hi byte, delta int, slow func(string) string) string {
	b := []byte(s)
	for i := start; i < len(b); i++ {
		c := b[i]
		switch {
		case c > 127:
			return slow(s)
		case c >= lo && c <= hi:
			b[i] = byte(int(c) + delta)
		}
	}
	return string(b)
}
