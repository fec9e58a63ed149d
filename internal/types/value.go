// Package types defines runtime value types for upype snippets.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumFormat is the format used when a non-integer number becomes a string.
const NumFormat = "%.6g"

// Kind represents the type of a snippet value.
type Kind uint8

const (
	KindNull   Kind = iota // Uninitialized value
	KindNum                // Numeric value
	KindStr                // String value
	KindNumStr             // Numeric string (from input field)
	KindArray              // Associative array, shared by reference
	KindList               // Ordered list, shared by reference
	KindObject             // Attribute namespace (the bundle, imported modules)
	KindFunc               // Callable
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindNumStr:
		return "numstr"
	case KindArray:
		return "array"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindFunc:
		return "function"
	default:
		return "unknown"
	}
}

// Value represents a snippet runtime value.
// Scalars use the tagged union fields; containers, objects and functions
// live behind ref and are shared when the value is copied.
type Value struct {
	kind Kind
	num  float64
	str  string
	ref  any
}

// Constructors

// Null returns a null (uninitialized) value.
func Null() Value {
	return Value{kind: KindNull}
}

// Num creates a numeric value.
func Num(n float64) Value {
	return Value{kind: KindNum, num: n}
}

// Str creates a string value.
func Str(s string) Value {
	return Value{kind: KindStr, str: s}
}

// NumStr creates a numeric string value (from input fields).
// These are treated as numbers in numeric context but preserve the original string.
// Uses lazy parsing: the numeric value is computed on first AsNum() call.
// This avoids unnecessary parsing when fields are only used as strings (print, concat).
func NumStr(s string) Value {
	return Value{kind: KindNumStr, str: s}
}

// Bool creates a numeric value from a boolean (1 for true, 0 for false).
func Bool(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// ArrayVal wraps an associative array.
func ArrayVal(a *Array) Value {
	return Value{kind: KindArray, ref: a}
}

// ListVal wraps a list.
func ListVal(l *List) Value {
	return Value{kind: KindList, ref: l}
}

// ObjectVal wraps an object.
func ObjectVal(o Object) Value {
	return Value{kind: KindObject, ref: o}
}

// FuncVal wraps a callable.
func FuncVal(f Func) Value {
	return Value{kind: KindFunc, ref: f}
}

// Strings returns a list of numeric strings, the shape of split fields.
func Strings(items []string) Value {
	vals := make([]Value, len(items))
	for i, s := range items {
		vals[i] = NumStr(s)
	}
	return ListVal(NewList(vals...))
}

// Accessors

// Kind returns the value's type.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull returns true if the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// IsNum returns true if the value is a pure number.
func (v Value) IsNum() bool {
	return v.kind == KindNum
}

// IsStr returns true if the value is a pure string.
func (v Value) IsStr() bool {
	return v.kind == KindStr
}

// IsNumStr returns true if the value is a numeric string.
func (v Value) IsNumStr() bool {
	return v.kind == KindNumStr
}

// IsScalar returns true for null, numbers and strings.
func (v Value) IsScalar() bool {
	return v.kind <= KindNumStr
}

// Array returns the wrapped array, if any.
func (v Value) Array() (*Array, bool) {
	a, ok := v.ref.(*Array)
	return a, ok && v.kind == KindArray
}

// List returns the wrapped list, if any.
func (v Value) List() (*List, bool) {
	l, ok := v.ref.(*List)
	return l, ok && v.kind == KindList
}

// Object returns the wrapped object, if any.
func (v Value) Object() (Object, bool) {
	o, ok := v.ref.(Object)
	return o, ok && v.kind == KindObject
}

// Func returns the wrapped callable, if any.
func (v Value) Func() (Func, bool) {
	f, ok := v.ref.(Func)
	return f, ok && v.kind == KindFunc
}

// TypeName returns the name reported by typeof.
func (v Value) TypeName() string {
	if o, ok := v.Object(); ok {
		return o.TypeName()
	}
	return v.kind.String()
}

// Conversions

// AsNum returns the numeric representation of the value.
// For NumStr and Str, parses the longest numeric prefix of the string.
// This is lazy parsing - the value is computed on demand, not at creation.
func (v Value) AsNum() float64 {
	switch v.kind {
	case KindNum:
		return v.num
	case KindNumStr, KindStr:
		// Lazy parsing: parse on demand
		return ParseNumPrefix(v.str)
	case KindObject:
		return ParseNumPrefix(v.AsStr(NumFormat))
	default: // KindNull and containers
		return 0
	}
}

// AsStr returns the string representation using the given format for numbers.
// A list prints as its items joined by single spaces; an object that knows
// its own text (the bundle is its record) prints as that.
func (v Value) AsStr(format string) string {
	switch v.kind {
	case KindNum:
		return FormatNum(v.num, format)
	case KindList:
		l, _ := v.List()
		parts := make([]string, l.Len())
		for i, item := range l.items {
			parts[i] = item.AsStr(format)
		}
		return strings.Join(parts, " ")
	case KindArray:
		return "<array>"
	case KindObject:
		o, _ := v.Object()
		if s, ok := o.(fmt.Stringer); ok {
			return s.String()
		}
		return "<" + o.TypeName() + ">"
	case KindFunc:
		f, _ := v.Func()
		return "<function " + f.FuncName() + ">"
	}
	// For KindStr, KindNumStr, and KindNull (empty string)
	return v.str
}

// Text is AsStr with the default number format.
func (v Value) Text() string {
	return v.AsStr(NumFormat)
}

// AsBool returns the boolean representation.
// Numbers: 0 is false, everything else is true.
// Strings: empty string is false, everything else is true.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindNum:
		return v.num != 0
	case KindStr:
		return v.str != ""
	case KindNumStr:
		n, err := ParseNum(v.str)
		if err != nil {
			return v.str != ""
		}
		return n != 0
	case KindArray:
		a, _ := v.Array()
		return a.Len() > 0
	case KindList:
		l, _ := v.List()
		return l.Len() > 0
	case KindObject, KindFunc:
		return true
	default: // KindNull
		return false
	}
}

// IsTrueStr returns true if the value should be treated as a true string
// (not convertible to a number). Also returns the numeric value if not a true string.
// For NumStr values, uses lazy parsing to determine if it's a valid number.
func (v Value) IsTrueStr() (float64, bool) {
	switch v.kind {
	case KindStr, KindArray, KindList, KindObject, KindFunc:
		return 0, true
	case KindNumStr:
		// Lazy parsing: check if string is a valid number (strict parsing).
		// If parsing fails, it's a "true string" (e.g., "10x", "abc").
		n, err := ParseNum(v.str)
		if err != nil {
			return 0, true
		}
		return n, false
	default: // KindNum, KindNull
		return v.num, false
	}
}

// String returns a debug representation of the value.
func (v Value) String() string {
	switch v.kind {
	case KindNum:
		return fmt.Sprintf("Num(%s)", FormatNum(v.num, NumFormat))
	case KindStr:
		return fmt.Sprintf("Str(%q)", v.str)
	case KindNumStr:
		return fmt.Sprintf("NumStr(%q)", v.str)
	case KindNull:
		return "Null()"
	default:
		return fmt.Sprintf("%s(%s)", v.kind, v.Text())
	}
}

// Comparison

// Compare compares two values: numerically when both look numeric,
// as strings otherwise. Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b Value) int {
	// If both are numeric (or can be converted), compare as numbers
	aNum, aIsStr := a.IsTrueStr()
	bNum, bIsStr := b.IsTrueStr()

	if !aIsStr && !bIsStr {
		// Both numeric - compare as numbers
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}

	// At least one is a true string - compare as strings
	return strings.Compare(a.Text(), b.Text())
}

// Equal reports whether a and b are equal. Containers, objects and
// functions are equal only to themselves.
func Equal(a, b Value) bool {
	if a.IsScalar() || b.IsScalar() {
		if !a.IsScalar() || !b.IsScalar() {
			return false
		}
		return Compare(a, b) == 0
	}
	return a.kind == b.kind && a.ref == b.ref
}

// Number Parsing and Formatting

// ParseNum parses a string as a number (strict parsing).
func ParseNum(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	// Handle special cases
	if len(s) >= 3 {
		lower := strings.ToLower(s)
		if lower == "nan" || lower == "+nan" || lower == "-nan" {
			return math.NaN(), nil
		}
		if lower == "inf" || lower == "+inf" {
			return math.Inf(1), nil
		}
		if lower == "-inf" {
			return math.Inf(-1), nil
		}
	}

	// Handle hex without exponent ("0x1a" needs "0x1ap0" for ParseFloat)
	if len(s) > 2 && (s[0] == '0' && (s[1] == 'x' || s[1] == 'X')) {
		if !strings.ContainsAny(s, "pP") {
			s += "p0"
		}
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	// Underscore separators are not numbers in input text
	if strings.Contains(s, "_") {
		return 0, strconv.ErrSyntax
	}

	return n, nil
}

// ParseNumPrefix parses a number from the beginning of a string.
// Allows trailing non-numeric characters like "123abc" -> 123.
func ParseNumPrefix(s string) float64 {
	// Skip leading whitespace
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) {
		return 0
	}

	start := i

	// Handle sign
	if s[i] == '+' || s[i] == '-' {
		i++
	}

	if i >= len(s) {
		return 0
	}

	// Check for special values
	if i+3 <= len(s) {
		rest := strings.ToLower(s[i : i+3])
		if rest == "nan" {
			return math.NaN()
		}
		if rest == "inf" {
			if start < i && s[start] == '-' {
				return math.Inf(-1)
			}
			return math.Inf(1)
		}
	}

	// Check for hex
	if i+2 < len(s) && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		return parseHexPrefix(s, start, i+2)
	}

	// Parse decimal mantissa
	gotDigit := false
	for i < len(s) && isDigit(s[i]) {
		gotDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			gotDigit = true
			i++
		}
	}
	if !gotDigit {
		return 0
	}

	// Parse exponent
	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && isDigit(s[i]) {
			end = i + 1
			i++
		}
	}

	n, _ := strconv.ParseFloat(s[start:end], 64)
	return n
}

func parseHexPrefix(s string, start, i int) float64 {
	gotDigit := false
	for i < len(s) && isHexDigit(s[i]) {
		gotDigit = true
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isHexDigit(s[i]) {
			gotDigit = true
			i++
		}
	}
	if !gotDigit {
		return 0
	}

	end := i
	gotExponent := false
	if i < len(s) && (s[i] == 'p' || s[i] == 'P') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		for i < len(s) && isDigit(s[i]) {
			gotExponent = true
			end = i + 1
			i++
		}
	}

	numStr := s[start:end]
	if !gotExponent {
		numStr += "p0" // ParseFloat requires "0x12p0" for "0x12"
	}
	n, _ := strconv.ParseFloat(numStr, 64)
	return n
}

// FormatNum formats a number as a string using the given format.
func FormatNum(n float64, format string) string {
	switch {
	case math.IsNaN(n):
		return "nan"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	case n == float64(int64(n)):
		// Integer - format without decimal
		return strconv.FormatInt(int64(n), 10)
	case format == NumFormat:
		// Common case - use faster formatting
		return strconv.FormatFloat(n, 'g', 6, 64)
	default:
		return fmt.Sprintf(format, n)
	}
}

// Helper functions

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
