package types

import (
	"fmt"
	"slices"
)

// Array is an associative array keyed by string. It is shared by reference.
type Array struct {
	m map[string]Value
}

// NewArray creates an empty array.
func NewArray() *Array {
	return &Array{m: make(map[string]Value)}
}

// Get returns the value at key and whether it exists.
func (a *Array) Get(key string) (Value, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Set stores v at key.
func (a *Array) Set(key string, v Value) {
	a.m[key] = v
}

// Has reports whether key exists.
func (a *Array) Has(key string) bool {
	_, ok := a.m[key]
	return ok
}

// Delete removes key.
func (a *Array) Delete(key string) {
	delete(a.m, key)
}

// Clear removes every key.
func (a *Array) Clear() {
	clear(a.m)
}

// Len returns the number of keys.
func (a *Array) Len() int {
	return len(a.m)
}

// Keys returns the keys in sorted order: numeric keys numerically, then
// the rest as strings. for-in relies on this order being stable.
func (a *Array) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(x, y string) int {
		return Compare(NumStr(x), NumStr(y))
	})
	return keys
}

// List is an ordered sequence of values. It is shared by reference.
// Indexes seen by snippets are 1-based; the methods here are 0-based.
type List struct {
	items []Value
}

// NewList creates a list holding items.
func NewList(items ...Value) *List {
	return &List{items: items}
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// Get returns item i, or a null value when i is out of range.
func (l *List) Get(i int) Value {
	if i < 0 || i >= len(l.items) {
		return Null()
	}
	return l.items[i]
}

// Set stores v at index i, growing the list with nulls when needed.
func (l *List) Set(i int, v Value) {
	if i < 0 {
		return
	}
	for len(l.items) <= i {
		l.items = append(l.items, Null())
	}
	l.items[i] = v
}

// Append adds v to the end of the list.
func (l *List) Append(v Value) {
	l.items = append(l.items, v)
}

// Delete removes item i, shifting later items down.
func (l *List) Delete(i int) {
	if i < 0 || i >= len(l.items) {
		return
	}
	l.items = slices.Delete(l.items, i, i+1)
}

// Items returns the underlying items. Callers must not retain the slice
// across mutations.
func (l *List) Items() []Value {
	return l.items
}

// Texts returns every item as a string.
func (l *List) Texts() []string {
	out := make([]string, len(l.items))
	for i, v := range l.items {
		out[i] = v.Text()
	}
	return out
}

// Object is a namespace of named attributes: the shared bundle and
// imported modules are objects.
type Object interface {
	// TypeName names the object for typeof and diagnostics.
	TypeName() string
	// Get returns the named attribute.
	Get(name string) (Value, error)
	// Set assigns the named attribute. Objects with a closed attribute
	// set reject unknown names here.
	Set(name string, v Value) error
	// Names lists the attributes in a stable order.
	Names() []string
}

// Func is a callable value.
type Func interface {
	FuncName() string
	Call(args []Value) (Value, error)
}

// NativeFunc is a Func implemented in Go.
type NativeFunc struct {
	Name    string
	MinArgs int
	MaxArgs int // -1 means variadic
	Fn      func(args []Value) (Value, error)
}

// FuncName returns the function name.
func (f *NativeFunc) FuncName() string {
	return f.Name
}

// Call checks the argument count and invokes Fn.
func (f *NativeFunc) Call(args []Value) (Value, error) {
	if len(args) < f.MinArgs {
		return Null(), fmt.Errorf("%s: not enough arguments (got %d, want at least %d)", f.Name, len(args), f.MinArgs)
	}
	if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
		return Null(), fmt.Errorf("%s: too many arguments (got %d, want at most %d)", f.Name, len(args), f.MaxArgs)
	}
	return f.Fn(args)
}

// ErrReadOnly is returned when assigning an attribute that cannot change.
type ErrReadOnly struct {
	Object string
	Name   string
}

func (e *ErrReadOnly) Error() string {
	return fmt.Sprintf("cannot assign to read-only attribute %s.%s", e.Object, e.Name)
}

// ErrNoAttr is returned for attributes an object does not have.
type ErrNoAttr struct {
	Object string
	Name   string
}

func (e *ErrNoAttr) Error() string {
	return fmt.Sprintf("%s has no attribute %q", e.Object, e.Name)
}

// Namespace is a read-only Object backed by a map, used for imported modules.
type Namespace struct {
	Name  string
	Attrs map[string]Value
}

// TypeName returns "module".
func (n *Namespace) TypeName() string { return "module" }

// Get returns the named attribute.
func (n *Namespace) Get(name string) (Value, error) {
	v, ok := n.Attrs[name]
	if !ok {
		return Null(), &ErrNoAttr{Object: n.Name, Name: name}
	}
	return v, nil
}

// Set always fails: modules are read-only.
func (n *Namespace) Set(name string, _ Value) error {
	return &ErrReadOnly{Object: n.Name, Name: name}
}

// Names returns the attribute names sorted.
func (n *Namespace) Names() []string {
	names := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

var (
	_ Object = (*Namespace)(nil)
	_ Func   = (*NativeFunc)(nil)
)
