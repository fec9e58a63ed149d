// Package bundle implements the per-record state shared with snippets
// under the name "_".
package bundle

import (
	"fmt"
	"slices"

	"github.com/kolkov/upype/internal/types"
)

// Name is the reserved name the bundle is bound to in the environment.
const Name = "_"

// Attribute names in declaration order. _[i] reads them by position.
const (
	AttrRecord    = "record"
	AttrRecordEnd = "record_end"
	AttrRecordNum = "record_num"
	AttrFields    = "fields"
	AttrFile      = "file"
	AttrEnd       = "end"
)

var attrs = []string{AttrRecord, AttrRecordEnd, AttrRecordNum, AttrFields, AttrFile, AttrEnd}

// aliases are read-only shorthands for the most used attributes.
var aliases = map[string]string{
	"R": AttrRecord,
	"N": AttrRecordNum,
	"F": AttrFields,
}

// Attrs returns the attribute names in declaration order.
func Attrs() []string {
	return slices.Clone(attrs)
}

// IsAttr reports whether name is a bundle attribute or alias.
func IsAttr(name string) bool {
	_, alias := aliases[name]
	return alias || slices.Contains(attrs, name)
}

// IsReadOnly reports whether name can be read but not assigned.
func IsReadOnly(name string) bool {
	_, alias := aliases[name]
	return alias
}

// Bundle is the mutable per-record state. Its attribute set is closed:
// snippets may reassign attributes but never add or delete them.
type Bundle struct {
	Record    string
	RecordEnd string
	RecordNum int
	Fields    types.Value // null unless field splitting is configured
	File      types.Value // null before the first record
	End       bool
}

// New returns a bundle holding the initial defaults.
func New() *Bundle {
	b := &Bundle{}
	b.Reset()
	return b
}

// Reset restores the initial defaults.
func (b *Bundle) Reset() {
	*b = Bundle{Fields: types.Null(), File: types.Null()}
}

// TypeName returns "bundle".
func (b *Bundle) TypeName() string { return "bundle" }

// String returns the current record, so "_" prints as its record.
func (b *Bundle) String() string { return b.Record }

// Names returns the attribute names in declaration order.
func (b *Bundle) Names() []string { return Attrs() }

// Get returns an attribute or alias.
func (b *Bundle) Get(name string) (types.Value, error) {
	if target, ok := aliases[name]; ok {
		name = target
	}
	switch name {
	case AttrRecord:
		return types.NumStr(b.Record), nil
	case AttrRecordEnd:
		return types.Str(b.RecordEnd), nil
	case AttrRecordNum:
		return types.Num(float64(b.RecordNum)), nil
	case AttrFields:
		return b.Fields, nil
	case AttrFile:
		return b.File, nil
	case AttrEnd:
		return types.Bool(b.End), nil
	}
	return types.Null(), &types.ErrNoAttr{Object: Name, Name: name}
}

// Set assigns an existing attribute. Unknown names and aliases are rejected.
func (b *Bundle) Set(name string, v types.Value) error {
	switch name {
	case AttrRecord:
		b.Record = v.Text()
	case AttrRecordEnd:
		b.RecordEnd = v.Text()
	case AttrRecordNum:
		b.RecordNum = int(v.AsNum())
	case AttrFields:
		if !v.IsNull() && v.Kind() != types.KindList {
			return fmt.Errorf("%s.%s must be a list, not %s", Name, AttrFields, v.TypeName())
		}
		b.Fields = v
	case AttrFile:
		b.File = v
	case AttrEnd:
		b.End = v.AsBool()
	default:
		if IsReadOnly(name) {
			return &types.ErrReadOnly{Object: Name, Name: name}
		}
		return fmt.Errorf("cannot set unknown attribute %s.%s", Name, name)
	}
	return nil
}

// Index returns the attribute at position i, counting from 0 in
// declaration order.
func (b *Bundle) Index(i int) (types.Value, error) {
	if i < 0 || i >= len(attrs) {
		return types.Null(), fmt.Errorf("%s index %d out of range [0, %d)", Name, i, len(attrs))
	}
	return b.Get(attrs[i])
}

// SetFields stores split fields, or clears them when fields is nil.
func (b *Bundle) SetFields(fields []string) {
	if fields == nil {
		b.Fields = types.Null()
		return
	}
	b.Fields = types.Strings(fields)
}

// File describes the stream the current record came from.
type File struct {
	Name  string // path as given; "-" for standard input
	Index int    // 0-based position among the inputs
}

// TypeName returns "file".
func (f *File) TypeName() string { return "file" }

// String returns the file name.
func (f *File) String() string { return f.Name }

// Names returns the attribute names.
func (f *File) Names() []string { return []string{"name", "index"} }

// Get returns name or index.
func (f *File) Get(name string) (types.Value, error) {
	switch name {
	case "name":
		return types.Str(f.Name), nil
	case "index":
		return types.Num(float64(f.Index)), nil
	}
	return types.Null(), &types.ErrNoAttr{Object: "file", Name: name}
}

// Set always fails: file attributes describe the input and are fixed.
func (f *File) Set(name string, _ types.Value) error {
	return &types.ErrReadOnly{Object: "file", Name: name}
}

var (
	_ types.Object = (*Bundle)(nil)
	_ types.Object = (*File)(nil)
)
