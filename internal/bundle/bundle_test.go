package bundle

import (
	"errors"
	"slices"
	"testing"

	"github.com/kolkov/upype/internal/types"
)

func TestDefaults(t *testing.T) {
	b := New()
	b.Record = "x"
	b.End = true
	b.Reset()

	if b.Record != "" || b.RecordEnd != "" || b.RecordNum != 0 || b.End {
		t.Errorf("Reset() left %+v", b)
	}
	if !b.Fields.IsNull() || !b.File.IsNull() {
		t.Error("fields and file should start absent")
	}
}

func TestGetSet(t *testing.T) {
	b := New()

	tests := []struct {
		name string
		set  types.Value
		want string
	}{
		{AttrRecord, types.Num(12), "12"},
		{AttrRecordEnd, types.Str("\r\n"), "\r\n"},
		{AttrRecordNum, types.Str("7"), "7"},
		{AttrEnd, types.Str("yes"), "1"},
		{AttrFields, types.Strings([]string{"a", "b"}), "a b"},
		{AttrFile, types.ObjectVal(&File{Name: "in.txt"}), "in.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.Set(tt.name, tt.set); err != nil {
				t.Fatalf("Set(%s) error = %v", tt.name, err)
			}
			got, err := b.Get(tt.name)
			if err != nil {
				t.Fatalf("Get(%s) error = %v", tt.name, err)
			}
			if got.Text() != tt.want {
				t.Errorf("Get(%s) = %q, want %q", tt.name, got.Text(), tt.want)
			}
		})
	}
}

func TestClosedAttributeSet(t *testing.T) {
	b := New()

	if err := b.Set("recrod", types.Str("typo")); err == nil {
		t.Error("Set of unknown attribute should fail")
	}
	if _, err := b.Get("nope"); err == nil {
		t.Error("Get of unknown attribute should fail")
	}

	var ro *types.ErrReadOnly
	if err := b.Set("R", types.Str("x")); !errors.As(err, &ro) {
		t.Errorf("Set(R) error = %v, want *types.ErrReadOnly", err)
	}
	if err := b.Set(AttrFields, types.Str("a,b")); err == nil {
		t.Error("fields should only accept a list")
	}
	if err := b.Set(AttrFields, types.Null()); err != nil {
		t.Errorf("fields should accept null: %v", err)
	}
	if !slices.Equal(b.Names(), Attrs()) {
		t.Error("Names() changed")
	}
}

func TestAliases(t *testing.T) {
	b := New()
	b.Record = "hello"
	b.RecordNum = 3
	b.SetFields([]string{"h", "ello"})

	for alias, attr := range map[string]string{"R": AttrRecord, "N": AttrRecordNum, "F": AttrFields} {
		got, _ := b.Get(alias)
		want, _ := b.Get(attr)
		if got.Text() != want.Text() {
			t.Errorf("Get(%s) = %q, want %q", alias, got.Text(), want.Text())
		}
		if !IsAttr(alias) || !IsReadOnly(alias) {
			t.Errorf("%s should be a read-only attribute", alias)
		}
	}
	if IsReadOnly(AttrRecord) {
		t.Error("record should be writable")
	}
}

func TestIndex(t *testing.T) {
	b := New()
	b.Record = "r"
	b.RecordEnd = "\n"
	b.RecordNum = 2

	for i, want := range []string{"r", "\n", "2", "", "", "0"} {
		got, err := b.Index(i)
		if err != nil {
			t.Fatalf("Index(%d) error = %v", i, err)
		}
		if got.Text() != want {
			t.Errorf("Index(%d) = %q, want %q", i, got.Text(), want)
		}
	}
	if _, err := b.Index(6); err == nil {
		t.Error("Index(6) should be out of range")
	}
	if _, err := b.Index(-1); err == nil {
		t.Error("Index(-1) should be out of range")
	}
}

func TestRecordIsNumericString(t *testing.T) {
	b := New()
	b.Record = "10"
	v, _ := b.Get(AttrRecord)
	if types.Compare(v, types.Num(9)) != 1 {
		t.Error("record 10 should compare numerically greater than 9")
	}
	if got := types.ObjectVal(b).Text(); got != "10" {
		t.Errorf("bundle text = %q, want the record", got)
	}
}

func TestFileReadOnly(t *testing.T) {
	f := &File{Name: "-", Index: 1}
	if v, _ := f.Get("index"); v.AsNum() != 1 {
		t.Errorf("index = %v, want 1", v)
	}
	if err := f.Set("name", types.Str("x")); err == nil {
		t.Error("file attributes should be read-only")
	}
	if _, err := f.Get("size"); err == nil {
		t.Error("unknown file attribute should fail")
	}
}
