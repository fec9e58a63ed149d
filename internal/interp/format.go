package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kolkov/upype/internal/types"
)

// Sprintf formats args with a printf-style format: flags "-+ #0", width
// and precision (either may be *), and the verbs d i o x X u c s e E f F
// g G. Missing arguments format as null; %% is a literal percent.
func Sprintf(format string, args []types.Value) string {
	f := formatter{args: args}
	var sb strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			sb.WriteByte('%')
			i++
			continue
		}
		n := f.verb(&sb, format[i+1:])
		i += n
	}
	return sb.String()
}

type formatter struct {
	args []types.Value
	next int
}

func (f *formatter) arg() types.Value {
	if f.next < len(f.args) {
		v := f.args[f.next]
		f.next++
		return v
	}
	return types.Null()
}

// verb formats the conversion starting just after a '%' and returns the
// number of format bytes it consumed.
func (f *formatter) verb(sb *strings.Builder, s string) int {
	i := 0
	spec := []byte{'%'}

	for i < len(s) && strings.IndexByte("-+ #0", s[i]) >= 0 {
		spec = append(spec, s[i])
		i++
	}

	if i < len(s) && s[i] == '*' {
		w := int(f.arg().AsNum())
		if w < 0 {
			spec = append(spec, '-')
			w = -w
		}
		spec = strconv.AppendInt(spec, int64(w), 10)
		i++
	} else {
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			spec = append(spec, s[i])
			i++
		}
	}

	if i < len(s) && s[i] == '.' {
		i++
		if i < len(s) && s[i] == '*' {
			// A negative precision is ignored.
			if p := int(f.arg().AsNum()); p >= 0 {
				spec = append(spec, '.')
				spec = strconv.AppendInt(spec, int64(p), 10)
			}
			i++
		} else {
			spec = append(spec, '.')
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				spec = append(spec, s[i])
				i++
			}
		}
	}

	if i >= len(s) {
		// Incomplete conversion at the end of the format is copied as is.
		sb.Write(spec)
		return i
	}

	conv := s[i]
	i++
	switch conv {
	case 'd', 'i':
		fmt.Fprintf(sb, string(append(spec, 'd')), int64(f.arg().AsNum()))
	case 'u':
		fmt.Fprintf(sb, string(append(spec, 'd')), uint64(f.arg().AsNum()))
	case 'o', 'x', 'X':
		fmt.Fprintf(sb, string(append(spec, conv)), uint64(f.arg().AsNum()))
	case 'e', 'E', 'f', 'g', 'G':
		fmt.Fprintf(sb, string(append(spec, conv)), f.arg().AsNum())
	case 'F':
		fmt.Fprintf(sb, string(append(spec, 'f')), f.arg().AsNum())
	case 's':
		fmt.Fprintf(sb, string(append(spec, 's')), f.arg().Text())
	case 'c':
		formatChar(sb, f.arg())
	default:
		sb.WriteByte('%')
		sb.WriteByte(conv)
	}
	return i
}

// formatChar writes a number as the character with that code and a string
// as its first character.
func formatChar(sb *strings.Builder, v types.Value) {
	if v.IsNum() || v.IsNull() {
		if n := int(v.AsNum()); n >= 0 && n <= 255 {
			sb.WriteByte(byte(n))
		}
		return
	}
	if s := v.Text(); s != "" {
		sb.WriteByte(s[0])
	}
}
