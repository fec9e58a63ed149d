package modules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kolkov/upype/internal/runtime"
	"github.com/kolkov/upype/internal/types"
)

func str(v types.Value) types.Value { return types.Str(v.Text()) }

func stringsModule(_ *Registry) *types.Namespace {
	const m = "strings"
	s1 := func(name string, f func(string) string) types.Value {
		return fn(m, name, 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Str(f(a[0].Text())), nil
		})
	}
	pred := func(name string, f func(s, t string) bool) types.Value {
		return fn(m, name, 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Bool(f(a[0].Text(), a[1].Text())), nil
		})
	}

	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"upper":     s1("upper", strings.ToUpper),
		"lower":     s1("lower", strings.ToLower),
		"trimspace": s1("trimspace", strings.TrimSpace),
		"contains":  pred("contains", strings.Contains),
		"hasprefix": pred("hasprefix", strings.HasPrefix),
		"hassuffix": pred("hassuffix", strings.HasSuffix),
		"equalfold": pred("equalfold", strings.EqualFold),
		"trim": fn(m, "trim", 1, 2, func(a []types.Value) (types.Value, error) {
			if len(a) == 1 {
				return types.Str(strings.TrimSpace(a[0].Text())), nil
			}
			return types.Str(strings.Trim(a[0].Text(), a[1].Text())), nil
		}),
		"trimprefix": fn(m, "trimprefix", 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Str(strings.TrimPrefix(a[0].Text(), a[1].Text())), nil
		}),
		"trimsuffix": fn(m, "trimsuffix", 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Str(strings.TrimSuffix(a[0].Text(), a[1].Text())), nil
		}),
		"index": fn(m, "index", 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Num(float64(strings.Index(a[0].Text(), a[1].Text()))), nil
		}),
		"count": fn(m, "count", 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Num(float64(strings.Count(a[0].Text(), a[1].Text()))), nil
		}),
		"repeat": fn(m, "repeat", 2, 2, func(a []types.Value) (types.Value, error) {
			n := int(a[1].AsNum())
			if n < 0 {
				return types.Null(), fmt.Errorf("strings.repeat: negative count %d", n)
			}
			return types.Str(strings.Repeat(a[0].Text(), n)), nil
		}),
		"replace": fn(m, "replace", 3, 4, func(a []types.Value) (types.Value, error) {
			n := -1
			if len(a) == 4 {
				n = int(a[3].AsNum())
			}
			return types.Str(strings.Replace(a[0].Text(), a[1].Text(), a[2].Text(), n)), nil
		}),
		"split": fn(m, "split", 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Strings(strings.Split(a[0].Text(), a[1].Text())), nil
		}),
		"fields": fn(m, "fields", 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Strings(strings.Fields(a[0].Text())), nil
		}),
		"join": fn(m, "join", 1, 2, func(a []types.Value) (types.Value, error) {
			sep := ""
			if len(a) == 2 {
				sep = a[1].Text()
			}
			l, ok := a[0].List()
			if !ok {
				return types.Null(), fmt.Errorf("strings.join: expected a list, got %s", a[0].TypeName())
			}
			return types.Str(strings.Join(l.Texts(), sep)), nil
		}),
	}}
}

func strconvModule(_ *Registry) *types.Namespace {
	const m = "strconv"
	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"quote": fn(m, "quote", 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Str(strconv.Quote(a[0].Text())), nil
		}),
		"unquote": fn(m, "unquote", 1, 1, func(a []types.Value) (types.Value, error) {
			s, err := strconv.Unquote(a[0].Text())
			if err != nil {
				return types.Null(), fmt.Errorf("strconv.unquote: %w", err)
			}
			return types.Str(s), nil
		}),
		"atoi": fn(m, "atoi", 1, 1, func(a []types.Value) (types.Value, error) {
			n, err := strconv.Atoi(strings.TrimSpace(a[0].Text()))
			if err != nil {
				return types.Null(), fmt.Errorf("strconv.atoi: %w", err)
			}
			return types.Num(float64(n)), nil
		}),
		"parsefloat": fn(m, "parsefloat", 1, 1, func(a []types.Value) (types.Value, error) {
			f, err := strconv.ParseFloat(strings.TrimSpace(a[0].Text()), 64)
			if err != nil {
				return types.Null(), fmt.Errorf("strconv.parsefloat: %w", err)
			}
			return types.Num(f), nil
		}),
		"parseint": fn(m, "parseint", 2, 2, func(a []types.Value) (types.Value, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(a[0].Text()), int(a[1].AsNum()), 64)
			if err != nil {
				return types.Null(), fmt.Errorf("strconv.parseint: %w", err)
			}
			return types.Num(float64(n)), nil
		}),
		"formatint": fn(m, "formatint", 2, 2, func(a []types.Value) (types.Value, error) {
			base := int(a[1].AsNum())
			if base < 2 || base > 36 {
				return types.Null(), fmt.Errorf("strconv.formatint: invalid base %d", base)
			}
			return types.Str(strconv.FormatInt(int64(a[0].AsNum()), base)), nil
		}),
		"str": fn(m, "str", 1, 1, func(a []types.Value) (types.Value, error) {
			return str(a[0]), nil
		}),
	}}
}

func regexModule(r *Registry) *types.Namespace {
	const m = "regex"
	get := func(name string, a []types.Value) (*runtime.Regex, error) {
		re, err := r.regexes.Get(a[0].Text())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m, name, err)
		}
		return re, nil
	}

	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"match": fn(m, "match", 2, 2, func(a []types.Value) (types.Value, error) {
			re, err := get("match", a)
			if err != nil {
				return types.Null(), err
			}
			return types.Bool(re.MatchString(a[1].Text())), nil
		}),
		"find": fn(m, "find", 2, 2, func(a []types.Value) (types.Value, error) {
			re, err := get("find", a)
			if err != nil {
				return types.Null(), err
			}
			s, ok := re.FindString(a[1].Text())
			if !ok {
				return types.Null(), nil
			}
			return types.Str(s), nil
		}),
		"findall": fn(m, "findall", 2, 3, func(a []types.Value) (types.Value, error) {
			re, err := get("findall", a)
			if err != nil {
				return types.Null(), err
			}
			n := -1
			if len(a) == 3 {
				n = int(a[2].AsNum())
			}
			return types.Strings(re.FindAllString(a[1].Text(), n)), nil
		}),
		"sub": fn(m, "sub", 3, 3, func(a []types.Value) (types.Value, error) {
			re, err := get("sub", a)
			if err != nil {
				return types.Null(), err
			}
			return types.Str(re.ReplaceAllString(a[2].Text(), a[1].Text())), nil
		}),
		"split": fn(m, "split", 2, 3, func(a []types.Value) (types.Value, error) {
			re, err := get("split", a)
			if err != nil {
				return types.Null(), err
			}
			n := -1
			if len(a) == 3 {
				n = int(a[2].AsNum())
			}
			return types.Strings(re.Split(a[1].Text(), n)), nil
		}),
		"escape": fn(m, "escape", 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Str(regexp.QuoteMeta(a[0].Text())), nil
		}),
	}}
}
