package modules

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	goruntime "runtime"
	"time"

	"github.com/kolkov/upype/internal/types"
)

func pathModule(_ *Registry) *types.Namespace {
	const m = "path"
	s1 := func(name string, f func(string) string) types.Value {
		return fn(m, name, 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Str(f(a[0].Text())), nil
		})
	}
	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"sep":   types.Str(string(filepath.Separator)),
		"base":  s1("base", filepath.Base),
		"dir":   s1("dir", filepath.Dir),
		"ext":   s1("ext", filepath.Ext),
		"clean": s1("clean", filepath.Clean),
		"join": fn(m, "join", 1, -1, func(a []types.Value) (types.Value, error) {
			parts := make([]string, len(a))
			for i, v := range a {
				parts[i] = v.Text()
			}
			return types.Str(filepath.Join(parts...)), nil
		}),
		"split": fn(m, "split", 1, 1, func(a []types.Value) (types.Value, error) {
			dir, file := filepath.Split(a[0].Text())
			return types.ListVal(types.NewList(types.Str(dir), types.Str(file))), nil
		}),
		"abs": fn(m, "abs", 1, 1, func(a []types.Value) (types.Value, error) {
			p, err := filepath.Abs(a[0].Text())
			if err != nil {
				return types.Null(), fmt.Errorf("path.abs: %w", err)
			}
			return types.Str(p), nil
		}),
		"match": fn(m, "match", 2, 2, func(a []types.Value) (types.Value, error) {
			ok, err := filepath.Match(a[0].Text(), a[1].Text())
			if err != nil {
				return types.Null(), fmt.Errorf("path.match: %w", err)
			}
			return types.Bool(ok), nil
		}),
	}}
}

func osModule(_ *Registry) *types.Namespace {
	const m = "os"
	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"platform": types.Str(goruntime.GOOS),
		"getenv": fn(m, "getenv", 1, 2, func(a []types.Value) (types.Value, error) {
			v, ok := os.LookupEnv(a[0].Text())
			if !ok {
				if len(a) == 2 {
					return a[1], nil
				}
				return types.Null(), nil
			}
			return types.Str(v), nil
		}),
		"getpid": fn(m, "getpid", 0, 0, func([]types.Value) (types.Value, error) {
			return types.Num(float64(os.Getpid())), nil
		}),
		"getwd": fn(m, "getwd", 0, 0, func([]types.Value) (types.Value, error) {
			wd, err := os.Getwd()
			if err != nil {
				return types.Null(), fmt.Errorf("os.getwd: %w", err)
			}
			return types.Str(wd), nil
		}),
		"hostname": fn(m, "hostname", 0, 0, func([]types.Value) (types.Value, error) {
			h, err := os.Hostname()
			if err != nil {
				return types.Null(), fmt.Errorf("os.hostname: %w", err)
			}
			return types.Str(h), nil
		}),
		"exists": fn(m, "exists", 1, 1, func(a []types.Value) (types.Value, error) {
			_, err := os.Stat(a[0].Text())
			switch {
			case err == nil:
				return types.Num(1), nil
			case errors.Is(err, os.ErrNotExist):
				return types.Num(0), nil
			}
			return types.Null(), fmt.Errorf("os.exists: %w", err)
		}),
		"environ": fn(m, "environ", 0, 0, func([]types.Value) (types.Value, error) {
			env := types.NewArray()
			for _, kv := range os.Environ() {
				for i := 0; i < len(kv); i++ {
					if kv[i] == '=' {
						env.Set(kv[:i], types.Str(kv[i+1:]))
						break
					}
				}
			}
			return types.ArrayVal(env), nil
		}),
	}}
}

// timeModule works in Unix seconds; layouts are Go reference layouts.
func timeModule(_ *Registry) *types.Namespace {
	const m = "time"
	toTime := func(v types.Value) time.Time {
		sec := v.AsNum()
		whole := int64(sec)
		return time.Unix(whole, int64((sec-float64(whole))*1e9))
	}
	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"rfc3339":  types.Str(time.RFC3339),
		"datetime": types.Str(time.DateTime),
		"now": fn(m, "now", 0, 0, func([]types.Value) (types.Value, error) {
			return types.Num(float64(time.Now().UnixNano()) / 1e9), nil
		}),
		"format": fn(m, "format", 1, 3, func(a []types.Value) (types.Value, error) {
			layout := time.RFC3339
			if len(a) >= 2 {
				layout = a[1].Text()
			}
			t := toTime(a[0])
			if len(a) == 3 && a[2].Text() == "utc" {
				t = t.UTC()
			}
			return types.Str(t.Format(layout)), nil
		}),
		"parse": fn(m, "parse", 2, 2, func(a []types.Value) (types.Value, error) {
			t, err := time.Parse(a[0].Text(), a[1].Text())
			if err != nil {
				return types.Null(), fmt.Errorf("time.parse: %w", err)
			}
			return types.Num(float64(t.UnixNano()) / 1e9), nil
		}),
		"duration": fn(m, "duration", 1, 1, func(a []types.Value) (types.Value, error) {
			d, err := time.ParseDuration(a[0].Text())
			if err != nil {
				return types.Null(), fmt.Errorf("time.duration: %w", err)
			}
			return types.Num(d.Seconds()), nil
		}),
	}}
}
