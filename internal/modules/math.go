package modules

import (
	"errors"
	"math"

	"github.com/kolkov/upype/internal/types"
)

func mathModule(_ *Registry) *types.Namespace {
	const m = "math"
	f1 := func(name string, f func(float64) float64) types.Value {
		return fn(m, name, 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Num(f(a[0].AsNum())), nil
		})
	}
	f2 := func(name string, f func(float64, float64) float64) types.Value {
		return fn(m, name, 2, 2, func(a []types.Value) (types.Value, error) {
			return types.Num(f(a[0].AsNum(), a[1].AsNum())), nil
		})
	}
	fold := func(name string, pick func(float64, float64) float64) types.Value {
		return fn(m, name, 1, -1, func(a []types.Value) (types.Value, error) {
			nums, err := numbers(a)
			if err != nil {
				return types.Null(), err
			}
			if len(nums) == 0 {
				return types.Null(), errors.New("math." + name + ": empty list")
			}
			r := nums[0]
			for _, n := range nums[1:] {
				r = pick(r, n)
			}
			return types.Num(r), nil
		})
	}

	return &types.Namespace{Name: m, Attrs: map[string]types.Value{
		"pi":    types.Num(math.Pi),
		"e":     types.Num(math.E),
		"inf":   types.Num(math.Inf(1)),
		"nan":   types.Num(math.NaN()),
		"abs":   f1("abs", math.Abs),
		"ceil":  f1("ceil", math.Ceil),
		"floor": f1("floor", math.Floor),
		"round": f1("round", math.Round),
		"trunc": f1("trunc", math.Trunc),
		"sqrt":  f1("sqrt", math.Sqrt),
		"log":   f1("log", math.Log),
		"log2":  f1("log2", math.Log2),
		"log10": f1("log10", math.Log10),
		"exp":   f1("exp", math.Exp),
		"sin":   f1("sin", math.Sin),
		"cos":   f1("cos", math.Cos),
		"tan":   f1("tan", math.Tan),
		"pow":   f2("pow", math.Pow),
		"hypot": f2("hypot", math.Hypot),
		"atan2": f2("atan2", math.Atan2),
		"mod":   f2("mod", math.Mod),
		"min":   fold("min", math.Min),
		"max":   fold("max", math.Max),
		"sum": fn(m, "sum", 1, -1, func(a []types.Value) (types.Value, error) {
			nums, err := numbers(a)
			if err != nil {
				return types.Null(), err
			}
			total := 0.0
			for _, n := range nums {
				total += n
			}
			return types.Num(total), nil
		}),
		"isnan": fn(m, "isnan", 1, 1, func(a []types.Value) (types.Value, error) {
			return types.Bool(math.IsNaN(a[0].AsNum())), nil
		}),
	}}
}

// numbers flattens the arguments into numbers: a single list argument
// contributes its items.
func numbers(args []types.Value) ([]float64, error) {
	if len(args) == 1 {
		switch args[0].Kind() {
		case types.KindList:
			l, _ := args[0].List()
			args = l.Items()
		case types.KindArray:
			a, _ := args[0].Array()
			items := make([]types.Value, 0, a.Len())
			for _, k := range a.Keys() {
				v, _ := a.Get(k)
				items = append(items, v)
			}
			args = items
		}
	}
	nums := make([]float64, len(args))
	for i, v := range args {
		if !v.IsScalar() {
			return nil, errors.New("expected numbers, got " + v.TypeName())
		}
		nums[i] = v.AsNum()
	}
	return nums, nil
}
