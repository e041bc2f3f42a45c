package builtins

import (
	"math"
	"math/rand"

	"sandboxjs/pkg/value"
)

// mathInitializer installs the Math namespace object (ES5 §15.8): a
// single plain object with constant data properties and native methods,
// never constructed or extended by guest code in practice.
type mathInitializer struct{}

func (mathInitializer) Name() string  { return "Math" }
func (mathInitializer) Priority() int { return PriorityMath }

func (mathInitializer) InitRuntime(host Host) error {
	m := host.NewObject(host.ObjectPrototype())

	m.PutData("E", &value.DataProperty{Value: value.Num(math.E)})
	m.PutData("PI", &value.DataProperty{Value: value.Num(math.Pi)})
	m.PutData("LN2", &value.DataProperty{Value: value.Num(math.Ln2)})
	m.PutData("LN10", &value.DataProperty{Value: value.Num(math.Log(10))})
	m.PutData("LOG2E", &value.DataProperty{Value: value.Num(1 / math.Ln2)})
	m.PutData("LOG10E", &value.DataProperty{Value: value.Num(1 / math.Log(10))})
	m.PutData("SQRT2", &value.DataProperty{Value: value.Num(math.Sqrt2)})
	m.PutData("SQRT1_2", &value.DataProperty{Value: value.Num(math.Sqrt(0.5))})

	unary := func(name string, fn func(float64) float64) {
		method(m, name, 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
			return value.Num(fn(numArg2(ctx, args, 0))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("trunc", math.Trunc)
	unary("sign", func(f float64) float64 {
		switch {
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})
	unary("round", func(f float64) float64 {
		return math.Floor(f + 0.5)
	})

	method(m, "pow", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(math.Pow(numArg2(ctx, args, 0), numArg2(ctx, args, 1))), nil
	})
	method(m, "atan2", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(math.Atan2(numArg2(ctx, args, 0), numArg2(ctx, args, 1))), nil
	})
	method(m, "max", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		best := math.Inf(-1)
		for _, a := range args {
			n, _ := ctx.ToNumberValue(a)
			if math.IsNaN(n) {
				return value.NaNValue, nil
			}
			if n > best {
				best = n
			}
		}
		return value.Num(best), nil
	})
	method(m, "min", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		best := math.Inf(1)
		for _, a := range args {
			n, _ := ctx.ToNumberValue(a)
			if math.IsNaN(n) {
				return value.NaNValue, nil
			}
			if n < best {
				best = n
			}
		}
		return value.Num(best), nil
	})
	method(m, "hypot", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		sum := 0.0
		for _, a := range args {
			n, _ := ctx.ToNumberValue(a)
			sum += n * n
		}
		return value.Num(math.Sqrt(sum)), nil
	})
	method(m, "random", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(rand.Float64()), nil
	})

	host.Global().PutData("Math", &value.DataProperty{Value: value.Obj(m), Writable: true, Configurable: true})
	return nil
}

func numArg2(ctx value.NativeContext, args []value.Value, idx int) float64 {
	n, _ := ctx.ToNumberValue(arg(args, idx))
	return n
}
