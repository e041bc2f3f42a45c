package builtins

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sandboxjs/pkg/value"
)

// numberInitializer installs Number.prototype (ES5 §15.7.4), the Number
// constructor's static constants, and toLocaleString via
// golang.org/x/text/message for real locale-aware grouping instead of a
// hand-rolled thousands separator.
type numberInitializer struct{}

func (numberInitializer) Name() string  { return "Number" }
func (numberInitializer) Priority() int { return PriorityNumber }

func numThis(ctx value.NativeContext, this value.Value) float64 {
	n, _ := ctx.ToNumberValue(this)
	return n
}

func (numberInitializer) InitRuntime(host Host) error {
	proto := host.NumberPrototype()
	proto.Data = value.Num(0)

	c := ctor(host, "Number", 1, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := 0.0
		if len(args) > 0 {
			n, _ = ctx.ToNumberValue(args[0])
		}
		if this.IsObject() && this.AsObject().Proto == proto {
			obj := this.AsObject()
			obj.Class = value.ClassNumber
			obj.Data = value.Num(n)
			return value.Obj(obj), nil
		}
		return value.Num(n), nil
	})

	c.PutData("MAX_SAFE_INTEGER", &value.DataProperty{Value: value.Num(9007199254740991)})
	c.PutData("MIN_SAFE_INTEGER", &value.DataProperty{Value: value.Num(-9007199254740991)})
	c.PutData("MAX_VALUE", &value.DataProperty{Value: value.Num(math.MaxFloat64)})
	c.PutData("MIN_VALUE", &value.DataProperty{Value: value.Num(5e-324)})
	c.PutData("POSITIVE_INFINITY", &value.DataProperty{Value: value.Num(math.Inf(1))})
	c.PutData("NEGATIVE_INFINITY", &value.DataProperty{Value: value.Num(math.Inf(-1))})
	c.PutData("NaN", &value.DataProperty{Value: value.NaNValue})
	c.PutData("EPSILON", &value.DataProperty{Value: value.Num(2.220446049250313e-16)})

	staticMethod(c, "isInteger", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsNumber() {
			return value.Bool(false), nil
		}
		n := v.AsNumber()
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0) && n == math.Trunc(n)), nil
	})
	staticMethod(c, "isFinite", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		return value.Bool(v.IsNumber() && !math.IsNaN(v.AsNumber()) && !math.IsInf(v.AsNumber(), 0)), nil
	})
	staticMethod(c, "isNaN", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		return value.Bool(v.IsNumber() && math.IsNaN(v.AsNumber())), nil
	})

	method(proto, "toString", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := numThis(ctx, this)
		if len(args) > 0 && !args[0].IsUndefined() {
			radix := int(numArg(host, args, 0))
			if radix != 10 {
				return value.Str(formatRadix(n, radix)), nil
			}
		}
		return value.Str(value.NumberToString(n)), nil
	})

	method(proto, "valueOf", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(numThis(ctx, this)), nil
	})

	method(proto, "toFixed", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := numThis(ctx, this)
		digits := int(numArg(host, args, 0))
		return value.Str(strconv.FormatFloat(n, 'f', digits, 64)), nil
	})

	method(proto, "toPrecision", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := numThis(ctx, this)
		if len(args) == 0 || args[0].IsUndefined() {
			return value.Str(value.NumberToString(n)), nil
		}
		p := int(numArg(host, args, 0))
		return value.Str(strconv.FormatFloat(n, 'g', p, 64)), nil
	})

	method(proto, "toLocaleString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := numThis(ctx, this)
		p := message.NewPrinter(language.English)
		return value.Str(p.Sprintf("%v", n)), nil
	})

	return nil
}

func formatRadix(n float64, radix int) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	intPart := int64(n)
	s := strconv.FormatInt(intPart, radix)
	if neg {
		s = "-" + s
	}
	return s
}
