package builtins

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"sandboxjs/pkg/value"
)

// globalsInitializer installs the free-standing global functions and
// constants ES5 §15.1 hangs directly off the global object rather than a
// namespace: parseInt/parseFloat/isNaN/isFinite, the URI-encoding quartet,
// NaN/Infinity/undefined, and eval.
type globalsInitializer struct{}

func (globalsInitializer) Name() string  { return "Globals" }
func (globalsInitializer) Priority() int { return PriorityGlobals }

const jsWhitespace = " \t\n\r\v\f                 　\ufeff"

func (globalsInitializer) InitRuntime(host Host) error {
	g := host.Global()

	g.PutData("NaN", &value.DataProperty{Value: value.NaNValue})
	g.PutData("Infinity", &value.DataProperty{Value: value.Num(math.Inf(1))})
	g.PutData("undefined", &value.DataProperty{Value: value.UndefinedValue})
	g.PutData("globalThis", &value.DataProperty{Value: value.Obj(g), Writable: true, Configurable: true})

	define := func(name string, arity int, fn value.NativeFunc) {
		g.PutData(name, &value.DataProperty{
			Value:        value.Obj(newNativeFnOn(host.FunctionPrototype(), name, arity, fn)),
			Writable:     true,
			Configurable: true,
		})
	}

	define("parseInt", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.NaNValue, nil
		}
		s, _ := ctx.ToStringValue(args[0])
		radix := 0
		if len(args) > 1 {
			n, _ := ctx.ToNumberValue(args[1])
			if !math.IsNaN(n) && !math.IsInf(n, 0) {
				radix = int(int32(int64(n)))
			}
		}
		return value.Num(jsParseInt(s, radix)), nil
	})

	define("parseFloat", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.NaNValue, nil
		}
		s, _ := ctx.ToStringValue(args[0])
		return value.Num(jsParseFloat(s)), nil
	})

	define("isNaN", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n, _ := ctx.ToNumberValue(arg(args, 0))
		return value.Bool(math.IsNaN(n)), nil
	})

	define("isFinite", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n, _ := ctx.ToNumberValue(arg(args, 0))
		return value.Bool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	})

	define("encodeURIComponent", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s, _ := ctx.ToStringValue(arg(args, 0))
		return value.Str(uriEscape(s, uriComponentUnreserved)), nil
	})
	define("decodeURIComponent", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s, _ := ctx.ToStringValue(arg(args, 0))
		out, err := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
		if err != nil {
			ctx.ThrowURI("URI malformed")
			return value.UndefinedValue, nil
		}
		return value.Str(out), nil
	})
	define("encodeURI", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s, _ := ctx.ToStringValue(arg(args, 0))
		return value.Str(uriEscape(s, uriUnreserved)), nil
	})
	define("decodeURI", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s, _ := ctx.ToStringValue(arg(args, 0))
		out, err := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
		if err != nil {
			ctx.ThrowURI("URI malformed")
			return value.UndefinedValue, nil
		}
		return value.Str(out), nil
	})

	define("eval", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 || !args[0].IsString() {
			return arg(args, 0), nil
		}
		// EvalSource's error, when non-nil, is whatever pkg/interp's own
		// drainCall would have produced for a thrown guest value -- pass
		// it through unwrapped rather than re-boxing it in a SyntaxError,
		// so a guest exception raised by the evaluated source keeps its
		// original class and message.
		return host.EvalSource(args[0].AsString())
	})

	return nil
}

// jsParseInt implements the global parseInt function (ES5 §15.1.2.2):
// strip whitespace and sign, resolve radix (defaulting to 10, or 16 when
// the string carries a 0x/0X prefix), then parse the longest valid
// prefix rather than requiring the whole string to be numeric.
func jsParseInt(s string, radix int) float64 {
	s = strings.TrimLeft(s, jsWhitespace)
	sign := 1.0
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	stripPrefix := false
	switch {
	case radix == 0:
		radix = 10
		stripPrefix = true
	case radix < 2 || radix > 36:
		return math.NaN()
	case radix == 16:
		stripPrefix = true
	}
	if stripPrefix && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		s = s[2:]
		radix = 16
	}
	if s == "" {
		return math.NaN()
	}

	var result int64
	parsed := false
	for i := 1; i <= len(s); i++ {
		v, err := strconv.ParseInt(s[:i], radix, 64)
		if err != nil {
			break
		}
		result = v
		parsed = true
	}
	if !parsed {
		return math.NaN()
	}
	return sign * float64(result)
}

// jsParseFloat implements the global parseFloat function (ES5 §15.1.2.3):
// same longest-valid-prefix strategy as parseInt, but for a float literal
// grammar (and the Infinity/-Infinity spellings ParseFloat doesn't know).
func jsParseFloat(s string) float64 {
	s = strings.TrimLeft(s, jsWhitespace)
	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1)
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1)
	}
	for i := len(s); i > 0; i-- {
		if v, err := strconv.ParseFloat(s[:i], 64); err == nil {
			return v
		}
	}
	return math.NaN()
}

const (
	uriUnreserved          = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'();/?:@&=+$,#"
	uriComponentUnreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"
)

func uriEscape(s, unreserved string) string {
	var b strings.Builder
	for _, r := range []byte(s) {
		if strings.IndexByte(unreserved, r) >= 0 {
			b.WriteByte(r)
		} else {
			b.WriteByte('%')
			hex := strings.ToUpper(strconv.FormatInt(int64(r), 16))
			if len(hex) < 2 {
				b.WriteByte('0')
			}
			b.WriteString(hex)
		}
	}
	return b.String()
}
