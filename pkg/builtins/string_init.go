package builtins

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sandboxjs/pkg/value"
)

// stringInitializer installs String.prototype's accessor methods (ES5
// §15.5.4) and the String constructor, plus toLocaleUpperCase/
// toLocaleLowerCase backed by golang.org/x/text/cases for a real
// locale-sensitive case fold rather than the ASCII-only strings.ToUpper.
type stringInitializer struct{}

func (stringInitializer) Name() string  { return "String" }
func (stringInitializer) Priority() int { return PriorityString }

func strThis(ctx value.NativeContext, this value.Value) string {
	s, _ := ctx.ToStringValue(this)
	return s
}

func (stringInitializer) InitRuntime(host Host) error {
	proto := host.StringPrototype()
	proto.Data = value.Str("")

	ctor(host, "String", 1, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := ""
		if len(args) > 0 {
			s, _ = ctx.ToStringValue(args[0])
		}
		if this.IsObject() && this.AsObject().Proto == proto {
			obj := this.AsObject()
			obj.Class = value.ClassString
			obj.Data = value.Str(s)
			return value.Obj(obj), nil
		}
		return value.Str(s), nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(strThis(ctx, this)), nil
	})
	method(proto, "valueOf", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(strThis(ctx, this)), nil
	})

	method(proto, "charAt", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r := []rune(strThis(ctx, this))
		idx := int(numArg(host, args, 0))
		if idx < 0 || idx >= len(r) {
			return value.Str(""), nil
		}
		return value.Str(string(r[idx])), nil
	})

	method(proto, "charCodeAt", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r := []rune(strThis(ctx, this))
		idx := int(numArg(host, args, 0))
		if idx < 0 || idx >= len(r) {
			return value.NaNValue, nil
		}
		return value.Num(float64(r[idx])), nil
	})

	method(proto, "indexOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		needle := strArg(host, args, 0)
		start := 0
		if len(args) > 1 {
			start = int(numArg(host, args, 1))
		}
		if start < 0 {
			start = 0
		}
		if start > len(s) {
			return value.Num(-1), nil
		}
		idx := strings.Index(s[start:], needle)
		if idx < 0 {
			return value.Num(-1), nil
		}
		return value.Num(float64(idx + start)), nil
	})

	method(proto, "lastIndexOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		needle := strArg(host, args, 0)
		return value.Num(float64(strings.LastIndex(s, needle))), nil
	})

	method(proto, "includes", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.Contains(strThis(ctx, this), strArg(host, args, 0))), nil
	})

	method(proto, "startsWith", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasPrefix(strThis(ctx, this), strArg(host, args, 0))), nil
	})

	method(proto, "endsWith", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(strings.HasSuffix(strThis(ctx, this), strArg(host, args, 0))), nil
	})

	method(proto, "slice", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r := []rune(strThis(ctx, this))
		n := len(r)
		start := normalizeIndex(numArgOr(ctx, args, 0, 0), n)
		end := n
		if len(args) > 1 && !args[1].IsUndefined() {
			end = normalizeIndex(numArgOr(ctx, args, 1, float64(n)), n)
		}
		if end < start {
			end = start
		}
		return value.Str(string(r[start:end])), nil
	})

	method(proto, "substring", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r := []rune(strThis(ctx, this))
		n := len(r)
		a := clampIndex(int(numArgOr(ctx, args, 0, 0)), n)
		b := n
		if len(args) > 1 && !args[1].IsUndefined() {
			b = clampIndex(int(numArgOr(ctx, args, 1, float64(n))), n)
		}
		if a > b {
			a, b = b, a
		}
		return value.Str(string(r[a:b])), nil
	})

	method(proto, "substr", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r := []rune(strThis(ctx, this))
		n := len(r)
		start := normalizeIndex(numArgOr(ctx, args, 0, 0), n)
		length := n - start
		if len(args) > 1 && !args[1].IsUndefined() {
			length = int(numArgOr(ctx, args, 1, float64(length)))
		}
		if length < 0 {
			length = 0
		}
		end := start + length
		if end > n {
			end = n
		}
		return value.Str(string(r[start:end])), nil
	})

	method(proto, "concat", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		for _, a := range args {
			as, _ := ctx.ToStringValue(a)
			s += as
		}
		return value.Str(s), nil
	})

	method(proto, "toUpperCase", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(strings.ToUpper(strThis(ctx, this))), nil
	})
	method(proto, "toLowerCase", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(strings.ToLower(strThis(ctx, this))), nil
	})
	method(proto, "toLocaleUpperCase", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(cases.Upper(language.Und).String(strThis(ctx, this))), nil
	})
	method(proto, "toLocaleLowerCase", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(cases.Lower(language.Und).String(strThis(ctx, this))), nil
	})

	method(proto, "trim", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(strings.TrimSpace(strThis(ctx, this))), nil
	})

	method(proto, "repeat", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := int(numArg(host, args, 0))
		if n < 0 {
			ctx.ThrowRange("repeat count must be non-negative")
			return value.UndefinedValue, nil
		}
		return value.Str(strings.Repeat(strThis(ctx, this), n)), nil
	})

	method(proto, "padStart", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(pad(strThis(ctx, this), args, host, true)), nil
	})
	method(proto, "padEnd", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(pad(strThis(ctx, this), args, host, false)), nil
	})

	method(proto, "split", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		sep := arg(args, 0)
		limit := -1
		if len(args) > 1 && !args[1].IsUndefined() {
			limit = int(numArg(host, args, 1))
		}
		var parts []string
		if sep.IsUndefined() {
			parts = []string{s}
		} else if host.IsRegExp(sep) {
			var err error
			parts, err = host.SplitRegex(sep.AsObject(), s, limit)
			if err != nil {
				ctx.ThrowSyntax("%s", err.Error())
				return value.UndefinedValue, nil
			}
		} else {
			sepStr, _ := ctx.ToStringValue(sep)
			if sepStr == "" {
				for _, r := range s {
					parts = append(parts, string(r))
				}
			} else {
				parts = strings.Split(s, sepStr)
			}
		}
		if limit >= 0 && len(parts) > limit {
			parts = parts[:limit]
		}
		elems := make([]value.Value, len(parts))
		for idx, p := range parts {
			elems[idx] = value.Str(p)
		}
		return value.Obj(ctx.NewArray(elems...)), nil
	})

	method(proto, "match", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		re := arg(args, 0)
		var reObj *value.Object
		if host.IsRegExp(re) {
			reObj = re.AsObject()
		} else {
			pattern, _ := ctx.ToStringValue(re)
			reObj = host.NewRegExp(pattern, "")
		}
		global := false
		if dp, ok := reObj.GetOwnData("global"); ok {
			global = dp.Value.ToBoolean()
		}
		if !global {
			matched, idx, groups, _, err := host.ExecRegex(reObj, s, 0)
			if err != nil {
				ctx.ThrowSyntax("%s", err.Error())
				return value.UndefinedValue, nil
			}
			if !matched {
				return value.NullValue, nil
			}
			return value.Obj(buildMatchResult(ctx, groups, idx, s)), nil
		}
		var all []value.Value
		pos := 0
		for {
			matched, idx, groups, _, err := host.ExecRegex(reObj, s, pos)
			if err != nil {
				ctx.ThrowSyntax("%s", err.Error())
				return value.UndefinedValue, nil
			}
			if !matched {
				break
			}
			all = append(all, value.Str(groups[0]))
			pos = idx + len(groups[0])
			if len(groups[0]) == 0 {
				pos++
			}
		}
		if len(all) == 0 {
			return value.NullValue, nil
		}
		return value.Obj(ctx.NewArray(all...)), nil
	})

	method(proto, "replace", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		s := strThis(ctx, this)
		pattern := arg(args, 0)
		replacement := arg(args, 1)
		if host.IsRegExp(pattern) {
			return replaceRegex(ctx, host, pattern.AsObject(), s, replacement)
		}
		needle, _ := ctx.ToStringValue(pattern)
		idx := strings.Index(s, needle)
		if idx < 0 {
			return value.Str(s), nil
		}
		rep, err := resolveReplacement(ctx, replacement, []string{needle}, idx, s)
		if err != nil {
			return value.UndefinedValue, err
		}
		return value.Str(s[:idx] + rep + s[idx+len(needle):]), nil
	})

	method(proto, "localeCompare", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		a := strThis(ctx, this)
		b := strArg(host, args, 0)
		switch {
		case a < b:
			return value.Num(-1), nil
		case a > b:
			return value.Num(1), nil
		default:
			return value.Num(0), nil
		}
	})

	c, _ := host.Global().GetOwnData("String")
	staticMethod(c.Value.AsObject(), "fromCharCode", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		var sb strings.Builder
		for _, a := range args {
			n, _ := ctx.ToNumberValue(a)
			sb.WriteRune(rune(int(n)))
		}
		return value.Str(sb.String()), nil
	})

	return nil
}

func clampIndex(n, length int) int {
	if n < 0 {
		return 0
	}
	if n > length {
		return length
	}
	return n
}

func pad(s string, args []value.Value, host Host, start bool) string {
	targetLen := int(numArg(host, args, 0))
	padStr := " "
	if len(args) > 1 && !args[1].IsUndefined() {
		padStr, _ = host.ToStringValue(args[1])
	}
	if len([]rune(s)) >= targetLen || padStr == "" {
		return s
	}
	need := targetLen - len([]rune(s))
	var sb strings.Builder
	for sb.Len() < need {
		sb.WriteString(padStr)
	}
	fill := string([]rune(sb.String())[:need])
	if start {
		return fill + s
	}
	return s + fill
}

func buildMatchResult(ctx value.NativeContext, groups []string, index int, input string) *value.Object {
	elems := make([]value.Value, len(groups))
	for idx, g := range groups {
		elems[idx] = value.Str(g)
	}
	arr := ctx.NewArray(elems...)
	arr.PutData("index", &value.DataProperty{Value: value.Num(float64(index)), Writable: true, Enumerable: true})
	arr.PutData("input", &value.DataProperty{Value: value.Str(input), Writable: true, Enumerable: true})
	return arr
}

func replaceRegex(ctx value.NativeContext, host Host, reObj *value.Object, s string, replacement value.Value) (value.Value, error) {
	global := false
	if dp, ok := reObj.GetOwnData("global"); ok {
		global = dp.Value.ToBoolean()
	}
	var sb strings.Builder
	pos := 0
	for {
		matched, idx, groups, _, err := host.ExecRegex(reObj, s, pos)
		if err != nil {
			ctx.ThrowSyntax("%s", err.Error())
			return value.UndefinedValue, nil
		}
		if !matched {
			break
		}
		sb.WriteString(s[pos:idx])
		rep, rerr := resolveReplacement(ctx, replacement, groups, idx, s)
		if rerr != nil {
			return value.UndefinedValue, rerr
		}
		sb.WriteString(rep)
		pos = idx + len(groups[0])
		if len(groups[0]) == 0 {
			if pos < len(s) {
				sb.WriteByte(s[pos])
			}
			pos++
		}
		if !global {
			break
		}
	}
	if pos <= len(s) {
		sb.WriteString(s[pos:])
	}
	return value.Str(sb.String()), nil
}

func resolveReplacement(ctx value.NativeContext, replacement value.Value, groups []string, index int, input string) (string, error) {
	if replacement.IsCallable() {
		callArgs := make([]value.Value, 0, len(groups)+2)
		for _, g := range groups {
			callArgs = append(callArgs, value.Str(g))
		}
		callArgs = append(callArgs, value.Num(float64(index)), value.Str(input))
		r, err := ctx.Call(replacement, value.UndefinedValue, callArgs)
		if err != nil {
			return "", err
		}
		s, _ := ctx.ToStringValue(r)
		return s, nil
	}
	template, _ := ctx.ToStringValue(replacement)
	return expandReplacementTemplate(template, groups), nil
}

// expandReplacementTemplate implements the $1/$2/$&/$$ substitution
// patterns String.prototype.replace's string form supports (ES5 §15.5.4.11).
func expandReplacementTemplate(template string, groups []string) string {
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		if template[i] != '$' || i+1 >= len(template) {
			sb.WriteByte(template[i])
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			sb.WriteByte('$')
			i++
		case next == '&':
			sb.WriteString(groups[0])
			i++
		case next >= '0' && next <= '9':
			n := int(next - '0')
			j := i + 2
			if j < len(template) && template[j] >= '0' && template[j] <= '9' {
				if n*10+int(template[j]-'0') < len(groups) {
					n = n*10 + int(template[j]-'0')
					j++
				}
			}
			if n > 0 && n < len(groups) {
				sb.WriteString(groups[n])
				i = j - 1
			} else {
				sb.WriteByte('$')
			}
		default:
			sb.WriteByte('$')
		}
	}
	return sb.String()
}
