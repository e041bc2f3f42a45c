package builtins

import "sandboxjs/pkg/value"

// regexpInitializer installs RegExp.prototype.exec/test/toString and the
// RegExp constructor (ES5 §15.10); the actual pattern compilation and
// matching is delegated to Host.ExecRegex, which in turn hands off to
// whatever RegexExecutor the interpreter was constructed with.
type regexpInitializer struct{}

func (regexpInitializer) Name() string  { return "RegExp" }
func (regexpInitializer) Priority() int { return PriorityRegExp }

func (regexpInitializer) InitRuntime(host Host) error {
	proto := host.RegExpPrototype()

	ctor(host, "RegExp", 2, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		pattern := arg(args, 0)
		if host.IsRegExp(pattern) && len(args) < 2 {
			src, _ := pattern.AsObject().GetOwnData("source")
			flags, _ := pattern.AsObject().GetOwnData("flags")
			return value.Obj(host.NewRegExp(src.Value.AsString(), flags.Value.AsString())), nil
		}
		patStr, _ := ctx.ToStringValue(pattern)
		flagsStr := ""
		if len(args) > 1 {
			flagsStr, _ = ctx.ToStringValue(args[1])
		}
		return value.Obj(host.NewRegExp(patStr, flagsStr)), nil
	})

	method(proto, "exec", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsObject() || !host.IsRegExp(this) {
			ctx.ThrowType("RegExp.prototype.exec called on a non-RegExp")
			return value.UndefinedValue, nil
		}
		obj := this.AsObject()
		s := strArg(host, args, 0)
		lastIndex := 0
		global := isGlobalOrSticky(obj)
		if global {
			if dp, ok := obj.GetOwnData("lastIndex"); ok {
				lastIndex = int(dp.Value.AsNumber())
			}
		}
		matched, idx, groups, _, err := host.ExecRegex(obj, s, lastIndex)
		if err != nil {
			ctx.ThrowSyntax("%s", err.Error())
			return value.UndefinedValue, nil
		}
		if !matched {
			if global {
				obj.PutData("lastIndex", &value.DataProperty{Value: value.Num(0), Writable: true})
			}
			return value.NullValue, nil
		}
		if global {
			obj.PutData("lastIndex", &value.DataProperty{Value: value.Num(float64(idx + len(groups[0]))), Writable: true})
		}
		return value.Obj(buildMatchResult(ctx, groups, idx, s)), nil
	})

	method(proto, "test", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		r, err := ctx.Call(mustGet(ctx, this, "exec"), this, args)
		if err != nil {
			return value.UndefinedValue, err
		}
		return value.Bool(!r.IsNull()), nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsObject() {
			return value.Str("/(?:)/"), nil
		}
		obj := this.AsObject()
		src, _ := obj.GetOwnData("source")
		flags, _ := obj.GetOwnData("flags")
		return value.Str("/" + src.Value.AsString() + "/" + flags.Value.AsString()), nil
	})

	return nil
}

func isGlobalOrSticky(obj *value.Object) bool {
	if dp, ok := obj.GetOwnData("global"); ok && dp.Value.ToBoolean() {
		return true
	}
	if dp, ok := obj.GetOwnData("sticky"); ok && dp.Value.ToBoolean() {
		return true
	}
	return false
}
