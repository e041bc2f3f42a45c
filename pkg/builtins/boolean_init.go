package builtins

import "sandboxjs/pkg/value"

// booleanInitializer installs Boolean.prototype and the Boolean
// constructor (ES5 §15.6).
type booleanInitializer struct{}

func (booleanInitializer) Name() string  { return "Boolean" }
func (booleanInitializer) Priority() int { return PriorityBoolean }

func (booleanInitializer) InitRuntime(host Host) error {
	proto := host.BooleanPrototype()
	proto.Data = value.Bool(false)

	ctor(host, "Boolean", 1, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		b := arg(args, 0).ToBoolean()
		if this.IsObject() && this.AsObject().Proto == proto {
			obj := this.AsObject()
			obj.Class = value.ClassBoolean
			obj.Data = value.Bool(b)
			return value.Obj(obj), nil
		}
		return value.Bool(b), nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if boolThis(this) {
			return value.Str("true"), nil
		}
		return value.Str("false"), nil
	})

	method(proto, "valueOf", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Bool(boolThis(this)), nil
	})

	return nil
}

func boolThis(this value.Value) bool {
	if this.IsObject() {
		if dv, ok := this.AsObject().Data.(value.Value); ok {
			return dv.ToBoolean()
		}
		return true
	}
	return this.ToBoolean()
}
