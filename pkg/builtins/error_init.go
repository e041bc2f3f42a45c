package builtins

import "sandboxjs/pkg/value"

// errorInitializer installs Error.prototype and constructor, plus the
// six standard subclasses (TypeError, RangeError, ReferenceError,
// SyntaxError, URIError, EvalError -- ES5 §15.11), each sharing Error.prototype's
// toString but with its own prototype object and "name".
type errorInitializer struct{}

func (errorInitializer) Name() string  { return "Error" }
func (errorInitializer) Priority() int { return PriorityError }

func (errorInitializer) InitRuntime(host Host) error {
	proto := host.ErrorPrototype()
	proto.PutData("name", &value.DataProperty{Value: value.Str("Error"), Writable: true, Configurable: true})
	proto.PutData("message", &value.DataProperty{Value: value.Str(""), Writable: true, Configurable: true})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		name := "Error"
		msg := ""
		if this.IsObject() {
			if dp, ok := this.AsObject().GetOwnData("name"); ok {
				name, _ = ctx.ToStringValue(dp.Value)
			}
			if dp, ok := this.AsObject().GetOwnData("message"); ok {
				msg, _ = ctx.ToStringValue(dp.Value)
			}
		}
		if msg == "" {
			return value.Str(name), nil
		}
		return value.Str(name + ": " + msg), nil
	})

	ctor(host, "Error", 1, proto, errorConstructorBody("Error", proto))

	for _, name := range []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"} {
		subProto := value.NewObject(proto)
		subProto.Class = value.ClassError
		subProto.PutData("name", &value.DataProperty{Value: value.Str(name), Writable: true, Configurable: true})
		ctor(host, name, 1, subProto, errorConstructorBody(name, subProto))
	}

	return nil
}

// errorConstructorBody builds a constructor closure shared by Error and
// every subclass: allocate (or reuse, when called as `new`) an instance
// whose prototype is proto, and set `message` from the first argument.
func errorConstructorBody(name string, proto *value.Object) value.NativeFunc {
	return func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		var obj *value.Object
		if this.IsObject() && this.AsObject().Proto == proto {
			obj = this.AsObject()
		} else {
			obj = ctx.NewObject(proto)
		}
		obj.Class = value.ClassError
		if len(args) > 0 && !args[0].IsUndefined() {
			msg, _ := ctx.ToStringValue(args[0])
			obj.PutData("message", &value.DataProperty{Value: value.Str(msg), Writable: true, Configurable: true})
		}
		return value.Obj(obj), nil
	}
}
