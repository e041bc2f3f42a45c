package builtins

import (
	"strconv"

	"sandboxjs/pkg/value"
)

// functionInitializer installs Function.prototype's call/apply/bind and
// toString (ES5 §15.3.4).
type functionInitializer struct{}

func (functionInitializer) Name() string  { return "Function" }
func (functionInitializer) Priority() int { return PriorityFunction }

func (functionInitializer) InitRuntime(host Host) error {
	proto := host.FunctionPrototype()

	method(proto, "call", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsCallable() {
			ctx.ThrowType("value is not a function")
			return value.UndefinedValue, nil
		}
		var rest []value.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return ctx.Call(this, arg(args, 0), rest)
	})

	method(proto, "apply", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsCallable() {
			ctx.ThrowType("value is not a function")
			return value.UndefinedValue, nil
		}
		var list []value.Value
		if arr := arg(args, 1); arr.IsObject() {
			list = arrayElements(arr.AsObject())
		}
		return ctx.Call(this, arg(args, 0), list)
	})

	method(proto, "bind", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsCallable() {
			ctx.ThrowType("value is not a function")
			return value.UndefinedValue, nil
		}
		target := this.AsObject()
		boundThis := arg(args, 0)
		var boundArgs []value.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		name := "bound " + target.NativeName
		if target.Kind == value.KindGuestFn {
			name = "bound " + target.FnName
		}
		bound := newNativeFnOn(ctx.FunctionPrototype(), name, 0, nil)
		bound.BoundTarget = target
		bound.BoundThis = boundThis
		bound.BoundArgs = boundArgs
		return value.Obj(bound), nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsObject() || !this.AsObject().IsCallable() {
			return value.Str("function () { }"), nil
		}
		fn := this.AsObject()
		name := fn.NativeName
		if fn.Kind == value.KindGuestFn {
			name = fn.FnName
		}
		if fn.BoundTarget != nil {
			return value.Str("function () { [native code] }"), nil
		}
		if fn.Kind == value.KindGuestFn {
			return value.Str("function " + name + "() { [guest code] }"), nil
		}
		return value.Str("function " + name + "() { [native code] }"), nil
	})

	// Function.prototype itself is callable and returns undefined (ES5
	// §15.3.4); pkg/interp.bootstrapPrototypes already sets that Native body.

	return nil
}

// arrayElements reads an array-like object's indexed own properties 0..length-1
// into a plain slice, the shape both Function.prototype.apply and
// Array.prototype's variadic methods need when accepting an arguments
// object or guest array interchangeably.
func arrayElements(obj *value.Object) []value.Value {
	lenDP, ok := obj.GetOwnData("length")
	if !ok {
		return nil
	}
	n := int(lenDP.Value.AsNumber())
	out := make([]value.Value, n)
	for idx := 0; idx < n; idx++ {
		if dp, ok := obj.GetOwnData(strconv.Itoa(idx)); ok {
			out[idx] = dp.Value
		} else {
			out[idx] = value.UndefinedValue
		}
	}
	return out
}
