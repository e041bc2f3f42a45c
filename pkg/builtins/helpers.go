package builtins

import "sandboxjs/pkg/value"

// method defines a non-enumerable native method on proto, the attribute
// combination every built-in prototype method gets (ES5 §15: built-ins are
// writable/configurable but never enumerable, so a `for...in` over a guest
// object doesn't walk into the library).
func method(proto *value.Object, name string, arity int, fn value.NativeFunc) {
	proto.PutData(name, &value.DataProperty{
		Value:        value.Obj(newNativeFn(name, arity, fn)),
		Writable:     true,
		Enumerable:   false,
		Configurable: true,
	})
}

// newNativeFn builds the bare function object a native method or
// constructor is represented as; its own prototype is FunctionProto-less
// here because helpers are called before FunctionInitializer has wired
// FunctionProto's own methods on -- callers that need the real chain use
// newNativeFnOn instead.
func newNativeFn(name string, arity int, fn value.NativeFunc) *value.Object {
	o := &value.Object{Class: value.ClassFunction, Kind: value.KindNativeFn, Extensible: true}
	o.NativeName = name
	o.NativeArity = arity
	o.Native = fn
	return o
}

// newNativeFnOn is newNativeFn with an explicit prototype link, used once
// FunctionPrototype exists so every native function is a proper Function
// instance (`typeof` and `instanceof Function` both still come from Kind/
// IsCallable, but the prototype chain matters for Function.prototype.call
// et al. being reachable).
func newNativeFnOn(proto *value.Object, name string, arity int, fn value.NativeFunc) *value.Object {
	o := newNativeFn(name, arity, fn)
	o.Proto = proto
	return o
}

// ctor defines a global constructor function object with a `prototype`
// own data property pointing at proto, and proto's own `constructor`
// pointing back -- the standard two-way link every built-in prototype
// carries (ES5 §15.2.4-15.11).
func ctor(host Host, name string, arity int, proto *value.Object, fn value.NativeFunc) *value.Object {
	c := newNativeFnOn(host.FunctionPrototype(), name, arity, fn)
	c.PutData("prototype", &value.DataProperty{Value: value.Obj(proto), Writable: false, Configurable: false})
	proto.PutData("constructor", &value.DataProperty{Value: value.Obj(c), Writable: true, Configurable: true})
	host.Global().PutData(name, &value.DataProperty{Value: value.Obj(c), Writable: true, Configurable: true})
	return c
}

// staticMethod defines a non-enumerable native method directly on a
// constructor object (Object.keys, Array.isArray, Math's free functions
// reuse the same attribute convention via method on a plain namespace
// object).
func staticMethod(fnObj *value.Object, name string, arity int, fn value.NativeFunc) {
	method(fnObj, name, arity, fn)
}

// arg returns args[idx], or undefined if the call didn't supply it --
// every native method's standard way of tolerating a short argument list
// the way ES5 requires (missing arguments coerce to undefined, never a
// host-level error).
func arg(args []value.Value, idx int) value.Value {
	if idx < len(args) {
		return args[idx]
	}
	return value.UndefinedValue
}

func numArg(host Host, args []value.Value, idx int) float64 {
	n, _ := host.ToNumberValue(arg(args, idx))
	return n
}

func strArg(host Host, args []value.Value, idx int) string {
	s, _ := host.ToStringValue(arg(args, idx))
	return s
}

// strictEquals mirrors pkg/interp's unexported operator of the same name
// (ES5 §11.9.6), needed here for Array.prototype.indexOf/includes/
// lastIndexOf, which compare without coercion.
func strictEquals(a, b value.Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case value.Undefined, value.Null:
		return true
	case value.Boolean:
		return a.AsBool() == b.AsBool()
	case value.Number:
		return a.AsNumber() == b.AsNumber()
	case value.String:
		return a.AsString() == b.AsString()
	default:
		return a.SameReference(b)
	}
}
