package interp

import (
	"fmt"
	"math"
	"strings"

	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/value"
)

// toPrimitive implements ToPrimitive (CORE SPEC's conversion rules follow
// ES5 §9.1): boxed primitives unwrap directly, arrays join their elements,
// and anything else becomes a class tag under the "string" hint or NaN
// otherwise. This deliberately does not invoke a guest valueOf/toString --
// doing so would make every arithmetic operator and every `+`/comparison
// step-granular, which the rest of the interpreter is not set up for.
// NativeContext.ToStringValue/ToNumberValue go through this same path, so
// they do not call guest methods either; native code that needs a guest
// override has to look the method up and invoke it via Call.
func (i *Interpreter) toPrimitive(v value.Value, hint string) value.Value {
	if !v.IsObject() {
		return v
	}
	obj := v.AsObject()
	if dv, ok := obj.Data.(value.Value); ok && !dv.IsObject() {
		return dv
	}
	if obj.Class == value.ClassArray {
		return value.Str(i.joinArray(obj, ","))
	}
	if hint == "string" {
		return value.Str(fmt.Sprintf("[object %s]", obj.Class))
	}
	return value.NaNValue
}

func (i *Interpreter) joinArray(arr *value.Object, sep string) string {
	lengthDP, ok := arr.GetOwnData("length")
	if !ok {
		return ""
	}
	n := int(lengthDP.Value.AsNumber())
	parts := make([]string, n)
	for idx := 0; idx < n; idx++ {
		if dp, ok := arr.GetOwnData(indexKey(idx)); ok && !dp.Value.IsNullish() {
			parts[idx] = i.quickToString(dp.Value)
		}
	}
	return strings.Join(parts, sep)
}

// toNumber implements ToNumber (ES5 §9.3).
func (i *Interpreter) toNumber(v value.Value) (float64, error) {
	switch v.Kind() {
	case value.Undefined:
		return math.NaN(), nil
	case value.Null:
		return 0, nil
	case value.Boolean:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case value.Number:
		return v.AsNumber(), nil
	case value.String:
		return value.StringToNumber(v.AsString()), nil
	default:
		return i.toNumber(i.toPrimitive(v, "number"))
	}
}

// toStringValue implements ToString (ES5 §9.8) without invoking a guest
// toString/valueOf, matching toPrimitive's documented simplification.
func (i *Interpreter) toStringValue(v value.Value) (string, error) {
	return i.quickToString(i.toPrimitive(v, "string")), nil
}

// ToStringValue/ToNumberValue implement value.NativeContext for native
// function bodies.
func (i *Interpreter) ToStringValue(v value.Value) (string, error) { return i.toStringValue(v) }
func (i *Interpreter) ToNumberValue(v value.Value) (float64, error) { return i.toNumber(v) }

// toObjectBoxed implements ToObject (ES5 §9.9) for the primitive kinds
// that box into a wrapper object; objects pass through unchanged.
func (i *Interpreter) toObjectBoxed(v value.Value) *value.Object {
	if v.IsObject() {
		return v.AsObject()
	}
	switch v.Kind() {
	case value.String:
		o := value.NewObject(i.StringProto)
		o.Class = value.ClassString
		o.Data = v
		return o
	case value.Number:
		o := value.NewObject(i.NumberProto)
		o.Class = value.ClassNumber
		o.Data = v
		return o
	case value.Boolean:
		o := value.NewObject(i.BooleanProto)
		o.Class = value.ClassBoolean
		o.Data = v
		return o
	default:
		return value.NewObject(i.ObjectProto)
	}
}

// Call and Construct implement value.NativeContext for native builtins
// that need to invoke a guest function synchronously from inside their own
// native body -- Array.prototype.map's callback, a RegExp replace
// function, a JSON.stringify replacer. This is a deliberately narrow
// escape from the rest of the interpreter's step-granular discipline: the
// call is drained to completion on the spot rather than through the
// ordinary pushChild/Step cycle, because a native function body is itself
// one synchronous Go call and has no way to suspend mid-body and resume.
// unwindFloor keeps an uncaught throw from this nested drain from popping
// frames that belong to the *outer* call that is itself in the middle of
// stepping -- see unwindTo.
func (i *Interpreter) Call(fn value.Value, this value.Value, args []value.Value) (value.Value, error) {
	return i.drainCall(fn, this, args, false)
}

func (i *Interpreter) Construct(fn value.Value, args []value.Value) (value.Value, error) {
	return i.drainCall(fn, value.UndefinedValue, args, true)
}

func (i *Interpreter) drainCall(fn value.Value, this value.Value, args []value.Value, isNew bool) (value.Value, error) {
	depth := len(i.stack)
	prevFloor := i.unwindFloor
	i.unwindFloor = depth
	defer func() { i.unwindFloor = prevFloor }()

	var pushErr error
	if isNew {
		pushErr = i.pushConstruct(fn, args)
	} else {
		pushErr = i.pushCall(fn, this, args)
	}
	if pushErr != nil {
		return value.UndefinedValue, pushErr
	}
	i.lastChildCompletion = nil
	for len(i.stack) > depth {
		if i.paused {
			errors.Fail("interp: a native call invoked a guest function that paused; synchronous native-to-guest calls cannot suspend")
		}
		if err := i.Step(); err != nil {
			return value.UndefinedValue, err
		}
		if i.lastChildCompletion != nil && i.lastChildCompletion.Kind == Throw {
			v := i.lastChildCompletion.Value
			i.lastChildCompletion = nil
			return value.UndefinedValue, &guestThrow{v: v}
		}
	}
	return i.lastChildResult, nil
}
