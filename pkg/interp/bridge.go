package interp

import (
	"fmt"
	"reflect"
	"time"

	"sandboxjs/pkg/value"
)

// bridge.go implements the host<->guest value bridge (CORE SPEC §4.5,
// §6.2): native_to_pseudo/pseudo_to_native and the two host-function
// registration primitives (create_native_function/create_async_function) a
// host uses to inject its own callables into the guest world.

// NativeRegExp is the host-side mirror of a guest RegExp's internal data,
// the representation NativeToPseudo/PseudoToNative round-trip a regex
// through (CORE SPEC §4.5: "host regular expressions... mirror into guest
// objects with data set").
type NativeRegExp struct {
	Pattern string
	Flags   string
}

// NativeToPseudo converts a host Go value into a guest value (CORE SPEC
// §4.5): primitives pass through, a Go func is wrapped as a native-function
// guest object (via CreateNativeFunction), time.Time and NativeRegExp
// mirror into Date/RegExp objects with Data set, and []interface{}/
// map[string]interface{} deep-copy into guest Array/Object. Cycles in the
// host value are not supported in this direction, matching the spec.
func (i *Interpreter) NativeToPseudo(v interface{}) (value.Value, error) {
	switch hv := v.(type) {
	case nil:
		return value.NullValue, nil
	case value.Value:
		return hv, nil
	case bool:
		return value.Bool(hv), nil
	case string:
		return value.Str(hv), nil
	case float64:
		return value.Num(hv), nil
	case float32:
		return value.Num(float64(hv)), nil
	case int:
		return value.Num(float64(hv)), nil
	case int32:
		return value.Num(float64(hv)), nil
	case int64:
		return value.Num(float64(hv)), nil
	case uint:
		return value.Num(float64(hv)), nil
	case uint32:
		return value.Num(float64(hv)), nil
	case uint64:
		return value.Num(float64(hv)), nil
	case time.Time:
		d := value.NewObject(i.DateProto)
		d.Class = value.ClassDate
		d.Data = float64(hv.UnixMilli())
		return value.Obj(d), nil
	case NativeRegExp:
		return value.Obj(i.newRegExp(hv.Pattern, hv.Flags)), nil
	case []interface{}:
		elems := make([]value.Value, len(hv))
		for idx, el := range hv {
			gv, err := i.NativeToPseudo(el)
			if err != nil {
				return value.UndefinedValue, err
			}
			elems[idx] = gv
		}
		return value.Obj(i.NewArray(elems...)), nil
	case map[string]interface{}:
		obj := value.NewObject(i.ObjectProto)
		for k, el := range hv {
			gv, err := i.NativeToPseudo(el)
			if err != nil {
				return value.UndefinedValue, err
			}
			obj.PutData(k, &value.DataProperty{Value: gv, Writable: true, Enumerable: true, Configurable: true})
		}
		return value.Obj(obj), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		fn, err := i.CreateNativeFunction(v, false)
		if err != nil {
			return value.UndefinedValue, err
		}
		return fn, nil
	}
	return value.UndefinedValue, fmt.Errorf("sandboxjs: native_to_pseudo: unsupported host type %T", v)
}

// PseudoToNative converts a guest value into a host Go value (CORE SPEC
// §4.5): arrays become []interface{}, plain objects become
// map[string]interface{} (own data properties only -- reading an accessor
// would call back into guest code, which this pure structural conversion
// deliberately does not do), dates and regexes round-trip via time.Time/
// NativeRegExp, and cycles are handled with a visited map keyed by object
// identity. Guest functions have no host representation and return an
// error.
func (i *Interpreter) PseudoToNative(v value.Value) (interface{}, error) {
	return i.pseudoToNative(v, map[*value.Object]interface{}{})
}

func (i *Interpreter) pseudoToNative(v value.Value, visited map[*value.Object]interface{}) (interface{}, error) {
	switch v.Kind() {
	case value.Undefined, value.Null:
		return nil, nil
	case value.Boolean:
		return v.AsBool(), nil
	case value.Number:
		return v.AsNumber(), nil
	case value.String:
		return v.AsString(), nil
	case value.ObjectKind:
		obj := v.AsObject()
		if existing, ok := visited[obj]; ok {
			return existing, nil
		}
		switch obj.Class {
		case value.ClassDate:
			ms, _ := obj.Data.(float64)
			return time.UnixMilli(int64(ms)).UTC(), nil
		case value.ClassRegExp:
			rd, _ := obj.Data.(regexpData)
			return NativeRegExp{Pattern: rd.Pattern, Flags: rd.Flags}, nil
		case value.ClassArray:
			n := guestArrayLen(obj)
			out := make([]interface{}, n)
			visited[obj] = out
			for idx := 0; idx < n; idx++ {
				if dp, ok := obj.GetOwnData(indexKey(idx)); ok {
					nv, err := i.pseudoToNative(dp.Value, visited)
					if err != nil {
						return nil, err
					}
					out[idx] = nv
				}
			}
			return out, nil
		case value.ClassFunction:
			return nil, fmt.Errorf("sandboxjs: pseudo_to_native: cannot convert a guest function to a host value")
		default:
			out := make(map[string]interface{})
			visited[obj] = out
			for _, k := range obj.OwnEnumerableKeys() {
				dp, ok := obj.GetOwnData(k)
				if !ok {
					continue // accessor key; skip rather than invoke the getter
				}
				nv, err := i.pseudoToNative(dp.Value, visited)
				if err != nil {
					return nil, err
				}
				out[k] = nv
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("sandboxjs: pseudo_to_native: unreachable value kind %v", v.Kind())
}

func guestArrayLen(arr *value.Object) int {
	dp, ok := arr.GetOwnData("length")
	if !ok {
		return 0
	}
	return int(dp.Value.AsNumber())
}

// ArrayNativeToPseudo builds a guest array from elements, then stamps the
// keys of extra onto it as own enumerable properties alongside the numeric
// indices -- the shallow copy CORE SPEC §4.5 describes preserving a match
// result's non-index properties like `index` and `input`.
func (i *Interpreter) ArrayNativeToPseudo(elements []interface{}, extra map[string]interface{}) (*value.Object, error) {
	vals := make([]value.Value, len(elements))
	for idx, el := range elements {
		gv, err := i.NativeToPseudo(el)
		if err != nil {
			return nil, err
		}
		vals[idx] = gv
	}
	arr := i.NewArray(vals...)
	for k, el := range extra {
		gv, err := i.NativeToPseudo(el)
		if err != nil {
			return nil, err
		}
		arr.PutData(k, &value.DataProperty{Value: gv, Writable: true, Enumerable: true, Configurable: true})
	}
	return arr, nil
}

// ArrayPseudoToNative is ArrayNativeToPseudo's inverse: it returns the
// index-keyed elements as a []interface{} and every other own enumerable
// property as extra, the same "index"/"input"-preserving shallow copy in
// the opposite direction.
func (i *Interpreter) ArrayPseudoToNative(arr *value.Object) (elements []interface{}, extra map[string]interface{}, err error) {
	n := guestArrayLen(arr)
	elements = make([]interface{}, n)
	for idx := 0; idx < n; idx++ {
		if dp, ok := arr.GetOwnData(indexKey(idx)); ok {
			nv, convErr := i.PseudoToNative(dp.Value)
			if convErr != nil {
				return nil, nil, convErr
			}
			elements[idx] = nv
		}
	}
	extra = make(map[string]interface{})
	for _, k := range arr.OwnEnumerableKeys() {
		if _, isIndex := value.ToArrayIndex(k); isIndex || k == "length" {
			continue
		}
		dp, ok := arr.GetOwnData(k)
		if !ok {
			continue
		}
		nv, convErr := i.PseudoToNative(dp.Value)
		if convErr != nil {
			return nil, nil, convErr
		}
		extra[k] = nv
	}
	return elements, extra, nil
}

var (
	valueType     = reflect.TypeOf(value.Value{})
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	callbackType  = reflect.TypeOf((func(interface{}, error))(nil))
)

// CreateNativeFunction wraps a host Go function as a guest native-function
// object (CORE SPEC §6.2). fn must be a func value; its arity is taken from
// its declared (non-variadic-tail, non-trailing-error) parameter count, per
// the spec. Each guest call converts guest arguments to fn's declared
// parameter types (value.Value passes through unconverted; numeric/string/
// bool parameters go through the usual ToNumber/ToString/ToBoolean
// coercions; anything else is routed through PseudoToNative) and converts
// fn's return value back with NativeToPseudo. A trailing `error` return is
// turned into a guest exception when non-nil.
func (i *Interpreter) CreateNativeFunction(fn interface{}, isConstructor bool) (value.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return value.UndefinedValue, fmt.Errorf("sandboxjs: CreateNativeFunction requires a func value, got %T", fn)
	}
	rt := rv.Type()
	arity := rt.NumIn()
	if rt.IsVariadic() {
		arity--
	}

	obj := value.NewObject(i.FunctionProto)
	obj.Class = value.ClassFunction
	obj.Kind = value.KindNativeFn
	obj.NativeArity = arity
	obj.IllegalConstructor = !isConstructor
	obj.Native = func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return i.callReflectedHost(rv, rt, args)
	}
	obj.PutData("length", &value.DataProperty{Value: value.Num(float64(arity))})
	obj.PutData("name", &value.DataProperty{Value: value.Str(""), Configurable: true})
	if isConstructor {
		proto := value.NewObject(i.ObjectProto)
		proto.PutData("constructor", &value.DataProperty{Value: value.Obj(obj), Writable: true, Configurable: true})
		obj.PutData("prototype", &value.DataProperty{Value: value.Obj(proto), Writable: true})
	}
	return value.Obj(obj), nil
}

// CreateAsyncFunction wraps fn, a host function whose last declared
// parameter is a `func(interface{}, error)` resume callback, as a guest
// async-function object (CORE SPEC §4.5). Calling it from guest code sets
// paused_ and returns; invoking the callback later resumes the interpreter
// with the converted result, or raises a guest exception if the callback's
// error is non-nil.
func (i *Interpreter) CreateAsyncFunction(fn interface{}) (value.Value, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return value.UndefinedValue, fmt.Errorf("sandboxjs: CreateAsyncFunction requires a func value, got %T", fn)
	}
	rt := rv.Type()
	if rt.NumIn() == 0 || rt.In(rt.NumIn()-1) != callbackType {
		return value.UndefinedValue, fmt.Errorf("sandboxjs: CreateAsyncFunction: last parameter must be func(interface{}, error)")
	}
	arity := rt.NumIn() - 1

	obj := value.NewObject(i.FunctionProto)
	obj.Class = value.ClassFunction
	obj.Kind = value.KindAsyncFn
	obj.NativeArity = arity
	obj.IllegalConstructor = true
	obj.NativeAsync = func(ctx value.NativeContext, this value.Value, args []value.Value, resume func(value.Value, error)) {
		callIn := make([]reflect.Value, rt.NumIn())
		for idx := 0; idx < arity; idx++ {
			callIn[idx] = i.coerceArg(args, idx, rt.In(idx))
		}
		callIn[arity] = reflect.ValueOf(func(result interface{}, err error) {
			if err != nil {
				resume(value.UndefinedValue, err)
				return
			}
			gv, convErr := i.NativeToPseudo(result)
			if convErr != nil {
				resume(value.UndefinedValue, convErr)
				return
			}
			resume(gv, nil)
		})
		rv.Call(callIn)
	}
	obj.PutData("length", &value.DataProperty{Value: value.Num(float64(arity))})
	return value.Obj(obj), nil
}

// coerceArg converts the guest argument at idx (value.Value{}/Undefined if
// out of range) to paramType, the same rule CreateNativeFunction's
// synchronous path uses.
func (i *Interpreter) coerceArg(args []value.Value, idx int, paramType reflect.Type) reflect.Value {
	var gv value.Value = value.UndefinedValue
	if idx < len(args) {
		gv = args[idx]
	}
	if paramType == valueType {
		return reflect.ValueOf(gv)
	}
	switch paramType.Kind() {
	case reflect.String:
		s, _ := i.toStringValue(gv)
		return reflect.ValueOf(s)
	case reflect.Float64, reflect.Float32:
		n, _ := i.toNumber(gv)
		return reflect.ValueOf(n).Convert(paramType)
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		n, _ := i.toNumber(gv)
		return reflect.ValueOf(n).Convert(paramType)
	case reflect.Bool:
		return reflect.ValueOf(gv.ToBoolean())
	default:
		hv, err := i.PseudoToNative(gv)
		if err != nil || hv == nil {
			return reflect.Zero(paramType)
		}
		hvv := reflect.ValueOf(hv)
		if hvv.Type().AssignableTo(paramType) {
			return hvv
		}
		if hvv.Type().ConvertibleTo(paramType) {
			return hvv.Convert(paramType)
		}
		return reflect.Zero(paramType)
	}
}

// callReflectedHost drives one synchronous call through a
// CreateNativeFunction-wrapped host func: coerce each guest argument to the
// declared parameter type, call, and convert the result(s) back.
func (i *Interpreter) callReflectedHost(rv reflect.Value, rt reflect.Type, args []value.Value) (value.Value, error) {
	n := rt.NumIn()
	fixed := n
	if rt.IsVariadic() {
		fixed = n - 1
	}
	in := make([]reflect.Value, 0, len(args))
	for idx := 0; idx < fixed; idx++ {
		in = append(in, i.coerceArg(args, idx, rt.In(idx)))
	}
	if rt.IsVariadic() {
		elemType := rt.In(fixed).Elem()
		for idx := fixed; idx < len(args); idx++ {
			in = append(in, i.coerceArg(args, idx, elemType))
		}
	}
	out := rv.Call(in)
	return i.hostReturnToPseudo(out)
}

// hostReturnToPseudo interprets a host function's return values per the
// (result), (result, error), or () shapes CreateNativeFunction supports.
func (i *Interpreter) hostReturnToPseudo(out []reflect.Value) (value.Value, error) {
	if len(out) == 0 {
		return value.UndefinedValue, nil
	}
	last := out[len(out)-1]
	if last.Type() == errorType {
		if !last.IsNil() {
			return value.UndefinedValue, last.Interface().(error)
		}
		if len(out) == 1 {
			return value.UndefinedValue, nil
		}
		return i.NativeToPseudo(out[0].Interface())
	}
	return i.NativeToPseudo(out[0].Interface())
}
