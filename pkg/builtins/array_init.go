package builtins

import (
	"sort"
	"strconv"
	"strings"

	"sandboxjs/pkg/value"
)

// arrayInitializer installs Array.prototype's mutator/accessor/iteration
// methods (ES5 §15.4.4) and the Array constructor.
type arrayInitializer struct{}

func (arrayInitializer) Name() string  { return "Array" }
func (arrayInitializer) Priority() int { return PriorityArray }

func arrLen(obj *value.Object) int {
	dp, ok := obj.GetOwnData("length")
	if !ok {
		return 0
	}
	return int(dp.Value.AsNumber())
}

func arrGet(obj *value.Object, idx int) value.Value {
	if dp, ok := obj.GetOwnData(strconv.Itoa(idx)); ok {
		return dp.Value
	}
	return value.UndefinedValue
}

func arrSet(obj *value.Object, idx int, v value.Value) {
	obj.PutData(strconv.Itoa(idx), &value.DataProperty{Value: v, Writable: true, Enumerable: true, Configurable: true})
}

func arrSetLen(obj *value.Object, n int) {
	obj.PutData("length", &value.DataProperty{Value: value.Num(float64(n)), Writable: true})
}

func (arrayInitializer) InitRuntime(host Host) error {
	proto := host.ArrayPrototype()
	arrSetLen(proto, 0)

	c := ctor(host, "Array", 1, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 1 && args[0].IsNumber() {
			n := int(args[0].AsNumber())
			arr := ctx.NewArray()
			arrSetLen(arr, n)
			return value.Obj(arr), nil
		}
		return value.Obj(ctx.NewArray(args...)), nil
	})

	staticMethod(c, "isArray", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		return value.Bool(v.IsObject() && v.AsObject().Class == value.ClassArray), nil
	})

	method(proto, "push", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		for _, v := range args {
			arrSet(obj, n, v)
			n++
		}
		arrSetLen(obj, n)
		return value.Num(float64(n)), nil
	})

	method(proto, "pop", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		if n == 0 {
			return value.UndefinedValue, nil
		}
		v := arrGet(obj, n-1)
		obj.DeleteOwn(strconv.Itoa(n - 1))
		arrSetLen(obj, n-1)
		return v, nil
	})

	method(proto, "shift", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		if n == 0 {
			return value.UndefinedValue, nil
		}
		first := arrGet(obj, 0)
		for idx := 1; idx < n; idx++ {
			arrSet(obj, idx-1, arrGet(obj, idx))
		}
		obj.DeleteOwn(strconv.Itoa(n - 1))
		arrSetLen(obj, n-1)
		return first, nil
	})

	method(proto, "unshift", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		k := len(args)
		for idx := n - 1; idx >= 0; idx-- {
			arrSet(obj, idx+k, arrGet(obj, idx))
		}
		for idx, v := range args {
			arrSet(obj, idx, v)
		}
		arrSetLen(obj, n+k)
		return value.Num(float64(n + k)), nil
	})

	method(proto, "slice", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		start := normalizeIndex(numArgOr(ctx, args, 0, 0), n)
		end := n
		if len(args) > 1 && !arg(args, 1).IsUndefined() {
			end = normalizeIndex(numArgOr(ctx, args, 1, float64(n)), n)
		}
		var out []value.Value
		for idx := start; idx < end; idx++ {
			out = append(out, arrGet(obj, idx))
		}
		return value.Obj(ctx.NewArray(out...)), nil
	})

	method(proto, "splice", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		start := normalizeIndex(numArgOr(ctx, args, 0, 0), n)
		deleteCount := n - start
		if len(args) > 1 {
			dc := int(numArgOr(ctx, args, 1, float64(deleteCount)))
			if dc < 0 {
				dc = 0
			}
			if dc > n-start {
				dc = n - start
			}
			deleteCount = dc
		}
		removed := make([]value.Value, deleteCount)
		for idx := 0; idx < deleteCount; idx++ {
			removed[idx] = arrGet(obj, start+idx)
		}
		var inserts []value.Value
		if len(args) > 2 {
			inserts = args[2:]
		}
		tail := make([]value.Value, 0, n-start-deleteCount)
		for idx := start + deleteCount; idx < n; idx++ {
			tail = append(tail, arrGet(obj, idx))
		}
		idx := start
		for _, v := range inserts {
			arrSet(obj, idx, v)
			idx++
		}
		for _, v := range tail {
			arrSet(obj, idx, v)
			idx++
		}
		newLen := idx
		for old := newLen; old < n; old++ {
			obj.DeleteOwn(strconv.Itoa(old))
		}
		arrSetLen(obj, newLen)
		return value.Obj(ctx.NewArray(removed...)), nil
	})

	method(proto, "concat", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		var out []value.Value
		out = append(out, arrayElements(this.AsObject())...)
		for _, a := range args {
			if a.IsObject() && a.AsObject().Class == value.ClassArray {
				out = append(out, arrayElements(a.AsObject())...)
			} else {
				out = append(out, a)
			}
		}
		return value.Obj(ctx.NewArray(out...)), nil
	})

	method(proto, "join", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		sep := ","
		if len(args) > 0 && !args[0].IsUndefined() {
			sep, _ = ctx.ToStringValue(args[0])
		}
		obj := this.AsObject()
		n := arrLen(obj)
		parts := make([]string, n)
		for idx := 0; idx < n; idx++ {
			v := arrGet(obj, idx)
			if !v.IsNullish() {
				parts[idx], _ = ctx.ToStringValue(v)
			}
		}
		return value.Str(strings.Join(parts, sep)), nil
	})

	method(proto, "reverse", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			vi, vj := arrGet(obj, i), arrGet(obj, j)
			arrSet(obj, i, vj)
			arrSet(obj, j, vi)
		}
		return this, nil
	})

	method(proto, "indexOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		target := arg(args, 0)
		start := 0
		if len(args) > 1 {
			start = normalizeIndex(numArgOr(ctx, args, 1, 0), n)
		}
		for idx := start; idx < n; idx++ {
			if strictEquals(arrGet(obj, idx), target) {
				return value.Num(float64(idx)), nil
			}
		}
		return value.Num(-1), nil
	})

	method(proto, "lastIndexOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		target := arg(args, 0)
		for idx := n - 1; idx >= 0; idx-- {
			if strictEquals(arrGet(obj, idx), target) {
				return value.Num(float64(idx)), nil
			}
		}
		return value.Num(-1), nil
	})

	method(proto, "includes", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		target := arg(args, 0)
		for idx := 0; idx < n; idx++ {
			if strictEquals(arrGet(obj, idx), target) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	method(proto, "forEach", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		for idx := 0; idx < n; idx++ {
			if _, err := ctx.Call(cb, cbThis, []value.Value{arrGet(obj, idx), value.Num(float64(idx)), this}); err != nil {
				return value.UndefinedValue, err
			}
		}
		return value.UndefinedValue, nil
	})

	method(proto, "map", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		out := make([]value.Value, n)
		for idx := 0; idx < n; idx++ {
			r, err := ctx.Call(cb, cbThis, []value.Value{arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			out[idx] = r
		}
		return value.Obj(ctx.NewArray(out...)), nil
	})

	method(proto, "filter", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		var out []value.Value
		for idx := 0; idx < n; idx++ {
			v := arrGet(obj, idx)
			r, err := ctx.Call(cb, cbThis, []value.Value{v, value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				out = append(out, v)
			}
		}
		return value.Obj(ctx.NewArray(out...)), nil
	})

	method(proto, "some", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		for idx := 0; idx < n; idx++ {
			r, err := ctx.Call(cb, cbThis, []value.Value{arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	method(proto, "every", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		for idx := 0; idx < n; idx++ {
			r, err := ctx.Call(cb, cbThis, []value.Value{arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			if !r.ToBoolean() {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	method(proto, "find", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		for idx := 0; idx < n; idx++ {
			v := arrGet(obj, idx)
			r, err := ctx.Call(cb, cbThis, []value.Value{v, value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				return v, nil
			}
		}
		return value.UndefinedValue, nil
	})

	method(proto, "findIndex", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		cbThis := arg(args, 1)
		obj := this.AsObject()
		n := arrLen(obj)
		for idx := 0; idx < n; idx++ {
			r, err := ctx.Call(cb, cbThis, []value.Value{arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			if r.ToBoolean() {
				return value.Num(float64(idx)), nil
			}
		}
		return value.Num(-1), nil
	})

	method(proto, "reduce", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		obj := this.AsObject()
		n := arrLen(obj)
		idx := 0
		var acc value.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if n == 0 {
				ctx.ThrowType("Reduce of empty array with no initial value")
				return value.UndefinedValue, nil
			}
			acc = arrGet(obj, 0)
			idx = 1
		}
		for ; idx < n; idx++ {
			r, err := ctx.Call(cb, value.UndefinedValue, []value.Value{acc, arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			acc = r
		}
		return acc, nil
	})

	method(proto, "reduceRight", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		cb := arg(args, 0)
		obj := this.AsObject()
		n := arrLen(obj)
		idx := n - 1
		var acc value.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if n == 0 {
				ctx.ThrowType("Reduce of empty array with no initial value")
				return value.UndefinedValue, nil
			}
			acc = arrGet(obj, n-1)
			idx = n - 2
		}
		for ; idx >= 0; idx-- {
			r, err := ctx.Call(cb, value.UndefinedValue, []value.Value{acc, arrGet(obj, idx), value.Num(float64(idx)), this})
			if err != nil {
				return value.UndefinedValue, err
			}
			acc = r
		}
		return acc, nil
	})

	method(proto, "sort", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := this.AsObject()
		n := arrLen(obj)
		elems := make([]value.Value, n)
		for idx := 0; idx < n; idx++ {
			elems[idx] = arrGet(obj, idx)
		}
		cmp := arg(args, 0)
		var callErr error
		sort.SliceStable(elems, func(a, b int) bool {
			if callErr != nil {
				return false
			}
			av, bv := elems[a], elems[b]
			if av.IsUndefined() {
				return false
			}
			if bv.IsUndefined() {
				return true
			}
			if cmp.IsCallable() {
				r, err := ctx.Call(cmp, value.UndefinedValue, []value.Value{av, bv})
				if err != nil {
					callErr = err
					return false
				}
				n, _ := ctx.ToNumberValue(r)
				return n < 0
			}
			as, _ := ctx.ToStringValue(av)
			bs, _ := ctx.ToStringValue(bv)
			return as < bs
		})
		if callErr != nil {
			return value.UndefinedValue, callErr
		}
		for idx, v := range elems {
			arrSet(obj, idx, v)
		}
		return this, nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return ctx.Call(mustGet(ctx, this, "join"), this, []value.Value{value.Str(",")})
	})

	return nil
}

func numArgOr(ctx value.NativeContext, args []value.Value, idx int, def float64) float64 {
	if idx >= len(args) {
		return def
	}
	n, _ := ctx.ToNumberValue(args[idx])
	return n
}

// normalizeIndex implements the common "relative index" rule ES5 uses for
// slice/splice/indexOf's fromIndex: negative counts back from the end,
// clamped into [0, length].
func normalizeIndex(n float64, length int) int {
	idx := int(n)
	if idx < 0 {
		idx += length
	}
	if idx < 0 {
		idx = 0
	}
	if idx > length {
		idx = length
	}
	return idx
}
