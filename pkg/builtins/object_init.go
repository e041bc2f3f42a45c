package builtins

import "sandboxjs/pkg/value"

// objectInitializer installs Object.prototype's methods and the Object
// constructor with its ES5 static reflection methods (§15.2).
type objectInitializer struct{}

func (objectInitializer) Name() string     { return "Object" }
func (objectInitializer) Priority() int    { return PriorityObject }

func (objectInitializer) InitRuntime(host Host) error {
	proto := host.ObjectPrototype()

	method(proto, "hasOwnProperty", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		key, _ := ctx.ToStringValue(arg(args, 0))
		if !this.IsObject() {
			return value.Bool(false), nil
		}
		return value.Bool(this.AsObject().HasOwn(key)), nil
	})

	method(proto, "isPrototypeOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() || !this.IsObject() {
			return value.Bool(false), nil
		}
		self := this.AsObject()
		for cur := v.AsObject().Proto; cur != nil; cur = cur.Proto {
			if cur == self {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})

	method(proto, "propertyIsEnumerable", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		key, _ := ctx.ToStringValue(arg(args, 0))
		if !this.IsObject() {
			return value.Bool(false), nil
		}
		obj := this.AsObject()
		if dp, ok := obj.GetOwnData(key); ok {
			return value.Bool(dp.Enumerable), nil
		}
		if obj.IsAccessor(key) {
			return value.Bool(obj.AccessorAttributes(key).Enumerable), nil
		}
		return value.Bool(false), nil
	})

	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if !this.IsObject() {
			return value.Str("[object " + this.TypeOf() + "]"), nil
		}
		return value.Str("[object " + string(this.AsObject().Class) + "]"), nil
	})

	method(proto, "toLocaleString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return ctx.Call(mustGet(ctx, this, "toString"), this, nil)
	})

	method(proto, "valueOf", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return this, nil
	})

	c := ctor(host, "Object", 1, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsNullish() {
			return value.Obj(ctx.NewObject(proto)), nil
		}
		if v.IsObject() {
			return v, nil
		}
		return value.Obj(boxPrimitive(ctx, v)), nil
	})

	staticMethod(c, "keys", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.keys called on non-object")
			return value.UndefinedValue, nil
		}
		keys := v.AsObject().OwnEnumerableKeys()
		elems := make([]value.Value, len(keys))
		for idx, k := range keys {
			elems[idx] = value.Str(k)
		}
		return value.Obj(ctx.NewArray(elems...)), nil
	})

	staticMethod(c, "getOwnPropertyNames", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.getOwnPropertyNames called on non-object")
			return value.UndefinedValue, nil
		}
		keys := v.AsObject().OwnKeys()
		elems := make([]value.Value, len(keys))
		for idx, k := range keys {
			elems[idx] = value.Str(k)
		}
		return value.Obj(ctx.NewArray(elems...)), nil
	})

	staticMethod(c, "create", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		protoArg := arg(args, 0)
		var p *value.Object
		if protoArg.IsObject() {
			p = protoArg.AsObject()
		} else if !protoArg.IsNull() {
			ctx.ThrowType("Object.create proto argument must be an object or null")
			return value.UndefinedValue, nil
		}
		o := ctx.NewObject(p)
		if props := arg(args, 1); props.IsObject() {
			for _, k := range props.AsObject().OwnEnumerableKeys() {
				desc, _ := props.AsObject().GetOwnData(k)
				defineFromDescriptor(ctx, o, k, desc.Value)
			}
		}
		return value.Obj(o), nil
	})

	staticMethod(c, "getPrototypeOf", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.getPrototypeOf called on non-object")
			return value.UndefinedValue, nil
		}
		if v.AsObject().Proto == nil {
			return value.NullValue, nil
		}
		return value.Obj(v.AsObject().Proto), nil
	})

	staticMethod(c, "setPrototypeOf", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.setPrototypeOf called on non-object")
			return value.UndefinedValue, nil
		}
		p := arg(args, 1)
		obj := v.AsObject()
		if p.IsNull() {
			obj.Proto = nil
		} else if p.IsObject() {
			if value.WouldCreateCycle(obj, p.AsObject()) {
				ctx.ThrowType("cyclic prototype value")
				return value.UndefinedValue, nil
			}
			obj.Proto = p.AsObject()
		}
		return v, nil
	})

	staticMethod(c, "defineProperty", 3, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.defineProperty called on non-object")
			return value.UndefinedValue, nil
		}
		key, _ := ctx.ToStringValue(arg(args, 1))
		defineFromDescriptor(ctx, v.AsObject(), key, arg(args, 2))
		return v, nil
	})

	staticMethod(c, "defineProperties", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			ctx.ThrowType("Object.defineProperties called on non-object")
			return value.UndefinedValue, nil
		}
		props := arg(args, 1)
		if props.IsObject() {
			for _, k := range props.AsObject().OwnEnumerableKeys() {
				desc, _ := props.AsObject().GetOwnData(k)
				defineFromDescriptor(ctx, v.AsObject(), k, desc.Value)
			}
		}
		return v, nil
	})

	staticMethod(c, "freeze", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			obj := v.AsObject()
			obj.Extensible = false
			for _, k := range obj.OwnKeys() {
				if dp, ok := obj.GetOwnData(k); ok {
					dp.Writable = false
					dp.Configurable = false
				}
			}
		}
		return v, nil
	})

	staticMethod(c, "isFrozen", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return value.Bool(true), nil
		}
		obj := v.AsObject()
		if obj.Extensible {
			return value.Bool(false), nil
		}
		for _, k := range obj.OwnKeys() {
			if dp, ok := obj.GetOwnData(k); ok && (dp.Writable || dp.Configurable) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})

	staticMethod(c, "preventExtensions", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if v.IsObject() {
			v.AsObject().Extensible = false
		}
		return v, nil
	})

	staticMethod(c, "isExtensible", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		v := arg(args, 0)
		if !v.IsObject() {
			return value.Bool(false), nil
		}
		return value.Bool(v.AsObject().Extensible), nil
	})

	return nil
}

// defineFromDescriptor implements the relevant part of the abstract
// FromPropertyDescriptor / DefineOwnProperty pair (ES5 §8.10): enough to
// honor value/writable/enumerable/configurable/get/set from a guest
// descriptor object, without the full partial-descriptor merge semantics.
func defineFromDescriptor(ctx value.NativeContext, obj *value.Object, key string, descriptor value.Value) {
	if !descriptor.IsObject() {
		return
	}
	desc := descriptor.AsObject()
	getDP, hasGet := desc.GetOwnData("get")
	setDP, hasSet := desc.GetOwnData("set")
	if hasGet || hasSet {
		attrs := value.AccessorAttrs{
			Enumerable:   boolDescField(desc, "enumerable"),
			Configurable: boolDescField(desc, "configurable"),
		}
		var getter, setter *value.Object
		if hasGet && getDP.Value.IsObject() {
			getter = getDP.Value.AsObject()
		}
		if hasSet && setDP.Value.IsObject() {
			setter = setDP.Value.AsObject()
		}
		obj.PutAccessor(key, getter, setter, attrs)
		return
	}
	v := value.UndefinedValue
	if dp, ok := desc.GetOwnData("value"); ok {
		v = dp.Value
	}
	obj.PutData(key, &value.DataProperty{
		Value:        v,
		Writable:     boolDescField(desc, "writable"),
		Enumerable:   boolDescField(desc, "enumerable"),
		Configurable: boolDescField(desc, "configurable"),
	})
}

func boolDescField(desc *value.Object, name string) bool {
	dp, ok := desc.GetOwnData(name)
	return ok && dp.Value.ToBoolean()
}

// boxPrimitive wraps a non-object, non-nullish value the way `Object(v)`
// requires; pkg/interp's own toObjectBoxed does the identical wrapping for
// ToObject, but that method is unexported, so the constructor body builds
// the wrapper directly from ctx's NewObject plus the class-specific
// prototype the Host interface exposes.
func boxPrimitive(ctx value.NativeContext, v value.Value) *value.Object {
	host, _ := ctx.(Host)
	var proto *value.Object
	var class value.ObjectClass
	switch {
	case v.IsString():
		proto, class = ctx.StringPrototype(), value.ClassString
	case v.IsNumber():
		if host != nil {
			proto = host.NumberPrototype()
		}
		class = value.ClassNumber
	case v.IsBoolean():
		if host != nil {
			proto = host.BooleanPrototype()
		}
		class = value.ClassBoolean
	default:
		proto, class = ctx.ObjectPrototype(), value.ClassObject
	}
	o := ctx.NewObject(proto)
	o.Class = class
	o.Data = v
	return o
}

// mustGet reads an own-or-inherited data property off this by key,
// falling back to undefined; used by toLocaleString's "delegate to
// toString" default, where a missing/overridden toString should never
// itself be a host-level error.
func mustGet(ctx value.NativeContext, this value.Value, key string) value.Value {
	if !this.IsObject() {
		return value.UndefinedValue
	}
	for cur := this.AsObject(); cur != nil; cur = cur.Proto {
		if dp, ok := cur.GetOwnData(key); ok {
			return dp.Value
		}
	}
	return value.UndefinedValue
}
