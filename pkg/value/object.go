package value

// ObjectClass is the short class tag every guest object carries (CORE SPEC
// §3's `class` field): "Object", "Array", "Function", "Error", "Date",
// "RegExp", plus the boxed-primitive tags "String", "Number", "Boolean".
type ObjectClass string

const (
	ClassObject  ObjectClass = "Object"
	ClassArray   ObjectClass = "Array"
	ClassFunction ObjectClass = "Function"
	ClassError   ObjectClass = "Error"
	ClassDate    ObjectClass = "Date"
	ClassRegExp  ObjectClass = "RegExp"
	ClassString  ObjectClass = "String"
	ClassNumber  ObjectClass = "Number"
	ClassBoolean ObjectClass = "Boolean"
	ClassArguments ObjectClass = "Arguments"
)

// FunctionKind distinguishes the callable behaviors an object's `kind`
// slot can carry (CORE SPEC §3: Plain, GuestFn, NativeFn, AsyncFn, EvalFn).
type FunctionKind uint8

const (
	KindPlain FunctionKind = iota
	KindGuestFn
	KindNativeFn
	KindAsyncFn
	KindEvalFn
)

// DataProperty is a data-valued property slot: a Value plus the standard
// [[Writable]]/[[Enumerable]]/[[Configurable]] attribute trio.
type DataProperty struct {
	Value        Value
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// AccessorAttrs holds the shared attributes for a key that is bound to a
// getter and/or setter. A key is an accessor iff it appears in an
// Object's Getters or Setters map (CORE SPEC §3); the attributes that
// would otherwise live beside a DataProperty are kept here instead.
type AccessorAttrs struct {
	Enumerable   bool
	Configurable bool
}

// NativeContext is the capability interface a native function body needs
// from the interpreter: enough to allocate guest objects, call back into
// guest code, and raise guest exceptions, without pkg/value importing
// pkg/interp (which imports pkg/value). pkg/interp's Interpreter type
// implements this interface; this is the Go idiom of the consumer owning
// the interface it depends on.
type NativeContext interface {
	NewObject(proto *Object) *Object
	NewArray(elements ...Value) *Object
	NewError(class, message string) *Object
	Global() *Object
	ObjectPrototype() *Object
	FunctionPrototype() *Object
	ArrayPrototype() *Object
	StringPrototype() *Object
	Call(fn Value, this Value, args []Value) (Value, error)
	Construct(fn Value, args []Value) (Value, error)
	ThrowType(format string, args ...interface{})
	ThrowRange(format string, args ...interface{})
	ThrowReference(format string, args ...interface{})
	ThrowSyntax(format string, args ...interface{})
	ThrowURI(format string, args ...interface{})
	ToStringValue(v Value) (string, error)
	ToNumberValue(v Value) (float64, error)
}

// NativeFunc is the signature of a native function body, run by the
// interpreter's native-call frame (CORE SPEC §4.2). The NativeContext.Throw*
// helpers raise a guest exception by panicking out of the body; any other
// error returned here is turned into a guest Error by the caller. The Value
// result is unused when err != nil.
type NativeFunc func(ctx NativeContext, this Value, args []Value) (Value, error)

// NativeAsyncFunc is the signature of an async native function body (CORE
// SPEC §4.5): it takes an explicit resume callback as opposed to returning
// a value directly, and is expected to arrange for callback to be invoked
// later, possibly from another goroutine, at which point the interpreter
// marshals the resume back onto its single step-loop.
type NativeAsyncFunc func(ctx NativeContext, this Value, args []Value, callback func(Value, error))

// Object is the guest object (CORE SPEC §3).
type Object struct {
	Proto ObjectHandle
	Class ObjectClass

	keys       []string // insertion order, observable by enumeration
	properties map[string]*DataProperty
	Getters    map[string]*Object
	Setters    map[string]*Object
	accessors  map[string]*AccessorAttrs

	Extensible bool
	// Data is the optional internal slot used by Date, RegExp, and boxed
	// primitives (CORE SPEC §3's `data` field).
	Data interface{}

	Kind FunctionKind

	// GuestFn fields (Kind == KindGuestFn).
	FnNode        interface{} // *ast.FunctionLiteral; interface{} to avoid importing pkg/ast's consumer, pkg/interp, from here
	FnParams      []string
	FnRestParam   string
	FnName        string
	FnStrict      bool
	FnParentScope interface{} // *scope.Scope, type-asserted by pkg/interp

	// NativeFn / AsyncFn fields.
	NativeName  string
	NativeArity int
	Native      NativeFunc
	NativeAsync NativeAsyncFunc

	// IllegalConstructor marks a function that throws TypeError when used
	// with `new` (CORE SPEC §3).
	IllegalConstructor bool

	// BoundTarget/BoundThis/BoundArgs implement Function.prototype.bind.
	BoundTarget *Object
	BoundThis   Value
	BoundArgs   []Value
}

// ObjectHandle is a nilable object reference used for the prototype link,
// which CORE SPEC §3 calls out as "may be null" and "not an ownership
// edge". A nil *Object here always means the guest null prototype.
type ObjectHandle = *Object

// NewObject allocates a fresh, extensible, empty plain object with the
// given prototype (nil for a null-prototype object such as a scope bag).
func NewObject(proto *Object) *Object {
	return &Object{
		Proto:      proto,
		Class:      ClassObject,
		properties: make(map[string]*DataProperty),
		Extensible: true,
	}
}

// IsCallable reports whether this object can be used as a call target.
func (o *Object) IsCallable() bool {
	return o.Kind != KindPlain
}

// HasOwn reports whether name is an own property (data or accessor).
func (o *Object) HasOwn(name string) bool {
	if _, ok := o.properties[name]; ok {
		return true
	}
	if _, ok := o.Getters[name]; ok {
		return true
	}
	if _, ok := o.Setters[name]; ok {
		return true
	}
	return false
}

// IsAccessor reports whether name is bound as an accessor on this object.
func (o *Object) IsAccessor(name string) bool {
	if o.Getters != nil {
		if _, ok := o.Getters[name]; ok {
			return true
		}
	}
	if o.Setters != nil {
		if _, ok := o.Setters[name]; ok {
			return true
		}
	}
	return false
}

// GetOwnData returns the own data property named name, if any.
func (o *Object) GetOwnData(name string) (*DataProperty, bool) {
	p, ok := o.properties[name]
	return p, ok
}

// GetOwnAccessor returns the getter and setter function objects bound to
// name (either may be nil) and reports whether name is an accessor at all.
func (o *Object) GetOwnAccessor(name string) (getter, setter *Object, ok bool) {
	if !o.IsAccessor(name) {
		return nil, nil, false
	}
	return o.Getters[name], o.Setters[name], true
}

// AccessorAttributes returns the shared attributes for an accessor key.
func (o *Object) AccessorAttributes(name string) AccessorAttrs {
	if o.accessors != nil {
		if a, ok := o.accessors[name]; ok {
			return *a
		}
	}
	return AccessorAttrs{Enumerable: true, Configurable: true}
}

// removeFromKeys deletes name from the insertion-order slice.
func (o *Object) removeFromKeys(name string) {
	for i, k := range o.keys {
		if k == name {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			return
		}
	}
}

func (o *Object) addToKeys(name string) {
	if !o.hasKeyTracked(name) {
		o.keys = append(o.keys, name)
	}
}

func (o *Object) hasKeyTracked(name string) bool {
	for _, k := range o.keys {
		if k == name {
			return true
		}
	}
	return false
}

// PutData sets (or replaces) name as a data property, clearing any
// accessor previously bound to the same key -- CORE SPEC §8's "switching
// writable<->accessor removes the other" invariant.
func (o *Object) PutData(name string, dp *DataProperty) {
	if o.properties == nil {
		o.properties = make(map[string]*DataProperty)
	}
	if o.IsAccessor(name) {
		delete(o.Getters, name)
		delete(o.Setters, name)
		delete(o.accessors, name)
	}
	if _, existed := o.properties[name]; !existed {
		o.addToKeys(name)
	}
	o.properties[name] = dp
}

// PutAccessor binds a getter and/or setter to name, clearing any data
// property previously stored under the same key. Passing nil for getter
// or setter leaves that half of the pair unset without disturbing the
// other, matching how `Object.defineProperty` allows a single accessor
// half to be defined independently.
func (o *Object) PutAccessor(name string, getter, setter *Object, attrs AccessorAttrs) {
	if _, existed := o.properties[name]; existed {
		delete(o.properties, name)
	} else if !o.hasKeyTracked(name) {
		o.addToKeys(name)
	}
	if o.Getters == nil {
		o.Getters = make(map[string]*Object)
	}
	if o.Setters == nil {
		o.Setters = make(map[string]*Object)
	}
	if o.accessors == nil {
		o.accessors = make(map[string]*AccessorAttrs)
	}
	if getter != nil {
		o.Getters[name] = getter
	}
	if setter != nil {
		o.Setters[name] = setter
	}
	attrsCopy := attrs
	o.accessors[name] = &attrsCopy
}

// DeleteOwn removes name entirely (data or accessor) and reports whether
// the delete succeeded. A non-configurable property is refused outright
// (ES5 §8.12.7 / §11.4.1): it reports false without touching the object,
// the same "delete failed" signal a missing key also produces, leaving
// the strict-mode-throws-TypeError decision to the caller.
func (o *Object) DeleteOwn(name string) bool {
	if dp, ok := o.properties[name]; ok {
		if !dp.Configurable {
			return false
		}
		delete(o.properties, name)
		o.removeFromKeys(name)
		return true
	}
	if o.IsAccessor(name) {
		if attrs, ok := o.accessors[name]; ok && !attrs.Configurable {
			return false
		}
		delete(o.Getters, name)
		delete(o.Setters, name)
		delete(o.accessors, name)
		o.removeFromKeys(name)
		return true
	}
	return false
}

// OwnKeys returns own property keys in insertion order, the order CORE
// SPEC §3 requires enumeration to observe.
func (o *Object) OwnKeys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// OwnEnumerableKeys returns own keys whose attribute (or accessor
// attribute) marks them enumerable, in insertion order.
func (o *Object) OwnEnumerableKeys() []string {
	var out []string
	for _, k := range o.keys {
		if dp, ok := o.properties[k]; ok {
			if dp.Enumerable {
				out = append(out, k)
			}
			continue
		}
		if o.IsAccessor(k) {
			if o.AccessorAttributes(k).Enumerable {
				out = append(out, k)
			}
		}
	}
	return out
}

// PrototypeChain walks Proto links starting at o (not including o),
// returning the finite chain up to (but not including) the null
// prototype. CORE SPEC §3 requires prototype walks to terminate; callers
// that set a prototype are responsible for rejecting cycles at creation
// time, see WouldCreateCycle.
func (o *Object) PrototypeChain() []*Object {
	var chain []*Object
	seen := map[*Object]bool{o: true}
	cur := o.Proto
	for cur != nil {
		if seen[cur] {
			// A cycle slipped past WouldCreateCycle; stop rather than loop
			// forever. This is an internal invariant violation but
			// PrototypeChain has no error channel, so callers that care
			// use WouldCreateCycle instead of relying on this.
			break
		}
		seen[cur] = true
		chain = append(chain, cur)
		cur = cur.Proto
	}
	return chain
}

// WouldCreateCycle reports whether setting o's prototype to candidate
// would introduce a cycle in the prototype graph.
func WouldCreateCycle(o, candidate *Object) bool {
	if o == candidate {
		return true
	}
	cur := candidate
	for cur != nil {
		if cur == o {
			return true
		}
		cur = cur.Proto
	}
	return false
}
