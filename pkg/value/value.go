// Package value implements the guest value model (CORE SPEC §3): the
// tagged union of guest primitives and the guest object, together with the
// primitive (non-method-invoking) coercions that don't require calling
// back into the interpreter. Property access that can trigger a getter or
// a guest toString/valueOf method lives one layer up, in pkg/interp,
// because it needs the ability to call guest code.
//
// The value representation is a plain tagged struct rather than the
// unsafe-pointer/NaN-boxing encoding used by larger, performance-focused
// engines: this interpreter runs untrusted guest code under a sandbox, and
// a struct the Go garbage collector and race detector can see through
// plainly is worth more here than the extra few bytes NaN-boxing saves.
package value

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the primitive tag of a Value.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Number
	String
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null" // typeof null is "object" in the guest language; see TypeOf.
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the sum type described in CORE SPEC §3:
// { Undefined, Null, Bool(b), Num(f64), Str(s), Obj(ObjectHandle) }.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	str     string
	obj     *Object
}

var (
	// UndefinedValue is the sole undefined value.
	UndefinedValue = Value{kind: Undefined}
	// NullValue is the sole null value.
	NullValue = Value{kind: Null}
	// TrueValue and FalseValue are the two boolean values.
	TrueValue  = Value{kind: Boolean, boolean: true}
	FalseValue = Value{kind: Boolean, boolean: false}
	// NaNValue is the guest NaN.
	NaNValue = Value{kind: Number, number: math.NaN()}
)

// Num wraps a float64 as a guest number.
func Num(f float64) Value { return Value{kind: Number, number: f} }

// Str wraps a Go string as a guest string.
func Str(s string) Value { return Value{kind: String, str: s} }

// Bool wraps a Go bool as a guest boolean.
func Bool(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

// Obj wraps an object handle as a guest value. Passing nil panics: nil
// objects are represented as NullValue, never as an ObjectKind Value with
// a nil handle, so callers never have to nil-check after a Kind() check.
func Obj(o *Object) Value {
	if o == nil {
		panic("value.Obj: nil object handle; use NullValue")
	}
	return Value{kind: ObjectKind, obj: o}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == Undefined }
func (v Value) IsNull() bool      { return v.kind == Null }
func (v Value) IsNullish() bool   { return v.kind == Undefined || v.kind == Null }
func (v Value) IsBoolean() bool   { return v.kind == Boolean }
func (v Value) IsNumber() bool    { return v.kind == Number }
func (v Value) IsString() bool    { return v.kind == String }
func (v Value) IsObject() bool    { return v.kind == ObjectKind }

// AsBool, AsNumber, AsString, AsObject panic if the Value is not of the
// matching Kind: callers are expected to check Kind() (or use one of the
// Is* predicates) first, the same contract errors.Fail enforces elsewhere
// in the engine for violated invariants.
func (v Value) AsBool() bool {
	if v.kind != Boolean {
		panic("value.Value.AsBool: not a boolean")
	}
	return v.boolean
}

func (v Value) AsNumber() float64 {
	if v.kind != Number {
		panic("value.Value.AsNumber: not a number")
	}
	return v.number
}

func (v Value) AsString() string {
	if v.kind != String {
		panic("value.Value.AsString: not a string")
	}
	return v.str
}

func (v Value) AsObject() *Object {
	if v.kind != ObjectKind {
		panic("value.Value.AsObject: not an object")
	}
	return v.obj
}

// IsCallable reports whether the value is an object usable as a call
// target (guest function, native function, async function, or eval
// function).
func (v Value) IsCallable() bool {
	return v.kind == ObjectKind && v.obj.IsCallable()
}

// SameReference implements guest object identity: two object values refer
// to the same guest object iff they hold the same handle.
func (v Value) SameReference(other Value) bool {
	return v.kind == ObjectKind && other.kind == ObjectKind && v.obj == other.obj
}

// TypeOf implements the guest `typeof` operator, including the historical
// quirk that typeof null is "object".
func (v Value) TypeOf() string {
	switch v.kind {
	case Undefined:
		return "undefined"
	case Null:
		return "object"
	case Boolean:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case ObjectKind:
		if v.obj.IsCallable() {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

// ToBoolean implements the abstract ToBoolean coercion. It never needs to
// call back into the interpreter: every guest object is truthy regardless
// of its contents.
func (v Value) ToBoolean() bool {
	switch v.kind {
	case Undefined, Null:
		return false
	case Boolean:
		return v.boolean
	case Number:
		return v.number != 0 && !math.IsNaN(v.number)
	case String:
		return v.str != ""
	case ObjectKind:
		return true
	default:
		return false
	}
}

// NumberToString formats a float64 using the guest language's Number-to-
// String conversion (shortest round-tripping decimal, "Infinity"/"-Infinity"/
// "NaN" spelled out, exponential notation outside [1e-6, 1e21)).
func NumberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if f == 0 {
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		return cleanExponent(s)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// cleanExponent normalizes Go's exponent formatting ("1e-07") to the
// guest language's ("1e-7").
func cleanExponent(s string) string {
	idx := strings.IndexAny(s, "eE")
	if idx < 0 {
		return s
	}
	mantissa, exp := s[:idx+1], s[idx+1:]
	sign := "+"
	if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
		sign = string(exp[0])
		exp = exp[1:]
	}
	exp = strings.TrimLeft(exp, "0")
	if exp == "" {
		exp = "0"
	}
	return mantissa + sign + exp
}

// StringToNumber implements the guest String-to-Number conversion used by
// ToNumber on strings: trims whitespace, treats an empty string as 0,
// accepts hex/octal/binary prefixes, and yields NaN for anything else.
func StringToNumber(s string) float64 {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0
	}
	if trimmed == "Infinity" || trimmed == "+Infinity" {
		return math.Inf(1)
	}
	if trimmed == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		if n, err := strconv.ParseUint(trimmed[2:], 16, 64); err == nil {
			return float64(n)
		}
		return math.NaN()
	}
	if strings.HasPrefix(trimmed, "0o") || strings.HasPrefix(trimmed, "0O") {
		if n, err := strconv.ParseUint(trimmed[2:], 8, 64); err == nil {
			return float64(n)
		}
		return math.NaN()
	}
	if strings.HasPrefix(trimmed, "0b") || strings.HasPrefix(trimmed, "0B") {
		if n, err := strconv.ParseUint(trimmed[2:], 2, 64); err == nil {
			return float64(n)
		}
		return math.NaN()
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToArrayIndex reports whether name is a canonical array index string
// ("0", "1", "2", ... but not "01" or "-1") and, if so, its numeric value.
// Used throughout the array invariants in CORE SPEC §3.
func ToArrayIndex(name string) (uint32, bool) {
	if name == "" {
		return 0, false
	}
	if name == "0" {
		return 0, true
	}
	if name[0] < '1' || name[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n >= 1<<32 {
			return 0, false
		}
	}
	return uint32(n), true
}
