package interp

import (
	"math"

	"sandboxjs/pkg/value"
)

// applyBinaryOp implements the arithmetic, relational, equality, bitwise,
// and `instanceof`/`in` operators (ES5 §11.5-§11.10), the common backend
// shared by BinaryExpression and every compound AssignmentExpression.
func (i *Interpreter) applyBinaryOp(op string, left, right value.Value) (value.Value, error) {
	switch op {
	case "+":
		return i.opAdd(left, right)
	case "-":
		return i.numericOp(left, right, func(a, b float64) float64 { return a - b })
	case "*":
		return i.numericOp(left, right, func(a, b float64) float64 { return a * b })
	case "/":
		return i.numericOp(left, right, func(a, b float64) float64 { return a / b })
	case "%":
		return i.numericOp(left, right, math.Mod)
	case "&":
		return i.int32Op(left, right, func(a, b int32) int32 { return a & b })
	case "|":
		return i.int32Op(left, right, func(a, b int32) int32 { return a | b })
	case "^":
		return i.int32Op(left, right, func(a, b int32) int32 { return a ^ b })
	case "<<":
		return i.shiftOp(left, right, func(a int32, s uint32) int32 { return a << s })
	case ">>":
		return i.shiftOp(left, right, func(a int32, s uint32) int32 { return a >> s })
	case ">>>":
		ln, err := i.toNumber(left)
		if err != nil {
			return value.UndefinedValue, err
		}
		rn, err := i.toNumber(right)
		if err != nil {
			return value.UndefinedValue, err
		}
		shift := toUint32(rn) & 0x1f
		return value.Num(float64(toUint32(ln) >> shift)), nil
	case "<":
		return i.relational(left, right, func(c int, ok bool) bool { return ok && c < 0 })
	case ">":
		return i.relational(left, right, func(c int, ok bool) bool { return ok && c > 0 })
	case "<=":
		return i.relational(left, right, func(c int, ok bool) bool { return ok && c <= 0 })
	case ">=":
		return i.relational(left, right, func(c int, ok bool) bool { return ok && c >= 0 })
	case "==":
		return value.Bool(i.abstractEquals(left, right)), nil
	case "!=":
		return value.Bool(!i.abstractEquals(left, right)), nil
	case "===":
		return value.Bool(strictEquals(left, right)), nil
	case "!==":
		return value.Bool(!strictEquals(left, right)), nil
	case "instanceof":
		return i.opInstanceOf(left, right)
	case "in":
		return i.opIn(left, right)
	default:
		return value.UndefinedValue, &guestThrow{v: value.Obj(i.NewError("InternalError", "unknown binary operator "+op))}
	}
}

// opAdd is the one arithmetic operator ES5 overloads for strings (§11.6.1):
// if either operand's primitive value is a string, it concatenates.
func (i *Interpreter) opAdd(left, right value.Value) (value.Value, error) {
	lp := i.toPrimitive(left, "default")
	rp := i.toPrimitive(right, "default")
	if lp.IsString() || rp.IsString() {
		ls, _ := i.toStringValue(lp)
		rs, _ := i.toStringValue(rp)
		return value.Str(ls + rs), nil
	}
	ln, err := i.toNumber(lp)
	if err != nil {
		return value.UndefinedValue, err
	}
	rn, err := i.toNumber(rp)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.Num(ln + rn), nil
}

func (i *Interpreter) numericOp(left, right value.Value, fn func(a, b float64) float64) (value.Value, error) {
	ln, err := i.toNumber(left)
	if err != nil {
		return value.UndefinedValue, err
	}
	rn, err := i.toNumber(right)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.Num(fn(ln, rn)), nil
}

func (i *Interpreter) int32Op(left, right value.Value, fn func(a, b int32) int32) (value.Value, error) {
	ln, err := i.toNumber(left)
	if err != nil {
		return value.UndefinedValue, err
	}
	rn, err := i.toNumber(right)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.Num(float64(fn(toInt32(ln), toInt32(rn)))), nil
}

func (i *Interpreter) shiftOp(left, right value.Value, fn func(a int32, s uint32) int32) (value.Value, error) {
	ln, err := i.toNumber(left)
	if err != nil {
		return value.UndefinedValue, err
	}
	rn, err := i.toNumber(right)
	if err != nil {
		return value.UndefinedValue, err
	}
	shift := toUint32(rn) & 0x1f
	return value.Num(float64(fn(toInt32(ln), shift))), nil
}

// relational implements the abstract relational comparison (ES5 §11.8.5):
// string operands compare lexicographically, otherwise both sides convert
// to Number and NaN makes every comparison false.
func (i *Interpreter) relational(left, right value.Value, pick func(cmp int, ok bool) bool) (value.Value, error) {
	lp := i.toPrimitive(left, "number")
	rp := i.toPrimitive(right, "number")
	if lp.IsString() && rp.IsString() {
		ls, rs := lp.AsString(), rp.AsString()
		switch {
		case ls < rs:
			return value.Bool(pick(-1, true)), nil
		case ls > rs:
			return value.Bool(pick(1, true)), nil
		default:
			return value.Bool(pick(0, true)), nil
		}
	}
	ln, err := i.toNumber(lp)
	if err != nil {
		return value.UndefinedValue, err
	}
	rn, err := i.toNumber(rp)
	if err != nil {
		return value.UndefinedValue, err
	}
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return value.Bool(pick(0, false)), nil
	}
	switch {
	case ln < rn:
		return value.Bool(pick(-1, true)), nil
	case ln > rn:
		return value.Bool(pick(1, true)), nil
	default:
		return value.Bool(pick(0, true)), nil
	}
}

// strictEquals implements the Strict Equality Comparison Algorithm (ES5
// §11.9.6): same type, same value, no coercion, and distinct objects are
// never equal regardless of content.
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

// abstractEquals implements the Abstract Equality Comparison Algorithm
// (ES5 §11.9.3): same-type comparisons defer to strictEquals, and the
// well-known cross-type coercions (null==undefined, number<->string,
// boolean<->number, object<->primitive) are tried in turn.
func (i *Interpreter) abstractEquals(a, b value.Value) bool {
	if a.Kind() == b.Kind() {
		return strictEquals(a, b)
	}
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	if a.IsNullish() || b.IsNullish() {
		return false
	}
	if a.IsNumber() && b.IsString() {
		rn, _ := i.toNumber(b)
		return a.AsNumber() == rn
	}
	if a.IsString() && b.IsNumber() {
		ln, _ := i.toNumber(a)
		return ln == b.AsNumber()
	}
	if a.IsBoolean() {
		ln, _ := i.toNumber(a)
		return i.abstractEquals(value.Num(ln), b)
	}
	if b.IsBoolean() {
		rn, _ := i.toNumber(b)
		return i.abstractEquals(a, value.Num(rn))
	}
	if a.IsObject() && !b.IsObject() {
		return i.abstractEquals(i.toPrimitive(a, "default"), b)
	}
	if !a.IsObject() && b.IsObject() {
		return i.abstractEquals(a, i.toPrimitive(b, "default"))
	}
	return false
}

func (i *Interpreter) opInstanceOf(left, right value.Value) (value.Value, error) {
	if !right.IsObject() || !right.AsObject().IsCallable() {
		return value.UndefinedValue, &guestThrow{v: value.Obj(i.NewError("TypeError", "right-hand side of instanceof is not callable"))}
	}
	if !left.IsObject() {
		return value.Bool(false), nil
	}
	ctor := right.AsObject()
	dp, ok := ctor.GetOwnData("prototype")
	if !ok || !dp.Value.IsObject() {
		return value.Bool(false), nil
	}
	proto := dp.Value.AsObject()
	for cur := left.AsObject().Proto; cur != nil; cur = cur.Proto {
		if cur == proto {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func (i *Interpreter) opIn(left, right value.Value) (value.Value, error) {
	if !right.IsObject() {
		return value.UndefinedValue, &guestThrow{v: value.Obj(i.NewError("TypeError", "cannot use 'in' operator on a non-object"))}
	}
	key, _ := i.toStringValue(left)
	for cur := right.AsObject(); cur != nil; cur = cur.Proto {
		if cur.HasOwn(key) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}
