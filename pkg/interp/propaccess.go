package interp

import (
	"math"

	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/value"
)

// propertyGetMarker and propertySetMarker are synthetic frame nodes for
// property access (CORE SPEC §4.1). Reads and writes both need to be
// step-granular because either can invoke a guest getter/setter, which is
// itself an arbitrary guest function call; routing both through the same
// call machinery as CallExpression keeps "calling into guest code" a
// single mechanism no matter who triggers it.
type propertyGetMarker struct {
	pos errors.Position
	obj value.Value
	key string
}

func (m *propertyGetMarker) Pos() errors.Position { return m.pos }
func (m *propertyGetMarker) String() string        { return "<get " + m.key + ">" }

func (i *Interpreter) stepPropertyGet(f *frame, n *propertyGetMarker) stepOutcome {
	calling, _ := f.scratch.(bool)
	if calling {
		f.result = i.lastChildResult
		return outcomeDone
	}
	if !n.obj.IsObject() {
		v, err := i.getPrimitiveProperty(n.obj, n.key)
		if err != nil {
			return i.throwValue(f, err.(*guestThrow).v)
		}
		f.result = v
		return outcomeDone
	}
	obj := n.obj.AsObject()
	for cur := obj; cur != nil; cur = cur.Proto {
		if dp, ok := cur.GetOwnData(n.key); ok {
			f.result = dp.Value
			return outcomeDone
		}
		if getter, _, isAcc := cur.GetOwnAccessor(n.key); isAcc {
			if getter == nil {
				f.result = value.UndefinedValue
				return outcomeDone
			}
			f.scratch = true
			if err := i.pushCall(value.Obj(getter), n.obj, nil); err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			return outcomeContinue
		}
	}
	f.result = value.UndefinedValue
	return outcomeDone
}

func (i *Interpreter) getPrimitiveProperty(v value.Value, key string) (value.Value, error) {
	boxed := i.toObjectBoxed(v)
	if key == "length" && v.IsString() {
		return value.Num(float64(len([]rune(v.AsString())))), nil
	}
	for cur := boxed; cur != nil; cur = cur.Proto {
		if dp, ok := cur.GetOwnData(key); ok {
			return dp.Value, nil
		}
	}
	return value.UndefinedValue, nil
}

type propertySetMarker struct {
	pos errors.Position
	obj value.Value
	key string
	val value.Value
	// strict carries the assigning scope's Strict flag (CORE SPEC §4.1):
	// a refused write that would silently no-op in sloppy mode throws
	// TypeError instead when the assignment happens in strict code.
	strict bool
}

func (m *propertySetMarker) Pos() errors.Position { return m.pos }
func (m *propertySetMarker) String() string        { return "<set " + m.key + ">" }

func (i *Interpreter) stepPropertySet(f *frame, n *propertySetMarker) stepOutcome {
	calling, _ := f.scratch.(bool)
	if calling {
		f.result = n.val
		return outcomeDone
	}
	if !n.obj.IsObject() {
		f.result = n.val
		return outcomeDone
	}
	obj := n.obj.AsObject()
	for cur := obj; cur != nil; cur = cur.Proto {
		if _, setter, isAcc := cur.GetOwnAccessor(n.key); isAcc {
			if setter != nil {
				f.scratch = true
				if err := i.pushCall(value.Obj(setter), n.obj, []value.Value{n.val}); err != nil {
					return i.throwValue(f, err.(*guestThrow).v)
				}
				return outcomeContinue
			}
			f.result = n.val
			return outcomeDone
		}
	}
	if !obj.Extensible && !obj.HasOwn(n.key) {
		if n.strict {
			return i.throwError(f, "TypeError", "can't add property %s, object is not extensible", n.key)
		}
		f.result = n.val
		return outcomeDone
	}
	if dp, ok := obj.GetOwnData(n.key); ok {
		if !dp.Writable {
			if n.strict {
				return i.throwError(f, "TypeError", "cannot assign to read only property '%s'", n.key)
			}
			f.result = n.val
			return outcomeDone
		}
		if n.key == "length" && obj.Class == value.ClassArray {
			newLenF, err := i.toNumber(n.val)
			if err != nil {
				return i.throwValue(f, err.(*guestThrow).v)
			}
			if !isValidArrayLength(newLenF) {
				return i.throwError(f, "RangeError", "Invalid array length")
			}
			i.setArrayLength(obj, uint32(newLenF))
			f.result = n.val
			return outcomeDone
		}
		dp.Value = n.val
		f.result = n.val
		return outcomeDone
	}
	obj.PutData(n.key, &value.DataProperty{Value: n.val, Writable: true, Enumerable: true, Configurable: true})
	if idx, isIdx := value.ToArrayIndex(n.key); isIdx && obj.Class == value.ClassArray {
		i.maybeGrowArrayLength(obj, idx)
	}
	f.result = n.val
	return outcomeDone
}

func (i *Interpreter) maybeGrowArrayLength(arr *value.Object, idx uint32) {
	lenDP, ok := arr.GetOwnData("length")
	if !ok {
		return
	}
	cur := lenDP.Value.AsNumber()
	if float64(idx)+1 > cur {
		lenDP.Value = value.Num(float64(idx) + 1)
	}
}

// isValidArrayLength reports whether f is exactly representable as a
// uint32 -- ES5 §15.4.5.1's guard for `arr.length = n`: RangeError when
// ToUint32(n) is not equal to ToNumber(n), which rules out negatives,
// fractions, NaN, and anything past 2^32-1.
func isValidArrayLength(f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return false
	}
	return f == math.Trunc(f) && f <= math.MaxUint32
}

// setArrayLength implements the explicit `arr.length = n` assignment's
// special behavior (ES5 §15.4.5.1): growing just widens the length slot,
// but shrinking deletes every own index at or past the new length.
func (i *Interpreter) setArrayLength(arr *value.Object, newLen uint32) {
	lenDP, ok := arr.GetOwnData("length")
	if !ok {
		return
	}
	oldLen := uint32(lenDP.Value.AsNumber())
	if newLen < oldLen {
		for idx := newLen; idx < oldLen; idx++ {
			arr.DeleteOwn(indexKey(int(idx)))
		}
	}
	lenDP.Value = value.Num(float64(newLen))
}
