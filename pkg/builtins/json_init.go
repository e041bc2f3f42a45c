package builtins

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"sandboxjs/pkg/value"
)

// jsonInitializer installs the JSON namespace object (ES5 §15.12):
// parse decodes through encoding/json's streaming Decoder (UseNumber, so
// precision survives the json.Number -> float64 step the same way the
// guest's own Number type would lose it); stringify walks the guest
// value graph by hand since there's no way to hand an arbitrary guest
// object to encoding/json's reflection-based Marshal.
type jsonInitializer struct{}

func (jsonInitializer) Name() string  { return "JSON" }
func (jsonInitializer) Priority() int { return PriorityJSON }

func (jsonInitializer) InitRuntime(host Host) error {
	obj := host.NewObject(host.ObjectPrototype())

	method(obj, "parse", 2, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		text := strArg(host, args, 0)
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		v, err := decodeJSONValue(host, dec)
		if err != nil {
			ctx.ThrowSyntax("%s", err.Error())
			return value.UndefinedValue, nil
		}
		if dec.More() {
			ctx.ThrowSyntax("Unexpected non-whitespace character after JSON")
			return value.UndefinedValue, nil
		}
		return v, nil
	})

	method(obj, "stringify", 3, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.UndefinedValue, nil
		}
		v := args[0]

		var replacerFn value.Value
		var propertyList []string
		if len(args) > 1 && args[1].IsObject() && args[1].AsObject().IsCallable() {
			replacerFn = args[1]
		} else if len(args) > 1 && args[1].IsObject() && args[1].AsObject().Class == value.ClassArray {
			arr := args[1].AsObject()
			seen := map[string]bool{}
			for i := 0; i < arrLen(arr); i++ {
				s, _ := ctx.ToStringValue(arrGet(arr, i))
				if !seen[s] {
					seen[s] = true
					propertyList = append(propertyList, s)
				}
			}
		}

		gap := ""
		if len(args) > 2 {
			switch sp := args[2]; {
			case sp.IsNumber():
				n := int(sp.AsNumber())
				if n > 10 {
					n = 10
				}
				if n > 0 {
					gap = strings.Repeat(" ", n)
				}
			case sp.IsString():
				s := sp.AsString()
				if len(s) > 10 {
					s = s[:10]
				}
				gap = s
			}
		}

		visited := map[*value.Object]bool{}
		out, included, err := jsonStringify(ctx, v, visited, gap, "", "", value.UndefinedValue, replacerFn, propertyList)
		if err != nil {
			return value.UndefinedValue, err
		}
		if !included {
			return value.UndefinedValue, nil
		}
		return value.Str(out), nil
	})

	host.Global().PutData("JSON", &value.DataProperty{Value: value.Obj(obj), Writable: true, Configurable: true})
	return nil
}

func decodeJSONValue(host Host, dec *json.Decoder) (value.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return value.UndefinedValue, err
	}
	switch t := tok.(type) {
	case nil:
		return value.NullValue, nil
	case bool:
		return value.Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return value.UndefinedValue, err
		}
		return value.Num(f), nil
	case string:
		return value.Str(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := host.NewObject(host.ObjectPrototype())
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return value.UndefinedValue, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return value.UndefinedValue, fmt.Errorf("expected string key in JSON object")
				}
				v, err := decodeJSONValue(host, dec)
				if err != nil {
					return value.UndefinedValue, err
				}
				obj.PutData(key, &value.DataProperty{Value: v, Writable: true, Enumerable: true, Configurable: true})
			}
			if _, err := dec.Token(); err != nil {
				return value.UndefinedValue, err
			}
			return value.Obj(obj), nil
		case '[':
			var elements []value.Value
			for dec.More() {
				el, err := decodeJSONValue(host, dec)
				if err != nil {
					return value.UndefinedValue, err
				}
				elements = append(elements, el)
			}
			if _, err := dec.Token(); err != nil {
				return value.UndefinedValue, err
			}
			return value.Obj(host.NewArray(elements...)), nil
		}
	}
	return value.UndefinedValue, fmt.Errorf("unexpected JSON token")
}

// jsonGetProp walks the prototype chain for key, invoking an accessor
// getter if one is installed rather than just reading a data slot --
// stringify needs this to pick up a computed toJSON or a getter-backed
// property the same way ordinary property access would.
func jsonGetProp(ctx value.NativeContext, obj *value.Object, key string) (value.Value, error) {
	for cur := obj; cur != nil; cur = cur.Proto {
		if dp, ok := cur.GetOwnData(key); ok {
			return dp.Value, nil
		}
		if getter, ok := cur.Getters[key]; ok {
			return ctx.Call(value.Obj(getter), value.Obj(obj), nil)
		}
	}
	return value.UndefinedValue, nil
}

// jsonStringify implements the recursive SerializeJSONProperty/Object/Array
// algorithm (ES5 §15.12.3). The bool result says whether the property was
// "included" at all -- undefined, functions, and symbols are omitted
// entirely rather than serialized as anything.
func jsonStringify(ctx value.NativeContext, v value.Value, visited map[*value.Object]bool, gap, indent, key string, holder, replacerFn value.Value, propertyList []string) (string, bool, error) {
	if v.IsObject() {
		toJSON, err := jsonGetProp(ctx, v.AsObject(), "toJSON")
		if err != nil {
			return "", false, err
		}
		if toJSON.IsObject() && toJSON.AsObject().IsCallable() {
			r, err := ctx.Call(toJSON, v, []value.Value{value.Str(key)})
			if err != nil {
				return "", false, err
			}
			v = r
		}
	}

	if replacerFn.IsObject() && replacerFn.AsObject().IsCallable() {
		r, err := ctx.Call(replacerFn, holder, []value.Value{value.Str(key), v})
		if err != nil {
			return "", false, err
		}
		v = r
	}

	if v.IsObject() {
		if dv, ok := v.AsObject().Data.(value.Value); ok && !dv.IsObject() {
			v = dv
		}
	}

	switch {
	case v.IsNull():
		return "null", true, nil
	case v.IsUndefined():
		return "", false, nil
	case v.IsBoolean():
		if v.AsBool() {
			return "true", true, nil
		}
		return "false", true, nil
	case v.IsNumber():
		n := v.AsNumber()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return "null", true, nil
		}
		return value.NumberToString(n), true, nil
	case v.IsString():
		b, _ := json.Marshal(v.AsString())
		return string(b), true, nil
	case v.IsObject():
		obj := v.AsObject()
		if obj.IsCallable() {
			return "", false, nil
		}
		if visited[obj] {
			ctx.ThrowType("Converting circular structure to JSON")
			return "", false, nil
		}
		visited[obj] = true
		defer delete(visited, obj)

		if obj.Class == value.ClassArray {
			n := arrLen(obj)
			parts := make([]string, 0, n)
			for i := 0; i < n; i++ {
				s, included, err := jsonStringify(ctx, arrGet(obj, i), visited, gap, indent+gap, strconv.Itoa(i), v, replacerFn, propertyList)
				if err != nil {
					return "", false, err
				}
				if !included {
					s = "null"
				}
				parts = append(parts, s)
			}
			return joinJSONParts("[", "]", parts, gap, indent), true, nil
		}

		keys := propertyList
		if keys == nil {
			keys = sortJSONKeys(obj.OwnEnumerableKeys())
		}
		var parts []string
		for _, k := range keys {
			pv, err := jsonGetProp(ctx, obj, k)
			if err != nil {
				return "", false, err
			}
			s, included, err := jsonStringify(ctx, pv, visited, gap, indent+gap, k, v, replacerFn, propertyList)
			if err != nil {
				return "", false, err
			}
			if !included {
				continue
			}
			kb, _ := json.Marshal(k)
			sep := ":"
			if gap != "" {
				sep = ": "
			}
			parts = append(parts, string(kb)+sep+s)
		}
		return joinJSONParts("{", "}", parts, gap, indent), true, nil
	default:
		return "", false, nil
	}
}

func joinJSONParts(open, close string, parts []string, gap, indent string) string {
	if len(parts) == 0 {
		return open + close
	}
	if gap == "" {
		return open + strings.Join(parts, ",") + close
	}
	inner := indent + gap
	return open + "\n" + inner + strings.Join(parts, ",\n"+inner) + "\n" + indent + close
}

// sortJSONKeys orders own-property keys per ES5's [[OwnPropertyKeys]]
// integer-index-first rule: array indices sort numerically ahead of
// everything else, which otherwise keeps insertion order.
func sortJSONKeys(keys []string) []string {
	var numeric, rest []string
	for _, k := range keys {
		if n, err := strconv.ParseUint(k, 10, 32); err == nil && strconv.FormatUint(n, 10) == k {
			numeric = append(numeric, k)
		} else {
			rest = append(rest, k)
		}
	}
	sort.Slice(numeric, func(i, j int) bool {
		a, _ := strconv.ParseUint(numeric[i], 10, 32)
		b, _ := strconv.ParseUint(numeric[j], 10, 32)
		return a < b
	})
	return append(numeric, rest...)
}
