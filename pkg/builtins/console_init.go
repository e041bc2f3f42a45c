package builtins

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sandboxjs/pkg/value"
)

// consoleInitializer installs the console namespace (a de facto standard,
// not part of ES5 proper, but every guest script in the wild assumes it
// exists). Every level routes through Host.Logger() rather than fmt.Println
// so guest output is carried by the same structured zap pipeline as the
// interpreter's own diagnostics.
type consoleInitializer struct{}

func (consoleInitializer) Name() string  { return "console" }
func (consoleInitializer) Priority() int { return PriorityConsole }

func (consoleInitializer) InitRuntime(host Host) error {
	c := host.NewObject(host.ObjectPrototype())

	timers := make(map[string]time.Time)
	counts := make(map[string]int)
	group := 0

	format := func(ctx value.NativeContext, args []value.Value) string {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = consoleInspect(ctx, a, map[*value.Object]bool{})
		}
		msg := strings.Join(parts, " ")
		if group > 0 {
			msg = strings.Repeat("  ", group) + msg
		}
		return msg
	}

	level := func(name string, log func(string, ...interface{})) {
		method(c, name, 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
			log(format(ctx, args))
			return value.UndefinedValue, nil
		})
	}

	level("log", func(msg string, _ ...interface{}) { host.Logger().Info(msg) })
	level("info", func(msg string, _ ...interface{}) { host.Logger().Info(msg) })
	level("debug", func(msg string, _ ...interface{}) { host.Logger().Debug(msg) })
	level("warn", func(msg string, _ ...interface{}) { host.Logger().Warn(msg) })
	level("error", func(msg string, _ ...interface{}) { host.Logger().Error(msg) })
	level("trace", func(msg string, _ ...interface{}) { host.Logger().Debug("trace: " + msg) })

	method(c, "clear", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.UndefinedValue, nil
	})

	method(c, "count", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label, _ = ctx.ToStringValue(args[0])
		}
		counts[label]++
		host.Logger().Info(label + ": " + strconv.Itoa(counts[label]))
		return value.UndefinedValue, nil
	})
	method(c, "countReset", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label, _ = ctx.ToStringValue(args[0])
		}
		counts[label] = 0
		return value.UndefinedValue, nil
	})

	method(c, "time", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label, _ = ctx.ToStringValue(args[0])
		}
		timers[label] = time.Now()
		return value.UndefinedValue, nil
	})
	method(c, "timeEnd", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		label := "default"
		if len(args) > 0 {
			label, _ = ctx.ToStringValue(args[0])
		}
		started, ok := timers[label]
		if !ok {
			return value.UndefinedValue, nil
		}
		delete(timers, label)
		host.Logger().Info(fmt.Sprintf("%s: %s", label, time.Since(started)))
		return value.UndefinedValue, nil
	})

	method(c, "group", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		host.Logger().Info(format(ctx, args))
		group++
		return value.UndefinedValue, nil
	})
	method(c, "groupCollapsed", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		host.Logger().Info(format(ctx, args))
		group++
		return value.UndefinedValue, nil
	})
	method(c, "groupEnd", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		if group > 0 {
			group--
		}
		return value.UndefinedValue, nil
	})

	host.Global().PutData("console", &value.DataProperty{Value: value.Obj(c), Writable: true, Configurable: true})
	return nil
}

// consoleInspect renders a value for display the way console.log's host
// formatter does: primitives print their plain value, strings are
// unquoted at the top level, objects and arrays get a compact bracketed
// summary with cycle detection instead of recursing forever.
func consoleInspect(ctx value.NativeContext, v value.Value, seen map[*value.Object]bool) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return v.AsString()
	case v.IsBoolean(), v.IsNumber():
		s, _ := ctx.ToStringValue(v)
		return s
	case v.IsObject():
		obj := v.AsObject()
		if obj.IsCallable() {
			name := obj.NativeName
			if name == "" {
				name = obj.FnName
			}
			if name == "" {
				name = "anonymous"
			}
			return "[Function: " + name + "]"
		}
		if seen[obj] {
			return "[Circular]"
		}
		seen[obj] = true
		defer delete(seen, obj)
		if obj.Class == value.ClassArray {
			n := arrLen(obj)
			parts := make([]string, n)
			for i := 0; i < n; i++ {
				parts[i] = consoleInspect(ctx, arrGet(obj, i), seen)
			}
			return "[ " + strings.Join(parts, ", ") + " ]"
		}
		if obj.Class == value.ClassError {
			s, _ := ctx.Call(mustGet(ctx, v, "toString"), v, nil)
			return s.AsString()
		}
		keys := obj.OwnEnumerableKeys()
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			dp, ok := obj.GetOwnData(k)
			if !ok {
				continue
			}
			parts = append(parts, k+": "+consoleInspect(ctx, dp.Value, seen))
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return ""
	}
}
