package builtins

import (
	"time"

	"sandboxjs/pkg/value"
)

// dateInitializer installs Date.prototype's accessors (ES5 §15.9.5) and
// the Date constructor. A Date's internal slot holds its UTC millisecond
// timestamp as a float64, mirroring how String/Number/Boolean box their
// primitive in Data.
type dateInitializer struct{}

func (dateInitializer) Name() string  { return "Date" }
func (dateInitializer) Priority() int { return PriorityDate }

func dateMillis(this value.Value) float64 {
	if !this.IsObject() {
		return 0
	}
	if ms, ok := this.AsObject().Data.(float64); ok {
		return ms
	}
	return 0
}

func dateTime(this value.Value) time.Time {
	ms := dateMillis(this)
	return time.UnixMilli(int64(ms)).UTC()
}

func (dateInitializer) InitRuntime(host Host) error {
	proto := host.DatePrototype()
	proto.Data = float64(0)

	ctor(host, "Date", 7, proto, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		obj := ctx.NewObject(proto)
		obj.Class = value.ClassDate
		switch len(args) {
		case 0:
			obj.Data = float64(time.Now().UnixMilli())
		case 1:
			if args[0].IsString() {
				s, _ := ctx.ToStringValue(args[0])
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					obj.Data = float64(t.UnixMilli())
				} else {
					obj.Data = float64(0)
				}
			} else {
				n, _ := ctx.ToNumberValue(args[0])
				obj.Data = n
			}
		default:
			year := int(numArgOr(ctx, args, 0, 1970))
			month := int(numArgOr(ctx, args, 1, 0))
			day := int(numArgOr(ctx, args, 2, 1))
			hour := int(numArgOr(ctx, args, 3, 0))
			minute := int(numArgOr(ctx, args, 4, 0))
			sec := int(numArgOr(ctx, args, 5, 0))
			ms := int(numArgOr(ctx, args, 6, 0))
			t := time.Date(year, time.Month(month+1), day, hour, minute, sec, ms*1e6, time.UTC)
			obj.Data = float64(t.UnixMilli())
		}
		return value.Obj(obj), nil
	})

	c, _ := host.Global().GetOwnData("Date")
	staticMethod(c.Value.AsObject(), "now", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(float64(time.Now().UnixMilli())), nil
	})

	method(proto, "getTime", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(dateMillis(this)), nil
	})
	method(proto, "valueOf", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(dateMillis(this)), nil
	})
	method(proto, "setTime", 1, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		n := numArg(host, args, 0)
		this.AsObject().Data = n
		return value.Num(n), nil
	})

	method(proto, "getFullYear", 0, dateField(func(t time.Time) float64 { return float64(t.Year()) }))
	method(proto, "getMonth", 0, dateField(func(t time.Time) float64 { return float64(t.Month() - 1) }))
	method(proto, "getDate", 0, dateField(func(t time.Time) float64 { return float64(t.Day()) }))
	method(proto, "getDay", 0, dateField(func(t time.Time) float64 { return float64(t.Weekday()) }))
	method(proto, "getHours", 0, dateField(func(t time.Time) float64 { return float64(t.Hour()) }))
	method(proto, "getMinutes", 0, dateField(func(t time.Time) float64 { return float64(t.Minute()) }))
	method(proto, "getSeconds", 0, dateField(func(t time.Time) float64 { return float64(t.Second()) }))
	method(proto, "getMilliseconds", 0, dateField(func(t time.Time) float64 { return float64(t.Nanosecond() / 1e6) }))
	method(proto, "getUTCFullYear", 0, dateField(func(t time.Time) float64 { return float64(t.Year()) }))
	method(proto, "getUTCMonth", 0, dateField(func(t time.Time) float64 { return float64(t.Month() - 1) }))
	method(proto, "getUTCDate", 0, dateField(func(t time.Time) float64 { return float64(t.Day()) }))
	method(proto, "getUTCHours", 0, dateField(func(t time.Time) float64 { return float64(t.Hour()) }))
	method(proto, "getTimezoneOffset", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(0), nil
	})

	method(proto, "toISOString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(dateTime(this).Format("2006-01-02T15:04:05.000Z")), nil
	})
	method(proto, "toString", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(dateTime(this).Format(time.RFC1123)), nil
	})
	method(proto, "toJSON", 0, func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Str(dateTime(this).Format("2006-01-02T15:04:05.000Z")), nil
	})

	return nil
}

func dateField(extract func(time.Time) float64) value.NativeFunc {
	return func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.Num(extract(dateTime(this))), nil
	}
}
