package interp

import (
	"strings"

	"sandboxjs/pkg/value"
)

// regexpData is the RegExp object's internal [[data]] slot: the source
// pattern/flags pair pkg/builtins' RegExp.prototype methods hand to the
// RegexExecutor. The flag booleans are not kept here; newRegExp sets them
// as own properties of the RegExp object.
type regexpData struct {
	Pattern string
	Flags   string
}

// newRegExp builds a guest RegExp object from a literal or a `new RegExp`
// call; it does not compile the pattern itself -- that's RegexExecutor's
// job, invoked lazily the first time the object is used in a match.
func (i *Interpreter) newRegExp(pattern, flags string) *value.Object {
	o := value.NewObject(i.RegExpProto)
	o.Class = value.ClassRegExp
	o.Data = regexpData{Pattern: pattern, Flags: flags}
	o.PutData("source", &value.DataProperty{Value: value.Str(pattern)})
	o.PutData("flags", &value.DataProperty{Value: value.Str(flags)})
	o.PutData("global", &value.DataProperty{Value: value.Bool(strings.Contains(flags, "g"))})
	o.PutData("ignoreCase", &value.DataProperty{Value: value.Bool(strings.Contains(flags, "i"))})
	o.PutData("multiline", &value.DataProperty{Value: value.Bool(strings.Contains(flags, "m"))})
	o.PutData("lastIndex", &value.DataProperty{Value: value.Num(0), Writable: true})
	return o
}

// NewRegExp implements pkg/builtins.Host's NewRegExp, letting built-in code
// construct a RegExp object without reaching into the unexported newRegExp.
func (i *Interpreter) NewRegExp(pattern, flags string) *value.Object {
	return i.newRegExp(pattern, flags)
}
