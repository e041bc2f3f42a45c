// Package builtins installs the ES5 standard library (CORE SPEC §4.6) onto
// an already-constructed interpreter: the well-known prototypes already
// exist (pkg/interp.bootstrapPrototypes creates them bare, with only the
// Class tag set) and this package's job is to hang methods and static
// properties off them and register the global constructors/functions.
package builtins

import (
	"go.uber.org/zap"

	"sandboxjs/pkg/value"
)

// Host is the capability surface Install needs from the interpreter: the
// plain value.NativeContext every native function body gets, plus the
// extra prototype accessors and regex/logging hooks that only built-in
// registration code (as opposed to an arbitrary native function body)
// touches. Defined here, in the consumer, rather than in pkg/interp, so
// this package never has to import pkg/interp -- pkg/interp.Interpreter
// satisfies this interface structurally, and pkg/interp imports this
// package (not the other way around) to call Install.
type Host interface {
	value.NativeContext

	NumberPrototype() *value.Object
	BooleanPrototype() *value.Object
	ErrorPrototype() *value.Object
	DatePrototype() *value.Object
	RegExpPrototype() *value.Object

	Logger() *zap.Logger

	// ExecRegex/SplitRegex/IsRegExp let RegExp.prototype.exec/test and
	// String.prototype.match/replace/split delegate pattern execution to
	// whatever RegexExecutor the host wired in, without this package
	// needing to know anything about regexpData or RegexExecutor.
	ExecRegex(obj *value.Object, input string, lastIndex int) (matched bool, index int, groups []string, names map[string]int, err error)
	SplitRegex(obj *value.Object, input string, limit int) ([]string, error)
	IsRegExp(v value.Value) bool

	// NewRegExp builds a guest RegExp object (pkg/interp.newRegExp), used
	// by String.prototype.match/split when handed a plain string pattern
	// and by the RegExp constructor itself.
	NewRegExp(pattern, flags string) *value.Object

	// EvalSource runs source through the same parse/hoist/run pipeline as
	// a freshly loaded script and returns its completion value; the guest
	// `eval` global calls it. The host's append-code entry point does not
	// go through it.
	EvalSource(source string) (value.Value, error)
}
