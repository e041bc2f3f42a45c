// Package interp implements the step-granular tree-walking interpreter
// described in CORE SPEC §4: a state stack of frames, a step dispatcher
// that advances the top frame by exactly one unit of work, and the
// supporting machinery (property access, scope construction, exception
// unwinding, host bridge) the node handlers share.
package interp

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sandboxjs/pkg/ast"
	"sandboxjs/pkg/builtins"
	"sandboxjs/pkg/config"
	"sandboxjs/pkg/errors"
	"sandboxjs/pkg/logging"
	"sandboxjs/pkg/scope"
	"sandboxjs/pkg/value"
)

// RegexExecutor is the capability pkg/regexsandbox provides; kept as a
// consumer-defined interface here so pkg/interp does not import
// pkg/regexsandbox directly, matching the same layering discipline used
// between pkg/value and pkg/interp.
type RegexExecutor interface {
	Exec(mode config.RegexpMode, timeoutMillis int, pattern, flags, input string, lastIndex int) (RegexResult, error)
	Split(mode config.RegexpMode, timeoutMillis int, pattern, flags, input string, limit int) ([]string, error)
}

// RegexResult is the normalized shape pkg/regexsandbox hands back for a
// single match, independent of which REGEXP_MODE produced it.
type RegexResult struct {
	Matched bool
	Index   int
	Groups  []string // Groups[0] is the full match
	Names   map[string]int
}

// Interpreter owns one guest execution: the global object, the well-known
// prototypes, the state stack, and the configuration/logging the ambient
// stack specifies.
type Interpreter struct {
	GlobalObj          *value.Object
	ObjectProto        *value.Object
	FunctionProto      *value.Object
	ArrayProto         *value.Object
	StringProto        *value.Object
	NumberProto        *value.Object
	BooleanProto       *value.Object
	ErrorProto         *value.Object
	DateProto          *value.Object
	RegExpProto        *value.Object

	globalScope *scope.Scope
	stack       []*frame

	cfg    *config.Config
	log    *zap.Logger
	sessID string

	regex  RegexExecutor
	parser Parser

	// paused/pausedFrame/resume* implement the single-outstanding-suspension
	// async model (CORE SPEC §4.5): at most one frame is ever paused at a
	// time, because guest code in this engine has no concurrency
	// primitives of its own to create a second one.
	paused       bool
	pausedFrame  *frame
	resumeValue  value.Value
	resumeThrown bool
	resumeErr    value.Value

	maxDepth int

	// unwindFloor bounds how far unwindTo will pop frames: 0 (the default)
	// means the ordinary top-level Run/Step loop, where an uncaught throw
	// that reaches the bottom becomes a HostError. drainCall (see
	// conversions.go's Call/Construct) raises it for the duration of a
	// nested native-to-guest call so an uncaught throw there stops at the
	// native call's own frame instead of unwinding the caller's stack too.
	unwindFloor int

	// lastProgramValue is the result of the most recently finished
	// top-level statement of any kind (a trailing `var` declaration, for
	// example, leaves undefined here), returned by Run as a
	// convenience for REPL-style hosts (CORE SPEC §9).
	lastProgramValue value.Value

	// lastChildResult is the side channel a parent frame reads from on
	// the step immediately after one of its children pops with a Normal
	// completion; see frame.go for why a step-granular re-entrant walker
	// needs this instead of a typed return value threaded through
	// ordinary recursion.
	lastChildResult     value.Value
	lastChildCompletion *Completion
}

// Option configures an Interpreter at construction time.
type Option func(*Interpreter)

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(i *Interpreter) { i.log = l }
}

// WithConfig overrides the loaded/default config.Config.
func WithConfig(c *config.Config) Option {
	return func(i *Interpreter) { i.cfg = c }
}

// WithRegexExecutor wires in the regex sandbox. The CLI host
// (cmd/sandboxjs) supplies pkg/regexsandbox's implementation; tests may
// supply a fake.
func WithRegexExecutor(r RegexExecutor) Option {
	return func(i *Interpreter) { i.regex = r }
}

// New constructs an Interpreter with the global object and well-known
// prototypes wired up, and registers the built-in library (CORE SPEC
// §4.6) and, unless disabled by config, runs the ES5 polyfill bootstrap.
func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		cfg:      config.Default(),
		log:      logging.Nop(),
		sessID:   uuid.NewString(),
		maxDepth: 10000,
	}
	for _, opt := range opts {
		opt(interp)
	}
	interp.maxDepth = interp.cfg.MaxStateStackDepth

	interp.bootstrapPrototypes()
	if err := builtins.Install(interp); err != nil {
		// Install only fails if a module's InitRuntime itself returns an
		// error; every module shipped in pkg/builtins installs
		// unconditionally, so this is an engine bug, not a guest fault.
		errors.Fail("builtins.Install: %v", err)
	}

	if interp.cfg.RunPolyfillBootstrap {
		if err := interp.runPolyfills(); err != nil {
			interp.log.Error("polyfill bootstrap failed", zap.Error(err), zap.String("session", interp.sessID))
		}
	}
	return interp
}

// runPolyfills is the CORE SPEC §9 "polyfill bootstrap" Open Question,
// resolved here in favor of option (b): every method the spec's narrative
// lists as "tedious to write natively" (Function.prototype.bind,
// Array.prototype.{map,filter,forEach,...}, String.prototype.replace with
// a function argument, and the rest enumerated in SPEC_FULL.md's
// Supplemented Features) is implemented natively in pkg/builtins instead
// of as guest source run through the engine at construction time. There is
// therefore no guest-source bootstrap to run, and no Parser dependency at
// construction time -- only EvalSource/AppendCode (guest `eval`, direct
// host append-code) need one, wired in separately via WithParser. This
// function exists, rather than being deleted along with the config flag,
// so a host that does want option (a) has a single seam to implement it
// in without touching New's call sequence; see DESIGN.md.
func (i *Interpreter) runPolyfills() error {
	return nil
}

func (i *Interpreter) bootstrapPrototypes() {
	// ObjectProto sits at the root: its own Proto is nil.
	i.ObjectProto = value.NewObject(nil)
	i.FunctionProto = value.NewObject(i.ObjectProto)
	i.FunctionProto.Class = value.ClassFunction
	i.FunctionProto.Kind = value.KindNativeFn
	i.FunctionProto.Native = func(ctx value.NativeContext, this value.Value, args []value.Value) (value.Value, error) {
		return value.UndefinedValue, nil
	}
	i.ArrayProto = value.NewObject(i.ObjectProto)
	i.ArrayProto.Class = value.ClassArray
	i.StringProto = value.NewObject(i.ObjectProto)
	i.StringProto.Class = value.ClassString
	i.NumberProto = value.NewObject(i.ObjectProto)
	i.NumberProto.Class = value.ClassNumber
	i.BooleanProto = value.NewObject(i.ObjectProto)
	i.BooleanProto.Class = value.ClassBoolean
	i.ErrorProto = value.NewObject(i.ObjectProto)
	i.ErrorProto.Class = value.ClassError
	i.DateProto = value.NewObject(i.ObjectProto)
	i.DateProto.Class = value.ClassDate
	i.RegExpProto = value.NewObject(i.ObjectProto)
	i.RegExpProto.Class = value.ClassRegExp

	i.GlobalObj = value.NewObject(i.ObjectProto)
	i.globalScope = scope.NewGlobal(i.GlobalObj, false)
}

// Global object accessors implementing value.NativeContext, plus the
// additional prototype accessors pkg/builtins' Host interface needs
// (value.NativeContext only carries the four every native function body
// is likely to touch).
func (i *Interpreter) Global() *value.Object             { return i.GlobalObj }
func (i *Interpreter) ObjectPrototype() *value.Object   { return i.ObjectProto }
func (i *Interpreter) FunctionPrototype() *value.Object { return i.FunctionProto }
func (i *Interpreter) ArrayPrototype() *value.Object    { return i.ArrayProto }
func (i *Interpreter) StringPrototype() *value.Object   { return i.StringProto }
func (i *Interpreter) NumberPrototype() *value.Object   { return i.NumberProto }
func (i *Interpreter) BooleanPrototype() *value.Object  { return i.BooleanProto }
func (i *Interpreter) ErrorPrototype() *value.Object    { return i.ErrorProto }
func (i *Interpreter) DatePrototype() *value.Object     { return i.DateProto }
func (i *Interpreter) RegExpPrototype() *value.Object   { return i.RegExpProto }

// Logger exposes the zap logger console built-ins write through.
func (i *Interpreter) Logger() *zap.Logger { return i.log }

// ExecRegex runs obj's compiled pattern (a RegExp object built by
// newRegExp) against input starting at lastIndex, delegating to whatever
// RegexExecutor was wired in via WithRegexExecutor. Builtins call this
// instead of reaching into RegexExecutor/regexpData directly, keeping both
// types unexported outside pkg/interp.
func (i *Interpreter) ExecRegex(obj *value.Object, input string, lastIndex int) (matched bool, index int, groups []string, names map[string]int, err error) {
	rd, ok := obj.Data.(regexpData)
	if !ok {
		return false, 0, nil, nil, nil
	}
	if i.regex == nil {
		return false, 0, nil, nil, nil
	}
	res, err := i.regex.Exec(i.cfg.Mode(), i.cfg.RegexpThreadTimeout, rd.Pattern, rd.Flags, input, lastIndex)
	if err != nil {
		return false, 0, nil, nil, err
	}
	return res.Matched, res.Index, res.Groups, res.Names, nil
}

// SplitRegex is ExecRegex's counterpart for String.prototype.split(regex).
func (i *Interpreter) SplitRegex(obj *value.Object, input string, limit int) ([]string, error) {
	rd, ok := obj.Data.(regexpData)
	if !ok || i.regex == nil {
		return nil, nil
	}
	return i.regex.Split(i.cfg.Mode(), i.cfg.RegexpThreadTimeout, rd.Pattern, rd.Flags, input, limit)
}

// IsRegExp reports whether v is a guest RegExp object, for builtins that
// branch on String.prototype.split's separator being a regex vs a string.
func (i *Interpreter) IsRegExp(v value.Value) bool {
	return v.IsObject() && v.AsObject().Class == value.ClassRegExp
}

func (i *Interpreter) NewObject(proto *value.Object) *value.Object {
	return value.NewObject(proto)
}

func (i *Interpreter) NewArray(elements ...value.Value) *value.Object {
	arr := value.NewObject(i.ArrayProto)
	arr.Class = value.ClassArray
	for idx, el := range elements {
		arr.PutData(fmt.Sprintf("%d", idx), &value.DataProperty{
			Value: el, Writable: true, Enumerable: true, Configurable: true,
		})
	}
	arr.PutData("length", &value.DataProperty{
		Value: value.Num(float64(len(elements))), Writable: true,
	})
	return arr
}

// NewError builds a guest Error instance, preferring the registered
// subclass prototype (TypeError.prototype, RangeError.prototype, ...) so
// `instanceof` against the matching global constructor works the same for
// an engine-raised exception as for one a guest `new TypeError(...)`
// expression builds. class names not registered as a global constructor
// (or not yet installed, e.g. while bootstrapping builtins themselves)
// fall back to the bare ErrorProto with an own "name" property.
func (i *Interpreter) NewError(class, message string) *value.Object {
	proto := i.ErrorProto
	setOwnName := true
	if ctorDP, ok := i.GlobalObj.GetOwnData(class); ok && ctorDP.Value.IsObject() {
		if protoDP, ok := ctorDP.Value.AsObject().GetOwnData("prototype"); ok && protoDP.Value.IsObject() {
			proto = protoDP.Value.AsObject()
			setOwnName = false
		}
	}
	e := value.NewObject(proto)
	e.Class = value.ClassError
	if setOwnName {
		e.PutData("name", &value.DataProperty{Value: value.Str(class), Writable: true, Configurable: true})
	}
	e.PutData("message", &value.DataProperty{Value: value.Str(message), Writable: true, Configurable: true})
	return e
}

// Run drives the interpreter to completion on a freshly parsed Program,
// returning the result of the last top-level statement it finished
// (matching the host convenience described in CORE SPEC §9's
// resolved Open Question) or a HostError if a guest exception escaped.
func (i *Interpreter) Run(prog *ast.Program) (value.Value, error) {
	i.PushProgram(prog)
	for i.HasWork() {
		if err := i.Step(); err != nil {
			return value.UndefinedValue, err
		}
	}
	return i.lastProgramValue, nil
}

// PushProgram seeds the state stack with prog's root frame, hoisting its
// vars/functions into the global scope first (CORE SPEC §4.4).
func (i *Interpreter) PushProgram(prog *ast.Program) {
	i.hoistInto(i.globalScope, prog.HoistedVars, prog.HoistedFuncs)
	i.stack = append(i.stack, &frame{node: prog, scope: i.globalScope})
}

// HasWork reports whether the state stack has frames left to step, i.e.
// whether the program has not yet run to completion.
func (i *Interpreter) HasWork() bool {
	return len(i.stack) > 0 && !i.paused
}

// top returns the frame the next Step() call will act on.
func (i *Interpreter) top() *frame {
	if len(i.stack) == 0 {
		return nil
	}
	return i.stack[len(i.stack)-1]
}

func (i *Interpreter) push(f *frame) {
	if len(i.stack) >= i.maxDepth {
		errors.Fail("state stack exceeded max depth %d", i.maxDepth)
	}
	i.stack = append(i.stack, f)
}

func (i *Interpreter) pop() *frame {
	n := len(i.stack)
	f := i.stack[n-1]
	i.stack = i.stack[:n-1]
	return f
}

// Pause suspends the interpreter, recording f as the frame to resume onto
// once Resume is called (CORE SPEC §4.5's async native function contract).
func (i *Interpreter) Pause(f *frame) {
	i.paused = true
	i.pausedFrame = f
}

// Resume unpauses the interpreter with the given result, which the paused
// native-call frame (stepNativeCall) picks up on the next Step call.
func (i *Interpreter) Resume(result value.Value, thrown bool, thrownVal value.Value) {
	i.resumeValue = result
	i.resumeThrown = thrown
	i.resumeErr = thrownVal
	i.paused = false
}

// SessionID returns the interpreter's session id, used to correlate log
// lines across a host embedding multiple Interpreter instances.
func (i *Interpreter) SessionID() string { return i.sessID }
