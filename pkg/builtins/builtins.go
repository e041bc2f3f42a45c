package builtins

import "sort"

// Initializer is implemented by each builtin module (one per file, named
// after the teacher pack's *_init.go convention). Install runs every
// registered Initializer in Priority order so a dependent builtin (Array,
// which needs Object.prototype already wired) always runs after what it
// depends on.
type Initializer interface {
	// Name identifies the module for diagnostics.
	Name() string
	// Priority returns initialization order; lower runs earlier.
	Priority() int
	// InitRuntime installs this module's prototype methods and/or global
	// bindings onto host.
	InitRuntime(host Host) error
}

// Priority constants mirror the dependency order CORE SPEC §4.6 implies:
// Object before everything (it's the root prototype), Function next
// (every other prototype's methods are themselves Function instances),
// then the other primitive wrappers, then the free-standing namespace
// objects that only need the primitives to already exist.
const (
	PriorityObject  = 0
	PriorityFunction = 1
	PriorityArray   = 10
	PriorityString  = 11
	PriorityNumber  = 12
	PriorityBoolean = 13
	PriorityRegExp  = 14
	PriorityDate    = 15
	PriorityError   = 20
	PriorityMath    = 100
	PriorityJSON    = 101
	PriorityConsole = 102
	PriorityGlobals = 103
)

var registry []Initializer

func register(i Initializer) {
	registry = append(registry, i)
}

func init() {
	register(&objectInitializer{})
	register(&functionInitializer{})
	register(&arrayInitializer{})
	register(&stringInitializer{})
	register(&numberInitializer{})
	register(&booleanInitializer{})
	register(&regexpInitializer{})
	register(&dateInitializer{})
	register(&errorInitializer{})
	register(&mathInitializer{})
	register(&jsonInitializer{})
	register(&consoleInitializer{})
	register(&globalsInitializer{})
}

// Install runs every registered module's InitRuntime against host, in
// Priority order. Called once from pkg/interp.New.
func Install(host Host) error {
	ordered := make([]Initializer, len(registry))
	copy(ordered, registry)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Priority() < ordered[b].Priority()
	})
	for _, mod := range ordered {
		if err := mod.InitRuntime(host); err != nil {
			return err
		}
	}
	return nil
}
