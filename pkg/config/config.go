// Package config loads the engine's observable configuration (CORE SPEC
// §6.3) from environment variables via github.com/kelseyhightower/envconfig,
// the same flat env-first pattern used for the rest of the pack's service
// configuration.
package config

import "github.com/kelseyhightower/envconfig"

// RegexpMode selects how RegExp operations are executed (CORE SPEC §4.5).
type RegexpMode int

const (
	// RegexpModeReject refuses every RegExp operation with a generic Error.
	RegexpModeReject RegexpMode = 0
	// RegexpModeNative runs patterns in-process with no watchdog. Fast, but
	// a pathological pattern can hang the host's step loop.
	RegexpModeNative RegexpMode = 1
	// RegexpModeSandboxed (the default) delegates to an interruptible,
	// timeout-bounded executor. See pkg/regexsandbox.
	RegexpModeSandboxed RegexpMode = 2
)

// Config holds the engine's tunables. Zero value is not valid; use Load or
// Default.
type Config struct {
	RegexpMode           int `envconfig:"REGEXP_MODE" default:"2"`
	RegexpThreadTimeout  int `envconfig:"REGEXP_THREAD_TIMEOUT" default:"1000"` // milliseconds
	MaxStateStackDepth   int `envconfig:"MAX_STATE_STACK_DEPTH" default:"10000"`
	RunPolyfillBootstrap bool `envconfig:"RUN_POLYFILL_BOOTSTRAP" default:"true"`
}

// Mode returns the configured RegexpMode, clamping out-of-range values to
// RegexpModeSandboxed the way a defensive config loader should rather than
// letting a stray env var silently disable the regex sandbox's timeout.
func (c *Config) Mode() RegexpMode {
	switch RegexpMode(c.RegexpMode) {
	case RegexpModeReject, RegexpModeNative, RegexpModeSandboxed:
		return RegexpMode(c.RegexpMode)
	default:
		return RegexpModeSandboxed
	}
}

// Default returns the spec's stated defaults without touching the
// environment: mode 2, a 1000ms watchdog.
func Default() *Config {
	return &Config{
		RegexpMode:            int(RegexpModeSandboxed),
		RegexpThreadTimeout:   1000,
		MaxStateStackDepth:    10000,
		RunPolyfillBootstrap:  true,
	}
}

// Load reads configuration from the environment, falling back to Default
// for any variable that isn't set.
func Load() (*Config, error) {
	cfg := Default()
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads from the environment and falls back to Default on
// any error, matching the teacher pack's LoadOrDefault convenience.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}
