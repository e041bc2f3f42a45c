// Package regexsandbox implements pkg/interp.RegexExecutor on top of
// github.com/dlclark/regexp2, the one Go regexp engine in the pack whose
// backtracking engine (unlike the RE2-derived standard library one) can
// actually run the ECMAScript regex features guest code expects --
// backreferences, lookaround -- at the cost of needing the timeout guard
// CORE SPEC §4.5 requires REGEXP_MODE=sandboxed to enforce.
package regexsandbox

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"

	"sandboxjs/pkg/config"
	"sandboxjs/pkg/interp"
)

// Sandbox is a stateless RegexExecutor; every call compiles fresh, since
// caching would need a cache key sensitive to mode and timeout as well as
// pattern/flags and the payoff is marginal next to the match cost itself.
type Sandbox struct{}

func New() *Sandbox { return &Sandbox{} }

func translateFlags(flags string) regexp2.RegexOptions {
	opts := regexp2.None
	for _, c := range flags {
		switch c {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		}
	}
	return opts
}

func (s *Sandbox) compile(mode config.RegexpMode, timeoutMillis int, pattern, flags string) (*regexp2.Regexp, error) {
	if mode == config.RegexpModeReject {
		return nil, fmt.Errorf("regexp operations are disabled by configuration")
	}
	re, err := regexp2.Compile(pattern, translateFlags(flags))
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	if mode == config.RegexpModeSandboxed {
		if timeoutMillis <= 0 {
			timeoutMillis = 1000
		}
		re.MatchTimeout = time.Duration(timeoutMillis) * time.Millisecond
	}
	return re, nil
}

// Exec implements interp.RegexExecutor.
func (s *Sandbox) Exec(mode config.RegexpMode, timeoutMillis int, pattern, flags, input string, lastIndex int) (interp.RegexResult, error) {
	re, err := s.compile(mode, timeoutMillis, pattern, flags)
	if err != nil {
		return interp.RegexResult{}, err
	}
	if lastIndex < 0 || lastIndex > len(input) {
		return interp.RegexResult{}, nil
	}
	m, err := re.FindStringMatchStartingAt(input, lastIndex)
	if err != nil {
		return interp.RegexResult{}, err
	}
	if m == nil {
		return interp.RegexResult{Matched: false}, nil
	}
	groups := m.Groups()
	result := interp.RegexResult{
		Matched: true,
		Index:   m.Index,
		Groups:  make([]string, len(groups)),
		Names:   map[string]int{},
	}
	for idx, g := range groups {
		if len(g.Captures) > 0 {
			result.Groups[idx] = g.String()
		}
		if g.Name != "" && g.Name != fmt.Sprint(idx) {
			result.Names[g.Name] = idx
		}
	}
	return result, nil
}

// Split implements interp.RegexExecutor.
func (s *Sandbox) Split(mode config.RegexpMode, timeoutMillis int, pattern, flags, input string, limit int) ([]string, error) {
	re, err := s.compile(mode, timeoutMillis, pattern, flags)
	if err != nil {
		return nil, err
	}
	var out []string
	pos := 0
	for limit <= 0 || len(out) < limit {
		m, err := re.FindStringMatchStartingAt(input, pos)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Index >= len(input) {
			break
		}
		out = append(out, input[pos:m.Index])
		pos = m.Index + m.Length
		if m.Length == 0 {
			pos++
		}
	}
	out = append(out, input[pos:])
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
