package filter

import (
	"fmt"
	"path/filepath"
)

// DefaultExcludes lists the development artifacts never shipped with the
// mod. Dot-prefixed names cover their variants (.env.local, .github,
// .claude-settings); plain names such as utils only match whole segments.
var DefaultExcludes = []string{
	"=.env*",
	"=.git*",
	"=node_modules*",
	"=utils",
	"*.ts",
	"*.md",
	"=.claude*",
	"tmpclaude-",
	"=package.json*",
	"=tsconfig.json*",
	"=bun.lock*",
	"*.go",
	"=go.mod",
	"=go.sum",
	"=.veilbreak.yaml",
}

// Rules is an ordered list of matchers. A path is excluded when any rule
// matches; the first matching rule wins for Explain.
type Rules []Matcher

// ParseRules parses every rule, reporting the first invalid one.
func ParseRules(rules []string) (Rules, error) {
	out := make(Rules, 0, len(rules))

	for i, r := range rules {
		m, err := ParseRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}

		out = append(out, m)
	}

	return out, nil
}

// DefaultRules returns the parsed DefaultExcludes.
func DefaultRules() Rules {
	rules, err := ParseRules(DefaultExcludes)
	if err != nil {
		panic(err) // DefaultExcludes is static
	}

	return rules
}

// Match reports whether relPath is excluded. OS-specific separators are
// converted to slashes first.
func (r Rules) Match(relPath string) bool {
	_, ok := r.Explain(relPath)
	return ok
}

// Explain returns the first rule that excludes relPath.
func (r Rules) Explain(relPath string) (string, bool) {
	p := filepath.ToSlash(relPath)

	for _, m := range r {
		if m.Match(p) {
			return m.String(), true
		}
	}

	return "", false
}

// Strings returns the rules as written.
func (r Rules) Strings() []string {
	out := make([]string, len(r))
	for i, m := range r {
		out[i] = m.String()
	}

	return out
}
