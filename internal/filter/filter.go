package filter

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a relative path is excluded.
// Matchers are stateless and safe for concurrent use.
type Matcher interface {
	// Match reports whether relPath (slash-separated) matches the rule.
	Match(relPath string) bool
	// String returns the rule as written.
	String() string
}

// SubstringMatcher matches paths containing a literal substring.
type SubstringMatcher struct {
	substr string
}

// NewSubstringMatcher creates a matcher for paths containing substr.
func NewSubstringMatcher(substr string) *SubstringMatcher {
	return &SubstringMatcher{substr: substr}
}

// Match implements Matcher.
func (m *SubstringMatcher) Match(relPath string) bool {
	return strings.Contains(relPath, m.substr)
}

func (m *SubstringMatcher) String() string { return m.substr }

// SuffixMatcher matches paths ending in an extension, written "*.ext".
type SuffixMatcher struct {
	ext string
}

// NewSuffixMatcher creates a matcher for paths ending in ext. A leading dot
// is added when missing.
func NewSuffixMatcher(ext string) *SuffixMatcher {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	return &SuffixMatcher{ext: ext}
}

// Match implements Matcher.
func (m *SuffixMatcher) Match(relPath string) bool {
	return strings.HasSuffix(relPath, m.ext)
}

func (m *SuffixMatcher) String() string { return "*" + m.ext }

// SegmentMatcher matches paths where any single segment equals name. The
// name may hold glob metacharacters, so "=.env*" matches ".env.local" and
// ".env.d/x" but never "monsters/.envoy-tower.json".
type SegmentMatcher struct {
	name string
}

// NewSegmentMatcher creates a matcher for the path segment name.
func NewSegmentMatcher(name string) *SegmentMatcher {
	return &SegmentMatcher{name: name}
}

// Match implements Matcher.
func (m *SegmentMatcher) Match(relPath string) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if seg == m.name {
			return true
		}

		if ok, err := doublestar.Match(m.name, seg); err == nil && ok {
			return true
		}
	}

	return false
}

func (m *SegmentMatcher) String() string { return "=" + m.name }

// GlobMatcher matches paths against a doublestar pattern.
type GlobMatcher struct {
	pattern string
}

// NewGlobMatcher creates a matcher for pattern. It fails on malformed
// patterns such as an unclosed character class.
func NewGlobMatcher(pattern string) (*GlobMatcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}

	return &GlobMatcher{pattern: pattern}, nil
}

// Match implements Matcher.
func (m *GlobMatcher) Match(relPath string) bool {
	ok, err := doublestar.Match(m.pattern, path.Clean(relPath))
	return err == nil && ok
}

func (m *GlobMatcher) String() string { return m.pattern }

// ParseRule converts a textual rule into a Matcher.
func ParseRule(rule string) (Matcher, error) {
	rule = strings.TrimSpace(rule)

	switch {
	case rule == "":
		return nil, fmt.Errorf("empty exclusion rule")
	case strings.HasPrefix(rule, "="):
		name := rule[1:]
		if name == "" || strings.Contains(name, "/") || !doublestar.ValidatePattern(name) {
			return nil, fmt.Errorf("invalid segment rule %q: want =<name>", rule)
		}

		return NewSegmentMatcher(name), nil
	case strings.HasPrefix(rule, "*.") && !hasGlobMeta(rule[2:]) && !strings.Contains(rule, "/"):
		return NewSuffixMatcher(rule[1:]), nil
	case hasGlobMeta(rule):
		return NewGlobMatcher(rule)
	default:
		return NewSubstringMatcher(rule), nil
	}
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
