// Package matcher compiles the glob and regex patterns of the name rules:
// single-token matchers, token sets built from several patterns, and
// ordered rewrite rules applied to a token stream.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternType selects how a pattern is interpreted.
type PatternType int

const (
	// Glob patterns use *, ? and [] and must match the whole token.
	Glob PatternType = iota
	// Regex patterns are RE2 expressions and may match part of a token.
	Regex
	// Auto picks Regex when the pattern uses regex syntax and Glob otherwise.
	Auto
)

// Matcher matches and rewrites single tokens. Implementations are
// immutable and safe for concurrent use.
type Matcher interface {
	Match(token string) bool
	// Replace rewrites token. Regex matchers substitute every match,
	// expanding $1-style references; glob matchers replace the whole token
	// when it matches.
	Replace(token, replacement string) string
	Pattern() string
	Type() PatternType
}

// New compiles pattern. Auto is resolved here, so Type never returns Auto.
func New(pt PatternType, pattern string) (Matcher, error) {
	if pt == Auto {
		pt = detect(pattern)
	}
	switch pt {
	case Glob:
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		return globMatcher(pattern), nil
	case Regex:
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("regex %q: %w", pattern, err)
		}
		return regexMatcher{re}, nil
	default:
		return nil, fmt.Errorf("pattern %q: unsupported type %v", pattern, pt)
	}
}

type globMatcher string

func (g globMatcher) Match(token string) bool {
	ok, _ := path.Match(string(g), token)
	return ok
}

func (g globMatcher) Replace(token, replacement string) string {
	if g.Match(token) {
		return replacement
	}
	return token
}

func (g globMatcher) Pattern() string   { return string(g) }
func (g globMatcher) Type() PatternType { return Glob }

type regexMatcher struct {
	re *regexp.Regexp
}

func (r regexMatcher) Match(token string) bool { return r.re.MatchString(token) }

func (r regexMatcher) Replace(token, replacement string) string {
	return r.re.ReplaceAllString(token, replacement)
}

func (r regexMatcher) Pattern() string   { return r.re.String() }
func (r regexMatcher) Type() PatternType { return Regex }

// detect treats anchors, escapes, groups, alternation and quantifiers
// other than the glob ones as regex syntax.
func detect(pattern string) PatternType {
	if strings.ContainsAny(pattern, `^$\(){}+|`) {
		return Regex
	}
	return Glob
}

// ParsePatternType reads a rule's type field. Empty means Auto.
func ParsePatternType(s string) (PatternType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "glob":
		return Glob, nil
	case "regex", "regexp":
		return Regex, nil
	}
	return Auto, fmt.Errorf("unknown pattern type %q", s)
}

func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	}
	return "unknown"
}

// MultiMatcher matches a token against a set of patterns.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher compiles every pattern with type pt.
func NewMultiMatcher(patterns []string, pt PatternType) (*MultiMatcher, error) {
	mm := &MultiMatcher{matchers: make([]Matcher, 0, len(patterns))}
	for _, p := range patterns {
		m, err := New(pt, p)
		if err != nil {
			return nil, err
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Match reports whether any pattern matches token.
func (mm *MultiMatcher) Match(token string) bool {
	for _, m := range mm.matchers {
		if m.Match(token) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (mm *MultiMatcher) Len() int {
	return len(mm.matchers)
}
