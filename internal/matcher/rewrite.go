package matcher

import (
	"fmt"
	"strings"
)

// Rule rewrites tokens that match Pattern. The replacement may expand a
// token into several space-separated tokens.
type Rule struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Type        string `yaml:"type,omitempty" validate:"omitempty,oneof=glob regex auto"`
	Replacement string `yaml:"replacement"`
	// SkipLeading leaves the first token of the input untouched.
	SkipLeading bool `yaml:"skip_leading,omitempty"`
}

type compiledRule struct {
	rule    Rule
	matcher Matcher
}

// Rewriter applies an ordered list of rules to a token stream. Each rule
// sees the output of the previous one.
type Rewriter struct {
	rules []compiledRule
}

// NewRewriter compiles rules in order.
func NewRewriter(rules []Rule) (*Rewriter, error) {
	rw := &Rewriter{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		pt, err := ParsePatternType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		m, err := New(pt, r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rw.rules = append(rw.rules, compiledRule{rule: r, matcher: m})
	}
	return rw, nil
}

// Rewrite applies every rule to tokens and returns the resulting tokens.
// Tokens that a rule rewrites to the empty string are dropped.
func (rw *Rewriter) Rewrite(tokens []string) []string {
	for _, cr := range rw.rules {
		out := make([]string, 0, len(tokens))
		for i, tok := range tokens {
			if (i == 0 && cr.rule.SkipLeading) || !cr.matcher.Match(tok) {
				out = append(out, tok)
				continue
			}
			out = append(out, strings.Fields(cr.matcher.Replace(tok, cr.rule.Replacement))...)
		}
		tokens = out
	}
	return tokens
}

// Len returns the number of compiled rules.
func (rw *Rewriter) Len() int {
	return len(rw.rules)
}
