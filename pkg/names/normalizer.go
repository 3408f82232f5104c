// Package names turns raw peak names into comparable records.
//
// A name is composed to NFC, split into upper-cased word tokens, rewritten by
// an ordered rule table and then partitioned: ignorable tokens are dropped,
// qualifier tokens (compass words, roman numerals, numbers) form the title,
// and the rest are concatenated into the normalized name.
//
//	n := names.Default()
//	name, title := n.Normalize("Mera Kangri I") // "MERAKHANGRI", "I"
package names

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/peakmap/internal/matcher"
)

// Normalizer canonicalizes raw names. It is immutable and safe for
// concurrent use.
type Normalizer struct {
	rewriter *matcher.Rewriter
	ignore   *matcher.MultiMatcher
	titles   *matcher.MultiMatcher
}

// NewNormalizer compiles rules into a Normalizer.
func NewNormalizer(rules *Rules) (*Normalizer, error) {
	if rules == nil {
		var err error
		if rules, err = DefaultRules(); err != nil {
			return nil, err
		}
	}

	rw, err := matcher.NewRewriter(rules.Rules)
	if err != nil {
		return nil, err
	}
	ignore, err := matcher.NewMultiMatcher(rules.Ignore, matcher.Auto)
	if err != nil {
		return nil, err
	}
	titles, err := matcher.NewMultiMatcher(rules.Titles, matcher.Auto)
	if err != nil {
		return nil, err
	}

	return &Normalizer{rewriter: rw, ignore: ignore, titles: titles}, nil
}

var (
	defaultOnce       sync.Once
	defaultNormalizer *Normalizer
)

// Default returns the Normalizer built from the embedded rules.
func Default() *Normalizer {
	defaultOnce.Do(func() {
		n, err := NewNormalizer(nil)
		if err != nil {
			panic("names: invalid embedded rules: " + err.Error())
		}
		defaultNormalizer = n
	})
	return defaultNormalizer
}

// Normalize returns the normalized name and the space-joined title tokens
// of raw. The name is empty when every token is ignorable or a title.
func (n *Normalizer) Normalize(raw string) (name, title string) {
	var nameParts, titleParts []string
	for _, tok := range n.rewriter.Rewrite(Tokens(raw)) {
		switch {
		case n.ignore.Match(tok):
		case n.titles.Match(tok):
			titleParts = append(titleParts, tok)
		default:
			nameParts = append(nameParts, tok)
		}
	}
	return strings.Join(nameParts, ""), strings.Join(titleParts, " ")
}

// Tokens splits raw into upper-cased word tokens. Every run of characters
// other than letters, digits and underscore separates tokens.
func Tokens(raw string) []string {
	upper := cases.Upper(language.Und)
	fields := strings.FieldsFunc(norm.NFC.String(raw), func(r rune) bool {
		return !isWord(r)
	})
	for i, f := range fields {
		fields[i] = upper.String(f)
	}
	return fields
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
