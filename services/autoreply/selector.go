package autoreply

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type compiledRule struct {
	rule     Rule
	keywords []string // normalized, padded with spaces
}

// Selector picks the reply rule for a message: first match wins over the
// table's order.
type Selector struct {
	rules    []compiledRule
	fallback Rule
}

func NewSelector(table *RuleTable) *Selector {
	s := &Selector{fallback: table.Fallback}
	for _, rule := range table.Rules {
		compiled := compiledRule{rule: rule}
		for _, kw := range rule.Keywords {
			if norm := Normalize(kw); norm != "" {
				compiled.keywords = append(compiled.keywords, " "+norm+" ")
			}
		}
		s.rules = append(s.rules, compiled)
	}
	return s
}

// Select returns the first rule whose keywords appear in text, or the
// fallback rule. Empty or whitespace-only text gets the fallback.
func (s *Selector) Select(text string) Rule {
	norm := Normalize(text)
	if norm == "" {
		return s.fallback
	}
	padded := " " + norm + " "
	for _, compiled := range s.rules {
		for _, kw := range compiled.keywords {
			if strings.Contains(padded, kw) {
				return compiled.rule
			}
		}
	}
	return s.fallback
}

// Normalize lowercases text, drops accents and reduces it to single-space
// separated words. Anything that is not a letter or digit separates words.
func Normalize(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	words := strings.FieldsFunc(strings.ToLower(folded), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
