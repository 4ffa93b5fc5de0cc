// Package matcher provides the text and amount primitives used by
// categorization rules.
//
// A pattern is either a literal, matched by substring containment, or a
// regular expression matched anywhere in the value. Both are case-insensitive
// unless the pattern is marked case sensitive:
//   - literal "coffee" matches "Starbucks Coffee"
//   - regex "^uber\s+eats" matches "UBER  Eats 1234"
//   - literal "NETFLIX" (case sensitive) does not match "netflix"
//
// Example usage:
//
//	cache := matcher.NewCache()
//	m, err := cache.Get(matcher.Pattern{Text: "coffee"})
//	if err == nil && m.Match(txn.Description) {
//		// rule applies
//	}
package matcher

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptyPattern is returned when compiling a blank pattern.
var ErrEmptyPattern = errors.New("pattern is empty")

// Matcher tests a field value against a compiled pattern.
type Matcher interface {
	Match(value string) bool
}

type literal struct {
	text          string
	caseSensitive bool
}

func (l literal) Match(value string) bool {
	if l.caseSensitive {
		return strings.Contains(value, l.text)
	}
	return strings.Contains(strings.ToLower(value), l.text)
}

type expression struct {
	re *regexp.Regexp
}

func (e expression) Match(value string) bool {
	return e.re.MatchString(value)
}

// Compile builds a Matcher for p.
func Compile(p Pattern) (Matcher, error) {
	if p.Text == "" {
		return nil, ErrEmptyPattern
	}

	if !p.IsRegex {
		text := p.Text
		if !p.CaseSensitive {
			text = strings.ToLower(text)
		}
		return literal{text: text, caseSensitive: p.CaseSensitive}, nil
	}

	expr := p.Text
	if !p.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", p.Text, err)
	}
	return expression{re: re}, nil
}
