// Package legacy rewrites historical spellings of IEEE-family citations
// into the notation the identifier grammar understands.
//
// A Table is an ordered list of rules applied once per input before
// parsing. Each rule is a global find-and-replace over the whole string,
// and rule i+1 operates on the output of rule i.
package legacy

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is a single rewrite. The set of implementations is closed:
// a rule is either a Literal or a Pattern.
type Rule interface {
	// Apply rewrites every occurrence in s.
	Apply(s string) string
	// Source returns the rule in rules-file syntax.
	Source() string

	isRule()
}

// Literal replaces every occurrence of a fixed substring.
type Literal struct {
	Pattern     string
	Replacement string
}

// Apply implements Rule. An empty pattern matches nothing.
func (l Literal) Apply(s string) string {
	if l.Pattern == "" {
		return s
	}
	return strings.ReplaceAll(s, l.Pattern, l.Replacement)
}

// Source implements Rule.
func (l Literal) Source() string {
	return fmt.Sprintf("%q => %q", l.Pattern, l.Replacement)
}

func (Literal) isRule() {}

// Pattern replaces every match of a regular expression. The replacement
// may reference capture groups as $1 or ${1}.
type Pattern struct {
	Regexp      *regexp.Regexp
	Replacement string
}

// NewPattern compiles expr into a Pattern rule.
func NewPattern(expr, replacement string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid rule pattern /%s/: %w", expr, err)
	}
	return Pattern{Regexp: re, Replacement: replacement}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(expr, replacement string) Pattern {
	p, err := NewPattern(expr, replacement)
	if err != nil {
		panic(err)
	}
	return p
}

// Apply implements Rule.
func (p Pattern) Apply(s string) string {
	if p.Regexp == nil {
		return s
	}
	return p.Regexp.ReplaceAllString(s, p.Replacement)
}

// Source implements Rule.
func (p Pattern) Source() string {
	expr := ""
	if p.Regexp != nil {
		expr = strings.ReplaceAll(p.Regexp.String(), "/", `\/`)
	}
	return fmt.Sprintf("/%s/ => %q", expr, p.Replacement)
}

func (Pattern) isRule() {}
