package legacy

import (
	_ "embed"
	"strings"
	"sync"
)

// Table is an ordered, immutable list of rewrite rules.
// It is safe for concurrent use.
type Table struct {
	rules []Rule
}

// NewTable returns a table applying rules in the given order.
func NewTable(rules ...Rule) *Table {
	return &Table{rules: append([]Rule(nil), rules...)}
}

// Normalize applies every rule in table order. It never fails: rules that
// do not match leave the string unchanged.
func (t *Table) Normalize(raw string) string {
	if t == nil {
		return raw
	}
	s := raw
	for _, r := range t.rules {
		s = r.Apply(s)
	}
	return s
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// Rules returns a copy of the rules in application order.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	return append([]Rule(nil), t.rules...)
}

// String renders the table in rules-file syntax.
func (t *Table) String() string {
	var sb strings.Builder
	for _, r := range t.Rules() {
		sb.WriteString(r.Source())
		sb.WriteByte('\n')
	}
	return sb.String()
}

//go:embed default.rules
var defaultRules string

var defaultTable = sync.OnceValue(func() *Table {
	t, err := ParseRules("default.rules", strings.NewReader(defaultRules))
	if err != nil {
		panic("legacy: embedded default.rules: " + err.Error())
	}
	return t
})

// Default returns the built-in table of known legacy spellings.
func Default() *Table {
	return defaultTable()
}
