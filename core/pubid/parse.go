package pubid

import (
	"sync"

	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/grammar"
	"github.com/FocuswithJustin/pubid/core/legacy"
)

// Parser turns citation strings into identifiers. A Parser is immutable
// and safe for concurrent use.
type Parser struct {
	table *legacy.Table
}

// NewParser returns a parser that normalizes input with table, or with
// the embedded default table when table is nil.
func NewParser(table *legacy.Table) *Parser {
	if table == nil {
		table = legacy.Default()
	}
	return &Parser{table: table}
}

// Table returns the legacy code table the parser applies.
func (p *Parser) Table() *legacy.Table {
	return p.table
}

// Parse normalizes s and decodes it. Failures are *errors.ParseError
// wrapping either a *grammar.SyntaxError or a *ConstructionError.
func (p *Parser) Parse(s string) (*Identifier, error) {
	tree, err := grammar.Parse(p.table.Normalize(s))
	if err != nil {
		return nil, errs.NewParse("pubid", s, err)
	}
	f, err := flatten(tree)
	if err != nil {
		return nil, errs.NewParse("pubid", s, err)
	}
	id, err := construct(f)
	if err != nil {
		return nil, errs.NewParse("pubid", s, err)
	}
	return id, nil
}

var defaultParser = sync.OnceValue(func() *Parser { return NewParser(nil) })

// Parse decodes s with the default legacy code table.
func Parse(s string) (*Identifier, error) {
	return defaultParser().Parse(s)
}

// MustParse is like Parse but panics on error.
func MustParse(s string) *Identifier {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Normalize parses s and returns its canonical form.
func Normalize(s string) (string, error) {
	id, err := Parse(s)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
