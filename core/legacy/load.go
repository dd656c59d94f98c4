package legacy

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gopkg.in/yaml.v3"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

// rulesFile is a parsed rules file: one `lhs => "replacement"` per entry.
//
//nolint:govet // participle grammar tags are not standard struct tags
type rulesFile struct {
	Entries []*ruleEntry `@@*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type ruleEntry struct {
	Pos         lexer.Position
	Literal     *string `(  @String`
	Regexp      *string ` | @Regexp )`
	Replacement string  `"=>" @String`
}

// rulesLexer tokenizes rules files. Order matters: comments must win over
// everything else at the start of a token.
var rulesLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\r\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\\r\n])*"`},
	{Name: "Regexp", Pattern: `/(\\.|[^/\\\r\n])+/`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// rulesParser is the participle parser for rules files.
var rulesParser = participle.MustBuild[rulesFile](
	participle.Lexer(rulesLexer),
	participle.Unquote("String"),
	participle.Elide("Comment", "Whitespace"),
)

// ParseRules reads a rules file. name is used in error messages.
//
//	"IEEP" => "IEEE P"
//	/-D([0-9])/ => "/D${1}"
func ParseRules(name string, r io.Reader) (*Table, error) {
	parsed, err := rulesParser.Parse(name, r)
	if err != nil {
		return nil, errs.NewParse("rules", name, err)
	}

	rules := make([]Rule, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		if e.Literal != nil {
			if *e.Literal == "" {
				return nil, errs.NewParse("rules", name, fmt.Errorf("%s: empty literal pattern", e.Pos))
			}
			rules = append(rules, Literal{Pattern: *e.Literal, Replacement: e.Replacement})
			continue
		}
		expr := strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(*e.Regexp, "/"), "/"), `\/`, "/")
		p, err := NewPattern(expr, e.Replacement)
		if err != nil {
			return nil, errs.NewParse("rules", name, fmt.Errorf("%s: %w", e.Pos, err))
		}
		rules = append(rules, p)
	}
	return NewTable(rules...), nil
}

// LoadYAML reads an ordered YAML mapping of pattern to replacement.
// Keys wrapped in slashes are regular expressions; all others are
// literal substrings. Rules keep the order of the document.
func LoadYAML(r io.Reader) (*Table, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewTable(), nil
		}
		return nil, errs.NewParse("YAML", "", err)
	}
	if len(doc.Content) == 0 {
		return NewTable(), nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errs.NewParse("YAML", "", fmt.Errorf("line %d: legacy codes must be a mapping", root.Line))
	}

	rules := make([]Rule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode || value.Kind != yaml.ScalarNode {
			return nil, errs.NewParse("YAML", "", fmt.Errorf("line %d: pattern and replacement must be scalars", key.Line))
		}
		rule, err := sniffRule(key.Value, value.Value)
		if err != nil {
			return nil, errs.NewParse("YAML", "", fmt.Errorf("line %d: %w", key.Line, err))
		}
		rules = append(rules, rule)
	}
	return NewTable(rules...), nil
}

// sniffRule decides the variant of a YAML entry once, at load time.
func sniffRule(pattern, replacement string) (Rule, error) {
	if len(pattern) > 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		return NewPattern(pattern[1:len(pattern)-1], replacement)
	}
	if pattern == "" {
		return nil, fmt.Errorf("empty literal pattern")
	}
	return Literal{Pattern: pattern, Replacement: replacement}, nil
}

// LoadFile loads a table from disk. Files ending in .yaml or .yml use the
// YAML mapping format; everything else uses rules syntax.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.NewIO("open", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		t, err := LoadYAML(f)
		if err != nil {
			return nil, errs.Wrapf(err, "load %s", path)
		}
		return t, nil
	default:
		return ParseRules(path, f)
	}
}
