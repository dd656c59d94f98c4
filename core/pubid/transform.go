package pubid

import (
	"fmt"

	"github.com/FocuswithJustin/pubid/core/grammar"
)

// fields is the typed form of a parse tree. Labels the grammar can repeat
// are slices; every other label is a scalar that may appear once.
type fields struct {
	publisher    string
	copublishers []string
	status       string
	draftMarker  bool
	typ          string
	number       string
	parts        []string
	subparts     []string
	year         string
	published    *dateFields
	edition      *editionFields
	corrigendum  *revisionFields
	amendment    *revisionFields
	draft        *draftFields
	redline      bool
	relations    []relationFields
}

type dateFields struct {
	month, year string
}

type editionFields struct {
	version, year, month, day string
}

type revisionFields struct {
	number, year string
}

type draftFields struct {
	versions []string

	revision, month, day, year string
}

type relationFields struct {
	kind   string
	target fields
}

// flatten converts an identifier node into fields, rejecting labels that
// do not belong to an identifier and scalars that repeat.
func flatten(n *grammar.Node) (fields, error) {
	var f fields
	if n == nil || n.Label != grammar.LabelIdentifier {
		return f, fmt.Errorf("flatten: expected %s node", grammar.LabelIdentifier)
	}

	for _, c := range n.Children {
		var err error
		switch c.Label {
		case grammar.LabelPublisher:
			err = setOnce(&f.publisher, c)
		case grammar.LabelCopublisher:
			f.copublishers = append(f.copublishers, c.Value)
		case grammar.LabelStatus:
			err = setOnce(&f.status, c)
		case grammar.LabelDraftMarker:
			f.draftMarker = true
		case grammar.LabelType:
			err = setOnce(&f.typ, c)
		case grammar.LabelNumber:
			err = setOnce(&f.number, c)
		case grammar.LabelPart:
			f.parts = append(f.parts, c.Value)
		case grammar.LabelSubpart:
			f.subparts = append(f.subparts, c.Value)
		case grammar.LabelYear:
			err = setOnce(&f.year, c)
		case grammar.LabelRedline:
			f.redline = true

		case grammar.LabelPublished:
			if f.published != nil {
				return f, duplicate(c)
			}
			f.published = &dateFields{}
			err = leaves(c, map[grammar.Label]*string{
				grammar.LabelMonth: &f.published.month,
				grammar.LabelYear:  &f.published.year,
			}, nil)

		case grammar.LabelEdition:
			if f.edition != nil {
				return f, duplicate(c)
			}
			e := &editionFields{}
			f.edition = e
			err = leaves(c, map[grammar.Label]*string{
				grammar.LabelVersion: &e.version,
				grammar.LabelYear:    &e.year,
				grammar.LabelMonth:   &e.month,
				grammar.LabelDay:     &e.day,
			}, nil)

		case grammar.LabelCorrigendum, grammar.LabelAmendment:
			target := &f.corrigendum
			if c.Label == grammar.LabelAmendment {
				target = &f.amendment
			}
			if *target != nil {
				return f, duplicate(c)
			}
			r := &revisionFields{}
			*target = r
			err = leaves(c, map[grammar.Label]*string{
				grammar.LabelNumber: &r.number,
				grammar.LabelYear:   &r.year,
			}, nil)

		case grammar.LabelDraft:
			if f.draft != nil {
				return f, duplicate(c)
			}
			d := &draftFields{}
			f.draft = d
			err = leaves(c, map[grammar.Label]*string{
				grammar.LabelRevision: &d.revision,
				grammar.LabelMonth:    &d.month,
				grammar.LabelDay:      &d.day,
				grammar.LabelYear:     &d.year,
			}, map[grammar.Label]*[]string{
				grammar.LabelVersion: &d.versions,
			})

		case grammar.LabelRelation:
			var rel relationFields
			rel, err = flattenRelation(c)
			f.relations = append(f.relations, rel)

		default:
			err = fmt.Errorf("flatten: unexpected %s at offset %d", c.Label, c.Offset)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}

func flattenRelation(n *grammar.Node) (relationFields, error) {
	var rel relationFields
	kind := n.Child(grammar.LabelKind)
	target := n.Child(grammar.LabelIdentifier)
	if kind == nil || target == nil || len(n.Children) != 2 {
		return rel, fmt.Errorf("flatten: malformed relation at offset %d", n.Offset)
	}
	rel.kind = kind.Value

	var err error
	rel.target, err = flatten(target)
	return rel, err
}

// leaves copies the leaf children of a composite node into scalars and
// slices.
func leaves(n *grammar.Node, scalars map[grammar.Label]*string, lists map[grammar.Label]*[]string) error {
	for _, c := range n.Children {
		if dst, ok := scalars[c.Label]; ok {
			if err := setOnce(dst, c); err != nil {
				return err
			}
			continue
		}
		if dst, ok := lists[c.Label]; ok {
			*dst = append(*dst, c.Value)
			continue
		}
		return fmt.Errorf("flatten: unexpected %s in %s at offset %d", c.Label, n.Label, c.Offset)
	}
	return nil
}

func setOnce(dst *string, n *grammar.Node) error {
	if *dst != "" {
		return duplicate(n)
	}
	*dst = n.Value
	return nil
}

func duplicate(n *grammar.Node) error {
	return fmt.Errorf("flatten: repeated %s at offset %d", n.Label, n.Offset)
}
