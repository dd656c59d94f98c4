// Package grammar parses normalized IEEE-family citation strings into a
// labelled parse tree.
//
// The grammar is parsing-expression style: alternatives are tried in a
// fixed order and the first one that matches wins, with backtracking to
// the start of the alternative on failure. No production reaches past
// the text it is given, so a Node tree is a pure function of its input.
package grammar

import (
	"strconv"
	"strings"
)

// Label names the role of a node in the parse tree.
type Label string

// Labels produced by Parse.
const (
	LabelIdentifier  Label = "identifier"
	LabelPublisher   Label = "publisher"
	LabelCopublisher Label = "copublisher"
	LabelStatus      Label = "status"
	LabelDraftMarker Label = "draft_marker"
	LabelType        Label = "type"
	LabelNumber      Label = "number"
	LabelPart        Label = "part"
	LabelSubpart     Label = "subpart"
	LabelYear        Label = "year"
	LabelPublished   Label = "published"
	LabelEdition     Label = "edition"
	LabelCorrigendum Label = "corrigendum"
	LabelAmendment   Label = "amendment"
	LabelDraft       Label = "draft"
	LabelRedline     Label = "redline"
	LabelRelation    Label = "relation"

	// Leaves inside composite nodes.
	LabelKind     Label = "kind"
	LabelVersion  Label = "version"
	LabelRevision Label = "revision"
	LabelMonth    Label = "month"
	LabelDay      Label = "day"
)

// Node is one labelled span of the input. Leaves carry Value; composite
// nodes carry Children in input order.
type Node struct {
	Label    Label
	Value    string
	Offset   int
	Children []*Node
}

func (n *Node) add(label Label, value string, offset int) *Node {
	child := &Node{Label: label, Value: value, Offset: offset}
	n.Children = append(n.Children, child)
	return child
}

// Child returns the first child with the given label, or nil.
func (n *Node) Child(label Label) *Node {
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// String renders the tree as an s-expression, e.g.
// (identifier (publisher "IEEE") (number "142") (year "1956")).
func (n *Node) String() string {
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	sb.WriteByte('(')
	sb.WriteString(string(n.Label))
	if len(n.Children) == 0 {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Value))
	}
	for _, c := range n.Children {
		sb.WriteByte(' ')
		c.write(sb)
	}
	sb.WriteByte(')')
}
