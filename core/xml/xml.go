// Package xml pulls standards citations out of XML metadata (publisher
// catalogs, document front matter) with XPath.
//
// The xmlquery library is used for parsing. It decodes with Go's
// encoding/xml, which never fetches external entities.
package xml

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is an element or attribute selected from a Document.
type Node struct {
	node *xmlquery.Node
}

// Parse reads an XML document from r.
func Parse(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Compile checks an XPath expression without running it.
func Compile(expr string) (*xpath.Expr, error) {
	e, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return e, nil
}

// XPath returns every node matching expr.
func (d *Document) XPath(expr string) ([]*Node, error) {
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	nodes := xmlquery.QuerySelectorAll(d.root, e)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// Name returns the element or attribute name.
func (n *Node) Name() string {
	return n.node.Data
}

// Text returns the node's text with runs of whitespace collapsed to a
// single space, so a citation wrapped across lines reads as one.
func (n *Node) Text() string {
	return strings.Join(strings.Fields(n.node.InnerText()), " ")
}

// Attr returns the value of a specific attribute.
func (n *Node) Attr(name string) string {
	return n.node.SelectAttr(name)
}

// Citations parses r and returns the non-empty text of every node
// matching expr, in document order.
func Citations(r io.Reader, expr string) ([]string, error) {
	e, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(r)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range xmlquery.QuerySelectorAll(doc.root, e) {
		if text := (&Node{node: n}).Text(); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}
