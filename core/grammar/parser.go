package grammar

import (
	"strconv"
	"strings"
)

// Organizations lists the publisher codes the grammar recognizes, in the
// order they are tried.
var Organizations = []string{"IEEE", "AIEE", "ANSI", "ASA", "ASTM", "NCTA", "IEC", "ISO"}

// Relation kinds as they appear in LabelKind leaves. The empty kind is a
// bare alternate.
const (
	KindAmendmentTo   = "Amendment to"
	KindAmendedBy     = "as amended by"
	KindRevisionOf    = "Revision of"
	KindSupersedes    = "Supersedes"
	KindIncorporates  = "Incorporates"
	KindAdoptionOf    = "Adoption of"
	KindCorrigendumTo = "Corrigendum to"
)

var (
	statuses   = []string{"Active Unapproved", "Unapproved", "Approved"}
	types      = []string{"Standard", "Std", "STD"}
	connectors = []string{KindAmendmentTo, KindRevisionOf, KindSupersedes, KindIncorporates, KindAdoptionOf, KindCorrigendumTo}
)

// Parse parses a normalized citation. The whole input must be consumed.
func Parse(text string) (*Node, error) {
	p := &parser{in: text}
	n := p.identifier(true, false)
	if n != nil && p.pos == len(p.in) {
		return n, nil
	}
	if n != nil {
		p.expect("end of input")
	}
	return nil, &SyntaxError{Input: text, Offset: p.furthest, Expected: p.expected}
}

type parser struct {
	in  string
	pos int

	furthest int
	expected []string
}

// expect records a failed attempt at the current position.
func (p *parser) expect(what string) {
	switch {
	case p.pos > p.furthest:
		p.furthest = p.pos
		p.expected = append(p.expected[:0], what)
	case p.pos == p.furthest:
		for _, e := range p.expected {
			if e == what {
				return
			}
		}
		p.expected = append(p.expected, what)
	}
}

func (p *parser) lit(s string) bool {
	if strings.HasPrefix(p.in[p.pos:], s) {
		p.pos += len(s)
		return true
	}
	p.expect(strconv.Quote(s))
	return false
}

// oneOf consumes the first of options that matches.
func (p *parser) oneOf(options ...string) (string, bool) {
	for _, o := range options {
		if p.lit(o) {
			return o, true
		}
	}
	return "", false
}

func (p *parser) at(i int) byte {
	if i < 0 || i >= len(p.in) {
		return 0
	}
	return p.in[i]
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isAlnum(c byte) bool { return isDigit(c) || isUpper(c) || isLower(c) }

// digits consumes between lo and hi digits that are not followed by
// another digit.
func (p *parser) digits(lo, hi int, what string) (string, bool) {
	i := p.pos
	for i < len(p.in) && isDigit(p.in[i]) {
		i++
	}
	if n := i - p.pos; n < lo || n > hi {
		p.expect(what)
		return "", false
	}
	s := p.in[p.pos:i]
	p.pos = i
	return s, true
}

func (p *parser) year4() (string, bool) { return p.digits(4, 4, "four-digit year") }

// identifier = [organization ("/" organization)* " "] qualifiers number
// parts [year] [edition | published] revisions [draft] [redline] relations
//
// top enables the bare trailing alternates (" and ID", " ID"); requireOrg
// rejects identifiers whose publisher would be implied.
func (p *parser) identifier(top, requireOrg bool) *Node {
	start := p.pos
	n := &Node{Label: LabelIdentifier, Offset: start}

	if !p.publishers(n) && requireOrg {
		p.pos = start
		return nil
	}
	p.qualifiers(n)

	at := p.pos
	num, ok := p.number()
	if !ok {
		p.pos = start
		return nil
	}
	n.add(LabelNumber, num, at)

	p.parts(n)
	p.year(n)
	if !p.edition(n) {
		p.published(n)
	}
	p.revisions(n)
	p.draft(n)
	p.redline(n)
	p.relations(n, top)
	return n
}

func (p *parser) organization() (string, bool) {
	return p.oneOf(Organizations...)
}

func (p *parser) publishers(n *Node) bool {
	start := p.pos
	org, ok := p.organization()
	if !ok {
		return false
	}
	found := []*Node{{Label: LabelPublisher, Value: org, Offset: start}}
	for {
		s := p.pos
		if !p.lit("/ ") && !p.lit("/") {
			break
		}
		at := p.pos
		co, ok := p.organization()
		if !ok {
			p.pos = s
			break
		}
		found = append(found, &Node{Label: LabelCopublisher, Value: co, Offset: at})
	}
	if !p.lit(" ") {
		p.pos = start
		return false
	}
	n.Children = append(n.Children, found...)
	return true
}

// qualifiers = [status " "] ["Draft "] [type " "] ["No" ("." | " ") [" "]]
func (p *parser) qualifiers(n *Node) {
	for _, s := range statuses {
		at := p.pos
		if p.lit(s + " ") {
			n.add(LabelStatus, s, at)
			break
		}
	}
	if at := p.pos; p.lit("Draft ") {
		n.add(LabelDraftMarker, "Draft", at)
	}
	for _, t := range types {
		at := p.pos
		if p.lit(t + " ") {
			n.add(LabelType, t, at)
			break
		}
	}

	s := p.pos
	if _, ok := p.oneOf("No", "no"); ok {
		if _, ok := p.oneOf(".", " "); ok {
			p.lit(" ")
		} else {
			p.pos = s
		}
	}
}

// number = [0-9A-Z]* digit [0-9A-Z]* [a-z]*
//
// The digit keeps organization codes and keywords ("IEEE", "Std") from
// reading as a number when the publisher is omitted.
func (p *parser) number() (string, bool) {
	i := p.pos
	hasDigit := false
	for i < len(p.in) && (isDigit(p.in[i]) || isUpper(p.in[i])) {
		hasDigit = hasDigit || isDigit(p.in[i])
		i++
	}
	if !hasDigit {
		p.expect("number")
		return "", false
	}
	for i < len(p.in) && isLower(p.in[i]) {
		i++
	}
	s := p.in[p.pos:i]
	p.pos = i
	return s, true
}

// parts: the first segment is the part, any further ones are subparts.
// A segment that reads as a year ends the chain.
func (p *parser) parts(n *Node) {
	label := LabelPart
	for {
		if _, ok := p.yearAt(p.pos); ok {
			return
		}
		at := p.pos
		seg, ok := p.segment()
		if !ok {
			return
		}
		n.add(label, seg, at)
		label = LabelSubpart
	}
}

// segment = ("." | "-") [0-9A-Z]* digit [0-9A-Z]* [a-z]*, separator kept.
func (p *parser) segment() (string, bool) {
	c := p.at(p.pos)
	if c != '.' && c != '-' {
		p.expect("part")
		return "", false
	}
	i := p.pos + 1
	hasDigit := false
	for i < len(p.in) && (isDigit(p.in[i]) || isUpper(p.in[i])) {
		hasDigit = hasDigit || isDigit(p.in[i])
		i++
	}
	if !hasDigit {
		p.expect("part")
		return "", false
	}
	for i < len(p.in) && isLower(p.in[i]) {
		i++
	}
	s := p.in[p.pos:i]
	p.pos = i
	return s, true
}

// yearAt matches ("." | "-" | ":") (19|20)dd not followed by an
// alphanumeric, returning the end offset.
func (p *parser) yearAt(i int) (int, bool) {
	c := p.at(i)
	if c != '.' && c != '-' && c != ':' {
		return 0, false
	}
	if i+5 > len(p.in) {
		return 0, false
	}
	y := p.in[i+1 : i+5]
	for j := 0; j < 4; j++ {
		if !isDigit(y[j]) {
			return 0, false
		}
	}
	if !strings.HasPrefix(y, "19") && !strings.HasPrefix(y, "20") {
		return 0, false
	}
	if isAlnum(p.at(i + 5)) {
		return 0, false
	}
	return i + 5, true
}

func (p *parser) year(n *Node) bool {
	end, ok := p.yearAt(p.pos)
	if !ok {
		p.expect("year")
		return false
	}
	n.add(LabelYear, p.in[p.pos+1:end], p.pos+1)
	p.pos = end
	return true
}

// edition tries each edition shape in order and commits to the first
// that matches.
func (p *parser) edition(n *Node) bool {
	for _, shape := range []func() *Node{
		p.editionYearSuffix,
		p.editionVersioned,
		p.editionDated,
		p.editionMonthE,
		p.editionFirst,
	} {
		start := p.pos
		if e := shape(); e != nil {
			e.Offset = start
			n.Children = append(n.Children, e)
			return true
		}
		p.pos = start
	}
	return false
}

// ", 2004 Edition"
func (p *parser) editionYearSuffix() *Node {
	e := &Node{Label: LabelEdition}
	if !p.lit(", ") {
		return nil
	}
	at := p.pos
	y, ok := p.year4()
	if !ok || !p.lit(" Edition") {
		return nil
	}
	e.add(LabelYear, y, at)
	return e
}

// " Edition 2.0 2018-09", "-Edition 1.0 - 2007"
func (p *parser) editionVersioned() *Node {
	e := &Node{Label: LabelEdition}
	if _, ok := p.oneOf(" Edition ", "-Edition "); !ok {
		return nil
	}
	at := p.pos
	major, ok := p.digits(1, 3, "edition version")
	if !ok || !p.lit(".") {
		return nil
	}
	minor, ok := p.digits(1, 3, "edition version")
	if !ok {
		return nil
	}
	e.add(LabelVersion, major+"."+minor, at)
	if _, ok := p.oneOf(" - ", " "); !ok {
		return nil
	}
	if !p.dateTail(e) {
		return nil
	}
	return e
}

// " Edition 2018-02"
func (p *parser) editionDated() *Node {
	e := &Node{Label: LabelEdition}
	if _, ok := p.oneOf(" Edition ", "-Edition "); !ok {
		return nil
	}
	if !p.dateTail(e) {
		return nil
	}
	return e
}

// ", February 2018 (E)"
func (p *parser) editionMonthE() *Node {
	e := &Node{Label: LabelEdition}
	if !p.lit(", ") {
		return nil
	}
	at := p.pos
	m, ok := p.monthName()
	if !ok || !p.lit(" ") {
		return nil
	}
	e.add(LabelMonth, m, at)
	at = p.pos
	y, ok := p.year4()
	if !ok || !p.lit(" (E)") {
		return nil
	}
	e.add(LabelYear, y, at)
	return e
}

// " First edition 2002-11-01"
func (p *parser) editionFirst() *Node {
	e := &Node{Label: LabelEdition}
	if !p.lit(" First edition ") {
		return nil
	}
	e.add(LabelVersion, "First", p.pos-len("First edition "))
	if !p.dateTail(e) || e.Child(LabelMonth) == nil {
		return nil
	}
	return e
}

// dateTail = YYYY ["-" MM ["-" DD]]
func (p *parser) dateTail(e *Node) bool {
	at := p.pos
	y, ok := p.year4()
	if !ok {
		return false
	}
	e.add(LabelYear, y, at)

	s := p.pos
	if !p.lit("-") {
		return true
	}
	at = p.pos
	m, ok := p.digits(2, 2, "two-digit month")
	if !ok {
		p.pos = s
		return true
	}
	e.add(LabelMonth, m, at)

	s = p.pos
	if !p.lit("-") {
		return true
	}
	at = p.pos
	d, ok := p.digits(2, 2, "two-digit day")
	if !ok {
		p.pos = s
		return true
	}
	e.add(LabelDay, d, at)
	return true
}

// monthName = [A-Z][a-z]+ ["."], restricted to known month spellings.
func (p *parser) monthName() (string, bool) {
	i := p.pos
	if !isUpper(p.at(i)) {
		p.expect("month")
		return "", false
	}
	i++
	for i < len(p.in) && isLower(p.in[i]) {
		i++
	}
	if p.at(i) == '.' {
		i++
	}
	word := p.in[p.pos:i]
	if _, ok := MonthOf(word); !ok {
		p.expect("month")
		return "", false
	}
	p.pos = i
	return word, true
}

// published = ", " month " " YYYY, a publication date with no edition.
func (p *parser) published(n *Node) bool {
	start := p.pos
	pub := &Node{Label: LabelPublished, Offset: start}
	if !p.lit(", ") {
		return false
	}
	at := p.pos
	m, ok := p.monthName()
	if !ok || !p.lit(" ") {
		p.pos = start
		return false
	}
	pub.add(LabelMonth, m, at)
	at = p.pos
	y, ok := p.year4()
	if !ok {
		p.pos = start
		return false
	}
	pub.add(LabelYear, y, at)
	n.Children = append(n.Children, pub)
	return true
}

// revisions = ("/Cor" [" "] N [("-"|":") YYYY] | "/Amd" ["."|" "] N [...])*
func (p *parser) revisions(n *Node) {
	for {
		start := p.pos
		r := p.revision("/Cor", LabelCorrigendum, " ")
		if r == nil {
			r = p.revision("/Amd", LabelAmendment, ".", " ")
		}
		if r == nil {
			p.pos = start
			return
		}
		r.Offset = start
		n.Children = append(n.Children, r)
	}
}

func (p *parser) revision(prefix string, label Label, seps ...string) *Node {
	start := p.pos
	if !p.lit(prefix) {
		return nil
	}
	p.oneOf(seps...)
	r := &Node{Label: label}
	at := p.pos
	num, ok := p.digits(1, 3, "revision number")
	if !ok {
		p.pos = start
		return nil
	}
	r.add(LabelNumber, num, at)

	s := p.pos
	if _, ok := p.oneOf("-", ":"); ok {
		at = p.pos
		if y, ok := p.year4(); ok {
			r.add(LabelYear, y, at)
		} else {
			p.pos = s
		}
	}
	return r
}

// draft = "/D" version ("D" version)* ["." revision] [date]
func (p *parser) draft(n *Node) bool {
	start := p.pos
	if !p.lit("/D") {
		return false
	}
	d := &Node{Label: LabelDraft, Offset: start}
	at := p.pos
	v, ok := p.draftVersion()
	if !ok {
		p.pos = start
		return false
	}
	d.add(LabelVersion, v, at)
	for p.at(p.pos) == 'D' && isDigit(p.at(p.pos+1)) {
		p.pos++
		at = p.pos
		v, _ = p.draftVersion()
		d.add(LabelVersion, v, at)
	}

	s := p.pos
	if p.lit(".") {
		at = p.pos
		if r, ok := p.draftVersion(); ok {
			d.add(LabelRevision, r, at)
		} else {
			p.pos = s
		}
	}

	p.draftDate(d)
	n.Children = append(n.Children, d)
	return true
}

// draftVersion = digit (digit | letter)*, stopping before "D<digit>" (the
// next version) and before a letter that starts a word ("14June").
func (p *parser) draftVersion() (string, bool) {
	if !isDigit(p.at(p.pos)) {
		p.expect("draft version")
		return "", false
	}
	i := p.pos
	for i < len(p.in) {
		c := p.in[i]
		if isDigit(c) {
			i++
			continue
		}
		if !isUpper(c) && !isLower(c) {
			break
		}
		next := p.at(i + 1)
		if (c == 'D' && isDigit(next)) || isLower(next) {
			break
		}
		i++
	}
	s := p.in[p.pos:i]
	p.pos = i
	return s, true
}

// draftDate = [","] [" "] month [" " day ","] [","] " " (YYYY | YY)
//
//	| ", " YYYY
func (p *parser) draftDate(d *Node) {
	start := p.pos
	p.lit(",")
	p.lit(" ")

	at := p.pos
	if m, ok := p.monthName(); ok {
		date := []*Node{{Label: LabelMonth, Value: m, Offset: at}}

		s := p.pos
		if p.lit(" ") {
			at = p.pos
			if day, ok := p.digits(1, 2, "day"); ok && p.lit(",") {
				date = append(date, &Node{Label: LabelDay, Value: day, Offset: at})
			} else {
				p.pos = s
			}
		}
		p.lit(",")
		if p.lit(" ") {
			at = p.pos
			y, ok := p.year4()
			if !ok {
				y, ok = p.digits(2, 2, "two-digit year")
			}
			if ok {
				date = append(date, &Node{Label: LabelYear, Value: y, Offset: at})
				d.Children = append(d.Children, date...)
				return
			}
		}
	}

	p.pos = start
	if p.lit(", ") {
		at = p.pos
		if y, ok := p.year4(); ok {
			d.add(LabelYear, y, at)
			return
		}
	}
	p.pos = start
}

func (p *parser) redline(n *Node) {
	if at := p.pos; p.lit(" - Redline") {
		n.add(LabelRedline, "Redline", at)
	}
}

// relations = (" (" clause ")" | " and " ID | " " ORG-ID)*
//
// The bare forms are only tried for the top-level identifier.
func (p *parser) relations(n *Node, top bool) {
	for {
		start := p.pos
		if p.lit(" (") {
			if rels := p.clause(); rels != nil && p.lit(")") {
				n.Children = append(n.Children, rels...)
				continue
			}
		}
		p.pos = start

		if top {
			if p.lit(" and ") {
				if id := p.identifier(false, false); id != nil {
					n.Children = append(n.Children, relation("", id, start))
					continue
				}
			}
			p.pos = start

			if p.lit(" ") {
				if id := p.identifier(false, true); id != nil {
					n.Children = append(n.Children, relation("", id, start))
					continue
				}
			}
			p.pos = start
		}
		return
	}
}

func relation(kind string, id *Node, offset int) *Node {
	return &Node{
		Label:  LabelRelation,
		Offset: offset,
		Children: []*Node{
			{Label: LabelKind, Value: kind, Offset: offset},
			id,
		},
	}
}

// clause = group ("/" connector-group)*
func (p *parser) clause() []*Node {
	rels := p.group(false)
	if rels == nil {
		return nil
	}
	for {
		s := p.pos
		if !p.lit("/") {
			return rels
		}
		more := p.group(true)
		if more == nil {
			p.pos = s
			return rels
		}
		rels = append(rels, more...)
	}
}

// group = [connector " "] list [[","] " as amended by " list]
func (p *parser) group(requireConnector bool) []*Node {
	start := p.pos
	kind := ""
	for _, c := range connectors {
		if p.lit(c + " ") {
			kind = c
			break
		}
	}
	if kind == "" && requireConnector {
		p.pos = start
		return nil
	}

	ids := p.list()
	if ids == nil {
		p.pos = start
		return nil
	}
	rels := make([]*Node, 0, len(ids))
	for _, id := range ids {
		rels = append(rels, relation(kind, id, id.Offset))
	}

	if kind == KindAmendmentTo {
		s := p.pos
		if _, ok := p.oneOf(", as amended by ", " as amended by "); ok {
			if amended := p.list(); amended != nil {
				for _, id := range amended {
					rels = append(rels, relation(KindAmendedBy, id, id.Offset))
				}
			} else {
				p.pos = s
			}
		}
	}
	return rels
}

// list = ID ((", and " | ", " | " and ") ID | " " ORG-ID)*
func (p *parser) list() []*Node {
	first := p.identifier(false, false)
	if first == nil {
		return nil
	}
	ids := []*Node{first}
	for {
		id := p.listItem(", and ", false)
		if id == nil {
			id = p.listItem(", ", false)
		}
		if id == nil {
			id = p.listItem(" and ", false)
		}
		if id == nil {
			id = p.listItem(" ", true)
		}
		if id == nil {
			return ids
		}
		ids = append(ids, id)
	}
}

func (p *parser) listItem(sep string, requireOrg bool) *Node {
	start := p.pos
	if !p.lit(sep) {
		return nil
	}
	id := p.identifier(false, requireOrg)
	if id == nil {
		p.pos = start
	}
	return id
}
