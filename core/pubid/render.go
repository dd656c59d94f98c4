package pubid

import (
	"fmt"
	"strings"
)

// RenderMode selects the textual form produced by Render.
type RenderMode int

const (
	// Canonical omits draft approval wording.
	Canonical RenderMode = iota
	// Full keeps approval status and the word "Draft" for drafts.
	Full
)

// String renders the canonical form.
func (id *Identifier) String() string {
	return id.Render(Canonical)
}

// Full renders the form that keeps draft approval wording.
func (id *Identifier) Full() string {
	return id.Render(Full)
}

// Render writes the identifier in the given mode. It never mutates id.
func (id *Identifier) Render(mode RenderMode) string {
	var sb strings.Builder
	id.render(&sb, mode)
	return sb.String()
}

func (id *Identifier) render(sb *strings.Builder, mode RenderMode) {
	sb.WriteString(string(id.Publisher))
	for _, co := range id.Copublishers {
		sb.WriteByte('/')
		sb.WriteString(string(co))
	}
	sb.WriteByte(' ')

	if mode == Full && id.IsDraft() {
		if id.Status != "" {
			sb.WriteString(id.Status)
			sb.WriteByte(' ')
		}
		sb.WriteString("Draft ")
	}
	if id.Type != "" {
		sb.WriteString(id.Type)
		sb.WriteByte(' ')
	}

	sb.WriteString(id.Number)
	for _, s := range id.Part {
		sb.WriteString(s.String())
	}
	for _, s := range id.Subpart {
		sb.WriteString(s.String())
	}
	if id.Year != "" {
		sb.WriteByte('-')
		sb.WriteString(id.Year)
	}

	writeRevision(sb, "/Cor ", id.Corrigendum)
	writeRevision(sb, "/Amd ", id.Amendment)
	if id.Draft != nil {
		id.Draft.render(sb)
	}
	if id.Edition != nil {
		id.Edition.render(sb)
	}
	if id.Redline {
		sb.WriteString(" - Redline")
	}
	renderRelations(sb, id.Alternative, mode)
}

func writeRevision(sb *strings.Builder, prefix string, r *Revision) {
	if r == nil {
		return
	}
	sb.WriteString(prefix)
	sb.WriteString(r.Number)
	if r.Year != "" {
		sb.WriteByte('-')
		sb.WriteString(r.Year)
	}
}

func (d *Draft) render(sb *strings.Builder) {
	sb.WriteString("/D")
	sb.WriteString(strings.Join(d.Versions, "D"))
	if d.Revision != "" {
		sb.WriteByte('.')
		sb.WriteString(d.Revision)
	}

	switch {
	case d.Month != 0:
		sb.WriteString(", ")
		sb.WriteString(d.Month.String())
		if d.Day > 0 {
			fmt.Fprintf(sb, " %d,", d.Day)
		}
		if d.Year != "" {
			sb.WriteByte(' ')
			sb.WriteString(d.Year)
		}
	case d.Year != "":
		sb.WriteString(", ")
		sb.WriteString(d.Year)
	}
}

func (e *Edition) render(sb *strings.Builder) {
	sb.WriteString(" Edition")
	switch e.Version {
	case "":
	case "First":
		sb.WriteString(" 1.0")
	default:
		sb.WriteByte(' ')
		sb.WriteString(e.Version)
	}
	if e.Year == "" {
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(e.Year)
	if e.Month != 0 {
		fmt.Fprintf(sb, "-%02d", int(e.Month))
		if e.Day > 0 {
			fmt.Fprintf(sb, "-%02d", e.Day)
		}
	}
}

type relationGroup struct {
	kind RelationKind
	ids  []Identifier
}

// groupRelations merges consecutive relations of the same kind.
func groupRelations(rels []Relation) []relationGroup {
	var groups []relationGroup
	for _, r := range rels {
		if n := len(groups); n > 0 && groups[n-1].kind == r.Kind {
			groups[n-1].ids = append(groups[n-1].ids, r.Identifier)
			continue
		}
		groups = append(groups, relationGroup{kind: r.Kind, ids: []Identifier{r.Identifier}})
	}
	return groups
}

// renderRelations writes the parenthetical clauses. An "as amended by"
// group continues the amendment it follows, and an Incorporates group
// shares the clause of a preceding labelled group.
func renderRelations(sb *strings.Builder, rels []Relation, mode RenderMode) {
	groups := groupRelations(rels)
	open := false
	for i, g := range groups {
		var prev RelationKind = -1
		if i > 0 {
			prev = groups[i-1].kind
		}

		switch {
		case g.kind == AmendedBy && prev == AmendmentTo:
			sb.WriteString(" as amended by ")
			joinAmended(sb, g.ids, mode)
			continue
		case g.kind == Incorporates && prev > Unlabelled:
			sb.WriteString("/Incorporates ")
			joinLabelled(sb, g.ids, mode)
			continue
		}

		if open {
			sb.WriteByte(')')
		}
		sb.WriteString(" (")
		open = true

		if g.kind == Unlabelled {
			joinWith(sb, g.ids, mode, ", ")
			continue
		}
		sb.WriteString(g.kind.String())
		sb.WriteByte(' ')
		if g.kind == AmendedBy {
			joinAmended(sb, g.ids, mode)
		} else {
			joinLabelled(sb, g.ids, mode)
		}
	}
	if open {
		sb.WriteByte(')')
	}
}

func joinWith(sb *strings.Builder, ids []Identifier, mode RenderMode, sep string) {
	for i := range ids {
		if i > 0 {
			sb.WriteString(sep)
		}
		ids[i].render(sb, mode)
	}
}

// joinLabelled uses " and " for a pair and commas otherwise. A longer
// group drops any "and" the input had before its last member, so
// "IEEE 2, IEEE 3, and IEEE 4" renders as "IEEE 2, IEEE 3, IEEE 4".
// Only amendment chains keep the serial "and" (see joinAmended).
func joinLabelled(sb *strings.Builder, ids []Identifier, mode RenderMode) {
	if len(ids) == 2 {
		joinWith(sb, ids, mode, " and ")
		return
	}
	joinWith(sb, ids, mode, ", ")
}

// joinAmended writes "A, B, and C" (serial comma, "and" before the last).
func joinAmended(sb *strings.Builder, ids []Identifier, mode RenderMode) {
	for i := range ids {
		switch {
		case i == 0:
		case i == len(ids)-1:
			sb.WriteString(", and ")
		default:
			sb.WriteString(", ")
		}
		ids[i].render(sb, mode)
	}
}
