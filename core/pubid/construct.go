package pubid

import (
	"fmt"
	"strconv"
	"time"

	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/grammar"
)

// ConstructionError reports a parse tree that does not describe a valid
// identifier.
type ConstructionError struct {
	Field   string
	Message string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot construct identifier: %s: %s", e.Field, e.Message)
}

// Unwrap lets callers test for errors.ErrInvalidInput.
func (e *ConstructionError) Unwrap() error {
	return errs.ErrInvalidInput
}

// construct interprets flattened fields. It folds corrigendum clauses,
// turns a differing publication date into an adoption relation, and
// back-fills draft dates.
func construct(f fields) (*Identifier, error) {
	if f.number == "" {
		return nil, &ConstructionError{Field: "number", Message: "missing"}
	}

	id := &Identifier{
		Publisher:   IEEE,
		Status:      f.status,
		DraftMarker: f.draftMarker,
		Type:        f.typ,
		Number:      f.number,
		Year:        f.year,
		Redline:     f.redline,
	}

	if f.publisher != "" {
		org, err := organization(f.publisher)
		if err != nil {
			return nil, err
		}
		id.Publisher = org
	}
	for _, co := range f.copublishers {
		org, err := organization(co)
		if err != nil {
			return nil, err
		}
		id.Copublishers = append(id.Copublishers, org)
	}

	for _, p := range f.parts {
		id.Part = append(id.Part, segment(p))
	}
	for _, p := range f.subparts {
		id.Subpart = append(id.Subpart, segment(p))
	}

	if f.corrigendum != nil {
		id.Corrigendum = &Revision{Number: f.corrigendum.number, Year: f.corrigendum.year}
	}
	if f.amendment != nil {
		id.Amendment = &Revision{Number: f.amendment.number, Year: f.amendment.year}
	}

	if f.edition != nil {
		e, err := edition(f.edition)
		if err != nil {
			return nil, err
		}
		id.Edition = e
	}
	if f.draft != nil {
		d, err := draft(f.draft)
		if err != nil {
			return nil, err
		}
		id.Draft = d
	}

	if f.published != nil {
		publish(id, f.published.year)
	}

	for _, rel := range f.relations {
		target, err := construct(rel.target)
		if err != nil {
			return nil, err
		}
		if rel.kind == grammar.KindCorrigendumTo {
			foldCorrigendum(id, target)
			continue
		}
		kind, ok := relationKindOf(rel.kind)
		if !ok {
			return nil, &ConstructionError{Field: "relation", Message: fmt.Sprintf("unknown connector %q", rel.kind)}
		}
		id.Alternative = append(id.Alternative, Relation{Kind: kind, Identifier: *target})
	}
	return id, nil
}

func organization(code string) (Organization, error) {
	org, err := ParseOrganization(code)
	if err != nil {
		return "", &ConstructionError{Field: "publisher", Message: err.Error()}
	}
	return org, nil
}

// segment splits the leading separator off a grammar part value.
func segment(v string) Segment {
	if v != "" && (v[0] == '.' || v[0] == '-') {
		return Segment{Sep: v[:1], Value: v[1:]}
	}
	return Segment{Value: v}
}

// publish applies a trailing ", Month YYYY" publication date. A citation
// without a year takes the publication year; one whose year differs is
// an adoption of the earlier document.
func publish(id *Identifier, year string) {
	if year == "" || year == id.Year {
		return
	}
	if id.Year != "" {
		original := Identifier{
			Publisher:    id.Publisher,
			Copublishers: append([]Organization(nil), id.Copublishers...),
			Type:         id.Type,
			Number:       id.Number,
			Part:         append([]Segment(nil), id.Part...),
			Subpart:      append([]Segment(nil), id.Subpart...),
			Year:         id.Year,
		}
		id.Alternative = append([]Relation{{Kind: AdoptionOf, Identifier: original}}, id.Alternative...)
	}
	id.Year = year
}

// foldCorrigendum applies "(Corrigendum to X)": the base takes X's year
// and its own year becomes the corrigendum year.
func foldCorrigendum(id, target *Identifier) {
	outer := id.Year
	id.Year = target.Year
	id.Corrigendum = &Revision{Number: "1", Year: outer}
}

func edition(f *editionFields) (*Edition, error) {
	e := &Edition{Version: f.version, Year: f.year}
	if f.month != "" {
		m, err := monthOf(f.month)
		if err != nil {
			return nil, err
		}
		e.Month = m
	}
	if f.day != "" {
		d, err := dayOf(f.day)
		if err != nil {
			return nil, err
		}
		e.Day = d
	}
	return e, nil
}

func draft(f *draftFields) (*Draft, error) {
	d := &Draft{
		Versions: f.versions,
		Revision: f.revision,
		Year:     expandYear(f.year),
	}
	if f.month != "" {
		m, err := monthOf(f.month)
		if err != nil {
			return nil, err
		}
		d.Month = m
	}
	if f.day != "" {
		day, err := dayOf(f.day)
		if err != nil {
			return nil, err
		}
		d.Day = day
	}
	backfillDraftDate(d)
	return d, nil
}

// backfillDraftDate reads a lone six-digit version as MMYYYY when the
// draft carries no date of its own.
func backfillDraftDate(d *Draft) {
	if len(d.Versions) != 1 || d.Month != 0 || d.Year != "" {
		return
	}
	v := d.Versions[0]
	if len(v) != 6 {
		return
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return
		}
	}
	month, _ := strconv.Atoi(v[:2])
	if month < 1 || month > 12 {
		return
	}
	d.Month = time.Month(month)
	d.Year = v[2:]
}

// expandYear widens a two-digit draft year: 00-49 are 20xx, 50-99 19xx.
func expandYear(y string) string {
	if len(y) != 2 {
		return y
	}
	n, err := strconv.Atoi(y)
	if err != nil {
		return y
	}
	if n < 50 {
		return strconv.Itoa(2000 + n)
	}
	return strconv.Itoa(1900 + n)
}

// monthOf accepts a month name or a numeral.
func monthOf(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, &ConstructionError{Field: "month", Message: fmt.Sprintf("%q out of range", s)}
		}
		return time.Month(n), nil
	}
	if m, ok := grammar.MonthOf(s); ok {
		return m, nil
	}
	return 0, &ConstructionError{Field: "month", Message: fmt.Sprintf("unknown month %q", s)}
}

func dayOf(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 31 {
		return 0, &ConstructionError{Field: "day", Message: fmt.Sprintf("%q out of range", s)}
	}
	return n, nil
}
