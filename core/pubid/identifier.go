// Package pubid parses, normalizes and renders identifiers of IEEE-family
// standards documents.
//
// A citation such as "IEEE Unapproved Draft Std P1616a/D4, Jan 2010" is
// rewritten by the legacy code table, parsed by package grammar, and
// decoded into an Identifier. Identifier.String renders the canonical
// form ("IEEE Std P1616a/D4, January 2010"); Identifier.Full keeps the
// draft approval wording.
package pubid

import (
	"fmt"
	"slices"
	"time"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

// Organization is a publisher code.
type Organization string

// Recognized publishers.
const (
	IEEE Organization = "IEEE"
	AIEE Organization = "AIEE"
	ANSI Organization = "ANSI"
	ASA  Organization = "ASA"
	ASTM Organization = "ASTM"
	NCTA Organization = "NCTA"
	IEC  Organization = "IEC"
	ISO  Organization = "ISO"
)

// Organizations lists every recognized publisher.
var Organizations = []Organization{IEEE, AIEE, ANSI, ASA, ASTM, NCTA, IEC, ISO}

// ParseOrganization validates a publisher code.
func ParseOrganization(s string) (Organization, error) {
	org := Organization(s)
	if !slices.Contains(Organizations, org) {
		return "", errs.NewValidation("publisher", fmt.Sprintf("unknown organization %q", s))
	}
	return org, nil
}

// Segment is one sub-number of a standard, such as ".15" or "-5". The
// separator is kept so "1244-5" and "1244.5" render as written.
type Segment struct {
	Sep   string `json:"sep,omitempty"`
	Value string `json:"value"`
}

func (s Segment) String() string {
	if s.Sep == "" {
		return "." + s.Value
	}
	return s.Sep + s.Value
}

// Revision is a numbered corrigendum or amendment of a base standard.
type Revision struct {
	Number string `json:"number"`
	Year   string `json:"year,omitempty"`
}

// Edition is a labelled edition. Version is "major.minor", "First", or
// empty; Month and Day are zero when absent.
type Edition struct {
	Version string     `json:"version,omitempty"`
	Year    string     `json:"year"`
	Month   time.Month `json:"month,omitempty"`
	Day     int        `json:"day,omitempty"`
}

// Draft identifies a pre-publication version. Versions holds each
// "D"-delimited designator in order ("D4D5" is ["4", "5"]).
type Draft struct {
	Versions []string   `json:"versions"`
	Revision string     `json:"revision,omitempty"`
	Month    time.Month `json:"month,omitempty"`
	Day      int        `json:"day,omitempty"`
	Year     string     `json:"year,omitempty"`
}

// RelationKind is the connector linking an identifier to a related one.
type RelationKind int

// Relation kinds. Unlabelled is a bare parenthetical alternate.
const (
	Unlabelled RelationKind = iota
	AmendmentTo
	AmendedBy
	RevisionOf
	Supersedes
	Incorporates
	AdoptionOf
)

var relationNames = [...]struct{ text, token string }{
	Unlabelled:   {"", "alternate"},
	AmendmentTo:  {"Amendment to", "amendment_to"},
	AmendedBy:    {"as amended by", "amended_by"},
	RevisionOf:   {"Revision of", "revision_of"},
	Supersedes:   {"Supersedes", "supersedes"},
	Incorporates: {"Incorporates", "incorporates"},
	AdoptionOf:   {"Adoption of", "adoption_of"},
}

// String returns the connector as it appears in citations.
func (k RelationKind) String() string {
	if int(k) < len(relationNames) {
		return relationNames[k].text
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

func (k RelationKind) MarshalText() ([]byte, error) {
	if int(k) >= len(relationNames) {
		return nil, errs.NewValidation("kind", k.String())
	}
	return []byte(relationNames[k].token), nil
}

func (k *RelationKind) UnmarshalText(b []byte) error {
	for i, n := range relationNames {
		if n.token == string(b) {
			*k = RelationKind(i)
			return nil
		}
	}
	return errs.NewValidation("kind", fmt.Sprintf("unknown relation kind %q", b))
}

// relationKindOf maps a grammar connector to its kind.
func relationKindOf(connector string) (RelationKind, bool) {
	for i, n := range relationNames {
		if n.text == connector {
			return RelationKind(i), true
		}
	}
	return 0, false
}

// Relation links an identifier to a related standard it owns.
type Relation struct {
	Kind       RelationKind `json:"kind"`
	Identifier Identifier   `json:"identifier"`
}

// Identifier is a decoded standards identifier. Number and Publisher are
// always set on values returned by Parse.
type Identifier struct {
	Publisher    Organization   `json:"publisher"`
	Copublishers []Organization `json:"copublishers,omitempty"`
	Status       string         `json:"status,omitempty"`
	DraftMarker  bool           `json:"draft_marker,omitempty"`
	Type         string         `json:"type,omitempty"`
	Number       string         `json:"number"`
	Part         []Segment      `json:"part,omitempty"`
	Subpart      []Segment      `json:"subpart,omitempty"`
	Year         string         `json:"year,omitempty"`
	Corrigendum  *Revision      `json:"corrigendum,omitempty"`
	Amendment    *Revision      `json:"amendment,omitempty"`
	Edition      *Edition       `json:"edition,omitempty"`
	Draft        *Draft         `json:"draft,omitempty"`
	Redline      bool           `json:"redline,omitempty"`
	Alternative  []Relation     `json:"alternative,omitempty"`
}

// IsDraft reports whether the identifier names a draft, either through a
// /D block or through approval wording.
func (id *Identifier) IsDraft() bool {
	return id.Draft != nil || id.DraftMarker || id.Status != ""
}

// Clone returns a deep copy sharing no memory with id.
func (id *Identifier) Clone() *Identifier {
	c := *id
	c.Copublishers = slices.Clone(id.Copublishers)
	c.Part = slices.Clone(id.Part)
	c.Subpart = slices.Clone(id.Subpart)
	if id.Corrigendum != nil {
		r := *id.Corrigendum
		c.Corrigendum = &r
	}
	if id.Amendment != nil {
		r := *id.Amendment
		c.Amendment = &r
	}
	if id.Edition != nil {
		e := *id.Edition
		c.Edition = &e
	}
	if id.Draft != nil {
		d := *id.Draft
		d.Versions = slices.Clone(id.Draft.Versions)
		c.Draft = &d
	}
	if id.Alternative != nil {
		c.Alternative = make([]Relation, len(id.Alternative))
		for i, r := range id.Alternative {
			c.Alternative[i] = Relation{Kind: r.Kind, Identifier: *r.Identifier.Clone()}
		}
	}
	return &c
}
