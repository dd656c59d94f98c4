package pubid

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/grammar"
	"github.com/FocuswithJustin/pubid/core/legacy"
)

type corpusCase struct {
	in   string
	want string
	full string // empty when identical to want
}

// corpus are real-world citations and their canonical and full forms.
var corpus = []corpusCase{
	{in: "IEEE No 142-1956", want: "IEEE 142-1956"},
	{in: "IEEE Std 802.15.22.3-2020", want: "IEEE Std 802.15.22.3-2020"},
	{in: "IEEE Std 1244-5.2000", want: "IEEE Std 1244-5-2000"},
	{in: "IEEE Std 581.1978", want: "IEEE Std 581-1978"},
	{in: "ANSI C37.0781-1972", want: "ANSI C37.0781-1972"},
	{in: "IEEE Std 1003.0-1995", want: "IEEE Std 1003.0-1995"},
	{in: "ASA C37.1-1950", want: "ASA C37.1-1950"},
	{in: "ANSI/ IEEE C37.23-1969", want: "ANSI/IEEE C37.23-1969"},
	{in: "AIEE No 91-1962 (ASA Y32.14-1962)", want: "AIEE 91-1962 (ASA Y32.14-1962)"},
	{in: "ANSI C37.61-1973 and IEEE Std 321-1973", want: "ANSI C37.61-1973 (IEEE Std 321-1973)"},
	{in: "IEEE Std 623-1976 (ANSI Y32.21-1976, NCTA 006-0975)", want: "IEEE Std 623-1976 (ANSI Y32.21-1976, NCTA 006.0975)"},
	{in: "IEC 61671-2 Edition 1.0 2016-04", want: "IEC 61671-2 Edition 1.0 2016-04"},
	{in: "IEC/IEEE 60076-16 Edition 2.0 2018-09", want: "IEC/IEEE 60076-16 Edition 2.0 2018-09"},
	{in: "IEEE Std 1003.1, 2004 Edition", want: "IEEE Std 1003.1 Edition 2004"},
	{in: "IEC 62525-Edition 1.0 - 2007", want: "IEC 62525 Edition 1.0 2007"},
	{in: "IEEE/ISO/IEC P90003, February 2018 (E)", want: "IEEE/ISO/IEC P90003 Edition 2018-02"},
	{in: "ISO/IEC 15288 First edition 2002-11-01", want: "ISO/IEC 15288 Edition 1.0 2002-11-01"},
	{in: "IEC 61523-3 First edition 2004-09", want: "IEC 61523-3 Edition 1.0 2004-09"},
	{in: "IEEE 1076.4 IEC 61691-5 First edition 2004-10", want: "IEEE 1076.4 (IEC 61691-5 Edition 1.0 2004-10)"},
	{in: "ANSI PC63.10/D14, April 2020", want: "ANSI PC63.10/D14, April 2020", full: "ANSI Draft PC63.10/D14, April 2020"},
	{in: "IEEE Std 1076.1 IEC 61691-6 Edition 1.0 2009-12", want: "IEEE Std 1076.1 (IEC 61691-6 Edition 1.0 2009-12)"},
	{in: "IEEE Std PC37.12.1/D2.0", want: "IEEE Std PC37.12.1/D2.0", full: "IEEE Draft Std PC37.12.1/D2.0"},
	{in: "IEEE 1250 /D11 May 2010", want: "IEEE 1250/D11, May 2010"},
	{in: "ANSI PC63.12/D12e, January 2015", want: "ANSI PC63.12/D12e, January 2015"},
	{in: "IEEE P62.44/D15.3", want: "IEEE P62.44/D15.3"},
	{in: "IEEE C57.139/D14June 2010", want: "IEEE C57.139/D14, June 2010"},
	{in: "IEEE P11073-10101/D3r7, September 2018", want: "IEEE P11073-10101/D3.7, September 2018"},
	{in: "IEEE P11073-10420/D4D5, March 2020", want: "IEEE P11073-10420/D4D5, March 2020"},
	{in: "IEEE P1293/D29a1, August 2018", want: "IEEE P1293/D29a1, August 2018"},
	{in: "IEEE P1609.2.1/D12D14, June 2020", want: "IEEE P1609.2.1/D12D14, June 2020"},
	{in: "IEEE P1653.5/D7d1 November, 2019", want: "IEEE P1653.5/D7.1, November 2019"},
	{in: "IEEE P1017/D062012", want: "IEEE P1017/D062012, June 2012"},
	{in: "IEEE Std PC37.20.1a/D11", want: "IEEE Std PC37.20.1a/D11"},
	{in: "IEEE Std PC37.66/D12, Apr 2005", want: "IEEE Std PC37.66/D12, April 2005"},
	{
		in:   "IEEE Unapproved Draft Std 11073-10471/D02, Feb 2008",
		want: "IEEE Std 11073-10471/D02, February 2008",
		full: "IEEE Unapproved Draft Std 11073-10471/D02, February 2008",
	},
	{
		in:   "IEEE Active Unapproved Draft Std PC37.59/D11, Jul 2007",
		want: "IEEE Std PC37.59/D11, July 2007",
		full: "IEEE Active Unapproved Draft Std PC37.59/D11, July 2007",
	},
	{
		in:   "IEEE Approved Draft Std P1076.1/D3.3, Feb 6, 2007",
		want: "IEEE Std P1076.1/D3.3, February 6, 2007",
		full: "IEEE Approved Draft Std P1076.1/D3.3, February 6, 2007",
	},
	{
		in:   "IEEE Unapproved Draft Std P11073-20601_D20 May 2008",
		want: "IEEE Std P11073-20601/D20, May 2008",
		full: "IEEE Unapproved Draft Std P11073-20601/D20, May 2008",
	},
	{
		in:   "IEEE Unapproved Draft Std P1616a/D4, Jan 2010",
		want: "IEEE Std P1616a/D4, January 2010",
		full: "IEEE Unapproved Draft Std P1616a/D4, January 2010",
	},
	{
		in:   "IEEE Unapproved Draft Std P1619/D17, Jul 07",
		want: "IEEE Std P1619/D17, July 2007",
		full: "IEEE Unapproved Draft Std P1619/D17, July 2007",
	},
	{
		in:   "IEEE Unapproved Std PC37.101/D13, Jun 2006",
		want: "IEEE Std PC37.101/D13, June 2006",
		full: "IEEE Unapproved Draft Std PC37.101/D13, June 2006",
	},
	{
		in:   "IEEE Unapproved Draft Std PC62.11a/D9E, Sept 2007",
		want: "IEEE Std PC62.11a/D9E, September 2007",
		full: "IEEE Unapproved Draft Std PC62.11a/D9E, September 2007",
	},
	{
		in:   "IEEE Unapproved Draft Std 802.20/D4.1m, April 2008",
		want: "IEEE Std 802.20/D4.1m, April 2008",
		full: "IEEE Unapproved Draft Std 802.20/D4.1m, April 2008",
	},
	{
		in:   "IEEE Unapproved Draft Std P1003.1_D4 , Jan 2008",
		want: "IEEE Std P1003.1/D4, January 2008",
		full: "IEEE Unapproved Draft Std P1003.1/D4, January 2008",
	},
	{
		in:   "IEEE Unapproved Draft Std P11073-20601a/D13, Jan 2010",
		want: "IEEE Std P11073-20601a/D13, January 2010",
		full: "IEEE Unapproved Draft Std P11073-20601a/D13, January 2010",
	},
	{in: "IEEE Std 1491-2012 (Revision of IEEE Std 1491-2005)", want: "IEEE Std 1491-2012 (Revision of IEEE Std 1491-2005)"},
	{in: "ANSI C63.10-2013 - Redline", want: "ANSI C63.10-2013 - Redline"},
	{in: "PC57.158/D6A, August 2016", want: "IEEE PC57.158/D6A, August 2016"},
	{in: "IEEP62.42.1/D3, October 2014", want: "IEEE P62.42.1/D3, October 2014"},
	{in: "IEEE No. 264-1968", want: "IEEE 264-1968"},
	{in: "IEEE Std 1666 IEC61691-7 Edition 1.0 2009-12", want: "IEEE Std 1666 (IEC 61691-7 Edition 1.0 2009-12)"},
	{in: "IEEE No 323, April 1971", want: "IEEE 323-1971"},
	{in: "IEEE P15026-2, April 2011", want: "IEEE P15026-2-2011"},
	{in: "IEEE P90003-2014, April 2015", want: "IEEE P90003-2015 (Adoption of IEEE P90003-2014)"},
	{in: "IEEE/IEC P60076-57-1202, July 2014", want: "IEEE/IEC P60076-57-1202-2014"},
	{in: "IEEE P802.11ajD8.0, August 2017", want: "IEEE P802.11aj/D8.0, August 2017"},
	{in: "ISO/IEC/IEEE P26513_D2, January 2017", want: "ISO/IEC/IEEE P26513/D2, January 2017"},
	{in: "IEEE P2410-D4, July 2019", want: "IEEE P2410/D4, July 2019"},
	{in: "ANSI C63.4a-2017 (Amendment to ANSI C63.4-2014)", want: "ANSI C63.4a-2017 (Amendment to ANSI C63.4-2014)"},
	{
		in:   "IEEE P802.3bg/D2.1, September 2010 (Amendment of IEEE Std 802.3-2008)",
		want: "IEEE P802.3bg/D2.1, September 2010 (Amendment to IEEE Std 802.3-2008)",
		full: "IEEE Draft P802.3bg/D2.1, September 2010 (Amendment to IEEE Std 802.3-2008)",
	},
	{
		in:   "IEEE Std 802.15.3f-2017 (Amendment to IEEE Std 802.15.3-2016 as amended by IEEE Std 802.15.3d-2017, and IEEE Std 802.15.3e-2017)",
		want: "IEEE Std 802.15.3f-2017 (Amendment to IEEE Std 802.15.3-2016 as amended by IEEE Std 802.15.3d-2017, and IEEE Std 802.15.3e-2017)",
	},
	{
		in:   "IEEE Std 802.15.3d-2017 (Amendment to IEEE Std 802.15.3-2016 as amended by IEEE Std 802.15.3e-2017)",
		want: "IEEE Std 802.15.3d-2017 (Amendment to IEEE Std 802.15.3-2016 as amended by IEEE Std 802.15.3e-2017)",
	},
	{
		in: "IEEE Std 802.11af-2013 (Amendment to IEEE Std 802.11-2012, as amended by IEEE Std 802.11ae-2012," +
			" IEEE Std 802.11aa-2012, IEEE Std 802.11ad-2012, and IEEE Std 802.11ac-2013)",
		want: "IEEE Std 802.11af-2013 (Amendment to IEEE Std 802.11-2012 as amended by IEEE Std 802.11ae-2012," +
			" IEEE Std 802.11aa-2012, IEEE Std 802.11ad-2012, and IEEE Std 802.11ac-2013)",
	},
	{in: "IEEE Std 1003.1-2001/Cor 2-2004", want: "IEEE Std 1003.1-2001/Cor 2-2004"},
	{in: "P1900.6-2011/Cor1/D3, August 2015", want: "IEEE P1900.6-2011/Cor 1/D3, August 2015"},
	{in: "IEEE P1722-2016-Cor1/D0, June 2016", want: "IEEE P1722-2016/Cor 1/D0, June 2016"},
	{in: "IEEE Std 268-1979 (Supersedes IEEE Std 268-1976)", want: "IEEE Std 268-1979 (Supersedes IEEE Std 268-1976)"},
	{in: "IEEE Std 16-1955 (Supersedes C48-1931 and AIEE 16A-1951)", want: "IEEE Std 16-1955 (Supersedes IEEE C48-1931 and AIEE 16A-1951)"},
	{
		in:   "IEEE Std 588-1976 (ANSI C37.86-1975) (Revision of IEEE Std 288-1969 and IEEE Std 328-1971)",
		want: "IEEE Std 588-1976 (ANSI C37.86-1975) (Revision of IEEE Std 288-1969 and IEEE Std 328-1971)",
	},
	{
		in:   "IEEE Std 268-1976 (Supersedes ASTM E380-1974 IEEE Std 268-1973 IEEE Std 322-1971)",
		want: "IEEE Std 268-1976 (Supersedes ASTM E380-1974, IEEE Std 268-1973, IEEE Std 322-1971)",
	},
	{in: "IEEE Std C57.12.10-2013 (Corrigendum to IEEE Std C57.12.10-2010)", want: "IEEE Std C57.12.10-2010/Cor 1-2013"},
	{
		in:   "IEEE Std 525-2016 (Revision of IEEE Std 525-1992/Incorporates IEEE Std 525-2007/Cor 1:2008)",
		want: "IEEE Std 525-2016 (Revision of IEEE Std 525-1992/Incorporates IEEE Std 525-2007/Cor 1-2008)",
	},
	{in: "ISO/IEEE 11073-10101:2004", want: "ISO/IEEE 11073-10101-2004"},
	{in: "IEEE Std 802.3-2018/Amd 4-2019", want: "IEEE Std 802.3-2018/Amd 4-2019"},
}

func TestParseCorpus(t *testing.T) {
	for _, tt := range corpus {
		t.Run(tt.in, func(t *testing.T) {
			id, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got := id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			wantFull := tt.full
			if wantFull == "" && !id.IsDraft() {
				wantFull = tt.want
			}
			if wantFull != "" {
				if got := id.Full(); got != wantFull {
					t.Errorf("Full() = %q, want %q", got, wantFull)
				}
			}
		})
	}
}

func TestCanonicalIsFixedPoint(t *testing.T) {
	for _, tt := range corpus {
		for _, mode := range []RenderMode{Canonical, Full} {
			id, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			once := id.Render(mode)
			again, err := Parse(once)
			if err != nil {
				t.Errorf("re-parse of %q failed: %v", once, err)
				continue
			}
			if twice := again.Render(mode); twice != once {
				t.Errorf("Render(%d) not stable: %q then %q", mode, once, twice)
			}
		}
	}
}

func TestParseFields(t *testing.T) {
	id := MustParse("ANSI/ IEEE C37.23-1969")
	if id.Publisher != ANSI || len(id.Copublishers) != 1 || id.Copublishers[0] != IEEE {
		t.Errorf("publishers = %s %v", id.Publisher, id.Copublishers)
	}
	if id.Number != "C37" || id.Year != "1969" {
		t.Errorf("Number, Year = %q, %q", id.Number, id.Year)
	}

	id = MustParse("IEEE Std 802.15.22.3-2020")
	if len(id.Part) != 1 || id.Part[0] != (Segment{Sep: ".", Value: "15"}) {
		t.Errorf("Part = %+v", id.Part)
	}
	if len(id.Subpart) != 2 || id.Subpart[0].Value != "22" || id.Subpart[1].Value != "3" {
		t.Errorf("Subpart = %+v", id.Subpart)
	}

	id = MustParse("IEEE P1017/D062012")
	if id.Draft == nil || id.Draft.Month != time.June || id.Draft.Year != "2012" {
		t.Errorf("Draft = %+v, want June 2012 back-filled", id.Draft)
	}

	id = MustParse("IEEE P1017/D062012, May 2013")
	if id.Draft == nil || id.Draft.Month != time.May || id.Draft.Year != "2013" {
		t.Errorf("Draft = %+v, want the explicit May 2013 kept", id.Draft)
	}
	if got := id.String(); got != "IEEE P1017/D062012, May 2013" {
		t.Errorf("String() = %q", got)
	}

	id = MustParse("IEEE P1/D132012")
	if id.Draft == nil || id.Draft.Month != 0 || id.Draft.Year != "" {
		t.Errorf("Draft = %+v, want no date from month 13", id.Draft)
	}
	if got := id.String(); got != "IEEE P1/D132012" {
		t.Errorf("String() = %q", got)
	}

	id = MustParse("ISO/IEC 15288 First edition 2002-11-01")
	if e := id.Edition; e == nil || e.Version != "First" || e.Month != time.November || e.Day != 1 {
		t.Errorf("Edition = %+v", id.Edition)
	}

	id = MustParse("IEEE Std C57.12.10-2013 (Corrigendum to IEEE Std C57.12.10-2010)")
	if id.Year != "2010" || id.Corrigendum == nil || *id.Corrigendum != (Revision{Number: "1", Year: "2013"}) {
		t.Errorf("Year, Corrigendum = %q, %+v", id.Year, id.Corrigendum)
	}
	if len(id.Alternative) != 0 {
		t.Errorf("corrigendum target should fold, got %d relations", len(id.Alternative))
	}
}

func TestRelationOrder(t *testing.T) {
	id := MustParse("IEEE Std 268-1976 (Supersedes ASTM E380-1974 IEEE Std 268-1973 IEEE Std 322-1971)")
	want := []string{"ASTM E380-1974", "IEEE Std 268-1973", "IEEE Std 322-1971"}
	if len(id.Alternative) != len(want) {
		t.Fatalf("len(Alternative) = %d, want %d", len(id.Alternative), len(want))
	}
	for i, rel := range id.Alternative {
		if rel.Kind != Supersedes {
			t.Errorf("Alternative[%d].Kind = %v, want Supersedes", i, rel.Kind)
		}
		if got := rel.Identifier.String(); got != want[i] {
			t.Errorf("Alternative[%d] = %q, want %q", i, got, want[i])
		}
	}
}

func TestLabelledGroupDropsFinalAnd(t *testing.T) {
	id := MustParse("IEEE 1 (Supersedes IEEE 2, IEEE 3, and IEEE 4)")
	if len(id.Alternative) != 3 {
		t.Fatalf("len(Alternative) = %d, want 3", len(id.Alternative))
	}
	if got, want := id.String(), "IEEE 1 (Supersedes IEEE 2, IEEE 3, IEEE 4)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestRenderFromFields(t *testing.T) {
	tests := []struct {
		name string
		id   Identifier
		want string
	}{
		{
			name: "edition First renders 1.0",
			id:   Identifier{Publisher: IEC, Number: "1", Edition: &Edition{Version: "First", Year: "2004"}},
			want: "IEC 1 Edition 1.0 2004",
		},
		{
			name: "segment without separator",
			id:   Identifier{Publisher: IEEE, Number: "802", Part: []Segment{{Value: "11"}}},
			want: "IEEE 802.11",
		},
		{
			name: "three labelled relations use commas",
			id: Identifier{Publisher: IEEE, Number: "1", Alternative: []Relation{
				{Kind: RevisionOf, Identifier: Identifier{Publisher: IEEE, Number: "2"}},
				{Kind: RevisionOf, Identifier: Identifier{Publisher: IEEE, Number: "3"}},
				{Kind: RevisionOf, Identifier: Identifier{Publisher: IEEE, Number: "4"}},
			}},
			want: "IEEE 1 (Revision of IEEE 2, IEEE 3, IEEE 4)",
		},
		{
			name: "different kinds open new clauses",
			id: Identifier{Publisher: IEEE, Number: "1", Alternative: []Relation{
				{Kind: Unlabelled, Identifier: Identifier{Publisher: ANSI, Number: "2"}},
				{Kind: Supersedes, Identifier: Identifier{Publisher: IEEE, Number: "3"}},
			}},
			want: "IEEE 1 (ANSI 2) (Supersedes IEEE 3)",
		},
		{
			name: "draft with year only",
			id:   Identifier{Publisher: IEEE, Number: "P1", Draft: &Draft{Versions: []string{"2"}, Year: "2019"}},
			want: "IEEE P1/D2, 2019",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFullOnlyAddsStatus(t *testing.T) {
	id := MustParse("IEEE Active Unapproved Draft Std PC37.59/D11, Jul 2007")
	canonical, full := id.String(), id.Full()
	if canonical == full {
		t.Fatalf("Full() should differ from String() for %q", canonical)
	}
	for _, word := range []string{"Active", "Unapproved", "Draft"} {
		if containsWord(canonical, word) {
			t.Errorf("String() = %q contains %q", canonical, word)
		}
	}
}

func containsWord(s, w string) bool {
	for i := 0; i+len(w) <= len(s); i++ {
		if s[i:i+len(w)] == w {
			return true
		}
	}
	return false
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"", "IEEE 802 junk", "IEEE Std 1 (Supersedes",
		"IEEE", "ISO", "IEEE Std", "IEEE Draft", "IEC ISO",
	}
	for _, in := range inputs {
		_, err := Parse(in)
		if err == nil {
			t.Errorf("Parse(%q) should fail", in)
			continue
		}
		var pe *errs.ParseError
		if !errors.As(err, &pe) || pe.Input != in {
			t.Errorf("Parse(%q) error = %v, want ParseError for the raw input", in, err)
		}
		var se *grammar.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Parse(%q) error should wrap a SyntaxError", in)
		}
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("Parse(%q) error should be ErrInvalidInput", in)
		}
	}
}

func TestConstructErrors(t *testing.T) {
	tests := []struct {
		name  string
		f     fields
		field string
	}{
		{"missing number", fields{}, "number"},
		{"unknown publisher", fields{number: "1", publisher: "BSI"}, "publisher"},
		{"unknown copublisher", fields{number: "1", copublishers: []string{"DIN"}}, "publisher"},
		{"month out of range", fields{number: "1", edition: &editionFields{year: "2000", month: "13"}}, "month"},
		{"bad draft day", fields{number: "1", draft: &draftFields{versions: []string{"1"}, day: "40"}}, "day"},
		{"unknown connector", fields{number: "1", relations: []relationFields{{kind: "Replaces", target: fields{number: "2"}}}}, "relation"},
		{"nested missing number", fields{number: "1", relations: []relationFields{{target: fields{}}}}, "number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := construct(tt.f)
			var ce *ConstructionError
			if !errors.As(err, &ce) {
				t.Fatalf("construct() error = %v, want ConstructionError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
			if !errors.Is(err, errs.ErrInvalidInput) {
				t.Error("ConstructionError should unwrap to ErrInvalidInput")
			}
		})
	}
}

func TestFlattenRejectsMalformedTrees(t *testing.T) {
	leaf := func(l grammar.Label, v string) *grammar.Node { return &grammar.Node{Label: l, Value: v} }
	tests := []struct {
		name string
		n    *grammar.Node
	}{
		{"nil", nil},
		{"wrong root", leaf(grammar.LabelNumber, "1")},
		{"unknown label", &grammar.Node{Label: grammar.LabelIdentifier, Children: []*grammar.Node{leaf("colour", "red")}}},
		{"repeated number", &grammar.Node{Label: grammar.LabelIdentifier, Children: []*grammar.Node{
			leaf(grammar.LabelNumber, "1"), leaf(grammar.LabelNumber, "2"),
		}}},
		{"relation without target", &grammar.Node{Label: grammar.LabelIdentifier, Children: []*grammar.Node{
			leaf(grammar.LabelNumber, "1"),
			{Label: grammar.LabelRelation, Children: []*grammar.Node{leaf(grammar.LabelKind, "")}},
		}}},
		{"stray leaf in draft", &grammar.Node{Label: grammar.LabelIdentifier, Children: []*grammar.Node{
			leaf(grammar.LabelNumber, "1"),
			{Label: grammar.LabelDraft, Children: []*grammar.Node{leaf(grammar.LabelPart, ".1")}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := flatten(tt.n); err == nil {
				t.Error("flatten() should fail")
			}
		})
	}
}

func TestCustomTable(t *testing.T) {
	table := legacy.NewTable(legacy.Literal{Pattern: "Std. ", Replacement: "Std "})
	p := NewParser(table)
	if p.Table() != table {
		t.Error("Table() should return the configured table")
	}
	id, err := p.Parse("IEEE Std. 1-2000")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := id.String(); got != "IEEE Std 1-2000" {
		t.Errorf("String() = %q", got)
	}

	// Without the default table "IEEP1" is read as a bare number.
	id, err = p.Parse("IEEP1")
	if err != nil {
		t.Fatalf("Parse(IEEP1) failed: %v", err)
	}
	if got := id.String(); got != "IEEE IEEP1" {
		t.Errorf("String() = %q, want %q", got, "IEEE IEEP1")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	id := MustParse("IEEE Std 588-1976 (ANSI C37.86-1975) (Revision of IEEE Std 288-1969 and IEEE Std 328-1971)")
	before := id.String()

	c := id.Clone()
	c.Alternative[0].Identifier.Number = "X"
	c.Alternative = append(c.Alternative, Relation{})
	c.Part = append(c.Part, Segment{Value: "9"})

	if got := id.String(); got != before {
		t.Errorf("mutating clone changed original: %q", got)
	}
}

func TestRelationKindText(t *testing.T) {
	for k := Unlabelled; k <= AdoptionOf; k++ {
		b, err := k.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) failed: %v", k, err)
		}
		var back RelationKind
		if err := back.UnmarshalText(b); err != nil || back != k {
			t.Errorf("UnmarshalText(%s) = %d, %v; want %d", b, back, err, k)
		}
	}
	var k RelationKind
	if err := k.UnmarshalText([]byte("replaces")); err == nil {
		t.Error("UnmarshalText should reject unknown kinds")
	}

	b, err := json.Marshal(MustParse("IEEE P90003-2014, April 2015"))
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Alternative []struct {
			Kind string `json:"kind"`
		} `json:"alternative"`
	}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded.Alternative) != 1 || decoded.Alternative[0].Kind != "adoption_of" {
		t.Errorf("json = %s", b)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("IEEE No 142-1956")
	if err != nil || got != "IEEE 142-1956" {
		t.Errorf("Normalize() = %q, %v", got, err)
	}
	if _, err := Normalize(""); err == nil {
		t.Error("Normalize(\"\") should fail")
	}
}

func TestParseOrganization(t *testing.T) {
	for _, org := range Organizations {
		if got, err := ParseOrganization(string(org)); err != nil || got != org {
			t.Errorf("ParseOrganization(%s) = %s, %v", org, got, err)
		}
	}
	if _, err := ParseOrganization("ieee"); err == nil {
		t.Error("ParseOrganization is case-sensitive")
	}
}
