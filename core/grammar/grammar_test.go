package grammar

import (
	"errors"
	"strings"
	"testing"

	errs "github.com/FocuswithJustin/pubid/core/errors"
)

func TestParseTree(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{
			"IEEE 142-1956",
			`(identifier (publisher "IEEE") (number "142") (year "1956"))`,
		},
		{
			"IEEE No 142-1956",
			`(identifier (publisher "IEEE") (number "142") (year "1956"))`,
		},
		{
			"ANSI/ IEEE C37.23-1969",
			`(identifier (publisher "ANSI") (copublisher "IEEE") (number "C37") (part ".23") (year "1969"))`,
		},
		{
			"IEEE Std 1244-5.2000",
			`(identifier (publisher "IEEE") (type "Std") (number "1244") (part "-5") (year "2000"))`,
		},
		{
			"IEEE Std 802.15.22.3-2020",
			`(identifier (publisher "IEEE") (type "Std") (number "802") (part ".15") (subpart ".22") (subpart ".3") (year "2020"))`,
		},
		{
			"PC57.158/D6A, August 2016",
			`(identifier (number "PC57") (part ".158") (draft (version "6A") (month "August") (year "2016")))`,
		},
		{
			"IEEE Unapproved Draft Std P1616a/D4, Jan 2010",
			`(identifier (publisher "IEEE") (status "Unapproved") (draft_marker "Draft") (type "Std") (number "P1616a") (draft (version "4") (month "Jan") (year "2010")))`,
		},
		{
			"IEEE P11073-10420/D4D5, March 2020",
			`(identifier (publisher "IEEE") (number "P11073") (part "-10420") (draft (version "4") (version "5") (month "March") (year "2020")))`,
		},
		{
			"IEEE C57.139/D14June 2010",
			`(identifier (publisher "IEEE") (number "C57") (part ".139") (draft (version "14") (month "June") (year "2010")))`,
		},
		{
			"IEEE Approved Draft Std P1076.1/D3.3, Feb 6, 2007",
			`(identifier (publisher "IEEE") (status "Approved") (draft_marker "Draft") (type "Std") (number "P1076") (part ".1") (draft (version "3") (revision "3") (month "Feb") (day "6") (year "2007")))`,
		},
		{
			"IEEE Unapproved Draft Std P1619/D17, Jul 07",
			`(identifier (publisher "IEEE") (status "Unapproved") (draft_marker "Draft") (type "Std") (number "P1619") (draft (version "17") (month "Jul") (year "07")))`,
		},
		{
			"ISO/IEC 15288 First edition 2002-11-01",
			`(identifier (publisher "ISO") (copublisher "IEC") (number "15288") (edition (version "First") (year "2002") (month "11") (day "01")))`,
		},
		{
			"IEEE/ISO/IEC P90003, February 2018 (E)",
			`(identifier (publisher "IEEE") (copublisher "ISO") (copublisher "IEC") (number "P90003") (edition (month "February") (year "2018")))`,
		},
		{
			"IEEE Std 1003.1, 2004 Edition",
			`(identifier (publisher "IEEE") (type "Std") (number "1003") (part ".1") (edition (year "2004")))`,
		},
		{
			"IEC 62525-Edition 1.0 - 2007",
			`(identifier (publisher "IEC") (number "62525") (edition (version "1.0") (year "2007")))`,
		},
		{
			"IEEE P15026-2, April 2011",
			`(identifier (publisher "IEEE") (number "P15026") (part "-2") (published (month "April") (year "2011")))`,
		},
		{
			"P1900.6-2011/Cor1/D3, August 2015",
			`(identifier (number "P1900") (part ".6") (year "2011") (corrigendum (number "1")) (draft (version "3") (month "August") (year "2015")))`,
		},
		{
			"IEEE Std 525-2007/Cor 1:2008",
			`(identifier (publisher "IEEE") (type "Std") (number "525") (year "2007") (corrigendum (number "1") (year "2008")))`,
		},
		{
			"ANSI C63.10-2013 - Redline",
			`(identifier (publisher "ANSI") (number "C63") (part ".10") (year "2013") (redline "Redline"))`,
		},
		{
			"ANSI C37.61-1973 and IEEE Std 321-1973",
			`(identifier (publisher "ANSI") (number "C37") (part ".61") (year "1973") (relation (kind "") (identifier (publisher "IEEE") (type "Std") (number "321") (year "1973"))))`,
		},
		{
			"IEEE 1076.4 IEC 61691-5 First edition 2004-10",
			`(identifier (publisher "IEEE") (number "1076") (part ".4") (relation (kind "") (identifier (publisher "IEC") (number "61691") (part "-5") (edition (version "First") (year "2004") (month "10")))))`,
		},
		{
			"IEEE Std 16-1955 (Supersedes C48-1931 and AIEE 16A-1951)",
			`(identifier (publisher "IEEE") (type "Std") (number "16") (year "1955") (relation (kind "Supersedes") (identifier (number "C48") (year "1931"))) (relation (kind "Supersedes") (identifier (publisher "AIEE") (number "16A") (year "1951"))))`,
		},
		{
			"IEEE Std 268-1976 (Supersedes ASTM E380-1974 IEEE Std 268-1973)",
			`(identifier (publisher "IEEE") (type "Std") (number "268") (year "1976") (relation (kind "Supersedes") (identifier (publisher "ASTM") (number "E380") (year "1974"))) (relation (kind "Supersedes") (identifier (publisher "IEEE") (type "Std") (number "268") (year "1973"))))`,
		},
		{
			"IEEE Std 1 (Amendment to IEEE Std 2 as amended by IEEE Std 3)",
			`(identifier (publisher "IEEE") (type "Std") (number "1") (relation (kind "Amendment to") (identifier (publisher "IEEE") (type "Std") (number "2"))) (relation (kind "as amended by") (identifier (publisher "IEEE") (type "Std") (number "3"))))`,
		},
		{
			"IEEE Std 1 (Revision of IEEE Std 2/Incorporates IEEE Std 3)",
			`(identifier (publisher "IEEE") (type "Std") (number "1") (relation (kind "Revision of") (identifier (publisher "IEEE") (type "Std") (number "2"))) (relation (kind "Incorporates") (identifier (publisher "IEEE") (type "Std") (number "3"))))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if got := n.String(); got != tt.want {
				t.Errorf("Parse(%q) =\n%s\nwant\n%s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAcceptsCorpus(t *testing.T) {
	// Normalized inputs that must parse in full; shapes are checked in
	// the pubid round-trip tests.
	inputs := []string{
		"IEEE Std 1491-2012 (Revision of IEEE Std 1491-2005)",
		"IEEE Std 588-1976 (ANSI C37.86-1975) (Revision of IEEE Std 288-1969 and IEEE Std 328-1971)",
		"IEEE Std 623-1976 (ANSI Y32.21-1976, NCTA 006.0975)",
		"IEEE Std 802.11af-2013 (Amendment to IEEE Std 802.11-2012, as amended by IEEE Std 802.11ae-2012, IEEE Std 802.11aa-2012, IEEE Std 802.11ad-2012, and IEEE Std 802.11ac-2013)",
		"IEEE P802.3bg/D2.1, September 2010 (Amendment to IEEE Std 802.3-2008)",
		"IEEE Std C57.12.10-2013 (Corrigendum to IEEE Std C57.12.10-2010)",
		"IEEE Std 1003.1 Edition 2004",
		"IEEE/ISO/IEC P90003 Edition 2018-02",
		"IEEE P1653.5/D7.1 November, 2019",
		"ISO/IEEE 11073-10101:2004 (Revision of ISO/IEEE 11073-10101:2004)",
	}
	for _, in := range inputs {
		if _, err := Parse(in); err != nil {
			t.Errorf("Parse(%q) failed: %v", in, err)
		}
	}
}

func TestParseSyntaxError(t *testing.T) {
	tests := []struct {
		in         string
		wantOffset int
		wantExpect string
	}{
		{"", 0, "number"},
		{"IEEE 802 junk", 9, `"IEEE"`},
		{"IEEE 802 (Supersedes", 20, `")"`},
		{"IEEE 802.", 8, "end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse(%q) error = %v, want SyntaxError", tt.in, err)
			}
			if se.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d (%v)", se.Offset, tt.wantOffset, se)
			}
			found := false
			for _, e := range se.Expected {
				if e == tt.wantExpect {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected = %v, want it to contain %s", se.Expected, tt.wantExpect)
			}
			if !errors.Is(err, errs.ErrInvalidInput) {
				t.Error("SyntaxError should unwrap to ErrInvalidInput")
			}
			if !strings.Contains(se.Error(), "syntax error at offset") {
				t.Errorf("Error() = %q", se.Error())
			}
		})
	}
}

func TestParseRejectsWordsAsNumber(t *testing.T) {
	for _, in := range []string{"IEEE", "ISO", "IEEE Std", "IEEE Draft", "IEC ISO", "ANSI/IEEE Std"} {
		n, err := Parse(in)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Parse(%q) = %v, %v; want SyntaxError", in, n, err)
		}
	}
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		word string
		want int
		ok   bool
	}{
		{"January", 1, true},
		{"Sept", 9, true},
		{"Sept.", 9, true},
		{"dec", 12, true},
		{"Redline", 0, false},
	}
	for _, tt := range tests {
		m, ok := MonthOf(tt.word)
		if ok != tt.ok || int(m) != tt.want {
			t.Errorf("MonthOf(%q) = %d, %v; want %d, %v", tt.word, m, ok, tt.want, tt.ok)
		}
	}
}
