package grammar

import (
	"strings"
	"time"
)

// monthWords maps every accepted spelling, lower-cased, to its month.
var monthWords = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// MonthOf resolves a month name or abbreviation ("Feb", "Sept.", "June").
func MonthOf(word string) (time.Month, bool) {
	m, ok := monthWords[strings.ToLower(strings.TrimSuffix(word, "."))]
	return m, ok
}
