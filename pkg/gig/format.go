package gig

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	suburbPattern   = regexp.MustCompile(`(?:,\s*)?([A-Za-z\s]+)(?:\s+\d{4})?$`)
	postcodePattern = regexp.MustCompile(`\b(\d{4})\b`)
)

// TitleCase upper-cases the first letter of each word and lower-cases the rest.
// A Caser is not safe for concurrent use, so one is built per call.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// Suburb extracts the trailing suburb from a free-text address such as
// "29 Grey St, St Kilda VIC 3182". Returns "" when nothing matches.
func Suburb(address string) string {
	parts := strings.Split(address, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	last = strings.TrimSpace(postcodePattern.ReplaceAllString(last, ""))
	last = strings.TrimSuffix(strings.TrimSpace(stripState(last)), ",")

	m := suburbPattern.FindStringSubmatch(last)
	if m == nil {
		return ""
	}
	return TitleCase(strings.TrimSpace(m[1]))
}

var states = []string{"VIC", "NSW", "QLD", "SA", "WA", "TAS", "NT", "ACT"}

func stripState(s string) string {
	fields := strings.Fields(s)
	if len(fields) > 1 {
		last := strings.ToUpper(fields[len(fields)-1])
		for _, st := range states {
			if last == st {
				return strings.Join(fields[:len(fields)-1], " ")
			}
		}
	}
	return s
}

// Postcode prefers the venue's postcode field and falls back to the first
// four-digit group in the address.
func Postcode(field, address string) string {
	if field = strings.TrimSpace(field); field != "" {
		return field
	}
	if m := postcodePattern.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return ""
}

// FormatPrice renders the badge shown beside the start time
func FormatPrice(p PriceInfo) string {
	if len(p.Amounts) > 0 {
		return "$Ticketed"
	}
	for _, tag := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(tag), "free") {
			return "Free"
		}
	}
	return ""
}
