// Package symbol parses broker-formatted instrument descriptions into a
// structured form and derives canonical comparison keys from them. Brokers
// render the same contract many ways ("RELIANCE 28 NOV 2024 FUT",
// "reliance-28-nov-2024-fut", "RELIANCE NOV2024 FUT"); the canonical key is
// what batch operations use to decide whether two rows are the same
// instrument.
package symbol

import (
	"regexp"
	"strings"
)

const (
	KindFuture = "FUT"
	KindOption = "OPT"
)

// Parsed is the structured form of a raw symbol string. Month and Year are
// empty when no expiry pattern was recognized.
type Parsed struct {
	Underlying string
	Month      string
	Year       string
	Kind       string
}

var monthMap = map[string]string{
	"JAN": "JAN", "FEB": "FEB", "MAR": "MAR", "APR": "APR",
	"MAY": "MAY", "JUN": "JUN", "JUL": "JUL", "AUG": "AUG",
	"SEP": "SEP", "SEPT": "SEP", "OCT": "OCT", "NOV": "NOV", "DEC": "DEC",
}

var (
	unicodeSpaceRe = regexp.MustCompile(`[\x{00A0}\x{1680}\x{2000}-\x{200B}\x{202F}\x{205F}\x{3000}]`)
	dashRe         = regexp.MustCompile(`[\x{2013}\x{2014}\x{2212}]`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	tokenSplitRe   = regexp.MustCompile(`[\s\-_/]+`)
	nonAlnumRe     = regexp.MustCompile(`[^A-Z0-9]`)

	monthHeadRe = regexp.MustCompile(`^(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|SEPT|OCT|NOV|DEC)`)
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	dayRe       = regexp.MustCompile(`^\d{1,2}$`)
	tailFlagRe  = regexp.MustCompile(`^(FUT|OPT|CE|PE)$`)

	dayMonthYearRe = regexp.MustCompile(`\b(\d{1,2})[-\s]*(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|SEPT|OCT|NOV|DEC)[A-Z]*[-\s]*((?:19|20)\d{2})\b`)
	monthYearRe    = regexp.MustCompile(`\b(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|SEPT|OCT|NOV|DEC)[A-Z]*[-\s]*((?:19|20)\d{2})\b`)
	optionFlagRe   = regexp.MustCompile(`\b(CE|PE)\b`)
)

// Normalize uppercases the input, collapses unicode whitespace variants to a
// single space, folds en/em dashes and the minus sign to a plain hyphen, and
// trims. Parse and Key both operate on this form, so any casing or separator
// variant of the same logical symbol parses identically.
func Normalize(raw string) string {
	s := strings.ToUpper(raw)
	s = unicodeSpaceRe.ReplaceAllString(s, " ")
	s = dashRe.ReplaceAllString(s, "-")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Parse extracts underlying, expiry month/year and instrument kind from a
// raw broker symbol. Pure and deterministic; unrecognized inputs yield an
// underlying of whatever leading tokens were found and empty month/year.
func Parse(raw string) Parsed {
	u := Normalize(raw)

	var undParts []string
	for _, t := range tokenSplitRe.Split(u, -1) {
		if t == "" {
			continue
		}
		if tailFlagRe.MatchString(t) || yearRe.MatchString(t) || monthHeadRe.MatchString(t) {
			// A bare day-of-month just before the expiry tokens belongs to
			// the date, not the underlying.
			if n := len(undParts); n > 0 && dayRe.MatchString(undParts[n-1]) {
				undParts = undParts[:n-1]
			}
			break
		}
		undParts = append(undParts, t)
	}
	und := nonAlnumRe.ReplaceAllString(strings.Join(undParts, ""), "")

	var mon, year string
	if m := dayMonthYearRe.FindStringSubmatch(u); m != nil {
		mon, year = monthMap[m[2]], m[3]
	} else if m := monthYearRe.FindStringSubmatch(u); m != nil {
		mon, year = monthMap[m[1]], m[2]
	}

	kind := KindFuture
	if optionFlagRe.MatchString(u) {
		kind = KindOption
	}

	return Parsed{Underlying: und, Month: mon, Year: year, Kind: kind}
}

// Key derives the canonical comparison key for a raw symbol. When the parse
// resolved underlying, month and year the key is "UND-MONYYYY"; otherwise it
// degrades to the normalized raw string stripped to alphanumerics, which is
// imprecise but still deterministic, so exotic instrument names remain
// batchable. includeKind appends "-FUT"/"-OPT" for callers that must not mix
// futures with options.
func Key(raw string, includeKind bool) string {
	p := Parse(raw)
	base := p.Underlying + "-" + p.Month + p.Year
	if p.Underlying == "" || p.Month == "" || p.Year == "" {
		base = nonAlnumRe.ReplaceAllString(Normalize(raw), "")
	}
	if includeKind {
		return base + "-" + p.Kind
	}
	return base
}
