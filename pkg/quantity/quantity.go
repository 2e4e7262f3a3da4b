package quantity

import (
	"regexp"
	"strconv"
	"strings"
)

// Units recognised after a number, lower-case.
var Units = []string{"g", "kg", "ml", "l", "cl", "cc"}

var (
	// ws also covers the non-breaking spaces recipe sites put between amount and unit
	quantityUnitRe = regexp.MustCompile(`(?i)(\d{1,4}(?:,\d{1,2})?)[\s\v\p{Z}](g|kg|ml|l|cl|cc)`)
	quantityOnlyRe = regexp.MustCompile(`\b(\d{1,2})\b`)
	parenthesisRe  = regexp.MustCompile(`[\s\v\p{Z}]*\([^)]*\)`)
)

// Amount is a parsed quantity. An empty Unit means a bare count.
type Amount struct {
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit,omitempty"`
}

// Fallback is returned when the text carries no recognisable amount,
// e.g. "q.b." (to taste) or "un pizzico" (a pinch).
var Fallback = Amount{Quantity: 1, Unit: "g"}

// HasUnit reports whether a unit of measure was found
func (a Amount) HasUnit() bool {
	return a.Unit != ""
}

// UnitPtr returns the unit as an optional value
func (a Amount) UnitPtr() *string {
	if a.Unit == "" {
		return nil
	}
	u := a.Unit
	return &u
}

func (a Amount) String() string {
	q := strconv.FormatFloat(a.Quantity, 'f', -1, 64)
	if a.Unit == "" {
		return q
	}
	return q + " " + a.Unit
}

// Parse extracts an amount from raw quantity text. It never fails:
// text without a number yields Fallback.
//
// Parenthesised asides are dropped first, so "1 (circa 200g) pezzo" is a
// bare count of 1. A number followed by a unit wins over a bare count.
// Decimals use a comma separator.
func Parse(raw string) Amount {
	text := RemoveParentheses(raw)

	if m := quantityUnitRe.FindStringSubmatch(text); m != nil {
		q, err := strconv.ParseFloat(strings.Replace(m[1], ",", ".", 1), 64)
		if err == nil {
			return Amount{Quantity: q, Unit: m[2]}
		}
	}

	if m := quantityOnlyRe.FindStringSubmatch(text); m != nil {
		q, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return Amount{Quantity: q}
		}
	}

	return Fallback
}

// RemoveParentheses strips every "(...)" aside, with the whitespace in
// front of it, and trims the result. Nested parentheses are not handled.
func RemoveParentheses(text string) string {
	return strings.TrimSpace(parenthesisRe.ReplaceAllString(text, ""))
}
