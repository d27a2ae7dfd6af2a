// Package indexnumber formats and parses student index numbers of the form <prefix><YY><sequence>.
package indexnumber

import (
	"fmt"
	"strconv"
	"strings"
)

// Generator formats index numbers for one school
type Generator struct {
	Prefix string
	Digits int
}

// New returns a Generator; digits below 1 fall back to 4
func New(prefix string, digits int) Generator {
	if digits < 1 {
		digits = 4
	}
	return Generator{Prefix: strings.ToUpper(prefix), Digits: digits}
}

// Format builds the index number for the admission year and per-year sequence value.
// Sequences wider than Digits are written in full.
func (g Generator) Format(year int, seq int64) string {
	return fmt.Sprintf("%s%02d%0*d", g.Prefix, year%100, g.Digits, seq)
}

// Parse splits an index number produced by Format into its two-digit year and sequence
func (g Generator) Parse(index string) (yy int, seq int64, ok bool) {
	rest, found := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(index)), g.Prefix)
	if !found || len(rest) < 2+g.Digits {
		return 0, 0, false
	}
	y, err := strconv.Atoi(rest[:2])
	if err != nil {
		return 0, 0, false
	}
	s, err := strconv.ParseInt(rest[2:], 10, 64)
	if err != nil || s < 1 {
		return 0, 0, false
	}
	return y, s, true
}
