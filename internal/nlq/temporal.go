package nlq

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Temporal is the month and year found in a clause. Zero means unresolved.
type Temporal struct {
	Month int
	Year  int
}

var yearPattern = regexp.MustCompile(`\b20\d{2}\b`)

// ResolveTemporal extracts a month and a year from a lower-cased clause.
//
// Month: the first lexicon token, in lexicon order, occurring anywhere in
// the clause; failing that, the first token whose closest lexicon token
// scores at least MatchThreshold.
//
// Year, first rule that applies: a literal 20xx, "last year", "this year",
// the bare word "last" alongside a month, the bare word "this" alongside a
// month.
func ResolveTemporal(clause string, tokens []string, now time.Time) Temporal {
	month := resolveMonth(clause, tokens)
	return Temporal{
		Month: month,
		Year:  resolveYear(clause, tokens, month != 0, now.Year()),
	}
}

func resolveMonth(clause string, tokens []string) int {
	for _, e := range lexicon {
		if strings.Contains(clause, e.Token) {
			return e.Month
		}
	}
	for _, tok := range cleanTokens(tokens) {
		c := newClosest(tok)
		best, bestScore := -1, 0.0
		for i, key := range lexiconTokens {
			s, ok := c.score(key)
			if ok && s > bestScore {
				best, bestScore = i, s
			}
		}
		if best >= 0 {
			return lexicon[best].Month
		}
	}
	return 0
}

func resolveYear(clause string, tokens []string, haveMonth bool, current int) int {
	if m := yearPattern.FindString(clause); m != "" {
		y, _ := strconv.Atoi(m)
		return y
	}
	switch {
	case strings.Contains(clause, "last year"):
		return current - 1
	case strings.Contains(clause, "this year"):
		return current
	}
	if !haveMonth {
		return 0
	}
	cleaned := cleanTokens(tokens)
	switch {
	case slices.Contains(cleaned, "last"):
		return current - 1
	case slices.Contains(cleaned, "this"):
		return current
	}
	return 0
}
