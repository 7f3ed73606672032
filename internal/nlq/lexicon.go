// Package nlq turns free-text revenue questions into table lookups.
//
// A question is split into clauses on "?". Each clause is tokenized, matched
// against the customer, division and account owner vocabularies, scanned for
// a month and a year, classified into exactly one Intent and executed
// against the revenue table.
package nlq

// LexiconEntry maps a month spelling to its number.
type LexiconEntry struct {
	Token string
	Month int
}

// lexicon is scanned in this order for exact substring hits, so an
// abbreviation always precedes the full name it prefixes.
var lexicon = [...]LexiconEntry{
	{"jan", 1}, {"january", 1},
	{"feb", 2}, {"february", 2},
	{"mar", 3}, {"march", 3},
	{"apr", 4}, {"april", 4},
	{"may", 5},
	{"jun", 6}, {"june", 6},
	{"jul", 7}, {"july", 7},
	{"aug", 8}, {"august", 8},
	{"sep", 9}, {"september", 9},
	{"oct", 10}, {"october", 10},
	{"nov", 11}, {"november", 11},
	{"dec", 12}, {"december", 12},
}

var lexiconTokens = func() []string {
	out := make([]string, len(lexicon))
	for i, e := range lexicon {
		out[i] = e.Token
	}
	return out
}()

// Lexicon returns a copy of the month lexicon in scan order.
func Lexicon() []LexiconEntry {
	return append([]LexiconEntry(nil), lexicon[:]...)
}

// LookupMonth returns the month number for an exact lexicon token.
func LookupMonth(token string) (int, bool) {
	for _, e := range lexicon {
		if e.Token == token {
			return e.Month, true
		}
	}
	return 0, false
}
