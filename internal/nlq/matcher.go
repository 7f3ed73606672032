package nlq

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"revenueqa/internal/revenue"
)

// MatchThreshold is the minimum similarity for a fuzzy match to count.
const MatchThreshold = 0.70

// Similarity returns the difflib ratio between a and b at character level,
// with a as the first sequence.
func Similarity(a, b string) float64 {
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// closest finds the candidate most similar to word. The matcher keeps word
// as the second sequence and swaps candidates in as the first, so the index
// of word is built once. Equal scores go to the earlier candidate under
// less.
type closest struct {
	sm   *difflib.SequenceMatcher
	word string
}

func newClosest(word string) *closest {
	sm := difflib.NewMatcher(nil, chars(word))
	return &closest{sm: sm, word: word}
}

func (c *closest) score(candidate string) (float64, bool) {
	c.sm.SetSeq1(chars(candidate))
	if c.sm.RealQuickRatio() < MatchThreshold || c.sm.QuickRatio() < MatchThreshold {
		return 0, false
	}
	r := c.sm.Ratio()
	return r, r >= MatchThreshold
}

// Match returns the vocabulary name that the clause tokens refer to.
//
// Tokens are scanned left to right and the first position holding an
// accepted match wins. At each position every phrase of 1..MaxWords tokens
// is scored against the lower-cased names; the best phrase decides that
// position. Equal scores resolve to the lexicographically smallest name.
func Match(tokens []string, names *revenue.Names) (string, bool) {
	if names.Len() == 0 {
		return "", false
	}
	tokens = cleanTokens(tokens)
	maxWords := names.MaxWords()

	for i := range tokens {
		best, bestScore := -1, 0.0
		for n := 1; n <= maxWords && i+n <= len(tokens); n++ {
			c := newClosest(strings.Join(tokens[i:i+n], " "))
			for j := 0; j < names.Len(); j++ {
				s, ok := c.score(names.Lower(j))
				if !ok {
					continue
				}
				if best < 0 || s > bestScore || (s == bestScore && names.Lower(j) < names.Lower(best)) {
					best, bestScore = j, s
				}
			}
		}
		if best >= 0 {
			return names.Original(best), true
		}
	}
	return "", false
}

// Tokenize splits a clause on whitespace and applies the token cleanup
// used by Match.
func Tokenize(clause string) []string {
	return cleanTokens(strings.Fields(clause))
}

func cleanTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = cleanToken(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// cleanToken lower-cases t and strips leading and trailing punctuation, so
// "acme," and "(acme)" both become "acme". Pure punctuation becomes "".
func cleanToken(t string) string {
	return strings.ToLower(strings.TrimFunc(t, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	}))
}
