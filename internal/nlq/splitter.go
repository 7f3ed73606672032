package nlq

import (
	"iter"
	"strings"
)

// Split yields the clauses of a question: the "?"-separated segments,
// trimmed and lower-cased, in their original order. Empty segments are
// skipped. The sequence can be ranged over any number of times.
func Split(question string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, part := range strings.Split(question, "?") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if !yield(strings.ToLower(part)) {
				return
			}
		}
	}
}
