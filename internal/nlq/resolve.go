package nlq

import (
	"time"

	"revenueqa/internal/revenue"
)

// ResolvedQuery holds the parameters extracted from one clause. Empty
// strings and zero numbers mean "not found".
type ResolvedQuery struct {
	Customer     string `json:"customer,omitempty"`
	Division     string `json:"division,omitempty"`
	AccountOwner string `json:"account_owner,omitempty"`
	Month        int    `json:"month,omitempty"`
	Year         int    `json:"year,omitempty"`
}

// Resolve runs entity matching and temporal resolution over a lower-cased
// clause.
func Resolve(clause string, vocab *revenue.Vocabulary, now time.Time) ResolvedQuery {
	tokens := Tokenize(clause)
	var q ResolvedQuery
	if vocab != nil {
		q.Customer, _ = Match(tokens, vocab.Customers)
		q.Division, _ = Match(tokens, vocab.Divisions)
		q.AccountOwner, _ = Match(tokens, vocab.Owners)
	}
	tm := ResolveTemporal(clause, tokens, now)
	q.Month, q.Year = tm.Month, tm.Year
	return q
}
