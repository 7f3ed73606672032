package nlq

import (
	"context"
	"strings"
	"time"

	"revenueqa/internal/log"
	"revenueqa/internal/revenue"
)

const (
	// MsgEmptyQuestion is returned for blank input.
	MsgEmptyQuestion = "Please enter a question!"

	// ClauseSeparator joins per-clause answers.
	ClauseSeparator = "\n\n"
)

// Clock supplies the current time for relative years and tenure.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// ClauseResult is the outcome of one clause.
type ClauseResult struct {
	Clause string        `json:"clause"`
	Query  ResolvedQuery `json:"resolved"`
	Branch string        `json:"branch"`
	Answer string        `json:"answer"`
}

// Explain answers every clause of question and returns the intermediate
// resolution alongside each answer.
func Explain(question string, table *revenue.Table, vocab *revenue.Vocabulary, now time.Time) []ClauseResult {
	var out []ClauseResult
	for clause := range Split(question) {
		q := Resolve(clause, vocab, now)
		in := Classify(clause, q)
		out = append(out, ClauseResult{
			Clause: clause,
			Query:  q,
			Branch: in.Branch(),
			Answer: Execute(in, table, now),
		})
	}
	return out
}

// Answer returns the combined answer to question: one sentence per clause,
// in order, separated by a blank line.
func Answer(question string, table *revenue.Table, vocab *revenue.Vocabulary, now time.Time) string {
	return Join(Explain(question, table, vocab, now))
}

// Join concatenates clause answers, or returns MsgEmptyQuestion when there
// are none.
func Join(results []ClauseResult) string {
	if len(results) == 0 {
		return MsgEmptyQuestion
	}
	answers := make([]string, len(results))
	for i, r := range results {
		answers[i] = r.Answer
	}
	return strings.Join(answers, ClauseSeparator)
}

// Engine answers questions against a snapshot using an injected clock.
type Engine struct {
	clock  Clock
	logger *log.Logger
}

// NewEngine creates an Engine. A nil clock means SystemClock.
func NewEngine(clock Clock, logger *log.Logger) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Engine{clock: clock, logger: logger.WithComponent(log.ComponentResolver)}
}

// Now returns the engine clock's current time.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Explain resolves and answers each clause of question against snap.
func (e *Engine) Explain(ctx context.Context, question string, snap *revenue.Snapshot) []ClauseResult {
	if snap == nil {
		return nil
	}
	results := Explain(question, snap.Table, snap.Vocabulary, e.clock.Now())
	for _, r := range results {
		fields := log.NewFields().
			WithOperation(log.OpResolve).
			WithResolution(r.Branch, r.Query.Customer, r.Query.Division, r.Query.AccountOwner, r.Query.Month, r.Query.Year)
		fields[log.FieldClause] = r.Clause
		e.logger.DebugContext(ctx, "Clause resolved", fields.ToSlice()...)
	}
	return results
}

// Answer returns the combined answer to question against snap.
func (e *Engine) Answer(ctx context.Context, question string, snap *revenue.Snapshot) string {
	return Join(e.Explain(ctx, question, snap))
}
