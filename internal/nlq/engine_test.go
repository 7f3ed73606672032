package nlq

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"revenueqa/internal/core"
	"revenueqa/internal/revenue"
)

func TestAnswerExamples(t *testing.T) {
	snap := testSnapshot()
	cases := []struct {
		question string
		want     string
	}{
		{"How much revenue did ACME make in March 2023?", "ACME made $800.00 in March 2023."},
		{"How long has ACME been a customer?",
			"ACME has been a customer since June 2021 (48 months) with lifetime revenue of $10,000.00."},
		{"How much did ACME make in March 2023? How much did Division West make in 2022?",
			"ACME made $800.00 in March 2023.\n\nDivision West made $1,200.50 in 2022."},
		{"How much did acne make in March 2023?", "ACME made $800.00 in March 2023."},
		{"How much did xcne make in March 2023?", MsgUnresolved},
		{"How many accounts did Priya Patel have in March 2023?",
			"Priya Patel had 2 accounts active in March 2023 with revenue of $800.00."},
		{"How many accounts does Tom Baker have?", "Tom Baker owns 2 accounts with lifetime revenue of $1,050.50."},
		{"What is the weather like?", MsgUnresolved},
		{"", MsgEmptyQuestion},
		{"  ??  ", MsgEmptyQuestion},
	}
	for _, tc := range cases {
		t.Run(tc.question, func(t *testing.T) {
			got := Answer(tc.question, snap.Table, snap.Vocabulary, testNow)
			if got != tc.want {
				t.Fatalf("got %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestAnswerNoCustomerRows(t *testing.T) {
	full := testSnapshot()
	var others []core.RevenueRecord
	for _, r := range testRecords() {
		if r.Customer != "ACME" {
			others = append(others, r)
		}
	}
	got := Answer("How much did ACME make in March 2023?", revenue.NewTable(others), full.Vocabulary, testNow)
	if got != MsgNoCustomerRecord {
		t.Fatalf("got %q", got)
	}
}

func TestLastMonthMeansPreviousYear(t *testing.T) {
	snap := testSnapshot()
	q := Resolve("how much did acme make last march", snap.Vocabulary, testNow)
	want := ResolvedQuery{Customer: "ACME", Month: 3, Year: 2024}
	if q != want {
		t.Fatalf("got %+v, want %+v", q, want)
	}
}

func TestAnswerIsIdempotent(t *testing.T) {
	snap := testSnapshot()
	questions := []string{
		"How much did ACME make in March 2023?",
		"How long has Globex been with us? How many accounts does Priya Patel have?",
		"what about division nort this year",
	}
	for _, question := range questions {
		for clause := range Split(question) {
			if Resolve(clause, snap.Vocabulary, testNow) != Resolve(clause, snap.Vocabulary, testNow) {
				t.Fatalf("resolution of %q is not stable", clause)
			}
		}
		if Answer(question, snap.Table, snap.Vocabulary, testNow) != Answer(question, snap.Table, snap.Vocabulary, testNow) {
			t.Fatalf("answer to %q is not stable", question)
		}
	}
}

func TestAnswerSumsExactlyTheMatchingRows(t *testing.T) {
	snap := testSnapshot()
	for _, r := range snap.Table.Records() {
		rows := snap.Table.Select(revenue.Filter{Customer: r.Customer, Year: r.Date.Year(), Month: r.Date.Month()})
		total := rows.Sum()
		first, _ := rows.First()
		want := fmt.Sprintf("%s made %s in %s %d.", r.Customer, total, first.MonthLabel(), r.Date.Year())
		if total.IsZero() {
			want = fmt.Sprintf("%s had no recorded revenue in %s %d.", r.Customer, first.MonthLabel(), r.Date.Year())
		}
		for _, name := range []string{r.Customer, strings.ToLower(r.Customer), strings.ToUpper(r.Customer)} {
			question := fmt.Sprintf("How much did %s make in %s %d?", name, core.MonthName(r.Date.Month()), r.Date.Year())
			if got := Answer(question, snap.Table, snap.Vocabulary, testNow); got != want {
				t.Fatalf("%s\ngot  %q\nwant %q", question, got, want)
			}
		}
	}
}

func TestExplainReportsBranches(t *testing.T) {
	snap := testSnapshot()
	results := Explain("How long has ACME been a customer? How much did Division West make?", snap.Table, snap.Vocabulary, testNow)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Branch != BranchTenure || results[1].Branch != BranchDivision {
		t.Fatalf("unexpected branches %q, %q", results[0].Branch, results[1].Branch)
	}
	if results[1].Answer != "Please specify the year for Division West." {
		t.Fatalf("unexpected answer %q", results[1].Answer)
	}
}

func TestEngineUsesInjectedClock(t *testing.T) {
	snap := testSnapshot()
	e := NewEngine(FixedClock(testNow), nil)
	got := e.Answer(context.Background(), "What did Umbrella make last January?", snap)
	if got != "Umbrella made -$150.00 in January 2024." {
		t.Fatalf("got %q", got)
	}

	later := NewEngine(FixedClock(testNow.AddDate(1, 0, 0)), nil)
	got = later.Answer(context.Background(), "What did Umbrella make last January?", snap)
	if got != MsgNoCustomerRecord {
		t.Fatalf("got %q", got)
	}

	if NewEngine(nil, nil).Answer(context.Background(), "anything", nil) != MsgEmptyQuestion {
		t.Fatalf("nil snapshot should produce the empty-question message")
	}
}
