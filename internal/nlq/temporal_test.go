package nlq

import (
	"testing"
)

func TestResolveTemporal(t *testing.T) {
	cases := []struct {
		clause string
		want   Temporal
	}{
		{"how much did acme make in march 2023", Temporal{Month: 3, Year: 2023}},
		{"revenue last year", Temporal{Year: 2024}},
		{"revenue this year in june", Temporal{Month: 6, Year: 2025}},
		{"how much did acme make last march", Temporal{Month: 3, Year: 2024}},
		{"what about this april", Temporal{Month: 4, Year: 2025}},
		{"explicit year wins over last year 2021", Temporal{Year: 2021}},
		{"sales in agust 2022", Temporal{Month: 8, Year: 2022}},
		{"sales in juen", Temporal{Month: 6}},
		{"the last quarter", Temporal{}},
		{"this is it", Temporal{}},
		{"revenue in 1999", Temporal{}},
		{"order 20234", Temporal{}},
		{"dec 2020", Temporal{Month: 12, Year: 2020}},
	}
	for _, tc := range cases {
		t.Run(tc.clause, func(t *testing.T) {
			got := ResolveTemporal(tc.clause, Tokenize(tc.clause), testNow)
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestExactLexiconHitBeatsFuzzy(t *testing.T) {
	// "junk" is a fuzzy candidate for june, but "mar" appears verbatim later.
	got := ResolveTemporal("junk from mar", Tokenize("junk from mar"), testNow)
	if got.Month != 3 {
		t.Fatalf("expected march, got %d", got.Month)
	}
}

func TestLookupMonth(t *testing.T) {
	if m, ok := LookupMonth("sep"); !ok || m != 9 {
		t.Fatalf("expected 9, got %d", m)
	}
	if _, ok := LookupMonth("sept"); ok {
		t.Fatalf("sept is not a lexicon token")
	}
	if n := len(Lexicon()); n != 23 {
		t.Fatalf("expected 23 lexicon entries, got %d", n)
	}
}
