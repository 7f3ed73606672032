package main

import (
	"bytes"
	"strings"
	"testing"

	"revenueqa/internal/nlq"
)

func TestSourcesFromPaths(t *testing.T) {
	sources, err := sourcesFromPaths([]string{"data/NPL Sample.xlsx", "/tmp/extra.CSV"}, "Sheet1")
	if err != nil {
		t.Fatalf("sourcesFromPaths() error = %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(sources))
	}
	if sources[0].Name != "NPL Sample.xlsx" || sources[1].Name != "extra.CSV" {
		t.Errorf("names = %q, %q", sources[0].Name, sources[1].Name)
	}

	if _, err := sourcesFromPaths([]string{"table.json"}, ""); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestPrintAnswer(t *testing.T) {
	clauses := []nlq.ClauseResult{{Clause: "acme march 2023", Branch: nlq.BranchCustomer, Answer: "ACME made $800.00 in March 2023."}}

	var buf bytes.Buffer
	askExplain = false
	if err := printAnswer(&buf, "ACME made $800.00 in March 2023.", clauses); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "ACME made $800.00 in March 2023.\n" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	askExplain = true
	defer func() { askExplain = false }()
	if err := printAnswer(&buf, "ACME made $800.00 in March 2023.", clauses); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"branch": "customer"`) {
		t.Errorf("explain output missing resolution: %s", buf.String())
	}
}
