package memory

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"revenueqa/internal/core"
	ports "revenueqa/internal/sheets"
)

// Store serves revenue rows from memory, optionally re-read from a CSV file
// on every load.
type Store struct {
	mu      sync.Mutex
	items   []core.RevenueRecord
	csvPath string
	batches int
}

var (
	_ ports.RevenueReader = (*Store)(nil)
	_ ports.RevenueWriter = (*Store)(nil)
)

// New returns a store holding a copy of records.
func New(records []core.RevenueRecord) *Store {
	return &Store{items: slices.Clone(records)}
}

// NewSample returns a store seeded with the built-in demo table.
func NewSample() *Store {
	return New(SampleRecords())
}

// NewFromCSV returns a store that reads path on each ReadRevenue, so edits
// to the file are picked up by the next reload.
func NewFromCSV(path string) *Store {
	return &Store{csvPath: path}
}

// ReadRevenue returns the stored rows, or the parsed CSV file when the store
// was created with NewFromCSV.
func (s *Store) ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.csvPath != "" {
		return ReadCSVFile(s.csvPath)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

// ReplaceRevenue swaps the stored rows and returns a synthetic batch id.
func (s *Store) ReplaceRevenue(_ context.Context, _ string, records []core.RevenueRecord) (string, error) {
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return "", fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(records)
	s.csvPath = ""
	s.batches++
	return fmt.Sprintf("mem:%d", s.batches), nil
}

// ReadCSVFile parses a revenue CSV export.
func ReadCSVFile(path string) ([]core.RevenueRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	records, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadCSV parses CSV data whose first row is the header.
func ReadCSV(r io.Reader) ([]core.RevenueRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return ports.ParseRecords(rows)
}
