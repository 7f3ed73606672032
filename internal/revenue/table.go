// Package revenue holds the in-memory revenue table and the read-only
// aggregations the query engine runs against it.
package revenue

import (
	"slices"
	"strings"

	"revenueqa/internal/core"
)

// Table is an immutable set of revenue rows. Callers share one Table across
// goroutines; nothing mutates it after NewTable returns.
type Table struct {
	records []core.RevenueRecord
}

// NewTable copies records into a new Table.
func NewTable(records []core.RevenueRecord) *Table {
	return &Table{records: slices.Clone(records)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Record returns row i.
func (t *Table) Record(i int) core.RevenueRecord {
	return t.records[i]
}

// Records returns a copy of all rows.
func (t *Table) Records() []core.RevenueRecord {
	if t == nil {
		return nil
	}
	return slices.Clone(t.records)
}

// Filter narrows a selection. Zero-valued fields are ignored. Name fields
// compare case-insensitively; Year and Month compare against the row Date.
type Filter struct {
	Customer     string
	Division     string
	AccountOwner string
	Year         int
	Month        int
}

func (f Filter) matches(r core.RevenueRecord) bool {
	if f.Customer != "" && !strings.EqualFold(r.Customer, f.Customer) {
		return false
	}
	if f.Division != "" && !strings.EqualFold(r.Division, f.Division) {
		return false
	}
	if f.AccountOwner != "" && !strings.EqualFold(r.AccountOwner, f.AccountOwner) {
		return false
	}
	if f.Year != 0 && r.Date.Year() != f.Year {
		return false
	}
	if f.Month != 0 && r.Date.Month() != f.Month {
		return false
	}
	return true
}

// Select returns the rows matching f, in table order.
func (t *Table) Select(f Filter) View {
	v := View{table: t}
	if t == nil {
		return v
	}
	for i, r := range t.records {
		if f.matches(r) {
			v.indices = append(v.indices, i)
		}
	}
	return v
}

// View is a filtered subset of a Table, held as row indices.
type View struct {
	table   *Table
	indices []int
}

// Len returns the number of rows in the view.
func (v View) Len() int { return len(v.indices) }

// Empty reports whether the view has no rows.
func (v View) Empty() bool { return len(v.indices) == 0 }

// Record returns the i-th row of the view.
func (v View) Record(i int) core.RevenueRecord {
	return v.table.records[v.indices[i]]
}

// First returns the first row of the view in table order.
func (v View) First() (core.RevenueRecord, bool) {
	if v.Empty() {
		return core.RevenueRecord{}, false
	}
	return v.Record(0), true
}

// Sum totals NetRevenue over the view.
func (v View) Sum() core.Money {
	total := core.Money{}
	for _, i := range v.indices {
		total = total.Add(v.table.records[i].NetRevenue)
	}
	return total
}

// Earliest returns the row with the smallest Date. Rows sharing that date
// resolve to the first one in table order.
func (v View) Earliest() (core.RevenueRecord, bool) {
	if v.Empty() {
		return core.RevenueRecord{}, false
	}
	best := v.Record(0)
	for n := 1; n < v.Len(); n++ {
		r := v.Record(n)
		if r.Date.Before(best.Date.Time) {
			best = r
		}
	}
	return best, true
}

// DistinctCustomers returns the customer names in the view, deduplicated
// case-insensitively, in order of first appearance.
func (v View) DistinctCustomers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range v.indices {
		name := v.table.records[i].Customer
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}
