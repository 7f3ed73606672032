package sheets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"revenueqa/internal/core"
)

// Column is one of the fields every revenue source must provide.
type Column int

const (
	ColCustomer Column = iota
	ColDivision
	ColAccountOwner
	ColDate
	ColMonth
	ColNetRevenue
	numColumns
)

var columnNames = [numColumns]string{
	ColCustomer:     "Customer Name",
	ColDivision:     "Division",
	ColAccountOwner: "Account Owner",
	ColDate:         "Date",
	ColMonth:        "Month",
	ColNetRevenue:   "Net Revenue",
}

// Accepted header spellings, compared after normalizeHeader.
var headerAliases = map[string]Column{
	"customer name": ColCustomer,
	"customer":      ColCustomer,
	"client":        ColCustomer,
	"division":      ColDivision,
	"account owner": ColAccountOwner,
	"owner":         ColAccountOwner,
	"date":          ColDate,
	"month":         ColMonth,
	"net revenue":   ColNetRevenue,
	"revenue":       ColNetRevenue,
}

func (c Column) String() string { return columnNames[c] }

// Header maps each required column to its index in a source row.
type Header [numColumns]int

// ParseHeader locates the required columns in a header row. Every missing
// column is reported in one error wrapping core.ErrMissingColumn.
func ParseHeader(row []string) (Header, error) {
	var h Header
	for i := range h {
		h[i] = -1
	}
	for i, cell := range row {
		col, ok := headerAliases[normalizeHeader(cell)]
		if ok && h[col] < 0 {
			h[col] = i
		}
	}
	var missing []string
	for c, idx := range h {
		if idx < 0 {
			missing = append(missing, Column(c).String())
		}
	}
	if len(missing) > 0 {
		return h, fmt.Errorf("%w: %s", core.ErrMissingColumn, strings.Join(missing, ", "))
	}
	return h, nil
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// ParseRecords turns a sheet (header row first) into revenue records.
// Blank rows are skipped. A malformed date or amount fails the whole load
// with the 1-based sheet row number.
func ParseRecords(rows [][]string) ([]core.RevenueRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet has no header row", core.ErrMissingColumn)
	}
	h, err := ParseHeader(rows[0])
	if err != nil {
		return nil, err
	}
	out := make([]core.RevenueRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		r, err := h.Record(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// Record converts one data row.
func (h Header) Record(row []string) (core.RevenueRecord, error) {
	get := func(c Column) string {
		idx := h[c]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	date, err := ParseDate(get(ColDate))
	if err != nil {
		return core.RevenueRecord{}, err
	}
	amount := core.Money{}
	if raw := get(ColNetRevenue); raw != "" {
		if amount, err = core.ParseMoney(raw); err != nil {
			return core.RevenueRecord{}, fmt.Errorf("net revenue %q: %w", raw, err)
		}
	}
	return core.RevenueRecord{
		Customer:     get(ColCustomer),
		Division:     get(ColDivision),
		AccountOwner: get(ColAccountOwner),
		Date:         date,
		Month:        get(ColMonth),
		NetRevenue:   amount,
	}, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// Spreadsheet serial day zero, including the 1900 leap-year quirk.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseDate accepts ISO and US style dates as well as spreadsheet serial
// day numbers (e.g. "44995" or "44995.5").
func ParseDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return core.Date{}, fmt.Errorf("%w: empty date", core.ErrInvalidDate)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial < 2958466 {
		t := excelEpoch.AddDate(0, 0, int(math.Floor(serial)))
		return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
	}
	return core.Date{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, s)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
