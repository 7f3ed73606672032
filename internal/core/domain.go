package core

import (
	"errors"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	// RevenueRecord is one row of the revenue table.
	RevenueRecord struct {
		Customer     string
		Division     string
		AccountOwner string
		Date         Date
		Month        string // display label as it appears in the source, e.g. "March"
		NetRevenue   Money
	}
)

var (
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrEmptyCustomer  = errors.New("empty customer name")
	ErrMissingColumn  = errors.New("missing required column")
	ErrEmptyTable     = errors.New("revenue table is empty")
	ErrTableNotLoaded = errors.New("revenue table not loaded")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// MonthName returns the English month name for 1-12, or "" when out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return time.Month(month).String()
}

// Validate checks the fields the query engine relies on. Division and owner
// may be blank; a row without them simply never matches those filters.
func (r RevenueRecord) Validate() error {
	if strings.TrimSpace(r.Customer) == "" {
		return ErrEmptyCustomer
	}
	if err := r.Date.Validate(); err != nil {
		return errors.Join(ErrInvalidDate, err)
	}
	return nil
}

// MonthLabel returns the source month label, falling back to the month name
// derived from Date when the source left it blank.
func (r RevenueRecord) MonthLabel() string {
	if s := strings.TrimSpace(r.Month); s != "" {
		return s
	}
	return MonthName(r.Date.Month())
}
