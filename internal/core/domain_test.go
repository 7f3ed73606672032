package core

import (
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false},
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRevenueRecordValidate(t *testing.T) {
	good := RevenueRecord{
		Customer:   "ACME",
		Date:       NewDate(2023, 3, 10),
		Month:      "March",
		NetRevenue: MoneyFromCents(50000),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noCustomer := good
	noCustomer.Customer = "  "
	if err := noCustomer.Validate(); !errors.Is(err, ErrEmptyCustomer) {
		t.Fatalf("expected ErrEmptyCustomer, got %v", err)
	}

	noDate := good
	noDate.Date = Date{}
	if err := noDate.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestMonthLabel(t *testing.T) {
	r := RevenueRecord{Customer: "ACME", Date: NewDate(2021, 6, 1)}
	if got := r.MonthLabel(); got != "June" {
		t.Fatalf("expected fallback June, got %q", got)
	}
	r.Month = "Jun"
	if got := r.MonthLabel(); got != "Jun" {
		t.Fatalf("expected source label, got %q", got)
	}
	if MonthName(0) != "" || MonthName(13) != "" || MonthName(12) != "December" {
		t.Fatalf("unexpected MonthName results")
	}
}
