package nlq

import (
	"fmt"
	"time"

	"revenueqa/internal/core"
	"revenueqa/internal/revenue"
)

// User-facing messages that do not depend on the data.
const (
	MsgUnresolved       = "Sorry, I could not find a customer, division or account owner in your question."
	MsgMissingMonth     = "Sorry, could not recognize the month. Please specify the month."
	MsgMissingYear      = "Sorry, could not recognize the year. Please specify the year or say 'last year' or 'this year'."
	MsgNoCustomerRecord = "No matching customer revenue record found."
	MsgNoDivisionRecord = "No matching division revenue record found."
)

// Execute answers one classified clause against table. It never fails; every
// outcome is a sentence for the user.
func Execute(in Intent, table *revenue.Table, now time.Time) string {
	switch in := in.(type) {
	case TenureIntent:
		return tenure(in, table, now)
	case CustomerRevenueIntent:
		return customerRevenue(in, table)
	case DivisionRevenueIntent:
		return divisionRevenue(in, table)
	case OwnerSummaryIntent:
		return ownerSummary(in, table)
	case UnresolvedIntent:
		return MsgUnresolved
	default:
		panic(fmt.Sprintf("nlq: unhandled intent %T", in))
	}
}

func tenure(in TenureIntent, table *revenue.Table, now time.Time) string {
	rows := table.Select(revenue.Filter{Customer: in.Customer})
	first, ok := rows.Earliest()
	if !ok {
		return fmt.Sprintf("No records found for %s.", in.Customer)
	}
	months := elapsedMonths(first.Date, now)
	return fmt.Sprintf("%s has been a customer since %s %d (%s) with lifetime revenue of %s.",
		in.Customer, core.MonthName(first.Date.Month()), first.Date.Year(), plural(months, "month"), rows.Sum())
}

// elapsedMonths counts whole calendar months from since to now, never
// negative.
func elapsedMonths(since core.Date, now time.Time) int {
	n := (now.Year()-since.Year())*12 + int(now.Month()) - since.Month()
	if now.Day() < since.Day() {
		n--
	}
	return max(n, 0)
}

func customerRevenue(in CustomerRevenueIntent, table *revenue.Table) string {
	switch {
	case in.Month == 0 && in.Year == 0:
		return fmt.Sprintf("Please specify both the month and the year for %s.", in.Customer)
	case in.Month == 0:
		return MsgMissingMonth
	case in.Year == 0:
		return MsgMissingYear
	}
	rows := table.Select(revenue.Filter{Customer: in.Customer, Year: in.Year, Month: in.Month})
	first, ok := rows.First()
	if !ok {
		return MsgNoCustomerRecord
	}
	total := rows.Sum()
	if total.IsZero() {
		return fmt.Sprintf("%s had no recorded revenue in %s %d.", in.Customer, first.MonthLabel(), in.Year)
	}
	return fmt.Sprintf("%s made %s in %s %d.", in.Customer, total, first.MonthLabel(), in.Year)
}

func divisionRevenue(in DivisionRevenueIntent, table *revenue.Table) string {
	if in.Year == 0 {
		return fmt.Sprintf("Please specify the year for %s.", in.Division)
	}
	rows := table.Select(revenue.Filter{Division: in.Division, Year: in.Year})
	if rows.Empty() {
		return MsgNoDivisionRecord
	}
	total := rows.Sum()
	if total.IsZero() {
		return fmt.Sprintf("%s had no recorded revenue in %d.", in.Division, in.Year)
	}
	return fmt.Sprintf("%s made %s in %d.", in.Division, total, in.Year)
}

func ownerSummary(in OwnerSummaryIntent, table *revenue.Table) string {
	owned := table.Select(revenue.Filter{AccountOwner: in.Owner})
	if owned.Empty() {
		return fmt.Sprintf("No records found for %s.", in.Owner)
	}
	if in.Month != 0 && in.Year != 0 {
		window := table.Select(revenue.Filter{AccountOwner: in.Owner, Year: in.Year, Month: in.Month})
		period := fmt.Sprintf("%s %d", core.MonthName(in.Month), in.Year)
		if window.Empty() {
			return fmt.Sprintf("%s had no active accounts in %s.", in.Owner, period)
		}
		return fmt.Sprintf("%s had %s active in %s with revenue of %s.",
			in.Owner, plural(len(window.DistinctCustomers()), "account"), period, window.Sum())
	}
	return fmt.Sprintf("%s owns %s with lifetime revenue of %s.",
		in.Owner, plural(len(owned.DistinctCustomers()), "account"), owned.Sum())
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
