package nlq

import "strings"

// Branch names, also used in logs and the JSON API.
const (
	BranchTenure     = "tenure"
	BranchCustomer   = "customer"
	BranchDivision   = "division"
	BranchOwner      = "account_owner"
	BranchUnresolved = "unresolved"
)

// Intent is the single action chosen for a clause. The concrete types below
// are the only implementations.
type Intent interface {
	Branch() string
	intent()
}

type (
	// TenureIntent asks how long a customer has been active.
	TenureIntent struct {
		Customer string
	}

	// CustomerRevenueIntent asks for a customer's revenue in one month.
	CustomerRevenueIntent struct {
		Customer string
		Month    int
		Year     int
	}

	// DivisionRevenueIntent asks for a division's revenue in one year.
	DivisionRevenueIntent struct {
		Division string
		Year     int
	}

	// OwnerSummaryIntent asks about the accounts held by an account owner,
	// within a month when both Month and Year are set, otherwise lifetime.
	OwnerSummaryIntent struct {
		Owner string
		Month int
		Year  int
	}

	// UnresolvedIntent is returned when no entity was recognized.
	UnresolvedIntent struct{}
)

func (TenureIntent) Branch() string          { return BranchTenure }
func (CustomerRevenueIntent) Branch() string { return BranchCustomer }
func (DivisionRevenueIntent) Branch() string { return BranchDivision }
func (OwnerSummaryIntent) Branch() string    { return BranchOwner }
func (UnresolvedIntent) Branch() string      { return BranchUnresolved }

func (TenureIntent) intent()          {}
func (CustomerRevenueIntent) intent() {}
func (DivisionRevenueIntent) intent() {}
func (OwnerSummaryIntent) intent()    {}
func (UnresolvedIntent) intent()      {}

// Classify picks the intent for a clause. Customer outranks division, which
// outranks account owner; a customer clause containing "how long" is a
// tenure question.
func Classify(clause string, q ResolvedQuery) Intent {
	switch {
	case q.Customer != "" && strings.Contains(clause, "how long"):
		return TenureIntent{Customer: q.Customer}
	case q.Customer != "":
		return CustomerRevenueIntent{Customer: q.Customer, Month: q.Month, Year: q.Year}
	case q.Division != "":
		return DivisionRevenueIntent{Division: q.Division, Year: q.Year}
	case q.AccountOwner != "":
		return OwnerSummaryIntent{Owner: q.AccountOwner, Month: q.Month, Year: q.Year}
	default:
		return UnresolvedIntent{}
	}
}
