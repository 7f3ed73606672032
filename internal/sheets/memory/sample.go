package memory

import "revenueqa/internal/core"

// SampleRecords returns a small demo table used when no data source is
// configured.
func SampleRecords() []core.RevenueRecord {
	type row struct {
		customer, division, owner string
		y, m, d                   int
		cents                     int64
	}
	rows := []row{
		{"ACME", "Division West", "Priya Patel", 2021, 6, 1, 920000},
		{"ACME", "Division West", "Priya Patel", 2023, 3, 10, 50000},
		{"ACME", "Division West", "Priya Patel", 2023, 3, 20, 30000},
		{"Globex", "Division East", "Priya Patel", 2022, 5, 14, 250025},
		{"Globex", "Division East", "Priya Patel", 2023, 3, 5, 0},
		{"Initech", "Division West", "Tom Baker", 2022, 7, 1, 120050},
		{"Initech", "Division West", "Tom Baker", 2024, 2, 12, 87500},
		{"Umbrella", "Division East", "Tom Baker", 2023, 9, 30, 0},
		{"Umbrella", "Division East", "Tom Baker", 2024, 1, 31, -15000},
		{"Hooli", "Division North", "Lena Okafor", 2024, 4, 8, 310000},
		{"Hooli", "Division North", "Lena Okafor", 2024, 5, 8, 295000},
	}
	out := make([]core.RevenueRecord, len(rows))
	for i, r := range rows {
		out[i] = core.RevenueRecord{
			Customer:     r.customer,
			Division:     r.division,
			AccountOwner: r.owner,
			Date:         core.NewDate(r.y, r.m, r.d),
			Month:        core.MonthName(r.m),
			NetRevenue:   core.MoneyFromCents(r.cents),
		}
	}
	return out
}
