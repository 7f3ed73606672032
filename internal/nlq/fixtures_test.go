package nlq

import (
	"time"

	"revenueqa/internal/core"
	"revenueqa/internal/revenue"
)

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func row(customer, division, owner string, y, m, d int, amount string) core.RevenueRecord {
	money, err := core.ParseMoney(amount)
	if err != nil {
		panic(err)
	}
	return core.RevenueRecord{
		Customer:     customer,
		Division:     division,
		AccountOwner: owner,
		Date:         core.NewDate(y, m, d),
		Month:        core.MonthName(m),
		NetRevenue:   money,
	}
}

func testRecords() []core.RevenueRecord {
	return []core.RevenueRecord{
		row("ACME", "Division West", "Priya Patel", 2021, 6, 1, "9200.00"),
		row("ACME", "Division West", "Priya Patel", 2023, 3, 10, "500"),
		row("ACME", "Division West", "Priya Patel", 2023, 3, 20, "300"),
		row("Globex", "Division East", "Priya Patel", 2023, 3, 5, "0"),
		row("Globex", "Division East", "Priya Patel", 2022, 5, 14, "2500.25"),
		row("Initech", "Division West", "Tom Baker", 2022, 7, 1, "1200.50"),
		row("Umbrella", "Division East", "Tom Baker", 2024, 1, 31, "-150.00"),
		row("Umbrella", "Division North", "Tom Baker", 2023, 9, 30, "0"),
	}
}

func testSnapshot() *revenue.Snapshot {
	return revenue.NewSnapshot(testRecords(), 1)
}
