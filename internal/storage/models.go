package storage

type ImportBatch struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt string
}

type RevenueRow struct {
	ID           int64
	BatchID      string
	CustomerName string
	Division     string
	AccountOwner string
	RecordDate   string
	MonthLabel   string
	NetRevenue   string
}
