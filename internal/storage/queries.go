package storage

import "context"

const createImportBatch = `
INSERT INTO import_batches (id, source, row_count, imported_at)
VALUES (?, ?, ?, ?)
`

type CreateImportBatchParams struct {
	ID         string
	Source     string
	RowCount   int64
	ImportedAt string
}

func (q *Queries) CreateImportBatch(ctx context.Context, arg CreateImportBatchParams) error {
	_, err := q.db.ExecContext(ctx, createImportBatch, arg.ID, arg.Source, arg.RowCount, arg.ImportedAt)
	return err
}

const insertRevenueRow = `
INSERT INTO revenue_records (batch_id, customer_name, division, account_owner, record_date, month_label, net_revenue)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

type InsertRevenueRowParams struct {
	BatchID      string
	CustomerName string
	Division     string
	AccountOwner string
	RecordDate   string
	MonthLabel   string
	NetRevenue   string
}

func (q *Queries) InsertRevenueRow(ctx context.Context, arg InsertRevenueRowParams) error {
	_, err := q.db.ExecContext(ctx, insertRevenueRow,
		arg.BatchID,
		arg.CustomerName,
		arg.Division,
		arg.AccountOwner,
		arg.RecordDate,
		arg.MonthLabel,
		arg.NetRevenue,
	)
	return err
}

const deleteRowsExceptBatch = `
DELETE FROM revenue_records WHERE batch_id <> ?
`

func (q *Queries) DeleteRowsExceptBatch(ctx context.Context, batchID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteRowsExceptBatch, batchID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getLatestBatch = `
SELECT id, source, row_count, imported_at
FROM import_batches
ORDER BY imported_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) GetLatestBatch(ctx context.Context) (ImportBatch, error) {
	row := q.db.QueryRowContext(ctx, getLatestBatch)
	var i ImportBatch
	err := row.Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt)
	return i, err
}

const listImportBatches = `
SELECT id, source, row_count, imported_at
FROM import_batches
ORDER BY imported_at DESC, rowid DESC
`

func (q *Queries) ListImportBatches(ctx context.Context) ([]ImportBatch, error) {
	rows, err := q.db.QueryContext(ctx, listImportBatches)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportBatch
	for rows.Next() {
		var i ImportBatch
		if err := rows.Scan(&i.ID, &i.Source, &i.RowCount, &i.ImportedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listRevenueRowsByBatch = `
SELECT id, batch_id, customer_name, division, account_owner, record_date, month_label, net_revenue
FROM revenue_records
WHERE batch_id = ?
ORDER BY id
`

func (q *Queries) ListRevenueRowsByBatch(ctx context.Context, batchID string) ([]RevenueRow, error) {
	rows, err := q.db.QueryContext(ctx, listRevenueRowsByBatch, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RevenueRow
	for rows.Next() {
		var i RevenueRow
		if err := rows.Scan(
			&i.ID,
			&i.BatchID,
			&i.CustomerName,
			&i.Division,
			&i.AccountOwner,
			&i.RecordDate,
			&i.MonthLabel,
			&i.NetRevenue,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
