package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"revenueqa/internal/core"
	"revenueqa/internal/sheets"

	_ "modernc.org/sqlite"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ sheets.RevenueReader = (*SQLiteRepository)(nil)
	_ sheets.RevenueWriter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadRevenue implements sheets.RevenueReader. It returns the rows of the
// most recent import batch, or an empty slice when nothing was imported.
func (r *SQLiteRepository) ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error) {
	batch, err := r.queries.GetLatestBatch(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest batch: %w", err)
	}

	rows, err := r.queries.ListRevenueRowsByBatch(ctx, batch.ID)
	if err != nil {
		return nil, fmt.Errorf("list revenue rows: %w", err)
	}

	out := make([]core.RevenueRecord, len(rows))
	for i, row := range rows {
		rec, err := toRecord(row)
		if err != nil {
			return nil, fmt.Errorf("revenue row %d: %w", row.ID, err)
		}
		out[i] = rec
	}
	return out, nil
}

// ReplaceRevenue implements sheets.RevenueWriter. The new batch and its rows
// are written in one transaction; rows of earlier batches are removed, their
// batch entries are kept as import history.
func (r *SQLiteRepository) ReplaceRevenue(ctx context.Context, source string, records []core.RevenueRecord) (string, error) {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return "", fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	batchID := uuid.NewString()
	err = q.CreateImportBatch(ctx, CreateImportBatchParams{
		ID:         batchID,
		Source:     source,
		RowCount:   int64(len(records)),
		ImportedAt: time.Now().UTC().Format(timestampLayout),
	})
	if err != nil {
		return "", fmt.Errorf("create import batch: %w", err)
	}

	for i, rec := range records {
		err := q.InsertRevenueRow(ctx, InsertRevenueRowParams{
			BatchID:      batchID,
			CustomerName: rec.Customer,
			Division:     rec.Division,
			AccountOwner: rec.AccountOwner,
			RecordDate:   rec.Date.Format(dateLayout),
			MonthLabel:   rec.Month,
			NetRevenue:   rec.NetRevenue.Amount.String(),
		})
		if err != nil {
			return "", fmt.Errorf("insert record %d: %w", i+1, err)
		}
	}

	removed, err := q.DeleteRowsExceptBatch(ctx, batchID)
	if err != nil {
		return "", fmt.Errorf("delete previous rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Revenue table imported to SQLite",
		"batch_id", batchID,
		"source", source,
		"rows", len(records),
		"replaced_rows", removed)

	return batchID, nil
}

// ListBatches returns the import history, newest first.
func (r *SQLiteRepository) ListBatches(ctx context.Context) ([]ImportBatch, error) {
	batches, err := r.queries.ListImportBatches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list import batches: %w", err)
	}
	return batches, nil
}

func toRecord(row RevenueRow) (core.RevenueRecord, error) {
	t, err := time.Parse(dateLayout, row.RecordDate)
	if err != nil {
		return core.RevenueRecord{}, fmt.Errorf("%w: %q", core.ErrInvalidDate, row.RecordDate)
	}
	amount, err := core.ParseMoney(row.NetRevenue)
	if err != nil {
		return core.RevenueRecord{}, err
	}
	return core.RevenueRecord{
		Customer:     row.CustomerName,
		Division:     row.Division,
		AccountOwner: row.AccountOwner,
		Date:         core.NewDate(t.Year(), int(t.Month()), t.Day()),
		Month:        row.MonthLabel,
		NetRevenue:   amount,
	}, nil
}
