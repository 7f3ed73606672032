package sheets

import (
	"context"

	"revenueqa/internal/core"
)

// Ports for table providers.
type (
	// RevenueReader loads every row of the revenue table.
	RevenueReader interface {
		ReadRevenue(ctx context.Context) ([]core.RevenueRecord, error)
	}

	// RevenueWriter replaces the stored table with records and returns the
	// identifier of the import batch that now holds them.
	RevenueWriter interface {
		ReplaceRevenue(ctx context.Context, source string, records []core.RevenueRecord) (batchID string, err error)
	}
)
