package backend

import (
	"context"

	"revenueqa/internal/sheets"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// BackendResult contains the table source and an optional cleanup function.
type BackendResult struct {
	Reader  sheets.RevenueReader
	Cleanup CleanupFunc
}

// Factory creates table sources based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation.
type Config struct {
	Type BackendType

	// CSV and Excel
	CSVPath   string
	XLSXPath  string
	XLSXSheet string

	// SQLite
	SQLiteDBPath string

	// Google Sheets credentials are read from the environment by the client.
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// BackendType names a source of the revenue table.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	CSVBackend    BackendType = "csv"
	ExcelBackend  BackendType = "excel"
	SheetsBackend BackendType = "sheets"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is known.
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, CSVBackend, ExcelBackend, SheetsBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
