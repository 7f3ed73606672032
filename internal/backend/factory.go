package backend

import (
	"context"
	"fmt"

	"revenueqa/internal/log"
	"revenueqa/internal/sheets/excel"
	gsheet "revenueqa/internal/sheets/google"
	"revenueqa/internal/sheets/memory"
	"revenueqa/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend()
	case CSVBackend:
		return f.createCSVBackend(config)
	case ExcelBackend:
		return f.createExcelBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Info("Initialized memory backend with sample data")
	return &BackendResult{Reader: memory.NewSample()}, nil
}

func (f *DefaultFactory) createCSVBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized CSV backend", log.FieldSource, config.CSVPath)
	return &BackendResult{Reader: memory.NewFromCSV(config.CSVPath)}, nil
}

func (f *DefaultFactory) createExcelBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized Excel backend",
		log.FieldSource, config.XLSXPath,
		"sheet", config.XLSXSheet)
	return &BackendResult{Reader: excel.New(config.XLSXPath, config.XLSXSheet)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Reader:  repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"spreadsheet_id", config.GoogleSpreadsheetID,
		"sheet", config.GoogleSheetName)

	return &BackendResult{Reader: cli}, nil
}
