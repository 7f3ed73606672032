package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"revenueqa/internal/config"
)

const testCSV = `Customer Name,Division,Account Owner,Date,Month,Net Revenue
ACME Corp,West,Priya Patel,2023-03-04,March,"$1,200.00"
`

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{
		DataBackend:      "excel",
		RevenueXLSXPath:  "revenue.xlsx",
		RevenueXLSXSheet: "Data",
		SQLiteDBPath:     "db.sqlite",
	}

	got, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if got.Type != ExcelBackend || got.XLSXPath != "revenue.xlsx" || got.XLSXSheet != "Data" {
		t.Errorf("FromAppConfig() = %+v", got)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) expected error")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("FromAppConfig(postgres) expected error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{name: "memory", config: Config{Type: MemoryBackend}},
		{name: "unknown type", config: Config{Type: "redis"}, wantErr: "invalid backend type"},
		{name: "csv without path", config: Config{Type: CSVBackend}, wantErr: "CSV path is required"},
		{name: "excel without path", config: Config{Type: ExcelBackend}, wantErr: "workbook path is required"},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: "SQLite database path is required"},
		{name: "sheets without id", config: Config{Type: SheetsBackend}, wantErr: "Google Spreadsheet ID is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := strings.Join(GetBackendTypeStrings(), ",")
	if got != "memory,csv,excel,sheets,sqlite" {
		t.Errorf("GetBackendTypeStrings() = %s", got)
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "revenue.csv")
	if err := os.WriteFile(csvPath, []byte(testCSV), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	factory := NewFactory(nil)

	t.Run("memory serves sample data", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		records, err := res.Reader.ReadRevenue(ctx)
		if err != nil {
			t.Fatalf("ReadRevenue() error = %v", err)
		}
		if len(records) == 0 {
			t.Error("expected sample records")
		}
		if res.Cleanup != nil {
			t.Error("memory backend should not need cleanup")
		}
	})

	t.Run("csv reads file", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: CSVBackend, CSVPath: csvPath})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		records, err := res.Reader.ReadRevenue(ctx)
		if err != nil {
			t.Fatalf("ReadRevenue() error = %v", err)
		}
		if len(records) != 1 || records[0].Customer != "ACME Corp" {
			t.Errorf("ReadRevenue() = %+v", records)
		}
	})

	t.Run("sqlite opens and cleans up", func(t *testing.T) {
		res, err := factory.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "test.db")})
		if err != nil {
			t.Fatalf("CreateBackend() error = %v", err)
		}
		if res.Cleanup == nil {
			t.Fatal("sqlite backend should provide cleanup")
		}
		defer res.Cleanup()

		records, err := res.Reader.ReadRevenue(ctx)
		if err != nil {
			t.Fatalf("ReadRevenue() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("fresh database returned %d records", len(records))
		}
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		if _, err := factory.CreateBackend(ctx, Config{Type: ExcelBackend}); err == nil {
			t.Error("expected error for excel backend without path")
		}
	})
}
