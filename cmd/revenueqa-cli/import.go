package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"revenueqa/internal/cli"
	"revenueqa/internal/log"
	"revenueqa/internal/services"
	"revenueqa/internal/sheets/excel"
	gsheet "revenueqa/internal/sheets/google"
	"revenueqa/internal/sheets/memory"
	"revenueqa/internal/storage"
)

var (
	importDBPath     string
	importSheet      string
	importFromSheets bool
	importWatch      time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import [files...]",
	Short: "Load .xlsx or .csv files into the SQLite store",
	Long: `Load one or more revenue tables into the SQLite store as a single import
batch. Files are read concurrently and concatenated in argument order. With
--from-sheets the configured Google spreadsheet is added as a source; with
--watch the import repeats on that interval until interrupted.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDBPath, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "worksheet to read from .xlsx files (default first sheet)")
	importCmd.Flags().BoolVar(&importFromSheets, "from-sheets", false, "also import the configured Google spreadsheet")
	importCmd.Flags().DurationVar(&importWatch, "watch", 0, "repeat the import on this interval")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	sources, err := sourcesFromPaths(args, importSheet)
	if err != nil {
		return err
	}
	if importFromSheets {
		client, err := gsheet.NewFromEnv(cmd.Context())
		if err != nil {
			return fmt.Errorf("google sheets: %w", err)
		}
		sources = append(sources, services.ImportSource{Name: "sheets:" + appCfg.GoogleSpreadsheetID, Reader: client})
	}
	if len(sources) == 0 {
		return fmt.Errorf("nothing to import: pass .xlsx/.csv files or --from-sheets")
	}

	dbPath := importDBPath
	if dbPath == "" {
		dbPath = appCfg.SQLiteDBPath
	}
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer repo.Close()

	importer := services.NewImportService(repo, logger)

	if importWatch > 0 {
		return watchImport(importer, sources)
	}

	result, err := importer.Import(cmd.Context(), sources)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows from %s as batch %s\n",
		result.Rows, strings.Join(result.Sources, ", "), result.BatchID)
	return nil
}

func watchImport(importer *services.ImportService, sources []services.ImportSource) error {
	mirror := services.NewMirror(importer, sources, importWatch)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := mirror.Stop(ctx); err != nil {
			logger.Warn("Mirror did not stop cleanly", log.FieldError, err)
		}
	})
	if err := mirror.Start(ctx); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}

// sourcesFromPaths picks a reader for each file by extension.
func sourcesFromPaths(paths []string, sheet string) ([]services.ImportSource, error) {
	sources := make([]services.ImportSource, 0, len(paths))
	for _, p := range paths {
		switch strings.ToLower(filepath.Ext(p)) {
		case ".xlsx", ".xlsm":
			sources = append(sources, services.ImportSource{Name: filepath.Base(p), Reader: excel.New(p, sheet)})
		case ".csv":
			sources = append(sources, services.ImportSource{Name: filepath.Base(p), Reader: memory.NewFromCSV(p)})
		default:
			return nil, fmt.Errorf("unsupported file type %q (want .xlsx or .csv)", p)
		}
	}
	return sources, nil
}
