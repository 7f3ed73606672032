package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"revenueqa/internal/storage"
)

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List import batches in the SQLite store, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := importDBPath
		if dbPath == "" {
			dbPath = appCfg.SQLiteDBPath
		}
		repo, err := storage.NewSQLiteRepository(dbPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", dbPath, err)
		}
		defer repo.Close()

		batches, err := repo.ListBatches(cmd.Context())
		if err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No imports yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BATCH\tIMPORTED AT\tROWS\tSOURCE")
		for _, b := range batches {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", b.ID, b.ImportedAt, b.RowCount, b.Source)
		}
		return tw.Flush()
	},
}

func init() {
	batchesCmd.Flags().StringVar(&importDBPath, "db", "", "SQLite database path (default SQLITE_DB_PATH)")
	rootCmd.AddCommand(batchesCmd)
}
