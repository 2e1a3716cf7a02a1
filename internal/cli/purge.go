package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"festa-events-pipeline/internal/services"
)

var purgeDBPath string

// purgeCmd represents the purge command
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired events from the warehouse",
	Long: `Remove warehouse rows whose end date has passed, keeping rows that were
ingested today so a run's own output is never purged.`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeDBPath, "db", "festa.duckdb", "DuckDB database path")

	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	warehouse, err := services.OpenWarehouse(purgeDBPath)
	if err != nil {
		return err
	}
	defer warehouse.Close()

	deleted, err := warehouse.DeleteExpiredEvents(cmd.Context())
	if err != nil {
		return err
	}

	remaining, err := warehouse.CountEvents(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d expired events, %d remaining\n", deleted, remaining)
	return nil
}
