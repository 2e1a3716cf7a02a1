package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"festa-events-pipeline/internal/services"
)

var (
	oaSearchTerms     []string
	oaAgendasPerTerm  int
	oaEventsPerAgenda int
	oaXLSXPath        string
	oaCSVPath         string
)

// openagendaCmd represents the openagenda command
var openagendaCmd = &cobra.Command{
	Use:   "openagenda",
	Short: "Search OpenAgenda and export matching events",
	Long: `Search public OpenAgenda agendas for each --search term, collect their
events, flatten them into the French export layout, and write the result
as a spreadsheet. The API key is read from --key or FESTA_OPENAGENDA_KEY.`,
	RunE: runOpenagenda,
}

func init() {
	openagendaCmd.Flags().String("key", "", "OpenAgenda API key")
	openagendaCmd.Flags().StringSliceVar(&oaSearchTerms, "search", []string{"fête"}, "search terms, repeatable")
	openagendaCmd.Flags().IntVar(&oaAgendasPerTerm, "agendas", 10, "agendas to inspect per search term")
	openagendaCmd.Flags().IntVar(&oaEventsPerAgenda, "events", 50, "events to fetch per agenda")
	openagendaCmd.Flags().StringVar(&oaXLSXPath, "xlsx", "", "write an Excel workbook to this path")
	openagendaCmd.Flags().StringVar(&oaCSVPath, "csv", "", "write a CSV file to this path")

	_ = viper.BindPFlag("openagenda_key", openagendaCmd.Flags().Lookup("key"))

	rootCmd.AddCommand(openagendaCmd)
}

func runOpenagenda(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	key := viper.GetString("openagenda_key")
	if key == "" {
		return fmt.Errorf("no OpenAgenda API key: set --key or FESTA_OPENAGENDA_KEY")
	}
	if oaXLSXPath == "" && oaCSVPath == "" {
		return fmt.Errorf("nothing to do: set --xlsx and/or --csv")
	}

	client := services.NewOpenAgendaClient(key)
	events, err := client.SearchEvents(ctx, oaSearchTerms, oaAgendasPerTerm, oaEventsPerAgenda)
	if err != nil {
		return fmt.Errorf("search events: %w", err)
	}

	rows := services.FlattenEvents(events)
	fmt.Printf("Collected %d events, %d rows after deduplication\n", len(events), len(rows))

	return writeSpreadsheets(rows, oaXLSXPath, oaCSVPath)
}

// writeSpreadsheets writes rows to the requested XLSX and/or CSV outputs.
func writeSpreadsheets(rows [][]string, xlsxPath, csvPath string) error {
	if xlsxPath != "" {
		if err := services.WriteXLSX(xlsxPath, rows); err != nil {
			return fmt.Errorf("write %s: %w", xlsxPath, err)
		}
		fmt.Printf("Wrote %s\n", xlsxPath)
	}
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", csvPath, err)
		}
		defer f.Close()
		if err := services.WriteCSV(f, rows); err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
		fmt.Printf("Wrote %s\n", csvPath)
	}
	return nil
}
