package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"festa-events-pipeline/internal/services"
)

var (
	exportXLSXPath string
	exportCSVPath  string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <events.json>",
	Short: "Convert a saved OpenAgenda JSON dump to a spreadsheet",
	Long: `Read a JSON file of previously fetched OpenAgenda events (either a plain
event list, one response page, or a list of response pages) and write it
as a spreadsheet in the French export layout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportXLSXPath, "xlsx", "evenements.xlsx", "write an Excel workbook to this path")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "write a CSV file to this path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	events, err := readEventDump(args[0])
	if err != nil {
		return err
	}

	rows := services.FlattenEvents(events)
	fmt.Printf("Read %d events, %d rows after deduplication\n", len(events), len(rows))

	return writeSpreadsheets(rows, exportXLSXPath, exportCSVPath)
}

// readEventDump loads OpenAgenda events from a JSON file. Accepts the three
// shapes that past fetches produced: a bare event list, one {"events": [...]}
// page, or a list of such pages.
func readEventDump(path string) ([]services.AgendaEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var page struct {
		Events []services.AgendaEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Events != nil {
		return page.Events, nil
	}

	var pages []struct {
		Events []services.AgendaEvent `json:"events"`
	}
	if err := json.Unmarshal(data, &pages); err == nil {
		var all []services.AgendaEvent
		for _, p := range pages {
			all = append(all, p.Events...)
		}
		if all != nil {
			return all, nil
		}
	}

	var events []services.AgendaEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	return nil, fmt.Errorf("%s: not a recognized event dump", path)
}
