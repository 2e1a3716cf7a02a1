package cli

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"festa-events-pipeline/internal/models"
	"festa-events-pipeline/internal/services"
)

var (
	dtSink     string
	dtDBPath   string
	dtArchive  bool
	dtNoRegion bool
	dtReport   string
)

// datatourismeCmd represents the datatourisme command
var datatourismeCmd = &cobra.Command{
	Use:   "datatourisme <feed-url>",
	Short: "Ingest a DataTourisme JSON-LD feed",
	Long: `Fetch a DataTourisme webservice feed, adapt each @graph record into a
canonical event, filter it through the keyword gates, skip records whose
source id is already stored, and insert the survivors into the selected
sink.`,
	Args: cobra.ExactArgs(1),
	RunE: runDatatourisme,
}

func init() {
	datatourismeCmd.Flags().StringVar(&dtSink, "sink", "duckdb", "event sink: duckdb, dynamodb or none")
	datatourismeCmd.Flags().StringVar(&dtDBPath, "db", "festa.duckdb", "DuckDB database path for the duckdb sink")
	datatourismeCmd.Flags().BoolVar(&dtArchive, "archive", false, "upload run snapshots to S3")
	datatourismeCmd.Flags().BoolVar(&dtNoRegion, "no-region-lookup", false, "skip postal-code region lookups")
	datatourismeCmd.Flags().StringVar(&dtReport, "report", "", "write the full run report as JSON to this file")

	rootCmd.AddCommand(datatourismeCmd)
}

func runDatatourisme(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	feedURL := args[0]

	classifier, err := loadClassifier()
	if err != nil {
		return err
	}

	var regions services.RegionResolver = services.NewZippopotamClient()
	if dtNoRegion {
		regions = services.NopRegionResolver{}
	}

	sink, cleanup, err := openSink(cmd)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	feed := services.NewDataTourismeClient(feedURL)
	adapter := services.NewAdapter(classifier, regions)
	pipeline := services.NewPipeline(feed, adapter, sink)

	runID := models.NewRunID(time.Now())
	report, err := pipeline.Run(ctx, runID)
	if err != nil {
		return fmt.Errorf("pipeline run %s: %w", runID, err)
	}

	if dtArchive {
		archive, err := services.NewArchive(ctx)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		if _, err := archive.UploadEvents(ctx, runID, report.Adapted); err != nil {
			log.Printf("archive upload failed: %v", err)
		}
	}

	if dtReport != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(dtReport, data, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	fmt.Printf("Run %s: %d fetched, %d already stored, %d adapted, %d rejected, %d inserted (%d failed)\n",
		report.RunID, report.Fetched, report.Existing, len(report.Adapted),
		len(report.Rejected), report.Inserted, report.InsertFailed)

	if verbose {
		for _, rejection := range report.Rejected {
			fmt.Printf("  rejected %q: %s\n", rejection.Raw.SourceID(), rejection.Reason)
		}
	}
	return nil
}

// loadClassifier builds the keyword classifier from the --filters file, or the
// built-in lists when no file is given.
func loadClassifier() (*services.Classifier, error) {
	if filtersFile == "" {
		return services.NewClassifier(services.DefaultFilterConfig()), nil
	}
	cfg, err := services.LoadFilterConfig(filtersFile)
	if err != nil {
		return nil, fmt.Errorf("load filters from %s: %w", filtersFile, err)
	}
	return services.NewClassifier(cfg), nil
}

// openSink resolves the --sink flag into an EventSink. The returned cleanup
// closes the warehouse handle and may be nil.
func openSink(cmd *cobra.Command) (services.EventSink, func(), error) {
	switch dtSink {
	case "duckdb":
		warehouse, err := services.OpenWarehouse(dtDBPath)
		if err != nil {
			return nil, nil, err
		}
		return warehouse, func() { warehouse.Close() }, nil
	case "dynamodb":
		store, err := services.NewDocumentStore(cmd.Context())
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	case "none":
		return nil, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q (want duckdb, dynamodb or none)", dtSink)
	}
}
