package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"festa-events-pipeline/internal/services"
)

var (
	reviewDBPath    string
	reviewThreshold float64
	reviewSuggest   bool
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Report likely duplicates and category suggestions",
	Long: `Score every pair of stored events on title, city and date similarity and
print the pairs above the threshold for manual review. With --suggest, also
ask the language model for a category proposal for each event left in the
generic bucket. Nothing is modified; the output is advisory.`,
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewDBPath, "db", "festa.duckdb", "DuckDB database path")
	reviewCmd.Flags().Float64Var(&reviewThreshold, "threshold", 0.8, "similarity score above which a pair is reported")
	reviewCmd.Flags().BoolVar(&reviewSuggest, "suggest", false, "suggest categories for uncategorized events (needs FESTA_OPENAI_API_KEY)")

	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	warehouse, err := services.OpenWarehouse(reviewDBPath)
	if err != nil {
		return err
	}
	defer warehouse.Close()

	events, err := warehouse.ListEvents(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Reviewing %d events\n", len(events))

	pairs := 0
	for i := 0; i < len(events); i++ {
		for j := i + 1; j < len(events); j++ {
			score := services.EventSimilarity(events[i], events[j])
			if score < reviewThreshold {
				continue
			}
			pairs++
			fmt.Printf("  %.2f  %q (%s, %s) ~ %q (%s, %s)\n", score,
				events[i].Title, events[i].City, events[i].StartDate,
				events[j].Title, events[j].City, events[j].StartDate)
		}
	}
	fmt.Printf("%d pairs above %.2f\n", pairs, reviewThreshold)

	if !reviewSuggest {
		return nil
	}

	apiKey := viper.GetString("openai_api_key")
	if apiKey == "" {
		return fmt.Errorf("no OpenAI API key: set FESTA_OPENAI_API_KEY")
	}
	suggester := services.NewCategorySuggester(apiKey)
	categories := categoryNames()

	for _, event := range events {
		if event.Category != services.CategoryOther {
			continue
		}
		suggestion, err := suggester.Suggest(ctx, event, categories)
		if err != nil {
			log.Printf("suggestion failed for %q: %v", event.Title, err)
			continue
		}
		fmt.Printf("  suggest %q -> %s\n", event.Title, suggestion)
	}
	return nil
}

// categoryNames returns every category the keyword table can assign, in rule
// order, for use as the suggestion choice list.
func categoryNames() []string {
	cfg := services.DefaultFilterConfig()
	names := []string{services.CategoryCulinary}
	for _, rule := range cfg.Categories {
		names = append(names, rule.Name)
	}
	return append(names, services.CategoryOther)
}
