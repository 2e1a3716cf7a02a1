package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	filtersFile string
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "festa",
	Short: "Festa - festival and event ingestion pipeline",
	Long: `Festa fetches public event feeds (DataTourisme JSON-LD, OpenAgenda REST),
normalizes each record into a canonical event, filters it through keyword
gates, deduplicates against the sink, and persists the survivors to a
warehouse table, a document store, or a spreadsheet export.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("festa v0.3.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&filtersFile, "filters", "", "YAML file overriding the built-in keyword filter lists")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	viper.SetEnvPrefix("festa")
	viper.AutomaticEnv()
}
