// Package cmd defines the command-line interface for culprit.
package cmd

import (
	"fmt"

	"github.com/huangsam/culprit/internal/adapters"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(attributeCmd)
	rootCmd.AddCommand(adaptersCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", "", "Output format: text or json or yaml or csv for summary, tsv or parquet for rawdata")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for share columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in run headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "Run history backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of attributeCmd to Viper. Every registered adapter gets
	// an input file flag and a path prefix flag named after it.
	attributeCmd.Flags().Bool("rawdata", false, "Emit correlated records instead of the aggregate report")
	for _, name := range adapters.AnalyzerNames() {
		attributeCmd.Flags().StringArray(name, nil, fmt.Sprintf("Defect report file in %s format (repeatable)", name))
		attributeCmd.Flags().String(name+"-prefix", "", fmt.Sprintf("Path prefix to strip from %s file paths", name))
	}
	for _, name := range adapters.RepoNames() {
		attributeCmd.Flags().StringArray(name, nil, fmt.Sprintf("Blame file in %s format (repeatable)", name))
		attributeCmd.Flags().String(name+"-prefix", "", fmt.Sprintf("Path prefix to strip from %s file paths", name))
	}
	if err := viper.BindPFlags(attributeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding attribute flags", err)
	}

	// Bind all flags of historyShowCmd to Viper
	historyShowCmd.Flags().String("run-id", "", "Run ID to show (defaults to the most recent run)")
	if err := viper.BindPFlags(historyShowCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history show flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
