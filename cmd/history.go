package cmd

import (
	"fmt"

	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/history"
	"github.com/huangsam/culprit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	outputFile := viper.GetString("output-file")

	// Initialize the store with the loaded config
	if err := history.InitHistory(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = outputFile

	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize the store or create tables,
// allowing migrations to run on a fresh database.
func historyMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get history-related config values
	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.NoneBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetHistoryDBFilePath()
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr

	return nil
}

// historyMigrateSetupWrapper wraps historyMigrateSetup to provide PreRunE for migrate command.
func historyMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return historyMigrateSetup()
}

// historyCmd focused on run history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead
// of the full sharedSetup used by the attribute command. This avoids adapter
// input validation for simple history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage stored attribution runs and exports",
	Long: `Manage historical attribution data used for trend tracking and reporting.

When enabled, Culprit records every summary-mode attribution run, storing:
- Run metadata (timestamp, version, invocation arguments)
- Defect totals (total, attributed, unattributed)
- Per-author defect counts broken down by kind
- The full summary report, compressed

This enables longitudinal analysis, trend detection, and data export for BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run history statistics
  show    - Display one stored run in full
  export  - Export data to Parquet for analytics
  clear   - Remove all stored runs
  migrate - Run database schema migrations

Examples:
  # Check run history status
  culprit history status

  # Export for analysis in pandas/DuckDB
  culprit history export --output-file culprit-data.parquet`,
}

// historyStatusCmd shows run history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show detailed information about stored attribution runs.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total defects recorded across all runs
- Database table sizes

Use this to:
- Verify run history is enabled and working
- Monitor data accumulation over time
- Check database connection health
- Estimate storage requirements

Examples:
  # Check run history status
  culprit history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := history.Manager.GetStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		history.PrintHistoryStatus(status)
	},
}

// historyShowCmd displays a single stored run.
var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display one stored run with its full summary report",
	Long: `Print the metadata and decoded summary report of a stored run.

Shows run ID, creation time, tool version, invocation arguments and defect
totals, followed by the complete per-author report as indented JSON. The
report is stored compressed, so this is the way to inspect past results
without re-running attribution.

By default the most recent run is shown. Use --run-id to pick another;
run IDs appear in 'culprit history status' and parquet exports.

Examples:
  # Show the most recent run
  culprit history show

  # Show a specific run
  culprit history show --run-id 4f7c2a9e-1d3b-4c6f-9a8e-5b2d7f0c1e84`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runID := viper.GetString("run-id")
		if err := history.ExecuteHistoryShow(runID); err != nil {
			contract.LogFatal("Failed to show run history", err)
		}
	},
}

// historyClearCmd clears the run history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored attribution runs",
	Long: `Delete all stored runs and per-author history.

This removes:
- All run metadata and compressed summary reports
- Per-author defect counts for every run

WARNING: This action cannot be undone. Consider exporting data first.

Use this when:
- Resetting trend tracking
- Database storage is full
- Starting fresh attribution history
- Testing history features

Examples:
  # Export before clearing
  culprit history export --output-file backup.parquet
  culprit history clear

  # Clear and start fresh
  culprit history clear`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		count, err := history.Manager.GetStore().Clear()
		if err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Printf("Run history cleared successfully. %d runs removed.\n", count)
	},
}

// historyExportCmd exports run history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored runs to Parquet for BI tools and analytics",
	Long: `Export all stored attribution data to Parquet format for use with analytics tools.

Exports two datasets:
- Runs - metadata and defect totals for each attribution run
- Author rows - per-author, per-kind defect counts across all runs

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Schema evolution for future data additions
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --output-file parameter

Use cases:
- Defect ownership trends across runs
- Custom dashboards and visualizations
- Team-level reporting and KPIs

Examples:
  # Export all data
  culprit history export --output-file culprit-data.parquet

  # Use with DuckDB for analysis
  culprit history export --output-file data.parquet
  duckdb -c "SELECT * FROM read_parquet('data.parquet.culprit_runs.parquet') LIMIT 10"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ExecuteHistoryExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run history store.

Migrations allow:
- Upgrading to new schema versions when Culprit is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed
- Testing new features on specific schema versions

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  culprit history migrate

  # Migrate to specific version
  culprit history migrate --target-version 2

  # Rollback to previous version
  culprit history migrate --target-version 0`,
	PreRunE: historyMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
