package cmd

import (
	"github.com/huangsam/culprit/core"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/huangsam/culprit/internal/history"
	"github.com/spf13/cobra"
)

// attributeCmd correlates defect reports with blame records.
var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Attribute defects from analyzer reports to blame authors.",
	Long: `Correlate static analysis findings with version control blame data.

Joins every defect to the author who last touched its line, helping you:
- Route review comments and lint findings to the right owner
- See which authors carry the largest share of open defects
- Break each author's share down by defect kind
- Spot defects in lines that no blame record covers

Reads one or more analyzer report files plus optional blame files, then
emits either a per-author summary or the raw correlated records.

Examples:
  # Attribute flake8 findings using git blame output
  culprit attribute --flake8 report.txt --git blame.txt

  # Combine several analyzers against one blame file
  culprit attribute --flake8 report.txt --pylint pylint.txt --git blame.txt

  # Strip a CI workspace prefix before matching paths
  culprit attribute --flake8 report.txt --flake8-prefix /builds/app --git blame.txt

  # Emit raw correlated records as TSV
  culprit attribute --flake8 report.txt --git blame.txt --rawdata

  # Export raw records to parquet for further analysis
  culprit attribute --flake8 report.txt --git blame.txt --rawdata --output parquet --output-file defects

  # Record the run in a local sqlite history database
  culprit attribute --flake8 report.txt --git blame.txt --history-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAttribution(rootCtx, cfg, history.Manager.GetStore()); err != nil {
			contract.LogFatal("Cannot run attribution", err)
		}
	},
}
