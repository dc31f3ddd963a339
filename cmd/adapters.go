package cmd

import (
	"os"

	"github.com/huangsam/culprit/internal/adapters"
	"github.com/huangsam/culprit/internal/contract"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// adaptersCmd displays the registered input adapters.
var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "Display all registered analyzer and repo adapters",
	Long: `Show every input format culprit understands, with notes on each.

Analyzer adapters parse static analysis reports into defect records.
Repo adapters parse version control blame captures into blame records.
Each adapter name doubles as an input file flag on the attribute command,
with a matching <name>-prefix flag for trimming path prefixes.

No input parsing is performed - this is purely informational.

Examples:
  # List all adapters
  culprit adapters`,
	Run: func(_ *cobra.Command, _ []string) {
		if err := writeAdaptersTable(); err != nil {
			contract.LogFatal("Cannot display adapters", err)
		}
	},
}

// writeAdaptersTable renders the adapter registry as a table on stdout.
func writeAdaptersTable() error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Name", "Kind", "Notes"})

	var data [][]string
	for _, a := range adapters.Analyzers() {
		data = append(data, []string{a.Name(), "analyzer", a.Notes()})
	}
	for _, r := range adapters.Repos() {
		data = append(data, []string{r.Name(), "repo", r.Notes()})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
