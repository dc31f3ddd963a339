package history

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/culprit/schema"
)

// ExecuteHistoryShow prints one stored run in full, including the decoded
// summary report. An empty runID selects the most recent run.
func ExecuteHistoryShow(runID string) error {
	store := Manager.GetStore()
	if store == nil {
		return errors.New("run history is not initialized")
	}

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list run history: %w", err)
	}
	if len(runs) == 0 {
		return errors.New("no run history found to show")
	}

	record, err := findRunRecord(runs, runID)
	if err != nil {
		return err
	}

	summary, err := DecodeSummaryBlob(record.SummaryBlob)
	if err != nil {
		return fmt.Errorf("failed to decode run summary: %w", err)
	}

	fmt.Printf("Run ID: %s\n", record.RunID)
	fmt.Printf("Created: %s (%s)\n", record.CreatedAt.Format("2006-01-02 15:04:05"), humanize.Time(record.CreatedAt))
	fmt.Printf("Version: %s\n", record.Version)
	if record.Args != "" {
		fmt.Printf("Args: %s\n", record.Args)
	}
	fmt.Printf("Defects: %d total, %d attributed, %d unattributed\n",
		record.Total, record.Attributed, record.Unattributed)

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render run summary: %w", err)
	}
	fmt.Println(string(payload))

	return nil
}

// findRunRecord picks the run to display. Runs arrive ordered oldest first,
// so the last entry is the most recent.
func findRunRecord(runs []schema.RunRecord, runID string) (*schema.RunRecord, error) {
	if runID == "" {
		return &runs[len(runs)-1], nil
	}
	for i := range runs {
		if runs[i].RunID == runID {
			return &runs[i], nil
		}
	}
	return nil, fmt.Errorf("no run found with ID %s", runID)
}
