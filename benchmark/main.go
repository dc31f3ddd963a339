// Package main provides a comprehensive performance benchmarking tool for the Culprit CLI.
// It measures execution times across different synthetic dataset sizes and run modes,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - culprit binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic report and blame fixtures are generated
package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-history average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset       string
	Command       string
	NoHistoryTime string
	ColdTime      string
	WarmTime      string
}

// DatasetSpec describes one synthetic report and blame fixture pair.
type DatasetSpec struct {
	Name           string
	Files          int
	LinesPerFile   int
	DefectsPerFile int
	Authors        int
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir       string
	Timeout       time.Duration
	NoHistoryRuns int
	HistoryRuns   int
	Datasets      []DatasetSpec
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:       workDir,
		Timeout:       5 * time.Minute,
		NoHistoryRuns: 3,
		HistoryRuns:   4,
		Datasets: []DatasetSpec{
			{Name: "small", Files: 50, LinesPerFile: 200, DefectsPerFile: 10, Authors: 5},
			{Name: "medium", Files: 500, LinesPerFile: 200, DefectsPerFile: 10, Authors: 25},
			{Name: "large", Files: 2000, LinesPerFile: 400, DefectsPerFile: 20, Authors: 100},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the culprit binary exists and the work directory is usable
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if culprit is available
	if _, err := exec.LookPath("culprit"); err != nil {
		return fmt.Errorf("culprit binary not found in PATH")
	}

	// Check if the work directory can hold fixtures
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-history: %d runs, history: %d runs\n",
		len(config.Datasets), config.Timeout, config.NoHistoryRuns, config.HistoryRuns)

	for _, ds := range config.Datasets {
		fmt.Printf("Benchmarking %s\n", ds.Name)

		reportPath, blamePath, err := generateFixtures(config, ds)
		if err != nil {
			fmt.Printf("Skipping %s: %v\n", ds.Name, err)
			continue
		}

		// Summary attribution
		result := runBenchmarkSuite(config, ds, reportPath, blamePath, "summary", "summary attribution", nil)
		results = append(results, result)

		// Raw attribution
		rawOut := filepath.Join(config.WorkDir, ds.Name+"_raw.tsv")
		args := []string{"--rawdata", "--output-file", rawOut}
		desc := fmt.Sprintf("raw attribution (%s)", filepath.Base(rawOut))
		result = runBenchmarkSuite(config, ds, reportPath, blamePath, "rawdata", desc, args)
		results = append(results, result)

		// Parquet export
		parquetOut := filepath.Join(config.WorkDir, ds.Name+"_raw.parquet")
		args = []string{"--rawdata", "--output", "parquet", "--output-file", parquetOut}
		desc = fmt.Sprintf("parquet export (%s)", filepath.Base(parquetOut))
		result = runBenchmarkSuite(config, ds, reportPath, blamePath, "parquet", desc, args)
		results = append(results, result)
	}

	return results
}

// generateFixtures writes one flake8 report and one git blame file for a dataset
func generateFixtures(config BenchmarkConfig, ds DatasetSpec) (string, string, error) {
	fmt.Printf("  Generating fixtures (%d files x %d lines, %d defects per file)\n",
		ds.Files, ds.LinesPerFile, ds.DefectsPerFile)

	authors := make([]string, ds.Authors)
	for i := range authors {
		authors[i] = fmt.Sprintf("Author %03d", i)
	}

	defects := []struct{ kind, message string }{
		{"E501", "line too long (99 > 79 characters)"},
		{"W0612", "local variable 'x' is assigned to but never used"},
		{"E303", "too many blank lines (3)"},
	}

	blamePath := filepath.Join(config.WorkDir, ds.Name+"_blame.txt")
	blameFile, err := os.Create(blamePath)
	if err != nil {
		return "", "", err
	}
	blame := bufio.NewWriter(blameFile)

	reportPath := filepath.Join(config.WorkDir, ds.Name+"_report.txt")
	reportFile, err := os.Create(reportPath)
	if err != nil {
		_ = blameFile.Close()
		return "", "", err
	}
	report := bufio.NewWriter(reportFile)

	step := ds.LinesPerFile / ds.DefectsPerFile
	for f := 0; f < ds.Files; f++ {
		path := fmt.Sprintf("src/pkg%02d/mod%04d.py", f%20, f)

		for line := 1; line <= ds.LinesPerFile; line++ {
			fmt.Fprintf(blame, "%040x %d %d 1\n", f*ds.LinesPerFile+line, line, line)
			fmt.Fprintf(blame, "author %s\n", authors[(f+line)%len(authors)])
			fmt.Fprintf(blame, "filename %s\n", path)
			fmt.Fprintf(blame, "\tpass\n")
		}

		for d := 0; d < ds.DefectsPerFile; d++ {
			defect := defects[d%len(defects)]
			fmt.Fprintf(report, "%s:%d:1: %s %s\n", path, d*step+1, defect.kind, defect.message)
		}
	}

	if err := blame.Flush(); err != nil {
		return "", "", err
	}
	if err := blameFile.Close(); err != nil {
		return "", "", err
	}
	if err := report.Flush(); err != nil {
		return "", "", err
	}
	if err := reportFile.Close(); err != nil {
		return "", "", err
	}

	return reportPath, blamePath, nil
}

// runBenchmarkSuite runs both no-history and history benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, ds DatasetSpec, reportPath, blamePath, command, description string, extraArgs []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, ds.Name)

	historyDB := filepath.Join(config.WorkDir, ds.Name+"_history.db")

	// Helper to run a benchmark phase
	runPhase := func(historyBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		args := []string{"attribute", "--flake8", reportPath, "--git", blamePath, "--history-backend", historyBackend}
		if historyBackend == "sqlite" {
			args = append(args, "--history-db-connect", historyDB)
		}
		args = append(args, extraArgs...)
		cold, times := runBenchmark(config, command, args, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-history runs
	_, noHistoryAvg := runPhase("none", config.NoHistoryRuns, "No-history")

	// Phase 2: History runs, starting from a fresh database so the cold run includes schema setup
	if err := os.Remove(historyDB); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Warning: failed to remove %s: %v\n", historyDB, err)
	}
	coldTime, warmAvg := runPhase("sqlite", config.HistoryRuns, "History")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-history average: %s, Cold time: %s, Warm average: %s\n", noHistoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:       ds.Name,
		Command:       command,
		NoHistoryTime: noHistoryAvg,
		ColdTime:      coldTimeStr,
		WarmTime:      warmAvg,
	}
}

// runBenchmark executes a culprit command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, command string, args []string, numRuns int) (coldTime float64, warmTimes []float64) {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("culprit", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	switch command {
	case "rawdata":
		return strings.Contains(outputStr, "Wrote raw records")
	case "parquet":
		return strings.Contains(outputStr, "Wrote parquet")
	default:
		return strings.Contains(outputStr, "Attributed") &&
			strings.Contains(outputStr, "Attribution completed in")
	}
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/culprit_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"dataset", "cmd", "no_history_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoHistoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "summary", "Summary Attribution:")
	printCommandSummary(results, "rawdata", "Raw Attribution:")
	printCommandSummary(results, "parquet", "Parquet Export:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-history: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoHistoryTime, result.ColdTime, result.WarmTime)
		}
	}
}
